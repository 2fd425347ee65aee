package version

import (
	"runtime"
	"strings"
	"testing"
)

// setBuild overrides the ldflags variables for the duration of t.
func setBuild(t *testing.T, version, commit, branch, buildTime string) {
	t.Helper()
	v, c, b, bt, gv := Version, GitCommit, GitBranch, BuildTime, GoVersion
	t.Cleanup(func() {
		Version, GitCommit, GitBranch, BuildTime, GoVersion = v, c, b, bt, gv
	})
	Version, GitCommit, GitBranch, BuildTime, GoVersion = version, commit, branch, buildTime, ""
}

func TestGetVersionInfo(t *testing.T) {
	tests := []struct {
		name        string
		version     string
		buildTime   string
		wantRelease bool
		wantYear    int
	}{
		{name: "dev build", version: "dev"},
		{name: "release", version: "0.4.0", buildTime: "2026-03-02T08:00:00Z", wantRelease: true, wantYear: 2026},
		{name: "dirty tag", version: "0.4.0-dirty"},
		{name: "unparsable build time", version: "0.4.0", buildTime: "yesterday", wantRelease: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBuild(t, tt.version, "", "", tt.buildTime)
			info := GetVersionInfo()
			if info.Version != tt.version {
				t.Errorf("expected version %q, got %q", tt.version, info.Version)
			}
			if info.IsRelease != tt.wantRelease {
				t.Errorf("expected IsRelease=%v, got %v", tt.wantRelease, info.IsRelease)
			}
			if tt.wantYear != 0 && info.BuildDate.Year() != tt.wantYear {
				t.Errorf("expected build year %d, got %d", tt.wantYear, info.BuildDate.Year())
			}
			if info.GoVersion == "" {
				t.Error("expected Go version to fall back to the runtime")
			}
			if info.Platform != runtime.GOOS+"/"+runtime.GOARCH {
				t.Errorf("unexpected platform %q", info.Platform)
			}
		})
	}
}

func TestGetShortVersion(t *testing.T) {
	setBuild(t, "0.4.0", "", "", "")
	if got := GetShortVersion(); got != "0.4.0" {
		t.Errorf("expected bare version without a commit, got %q", got)
	}

	setBuild(t, "0.4.0", "9f8e7d6", "", "")
	if got := GetShortVersion(); got != "0.4.0-9f8e7d6" {
		t.Errorf("expected commit suffix, got %q", got)
	}
}

func TestGetFullVersion(t *testing.T) {
	setBuild(t, "0.4.0", "9f8e7d6", "main", "2026-03-02T08:00:00Z")
	fv := GetFullVersion()
	if !strings.HasPrefix(fv, "0.4.0-9f8e7d6 (built 2026-03-02T08:00:00Z)") {
		t.Errorf("unexpected full version %q", fv)
	}
	if !strings.HasSuffix(fv, runtime.GOOS+"/"+runtime.GOARCH) {
		t.Errorf("expected platform suffix, got %q", fv)
	}

	setBuild(t, "0.4.0", "9f8e7d6", "queue-peek", "")
	if fv := GetFullVersion(); !strings.Contains(fv, "queue-peek") {
		t.Errorf("expected non-default branch in full version, got %q", fv)
	}
}

func TestShortCommit(t *testing.T) {
	if got := shortCommit("0123456789abcdef"); got != "0123456" {
		t.Errorf("expected 7 chars, got %q", got)
	}
	if got := shortCommit("abc"); got != "abc" {
		t.Errorf("short revisions pass through, got %q", got)
	}
}

func TestUserAgent(t *testing.T) {
	setBuild(t, "1.2.3", "", "", "")

	want := "armkit/1.2.3 (" + runtime.Version() + "; " + runtime.GOOS + ")"
	if got := UserAgent(""); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if got := UserAgent("  "); got != want {
		t.Errorf("blank application id should be ignored, got %q", got)
	}
	if got := UserAgent("my app"); got != "my/app "+want {
		t.Errorf("expected application prefix, got %q", got)
	}
}
