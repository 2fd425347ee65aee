// Package version carries the build version of armkit binaries and the
// User-Agent string the request pipeline sends.
//
// Version, git commit, branch, and build time are set at compile time
// via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/armkit/version.Version=1.0.0" ./cmd/armctl
package version
