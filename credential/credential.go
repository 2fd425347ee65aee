package credential

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// DefaultAuthorityHost is the public cloud token authority.
const DefaultAuthorityHost = "https://login.microsoftonline.com"

// AccessToken is a bearer token and the time it stops being valid.
// A zero ExpiresOn means the expiry is unknown.
type AccessToken struct {
	Token     string
	ExpiresOn time.Time
}

// Expired reports whether the token is expired, or will be within margin, at now.
func (t AccessToken) Expired(now time.Time, margin time.Duration) bool {
	if t.Token == "" {
		return true
	}
	if t.ExpiresOn.IsZero() {
		return false
	}
	return !now.Add(margin).Before(t.ExpiresOn)
}

// TokenRequestOptions describe the token a caller needs.
type TokenRequestOptions struct {
	// Scopes are the resource scopes, for example "https://management.azure.com/".
	Scopes []string
	// TenantID overrides the credential's tenant when set.
	TenantID string
}

// TokenCredential acquires bearer tokens. Implementations are safe for
// concurrent use.
type TokenCredential interface {
	GetToken(ctx context.Context, opts TokenRequestOptions) (AccessToken, error)
}

// TokenCredentialFunc adapts an ordinary function to TokenCredential.
type TokenCredentialFunc func(ctx context.Context, opts TokenRequestOptions) (AccessToken, error)

// GetToken implements TokenCredential.
func (f TokenCredentialFunc) GetToken(ctx context.Context, opts TokenRequestOptions) (AccessToken, error) {
	return f(ctx, opts)
}

// NormalizeScopes rewrites resource style scopes to the "/.default" form the
// v2.0 token endpoint expects. "https://management.azure.com/" and
// "https://management.azure.com" both become "https://management.azure.com/.default".
func NormalizeScopes(scopes []string) []string {
	out := make([]string, 0, len(scopes))
	for _, s := range scopes {
		s = strings.TrimSpace(s)
		switch {
		case s == "":
			continue
		case strings.HasSuffix(s, "/.default"):
		case strings.HasSuffix(s, "/"):
			s += ".default"
		default:
			if u, err := url.Parse(s); err == nil && u.Scheme != "" && (u.Path == "" || u.Path == "/") {
				s = strings.TrimSuffix(s, "/") + "/.default"
			}
		}
		out = append(out, s)
	}
	return out
}

// scopeKey identifies a scope set in caches.
func scopeKey(opts TokenRequestOptions) string {
	return opts.TenantID + "|" + strings.Join(opts.Scopes, " ")
}

func tokenURL(authority, tenantID string) string {
	if authority == "" {
		authority = DefaultAuthorityHost
	}
	return strings.TrimSuffix(authority, "/") + "/" + url.PathEscape(tenantID) + "/oauth2/v2.0/token"
}
