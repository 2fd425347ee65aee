package util

import (
	"net/http"
	"net/url"
	"strings"
)

// Coalesce returns the first non-zero value, or the zero value if all are zero.
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// MaskSecret hides all but the first visiblePrefix characters of s.
func MaskSecret(s string, visiblePrefix int) string {
	if len(s) <= visiblePrefix {
		return "***"
	}
	return s[:visiblePrefix] + "***"
}

const redacted = "REDACTED"

// sensitiveQuery lists query keys that carry credentials, such as SAS signatures.
var sensitiveQuery = map[string]bool{
	"sig":           true,
	"signature":     true,
	"code":          true,
	"client_secret": true,
	"access_token":  true,
}

// RedactURL renders u with user info and credential-bearing query values replaced.
func RedactURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	c := *u
	c.User = nil
	q := c.Query()
	changed := false
	for key := range q {
		if sensitiveQuery[strings.ToLower(key)] {
			q.Set(key, redacted)
			changed = true
		}
	}
	if changed {
		c.RawQuery = q.Encode()
	}
	return c.String()
}

// sensitiveHeaders are never written to logs in clear text.
var sensitiveHeaders = []string{"Authorization", "Proxy-Authorization", "Cookie", "Set-Cookie", "X-Ms-Encryption-Key"}

// RedactHeaders returns a copy of h with credential headers replaced.
func RedactHeaders(h http.Header) http.Header {
	out := h.Clone()
	if out == nil {
		return http.Header{}
	}
	for _, name := range sensitiveHeaders {
		if out.Get(name) != "" {
			out.Set(name, redacted)
		}
	}
	return out
}
