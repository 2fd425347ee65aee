package arm

import (
	"net/url"
	"strings"

	"github.com/kbukum/armkit/errors"
)

// ContinuationURL resolves a continuation token against the root of
// endpoint. Absolute tokens are used as they are; relative ones replace the
// endpoint path.
func ContinuationURL(endpoint, next string) (*url.URL, error) {
	if next == "" {
		return nil, errors.InvalidInput("nextLink", "continuation token is empty")
	}
	base, err := url.Parse(endpoint)
	if err != nil {
		return nil, errors.InvalidInput("endpoint", err.Error())
	}
	base.Path = ""
	base.RawPath = ""
	base.RawQuery = ""
	base.Fragment = ""

	ref, err := url.Parse(next)
	if err != nil {
		return nil, errors.InvalidInput("nextLink", err.Error())
	}
	return base.ResolveReference(ref), nil
}

// SetAPIVersion appends api-version to u unless the query already carries
// one. The existing query is left byte for byte, since continuation links
// often hold pre-encoded skip tokens.
func SetAPIVersion(u *url.URL, version string) {
	if HasAPIVersion(u) {
		return
	}
	param := APIVersionParam + "=" + url.QueryEscape(version)
	if u.RawQuery == "" {
		u.RawQuery = param
		return
	}
	u.RawQuery = strings.TrimSuffix(u.RawQuery, "&") + "&" + param
}

// HasAPIVersion reports whether u carries an api-version parameter.
func HasAPIVersion(u *url.URL) bool {
	q, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		for _, part := range strings.Split(u.RawQuery, "&") {
			if part == APIVersionParam || strings.HasPrefix(part, APIVersionParam+"=") {
				return true
			}
		}
		return false
	}
	_, ok := q[APIVersionParam]
	return ok
}
