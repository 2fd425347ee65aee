package credential

import (
	"context"
	"strings"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/armkit/errors"
)

// StaticToken serves one fixed bearer token, for example one obtained with
// `az account get-access-token`. When the token is a JWT its exp claim is
// used as the expiry.
type StaticToken struct {
	token AccessToken
}

// NewStaticToken creates a StaticToken. The signature of a JWT is not verified.
func NewStaticToken(token string) *StaticToken {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	return &StaticToken{token: AccessToken{Token: token, ExpiresOn: jwtExpiry(token)}}
}

// NewStaticTokenWithExpiry creates a StaticToken with an explicit expiry.
func NewStaticTokenWithExpiry(token string, expiresOn time.Time) *StaticToken {
	return &StaticToken{token: AccessToken{Token: token, ExpiresOn: expiresOn}}
}

// GetToken returns the fixed token, or an error once it has expired.
func (s *StaticToken) GetToken(_ context.Context, _ TokenRequestOptions) (AccessToken, error) {
	if s.token.Token == "" {
		return AccessToken{}, errors.CredentialUnavailable("StaticToken", nil).WithDetail("reason", "empty token")
	}
	if s.token.Expired(time.Now(), 0) {
		return AccessToken{}, errors.CredentialUnavailable("StaticToken", nil).
			WithDetail("reason", "token expired").
			WithDetail("expires_on", s.token.ExpiresOn.UTC().Format(time.RFC3339))
	}
	return s.token, nil
}

func jwtExpiry(token string) time.Time {
	if strings.Count(token, ".") != 2 {
		return time.Time{}
	}
	claims := gojwt.RegisteredClaims{}
	if _, _, err := gojwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
