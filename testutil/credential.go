package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/kbukum/armkit/credential"
)

// StaticCredential returns token for every scope, valid for an hour.
func StaticCredential(token string) credential.TokenCredential {
	return credential.TokenCredentialFunc(func(context.Context, credential.TokenRequestOptions) (credential.AccessToken, error) {
		return credential.AccessToken{Token: token, ExpiresOn: time.Now().Add(time.Hour)}, nil
	})
}

// RecordingCredential hands out a fixed token and remembers the scopes of
// every request.
type RecordingCredential struct {
	Token string

	mu     sync.Mutex
	scopes [][]string
}

// GetToken implements credential.TokenCredential.
func (c *RecordingCredential) GetToken(_ context.Context, opts credential.TokenRequestOptions) (credential.AccessToken, error) {
	c.mu.Lock()
	c.scopes = append(c.scopes, append([]string(nil), opts.Scopes...))
	c.mu.Unlock()
	return credential.AccessToken{Token: c.Token, ExpiresOn: time.Now().Add(time.Hour)}, nil
}

// Scopes returns the scopes of every token request so far.
func (c *RecordingCredential) Scopes() [][]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]string(nil), c.scopes...)
}
