package credential

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kbukum/armkit/logger"
)

const (
	// DefaultRefreshMargin is how long before expiry a cached token is replaced.
	DefaultRefreshMargin = 5 * time.Minute
	// DefaultRefreshTimeout bounds one shared refresh.
	DefaultRefreshTimeout = time.Minute
)

// Cached caches tokens per scope set in front of another credential.
// Concurrent callers that find the token stale share one refresh.
type Cached struct {
	cred           TokenCredential
	margin         time.Duration
	refreshTimeout time.Duration
	now            func() time.Time

	mu     sync.RWMutex
	tokens map[string]AccessToken
	group  singleflight.Group
}

// NewCached wraps cred. A margin <= 0 uses DefaultRefreshMargin.
func NewCached(cred TokenCredential, margin time.Duration) *Cached {
	if margin <= 0 {
		margin = DefaultRefreshMargin
	}
	return &Cached{
		cred:           cred,
		margin:         margin,
		refreshTimeout: DefaultRefreshTimeout,
		now:            time.Now,
		tokens:         make(map[string]AccessToken),
	}
}

// GetToken returns the cached token for opts, refreshing it when it is
// within the refresh margin of expiry.
func (c *Cached) GetToken(ctx context.Context, opts TokenRequestOptions) (AccessToken, error) {
	key := scopeKey(opts)
	if tok, ok := c.lookup(key); ok && !tok.Expired(c.now(), c.margin) {
		return tok, nil
	}

	// The refresh outlives any single caller; each caller stops waiting when
	// its own context ends.
	ch := c.group.DoChan(key, func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.refreshTimeout)
		defer cancel()
		return c.refresh(rctx, key, opts)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return AccessToken{}, res.Err
		}
		return res.Val.(AccessToken), nil
	case <-ctx.Done():
		return AccessToken{}, ctx.Err()
	}
}

func (c *Cached) refresh(ctx context.Context, key string, opts TokenRequestOptions) (AccessToken, error) {
	current, ok := c.lookup(key)
	if ok && !current.Expired(c.now(), c.margin) {
		return current, nil
	}
	fresh, err := c.cred.GetToken(ctx, opts)
	if err != nil {
		if ok && !current.Expired(c.now(), 0) {
			logger.WithComponent("credential").Warn("token refresh failed, serving cached token", logger.Fields(
				"error", err.Error(),
				"expires_on", current.ExpiresOn.UTC().Format(time.RFC3339),
			))
			return current, nil
		}
		return AccessToken{}, err
	}
	c.mu.Lock()
	c.tokens[key] = fresh
	c.mu.Unlock()
	return fresh, nil
}

// Invalidate drops every cached token.
func (c *Cached) Invalidate() {
	c.mu.Lock()
	c.tokens = make(map[string]AccessToken)
	c.mu.Unlock()
}

func (c *Cached) lookup(key string) (AccessToken, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tok, ok := c.tokens[key]
	return tok, ok
}
