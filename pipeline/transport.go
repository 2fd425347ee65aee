package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/http2"

	"github.com/kbukum/armkit/errors"
	"github.com/kbukum/armkit/security"
)

// timeNow is replaced in tests.
var timeNow = time.Now

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TransportConfig configures the default HTTP client.
type TransportConfig struct {
	// Timeout bounds one attempt including reading the body. 0 means none.
	Timeout time.Duration
	TLS     security.TLSConfig
	// DisableHTTP2 keeps the client on HTTP/1.1.
	DisableHTTP2 bool
}

// NewHTTPClient builds the client used by the transport policy.
func NewHTTPClient(cfg TransportConfig) (*http.Client, error) {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}

	tlsCfg, err := cfg.TLS.Build()
	if err != nil {
		return nil, fmt.Errorf("pipeline: tls: %w", err)
	}
	if tlsCfg != nil {
		transport.TLSClientConfig = tlsCfg
	}
	if !cfg.DisableHTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			return nil, fmt.Errorf("pipeline: http2: %w", err)
		}
	}
	return &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
		// Redirects are answers for the caller, not for the transport.
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}, nil
}

// TransportPolicy is the innermost handler. It ignores next.
func TransportPolicy(client Doer) Policy {
	return func(Handler) Handler {
		return HandlerFunc(func(ctx context.Context, req *Request) (*Response, error) {
			httpReq, err := req.toHTTP(ctx)
			if err != nil {
				return nil, err
			}
			resp, err := client.Do(httpReq)
			if err != nil {
				return nil, transportError(ctx, err)
			}
			return NewResponse(resp.StatusCode, resp.Header, resp.Body), nil
		})
	}
}

// transportError classifies a failed round trip.
func transportError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return contextError(ctxErr)
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return errors.Timeout("send", err)
	}
	return errors.Transport(err)
}

// contextError turns an expired deadline into a TIMEOUT error. Cancellation
// is returned unchanged so callers can test for context.Canceled.
func contextError(err error) error {
	if _, ok := errors.AsAppError(err); ok {
		return err
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Timeout("request", err)
	}
	return err
}
