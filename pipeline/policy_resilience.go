package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/kbukum/armkit/errors"
	"github.com/kbukum/armkit/logger"
	"github.com/kbukum/armkit/resilience"
)

// RateLimitPolicy waits for a token before each attempt. A 429 answer pauses
// the limiter for the server's retry hint so that concurrent callers back off
// together.
func RateLimitPolicy(limiter *resilience.RateLimiter) Policy {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, req *Request) (*Response, error) {
			if err := limiter.Wait(ctx); err != nil {
				return nil, contextError(err)
			}
			resp, err := next.Send(ctx, req)
			if err == nil && resp.StatusCode == http.StatusTooManyRequests {
				if d := RetryAfter(resp.Header, timeNow()); d > 0 {
					limiter.Pause(d)
				}
			}
			return resp, err
		})
	}
}

// serverFailure marks a response the circuit breaker counts as a failure.
type serverFailure struct {
	status int
}

func (e *serverFailure) Error() string { return fmt.Sprintf("server failure status %d", e.status) }

// CircuitBreakerPolicy fails fast for a host that keeps failing. Transport
// errors and 5xx responses count as failures; 4xx answers do not.
func CircuitBreakerPolicy(breakers *resilience.CircuitBreakers) Policy {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, req *Request) (*Response, error) {
			host := req.URL().Host
			var resp *Response
			err := breakers.Get(host).Execute(func() error {
				var err error
				resp, err = next.Send(ctx, req)
				if err != nil {
					return err
				}
				if resp.StatusCode >= http.StatusInternalServerError {
					return &serverFailure{status: resp.StatusCode}
				}
				return nil
			})
			var sf *serverFailure
			switch {
			case err == nil, stderrors.As(err, &sf):
				return resp, nil
			case stderrors.Is(err, resilience.ErrCircuitOpen):
				logger.WithComponent("pipeline").WithContext(ctx).Warn("circuit open, request rejected", logger.Fields(
					"host", host,
				))
				return nil, errors.CircuitOpen(host, err)
			default:
				return nil, err
			}
		})
	}
}

// IsBreakerFailure is the failure predicate used for pipeline breakers:
// context cancellation by the caller is not the endpoint's fault.
func IsBreakerFailure(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, context.Canceled) {
		return false
	}
	var sf *serverFailure
	if stderrors.As(err, &sf) {
		return true
	}
	appErr, ok := errors.AsAppError(err)
	if !ok {
		return true
	}
	switch appErr.Code {
	case errors.ErrCodeTransport, errors.ErrCodeTimeout:
		return true
	}
	return false
}

// BulkheadPolicy bounds the number of attempts in flight.
func BulkheadPolicy(bulkhead *resilience.Bulkhead) Policy {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, req *Request) (*Response, error) {
			resp, err := resilience.ExecuteWithResult(bulkhead, ctx, func() (*Response, error) {
				return next.Send(ctx, req)
			})
			if stderrors.Is(err, resilience.ErrBulkheadFull) || stderrors.Is(err, resilience.ErrBulkheadTimeout) {
				return nil, errors.RateLimited(err).WithDetail("limit", "bulkhead")
			}
			if err != nil && ctx.Err() != nil {
				return nil, contextError(err)
			}
			return resp, err
		})
	}
}
