package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/kbukum/armkit/errors"
	"github.com/kbukum/armkit/logger"
	"github.com/kbukum/armkit/observability"
	"github.com/kbukum/armkit/resilience"
)

// Retry hint headers, in order of precedence.
const (
	HeaderRetryAfterMS    = "retry-after-ms"
	HeaderXMSRetryAfterMS = "x-ms-retry-after-ms"
	HeaderRetryAfter      = "Retry-After"
)

// retryableStatus is returned inside the retry loop for a response that is
// worth another attempt. It never leaves the policy.
type retryableStatus struct {
	status int
	after  time.Duration
}

func (e *retryableStatus) Error() string {
	return fmt.Sprintf("retryable status %d", e.status)
}

func (e *retryableStatus) RetryAfter() time.Duration { return e.after }

// RetryPolicy resends a request on transport failures and on statuses 408,
// 429, 500, 502, 503 and 504, with exponential backoff or the server's retry
// hint. The response of the last attempt is returned as is.
func RetryPolicy(cfg resilience.RetryConfig, metrics *observability.HTTPMetrics, log *logger.Logger) Policy {
	if cfg.MaxAttempts <= 0 {
		cfg = resilience.DefaultRetryConfig()
	}
	if log == nil {
		log = logger.WithComponent("pipeline")
	}
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, req *Request) (*Response, error) {
			rc := cfg
			rc.RetryIf = func(err error) bool { return shouldRetry(ctx, err) }
			rc.OnRetry = func(attempt int, err error, backoff time.Duration) {
				metrics.RecordRetry(ctx, req.URL().Host)
				log.WithContext(ctx).Debug("retrying request", logger.Fields(
					logger.FieldMethod, string(req.Method()),
					logger.FieldAttempt, attempt,
					logger.FieldBackoff, backoff.Milliseconds(),
					logger.FieldError, err.Error(),
				))
				if cfg.OnRetry != nil {
					cfg.OnRetry(attempt, err, backoff)
				}
			}

			resp, err := resilience.RetryAttempts(ctx, rc, func(attempt int) (*Response, error) {
				observability.SetSpanAttribute(ctx, observability.AttrHTTPResendCount, attempt-1)
				resp, err := next.Send(withAttempt(ctx, attempt), req.Clone())
				if err != nil {
					return nil, err
				}
				if !errors.IsRetryableStatus(resp.StatusCode) || attempt >= rc.MaxAttempts {
					return resp, nil
				}
				after := RetryAfter(resp.Header, time.Now())
				_ = resp.Close()
				return nil, &retryableStatus{status: resp.StatusCode, after: after}
			})
			if err != nil {
				var rs *retryableStatus
				if stderrors.As(err, &rs) && ctx.Err() != nil {
					err = ctx.Err()
				}
				return nil, contextError(err)
			}
			return resp, nil
		})
	}
}

func shouldRetry(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if _, ok := err.(*retryableStatus); ok {
		return true
	}
	appErr, ok := errors.AsAppError(err)
	if !ok {
		return false
	}
	switch appErr.Code {
	case errors.ErrCodeTransport, errors.ErrCodeTimeout:
		return true
	}
	return false
}

// RetryAfter reads the server's retry hint from h. Millisecond headers win
// over Retry-After, which may hold seconds or an HTTP date. It returns 0
// when no usable hint is present.
func RetryAfter(h http.Header, now time.Time) time.Duration {
	for _, name := range []string{HeaderRetryAfterMS, HeaderXMSRetryAfterMS} {
		if v := h.Get(name); v != "" {
			if ms, err := strconv.ParseFloat(v, 64); err == nil && ms > 0 {
				return time.Duration(ms * float64(time.Millisecond))
			}
		}
	}
	v := h.Get(HeaderRetryAfter)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
