package pipeline

import "context"

// Handler sends a request and returns the raw response.
type Handler interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// HandlerFunc adapts an ordinary function to Handler.
type HandlerFunc func(ctx context.Context, req *Request) (*Response, error)

// Send implements Handler.
func (f HandlerFunc) Send(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Policy wraps a Handler with cross-cutting behavior.
type Policy func(next Handler) Handler

// Chain composes policies into one. The first policy is outermost:
// Chain(a, b, c)(h) is a(b(c(h))).
func Chain(policies ...Policy) Policy {
	return func(next Handler) Handler {
		for i := len(policies) - 1; i >= 0; i-- {
			if policies[i] != nil {
				next = policies[i](next)
			}
		}
		return next
	}
}

type attemptKey struct{}

// AttemptFromContext returns the 1-based attempt number set by the retry
// policy, or 1 outside of it.
func AttemptFromContext(ctx context.Context) int {
	if n, ok := ctx.Value(attemptKey{}).(int); ok {
		return n
	}
	return 1
}

func withAttempt(ctx context.Context, attempt int) context.Context {
	return context.WithValue(ctx, attemptKey{}, attempt)
}
