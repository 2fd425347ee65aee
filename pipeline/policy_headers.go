package pipeline

import (
	"context"

	"github.com/google/uuid"

	"github.com/kbukum/armkit/logger"
	"github.com/kbukum/armkit/version"
)

// Header names set by the pipeline.
const (
	HeaderClientRequestID  = "x-ms-client-request-id"
	HeaderServiceRequestID = "x-ms-request-id"
	HeaderUserAgent        = "User-Agent"
	HeaderAuthorization    = "Authorization"
)

// RequestIDPolicy sets x-ms-client-request-id to a new UUID unless the caller
// already set one, and stores it in the context for log correlation.
func RequestIDPolicy() Policy {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, req *Request) (*Response, error) {
			id := req.Header().Get(HeaderClientRequestID)
			if id == "" {
				id = uuid.NewString()
				req.Header().Set(HeaderClientRequestID, id)
			}
			return next.Send(logger.ContextWithRequestID(ctx, id), req)
		})
	}
}

// TelemetryPolicy sets the User-Agent header. A User-Agent set by the caller
// is kept in front of the module's.
func TelemetryPolicy(applicationID string) Policy {
	ua := version.UserAgent(applicationID)
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, req *Request) (*Response, error) {
			if existing := req.Header().Get(HeaderUserAgent); existing != "" {
				req.Header().Set(HeaderUserAgent, existing+" "+ua)
			} else {
				req.Header().Set(HeaderUserAgent, ua)
			}
			return next.Send(ctx, req)
		})
	}
}
