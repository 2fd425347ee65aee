package pipeline

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/kbukum/armkit/logger"
	"github.com/kbukum/armkit/util"
)

// LoggingPolicy logs every attempt at debug level and failed attempts at
// warn level. Credentials never reach the log: credential headers and
// signature query values are redacted.
func LoggingPolicy(log *logger.Logger) Policy {
	if log == nil {
		log = logger.WithComponent("pipeline")
	}
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, req *Request) (*Response, error) {
			start := time.Now()
			resp, err := next.Send(ctx, req)

			fields := logger.Fields(
				logger.FieldMethod, string(req.Method()),
				logger.FieldURL, util.RedactURL(req.URL()),
				logger.FieldAttempt, AttemptFromContext(ctx),
				logger.FieldDuration, time.Since(start).Milliseconds(),
			)
			l := log.WithContext(ctx)
			switch {
			case err != nil:
				l.Warn("request failed", logger.MergeWithError(fields, err))
			case resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests:
				fields[logger.FieldStatusCode] = resp.StatusCode
				fields["service_request_id"] = resp.Header.Get(HeaderServiceRequestID)
				l.Warn("request answered with server error", fields)
			default:
				fields[logger.FieldStatusCode] = resp.StatusCode
				if l.Enabled(zerolog.DebugLevel) {
					fields[logger.FieldHeaders] = util.RedactHeaders(req.Header())
				}
				l.Debug("request completed", fields)
			}
			return resp, err
		})
	}
}
