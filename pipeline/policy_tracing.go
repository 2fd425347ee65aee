package pipeline

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/armkit/errors"
	"github.com/kbukum/armkit/observability"
	"github.com/kbukum/armkit/util"
)

// TracingPolicy opens one client span per logical request, named
// "HTTP <METHOD>", propagates the trace context and records request metrics.
func TracingPolicy(metrics *observability.HTTPMetrics) Policy {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, req *Request) (*Response, error) {
			method := string(req.Method())
			ctx, span := observability.StartSpan(ctx, "HTTP "+method, trace.WithSpanKind(trace.SpanKindClient))
			defer span.End()

			observability.SetSpanAttribute(ctx, observability.AttrHTTPMethod, method)
			observability.SetSpanAttribute(ctx, observability.AttrURLFull, util.RedactURL(req.URL()))
			observability.SetSpanAttribute(ctx, observability.AttrServerAddress, req.URL().Hostname())
			if op := observability.OperationFromContext(ctx); op != "" {
				observability.SetSpanAttribute(ctx, observability.AttrOperation, op)
			}
			otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header()))

			start := time.Now()
			resp, err := next.Send(ctx, req)
			status := 0
			if resp != nil {
				status = resp.StatusCode
			}
			metrics.RecordRequest(ctx, method, req.URL().Host, status, time.Since(start))

			if id := req.Header().Get(HeaderClientRequestID); id != "" {
				observability.SetSpanAttribute(ctx, observability.AttrClientRequestID, id)
			}
			if err != nil {
				if appErr, ok := errors.AsAppError(err); ok {
					observability.SetSpanAttribute(ctx, observability.AttrErrorType, string(appErr.Code))
				}
				observability.SetSpanError(ctx, err)
				return nil, err
			}
			observability.SetSpanAttribute(ctx, observability.AttrHTTPStatusCode, resp.StatusCode)
			if resp.StatusCode >= 400 {
				span.SetStatus(codes.Error, strconv.Itoa(resp.StatusCode))
			}
			if id := resp.Header.Get(HeaderServiceRequestID); id != "" {
				observability.SetSpanAttribute(ctx, observability.AttrServiceRequest, id)
			}
			return resp, nil
		})
	}
}
