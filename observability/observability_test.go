package observability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestDefaultTracerConfig(t *testing.T) {
	cfg := DefaultTracerConfig("armctl")

	if cfg.ServiceName != "armctl" {
		t.Errorf("expected ServiceName 'armctl', got %s", cfg.ServiceName)
	}
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected Endpoint 'localhost:4318', got %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected SampleRate 1.0, got %f", cfg.SampleRate)
	}
	if !cfg.Insecure {
		t.Error("expected Insecure to be true")
	}
}

func TestDefaultMeterConfig(t *testing.T) {
	cfg := DefaultMeterConfig("armctl")
	if cfg.Interval != 15*time.Second {
		t.Errorf("expected Interval 15s, got %v", cfg.Interval)
	}
}

func TestSampler(t *testing.T) {
	if s := sampler(1); s.Description() != sdktrace.AlwaysSample().Description() {
		t.Errorf("expected always-on sampler, got %s", s.Description())
	}
	if s := sampler(0); s.Description() != sdktrace.NeverSample().Description() {
		t.Errorf("expected always-off sampler, got %s", s.Description())
	}
	if s := sampler(0.25); s.Description() != sdktrace.TraceIDRatioBased(0.25).Description() {
		t.Errorf("expected ratio sampler, got %s", s.Description())
	}
}

func TestSpanHelpers(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "HTTP GET")
	SetSpanAttribute(ctx, AttrHTTPMethod, "GET")
	SetSpanAttribute(ctx, AttrHTTPStatusCode, 503)
	SetSpanAttribute(ctx, AttrHTTPResendCount, int64(2))
	SetSpanAttribute(ctx, "flag", true)
	SetSpanAttribute(ctx, "scopes", []string{"a", "b"})
	SetSpanAttribute(ctx, "other", 1.5)
	SetSpanError(ctx, fmt.Errorf("boom"))
	SetSpanError(ctx, nil)
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	got := spans[0]
	if got.Status().Code != codes.Error || got.Status().Description != "boom" {
		t.Errorf("unexpected status %+v", got.Status())
	}
	if len(got.Events()) != 1 {
		t.Errorf("expected one recorded error event, got %d", len(got.Events()))
	}
	attrs := map[string]string{}
	for _, kv := range got.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	want := map[string]string{
		AttrHTTPMethod:      "GET",
		AttrHTTPStatusCode:  "503",
		AttrHTTPResendCount: "2",
		"flag":              "true",
		"other":             "1.5",
	}
	for k, v := range want {
		if attrs[k] != v {
			t.Errorf("attribute %s: expected %q, got %q", k, v, attrs[k])
		}
	}
}

func TestSpanHelpers_NoRecordingSpan(t *testing.T) {
	ctx := context.Background()
	SetSpanAttribute(ctx, AttrURLFull, "https://example")
	SetSpanError(ctx, fmt.Errorf("ignored"))
}

func TestNewHTTPMetrics_Noop(t *testing.T) {
	metrics, err := NewHTTPMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}
	ctx := context.Background()
	metrics.RecordRequest(ctx, "GET", "management.azure.com", 200, time.Millisecond)
	metrics.RecordRetry(ctx, "management.azure.com")
	metrics.RecordPage(ctx, "Operations.List")
}

func TestHTTPMetrics_NilIsSafe(t *testing.T) {
	var metrics *HTTPMetrics
	ctx := context.Background()
	metrics.RecordRequest(ctx, "GET", "host", 0, time.Millisecond)
	metrics.RecordRetry(ctx, "host")
	metrics.RecordPage(ctx, "op")
}

func TestHTTPMetrics_Recorded(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	metrics, err := NewHTTPMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}
	ctx := context.Background()
	metrics.RecordRequest(ctx, "GET", "management.azure.com", 429, 10*time.Millisecond)
	metrics.RecordRequest(ctx, "GET", "management.azure.com", 200, 20*time.Millisecond)
	metrics.RecordRetry(ctx, "management.azure.com")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if data, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range data.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	if sums[MetricRequests] != 2 {
		t.Errorf("expected 2 requests, got %d", sums[MetricRequests])
	}
	if sums[MetricThrottled] != 1 {
		t.Errorf("expected 1 throttled, got %d", sums[MetricThrottled])
	}
	if sums[MetricRetries] != 1 {
		t.Errorf("expected 1 retry, got %d", sums[MetricRetries])
	}
}

func TestOperationContext(t *testing.T) {
	ctx := context.Background()
	if got := OperationFromContext(ctx); got != "" {
		t.Errorf("expected empty operation, got %q", got)
	}
	ctx = WithOperation(ctx, "Operations.List")
	if got := OperationFromContext(ctx); got != "Operations.List" {
		t.Errorf("expected Operations.List, got %q", got)
	}
	if got := OperationFromContext(WithOperation(ctx, "")); got != "Operations.List" {
		t.Errorf("empty name should keep the outer operation, got %q", got)
	}
}
