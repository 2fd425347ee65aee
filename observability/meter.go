package observability

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/armkit/logger"
	"github.com/kbukum/armkit/version"
)

// MeterConfig configures the OTLP metric exporter.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Insecure       bool
	// Interval is the export period.
	Interval time.Duration
}

// DefaultMeterConfig returns a config exporting to a local collector every 15s.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: version.Version,
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter installs a global meter provider exporting over OTLP HTTP.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(config.Endpoint)}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.WithComponent("observability").Debug("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))
	return mp, nil
}

// Meter returns the module meter from the global provider.
func Meter() metric.Meter {
	return otel.Meter(InstrumentationName, metric.WithInstrumentationVersion(version.Version))
}

// Metric names.
const (
	MetricRequests        = "armkit.client.requests"
	MetricRequestDuration = "armkit.client.request.duration"
	MetricRetries         = "armkit.client.retries"
	MetricThrottled       = "armkit.client.throttled"
	MetricPages           = "armkit.client.pages"
)

// HTTPMetrics are the instruments recorded by the request pipeline.
type HTTPMetrics struct {
	requests  metric.Int64Counter
	duration  metric.Float64Histogram
	retries   metric.Int64Counter
	throttled metric.Int64Counter
	pages     metric.Int64Counter
}

// NewHTTPMetrics creates the pipeline instruments on meter.
func NewHTTPMetrics(meter metric.Meter) (*HTTPMetrics, error) {
	requests, err := meter.Int64Counter(MetricRequests,
		metric.WithDescription("Logical requests sent, by method, host and final status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricRequests, err)
	}
	duration, err := meter.Float64Histogram(MetricRequestDuration,
		metric.WithDescription("Duration of logical requests including retries"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricRequestDuration, err)
	}
	retries, err := meter.Int64Counter(MetricRetries,
		metric.WithDescription("Attempts resent by the retry policy"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricRetries, err)
	}
	throttled, err := meter.Int64Counter(MetricThrottled,
		metric.WithDescription("Responses with status 429"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricThrottled, err)
	}
	pages, err := meter.Int64Counter(MetricPages,
		metric.WithDescription("Pages fetched by collection cursors"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricPages, err)
	}
	return &HTTPMetrics{
		requests:  requests,
		duration:  duration,
		retries:   retries,
		throttled: throttled,
		pages:     pages,
	}, nil
}

// RecordRequest records one logical request. status is 0 when no response arrived.
func (m *HTTPMetrics) RecordRequest(ctx context.Context, method, host string, status int, d time.Duration) {
	if m == nil {
		return
	}
	statusAttr := "none"
	if status > 0 {
		statusAttr = strconv.Itoa(status)
	}
	m.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrServerAddress, host),
		attribute.String(AttrHTTPStatusCode, statusAttr),
	))
	m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrServerAddress, host),
	))
	if status == 429 {
		m.throttled.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrServerAddress, host)))
	}
}

// RecordRetry counts one resend to host.
func (m *HTTPMetrics) RecordRetry(ctx context.Context, host string) {
	if m == nil {
		return
	}
	m.retries.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrServerAddress, host)))
}

// RecordPage counts one page fetched for operation.
func (m *HTTPMetrics) RecordPage(ctx context.Context, operation string) {
	if m == nil {
		return
	}
	m.pages.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrOperation, operation)))
}
