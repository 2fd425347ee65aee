// Package observability sets up OpenTelemetry for the client and defines the
// span attributes and instruments the request pipeline records.
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("armctl"))
//	defer tp.Shutdown(ctx)
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("armctl"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewHTTPMetrics(observability.Meter())
//
// Without InitTracer or InitMeter the global no-op providers are used and
// recording costs next to nothing.
package observability
