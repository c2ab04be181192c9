// Package observability wires OpenTelemetry tracing and metrics into the
// container.
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultConfig("orders"))
//	defer tp.Shutdown(ctx)
//	mp, err := observability.InitMeter(ctx, observability.DefaultConfig("orders"))
//	defer mp.Shutdown(ctx)
//
//	rt, err := observability.NewResolutionTelemetry(tp.Tracer(observability.InstrumentationName),
//	    mp.Meter(observability.InstrumentationName))
//	b := di.NewBuilder(di.WithObserver(rt))
//
// ResolutionTelemetry turns every resolution record into a span and updates
// the di.resolutions.total counter and di.resolution.duration histogram.
package observability
