// Package tracing provides OpenTelemetry tracing integration.
//
// The tracer is taken from the global otel provider, so installing an SDK
// provider in main is enough to export delivery spans. Without one every span
// is a no-op.
//
//	ctx, span := tracing.Tracer().Start(ctx, tracing.DeliverySpanName)
//	defer span.End()
package tracing
