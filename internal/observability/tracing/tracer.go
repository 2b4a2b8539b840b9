package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName names the tracer used for every span this module creates.
const InstrumentationName = "errnotice"

// DeliverySpanName is the span wrapping one notice delivery attempt.
const DeliverySpanName = "errnotice.deliver"

// Tracer returns the tracer from the global provider. It is looked up on every
// call so a provider installed after package init is honoured.
//
// Example usage:
//
//	ctx, span := tracing.Tracer().Start(ctx, tracing.DeliverySpanName)
//	defer span.End()
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}
