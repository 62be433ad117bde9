package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/randalmurphal/beacon/pkg/beacon/schema"
)

// Tracer is the beacon tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("beacon")

// SpanManager handles trace span lifecycle around deliveries.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartSendSpan starts a span for one logical delivery.
	StartSendSpan(ctx context.Context, kind schema.EventKind, service schema.ServiceIdentity) (context.Context, trace.Span)

	// StartFlushSpan starts a span for a queue flush. Send spans opened
	// during the flush become its children.
	StartFlushSpan(ctx context.Context, batchSize int) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the
// provider before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartSendSpan starts a span for one logical delivery.
func (m *otelSpanManager) StartSendSpan(ctx context.Context, kind schema.EventKind, service schema.ServiceIdentity) (context.Context, trace.Span) {
	return tracer.Start(ctx, "beacon.send",
		trace.WithAttributes(
			attribute.String("event", kind.String()),
			attribute.String("service", service.String()),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// StartFlushSpan starts a span for a queue flush.
func (m *otelSpanManager) StartFlushSpan(ctx context.Context, batchSize int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "beacon.flush",
		trace.WithAttributes(
			attribute.Int("batch_size", batchSize),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
