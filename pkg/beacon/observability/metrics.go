package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/randalmurphal/beacon/pkg/beacon/schema"
)

// MetricsRecorder records delivery engine metrics.
// Use NewMetricsRecorder() for OTel metrics, NewPrometheusMetrics() for a
// Prometheus registry, or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordDelivery records one logical delivery, covering every attempt
	// made for the event.
	RecordDelivery(ctx context.Context, kind schema.EventKind, duration time.Duration, err error)

	// RecordRetry records a retried attempt. attempt is 1-based: the first
	// retry after the initial attempt is 1.
	RecordRetry(ctx context.Context, kind schema.EventKind, attempt int)

	// RecordQueueDepth records the queue depth after an enqueue or flush.
	RecordQueueDepth(ctx context.Context, depth int)

	// RecordFlush records a queue flush and the number of events it popped.
	RecordFlush(ctx context.Context, batchSize int, duration time.Duration)

	// RecordDrop records an event discarded without a delivery attempt.
	RecordDrop(ctx context.Context, kind schema.EventKind, reason string)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	deliveries      metric.Int64Counter
	deliveryLatency metric.Float64Histogram
	deliveryErrors  metric.Int64Counter
	retries         metric.Int64Counter
	queueDepth      metric.Int64Gauge
	flushes         metric.Int64Counter
	flushSize       metric.Int64Histogram
	flushLatency    metric.Float64Histogram
	drops           metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the instruments on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("beacon")

	deliveries, err := meter.Int64Counter("beacon.deliveries",
		metric.WithDescription("Number of logical event deliveries"),
	)
	if err != nil {
		return nil, err
	}

	deliveryLatency, err := meter.Float64Histogram("beacon.delivery.latency_ms",
		metric.WithDescription("Delivery latency in milliseconds, including retries"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	deliveryErrors, err := meter.Int64Counter("beacon.delivery.errors",
		metric.WithDescription("Number of deliveries that exhausted all attempts"),
	)
	if err != nil {
		return nil, err
	}

	retries, err := meter.Int64Counter("beacon.delivery.retries",
		metric.WithDescription("Number of retried delivery attempts"),
	)
	if err != nil {
		return nil, err
	}

	queueDepth, err := meter.Int64Gauge("beacon.queue.depth",
		metric.WithDescription("Events waiting in the batch queue"),
	)
	if err != nil {
		return nil, err
	}

	flushes, err := meter.Int64Counter("beacon.flushes",
		metric.WithDescription("Number of queue flushes"),
	)
	if err != nil {
		return nil, err
	}

	flushSize, err := meter.Int64Histogram("beacon.flush.size",
		metric.WithDescription("Events popped per queue flush"),
	)
	if err != nil {
		return nil, err
	}

	flushLatency, err := meter.Float64Histogram("beacon.flush.latency_ms",
		metric.WithDescription("Queue flush latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	drops, err := meter.Int64Counter("beacon.queue.dropped",
		metric.WithDescription("Events discarded without a delivery attempt"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		deliveries:      deliveries,
		deliveryLatency: deliveryLatency,
		deliveryErrors:  deliveryErrors,
		retries:         retries,
		queueDepth:      queueDepth,
		flushes:         flushes,
		flushSize:       flushSize,
		flushLatency:    flushLatency,
		drops:           drops,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If instrument creation fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordDelivery records one logical delivery.
func (m *otelMetrics) RecordDelivery(ctx context.Context, kind schema.EventKind, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("event", kind.String()),
	}

	m.deliveries.Add(ctx, 1, metric.WithAttributes(append(attrs, attribute.Bool("success", err == nil))...))
	m.deliveryLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if err != nil {
		m.deliveryErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordRetry records a retried attempt.
func (m *otelMetrics) RecordRetry(ctx context.Context, kind schema.EventKind, attempt int) {
	m.retries.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event", kind.String()),
		attribute.Int("attempt", attempt),
	))
}

// RecordQueueDepth records the current queue depth.
func (m *otelMetrics) RecordQueueDepth(ctx context.Context, depth int) {
	m.queueDepth.Record(ctx, int64(depth))
}

// RecordFlush records a queue flush.
func (m *otelMetrics) RecordFlush(ctx context.Context, batchSize int, duration time.Duration) {
	m.flushes.Add(ctx, 1)
	m.flushSize.Record(ctx, int64(batchSize))
	m.flushLatency.Record(ctx, float64(duration.Milliseconds()))
}

// RecordDrop records a discarded event.
func (m *otelMetrics) RecordDrop(ctx context.Context, kind schema.EventKind, reason string) {
	m.drops.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event", kind.String()),
		attribute.String("reason", reason),
	))
}
