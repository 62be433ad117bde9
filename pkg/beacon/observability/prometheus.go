package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/randalmurphal/beacon/pkg/beacon/schema"
)

// PrometheusMetrics implements MetricsRecorder against a Prometheus
// registry. All metrics carry the beacon namespace.
type PrometheusMetrics struct {
	deliveries      *prometheus.CounterVec
	deliveryLatency *prometheus.HistogramVec
	retries         *prometheus.CounterVec
	queueDepth      prometheus.Gauge
	flushes         prometheus.Counter
	flushSize       prometheus.Histogram
	flushLatency    prometheus.Histogram
	drops           *prometheus.CounterVec
}

// Compile-time interface check.
var _ MetricsRecorder = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics creates and registers all delivery metrics with the
// provided registry. Pass nil to use prometheus.DefaultRegisterer.
//
// Expose the registry for scraping:
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewPrometheusMetrics(registry)
//	http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
func NewPrometheusMetrics(registry prometheus.Registerer) *PrometheusMetrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &PrometheusMetrics{
		deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "beacon",
			Name:      "deliveries_total",
			Help:      "Logical event deliveries by event kind and outcome",
		}, []string{"event", "success"}),
		deliveryLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "beacon",
			Name:      "delivery_latency_ms",
			Help:      "Delivery latency in milliseconds, including retries",
			Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000},
		}, []string{"event"}),
		retries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "beacon",
			Name:      "delivery_retries_total",
			Help:      "Retried delivery attempts by event kind",
		}, []string{"event"}),
		queueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "beacon",
			Name:      "queue_depth",
			Help:      "Events waiting in the batch queue",
		}),
		flushes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "beacon",
			Name:      "flushes_total",
			Help:      "Queue flushes",
		}),
		flushSize: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "beacon",
			Name:      "flush_size",
			Help:      "Events popped per queue flush",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100},
		}),
		flushLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "beacon",
			Name:      "flush_latency_ms",
			Help:      "Queue flush latency in milliseconds",
			Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000},
		}),
		drops: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "beacon",
			Name:      "queue_dropped_total",
			Help:      "Events discarded without a delivery attempt",
		}, []string{"event", "reason"}),
	}
}

// RecordDelivery records one logical delivery.
func (pm *PrometheusMetrics) RecordDelivery(_ context.Context, kind schema.EventKind, duration time.Duration, err error) {
	pm.deliveries.WithLabelValues(kind.String(), strconv.FormatBool(err == nil)).Inc()
	pm.deliveryLatency.WithLabelValues(kind.String()).Observe(float64(duration.Milliseconds()))
}

// RecordRetry records a retried attempt.
func (pm *PrometheusMetrics) RecordRetry(_ context.Context, kind schema.EventKind, _ int) {
	pm.retries.WithLabelValues(kind.String()).Inc()
}

// RecordQueueDepth records the current queue depth.
func (pm *PrometheusMetrics) RecordQueueDepth(_ context.Context, depth int) {
	pm.queueDepth.Set(float64(depth))
}

// RecordFlush records a queue flush.
func (pm *PrometheusMetrics) RecordFlush(_ context.Context, batchSize int, duration time.Duration) {
	pm.flushes.Inc()
	pm.flushSize.Observe(float64(batchSize))
	pm.flushLatency.Observe(float64(duration.Milliseconds()))
}

// RecordDrop records a discarded event.
func (pm *PrometheusMetrics) RecordDrop(_ context.Context, kind schema.EventKind, reason string) {
	pm.drops.WithLabelValues(kind.String(), reason).Inc()
}
