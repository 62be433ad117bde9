package beacon

import (
	"log/slog"

	"github.com/randalmurphal/beacon/pkg/beacon/observability"
	"github.com/randalmurphal/beacon/pkg/beacon/transport"
)

// Option configures a Client at construction time.
type Option func(*Client)

// WithLogger sets the logger for delivery diagnostics. The client enriches
// it with the configured service identity.
// Default: slog.Default(). Pass nil to disable logging entirely.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics recorder for delivery, retry, queue, and
// flush measurements.
// Default: observability.NoopMetrics.
//
// Example:
//
//	client, err := beacon.New(cfg, beacon.WithMetrics(observability.NewMetricsRecorder()))
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(c *Client) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithSpans sets the span manager wrapping each logical send and each
// flush pass.
// Default: observability.NoopSpanManager.
func WithSpans(s observability.SpanManager) Option {
	return func(c *Client) {
		if s != nil {
			c.spans = s
		}
	}
}

// WithSink replaces the HTTP sink the client would build from its
// configuration. With a custom sink the collect URL may be left empty.
func WithSink(sink transport.Sink) Option {
	return func(c *Client) {
		c.sink = sink
	}
}
