// Package observability provides production-grade observability features
// for beacon clients: structured logging, metrics, and distributed tracing.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry or Prometheus
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"

	"github.com/randalmurphal/beacon/pkg/beacon/schema"
)

// EnrichLogger adds the client identity to a logger.
// Returns a new logger with the service field attached to every record.
//
// Example:
//
//	enriched := EnrichLogger(logger, schema.ServiceSearchGateway)
//	enriched.Info("client ready") // includes service
func EnrichLogger(logger *slog.Logger, service schema.ServiceIdentity) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("service", service.String()),
	)
}

// LogDeliverySuccess logs a delivered event.
func LogDeliverySuccess(logger *slog.Logger, kind schema.EventKind, attempts int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("event delivered",
		slog.String("event", kind.String()),
		slog.Int("attempts", attempts),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogDeliveryFailure logs an event that could not be delivered after all
// attempts.
func LogDeliveryFailure(logger *slog.Logger, kind schema.EventKind, err error, attempts int) {
	if logger == nil {
		return
	}
	logger.Error("event delivery failed",
		slog.String("event", kind.String()),
		slog.String("error", err.Error()),
		slog.Int("attempts", attempts),
	)
}

// LogRetry logs a retried delivery attempt.
func LogRetry(logger *slog.Logger, kind schema.EventKind, attempt int, err error) {
	if logger == nil {
		return
	}
	logger.Warn("retrying event delivery",
		slog.String("event", kind.String()),
		slog.Int("attempt", attempt),
		slog.String("error", err.Error()),
	)
}

// LogValidationFailure logs an envelope rejected before delivery.
func LogValidationFailure(logger *slog.Logger, kind schema.EventKind, err error) {
	if logger == nil {
		return
	}
	logger.Error("event validation failed",
		slog.String("event", kind.String()),
		slog.String("error", err.Error()),
	)
}

// LogFlush logs a queue flush.
func LogFlush(logger *slog.Logger, batchSize int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("queue flushed",
		slog.Int("batch_size", batchSize),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogDrop logs an event discarded without a delivery attempt.
func LogDrop(logger *slog.Logger, kind schema.EventKind, reason string) {
	if logger == nil {
		return
	}
	logger.Warn("event dropped",
		slog.String("event", kind.String()),
		slog.String("reason", reason),
	)
}

// LogCoercionFallback logs a loose payload that did not fit its kind and
// was kept as opaque data.
func LogCoercionFallback(logger *slog.Logger, kind schema.EventKind) {
	if logger == nil {
		return
	}
	logger.Warn("payload coerced to opaque form",
		slog.String("event", kind.String()),
	)
}

// LogClientClosed logs client shutdown after the final drain.
func LogClientClosed(logger *slog.Logger, drained int) {
	if logger == nil {
		return
	}
	logger.Info("client closed",
		slog.Int("drained", drained),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
