package transport

import (
	"context"

	"github.com/randalmurphal/beacon/pkg/beacon/schema"
)

// MultiSink fans each envelope out to every wrapped sink. Typical use
// is mirroring production traffic into a local SQLite capture while
// still delivering over HTTP.
type MultiSink struct {
	sinks []Sink
}

// Compile-time interface check.
var _ Sink = (*MultiSink)(nil)

// NewMultiSink creates a sink that delivers to all of the given sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Send implements Sink. Every sink is attempted even when an earlier
// one fails; the first error is returned.
func (m *MultiSink) Send(ctx context.Context, env *schema.Envelope) error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Send(ctx, env); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close implements Sink. Every sink is closed; the first error is
// returned.
func (m *MultiSink) Close() error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
