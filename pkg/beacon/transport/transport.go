// Package transport delivers serialized envelopes to their destination.
package transport

import (
	"context"
	"errors"

	"github.com/randalmurphal/beacon/pkg/beacon/schema"
)

// Sink receives validated envelopes.
// Implementations must be safe for concurrent use.
type Sink interface {
	// Send delivers one envelope. A nil return means the destination
	// accepted the event; the delivery engine treats any error as a
	// failed attempt and consults its retry policy.
	Send(ctx context.Context, env *schema.Envelope) error

	// Close releases any resources (connections, files).
	Close() error
}

// Sentinel errors for sink operations.
var (
	// ErrSinkClosed indicates the sink has been closed.
	ErrSinkClosed = errors.New("sink closed")
)

// NoopSink accepts and discards every envelope.
// Use to disable delivery entirely, for example in tests of emitting code.
type NoopSink struct{}

// Compile-time interface check.
var _ Sink = NoopSink{}

// Send implements Sink.
func (NoopSink) Send(context.Context, *schema.Envelope) error { return nil }

// Close implements Sink.
func (NoopSink) Close() error { return nil }
