package transport

import (
	"context"
	"sync"

	"github.com/randalmurphal/beacon/pkg/beacon/schema"
)

// MemorySink collects envelopes in memory.
// Meant for tests and local development; data is lost when the process
// exits.
type MemorySink struct {
	mu       sync.RWMutex
	events   []*schema.Envelope
	failures int
	failErr  error
	closed   bool
}

// Compile-time interface check.
var _ Sink = (*MemorySink)(nil)

// NewMemorySink creates a new in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Send implements Sink.
func (m *MemorySink) Send(_ context.Context, env *schema.Envelope) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrSinkClosed
	}
	if m.failures > 0 {
		m.failures--
		return m.failErr
	}

	m.events = append(m.events, env)
	return nil
}

// FailNext makes the next n Send calls return err instead of accepting.
// Use to exercise retry behavior in tests.
func (m *MemorySink) FailNext(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failures = n
	m.failErr = err
}

// Events returns a snapshot of every accepted envelope, oldest first.
// The snapshot stays valid after Close.
func (m *MemorySink) Events() []*schema.Envelope {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*schema.Envelope, len(m.events))
	copy(out, m.events)
	return out
}

// Len returns the number of accepted envelopes.
func (m *MemorySink) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.events)
}

// Close implements Sink. Accepted envelopes remain readable so tests can
// assert on them after shutdown.
func (m *MemorySink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}
