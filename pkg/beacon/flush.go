package beacon

import (
	"context"
	"time"

	"github.com/randalmurphal/beacon/pkg/beacon/observability"
	"github.com/randalmurphal/beacon/pkg/beacon/schema"
)

// ensureStarted launches the background flush goroutine on first use.
// The atomic flag is double-checked under the queue mutex so exactly one
// goroutine ever starts, and none once the client is closed.
func (c *Client) ensureStarted() {
	if c.started.Load() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started.Load() || c.closed.Load() {
		return
	}
	c.started.Store(true)
	go c.run()
}

// signalFlush requests a prompt flush without blocking the caller.
func (c *Client) signalFlush() {
	select {
	case c.flushCh <- struct{}{}:
	default:
	}
}

// run is the background flush loop: one batch per tick or flush signal,
// prompt exit on the stop signal without sending.
func (c *Client) run() {
	defer close(c.doneCh)

	ticker := time.NewTicker(c.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-c.flushCh:
			c.flushBatch(context.Background())
		case <-ticker.C:
			c.flushBatch(context.Background())
		}
	}
}

// flushBatch pops up to BatchSize envelopes, oldest first, and delivers
// them outside the queue lock. When a full batch is still left behind it
// re-signals so the next batch follows immediately.
func (c *Client) flushBatch(ctx context.Context) {
	c.mu.Lock()
	if len(c.queue) == 0 {
		c.mu.Unlock()
		return
	}

	n := c.cfg.BatchSize
	if n > len(c.queue) {
		n = len(c.queue)
	}
	batch := make([]*schema.Envelope, n)
	copy(batch, c.queue)
	depth := copy(c.queue, c.queue[n:])
	c.queue = c.queue[:depth]
	c.mu.Unlock()

	c.metrics.RecordQueueDepth(ctx, depth)
	c.deliver(ctx, batch)

	if depth >= c.cfg.BatchSize {
		c.signalFlush()
	}
}

// drain pops the whole queue and delivers it in a single pass.
func (c *Client) drain(ctx context.Context) int {
	c.mu.Lock()
	batch := c.queue
	c.queue = nil
	c.mu.Unlock()

	c.deliver(ctx, batch)
	return len(batch)
}

// deliver sends a popped batch one envelope at a time; a failure on one
// envelope never blocks the rest.
func (c *Client) deliver(ctx context.Context, batch []*schema.Envelope) {
	if len(batch) == 0 {
		return
	}

	ctx, span := c.spans.StartFlushSpan(ctx, len(batch))
	start := time.Now()

	for _, env := range batch {
		c.send(ctx, env)
	}

	duration := time.Since(start)
	c.spans.EndSpanWithError(span, nil)
	c.metrics.RecordFlush(ctx, len(batch), duration)
	observability.LogFlush(c.logger, len(batch), float64(duration)/float64(time.Millisecond))
}
