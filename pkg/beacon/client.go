package beacon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/randalmurphal/beacon/pkg/beacon/config"
	bcerrors "github.com/randalmurphal/beacon/pkg/beacon/errors"
	"github.com/randalmurphal/beacon/pkg/beacon/observability"
	"github.com/randalmurphal/beacon/pkg/beacon/schema"
	"github.com/randalmurphal/beacon/pkg/beacon/transport"
)

// Client delivers telemetry envelopes to a collection service. It supports
// immediate sends with bounded retries and a batched queue drained by a
// single background goroutine.
//
// Delivery failures never reach callers as errors: every outcome is
// reduced to a bool, with the failure logged and counted. All methods are
// safe for concurrent use.
type Client struct {
	cfg     config.Config
	sink    transport.Sink
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
	retry   bcerrors.RetryConfig

	mu    sync.Mutex
	queue []*schema.Envelope

	started atomic.Bool
	closed  atomic.Bool

	flushCh chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a Client for the given configuration. Zero tuning fields
// fall back to config.DefaultConfig. Without a WithSink option the client
// posts to cfg.CollectURL, which must then be a valid http(s) URL.
func New(cfg config.Config, opts ...Option) (*Client, error) {
	cfg = cfg.WithDefaults()

	c := &Client{
		cfg:     cfg,
		logger:  slog.Default(),
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
		retry: bcerrors.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   cfg.RetryBaseDelay,
		},
		flushCh: make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.sink == nil {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		c.sink = transport.NewHTTPSink(transport.HTTPSinkConfig{
			BaseURL: cfg.CollectURL,
			APIKey:  cfg.APIKey,
			Timeout: cfg.Timeout,
		})
	} else if !cfg.Service.Valid() {
		return nil, fmt.Errorf("invalid config: service must be one of %v: %q", schema.Services(), cfg.Service)
	}

	c.logger = observability.EnrichLogger(c.logger, cfg.Service)

	return c, nil
}

// Service returns the identity events are attributed to by default.
func (c *Client) Service() schema.ServiceIdentity {
	return c.cfg.Service
}

// SendNow validates env and performs one logical send with bounded
// retries, bypassing the queue. It reports whether the collection service
// accepted the event; every failure is absorbed into a false return plus a
// log entry.
func (c *Client) SendNow(ctx context.Context, env *schema.Envelope) bool {
	if env == nil {
		return false
	}
	if c.closed.Load() {
		observability.LogDrop(c.logger, env.Kind, ErrClientClosed.Error())
		c.metrics.RecordDrop(ctx, env.Kind, "closed")
		return false
	}
	return c.send(ctx, env)
}

// Enqueue appends env to the delivery queue for background flushing. The
// flush goroutine starts on first use. Reaching BatchSize triggers an
// immediate flush; otherwise the queue drains every FlushInterval. After
// Close, Enqueue is a silent no-op.
func (c *Client) Enqueue(env *schema.Envelope) {
	if env == nil || c.closed.Load() {
		return
	}
	c.ensureStarted()

	c.mu.Lock()
	c.queue = append(c.queue, env)
	depth := len(c.queue)
	c.mu.Unlock()

	c.metrics.RecordQueueDepth(context.Background(), depth)

	if depth >= c.cfg.BatchSize {
		c.signalFlush()
	}
}

// EnqueueMap coerces fields into the payload variant kind demands and
// enqueues the result under the client's own identity. Fields that do not
// fit the variant are kept as opaque data and the fallback is logged.
// After Close, EnqueueMap is a silent no-op.
func (c *Client) EnqueueMap(kind schema.EventKind, fields map[string]any) {
	if c.closed.Load() {
		return
	}
	env, degraded := schema.FromMap(kind, c.cfg.Service, fields)
	if degraded {
		observability.LogCoercionFallback(c.logger, kind)
	}
	c.Enqueue(env)
}

// Close stops the background goroutine, waits for it to exit, drains
// everything still queued in one best-effort pass, and closes the sink.
// It is idempotent; only the first call does any work.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	if c.started.Load() {
		close(c.stopCh)
		<-c.doneCh
	}

	drained := c.drain(context.Background())
	observability.LogClientClosed(c.logger, drained)

	if err := c.sink.Close(); err != nil {
		return fmt.Errorf("close sink: %w", err)
	}
	return nil
}

// send performs one logical send: validate, then deliver with retries.
// Shared by the SendNow path and the flush path, so it must not consult
// the closed flag (the final drain runs after close).
func (c *Client) send(ctx context.Context, env *schema.Envelope) bool {
	if err := env.Validate(); err != nil {
		observability.LogValidationFailure(c.logger, env.Kind, err)
		c.metrics.RecordDrop(ctx, env.Kind, "invalid")
		return false
	}

	ctx, span := c.spans.StartSendSpan(ctx, env.Kind, env.Service)
	start := time.Now()

	var attempt int
	attempts, err := bcerrors.Do(ctx, c.retry, func(ctx context.Context) error {
		sendErr := c.sink.Send(ctx, env)
		if sendErr != nil && attempt+1 < c.retry.MaxAttempts && bcerrors.IsRetryable(sendErr) {
			observability.LogRetry(c.logger, env.Kind, attempt+1, sendErr)
			c.metrics.RecordRetry(ctx, env.Kind, attempt+1)
		}
		attempt++
		return sendErr
	})

	duration := time.Since(start)
	c.metrics.RecordDelivery(ctx, env.Kind, duration, err)
	c.spans.EndSpanWithError(span, err)

	if err != nil {
		observability.LogDeliveryFailure(c.logger, env.Kind, err, attempts)
		return false
	}

	observability.LogDeliverySuccess(c.logger, env.Kind, attempts, float64(duration)/float64(time.Millisecond))
	return true
}
