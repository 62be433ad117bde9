package beacon_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/beacon/pkg/beacon"
	"github.com/randalmurphal/beacon/pkg/beacon/config"
	bcerrors "github.com/randalmurphal/beacon/pkg/beacon/errors"
	"github.com/randalmurphal/beacon/pkg/beacon/schema"
	"github.com/randalmurphal/beacon/pkg/beacon/transport"
)

// newMemoryClient builds a client backed by an in-memory sink. Tests that
// leave cfg.Service empty get the search-gateway identity.
func newMemoryClient(t *testing.T, cfg config.Config, opts ...beacon.Option) (*beacon.Client, *transport.MemorySink) {
	t.Helper()
	if cfg.Service == "" {
		cfg.Service = schema.ServiceSearchGateway
	}
	sink := transport.NewMemorySink()
	all := append([]beacon.Option{beacon.WithSink(sink), beacon.WithLogger(nil)}, opts...)
	client, err := beacon.New(cfg, all...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, sink
}

// queryEnvelope builds a valid query_execution envelope for delivery tests.
func queryEnvelope(t *testing.T) *schema.Envelope {
	t.Helper()
	env, err := schema.NewQueryExecution(schema.ServiceQueryExecutor, schema.QueryExecution{
		Query:           "population of portland",
		ResultsCount:    3,
		ExecutionTimeMS: 12.5,
		DataSource:      "warehouse",
	})
	require.NoError(t, err)
	return env
}

func TestNew_RequiresCollectURLWithoutSink(t *testing.T) {
	_, err := beacon.New(config.Config{Service: schema.ServiceSearchGateway})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collect_url")
}

func TestNew_RejectsUnknownScheme(t *testing.T) {
	cfg := config.New("ftp://collector:9000", schema.ServiceSearchGateway)
	_, err := beacon.New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http or https")
}

func TestNew_RequiresServiceWithSink(t *testing.T) {
	_, err := beacon.New(config.Config{Service: "mystery-service"},
		beacon.WithSink(transport.NewMemorySink()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service")
}

// With a custom sink the collect URL is not needed at all.
func TestNew_SinkWithoutURL(t *testing.T) {
	client, sink := newMemoryClient(t, config.Config{})
	require.True(t, client.SendNow(context.Background(), queryEnvelope(t)))
	assert.Equal(t, 1, sink.Len())
}

func TestClient_SendNow(t *testing.T) {
	client, sink := newMemoryClient(t, config.Config{})

	ok := client.SendNow(context.Background(), queryEnvelope(t))
	require.True(t, ok)

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, schema.KindQueryExecution, events[0].Kind)
}

func TestClient_SendNow_NilEnvelope(t *testing.T) {
	client, sink := newMemoryClient(t, config.Config{})
	assert.False(t, client.SendNow(context.Background(), nil))
	assert.Zero(t, sink.Len())
}

// An envelope that fails validation is dropped before it reaches the sink.
func TestClient_SendNow_InvalidEnvelope(t *testing.T) {
	client, sink := newMemoryClient(t, config.Config{})

	env := &schema.Envelope{
		Kind:    schema.KindQueryExecution,
		Service: schema.ServiceQueryExecutor,
		Payload: &schema.QueryExecution{Query: ""},
	}
	assert.False(t, client.SendNow(context.Background(), env))
	assert.Zero(t, sink.Len())
}

func TestClient_SendNow_RetriesTransientFailure(t *testing.T) {
	client, sink := newMemoryClient(t, config.Config{RetryBaseDelay: time.Millisecond})
	sink.FailNext(1, &bcerrors.TransportError{Op: "post", Err: errors.New("connection reset")})

	ok := client.SendNow(context.Background(), queryEnvelope(t))
	require.True(t, ok)
	assert.Equal(t, 1, sink.Len())
}

// Three consecutive transient failures exhaust the allowed attempts; the
// next send proves exactly three attempts were consumed.
func TestClient_SendNow_ExhaustsRetries(t *testing.T) {
	client, sink := newMemoryClient(t, config.Config{RetryBaseDelay: time.Millisecond})
	sink.FailNext(3, &bcerrors.TransportError{Op: "post", Err: errors.New("connection reset")})

	assert.False(t, client.SendNow(context.Background(), queryEnvelope(t)))
	assert.Zero(t, sink.Len())

	assert.True(t, client.SendNow(context.Background(), queryEnvelope(t)))
	assert.Equal(t, 1, sink.Len())
}

// A terminal failure is not retried even though attempts remain: a single
// injected failure would be healed by one retry, so a false return proves
// no retry happened.
func TestClient_SendNow_TerminalFailureNoRetry(t *testing.T) {
	client, sink := newMemoryClient(t, config.Config{RetryBaseDelay: time.Millisecond})
	sink.FailNext(1, &bcerrors.HTTPError{StatusCode: 404, Message: "not found"})

	assert.False(t, client.SendNow(context.Background(), queryEnvelope(t)))
	assert.Zero(t, sink.Len())
}

func TestClient_SendNow_AfterClose(t *testing.T) {
	client, sink := newMemoryClient(t, config.Config{})
	require.NoError(t, client.Close())

	assert.False(t, client.SendNow(context.Background(), queryEnvelope(t)))
	assert.Zero(t, sink.Len())
}

func TestClient_Enqueue_BatchSizeTriggersFlush(t *testing.T) {
	client, sink := newMemoryClient(t, config.Config{
		BatchSize:     3,
		FlushInterval: time.Minute,
	})

	for i := 0; i < 3; i++ {
		client.Enqueue(queryEnvelope(t))
	}

	// The interval is a minute out, so only the batch trigger can flush.
	require.Eventually(t, func() bool { return sink.Len() == 3 },
		2*time.Second, 5*time.Millisecond)
}

func TestClient_Enqueue_IntervalFlushesPartialBatch(t *testing.T) {
	client, sink := newMemoryClient(t, config.Config{
		BatchSize:     100,
		FlushInterval: 20 * time.Millisecond,
	})

	client.Enqueue(queryEnvelope(t))
	client.Enqueue(queryEnvelope(t))

	require.Eventually(t, func() bool { return sink.Len() == 2 },
		2*time.Second, 5*time.Millisecond)
}

func TestClient_Enqueue_NilIgnored(t *testing.T) {
	client, sink := newMemoryClient(t, config.Config{FlushInterval: 10 * time.Millisecond})
	client.Enqueue(nil)
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, sink.Len())
}

func TestClient_Enqueue_AfterCloseNoop(t *testing.T) {
	client, sink := newMemoryClient(t, config.Config{})
	require.NoError(t, client.Close())

	client.Enqueue(queryEnvelope(t))
	assert.Zero(t, sink.Len())
}

func TestClient_EnqueueMap_CoercesTypedPayload(t *testing.T) {
	client, sink := newMemoryClient(t, config.Config{
		BatchSize:     100,
		FlushInterval: time.Minute,
	})

	client.EnqueueMap(schema.KindQueryExecution, map[string]any{
		"query":             "population of portland",
		"results_count":     3,
		"execution_time_ms": 12.5,
		"data_source":       "warehouse",
	})
	require.NoError(t, client.Close())

	payload, ok := lastEvent(t, sink).Payload.(*schema.QueryExecution)
	require.True(t, ok)
	assert.Equal(t, "population of portland", payload.Query)
	assert.Equal(t, 3, payload.ResultsCount)
	assert.Equal(t, "warehouse", payload.DataSource)
}

// Fields that do not fit the variant ride along as opaque data instead of
// being dropped.
func TestClient_EnqueueMap_FallsBackToOpaque(t *testing.T) {
	client, sink := newMemoryClient(t, config.Config{
		BatchSize:     100,
		FlushInterval: time.Minute,
	})

	client.EnqueueMap(schema.KindQueryExecution, map[string]any{
		"query":         "population of portland",
		"results_count": "many",
	})
	require.NoError(t, client.Close())

	payload, ok := lastEvent(t, sink).Payload.(schema.Opaque)
	require.True(t, ok)
	assert.Equal(t, "many", payload["results_count"])
}

// Close drains everything still queued, not just one batch.
func TestClient_Close_DrainsQueue(t *testing.T) {
	client, sink := newMemoryClient(t, config.Config{
		BatchSize:     100,
		FlushInterval: time.Minute,
	})

	for i := 0; i < 7; i++ {
		client.Enqueue(queryEnvelope(t))
	}
	require.NoError(t, client.Close())

	assert.Equal(t, 7, sink.Len())
}

func TestClient_Close_Idempotent(t *testing.T) {
	client, _ := newMemoryClient(t, config.Config{})
	require.NoError(t, client.Close())
	require.NoError(t, client.Close())
}

// Close without any Enqueue must not wait on a flush goroutine that was
// never started.
func TestClient_Close_WithoutEnqueue(t *testing.T) {
	client, _ := newMemoryClient(t, config.Config{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = client.Close()
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close blocked without a running flush goroutine")
	}
}

// Concurrent producers plus Close must account for every event exactly
// once.
func TestClient_ConcurrentEnqueue(t *testing.T) {
	client, sink := newMemoryClient(t, config.Config{
		BatchSize:     10,
		FlushInterval: 10 * time.Millisecond,
	})
	env := queryEnvelope(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				client.Enqueue(env)
			}
		}()
	}
	wg.Wait()
	require.NoError(t, client.Close())

	assert.Equal(t, 200, sink.Len())
}
