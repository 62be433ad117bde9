package beacon_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/beacon/pkg/beacon"
	"github.com/randalmurphal/beacon/pkg/beacon/config"
	"github.com/randalmurphal/beacon/pkg/beacon/schema"
)

// newHTTPClient builds a client posting to srv through the default HTTP
// sink, with backoff tightened so retry tests stay fast.
func newHTTPClient(t *testing.T, srv *httptest.Server, cfg config.Config) *beacon.Client {
	t.Helper()
	cfg.CollectURL = srv.URL
	if cfg.Service == "" {
		cfg.Service = schema.ServiceQueryExecutor
	}
	if cfg.RetryBaseDelay == 0 {
		cfg.RetryBaseDelay = time.Millisecond
	}
	client, err := beacon.New(cfg, beacon.WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestClient_DeliversOverHTTP(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collect", r.URL.Path)
		assert.Equal(t, "secret-key", r.Header.Get("X-API-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	}))
	defer srv.Close()

	client := newHTTPClient(t, srv, config.Config{APIKey: "secret-key"})
	ok := client.SendNow(context.Background(), queryEnvelope(t))
	require.True(t, ok)

	assert.Equal(t, "query_execution", body["event"])
	assert.Equal(t, "query-executor", body["service"])
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "population of portland", data["query"])
}

func TestClient_RetryThenSuccess(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	client := newHTTPClient(t, srv, config.Config{})
	require.True(t, client.SendNow(context.Background(), queryEnvelope(t)))
	assert.Equal(t, int32(2), hits.Load())
}

func TestClient_RetriesExhausted(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newHTTPClient(t, srv, config.Config{})
	require.False(t, client.SendNow(context.Background(), queryEnvelope(t)))
	assert.Equal(t, int32(3), hits.Load())
}

// Anything but 200 is a failure, and client errors are not worth retrying.
// That includes other 2xx statuses the collection service never sends.
func TestClient_TerminalStatusSingleAttempt(t *testing.T) {
	statuses := []int{
		http.StatusCreated,
		http.StatusNoContent,
		http.StatusBadRequest,
		http.StatusUnauthorized,
		http.StatusNotFound,
	}
	for _, status := range statuses {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(status)
		}))

		client := newHTTPClient(t, srv, config.Config{})
		assert.False(t, client.SendNow(context.Background(), queryEnvelope(t)), "status %d", status)
		assert.Equal(t, int32(1), hits.Load(), "status %d", status)

		require.NoError(t, client.Close())
		srv.Close()
	}
}

// A full batch flushes as one HTTP request per envelope.
func TestClient_BatchFlushOverHTTP(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	client := newHTTPClient(t, srv, config.Config{
		BatchSize:     5,
		FlushInterval: time.Minute,
	})
	for i := 0; i < 5; i++ {
		client.Enqueue(queryEnvelope(t))
	}

	require.Eventually(t, func() bool { return hits.Load() == 5 },
		2*time.Second, 5*time.Millisecond)
}

func TestClient_CloseFlushesPendingOverHTTP(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	client := newHTTPClient(t, srv, config.Config{
		BatchSize:     100,
		FlushInterval: time.Minute,
	})
	for i := 0; i < 7; i++ {
		client.Enqueue(queryEnvelope(t))
	}
	require.NoError(t, client.Close())

	assert.Equal(t, int32(7), hits.Load())
}
