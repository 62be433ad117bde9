package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	bcerrors "github.com/randalmurphal/beacon/pkg/beacon/errors"
	"github.com/randalmurphal/beacon/pkg/beacon/schema"
)

// userAgent identifies the library on the wire.
const userAgent = "beacon/1.0"

// collectPath is the collection route appended to the base URL.
const collectPath = "/collect"

// maxErrorBody bounds how much of an error response is kept for messages.
const maxErrorBody = 512

// HTTPSink posts envelopes to a collection service.
type HTTPSink struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// Compile-time interface check.
var _ Sink = (*HTTPSink)(nil)

// HTTPSinkConfig configures an HTTPSink.
type HTTPSinkConfig struct {
	// BaseURL of the collection service; the /collect route is appended.
	BaseURL string

	// APIKey is sent as X-API-Key when non-empty.
	APIKey string

	// Timeout bounds each POST.
	// Default: 5s
	Timeout time.Duration

	// Client replaces the underlying HTTP client. When set, Timeout is
	// ignored.
	Client *http.Client
}

// NewHTTPSink creates a sink that posts to cfg.BaseURL + "/collect".
func NewHTTPSink(cfg HTTPSinkConfig) *HTTPSink {
	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	return &HTTPSink{
		endpoint: strings.TrimSuffix(cfg.BaseURL, "/") + collectPath,
		apiKey:   cfg.APIKey,
		client:   client,
	}
}

// Endpoint returns the resolved collection URL.
func (s *HTTPSink) Endpoint() string {
	return s.endpoint
}

// Send implements Sink. Only a 200 response counts as acceptance: anything
// else comes back as a *errors.HTTPError, and failures before a status was
// received are wrapped in *errors.TransportError so the retry policy can
// tell them apart.
func (s *HTTPSink) Send(ctx context.Context, env *schema.Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return &bcerrors.SchemaError{Field: "data", Message: "payload is not serializable: " + err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return &bcerrors.TransportError{Op: "request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if s.apiKey != "" {
		req.Header.Set("X-API-Key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return &bcerrors.TransportError{Op: "post", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &bcerrors.HTTPError{
		StatusCode: resp.StatusCode,
		Endpoint:   s.endpoint,
		Message:    strings.TrimSpace(string(msg)),
	}
}

// Close implements Sink.
func (s *HTTPSink) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
