// Package track wraps functions to emit execution-outcome events without
// call-site changes.
//
// Wrap decorates any Func[A, R]. On success it derives a query_execution
// (or pattern_match) event from the call via extractor functions; on error
// it emits an error event and returns the original error unchanged. The
// wrapper never alters the wrapped function's behavior: extractor panics
// are absorbed into documented defaults, emission failures are dropped,
// and without a client (explicit or process default) the wrapper is a
// plain passthrough.
package track

import (
	"context"
	"fmt"
	"time"

	"github.com/randalmurphal/beacon/pkg/beacon"
	"github.com/randalmurphal/beacon/pkg/beacon/schema"
)

// Func is the shape of an instrumentable function.
type Func[A, R any] func(context.Context, A) (R, error)

// maxArgRender bounds the argument rendering attached to error events.
const maxArgRender = 200

// Option configures a wrapper built by Wrap.
type Option func(*options)

type options struct {
	client         *beacon.Client
	kind           schema.EventKind
	trackErrors    bool
	background     bool
	dataSource     string
	extractQuery   func(arg, result any) string
	extractCount   func(result any) int
	extractContext func(arg, result any) map[string]any
}

func defaultOptions() options {
	return options{
		kind:        schema.KindQueryExecution,
		trackErrors: true,
		dataSource:  "unknown",
	}
}

// WithClient pins the wrapper to a specific client instead of the process
// default.
func WithClient(c *beacon.Client) Option {
	return func(o *options) {
		o.client = c
	}
}

// WithPatternMatch emits pattern_match events instead of query_execution.
// Pattern, confidence, and match type come from the context extractor's
// "pattern", "confidence", and "match_type" keys.
func WithPatternMatch() Option {
	return func(o *options) {
		o.kind = schema.KindPatternMatch
	}
}

// WithErrorTracking controls whether an error return emits an error event.
// Default: enabled.
func WithErrorTracking(enabled bool) Option {
	return func(o *options) {
		o.trackErrors = enabled
	}
}

// WithBackground emits events from a goroutine instead of inline, so the
// wrapped call never waits on delivery.
func WithBackground() Option {
	return func(o *options) {
		o.background = true
	}
}

// WithDataSource sets the data_source reported on query_execution events.
// A "data_source" key from the context extractor takes precedence.
// Default: "unknown".
func WithDataSource(source string) Option {
	return func(o *options) {
		o.dataSource = source
	}
}

// WithQueryExtractor derives the reported query from the call. A panic or
// empty result falls back to "unknown".
func WithQueryExtractor(fn func(arg, result any) string) Option {
	return func(o *options) {
		o.extractQuery = fn
	}
}

// WithCountExtractor derives the reported results count from the result.
// A panic falls back to 0.
func WithCountExtractor(fn func(result any) int) Option {
	return func(o *options) {
		o.extractCount = fn
	}
}

// WithContextExtractor derives auxiliary payload fields from the call:
// "data_source" for query_execution events; "pattern", "confidence", and
// "match_type" for pattern_match events. A panic falls back to no fields.
func WithContextExtractor(fn func(arg, result any) map[string]any) Option {
	return func(o *options) {
		o.extractContext = fn
	}
}

// Wrap decorates fn so each call emits an execution-outcome event. The
// client is resolved per call: the WithClient option first, then the
// process default; with neither, fn runs undecorated.
func Wrap[A, R any](fn Func[A, R], opts ...Option) Func[A, R] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return func(ctx context.Context, arg A) (R, error) {
		client := o.client
		if client == nil {
			client = beacon.Default()
		}
		if client == nil {
			return fn(ctx, arg)
		}

		start := time.Now()
		result, err := fn(ctx, arg)
		elapsed := time.Since(start)

		if err != nil {
			if o.trackErrors {
				o.emit(ctx, client, errorEnvelope(client.Service(), arg, err))
			}
			return result, err
		}

		o.emit(ctx, client, o.successEnvelope(client.Service(), arg, result, elapsed))
		return result, nil
	}
}

// emit delivers env through the client, inline or in the background.
// A nil env means construction failed; that is absorbed here.
func (o *options) emit(ctx context.Context, client *beacon.Client, env *schema.Envelope) {
	if env == nil {
		return
	}
	if o.background {
		go client.SendNow(context.WithoutCancel(ctx), env)
		return
	}
	client.SendNow(ctx, env)
}

// successEnvelope builds the outcome event for a call that returned nil.
// Construction can still fail validation (for example a pattern_match with
// no extracted match type); the nil return is dropped by emit.
func (o *options) successEnvelope(service schema.ServiceIdentity, arg, result any, elapsed time.Duration) *schema.Envelope {
	query := o.query(arg, result)
	fields := o.fields(arg, result)
	elapsedMS := float64(elapsed) / float64(time.Millisecond)

	if o.kind == schema.KindPatternMatch {
		ms := elapsedMS
		env, err := schema.NewPatternMatch(service, schema.PatternMatch{
			Base:       schema.Base{ProcessingTimeMS: &ms},
			Query:      query,
			Pattern:    stringField(fields, "pattern", "unknown"),
			Confidence: floatField(fields, "confidence", 0),
			MatchType:  schema.MatchType(stringField(fields, "match_type", "unknown")),
		})
		if err != nil {
			return nil
		}
		return env
	}

	env, err := schema.NewQueryExecution(service, schema.QueryExecution{
		Query:           query,
		ResultsCount:    o.count(result),
		ExecutionTimeMS: elapsedMS,
		DataSource:      stringField(fields, "data_source", o.dataSource),
	})
	if err != nil {
		return nil
	}
	return env
}

// errorEnvelope builds the error event for a call that returned non-nil.
func errorEnvelope(service schema.ServiceIdentity, arg any, callErr error) *schema.Envelope {
	env, err := schema.NewError(service, schema.Error{
		ErrorType:    fmt.Sprintf("%T", callErr),
		ErrorMessage: callErr.Error(),
		Context:      map[string]any{"args": renderArg(arg)},
	})
	if err != nil {
		return nil
	}
	return env
}

func (o *options) query(arg, result any) string {
	if o.extractQuery == nil {
		return "unknown"
	}
	q := absorb(func() string { return o.extractQuery(arg, result) }, "")
	if q == "" {
		return "unknown"
	}
	return q
}

func (o *options) count(result any) int {
	if o.extractCount == nil {
		return 0
	}
	return absorb(func() int { return o.extractCount(result) }, 0)
}

func (o *options) fields(arg, result any) map[string]any {
	if o.extractContext == nil {
		return nil
	}
	return absorb(func() map[string]any { return o.extractContext(arg, result) }, nil)
}

// absorb runs fn and substitutes fallback when fn panics.
func absorb[T any](fn func() T, fallback T) (out T) {
	defer func() {
		if recover() != nil {
			out = fallback
		}
	}()
	return fn()
}

func stringField(fields map[string]any, key, fallback string) string {
	if s, ok := fields[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

func floatField(fields map[string]any, key string, fallback float64) float64 {
	switch v := fields[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	}
	return fallback
}

// renderArg formats the call argument for error context, truncated to
// maxArgRender bytes.
func renderArg(arg any) string {
	s := fmt.Sprintf("%v", arg)
	if len(s) > maxArgRender {
		s = s[:maxArgRender]
	}
	return s
}
