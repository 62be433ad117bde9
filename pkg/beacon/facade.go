package beacon

import (
	"context"
	"time"

	"github.com/randalmurphal/beacon/pkg/beacon/observability"
	"github.com/randalmurphal/beacon/pkg/beacon/schema"
)

// EventOption supplies an optional payload field on a facade-built event.
// Options that do not apply to the event being built are ignored.
type EventOption func(*eventOptions)

type eventOptions struct {
	processingTime      *float64
	confidenceThreshold *float64
	closestMatches      []string
	filters             []string
	userID              string
	sessionID           string
	ipAddress           string
	userAgent           string
	limitType           string
	currentCount        int
	limit               int
	stackTrace          string
	errContext          map[string]any
	startupTime         *float64
}

func applyEventOptions(opts []EventOption) eventOptions {
	var o eventOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// WithProcessingTime attaches processing_time_ms. Applies to every event.
func WithProcessingTime(d time.Duration) EventOption {
	return func(o *eventOptions) {
		ms := millis(d)
		o.processingTime = &ms
	}
}

// WithConfidenceThreshold records the threshold the match was judged
// against. Applies to pattern match and no-match events.
func WithConfidenceThreshold(v float64) EventOption {
	return func(o *eventOptions) {
		o.confidenceThreshold = &v
	}
}

// WithClosestMatches records the nearest candidate patterns. Applies to
// pattern match and no-match events.
func WithClosestMatches(matches ...string) EventOption {
	return func(o *eventOptions) {
		o.closestMatches = matches
	}
}

// WithFilters records the filters applied to a query execution.
func WithFilters(filters ...string) EventOption {
	return func(o *eventOptions) {
		o.filters = filters
	}
}

// WithUser attributes the event to a user. Applies to search request and
// rate limit events.
func WithUser(userID string) EventOption {
	return func(o *eventOptions) {
		o.userID = userID
	}
}

// WithSession attributes a search request to a session.
func WithSession(sessionID string) EventOption {
	return func(o *eventOptions) {
		o.sessionID = sessionID
	}
}

// WithClientInfo records the caller's address and user agent. Applies to
// search request events; rate limit events keep the address only.
func WithClientInfo(ipAddress, userAgent string) EventOption {
	return func(o *eventOptions) {
		o.ipAddress = ipAddress
		o.userAgent = userAgent
	}
}

// WithLimit overrides the rate limit descriptor on a rate limit event.
func WithLimit(limitType string, currentCount, limit int) EventOption {
	return func(o *eventOptions) {
		o.limitType = limitType
		o.currentCount = currentCount
		o.limit = limit
	}
}

// WithStackTrace attaches a stack trace to an error event.
func WithStackTrace(trace string) EventOption {
	return func(o *eventOptions) {
		o.stackTrace = trace
	}
}

// WithErrorContext attaches arbitrary key/value context to an error event.
func WithErrorContext(kv map[string]any) EventOption {
	return func(o *eventOptions) {
		o.errContext = kv
	}
}

// WithStartupTime records how long startup took on a service start event.
func WithStartupTime(d time.Duration) EventOption {
	return func(o *eventOptions) {
		ms := millis(d)
		o.startupTime = &ms
	}
}

// facade fixes a service identity over a client. Every method requests
// immediate delivery through SendNow; batching stays a client policy.
type facade struct {
	client  *Client
	service schema.ServiceIdentity
}

// send constructs one event and delivers it. Construction failures are
// absorbed into a false return the same way delivery failures are.
func (f facade) send(ctx context.Context, kind schema.EventKind, payload schema.Payload) bool {
	if f.client == nil {
		return false
	}
	env, err := schema.NewEnvelope(kind, f.service, payload)
	if err != nil {
		observability.LogValidationFailure(f.client.logger, kind, err)
		return false
	}
	return f.client.SendNow(ctx, env)
}

// LogError reports an arbitrary failure inside the service.
func (f facade) LogError(ctx context.Context, errorType, errorMessage string, opts ...EventOption) bool {
	o := applyEventOptions(opts)
	return f.send(ctx, schema.KindError, &schema.Error{
		Base:         schema.Base{ProcessingTimeMS: o.processingTime},
		ErrorType:    errorType,
		ErrorMessage: errorMessage,
		StackTrace:   o.stackTrace,
		Context:      o.errContext,
	})
}

// ServiceStarted reports the service coming up.
func (f facade) ServiceStarted(ctx context.Context, version, environment string, opts ...EventOption) bool {
	o := applyEventOptions(opts)
	return f.send(ctx, schema.KindServiceStart, &schema.ServiceLifecycle{
		ServiceVersion: version,
		Environment:    environment,
		StartupTimeMS:  o.startupTime,
	})
}

// ServiceStopped reports the service shutting down.
func (f facade) ServiceStopped(ctx context.Context, version, environment string) bool {
	return f.send(ctx, schema.KindServiceStop, &schema.ServiceLifecycle{
		ServiceVersion: version,
		Environment:    environment,
	})
}

// PatternMatcher emits events for the pattern-matcher service.
type PatternMatcher struct{ facade }

// NewPatternMatcher returns a facade bound to the pattern-matcher identity.
func NewPatternMatcher(client *Client) PatternMatcher {
	return PatternMatcher{facade{client: client, service: schema.ServicePatternMatcher}}
}

// PatternFound reports a successful pattern match.
func (f PatternMatcher) PatternFound(ctx context.Context, query, pattern string, confidence float64, matchType schema.MatchType, opts ...EventOption) bool {
	o := applyEventOptions(opts)
	return f.send(ctx, schema.KindPatternMatch, &schema.PatternMatch{
		Base:                schema.Base{ProcessingTimeMS: o.processingTime},
		Query:               query,
		Pattern:             pattern,
		Confidence:          confidence,
		MatchType:           matchType,
		ConfidenceThreshold: o.confidenceThreshold,
		ClosestMatches:      o.closestMatches,
	})
}

// PatternNotFound reports a query that matched no pattern.
func (f PatternMatcher) PatternNotFound(ctx context.Context, query string, opts ...EventOption) bool {
	o := applyEventOptions(opts)
	return f.send(ctx, schema.KindPatternNoMatch, &schema.PatternNoMatch{
		Base:                schema.Base{ProcessingTimeMS: o.processingTime},
		Query:               query,
		ConfidenceThreshold: o.confidenceThreshold,
		ClosestMatches:      o.closestMatches,
	})
}

// QueryExecutor emits events for the query-executor service.
type QueryExecutor struct{ facade }

// NewQueryExecutor returns a facade bound to the query-executor identity.
func NewQueryExecutor(client *Client) QueryExecutor {
	return QueryExecutor{facade{client: client, service: schema.ServiceQueryExecutor}}
}

// QueryExecuted reports a completed data-source query.
func (f QueryExecutor) QueryExecuted(ctx context.Context, query string, resultsCount int, executionTime time.Duration, dataSource string, opts ...EventOption) bool {
	o := applyEventOptions(opts)
	return f.send(ctx, schema.KindQueryExecution, &schema.QueryExecution{
		Base:            schema.Base{ProcessingTimeMS: o.processingTime},
		Query:           query,
		ResultsCount:    resultsCount,
		ExecutionTimeMS: millis(executionTime),
		DataSource:      dataSource,
		FiltersApplied:  o.filters,
	})
}

// QueryFailed reports a failed data-source query.
func (f QueryExecutor) QueryFailed(ctx context.Context, query string, errorType schema.QueryErrorType, errorMessage string, executionTime time.Duration) bool {
	return f.send(ctx, schema.KindQueryError, &schema.QueryError{
		Query:           query,
		ErrorType:       errorType,
		ErrorMessage:    errorMessage,
		ExecutionTimeMS: millis(executionTime),
	})
}

// QueryInterpreter emits events for the query-interpreter service.
type QueryInterpreter struct{ facade }

// NewQueryInterpreter returns a facade bound to the query-interpreter identity.
func NewQueryInterpreter(client *Client) QueryInterpreter {
	return QueryInterpreter{facade{client: client, service: schema.ServiceQueryInterpreter}}
}

// QueryInterpreted reports a natural-language query being rewritten.
func (f QueryInterpreter) QueryInterpreted(ctx context.Context, originalQuery, interpretedQuery string, confidence float64, processingTime time.Duration) bool {
	ms := millis(processingTime)
	return f.send(ctx, schema.KindQueryInterpretation, &schema.QueryInterpretation{
		Base:                     schema.Base{ProcessingTimeMS: &ms},
		OriginalQuery:            originalQuery,
		InterpretedQuery:         interpretedQuery,
		InterpretationConfidence: confidence,
	})
}

// SearchGateway emits events for the search-gateway service.
type SearchGateway struct{ facade }

// NewSearchGateway returns a facade bound to the search-gateway identity.
func NewSearchGateway(client *Client) SearchGateway {
	return SearchGateway{facade{client: client, service: schema.ServiceSearchGateway}}
}

// SearchRequested reports an inbound search.
func (f SearchGateway) SearchRequested(ctx context.Context, query string, opts ...EventOption) bool {
	o := applyEventOptions(opts)
	return f.send(ctx, schema.KindSearchRequest, &schema.SearchRequest{
		Base:      schema.Base{ProcessingTimeMS: o.processingTime},
		Query:     query,
		UserID:    o.userID,
		SessionID: o.sessionID,
		IPAddress: o.ipAddress,
		UserAgent: o.userAgent,
	})
}

// RateLimitHit reports a caller tripping a rate limit. Without WithLimit
// the event describes the default requests_per_minute limit of 60.
func (f SearchGateway) RateLimitHit(ctx context.Context, opts ...EventOption) bool {
	o := applyEventOptions(opts)
	limitType := o.limitType
	if limitType == "" {
		limitType = "requests_per_minute"
	}
	limit := o.limit
	if limit <= 0 {
		limit = 60
	}
	return f.send(ctx, schema.KindRateLimitHit, &schema.RateLimitHit{
		UserID:       o.userID,
		IPAddress:    o.ipAddress,
		LimitType:    limitType,
		CurrentCount: o.currentCount,
		Limit:        limit,
	})
}

// DataCollection emits events for the data-collection service.
type DataCollection struct{ facade }

// NewDataCollection returns a facade bound to the data-collection identity.
func NewDataCollection(client *Client) DataCollection {
	return DataCollection{facade{client: client, service: schema.ServiceDataCollection}}
}

// PatternsLoaded reports a pattern corpus being (re)loaded.
func (f DataCollection) PatternsLoaded(ctx context.Context, patternCount int, version string, loadDuration time.Duration, validationErrorCount int) bool {
	return f.send(ctx, schema.KindPatternLoad, &schema.PatternLoad{
		PatternCount:         patternCount,
		Version:              version,
		LoadDurationSeconds:  loadDuration.Seconds(),
		ValidationErrorCount: validationErrorCount,
	})
}

// ETLPipeline emits events for the etl-pipeline service. The taxonomy has
// no ETL-specific kind; the shared lifecycle and error methods cover it.
type ETLPipeline struct{ facade }

// NewETLPipeline returns a facade bound to the etl-pipeline identity.
func NewETLPipeline(client *Client) ETLPipeline {
	return ETLPipeline{facade{client: client, service: schema.ServiceETLPipeline}}
}
