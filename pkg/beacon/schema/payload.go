package schema

import (
	"fmt"
	"time"

	bcerrors "github.com/randalmurphal/beacon/pkg/beacon/errors"
)

// Payload is the kind-specific data carried inside an envelope.
// Implementations live in this package only; the variant set is closed.
type Payload interface {
	// Validate checks field constraints and returns a *errors.SchemaError
	// describing the first violation.
	Validate() error

	payload()
}

// Timestamp is a time.Time that marshals as ISO-8601 UTC with millisecond
// precision, the canonical wire form for the collection endpoint.
type Timestamp time.Time

const wireTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).UTC().Format(wireTimeLayout) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler. It accepts any RFC 3339 form.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("timestamp must be a JSON string")
	}
	parsed, err := time.Parse(time.RFC3339, string(b[1:len(b)-1]))
	if err != nil {
		return err
	}
	*t = Timestamp(parsed.UTC())
	return nil
}

// Time returns the underlying time.
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// Base carries the fields common to every structured payload.
type Base struct {
	// Timestamp defaults to the construction time in UTC.
	Timestamp Timestamp `json:"timestamp"`

	// ProcessingTimeMS is optional and must be non-negative when present.
	ProcessingTimeMS *float64 `json:"processing_time_ms,omitempty"`
}

func (Base) payload() {}

// stampTime fills a zero timestamp with the current UTC time.
func (b *Base) stampTime() {
	if time.Time(b.Timestamp).IsZero() {
		b.Timestamp = Timestamp(time.Now().UTC())
	}
}

func (b *Base) validateBase() error {
	if b.ProcessingTimeMS != nil && *b.ProcessingTimeMS < 0 {
		return &bcerrors.SchemaError{Field: "processing_time_ms", Message: "must be >= 0"}
	}
	return nil
}

// stamper is satisfied by structured payloads via their embedded Base.
type stamper interface {
	stampTime()
}

// MatchType classifies how a pattern matched a query.
type MatchType string

const (
	MatchExact    MatchType = "exact"
	MatchFuzzy    MatchType = "fuzzy"
	MatchSemantic MatchType = "semantic"
)

// Valid reports whether m is a recognized match type.
func (m MatchType) Valid() bool {
	switch m {
	case MatchExact, MatchFuzzy, MatchSemantic:
		return true
	}
	return false
}

// QueryErrorType classifies a query execution failure.
type QueryErrorType string

const (
	QueryErrorTimeout    QueryErrorType = "timeout"
	QueryErrorConnection QueryErrorType = "connection"
	QueryErrorValidation QueryErrorType = "validation"
	QueryErrorUnknown    QueryErrorType = "unknown"
)

// Valid reports whether t is a recognized query error type.
func (t QueryErrorType) Valid() bool {
	switch t {
	case QueryErrorTimeout, QueryErrorConnection, QueryErrorValidation, QueryErrorUnknown:
		return true
	}
	return false
}

// PatternMatch reports a successful pattern match against a query.
type PatternMatch struct {
	Base
	Query               string    `json:"query"`
	Pattern             string    `json:"pattern"`
	Confidence          float64   `json:"confidence"`
	MatchType           MatchType `json:"match_type"`
	ConfidenceThreshold *float64  `json:"confidence_threshold,omitempty"`
	ClosestMatches      []string  `json:"closest_matches,omitempty"`
}

// Validate implements Payload.
func (p *PatternMatch) Validate() error {
	if p.Query == "" {
		return &bcerrors.SchemaError{Field: "query", Message: "must not be empty"}
	}
	if p.Pattern == "" {
		return &bcerrors.SchemaError{Field: "pattern", Message: "must not be empty"}
	}
	if p.Confidence < 0.0 || p.Confidence > 1.0 {
		return &bcerrors.SchemaError{Field: "confidence", Message: "must be between 0.0 and 1.0"}
	}
	if !p.MatchType.Valid() {
		return &bcerrors.SchemaError{Field: "match_type", Message: "must be one of exact, fuzzy, semantic"}
	}
	return p.validateBase()
}

// PatternNoMatch reports a query that matched no pattern.
type PatternNoMatch struct {
	Base
	Query               string   `json:"query"`
	ConfidenceThreshold *float64 `json:"confidence_threshold,omitempty"`
	ClosestMatches      []string `json:"closest_matches,omitempty"`
}

// Validate implements Payload.
func (p *PatternNoMatch) Validate() error {
	if p.Query == "" {
		return &bcerrors.SchemaError{Field: "query", Message: "must not be empty"}
	}
	return p.validateBase()
}

// PatternLoad reports a pattern set being (re)loaded by the matcher.
type PatternLoad struct {
	Base
	PatternCount         int     `json:"pattern_count"`
	Version              string  `json:"version"`
	LoadDurationSeconds  float64 `json:"load_duration_seconds"`
	ValidationErrorCount int     `json:"validation_error_count"`
}

// Validate implements Payload.
func (p *PatternLoad) Validate() error {
	if p.PatternCount < 0 {
		return &bcerrors.SchemaError{Field: "pattern_count", Message: "must be >= 0"}
	}
	if p.Version == "" {
		return &bcerrors.SchemaError{Field: "version", Message: "must not be empty"}
	}
	if p.LoadDurationSeconds < 0 {
		return &bcerrors.SchemaError{Field: "load_duration_seconds", Message: "must be >= 0"}
	}
	if p.ValidationErrorCount < 0 {
		return &bcerrors.SchemaError{Field: "validation_error_count", Message: "must be >= 0"}
	}
	return p.validateBase()
}

// QueryExecution reports a completed data-source query.
type QueryExecution struct {
	Base
	Query           string   `json:"query"`
	ResultsCount    int      `json:"results_count"`
	ExecutionTimeMS float64  `json:"execution_time_ms"`
	DataSource      string   `json:"data_source"`
	FiltersApplied  []string `json:"filters_applied,omitempty"`
}

// Validate implements Payload.
func (p *QueryExecution) Validate() error {
	if p.ResultsCount < 0 {
		return &bcerrors.SchemaError{Field: "results_count", Message: "must be >= 0"}
	}
	if p.ExecutionTimeMS < 0 {
		return &bcerrors.SchemaError{Field: "execution_time_ms", Message: "must be >= 0"}
	}
	if p.DataSource == "" {
		return &bcerrors.SchemaError{Field: "data_source", Message: "must not be empty"}
	}
	return p.validateBase()
}

// QueryError reports a failed data-source query.
type QueryError struct {
	Base
	Query           string         `json:"query"`
	ErrorType       QueryErrorType `json:"error_type"`
	ErrorMessage    string         `json:"error_message"`
	ExecutionTimeMS float64        `json:"execution_time_ms"`
}

// Validate implements Payload.
func (p *QueryError) Validate() error {
	if !p.ErrorType.Valid() {
		return &bcerrors.SchemaError{Field: "error_type", Message: "must be one of timeout, connection, validation, unknown"}
	}
	if p.ErrorMessage == "" {
		return &bcerrors.SchemaError{Field: "error_message", Message: "must not be empty"}
	}
	if p.ExecutionTimeMS < 0 {
		return &bcerrors.SchemaError{Field: "execution_time_ms", Message: "must be >= 0"}
	}
	return p.validateBase()
}

// QueryInterpretation reports a natural-language query being rewritten.
type QueryInterpretation struct {
	Base
	OriginalQuery            string  `json:"original_query"`
	InterpretedQuery         string  `json:"interpreted_query"`
	InterpretationConfidence float64 `json:"interpretation_confidence"`
}

// Validate implements Payload.
func (p *QueryInterpretation) Validate() error {
	if p.InterpretationConfidence < 0.0 || p.InterpretationConfidence > 1.0 {
		return &bcerrors.SchemaError{Field: "interpretation_confidence", Message: "must be between 0.0 and 1.0"}
	}
	return p.validateBase()
}

// SearchRequest reports an inbound search at the gateway.
type SearchRequest struct {
	Base
	Query     string `json:"query"`
	UserID    string `json:"user_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// Validate implements Payload.
func (p *SearchRequest) Validate() error {
	return p.validateBase()
}

// RateLimitHit reports a caller tripping a gateway rate limit.
type RateLimitHit struct {
	Base
	UserID       string `json:"user_id,omitempty"`
	IPAddress    string `json:"ip_address,omitempty"`
	LimitType    string `json:"limit_type"`
	CurrentCount int    `json:"current_count"`
	Limit        int    `json:"limit"`
}

// Validate implements Payload.
func (p *RateLimitHit) Validate() error {
	if p.LimitType == "" {
		return &bcerrors.SchemaError{Field: "limit_type", Message: "must not be empty"}
	}
	if p.CurrentCount < 0 {
		return &bcerrors.SchemaError{Field: "current_count", Message: "must be >= 0"}
	}
	if p.Limit < 1 {
		return &bcerrors.SchemaError{Field: "limit", Message: "must be >= 1"}
	}
	return p.validateBase()
}

// ServiceLifecycle reports a service starting or stopping. It backs both
// the service_start and service_stop kinds.
type ServiceLifecycle struct {
	Base
	ServiceVersion string   `json:"service_version,omitempty"`
	Environment    string   `json:"environment,omitempty"`
	StartupTimeMS  *float64 `json:"startup_time_ms,omitempty"`
}

// Validate implements Payload.
func (p *ServiceLifecycle) Validate() error {
	if p.StartupTimeMS != nil && *p.StartupTimeMS < 0 {
		return &bcerrors.SchemaError{Field: "startup_time_ms", Message: "must be >= 0"}
	}
	return p.validateBase()
}

// Error reports an arbitrary failure inside a service.
type Error struct {
	Base
	ErrorType    string         `json:"error_type"`
	ErrorMessage string         `json:"error_message"`
	StackTrace   string         `json:"stack_trace,omitempty"`
	Context      map[string]any `json:"context,omitempty"`
}

// Validate implements Payload.
func (p *Error) Validate() error {
	if p.ErrorType == "" {
		return &bcerrors.SchemaError{Field: "error_type", Message: "must not be empty"}
	}
	if p.ErrorMessage == "" {
		return &bcerrors.SchemaError{Field: "error_message", Message: "must not be empty"}
	}
	return p.validateBase()
}

// Opaque is the coercion fallback: an uninterpreted key/value payload used
// when an untyped map cannot be decoded into the variant its kind demands.
// It is never constructed directly by factories.
type Opaque map[string]any

func (Opaque) payload() {}

// Validate implements Payload. Opaque payloads carry no constraints.
func (Opaque) Validate() error {
	return nil
}
