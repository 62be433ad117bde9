package schema

// Per-kind factories. Each takes the payload by value so the envelope owns
// its own copy, stamps the timestamp, and validates before returning.

// NewPatternMatch builds a pattern_match envelope.
func NewPatternMatch(service ServiceIdentity, p PatternMatch) (*Envelope, error) {
	return NewEnvelope(KindPatternMatch, service, &p)
}

// NewPatternNoMatch builds a pattern_no_match envelope.
func NewPatternNoMatch(service ServiceIdentity, p PatternNoMatch) (*Envelope, error) {
	return NewEnvelope(KindPatternNoMatch, service, &p)
}

// NewPatternLoad builds a pattern_load envelope.
func NewPatternLoad(service ServiceIdentity, p PatternLoad) (*Envelope, error) {
	return NewEnvelope(KindPatternLoad, service, &p)
}

// NewQueryExecution builds a query_execution envelope.
func NewQueryExecution(service ServiceIdentity, p QueryExecution) (*Envelope, error) {
	return NewEnvelope(KindQueryExecution, service, &p)
}

// NewQueryError builds a query_error envelope.
func NewQueryError(service ServiceIdentity, p QueryError) (*Envelope, error) {
	return NewEnvelope(KindQueryError, service, &p)
}

// NewQueryInterpretation builds a query_interpretation envelope.
func NewQueryInterpretation(service ServiceIdentity, p QueryInterpretation) (*Envelope, error) {
	return NewEnvelope(KindQueryInterpretation, service, &p)
}

// NewSearchRequest builds a search_request envelope.
func NewSearchRequest(service ServiceIdentity, p SearchRequest) (*Envelope, error) {
	return NewEnvelope(KindSearchRequest, service, &p)
}

// NewRateLimitHit builds a rate_limit_hit envelope.
func NewRateLimitHit(service ServiceIdentity, p RateLimitHit) (*Envelope, error) {
	return NewEnvelope(KindRateLimitHit, service, &p)
}

// NewServiceStart builds a service_start envelope.
func NewServiceStart(service ServiceIdentity, p ServiceLifecycle) (*Envelope, error) {
	return NewEnvelope(KindServiceStart, service, &p)
}

// NewServiceStop builds a service_stop envelope.
func NewServiceStop(service ServiceIdentity, p ServiceLifecycle) (*Envelope, error) {
	return NewEnvelope(KindServiceStop, service, &p)
}

// NewError builds an error envelope.
func NewError(service ServiceIdentity, p Error) (*Envelope, error) {
	return NewEnvelope(KindError, service, &p)
}
