package schema

import "fmt"

// EventKind identifies the telemetry event taxonomy. The set is closed:
// every kind maps to exactly one payload variant (see registry.go).
type EventKind string

const (
	KindPatternMatch        EventKind = "pattern_match"
	KindPatternNoMatch      EventKind = "pattern_no_match"
	KindPatternLoad         EventKind = "pattern_load"
	KindQueryExecution      EventKind = "query_execution"
	KindQueryError          EventKind = "query_error"
	KindQueryInterpretation EventKind = "query_interpretation"
	KindSearchRequest       EventKind = "search_request"
	KindRateLimitHit        EventKind = "rate_limit_hit"
	KindServiceStart        EventKind = "service_start"
	KindServiceStop         EventKind = "service_stop"
	KindError               EventKind = "error"
)

// Kinds returns all event kinds in declaration order.
func Kinds() []EventKind {
	return []EventKind{
		KindPatternMatch,
		KindPatternNoMatch,
		KindPatternLoad,
		KindQueryExecution,
		KindQueryError,
		KindQueryInterpretation,
		KindSearchRequest,
		KindRateLimitHit,
		KindServiceStart,
		KindServiceStop,
		KindError,
	}
}

// Valid reports whether k is a member of the closed kind set.
func (k EventKind) Valid() bool {
	switch k {
	case KindPatternMatch, KindPatternNoMatch, KindPatternLoad,
		KindQueryExecution, KindQueryError, KindQueryInterpretation,
		KindSearchRequest, KindRateLimitHit,
		KindServiceStart, KindServiceStop, KindError:
		return true
	}
	return false
}

// String returns the wire value.
func (k EventKind) String() string {
	return string(k)
}

// ParseKind converts a wire value into an EventKind.
func ParseKind(s string) (EventKind, error) {
	k := EventKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown event kind %q", s)
	}
	return k, nil
}

// ServiceIdentity identifies the emitting service. The set is closed and
// matches the services the collection endpoint accepts.
type ServiceIdentity string

const (
	ServiceSearchGateway    ServiceIdentity = "search-gateway"
	ServicePatternMatcher   ServiceIdentity = "pattern-matcher"
	ServiceQueryInterpreter ServiceIdentity = "query-interpreter"
	ServiceQueryExecutor    ServiceIdentity = "query-executor"
	ServiceDataCollection   ServiceIdentity = "data-collection"
	ServiceETLPipeline      ServiceIdentity = "etl-pipeline"
)

// Services returns all service identities in declaration order.
func Services() []ServiceIdentity {
	return []ServiceIdentity{
		ServiceSearchGateway,
		ServicePatternMatcher,
		ServiceQueryInterpreter,
		ServiceQueryExecutor,
		ServiceDataCollection,
		ServiceETLPipeline,
	}
}

// Valid reports whether s is a member of the closed identity set.
func (s ServiceIdentity) Valid() bool {
	switch s {
	case ServiceSearchGateway, ServicePatternMatcher, ServiceQueryInterpreter,
		ServiceQueryExecutor, ServiceDataCollection, ServiceETLPipeline:
		return true
	}
	return false
}

// String returns the wire value.
func (s ServiceIdentity) String() string {
	return string(s)
}

// ParseService converts a wire value into a ServiceIdentity.
func ParseService(s string) (ServiceIdentity, error) {
	id := ServiceIdentity(s)
	if !id.Valid() {
		return "", fmt.Errorf("unknown service identity %q", s)
	}
	return id, nil
}
