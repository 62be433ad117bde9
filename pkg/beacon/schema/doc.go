// Package schema defines the event taxonomy and wire format for beacon
// telemetry.
//
// # Overview
//
// Every event is an Envelope: a validated triple of event kind, emitting
// service, and a typed payload. Envelopes marshal to a fixed JSON shape:
//
//	{
//	  "event": "pattern_match",
//	  "service": "pattern-matcher",
//	  "data": { ... }
//	}
//
// The "data" object always carries a millisecond-precision UTC timestamp;
// the remaining fields depend on the event kind.
//
// # Event Kinds
//
// The taxonomy is closed. Each EventKind maps to exactly one payload type,
// registered at init time:
//
//	KindPatternMatch        -> PatternMatch
//	KindPatternNoMatch      -> PatternNoMatch
//	KindPatternLoad         -> PatternLoad
//	KindQueryExecution      -> QueryExecution
//	KindQueryError          -> QueryError
//	KindQueryInterpretation -> QueryInterpretation
//	KindSearchRequest       -> SearchRequest
//	KindRateLimitHit        -> RateLimitHit
//	KindServiceStart        -> ServiceLifecycle
//	KindServiceStop         -> ServiceLifecycle
//	KindError               -> Error
//
// Opaque is the escape hatch: a free-form map payload accepted under any
// kind, used when structured coercion fails or when callers genuinely have
// unstructured data.
//
// # Construction
//
// Use the per-kind factories for compile-time safety:
//
//	env, err := schema.NewPatternMatch(schema.ServicePatternMatcher, schema.PatternMatch{
//		Query:      "find failed logins",
//		Pattern:    "auth.failure",
//		Confidence: 0.93,
//		MatchType:  schema.MatchExact,
//	})
//
// Factories validate kind, service, and payload up front and stamp the
// timestamp if the caller left it zero. FromMap builds an envelope from a
// loose map instead, coercing it into the registered payload type and
// falling back to Opaque when the fields do not fit. FromMap never fails;
// the boolean result is true when the payload fell back to Opaque.
//
// # Validation
//
// Payload validation returns *errors.SchemaError naming the first field
// that violates its constraint. Validation runs once at construction;
// envelopes are treated as immutable afterwards. Envelope.Validate exists
// for the rare case of a hand-built literal.
package schema
