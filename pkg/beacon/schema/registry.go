package schema

import (
	"fmt"
	"reflect"
)

// kindSpec ties an event kind to the payload variant it demands.
type kindSpec struct {
	newPayload  func() Payload
	payloadType reflect.Type
}

// kindSpecs is the closed kind→variant mapping, populated at init.
// service_start and service_stop share the ServiceLifecycle variant.
var kindSpecs = make(map[EventKind]kindSpec)

func registerKind(kind EventKind, newPayload func() Payload) {
	if _, exists := kindSpecs[kind]; exists {
		panic(fmt.Sprintf("schema: duplicate kind registration %q", kind))
	}
	kindSpecs[kind] = kindSpec{
		newPayload:  newPayload,
		payloadType: reflect.TypeOf(newPayload()),
	}
}

func init() {
	registerKind(KindPatternMatch, func() Payload { return &PatternMatch{} })
	registerKind(KindPatternNoMatch, func() Payload { return &PatternNoMatch{} })
	registerKind(KindPatternLoad, func() Payload { return &PatternLoad{} })
	registerKind(KindQueryExecution, func() Payload { return &QueryExecution{} })
	registerKind(KindQueryError, func() Payload { return &QueryError{} })
	registerKind(KindQueryInterpretation, func() Payload { return &QueryInterpretation{} })
	registerKind(KindSearchRequest, func() Payload { return &SearchRequest{} })
	registerKind(KindRateLimitHit, func() Payload { return &RateLimitHit{} })
	registerKind(KindServiceStart, func() Payload { return &ServiceLifecycle{} })
	registerKind(KindServiceStop, func() Payload { return &ServiceLifecycle{} })
	registerKind(KindError, func() Payload { return &Error{} })
}

// PayloadFor returns a zero payload of the variant kind demands.
func PayloadFor(kind EventKind) (Payload, bool) {
	spec, ok := kindSpecs[kind]
	if !ok {
		return nil, false
	}
	return spec.newPayload(), true
}

// KindAccepts reports whether p is the payload variant kind demands.
// Opaque payloads are accepted for every valid kind: they exist only as
// the coercion fallback and carry no structure to check.
func KindAccepts(kind EventKind, p Payload) bool {
	spec, ok := kindSpecs[kind]
	if !ok {
		return false
	}
	if _, opaque := p.(Opaque); opaque {
		return true
	}
	return reflect.TypeOf(p) == spec.payloadType
}
