package schema

import (
	"encoding/json"
	"fmt"

	bcerrors "github.com/randalmurphal/beacon/pkg/beacon/errors"
)

// Envelope is the top-level structure sent to the collection endpoint.
// Treat an envelope as immutable once constructed: it is consumed exactly
// once by the delivery engine and then discarded.
type Envelope struct {
	Kind    EventKind
	Service ServiceIdentity
	Payload Payload
}

// wireEnvelope is the JSON shape the collection endpoint accepts.
type wireEnvelope struct {
	Event   EventKind       `json:"event"`
	Service ServiceIdentity `json:"service"`
	Data    json.RawMessage `json:"data"`
}

// NewEnvelope constructs and validates an envelope. It fails with a
// *errors.SchemaError when the kind or service is outside its closed set,
// when the payload variant does not match the kind, or when a payload
// field constraint is violated. Validation happens here and nowhere later.
func NewEnvelope(kind EventKind, service ServiceIdentity, payload Payload) (*Envelope, error) {
	if payload == nil {
		return nil, &bcerrors.SchemaError{Field: "data", Message: "payload is required"}
	}
	if !kind.Valid() {
		return nil, &bcerrors.SchemaError{Field: "event", Message: fmt.Sprintf("unknown event kind %q", kind)}
	}
	if !service.Valid() {
		return nil, &bcerrors.SchemaError{Field: "service", Message: fmt.Sprintf("unknown service identity %q", service)}
	}
	if !KindAccepts(kind, payload) {
		return nil, &bcerrors.SchemaError{
			Field:   "data",
			Message: fmt.Sprintf("payload %T does not match kind %s", payload, kind),
		}
	}
	if s, ok := payload.(stamper); ok {
		s.stampTime()
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	return &Envelope{Kind: kind, Service: service, Payload: payload}, nil
}

// Validate re-checks an envelope. Factory-built envelopes always pass;
// this guards hand-assembled literals before they reach a sink.
func (e *Envelope) Validate() error {
	if e == nil {
		return &bcerrors.SchemaError{Message: "envelope is nil"}
	}
	if !e.Kind.Valid() {
		return &bcerrors.SchemaError{Field: "event", Message: fmt.Sprintf("unknown event kind %q", e.Kind)}
	}
	if !e.Service.Valid() {
		return &bcerrors.SchemaError{Field: "service", Message: fmt.Sprintf("unknown service identity %q", e.Service)}
	}
	if e.Payload == nil {
		return &bcerrors.SchemaError{Field: "data", Message: "payload is required"}
	}
	if !KindAccepts(e.Kind, e.Payload) {
		return &bcerrors.SchemaError{
			Field:   "data",
			Message: fmt.Sprintf("payload %T does not match kind %s", e.Payload, e.Kind),
		}
	}
	return e.Payload.Validate()
}

// MarshalJSON serializes to the canonical wire form
// {"event": ..., "service": ..., "data": {...}}.
func (e *Envelope) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireEnvelope{
		Event:   e.Kind,
		Service: e.Service,
		Data:    data,
	})
}

// UnmarshalJSON decodes the wire form, coercing data into the variant the
// kind demands and falling back to an Opaque payload when that fails.
func (e *Envelope) UnmarshalJSON(b []byte) error {
	var w wireEnvelope
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	e.Kind = w.Event
	e.Service = w.Service
	e.Payload = decodePayload(w.Event, w.Data)
	return nil
}

// decodePayload attempts the tagged-union decode for kind and falls back
// to Opaque when the kind is unknown or the data does not fit the variant.
func decodePayload(kind EventKind, data json.RawMessage) Payload {
	if proto, ok := PayloadFor(kind); ok {
		if err := json.Unmarshal(data, proto); err == nil {
			if proto.Validate() == nil {
				return proto
			}
		}
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		fields = map[string]any{}
	}
	return Opaque(fields)
}

// FromMap builds an envelope from an untyped field map, coercing the map
// into the payload variant kind demands. When coercion fails the payload
// falls back to Opaque and the second result is true so callers can log
// the degradation; FromMap itself never fails.
func FromMap(kind EventKind, service ServiceIdentity, fields map[string]any) (*Envelope, bool) {
	if proto, ok := PayloadFor(kind); ok {
		if raw, err := json.Marshal(fields); err == nil {
			if err := json.Unmarshal(raw, proto); err == nil {
				if s, okStamp := proto.(stamper); okStamp {
					s.stampTime()
				}
				if proto.Validate() == nil {
					return &Envelope{Kind: kind, Service: service, Payload: proto}, false
				}
			}
		}
	}
	return &Envelope{Kind: kind, Service: service, Payload: Opaque(fields)}, true
}
