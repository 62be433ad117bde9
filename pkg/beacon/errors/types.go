package errors

import "fmt"

// SchemaError indicates an event payload violated a field constraint at
// construction time. It is never produced after an envelope exists.
type SchemaError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("schema violation on %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("schema violation: %s", e.Message)
}

// HTTPError represents a non-success response from the collection endpoint.
// Only HTTP 200 counts as success; every other status becomes an HTTPError.
type HTTPError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("HTTP %d at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// TransportError represents a network-level failure: connection refused,
// timeout, DNS resolution. These are always worth retrying.
type TransportError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *TransportError) Unwrap() error {
	return e.Err
}
