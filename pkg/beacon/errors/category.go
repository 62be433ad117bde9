// Package errors provides the failure taxonomy and retry machinery for
// event delivery.
//
// The package implements a two-layer approach:
//   - Categorization: classify a delivery failure as retryable or terminal
//   - Retry: bounded attempts with exponential backoff for retryable failures
package errors

import (
	"context"
	"errors"
)

// Category represents how a delivery failure should be handled.
type Category int

const (
	// CategoryRetryable indicates another attempt may succeed.
	// Examples: connection refused, request timeout, HTTP 5xx.
	CategoryRetryable Category = iota

	// CategoryTerminal indicates retrying will not help.
	// Examples: HTTP 4xx rejections, schema violations, cancelled contexts.
	CategoryTerminal
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryRetryable:
		return "retryable"
	case CategoryTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Categorize determines how a delivery failure should be handled.
//
// HTTP statuses at or above 500 are retryable; every other status is a
// terminal rejection. This includes non-200 2xx responses, matching the
// collector contract where only 200 means accepted. Unrecognized error
// types are terminal, so sinks must wrap network failures in
// TransportError to opt in to retries.
func Categorize(err error) Category {
	if err == nil {
		return CategoryTerminal // shouldn't happen, fail safe
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return CategoryRetryable
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode >= 500 {
			return CategoryRetryable
		}
		return CategoryTerminal
	}

	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) {
		return CategoryTerminal
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CategoryTerminal
	}

	return CategoryTerminal
}

// IsRetryable reports whether the failure should be retried.
func IsRetryable(err error) bool {
	return Categorize(err) == CategoryRetryable
}
