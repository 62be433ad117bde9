package beacon

import "errors"

// Sentinel errors for the client lifecycle.
var (
	// ErrClientClosed describes operations attempted after Close. Callers
	// never receive it: enqueue-after-close is a silent no-op and
	// SendNow-after-close reports false, with the condition logged as the
	// drop reason.
	ErrClientClosed = errors.New("client closed")
)
