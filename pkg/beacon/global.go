package beacon

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/randalmurphal/beacon/pkg/beacon/schema"
)

// defaultClient backs the package-level Send.
var defaultClient atomic.Pointer[Client]

// SetDefault installs c as the process-wide default client. Last writer
// wins; passing nil clears the default. The default's lifecycle stays with
// the caller: Close it yourself during shutdown.
func SetDefault(c *Client) {
	defaultClient.Store(c)
}

// Default returns the process-wide default client, or nil when none has
// been set.
func Default() *Client {
	return defaultClient.Load()
}

// Send delivers env through the default client as SendNow would. Without a
// configured default it logs a warning and reports false.
func Send(ctx context.Context, env *schema.Envelope) bool {
	c := Default()
	if c == nil {
		slog.Warn("event dropped: no default client configured")
		return false
	}
	return c.SendNow(ctx, env)
}
