package errors

import (
	"context"
	"time"
)

// RetryConfig configures retry behavior for one logical send.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	MaxAttempts int

	// BaseDelay is the backoff unit. The delay after failed attempt i
	// (0-indexed) is BaseDelay * 2^i: 1s, 2s, 4s with the default unit.
	// No jitter is applied.
	BaseDelay time.Duration

	// MaxDelay caps individual backoff delays. Zero means uncapped.
	MaxDelay time.Duration

	// RetryableFunc optionally overrides the default retryability check.
	RetryableFunc func(error) bool
}

// DefaultRetry matches the collector client defaults.
var DefaultRetry = RetryConfig{
	MaxAttempts: 3,
	BaseDelay:   1 * time.Second,
}

// NoRetry disables retries.
var NoRetry = RetryConfig{
	MaxAttempts: 1,
}

// Do executes fn up to cfg.MaxAttempts times, sleeping an exponentially
// growing delay between attempts. It returns the number of attempts made
// and the error from the last attempt (nil on success).
//
// Backoff sleeps abort promptly when ctx is cancelled; the cancellation
// error is returned so callers can tell an aborted send from an exhausted
// one. Terminal failures return immediately without further attempts.
func Do(ctx context.Context, cfg RetryConfig, fn func(context.Context) error) (int, error) {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	isRetryable := cfg.RetryableFunc
	if isRetryable == nil {
		isRetryable = IsRetryable
	}

	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return attempt, err
		}

		err := fn(ctx)
		if err == nil {
			return attempt + 1, nil
		}
		lastErr = err

		if !isRetryable(err) {
			return attempt + 1, err
		}

		// No sleep after the final attempt.
		if attempt < cfg.MaxAttempts-1 {
			select {
			case <-ctx.Done():
				return attempt + 1, ctx.Err()
			case <-time.After(backoffDelay(cfg, attempt)):
			}
		}
	}

	return cfg.MaxAttempts, lastErr
}

// backoffDelay returns BaseDelay * 2^attempt, capped by MaxDelay when set.
func backoffDelay(cfg RetryConfig, attempt int) time.Duration {
	base := cfg.BaseDelay
	if base <= 0 {
		base = DefaultRetry.BaseDelay
	}

	delay := base
	for i := 0; i < attempt; i++ {
		delay *= 2
		if cfg.MaxDelay > 0 && delay >= cfg.MaxDelay {
			return cfg.MaxDelay
		}
	}
	if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
		return cfg.MaxDelay
	}
	return delay
}
