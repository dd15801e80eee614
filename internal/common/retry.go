package common

import (
	"context"
	"log/slog"
	"time"
)

// RetryConfig bounds retry-on-transient behavior at a gateway-call boundary.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetry mirrors the gateway policy: 3 attempts, exponential backoff
// between 1s and 10s.
var DefaultRetry = RetryConfig{
	MaxAttempts: 3,
	BaseDelay:   time.Second,
	MaxDelay:    10 * time.Second,
}

// Retry runs fn up to cfg.MaxAttempts times, backing off exponentially between
// attempts. Only transient errors are retried; permanent errors and context
// cancellation return immediately.
func Retry(ctx context.Context, log *slog.Logger, cfg RetryConfig, op string, fn func() error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultRetry.MaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultRetry.BaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultRetry.MaxDelay
	}

	var err error
	delay := cfg.BaseDelay
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !IsTransient(err) || attempt == cfg.MaxAttempts {
			return err
		}
		if log != nil {
			log.Warn("transient error, retrying", "op", op, "attempt", attempt, "delay", delay, "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
	return err
}
