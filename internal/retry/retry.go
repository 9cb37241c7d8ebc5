// Package retry provides exponential-backoff retry, grounded on
// infrastructure/retry from the teacher pack's shared module.
package retry

import (
	"context"
	"strings"
	"time"
)

// Config controls retry behaviour.
type Config struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	IsRetryable  func(error) bool
}

// DefaultConfig matches crawler's retry defaults: 3 attempts, 100ms initial
// delay, 5s cap, 2x multiplier.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2,
		IsRetryable:  DefaultIsRetryable,
	}
}

// DefaultIsRetryable treats common transient network/infra errors as
// retryable by substring match on the error text.
func DefaultIsRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"timeout", "connection refused", "temporary", "eof", "reset by peer"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// Do runs fn up to cfg.MaxAttempts times, sleeping with exponential
// backoff between attempts, stopping early when ctx is cancelled or fn's
// error is not retryable.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if cfg.IsRetryable != nil && !cfg.IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
	return lastErr
}
