// Package retry implements bounded retries with exponential backoff and
// jitter. Only idempotent upstream reads go through it; order submission is
// never retried automatically.
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Config controls the retry behavior.
type Config struct {
	Enabled       bool
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	JitterEnabled bool

	// Retryable decides whether an attempt's error is worth another try.
	// A nil predicate retries every error.
	Retryable func(error) bool
}

// DefaultConfig retries twice more after the initial attempt.
var DefaultConfig = Config{
	Enabled:       true,
	MaxAttempts:   3,
	InitialDelay:  100 * time.Millisecond,
	MaxDelay:      2 * time.Second,
	BackoffFactor: 2.0,
	JitterEnabled: true,
}

// Backoff returns the delay before the given attempt (1-based).
func Backoff(attempt int, config Config) time.Duration {
	if attempt <= 0 {
		return 0
	}
	delay := float64(config.InitialDelay) * math.Pow(config.BackoffFactor, float64(attempt-1))
	if delay > float64(config.MaxDelay) {
		delay = float64(config.MaxDelay)
	}
	if config.JitterEnabled {
		jitterFactor := 0.8 + rand.Float64()*0.4
		delay = delay * jitterFactor
	}
	if delay < 0 {
		delay = 0
	}

	return time.Duration(delay)
}

// Do runs fn until it succeeds, the attempts are exhausted, the error is not
// retryable, or the context ends.
func Do(ctx context.Context, config Config, fn func(ctx context.Context) error) error {
	if !config.Enabled {
		return fn(ctx)
	}

	var lastErr error

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := fn(ctx)
		if err == nil {
			return nil
		}

		lastErr = err
		if attempt == config.MaxAttempts {
			break
		}
		if config.Retryable != nil && !config.Retryable(err) {
			break
		}

		delay := Backoff(attempt, config)
		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}
	}

	return lastErr
}
