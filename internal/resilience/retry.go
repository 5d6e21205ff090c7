// Package resilience wraps calls to the narrative inference service with
// retry and circuit breaking. The engine itself never retries: answers are
// consumed exactly once. Only idempotent upstream calls go through here.
package resilience

import (
	"context"
	"math"
	"math/rand"
	"time"

	apperrors "github.com/pathlight-labs/pathlight/internal/errors"
)

// RetryConfig holds configuration for retry behavior
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	Jitter        bool
	// Retryable decides whether an error is worth another attempt.
	Retryable func(error) bool
}

// DefaultRetryConfig retries external-service failures up to three times
// with jittered exponential backoff.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  200 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
		Jitter:        true,
		Retryable:     apperrors.IsRetryableError,
	}
}

// Retry executes fn until it succeeds, exhausts the attempt budget, hits a
// non-retryable error, or the context ends. The last error is returned.
func Retry(ctx context.Context, config RetryConfig, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if config.Retryable != nil && !config.Retryable(err) {
			break
		}
		if attempt == config.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay(config, attempt)):
		}
	}
	return lastErr
}

func delay(config RetryConfig, attempt int) time.Duration {
	d := float64(config.InitialDelay) * math.Pow(config.BackoffFactor, float64(attempt))
	if d > float64(config.MaxDelay) {
		d = float64(config.MaxDelay)
	}
	if config.Jitter {
		d = d/2 + rand.Float64()*d/2
	}
	return time.Duration(d)
}
