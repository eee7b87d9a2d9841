package cascade

import (
	"context"
	"errors"
	"time"
)

// Defaults for identifier generation retries
const (
	DefaultIDAttempts   = 5
	DefaultIDBaseDelay  = 2 * time.Millisecond
	DefaultIDMaxDelay   = 50 * time.Millisecond
	DefaultIDMultiplier = 2.0
)

// errRetry marks a failed attempt that may succeed on the next try
var errRetry = errors.New("retryable")

// RetryConfig configures exponential backoff retry behavior
type RetryConfig struct {
	MaxRetries int           // Maximum number of attempts
	BaseDelay  time.Duration // Initial delay between attempts
	MaxDelay   time.Duration // Maximum delay between attempts
	Multiplier float64       // Exponential backoff multiplier
}

// DefaultRetryConfig returns the identifier generation defaults
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: DefaultIDAttempts,
		BaseDelay:  DefaultIDBaseDelay,
		MaxDelay:   DefaultIDMaxDelay,
		Multiplier: DefaultIDMultiplier,
	}
}

// retryWithBackoff calls fn until it succeeds, fails with an error that is not
// errRetry, or runs out of attempts. The last errRetry error is returned on
// exhaustion. Retry is skipped on context cancellation.
func retryWithBackoff[T any](ctx context.Context, config RetryConfig, fn func() (T, error)) (T, int, error) {
	var lastErr error
	var zero T
	backoff := config.BaseDelay

	attempt := 0
	for attempt < config.MaxRetries {
		attempt++
		result, err := fn()
		if err == nil {
			return result, attempt, nil
		}
		if !errors.Is(err, errRetry) {
			return zero, attempt, err
		}

		lastErr = err

		// Don't retry on context cancellation
		if ctx.Err() != nil {
			return zero, attempt, ctx.Err()
		}

		// Apply exponential backoff before next retry
		if attempt < config.MaxRetries {
			select {
			case <-ctx.Done():
				return zero, attempt, ctx.Err()
			case <-time.After(backoff):
				backoff = time.Duration(float64(backoff) * config.Multiplier)
				if backoff > config.MaxDelay {
					backoff = config.MaxDelay
				}
			}
		}
	}

	return zero, attempt, lastErr
}
