package middleware

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/modelflowai/modelflow/providers/ai"
)

// RetryConfig holds the tuning parameters for the retry middleware. Zero
// values are replaced with the defaults documented below when NewRetry is
// called.
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts after the first
	// failure. A value of 2 means the provider is called at most 3 times.
	// Default: 2. Use a negative value to disable retries entirely.
	MaxRetries int

	// InitialBackoff is the wait duration before the first retry attempt.
	// Default: 250ms.
	InitialBackoff time.Duration

	// MaxBackoff caps the computed backoff so it never exceeds this value.
	// Default: 30s.
	MaxBackoff time.Duration

	// BackoffFactor is the exponential growth multiplier applied to
	// InitialBackoff on successive retries. Default: 2.0.
	BackoffFactor float64

	// JitterFraction adds random noise to the computed backoff in the range
	// [0, JitterFraction * backoff] to avoid thundering-herd problems.
	// Default: 0.1 (10% jitter).
	JitterFraction float64

	// RetryableFunc returns true when an error should trigger a retry. The
	// default retries rate limits and server-side failures
	// (*ai.HTTPError with status 429/5xx) and network timeouts
	// (*ai.TimeoutError).
	RetryableFunc func(error) bool
}

// defaultRetryableFunc retries transient failures: 429/5xx provider statuses
// and network timeouts. Provider-reported stream errors, malformed bodies,
// and credential problems are not retried.
func defaultRetryableFunc(err error) bool {
	var httpErr *ai.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Temporary()
	}

	var timeoutErr *ai.TimeoutError
	return errors.As(err, &timeoutErr)
}

// applyRetryDefaults fills in zero-valued fields in config.
func applyRetryDefaults(config *RetryConfig) {
	if config.MaxRetries == 0 {
		config.MaxRetries = 2
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.InitialBackoff == 0 {
		config.InitialBackoff = 250 * time.Millisecond
	}
	if config.MaxBackoff == 0 {
		config.MaxBackoff = 30 * time.Second
	}
	if config.BackoffFactor == 0 {
		config.BackoffFactor = 2.0
	}
	if config.JitterFraction == 0 {
		config.JitterFraction = 0.1
	}
	if config.RetryableFunc == nil {
		config.RetryableFunc = defaultRetryableFunc
	}
}

// computeBackoff returns the backoff duration for the given attempt
// (0-indexed): min(InitialBackoff * BackoffFactor^attempt, MaxBackoff) + jitter.
func computeBackoff(config RetryConfig, attempt int) time.Duration {
	base := float64(config.InitialBackoff) * math.Pow(config.BackoffFactor, float64(attempt))
	if base > float64(config.MaxBackoff) {
		base = float64(config.MaxBackoff)
	}

	jitter := base * config.JitterFraction * rand.Float64() //nolint:gosec // non-cryptographic jitter is intentional
	return time.Duration(base + jitter)
}

// NewRetry constructs a middleware Config that retries failed calls
// according to the supplied RetryConfig. Zero-valued fields are replaced
// with safe defaults (see RetryConfig documentation).
//
// All three paths are covered. For streams only the request establishment
// is retried: once a TextStream has been handed to the caller, chunks have
// potentially been observed and a mid-stream failure cannot be transparently
// replayed.
//
// On exhaustion the returned error wraps both [ErrRetryExhausted] and the
// last provider error, allowing callers to unwrap either.
func NewRetry(config RetryConfig) Config {
	applyRetryDefaults(&config)

	return Config{
		Send: func(next SendFunc) SendFunc {
			return func(ctx context.Context, request ai.GenerateRequest) (*ai.GenerateResult, error) {
				return retryCall(ctx, config, func() (*ai.GenerateResult, error) {
					return next(ctx, request)
				})
			}
		},
		Stream: func(next StreamFunc) StreamFunc {
			return func(ctx context.Context, request ai.GenerateRequest) (*ai.TextStream, error) {
				return retryCall(ctx, config, func() (*ai.TextStream, error) {
					return next(ctx, request)
				})
			}
		},
		Embed: func(next EmbedFunc) EmbedFunc {
			return func(ctx context.Context, request ai.EmbeddingRequest) (*ai.EmbeddingResult, error) {
				return retryCall(ctx, config, func() (*ai.EmbeddingResult, error) {
					return next(ctx, request)
				})
			}
		},
	}
}

// retryCall runs call up to 1+MaxRetries times, backing off between attempts
// and respecting context cancellation while waiting.
func retryCall[Result any](ctx context.Context, config RetryConfig, call func() (Result, error)) (Result, error) {
	var zero Result
	var lastErr error

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := computeBackoff(config, attempt-1)
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(backoff):
			}
		}

		result, err := call()
		if err == nil {
			return result, nil
		}

		lastErr = err

		if !config.RetryableFunc(err) {
			return zero, err
		}
	}

	return zero, fmt.Errorf("%w after %d retries: %w", ErrRetryExhausted, config.MaxRetries, lastErr)
}
