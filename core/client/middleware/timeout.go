package middleware

import (
	"context"
	"time"

	"github.com/modelflowai/modelflow/providers/ai"
)

// NewTimeout creates a middleware Config that enforces a per-request deadline
// on blocking, streaming, and embedding provider calls.
//
// For blocking calls the implementation wraps the context with
// context.WithTimeout and defers cancel() — the context is canceled once the
// provider returns or the deadline expires.
//
// For streaming calls the timeout wraps the context before calling next, but
// the cancel function is NOT deferred immediately. Instead it is called once
// the stream is fully consumed, a mid-stream error occurs, or the iterator
// is abandoned. The deadline therefore governs the complete lifetime of the
// stream, not just the time to the first byte.
//
// If the caller supplies a context that already has a shorter deadline, the
// shorter deadline wins as per normal context semantics. An exceeded
// deadline surfaces as *ai.TimeoutError from the transport layer.
func NewTimeout(timeout time.Duration) Config {
	return Config{
		Send: func(next SendFunc) SendFunc {
			return func(ctx context.Context, request ai.GenerateRequest) (*ai.GenerateResult, error) {
				ctx, cancel := context.WithTimeout(ctx, timeout)
				defer cancel()

				return next(ctx, request)
			}
		},
		Stream: buildStreamTimeout(timeout),
		Embed: func(next EmbedFunc) EmbedFunc {
			return func(ctx context.Context, request ai.EmbeddingRequest) (*ai.EmbeddingResult, error) {
				ctx, cancel := context.WithTimeout(ctx, timeout)
				defer cancel()

				return next(ctx, request)
			}
		},
	}
}

// buildStreamTimeout constructs the stream middleware that adds a deadline
// and wraps the resulting TextStream so cancel runs when the stream ends.
func buildStreamTimeout(timeout time.Duration) StreamMiddleware {
	return func(next StreamFunc) StreamFunc {
		return func(ctx context.Context, request ai.GenerateRequest) (*ai.TextStream, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)

			stream, err := next(ctx, request)
			if err != nil {
				// Pre-stream error — cancel immediately.
				cancel()
				return nil, err
			}

			return wrapStreamWithCancel(stream, cancel), nil
		}
	}
}

// wrapStreamWithCancel returns a new TextStream whose iterator calls cancel
// once the inner stream is exhausted, errors, or the caller abandons it.
// Closing the wrapper closes the inner stream and cancels the context.
func wrapStreamWithCancel(stream *ai.TextStream, cancel context.CancelFunc) *ai.TextStream {
	deltas := func(yield func(ai.Delta, error) bool) {
		defer cancel()

		for delta, err := range stream.Deltas() {
			if !yield(delta, err) {
				return // caller broke out of the range loop early
			}
			if err != nil {
				return
			}
		}
	}

	return ai.NewTextStream(deltas, func() error {
		defer cancel()
		return stream.Close()
	})
}
