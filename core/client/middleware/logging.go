package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/modelflowai/modelflow/providers/ai"
)

// NewLogging creates a middleware Config that emits structured slog entries
// before and after every provider call. For streams the completion entry is
// emitted once the iterator is fully consumed or fails.
//
// Only metadata is logged — model names, durations, token counts, finish
// reasons, and error strings. Prompt and response text never appear in log
// output, and neither do credentials.
//
// The logger parameter must not be nil; use slog.Default() if you have not
// configured a custom logger.
func NewLogging(logger *slog.Logger) Config {
	return Config{
		Send:   buildSendLogging(logger),
		Stream: buildStreamLogging(logger),
		Embed:  buildEmbedLogging(logger),
	}
}

func buildSendLogging(logger *slog.Logger) Middleware {
	return func(next SendFunc) SendFunc {
		return func(ctx context.Context, request ai.GenerateRequest) (*ai.GenerateResult, error) {
			logger.InfoContext(ctx, "llm generate",
				slog.String("model", request.Model),
				slog.Int("messages", len(request.Messages)),
			)

			start := time.Now()
			result, err := next(ctx, request)
			elapsed := time.Since(start)

			if err != nil {
				logger.ErrorContext(ctx, "llm generate failed",
					slog.String("model", request.Model),
					slog.Duration("duration", elapsed),
					slog.String("error", err.Error()),
				)
				return nil, err
			}

			logger.InfoContext(ctx, "llm generate completed",
				resultAttrs(result, elapsed)...,
			)

			return result, nil
		}
	}
}

func buildStreamLogging(logger *slog.Logger) StreamMiddleware {
	return func(next StreamFunc) StreamFunc {
		return func(ctx context.Context, request ai.GenerateRequest) (*ai.TextStream, error) {
			logger.InfoContext(ctx, "llm stream",
				slog.String("model", request.Model),
				slog.Int("messages", len(request.Messages)),
			)

			start := time.Now()
			stream, err := next(ctx, request)
			if err != nil {
				logger.ErrorContext(ctx, "llm stream failed",
					slog.String("model", request.Model),
					slog.Duration("duration", time.Since(start)),
					slog.String("error", err.Error()),
				)
				return nil, err
			}

			return wrapStreamWithLogging(ctx, stream, logger, request.Model, start), nil
		}
	}
}

// wrapStreamWithLogging returns a new TextStream whose iterator logs a
// completion entry when the stream ends, or an error entry on failure.
func wrapStreamWithLogging(ctx context.Context, stream *ai.TextStream, logger *slog.Logger, model string, start time.Time) *ai.TextStream {
	deltas := func(yield func(ai.Delta, error) bool) {
		chunks := 0

		for delta, err := range stream.Deltas() {
			if err != nil {
				logger.ErrorContext(ctx, "llm stream failed",
					slog.String("model", model),
					slog.Duration("duration", time.Since(start)),
					slog.Int("chunks", chunks),
					slog.String("error", err.Error()),
				)
				yield(delta, err)
				return
			}

			if delta.Type == ai.DeltaText {
				chunks++
			}

			if !yield(delta, nil) {
				logger.InfoContext(ctx, "llm stream abandoned",
					slog.String("model", model),
					slog.Duration("duration", time.Since(start)),
					slog.Int("chunks", chunks),
				)
				return
			}
		}

		attrs := []any{
			slog.String("model", model),
			slog.Duration("duration", time.Since(start)),
			slog.Int("chunks", chunks),
		}
		if usage := stream.Usage(); usage != nil {
			attrs = append(attrs,
				slog.Int("prompt_tokens", usage.PromptTokens),
				slog.Int("completion_tokens", usage.CompletionTokens),
			)
		}
		if reason := stream.FinishReason(); reason != "" {
			attrs = append(attrs, slog.String("finish_reason", string(reason)))
		}
		logger.InfoContext(ctx, "llm stream completed", attrs...)
	}

	return ai.NewTextStream(deltas, stream.Close)
}

func buildEmbedLogging(logger *slog.Logger) EmbedMiddleware {
	return func(next EmbedFunc) EmbedFunc {
		return func(ctx context.Context, request ai.EmbeddingRequest) (*ai.EmbeddingResult, error) {
			start := time.Now()
			result, err := next(ctx, request)
			elapsed := time.Since(start)

			if err != nil {
				logger.ErrorContext(ctx, "llm embed failed",
					slog.String("model", request.Model),
					slog.Int("inputs", len(request.Input)),
					slog.Duration("duration", elapsed),
					slog.String("error", err.Error()),
				)
				return nil, err
			}

			logger.InfoContext(ctx, "llm embed completed",
				slog.String("model", result.Model),
				slog.Int("inputs", len(request.Input)),
				slog.Int("vectors", len(result.Embeddings)),
				slog.Duration("duration", elapsed),
			)

			return result, nil
		}
	}
}

// resultAttrs collects the completion log attributes for a blocking call.
func resultAttrs(result *ai.GenerateResult, elapsed time.Duration) []any {
	attrs := []any{
		slog.String("model", result.Model),
		slog.Duration("duration", elapsed),
	}
	if result.FinishReason != "" {
		attrs = append(attrs, slog.String("finish_reason", string(result.FinishReason)))
	}
	if result.Usage != nil {
		attrs = append(attrs,
			slog.Int("prompt_tokens", result.Usage.PromptTokens),
			slog.Int("completion_tokens", result.Usage.CompletionTokens),
			slog.Int("total_tokens", result.Usage.TotalTokens),
		)
	}
	return attrs
}
