package middleware

import (
	"context"

	"github.com/modelflowai/modelflow/providers/ai"
)

// SendFunc is a function that performs a blocking generation call. It is the
// base unit threaded through the send middleware chain.
type SendFunc func(ctx context.Context, request ai.GenerateRequest) (*ai.GenerateResult, error)

// StreamFunc is a function that opens a streaming generation call and returns
// a TextStream for incremental delivery. It is the base unit threaded through
// the stream middleware chain.
type StreamFunc func(ctx context.Context, request ai.GenerateRequest) (*ai.TextStream, error)

// EmbedFunc is a function that performs a blocking embeddings call. It is the
// base unit threaded through the embed middleware chain.
type EmbedFunc func(ctx context.Context, request ai.EmbeddingRequest) (*ai.EmbeddingResult, error)

// Middleware intercepts and optionally transforms blocking generation calls.
// Each Middleware receives the next SendFunc in the chain and returns a new
// SendFunc that wraps it.
type Middleware func(next SendFunc) SendFunc

// StreamMiddleware is the streaming counterpart of Middleware. It may wrap
// the returned TextStream to observe or transform the delta sequence.
type StreamMiddleware func(next StreamFunc) StreamFunc

// EmbedMiddleware is the embeddings counterpart of Middleware.
type EmbedMiddleware func(next EmbedFunc) EmbedFunc

// Config bundles the per-path middlewares of one concern. Any field may be
// nil; calls on that path then bypass this entry entirely.
type Config struct {
	Send   Middleware
	Stream StreamMiddleware
	Embed  EmbedMiddleware
}

// BuildSend constructs the linear send chain over base. Configs are applied
// in reverse order so that configs[0] is the outermost wrapper, i.e. the
// first to execute on an incoming request.
func BuildSend(base SendFunc, configs []Config) SendFunc {
	chain := base
	for i := len(configs) - 1; i >= 0; i-- {
		if configs[i].Send != nil {
			chain = configs[i].Send(chain)
		}
	}
	return chain
}

// BuildStream constructs the linear stream chain over base, skipping entries
// with a nil Stream field.
func BuildStream(base StreamFunc, configs []Config) StreamFunc {
	chain := base
	for i := len(configs) - 1; i >= 0; i-- {
		if configs[i].Stream != nil {
			chain = configs[i].Stream(chain)
		}
	}
	return chain
}

// BuildEmbed constructs the linear embed chain over base, skipping entries
// with a nil Embed field.
func BuildEmbed(base EmbedFunc, configs []Config) EmbedFunc {
	chain := base
	for i := len(configs) - 1; i >= 0; i-- {
		if configs[i].Embed != nil {
			chain = configs[i].Embed(chain)
		}
	}
	return chain
}
