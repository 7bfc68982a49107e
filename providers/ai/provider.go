package ai

import (
	"context"
	"net/http"
)

// Provider is the core interface every backend adapter must satisfy. It
// covers a single blocking generation round trip: authentication, endpoint
// configuration, request translation, and response normalization.
// Use [StreamProvider] and [EmbeddingProvider] in addition for backends
// that support those capabilities.
type Provider interface {
	// Generate sends a normalized generation request and returns the
	// completed, normalized response. Returns an error if the call fails,
	// the context is cancelled, or the response cannot be decoded.
	Generate(ctx context.Context, request GenerateRequest) (*GenerateResult, error)

	// WithAPIKey sets the API key used for authenticating requests.
	WithAPIKey(apiKey string) Provider

	// WithBaseURL overrides the default base URL for API requests.
	WithBaseURL(baseURL string) Provider

	// WithHTTPClient sets the HTTP client used for outbound requests.
	WithHTTPClient(httpClient *http.Client) Provider
}

// StreamProvider is implemented by adapters that support incremental
// (SSE-based) delivery. Callers detect support via type assertion:
// provider.(StreamProvider). Pre-stream errors (auth, bad request, network)
// are returned as a normal error; mid-stream errors are yielded through the
// returned TextStream.
type StreamProvider interface {
	Provider

	// Stream sends a generation request with streaming enabled and returns
	// a TextStream that yields deltas as they arrive from the backend.
	Stream(ctx context.Context, request GenerateRequest) (*TextStream, error)
}

// EmbeddingProvider is implemented by adapters whose backend exposes an
// embeddings endpoint.
type EmbeddingProvider interface {
	// Embed returns one vector per input string, in input order.
	Embed(ctx context.Context, request EmbeddingRequest) (*EmbeddingResult, error)
}
