// Package openrouter implements the adapter for OpenRouter's unified API.
// OpenRouter speaks the OpenAI-compatible wire format, so the adapter wraps
// the openai engine with OpenRouter's base URL, credentials, and optional
// app attribution headers.
package openrouter

import (
	"os"

	"github.com/modelflowai/modelflow/providers/ai"
	"github.com/modelflowai/modelflow/providers/ai/openai"
)

const defaultBaseURL = "https://openrouter.ai/api/v1"

// Provider implements [ai.Provider], [ai.StreamProvider] and
// [ai.EmbeddingProvider] for OpenRouter by embedding the OpenAI-compatible
// engine configured for OpenRouter's endpoint.
type Provider struct {
	*openai.Provider
}

// New returns a Provider initialized from environment variables. It reads
// OPENROUTER_API_KEY for authentication and OPENROUTER_API_BASE_URL for the
// endpoint base (defaulting to https://openrouter.ai/api/v1 when unset).
func New() *Provider {
	baseURL := os.Getenv("OPENROUTER_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Provider{openai.NewCompatible(os.Getenv("OPENROUTER_API_KEY"), baseURL)}
}

// WithAppAttribution sets OpenRouter's optional attribution headers, which
// surface the calling application on openrouter.ai rankings. Either argument
// may be empty to skip that header.
func (p *Provider) WithAppAttribution(referer, title string) *Provider {
	if referer != "" {
		p.WithHeader("HTTP-Referer", referer)
	}
	if title != "" {
		p.WithHeader("X-Title", title)
	}
	return p
}

// compile-time interface checks on the embedded engine
var (
	_ ai.Provider          = (*Provider)(nil)
	_ ai.StreamProvider    = (*Provider)(nil)
	_ ai.EmbeddingProvider = (*Provider)(nil)
)
