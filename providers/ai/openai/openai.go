package openai

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/modelflowai/modelflow/internal/utils"
	"github.com/modelflowai/modelflow/providers/ai"
)

const (
	defaultBaseURL          = "https://api.openai.com/v1"
	chatCompletionsEndpoint = "/chat/completions"
	embeddingsEndpoint      = "/embeddings"
)

// Provider implements [ai.Provider], [ai.StreamProvider] and
// [ai.EmbeddingProvider] for OpenAI's chat completions and embeddings APIs.
// Because the request and response shapes are the de-facto standard for
// OpenAI-compatible backends, this adapter is also reused (via
// [NewCompatible]) by the openrouter adapter and by custom endpoints.
type Provider struct {
	apiKey       string
	baseURL      string
	client       *http.Client
	extraHeaders []utils.HeaderOption
}

// New returns a Provider initialized from environment variables. It reads
// OPENAI_API_KEY for authentication and OPENAI_API_BASE_URL for the endpoint
// base (defaulting to https://api.openai.com/v1 when unset).
func New() *Provider {
	baseURL := os.Getenv("OPENAI_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return NewCompatible(os.Getenv("OPENAI_API_KEY"), baseURL)
}

// NewCompatible returns a Provider for any OpenAI-compatible endpoint, with
// no environment lookup. A trailing slash on baseURL is trimmed so endpoint
// paths can be appended uniformly.
func NewCompatible(apiKey, baseURL string) *Provider {
	return &Provider{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{},
	}
}

// WithAPIKey sets the API key used for authenticating requests and returns
// the provider so calls can be chained.
func (p *Provider) WithAPIKey(apiKey string) ai.Provider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL overrides the API base URL and returns the provider so calls
// can be chained. Use this when targeting a proxy or a local test endpoint.
func (p *Provider) WithBaseURL(baseURL string) ai.Provider {
	p.baseURL = strings.TrimSuffix(baseURL, "/")
	return p
}

// WithHTTPClient replaces the default [http.Client] used for API calls and
// returns the provider so calls can be chained.
func (p *Provider) WithHTTPClient(httpClient *http.Client) ai.Provider {
	p.client = httpClient
	return p
}

// WithHeader registers an extra header sent on every request. Wrapping
// adapters use it for attribution headers; a header can override the default
// Authorization value.
func (p *Provider) WithHeader(key, value string) *Provider {
	p.extraHeaders = append(p.extraHeaders, utils.HeaderOption{Key: key, Value: value})
	return p
}

// Generate implements [ai.Provider] with a blocking chat completion call.
func (p *Provider) Generate(ctx context.Context, request ai.GenerateRequest) (*ai.GenerateResult, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}
	if p.apiKey == "" {
		// The facade reports which environment variable to set; at this level
		// only the absence of a key is known.
		return nil, &ai.MissingCredentialError{}
	}

	response, err := utils.DoPostSync[chatCompletionResponse](
		ctx, p.client, p.baseURL+chatCompletionsEndpoint, p.apiKey,
		requestFromGeneric(request), p.extraHeaders...,
	)
	if err != nil {
		return nil, err
	}

	return responseToGeneric(*response)
}
