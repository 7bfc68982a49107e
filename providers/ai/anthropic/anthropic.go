package anthropic

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/modelflowai/modelflow/internal/utils"
	"github.com/modelflowai/modelflow/providers/ai"
)

const (
	// defaultBaseURL is the canonical base URL for Anthropic's Messages API.
	defaultBaseURL = "https://api.anthropic.com/v1"

	// messagesEndpoint is the path for the Messages API endpoint.
	messagesEndpoint = "/messages"

	// anthropicVersion is the required anthropic-version header value.
	// Anthropic uses it to version-lock response formats independently of
	// the URL.
	anthropicVersion = "2023-06-01"
)

// Provider implements [ai.Provider] and [ai.StreamProvider] for Anthropic's
// Messages API. Anthropic exposes no embeddings endpoint, so this adapter
// deliberately does not implement [ai.EmbeddingProvider]; the facade reports
// embeddings as unsupported for this backend.
type Provider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// New returns a Provider initialized from environment variables. It reads
// ANTHROPIC_API_KEY for authentication and ANTHROPIC_API_BASE_URL for the
// endpoint base (defaulting to https://api.anthropic.com/v1 when unset).
func New() *Provider {
	baseURL := os.Getenv("ANTHROPIC_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Provider{
		apiKey:  os.Getenv("ANTHROPIC_API_KEY"),
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
// can be chained.
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

// authHeaders returns the Messages API authentication headers. Anthropic
// authenticates with x-api-key instead of a bearer token, so the API key is
// never passed through the Authorization path.
func (p *Provider) authHeaders() []utils.HeaderOption {
	return []utils.HeaderOption{
		{Key: "x-api-key", Value: p.apiKey},
		{Key: "anthropic-version", Value: anthropicVersion},
	}
}

// Generate implements [ai.Provider] with a blocking Messages API call.
func (p *Provider) Generate(ctx context.Context, request ai.GenerateRequest) (*ai.GenerateResult, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}
	if p.apiKey == "" {
		return nil, &ai.MissingCredentialError{}
	}

	response, err := utils.DoPostSync[anthropicResponse](
		ctx, p.client, p.baseURL+messagesEndpoint, "",
		requestFromGeneric(request), p.authHeaders()...,
	)
	if err != nil {
		return nil, err
	}

	return responseToGeneric(*response)
}
