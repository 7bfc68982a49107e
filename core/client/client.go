package client

import (
	"context"
	"fmt"
	"os"

	"github.com/modelflowai/modelflow/core/client/middleware"
	"github.com/modelflowai/modelflow/providers/ai"
	"github.com/modelflowai/modelflow/providers/ai/anthropic"
	"github.com/modelflowai/modelflow/providers/ai/openai"
	"github.com/modelflowai/modelflow/providers/ai/openrouter"
)

// adapterFactories maps each provider kind to its adapter constructor. The
// constructors read their provider's environment variables, so explicit
// options are applied on top afterwards.
var adapterFactories = map[ai.ProviderKind]func() ai.Provider{
	ai.ProviderOpenAI:     func() ai.Provider { return openai.New() },
	ai.ProviderAnthropic:  func() ai.Provider { return anthropic.New() },
	ai.ProviderOpenRouter: func() ai.Provider { return openrouter.New() },
	ai.ProviderCustom:     func() ai.Provider { return openai.NewCompatible("", "") },
}

// credentialEnvVars names the environment variable each kind reads for its
// API key. ProviderCustom has no entry: custom endpoints take their key
// through WithAPIKey only.
var credentialEnvVars = map[ai.ProviderKind]string{
	ai.ProviderOpenAI:     "OPENAI_API_KEY",
	ai.ProviderAnthropic:  "ANTHROPIC_API_KEY",
	ai.ProviderOpenRouter: "OPENROUTER_API_KEY",
}

// Client is the high-level entry point: one provider adapter bound to one
// model, wrapped in the middleware chain (retry, timeout, optional logging,
// caller middleware). A Client is immutable after construction and safe for
// concurrent use.
type Client struct {
	kind     ai.ProviderKind
	model    string
	provider ai.Provider

	send   middleware.SendFunc
	stream middleware.StreamFunc
	embed  middleware.EmbedFunc
}

// New builds a Client for the given provider kind and model.
//
// Credentials resolve in two steps: an explicit [WithAPIKey] wins, otherwise
// the provider's environment variable is consulted by the adapter. A client
// with no credential from either source fails construction with
// [ai.MissingCredentialError], except for [ai.ProviderCustom] where local
// endpoints without authentication are common.
//
// Transport tuning comes from the MODELFLOW_* environment variables unless
// overridden through options. The built-in chain applies retry outside
// timeout, so every retry attempt gets a fresh deadline; caller middleware
// from [WithMiddleware] wraps outside both, and [WithLogger] outermost.
func New(kind ai.ProviderKind, model string, opts ...Option) (*Client, error) {
	factory, ok := adapterFactories[kind]
	if !ok {
		return nil, &ai.UnsupportedProviderError{Kind: kind}
	}

	var options clientOptions
	for _, opt := range opts {
		opt(&options)
	}
	if kind == ai.ProviderCustom && options.baseURL == "" {
		return nil, fmt.Errorf("client: provider kind %q requires a base URL", kind)
	}

	config, err := resolveRuntimeConfig()
	if err != nil {
		return nil, err
	}
	if options.requestTimeout > 0 {
		config.RequestTimeout = options.requestTimeout
	}
	if options.maxRetries != nil {
		config.MaxRetries = *options.maxRetries
	}

	provider := factory()
	if options.apiKey != "" {
		provider = provider.WithAPIKey(options.apiKey)
	} else if envVar, required := credentialEnvVars[kind]; required && os.Getenv(envVar) == "" {
		return nil, &ai.MissingCredentialError{EnvVar: envVar}
	}
	if options.baseURL != "" {
		provider = provider.WithBaseURL(options.baseURL)
	}
	if options.httpClient != nil {
		provider = provider.WithHTTPClient(options.httpClient)
	} else {
		provider = provider.WithHTTPClient(newHTTPClient(config.ConnectTimeout))
	}

	return &Client{
		kind:     kind,
		model:    model,
		provider: provider,
		send:     middleware.BuildSend(provider.Generate, buildChain(config, options)),
		stream:   middleware.BuildStream(baseStream(provider), buildChain(config, options)),
		embed:    middleware.BuildEmbed(baseEmbed(kind, provider), buildChain(config, options)),
	}, nil
}

// OpenAI returns a Client preset for OpenAI's API.
func OpenAI(model string, opts ...Option) (*Client, error) {
	return New(ai.ProviderOpenAI, model, opts...)
}

// Anthropic returns a Client preset for Anthropic's API.
func Anthropic(model string, opts ...Option) (*Client, error) {
	return New(ai.ProviderAnthropic, model, opts...)
}

// OpenRouter returns a Client preset for OpenRouter's unified API.
func OpenRouter(model string, opts ...Option) (*Client, error) {
	return New(ai.ProviderOpenRouter, model, opts...)
}

// Custom returns a Client for any OpenAI-compatible endpoint. The base URL
// is mandatory; pass [WithAPIKey] as well when the endpoint requires
// authentication.
func Custom(model, baseURL string, opts ...Option) (*Client, error) {
	return New(ai.ProviderCustom, model, append([]Option{WithBaseURL(baseURL)}, opts...)...)
}

// Kind returns the provider kind this client dispatches to.
func (c *Client) Kind() ai.ProviderKind { return c.kind }

// Model returns the model identifier used when a request leaves it empty.
func (c *Client) Model() string { return c.model }

// Provider exposes the underlying adapter, bypassing the middleware chain.
// Useful for capability checks and provider-specific configuration.
func (c *Client) Provider() ai.Provider { return c.provider }

// Generate performs one blocking generation round trip through the full
// middleware chain. An empty request model falls back to the client's model.
func (c *Client) Generate(ctx context.Context, request ai.GenerateRequest) (*ai.GenerateResult, error) {
	if request.Model == "" {
		request.Model = c.model
	}
	return c.send(ctx, request)
}

// GenerateText sends a single user prompt and returns the generated text.
func (c *Client) GenerateText(ctx context.Context, prompt string, opts ...GenerateOption) (string, error) {
	result, err := c.Generate(ctx, c.buildRequest(prompt, opts))
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// GenerateTextWithUsage sends a single user prompt and returns the generated
// text together with the terminal accounting snapshot. The snapshot's Usage
// is nil when the provider did not report token counts.
func (c *Client) GenerateTextWithUsage(ctx context.Context, prompt string, opts ...GenerateOption) (string, ai.UsageSnapshot, error) {
	request := c.buildRequest(prompt, opts)
	request.IncludeUsage = true

	result, err := c.Generate(ctx, request)
	if err != nil {
		return "", ai.UsageSnapshot{}, err
	}

	var acc ai.UsageAccumulator
	return result.Text, acc.RecordResult(result), nil
}

// Stream performs a streaming generation through the full middleware chain.
// When the adapter does not implement [ai.StreamProvider] the call degrades
// to a blocking generation surfaced as a single-delta stream, so callers can
// rely on the streaming shape regardless of backend.
func (c *Client) Stream(ctx context.Context, request ai.GenerateRequest) (*ai.TextStream, error) {
	if request.Model == "" {
		request.Model = c.model
	}
	return c.stream(ctx, request)
}

// StreamText streams the response to a single user prompt. The returned
// stream yields text chunks as the backend produces them; usage and finish
// reason become available on the stream once it is drained.
func (c *Client) StreamText(ctx context.Context, prompt string, opts ...GenerateOption) (*ai.TextStream, error) {
	return c.Stream(ctx, c.buildRequest(prompt, opts))
}

// Embed embeds a single text. It is the batch-of-one form of [Client.EmbedMany]
// and returns the same result shape: Embeddings holds exactly one vector, and
// model and usage metadata are preserved.
func (c *Client) Embed(ctx context.Context, model, text string) (*ai.EmbeddingResult, error) {
	return c.EmbedMany(ctx, model, []string{text})
}

// EmbedMany returns one vector per input text, in input order. Adapters
// without an embeddings endpoint (Anthropic) return
// [ai.UnsupportedProviderError].
func (c *Client) EmbedMany(ctx context.Context, model string, texts []string) (*ai.EmbeddingResult, error) {
	return c.embed(ctx, ai.EmbeddingRequest{Model: model, Input: texts})
}

func (c *Client) buildRequest(prompt string, opts []GenerateOption) ai.GenerateRequest {
	request := ai.GenerateRequest{
		Model:    c.model,
		Messages: []ai.Message{{Role: ai.RoleUser, Content: prompt}},
	}
	for _, opt := range opts {
		opt(&request)
	}
	return request
}

// buildChain assembles the middleware configs outermost-first: logging, then
// caller middleware, then retry, then timeout. Retry sits outside timeout so
// each attempt runs under its own deadline.
func buildChain(config RuntimeConfig, options clientOptions) []middleware.Config {
	var chain []middleware.Config
	if options.logger != nil {
		chain = append(chain, middleware.NewLogging(options.logger))
	}
	chain = append(chain, options.middlewares...)

	// RetryConfig treats zero MaxRetries as "use the default", so a resolved
	// budget of zero has to be expressed as the explicit disable value.
	maxRetries := config.MaxRetries
	if maxRetries == 0 {
		maxRetries = -1
	}
	chain = append(chain,
		middleware.NewRetry(middleware.RetryConfig{
			MaxRetries:     maxRetries,
			InitialBackoff: config.RetryBackoff,
		}),
		middleware.NewTimeout(config.RequestTimeout),
	)
	return chain
}

// baseStream returns the innermost streaming function: the adapter's Stream
// when it implements [ai.StreamProvider], otherwise a blocking Generate
// repackaged as a single-delta stream.
func baseStream(provider ai.Provider) middleware.StreamFunc {
	if streamer, ok := provider.(ai.StreamProvider); ok {
		return streamer.Stream
	}
	return func(ctx context.Context, request ai.GenerateRequest) (*ai.TextStream, error) {
		result, err := provider.Generate(ctx, request)
		if err != nil {
			return nil, err
		}
		return ai.NewSingleDeltaStream(result), nil
	}
}

// baseEmbed returns the innermost embeddings function, or an unsupported
// error for adapters without an embeddings endpoint.
func baseEmbed(kind ai.ProviderKind, provider ai.Provider) middleware.EmbedFunc {
	embedder, ok := provider.(ai.EmbeddingProvider)
	if !ok {
		return func(ctx context.Context, request ai.EmbeddingRequest) (*ai.EmbeddingResult, error) {
			return nil, &ai.UnsupportedProviderError{Kind: kind, Feature: "embeddings"}
		}
	}
	return embedder.Embed
}
