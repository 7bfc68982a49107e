package client

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/modelflowai/modelflow/core/client/middleware"
	"github.com/modelflowai/modelflow/internal/utils"
	"github.com/modelflowai/modelflow/providers/ai"
)

// Option configures a Client at construction time.
type Option func(*clientOptions)

type clientOptions struct {
	apiKey         string
	baseURL        string
	httpClient     *http.Client
	logger         *slog.Logger
	middlewares    []middleware.Config
	requestTimeout time.Duration
	maxRetries     *int
}

// WithAPIKey supplies the API key explicitly, taking precedence over the
// provider's environment variable.
func WithAPIKey(apiKey string) Option {
	return func(o *clientOptions) { o.apiKey = apiKey }
}

// WithBaseURL overrides the provider's default base URL. Required for
// [ai.ProviderCustom]; optional elsewhere (proxies, test servers).
func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) { o.baseURL = baseURL }
}

// WithHTTPClient replaces the default HTTP client built from the runtime
// config. The caller then owns connect-timeout behavior.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = httpClient }
}

// WithLogger enables the logging middleware with the given structured
// logger. Without this option the client logs nothing.
func WithLogger(logger *slog.Logger) Option {
	return func(o *clientOptions) { o.logger = logger }
}

// WithMiddleware appends caller-supplied middleware. Entries run outermost
// in the order given, outside the built-in retry and timeout stages.
func WithMiddleware(configs ...middleware.Config) Option {
	return func(o *clientOptions) { o.middlewares = append(o.middlewares, configs...) }
}

// WithRequestTimeout overrides the per-request deadline for this client.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) { o.requestTimeout = timeout }
}

// WithMaxRetries overrides the retry budget for this client. Zero disables
// retries.
func WithMaxRetries(maxRetries int) Option {
	return func(o *clientOptions) { o.maxRetries = &maxRetries }
}

// GenerateOption tunes a single generation call. Options apply on top of the
// request the client builds from the prompt.
type GenerateOption func(*ai.GenerateRequest)

// WithSystemPrompt prepends a system prompt to the request.
func WithSystemPrompt(systemPrompt string) GenerateOption {
	return func(r *ai.GenerateRequest) { r.SystemPrompt = systemPrompt }
}

// WithMaxTokens bounds the number of generated tokens. Must be positive.
func WithMaxTokens(maxTokens int) GenerateOption {
	return func(r *ai.GenerateRequest) { r.MaxTokens = maxTokens }
}

// WithTemperature sets the sampling temperature [0..2].
func WithTemperature(temperature float64) GenerateOption {
	return func(r *ai.GenerateRequest) { r.Temperature = utils.Ptr(temperature) }
}

// WithTopP sets the nucleus sampling threshold [0..1].
func WithTopP(topP float64) GenerateOption {
	return func(r *ai.GenerateRequest) { r.TopP = utils.Ptr(topP) }
}

// WithStop sets up to 4 stop sequences.
func WithStop(sequences ...string) GenerateOption {
	return func(r *ai.GenerateRequest) { r.Stop = sequences }
}

// WithFrequencyPenalty sets the frequency penalty [-2..2].
func WithFrequencyPenalty(penalty float64) GenerateOption {
	return func(r *ai.GenerateRequest) { r.FrequencyPenalty = utils.Ptr(penalty) }
}

// WithPresencePenalty sets the presence penalty [-2..2].
func WithPresencePenalty(penalty float64) GenerateOption {
	return func(r *ai.GenerateRequest) { r.PresencePenalty = utils.Ptr(penalty) }
}

// WithSeed requests deterministic sampling where the backend supports it.
func WithSeed(seed int64) GenerateOption {
	return func(r *ai.GenerateRequest) { r.Seed = utils.Ptr(seed) }
}

// WithResponseFormat passes a response_format object through to the wire
// verbatim, e.g. json.RawMessage(`{"type":"json_object"}`).
func WithResponseFormat(format json.RawMessage) GenerateOption {
	return func(r *ai.GenerateRequest) { r.ResponseFormat = format }
}
