package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

/*
	##### PROVIDER INPUT #####
*/

// ProviderKind identifies which backend wire protocol a provider speaks.
// The facade client dispatches its adapter registry on this value once,
// at construction time.
type ProviderKind string

const (
	ProviderOpenAI     ProviderKind = "openai"
	ProviderAnthropic  ProviderKind = "anthropic"
	ProviderOpenRouter ProviderKind = "openrouter"
	// ProviderCustom targets any OpenAI-compatible endpoint. The caller must
	// supply the base URL and API key explicitly; no environment variable is
	// consulted for this kind.
	ProviderCustom ProviderKind = "custom"
)

// MessageRole represents the role of a message; compatible with string.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"    // System instructions/configuration
	RoleUser      MessageRole = "user"      // End-user message
	RoleAssistant MessageRole = "assistant" // Model response
)

// Message represents a single message in a conversation.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// GenerateRequest is the normalized chat generation request shared by every
// adapter. Adapters translate it into their provider-specific wire shape and
// silently drop parameters their backend does not understand.
type GenerateRequest struct {
	Model        string    `json:"model"`                   // Model name or identifier; must be non-empty
	Messages     []Message `json:"messages"`                // Conversation, excluding the system prompt
	SystemPrompt string    `json:"system_prompt,omitempty"` // Optional system prompt, prepended by the adapter

	MaxTokens        int             `json:"max_tokens,omitempty"`        // Upper bound on generated tokens; must be positive when set
	Temperature      *float64        `json:"temperature,omitempty"`       // Sampling temperature [0..2]
	TopP             *float64        `json:"top_p,omitempty"`             // Nucleus sampling threshold [0..1]
	Stop             []string        `json:"stop,omitempty"`              // Up to 4 stop sequences
	FrequencyPenalty *float64        `json:"frequency_penalty,omitempty"` // Penalty [-2..2]; reduces repetition
	PresencePenalty  *float64        `json:"presence_penalty,omitempty"`  // Penalty [-2..2]; encourages new topics
	Seed             *int64          `json:"seed,omitempty"`              // Seed for deterministic sampling where supported
	ResponseFormat   json.RawMessage `json:"response_format,omitempty"`   // Passed through to the wire verbatim

	// IncludeUsage requests token accounting on the result. On the streaming
	// path adapters always ask the backend for usage so the terminal snapshot
	// is populated whenever the provider reports it.
	IncludeUsage bool `json:"include_usage,omitempty"`
}

// Validate reports whether the request satisfies the invariants every adapter
// relies on: a non-empty model, at least one message, and a positive
// MaxTokens when one is set.
func (r GenerateRequest) Validate() error {
	if strings.TrimSpace(r.Model) == "" {
		return fmt.Errorf("generate request: model must not be empty")
	}
	if len(r.Messages) == 0 {
		return fmt.Errorf("generate request: at least one message is required")
	}
	if r.MaxTokens < 0 {
		return fmt.Errorf("generate request: max_tokens must be positive, got %d", r.MaxTokens)
	}
	return nil
}

/*
	##### PROVIDER OUTPUT #####
*/

// Usage holds the token accounting for one generation call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

// Normalize fills TotalTokens from the two partial counts when the provider
// omitted it, preserving the total == prompt + completion invariant.
func (u Usage) Normalize() Usage {
	if u.TotalTokens == 0 {
		u.TotalTokens = u.PromptTokens + u.CompletionTokens
	}
	return u
}

// FinishReason is the normalized cause of generation termination. Adapters map
// their backend's vocabulary onto these values; anything unrecognized becomes
// FinishUnknown rather than an error.
type FinishReason string

const (
	FinishStop          FinishReason = "stop"
	FinishLength        FinishReason = "length"
	FinishContentFilter FinishReason = "content_filter"
	FinishToolCalls     FinishReason = "tool_calls"
	FinishUnknown       FinishReason = "unknown"
)

// finishReasonAliases maps raw provider finish/stop reasons onto the
// normalized vocabulary. OpenAI-compatible backends use the left column
// directly; Anthropic's stop reasons are folded in alongside.
var finishReasonAliases = map[string]FinishReason{
	"stop":           FinishStop,
	"end_turn":       FinishStop,
	"stop_sequence":  FinishStop,
	"length":         FinishLength,
	"max_tokens":     FinishLength,
	"content_filter": FinishContentFilter,
	"refusal":        FinishContentFilter,
	"tool_calls":     FinishToolCalls,
	"tool_use":       FinishToolCalls,
	"function_call":  FinishToolCalls,
}

// NormalizeFinishReason maps a raw provider finish reason string onto the
// FinishReason vocabulary. The empty string stays empty (meaning "not
// reported"); any other unrecognized value becomes FinishUnknown.
func NormalizeFinishReason(raw string) FinishReason {
	if raw == "" {
		return ""
	}
	if reason, ok := finishReasonAliases[strings.ToLower(raw)]; ok {
		return reason
	}
	return FinishUnknown
}

// GenerateResult is the completed response from a blocking generation call,
// or the collected form of a drained TextStream. Usage is nil when the caller
// did not request accounting or the provider did not report it.
type GenerateResult struct {
	Text         string       `json:"text"`
	Model        string       `json:"model,omitempty"`
	FinishReason FinishReason `json:"finish_reason,omitempty"`
	Usage        *Usage       `json:"usage,omitempty"`
}

// String returns the generated text, so a GenerateResult can be printed or
// interpolated wherever a plain string is expected.
func (r *GenerateResult) String() string {
	if r == nil {
		return ""
	}
	return r.Text
}

/*
	##### EMBEDDINGS #####
*/

// EmbeddingRequest asks for one vector per input string, in input order.
type EmbeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// Validate checks the invariants shared by every embeddings adapter.
func (r EmbeddingRequest) Validate() error {
	if strings.TrimSpace(r.Model) == "" {
		return fmt.Errorf("embedding request: model must not be empty")
	}
	if len(r.Input) == 0 {
		return fmt.Errorf("embedding request: at least one input is required")
	}
	return nil
}

// EmbeddingUsage holds token accounting for an embeddings call. Embeddings
// have no completion phase, so only prompt and total counts exist.
type EmbeddingUsage struct {
	PromptTokens int `json:"prompt_tokens,omitempty"`
	TotalTokens  int `json:"total_tokens,omitempty"`
}

// EmbeddingResult carries one vector per input string, in input order. All
// vectors within one result share the same dimensionality.
type EmbeddingResult struct {
	Embeddings [][]float64     `json:"embeddings"`
	Model      string          `json:"model,omitempty"`
	Usage      *EmbeddingUsage `json:"usage,omitempty"`
}
