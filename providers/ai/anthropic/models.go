package anthropic

import (
	"encoding/json"
	"fmt"

	"github.com/modelflowai/modelflow/providers/ai"
)

/*
	ANTHROPIC MESSAGES API - WIRE TYPES

	The Messages API differs from the OpenAI-compatible shape on every axis
	that matters here: the system prompt is a top-level field, max_tokens is
	mandatory, content comes back as an array of typed blocks, the finish
	reason is called stop_reason, and usage counts are named
	input_tokens/output_tokens with no total.
*/

// defaultMaxTokens is used when the caller did not bound the response;
// the Messages API rejects requests without max_tokens.
const defaultMaxTokens = 4096

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model         string             `json:"model"`
	Messages      []anthropicMessage `json:"messages"`
	System        string             `json:"system,omitempty"`
	MaxTokens     int                `json:"max_tokens"`
	Temperature   *float64           `json:"temperature,omitempty"`
	TopP          *float64           `json:"top_p,omitempty"`
	StopSequences []string           `json:"stop_sequences,omitempty"`
	Stream        bool               `json:"stream,omitempty"`
}

type responseContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicResponse struct {
	ID         string                 `json:"id"`
	Model      string                 `json:"model"`
	Content    []responseContentBlock `json:"content"`
	StopReason string                 `json:"stop_reason"`
	Usage      *anthropicUsage        `json:"usage"`
}

/*
	CONVERSIONS
*/

// requestFromGeneric translates the normalized request into the Messages API
// shape. Frequency/presence penalties, seed, and response_format have no
// Messages API equivalent and are dropped.
func requestFromGeneric(request ai.GenerateRequest) anthropicRequest {
	messages := make([]anthropicMessage, 0, len(request.Messages))
	for _, message := range request.Messages {
		messages = append(messages, anthropicMessage{
			Role:    string(message.Role),
			Content: message.Content,
		})
	}

	maxTokens := request.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return anthropicRequest{
		Model:         request.Model,
		Messages:      messages,
		System:        request.SystemPrompt,
		MaxTokens:     maxTokens,
		Temperature:   request.Temperature,
		TopP:          request.TopP,
		StopSequences: request.Stop,
	}
}

// responseToGeneric normalizes a blocking Messages API response, joining all
// text content blocks. A 2xx payload without a single text block is malformed.
func responseToGeneric(response anthropicResponse) (*ai.GenerateResult, error) {
	var text string
	var sawText bool
	for _, block := range response.Content {
		if block.Type == "text" {
			text += block.Text
			sawText = true
		}
	}
	if !sawText {
		return nil, &ai.MalformedResponseError{Reason: "no text content block in response"}
	}

	result := &ai.GenerateResult{
		Text:         text,
		Model:        response.Model,
		FinishReason: ai.NormalizeFinishReason(response.StopReason),
	}

	if response.Usage != nil {
		usage := ai.Usage{
			PromptTokens:     response.Usage.InputTokens,
			CompletionTokens: response.Usage.OutputTokens,
		}.Normalize()
		result.Usage = &usage
	}

	return result, nil
}

/*
	SSE STREAMING - WIRE TYPES

	Anthropic streaming uses SSE with "event:" lines naming the event type
	and "data:" lines carrying JSON. The SSEScanner only surfaces data
	payloads, so the "type" field inside the JSON discriminates events.

	Event lifecycle:
	  message_start → content_block_start → content_block_delta* →
	  content_block_stop → message_delta → message_stop
*/

type streamDelta struct {
	Type       string `json:"type,omitempty"` // "text_delta" on content_block_delta
	Text       string `json:"text,omitempty"`
	StopReason string `json:"stop_reason,omitempty"` // on message_delta
}

type anthropicStreamError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type anthropicStreamEvent struct {
	Type    string                `json:"type"`
	Message *anthropicResponse    `json:"message,omitempty"` // on message_start
	Index   int                   `json:"index,omitempty"`
	Delta   *streamDelta          `json:"delta,omitempty"` // on content_block_delta and message_delta
	Usage   *anthropicUsage       `json:"usage,omitempty"` // on message_delta
	Error   *anthropicStreamError `json:"error,omitempty"` // on error events
}

func unmarshalStreamEvent(payload string) (*anthropicStreamEvent, error) {
	var event anthropicStreamEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return nil, err
	}
	if event.Type == "" {
		return nil, fmt.Errorf("missing type field in stream event")
	}
	return &event, nil
}
