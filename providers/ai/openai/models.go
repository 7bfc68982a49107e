package openai

import (
	"encoding/json"

	"github.com/modelflowai/modelflow/internal/utils"
	"github.com/modelflowai/modelflow/providers/ai"
)

/*
	OPENAI CHAT COMPLETIONS - WIRE TYPES

	These structs mirror the /chat/completions request and response JSON.
	Optional sampling parameters are pointers so the zero value is omitted
	from the wire instead of being sent as 0.
*/

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model            string          `json:"model"`
	Messages         []chatMessage   `json:"messages"`
	MaxTokens        *int            `json:"max_tokens,omitempty"`
	Temperature      *float64        `json:"temperature,omitempty"`
	TopP             *float64        `json:"top_p,omitempty"`
	Stop             []string        `json:"stop,omitempty"`
	FrequencyPenalty *float64        `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64        `json:"presence_penalty,omitempty"`
	Seed             *int64          `json:"seed,omitempty"`
	ResponseFormat   json.RawMessage `json:"response_format,omitempty"`
	Stream           *bool           `json:"stream,omitempty"`
	StreamOptions    *streamOptions  `json:"stream_options,omitempty"`
}

// streamOptions asks the API to append a final usage-bearing chunk to the
// stream. Only valid when Stream is true.
type streamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type chatResponseMessage struct {
	Content string `json:"content"`
}

type chatChoice struct {
	Index        int                 `json:"index"`
	Message      chatResponseMessage `json:"message"`
	FinishReason string              `json:"finish_reason"`
}

type chatCompletionResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   *chatUsage   `json:"usage"`
}

/*
	STREAMING CHUNK TYPES

	Each SSE payload is a chat.completion.chunk. Content arrives in
	choices[].delta; when stream_options.include_usage is set the final
	data chunk before [DONE] carries usage with an empty choices array.
*/

type streamDelta struct {
	Content *string `json:"content"`
}

type streamChoice struct {
	Index        int         `json:"index"`
	Delta        streamDelta `json:"delta"`
	FinishReason *string     `json:"finish_reason"`
}

type chatCompletionStreamChunk struct {
	Model   string         `json:"model"`
	Choices []streamChoice `json:"choices"`
	Usage   *chatUsage     `json:"usage"`
}

func unmarshalStreamChunk(payload string) (*chatCompletionStreamChunk, error) {
	var chunk chatCompletionStreamChunk
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		return nil, err
	}
	return &chunk, nil
}

/*
	EMBEDDINGS - WIRE TYPES
*/

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingData struct {
	Index     int       `json:"index"`
	Embedding []float64 `json:"embedding"`
}

type embeddingUsage struct {
	PromptTokens int `json:"prompt_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

type embeddingResponse struct {
	Model string          `json:"model"`
	Data  []embeddingData `json:"data"`
	Usage *embeddingUsage `json:"usage"`
}

/*
	CONVERSIONS
*/

// requestFromGeneric translates the normalized request into the chat
// completions wire shape. The system prompt, when present, becomes the
// leading message as the API expects.
func requestFromGeneric(request ai.GenerateRequest) chatCompletionRequest {
	messages := make([]chatMessage, 0, len(request.Messages)+1)
	if request.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: string(ai.RoleSystem), Content: request.SystemPrompt})
	}
	for _, message := range request.Messages {
		messages = append(messages, chatMessage{Role: string(message.Role), Content: message.Content})
	}

	wireRequest := chatCompletionRequest{
		Model:            request.Model,
		Messages:         messages,
		Temperature:      request.Temperature,
		TopP:             request.TopP,
		Stop:             request.Stop,
		FrequencyPenalty: request.FrequencyPenalty,
		PresencePenalty:  request.PresencePenalty,
		Seed:             request.Seed,
		ResponseFormat:   request.ResponseFormat,
	}
	if request.MaxTokens > 0 {
		wireRequest.MaxTokens = utils.Ptr(request.MaxTokens)
	}

	return wireRequest
}

// responseToGeneric normalizes a blocking chat completion response. A 2xx
// payload without any choice is treated as malformed: the caller asked for
// text and there is none to return.
func responseToGeneric(response chatCompletionResponse) (*ai.GenerateResult, error) {
	if len(response.Choices) == 0 {
		return nil, &ai.MalformedResponseError{Reason: "no choices in response"}
	}

	choice := response.Choices[0]
	result := &ai.GenerateResult{
		Text:         choice.Message.Content,
		Model:        response.Model,
		FinishReason: ai.NormalizeFinishReason(choice.FinishReason),
	}

	if response.Usage != nil {
		usage := ai.Usage{
			PromptTokens:     response.Usage.PromptTokens,
			CompletionTokens: response.Usage.CompletionTokens,
			TotalTokens:      response.Usage.TotalTokens,
		}.Normalize()
		result.Usage = &usage
	}

	return result, nil
}

// chunkToDeltas converts a single streaming chunk into zero or more
// normalized deltas. A chunk can carry content, a finish reason, or (with
// include_usage) a trailing usage block with empty choices.
func chunkToDeltas(chunk *chatCompletionStreamChunk) []ai.Delta {
	var deltas []ai.Delta

	if chunk.Usage != nil {
		usage := ai.Usage{
			PromptTokens:     chunk.Usage.PromptTokens,
			CompletionTokens: chunk.Usage.CompletionTokens,
			TotalTokens:      chunk.Usage.TotalTokens,
		}.Normalize()
		deltas = append(deltas, ai.Delta{Type: ai.DeltaUsage, Usage: &usage, Model: chunk.Model})
	}

	for _, choice := range chunk.Choices {
		if choice.Delta.Content != nil && *choice.Delta.Content != "" {
			deltas = append(deltas, ai.Delta{Type: ai.DeltaText, Text: *choice.Delta.Content, Model: chunk.Model})
		}

		if choice.FinishReason != nil && *choice.FinishReason != "" {
			deltas = append(deltas, ai.Delta{
				Type:         ai.DeltaDone,
				FinishReason: ai.NormalizeFinishReason(*choice.FinishReason),
				Model:        chunk.Model,
			})
		}
	}

	return deltas
}
