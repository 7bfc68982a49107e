package openai

import (
	"context"
	"fmt"

	"github.com/modelflowai/modelflow/internal/utils"
	"github.com/modelflowai/modelflow/providers/ai"
)

// Embed implements [ai.EmbeddingProvider] against the /embeddings endpoint.
// The input is always sent as an array, so a single text is just a batch of
// one and the result shape is identical either way. Vectors are returned in
// input order; the API's index field is honored in case the backend answers
// out of order.
func (p *Provider) Embed(ctx context.Context, request ai.EmbeddingRequest) (*ai.EmbeddingResult, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}
	if p.apiKey == "" {
		return nil, &ai.MissingCredentialError{}
	}

	response, err := utils.DoPostSync[embeddingResponse](
		ctx, p.client, p.baseURL+embeddingsEndpoint, p.apiKey,
		embeddingRequest{Model: request.Model, Input: request.Input}, p.extraHeaders...,
	)
	if err != nil {
		return nil, err
	}

	if len(response.Data) != len(request.Input) {
		return nil, &ai.MalformedResponseError{
			Reason: fmt.Sprintf("expected %d embeddings, got %d", len(request.Input), len(response.Data)),
		}
	}

	embeddings := make([][]float64, len(response.Data))
	for position, data := range response.Data {
		index := data.Index
		if index < 0 || index >= len(embeddings) {
			index = position
		}
		if data.Embedding == nil {
			return nil, &ai.MalformedResponseError{
				Reason: fmt.Sprintf("embedding %d has no vector", position),
			}
		}
		embeddings[index] = data.Embedding
	}

	result := &ai.EmbeddingResult{
		Embeddings: embeddings,
		Model:      response.Model,
	}
	if response.Usage != nil {
		result.Usage = &ai.EmbeddingUsage{
			PromptTokens: response.Usage.PromptTokens,
			TotalTokens:  response.Usage.TotalTokens,
		}
	}

	return result, nil
}
