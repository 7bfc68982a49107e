package openai

import (
	"context"
	"io"

	"github.com/modelflowai/modelflow/internal/utils"
	"github.com/modelflowai/modelflow/providers/ai"
)

// Stream implements [ai.StreamProvider] for the chat completions endpoint.
// It sends the request with stream=true and stream_options.include_usage, so
// the API appends a final usage-bearing chunk before the [DONE] sentinel and
// the terminal snapshot of the returned TextStream is populated whenever the
// backend reports usage.
//
// The returned TextStream owns the response body: draining it, breaking out
// of the range loop, or calling Close releases the connection exactly once.
func (p *Provider) Stream(ctx context.Context, request ai.GenerateRequest) (*ai.TextStream, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}
	if p.apiKey == "" {
		return nil, &ai.MissingCredentialError{}
	}

	chatRequest := requestFromGeneric(request)
	chatRequest.Stream = utils.Ptr(true)
	chatRequest.StreamOptions = &streamOptions{IncludeUsage: true}

	response, err := utils.DoPostStream(
		ctx, p.client, p.baseURL+chatCompletionsEndpoint, p.apiKey,
		chatRequest, p.extraHeaders...,
	)
	if err != nil {
		return nil, err
	}

	sseScanner := utils.NewSSEScanner(response.Body)

	deltas := func(yield func(ai.Delta, error) bool) {
		for {
			if ctx.Err() != nil {
				yield(ai.Delta{}, utils.ClassifyStreamReadError(ctx.Err()))
				return
			}

			payload, sseErr := sseScanner.Next()
			if sseErr == io.EOF {
				// [DONE] sentinel or clean end of input.
				return
			}
			if sseErr != nil {
				yield(ai.Delta{}, utils.ClassifyStreamReadError(sseErr))
				return
			}

			chunk, parseErr := unmarshalStreamChunk(payload)
			if parseErr != nil {
				yield(ai.Delta{}, &ai.MalformedResponseError{
					Reason: "streaming chunk is not valid JSON",
					Body:   utils.TruncateString(payload, 500),
					Err:    parseErr,
				})
				return
			}

			for _, delta := range chunkToDeltas(chunk) {
				if !yield(delta, nil) {
					return // caller stopped iterating
				}
			}
		}
	}

	return ai.NewTextStream(deltas, response.Body.Close), nil
}
