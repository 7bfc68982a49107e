package anthropic

import (
	"context"
	"io"

	"github.com/modelflowai/modelflow/internal/utils"
	"github.com/modelflowai/modelflow/providers/ai"
)

// Stream implements [ai.StreamProvider] for the Messages API. Anthropic has
// no [DONE] sentinel; the stream ends on the message_stop event. Usage is
// split across the lifecycle — input tokens arrive on message_start, output
// tokens on message_delta — so the decoder carries state across events and
// emits a single combined usage delta once both halves are known.
func (p *Provider) Stream(ctx context.Context, request ai.GenerateRequest) (*ai.TextStream, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}
	if p.apiKey == "" {
		return nil, &ai.MissingCredentialError{}
	}

	streamRequest := requestFromGeneric(request)
	streamRequest.Stream = true

	response, err := utils.DoPostStream(
		ctx, p.client, p.baseURL+messagesEndpoint, "",
		streamRequest, p.authHeaders()...,
	)
	if err != nil {
		return nil, err
	}

	sseScanner := utils.NewSSEScanner(response.Body)
	decoder := &streamDecoder{}

	deltas := func(yield func(ai.Delta, error) bool) {
		for {
			if ctx.Err() != nil {
				yield(ai.Delta{}, utils.ClassifyStreamReadError(ctx.Err()))
				return
			}

			payload, sseErr := sseScanner.Next()
			if sseErr == io.EOF {
				return
			}
			if sseErr != nil {
				yield(ai.Delta{}, utils.ClassifyStreamReadError(sseErr))
				return
			}

			event, parseErr := unmarshalStreamEvent(payload)
			if parseErr != nil {
				yield(ai.Delta{}, &ai.MalformedResponseError{
					Reason: "stream event is not valid JSON",
					Body:   utils.TruncateString(payload, 500),
					Err:    parseErr,
				})
				return
			}

			deltas, done, eventErr := decoder.decode(event)
			if eventErr != nil {
				yield(ai.Delta{}, eventErr)
				return
			}
			for _, delta := range deltas {
				if !yield(delta, nil) {
					return
				}
			}
			if done {
				return
			}
		}
	}

	return ai.NewTextStream(deltas, response.Body.Close), nil
}

// streamDecoder folds the Messages API event lifecycle into normalized
// deltas. It remembers the model and input token count from message_start so
// the usage delta emitted on message_delta carries complete totals.
type streamDecoder struct {
	model       string
	inputTokens int
}

// decode converts one stream event into zero or more deltas. done is true on
// message_stop. An in-band error event becomes an *ai.StreamError.
func (d *streamDecoder) decode(event *anthropicStreamEvent) ([]ai.Delta, bool, error) {
	switch event.Type {
	case "message_start":
		if event.Message != nil {
			d.model = event.Message.Model
			if event.Message.Usage != nil {
				d.inputTokens = event.Message.Usage.InputTokens
			}
		}
		return nil, false, nil

	case "content_block_delta":
		if event.Delta != nil && event.Delta.Type == "text_delta" && event.Delta.Text != "" {
			return []ai.Delta{{Type: ai.DeltaText, Text: event.Delta.Text, Model: d.model}}, false, nil
		}
		return nil, false, nil

	case "message_delta":
		var deltas []ai.Delta
		if event.Usage != nil {
			usage := ai.Usage{
				PromptTokens:     d.inputTokens,
				CompletionTokens: event.Usage.OutputTokens,
			}.Normalize()
			deltas = append(deltas, ai.Delta{Type: ai.DeltaUsage, Usage: &usage, Model: d.model})
		}
		if event.Delta != nil && event.Delta.StopReason != "" {
			deltas = append(deltas, ai.Delta{
				Type:         ai.DeltaDone,
				FinishReason: ai.NormalizeFinishReason(event.Delta.StopReason),
				Model:        d.model,
			})
		}
		return deltas, false, nil

	case "message_stop":
		return nil, true, nil

	case "error":
		streamErr := &ai.StreamError{Message: "provider reported an error"}
		if event.Error != nil {
			streamErr = &ai.StreamError{Code: event.Error.Type, Message: event.Error.Message}
		}
		return nil, true, streamErr

	default:
		// ping, content_block_start, content_block_stop and any future
		// event types carry nothing this client consumes.
		return nil, false, nil
	}
}
