package client

import (
	"context"
	"encoding/json"

	"github.com/modelflowai/modelflow/core/parse"
)

// jsonObjectFormat asks OpenAI-compatible backends for a JSON object
// response. Backends that do not understand response_format drop it.
var jsonObjectFormat = json.RawMessage(`{"type":"json_object"}`)

// GenerateAs sends a single user prompt and parses the model's reply into a
// value of type T. For struct, map, and slice targets the request carries a
// JSON response format hint, and the reply is run through the recovery
// pipeline in [parse.StringAs] so fenced or slightly malformed JSON still
// decodes.
func GenerateAs[T any](ctx context.Context, c *Client, prompt string, opts ...GenerateOption) (T, error) {
	request := c.buildRequest(prompt, opts)
	if request.ResponseFormat == nil && wantsJSON[T]() {
		request.ResponseFormat = jsonObjectFormat
	}

	result, err := c.Generate(ctx, request)
	if err != nil {
		var zero T
		return zero, err
	}

	return parse.StringAs[T](result.Text)
}

// wantsJSON reports whether T decodes from a JSON body rather than a plain
// scalar string.
func wantsJSON[T any]() bool {
	switch any(*new(T)).(type) {
	case string, bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		return false
	default:
		return true
	}
}
