package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"

	"github.com/modelflowai/modelflow/providers/ai"
)

// maxResponseBodySize caps how much of a response body is read (10 MB).
// Enforced via io.LimitReader to prevent unbounded memory allocation from
// rogue responses.
const maxResponseBodySize int64 = 10 * 1024 * 1024

// errorBodyPreviewLen is how much of an error payload is kept on typed errors.
const errorBodyPreviewLen = 500

// HeaderOption is an extra header applied to an outbound request. Adapters
// use it for provider-specific headers such as x-api-key or anthropic-version;
// a HeaderOption can override the default Authorization header.
type HeaderOption struct {
	Key   string
	Value string
}

// CloseWithLog closes the given closer and logs a warning on failure. Used
// in defer position where the close error cannot override the primary error.
func CloseWithLog(closer io.Closer) {
	if err := closer.Close(); err != nil {
		slog.Warn("failed to close response body", "error", err.Error())
	}
}

// DoPostSync performs a synchronous HTTP POST with a JSON body and decodes
// the 2xx response into OutputStruct.
//
// Error handling strategy:
//   - transport timeouts and exceeded deadlines surface as *ai.TimeoutError
//   - non-2xx statuses surface as *ai.HTTPError carrying the provider's
//     error envelope message when one can be extracted
//   - undecodable 2xx bodies surface as *ai.MalformedResponseError
//
// The response body is always closed before returning; close errors are
// logged without overriding the primary error.
func DoPostSync[OutputStruct any](ctx context.Context, client *http.Client, url string, apiKey string, body any, headers ...HeaderOption) (*OutputStruct, error) {
	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("error marshaling body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	applyHeaders(req, apiKey, headers)

	res, err := httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError("request", err)
	}
	defer CloseWithLog(res.Body)

	respBody, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBodySize))
	if err != nil {
		return nil, classifyTransportError("response read", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, NewHTTPError(res.StatusCode, respBody)
	}

	var resStruct OutputStruct
	if err = json.Unmarshal(respBody, &resStruct); err != nil {
		return nil, &ai.MalformedResponseError{
			Reason: "body is not valid JSON",
			Body:   TruncateString(string(respBody), errorBodyPreviewLen),
			Err:    err,
		}
	}

	return &resStruct, nil
}

// applyHeaders sets the standard JSON + bearer auth headers, then the
// adapter-supplied extras (which may override the defaults).
func applyHeaders(req *http.Request, apiKey string, headers []HeaderOption) {
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	for _, header := range headers {
		req.Header.Set(header.Key, header.Value)
	}
}

// errorEnvelope matches the {"error": {"message": ...}} shape shared by
// OpenAI-compatible and Anthropic error payloads.
type errorEnvelope struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewHTTPError builds an *ai.HTTPError from a non-2xx response, extracting
// the provider's error envelope message when the body carries one.
func NewHTTPError(statusCode int, body []byte) *ai.HTTPError {
	httpErr := &ai.HTTPError{
		StatusCode: statusCode,
		Body:       TruncateString(string(body), errorBodyPreviewLen),
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		httpErr.Message = envelope.Error.Message
	}

	return httpErr
}

// classifyTransportError distinguishes deadline/timeout failures from other
// transport errors so callers can treat them as retriable.
func classifyTransportError(op string, err error) error {
	if isTimeout(err) {
		return &ai.TimeoutError{Op: op, Err: err}
	}

	return fmt.Errorf("error sending request: %w", err)
}

// ClassifyStreamReadError maps failures encountered while reading an
// established SSE stream onto the shared error taxonomy: expired deadlines
// and network timeouts become [ai.TimeoutError], cancellation passes through
// unchanged, and anything else is wrapped as a read error.
func ClassifyStreamReadError(err error) error {
	if isTimeout(err) {
		return &ai.TimeoutError{Op: "stream read", Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	return fmt.Errorf("SSE read error: %w", err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
