package utils

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DoPostStream performs an HTTP POST request and returns the raw response
// with the body left open for SSE reading. The caller is responsible for
// closing the response body when done. On error paths the body is read and
// closed before returning.
//
// This follows the same pattern as DoPostSync but does not consume the
// response body, enabling streaming consumption via SSEScanner.
func DoPostStream(ctx context.Context, client *http.Client, url string, apiKey string, body any, headers ...HeaderOption) (*http.Response, error) {
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
	req.Header.Set("Accept", "text/event-stream")

	response, err := httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError("stream request", err)
	}

	// For non-2xx responses, read the body and close it before returning.
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		defer CloseWithLog(response.Body)
		errorBody, readErr := io.ReadAll(io.LimitReader(response.Body, maxResponseBodySize))
		if readErr != nil {
			return nil, fmt.Errorf("non-2xx status %d (failed to read body: %v)", response.StatusCode, readErr)
		}
		return nil, NewHTTPError(response.StatusCode, errorBody)
	}

	return response, nil
}

// maxSSELineSize is the maximum size of a single SSE line (1 MB). The default
// bufio.Scanner limit is 64 KiB, which is too small for large SSE events such
// as long completion deltas. If a line exceeds this limit the scanner returns
// a wrapped bufio.ErrTooLong via the Next() error path.
const maxSSELineSize = 1 * 1024 * 1024

// SSEScanner reads Server-Sent Events from an io.Reader. It reassembles
// frames split across network reads, handles multi-line data fields, skips
// comments and empty lines, and detects the [DONE] sentinel used by
// OpenAI-compatible APIs.
type SSEScanner struct {
	scanner *bufio.Scanner
}

// NewSSEScanner creates an SSEScanner reading from the given reader. The
// scanner supports individual SSE lines up to maxSSELineSize.
func NewSSEScanner(reader io.Reader) *SSEScanner {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSSELineSize)
	return &SSEScanner{scanner: scanner}
}

// Next returns the next complete SSE data payload. Events are emitted only on
// a complete frame boundary (the blank line terminating an event), so partial
// frames buffered mid-read are never surfaced. Multi-line data fields are
// joined with newlines into a single payload.
//
// Returns io.EOF when the input is exhausted or the [DONE] sentinel is seen.
func (s *SSEScanner) Next() (string, error) {
	var dataLines []string

	for s.scanner.Scan() {
		line := s.scanner.Text()

		// Empty line signals end of an event; flush accumulated data lines.
		if line == "" {
			if len(dataLines) > 0 {
				return strings.Join(dataLines, "\n"), nil
			}
			continue
		}

		// Skip SSE comments.
		if strings.HasPrefix(line, ":") {
			continue
		}

		if strings.HasPrefix(line, "data:") {
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))

			// The [DONE] sentinel is the OpenAI-compatible end marker.
			if data == "[DONE]" {
				return "", io.EOF
			}

			dataLines = append(dataLines, data)
			continue
		}

		// Other SSE fields (event:, id:, retry:) are ignored; adapters
		// discriminate events on the "type" field inside the JSON payload.
	}

	if err := s.scanner.Err(); err != nil {
		return "", fmt.Errorf("SSE scanner error: %w", err)
	}

	// Flush a trailing event that was not terminated by a blank line.
	if len(dataLines) > 0 {
		return strings.Join(dataLines, "\n"), nil
	}

	return "", io.EOF
}
