package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type capital struct {
	Country string `json:"country"`
	City    string `json:"city"`
}

// structuredServer answers with the given assistant content and captures the
// raw request body.
func structuredServer(t *testing.T, content string, captured *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		body, _ := io.ReadAll(request.Body)
		*captured = string(body)

		response := map[string]any{
			"id":    "chatcmpl-1",
			"model": "test-model",
			"choices": []map[string]any{
				{"index": 0, "message": map[string]any{"role": "assistant", "content": content}, "finish_reason": "stop"},
			},
		}
		_ = json.NewEncoder(writer).Encode(response)
	}))
}

func TestGenerateAs_ParsesStructAndRequestsJSON(t *testing.T) {
	var captured string
	server := structuredServer(t, `{"country":"France","city":"Paris"}`, &captured)
	defer server.Close()

	c, err := Custom("test-model", server.URL, WithAPIKey("k"))
	if err != nil {
		t.Fatalf("Custom returned unexpected error: %v", err)
	}

	got, err := GenerateAs[capital](context.Background(), c, "Capital of France as JSON.")
	if err != nil {
		t.Fatalf("GenerateAs returned unexpected error: %v", err)
	}
	if got.City != "Paris" || got.Country != "France" {
		t.Errorf("got %+v", got)
	}
	if !strings.Contains(captured, `"response_format":{"type":"json_object"}`) {
		t.Errorf("struct target must request a JSON response format, body: %s", captured)
	}
}

func TestGenerateAs_RecoversFencedOutput(t *testing.T) {
	var captured string
	server := structuredServer(t, "```json\n{country: 'France', city: 'Paris'}\n```", &captured)
	defer server.Close()

	c, err := Custom("test-model", server.URL, WithAPIKey("k"))
	if err != nil {
		t.Fatalf("Custom returned unexpected error: %v", err)
	}

	got, err := GenerateAs[capital](context.Background(), c, "Capital of France as JSON.")
	if err != nil {
		t.Fatalf("GenerateAs must recover fenced output: %v", err)
	}
	if got.City != "Paris" {
		t.Errorf("got %+v", got)
	}
}

func TestGenerateAs_ScalarTargetSkipsResponseFormat(t *testing.T) {
	var captured string
	server := structuredServer(t, "42", &captured)
	defer server.Close()

	c, err := Custom("test-model", server.URL, WithAPIKey("k"))
	if err != nil {
		t.Fatalf("Custom returned unexpected error: %v", err)
	}

	got, err := GenerateAs[int](context.Background(), c, "The answer, digits only.")
	if err != nil {
		t.Fatalf("GenerateAs returned unexpected error: %v", err)
	}
	if got != 42 {
		t.Errorf("got %d, want 42", got)
	}
	if strings.Contains(captured, "response_format") {
		t.Errorf("scalar target must not force a JSON response format, body: %s", captured)
	}
}
