package utils

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/modelflowai/modelflow/providers/ai"
)

type echoResponse struct {
	Value string `json:"value"`
}

func TestDoPostSync_DecodesResponseAndSetsHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if got := request.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization header: got %q, want %q", got, "Bearer secret")
		}
		if got := request.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type header: got %q, want application/json", got)
		}
		if got := request.Header.Get("X-Custom"); got != "yes" {
			t.Errorf("X-Custom header: got %q, want %q", got, "yes")
		}
		_, _ = io.WriteString(writer, `{"value":"ok"}`)
	}))
	defer server.Close()

	response, err := DoPostSync[echoResponse](
		context.Background(), server.Client(), server.URL, "secret",
		map[string]string{"input": "x"},
		HeaderOption{Key: "X-Custom", Value: "yes"},
	)
	if err != nil {
		t.Fatalf("DoPostSync returned unexpected error: %v", err)
	}
	if response.Value != "ok" {
		t.Errorf("decoded value: got %q, want %q", response.Value, "ok")
	}
}

func TestDoPostSync_EmptyAPIKeySendsNoAuthorization(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if got := request.Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization header should be absent, got %q", got)
		}
		_, _ = io.WriteString(writer, `{"value":"ok"}`)
	}))
	defer server.Close()

	if _, err := DoPostSync[echoResponse](context.Background(), server.Client(), server.URL, "", map[string]string{}); err != nil {
		t.Fatalf("DoPostSync returned unexpected error: %v", err)
	}
}

func TestDoPostSync_ErrorEnvelopeExtracted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(writer, `{"error":{"type":"authentication_error","message":"invalid x-api-key"}}`)
	}))
	defer server.Close()

	_, err := DoPostSync[echoResponse](context.Background(), server.Client(), server.URL, "bad", map[string]string{})

	var httpErr *ai.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *ai.HTTPError, got %T: %v", err, err)
	}
	if httpErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode: got %d, want 401", httpErr.StatusCode)
	}
	if httpErr.Message != "invalid x-api-key" {
		t.Errorf("Message: got %q, want %q", httpErr.Message, "invalid x-api-key")
	}
	if httpErr.Temporary() {
		t.Error("401 must not be reported as temporary")
	}
}

func TestDoPostSync_NonJSONBodyBecomesMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_, _ = io.WriteString(writer, "<html>gateway</html>")
	}))
	defer server.Close()

	_, err := DoPostSync[echoResponse](context.Background(), server.Client(), server.URL, "key", map[string]string{})

	var malformedErr *ai.MalformedResponseError
	if !errors.As(err, &malformedErr) {
		t.Fatalf("expected *ai.MalformedResponseError, got %T: %v", err, err)
	}
	if malformedErr.Body == "" {
		t.Error("expected a body preview on the malformed response error")
	}
}

func TestDoPostSync_DeadlineBecomesTimeoutError(t *testing.T) {
	blocked := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		<-blocked
	}))
	defer server.Close()
	defer close(blocked)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := DoPostSync[echoResponse](ctx, server.Client(), server.URL, "key", map[string]string{})

	var timeoutErr *ai.TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected *ai.TimeoutError, got %T: %v", err, err)
	}
}

func TestNewHTTPError_PlainBodyKeptAsPreview(t *testing.T) {
	httpErr := NewHTTPError(http.StatusBadGateway, []byte("upstream unavailable"))

	if httpErr.Message != "" {
		t.Errorf("Message should be empty without an envelope, got %q", httpErr.Message)
	}
	if httpErr.Body != "upstream unavailable" {
		t.Errorf("Body: got %q, want %q", httpErr.Body, "upstream unavailable")
	}
	if !httpErr.Temporary() {
		t.Error("502 should be reported as temporary")
	}
}
