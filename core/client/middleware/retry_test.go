package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/modelflowai/modelflow/providers/ai"
)

func fastRetryConfig(maxRetries int) RetryConfig {
	return RetryConfig{
		MaxRetries:     maxRetries,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}
}

func testRequest() ai.GenerateRequest {
	return ai.GenerateRequest{
		Model:    "test-model",
		Messages: []ai.Message{{Role: ai.RoleUser, Content: "hi"}},
	}
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	base := func(ctx context.Context, request ai.GenerateRequest) (*ai.GenerateResult, error) {
		calls++
		if calls < 3 {
			return nil, &ai.HTTPError{StatusCode: 429, Message: "rate limited"}
		}
		return &ai.GenerateResult{Text: "ok"}, nil
	}

	send := BuildSend(base, []Config{NewRetry(fastRetryConfig(2))})

	result, err := send(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("send returned unexpected error: %v", err)
	}
	if result.Text != "ok" {
		t.Errorf("Text: got %q, want ok", result.Text)
	}
	if calls != 3 {
		t.Errorf("provider called %d times, want 3", calls)
	}
}

func TestRetry_NonRetryableErrorPassesThrough(t *testing.T) {
	calls := 0
	base := func(ctx context.Context, request ai.GenerateRequest) (*ai.GenerateResult, error) {
		calls++
		return nil, &ai.HTTPError{StatusCode: 401, Message: "bad key"}
	}

	send := BuildSend(base, []Config{NewRetry(fastRetryConfig(3))})

	_, err := send(context.Background(), testRequest())

	var httpErr *ai.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 401 {
		t.Fatalf("expected the 401 unchanged, got %v", err)
	}
	if calls != 1 {
		t.Errorf("provider called %d times, want 1 (no retries on 401)", calls)
	}
}

func TestRetry_TimeoutErrorIsRetried(t *testing.T) {
	calls := 0
	base := func(ctx context.Context, request ai.GenerateRequest) (*ai.GenerateResult, error) {
		calls++
		if calls == 1 {
			return nil, &ai.TimeoutError{Op: "request", Err: context.DeadlineExceeded}
		}
		return &ai.GenerateResult{Text: "recovered"}, nil
	}

	send := BuildSend(base, []Config{NewRetry(fastRetryConfig(2))})

	result, err := send(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("send returned unexpected error: %v", err)
	}
	if result.Text != "recovered" || calls != 2 {
		t.Errorf("got text %q after %d calls", result.Text, calls)
	}
}

func TestRetry_ExhaustionWrapsBothSentinelAndCause(t *testing.T) {
	base := func(ctx context.Context, request ai.GenerateRequest) (*ai.GenerateResult, error) {
		return nil, &ai.HTTPError{StatusCode: 503, Message: "overloaded"}
	}

	send := BuildSend(base, []Config{NewRetry(fastRetryConfig(1))})

	_, err := send(context.Background(), testRequest())
	if err == nil {
		t.Fatal("expected exhaustion error")
	}
	if !errors.Is(err, ErrRetryExhausted) {
		t.Errorf("error must wrap ErrRetryExhausted, got %v", err)
	}
	var httpErr *ai.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 503 {
		t.Errorf("error must wrap the last provider error, got %v", err)
	}
}

func TestRetry_NegativeMaxRetriesDisables(t *testing.T) {
	calls := 0
	base := func(ctx context.Context, request ai.GenerateRequest) (*ai.GenerateResult, error) {
		calls++
		return nil, &ai.HTTPError{StatusCode: 500}
	}

	send := BuildSend(base, []Config{NewRetry(fastRetryConfig(-1))})

	if _, err := send(context.Background(), testRequest()); err == nil {
		t.Fatal("expected failure with retries disabled")
	}
	if calls != 1 {
		t.Errorf("provider called %d times, want exactly 1", calls)
	}
}

func TestRetry_ContextCancellationStopsBackoffWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	base := func(ctx context.Context, request ai.GenerateRequest) (*ai.GenerateResult, error) {
		calls++
		cancel() // cancel while the middleware waits out the backoff
		return nil, &ai.HTTPError{StatusCode: 500}
	}

	config := fastRetryConfig(5)
	config.InitialBackoff = time.Minute
	send := BuildSend(base, []Config{NewRetry(config)})

	_, err := send(ctx, testRequest())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("provider called %d times, want 1", calls)
	}
}

func TestRetry_CoversStreamEstablishment(t *testing.T) {
	calls := 0
	base := func(ctx context.Context, request ai.GenerateRequest) (*ai.TextStream, error) {
		calls++
		if calls == 1 {
			return nil, &ai.HTTPError{StatusCode: 502}
		}
		return ai.NewSingleDeltaStream(&ai.GenerateResult{Text: "streamed"}), nil
	}

	stream := BuildStream(base, []Config{NewRetry(fastRetryConfig(2))})

	got, err := stream(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("stream returned unexpected error: %v", err)
	}
	result, err := got.Collect()
	if err != nil || result.Text != "streamed" {
		t.Errorf("collected %q, err %v", result.Text, err)
	}
	if calls != 2 {
		t.Errorf("provider called %d times, want 2", calls)
	}
}

func TestRetry_CoversEmbedPath(t *testing.T) {
	calls := 0
	base := func(ctx context.Context, request ai.EmbeddingRequest) (*ai.EmbeddingResult, error) {
		calls++
		if calls == 1 {
			return nil, &ai.HTTPError{StatusCode: 500}
		}
		return &ai.EmbeddingResult{Embeddings: [][]float64{{0.1}}}, nil
	}

	embed := BuildEmbed(base, []Config{NewRetry(fastRetryConfig(2))})

	result, err := embed(context.Background(), ai.EmbeddingRequest{Model: "m", Input: []string{"a"}})
	if err != nil {
		t.Fatalf("embed returned unexpected error: %v", err)
	}
	if len(result.Embeddings) != 1 || calls != 2 {
		t.Errorf("got %d vectors after %d calls", len(result.Embeddings), calls)
	}
}

func TestComputeBackoff_ExponentialGrowthWithCap(t *testing.T) {
	config := RetryConfig{}
	applyRetryDefaults(&config)
	config.JitterFraction = 0 // deterministic for the assertion

	if got := computeBackoff(config, 0); got != 250*time.Millisecond {
		t.Errorf("attempt 0: got %v, want 250ms", got)
	}
	if got := computeBackoff(config, 1); got != 500*time.Millisecond {
		t.Errorf("attempt 1: got %v, want 500ms", got)
	}
	if got := computeBackoff(config, 20); got != config.MaxBackoff {
		t.Errorf("attempt 20: got %v, want cap %v", got, config.MaxBackoff)
	}
}
