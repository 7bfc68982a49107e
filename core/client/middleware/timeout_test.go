package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/modelflowai/modelflow/providers/ai"
)

func TestTimeout_SetsDeadlineOnSend(t *testing.T) {
	base := func(ctx context.Context, request ai.GenerateRequest) (*ai.GenerateResult, error) {
		deadline, ok := ctx.Deadline()
		if !ok {
			t.Fatal("expected a deadline on the call context")
		}
		if remaining := time.Until(deadline); remaining > time.Minute || remaining <= 0 {
			t.Errorf("deadline not within the configured window: %v remaining", remaining)
		}
		return &ai.GenerateResult{Text: "ok"}, nil
	}

	send := BuildSend(base, []Config{NewTimeout(time.Minute)})

	if _, err := send(context.Background(), testRequest()); err != nil {
		t.Fatalf("send returned unexpected error: %v", err)
	}
}

func TestTimeout_ShorterCallerDeadlineWins(t *testing.T) {
	base := func(ctx context.Context, request ai.GenerateRequest) (*ai.GenerateResult, error) {
		deadline, _ := ctx.Deadline()
		if time.Until(deadline) > 10*time.Second {
			t.Error("caller's shorter deadline must win")
		}
		return &ai.GenerateResult{}, nil
	}

	send := BuildSend(base, []Config{NewTimeout(time.Hour)})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := send(ctx, testRequest()); err != nil {
		t.Fatalf("send returned unexpected error: %v", err)
	}
}

func TestTimeout_StreamContextLivesUntilDrain(t *testing.T) {
	var streamCtx context.Context
	base := func(ctx context.Context, request ai.GenerateRequest) (*ai.TextStream, error) {
		streamCtx = ctx
		return ai.NewSingleDeltaStream(&ai.GenerateResult{
			Text:         "chunked",
			FinishReason: ai.FinishStop,
			Usage:        &ai.Usage{PromptTokens: 1, CompletionTokens: 1, TotalTokens: 2},
		}), nil
	}

	stream := BuildStream(base, []Config{NewTimeout(time.Minute)})

	got, err := stream(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("stream returned unexpected error: %v", err)
	}

	// The deadline context must not be canceled while the stream is live.
	if streamCtx.Err() != nil {
		t.Fatalf("stream context canceled before consumption: %v", streamCtx.Err())
	}

	result, err := got.Collect()
	if err != nil {
		t.Fatalf("Collect returned unexpected error: %v", err)
	}
	if result.Text != "chunked" {
		t.Errorf("Text: got %q, want chunked", result.Text)
	}
	if result.Usage == nil || result.Usage.TotalTokens != 2 {
		t.Errorf("usage must survive the timeout wrapper, got %+v", result.Usage)
	}

	if streamCtx.Err() == nil {
		t.Error("stream context must be canceled once the stream is drained")
	}
}

func TestTimeout_StreamCloseCancelsContext(t *testing.T) {
	var streamCtx context.Context
	base := func(ctx context.Context, request ai.GenerateRequest) (*ai.TextStream, error) {
		streamCtx = ctx
		return ai.NewSingleDeltaStream(&ai.GenerateResult{Text: "x"}), nil
	}

	stream := BuildStream(base, []Config{NewTimeout(time.Minute)})

	got, err := stream(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("stream returned unexpected error: %v", err)
	}

	if err := got.Close(); err != nil {
		t.Fatalf("Close returned unexpected error: %v", err)
	}
	if streamCtx.Err() == nil {
		t.Error("closing the stream must cancel the deadline context")
	}
}

func TestTimeout_PreStreamErrorCancelsImmediately(t *testing.T) {
	var streamCtx context.Context
	base := func(ctx context.Context, request ai.GenerateRequest) (*ai.TextStream, error) {
		streamCtx = ctx
		return nil, &ai.HTTPError{StatusCode: 500}
	}

	stream := BuildStream(base, []Config{NewTimeout(time.Minute)})

	if _, err := stream(context.Background(), testRequest()); err == nil {
		t.Fatal("expected the provider error to propagate")
	}
	if streamCtx.Err() == nil {
		t.Error("context must be canceled on a pre-stream failure")
	}
}

// Chain order: configs[0] is outermost. A marker middleware on each side of
// another must observe the request first when placed first.
func TestBuild_OrderIsOutermostFirst(t *testing.T) {
	var order []string
	marker := func(name string) Config {
		return Config{
			Send: func(next SendFunc) SendFunc {
				return func(ctx context.Context, request ai.GenerateRequest) (*ai.GenerateResult, error) {
					order = append(order, name)
					return next(ctx, request)
				}
			},
		}
	}

	base := func(ctx context.Context, request ai.GenerateRequest) (*ai.GenerateResult, error) {
		order = append(order, "base")
		return &ai.GenerateResult{}, nil
	}

	send := BuildSend(base, []Config{marker("outer"), marker("inner")})

	if _, err := send(context.Background(), testRequest()); err != nil {
		t.Fatalf("send returned unexpected error: %v", err)
	}
	if len(order) != 3 || order[0] != "outer" || order[1] != "inner" || order[2] != "base" {
		t.Errorf("execution order: got %v", order)
	}
}

func TestBuild_NilEntriesSkipped(t *testing.T) {
	base := func(ctx context.Context, request ai.GenerateRequest) (*ai.GenerateResult, error) {
		return &ai.GenerateResult{Text: "through"}, nil
	}

	// A Config with only a Stream entry must not affect the send path.
	send := BuildSend(base, []Config{{Stream: func(next StreamFunc) StreamFunc { return next }}})

	result, err := send(context.Background(), testRequest())
	if err != nil || result.Text != "through" {
		t.Errorf("got %q, err %v", result.Text, err)
	}
}
