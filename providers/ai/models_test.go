package ai

import (
	"testing"
)

func TestGenerateRequest_Validate(t *testing.T) {
	valid := GenerateRequest{
		Model:    "gpt-4o-mini",
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*GenerateRequest)
		wantErr bool
	}{
		{"empty model", func(r *GenerateRequest) { r.Model = "" }, true},
		{"whitespace model", func(r *GenerateRequest) { r.Model = "   " }, true},
		{"no messages", func(r *GenerateRequest) { r.Messages = nil }, true},
		{"negative max tokens", func(r *GenerateRequest) { r.MaxTokens = -1 }, true},
		{"positive max tokens", func(r *GenerateRequest) { r.MaxTokens = 100 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := valid
			tt.mutate(&request)

			err := request.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestUsage_NormalizeFillsTotal(t *testing.T) {
	usage := Usage{PromptTokens: 10, CompletionTokens: 5}.Normalize()
	if usage.TotalTokens != 15 {
		t.Errorf("TotalTokens: got %d, want 15", usage.TotalTokens)
	}

	reported := Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 17}.Normalize()
	if reported.TotalTokens != 17 {
		t.Errorf("reported total must be preserved, got %d", reported.TotalTokens)
	}
}

func TestNormalizeFinishReason(t *testing.T) {
	tests := []struct {
		raw  string
		want FinishReason
	}{
		{"stop", FinishStop},
		{"end_turn", FinishStop},
		{"stop_sequence", FinishStop},
		{"length", FinishLength},
		{"max_tokens", FinishLength},
		{"content_filter", FinishContentFilter},
		{"refusal", FinishContentFilter},
		{"tool_calls", FinishToolCalls},
		{"tool_use", FinishToolCalls},
		{"STOP", FinishStop},
		{"something_new", FinishUnknown},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeFinishReason(tt.raw); got != tt.want {
			t.Errorf("NormalizeFinishReason(%q): got %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestGenerateResult_StringReturnsText(t *testing.T) {
	result := &GenerateResult{Text: "hello"}
	if result.String() != "hello" {
		t.Errorf("String(): got %q, want %q", result.String(), "hello")
	}

	var nilResult *GenerateResult
	if nilResult.String() != "" {
		t.Error("nil result must stringify to empty")
	}
}

func TestEmbeddingRequest_Validate(t *testing.T) {
	if err := (EmbeddingRequest{Model: "m", Input: []string{"a"}}).Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}
	if err := (EmbeddingRequest{Input: []string{"a"}}).Validate(); err == nil {
		t.Error("expected error for empty model")
	}
	if err := (EmbeddingRequest{Model: "m"}).Validate(); err == nil {
		t.Error("expected error for empty input")
	}
}
