package llmpipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// fakeProvider scripts Complete and StreamComplete responses and records
// the last request it saw.
type fakeProvider struct {
	completeText string
	completeErr  error
	deltas       []string
	streamErr    error
	lastRequest  *CompletionRequest
}

func (f *fakeProvider) Complete(ctx context.Context, req *CompletionRequest) (*Completion, error) {
	f.lastRequest = req
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	return &Completion{Text: f.completeText, Model: req.Model, StopReason: "end_turn"}, nil
}

func (f *fakeProvider) StreamComplete(ctx context.Context, req *CompletionRequest, sink DeltaSink) (*Completion, error) {
	f.lastRequest = req
	var full strings.Builder
	for _, delta := range f.deltas {
		if err := sink(delta); err != nil {
			return nil, err
		}
		full.WriteString(delta)
	}
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	return &Completion{Text: full.String(), Model: req.Model, StopReason: "end_turn"}, nil
}

func (f *fakeProvider) Name() ProviderID {
	return ProviderID("fake")
}

func (f *fakeProvider) SupportsModel(model string) bool {
	return true
}

func TestNewOrchestrator_Validation(t *testing.T) {
	if _, err := NewOrchestrator(nil, "claude-haiku-4-5"); err == nil {
		t.Error("expected error for nil provider")
	}
	if _, err := NewOrchestrator(&fakeProvider{}, ""); err == nil {
		t.Error("expected error for empty model")
	}

	o, err := NewOrchestrator(&fakeProvider{}, "claude-haiku-4-5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Model() != "claude-haiku-4-5" {
		t.Errorf("unexpected model %q", o.Model())
	}
}

func TestOrchestratorAsk(t *testing.T) {
	provider := &fakeProvider{completeText: "Here are three title ideas."}
	o, err := NewOrchestrator(provider, "claude-haiku-4-5",
		WithSystemPrompt("You help with slide decks."),
		WithMaxTokens(512))
	if err != nil {
		t.Fatalf("NewOrchestrator failed: %v", err)
	}

	text, err := o.Ask(context.Background(), "Suggest deck titles")
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if text != "Here are three title ideas." {
		t.Errorf("unexpected text %q", text)
	}

	req := provider.lastRequest
	if req.Model != "claude-haiku-4-5" {
		t.Errorf("unexpected model %q", req.Model)
	}
	if req.MaxTokens != 512 {
		t.Errorf("unexpected max tokens %d", req.MaxTokens)
	}
	if req.System == nil || *req.System != "You help with slide decks." {
		t.Errorf("unexpected system %v", req.System)
	}
	if len(req.Messages) != 1 || req.Messages[0].Role != RoleUser || req.Messages[0].Text != "Suggest deck titles" {
		t.Errorf("unexpected messages %v", req.Messages)
	}
}

func TestOrchestratorAsk_PropagatesErrors(t *testing.T) {
	provider := &fakeProvider{completeErr: ErrRateLimited}
	o, _ := NewOrchestrator(provider, "claude-haiku-4-5")

	_, err := o.Ask(context.Background(), "anything")
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected rate limit error, got %v", err)
	}
	if !IsRetryable(err) {
		t.Error("expected the error to classify as retryable")
	}
}

func TestOrchestratorStream_PacesDeltas(t *testing.T) {
	provider := &fakeProvider{deltas: []string{
		strings.Repeat("a", 50),
		strings.Repeat("b", 50),
		strings.Repeat("c", 10),
	}}
	o, _ := NewOrchestrator(provider, "claude-haiku-4-5",
		WithPacerConfig(PacerConfig{ChunkSize: 80, MinInterval: 60 * time.Millisecond}))

	var chunks []string
	text, err := o.Stream(context.Background(), "write something", func(chunk string) {
		chunks = append(chunks, chunk)
	})
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}

	want := strings.Repeat("a", 50) + strings.Repeat("b", 50) + strings.Repeat("c", 10)
	if text != want {
		t.Errorf("returned text does not match delta concatenation")
	}
	if got := strings.Join(chunks, ""); got != want {
		t.Errorf("chunk concatenation does not match delta concatenation\ngot:  %q\nwant: %q", got, want)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 80 || len(chunks[1]) != 30 {
		t.Errorf("expected chunk sizes [80 30], got [%d %d]", len(chunks[0]), len(chunks[1]))
	}
}

func TestOrchestratorStream_ErrorSkipsFinalFlush(t *testing.T) {
	provider := &fakeProvider{
		deltas:    []string{"partial "},
		streamErr: &TransportError{Provider: "fake", StatusCode: 500, Body: "upstream died", Retryable: true},
	}
	o, _ := NewOrchestrator(provider, "claude-haiku-4-5",
		WithPacerConfig(PacerConfig{ChunkSize: 80, MinInterval: time.Minute}))

	var chunks []string
	text, err := o.Stream(context.Background(), "write something", func(chunk string) {
		chunks = append(chunks, chunk)
	})
	if err == nil {
		t.Fatal("expected stream error")
	}
	if text != "" {
		t.Errorf("expected empty text on error, got %q", text)
	}
	if len(chunks) != 0 {
		t.Errorf("expected buffered text to stay undelivered on error, got %v", chunks)
	}
}

func TestOrchestratorGenerateStructured(t *testing.T) {
	deckJSON := `{"id":"d1","title":"Launch Plan","theme":"midnight","createdAt":"2026-07-01T10:00:00Z","slides":[{"layout":"cover","blocks":[{"kind":"heading","text":"Launch Plan","level":1}]}]}`
	provider := &fakeProvider{completeText: "Sure! Here is the deck:\n" + deckJSON + "\nLet me know what to change."}
	o, _ := NewOrchestrator(provider, "claude-sonnet-4-5")

	result, err := o.GenerateStructured(context.Background(), "Plan a product launch deck", nil, SchemaDeck)
	if err != nil {
		t.Fatalf("GenerateStructured failed: %v", err)
	}

	if result.RawJSON != deckJSON {
		t.Errorf("expected extracted deck JSON, got %q", result.RawJSON)
	}
	if result.IsPatch {
		t.Error("expected a full document, not a patch")
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected no validation warnings, got %v", result.Warnings)
	}

	prompt := provider.lastRequest.Messages[0].Text
	for _, piece := range []string{
		"Respond with a single JSON object describing a complete slide deck",
		"Example of a conforming response:",
		"Plan a product launch deck",
		"Context:\n{}",
		"Respond with exactly one JSON object matching the shape above.",
	} {
		if !strings.Contains(prompt, piece) {
			t.Errorf("structured prompt is missing %q", piece)
		}
	}
	if provider.lastRequest.System == nil || !strings.Contains(*provider.lastRequest.System, "slide deck assistant") {
		t.Error("expected the style preamble in the system field")
	}
}

func TestOrchestratorGenerateStructured_PatchResponse(t *testing.T) {
	patchJSON := `{"patch":true,"slides":[{"id":"s-2","layout":"content","blocks":[{"kind":"paragraph","text":"updated"}]}]}`
	provider := &fakeProvider{completeText: patchJSON}
	o, _ := NewOrchestrator(provider, "claude-sonnet-4-5")

	result, err := o.GenerateStructured(context.Background(), "Tighten slide two", `{"id":"d1"}`, SchemaDeckPatch)
	if err != nil {
		t.Fatalf("GenerateStructured failed: %v", err)
	}
	if !result.IsPatch {
		t.Error("expected the patch marker to be detected")
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected a clean patch, got warnings %v", result.Warnings)
	}
}

func TestOrchestratorGenerateStructured_ProseDegradesToEmptyObject(t *testing.T) {
	provider := &fakeProvider{completeText: "I could not produce a deck for that request."}
	o, _ := NewOrchestrator(provider, "claude-sonnet-4-5")

	result, err := o.GenerateStructured(context.Background(), "Make a deck", nil, SchemaDeck)
	if err != nil {
		t.Fatalf("expected graceful degradation, got error %v", err)
	}
	if result.RawJSON != "{}" {
		t.Errorf("expected empty object literal, got %q", result.RawJSON)
	}
	if result.IsPatch {
		t.Error("expected IsPatch false for prose")
	}
	if len(result.Warnings) == 0 {
		t.Error("expected validation warnings about the empty document")
	}
}

func TestOrchestratorGenerateStructured_UnknownSchema(t *testing.T) {
	o, _ := NewOrchestrator(&fakeProvider{completeText: "{}"}, "claude-sonnet-4-5")

	if _, err := o.GenerateStructured(context.Background(), "anything", nil, "no-such-schema"); err == nil {
		t.Error("expected error for unknown schema")
	}
}

func TestSerializeContext(t *testing.T) {
	tests := []struct {
		name       string
		contextObj any
		expected   string
	}{
		{
			name:       "nil degrades to empty object",
			contextObj: nil,
			expected:   "{}",
		},
		{
			name:       "map marshals pretty",
			contextObj: map[string]any{"revision": 2},
			expected:   "{\n  \"revision\": 2\n}",
		},
		{
			name:       "raw JSON string reindents",
			contextObj: `{"id":"d1"}`,
			expected:   "{\n  \"id\": \"d1\"\n}",
		},
		{
			name:       "non-object string degrades",
			contextObj: "just some prose",
			expected:   "{}",
		},
		{
			name:       "malformed JSON string degrades",
			contextObj: `{"id":`,
			expected:   "{}",
		},
		{
			name:       "slice degrades",
			contextObj: []int{1, 2, 3},
			expected:   "{}",
		},
		{
			name:       "unserializable value degrades",
			contextObj: map[string]any{"fn": func() {}},
			expected:   "{}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := serializeContext(tt.contextObj); got != tt.expected {
				t.Errorf("serializeContext() = %q, expected %q", got, tt.expected)
			}
		})
	}
}
