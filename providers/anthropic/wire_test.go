package anthropic

import (
	"encoding/json"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/deckhandhq/deckhand-llm-go"
)

func stringPtr(s string) *string {
	return &s
}

func TestEncodeMessagesRequestShape(t *testing.T) {
	req := &llmpipeline.CompletionRequest{
		Model:     "claude-sonnet-4-5",
		MaxTokens: 1000,
		System:    stringPtr("Be brief."),
		Messages: []llmpipeline.ChatMessage{
			llmpipeline.NewUserMessage("Hello"),
		},
	}

	data, err := encodeMessagesRequest(req, false)
	if err != nil {
		t.Fatalf("encodeMessagesRequest() error = %v", err)
	}
	if !json.Valid(data) {
		t.Fatalf("encoded body is not valid JSON: %s", data)
	}

	body := gjson.ParseBytes(data)
	if got := body.Get("model").String(); got != "claude-sonnet-4-5" {
		t.Errorf("model = %q, want %q", got, "claude-sonnet-4-5")
	}
	if got := body.Get("max_tokens").Int(); got != 1000 {
		t.Errorf("max_tokens = %d, want 1000", got)
	}
	if got := body.Get("system").String(); got != "Be brief." {
		t.Errorf("system = %q, want %q", got, "Be brief.")
	}
	if got := body.Get("messages.#").Int(); got != 1 {
		t.Fatalf("len(messages) = %d, want 1", got)
	}
	if got := body.Get("messages.0.role").String(); got != "user" {
		t.Errorf("messages[0].role = %q, want %q", got, "user")
	}
	if got := body.Get("messages.0.content.0.type").String(); got != "text" {
		t.Errorf("messages[0].content[0].type = %q, want %q", got, "text")
	}
	if got := body.Get("messages.0.content.0.text").String(); got != "Hello" {
		t.Errorf("messages[0].content[0].text = %q, want %q", got, "Hello")
	}
	if body.Get("stream").Exists() {
		t.Errorf("stream field present on non-streaming request: %s", data)
	}
}

func TestEncodeMessagesRequestStreamFlag(t *testing.T) {
	req := &llmpipeline.CompletionRequest{
		Model:    "claude-sonnet-4-5",
		Messages: []llmpipeline.ChatMessage{llmpipeline.NewUserMessage("Hi")},
	}

	data, err := encodeMessagesRequest(req, true)
	if err != nil {
		t.Fatalf("encodeMessagesRequest() error = %v", err)
	}

	if got := gjson.GetBytes(data, "stream").Bool(); !got {
		t.Errorf("stream = %v, want true", got)
	}
}

func TestEncodeMessagesRequestOmitsNilSystem(t *testing.T) {
	req := &llmpipeline.CompletionRequest{
		Model:    "claude-sonnet-4-5",
		Messages: []llmpipeline.ChatMessage{llmpipeline.NewUserMessage("Hi")},
	}

	data, err := encodeMessagesRequest(req, false)
	if err != nil {
		t.Fatalf("encodeMessagesRequest() error = %v", err)
	}

	if gjson.GetBytes(data, "system").Exists() {
		t.Errorf("system field present without a system prompt: %s", data)
	}
}

func TestEncodeMessagesRequestLiftsSystemTurns(t *testing.T) {
	req := &llmpipeline.CompletionRequest{
		Model: "claude-sonnet-4-5",
		Messages: []llmpipeline.ChatMessage{
			llmpipeline.NewSystemMessage("You answer in haiku."),
			llmpipeline.NewUserMessage("Describe Go."),
		},
	}

	data, err := encodeMessagesRequest(req, false)
	if err != nil {
		t.Fatalf("encodeMessagesRequest() error = %v", err)
	}

	body := gjson.ParseBytes(data)
	if got := body.Get("system").String(); got != "You answer in haiku." {
		t.Errorf("system = %q, want the lifted system turn", got)
	}
	if got := body.Get("messages.#").Int(); got != 1 {
		t.Fatalf("len(messages) = %d, want 1 after lifting", got)
	}
	if got := body.Get("messages.0.role").String(); got != "user" {
		t.Errorf("messages[0].role = %q, want %q", got, "user")
	}
}

func TestEncodeMessagesRequestMergesAdjacentRoles(t *testing.T) {
	req := &llmpipeline.CompletionRequest{
		Model: "claude-sonnet-4-5",
		Messages: []llmpipeline.ChatMessage{
			llmpipeline.NewUserMessage("First part."),
			llmpipeline.NewUserMessage("Second part."),
		},
	}

	data, err := encodeMessagesRequest(req, false)
	if err != nil {
		t.Fatalf("encodeMessagesRequest() error = %v", err)
	}

	body := gjson.ParseBytes(data)
	if got := body.Get("messages.#").Int(); got != 1 {
		t.Fatalf("len(messages) = %d, want 1 after merging", got)
	}
	want := "First part.\n\nSecond part."
	if got := body.Get("messages.0.content.0.text").String(); got != want {
		t.Errorf("merged text = %q, want %q", got, want)
	}
}

func TestEncodeMessagesRequestClampsMaxTokens(t *testing.T) {
	tests := []struct {
		name      string
		model     string
		requested int
		want      int64
	}{
		{
			name:      "over model ceiling",
			model:     "claude-sonnet-4-5",
			requested: 999999,
			want:      64000,
		},
		{
			name:      "unset uses model default",
			model:     "claude-sonnet-4-5",
			requested: 0,
			want:      8192,
		},
		{
			name:      "within ceiling passes through",
			model:     "claude-sonnet-4-5",
			requested: 2048,
			want:      2048,
		},
		{
			name:      "unknown claude model keeps request",
			model:     "claude-experimental-1",
			requested: 123456,
			want:      123456,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &llmpipeline.CompletionRequest{
				Model:     tt.model,
				MaxTokens: tt.requested,
				Messages:  []llmpipeline.ChatMessage{llmpipeline.NewUserMessage("Hi")},
			}

			data, err := encodeMessagesRequest(req, false)
			if err != nil {
				t.Fatalf("encodeMessagesRequest() error = %v", err)
			}

			if got := gjson.GetBytes(data, "max_tokens").Int(); got != tt.want {
				t.Errorf("max_tokens = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDecodeFullResponse(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantText string
	}{
		{
			name:     "single text block",
			body:     `{"content":[{"type":"text","text":"Hello there."}],"model":"claude-sonnet-4-5","stop_reason":"end_turn","usage":{"input_tokens":12,"output_tokens":4}}`,
			wantText: "Hello there.",
		},
		{
			name:     "blocks concatenate in order",
			body:     `{"content":[{"type":"text","text":"One. "},{"type":"text","text":"Two."}]}`,
			wantText: "One. Two.",
		},
		{
			name:     "non-text blocks skipped",
			body:     `{"content":[{"type":"text","text":"Before"},{"type":"tool_use","id":"t1"},{"type":"text","text":"After"}]}`,
			wantText: "BeforeAfter",
		},
		{
			name:     "empty text block still counts",
			body:     `{"content":[{"type":"text","text":""}]}`,
			wantText: "",
		},
		{
			name:     "no text blocks falls back to raw body",
			body:     `{"content":[{"type":"tool_use","id":"t1"}]}`,
			wantText: `{"content":[{"type":"tool_use","id":"t1"}]}`,
		},
		{
			name:     "empty content falls back to raw body",
			body:     `{"content":[]}`,
			wantText: `{"content":[]}`,
		},
		{
			name:     "malformed body falls back to raw body",
			body:     `<html>bad gateway</html>`,
			wantText: `<html>bad gateway</html>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeFullResponse([]byte(tt.body))
			if got.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", got.Text, tt.wantText)
			}
		})
	}
}

func TestDecodeFullResponseMetadata(t *testing.T) {
	body := `{"content":[{"type":"text","text":"Hi"}],"model":"claude-sonnet-4-5","stop_reason":"max_tokens","usage":{"input_tokens":100,"output_tokens":64000}}`

	got := decodeFullResponse([]byte(body))
	if got.Model != "claude-sonnet-4-5" {
		t.Errorf("Model = %q, want %q", got.Model, "claude-sonnet-4-5")
	}
	if got.StopReason != "max_tokens" {
		t.Errorf("StopReason = %q, want %q", got.StopReason, "max_tokens")
	}
	if got.InputTokens != 100 {
		t.Errorf("InputTokens = %d, want 100", got.InputTokens)
	}
	if got.OutputTokens != 64000 {
		t.Errorf("OutputTokens = %d, want 64000", got.OutputTokens)
	}
}
