package anthropic

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/deckhandhq/deckhand-llm-go"
)

// messagesRequest is the JSON body for POST {base}/v1/messages.
type messagesRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	System    *string       `json:"system,omitempty"`
	Messages  []wireMessage `json:"messages"`
	Stream    bool          `json:"stream,omitempty"`
}

// wireMessage is one conversation turn in the endpoint's content-block
// shape. This package only ever sends text blocks.
type wireMessage struct {
	Role    string          `json:"role"`
	Content []wireTextBlock `json:"content"`
}

type wireTextBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// messagesResponse is the buffered-path body: the assistant turn as an
// ordered list of content blocks plus response metadata.
type messagesResponse struct {
	Content    []wireTextBlock `json:"content"`
	Model      string          `json:"model"`
	StopReason string          `json:"stop_reason"`
	Usage      wireUsage       `json:"usage"`
}

type wireUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// encodeMessagesRequest serializes a CompletionRequest into the wire body.
// System-role turns are folded into the top-level system field, adjacent
// same-role turns are merged, and max_tokens is clamped to the model
// ceiling before transmission.
func encodeMessagesRequest(req *llmpipeline.CompletionRequest, stream bool) ([]byte, error) {
	system, messages := llmpipeline.NormalizeMessages(req.System, req.Messages)

	body := messagesRequest{
		Model:     req.Model,
		MaxTokens: llmpipeline.ClampMaxTokens(llmpipeline.ProviderAnthropic.String(), req.Model, req.MaxTokens),
		System:    system,
		Messages:  make([]wireMessage, 0, len(messages)),
		Stream:    stream,
	}
	for _, m := range messages {
		body.Messages = append(body.Messages, wireMessage{
			Role:    m.Role.String(),
			Content: []wireTextBlock{{Type: "text", Text: m.Text}},
		})
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode messages request: %w", err)
	}

	return data, nil
}

// decodeFullResponse turns a buffered response body into a Completion.
// Text blocks are concatenated in array order; non-text blocks are skipped.
// A body that does not decode, or that carries no text block at all,
// degrades to the raw body as text rather than failing.
func decodeFullResponse(body []byte) *llmpipeline.Completion {
	var resp messagesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return &llmpipeline.Completion{Text: string(body)}
	}

	out := &llmpipeline.Completion{
		Model:        resp.Model,
		StopReason:   resp.StopReason,
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	}

	var text strings.Builder
	textBlocks := 0
	for _, block := range resp.Content {
		if block.Type != "text" {
			continue
		}
		text.WriteString(block.Text)
		textBlocks++
	}
	if textBlocks == 0 {
		out.Text = string(body)
		return out
	}

	out.Text = text.String()
	return out
}
