package openrouter

import (
	"encoding/json"
	"fmt"

	"github.com/deckhandhq/deckhand-llm-go"
)

// chatRequest is the JSON body for POST {base}/chat/completions.
type chatRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []chatMessage `json:"messages"`
	Stream    bool          `json:"stream,omitempty"`
}

// chatMessage is one conversation turn. Unlike Anthropic's content-block
// shape, this API takes plain string content.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the buffered-path body.
type chatResponse struct {
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

type chatChoice struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// encodeChatRequest serializes a CompletionRequest into the wire body.
// This API has no top-level system field, so the normalized system prompt
// leads the messages array as a system-role turn.
func encodeChatRequest(req *llmpipeline.CompletionRequest, stream bool) ([]byte, error) {
	system, messages := llmpipeline.NormalizeMessages(req.System, req.Messages)

	body := chatRequest{
		Model:     req.Model,
		MaxTokens: llmpipeline.ClampMaxTokens(llmpipeline.ProviderOpenRouter.String(), req.Model, req.MaxTokens),
		Messages:  make([]chatMessage, 0, len(messages)+1),
		Stream:    stream,
	}
	if system != nil {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: *system})
	}
	for _, m := range messages {
		body.Messages = append(body.Messages, chatMessage{Role: m.Role.String(), Content: m.Text})
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat request: %w", err)
	}

	return data, nil
}

// decodeChatResponse turns a buffered response body into a Completion.
// A body that does not decode, or that carries no assistant content,
// degrades to the raw body as text rather than failing.
func decodeChatResponse(body []byte) *llmpipeline.Completion {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return &llmpipeline.Completion{Text: string(body)}
	}

	out := &llmpipeline.Completion{
		Model:        resp.Model,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		out.Text = string(body)
		return out
	}

	out.Text = resp.Choices[0].Message.Content
	out.StopReason = mapFinishReason(resp.Choices[0].FinishReason)
	return out
}

// mapFinishReason normalizes OpenAI-style finish reasons to the stop-reason
// vocabulary the rest of the pipeline uses.
func mapFinishReason(reason string) string {
	switch reason {
	case "stop":
		return "end_turn"
	case "length":
		return "max_tokens"
	default:
		return reason
	}
}
