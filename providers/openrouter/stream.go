package openrouter

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/deckhandhq/deckhand-llm-go"
)

// doneToken is the data-line payload that terminates a stream.
const doneToken = "[DONE]"

// maxLineBytes caps one SSE line; the bufio.Scanner default of 64KB is too
// close for comfort.
const maxLineBytes = 512 * 1024

// chatChunk is the decoded form of one streaming data line. Content and
// FinishReason are pointers because chunks genuinely distinguish null from
// empty here.
type chatChunk struct {
	Model   string `json:"model"`
	Choices []struct {
		Delta struct {
			Content *string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

// readStream consumes an SSE body line by line, forwarding each content
// delta to sink in arrival order. Framing follows the same rules as the
// Anthropic path: data-line prefix, [DONE] or EOF terminates, malformed
// lines and unknown shapes are skipped. Usage arrives on whichever chunk
// the gateway chooses, so every line is probed for it.
func readStream(ctx context.Context, body io.Reader, sink llmpipeline.DeltaSink) (*llmpipeline.Completion, error) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	out := &llmpipeline.Completion{}
	var text strings.Builder

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		if !strings.HasPrefix(line, "data:") {
			continue
		}

		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == doneToken {
			break
		}

		var chunk chatChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			// Garbage lines happen on flaky proxies; drop them and
			// keep reading.
			continue
		}

		if chunk.Model != "" {
			out.Model = chunk.Model
		}
		if usage := gjson.Get(payload, "usage"); usage.IsObject() {
			out.InputTokens = int(usage.Get("prompt_tokens").Int())
			out.OutputTokens = int(usage.Get("completion_tokens").Int())
		}

		if len(chunk.Choices) == 0 {
			continue
		}
		choice := chunk.Choices[0]
		if choice.FinishReason != nil && *choice.FinishReason != "" {
			out.StopReason = mapFinishReason(*choice.FinishReason)
		}
		if choice.Delta.Content == nil || *choice.Delta.Content == "" {
			continue
		}

		if err := sink(*choice.Delta.Content); err != nil {
			return nil, err
		}
		text.WriteString(*choice.Delta.Content)
	}

	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &llmpipeline.TransportError{
			Provider:  llmpipeline.ProviderOpenRouter.String(),
			Body:      err.Error(),
			Retryable: true,
			Err:       llmpipeline.ErrProviderUnavailable,
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out.Text = text.String()
	return out, nil
}
