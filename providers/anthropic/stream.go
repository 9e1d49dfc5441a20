package anthropic

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

// maxLineBytes caps one SSE line. Data lines normally stay tiny, but the
// default bufio.Scanner limit of 64KB is too close for comfort.
const maxLineBytes = 512 * 1024

// streamEvent is the decoded form of one SSE data line. Only the fields the
// read loop acts on are declared; lifecycle kinds carry more but are probed
// lazily for metadata instead.
type streamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Text string `json:"text"`
	} `json:"delta"`
}

// readStream consumes an SSE body line by line, forwarding each text delta
// to sink in arrival order.
//
// Framing rules:
//   - Empty lines and ":" comment lines are skipped.
//   - Only lines starting with "data:" carry payload.
//   - A payload of exactly [DONE] ends the stream successfully, as does EOF.
//   - A payload that fails to decode as JSON is skipped, not fatal.
//   - content_block_delta events emit their delta.text (empty text is
//     suppressed); message_start, content_block_start, content_block_stop,
//     message_stop and unknown kinds produce no output.
//
// A sink error aborts the read and is returned as-is. Once ctx is cancelled
// the sink is not invoked again and the cancellation is reported.
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

		var event streamEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			// Garbage lines happen on flaky proxies; drop them and
			// keep reading.
			continue
		}

		switch event.Type {
		case "content_block_delta":
			if event.Delta.Text == "" {
				continue
			}
			if err := sink(event.Delta.Text); err != nil {
				return nil, err
			}
			text.WriteString(event.Delta.Text)
		case "message_start":
			probe := gjson.Parse(payload)
			if model := probe.Get("message.model").String(); model != "" {
				out.Model = model
			}
			if n := probe.Get("message.usage.input_tokens").Int(); n > 0 {
				out.InputTokens = int(n)
			}
		case "message_delta":
			probe := gjson.Parse(payload)
			if reason := probe.Get("delta.stop_reason").String(); reason != "" {
				out.StopReason = reason
			}
			if n := probe.Get("usage.output_tokens").Int(); n > 0 {
				out.OutputTokens = int(n)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &llmpipeline.TransportError{
			Provider:  llmpipeline.ProviderAnthropic.String(),
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
