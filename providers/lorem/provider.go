// Package lorem is a mock provider that generates lorem ipsum text, used
// for development and testing without real API keys. Deck-flavored models
// return canned slide-deck JSON so the structured pipeline can be exercised
// offline end to end.
package lorem

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	loremgen "github.com/bozaro/golorem"

	"github.com/deckhandhq/deckhand-llm-go"
)

// Provider implements the llmpipeline.Provider interface with generated
// text instead of a network call.
type Provider struct {
	generator *loremgen.Lorem
}

// NewProvider creates a new lorem ipsum provider. No API key is needed.
func NewProvider() *Provider {
	return &Provider{
		generator: loremgen.New(),
	}
}

// Name returns the provider identifier.
func (p *Provider) Name() llmpipeline.ProviderID {
	return llmpipeline.ProviderLorem
}

// SupportsModel returns true if the model name starts with "lorem-".
// Example models: "lorem-fast", "lorem-slow", "lorem-deck"
func (p *Provider) SupportsModel(model string) bool {
	return strings.HasPrefix(model, "lorem-")
}

// Complete generates the full response after one simulated latency beat.
func (p *Provider) Complete(ctx context.Context, req *llmpipeline.CompletionRequest) (*llmpipeline.Completion, error) {
	if err := p.checkModel(req.Model); err != nil {
		return nil, err
	}

	if err := pause(ctx, getStreamDelay(req.Model)); err != nil {
		return nil, err
	}

	words, stopReason := p.responseWords(req.Model, req.GetMaxTokens())
	text := strings.Join(words, " ")

	return &llmpipeline.Completion{
		Text:         text,
		Model:        req.Model,
		StopReason:   stopReason,
		InputTokens:  estimateTokens(req.Messages),
		OutputTokens: len(words),
	}, nil
}

// StreamComplete streams the response word by word at a model-dependent
// cadence, exercising the same sink contract as the network providers.
func (p *Provider) StreamComplete(ctx context.Context, req *llmpipeline.CompletionRequest, sink llmpipeline.DeltaSink) (*llmpipeline.Completion, error) {
	if err := p.checkModel(req.Model); err != nil {
		return nil, err
	}

	maxTokens := req.GetMaxTokens()
	delay := getStreamDelay(req.Model)
	words, stopReason := p.responseWords(req.Model, maxTokens)

	log.Printf("[LOREM] streaming: model=%s max_tokens=%d delay=%s words=%d",
		req.Model, maxTokens, delay, len(words))

	var text strings.Builder
	sent := 0
	for _, word := range words {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		delta := word + " "
		if err := sink(delta); err != nil {
			return nil, err
		}
		text.WriteString(delta)
		sent++

		if err := pause(ctx, delay); err != nil {
			return nil, err
		}
	}

	log.Printf("[LOREM] stream complete: words=%d stop_reason=%s", sent, stopReason)

	return &llmpipeline.Completion{
		Text:         text.String(),
		Model:        req.Model,
		StopReason:   stopReason,
		InputTokens:  estimateTokens(req.Messages),
		OutputTokens: sent,
	}, nil
}

// checkModel rejects model ids this provider cannot serve.
func (p *Provider) checkModel(model string) error {
	if p.SupportsModel(model) {
		return nil
	}
	return &llmpipeline.ModelError{
		Model:    model,
		Provider: p.Name().String(),
		Reason:   "model not supported by Lorem provider (must start with 'lorem-')",
		Err:      llmpipeline.ErrInvalidModel,
	}
}

// responseWords picks the word sequence and stop reason for a model.
// Deck models reply with canned slide-deck JSON wrapped in prose; cutoff
// models overshoot the budget and get truncated so callers can exercise
// the max_tokens path; everything else is plain lorem prose.
func (p *Provider) responseWords(model string, maxTokens int) ([]string, string) {
	if isDeckModel(model) {
		return strings.Fields(deckResponseText(model)), "end_turn"
	}
	if isCutoffModel(model) {
		words := strings.Fields(p.generateTextWords(maxTokens + maxTokens/2))
		if len(words) > maxTokens {
			words = words[:maxTokens]
		}
		return words, "max_tokens"
	}
	return strings.Fields(p.generateTextWords(maxTokens)), "end_turn"
}

// getStreamDelay returns the delay between words based on the model name.
// - lorem-slow: 2 words/second (500ms per word)
// - lorem-fast: 30 words/second (33ms per word)
// - lorem-medium: 10 words/second (100ms per word)
// - default: 10 words/second
func getStreamDelay(model string) time.Duration {
	if strings.Contains(model, "slow") {
		return 500 * time.Millisecond
	}
	if strings.Contains(model, "fast") {
		return 33 * time.Millisecond
	}
	if strings.Contains(model, "medium") {
		return 100 * time.Millisecond
	}
	return 100 * time.Millisecond
}

// isCutoffModel returns true if the model should simulate max_tokens cutoff.
func isCutoffModel(model string) bool {
	return strings.Contains(model, "cutoff") || strings.Contains(model, "small")
}

// isDeckModel returns true if the model should answer with deck JSON.
func isDeckModel(model string) bool {
	return strings.Contains(model, "deck")
}

// pause sleeps for d unless ctx is cancelled first.
func pause(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// patchResponseJSON is the canned reply for patch-flavored deck models.
// Hand-written rather than marshalled from a Deck so it carries only the
// fields a patch document should.
const patchResponseJSON = `{"patch":true,"title":"Lorem Ipsum Quarterly, Revised","slides":[{"id":"s-agenda","layout":"content","blocks":[{"kind":"heading","text":"Agenda","level":2},{"kind":"bullets","items":["Consectetur","Adipiscing","Elit","Sed do eiusmod"]}]}]}`

// mockDeck is the canned full deck reply for deck-flavored models.
func mockDeck() llmpipeline.Deck {
	return llmpipeline.Deck{
		ID:        "deck-lorem-1",
		Title:     "Lorem Ipsum Quarterly",
		Theme:     "midnight",
		CreatedAt: "2026-01-15T09:30:00Z",
		Slides: []llmpipeline.Slide{
			{
				ID:     "s-cover",
				Layout: llmpipeline.LayoutCover,
				Blocks: []llmpipeline.SlideBlock{
					llmpipeline.HeadingBlock("Lorem Ipsum Quarterly", 1),
					llmpipeline.ParagraphBlock("Dolor sit amet review."),
				},
			},
			{
				ID:     "s-agenda",
				Layout: llmpipeline.LayoutContent,
				Blocks: []llmpipeline.SlideBlock{
					llmpipeline.HeadingBlock("Agenda", 2),
					llmpipeline.BulletsBlock("Consectetur", "Adipiscing", "Elit"),
				},
				Notes: "Keep this one short.",
			},
			{
				ID:     "s-quote",
				Layout: llmpipeline.LayoutQuote,
				Blocks: []llmpipeline.SlideBlock{
					llmpipeline.QuoteBlock("Neque porro quisquam est qui dolorem ipsum.", "Cicero"),
				},
			},
		},
	}
}

// deckResponseText wraps the canned deck JSON in conversational prose, so
// downstream extraction has something realistic to strip.
func deckResponseText(model string) string {
	raw := patchResponseJSON
	if !strings.Contains(model, "patch") {
		data, err := json.Marshal(mockDeck())
		if err != nil {
			data = []byte("{}")
		}
		raw = string(data)
	}
	return "Here is the deck you asked for:\n\n" + raw + "\n\nLet me know if anything needs adjusting."
}

// generateTextWords generates lorem ipsum text with approximately
// targetWords words.
func (p *Provider) generateTextWords(targetWords int) string {
	var sb strings.Builder
	wordCount := 0

	for wordCount < targetWords {
		sentence := p.generator.Sentence(5, 15)
		sb.WriteString(sentence)
		sb.WriteString(" ")

		wordCount += len(strings.Fields(sentence))

		// Paragraph break every ~50 words.
		if wordCount%50 == 0 {
			sb.WriteString("\n\n")
		}
	}

	return strings.TrimSpace(sb.String())
}

// estimateTokens estimates the token count for a list of messages.
// Uses word count as a rough approximation.
func estimateTokens(messages []llmpipeline.ChatMessage) int {
	total := 0
	for _, msg := range messages {
		total += len(strings.Fields(msg.Text))
	}
	return total
}
