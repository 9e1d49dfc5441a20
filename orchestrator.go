package llmpipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// structuredPreamble frames every structured request. It constrains output
// style, not correctness; the schema contract carries the shape rules.
const structuredPreamble = `You are a slide deck assistant embedded in a presentation editor. You turn requests into structured deck documents.

Style constraints:
- Keep slide text tight; prefer short phrases over full sentences.
- Use at most five items per bullets block.
- Never invent image URLs; only use URLs given in the request or context.
- Keep code blocks under twenty lines.`

// StructuredResult is the outcome of a structured completion. RawJSON is
// whatever ExtractObject isolated from the model's reply ("{}" in the worst
// case), IsPatch the textual patch-marker probe, and Warnings the
// informational findings of the deck validation engine.
type StructuredResult struct {
	RawJSON  string
	IsPatch  bool
	Warnings []ValidationWarning
}

// Orchestrator drives one provider and model through the pipeline's three
// request shapes: plain completion, paced streaming, and structured
// generation. It holds only immutable configuration; concurrent calls on one
// Orchestrator are independent.
type Orchestrator struct {
	provider  Provider
	model     string
	system    *string
	maxTokens int
	pacer     PacerConfig
}

// OrchestratorOption customizes an Orchestrator
type OrchestratorOption func(*Orchestrator)

// WithSystemPrompt sets a system prompt sent with every request
func WithSystemPrompt(system string) OrchestratorOption {
	return func(o *Orchestrator) {
		o.system = &system
	}
}

// WithMaxTokens sets the output token budget for every request
func WithMaxTokens(maxTokens int) OrchestratorOption {
	return func(o *Orchestrator) {
		o.maxTokens = maxTokens
	}
}

// WithPacerConfig overrides the streaming chunk size and pacing interval
func WithPacerConfig(cfg PacerConfig) OrchestratorOption {
	return func(o *Orchestrator) {
		o.pacer = cfg
	}
}

// NewOrchestrator creates an Orchestrator for one provider and model
func NewOrchestrator(provider Provider, model string, opts ...OrchestratorOption) (*Orchestrator, error) {
	if provider == nil {
		return nil, fmt.Errorf("provider is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}

	o := &Orchestrator{
		provider: provider,
		model:    model,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Ask sends a plain completion and returns the response text
func (o *Orchestrator) Ask(ctx context.Context, prompt string) (string, error) {
	completion, err := o.provider.Complete(ctx, o.newRequest(prompt, o.system))
	if err != nil {
		return "", err
	}
	return completion.Text, nil
}

// Stream sends a streaming completion. Provider deltas are paced into
// consumer-sized chunks and handed to sink in order; the returned text is
// the exact concatenation of every delivered chunk. The final short chunk
// flushes only on successful stream end, so a failed or cancelled stream
// delivers nothing further.
func (o *Orchestrator) Stream(ctx context.Context, prompt string, sink ChunkSink) (string, error) {
	pacer := NewDeltaPacerWith(sink, o.pacer)

	var full strings.Builder
	_, err := o.provider.StreamComplete(ctx, o.newRequest(prompt, o.system), func(delta string) error {
		full.WriteString(delta)
		return pacer.Push(ctx, delta)
	})
	if err != nil {
		return "", err
	}

	if err := pacer.Finish(ctx); err != nil {
		return "", err
	}
	return full.String(), nil
}

// GenerateStructured asks the model for a document matching a registered
// schema and isolates the structured reply.
//
// The request is assembled as a fixed protocol: the style preamble, the
// schema's contract and worked example verbatim, the caller prompt, the
// context object as pretty JSON, and a closing instruction that the reply
// must be exactly one JSON object. A nil or unserializable context degrades
// to "{}" rather than failing the call.
//
// The reply never fails for shape reasons: RawJSON is "{}" and IsPatch false
// in the worst case. Errors are reserved for unknown schemas and
// transport/cancellation failures. One network call, no retry.
func (o *Orchestrator) GenerateStructured(ctx context.Context, prompt string, contextObj any, schemaName string) (*StructuredResult, error) {
	schema, err := CreateSchema(schemaName)
	if err != nil {
		return nil, err
	}

	system := structuredPreamble
	if o.system != nil && *o.system != "" {
		system = system + "\n\n" + *o.system
	}

	completion, err := o.provider.Complete(ctx, o.newRequest(buildStructuredPrompt(schema, prompt, contextObj), &system))
	if err != nil {
		return nil, err
	}

	raw := ExtractObject(completion.Text)
	result := &StructuredResult{
		RawJSON: raw,
		IsPatch: ContainsPatchTrue(raw),
	}

	// Deck validation only makes sense for the deck-shaped built-ins;
	// custom schemas get the raw document and nothing else.
	if schemaName == SchemaDeck || schemaName == SchemaDeckPatch {
		result.Warnings = ValidateDeck(raw)
	}

	return result, nil
}

// Provider returns the provider this orchestrator drives
func (o *Orchestrator) Provider() Provider {
	return o.provider
}

// Model returns the model id this orchestrator requests
func (o *Orchestrator) Model() string {
	return o.model
}

func (o *Orchestrator) newRequest(prompt string, system *string) *CompletionRequest {
	return &CompletionRequest{
		Model:     o.model,
		MaxTokens: o.maxTokens,
		System:    system,
		Messages:  []ChatMessage{NewUserMessage(prompt)},
	}
}

func buildStructuredPrompt(schema *Schema, prompt string, contextObj any) string {
	var sb strings.Builder
	sb.WriteString(schema.Contract)
	if schema.Example != "" {
		sb.WriteString("\n\nExample of a conforming response:\n")
		sb.WriteString(schema.Example)
	}
	sb.WriteString("\n\nRequest:\n")
	sb.WriteString(prompt)
	sb.WriteString("\n\nContext:\n")
	sb.WriteString(serializeContext(contextObj))
	sb.WriteString("\n\nRespond with exactly one JSON object matching the shape above. No other prose.")
	return sb.String()
}

// serializeContext renders the context object as pretty JSON. A string is
// taken as a raw JSON document (decks ride through the pipeline as raw
// JSON); anything else marshals. Whatever is not a JSON object degrades to
// the empty object literal.
func serializeContext(contextObj any) string {
	if contextObj == nil {
		return "{}"
	}

	if s, ok := contextObj.(string); ok {
		trimmed := strings.TrimSpace(s)
		if !gjson.Valid(trimmed) || !gjson.Parse(trimmed).IsObject() {
			return "{}"
		}
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, []byte(trimmed), "", "  "); err != nil {
			return "{}"
		}
		return pretty.String()
	}

	data, err := json.MarshalIndent(contextObj, "", "  ")
	if err != nil {
		return "{}"
	}
	if !gjson.ParseBytes(data).IsObject() {
		return "{}"
	}
	return string(data)
}
