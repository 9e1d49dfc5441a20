package llmpipeline

// Completion contains a finished completion, from either path.
// For a streaming call, Text equals the exact concatenation of every chunk
// delivered to the caller's sink.
type Completion struct {
	// Text is the full assistant text.
	Text string

	// Model is the model that answered (may differ from the request if
	// the provider aliased it). Best effort; empty when the response did
	// not carry it.
	Model string

	// StopReason indicates why generation stopped (e.g. "end_turn",
	// "max_tokens"). Best effort.
	StopReason string

	// InputTokens is the prompt token count reported by the provider.
	InputTokens int

	// OutputTokens is the generated token count reported by the provider.
	OutputTokens int
}
