package llmpipeline

// DefaultMaxTokens is the request token budget used when a caller leaves
// MaxTokens unset. It is clamped to the model ceiling like any other value
// before transmission.
const DefaultMaxTokens = 4096

// CompletionRequest contains the parameters for one completion call.
// Constructed per call and not reused; whether the call streams is decided
// by which Provider method it is passed to.
type CompletionRequest struct {
	// Model is the model identifier (e.g. "claude-sonnet-4-5").
	Model string

	// MaxTokens is the requested output token budget. Zero or negative
	// means DefaultMaxTokens. The encoding layer clamps the effective
	// value to the model's ceiling before transmission.
	MaxTokens int

	// System is the optional system prompt. Nil omits the wire field.
	// System-role messages in Messages are folded into it by
	// NormalizeMessages.
	System *string

	// Messages is the ordered conversation sent with this request.
	Messages []ChatMessage
}

// GetMaxTokens returns the requested token budget, or DefaultMaxTokens when
// unset.
func (r *CompletionRequest) GetMaxTokens() int {
	if r.MaxTokens > 0 {
		return r.MaxTokens
	}
	return DefaultMaxTokens
}

// GetSystem returns the system prompt and whether one is set.
func (r *CompletionRequest) GetSystem() (string, bool) {
	if r.System == nil {
		return "", false
	}
	return *r.System, true
}

// SetSystem sets the system prompt.
func (r *CompletionRequest) SetSystem(s string) {
	r.System = &s
}

// Clone returns a copy of the request with its own message slice, so the
// encoding layer can normalize messages without mutating the caller's value.
func (r *CompletionRequest) Clone() *CompletionRequest {
	out := *r
	if r.System != nil {
		s := *r.System
		out.System = &s
	}
	out.Messages = make([]ChatMessage, len(r.Messages))
	copy(out.Messages, r.Messages)
	return &out
}
