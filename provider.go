package llmpipeline

import (
	"context"
)

// Provider defines the interface that all completion providers implement.
// The abstraction keeps the orchestrator, pacer, and extraction layers
// independent of which remote API answers.
//
// Types used by this interface:
//   - CompletionRequest, ChatMessage: defined in request.go and types.go
//   - Completion: defined in response.go
//   - DeltaSink: defined in streaming.go
type Provider interface {
	// Complete sends the request on the non-streaming path and blocks
	// until the full response arrives. The returned Completion carries
	// the concatenated assistant text plus best-effort metadata.
	Complete(ctx context.Context, req *CompletionRequest) (*Completion, error)

	// StreamComplete sends the request on the streaming path, invoking
	// sink with each raw text delta in arrival order from the goroutine
	// reading the stream. It blocks until the stream ends and returns
	// the accumulated text. A sink error aborts the stream and is
	// returned as-is. After ctx is cancelled the sink is not invoked
	// again and the call reports the cancellation.
	StreamComplete(ctx context.Context, req *CompletionRequest, sink DeltaSink) (*Completion, error)

	// Name returns the provider identifier (e.g. "anthropic", "lorem").
	Name() ProviderID

	// SupportsModel returns true if the provider supports the given model.
	SupportsModel(model string) bool
}
