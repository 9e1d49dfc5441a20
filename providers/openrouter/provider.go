// Package openrouter implements the llmpipeline.Provider interface against
// OpenRouter's OpenAI-compatible chat completions API, which fronts models
// from many vendors through one endpoint.
package openrouter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/deckhandhq/deckhand-llm-go"
)

const (
	defaultBaseURL  = "https://openrouter.ai/api/v1"
	completionsPath = "/chat/completions"

	requestTimeout = 120 * time.Second
)

// Provider implements the llmpipeline.Provider interface for OpenRouter.
type Provider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Provider at construction time.
type Option func(*Provider)

// WithBaseURL points the provider at a different endpoint, such as a proxy
// or a test server. The completions path is appended to it unchanged.
func WithBaseURL(baseURL string) Option {
	return func(p *Provider) {
		p.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient replaces the default HTTP client, including its timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = client
	}
}

// NewProvider creates a new OpenRouter provider with the given API key.
func NewProvider(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, llmpipeline.ErrInvalidAPIKey
	}

	p := &Provider{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() llmpipeline.ProviderID {
	return llmpipeline.ProviderOpenRouter
}

// SupportsModel returns true if this provider supports the given model.
// OpenRouter supports models in "provider/model" format (e.g., "anthropic/claude-sonnet-4-5")
// or special models like "openrouter/auto"
func (p *Provider) SupportsModel(model string) bool {
	// OpenRouter uses provider/model format
	return strings.Contains(model, "/")
}

// Complete sends the request on the buffered path and decodes the single
// JSON response body into a Completion.
func (p *Provider) Complete(ctx context.Context, req *llmpipeline.CompletionRequest) (*llmpipeline.Completion, error) {
	if err := p.checkModel(req.Model); err != nil {
		return nil, err
	}

	body, err := encodeChatRequest(req, false)
	if err != nil {
		return nil, err
	}

	httpReq, err := p.buildHTTPRequest(ctx, body, false)
	if err != nil {
		return nil, err
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, p.connectionError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, p.handleErrorResponse(resp)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, p.connectionError(ctx, err)
	}

	return decodeChatResponse(raw), nil
}

// StreamComplete sends the request on the SSE path, invoking sink with each
// text delta in arrival order. It blocks until the stream ends and returns
// the accumulated text.
func (p *Provider) StreamComplete(ctx context.Context, req *llmpipeline.CompletionRequest, sink llmpipeline.DeltaSink) (*llmpipeline.Completion, error) {
	if err := p.checkModel(req.Model); err != nil {
		return nil, err
	}

	body, err := encodeChatRequest(req, true)
	if err != nil {
		return nil, err
	}

	httpReq, err := p.buildHTTPRequest(ctx, body, true)
	if err != nil {
		return nil, err
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, p.connectionError(ctx, err)
	}
	defer resp.Body.Close()

	// A failure status arrives as a plain JSON body even on the streaming
	// path; surface it before entering the parse loop.
	if resp.StatusCode != http.StatusOK {
		return nil, p.handleErrorResponse(resp)
	}

	return readStream(ctx, resp.Body, sink)
}

// checkModel rejects model ids this provider cannot serve.
func (p *Provider) checkModel(model string) error {
	if p.SupportsModel(model) {
		return nil
	}
	return &llmpipeline.ModelError{
		Model:    model,
		Provider: p.Name().String(),
		Reason:   "model not supported by OpenRouter (must be in 'provider/model' format)",
		Err:      llmpipeline.ErrInvalidModel,
	}
}

// buildHTTPRequest assembles the POST with auth and content headers. The
// streaming variant additionally asks for an event-stream response.
func (p *Provider) buildHTTPRequest(ctx context.Context, body []byte, stream bool) (*http.Request, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+completionsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	if stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	return httpReq, nil
}

// connectionError classifies a failure below the HTTP status layer. Caller
// cancellation is reported as such; everything else is a retryable
// transport failure with no status code.
func (p *Provider) connectionError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return &llmpipeline.TransportError{
		Provider:  p.Name().String(),
		Body:      err.Error(),
		Retryable: true,
		Err:       llmpipeline.ErrProviderUnavailable,
	}
}

// handleErrorResponse maps a non-success status to a TransportError carrying
// the status code and whatever body the endpoint returned.
func (p *Provider) handleErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	te := &llmpipeline.TransportError{
		Provider:   p.Name().String(),
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		te.Err = llmpipeline.ErrInvalidAPIKey
	case http.StatusTooManyRequests:
		te.Retryable = true
		te.Err = llmpipeline.ErrRateLimited
	case http.StatusPaymentRequired:
		// Out of credits. Retrying without topping up cannot succeed.
		te.Err = llmpipeline.ErrProviderUnavailable
	case http.StatusRequestTimeout:
		te.Retryable = true
		te.Err = llmpipeline.ErrProviderUnavailable
	case http.StatusNotFound:
		te.Err = llmpipeline.ErrInvalidModel
	case http.StatusBadRequest:
		te.Err = llmpipeline.ErrInvalidRequest
	default:
		if resp.StatusCode >= 500 {
			te.Retryable = true
			te.Err = llmpipeline.ErrProviderUnavailable
		}
	}

	return te
}
