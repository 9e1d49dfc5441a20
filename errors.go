package llmpipeline

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
// These can be checked with errors.Is().
var (
	// ErrInvalidModel indicates the requested model is not supported by the provider.
	ErrInvalidModel = errors.New("llmpipeline: invalid or unsupported model")

	// ErrInvalidAPIKey indicates the API key is missing, malformed, or unauthorized.
	ErrInvalidAPIKey = errors.New("llmpipeline: invalid API key")

	// ErrRateLimited indicates the provider's rate limit has been exceeded.
	ErrRateLimited = errors.New("llmpipeline: rate limit exceeded")

	// ErrInvalidRequest indicates the request parameters are invalid.
	ErrInvalidRequest = errors.New("llmpipeline: invalid request")

	// ErrProviderUnavailable indicates the provider service is down or unreachable.
	ErrProviderUnavailable = errors.New("llmpipeline: provider unavailable")
)

// TransportError represents a failed exchange with a provider endpoint:
// a non-2xx status or a connection-level failure. The status code and raw
// body are preserved so callers can display or log the provider's diagnostic.
type TransportError struct {
	Provider   string // The provider name
	StatusCode int    // HTTP status code, 0 for connection-level failures
	Body       string // Raw response body text (may be empty)
	Retryable  bool   // Whether retrying the call could plausibly succeed
	Err        error  // Wrapped sentinel error (ErrRateLimited, ErrProviderUnavailable, etc.)
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider '%s' transport error (status %d): %s", e.Provider, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("provider '%s' transport error: %s", e.Provider, e.Body)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ModelError represents an error related to model validation or availability.
type ModelError struct {
	Model    string // The model that was requested
	Provider string // The provider name
	Reason   string // Human-readable explanation
	Err      error  // Wrapped error (usually ErrInvalidModel)
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("model '%s' for provider '%s': %s (%v)", e.Model, e.Provider, e.Reason, e.Err)
	}
	return fmt.Sprintf("model '%s' for provider '%s': %s", e.Model, e.Provider, e.Reason)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// IsRetryable checks if an error is potentially retryable.
// Returns true for rate limits, temporary unavailability, timeouts, and
// 5xx transport errors. The pipeline never retries internally; this is
// advice for the caller.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return transportErr.Retryable
	}

	if errors.Is(err, ErrRateLimited) {
		return true
	}

	if errors.Is(err, ErrProviderUnavailable) {
		return true
	}

	// Transport deadline expiry is retryable; caller cancellation is not.
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	return false
}

// IsInvalidRequest checks if an error indicates invalid request parameters.
// These errors are not retryable and require request changes.
func IsInvalidRequest(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrInvalidRequest) {
		return true
	}

	if errors.Is(err, ErrInvalidModel) {
		return true
	}

	var modelErr *ModelError
	return errors.As(err, &modelErr)
}

// IsAuthError checks if an error is related to authentication.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrInvalidAPIKey) {
		return true
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		// HTTP 401/403 indicate auth issues
		return transportErr.StatusCode == 401 || transportErr.StatusCode == 403
	}

	return false
}

// IsCancellation reports whether an error is the caller cancelling the call.
// A cancelled call is a distinct outcome from a transport failure: nothing
// was wrong with the exchange, the caller stopped wanting it.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}
