package llmpipeline

import "fmt"

// ProviderID represents a unique provider identifier.
// Using a typed constant prevents typos and provides compile-time safety.
type ProviderID string

// Known provider identifiers
const (
	// ProviderAnthropic is Anthropic's Messages API
	ProviderAnthropic ProviderID = "anthropic"

	// ProviderOpenRouter is OpenRouter's OpenAI-compatible proxy API
	ProviderOpenRouter ProviderID = "openrouter"

	// ProviderLorem is the offline mock provider for testing and development
	ProviderLorem ProviderID = "lorem"
)

// String returns the string representation of the provider ID
func (p ProviderID) String() string {
	return string(p)
}

// IsValid returns true if the provider ID is a known provider
func (p ProviderID) IsValid() bool {
	switch p {
	case ProviderAnthropic, ProviderOpenRouter, ProviderLorem:
		return true
	default:
		return false
	}
}

// ParseProviderID converts a string (a CLI flag, a config value) into a
// known ProviderID.
func ParseProviderID(s string) (ProviderID, error) {
	id := ProviderID(s)
	if !id.IsValid() {
		return "", fmt.Errorf("unknown provider %q (valid: %s, %s, %s)",
			s, ProviderAnthropic, ProviderOpenRouter, ProviderLorem)
	}
	return id, nil
}
