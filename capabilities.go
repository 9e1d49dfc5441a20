package llmpipeline

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/capabilities/anthropic.yaml
var anthropicCapabilitiesYAML []byte

//go:embed config/capabilities/openrouter.yaml
var openrouterCapabilitiesYAML []byte

// Capabilities Philosophy:
//
// This package provides MODEL METADATA for UX, pricing estimates, and output
// budget clamping. It does NOT enforce validation - provider APIs are the
// source of truth.
//
// Use cases:
//  - Display model limits/features in UI
//  - Calculate pricing estimates
//  - Clamp requested output budgets to what a model can actually emit
//
// Capabilities may be outdated as providers release new models.
// Library users can override embedded capabilities by:
//  1. Calling LoadCapabilitiesFromFile() with custom YAML
//  2. Calling RegisterProviderCapabilities() programmatically
//
// The library trusts provider APIs to reject requests it lets through.

// ProviderCapabilities represents the full capability configuration for a provider
type ProviderCapabilities struct {
	Version     string                     `yaml:"version"`      // Semantic version (e.g., "1.0.0")
	LastUpdated string                     `yaml:"last_updated"` // ISO 8601 date (e.g., "2026-01-15")
	Provider    string                     `yaml:"provider"`
	Models      map[string]ModelCapability `yaml:"models"`
}

// ModelCapability represents the capabilities of a specific model
type ModelCapability struct {
	ContextWindow          int           `yaml:"context_window"`
	MaxOutputTokens        int           `yaml:"max_output_tokens"`
	DefaultMaxOutputTokens int           `yaml:"default_max_output_tokens"`
	Features               ModelFeatures `yaml:"features"`
	Pricing                PricingInfo   `yaml:"pricing"`
}

// ModelFeatures indicates which features a model supports
type ModelFeatures struct {
	Streaming        bool `yaml:"streaming"`
	StructuredOutput bool `yaml:"structured_output"`
	Vision           bool `yaml:"vision"`
}

// PricingInfo contains model pricing in USD per million tokens
type PricingInfo struct {
	InputPer1M  float64 `yaml:"input_per_1m"`
	OutputPer1M float64 `yaml:"output_per_1m"`
}

// CapabilityRegistry manages provider capabilities
type CapabilityRegistry struct {
	capabilities map[string]*ProviderCapabilities
	mu           sync.RWMutex
}

var (
	globalRegistry     *CapabilityRegistry
	globalRegistryOnce sync.Once
)

// GetCapabilityRegistry returns the global capability registry (singleton)
func GetCapabilityRegistry() *CapabilityRegistry {
	globalRegistryOnce.Do(func() {
		globalRegistry = &CapabilityRegistry{
			capabilities: make(map[string]*ProviderCapabilities),
		}
		// Load embedded catalogs. Log errors but don't panic - lookups
		// against a missing catalog degrade to "unknown model".
		embedded := map[string][]byte{
			"anthropic":  anthropicCapabilitiesYAML,
			"openrouter": openrouterCapabilitiesYAML,
		}
		for provider, data := range embedded {
			if err := globalRegistry.loadEmbedded(provider, data); err != nil {
				fmt.Printf("Warning: failed to load %s capabilities: %v\n", provider, err)
			}
		}
	})
	return globalRegistry
}

// loadEmbedded parses one embedded catalog into the registry
func (r *CapabilityRegistry) loadEmbedded(provider string, data []byte) error {
	var caps ProviderCapabilities
	if err := yaml.Unmarshal(data, &caps); err != nil {
		return fmt.Errorf("failed to unmarshal %s capabilities: %w", provider, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.capabilities[provider] = &caps

	return nil
}

// GetProviderCapabilities returns capabilities for a provider
func (r *CapabilityRegistry) GetProviderCapabilities(provider string) (*ProviderCapabilities, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	caps, ok := r.capabilities[provider]
	if !ok {
		return nil, fmt.Errorf("no capabilities found for provider: %s", provider)
	}
	return caps, nil
}

// GetModelCapability returns capabilities for a specific model
func (r *CapabilityRegistry) GetModelCapability(provider, model string) (*ModelCapability, error) {
	providerCaps, err := r.GetProviderCapabilities(provider)
	if err != nil {
		return nil, err
	}

	modelCap, ok := providerCaps.Models[model]
	if !ok {
		return nil, fmt.Errorf("model %s not found for provider %s", model, provider)
	}
	return &modelCap, nil
}

// SupportsModel checks if a provider's catalog lists a specific model
func (r *CapabilityRegistry) SupportsModel(provider, model string) bool {
	_, err := r.GetModelCapability(provider, model)
	return err == nil
}

// SupportsStreaming checks if a model supports streamed responses
func (r *CapabilityRegistry) SupportsStreaming(provider, model string) bool {
	modelCap, err := r.GetModelCapability(provider, model)
	if err != nil {
		return false
	}
	return modelCap.Features.Streaming
}

// SupportsStructuredOutput checks if a model reliably emits structured documents
func (r *CapabilityRegistry) SupportsStructuredOutput(provider, model string) bool {
	modelCap, err := r.GetModelCapability(provider, model)
	if err != nil {
		return false
	}
	return modelCap.Features.StructuredOutput
}

// SupportsVision checks if a model accepts image input
func (r *CapabilityRegistry) SupportsVision(provider, model string) bool {
	modelCap, err := r.GetModelCapability(provider, model)
	if err != nil {
		return false
	}
	return modelCap.Features.Vision
}

// ListModels returns the catalog's model ids for a provider, sorted
func (r *CapabilityRegistry) ListModels(provider string) []string {
	providerCaps, err := r.GetProviderCapabilities(provider)
	if err != nil {
		return nil
	}

	models := make([]string, 0, len(providerCaps.Models))
	for model := range providerCaps.Models {
		models = append(models, model)
	}
	sort.Strings(models)
	return models
}

// ClampMaxTokens resolves a requested output budget against the catalog.
// A non-positive request takes the model's default budget; any request is
// capped at the model's maximum. Unknown models pass through with only the
// package default applied, since the provider API will do its own checking.
func (r *CapabilityRegistry) ClampMaxTokens(provider, model string, requested int) int {
	modelCap, err := r.GetModelCapability(provider, model)
	if err != nil {
		if requested <= 0 {
			return DefaultMaxTokens
		}
		return requested
	}

	if requested <= 0 {
		requested = DefaultMaxTokens
		if modelCap.DefaultMaxOutputTokens > 0 {
			requested = modelCap.DefaultMaxOutputTokens
		}
	}
	if modelCap.MaxOutputTokens > 0 && requested > modelCap.MaxOutputTokens {
		requested = modelCap.MaxOutputTokens
	}
	return requested
}

// EstimateCost returns the estimated USD cost of a completion
func (r *CapabilityRegistry) EstimateCost(provider, model string, inputTokens, outputTokens int) (float64, error) {
	modelCap, err := r.GetModelCapability(provider, model)
	if err != nil {
		return 0, err
	}

	inputCost := float64(inputTokens) / 1_000_000 * modelCap.Pricing.InputPer1M
	outputCost := float64(outputTokens) / 1_000_000 * modelCap.Pricing.OutputPer1M
	return inputCost + outputCost, nil
}

// LoadCapabilitiesFromFile loads provider capabilities from a YAML file.
// This allows library users to override embedded capabilities with custom data.
// The file format should match the embedded YAML structure.
func (r *CapabilityRegistry) LoadCapabilitiesFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read capabilities file: %w", err)
	}

	var caps ProviderCapabilities
	if err := yaml.Unmarshal(data, &caps); err != nil {
		return fmt.Errorf("failed to unmarshal capabilities: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.capabilities[caps.Provider] = &caps

	return nil
}

// RegisterProviderCapabilities programmatically registers provider capabilities.
// This allows library users to define capabilities in code rather than YAML.
func (r *CapabilityRegistry) RegisterProviderCapabilities(provider string, caps *ProviderCapabilities) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.capabilities[provider] = caps
}

// LoadCapabilitiesFromFile is a convenience function that calls the global registry's LoadCapabilitiesFromFile.
func LoadCapabilitiesFromFile(path string) error {
	return GetCapabilityRegistry().LoadCapabilitiesFromFile(path)
}

// RegisterProviderCapabilities is a convenience function that calls the global registry's RegisterProviderCapabilities.
func RegisterProviderCapabilities(provider string, caps *ProviderCapabilities) {
	GetCapabilityRegistry().RegisterProviderCapabilities(provider, caps)
}

// ClampMaxTokens is a convenience function that calls the global registry's ClampMaxTokens.
func ClampMaxTokens(provider, model string, requested int) int {
	return GetCapabilityRegistry().ClampMaxTokens(provider, model, requested)
}
