package llmpipeline

import (
	"sync"

	"github.com/tidwall/gjson"
)

// ValidationEngine manages deck validation rules and executes them
type ValidationEngine struct {
	rules []ValidationRule
	mu    sync.RWMutex
}

var (
	globalValidationEngine     *ValidationEngine
	globalValidationEngineOnce sync.Once
)

// GetValidationEngine returns the global validation engine (singleton)
func GetValidationEngine() *ValidationEngine {
	globalValidationEngineOnce.Do(func() {
		globalValidationEngine = &ValidationEngine{
			rules: make([]ValidationRule, 0),
		}
		// Register default rules
		globalValidationEngine.registerDefaultRules()
	})
	return globalValidationEngine
}

// registerDefaultRules registers the built-in validation rules
func (ve *ValidationEngine) registerDefaultRules() {
	ve.AddRule(&DocumentShapeRule{})
	ve.AddRule(&SlideShapeRule{})
	ve.AddRule(&BlockShapeRule{})
}

// AddRule adds a validation rule to the engine
func (ve *ValidationEngine) AddRule(rule ValidationRule) {
	ve.mu.Lock()
	defer ve.mu.Unlock()
	ve.rules = append(ve.rules, rule)
}

// RemoveRule removes a validation rule by name
func (ve *ValidationEngine) RemoveRule(name string) bool {
	ve.mu.Lock()
	defer ve.mu.Unlock()

	for i, rule := range ve.rules {
		if rule.Name() == name {
			ve.rules = append(ve.rules[:i], ve.rules[i+1:]...)
			return true
		}
	}
	return false
}

// Validate runs all validation rules against a raw deck document.
// A document that is not a JSON object yields a single warning; rules only
// run on parseable objects.
func (ve *ValidationEngine) Validate(doc string) []ValidationWarning {
	if !gjson.Valid(doc) {
		return []ValidationWarning{notAnObjectWarning(doc)}
	}
	parsed := gjson.Parse(doc)
	if !parsed.IsObject() {
		return []ValidationWarning{notAnObjectWarning(doc)}
	}

	ve.mu.RLock()
	defer ve.mu.RUnlock()

	var warnings []ValidationWarning
	for _, rule := range ve.rules {
		warnings = append(warnings, rule.Check(parsed)...)
	}
	return warnings
}

func notAnObjectWarning(doc string) ValidationWarning {
	value := doc
	if len(value) > 80 {
		value = value[:80] + "..."
	}
	return ValidationWarning{
		Code:     WarningCodeDeckNotObject,
		Category: "document",
		Field:    "",
		Value:    value,
		Message:  "Deck document is not a JSON object",
		Severity: SeverityError,
	}
}

// ValidateDeck returns potential issues with a generated deck document.
// These are INFORMATIONAL - callers can choose to show warnings or ignore them.
// The pipeline does NOT reject responses based on warnings; the consumer
// owns that decision.
//
// This is the main entry point for validation. It uses the global validation engine.
func ValidateDeck(doc string) []ValidationWarning {
	return GetValidationEngine().Validate(doc)
}

// FilterWarningsBySeverity returns warnings matching the specified severities
func FilterWarningsBySeverity(warnings []ValidationWarning, severities ...Severity) []ValidationWarning {
	filtered := make([]ValidationWarning, 0)
	severityMap := make(map[Severity]bool)
	for _, s := range severities {
		severityMap[s] = true
	}

	for _, w := range warnings {
		if severityMap[w.Severity] {
			filtered = append(filtered, w)
		}
	}
	return filtered
}

// FilterWarningsByCategory returns warnings matching the specified categories
func FilterWarningsByCategory(warnings []ValidationWarning, categories ...string) []ValidationWarning {
	filtered := make([]ValidationWarning, 0)
	categoryMap := make(map[string]bool)
	for _, c := range categories {
		categoryMap[c] = true
	}

	for _, w := range warnings {
		if categoryMap[w.Category] {
			filtered = append(filtered, w)
		}
	}
	return filtered
}

// FilterWarningsByCode returns warnings matching the specified codes
func FilterWarningsByCode(warnings []ValidationWarning, codes ...WarningCode) []ValidationWarning {
	filtered := make([]ValidationWarning, 0)
	codeMap := make(map[WarningCode]bool)
	for _, c := range codes {
		codeMap[c] = true
	}

	for _, w := range warnings {
		if codeMap[w.Code] {
			filtered = append(filtered, w)
		}
	}
	return filtered
}
