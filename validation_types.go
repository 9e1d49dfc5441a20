package llmpipeline

import "github.com/tidwall/gjson"

// Severity indicates how serious a validation warning is
type Severity string

const (
	SeverityInfo    Severity = "info"    // Informational (might be expected)
	SeverityWarning Severity = "warning" // Potentially problematic
	SeverityError   Severity = "error"   // Likely to break rendering or merging
)

// WarningCode is a machine-readable identifier for validation warnings
type WarningCode string

const (
	// Document warnings
	WarningCodeDeckNotObject    WarningCode = "DECK_NOT_OBJECT"
	WarningCodeDeckFieldMissing WarningCode = "DECK_FIELD_MISSING"
	WarningCodeSlidesEmpty      WarningCode = "SLIDES_EMPTY"

	// Slide warnings
	WarningCodeSlideFieldMissing WarningCode = "SLIDE_FIELD_MISSING"
	WarningCodeLayoutUnknown     WarningCode = "LAYOUT_UNKNOWN"
	WarningCodePatchSlideNoID    WarningCode = "PATCH_SLIDE_NO_ID"

	// Block warnings
	WarningCodeBlockKindUnknown  WarningCode = "BLOCK_KIND_UNKNOWN"
	WarningCodeBlockFieldMissing WarningCode = "BLOCK_FIELD_MISSING"
)

// ValidationWarning represents a potential issue with a generated deck
// document. These are informational - the pipeline never blocks a response
// based on warnings. The consumer decides whether to render, repair, or
// re-prompt.
type ValidationWarning struct {
	Code     WarningCode // Machine-readable code
	Category string      // "document", "slide", "block"
	Field    string      // Path to the offending value (e.g., "slides.2.blocks.0.text")
	Value    any         // The potentially problematic value
	Message  string      // Human-readable warning
	Severity Severity    // How serious this warning is
}

// ValidationRule interface allows adding custom validation logic
type ValidationRule interface {
	// Name returns a human-readable name for this rule
	Name() string

	// Check inspects a parsed deck document and returns warnings
	Check(doc gjson.Result) []ValidationWarning
}
