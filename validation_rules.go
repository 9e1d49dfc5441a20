package llmpipeline

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// isPatchDoc reports whether the parsed document carries a literal boolean
// patch marker. The textual heuristic ContainsPatchTrue answers the same
// question before parsing; this is the parsed-side equivalent.
func isPatchDoc(doc gjson.Result) bool {
	return doc.Get("patch").Type == gjson.True
}

// DocumentShapeRule checks the top level of a deck document
type DocumentShapeRule struct{}

func (r *DocumentShapeRule) Name() string {
	return "Document Shape"
}

func (r *DocumentShapeRule) Check(doc gjson.Result) []ValidationWarning {
	var warnings []ValidationWarning

	// Patch documents carry only the modified slides; the identity fields
	// live on the base deck they will be merged into.
	required := []string{"id", "title", "theme", "createdAt", "slides"}
	if isPatchDoc(doc) {
		required = []string{"slides"}
	}

	for _, field := range required {
		if !doc.Get(field).Exists() {
			warnings = append(warnings, ValidationWarning{
				Code:     WarningCodeDeckFieldMissing,
				Category: "document",
				Field:    field,
				Value:    nil,
				Message:  fmt.Sprintf("Deck document is missing required field %q", field),
				Severity: SeverityError,
			})
		}
	}

	slides := doc.Get("slides")
	if slides.Exists() {
		if !slides.IsArray() {
			warnings = append(warnings, ValidationWarning{
				Code:     WarningCodeDeckFieldMissing,
				Category: "document",
				Field:    "slides",
				Value:    slides.Type.String(),
				Message:  "Deck field \"slides\" must be an array",
				Severity: SeverityError,
			})
		} else if len(slides.Array()) == 0 {
			warnings = append(warnings, ValidationWarning{
				Code:     WarningCodeSlidesEmpty,
				Category: "document",
				Field:    "slides",
				Value:    0,
				Message:  "Deck has no slides",
				Severity: SeverityWarning,
			})
		}
	}

	return warnings
}

// SlideShapeRule checks each slide's layout, blocks, and patch merge key
type SlideShapeRule struct{}

func (r *SlideShapeRule) Name() string {
	return "Slide Shape"
}

func (r *SlideShapeRule) Check(doc gjson.Result) []ValidationWarning {
	var warnings []ValidationWarning
	patch := isPatchDoc(doc)

	slides := doc.Get("slides")
	if !slides.IsArray() {
		return warnings
	}

	for i, slide := range slides.Array() {
		if !slide.IsObject() {
			warnings = append(warnings, ValidationWarning{
				Code:     WarningCodeSlideFieldMissing,
				Category: "slide",
				Field:    fmt.Sprintf("slides.%d", i),
				Value:    slide.Type.String(),
				Message:  fmt.Sprintf("Slide %d is not an object", i),
				Severity: SeverityError,
			})
			continue
		}

		layout := slide.Get("layout")
		switch {
		case !layout.Exists():
			warnings = append(warnings, ValidationWarning{
				Code:     WarningCodeSlideFieldMissing,
				Category: "slide",
				Field:    fmt.Sprintf("slides.%d.layout", i),
				Value:    nil,
				Message:  fmt.Sprintf("Slide %d is missing its layout tag", i),
				Severity: SeverityError,
			})
		case !SlideLayout(layout.String()).IsValid():
			warnings = append(warnings, ValidationWarning{
				Code:     WarningCodeLayoutUnknown,
				Category: "slide",
				Field:    fmt.Sprintf("slides.%d.layout", i),
				Value:    layout.String(),
				Message:  fmt.Sprintf("Slide %d has unknown layout %q", i, layout.String()),
				Severity: SeverityError,
			})
		}

		if !slide.Get("blocks").IsArray() {
			warnings = append(warnings, ValidationWarning{
				Code:     WarningCodeSlideFieldMissing,
				Category: "slide",
				Field:    fmt.Sprintf("slides.%d.blocks", i),
				Value:    nil,
				Message:  fmt.Sprintf("Slide %d is missing its blocks array", i),
				Severity: SeverityError,
			})
		}

		// Patch slides merge by id; without one the slide cannot land.
		if patch && slide.Get("id").String() == "" {
			warnings = append(warnings, ValidationWarning{
				Code:     WarningCodePatchSlideNoID,
				Category: "slide",
				Field:    fmt.Sprintf("slides.%d.id", i),
				Value:    nil,
				Message:  fmt.Sprintf("Patch slide %d has no id to merge by; it will be appended", i),
				Severity: SeverityWarning,
			})
		}
	}

	return warnings
}

// blockRequiredFields maps each block kind to the fields it cannot render without
var blockRequiredFields = map[BlockKind][]string{
	BlockHeading:   {"text", "level"},
	BlockParagraph: {"text"},
	BlockBullets:   {"items"},
	BlockImage:     {"url"},
	BlockQuote:     {"text"},
	BlockCode:      {"source"},
	BlockTable:     {"columns", "rows"},
}

// BlockShapeRule checks each block's kind discriminator and required fields
type BlockShapeRule struct{}

func (r *BlockShapeRule) Name() string {
	return "Block Shape"
}

func (r *BlockShapeRule) Check(doc gjson.Result) []ValidationWarning {
	var warnings []ValidationWarning

	slides := doc.Get("slides")
	if !slides.IsArray() {
		return warnings
	}

	for i, slide := range slides.Array() {
		blocks := slide.Get("blocks")
		if !blocks.IsArray() {
			continue
		}

		for j, block := range blocks.Array() {
			kind := BlockKind(block.Get("kind").String())
			if !kind.IsValid() {
				warnings = append(warnings, ValidationWarning{
					Code:     WarningCodeBlockKindUnknown,
					Category: "block",
					Field:    fmt.Sprintf("slides.%d.blocks.%d.kind", i, j),
					Value:    block.Get("kind").String(),
					Message:  fmt.Sprintf("Slide %d block %d has unknown kind %q", i, j, block.Get("kind").String()),
					Severity: SeverityError,
				})
				continue
			}

			for _, field := range blockRequiredFields[kind] {
				if !block.Get(field).Exists() {
					warnings = append(warnings, ValidationWarning{
						Code:     WarningCodeBlockFieldMissing,
						Category: "block",
						Field:    fmt.Sprintf("slides.%d.blocks.%d.%s", i, j, field),
						Value:    nil,
						Message:  fmt.Sprintf("Slide %d block %d (%s) is missing required field %q", i, j, kind, field),
						Severity: SeverityError,
					})
				}
			}
		}
	}

	return warnings
}
