package llmpipeline

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// IsPatchDocument reports whether a raw document carries a literal boolean
// `"patch": true` marker, by parsing rather than by the textual heuristic.
func IsPatchDocument(raw string) bool {
	if !gjson.Valid(raw) {
		return false
	}
	return gjson.Get(raw, "patch").Type == gjson.True
}

// ApplyPatch merges a patch response onto an existing deck document and
// returns the merged JSON. Untouched parts of the base keep their
// formatting.
//
// Merge rules:
//   - patch slides replace base slides with the same id, in place
//   - patch slides with no id, or an id the base does not have, append in
//     patch order
//   - top-level title, theme, and meta overwrite when the patch carries them
//   - createdAt keeps the base value
//   - the patch marker itself never copies onto the result
func ApplyPatch(baseJSON, patchJSON string) (string, error) {
	if !gjson.Valid(baseJSON) || !gjson.Parse(baseJSON).IsObject() {
		return "", fmt.Errorf("base document is not a JSON object")
	}
	if !gjson.Valid(patchJSON) || !gjson.Parse(patchJSON).IsObject() {
		return "", fmt.Errorf("patch document is not a JSON object")
	}

	patch := gjson.Parse(patchJSON)
	merged := baseJSON
	var err error

	for _, field := range []string{"title", "theme", "meta"} {
		value := patch.Get(field)
		if !value.Exists() {
			continue
		}
		merged, err = sjson.SetRaw(merged, field, value.Raw)
		if err != nil {
			return "", fmt.Errorf("failed to merge field %q: %w", field, err)
		}
	}

	patchSlides := patch.Get("slides")
	if !patchSlides.IsArray() {
		return merged, nil
	}

	for _, slide := range patchSlides.Array() {
		path := "slides.-1" // append
		if id := slide.Get("id").String(); id != "" {
			// Re-scan on every pass so earlier appends keep indexes honest.
			for i, existing := range gjson.Get(merged, "slides").Array() {
				if existing.Get("id").String() == id {
					path = fmt.Sprintf("slides.%d", i)
					break
				}
			}
		}
		merged, err = sjson.SetRaw(merged, path, slide.Raw)
		if err != nil {
			return "", fmt.Errorf("failed to merge slide: %w", err)
		}
	}

	return merged, nil
}
