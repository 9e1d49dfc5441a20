package llmpipeline

import "strings"

// ExtractObject cuts the widest brace-delimited region out of raw model
// output: everything from the first '{' through the last '}'. Models wrap
// JSON in prose, code fences, or trailing commentary; the widest cut
// tolerates all of those as long as the document itself is the outermost
// object. It does not validate what it extracts.
//
// When no such region exists the empty object "{}" is returned, so callers
// can hand the result straight to a JSON parser and deal with one failure
// mode instead of two.
func ExtractObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return "{}"
	}
	return raw[start : end+1]
}

// ContainsPatchTrue reports whether the document carries a `"patch": true`
// marker. It strips spaces, tabs, and line breaks and then looks for the
// literal `"patch":true`, which tolerates arbitrary JSON formatting but
// matches the marker anywhere in the document, nested objects included.
// Callers treat the answer as a routing hint, not as parsed truth.
func ContainsPatchTrue(doc string) bool {
	stripped := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, doc)
	return strings.Contains(stripped, `"patch":true`)
}
