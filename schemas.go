package llmpipeline

import (
	"errors"
	"fmt"
)

// Built-in schema names
const (
	SchemaDeck      = "deck"
	SchemaDeckPatch = "deck_patch"
)

const deckContract = `Respond with a single JSON object describing a complete slide deck. Output only the JSON object, with no prose before or after it.

Required top-level fields:
  "id"        string, stable deck identifier
  "title"     string, deck title
  "theme"     string, visual theme name
  "createdAt" string, ISO 8601 timestamp
  "slides"    array of slide objects, in presentation order

Optional top-level fields:
  "meta"      object, free-form deck metadata

Each slide object:
  "id"        string, optional but recommended (stays stable across edits)
  "layout"    one of: "cover", "content", "split", "media", "quote", "section", "closing"
  "blocks"    array of block objects
  "notes"     string, optional speaker notes

Each block object carries a "kind" field selecting its shape:
  {"kind": "heading", "text": string, "level": integer}
  {"kind": "paragraph", "text": string}
  {"kind": "bullets", "items": [string, ...]}
  {"kind": "image", "url": string, "alt": string (optional)}
  {"kind": "quote", "text": string, "attribution": string (optional)}
  {"kind": "code", "source": string, "language": string (optional)}
  {"kind": "table", "columns": [string, ...], "rows": [[string, ...], ...]}`

const deckExample = `{
  "id": "deck-q3-review",
  "title": "Q3 Review",
  "theme": "midnight",
  "createdAt": "2026-07-01T10:00:00Z",
  "slides": [
    {
      "id": "s-cover",
      "layout": "cover",
      "blocks": [
        {"kind": "heading", "text": "Q3 Review", "level": 1},
        {"kind": "paragraph", "text": "Revenue, churn, and the road ahead"}
      ]
    },
    {
      "id": "s-metrics",
      "layout": "content",
      "blocks": [
        {"kind": "heading", "text": "Key Metrics", "level": 2},
        {"kind": "bullets", "items": ["Revenue up 12% quarter over quarter", "Churn down 0.4 points"]},
        {"kind": "table", "columns": ["Metric", "Value"], "rows": [["ARR", "$8.2M"], ["NRR", "117%"]]}
      ],
      "notes": "Pause on the churn number; it answers last quarter's board question."
    }
  ]
}`

const deckPatchContract = `The user is editing an existing slide deck. Respond with a single JSON object carrying only your changes. Output only the JSON object, with no prose before or after it.

Rules:
  - Set "patch": true at the top level.
  - Include a "slides" array with only the slides you changed or added.
  - A changed slide must reuse the "id" of the slide it replaces, exactly.
  - A new slide should use a fresh "id"; it will be appended to the deck.
  - Include top-level "title", "theme", or "meta" only if you changed them.
  - Never include "createdAt"; it belongs to the original document.
  - Slides and blocks follow the same shapes as a full deck document.

The current deck is provided as JSON context; do not repeat its unchanged parts.`

const deckPatchExample = `{
  "patch": true,
  "slides": [
    {
      "id": "s-metrics",
      "layout": "content",
      "blocks": [
        {"kind": "heading", "text": "Key Metrics", "level": 2},
        {"kind": "bullets", "items": ["Revenue up 12% quarter over quarter", "Churn down 0.4 points", "Two enterprise logos closed"]}
      ]
    }
  ]
}`

// NewDeckSchema creates the full slide deck schema.
// The orchestrator sends its contract and example when a complete document
// is wanted.
func NewDeckSchema() (*Schema, error) {
	schema := &Schema{
		Name:     SchemaDeck,
		Contract: deckContract,
		Example:  deckExample,
	}

	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create deck schema: %w", err)
	}

	return schema, nil
}

// NewDeckPatchSchema creates the partial deck update schema.
// Used when the user edits an existing deck; the current document rides in
// the request's context object.
func NewDeckPatchSchema() (*Schema, error) {
	schema := &Schema{
		Name:     SchemaDeckPatch,
		Contract: deckPatchContract,
		Example:  deckPatchExample,
	}

	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create deck patch schema: %w", err)
	}

	return schema, nil
}

// NewCustomSchema creates a schema for a caller-defined document shape.
//
// Parameters:
//   - name: Schema name (required)
//   - contract: Textual description of the required JSON shape (required)
//   - example: Worked example of a conforming response (optional but recommended)
func NewCustomSchema(name string, contract string, example string) (*Schema, error) {
	if name == "" {
		return nil, errors.New("schema name is required")
	}

	if contract == "" {
		return nil, errors.New("schema contract is required")
	}

	schema := &Schema{
		Name:     name,
		Contract: contract,
		Example:  example,
	}

	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create custom schema: %w", err)
	}

	return schema, nil
}
