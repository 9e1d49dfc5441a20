package llmpipeline

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SlideLayout tags how a slide is arranged
type SlideLayout string

const (
	LayoutCover   SlideLayout = "cover"   // deck opener: title, subtitle
	LayoutContent SlideLayout = "content" // standard heading plus body blocks
	LayoutSplit   SlideLayout = "split"   // two-column arrangement
	LayoutMedia   SlideLayout = "media"   // image-dominant slide
	LayoutQuote   SlideLayout = "quote"   // single centered quotation
	LayoutSection SlideLayout = "section" // section divider
	LayoutClosing SlideLayout = "closing" // deck closer
)

// String returns the string representation of the layout
func (l SlideLayout) String() string {
	return string(l)
}

// IsValid checks if the layout is one of the recognized arrangements
func (l SlideLayout) IsValid() bool {
	switch l {
	case LayoutCover, LayoutContent, LayoutSplit, LayoutMedia, LayoutQuote, LayoutSection, LayoutClosing:
		return true
	}
	return false
}

// ValidLayouts returns every recognized slide layout
func ValidLayouts() []SlideLayout {
	return []SlideLayout{
		LayoutCover, LayoutContent, LayoutSplit, LayoutMedia, LayoutQuote, LayoutSection, LayoutClosing,
	}
}

// BlockKind discriminates the shape of a slide block
type BlockKind string

const (
	BlockHeading   BlockKind = "heading"
	BlockParagraph BlockKind = "paragraph"
	BlockBullets   BlockKind = "bullets"
	BlockImage     BlockKind = "image"
	BlockQuote     BlockKind = "quote"
	BlockCode      BlockKind = "code"
	BlockTable     BlockKind = "table"
)

// String returns the string representation of the block kind
func (k BlockKind) String() string {
	return string(k)
}

// IsValid checks if the kind is one of the recognized block shapes
func (k BlockKind) IsValid() bool {
	switch k {
	case BlockHeading, BlockParagraph, BlockBullets, BlockImage, BlockQuote, BlockCode, BlockTable:
		return true
	}
	return false
}

// ValidBlockKinds returns every recognized block kind
func ValidBlockKinds() []BlockKind {
	return []BlockKind{
		BlockHeading, BlockParagraph, BlockBullets, BlockImage, BlockQuote, BlockCode, BlockTable,
	}
}

// Deck is the structured document the pipeline asks models to emit: the full
// description of one slide deck.
type Deck struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Theme     string         `json:"theme"`
	CreatedAt string         `json:"createdAt"` // ISO 8601
	Slides    []Slide        `json:"slides"`
	Meta      map[string]any `json:"meta,omitempty"`
	Patch     bool           `json:"patch,omitempty"` // set when the document carries only modified slides
}

// Slide is one slide: a layout tag plus an ordered run of content blocks.
// ID is optional on full decks but required on patch slides, where it is
// the merge key.
type Slide struct {
	ID     string       `json:"id,omitempty"`
	Layout SlideLayout  `json:"layout"`
	Blocks []SlideBlock `json:"blocks"`
	Notes  string       `json:"notes,omitempty"` // speaker notes
}

// SlideBlock is one content block. Kind selects which of the remaining
// fields are meaningful:
//
//	heading:   Text, Level
//	paragraph: Text
//	bullets:   Items
//	image:     URL (Alt optional)
//	quote:     Text (Attribution optional)
//	code:      Source (Language optional)
//	table:     Columns, Rows
type SlideBlock struct {
	Kind        BlockKind  `json:"kind"`
	Text        string     `json:"text,omitempty"`
	Level       int        `json:"level,omitempty"`
	Items       []string   `json:"items,omitempty"`
	URL         string     `json:"url,omitempty"`
	Alt         string     `json:"alt,omitempty"`
	Attribution string     `json:"attribution,omitempty"`
	Language    string     `json:"language,omitempty"`
	Source      string     `json:"source,omitempty"`
	Columns     []string   `json:"columns,omitempty"`
	Rows        [][]string `json:"rows,omitempty"`
}

// HeadingBlock creates a heading block
func HeadingBlock(text string, level int) SlideBlock {
	return SlideBlock{Kind: BlockHeading, Text: text, Level: level}
}

// ParagraphBlock creates a paragraph block
func ParagraphBlock(text string) SlideBlock {
	return SlideBlock{Kind: BlockParagraph, Text: text}
}

// BulletsBlock creates a bullet list block
func BulletsBlock(items ...string) SlideBlock {
	return SlideBlock{Kind: BlockBullets, Items: items}
}

// ImageBlock creates an image block
func ImageBlock(url, alt string) SlideBlock {
	return SlideBlock{Kind: BlockImage, URL: url, Alt: alt}
}

// QuoteBlock creates a quotation block
func QuoteBlock(text, attribution string) SlideBlock {
	return SlideBlock{Kind: BlockQuote, Text: text, Attribution: attribution}
}

// CodeBlock creates a code block
func CodeBlock(language, source string) SlideBlock {
	return SlideBlock{Kind: BlockCode, Language: language, Source: source}
}

// TableBlock creates a table block
func TableBlock(columns []string, rows [][]string) SlideBlock {
	return SlideBlock{Kind: BlockTable, Columns: columns, Rows: rows}
}

// ParseDeck unmarshals an extracted JSON object into the typed model.
// It fails on anything that is not a JSON object; use the validation engine
// on the raw string instead when a never-fail readout is needed.
func ParseDeck(raw string) (*Deck, error) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, fmt.Errorf("deck document must be a JSON object")
	}

	var deck Deck
	if err := json.Unmarshal([]byte(trimmed), &deck); err != nil {
		return nil, fmt.Errorf("failed to parse deck document: %w", err)
	}
	return &deck, nil
}
