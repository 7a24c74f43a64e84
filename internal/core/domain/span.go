package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// BBox is an axis-aligned rectangle (x0, y0, x1, y1), top-left origin.
type BBox [4]float64

// Span kinds produced by the extraction engines. The set is open:
// stores must round-trip kinds they do not recognise.
const (
	KindText    = "text"
	KindTable   = "table"
	KindPicture = "picture"
	KindGraphic = "graphic"
	KindHeader  = "page-header"
	KindFooter  = "page-footer"
)

// PlaceholderPrefix marks span text that stands in for non-textual
// content, e.g. "[[PICTURE]]" or "[[TABLE 3x4]]".
const PlaceholderPrefix = "[["

// Span represents an atomic unit of extracted document content.
// Spans are created once during ingestion and never mutated.
type Span struct {
	// SpanID uniquely identifies the span within one ingestion of one
	// document. Deterministic given extraction order.
	SpanID string `json:"span_id"`

	// DocID is the content hash of the source PDF bytes ("sha256:<hex>").
	DocID string `json:"doc_id"`

	// Page is the 0-indexed page number.
	Page int `json:"page"`

	// BBoxPDF is the rectangle in source point coordinates.
	BBoxPDF BBox `json:"bbox_pdf"`

	// BBoxNorm is the same rectangle normalised to [0,1] by page size.
	BBoxNorm BBox `json:"bbox_norm"`

	// Text is the whitespace-collapsed span text.
	Text string `json:"text"`

	// ReadingOrder increases monotonically in extraction order per
	// document. It is not globally unique across documents.
	ReadingOrder int `json:"reading_order"`

	// Kind classifies the span (text, table, picture, ...). Empty when
	// the extraction engine does not classify.
	Kind string `json:"kind,omitempty"`

	// IsHeader and IsFooter mark repeated page furniture.
	IsHeader bool `json:"is_header,omitempty"`
	IsFooter bool `json:"is_footer,omitempty"`

	// Source tags the extraction path that produced the span.
	Source string `json:"source,omitempty"`

	// Pos is an optional half-open character interval into the page
	// text blob. May be absent or imprecise.
	Pos *[2]int `json:"pos,omitempty"`
}

// IsPlaceholder reports whether the span text is a reserved sentinel
// standing in for non-textual content.
func (s Span) IsPlaceholder() bool {
	return strings.HasPrefix(s.Text, PlaceholderPrefix)
}

// DocumentMeta is the per-document summary written alongside the spans.
// A document counts as ingested only once this summary exists.
type DocumentMeta struct {
	DocID  string       `json:"doc_id"`
	NPages int          `json:"n_pages"`
	NSpans int          `json:"n_spans"`
	Ingest IngestParams `json:"ingest"`
}

// IngestParams records how the spans were produced.
type IngestParams struct {
	Engine   string `json:"engine"`
	MinChars int    `json:"min_chars"`
}

// DocIDFromBytes derives the content-addressed document ID from the
// original PDF bytes. Identical bytes always hash to the same ID.
func DocIDFromBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return "sha256:" + hex.EncodeToString(sum[:])
}

// CollapseWhitespace normalises runs of whitespace to single spaces and
// trims the ends. Applied to span text and to lexical queries so both
// sides of a match are in the same form.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
