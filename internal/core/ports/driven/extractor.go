package driven

import (
	"context"

	"github.com/paperlens/paperlens-cli/internal/core/domain"
)

// ExtractOptions configures span extraction.
type ExtractOptions struct {
	// MinChars drops text spans shorter than this many characters.
	MinChars int
}

// Extraction is the result of running an engine over one PDF.
type Extraction struct {
	// Spans in reading order. Reading order is monotonically increasing
	// across the whole document.
	Spans []domain.Span

	// NPages is the page count of the source document.
	NPages int
}

// Extractor turns PDF bytes into positioned spans. Implementations wrap
// third-party document parsing engines; the core never touches PDF
// internals itself.
type Extractor interface {
	// Extract parses the document and returns classified spans with
	// both point and normalised coordinates. docID is stamped onto
	// every span.
	Extract(ctx context.Context, docID string, pdfBytes []byte, opts ExtractOptions) (Extraction, error)

	// Engine names the extraction path, recorded in document metadata.
	Engine() string
}
