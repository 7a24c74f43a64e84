package driven

import (
	"context"

	"github.com/paperlens/paperlens-cli/internal/core/domain"
)

// SpanStore persists extracted spans and per-document metadata,
// content-addressed by doc ID. Re-ingestion of the same byte content is
// idempotent: the same doc ID, spans fully replaced.
type SpanStore interface {
	// WriteDocument persists the original PDF bytes, the extracted spans
	// and the document summary, replacing any prior set. Spans are
	// written before the summary so a document only counts as ingested
	// once both exist.
	WriteDocument(ctx context.Context, docID string, pdfBytes []byte, spans []domain.Span, meta domain.DocumentMeta) error

	// ReadSpans returns the ordered span sequence for a document.
	// Returns domain.ErrNotFound if the document was never ingested.
	ReadSpans(ctx context.Context, docID string) ([]domain.Span, error)

	// ReadMeta returns the document summary.
	// Returns domain.ErrNotFound if the document was never ingested.
	ReadMeta(ctx context.Context, docID string) (domain.DocumentMeta, error)

	// PDFPath returns the stored path of the original PDF bytes.
	// Returns domain.ErrNotFound if the document was never ingested.
	PDFPath(docID string) (string, error)
}
