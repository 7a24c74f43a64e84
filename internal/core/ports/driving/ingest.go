package driving

import (
	"context"

	"github.com/paperlens/paperlens-cli/internal/core/domain"
)

// IngestService turns PDF bytes into persisted spans.
type IngestService interface {
	// Ingest extracts spans from the PDF bytes and persists them under
	// the content-addressed doc ID. Re-ingesting identical bytes is
	// idempotent: same doc ID, spans fully replaced.
	Ingest(ctx context.Context, pdfBytes []byte, title string) (domain.DocumentMeta, error)
}
