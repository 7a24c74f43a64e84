package services

import (
	"context"
	"fmt"
	"time"

	"github.com/paperlens/paperlens-cli/internal/core/domain"
	"github.com/paperlens/paperlens-cli/internal/core/ports/driven"
	"github.com/paperlens/paperlens-cli/internal/core/ports/driving"
	"github.com/paperlens/paperlens-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// DefaultMinChars is the minimum span text length kept by ingestion
// and considered embeddable by vectorisation.
const DefaultMinChars = 20

// IngestService extracts spans from PDFs and persists them.
type IngestService struct {
	extractor driven.Extractor
	store     driven.SpanStore
	catalog   driven.Catalog
	minChars  int
}

// NewIngestService creates a new ingestion service.
// The catalog parameter is optional (can be nil).
func NewIngestService(extractor driven.Extractor, store driven.SpanStore, catalog driven.Catalog) *IngestService {
	return &IngestService{
		extractor: extractor,
		store:     store,
		catalog:   catalog,
		minChars:  DefaultMinChars,
	}
}

// SetMinChars overrides the minimum span text length.
func (s *IngestService) SetMinChars(n int) {
	if n > 0 {
		s.minChars = n
	}
}

// Ingest extracts spans from the PDF bytes and persists them under the
// content-addressed doc ID. Identical bytes always produce the same doc
// ID; the span set is fully replaced on re-ingestion.
func (s *IngestService) Ingest(ctx context.Context, pdfBytes []byte, title string) (domain.DocumentMeta, error) {
	if len(pdfBytes) == 0 {
		return domain.DocumentMeta{}, fmt.Errorf("ingest: empty input: %w", domain.ErrInvalidInput)
	}

	docID := domain.DocIDFromBytes(pdfBytes)
	logger.Section("Ingest")
	logger.Debug("Doc ID: %s", docID)

	result, err := s.extractor.Extract(ctx, docID, pdfBytes, driven.ExtractOptions{MinChars: s.minChars})
	if err != nil {
		return domain.DocumentMeta{}, fmt.Errorf("ingest: extract: %w", err)
	}
	logger.Debug("Extracted %d spans over %d pages", len(result.Spans), result.NPages)

	meta := domain.DocumentMeta{
		DocID:  docID,
		NPages: result.NPages,
		NSpans: len(result.Spans),
		Ingest: domain.IngestParams{
			Engine:   s.extractor.Engine(),
			MinChars: s.minChars,
		},
	}

	if err := s.store.WriteDocument(ctx, docID, pdfBytes, result.Spans, meta); err != nil {
		return domain.DocumentMeta{}, fmt.Errorf("ingest: persist: %w", err)
	}

	if s.catalog != nil {
		rec := driven.DocumentRecord{
			DocID:      docID,
			Title:      title,
			NPages:     meta.NPages,
			NSpans:     meta.NSpans,
			Engine:     meta.Ingest.Engine,
			IngestedAt: time.Now().UTC(),
		}
		if err := s.catalog.Upsert(ctx, rec); err != nil {
			// The file pair is the source of truth; a catalog failure
			// does not invalidate the ingestion.
			logger.Warn("Catalog upsert failed for %s: %v", docID, err)
		}
	}

	return meta, nil
}
