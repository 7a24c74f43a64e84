package cli

import (
	"context"
	"time"

	"github.com/paperlens/paperlens-cli/internal/core/domain"
	"github.com/paperlens/paperlens-cli/internal/core/ports/driven"
)

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	meta domain.DocumentMeta
	err  error

	gotTitle string
	gotBytes []byte
}

func (m *mockIngestService) Ingest(_ context.Context, pdfBytes []byte, title string) (domain.DocumentMeta, error) {
	m.gotBytes = pdfBytes
	m.gotTitle = title
	return m.meta, m.err
}

// mockRetrieveService is a mock implementation of driving.RetrieveService.
type mockRetrieveService struct {
	evidence []domain.Evidence
	err      error

	gotPage int
	gotText string
}

func (m *mockRetrieveService) Retrieve(_ context.Context, _ string, page int, text string) ([]domain.Evidence, error) {
	m.gotPage = page
	m.gotText = text
	return m.evidence, m.err
}

// mockCatalog is a mock implementation of driven.Catalog.
type mockCatalog struct {
	records []driven.DocumentRecord
	err     error
}

func (m *mockCatalog) Upsert(_ context.Context, _ driven.DocumentRecord) error { return m.err }

func (m *mockCatalog) Get(_ context.Context, _ string) (driven.DocumentRecord, error) {
	if m.err != nil || len(m.records) == 0 {
		if m.err != nil {
			return driven.DocumentRecord{}, m.err
		}
		return driven.DocumentRecord{}, domain.ErrNotFound
	}
	return m.records[0], nil
}

func (m *mockCatalog) List(_ context.Context) ([]driven.DocumentRecord, error) {
	return m.records, m.err
}

func (m *mockCatalog) Delete(_ context.Context, _ string) error { return m.err }

func (m *mockCatalog) Close() error { return nil }

// mockSpanStore is a mock implementation of driven.SpanStore.
type mockSpanStore struct {
	spans []domain.Span
	meta  domain.DocumentMeta
	err   error
}

func (m *mockSpanStore) WriteDocument(_ context.Context, _ string, _ []byte, _ []domain.Span, _ domain.DocumentMeta) error {
	return m.err
}

func (m *mockSpanStore) ReadSpans(_ context.Context, _ string) ([]domain.Span, error) {
	return m.spans, m.err
}

func (m *mockSpanStore) ReadMeta(_ context.Context, _ string) (domain.DocumentMeta, error) {
	return m.meta, m.err
}

func (m *mockSpanStore) PDFPath(_ string) (string, error) {
	return "/tmp/paper.pdf", m.err
}

// setupTestServices installs mocks for all wired services and returns a
// cleanup func restoring the previous wiring.
func setupTestServices() func() {
	oldIngest := ingestService
	oldRetrieve := retrieveService
	oldCatalog := catalogStore
	oldSpans := spanStore

	ingestService = &mockIngestService{
		meta: domain.DocumentMeta{
			DocID:  "sha256:abc",
			NPages: 2,
			NSpans: 10,
			Ingest: domain.IngestParams{Engine: "blocks", MinChars: 20},
		},
	}
	retrieveService = &mockRetrieveService{
		evidence: []domain.Evidence{
			{
				SpanID:   "p000_b001",
				Page:     0,
				BBoxNorm: domain.BBox{0.1, 0.2, 0.9, 0.25},
				Text:     "The Transformer relies entirely on attention",
				Score:    88.0,
			},
		},
	}
	catalogStore = &mockCatalog{
		records: []driven.DocumentRecord{
			{
				DocID:      "sha256:abc",
				Title:      "Attention Is All You Need",
				NPages:     15,
				NSpans:     420,
				Engine:     "blocks",
				IngestedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			},
		},
	}
	spanStore = &mockSpanStore{
		spans: []domain.Span{
			{SpanID: "p000_b000", Page: 0, BBoxNorm: domain.BBox{0.1, 0.1, 0.9, 0.15}, Kind: domain.KindText},
			{SpanID: "p001_b000", Page: 1, BBoxNorm: domain.BBox{0.1, 0.1, 0.9, 0.2}, Kind: domain.KindText},
		},
	}

	return func() {
		ingestService = oldIngest
		retrieveService = oldRetrieve
		catalogStore = oldCatalog
		spanStore = oldSpans
	}
}
