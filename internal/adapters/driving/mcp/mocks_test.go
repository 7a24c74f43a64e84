package mcp

import (
	"context"

	"github.com/paperlens/paperlens-cli/internal/core/domain"
	"github.com/paperlens/paperlens-cli/internal/core/ports/driven"
)

// mockRetrieveService is a mock implementation of driving.RetrieveService.
type mockRetrieveService struct {
	evidence []domain.Evidence
	err      error

	gotDocID string
	gotPage  int
	gotText  string
}

func (m *mockRetrieveService) Retrieve(_ context.Context, docID string, page int, text string) ([]domain.Evidence, error) {
	m.gotDocID = docID
	m.gotPage = page
	m.gotText = text
	return m.evidence, m.err
}

// mockSemanticService is a mock implementation of driving.SemanticRetrieveService.
type mockSemanticService struct {
	evidence []domain.Evidence
	err      error

	gotQuery string
	gotPage  int
	gotTopK  int
}

func (m *mockSemanticService) RetrieveSemantic(_ context.Context, _, query string, page, topK int) ([]domain.Evidence, error) {
	m.gotQuery = query
	m.gotPage = page
	m.gotTopK = topK
	return m.evidence, m.err
}

// mockCatalog is a mock implementation of driven.Catalog.
type mockCatalog struct {
	records []driven.DocumentRecord
	err     error
}

func (m *mockCatalog) Upsert(_ context.Context, _ driven.DocumentRecord) error {
	return m.err
}

func (m *mockCatalog) Get(_ context.Context, _ string) (driven.DocumentRecord, error) {
	if len(m.records) > 0 {
		return m.records[0], m.err
	}
	return driven.DocumentRecord{}, m.err
}

func (m *mockCatalog) List(_ context.Context) ([]driven.DocumentRecord, error) {
	return m.records, m.err
}

func (m *mockCatalog) Delete(_ context.Context, _ string) error {
	return m.err
}

func (m *mockCatalog) Close() error {
	return nil
}

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
	return "", m.err
}
