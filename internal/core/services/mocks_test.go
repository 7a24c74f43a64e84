package services

import (
	"context"

	"github.com/paperlens/paperlens-cli/internal/core/domain"
	"github.com/paperlens/paperlens-cli/internal/core/ports/driven"
)

// --- Mock implementations of the driven ports ---

// mockSpanStore implements driven.SpanStore for testing.
type mockSpanStore struct {
	spans    map[string][]domain.Span
	meta     map[string]domain.DocumentMeta
	writeErr error
}

func newMockSpanStore() *mockSpanStore {
	return &mockSpanStore{
		spans: make(map[string][]domain.Span),
		meta:  make(map[string]domain.DocumentMeta),
	}
}

func (m *mockSpanStore) WriteDocument(_ context.Context, docID string, _ []byte, spans []domain.Span, meta domain.DocumentMeta) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.spans[docID] = spans
	m.meta[docID] = meta
	return nil
}

func (m *mockSpanStore) ReadSpans(_ context.Context, docID string) ([]domain.Span, error) {
	spans, ok := m.spans[docID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return spans, nil
}

func (m *mockSpanStore) ReadMeta(_ context.Context, docID string) (domain.DocumentMeta, error) {
	meta, ok := m.meta[docID]
	if !ok {
		return domain.DocumentMeta{}, domain.ErrNotFound
	}
	return meta, nil
}

func (m *mockSpanStore) PDFPath(docID string) (string, error) {
	if _, ok := m.spans[docID]; !ok {
		return "", domain.ErrNotFound
	}
	return "/tmp/" + docID + ".pdf", nil
}

// mockVectorStore implements driven.VectorStore for testing.
type mockVectorStore struct {
	indexes map[string]driven.EmbeddingIndex
	saveErr error
}

func newMockVectorStore() *mockVectorStore {
	return &mockVectorStore{indexes: make(map[string]driven.EmbeddingIndex)}
}

func (m *mockVectorStore) SaveIndex(_ context.Context, docID string, index driven.EmbeddingIndex) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.indexes[docID] = index
	return nil
}

func (m *mockVectorStore) LoadIndex(_ context.Context, docID string) (driven.EmbeddingIndex, error) {
	index, ok := m.indexes[docID]
	if !ok {
		return driven.EmbeddingIndex{}, domain.ErrEmbeddingsMissing
	}
	return index, nil
}

// mockEmbedder implements driven.EmbeddingService with deterministic
// vectors keyed by text.
type mockEmbedder struct {
	model    string
	dims     int
	byText   map[string][]float32
	fallback []float32
	embedErr error
}

func newMockEmbedder() *mockEmbedder {
	return &mockEmbedder{
		model:    "mock-embed",
		dims:     3,
		byText:   make(map[string][]float32),
		fallback: []float32{1, 0, 0},
	}
}

func (m *mockEmbedder) vector(text string) []float32 {
	if v, ok := m.byText[text]; ok {
		out := make([]float32, len(v))
		copy(out, v)
		return out
	}
	out := make([]float32, len(m.fallback))
	copy(out, m.fallback)
	return out
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vector(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int              { return m.dims }
func (m *mockEmbedder) ModelName() string            { return m.model }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// mockExtractor implements driven.Extractor with canned spans.
type mockExtractor struct {
	spans      []domain.Span
	nPages     int
	extractErr error
}

func (m *mockExtractor) Extract(_ context.Context, docID string, _ []byte, _ driven.ExtractOptions) (driven.Extraction, error) {
	if m.extractErr != nil {
		return driven.Extraction{}, m.extractErr
	}
	spans := make([]domain.Span, len(m.spans))
	copy(spans, m.spans)
	for i := range spans {
		spans[i].DocID = docID
	}
	return driven.Extraction{Spans: spans, NPages: m.nPages}, nil
}

func (m *mockExtractor) Engine() string { return "blocks" }

// mockCatalog implements driven.Catalog for testing.
type mockCatalog struct {
	records   map[string]driven.DocumentRecord
	upsertErr error
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{records: make(map[string]driven.DocumentRecord)}
}

func (m *mockCatalog) Upsert(_ context.Context, rec driven.DocumentRecord) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.records[rec.DocID] = rec
	return nil
}

func (m *mockCatalog) Get(_ context.Context, docID string) (driven.DocumentRecord, error) {
	rec, ok := m.records[docID]
	if !ok {
		return driven.DocumentRecord{}, domain.ErrNotFound
	}
	return rec, nil
}

func (m *mockCatalog) List(_ context.Context) ([]driven.DocumentRecord, error) {
	out := make([]driven.DocumentRecord, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	return out, nil
}

func (m *mockCatalog) Delete(_ context.Context, docID string) error {
	delete(m.records, docID)
	return nil
}

func (m *mockCatalog) Close() error { return nil }

// mockWebSearcher implements driven.WebSearcher for testing.
type mockWebSearcher struct {
	results   []driven.WebResult
	searchErr error
}

func (m *mockWebSearcher) Search(_ context.Context, _ string, maxResults int) ([]driven.WebResult, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if maxResults < len(m.results) {
		return m.results[:maxResults], nil
	}
	return m.results, nil
}

// --- Test fixtures ---

// testSpan builds a span with sensible defaults, overridable per test.
func testSpan(id string, page, readingOrder int, text string) domain.Span {
	return domain.Span{
		SpanID:       id,
		DocID:        "sha256:test",
		Page:         page,
		BBoxPDF:      domain.BBox{0, 0, 100, 20},
		BBoxNorm:     domain.BBox{0, 0, 0.2, 0.05},
		Text:         text,
		ReadingOrder: readingOrder,
		Kind:         domain.KindText,
		Source:       "blocks",
	}
}
