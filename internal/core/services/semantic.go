package services

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/paperlens/paperlens-cli/internal/core/domain"
	"github.com/paperlens/paperlens-cli/internal/core/ports/driven"
	"github.com/paperlens/paperlens-cli/internal/core/ports/driving"
	"github.com/paperlens/paperlens-cli/internal/logger"
)

// Ensure SemanticService implements the interfaces.
var (
	_ driving.VectorizeService        = (*SemanticService)(nil)
	_ driving.SemanticRetrieveService = (*SemanticService)(nil)
)

// DefaultSemanticTopK is the default result count for semantic retrieval.
const DefaultSemanticTopK = 8

// Span kinds never embedded: they carry no usable text.
var skipKinds = map[string]bool{
	domain.KindPicture: true,
	domain.KindGraphic: true,
}

// SemanticService builds and queries per-document embedding indexes.
type SemanticService struct {
	store    driven.SpanStore
	vectors  driven.VectorStore
	embedder driven.EmbeddingService
	minChars int
}

// NewSemanticService creates a new semantic retrieval service.
func NewSemanticService(store driven.SpanStore, vectors driven.VectorStore, embedder driven.EmbeddingService) *SemanticService {
	return &SemanticService{
		store:    store,
		vectors:  vectors,
		embedder: embedder,
		minChars: DefaultMinChars,
	}
}

// SetMinChars overrides the minimum embeddable text length.
func (s *SemanticService) SetMinChars(n int) {
	if n > 0 {
		s.minChars = n
	}
}

// filterEmbeddable selects spans eligible for vector indexing: no page
// furniture, no picture/graphic regions, no placeholder sentinels, no
// text shorter than minChars.
func filterEmbeddable(spans []domain.Span, minChars int) []domain.Span {
	var out []domain.Span
	for _, sp := range spans {
		if sp.IsHeader || sp.IsFooter {
			continue
		}
		if skipKinds[sp.Kind] {
			continue
		}
		if sp.IsPlaceholder() {
			continue
		}
		if len(sp.Text) < minChars {
			continue
		}
		out = append(out, sp)
	}
	return out
}

// l2Normalize scales the vector to unit length in place. Zero vectors
// are left untouched.
func l2Normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
}

// dot computes the inner product of two equal-length vectors. With both
// sides pre-normalised this equals cosine similarity.
func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// Vectorize builds the embedding index for a document, fully replacing
// any prior index. Returns domain.ErrNotFound if the document was never
// ingested.
func (s *SemanticService) Vectorize(ctx context.Context, docID string) (driving.VectorizeResult, error) {
	spans, err := s.store.ReadSpans(ctx, docID)
	if err != nil {
		return driving.VectorizeResult{}, fmt.Errorf("vectorize: %w", err)
	}

	logger.Section("Vectorize")
	embeddable := filterEmbeddable(spans, s.minChars)
	logger.Debug("Doc: %s spans: %d embeddable: %d", docID, len(spans), len(embeddable))

	index := driven.EmbeddingIndex{
		Model: s.embedder.ModelName(),
		Dim:   s.embedder.Dimensions(),
	}

	if len(embeddable) > 0 {
		texts := make([]string, len(embeddable))
		for i, sp := range embeddable {
			texts[i] = sp.Text
		}
		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return driving.VectorizeResult{}, fmt.Errorf("vectorize: embed batch: %w", err)
		}
		if len(vectors) != len(embeddable) {
			return driving.VectorizeResult{}, fmt.Errorf("vectorize: embedder returned %d vectors for %d texts", len(vectors), len(embeddable))
		}
		index.SpanIDs = make([]string, len(embeddable))
		index.Vectors = vectors
		for i, sp := range embeddable {
			index.SpanIDs[i] = sp.SpanID
			l2Normalize(index.Vectors[i])
		}
		if len(vectors[0]) > 0 {
			index.Dim = len(vectors[0])
		}
	}

	if err := s.vectors.SaveIndex(ctx, docID, index); err != nil {
		return driving.VectorizeResult{}, fmt.Errorf("vectorize: save index: %w", err)
	}

	return driving.VectorizeResult{
		DocID:     docID,
		NEmbedded: len(embeddable),
		NSkipped:  len(spans) - len(embeddable),
		Model:     index.Model,
		Dim:       index.Dim,
	}, nil
}

// RetrieveSemantic returns the topK spans most similar to the query.
// page < 0 disables the page filter; topK <= 0 uses the default.
// Returns domain.ErrEmbeddingsMissing when no index exists, distinctly
// from domain.ErrNotFound when the document itself is missing.
func (s *SemanticService) RetrieveSemantic(ctx context.Context, docID string, query string, page int, topK int) ([]domain.Evidence, error) {
	if topK <= 0 {
		topK = DefaultSemanticTopK
	}

	spans, err := s.store.ReadSpans(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("retrieve semantic: %w", err)
	}

	index, err := s.vectors.LoadIndex(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("retrieve semantic: %w", err)
	}

	logger.Section("Semantic Retrieval")
	logger.Debug("Doc: %s index rows: %d model: %s", docID, len(index.SpanIDs), index.Model)

	// The index remembers which model built it; embedding the query with
	// anything else risks a silent dimension mismatch.
	if index.Model != "" && index.Model != s.embedder.ModelName() {
		return nil, fmt.Errorf("retrieve semantic: index built with model %q but embedder is %q: %w",
			index.Model, s.embedder.ModelName(), domain.ErrInvalidInput)
	}

	if len(index.SpanIDs) == 0 {
		return []domain.Evidence{}, nil
	}

	qv, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("retrieve semantic: embed query: %w", err)
	}
	l2Normalize(qv)

	type rowScore struct {
		row   int
		score float64
	}
	scores := make([]rowScore, len(index.Vectors))
	for i, v := range index.Vectors {
		scores[i] = rowScore{row: i, score: dot(qv, v)}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	spanByID := make(map[string]domain.Span, len(spans))
	for _, sp := range spans {
		spanByID[sp.SpanID] = sp
	}

	out := []domain.Evidence{}
	for _, rs := range scores {
		if len(out) >= topK {
			break
		}
		sp, ok := spanByID[index.SpanIDs[rs.row]]
		if !ok {
			// Index row with no live span; tolerated and skipped.
			continue
		}
		if page >= 0 && sp.Page != page {
			continue
		}
		out = append(out, domain.Evidence{
			SpanID:   sp.SpanID,
			Page:     sp.Page,
			BBoxNorm: sp.BBoxNorm,
			Text:     sp.Text,
			Score:    rs.score,
		})
	}

	logger.Debug("Returning %d results", len(out))
	return out, nil
}
