package driven

import "context"

// EmbeddingIndex is a dense matrix of L2-normalised vectors, one row per
// embeddable span, with a parallel span-ID list establishing row-to-span
// correspondence.
//
// Invariant: len(Vectors) == len(SpanIDs), and every row has length Dim.
type EmbeddingIndex struct {
	// Model identifies the embedding model that built the index. Queries
	// must be embedded with the same model.
	Model string

	// Dim is the vector dimensionality.
	Dim int

	// SpanIDs maps row index to span ID.
	SpanIDs []string

	// Vectors holds one L2-normalised vector per embeddable span.
	Vectors [][]float32
}

// VectorStore persists per-document embedding indexes. Rebuilding a
// document's index overwrites it in place; there is no incremental merge.
type VectorStore interface {
	// SaveIndex persists the index for a document, replacing any prior one.
	SaveIndex(ctx context.Context, docID string, index EmbeddingIndex) error

	// LoadIndex returns the stored index for a document.
	// Returns domain.ErrEmbeddingsMissing if no index was ever built.
	LoadIndex(ctx context.Context, docID string) (EmbeddingIndex, error)
}
