package driving

import "context"

// VectorizeResult reports what an index build embedded and skipped.
type VectorizeResult struct {
	DocID     string `json:"doc_id"`
	NEmbedded int    `json:"n_embedded"`
	NSkipped  int    `json:"n_skipped"`
	Model     string `json:"model"`
	Dim       int    `json:"dim"`
}

// VectorizeService builds a document's embedding index.
type VectorizeService interface {
	// Vectorize selects embeddable spans, embeds them in one batch,
	// L2-normalises the vectors and overwrites any prior index.
	// Must be re-run after any re-ingestion.
	Vectorize(ctx context.Context, docID string) (VectorizeResult, error)
}
