package driving

import (
	"context"

	"github.com/paperlens/paperlens-cli/internal/core/domain"
)

// RetrieveService answers evidence queries against one document.
type RetrieveService interface {
	// Retrieve scores page-local spans against the selected text with a
	// fuzzy partial match, expands top matches to their reading-order
	// neighbours and returns deduplicated evidence in page reading order.
	// Returns domain.ErrNotFound if the document was never ingested.
	Retrieve(ctx context.Context, docID string, page int, selectedText string) ([]domain.Evidence, error)
}

// SemanticRetrieveService answers natural-language queries against a
// document's embedding index.
type SemanticRetrieveService interface {
	// RetrieveSemantic embeds the query with the index's model and
	// returns the topK most similar spans, optionally page-filtered.
	// page < 0 means no page filter; topK <= 0 uses the default.
	// Returns domain.ErrEmbeddingsMissing if no index was built.
	RetrieveSemantic(ctx context.Context, docID string, query string, page int, topK int) ([]domain.Evidence, error)
}
