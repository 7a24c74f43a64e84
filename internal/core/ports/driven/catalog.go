package driven

import (
	"context"
	"time"
)

// DocumentRecord is one row in the catalog of ingested documents.
// The span store file pair stays the source of truth; the catalog is a
// queryable mirror for listing.
type DocumentRecord struct {
	DocID      string
	Title      string
	NPages     int
	NSpans     int
	Engine     string
	IngestedAt time.Time
}

// Catalog records every ingestion for listing and lookup.
type Catalog interface {
	// Upsert inserts or replaces the record for a document.
	Upsert(ctx context.Context, rec DocumentRecord) error

	// Get retrieves a record by doc ID.
	// Returns domain.ErrNotFound if the document was never recorded.
	Get(ctx context.Context, docID string) (DocumentRecord, error)

	// List returns all records, most recently ingested first.
	List(ctx context.Context) ([]DocumentRecord, error)

	// Delete removes a record.
	Delete(ctx context.Context, docID string) error

	// Close releases resources.
	Close() error
}
