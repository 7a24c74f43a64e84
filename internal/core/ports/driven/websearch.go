package driven

import "context"

// WebResult is a single hit from an external search provider.
type WebResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// WebSearcher wraps an external web search provider. Exposed to the
// agent as a tool for context beyond the ingested document.
type WebSearcher interface {
	// Search returns up to maxResults hits for the query.
	Search(ctx context.Context, query string, maxResults int) ([]WebResult, error)
}
