package mcp

import (
	"github.com/paperlens/paperlens-cli/internal/core/ports/driven"
	"github.com/paperlens/paperlens-cli/internal/core/ports/driving"
)

// Ports aggregates the port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retrieve answers lexical evidence queries.
	Retrieve driving.RetrieveService

	// Semantic answers embedding-based queries. Optional: when nil the
	// semantic_search tool is not registered.
	Semantic driving.SemanticRetrieveService

	// Catalog lists ingested documents.
	Catalog driven.Catalog

	// Spans reads stored span sets and document summaries.
	Spans driven.SpanStore
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Retrieve == nil {
		return ErrMissingRetrieveService
	}
	// Semantic, Catalog and Spans are optional.
	return nil
}
