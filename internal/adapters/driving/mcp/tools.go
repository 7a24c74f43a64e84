package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/paperlens/paperlens-cli/internal/core/domain"
)

// RetrieveEvidenceInput is the input schema for the retrieve_evidence tool.
type RetrieveEvidenceInput struct {
	DocID string `json:"doc_id" jsonschema:"the ingested document id (sha256:...)"`
	Page  int    `json:"page" jsonschema:"the page number the selected text appears on"`
	Text  string `json:"text" jsonschema:"the selected text to locate evidence for"`
}

// SemanticSearchInput is the input schema for the semantic_search tool.
type SemanticSearchInput struct {
	DocID string `json:"doc_id" jsonschema:"the ingested document id (sha256:...)"`
	Query string `json:"query" jsonschema:"natural language query about the paper content"`
	Page  *int   `json:"page,omitempty" jsonschema:"restrict results to one page (omit for all pages)"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of results (default 8)"`
}

// EvidenceOutput is the wire shape of one retrieved span.
type EvidenceOutput struct {
	SpanID   string      `json:"span_id"`
	Page     int         `json:"page"`
	BBoxNorm domain.BBox `json:"bbox_norm"`
	Text     string      `json:"text"`
	Score    float64     `json:"score"`
}

// RetrieveOutput is the output schema shared by both retrieval tools.
type RetrieveOutput struct {
	Evidence []EvidenceOutput `json:"evidence"`
	Count    int              `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve_evidence",
		Description: "Locate evidence spans on a page of an ingested paper matching selected text",
	}, s.handleRetrieveEvidence)

	if s.ports.Semantic != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "semantic_search",
			Description: "Search an ingested paper for passages relevant to a natural language query",
		}, s.handleSemanticSearch)
	}
}

// handleRetrieveEvidence handles the retrieve_evidence tool invocation.
func (s *Server) handleRetrieveEvidence(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveEvidenceInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	evidence, err := s.ports.Retrieve.Retrieve(ctx, input.DocID, input.Page, input.Text)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}
	return nil, toRetrieveOutput(evidence), nil
}

// handleSemanticSearch handles the semantic_search tool invocation.
func (s *Server) handleSemanticSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SemanticSearchInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	page := -1
	if input.Page != nil {
		page = *input.Page
	}

	evidence, err := s.ports.Semantic.RetrieveSemantic(ctx, input.DocID, input.Query, page, input.TopK)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}
	return nil, toRetrieveOutput(evidence), nil
}

func toRetrieveOutput(evidence []domain.Evidence) RetrieveOutput {
	out := RetrieveOutput{
		Evidence: make([]EvidenceOutput, len(evidence)),
		Count:    len(evidence),
	}
	for i := range evidence {
		out.Evidence[i] = EvidenceOutput{
			SpanID:   evidence[i].SpanID,
			Page:     evidence[i].Page,
			BBoxNorm: evidence[i].BBoxNorm,
			Text:     evidence[i].Text,
			Score:    evidence[i].Score,
		}
	}
	return out
}
