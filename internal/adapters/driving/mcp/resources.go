package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for Paperlens resources.
	uriScheme = "paperlens://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing ingested documents.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "documents",
		Name:        "documents",
		Description: "List of all ingested documents",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	// Template for a document's summary.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{docId}/meta",
		Name:        "document-meta",
		Description: "Ingestion summary for a specific document",
		MIMEType:    "application/json",
	}, s.handleMetaResource)

	// Template for a document's span set.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{docId}/spans",
		Name:        "document-spans",
		Description: "Extracted spans of a specific document with positional metadata",
		MIMEType:    "application/json",
	}, s.handleSpansResource)
}

// handleDocumentsResource returns the catalog of ingested documents.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Catalog == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "[]",
			}},
		}, nil
	}

	records, err := s.ports.Catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	type docInfo struct {
		DocID  string `json:"doc_id"`
		Title  string `json:"title"`
		NPages int    `json:"n_pages"`
		NSpans int    `json:"n_spans"`
	}

	infos := make([]docInfo, len(records))
	for i, rec := range records {
		infos[i] = docInfo{
			DocID:  rec.DocID,
			Title:  rec.Title,
			NPages: rec.NPages,
			NSpans: rec.NSpans,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling documents: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleMetaResource returns the ingestion summary for one document.
func (s *Server) handleMetaResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Spans == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	docID := extractDocID(req.Params.URI, "/meta")
	if docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	meta, err := s.ports.Spans.ReadMeta(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("reading document summary: %w", err)
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling summary: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleSpansResource returns the span set of one document.
func (s *Server) handleSpansResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Spans == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	docID := extractDocID(req.Params.URI, "/spans")
	if docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	spans, err := s.ports.Spans.ReadSpans(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("reading spans: %w", err)
	}

	data, err := json.MarshalIndent(spans, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling spans: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractDocID extracts the document ID from a URI like
// paperlens://documents/{docId}/spans.
func extractDocID(uri, suffix string) string {
	const prefix = uriScheme + "documents/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	return strings.TrimSuffix(uri, suffix)
}
