package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/paperlens/paperlens-cli/internal/core/domain"
	"github.com/paperlens/paperlens-cli/internal/core/ports/driven"
	"github.com/paperlens/paperlens-cli/internal/core/ports/driving"
	"github.com/paperlens/paperlens-cli/internal/logger"
)

// ToolFunc is a callable the agent may invoke mid-conversation. It
// returns an opaque string payload, usually serialised JSON.
type ToolFunc func(ctx context.Context, args map[string]any) (string, error)

type toolEntry struct {
	def driven.ToolDef
	fn  ToolFunc
}

// ToolRegistry maps tool names to schema-described callables. It is a
// lookup table, not a class hierarchy: registering an existing name
// replaces the entry.
type ToolRegistry struct {
	tools map[string]toolEntry
	order []string
}

// NewToolRegistry creates an empty registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{tools: make(map[string]toolEntry)}
}

// Register adds or replaces a tool.
func (r *ToolRegistry) Register(name, description string, parameters map[string]any, fn ToolFunc) {
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = toolEntry{
		def: driven.ToolDef{Name: name, Description: description, Parameters: parameters},
		fn:  fn,
	}
}

// Defs returns the tool schemas in registration order, for passing to
// a model's function-calling interface.
func (r *ToolRegistry) Defs() []driven.ToolDef {
	defs := make([]driven.ToolDef, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].def)
	}
	return defs
}

// Call invokes a tool by name. Failures are never surfaced as errors:
// unknown names and tool-internal errors both come back as structured
// JSON error payloads, so the agent loop can feed them to the model
// and let it decide how to proceed.
func (r *ToolRegistry) Call(ctx context.Context, name string, args map[string]any) string {
	entry, ok := r.tools[name]
	if !ok {
		logger.Warn("Unknown tool requested: %s", name)
		return errorPayload(fmt.Sprintf("unknown tool: %s", name))
	}
	result, err := entry.fn(ctx, args)
	if err != nil {
		logger.Warn("Tool %s failed: %v", name, err)
		return errorPayload(err.Error())
	}
	return result
}

func errorPayload(msg string) string {
	data, err := json.Marshal(map[string]string{"error": msg})
	if err != nil {
		return `{"error":"tool failure"}`
	}
	return string(data)
}

// stringArg reads a string argument, defaulting when absent.
func stringArg(args map[string]any, key, fallback string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return fallback
}

// intArg reads an integer argument. JSON numbers decode as float64, so
// both forms are accepted.
func intArg(args map[string]any, key string, fallback int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return fallback
	}
}

// evidencePayload is the JSON shape of one retrieval tool result.
type evidencePayload struct {
	Text     string      `json:"text"`
	Page     int         `json:"page"`
	Score    float64     `json:"score"`
	BBoxNorm domain.BBox `json:"bbox_norm"`
}

// NewRetrieveTool builds the rag_retrieve tool: semantic search scoped
// to one document.
func NewRetrieveTool(docID string, semantic driving.SemanticRetrieveService) (driven.ToolDef, ToolFunc) {
	def := driven.ToolDef{
		Name: "rag_retrieve",
		Description: "Search the current research paper for relevant passages. " +
			"Returns text excerpts with page numbers, relevance scores, and bounding boxes.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Natural language search query about the paper content",
				},
				"top_k": map[string]any{
					"type":        "integer",
					"description": "Number of results to return (default: 5)",
					"default":     5,
				},
			},
			"required": []string{"query"},
		},
	}

	fn := func(ctx context.Context, args map[string]any) (string, error) {
		query := stringArg(args, "query", "")
		topK := intArg(args, "top_k", 5)

		evidence, err := semantic.RetrieveSemantic(ctx, docID, query, -1, topK)
		if err != nil {
			return "", err
		}
		payload := make([]evidencePayload, len(evidence))
		for i, e := range evidence {
			payload[i] = evidencePayload{Text: e.Text, Page: e.Page, Score: e.Score, BBoxNorm: e.BBoxNorm}
		}
		data, err := json.Marshal(payload)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	return def, fn
}

// NewWebSearchTool builds the web_search tool around an external
// search provider.
func NewWebSearchTool(searcher driven.WebSearcher) (driven.ToolDef, ToolFunc) {
	def := driven.ToolDef{
		Name: "web_search",
		Description: "Search the web for context beyond the current paper: background, " +
			"related work, definitions. Returns result titles, URLs, and snippets.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Web search query",
				},
				"max_results": map[string]any{
					"type":        "integer",
					"description": "Number of results to return (default: 5)",
					"default":     5,
				},
			},
			"required": []string{"query"},
		},
	}

	fn := func(ctx context.Context, args map[string]any) (string, error) {
		query := stringArg(args, "query", "")
		maxResults := intArg(args, "max_results", 5)

		results, err := searcher.Search(ctx, query, maxResults)
		if err != nil {
			return "", err
		}
		if results == nil {
			results = []driven.WebResult{}
		}
		data, err := json.Marshal(results)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	return def, fn
}
