package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperlens/paperlens-cli/internal/core/ports/driven"
)

func TestToolRegistry(t *testing.T) {
	ctx := context.Background()

	t.Run("defs returns schemas in registration order", func(t *testing.T) {
		registry := NewToolRegistry()
		registry.Register("beta", "second", map[string]any{"type": "object"}, nil)
		registry.Register("alpha", "first", map[string]any{"type": "object"}, nil)

		defs := registry.Defs()
		require.Len(t, defs, 2)
		assert.Equal(t, "beta", defs[0].Name)
		assert.Equal(t, "alpha", defs[1].Name)
	})

	t.Run("call invokes the registered function", func(t *testing.T) {
		registry := NewToolRegistry()
		registry.Register("echo", "Echo input", map[string]any{"type": "object"},
			func(_ context.Context, args map[string]any) (string, error) {
				return stringArg(args, "text", ""), nil
			})

		result := registry.Call(ctx, "echo", map[string]any{"text": "hello"})
		assert.Equal(t, "hello", result)
	})

	t.Run("unknown tool returns error payload, not a failure", func(t *testing.T) {
		registry := NewToolRegistry()
		result := registry.Call(ctx, "nonexistent", map[string]any{})

		var parsed map[string]string
		require.NoError(t, json.Unmarshal([]byte(result), &parsed))
		assert.Contains(t, parsed["error"], "nonexistent")
	})

	t.Run("tool error becomes error payload", func(t *testing.T) {
		registry := NewToolRegistry()
		registry.Register("broken", "Always fails", map[string]any{"type": "object"},
			func(_ context.Context, _ map[string]any) (string, error) {
				return "", errors.New("backend unreachable")
			})

		result := registry.Call(ctx, "broken", map[string]any{})
		var parsed map[string]string
		require.NoError(t, json.Unmarshal([]byte(result), &parsed))
		assert.Equal(t, "backend unreachable", parsed["error"])
	})

	t.Run("re-registering replaces the entry", func(t *testing.T) {
		registry := NewToolRegistry()
		registry.Register("echo", "v1", map[string]any{"type": "object"},
			func(_ context.Context, _ map[string]any) (string, error) { return "one", nil })
		registry.Register("echo", "v2", map[string]any{"type": "object"},
			func(_ context.Context, _ map[string]any) (string, error) { return "two", nil })

		assert.Len(t, registry.Defs(), 1)
		assert.Equal(t, "v2", registry.Defs()[0].Description)
		assert.Equal(t, "two", registry.Call(ctx, "echo", nil))
	})
}

func TestNewRetrieveTool(t *testing.T) {
	ctx := context.Background()

	t.Run("formats evidence as JSON array", func(t *testing.T) {
		svc, _, embedder := semanticFixture(t)
		_, err := svc.Vectorize(ctx, "sha256:test")
		require.NoError(t, err)
		embedder.byText["attention"] = []float32{1, 0, 0}

		def, fn := NewRetrieveTool("sha256:test", svc)
		assert.Equal(t, "rag_retrieve", def.Name)

		result, err := fn(ctx, map[string]any{"query": "attention", "top_k": float64(2)})
		require.NoError(t, err)

		var parsed []map[string]any
		require.NoError(t, json.Unmarshal([]byte(result), &parsed))
		require.NotEmpty(t, parsed)
		assert.Contains(t, parsed[0], "text")
		assert.Contains(t, parsed[0], "page")
		assert.Contains(t, parsed[0], "score")
		assert.Contains(t, parsed[0], "bbox_norm")
		assert.LessOrEqual(t, len(parsed), 2)
	})
}

func TestNewWebSearchTool(t *testing.T) {
	ctx := context.Background()

	t.Run("formats results as JSON array", func(t *testing.T) {
		searcher := &mockWebSearcher{results: []driven.WebResult{
			{Title: "Result 1", URL: "https://example.com", Snippet: "Snippet 1"},
		}}
		def, fn := NewWebSearchTool(searcher)
		assert.Equal(t, "web_search", def.Name)

		result, err := fn(ctx, map[string]any{"query": "test query", "max_results": float64(3)})
		require.NoError(t, err)

		var parsed []map[string]any
		require.NoError(t, json.Unmarshal([]byte(result), &parsed))
		require.Len(t, parsed, 1)
		assert.Equal(t, "Result 1", parsed[0]["title"])
		assert.Equal(t, "https://example.com", parsed[0]["url"])
		assert.Equal(t, "Snippet 1", parsed[0]["snippet"])
	})

	t.Run("empty results serialise as empty array", func(t *testing.T) {
		def, fn := NewWebSearchTool(&mockWebSearcher{})
		_ = def
		result, err := fn(ctx, map[string]any{"query": "nothing"})
		require.NoError(t, err)
		assert.Equal(t, "[]", result)
	})
}
