package mcp

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperlens/paperlens-cli/internal/core/domain"
	"github.com/paperlens/paperlens-cli/internal/core/ports/driven"
)

func TestExtractDocID(t *testing.T) {
	tests := []struct {
		name   string
		uri    string
		suffix string
		want   string
	}{
		{
			name:   "valid spans uri",
			uri:    "paperlens://documents/sha256:abc/spans",
			suffix: "/spans",
			want:   "sha256:abc",
		},
		{
			name:   "valid meta uri",
			uri:    "paperlens://documents/sha256:abc/meta",
			suffix: "/meta",
			want:   "sha256:abc",
		},
		{
			name:   "wrong scheme",
			uri:    "other://documents/sha256:abc/spans",
			suffix: "/spans",
			want:   "",
		},
		{
			name:   "missing suffix",
			uri:    "paperlens://documents/sha256:abc",
			suffix: "/spans",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractDocID(tt.uri, tt.suffix))
		})
	}
}

func TestServer_handleDocumentsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("lists catalog records", func(t *testing.T) {
		catalog := &mockCatalog{
			records: []driven.DocumentRecord{
				{DocID: "sha256:abc", Title: "Attention Is All You Need", NPages: 15, NSpans: 420},
			},
		}

		ports := &Ports{Retrieve: &mockRetrieveService{}, Catalog: catalog}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: "paperlens://documents"}}
		result, err := server.handleDocumentsResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Contains(t, result.Contents[0].Text, "sha256:abc")
		assert.Contains(t, result.Contents[0].Text, "Attention Is All You Need")
	})

	t.Run("nil catalog yields empty list", func(t *testing.T) {
		ports := &Ports{Retrieve: &mockRetrieveService{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: "paperlens://documents"}}
		result, err := server.handleDocumentsResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})
}

func TestServer_handleSpansResource(t *testing.T) {
	ctx := context.Background()

	store := &mockSpanStore{
		spans: []domain.Span{
			{SpanID: "p000_b000", DocID: "sha256:abc", Page: 0, Text: "Abstract"},
		},
	}

	ports := &Ports{Retrieve: &mockRetrieveService{}, Spans: store}
	server, err := NewServer(ports)
	require.NoError(t, err)

	req := &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: "paperlens://documents/sha256:abc/spans"}}
	result, err := server.handleSpansResource(ctx, req)

	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Contains(t, result.Contents[0].Text, "p000_b000")
}
