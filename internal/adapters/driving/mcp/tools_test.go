package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperlens/paperlens-cli/internal/core/domain"
)

func TestServer_handleRetrieveEvidence(t *testing.T) {
	ctx := context.Background()

	t.Run("returns evidence", func(t *testing.T) {
		mockRetrieve := &mockRetrieveService{
			evidence: []domain.Evidence{
				{
					SpanID:   "p002_b004",
					Page:     2,
					BBoxNorm: domain.BBox{0.1, 0.2, 0.9, 0.25},
					Text:     "Multi-head attention allows the model",
					Score:    92.5,
				},
			},
		}

		ports := &Ports{Retrieve: mockRetrieve}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := RetrieveEvidenceInput{DocID: "sha256:abc", Page: 2, Text: "multi-head attention"}
		_, output, err := server.handleRetrieveEvidence(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		require.Len(t, output.Evidence, 1)
		assert.Equal(t, "p002_b004", output.Evidence[0].SpanID)
		assert.Equal(t, 2, output.Evidence[0].Page)
		assert.Equal(t, 92.5, output.Evidence[0].Score)

		assert.Equal(t, "sha256:abc", mockRetrieve.gotDocID)
		assert.Equal(t, 2, mockRetrieve.gotPage)
		assert.Equal(t, "multi-head attention", mockRetrieve.gotText)
	})

	t.Run("returns error on retrieval failure", func(t *testing.T) {
		mockRetrieve := &mockRetrieveService{
			err: errors.New("retrieval failed"),
		}

		ports := &Ports{Retrieve: mockRetrieve}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := RetrieveEvidenceInput{DocID: "sha256:abc", Page: 0, Text: "anything"}
		_, _, err = server.handleRetrieveEvidence(ctx, nil, input)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "retrieval failed")
	})
}

func TestServer_handleSemanticSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("omitted page disables the page filter", func(t *testing.T) {
		mockSemantic := &mockSemanticService{
			evidence: []domain.Evidence{
				{SpanID: "p000_b001", Page: 0, Text: "The Transformer", Score: 0.87},
			},
		}

		ports := &Ports{Retrieve: &mockRetrieveService{}, Semantic: mockSemantic}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := SemanticSearchInput{DocID: "sha256:abc", Query: "what architecture is proposed", TopK: 3}
		_, output, err := server.handleSemanticSearch(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		assert.Equal(t, -1, mockSemantic.gotPage)
		assert.Equal(t, 3, mockSemantic.gotTopK)
		assert.Equal(t, "what architecture is proposed", mockSemantic.gotQuery)
	})

	t.Run("explicit page is forwarded", func(t *testing.T) {
		mockSemantic := &mockSemanticService{}

		ports := &Ports{Retrieve: &mockRetrieveService{}, Semantic: mockSemantic}
		server, err := NewServer(ports)
		require.NoError(t, err)

		page := 4
		input := SemanticSearchInput{DocID: "sha256:abc", Query: "results", Page: &page}
		_, output, err := server.handleSemanticSearch(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.Equal(t, 4, mockSemantic.gotPage)
	})

	t.Run("missing index error is surfaced", func(t *testing.T) {
		mockSemantic := &mockSemanticService{err: domain.ErrEmbeddingsMissing}

		ports := &Ports{Retrieve: &mockRetrieveService{}, Semantic: mockSemantic}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := SemanticSearchInput{DocID: "sha256:abc", Query: "anything"}
		_, _, err = server.handleSemanticSearch(ctx, nil, input)

		assert.ErrorIs(t, err, domain.ErrEmbeddingsMissing)
	})
}
