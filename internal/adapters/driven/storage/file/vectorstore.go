package file

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/paperlens/paperlens-cli/internal/core/domain"
	"github.com/paperlens/paperlens-cli/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore persists embedding indexes as a raw float32 matrix file
// plus a JSON sidecar per document.
type VectorStore struct {
	dataDir string
}

// NewVectorStore creates a vector store rooted at dataDir.
// If dataDir is empty, defaults to ~/.paperlens/data.
func NewVectorStore(dataDir string) (*VectorStore, error) {
	resolved, err := resolveDataDir(dataDir)
	if err != nil {
		return nil, err
	}
	return &VectorStore{dataDir: resolved}, nil
}

// indexSidecar is the on-disk shape of the index metadata.
type indexSidecar struct {
	Model   string   `json:"model"`
	Dim     int      `json:"dim"`
	SpanIDs []string `json:"span_ids"`
}

func (s *VectorStore) matrixPath(docID string) string {
	return filepath.Join(s.dataDir, safeName(docID)+".emb.f32")
}

func (s *VectorStore) sidecarPath(docID string) string {
	return filepath.Join(s.dataDir, safeName(docID)+".emb.json")
}

// SaveIndex overwrites the document's index. The matrix lands before
// the sidecar; the sidecar is what marks the index as present.
func (s *VectorStore) SaveIndex(_ context.Context, docID string, index driven.EmbeddingIndex) error {
	if len(index.Vectors) != len(index.SpanIDs) {
		return fmt.Errorf("vector store: %d vectors for %d span ids: %w",
			len(index.Vectors), len(index.SpanIDs), domain.ErrInvalidInput)
	}

	matrix := make([]byte, 0, len(index.Vectors)*index.Dim*4)
	for i, row := range index.Vectors {
		if len(row) != index.Dim {
			return fmt.Errorf("vector store: row %d has dim %d, want %d: %w",
				i, len(row), index.Dim, domain.ErrInvalidInput)
		}
		for _, v := range row {
			matrix = binary.LittleEndian.AppendUint32(matrix, math.Float32bits(v))
		}
	}
	if err := writeFileAtomic(s.matrixPath(docID), matrix); err != nil {
		return fmt.Errorf("vector store: matrix: %w", err)
	}

	sidecar := indexSidecar{Model: index.Model, Dim: index.Dim, SpanIDs: index.SpanIDs}
	data, err := json.MarshalIndent(sidecar, "", "  ")
	if err != nil {
		return fmt.Errorf("vector store: encode sidecar: %w", err)
	}
	if err := writeFileAtomic(s.sidecarPath(docID), data); err != nil {
		return fmt.Errorf("vector store: sidecar: %w", err)
	}
	return nil
}

// LoadIndex reads the document's index back.
func (s *VectorStore) LoadIndex(_ context.Context, docID string) (driven.EmbeddingIndex, error) {
	data, err := os.ReadFile(s.sidecarPath(docID))
	if err != nil {
		if os.IsNotExist(err) {
			return driven.EmbeddingIndex{}, fmt.Errorf("vector store: document %s: %w", docID, domain.ErrEmbeddingsMissing)
		}
		return driven.EmbeddingIndex{}, fmt.Errorf("vector store: read sidecar: %w", err)
	}
	var sidecar indexSidecar
	if err := json.Unmarshal(data, &sidecar); err != nil {
		return driven.EmbeddingIndex{}, fmt.Errorf("vector store: decode sidecar: %w", err)
	}

	matrix, err := os.ReadFile(s.matrixPath(docID))
	if err != nil {
		if os.IsNotExist(err) {
			return driven.EmbeddingIndex{}, fmt.Errorf("vector store: document %s: %w", docID, domain.ErrEmbeddingsMissing)
		}
		return driven.EmbeddingIndex{}, fmt.Errorf("vector store: read matrix: %w", err)
	}

	rows := len(sidecar.SpanIDs)
	want := rows * sidecar.Dim * 4
	if len(matrix) != want {
		return driven.EmbeddingIndex{}, fmt.Errorf("vector store: matrix is %d bytes, want %d for %d x %d",
			len(matrix), want, rows, sidecar.Dim)
	}

	vectors := make([][]float32, rows)
	for i := 0; i < rows; i++ {
		row := make([]float32, sidecar.Dim)
		for j := 0; j < sidecar.Dim; j++ {
			off := (i*sidecar.Dim + j) * 4
			row[j] = math.Float32frombits(binary.LittleEndian.Uint32(matrix[off:]))
		}
		vectors[i] = row
	}

	return driven.EmbeddingIndex{
		Model:   sidecar.Model,
		Dim:     sidecar.Dim,
		SpanIDs: sidecar.SpanIDs,
		Vectors: vectors,
	}, nil
}
