package file

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/paperlens/paperlens-cli/internal/core/domain"
	"github.com/paperlens/paperlens-cli/internal/core/ports/driven"
)

// Ensure SpanStore implements the interface.
var _ driven.SpanStore = (*SpanStore)(nil)

// SpanStore is the file-pair implementation of driven.SpanStore.
type SpanStore struct {
	dataDir string
}

// NewSpanStore creates a span store rooted at dataDir.
// If dataDir is empty, defaults to ~/.paperlens/data.
func NewSpanStore(dataDir string) (*SpanStore, error) {
	resolved, err := resolveDataDir(dataDir)
	if err != nil {
		return nil, err
	}
	return &SpanStore{dataDir: resolved}, nil
}

func resolveDataDir(dataDir string) (string, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".paperlens", "data")
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}
	return dataDir, nil
}

// safeName flattens a doc ID into a filesystem-safe base name.
func safeName(docID string) string {
	return strings.ReplaceAll(docID, ":", "_")
}

func (s *SpanStore) pdfPath(docID string) string {
	return filepath.Join(s.dataDir, safeName(docID)+".pdf")
}

func (s *SpanStore) spansPath(docID string) string {
	return filepath.Join(s.dataDir, safeName(docID)+".spans.jsonl")
}

func (s *SpanStore) metaPath(docID string) string {
	return filepath.Join(s.dataDir, safeName(docID)+".doc.json")
}

// writeFileAtomic writes data to a temp file in the same directory and
// renames it into place, so concurrent readers see either the old or
// the new content, never a partial write.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming into place: %w", err)
	}
	return nil
}

// WriteDocument persists the PDF bytes, spans and summary. Spans land
// before the summary: a crash in between leaves a document that reads
// as not-yet-ingested rather than half-ingested.
func (s *SpanStore) WriteDocument(_ context.Context, docID string, pdfBytes []byte, spans []domain.Span, meta domain.DocumentMeta) error {
	if err := writeFileAtomic(s.pdfPath(docID), pdfBytes); err != nil {
		return fmt.Errorf("span store: pdf: %w", err)
	}

	var buf strings.Builder
	enc := json.NewEncoder(&buf)
	for _, sp := range spans {
		if err := enc.Encode(sp); err != nil {
			return fmt.Errorf("span store: encode span %s: %w", sp.SpanID, err)
		}
	}
	if err := writeFileAtomic(s.spansPath(docID), []byte(buf.String())); err != nil {
		return fmt.Errorf("span store: spans: %w", err)
	}

	metaData, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("span store: encode meta: %w", err)
	}
	if err := writeFileAtomic(s.metaPath(docID), metaData); err != nil {
		return fmt.Errorf("span store: meta: %w", err)
	}
	return nil
}

// ReadSpans returns the ordered span sequence for a document.
// Decoding is schema tolerant: unknown fields are ignored and missing
// optional fields default, so records written by newer or older
// extraction engines still load.
func (s *SpanStore) ReadSpans(_ context.Context, docID string) ([]domain.Span, error) {
	f, err := os.Open(s.spansPath(docID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("span store: document %s: %w", docID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("span store: open spans: %w", err)
	}
	defer f.Close()

	var spans []domain.Span
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var sp domain.Span
		if err := json.Unmarshal([]byte(raw), &sp); err != nil {
			return nil, fmt.Errorf("span store: decode line %d: %w", line, err)
		}
		spans = append(spans, sp)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("span store: scan spans: %w", err)
	}
	return spans, nil
}

// ReadMeta returns the document summary.
func (s *SpanStore) ReadMeta(_ context.Context, docID string) (domain.DocumentMeta, error) {
	data, err := os.ReadFile(s.metaPath(docID))
	if err != nil {
		if os.IsNotExist(err) {
			return domain.DocumentMeta{}, fmt.Errorf("span store: document %s: %w", docID, domain.ErrNotFound)
		}
		return domain.DocumentMeta{}, fmt.Errorf("span store: read meta: %w", err)
	}
	var meta domain.DocumentMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return domain.DocumentMeta{}, fmt.Errorf("span store: decode meta: %w", err)
	}
	return meta, nil
}

// PDFPath returns the stored path of the original PDF bytes.
func (s *SpanStore) PDFPath(docID string) (string, error) {
	path := s.pdfPath(docID)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("span store: document %s: %w", docID, domain.ErrNotFound)
		}
		return "", fmt.Errorf("span store: stat pdf: %w", err)
	}
	return path, nil
}
