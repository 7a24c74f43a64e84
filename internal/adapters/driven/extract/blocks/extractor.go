package blocks

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/paperlens/paperlens-cli/internal/core/domain"
	"github.com/paperlens/paperlens-cli/internal/core/ports/driven"
	"github.com/paperlens/paperlens-cli/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

const engineName = "blocks"

// Fallback page size (US Letter points) when a page carries no MediaBox.
const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

// Extractor parses PDFs with the ledongthuc/pdf reader and groups glyph
// runs into block spans.
type Extractor struct{}

// NewExtractor creates a block extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Engine names the extraction path.
func (e *Extractor) Engine() string {
	return engineName
}

// Extract parses the document and returns classified spans in reading
// order. Pages that fail to parse are skipped with a warning rather
// than failing the whole document.
func (e *Extractor) Extract(_ context.Context, docID string, pdfBytes []byte, opts driven.ExtractOptions) (driven.Extraction, error) {
	reader, err := pdf.NewReader(bytes.NewReader(pdfBytes), int64(len(pdfBytes)))
	if err != nil {
		return driven.Extraction{}, fmt.Errorf("blocks: open pdf: %w: %v", domain.ErrInvalidInput, err)
	}

	nPages := reader.NumPage()
	var spans []domain.Span
	readingOrder := 0

	for pageNum := 1; pageNum <= nPages; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		frags, err := pageFragments(page)
		if err != nil {
			logger.Warn("Page %d: %v", pageNum, err)
			continue
		}

		width, height := pageSize(page)
		pageIdx := pageNum - 1

		blockIdx := 0
		for _, block := range groupBlocks(groupLines(frags)) {
			text := domain.CollapseWhitespace(block.text)
			if len(text) < opts.MinChars {
				continue
			}

			span := domain.Span{
				SpanID:       fmt.Sprintf("p%03d_b%03d", pageIdx, blockIdx),
				DocID:        docID,
				Page:         pageIdx,
				BBoxPDF:      domain.BBox{block.x0, block.y0, block.x1, block.y1},
				BBoxNorm:     normalizeBBox(block, width, height),
				Text:         text,
				ReadingOrder: readingOrder,
				Kind:         domain.KindText,
				Source:       engineName,
			}
			classifyFurniture(&span, block, height)

			spans = append(spans, span)
			readingOrder++
			blockIdx++
		}
	}

	return driven.Extraction{Spans: spans, NPages: nPages}, nil
}

// pageFragments pulls the positioned glyph runs off one page. The
// underlying parser panics on malformed content streams, so this is the
// recovery boundary.
func pageFragments(page pdf.Page) (frags []fragment, err error) {
	defer func() {
		if r := recover(); r != nil {
			frags = nil
			err = fmt.Errorf("content stream parse failed: %v", r)
		}
	}()

	content := page.Content()
	frags = make([]fragment, 0, len(content.Text))
	for _, t := range content.Text {
		if t.S == "" {
			continue
		}
		h := t.FontSize
		if h <= 0 {
			h = 1
		}
		frags = append(frags, fragment{
			text: t.S,
			x0:   t.X,
			y0:   t.Y,
			x1:   t.X + t.W,
			y1:   t.Y + h,
		})
	}
	return frags, nil
}

// pageSize reads the page MediaBox, falling back to US Letter when the
// page does not carry one.
func pageSize(page pdf.Page) (width, height float64) {
	mb := page.V.Key("MediaBox")
	if mb.Kind() != pdf.Array || mb.Len() != 4 {
		return defaultPageWidth, defaultPageHeight
	}
	x0 := mb.Index(0).Float64()
	y0 := mb.Index(1).Float64()
	x1 := mb.Index(2).Float64()
	y1 := mb.Index(3).Float64()
	width = x1 - x0
	height = y1 - y0
	if width <= 0 || height <= 0 {
		return defaultPageWidth, defaultPageHeight
	}
	return width, height
}
