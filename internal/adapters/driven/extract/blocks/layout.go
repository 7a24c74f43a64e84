package blocks

import (
	"sort"
	"strings"

	"github.com/paperlens/paperlens-cli/internal/core/domain"
)

// Grouping tolerances, in multiples of the current line height.
const (
	lineMergeFactor  = 0.5
	blockMergeFactor = 1.6
)

// Page furniture thresholds as fractions of page height, measured from
// the top edge after origin flip.
const (
	headerBand = 0.08
	footerBand = 0.92
)

// fragment is one positioned glyph run in PDF point coordinates,
// bottom-left origin.
type fragment struct {
	text           string
	x0, y0, x1, y1 float64
}

// line is a horizontal run of fragments sharing a baseline.
type line struct {
	text           string
	x0, y0, x1, y1 float64
}

// block is a group of vertically adjacent lines, the unit that becomes
// a span.
type block struct {
	text           string
	x0, y0, x1, y1 float64
}

func (l line) height() float64 {
	return l.y1 - l.y0
}

// groupLines clusters fragments by baseline. Fragments whose vertical
// centres sit within half a line height of each other belong to the
// same line; within a line they read left to right.
func groupLines(frags []fragment) []line {
	if len(frags) == 0 {
		return nil
	}

	sorted := make([]fragment, len(frags))
	copy(sorted, frags)
	// Top of page first (PDF y grows upward), then left to right.
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].y0 != sorted[j].y0 {
			return sorted[i].y0 > sorted[j].y0
		}
		return sorted[i].x0 < sorted[j].x0
	})

	var lines []line
	var current []fragment

	flush := func() {
		if len(current) == 0 {
			return
		}
		sort.SliceStable(current, func(i, j int) bool {
			return current[i].x0 < current[j].x0
		})
		var b strings.Builder
		merged := line{x0: current[0].x0, y0: current[0].y0, x1: current[0].x1, y1: current[0].y1}
		for i, f := range current {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(f.text)
			merged.x0 = min(merged.x0, f.x0)
			merged.y0 = min(merged.y0, f.y0)
			merged.x1 = max(merged.x1, f.x1)
			merged.y1 = max(merged.y1, f.y1)
		}
		merged.text = b.String()
		lines = append(lines, merged)
		current = current[:0]
	}

	for _, f := range sorted {
		if len(current) > 0 {
			ref := current[0]
			tol := (ref.y1 - ref.y0) * lineMergeFactor
			if abs(f.y0-ref.y0) > tol {
				flush()
			}
		}
		current = append(current, f)
	}
	flush()

	return lines
}

// groupBlocks merges consecutive lines into blocks. A new block starts
// when the vertical gap to the previous line exceeds the merge
// threshold, which separates paragraphs, captions and column breaks.
func groupBlocks(lines []line) []block {
	if len(lines) == 0 {
		return nil
	}

	var blocks []block
	current := block{
		text: lines[0].text,
		x0:   lines[0].x0, y0: lines[0].y0, x1: lines[0].x1, y1: lines[0].y1,
	}
	prev := lines[0]

	for _, l := range lines[1:] {
		gap := prev.y0 - l.y1
		ref := max(prev.height(), l.height())
		if gap > ref*blockMergeFactor {
			blocks = append(blocks, current)
			current = block{text: l.text, x0: l.x0, y0: l.y0, x1: l.x1, y1: l.y1}
		} else {
			current.text += " " + l.text
			current.x0 = min(current.x0, l.x0)
			current.y0 = min(current.y0, l.y0)
			current.x1 = max(current.x1, l.x1)
			current.y1 = max(current.y1, l.y1)
		}
		prev = l
	}
	blocks = append(blocks, current)

	return blocks
}

// normalizeBBox converts a block rectangle from PDF points
// (bottom-left origin) to [0,1] page fractions (top-left origin).
func normalizeBBox(b block, width, height float64) domain.BBox {
	return domain.BBox{
		clamp01(b.x0 / width),
		clamp01((height - b.y1) / height),
		clamp01(b.x1 / width),
		clamp01((height - b.y0) / height),
	}
}

// classifyFurniture marks blocks in the top and bottom page bands as
// repeated page furniture.
func classifyFurniture(span *domain.Span, b block, height float64) {
	topFrac := (height - b.y1) / height
	bottomFrac := (height - b.y0) / height
	switch {
	case bottomFrac <= headerBand:
		span.Kind = domain.KindHeader
		span.IsHeader = true
	case topFrac >= footerBand:
		span.Kind = domain.KindFooter
		span.IsFooter = true
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
