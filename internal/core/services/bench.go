package services

import (
	"math"

	"github.com/paperlens/paperlens-cli/internal/core/domain"
)

// DefaultIoUThreshold is the minimum overlap for a span match.
const DefaultIoUThreshold = 0.5

// BenchSpan is the minimal span view the evaluator needs: geometry plus
// layout label. Gold annotations carry the same shape.
type BenchSpan struct {
	BBoxNorm domain.BBox `json:"bbox_norm"`
	Kind     string      `json:"kind"`
}

// SpanMatch pairs a gold span with the predicted span it matched.
type SpanMatch struct {
	Gold      BenchSpan
	Predicted BenchSpan
	IoU       float64
}

// IngestionMetrics aggregates span-matching quality for one page.
type IngestionMetrics struct {
	MeanIoU        float64 `json:"mean_iou"`
	LayoutAccuracy float64 `json:"layout_accuracy"`
	Coverage       float64 `json:"coverage"`
	SpuriousRate   float64 `json:"spurious_rate"`
	NGold          int     `json:"n_gold"`
	NPredicted     int     `json:"n_predicted"`
	NMatched       int     `json:"n_matched"`
}

// BBoxIoU computes intersection-over-union of two normalised
// rectangles. Degenerate or disjoint pairs with non-positive union
// yield 0.
func BBoxIoU(a, b domain.BBox) float64 {
	x0 := math.Max(a[0], b[0])
	y0 := math.Max(a[1], b[1])
	x1 := math.Min(a[2], b[2])
	y1 := math.Min(a[3], b[3])

	inter := math.Max(0, x1-x0) * math.Max(0, y1-y0)
	areaA := (a[2] - a[0]) * (a[3] - a[1])
	areaB := (b[2] - b[0]) * (b[3] - b[1])
	union := areaA + areaB - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// MatchSpans performs greedy best-IoU matching of gold spans against
// predicted spans. For each gold span in input order the unmatched
// predicted span with the highest IoU wins, provided it clears the
// threshold; matched predicted spans cannot match twice.
//
// The greediness is deliberate and order dependent: ties break by
// predicted-list order and earlier gold spans win contested matches.
// This is not globally optimal bipartite assignment, and is preserved
// as-is for compatibility with existing benchmark numbers.
func MatchSpans(gold, predicted []BenchSpan, iouThreshold float64) []SpanMatch {
	used := make(map[int]bool, len(predicted))
	var matches []SpanMatch

	for _, g := range gold {
		bestIoU := 0.0
		bestIdx := -1
		for j, p := range predicted {
			if used[j] {
				continue
			}
			iou := BBoxIoU(g.BBoxNorm, p.BBoxNorm)
			if iou > bestIoU {
				bestIoU = iou
				bestIdx = j
			}
		}
		if bestIdx >= 0 && bestIoU >= iouThreshold {
			used[bestIdx] = true
			matches = append(matches, SpanMatch{Gold: g, Predicted: predicted[bestIdx], IoU: bestIoU})
		}
	}
	return matches
}

// ComputeIngestionMetrics aggregates match quality between gold and
// predicted span sets using the default IoU threshold.
func ComputeIngestionMetrics(gold, predicted []BenchSpan) IngestionMetrics {
	matches := MatchSpans(gold, predicted, DefaultIoUThreshold)

	var meanIoU float64
	kindCorrect := 0
	for _, m := range matches {
		meanIoU += m.IoU
		if m.Gold.Kind == m.Predicted.Kind {
			kindCorrect++
		}
	}

	layoutAccuracy := 0.0
	if len(matches) > 0 {
		meanIoU /= float64(len(matches))
		layoutAccuracy = float64(kindCorrect) / float64(len(matches))
	}

	coverage := 0.0
	if len(gold) > 0 {
		coverage = float64(len(matches)) / float64(len(gold))
	}

	// Spurious rate is defined as 0 when nothing was predicted.
	spurious := 0.0
	if len(predicted) > 0 {
		spurious = 1 - float64(len(matches))/float64(len(predicted))
	}

	return IngestionMetrics{
		MeanIoU:        round4(meanIoU),
		LayoutAccuracy: round4(layoutAccuracy),
		Coverage:       round4(coverage),
		SpuriousRate:   round4(spurious),
		NGold:          len(gold),
		NPredicted:     len(predicted),
		NMatched:       len(matches),
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
