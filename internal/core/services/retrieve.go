package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/paperlens/paperlens-cli/internal/core/domain"
	"github.com/paperlens/paperlens-cli/internal/core/ports/driven"
	"github.com/paperlens/paperlens-cli/internal/core/ports/driving"
	"github.com/paperlens/paperlens-cli/internal/logger"
)

// Ensure RetrieveService implements the interface.
var _ driving.RetrieveService = (*RetrieveService)(nil)

// Defaults for lexical retrieval.
const (
	// DefaultTopKEvidence is how many top fuzzy matches seed the result.
	DefaultTopKEvidence = 8

	// DefaultNeighborWindow expands each match by this many reading-order
	// neighbours on either side.
	DefaultNeighborWindow = 1
)

// RetrieveService performs fuzzy lexical retrieval over one page of a
// document, expanding matches to their reading-order neighbours so a hit
// that lands mid-sentence still carries its context.
type RetrieveService struct {
	store          driven.SpanStore
	topK           int
	neighborWindow int
	scorer         *metrics.SmithWatermanGotoh
}

// NewRetrieveService creates a new lexical retrieval service.
func NewRetrieveService(store driven.SpanStore) *RetrieveService {
	scorer := metrics.NewSmithWatermanGotoh()
	scorer.CaseSensitive = false
	return &RetrieveService{
		store:          store,
		topK:           DefaultTopKEvidence,
		neighborWindow: DefaultNeighborWindow,
		scorer:         scorer,
	}
}

// SetTopK overrides the number of top matches used to seed evidence.
func (s *RetrieveService) SetTopK(k int) {
	if k > 0 {
		s.topK = k
	}
}

// SetNeighborWindow overrides the reading-order expansion radius.
func (s *RetrieveService) SetNeighborWindow(n int) {
	if n >= 0 {
		s.neighborWindow = n
	}
}

// partialScore rates how well the query matches inside the span text,
// in [0,100]. Local alignment rewards the query being a substring-like
// match regardless of non-matching surrounding text.
func (s *RetrieveService) partialScore(query, text string) float64 {
	if query == "" || text == "" {
		return 0
	}
	return strutil.Similarity(query, text, s.scorer) * 100
}

// scoredSpan pairs a candidate span with its match score.
type scoredSpan struct {
	span  domain.Span
	score float64
}

// Retrieve returns evidence for the selected text on one page.
// Returns domain.ErrNotFound if the document has no stored spans; an
// empty page yields an empty slice, not an error.
func (s *RetrieveService) Retrieve(ctx context.Context, docID string, page int, selectedText string) ([]domain.Evidence, error) {
	spans, err := s.store.ReadSpans(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	logger.Section("Lexical Retrieval")
	logger.Debug("Doc: %s page: %d", docID, page)

	// Candidates: same page, excluding page furniture.
	var cand []domain.Span
	for _, sp := range spans {
		if sp.Page == page && !sp.IsHeader && !sp.IsFooter {
			cand = append(cand, sp)
		}
	}
	if len(cand) == 0 {
		logger.Debug("No spans on page %d", page)
		return []domain.Evidence{}, nil
	}

	query := domain.CollapseWhitespace(selectedText)
	scored := make([]scoredSpan, 0, len(cand))
	for _, sp := range cand {
		scored = append(scored, scoredSpan{span: sp, score: s.partialScore(query, sp.Text)})
	}
	// Stable so ties keep page order.
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	top := scored
	if len(top) > s.topK {
		top = top[:s.topK]
	}
	logger.Debug("Top match score: %.1f (%d candidates)", top[0].score, len(cand))

	// Neighbour expansion happens in page-local reading order.
	roSorted := make([]domain.Span, len(cand))
	copy(roSorted, cand)
	sort.SliceStable(roSorted, func(i, j int) bool {
		return roSorted[i].ReadingOrder < roSorted[j].ReadingOrder
	})
	idxByID := make(map[string]int, len(roSorted))
	for i, sp := range roSorted {
		idxByID[sp.SpanID] = i
	}

	seen := make(map[string]bool)
	var out []domain.Evidence
	for _, m := range top {
		i, ok := idxByID[m.span.SpanID]
		if !ok {
			continue
		}
		lo := i - s.neighborWindow
		if lo < 0 {
			lo = 0
		}
		hi := i + s.neighborWindow
		if hi > len(roSorted)-1 {
			hi = len(roSorted) - 1
		}
		for j := lo; j <= hi; j++ {
			sp := roSorted[j]
			if seen[sp.SpanID] {
				continue
			}
			seen[sp.SpanID] = true
			// Neighbours inherit the score of the match that pulled
			// them in, not a score of their own.
			out = append(out, domain.Evidence{
				SpanID:   sp.SpanID,
				Page:     sp.Page,
				BBoxNorm: sp.BBoxNorm,
				Text:     sp.Text,
				Score:    m.score,
			})
		}
	}

	// Evidence reads top-to-bottom as on the page; spans with no
	// recoverable order go last.
	sort.SliceStable(out, func(i, j int) bool {
		oi, iok := idxByID[out[i].SpanID]
		oj, jok := idxByID[out[j].SpanID]
		if !iok {
			oi = int(^uint(0) >> 1)
		}
		if !jok {
			oj = int(^uint(0) >> 1)
		}
		return oi < oj
	})

	if out == nil {
		out = []domain.Evidence{}
	}
	return out, nil
}
