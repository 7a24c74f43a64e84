package domain

// Evidence is a scored, retrieval-time projection of a Span.
// Constructed per request, never persisted.
type Evidence struct {
	// SpanID identifies the underlying span.
	SpanID string `json:"span_id"`

	// Page is the 0-indexed page the span sits on.
	Page int `json:"page"`

	// BBoxNorm anchors the evidence to page coordinates.
	BBoxNorm BBox `json:"bbox_norm"`

	// Text is the span text.
	Text string `json:"text"`

	// Score is retrieval-method specific: fuzzy ratio in [0,100] for
	// lexical retrieval, cosine similarity in [-1,1] for semantic.
	// Scores are not comparable across methods.
	Score float64 `json:"score"`
}
