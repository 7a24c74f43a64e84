// Package blocks extracts positioned text spans from PDF bytes by
// grouping the raw glyph runs of each page into lines and lines into
// blocks. One block becomes one span.
//
// Coordinates come out twice: bbox_pdf in source points with the PDF's
// bottom-left origin, and bbox_norm scaled to [0,1] with a top-left
// origin so viewers can overlay highlights without knowing page sizes.
package blocks
