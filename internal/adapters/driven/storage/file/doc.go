// Package file persists spans and embedding indexes as per-document
// file pairs in a data directory, content-addressed by doc ID.
//
// Layout per document (colon in the doc ID replaced with underscore):
//
//	<id>.pdf         original bytes
//	<id>.spans.jsonl append-only span records, one JSON object per line
//	<id>.doc.json    document summary
//	<id>.emb.f32     row-major float32 embedding matrix, little endian
//	<id>.emb.json    index sidecar {model, dim, span_ids}
//
// Writes go through a temp file and atomic rename so readers never
// observe a torn file.
package file
