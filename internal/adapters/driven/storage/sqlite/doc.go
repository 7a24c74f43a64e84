// Package sqlite implements the document catalog on an embedded SQLite
// database. The file-pair span store remains the source of truth for
// span data; this catalog is the queryable index over what has been
// ingested.
package sqlite
