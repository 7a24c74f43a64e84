package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/paperlens/paperlens-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/paperlens/paperlens-cli/internal/core/domain"
	"github.com/paperlens/paperlens-cli/internal/core/ports/driven"
)

// Catalog is the SQLite-backed implementation of driven.Catalog.
type Catalog struct {
	db   *sql.DB
	path string
}

var _ driven.Catalog = (*Catalog)(nil)

// NewCatalog opens (creating if needed) the catalog database under the
// given data directory. If dataDir is empty, defaults to
// ~/.paperlens/data/catalog.db.
func NewCatalog(dataDir string) (*Catalog, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".paperlens", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "catalog.db")

	// WAL mode keeps concurrent readers from blocking on writes.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	c := &Catalog{db: db, path: dbPath}

	if err := c.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return c, nil
}

// Close closes the database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Path returns the database file path.
func (c *Catalog) Path() string {
	return c.path
}

// migrate runs all pending migrations.
func (c *Catalog) migrate(fsys embed.FS) error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := c.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := c.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// Upsert inserts or replaces the record for a document.
func (c *Catalog) Upsert(ctx context.Context, rec driven.DocumentRecord) error {
	if rec.DocID == "" {
		return fmt.Errorf("catalog: empty doc id: %w", domain.ErrInvalidInput)
	}

	_, err := c.db.ExecContext(ctx, `
		INSERT INTO documents (doc_id, title, n_pages, n_spans, engine, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(doc_id) DO UPDATE SET
			title = excluded.title,
			n_pages = excluded.n_pages,
			n_spans = excluded.n_spans,
			engine = excluded.engine,
			ingested_at = excluded.ingested_at
	`, rec.DocID, rec.Title, rec.NPages, rec.NSpans, rec.Engine, rec.IngestedAt.UTC())

	if err != nil {
		return fmt.Errorf("upserting document: %w", err)
	}
	return nil
}

// Get retrieves a record by doc ID.
func (c *Catalog) Get(ctx context.Context, docID string) (driven.DocumentRecord, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT doc_id, title, n_pages, n_spans, engine, ingested_at
		FROM documents WHERE doc_id = ?
	`, docID)

	var rec driven.DocumentRecord
	if err := row.Scan(&rec.DocID, &rec.Title, &rec.NPages, &rec.NSpans, &rec.Engine, &rec.IngestedAt); err != nil {
		if err == sql.ErrNoRows {
			return driven.DocumentRecord{}, fmt.Errorf("catalog: document %s: %w", docID, domain.ErrNotFound)
		}
		return driven.DocumentRecord{}, fmt.Errorf("scanning document: %w", err)
	}

	return rec, nil
}

// List returns all records, most recently ingested first.
func (c *Catalog) List(ctx context.Context) ([]driven.DocumentRecord, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT doc_id, title, n_pages, n_spans, engine, ingested_at
		FROM documents
		ORDER BY ingested_at DESC, doc_id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var records []driven.DocumentRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var rec driven.DocumentRecord
		if err := rows.Scan(&rec.DocID, &rec.Title, &rec.NPages, &rec.NSpans, &rec.Engine, &rec.IngestedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return records, nil
}

// Delete removes a record.
func (c *Catalog) Delete(ctx context.Context, docID string) error {
	_, err := c.db.ExecContext(ctx, "DELETE FROM documents WHERE doc_id = ?", docID)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}
