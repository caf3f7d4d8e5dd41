// Package repository provides the SQLite-backed note store.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/laguz/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS notes (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL DEFAULT '',
	content     TEXT NOT NULL DEFAULT '',
	tags        TEXT NOT NULL DEFAULT '[]',
	checksum    TEXT NOT NULL DEFAULT '',
	source_path TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_notes_source_path
	ON notes(source_path) WHERE source_path != '';
CREATE INDEX IF NOT EXISTS idx_notes_updated_at ON notes(updated_at);
`

// SearchResult represents one search hit.
type SearchResult struct {
	ID      string
	Title   string
	Snippet string
}

// NoteStore defines the store collaborator interface. Consumers depend on
// this rather than the concrete *DB to facilitate testing with fakes.
//
// Methods that resolve an identifier to nothing return apperr.ErrNotFound;
// absence is an expected outcome, never a panic or a generic failure.
type NoteStore interface {
	Get(ctx context.Context, id string) (*models.Note, error)
	GetBySourcePath(ctx context.Context, path string) (*models.Note, error)
	Insert(ctx context.Context, n *models.Note) error
	Update(ctx context.Context, n *models.Note) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int, tag, sortBy string) ([]models.Note, int, error)
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
	SourceChecksums(ctx context.Context) (map[string]string, error)
	Close() error
}

// Verify *DB satisfies NoteStore at compile time.
var _ NoteStore = (*DB)(nil)

// DB wraps a sql.DB with note store operations.
type DB struct {
	conn    *sql.DB
	builder squirrel.StatementBuilderType
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("repository: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("repository: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("repository: apply schema: %w", err)
	}
	return &DB{
		conn:    conn,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
