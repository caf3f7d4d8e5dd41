package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/models"
)

const noteColumns = "id, title, content, tags, checksum, source_path, created_at, updated_at"

// Get performs the point read: at most one note for the given id.
// Absent ids resolve to apperr.ErrNotFound.
func (db *DB) Get(ctx context.Context, id string) (*models.Note, error) {
	query, args, err := db.builder.
		Select(noteColumns).
		From("notes").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("repository: build get: %w", err)
	}
	return db.scanOne(ctx, query, args)
}

// GetBySourcePath returns the note imported from the given file path.
func (db *DB) GetBySourcePath(ctx context.Context, path string) (*models.Note, error) {
	query, args, err := db.builder.
		Select(noteColumns).
		From("notes").
		Where(squirrel.Eq{"source_path": path}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("repository: build get by source: %w", err)
	}
	return db.scanOne(ctx, query, args)
}

func (db *DB) scanOne(ctx context.Context, query string, args []interface{}) (*models.Note, error) {
	row := db.conn.QueryRowContext(ctx, query, args...)
	n, err := scanNote(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("repository: scan note: %w", err)
	}
	return n, nil
}

// Insert stores a new note. An id collision returns apperr.ErrAlreadyExists.
func (db *DB) Insert(ctx context.Context, n *models.Note) error {
	tagsJSON, _ := json.Marshal(nonNilTags(n.Tags))
	query, args, err := db.builder.
		Insert("notes").
		Columns("id", "title", "content", "tags", "checksum", "source_path", "created_at", "updated_at").
		Values(n.ID, n.Title, n.Content, string(tagsJSON), n.Checksum, n.SourcePath, n.CreatedAt, n.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("repository: build insert: %w", err)
	}
	if _, err := db.conn.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return apperr.ErrAlreadyExists
		}
		return fmt.Errorf("repository: insert note: %w", err)
	}
	return nil
}

// Update rewrites a note's mutable fields. Unknown ids return apperr.ErrNotFound.
func (db *DB) Update(ctx context.Context, n *models.Note) error {
	tagsJSON, _ := json.Marshal(nonNilTags(n.Tags))
	query, args, err := db.builder.
		Update("notes").
		Set("title", n.Title).
		Set("content", n.Content).
		Set("tags", string(tagsJSON)).
		Set("checksum", n.Checksum).
		Set("source_path", n.SourcePath).
		Set("updated_at", n.UpdatedAt).
		Where(squirrel.Eq{"id": n.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("repository: build update: %w", err)
	}
	res, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("repository: update note: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository: rows affected: %w", err)
	}
	if affected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// Delete removes a note. Unknown ids return apperr.ErrNotFound.
func (db *DB) Delete(ctx context.Context, id string) error {
	query, args, err := db.builder.
		Delete("notes").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("repository: build delete: %w", err)
	}
	res, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("repository: delete note: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository: rows affected: %w", err)
	}
	if affected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// List returns a page of notes plus the unpaginated total.
// sortBy is whitelisted; anything unknown falls back to updated_at DESC.
func (db *DB) List(ctx context.Context, limit, offset int, tag, sortBy string) ([]models.Note, int, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var order string
	switch sortBy {
	case "title":
		order = "title COLLATE NOCASE ASC"
	case "created_at":
		order = "created_at DESC"
	default:
		order = "updated_at DESC"
	}

	sel := db.builder.Select(noteColumns).From("notes")
	count := db.builder.Select("COUNT(*)").From("notes")
	if tag != "" {
		// Tags are stored as a JSON array of strings.
		like := `%"` + tag + `"%`
		sel = sel.Where(squirrel.Like{"tags": like})
		count = count.Where(squirrel.Like{"tags": like})
	}

	countQuery, countArgs, err := count.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("repository: build count: %w", err)
	}
	var total int
	if err := db.conn.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository: count notes: %w", err)
	}

	query, args, err := sel.
		OrderBy(order).
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("repository: build list: %w", err)
	}
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("repository: list notes: %w", err)
	}
	defer rows.Close()

	var out []models.Note
	for rows.Next() {
		n, err := scanNote(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("repository: scan list row: %w", err)
		}
		out = append(out, *n)
	}
	return out, total, rows.Err()
}

// Search performs a LIKE-based match over title, content, and tags,
// returning a short content snippet per hit.
func (db *DB) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	sqlQuery, args, err := db.builder.
		Select("id", "title", "substr(content, 1, 200)").
		From("notes").
		Where(squirrel.Or{
			squirrel.Like{"title": like},
			squirrel.Like{"content": like},
			squirrel.Like{"tags": like},
		}).
		OrderBy("updated_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("repository: build search: %w", err)
	}
	rows, err := db.conn.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SourceChecksums returns checksum by source path for every imported note.
// Used by the importer to decide what changed on disk.
func (db *DB) SourceChecksums(ctx context.Context) (map[string]string, error) {
	query, args, err := db.builder.
		Select("source_path", "checksum").
		From("notes").
		Where(squirrel.NotEq{"source_path": ""}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("repository: build source checksums: %w", err)
	}
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: source checksums: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var path, cs string
		if err := rows.Scan(&path, &cs); err != nil {
			return nil, err
		}
		out[path] = cs
	}
	return out, rows.Err()
}

// scanNote reads one row using the provided scan func (works for both
// sql.Row and sql.Rows).
func scanNote(scan func(dest ...interface{}) error) (*models.Note, error) {
	var (
		n        models.Note
		tagsJSON string
		created  time.Time
		updated  time.Time
	)
	if err := scan(&n.ID, &n.Title, &n.Content, &tagsJSON, &n.Checksum, &n.SourcePath, &created, &updated); err != nil {
		return nil, err
	}
	n.CreatedAt = created
	n.UpdatedAt = updated
	if err := json.Unmarshal([]byte(tagsJSON), &n.Tags); err != nil {
		n.Tags = nil
	}
	return &n, nil
}

// isUniqueViolation reports whether err is a SQLite unique constraint error.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	return false
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
