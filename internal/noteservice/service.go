// Package noteservice implements the note operations shared by every
// surface (JSON API, web UI, MCP).
package noteservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/checksum"
	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/noteid"
	"github.com/starford/laguz/internal/parser"
	"github.com/starford/laguz/internal/repository"
	"github.com/starford/laguz/internal/storage"
)

// EventFunc receives note change notifications. kind is one of "created",
// "updated", "deleted".
type EventFunc func(kind, id string)

// Service coordinates the note store and, when configured, the import
// directory for write-back of file-backed notes.
type Service struct {
	store  repository.NoteStore
	files  storage.Provider // nil when no import directory is configured
	events EventFunc        // nil when no subscriber surface is wired
}

// NewService creates a new note service. files may be nil.
func NewService(store repository.NoteStore, files storage.Provider) *Service {
	return &Service{store: store, files: files}
}

// SetEvents registers a callback fired after every successful mutation, so
// notes changed through any surface reach SSE subscribers, not only
// watcher-driven file imports. Must be called before the service handles
// requests.
func (s *Service) SetEvents(fn EventFunc) {
	s.events = fn
}

func (s *Service) publish(kind, id string) {
	if s.events != nil {
		s.events(kind, id)
	}
}

// GetNote retrieves at most one note by identifier.
//
// An absent id yields apperr.ErrNotFound, never a panic: callers branch on
// the error kind at the boundary. The read has no side effects, so
// repeated lookups with no intervening writes return identical results.
func (s *Service) GetNote(ctx context.Context, id string) (*models.Note, error) {
	return s.store.Get(ctx, id)
}

// CreateNote stores a new note under a fresh identifier. An empty title is
// derived from the content (first heading or first line).
func (s *Service) CreateNote(ctx context.Context, title, content string, tags []string) (*models.Note, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("noteservice: content is required")
	}
	if title == "" {
		title = deriveTitle(content)
	}
	now := time.Now().UTC()
	n := &models.Note{
		ID:        noteid.New(),
		Title:     title,
		Content:   content,
		Tags:      tags,
		Checksum:  checksum.Sum([]byte(content)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Insert(ctx, n); err != nil {
		return nil, err
	}
	s.publish("created", n.ID)
	return n, nil
}

// UpdateNote rewrites a note's title, content, and tags with optimistic
// concurrency: a non-empty ifMatch must equal the stored checksum or the
// update fails with apperr.ErrConflict. nil tags keep the stored tags; a
// non-nil slice replaces them. File-backed notes are written back to their
// source file.
func (s *Service) UpdateNote(ctx context.Context, id, title, content string, tags []string, ifMatch string) (*models.Note, error) {
	if !noteid.Valid(id) {
		return nil, apperr.ErrNotFound
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("noteservice: content is required")
	}
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ifMatch != "" && ifMatch != existing.Checksum {
		return nil, apperr.ErrConflict
	}
	if title == "" {
		title = deriveTitle(content)
	}

	existing.Title = title
	existing.Content = content
	if tags != nil {
		existing.Tags = tags
	}
	existing.Checksum = checksum.Sum([]byte(content))
	existing.UpdatedAt = time.Now().UTC()

	if err := s.store.Update(ctx, existing); err != nil {
		return nil, err
	}
	if existing.SourcePath != "" && s.files != nil {
		if err := s.files.Write(existing.SourcePath, []byte(content)); err != nil {
			return nil, fmt.Errorf("noteservice: write back %s: %w", existing.SourcePath, err)
		}
	}
	s.publish("updated", existing.ID)
	return existing, nil
}

// DeleteNote removes a note, and for file-backed notes its source file.
// Deleting an absent id yields apperr.ErrNotFound.
func (s *Service) DeleteNote(ctx context.Context, id string) error {
	if !noteid.Valid(id) {
		return apperr.ErrNotFound
	}
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if existing.SourcePath != "" && s.files != nil {
		if err := s.files.Delete(existing.SourcePath); err != nil {
			return fmt.Errorf("noteservice: delete source %s: %w", existing.SourcePath, err)
		}
	}
	s.publish("deleted", id)
	return nil
}

// ListNotes returns a page of notes with optional tag filter plus the total.
func (s *Service) ListNotes(ctx context.Context, limit, offset int, tag, sortBy string) ([]models.Note, int, error) {
	notes, total, err := s.store.List(ctx, limit, offset, tag, sortBy)
	if err != nil {
		return nil, 0, err
	}
	if notes == nil {
		notes = []models.Note{}
	}
	return notes, total, nil
}

// Search delegates to the store's text search.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]repository.SearchResult, error) {
	results, err := s.store.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []repository.SearchResult{}
	}
	return results, nil
}

func deriveTitle(content string) string {
	res, err := parser.Parse([]byte(content))
	if err != nil || res.Title == "" {
		return "Untitled"
	}
	return res.Title
}
