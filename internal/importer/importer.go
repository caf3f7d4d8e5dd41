// Package importer reconciles Markdown files in the import directory with
// the note store. Files are the source of truth for the notes they back:
// new files become notes, changed files update them, removed files delete
// them. Notes created through the API or UI have no source file and are
// never touched.
package importer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/checksum"
	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/noteid"
	"github.com/starford/laguz/internal/parser"
	"github.com/starford/laguz/internal/repository"
	"github.com/starford/laguz/internal/storage"
)

// Importer imports Markdown files into the note store.
type Importer struct {
	store  repository.NoteStore
	files  storage.Provider
	logger *slog.Logger
}

// New creates an importer.
func New(store repository.NoteStore, files storage.Provider, logger *slog.Logger) *Importer {
	return &Importer{store: store, files: files, logger: logger}
}

// Sync walks the import directory and brings the store up to date:
//   - new/changed files are parsed and upserted
//   - imported notes whose files are gone are deleted
func (im *Importer) Sync(ctx context.Context) error {
	metas, err := im.files.List("")
	if err != nil {
		return err
	}

	known, err := im.store.SourceChecksums(ctx)
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if known[m.Path] == m.Checksum {
			continue
		}

		data, err := im.files.Read(m.Path)
		if err != nil {
			im.logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if _, _, err := im.ImportFile(ctx, m.Path, data); err != nil {
			im.logger.Warn("sync: import failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			im.logger.Debug("sync: imported", slog.String("path", m.Path))
		}
	}

	// Remove imported notes whose source files are gone.
	for path := range known {
		if _, ok := disk[path]; !ok {
			if _, err := im.Remove(ctx, path); err != nil {
				im.logger.Warn("sync: remove failed", slog.String("path", path), slog.String("error", err.Error()))
			} else {
				im.logger.Debug("sync: removed stale", slog.String("path", path))
			}
		}
	}

	return nil
}

// ImportFile upserts the note backed by path. The returned kind is
// "created", "updated", or "" when the content is already current.
func (im *Importer) ImportFile(ctx context.Context, path string, data []byte) (*models.Note, string, error) {
	res, err := parser.Parse(data)
	if err != nil {
		return nil, "", err
	}
	cs := checksum.Sum(data)
	now := time.Now().UTC()

	existing, err := im.store.GetBySourcePath(ctx, path)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		n := &models.Note{
			ID:         noteid.New(),
			Title:      titleOr(res.Title, path),
			Content:    string(data),
			Tags:       res.Tags,
			Checksum:   cs,
			SourcePath: path,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := im.store.Insert(ctx, n); err != nil {
			return nil, "", err
		}
		return n, "created", nil

	case err != nil:
		return nil, "", err

	case existing.Checksum == cs:
		// Already current; this also swallows write-back echoes from the
		// watcher when a file-backed note is edited through the service.
		return existing, "", nil

	default:
		existing.Title = titleOr(res.Title, path)
		existing.Content = string(data)
		existing.Tags = res.Tags
		existing.Checksum = cs
		existing.UpdatedAt = now
		if err := im.store.Update(ctx, existing); err != nil {
			return nil, "", err
		}
		return existing, "updated", nil
	}
}

// Remove deletes the note backed by path. Returns the removed note's id.
func (im *Importer) Remove(ctx context.Context, path string) (string, error) {
	existing, err := im.store.GetBySourcePath(ctx, path)
	if err != nil {
		return "", err
	}
	if err := im.store.Delete(ctx, existing.ID); err != nil {
		return "", err
	}
	return existing.ID, nil
}

func titleOr(title, fallback string) string {
	if title != "" {
		return title
	}
	return fallback
}
