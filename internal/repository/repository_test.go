package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/checksum"
	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/noteid"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "laguz-repo-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := Open(dbFile.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleNote(title, content string) *models.Note {
	now := time.Now().UTC()
	return &models.Note{
		ID:        noteid.New(),
		Title:     title,
		Content:   content,
		Checksum:  checksum.Sum([]byte(content)),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestInsertAndGet(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	n := sampleNote("Hello", "line1\n  line2")
	if err := db.Insert(ctx, n); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := db.Get(ctx, n.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Hello" {
		t.Errorf("title = %q", got.Title)
	}
	if got.Content != "line1\n  line2" {
		t.Errorf("content whitespace not preserved: %q", got.Content)
	}
}

func TestGetMissingIsNotFound(t *testing.T) {
	db := testDB(t)
	_, err := db.Get(context.Background(), noteid.New())
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGetIsIdempotent(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	n := sampleNote("Stable", "same content every time\n")
	if err := db.Insert(ctx, n); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	first, err := db.Get(ctx, n.ID)
	if err != nil {
		t.Fatalf("first Get: %v", err)
	}
	second, err := db.Get(ctx, n.ID)
	if err != nil {
		t.Fatalf("second Get: %v", err)
	}
	if first.Content != second.Content || first.Checksum != second.Checksum {
		t.Error("repeated lookups should return identical results")
	}
}

func TestInsertDuplicateID(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	n := sampleNote("One", "one")
	if err := db.Insert(ctx, n); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	dup := sampleNote("Two", "two")
	dup.ID = n.ID
	if err := db.Insert(ctx, dup); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestUpdateMissingIsNotFound(t *testing.T) {
	db := testDB(t)
	n := sampleNote("Ghost", "boo")
	if err := db.Update(context.Background(), n); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteThenGet(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	n := sampleNote("Doomed", "bye")
	if err := db.Insert(ctx, n); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := db.Delete(ctx, n.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := db.Get(ctx, n.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err after delete = %v, want ErrNotFound", err)
	}
	if err := db.Delete(ctx, n.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestListPaginationAndTagFilter(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		n := sampleNote("Note", "body")
		if i%2 == 0 {
			n.Tags = []string{"even"}
		}
		if err := db.Insert(ctx, n); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	all, total, err := db.List(ctx, 2, 0, "", "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(all) != 2 {
		t.Errorf("page len = %d, want 2", len(all))
	}

	tagged, taggedTotal, err := db.List(ctx, 10, 0, "even", "")
	if err != nil {
		t.Fatalf("List tagged: %v", err)
	}
	if taggedTotal != 3 || len(tagged) != 3 {
		t.Errorf("tagged = %d/%d, want 3/3", len(tagged), taggedTotal)
	}
}

func TestSearch(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	a := sampleNote("Grocery list", "milk and eggs")
	b := sampleNote("Meeting", "quarterly planning")
	for _, n := range []*models.Note{a, b} {
		if err := db.Insert(ctx, n); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	hits, err := db.Search(ctx, "milk", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != a.ID {
		t.Errorf("hits = %+v, want only %s", hits, a.ID)
	}
	if hits[0].Snippet == "" {
		t.Error("expected non-empty snippet")
	}
}

func TestSourceChecksums(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	imported := sampleNote("From disk", "file content")
	imported.SourcePath = "topics/disk.md"
	manual := sampleNote("Manual", "typed in")
	for _, n := range []*models.Note{imported, manual} {
		if err := db.Insert(ctx, n); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	cs, err := db.SourceChecksums(ctx)
	if err != nil {
		t.Fatalf("SourceChecksums: %v", err)
	}
	if len(cs) != 1 {
		t.Fatalf("len = %d, want 1", len(cs))
	}
	if cs["topics/disk.md"] != imported.Checksum {
		t.Errorf("checksum mismatch for imported note")
	}

	got, err := db.GetBySourcePath(ctx, "topics/disk.md")
	if err != nil {
		t.Fatalf("GetBySourcePath: %v", err)
	}
	if got.ID != imported.ID {
		t.Errorf("id = %s, want %s", got.ID, imported.ID)
	}
}
