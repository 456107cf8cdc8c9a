package filestore

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"knowhub/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestViewStore_IncrementAndGet(t *testing.T) {
	store := NewViewStore(filepath.Join(t.TempDir(), "views.json"), discardLogger())

	if n, err := store.Get("doc-1"); err != nil || n != 0 {
		t.Fatalf("Get on empty store = (%d, %v), want (0, nil)", n, err)
	}

	for want := 1; want <= 3; want++ {
		got, err := store.Increment("doc-1")
		if err != nil {
			t.Fatalf("Increment: %v", err)
		}
		if got != want {
			t.Errorf("Increment #%d = %d, want %d", want, got, want)
		}
	}

	if n, _ := store.Get("doc-2"); n != 0 {
		t.Errorf("unrelated doc count = %d, want 0", n)
	}
}

func TestViewStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "views.json")

	first := NewViewStore(path, discardLogger())
	if _, err := first.Increment("doc-1"); err != nil {
		t.Fatalf("Increment: %v", err)
	}

	second := NewViewStore(path, discardLogger())
	got, err := second.Increment("doc-1")
	if err != nil {
		t.Fatalf("Increment on reopened store: %v", err)
	}
	if got != 2 {
		t.Errorf("count after reopen = %d, want 2", got)
	}
}

func TestCommentStore_AddAndListNewestFirst(t *testing.T) {
	store := NewCommentStore(filepath.Join(t.TempDir(), "comments.json"), discardLogger())

	for _, content := range []string{"first", "second", "third"} {
		if _, err := store.Add("doc-1", "alice", content); err != nil {
			t.Fatalf("Add(%q): %v", content, err)
		}
	}

	got, err := store.ListByDoc("doc-1")
	if err != nil {
		t.Fatalf("ListByDoc: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ListByDoc returned %d comments, want 3", len(got))
	}

	wantOrder := []string{"third", "second", "first"}
	for i, want := range wantOrder {
		if got[i].Content != want {
			t.Errorf("comment[%d].Content = %q, want %q", i, got[i].Content, want)
		}
	}
	for _, c := range got {
		if c.ID == "" || c.CreatedAt == "" {
			t.Errorf("comment missing generated fields: %+v", c)
		}
	}
}

func TestCommentStore_Delete(t *testing.T) {
	store := NewCommentStore(filepath.Join(t.TempDir(), "comments.json"), discardLogger())

	kept, err := store.Add("doc-1", "alice", "keep me")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	doomed, err := store.Add("doc-1", "bob", "delete me")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := store.Delete("doc-1", doomed.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	remaining, err := store.ListByDoc("doc-1")
	if err != nil {
		t.Fatalf("ListByDoc: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != kept.ID {
		t.Errorf("remaining comments = %+v, want only %q", remaining, kept.ID)
	}

	if err := store.Delete("doc-1", doomed.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
	if err := store.Delete("missing-doc", kept.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Delete under wrong doc = %v, want ErrNotFound", err)
	}
}
