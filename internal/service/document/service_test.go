package document

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"knowhub/internal/domain"
	"knowhub/internal/domain/models"
	"knowhub/internal/filestore"
	"knowhub/internal/markdown"
	"knowhub/internal/treestore"
)

func newTestService(t *testing.T) (*Service, *filestore.ViewStore, string) {
	t.Helper()

	dir := t.TempDir()
	docsDir := filepath.Join(dir, "docs")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	store := treestore.NewStore(filepath.Join(dir, "tree.json"), logger)
	views := filestore.NewViewStore(filepath.Join(dir, "views.json"), logger)
	svc := NewService(store, views, markdown.NewRenderer(), docsDir, logger)
	return svc, views, docsDir
}

func TestCreate(t *testing.T) {
	svc, _, _ := newTestService(t)

	root, err := svc.Create("", "Guides")
	if err != nil {
		t.Fatalf("Create root: %v", err)
	}
	if root.ID == "" || root.Path != nil {
		t.Errorf("root = %+v, want placeholder with generated id", root)
	}

	child, err := svc.Create(root.ID, "Chapter One")
	if err != nil {
		t.Fatalf("Create child: %v", err)
	}

	forest, err := svc.Forest()
	if err != nil {
		t.Fatalf("Forest: %v", err)
	}
	parent := treestore.Find(forest, root.ID)
	if parent == nil || len(parent.Children) != 1 || parent.Children[0].ID != child.ID {
		t.Errorf("child not attached under parent: %+v", parent)
	}

	if _, err := svc.Create("missing", "Orphan"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Create under missing parent = %v, want ErrNotFound", err)
	}
	if _, err := svc.Create("", "///"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("Create with name of only illegal chars = %v, want ErrValidation", err)
	}
}

func TestCreate_SanitizesName(t *testing.T) {
	svc, _, _ := newTestService(t)

	node, err := svc.Create("", `  a<b>c:d"e/f\g|h?i*j  `)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if node.Name != "abcdefghij" {
		t.Errorf("sanitized name = %q, want %q", node.Name, "abcdefghij")
	}
}

func TestUpload(t *testing.T) {
	svc, _, docsDir := newTestService(t)

	node, err := svc.Create("", "Doc")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Upload(node.ID, "notes.txt", []byte("x")); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("non-markdown upload = %v, want ErrValidation", err)
	}

	rel, err := svc.Upload(node.ID, "notes.md", []byte("# Notes\n"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if rel != "notes.md" {
		t.Errorf("path = %q, want notes.md", rel)
	}
	if _, err := os.Stat(filepath.Join(docsDir, rel)); err != nil {
		t.Errorf("body file missing: %v", err)
	}

	if _, err := svc.Upload("missing", "notes.md", []byte("x")); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("upload to missing node = %v, want ErrNotFound", err)
	}
	// Failed upload must not leave an orphaned file behind.
	entries, _ := os.ReadDir(docsDir)
	if len(entries) != 1 {
		t.Errorf("docs dir holds %d files after failed upload, want 1", len(entries))
	}
}

func TestUpload_CollisionSuffix(t *testing.T) {
	svc, _, _ := newTestService(t)

	a, _ := svc.Create("", "A")
	b, _ := svc.Create("", "B")
	c, _ := svc.Create("", "C")

	first, err := svc.Upload(a.ID, "guide.md", []byte("one"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	second, err := svc.Upload(b.ID, "guide.md", []byte("two"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	third, err := svc.Upload(c.ID, "guide.md", []byte("three"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if first != "guide.md" || second != "guide_1.md" || third != "guide_2.md" {
		t.Errorf("paths = %q, %q, %q; want guide.md, guide_1.md, guide_2.md", first, second, third)
	}
}

func TestUpload_ReplacesPreviousBody(t *testing.T) {
	svc, _, docsDir := newTestService(t)

	node, _ := svc.Create("", "Doc")
	old, err := svc.Upload(node.ID, "v1.md", []byte("old"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if _, err := svc.Upload(node.ID, "v2.md", []byte("new")); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if _, err := os.Stat(filepath.Join(docsDir, old)); !os.IsNotExist(err) {
		t.Errorf("replaced body %q still exists", old)
	}

	doc, err := svc.Read(node.ID, false)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if doc.Content != "new" {
		t.Errorf("content = %q, want %q", doc.Content, "new")
	}
}

func TestRename_MovesBackingFile(t *testing.T) {
	svc, _, docsDir := newTestService(t)

	node, _ := svc.Create("", "Old Name")
	if _, err := svc.Upload(node.ID, "old.md", []byte("body")); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	renamed, err := svc.Rename(node.ID, "New Name")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if renamed.Name != "New Name" {
		t.Errorf("name = %q, want New Name", renamed.Name)
	}
	if renamed.Path == nil || *renamed.Path != "New Name.md" {
		t.Errorf("path = %v, want New Name.md", renamed.Path)
	}
	if _, err := os.Stat(filepath.Join(docsDir, "New Name.md")); err != nil {
		t.Errorf("renamed body missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(docsDir, "old.md")); !os.IsNotExist(err) {
		t.Error("old body still exists after rename")
	}
}

func TestDelete_CascadesBodiesButKeepsCounters(t *testing.T) {
	svc, views, docsDir := newTestService(t)

	parent, _ := svc.Create("", "Parent")
	child, _ := svc.Create(parent.ID, "Child")
	if _, err := svc.Upload(parent.ID, "parent.md", []byte("p")); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if _, err := svc.Upload(child.ID, "child.md", []byte("c")); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if _, err := svc.Read(child.ID, true); err != nil {
		t.Fatalf("Read: %v", err)
	}

	if err := svc.Delete(parent.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	forest, _ := svc.Forest()
	if len(forest) != 0 {
		t.Errorf("forest not empty after cascade delete: %+v", forest)
	}
	entries, _ := os.ReadDir(docsDir)
	if len(entries) != 0 {
		t.Errorf("docs dir holds %d files after cascade delete, want 0", len(entries))
	}

	// View counters outlive the nodes they counted.
	if n, _ := views.Get(child.ID); n != 1 {
		t.Errorf("view counter = %d after node deletion, want 1", n)
	}

	if err := svc.Delete(parent.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestRead(t *testing.T) {
	svc, _, _ := newTestService(t)

	node, _ := svc.Create("", "Doc")

	empty, err := svc.Read(node.ID, true)
	if err != nil {
		t.Fatalf("Read placeholder: %v", err)
	}
	if !empty.Empty || empty.Views != 0 {
		t.Errorf("placeholder read = %+v, want empty sentinel with zero views", empty)
	}

	content := "---\ntitle: My Doc\n---\n# Heading\n\nBody text.\n"
	if _, err := svc.Upload(node.ID, "doc.md", []byte(content)); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	doc, err := svc.Read(node.ID, true)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if doc.Empty {
		t.Error("doc.Empty = true after upload")
	}
	if doc.Metadata["title"] != "My Doc" {
		t.Errorf("metadata = %v, want title: My Doc", doc.Metadata)
	}
	if doc.Views != 1 {
		t.Errorf("views = %d, want 1", doc.Views)
	}

	// Suppressed view counting reads without incrementing.
	preview, err := svc.Read(node.ID, false)
	if err != nil {
		t.Fatalf("Read preview: %v", err)
	}
	if preview.Views != 1 {
		t.Errorf("preview views = %d, want 1", preview.Views)
	}

	if _, err := svc.Read("missing", true); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Read missing = %v, want ErrNotFound", err)
	}
}

func TestMove(t *testing.T) {
	svc, _, _ := newTestService(t)

	a, _ := svc.Create("", "A")
	b, _ := svc.Create("", "B")

	if err := svc.Move(b.ID, a.ID, "inside"); err != nil {
		t.Fatalf("Move: %v", err)
	}

	forest, _ := svc.Forest()
	parent := treestore.Find(forest, a.ID)
	if len(parent.Children) != 1 || parent.Children[0].ID != b.ID {
		t.Errorf("move not applied: %+v", parent)
	}

	if err := svc.Move(a.ID, b.ID, "sideways"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("invalid position = %v, want ErrValidation", err)
	}
}

func TestCreateOutline(t *testing.T) {
	svc, _, docsDir := newTestService(t)

	outline := []models.OutlineNode{
		{Name: "Rust Basics", Children: []models.OutlineNode{
			{Name: "Ownership"},
			{Name: "Borrowing"},
		}},
	}

	created, err := svc.CreateOutline("", outline)
	if err != nil {
		t.Fatalf("CreateOutline: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("created %d top-level nodes, want 1", len(created))
	}

	root := created[0]
	if root.Name != "Rust Basics" || len(root.Children) != 2 {
		t.Errorf("root = %+v, want Rust Basics with 2 children", root)
	}

	doc, err := svc.Read(root.Children[0].ID, false)
	if err != nil {
		t.Fatalf("Read seeded child: %v", err)
	}
	if doc.Content != "# Ownership\n" {
		t.Errorf("seeded body = %q, want title heading", doc.Content)
	}

	entries, _ := os.ReadDir(docsDir)
	if len(entries) != 3 {
		t.Errorf("docs dir holds %d files, want 3", len(entries))
	}
}
