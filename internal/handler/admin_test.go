package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"knowhub/internal/config"
	"knowhub/internal/domain/models"
	"knowhub/internal/filestore"
	"knowhub/internal/markdown"
	"knowhub/internal/service/chat"
	"knowhub/internal/service/document"
	"knowhub/internal/service/membership"
	"knowhub/internal/treestore"
)

type stubProvider struct {
	completion string
	events     []chat.StreamEvent
	delay      time.Duration
}

func (p *stubProvider) Stream(ctx context.Context, req chat.CompletionRequest) (<-chan chat.StreamEvent, error) {
	out := make(chan chat.StreamEvent, len(p.events))
	go func() {
		defer close(out)
		if p.delay > 0 {
			time.Sleep(p.delay)
		}
		for _, event := range p.events {
			out <- event
		}
	}()
	return out, nil
}

func (p *stubProvider) Complete(ctx context.Context, req chat.CompletionRequest) (string, error) {
	return p.completion, nil
}

type stubMeter struct{}

func (stubMeter) Consume(ctx context.Context, account *models.Account, ip string) error {
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestDocService(t *testing.T) *document.Service {
	t.Helper()
	dir := t.TempDir()
	logger := testLogger()
	store := treestore.NewStore(filepath.Join(dir, "tree.json"), logger)
	views := filestore.NewViewStore(filepath.Join(dir, "views.json"), logger)
	return document.NewService(store, views, markdown.NewRenderer(), filepath.Join(dir, "docs"), logger)
}

func newTestAdminHandler(t *testing.T, provider *stubProvider) (*AdminHandler, *document.Service) {
	t.Helper()
	logger := testLogger()
	docs := newTestDocService(t)
	chatSvc := chat.NewService(provider, stubMeter{}, docs, logger)
	return NewAdminHandler(nil, nil, docs, chatSvc, false, logger), docs
}

func TestGenerateOutline_ReturnsWithoutWritingTree(t *testing.T) {
	provider := &stubProvider{
		completion: `[{"name": "Rust Basics", "children": [{"name": "Ownership"}]}]`,
	}
	h, docs := newTestAdminHandler(t, provider)

	req := httptest.NewRequest("POST", "/api/admin/outline", strings.NewReader(`{"topic": "Rust", "depth": 2}`))
	rec := httptest.NewRecorder()
	h.GenerateOutline(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Outline []models.OutlineNode `json:"outline"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Outline) != 1 || resp.Outline[0].Name != "Rust Basics" {
		t.Fatalf("outline = %+v, want one root named Rust Basics", resp.Outline)
	}
	if len(resp.Outline[0].Children) != 1 || resp.Outline[0].Children[0].Name != "Ownership" {
		t.Fatalf("children = %+v, want [Ownership]", resp.Outline[0].Children)
	}

	forest, err := docs.Forest()
	if err != nil {
		t.Fatalf("Forest: %v", err)
	}
	if len(forest) != 0 {
		t.Fatalf("tree has %d roots after generation, want 0 until confirmed", len(forest))
	}
}

func TestConfirmOutline_MaterializesReviewedOutline(t *testing.T) {
	h, docs := newTestAdminHandler(t, &stubProvider{})

	// The outline a client sends back may differ from what the model
	// produced; only the submitted version is materialized.
	body := `{"outline": [{"name": "Guide", "children": [{"name": "Intro"}]}]}`
	req := httptest.NewRequest("POST", "/api/admin/outline/confirm", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ConfirmOutline(rec, req)

	if rec.Code != 201 {
		t.Fatalf("status = %d, want 201; body: %s", rec.Code, rec.Body.String())
	}

	forest, err := docs.Forest()
	if err != nil {
		t.Fatalf("Forest: %v", err)
	}
	if len(forest) != 1 {
		t.Fatalf("tree has %d roots, want 1", len(forest))
	}
	root := forest[0]
	if root.Name != "Guide" {
		t.Errorf("root name = %q, want Guide", root.Name)
	}
	if len(root.Children) != 1 || root.Children[0].Name != "Intro" {
		t.Fatalf("root children = %+v, want [Intro]", root.Children)
	}
	if !root.HasBody() {
		t.Error("materialized root has no seeded body")
	}
}

func TestConfirmOutline_RejectsEmptyOutline(t *testing.T) {
	h, docs := newTestAdminHandler(t, &stubProvider{})

	req := httptest.NewRequest("POST", "/api/admin/outline/confirm", strings.NewReader(`{"outline": []}`))
	rec := httptest.NewRecorder()
	h.ConfirmOutline(rec, req)

	if rec.Code != 400 {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	forest, err := docs.Forest()
	if err != nil {
		t.Fatalf("Forest: %v", err)
	}
	if len(forest) != 0 {
		t.Fatalf("tree has %d roots, want 0", len(forest))
	}
}

func TestLevels_OrderedLeastPrivilegedFirst(t *testing.T) {
	logger := testLogger()
	members := membership.NewService(nil, nil, nil, nil, nil, config.DefaultLevels(), "admin", "secret", logger)
	h := NewAuthHandler(members, false, logger)

	req := httptest.NewRequest("GET", "/api/levels", nil)
	rec := httptest.NewRecorder()
	h.Levels(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var views []levelView
	if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	want := []string{"guest", "basic", "vip", "svip"}
	if len(views) != len(want) {
		t.Fatalf("got %d levels, want %d", len(views), len(want))
	}
	for i, v := range views {
		if v.Level != want[i] {
			t.Errorf("levels[%d] = %q, want %q", i, v.Level, want[i])
		}
	}
	if views[3].DailyAILimit != 200 {
		t.Errorf("svip limit = %d, want 200", views[3].DailyAILimit)
	}
}
