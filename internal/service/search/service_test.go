package search

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"knowhub/internal/domain/models"
	"knowhub/internal/treestore"
)

func newTestService(t *testing.T, docs map[string]string) *Service {
	t.Helper()

	dir := t.TempDir()
	docsDir := filepath.Join(dir, "docs")
	if err := os.MkdirAll(docsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	store := treestore.NewStore(filepath.Join(dir, "tree.json"), logger)
	err := store.Update(func(f *treestore.Forest) error {
		i := 0
		for name, body := range docs {
			i++
			file := name + ".md"
			if err := os.WriteFile(filepath.Join(docsDir, file), []byte(body), 0o644); err != nil {
				return err
			}
			path := file
			*f = append(*f, &models.TreeNode{
				ID:       name,
				Name:     name,
				Path:     &path,
				Children: []*models.TreeNode{},
			})
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	return NewService(store, docsDir, logger)
}

func TestSearch_TitleBonusVersusTermFrequency(t *testing.T) {
	svc := newTestService(t, map[string]string{
		"Intro": "Rust ownership basics",
		"Guide": "ownership and borrowing in depth",
	})

	// Title match alone (100) beats a single body occurrence (10).
	resp, err := svc.Search("Intro")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) == 0 || resp.Results[0].ID != "Intro" {
		t.Fatalf("results = %+v, want Intro ranked first", resp.Results)
	}
	if resp.Results[0].Score != 100 {
		t.Errorf("Intro score = %d, want 100 (title only, no body occurrence of 'intro')", resp.Results[0].Score)
	}

	// Both bodies contain "ownership" once; neither title matches, so the
	// tie keeps encounter order and both score 10.
	resp, err = svc.Search("ownership")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Total != 2 {
		t.Fatalf("total = %d, want 2", resp.Total)
	}
	for _, r := range resp.Results {
		if r.Score != 10 {
			t.Errorf("%s score = %d, want 10", r.ID, r.Score)
		}
	}
}

func TestSearch_MultiTermCounting(t *testing.T) {
	svc := newTestService(t, map[string]string{
		"A": "alpha beta alpha",
		"B": "beta",
	})

	resp, err := svc.Search("alpha beta")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("results = %+v, want 2", resp.Results)
	}
	// A: alpha x2 + beta x1 = 30. B: beta x1 = 10.
	if resp.Results[0].ID != "A" || resp.Results[0].Score != 30 {
		t.Errorf("first = %+v, want A with score 30", resp.Results[0])
	}
	if resp.Results[1].Score != 10 {
		t.Errorf("second = %+v, want score 10", resp.Results[1])
	}
}

func TestSearch_ExcludesZeroScores(t *testing.T) {
	svc := newTestService(t, map[string]string{
		"Match": "the needle is here",
		"Other": "nothing relevant",
	})

	resp, err := svc.Search("needle")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Total != 1 || len(resp.Results) != 1 || resp.Results[0].ID != "Match" {
		t.Errorf("resp = %+v, want only Match", resp)
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	svc := newTestService(t, map[string]string{"Doc": "content"})

	resp, err := svc.Search("   ")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Total != 0 || len(resp.Results) != 0 {
		t.Errorf("resp = %+v, want no results", resp)
	}
}

func TestSearch_CapsAtTwentyButReportsTotal(t *testing.T) {
	docs := map[string]string{}
	for i := 0; i < 25; i++ {
		docs[string(rune('a'+i))+"-doc"] = "common phrase"
	}
	svc := newTestService(t, docs)

	resp, err := svc.Search("common")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != 20 {
		t.Errorf("len(results) = %d, want 20", len(resp.Results))
	}
	if resp.Total != 25 {
		t.Errorf("total = %d, want 25", resp.Total)
	}
}

func TestSnippet(t *testing.T) {
	t.Run("first matching paragraph, markup stripped", func(t *testing.T) {
		body := "# Title\n\nIntro paragraph.\n\nThe **needle** hides [here](x).\n\nTail."
		got := snippet(body, []string{"needle"})
		if got != "The needle hides here x." {
			t.Errorf("snippet = %q", got)
		}
	})

	t.Run("fallback to body head when no paragraph matches", func(t *testing.T) {
		got := snippet("# Only\n\nsome text", []string{"absent"})
		if got != "Only\n\nsome text" {
			t.Errorf("snippet = %q", got)
		}
	})

	t.Run("truncates long paragraphs with ellipsis", func(t *testing.T) {
		long := "needle " + strings.Repeat("x", 300)
		got := snippet(long, []string{"needle"})
		if len([]rune(got)) != 203 || !strings.HasSuffix(got, "...") {
			t.Errorf("snippet length = %d, suffix ok = %v", len([]rune(got)), strings.HasSuffix(got, "..."))
		}
	})
}
