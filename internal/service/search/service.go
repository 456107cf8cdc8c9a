// Package search implements a brute-force scan over every document body.
// The corpus is small enough that a linear pass with substring counting
// beats carrying an index.
package search

import (
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"knowhub/internal/config"
	"knowhub/internal/domain/models"
	"knowhub/internal/treestore"
)

// Service scans all documents with attached bodies and ranks matches.
type Service struct {
	store   *treestore.Store
	docsDir string
	logger  *slog.Logger
}

func NewService(store *treestore.Store, docsDir string, logger *slog.Logger) *Service {
	return &Service{store: store, docsDir: docsDir, logger: logger}
}

const (
	titleMatchScore = 100
	termCountScore  = 10
)

var markupChars = regexp.MustCompile("[#*`\\[\\]()]")

// Search lowercases the query, splits it into whitespace-separated terms,
// and scores every document: a verbatim query match in the node name is
// worth 100, plus 10 per term occurrence in the lowercased body. Zero
// scores are excluded. The sort is stable, so ties keep tree pre-order.
func (s *Service) Search(query string) (*models.SearchResponse, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return &models.SearchResponse{Results: []models.SearchResult{}}, nil
	}

	forest, err := s.store.Snapshot()
	if err != nil {
		return nil, err
	}

	var results []models.SearchResult
	for _, node := range treestore.ListDocuments(forest) {
		raw, err := os.ReadFile(filepath.Join(s.docsDir, *node.Path))
		if err != nil {
			// A body missing from disk is skipped, not fatal; the
			// tree is the authority on what exists.
			s.logger.Warn("skipping unreadable body", "node_id", node.ID, "path", *node.Path, "error", err)
			continue
		}
		body := strings.ToLower(string(raw))

		score := 0
		if strings.Contains(strings.ToLower(node.Name), query) {
			score += titleMatchScore
		}
		for _, term := range terms {
			score += termCountScore * strings.Count(body, term)
		}
		if score == 0 {
			continue
		}

		results = append(results, models.SearchResult{
			ID:      node.ID,
			Name:    node.Name,
			Path:    *node.Path,
			Snippet: snippet(string(raw), terms),
			Score:   score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	total := len(results)
	if total > config.SearchResultLimit {
		results = results[:config.SearchResultLimit]
	}
	if results == nil {
		results = []models.SearchResult{}
	}

	return &models.SearchResponse{Results: results, Total: total}, nil
}

// snippet returns the first blank-line-delimited paragraph containing any
// term, stripped of Markdown punctuation and truncated to 200 characters.
// When no paragraph matches it falls back to the head of the whole body.
func snippet(body string, terms []string) string {
	normalized := strings.ReplaceAll(body, "\r\n", "\n")
	for _, para := range strings.Split(normalized, "\n\n") {
		lower := strings.ToLower(para)
		for _, term := range terms {
			if strings.Contains(lower, term) {
				return clip(para)
			}
		}
	}
	return clip(normalized)
}

func clip(text string) string {
	cleaned := strings.TrimSpace(markupChars.ReplaceAllString(text, ""))
	runes := []rune(cleaned)
	if len(runes) <= config.SnippetLength {
		return cleaned
	}
	return string(runes[:config.SnippetLength]) + "..."
}
