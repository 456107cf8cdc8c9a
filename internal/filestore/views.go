package filestore

import (
	"log/slog"
	"sync"
)

// ViewStore tracks per-document view counts in a single JSON file keyed by
// document ID. Counters deliberately outlive the documents they count, so a
// recreated document with the same ID resumes its old total.
type ViewStore struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

func NewViewStore(path string, logger *slog.Logger) *ViewStore {
	return &ViewStore{path: path, logger: logger}
}

// Increment bumps the counter for docID and returns the new total.
func (s *ViewStore) Increment(docID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := map[string]int{}
	if err := loadJSON(s.path, &counts); err != nil {
		return 0, err
	}

	counts[docID]++
	if err := saveJSON(s.path, counts); err != nil {
		return 0, err
	}

	return counts[docID], nil
}

// Get returns the current counter for docID without modifying it. Unknown
// IDs read as zero.
func (s *ViewStore) Get(docID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := map[string]int{}
	if err := loadJSON(s.path, &counts); err != nil {
		return 0, err
	}

	return counts[docID], nil
}
