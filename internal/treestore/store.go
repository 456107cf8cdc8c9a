// Package treestore persists the document forest as a single JSON file and
// provides the recursive operations that navigate and mutate it. Every
// mutation is a full load -> mutate -> save cycle under one mutex, so
// concurrent read-modify-write cycles cannot lose updates.
package treestore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"knowhub/internal/domain/models"
)

// Forest is the ordered collection of root-level tree nodes.
type Forest []*models.TreeNode

// Store is the file-backed forest. A missing file reads as an empty
// forest; saving writes to a temporary file first and renames it into
// place so a crash never leaves a torn tree.
type Store struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// NewStore creates a store persisting to the given file path.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Snapshot loads the current forest for read-only use.
func (s *Store) Snapshot() (Forest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Update runs fn on the loaded forest and persists the result. The whole
// cycle holds the store mutex; fn must not block on external calls.
// A non-nil error from fn aborts the save, leaving the file untouched.
func (s *Store) Update(fn func(f *Forest) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	forest, err := s.load()
	if err != nil {
		return err
	}

	if err := fn(&forest); err != nil {
		return err
	}

	return s.save(forest)
}

func (s *Store) load() (Forest, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Forest{}, nil
		}
		return nil, fmt.Errorf("read tree file: %w", err)
	}

	var forest Forest
	if err := json.Unmarshal(data, &forest); err != nil {
		return nil, fmt.Errorf("decode tree file: %w", err)
	}

	// Older files may omit children arrays; normalize so empty children
	// round-trip as arrays, not null.
	Walk(forest, func(n *models.TreeNode) {
		if n.Children == nil {
			n.Children = []*models.TreeNode{}
		}
	})

	return forest, nil
}

func (s *Store) save(forest Forest) error {
	if forest == nil {
		forest = Forest{}
	}

	data, err := json.MarshalIndent(forest, "", "  ")
	if err != nil {
		return fmt.Errorf("encode tree: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write tree file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace tree file: %w", err)
	}

	return nil
}
