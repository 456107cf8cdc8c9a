// Package document resolves tree nodes to rendered content and keeps the
// backing Markdown files on disk consistent with the node metadata.
package document

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"knowhub/internal/domain"
	"knowhub/internal/domain/models"
	"knowhub/internal/filestore"
	"knowhub/internal/markdown"
	"knowhub/internal/treestore"
)

// Service owns the document tree and the directory of Markdown bodies.
// Tree mutations and their file side effects happen within the same
// logical operation; a crash between the two is an accepted small window
// of inconsistency.
type Service struct {
	store    *treestore.Store
	views    *filestore.ViewStore
	renderer *markdown.Renderer
	docsDir  string
	logger   *slog.Logger
}

func NewService(store *treestore.Store, views *filestore.ViewStore, renderer *markdown.Renderer, docsDir string, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		views:    views,
		renderer: renderer,
		docsDir:  docsDir,
		logger:   logger,
	}
}

// Forest returns the current document tree.
func (s *Service) Forest() (treestore.Forest, error) {
	return s.store.Snapshot()
}

// Create adds an empty placeholder node (no body attached). With a
// parentID it becomes that node's last child; without one it becomes a
// new root.
func (s *Service) Create(parentID, name string) (*models.TreeNode, error) {
	name = sanitizeName(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}

	now := models.Now()
	node := &models.TreeNode{
		ID:        uuid.NewString(),
		Name:      name,
		Children:  []*models.TreeNode{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.store.Update(func(f *treestore.Forest) error {
		if parentID == "" {
			*f = append(*f, node)
			return nil
		}

		parent := treestore.Find(*f, parentID)
		if parent == nil {
			return fmt.Errorf("parent node %s: %w", parentID, domain.ErrNotFound)
		}
		parent.Children = append(parent.Children, node)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("node created", "node_id", node.ID, "name", name, "parent_id", parentID)
	return node, nil
}

// Upload attaches a Markdown body to a node, replacing any previous one.
// The file is written before the tree is updated; if the tree update then
// fails the orphaned file is removed.
func (s *Service) Upload(nodeID, filename string, data []byte) (string, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".md") {
		return "", fmt.Errorf("%w: only markdown (.md) uploads are accepted", domain.ErrValidation)
	}

	base := sanitizeName(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))
	if base == "" {
		base = "untitled"
	}

	relPath, err := s.writeBody(base, data)
	if err != nil {
		return "", err
	}

	var previous *string
	err = s.store.Update(func(f *treestore.Forest) error {
		node := treestore.Find(*f, nodeID)
		if node == nil {
			return fmt.Errorf("node %s: %w", nodeID, domain.ErrNotFound)
		}

		previous = node.Path
		node.Path = &relPath
		node.UpdatedAt = models.Now()
		return nil
	})
	if err != nil {
		if rmErr := os.Remove(filepath.Join(s.docsDir, relPath)); rmErr != nil {
			s.logger.Warn("failed to remove orphaned upload", "path", relPath, "error", rmErr)
		}
		return "", err
	}

	if previous != nil && *previous != relPath {
		if rmErr := os.Remove(filepath.Join(s.docsDir, *previous)); rmErr != nil && !os.IsNotExist(rmErr) {
			s.logger.Warn("failed to remove replaced body", "path", *previous, "error", rmErr)
		}
	}

	s.logger.Info("body uploaded", "node_id", nodeID, "path", relPath, "bytes", len(data))
	return relPath, nil
}

// Rename changes a node's display name and, when a body is attached,
// renames the backing file to match while preserving its extension.
func (s *Service) Rename(nodeID, newName string) (*models.TreeNode, error) {
	newName = sanitizeName(newName)
	if newName == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}

	var renamed *models.TreeNode
	err := s.store.Update(func(f *treestore.Forest) error {
		node := treestore.Find(*f, nodeID)
		if node == nil {
			return fmt.Errorf("node %s: %w", nodeID, domain.ErrNotFound)
		}

		if node.Path != nil {
			newRel, err := s.renameBody(*node.Path, newName)
			if err != nil {
				return err
			}
			node.Path = &newRel
		}

		node.Name = newName
		node.UpdatedAt = models.Now()
		renamed = node
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("node renamed", "node_id", nodeID, "name", newName)
	return renamed, nil
}

// Delete detaches a node and removes the backing bodies of the node and
// every descendant. Comments and view counters for the removed ids are
// left in place.
func (s *Service) Delete(nodeID string) error {
	err := s.store.Update(func(f *treestore.Forest) error {
		node := treestore.Find(*f, nodeID)
		if node == nil {
			return fmt.Errorf("node %s: %w", nodeID, domain.ErrNotFound)
		}

		var bodies []string
		treestore.Walk(treestore.Forest{node}, func(n *models.TreeNode) {
			if n.HasBody() {
				bodies = append(bodies, *n.Path)
			}
		})
		for _, rel := range bodies {
			if rmErr := os.Remove(filepath.Join(s.docsDir, rel)); rmErr != nil && !os.IsNotExist(rmErr) {
				s.logger.Warn("failed to remove body during delete", "path", rel, "error", rmErr)
			}
		}

		treestore.Remove(f, nodeID)
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("node deleted", "node_id", nodeID)
	return nil
}

// Read resolves a node to its rendered document. Nodes without a body
// yield an empty sentinel without touching the view counter; countView
// false reads the counter without incrementing it (preview contexts).
func (s *Service) Read(nodeID string, countView bool) (*models.Document, error) {
	forest, err := s.store.Snapshot()
	if err != nil {
		return nil, err
	}

	node := treestore.Find(forest, nodeID)
	if node == nil {
		return nil, fmt.Errorf("node %s: %w", nodeID, domain.ErrNotFound)
	}

	doc := &models.Document{
		ID:        node.ID,
		Name:      node.Name,
		CreatedAt: node.CreatedAt,
		UpdatedAt: node.UpdatedAt,
	}

	if !node.HasBody() {
		doc.Empty = true
		return doc, nil
	}
	doc.Path = *node.Path

	raw, err := os.ReadFile(filepath.Join(s.docsDir, *node.Path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("body for node %s: %w", nodeID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("read body: %w", err)
	}

	var views int
	if countView {
		views, err = s.views.Increment(node.ID)
	} else {
		views, err = s.views.Get(node.ID)
	}
	if err != nil {
		return nil, err
	}
	doc.Views = views

	meta, body := markdown.ParseFrontMatter(string(raw))
	html, err := s.renderer.Render(body)
	if err != nil {
		return nil, err
	}

	doc.Metadata = meta
	doc.Content = body
	doc.HTML = html
	return doc, nil
}

// CreateOutline materializes a generated outline under an optional parent,
// seeding each leaf with a minimal title-only body. Returns the created
// top-level nodes.
func (s *Service) CreateOutline(parentID string, outline []models.OutlineNode) ([]*models.TreeNode, error) {
	if len(outline) == 0 {
		return nil, fmt.Errorf("%w: outline is empty", domain.ErrValidation)
	}

	var created []*models.TreeNode
	err := s.store.Update(func(f *treestore.Forest) error {
		nodes, err := s.materialize(outline)
		if err != nil {
			return err
		}

		if parentID == "" {
			*f = append(*f, nodes...)
		} else {
			parent := treestore.Find(*f, parentID)
			if parent == nil {
				return fmt.Errorf("parent node %s: %w", parentID, domain.ErrNotFound)
			}
			parent.Children = append(parent.Children, nodes...)
		}

		created = nodes
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("outline created", "nodes", len(created), "parent_id", parentID)
	return created, nil
}

func (s *Service) materialize(outline []models.OutlineNode) ([]*models.TreeNode, error) {
	nodes := make([]*models.TreeNode, 0, len(outline))
	for _, item := range outline {
		name := sanitizeName(item.Name)
		if name == "" {
			continue
		}

		now := models.Now()
		node := &models.TreeNode{
			ID:        uuid.NewString(),
			Name:      name,
			Children:  []*models.TreeNode{},
			CreatedAt: now,
			UpdatedAt: now,
		}

		rel, err := s.writeBody(name, []byte("# "+name+"\n"))
		if err != nil {
			return nil, err
		}
		node.Path = &rel

		children, err := s.materialize(item.Children)
		if err != nil {
			return nil, err
		}
		node.Children = children

		nodes = append(nodes, node)
	}
	return nodes, nil
}

// Move relocates a node relative to a target. Position is one of
// "before", "after" or "inside".
func (s *Service) Move(nodeID, targetID, position string) error {
	pos, err := treestore.ParsePosition(position)
	if err != nil {
		return err
	}

	err = s.store.Update(func(f *treestore.Forest) error {
		return treestore.Relocate(f, nodeID, targetID, pos)
	})
	if err != nil {
		return err
	}

	s.logger.Info("node moved", "node_id", nodeID, "target_id", targetID, "position", position)
	return nil
}

// writeBody writes data under a collision-free name derived from base and
// returns the path relative to the docs directory.
func (s *Service) writeBody(base string, data []byte) (string, error) {
	if err := os.MkdirAll(s.docsDir, 0o755); err != nil {
		return "", fmt.Errorf("create docs directory: %w", err)
	}

	name := base + ".md"
	for n := 1; ; n++ {
		if _, err := os.Stat(filepath.Join(s.docsDir, name)); os.IsNotExist(err) {
			break
		}
		name = fmt.Sprintf("%s_%d.md", base, n)
	}

	if err := os.WriteFile(filepath.Join(s.docsDir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write body: %w", err)
	}
	return name, nil
}

// renameBody renames a backing file to match a node's new name, keeping
// the old extension and resolving collisions the same way uploads do.
func (s *Service) renameBody(oldRel, newName string) (string, error) {
	ext := filepath.Ext(oldRel)
	base := newName

	rel := base + ext
	for n := 1; rel != oldRel; n++ {
		if _, err := os.Stat(filepath.Join(s.docsDir, rel)); os.IsNotExist(err) {
			break
		}
		rel = fmt.Sprintf("%s_%d%s", base, n, ext)
	}

	if rel == oldRel {
		return oldRel, nil
	}
	if err := os.Rename(filepath.Join(s.docsDir, oldRel), filepath.Join(s.docsDir, rel)); err != nil {
		return "", fmt.Errorf("rename body: %w", err)
	}
	return rel, nil
}

// sanitizeName strips characters that are illegal in file names and trims
// surrounding whitespace.
func sanitizeName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return -1
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, name)
	return strings.TrimSpace(cleaned)
}
