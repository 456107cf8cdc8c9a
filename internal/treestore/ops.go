package treestore

import (
	"fmt"

	"knowhub/internal/domain"
	"knowhub/internal/domain/models"
)

// Position says where a relocated node lands relative to its target.
type Position string

const (
	PositionBefore Position = "before" // splice into the target's sibling list at the target's index
	PositionAfter  Position = "after"  // splice in at the target's index + 1
	PositionInside Position = "inside" // append as the target's last child
)

// ParsePosition validates a relocation position.
func ParsePosition(s string) (Position, error) {
	switch Position(s) {
	case PositionBefore, PositionAfter, PositionInside:
		return Position(s), nil
	}
	return "", fmt.Errorf("%w: invalid position %q", domain.ErrValidation, s)
}

// Find returns the first node with the given id in depth-first pre-order,
// or nil.
func Find(f Forest, id string) *models.TreeNode {
	for _, node := range f {
		if node.ID == id {
			return node
		}
		if found := Find(node.Children, id); found != nil {
			return found
		}
	}
	return nil
}

// FindParent returns the node owning the child with the given id. A nil
// result means the id is a root or absent; callers that need to tell those
// apart must check existence with Find separately.
func FindParent(f Forest, id string) *models.TreeNode {
	return findParent(f, id, nil)
}

func findParent(nodes []*models.TreeNode, id string, parent *models.TreeNode) *models.TreeNode {
	for _, node := range nodes {
		if node.ID == id {
			return parent
		}
		if found := findParent(node.Children, id, node); found != nil {
			return found
		}
	}
	return nil
}

// Remove detaches the node with the given id, subtree included, from
// wherever it lives in the forest. It reports whether a node was removed.
func Remove(f *Forest, id string) bool {
	return detach((*[]*models.TreeNode)(f), id) != nil
}

// detach removes and returns the node with the given id, or nil.
func detach(nodes *[]*models.TreeNode, id string) *models.TreeNode {
	for i, node := range *nodes {
		if node.ID == id {
			*nodes = append((*nodes)[:i], (*nodes)[i+1:]...)
			return node
		}
		if removed := detach(&node.Children, id); removed != nil {
			return removed
		}
	}
	return nil
}

// Contains reports whether the subtree rooted at n contains the given id,
// n itself included.
func Contains(n *models.TreeNode, id string) bool {
	if n.ID == id {
		return true
	}
	for _, child := range n.Children {
		if Contains(child, id) {
			return true
		}
	}
	return false
}

// Walk visits every node in depth-first pre-order. Search, sitemap and RSS
// output all depend on this order being deterministic.
func Walk(f Forest, fn func(n *models.TreeNode)) {
	for _, node := range f {
		fn(node)
		Walk(node.Children, fn)
	}
}

// ListDocuments returns, in pre-order, every node with a backing body.
// Folders without content are skipped; a node with both a body and
// children appears once.
func ListDocuments(f Forest) []*models.TreeNode {
	var docs []*models.TreeNode
	Walk(f, func(n *models.TreeNode) {
		if n.HasBody() {
			docs = append(docs, n)
		}
	})
	return docs
}

// Relocate detaches the node at id and reinserts it relative to targetID.
// Moving a node into its own subtree is rejected before any mutation, so
// failures leave the forest unchanged. The moved node's updated_at is
// restamped.
//
// The operation runs in two phases - full detach, then a fresh target
// lookup - because removal shifts the sibling indices the insertion
// depends on.
func Relocate(f *Forest, id, targetID string, pos Position) error {
	node := Find(*f, id)
	if node == nil {
		return fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}

	if Find(*f, targetID) == nil {
		return fmt.Errorf("target node %s: %w", targetID, domain.ErrNotFound)
	}

	// Cycle prevention: the target must not be the node itself or any
	// of its descendants.
	if Contains(node, targetID) {
		return fmt.Errorf("%w: cannot move a node into its own subtree", domain.ErrValidation)
	}

	moved := detach((*[]*models.TreeNode)(f), id)
	if moved == nil {
		return fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}

	switch pos {
	case PositionInside:
		target := Find(*f, targetID)
		target.Children = append(target.Children, moved)
	default:
		siblings, index := findSiblings(f, targetID)
		if pos == PositionAfter {
			index++
		}
		*siblings = append(*siblings, nil)
		copy((*siblings)[index+1:], (*siblings)[index:])
		(*siblings)[index] = moved
	}

	moved.UpdatedAt = models.Now()
	return nil
}

// findSiblings locates the sibling slice containing the given id and the
// id's index within it. The target is known to exist.
func findSiblings(f *Forest, id string) (*[]*models.TreeNode, int) {
	if parent := FindParent(*f, id); parent != nil {
		for i, node := range parent.Children {
			if node.ID == id {
				return &parent.Children, i
			}
		}
	}
	for i, node := range *f {
		if node.ID == id {
			return (*[]*models.TreeNode)(f), i
		}
	}
	return nil, -1
}
