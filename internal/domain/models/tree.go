package models

import "time"

// TreeNode is one entry in the document forest. Every node can carry a
// backing document body (Path set), children, or both; a node with neither
// is an empty placeholder awaiting an upload.
//
// IDs are opaque short strings, unique across the whole forest and
// immutable once assigned. Timestamps are ISO-8601 strings so the on-disk
// JSON round-trips byte-for-byte regardless of precision.
type TreeNode struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Path      *string     `json:"path"`
	Children  []*TreeNode `json:"children"`
	CreatedAt string      `json:"created_at"`
	UpdatedAt string      `json:"updated_at"`
}

// HasBody reports whether the node has a backing document body.
func (n *TreeNode) HasBody() bool {
	return n.Path != nil && *n.Path != ""
}

// Timestamp formats a time as the ISO-8601 string stored on tree nodes.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Now returns the current time as a tree-node timestamp.
func Now() string {
	return Timestamp(time.Now())
}

// OutlineNode is one entry of an AI-generated document outline, before it
// is materialized into TreeNodes.
type OutlineNode struct {
	Name     string        `json:"name"`
	Children []OutlineNode `json:"children,omitempty"`
}
