package models

// Document is the resolved read view of a tree node: raw markdown body,
// rendered HTML, parsed front-matter and the current view count. Empty is
// the sentinel for a placeholder node with no body attached.
type Document struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Path      string            `json:"path,omitempty"`
	Content   string            `json:"content"`
	HTML      string            `json:"html"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Empty     bool              `json:"empty"`
	Views     int               `json:"views"`
	CreatedAt string            `json:"created_at,omitempty"`
	UpdatedAt string            `json:"updated_at,omitempty"`
}
