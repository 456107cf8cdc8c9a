package models

// Comment is one entry in a document's append-only comment list. DocID
// references a TreeNode id but is not validated against the tree; comments
// survive node deletion.
type Comment struct {
	ID        string `json:"id"`
	DocID     string `json:"doc_id"`
	Author    string `json:"author"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}
