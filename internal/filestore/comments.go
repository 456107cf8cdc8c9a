package filestore

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"knowhub/internal/domain"
	"knowhub/internal/domain/models"
)

// CommentStore keeps document comments in a single JSON file mapping
// document ID to the list of comments in insertion order. Comments are not
// removed when their document is deleted; they reattach if the ID is reused.
type CommentStore struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

func NewCommentStore(path string, logger *slog.Logger) *CommentStore {
	return &CommentStore{path: path, logger: logger}
}

// ListByDoc returns the comments for docID, newest first.
func (s *CommentStore) ListByDoc(docID string) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := map[string][]models.Comment{}
	if err := loadJSON(s.path, &all); err != nil {
		return nil, err
	}

	stored := all[docID]
	out := make([]models.Comment, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		out = append(out, stored[i])
	}

	return out, nil
}

// Add appends a comment for docID, assigning its ID and timestamp.
func (s *CommentStore) Add(docID, author, content string) (models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := map[string][]models.Comment{}
	if err := loadJSON(s.path, &all); err != nil {
		return models.Comment{}, err
	}

	comment := models.Comment{
		ID:        uuid.NewString(),
		DocID:     docID,
		Author:    author,
		Content:   content,
		CreatedAt: models.Now(),
	}
	all[docID] = append(all[docID], comment)

	if err := saveJSON(s.path, all); err != nil {
		return models.Comment{}, err
	}

	return comment, nil
}

// Delete removes the comment with commentID under docID. Returns
// domain.ErrNotFound when no such comment exists.
func (s *CommentStore) Delete(docID, commentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := map[string][]models.Comment{}
	if err := loadJSON(s.path, &all); err != nil {
		return err
	}

	stored := all[docID]
	for i, c := range stored {
		if c.ID == commentID {
			all[docID] = append(stored[:i], stored[i+1:]...)
			return saveJSON(s.path, all)
		}
	}

	return domain.ErrNotFound
}
