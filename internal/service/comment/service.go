// Package comment manages the append-only per-document comment lists.
// Comment doc ids are not validated against the tree: comments on a
// deleted document stay on record and reattach if the id reappears.
package comment

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"knowhub/internal/config"
	"knowhub/internal/domain"
	"knowhub/internal/domain/models"
	"knowhub/internal/filestore"
)

type Service struct {
	store  *filestore.CommentStore
	logger *slog.Logger
}

func NewService(store *filestore.CommentStore, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// List returns a document's comments, newest first.
func (s *Service) List(docID string) ([]models.Comment, error) {
	return s.store.ListByDoc(docID)
}

// Add appends a comment to a document.
func (s *Service) Add(docID, author, content string) (models.Comment, error) {
	err := validation.Errors{
		"author": validation.Validate(author,
			validation.Required,
			validation.Length(1, config.MaxCommentAuthorLength),
		),
		"content": validation.Validate(content,
			validation.Required,
			validation.Length(1, config.MaxCommentContentLength),
		),
	}.Filter()
	if err != nil {
		return models.Comment{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	comment, err := s.store.Add(docID, author, content)
	if err != nil {
		return models.Comment{}, err
	}

	s.logger.Info("comment added", "doc_id", docID, "comment_id", comment.ID)
	return comment, nil
}

// Delete removes a comment (admin operation).
func (s *Service) Delete(docID, commentID string) error {
	if err := s.store.Delete(docID, commentID); err != nil {
		return err
	}

	s.logger.Info("comment deleted", "doc_id", docID, "comment_id", commentID)
	return nil
}
