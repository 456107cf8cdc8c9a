package handler

import (
	"log/slog"
	"net/http"

	"knowhub/internal/httputil"
	"knowhub/internal/service/comment"
)

// CommentHandler serves per-document comments.
type CommentHandler struct {
	comments *comment.Service
	logger   *slog.Logger
}

func NewCommentHandler(comments *comment.Service, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

// ListComments returns a document's comments, newest first.
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	list, err := h.comments.List(r.PathValue("docID"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, list)
}

// AddComment appends a comment to a document.
func (h *CommentHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Author  string `json:"author"`
		Content string `json:"content"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	added, err := h.comments.Add(r.PathValue("docID"), req.Author, req.Content)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, added)
}
