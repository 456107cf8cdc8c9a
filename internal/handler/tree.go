package handler

import (
	"io"
	"log/slog"
	"net/http"

	"knowhub/internal/config"
	"knowhub/internal/httputil"
	"knowhub/internal/service/document"
)

// TreeHandler serves the document tree and its node mutations.
type TreeHandler struct {
	docs   *document.Service
	logger *slog.Logger
}

func NewTreeHandler(docs *document.Service, logger *slog.Logger) *TreeHandler {
	return &TreeHandler{docs: docs, logger: logger}
}

// GetTree returns the whole forest.
func (h *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	forest, err := h.docs.Forest()
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, forest)
}

// CreateNode adds an empty placeholder node.
func (h *TreeHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ParentID string `json:"parent_id"`
		Name     string `json:"name"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	node, err := h.docs.Create(req.ParentID, req.Name)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, node)
}

// RenameNode updates a node's name and its backing file.
func (h *TreeHandler) RenameNode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	node, err := h.docs.Rename(r.PathValue("id"), req.Name)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, node)
}

// DeleteNode removes a node, its descendants and their bodies.
func (h *TreeHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	if err := h.docs.Delete(r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MoveNode relocates a node relative to a target.
func (h *TreeHandler) MoveNode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TargetID string `json:"target_id"`
		Position string `json:"position"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.docs.Move(r.PathValue("id"), req.TargetID, req.Position); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadBody attaches a Markdown body to a node from a multipart form
// with a "file" field.
func (h *TreeHandler) UploadBody(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	path, err := h.docs.Upload(r.PathValue("id"), header.Filename, data)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{"path": path})
}
