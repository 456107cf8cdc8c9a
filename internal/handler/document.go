package handler

import (
	"log/slog"
	"net/http"

	"knowhub/internal/httputil"
	"knowhub/internal/service/document"
	"knowhub/internal/service/search"
)

// DocumentHandler serves rendered documents and search.
type DocumentHandler struct {
	docs    *document.Service
	search  *search.Service
	logger  *slog.Logger
}

func NewDocumentHandler(docs *document.Service, searchSvc *search.Service, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{docs: docs, search: searchSvc, logger: logger}
}

// GetDocument returns a document with rendered HTML. The view counter
// increments unless ?preview=1 suppresses it.
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	countView := r.URL.Query().Get("preview") != "1"

	doc, err := h.docs.Read(r.PathValue("id"), countView)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// SearchDocuments runs a full-text query over all bodies.
func (h *DocumentHandler) SearchDocuments(w http.ResponseWriter, r *http.Request) {
	resp, err := h.search.Search(r.URL.Query().Get("q"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}
