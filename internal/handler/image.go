package handler

import (
	"io"
	"log/slog"
	"net/http"

	"knowhub/internal/config"
	"knowhub/internal/httputil"
	"knowhub/internal/service/image"
)

// ImageHandler serves image uploads and listings.
type ImageHandler struct {
	images *image.Service
	logger *slog.Logger
}

func NewImageHandler(images *image.Service, logger *slog.Logger) *ImageHandler {
	return &ImageHandler{images: images, logger: logger}
}

// Upload stores an image from a multipart form with a "file" field and
// returns its relative path.
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
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

	path, err := h.images.Upload(header.Header.Get("Content-Type"), data)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, map[string]string{"path": path})
}

// List returns stored images, most recent first.
func (h *ImageHandler) List(w http.ResponseWriter, r *http.Request) {
	images, err := h.images.List()
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, images)
}
