package handler

import (
	"log/slog"
	"net/http"

	"knowhub/internal/seo"
)

// SEOHandler serves the crawler surfaces.
type SEOHandler struct {
	gen    *seo.Generator
	logger *slog.Logger
}

func NewSEOHandler(gen *seo.Generator, logger *slog.Logger) *SEOHandler {
	return &SEOHandler{gen: gen, logger: logger}
}

func (h *SEOHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	out, err := h.gen.Sitemap()
	if err != nil {
		handleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Write(out)
}

func (h *SEOHandler) RSS(w http.ResponseWriter, r *http.Request) {
	out, err := h.gen.RSS()
	if err != nil {
		handleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Write(out)
}

func (h *SEOHandler) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write(h.gen.Robots())
}
