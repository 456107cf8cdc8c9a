// Package sse writes Server-Sent Events for the streaming chat endpoint.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// doneMarker is the explicit end-of-stream event payload.
const doneMarker = "[DONE]"

// Writer emits SSE data frames and flushes after each one so tokens reach
// the client as they arrive.
type Writer struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewWriter prepares the response for streaming. Returns an error when
// the ResponseWriter cannot flush (no streaming support).
func NewWriter(w http.ResponseWriter) (*Writer, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support streaming")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // disable proxy buffering

	return &Writer{w: w, flusher: flusher}, nil
}

// WriteEvent sends one JSON-encoded data frame.
func (s *Writer) WriteEvent(payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode sse event: %w", err)
	}

	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("write sse event: %w", err)
	}
	s.flusher.Flush()
	return nil
}

// WriteDone sends the end-of-stream marker.
func (s *Writer) WriteDone() error {
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", doneMarker); err != nil {
		return fmt.Errorf("write sse done: %w", err)
	}
	s.flusher.Flush()
	return nil
}

// WriteKeepAlive sends an SSE comment line. Comments are ignored by
// clients but keep idle proxies from dropping the connection.
func (s *Writer) WriteKeepAlive() error {
	if _, err := fmt.Fprint(s.w, ": keepalive\n\n"); err != nil {
		return fmt.Errorf("write keepalive: %w", err)
	}
	s.flusher.Flush()
	return nil
}
