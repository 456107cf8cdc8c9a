package httputil

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"

	"knowhub/internal/config"
)

// ParseJSON decodes the request body into dest, capping the body size.
// The writer is needed so oversized bodies get a proper 413.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSize)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// ClientIP returns the client address, honoring the first entry of
// X-Forwarded-For when a proxy sits in front.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first, _, ok := strings.Cut(xff, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(xff)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
