// Package handler exposes the HTTP API. Handlers translate between the
// wire format and the services; no business rules live here.
package handler

import (
	"errors"
	"net/http"

	"knowhub/internal/domain"
	"knowhub/internal/httputil"
)

// handleError maps a domain error onto an HTTP status and writes the
// RFC 7807 response. Quota denials carry their used/limit context as
// extra fields.
func handleError(w http.ResponseWriter, err error) {
	var quotaErr *domain.QuotaExceededError
	if errors.As(err, &quotaErr) {
		httputil.RespondErrorWithExtras(w, http.StatusTooManyRequests, quotaErr.Error(), map[string]interface{}{
			"used":  quotaErr.Used,
			"limit": quotaErr.Limit,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrQuotaExceeded):
		httputil.RespondError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, domain.ErrUpstreamTimeout):
		httputil.RespondError(w, http.StatusGatewayTimeout, "upstream timed out")
	case errors.Is(err, domain.ErrUpstream):
		httputil.RespondError(w, http.StatusBadGateway, "upstream failure")
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
