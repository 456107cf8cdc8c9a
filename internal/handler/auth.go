package handler

import (
	"log/slog"
	"net/http"

	"knowhub/internal/httputil"
	"knowhub/internal/middleware"
	"knowhub/internal/service/membership"
)

// AuthHandler serves member registration, login and self-service account
// operations.
type AuthHandler struct {
	members *membership.Service
	secure  bool // mark cookies Secure outside dev
	logger  *slog.Logger
}

func NewAuthHandler(members *membership.Service, secure bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{members: members, secure: secure, logger: logger}
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Register creates an account and opens a session for it.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Email    string `json:"email"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	account, err := h.members.Register(r.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		handleError(w, err)
		return
	}

	token, err := h.members.IssueSession(r.Context(), account.Username)
	if err != nil {
		handleError(w, err)
		return
	}

	h.setCookie(w, middleware.MemberCookie, token, 0)
	httputil.RespondJSON(w, http.StatusCreated, account)
}

// Login verifies credentials and rotates the account's session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	account, err := h.members.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		handleError(w, err)
		return
	}

	token, err := h.members.IssueSession(r.Context(), account.Username)
	if err != nil {
		handleError(w, err)
		return
	}

	h.setCookie(w, middleware.MemberCookie, token, 0)
	httputil.RespondJSON(w, http.StatusOK, account)
}

// Logout clears the member cookie. The stored token stays until the next
// login rotates it; without the cookie it is unreachable.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.setCookie(w, middleware.MemberCookie, "", -1)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the calling account with its quota standing.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFrom(r.Context())
	if account == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "not signed in")
		return
	}

	status, err := h.members.CheckQuota(r.Context(), account, httputil.ClientIP(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"account": account,
		"quota":   status,
	})
}

// RedeemCode applies an activation code to the calling account.
func (h *AuthHandler) RedeemCode(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFrom(r.Context())
	if account == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "not signed in")
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	grant, err := h.members.RedeemCode(r.Context(), req.Code, account.Username)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, grant)
}

// levelView is one tier in the /api/levels listing.
type levelView struct {
	Level        string `json:"level"`
	Name         string `json:"name"`
	DailyAILimit int    `json:"daily_ai_limit"`
	Description  string `json:"description"`
}

// Levels returns the membership tiers for display, least privileged
// first. A JSON array keeps the order; the lookup map would not.
func (h *AuthHandler) Levels(w http.ResponseWriter, r *http.Request) {
	table := h.members.Levels()

	views := make([]levelView, 0, len(table))
	for _, level := range table.Ordered() {
		cfg := table.Get(level)
		views = append(views, levelView{
			Level:        string(level),
			Name:         cfg.Name,
			DailyAILimit: cfg.DailyAILimit,
			Description:  cfg.Description,
		})
	}

	httputil.RespondJSON(w, http.StatusOK, views)
}

// Quota reports the caller's quota standing; works for guests too.
func (h *AuthHandler) Quota(w http.ResponseWriter, r *http.Request) {
	status, err := h.members.CheckQuota(r.Context(), middleware.AccountFrom(r.Context()), httputil.ClientIP(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, status)
}
