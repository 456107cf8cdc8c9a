package handler

import (
	"log/slog"
	"net/http"
	"time"

	"knowhub/internal/config"
	"knowhub/internal/domain"
	"knowhub/internal/domain/models"
	"knowhub/internal/httputil"
	"knowhub/internal/middleware"
	"knowhub/internal/service/chat"
	"knowhub/internal/service/comment"
	"knowhub/internal/service/document"
	"knowhub/internal/service/membership"
)

// AdminHandler serves the administration surface: admin sessions,
// activation codes, account management, comment moderation and AI tree
// generation.
type AdminHandler struct {
	members  *membership.Service
	comments *comment.Service
	docs     *document.Service
	chat     *chat.Service
	secure   bool
	logger   *slog.Logger
}

func NewAdminHandler(members *membership.Service, comments *comment.Service, docs *document.Service, chatSvc *chat.Service, secure bool, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		members:  members,
		comments: comments,
		docs:     docs,
		chat:     chatSvc,
		secure:   secure,
		logger:   logger,
	}
}

// Login opens an admin session.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, err := h.members.AdminLogin(r.Context(), req.Username, req.Password)
	if err != nil {
		handleError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AdminCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(config.AdminSessionTTL / time.Second),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// Logout closes the admin session and clears the cookie.
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.AdminCookie); err == nil {
		if err := h.members.AdminLogout(r.Context(), cookie.Value); err != nil {
			handleError(w, err)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AdminCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// GenerateCodes mints a batch of activation codes.
func (h *AdminHandler) GenerateCodes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Count int    `json:"count"`
		Level string `json:"level"`
		Days  int    `json:"days"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	codes, err := h.members.GenerateCodes(r.Context(), req.Count, config.Level(req.Level), req.Days)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, codes)
}

// ListCodes returns all activation codes, newest first.
func (h *AdminHandler) ListCodes(w http.ResponseWriter, r *http.Request) {
	codes, err := h.members.ListCodes(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, codes)
}

// DeleteCode removes an activation code.
func (h *AdminHandler) DeleteCode(w http.ResponseWriter, r *http.Request) {
	if err := h.members.DeleteCode(r.Context(), r.PathValue("code")); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListAccounts returns all accounts with today's AI usage.
func (h *AdminHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.members.ListAccounts(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, accounts)
}

// SetAccountLevel assigns a membership tier directly.
func (h *AdminHandler) SetAccountLevel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Level    string     `json:"level"`
		ExpireAt *time.Time `json:"expire_at"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.members.SetLevel(r.Context(), r.PathValue("username"), config.Level(req.Level), req.ExpireAt); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteComment removes a comment from a document.
func (h *AdminHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := h.comments.Delete(r.PathValue("docID"), r.PathValue("commentID")); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GenerateOutline asks the model for a topic outline and returns it for
// review. Nothing is written to the tree until the outline comes back
// through ConfirmOutline, possibly edited.
func (h *AdminHandler) GenerateOutline(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Topic string `json:"topic"`
		Depth int    `json:"depth"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Depth == 0 {
		req.Depth = 2
	}

	outline, err := h.chat.GenerateOutline(r.Context(), req.Topic, req.Depth)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{"outline": outline})
}

// ConfirmOutline materializes a reviewed outline as tree nodes with
// seeded bodies, optionally under a parent node.
func (h *AdminHandler) ConfirmOutline(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Outline  []models.OutlineNode `json:"outline"`
		ParentID string               `json:"parent_id"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Outline) == 0 {
		httputil.RespondError(w, http.StatusBadRequest, "outline must not be empty")
		return
	}

	created, err := h.docs.CreateOutline(req.ParentID, req.Outline)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, created)
}

// Session reports whether the caller holds a live admin session.
func (h *AdminHandler) Session(w http.ResponseWriter, r *http.Request) {
	session := middleware.AdminSessionFrom(r.Context())
	if session == nil {
		handleError(w, domain.ErrUnauthorized)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, session)
}
