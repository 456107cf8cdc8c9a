// Package middleware holds the HTTP middleware chain: panic recovery and
// cookie-based session resolution for members and the administrator.
package middleware

import (
	"context"
	"net/http"

	"knowhub/internal/domain/models"
	"knowhub/internal/httputil"
	"knowhub/internal/service/membership"
)

// Session cookie names. Admin and member sessions are separate
// namespaces: an admin cookie never resolves to an account row.
const (
	AdminCookie  = "knowhub_session"
	MemberCookie = "knowhub_user"
)

type contextKey string

const (
	accountKey contextKey = "account"
	adminKey   contextKey = "admin"
)

// WithAccount resolves the member session cookie, if any, and attaches
// the account to the request context. Requests without a valid session
// pass through as guests; nothing is rejected here.
func WithAccount(members *membership.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cookie, err := r.Cookie(MemberCookie); err == nil && cookie.Value != "" {
				if account, err := members.AccountByToken(r.Context(), cookie.Value); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), accountKey, account))
				}
			}
			if cookie, err := r.Cookie(AdminCookie); err == nil && cookie.Value != "" {
				if session, err := members.VerifyAdmin(r.Context(), cookie.Value); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), adminKey, session))
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin rejects requests that lack a live admin session.
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if AdminSessionFrom(r.Context()) == nil {
			httputil.RespondError(w, http.StatusUnauthorized, "admin session required")
			return
		}
		next(w, r)
	}
}

// AccountFrom returns the authenticated account, or nil for guests.
func AccountFrom(ctx context.Context) *models.Account {
	account, _ := ctx.Value(accountKey).(*models.Account)
	return account
}

// AdminSessionFrom returns the live admin session, or nil.
func AdminSessionFrom(ctx context.Context) *models.AdminSession {
	session, _ := ctx.Value(adminKey).(*models.AdminSession)
	return session
}
