package authn

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/raghavverse/simple-auth/pkg/token"
)

type contextKey string

const userIDKey contextKey = "authn.userID"

// UserID returns the authenticated user id injected by Middleware.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}

// Middleware is the identity gate in front of protected operations. It
// extracts the session token from the transport cookie, verifies it and
// injects the asserted user id into the request context. It performs no
// authorization logic.
func Middleware(svc *token.Service, cookies token.CookieSetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(token.CookieName)
			if err != nil || cookie.Value == "" {
				unauthenticated(w, r, "Not authorized. Please log in again.")
				return
			}

			userID, err := svc.Verify(cookie.Value)
			if err != nil {
				slog.Warn("Session token rejected", "err", err)
				// The client-held credential is useless now, drop it.
				cookies.ClearCookie(w, token.CookieName)
				unauthenticated(w, r, "Session expired. Please log in again.")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthenticated(w http.ResponseWriter, r *http.Request, message string) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}{Success: false, Message: message})
}
