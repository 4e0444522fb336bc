package middleware

import (
	"context"
	"net/http"

	"github.com/bengche/payvault-push/pkg/response"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// UserIDKey is the context key for the authenticated user ID
	UserIDKey ContextKey = "user_id"
)

// SessionCookie is the name of the credentialed session cookie issued at
// sign-in and sent by browsers on every API request.
const SessionCookie = "payvault_session"

// SessionStore resolves a session token to the user it belongs to.
type SessionStore interface {
	UserID(token string) (int64, bool)
}

// SessionAuth rejects requests that do not carry a valid session cookie.
// The 401 it produces is what the client-side session-expiry handler keys on.
func SessionAuth(store SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				response.Unauthorized(w, "Session cookie required")
				return
			}

			userID, ok := store.UserID(cookie.Value)
			if !ok {
				response.Unauthorized(w, "Invalid or expired session")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID extracts the user ID from the request context
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}
