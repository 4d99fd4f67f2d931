package api

import (
	"context"
	"net/http"

	"github.com/tobiakanji/logos-go/internal/models"
)

// sessionCookieName carries the session token. The login and logout
// handlers and requireUser are its only readers.
const sessionCookieName = "session_token"

type ctxKey int

const ctxUser ctxKey = iota

// requireUser gates a route group on a valid session cookie. The
// resolved user is attached to the request context for the handlers
// behind it.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		user, err := s.store.GetUserFromSession(cookie.Value)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Session expired or invalid")
			return
		}
		ctx := context.WithValue(r.Context(), ctxUser, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// currentUser returns the session user placed on the context by
// requireUser, or nil on an unauthenticated request.
func currentUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(ctxUser).(*models.User)
	return user
}
