package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/wanderlogue/backend/internal/auth"
)

// SessionCookie is the name of the http-only cookie carrying the session token.
const SessionCookie = "token"

// TokenVerifier resolves a session token to a user ID.
type TokenVerifier interface {
	Verify(token string) (uuid.UUID, error)
}

// NewIdentityResolver returns a middleware that binds the caller's user ID to
// the request context when a valid token is present. The Authorization bearer
// token is preferred over the session cookie.
//
// It never rejects a request: anonymous and invalid-token requests continue
// with no identity, and services decide whether that is acceptable.
func NewIdentityResolver(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFrom(r)
			if token != "" {
				if id, err := v.Verify(token); err == nil {
					r = r.WithContext(auth.WithUserID(r.Context(), id))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func tokenFrom(r *http.Request) string {
	if scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " "); ok && strings.EqualFold(scheme, "Bearer") {
		if token = strings.TrimSpace(token); token != "" {
			return token
		}
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}
