package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/wanderlogue/backend/internal/auth"
	"github.com/pkordes/wanderlogue/backend/internal/domain"
	"github.com/pkordes/wanderlogue/backend/internal/middleware"
	"github.com/pkordes/wanderlogue/backend/internal/service"
)

// userResponse is the public profile of an account. The password hash is
// never serialized.
type userResponse struct {
	ID        uuid.UUID           `json:"id"`
	Email     openapi_types.Email `json:"email"`
	Username  string              `json:"username"`
	FirstName string              `json:"firstName"`
	LastName  string              `json:"lastName"`
	Provider  string              `json:"provider"`
	CreatedAt time.Time           `json:"createdAt"`
}

func userToResponse(u domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     openapi_types.Email(u.Email),
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Provider:  "local",
		CreatedAt: u.CreatedAt,
	}
}

// Register handles POST /api/auth/register.
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var body domain.Registration
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	sess, err := s.auth.Register(r.Context(), body)
	if errors.Is(err, domain.ErrConflict) {
		writeFailure(w, http.StatusConflict, "User already exists with this email or username", nil)
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeSession(w, http.StatusCreated, sess)
}

// Login handles POST /api/auth/login.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var body domain.Credentials
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	sess, err := s.auth.Login(r.Context(), body)
	if errors.Is(err, domain.ErrUnauthorized) {
		writeFailure(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeSession(w, http.StatusOK, sess)
}

// Logout handles POST /api/auth/logout by expiring the session cookie.
// Bearer tokens are stateless; clients discard their copy.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, http.StatusOK, envelope{"message": "Logged out successfully"})
}

// Me handles GET /api/auth/me.
func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	user, err := s.auth.Me(r.Context(), auth.UserIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"user": userToResponse(user)})
}

// UpdateProfile handles PUT /api/auth/profile.
func (s *Server) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var body domain.Profile
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.auth.UpdateProfile(r.Context(), auth.UserIDFrom(r.Context()), body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"user": userToResponse(user)})
}

// ChangePassword handles PUT /api/auth/password.
func (s *Server) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var body domain.PasswordChange
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	userID := auth.UserIDFrom(r.Context())
	err := s.auth.ChangePassword(r.Context(), userID, body)
	if userID != uuid.Nil && errors.Is(err, domain.ErrUnauthorized) {
		writeFailure(w, http.StatusUnauthorized, "Current password is incorrect", nil)
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"message": "Password updated successfully"})
}

// SSO handles GET /api/auth/sso/{provider}. Third-party sign-in is not
// available, so every provider answers 501.
func (s *Server) SSO(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	writeFailure(w, http.StatusNotImplemented, provider+" sign-in is not configured", nil)
}

// writeSession sets the session cookie and writes {success, token, user}.
func (s *Server) writeSession(w http.ResponseWriter, status int, sess service.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  time.Now().Add(s.opts.SessionTTL),
		MaxAge:   int(s.opts.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, status, envelope{"token": sess.Token, "user": userToResponse(sess.User)})
}
