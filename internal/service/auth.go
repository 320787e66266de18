package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/wanderlogue/backend/internal/auth"
	"github.com/pkordes/wanderlogue/backend/internal/domain"
	"github.com/pkordes/wanderlogue/backend/internal/repo"
	"github.com/pkordes/wanderlogue/backend/internal/validation"
)

// TokenIssuer signs a session token for a user.
type TokenIssuer interface {
	Issue(userID uuid.UUID) (string, error)
}

// Session is the result of a successful register or login.
type Session struct {
	Token string
	User  domain.User
}

// AuthService implements account registration, login and profile upkeep.
type AuthService struct {
	users  repo.UserRepo
	tokens TokenIssuer
}

// NewAuthService constructs an AuthService.
func NewAuthService(users repo.UserRepo, tokens TokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Register creates an account and signs the new user in.
// Returns domain.ErrConflict when the email or username is taken.
func (s *AuthService) Register(ctx context.Context, reg domain.Registration) (Session, error) {
	reg.Email = strings.ToLower(strings.TrimSpace(reg.Email))
	reg.Username = strings.TrimSpace(reg.Username)
	reg.FirstName = strings.TrimSpace(reg.FirstName)
	reg.LastName = strings.TrimSpace(reg.LastName)
	if err := validation.Struct(reg); err != nil {
		return Session{}, fmt.Errorf("service.AuthService.Register: %w", err)
	}

	hash, err := auth.HashPassword(reg.Password)
	if err != nil {
		return Session{}, fmt.Errorf("service.AuthService.Register: %w", err)
	}
	user, err := s.users.Create(ctx, domain.User{
		Email:        reg.Email,
		Username:     reg.Username,
		PasswordHash: hash,
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
	})
	if err != nil {
		return Session{}, fmt.Errorf("service.AuthService.Register: %w", err)
	}
	return s.session(user, "service.AuthService.Register")
}

// Login checks credentials and issues a session. An unknown email and a
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, creds domain.Credentials) (Session, error) {
	creds.Email = strings.ToLower(strings.TrimSpace(creds.Email))
	if err := validation.Struct(creds); err != nil {
		return Session{}, fmt.Errorf("service.AuthService.Login: %w", err)
	}

	user, err := s.users.GetByEmail(ctx, creds.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return Session{}, fmt.Errorf("service.AuthService.Login: %w", domain.ErrUnauthorized)
	}
	if err != nil {
		return Session{}, fmt.Errorf("service.AuthService.Login: %w", err)
	}

	ok, err := auth.CheckPassword(user.PasswordHash, creds.Password)
	if err != nil {
		return Session{}, fmt.Errorf("service.AuthService.Login: %w", err)
	}
	if !ok {
		return Session{}, fmt.Errorf("service.AuthService.Login: %w", domain.ErrUnauthorized)
	}
	return s.session(user, "service.AuthService.Login")
}

// Me returns the signed-in user.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (domain.User, error) {
	if userID == uuid.Nil {
		return domain.User{}, fmt.Errorf("service.AuthService.Me: %w", domain.ErrUnauthorized)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.Me: %w", err)
	}
	return user, nil
}

// UpdateProfile replaces the user's display names.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, p domain.Profile) (domain.User, error) {
	if userID == uuid.Nil {
		return domain.User{}, fmt.Errorf("service.AuthService.UpdateProfile: %w", domain.ErrUnauthorized)
	}
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	if err := validation.Struct(p); err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.UpdateProfile: %w", err)
	}
	user, err := s.users.UpdateProfile(ctx, userID, p)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.UpdateProfile: %w", err)
	}
	return user, nil
}

// ChangePassword replaces the password after checking the current one.
// A wrong current password yields domain.ErrUnauthorized.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, change domain.PasswordChange) error {
	if userID == uuid.Nil {
		return fmt.Errorf("service.AuthService.ChangePassword: %w", domain.ErrUnauthorized)
	}
	if err := validation.Struct(change); err != nil {
		return fmt.Errorf("service.AuthService.ChangePassword: %w", err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("service.AuthService.ChangePassword: %w", err)
	}
	ok, err := auth.CheckPassword(user.PasswordHash, change.CurrentPassword)
	if err != nil {
		return fmt.Errorf("service.AuthService.ChangePassword: %w", err)
	}
	if !ok {
		return fmt.Errorf("service.AuthService.ChangePassword: %w", domain.ErrUnauthorized)
	}

	hash, err := auth.HashPassword(change.NewPassword)
	if err != nil {
		return fmt.Errorf("service.AuthService.ChangePassword: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("service.AuthService.ChangePassword: %w", err)
	}
	return nil
}

func (s *AuthService) session(user domain.User, op string) (Session, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}
	return Session{Token: token, User: user}, nil
}
