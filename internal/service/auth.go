package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/GiacomoGonzales/shopifree/internal/domain"
	"github.com/GiacomoGonzales/shopifree/internal/repo"
)

// MinPasswordLength is the shortest password Register accepts.
const MinPasswordLength = 8

// AuthService registers users and manages their login sessions.
type AuthService struct {
	users    repo.UserRepo
	sessions repo.SessionRepo
	ttl      time.Duration
	now      func() time.Time
}

// NewAuthService constructs an AuthService. Sessions expire ttl after login.
func NewAuthService(users repo.UserRepo, sessions repo.SessionRepo, ttl time.Duration) *AuthService {
	return &AuthService{users: users, sessions: sessions, ttl: ttl, now: time.Now}
}

// Register creates a merchant account.
// Returns domain.ErrConflict if the email is already registered.
func (s *AuthService) Register(ctx context.Context, email, displayName, password string) (domain.User, error) {
	email = strings.TrimSpace(email)
	displayName = strings.TrimSpace(displayName)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return domain.User{}, fmt.Errorf("%w: email is not valid", domain.ErrValidation)
	}
	if len(password) < MinPasswordLength {
		return domain.User{}, fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, MinPasswordLength)
	}
	// bcrypt ignores everything past 72 bytes; GenerateFromPassword rejects it outright.
	if len(password) > 72 {
		return domain.User{}, fmt.Errorf("%w: password must be at most 72 bytes", domain.ErrValidation)
	}
	if displayName == "" {
		displayName = email[:strings.IndexByte(email, '@')]
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.Register: %w", err)
	}

	created, err := s.users.Create(ctx, domain.User{
		Email:        email,
		DisplayName:  displayName,
		Role:         domain.RoleMerchant,
		PasswordHash: hash,
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.Register: %w", err)
	}
	return created, nil
}

// Login checks credentials and opens a session.
// An unknown email and a wrong password both return domain.ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.Session, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Session{}, fmt.Errorf("service.AuthService.Login: %w", domain.ErrUnauthorized)
		}
		return domain.Session{}, fmt.Errorf("service.AuthService.Login: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return domain.Session{}, fmt.Errorf("service.AuthService.Login: %w", domain.ErrUnauthorized)
	}

	token, err := newToken()
	if err != nil {
		return domain.Session{}, fmt.Errorf("service.AuthService.Login: %w", err)
	}

	now := s.now().UTC()
	session, err := s.sessions.Create(ctx, domain.Session{
		Token:     token,
		User:      user,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	})
	if err != nil {
		return domain.Session{}, fmt.Errorf("service.AuthService.Login: %w", err)
	}
	return session, nil
}

// Logout ends a session. Logging out twice is not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("service.AuthService.Logout: %w", err)
	}
	return nil
}

// Resolve turns a bearer token into a live session.
// Missing, unknown and expired tokens all return domain.ErrUnauthorized.
func (s *AuthService) Resolve(ctx context.Context, token string) (domain.Session, error) {
	if token == "" {
		return domain.Session{}, fmt.Errorf("service.AuthService.Resolve: %w", domain.ErrUnauthorized)
	}
	session, err := s.sessions.Get(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Session{}, fmt.Errorf("service.AuthService.Resolve: %w", domain.ErrUnauthorized)
		}
		return domain.Session{}, fmt.Errorf("service.AuthService.Resolve: %w", err)
	}
	return session, nil
}

// ListUsers returns one page of users and the total count.
func (s *AuthService) ListUsers(ctx context.Context, p domain.PaginationParams) ([]domain.User, int64, error) {
	users, total, err := s.users.ListPaged(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.AuthService.ListUsers: %w", err)
	}
	return users, total, nil
}

// SetRole changes a user's role.
func (s *AuthService) SetRole(ctx context.Context, id uuid.UUID, role domain.Role) (domain.User, error) {
	if !role.Valid() {
		return domain.User{}, fmt.Errorf("%w: role must be %q or %q", domain.ErrValidation, domain.RoleMerchant, domain.RoleAdmin)
	}
	updated, err := s.users.SetRole(ctx, id, role)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.SetRole: %w", err)
	}
	return updated, nil
}

// newToken returns 32 random bytes, hex encoded.
func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
