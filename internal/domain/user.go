package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role gates what a user may do across the platform.
type Role string

const (
	RoleMerchant Role = "merchant"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleMerchant || r == RoleAdmin
}

// User is an account that can sign in. PasswordHash never leaves the service layer.
type User struct {
	ID           uuid.UUID
	Email        string
	DisplayName  string
	Role         Role
	PasswordHash []byte
	CreatedAt    time.Time
}

// IsAdmin reports whether the user may use the admin routes.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Session is a signed-in user. It lives from a login until a logout
// (or expiry) and travels through request contexts explicitly.
type Session struct {
	Token     string
	User      User
	CreatedAt time.Time
	ExpiresAt time.Time
}
