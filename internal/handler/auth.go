package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/GiacomoGonzales/shopifree/internal/domain"
	"github.com/GiacomoGonzales/shopifree/internal/middleware"
)

// User is the JSON representation of a domain.User. The password hash is never sent.
type User struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RegisterRequest is the body of POST /users.
type RegisterRequest struct {
	Email       openapi_types.Email `json:"email"`
	DisplayName string              `json:"displayName"`
	Password    string              `json:"password"`
}

// LoginRequest is the body of POST /sessions.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is returned by a successful login.
type SessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

// Register handles POST /users. New accounts are merchants.
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var body RegisterRequest
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	created, err := s.auth.Register(r.Context(), string(body.Email), body.DisplayName, body.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, userToResponse(created))
}

// Login handles POST /sessions.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var body LoginRequest
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	session, err := s.auth.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, SessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      userToResponse(session.User),
	})
}

// Logout handles DELETE /sessions/current.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFrom(r.Context())
	if err := s.auth.Logout(r.Context(), session.Token); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// userToResponse converts a domain.User to its JSON shape.
func userToResponse(u domain.User) User {
	return User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        string(u.Role),
		CreatedAt:   u.CreatedAt,
	}
}
