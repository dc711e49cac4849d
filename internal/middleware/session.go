package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/GiacomoGonzales/shopifree/internal/domain"
)

// SessionResolver turns bearer tokens into sessions and can revoke them.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (domain.Session, error)
	Logout(ctx context.Context, token string) error
}

type sessionKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s domain.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session stored by RequireSession, if any.
func SessionFrom(ctx context.Context) (domain.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(domain.Session)
	return s, ok
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireSession rejects requests without a live session with 401 and stores
// the resolved session in the request context for everything downstream.
func RequireSession(resolver SessionResolver, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := resolver.Resolve(r.Context(), BearerToken(r))
			if err != nil {
				if errors.Is(err, domain.ErrUnauthorized) {
					writeError(w, http.StatusUnauthorized, "unauthorized", "sign in required")
					return
				}
				log.ErrorContext(r.Context(), "session lookup failed", "error", err)
				writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// RequireAdmin lets only admins through. A signed-in non-admin has their
// session revoked and gets 403. Wire it after RequireSession.
func RequireAdmin(resolver SessionResolver, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := SessionFrom(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized", "sign in required")
				return
			}
			if !session.User.IsAdmin() {
				if err := resolver.Logout(r.Context(), session.Token); err != nil {
					log.ErrorContext(r.Context(), "revoking non-admin session failed",
						"user_id", session.User.ID,
						"error", err,
					)
				}
				log.WarnContext(r.Context(), "non-admin reached an admin route",
					"user_id", session.User.ID,
					"path", r.URL.Path,
				)
				writeError(w, http.StatusForbidden, "forbidden", "admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError writes the API's standard error envelope.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: errorDetail{Code: code, Message: message}})
}
