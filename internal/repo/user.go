package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/GiacomoGonzales/shopifree/internal/domain"
)

// UserRepo defines the persistence operations for Users.
type UserRepo interface {
	// Create inserts a user. Returns domain.ErrConflict if the email
	// (case-insensitively) is already registered.
	Create(ctx context.Context, u domain.User) (domain.User, error)

	// GetByID returns domain.ErrNotFound if no user has that ID.
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)

	// GetByEmail matches case-insensitively.
	// Returns domain.ErrNotFound if no user has that email.
	GetByEmail(ctx context.Context, email string) (domain.User, error)

	// ListPaged returns one page of users ordered by email and the total count.
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.User, int64, error)

	// SetRole changes a user's role.
	SetRole(ctx context.Context, id uuid.UUID, role domain.Role) (domain.User, error)
}

// SessionRepo defines the persistence operations for login sessions.
type SessionRepo interface {
	// Create stores a new session for s.User.ID.
	Create(ctx context.Context, s domain.Session) (domain.Session, error)

	// Get resolves a token into a session with its user loaded. Expired
	// sessions are reported as domain.ErrNotFound.
	Get(ctx context.Context, token string, now time.Time) (domain.Session, error)

	// Delete ends a session. Deleting an unknown token is not an error.
	Delete(ctx context.Context, token string) error
}

// pgUserRepo is the Postgres implementation of UserRepo.
type pgUserRepo struct {
	db db
}

// NewUserRepo constructs a UserRepo backed by the provided db connection.
func NewUserRepo(db db) UserRepo {
	return &pgUserRepo{db: db}
}

const userColumns = `id, email, display_name, role, password_hash, created_at`

// Create inserts a user row.
func (r *pgUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	const q = `
		INSERT INTO users (email, display_name, role, password_hash)
		VALUES (@email, @display_name, @role, @password_hash)
		RETURNING ` + userColumns

	args := pgx.NamedArgs{
		"email":         u.Email,
		"display_name":  u.DisplayName,
		"role":          string(u.Role),
		"password_hash": u.PasswordHash,
	}
	result, err := scanUser(r.db.QueryRow(ctx, q, args))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, fmt.Errorf("repo.UserRepo.Create: %w: email %q is already registered", domain.ErrConflict, u.Email)
		}
		return domain.User{}, fmt.Errorf("repo.UserRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a user by primary key.
func (r *pgUserRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = @id`

	result, err := scanUser(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByID: %w", err)
	}
	return result, nil
}

// GetByEmail retrieves a user by email, ignoring case.
func (r *pgUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower(@email)`

	result, err := scanUser(r.db.QueryRow(ctx, q, pgx.NamedArgs{"email": email}))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByEmail: %w", err)
	}
	return result, nil
}

// ListPaged returns one page of users.
func (r *pgUserRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.User, int64, error) {
	const countQ = `SELECT count(*) FROM users`
	const q = `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY lower(email)
		LIMIT @limit OFFSET @offset`

	var total int64
	if err := r.db.QueryRow(ctx, countQ).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.UserRepo.ListPaged: count: %w", err)
	}

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.UserRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.UserRepo.ListPaged: scan: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.UserRepo.ListPaged: rows: %w", err)
	}
	return users, total, nil
}

// SetRole updates a user's role.
func (r *pgUserRepo) SetRole(ctx context.Context, id uuid.UUID, role domain.Role) (domain.User, error) {
	const q = `
		UPDATE users SET role = @role
		WHERE id = @id
		RETURNING ` + userColumns

	result, err := scanUser(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "role": string(role)}))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.SetRole: %w", err)
	}
	return result, nil
}

// scanUser maps a single database row into a domain.User.
func scanUser(s scanner) (domain.User, error) {
	var (
		u    domain.User
		id   pgtype.UUID
		role string
	)
	err := s.Scan(&id, &u.Email, &u.DisplayName, &role, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}
	u.ID = uuid.UUID(id.Bytes)
	u.Role = domain.Role(role)
	return u, nil
}

// pgSessionRepo is the Postgres implementation of SessionRepo.
type pgSessionRepo struct {
	db db
}

// NewSessionRepo constructs a SessionRepo backed by the provided db connection.
func NewSessionRepo(db db) SessionRepo {
	return &pgSessionRepo{db: db}
}

// Create inserts a session row.
func (r *pgSessionRepo) Create(ctx context.Context, s domain.Session) (domain.Session, error) {
	const q = `
		INSERT INTO sessions (token, user_id, expires_at)
		VALUES (@token, @user_id, @expires_at)
		RETURNING created_at, expires_at`

	args := pgx.NamedArgs{"token": s.Token, "user_id": s.User.ID, "expires_at": s.ExpiresAt}
	if err := r.db.QueryRow(ctx, q, args).Scan(&s.CreatedAt, &s.ExpiresAt); err != nil {
		return domain.Session{}, fmt.Errorf("repo.SessionRepo.Create: %w", err)
	}
	return s, nil
}

// Get loads a live session and its user in one query.
func (r *pgSessionRepo) Get(ctx context.Context, token string, now time.Time) (domain.Session, error) {
	const q = `
		SELECT s.token, s.created_at, s.expires_at,
		       u.id, u.email, u.display_name, u.role, u.password_hash, u.created_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token = @token AND s.expires_at > @now`

	var (
		s    domain.Session
		id   pgtype.UUID
		role string
	)
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"token": token, "now": now}).Scan(
		&s.Token, &s.CreatedAt, &s.ExpiresAt,
		&id, &s.User.Email, &s.User.DisplayName, &role, &s.User.PasswordHash, &s.User.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Session{}, fmt.Errorf("repo.SessionRepo.Get: %w", domain.ErrNotFound)
		}
		return domain.Session{}, fmt.Errorf("repo.SessionRepo.Get: %w", err)
	}
	s.User.ID = uuid.UUID(id.Bytes)
	s.User.Role = domain.Role(role)
	return s, nil
}

// Delete removes a session by token.
func (r *pgSessionRepo) Delete(ctx context.Context, token string) error {
	const q = `DELETE FROM sessions WHERE token = @token`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"token": token}); err != nil {
		return fmt.Errorf("repo.SessionRepo.Delete: %w", err)
	}
	return nil
}
