package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/GiacomoGonzales/shopifree/internal/domain"
)

// StoreRepo defines the persistence operations for Stores.
type StoreRepo interface {
	// Create inserts a new store. Returns domain.ErrConflict if the subdomain
	// is already taken.
	Create(ctx context.Context, store domain.Store) (domain.Store, error)

	// GetByID retrieves a single store.
	// Returns domain.ErrNotFound if no store with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Store, error)

	// ListPaged returns one page of stores ordered by creation time (newest
	// first) and the total number of stores.
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Store, int64, error)

	// UpdateSettings overwrites the merchant-editable settings of a store.
	UpdateSettings(ctx context.Context, id uuid.UUID, s domain.StoreSettings) (domain.Store, error)

	// SetTheme records the selected theme.
	SetTheme(ctx context.Context, id uuid.UUID, themeID string) (domain.Store, error)

	// SetStatus records a moderation decision.
	SetStatus(ctx context.Context, id uuid.UUID, status domain.StoreStatus) (domain.Store, error)

	// SetSubdomainProvisioned records whether the hosting provider accepted the subdomain.
	SetSubdomainProvisioned(ctx context.Context, id uuid.UUID, provisioned bool) error
}

// pgStoreRepo is the Postgres implementation of StoreRepo.
type pgStoreRepo struct {
	db db
}

// NewStoreRepo constructs a StoreRepo backed by the provided db connection.
func NewStoreRepo(db db) StoreRepo {
	return &pgStoreRepo{db: db}
}

const storeColumns = `id, owner_id, name, description, subdomain, subdomain_provisioned,
		theme_id, currency, logo_url, banners, status, created_at, updated_at`

// Create inserts a store row and returns the full persisted record.
func (r *pgStoreRepo) Create(ctx context.Context, store domain.Store) (domain.Store, error) {
	const q = `
		INSERT INTO stores (owner_id, name, description, subdomain, theme_id, currency)
		VALUES (@owner_id, @name, @description, @subdomain, @theme_id, @currency)
		RETURNING ` + storeColumns

	args := pgx.NamedArgs{
		"owner_id":    store.OwnerID,
		"name":        store.Name,
		"description": store.Description,
		"subdomain":   store.Subdomain,
		"theme_id":    store.ThemeID,
		"currency":    store.Currency,
	}

	result, err := scanStore(r.db.QueryRow(ctx, q, args))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Store{}, fmt.Errorf("repo.StoreRepo.Create: %w: subdomain %q is already taken", domain.ErrConflict, store.Subdomain)
		}
		return domain.Store{}, fmt.Errorf("repo.StoreRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a store by primary key.
func (r *pgStoreRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Store, error) {
	const q = `SELECT ` + storeColumns + ` FROM stores WHERE id = @id`

	result, err := scanStore(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Store{}, fmt.Errorf("repo.StoreRepo.GetByID: %w", err)
	}
	return result, nil
}

// ListPaged returns one page of stores and the total count.
func (r *pgStoreRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Store, int64, error) {
	const countQ = `SELECT count(*) FROM stores`
	const q = `
		SELECT ` + storeColumns + `
		FROM stores
		ORDER BY created_at DESC, id
		LIMIT @limit OFFSET @offset`

	var total int64
	if err := r.db.QueryRow(ctx, countQ).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.StoreRepo.ListPaged: count: %w", err)
	}

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.StoreRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	stores := []domain.Store{}
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.StoreRepo.ListPaged: scan: %w", err)
		}
		stores = append(stores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.StoreRepo.ListPaged: rows: %w", err)
	}
	return stores, total, nil
}

// UpdateSettings overwrites name, description, currency, logo and banners.
func (r *pgStoreRepo) UpdateSettings(ctx context.Context, id uuid.UUID, s domain.StoreSettings) (domain.Store, error) {
	const q = `
		UPDATE stores
		SET name        = @name,
		    description = @description,
		    currency    = @currency,
		    logo_url    = @logo_url,
		    banners     = @banners::jsonb,
		    updated_at  = now()
		WHERE id = @id
		RETURNING ` + storeColumns

	banners := s.Banners
	if banners == nil {
		banners = []domain.Banner{}
	}
	raw, err := json.Marshal(banners)
	if err != nil {
		return domain.Store{}, fmt.Errorf("repo.StoreRepo.UpdateSettings: encode banners: %w", err)
	}

	args := pgx.NamedArgs{
		"id":          id,
		"name":        s.Name,
		"description": s.Description,
		"currency":    s.Currency,
		"logo_url":    s.LogoURL,
		"banners":     json.RawMessage(raw),
	}
	result, err := scanStore(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Store{}, fmt.Errorf("repo.StoreRepo.UpdateSettings: %w", err)
	}
	return result, nil
}

// SetTheme records the store's selected theme.
func (r *pgStoreRepo) SetTheme(ctx context.Context, id uuid.UUID, themeID string) (domain.Store, error) {
	const q = `
		UPDATE stores
		SET theme_id = @theme_id, updated_at = now()
		WHERE id = @id
		RETURNING ` + storeColumns

	result, err := scanStore(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "theme_id": themeID}))
	if err != nil {
		return domain.Store{}, fmt.Errorf("repo.StoreRepo.SetTheme: %w", err)
	}
	return result, nil
}

// SetStatus records the store's moderation status.
func (r *pgStoreRepo) SetStatus(ctx context.Context, id uuid.UUID, status domain.StoreStatus) (domain.Store, error) {
	const q = `
		UPDATE stores
		SET status = @status, updated_at = now()
		WHERE id = @id
		RETURNING ` + storeColumns

	result, err := scanStore(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "status": string(status)}))
	if err != nil {
		return domain.Store{}, fmt.Errorf("repo.StoreRepo.SetStatus: %w", err)
	}
	return result, nil
}

// SetSubdomainProvisioned flips the provisioning flag.
func (r *pgStoreRepo) SetSubdomainProvisioned(ctx context.Context, id uuid.UUID, provisioned bool) error {
	const q = `
		UPDATE stores
		SET subdomain_provisioned = @provisioned, updated_at = now()
		WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "provisioned": provisioned})
	if err != nil {
		return fmt.Errorf("repo.StoreRepo.SetSubdomainProvisioned: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.StoreRepo.SetSubdomainProvisioned: %w", domain.ErrNotFound)
	}
	return nil
}

// scanStore maps a single database row into a domain.Store.
func scanStore(s scanner) (domain.Store, error) {
	var (
		st      domain.Store
		id      pgtype.UUID
		ownerID pgtype.UUID
		banners []byte
		status  string
	)

	err := s.Scan(&id, &ownerID, &st.Name, &st.Description, &st.Subdomain, &st.SubdomainProvisioned,
		&st.ThemeID, &st.Currency, &st.LogoURL, &banners, &status, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Store{}, domain.ErrNotFound
		}
		return domain.Store{}, err
	}

	st.ID = uuid.UUID(id.Bytes)
	st.OwnerID = uuid.UUID(ownerID.Bytes)
	st.Status = domain.StoreStatus(status)
	st.Banners = []domain.Banner{}
	if len(banners) > 0 {
		if err := json.Unmarshal(banners, &st.Banners); err != nil {
			return domain.Store{}, fmt.Errorf("decode banners for store %s: %w", st.ID, err)
		}
	}
	return st, nil
}
