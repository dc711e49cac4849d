package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/GiacomoGonzales/shopifree/internal/domain"
)

// ProductRepo defines the persistence operations for a store's products.
type ProductRepo interface {
	// Create inserts a product and returns the persisted record.
	Create(ctx context.Context, p domain.Product) (domain.Product, error)

	// ListPaged returns one page of the store's products, newest first, and
	// the total number of products in the store.
	ListPaged(ctx context.Context, storeID uuid.UUID, p domain.PaginationParams) ([]domain.Product, int64, error)

	// Delete removes a product. Returns domain.ErrNotFound if it does not exist in the store.
	Delete(ctx context.Context, storeID, id uuid.UUID) error
}

// pgProductRepo is the Postgres implementation of ProductRepo.
type pgProductRepo struct {
	db db
}

// NewProductRepo constructs a ProductRepo backed by the provided db connection.
func NewProductRepo(db db) ProductRepo {
	return &pgProductRepo{db: db}
}

// Create inserts a product row.
func (r *pgProductRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	const q = `
		INSERT INTO products (store_id, name, description, price)
		VALUES (@store_id, @name, @description, @price)
		RETURNING id, store_id, name, description, price::float8, created_at, updated_at`

	args := pgx.NamedArgs{
		"store_id":    p.StoreID,
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
	}
	result, err := scanProduct(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Product{}, fmt.Errorf("repo.ProductRepo.Create: %w", err)
	}
	return result, nil
}

// ListPaged returns one page of products for a store.
func (r *pgProductRepo) ListPaged(ctx context.Context, storeID uuid.UUID, p domain.PaginationParams) ([]domain.Product, int64, error) {
	const countQ = `SELECT count(*) FROM products WHERE store_id = @store_id`
	const q = `
		SELECT id, store_id, name, description, price::float8, created_at, updated_at
		FROM products
		WHERE store_id = @store_id
		ORDER BY created_at DESC, id
		LIMIT @limit OFFSET @offset`

	var total int64
	if err := r.db.QueryRow(ctx, countQ, pgx.NamedArgs{"store_id": storeID}).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.ProductRepo.ListPaged: count: %w", err)
	}

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"store_id": storeID, "limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ProductRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		prod, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.ProductRepo.ListPaged: scan: %w", err)
		}
		products = append(products, prod)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.ProductRepo.ListPaged: rows: %w", err)
	}
	return products, total, nil
}

// Delete removes a product by store and primary key.
func (r *pgProductRepo) Delete(ctx context.Context, storeID, id uuid.UUID) error {
	const q = `DELETE FROM products WHERE store_id = @store_id AND id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"store_id": storeID, "id": id})
	if err != nil {
		return fmt.Errorf("repo.ProductRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ProductRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanProduct maps a single database row into a domain.Product.
func scanProduct(s scanner) (domain.Product, error) {
	var (
		p       domain.Product
		id      pgtype.UUID
		storeID pgtype.UUID
	)
	err := s.Scan(&id, &storeID, &p.Name, &p.Description, &p.Price, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Product{}, domain.ErrNotFound
		}
		return domain.Product{}, err
	}
	p.ID = uuid.UUID(id.Bytes)
	p.StoreID = uuid.UUID(storeID.Bytes)
	return p, nil
}
