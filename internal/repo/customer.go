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

// CustomerRepo defines the persistence operations for a store's customers.
// Every method is scoped to a store; a customer ID from another store is
// treated as missing.
type CustomerRepo interface {
	// ListByStore returns every customer of the store in storage order
	// (insertion time, then ID). No filtering happens here.
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]domain.Customer, error)

	// GetByID returns a single customer.
	// Returns domain.ErrNotFound if no such customer exists in the store.
	GetByID(ctx context.Context, storeID, id uuid.UUID) (domain.Customer, error)

	// Create inserts a new customer document and returns the persisted record.
	Create(ctx context.Context, c domain.Customer) (domain.Customer, error)

	// Update merges patch into the stored document and stamps updated_at.
	// Returns domain.ErrNotFound if no such customer exists in the store.
	Update(ctx context.Context, storeID, id uuid.UUID, patch domain.CustomerPatch) (domain.Customer, error)

	// Delete removes a customer. Deleting a missing customer is not an error.
	Delete(ctx context.Context, storeID, id uuid.UUID) error

	// BulkUpdate applies every update in one transaction. If any customer is
	// missing or any write fails, nothing is committed.
	BulkUpdate(ctx context.Context, storeID uuid.UUID, updates []domain.CustomerUpdate) error
}

// pgCustomerRepo is the Postgres implementation of CustomerRepo.
type pgCustomerRepo struct {
	db db
}

// NewCustomerRepo constructs a CustomerRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewCustomerRepo(db db) CustomerRepo {
	return &pgCustomerRepo{db: db}
}

// ListByStore reads the whole customer collection of a store.
func (r *pgCustomerRepo) ListByStore(ctx context.Context, storeID uuid.UUID) ([]domain.Customer, error) {
	const q = `
		SELECT id, store_id, doc, updated_at
		FROM customers
		WHERE store_id = @store_id
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"store_id": storeID})
	if err != nil {
		return nil, fmt.Errorf("repo.CustomerRepo.ListByStore: %w", err)
	}
	defer rows.Close()

	customers := []domain.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.CustomerRepo.ListByStore: scan: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.CustomerRepo.ListByStore: rows: %w", err)
	}
	return customers, nil
}

// GetByID retrieves a customer by store and primary key.
func (r *pgCustomerRepo) GetByID(ctx context.Context, storeID, id uuid.UUID) (domain.Customer, error) {
	const q = `
		SELECT id, store_id, doc, updated_at
		FROM customers
		WHERE store_id = @store_id AND id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"store_id": storeID, "id": id})
	result, err := scanCustomer(row)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("repo.CustomerRepo.GetByID: %w", err)
	}
	return result, nil
}

// Create inserts a customer document and returns the full persisted record.
func (r *pgCustomerRepo) Create(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	const q = `
		INSERT INTO customers (store_id, doc)
		VALUES (@store_id, @doc)
		RETURNING id, store_id, doc, updated_at`

	doc, err := encodeCustomerDoc(c)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("repo.CustomerRepo.Create: encode: %w", err)
	}

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"store_id": c.StoreID, "doc": doc})
	result, err := scanCustomer(row)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("repo.CustomerRepo.Create: %w", err)
	}
	return result, nil
}

// Update merges patch into the document. jsonb || replaces top-level keys,
// so nested preferences are replaced as a whole.
func (r *pgCustomerRepo) Update(ctx context.Context, storeID, id uuid.UUID, patch domain.CustomerPatch) (domain.Customer, error) {
	const q = `
		UPDATE customers
		SET doc        = doc || @patch::jsonb,
		    updated_at = now()
		WHERE store_id = @store_id AND id = @id
		RETURNING id, store_id, doc, updated_at`

	raw, err := encodeCustomerPatch(patch)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("repo.CustomerRepo.Update: encode: %w", err)
	}

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"store_id": storeID, "id": id, "patch": raw})
	result, err := scanCustomer(row)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("repo.CustomerRepo.Update: %w", err)
	}
	return result, nil
}

// Delete removes a customer by store and primary key.
func (r *pgCustomerRepo) Delete(ctx context.Context, storeID, id uuid.UUID) error {
	const q = `DELETE FROM customers WHERE store_id = @store_id AND id = @id`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"store_id": storeID, "id": id}); err != nil {
		return fmt.Errorf("repo.CustomerRepo.Delete: %w", err)
	}
	return nil
}

// BulkUpdate applies all updates inside a single transaction.
func (r *pgCustomerRepo) BulkUpdate(ctx context.Context, storeID uuid.UUID, updates []domain.CustomerUpdate) (err error) {
	const q = `
		UPDATE customers
		SET doc        = doc || @patch::jsonb,
		    updated_at = now()
		WHERE store_id = @store_id AND id = @id`

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo.CustomerRepo.BulkUpdate: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	for _, u := range updates {
		var raw json.RawMessage
		raw, err = encodeCustomerPatch(u.Patch)
		if err != nil {
			return fmt.Errorf("repo.CustomerRepo.BulkUpdate: encode %s: %w", u.ID, err)
		}
		tag, execErr := tx.Exec(ctx, q, pgx.NamedArgs{"store_id": storeID, "id": u.ID, "patch": raw})
		if execErr != nil {
			err = fmt.Errorf("repo.CustomerRepo.BulkUpdate: %s: %w", u.ID, execErr)
			return err
		}
		if tag.RowsAffected() == 0 {
			err = fmt.Errorf("repo.CustomerRepo.BulkUpdate: %w: customer %s does not exist in this store", domain.ErrNotFound, u.ID)
			return err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.CustomerRepo.BulkUpdate: commit: %w", err)
	}
	return nil
}

// scanCustomer maps a row of (id, store_id, doc, updated_at) into a
// domain.Customer, decoding and validating the document.
func scanCustomer(s scanner) (domain.Customer, error) {
	var (
		c       domain.Customer
		id      pgtype.UUID
		storeID pgtype.UUID
		doc     []byte
	)

	if err := s.Scan(&id, &storeID, &doc, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Customer{}, domain.ErrNotFound
		}
		return domain.Customer{}, err
	}

	c.ID = uuid.UUID(id.Bytes)
	c.StoreID = uuid.UUID(storeID.Bytes)
	if err := decodeCustomerDoc(doc, &c); err != nil {
		return domain.Customer{}, err
	}
	return c, nil
}
