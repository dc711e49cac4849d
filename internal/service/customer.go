// Package service contains the business logic for the Shopifree API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here. Services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/GiacomoGonzales/shopifree/internal/domain"
	"github.com/GiacomoGonzales/shopifree/internal/repo"
)

// CustomerService implements the customer listing pipeline and customer mutations.
type CustomerService struct {
	customers repo.CustomerRepo
	now       func() time.Time
}

// NewCustomerService constructs a CustomerService backed by the provided CustomerRepo.
func NewCustomerService(r repo.CustomerRepo) *CustomerService {
	return &CustomerService{customers: r, now: time.Now}
}

// List reads the store's whole customer collection, then filters, sorts and
// pages it in memory. page is 1-indexed and is not clamped: a page past the
// end returns no customers. A non-positive perPage returns everything as page 1.
func (s *CustomerService) List(ctx context.Context, storeID uuid.UUID, f domain.CustomerFilters, page, perPage int) (domain.CustomerPage, error) {
	if f.SortBy == "" {
		f.SortBy = domain.DefaultSort
	}
	if !f.SortBy.Valid() {
		return domain.CustomerPage{}, fmt.Errorf("%w: unknown sort order %q", domain.ErrValidation, f.SortBy)
	}

	all, err := s.customers.ListByStore(ctx, storeID)
	if err != nil {
		return domain.CustomerPage{}, fmt.Errorf("service.CustomerService.List: %w", err)
	}

	filtered := filterCustomers(all, f)
	sortCustomers(filtered, f.SortBy)
	return paginate(filtered, page, perPage), nil
}

// Export returns every customer matching f, sorted, with no page bound.
func (s *CustomerService) Export(ctx context.Context, storeID uuid.UUID, f domain.CustomerFilters) ([]domain.Customer, error) {
	result, err := s.List(ctx, storeID, f, 1, 0)
	if err != nil {
		return nil, fmt.Errorf("service.CustomerService.Export: %w", err)
	}
	return result.Customers, nil
}

// GetByID returns a single customer of the store.
func (s *CustomerService) GetByID(ctx context.Context, storeID, id uuid.UUID) (domain.Customer, error) {
	c, err := s.customers.GetByID(ctx, storeID, id)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("service.CustomerService.GetByID: %w", err)
	}
	return c, nil
}

// Create validates and persists a new customer. CreatedAt defaults to now.
func (s *CustomerService) Create(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	c.DisplayName = strings.TrimSpace(c.DisplayName)
	c.Email = strings.TrimSpace(c.Email)
	if c.DisplayName == "" && c.Email == "" {
		return domain.Customer{}, fmt.Errorf("%w: name or email is required", domain.ErrValidation)
	}
	if c.OrderCount < 0 || c.TotalSpent < 0 {
		return domain.Customer{}, fmt.Errorf("%w: order count and total spent must not be negative", domain.ErrValidation)
	}
	if c.CreatedAt == nil {
		now := s.now().UTC()
		c.CreatedAt = &now
	}
	c.Tags = normalizeTags(c.Tags)

	created, err := s.customers.Create(ctx, c)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("service.CustomerService.Create: %w", err)
	}
	return created, nil
}

// Update merges a partial patch into a customer. The last writer wins.
// Returns domain.ErrValidation for an empty patch.
func (s *CustomerService) Update(ctx context.Context, storeID, id uuid.UUID, patch domain.CustomerPatch) (domain.Customer, error) {
	if patch.IsEmpty() {
		return domain.Customer{}, fmt.Errorf("%w: nothing to update", domain.ErrValidation)
	}
	patch = normalizePatch(patch)

	updated, err := s.customers.Update(ctx, storeID, id, patch)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("service.CustomerService.Update: %w", err)
	}
	return updated, nil
}

// Delete removes a customer. Deleting an already deleted customer succeeds.
func (s *CustomerService) Delete(ctx context.Context, storeID, id uuid.UUID) error {
	if err := s.customers.Delete(ctx, storeID, id); err != nil {
		return fmt.Errorf("service.CustomerService.Delete: %w", err)
	}
	return nil
}

// BulkUpdate applies every update atomically. The batch is rejected before
// any write if it is empty, too large, or carries an empty patch.
func (s *CustomerService) BulkUpdate(ctx context.Context, storeID uuid.UUID, updates []domain.CustomerUpdate) error {
	if len(updates) == 0 {
		return fmt.Errorf("%w: no updates given", domain.ErrValidation)
	}
	if len(updates) > domain.MaxBatchSize {
		return fmt.Errorf("%w: at most %d updates per batch", domain.ErrValidation, domain.MaxBatchSize)
	}

	normalized := make([]domain.CustomerUpdate, len(updates))
	for i, u := range updates {
		if u.Patch.IsEmpty() {
			return fmt.Errorf("%w: update %d for customer %s is empty", domain.ErrValidation, i, u.ID)
		}
		normalized[i] = domain.CustomerUpdate{ID: u.ID, Patch: normalizePatch(u.Patch)}
	}

	if err := s.customers.BulkUpdate(ctx, storeID, normalized); err != nil {
		return fmt.Errorf("service.CustomerService.BulkUpdate: %w", err)
	}
	return nil
}

func normalizePatch(p domain.CustomerPatch) domain.CustomerPatch {
	if p.Tags != nil {
		tags := normalizeTags(*p.Tags)
		p.Tags = &tags
	}
	return p
}

// normalizeTags trims tags and drops blanks and duplicates, keeping first-seen order.
// Tags are a set, so order carries no meaning beyond display.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
