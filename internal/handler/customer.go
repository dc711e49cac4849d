package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/GiacomoGonzales/shopifree/internal/domain"
)

// Customer is the JSON representation of a domain.Customer.
type Customer struct {
	ID          uuid.UUID   `json:"id"`
	StoreID     uuid.UUID   `json:"storeId"`
	DisplayName string      `json:"displayName"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone"`
	Address     string      `json:"address"`
	CreatedAt   *time.Time  `json:"createdAt"`
	LastOrderAt *time.Time  `json:"lastOrderAt"`
	OrderCount  int         `json:"orderCount"`
	TotalSpent  float64     `json:"totalSpent"`
	Tags        []string    `json:"tags"`
	Notes       string      `json:"notes"`
	Preferences Preferences `json:"preferences"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Preferences mirrors domain.Preferences.
type Preferences struct {
	Newsletter        bool `json:"newsletter"`
	NotifyOrderStatus bool `json:"notifyOrderStatus"`
}

// CreateCustomerRequest is the body of POST /stores/{storeId}/customers.
// orderCount and totalSpent are aggregates maintained by the order system.
type CreateCustomerRequest struct {
	DisplayName string               `json:"displayName"`
	Email       *openapi_types.Email `json:"email,omitempty"`
	Phone       string               `json:"phone"`
	Address     string               `json:"address"`
	Tags        []string             `json:"tags"`
	Notes       string               `json:"notes"`
	Preferences *Preferences         `json:"preferences,omitempty"`
	OrderCount  int                  `json:"orderCount"`
	TotalSpent  float64              `json:"totalSpent"`
	CreatedAt   *time.Time           `json:"createdAt,omitempty"`
	LastOrderAt *time.Time           `json:"lastOrderAt,omitempty"`
}

// CustomerPatchRequest is the body of PATCH /stores/{storeId}/customers/{customerId}.
// Absent fields are left unchanged.
type CustomerPatchRequest struct {
	Tags        *[]string    `json:"tags,omitempty"`
	Notes       *string      `json:"notes,omitempty"`
	Preferences *Preferences `json:"preferences,omitempty"`
	Address     *string      `json:"address,omitempty"`
}

// BulkUpdateRequest is the body of PATCH /stores/{storeId}/customers/bulk.
type BulkUpdateRequest struct {
	Updates []BulkUpdateItem `json:"updates"`
}

// BulkUpdateItem is one customer's patch within a bulk update.
type BulkUpdateItem struct {
	ID openapi_types.UUID `json:"id"`
	CustomerPatchRequest
}

// BulkUpdateResponse reports how many customers a bulk update changed.
type BulkUpdateResponse struct {
	Updated int `json:"updated"`
}

// ListCustomers handles GET /stores/{storeId}/customers.
// Filters: q, tags, minSpent, maxSpent, minOrders, maxOrders, sortBy.
// Paging: page and limit (defaults: page=1, limit=20, max=100).
func (s *Server) ListCustomers(w http.ResponseWriter, r *http.Request) {
	filters, err := customerFilters(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	params, err := pagination(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	page, err := s.customers.List(r.Context(), storeFrom(r.Context()).ID, filters, params.Page, params.Limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	data := make([]Customer, len(page.Customers))
	for i, c := range page.Customers {
		data[i] = customerToResponse(c)
	}
	writeJSON(w, http.StatusOK, ListResponse[Customer]{
		Data:       data,
		Pagination: paginationFrom(page.PageInfo, params.Limit),
	})
}

// CreateCustomer handles POST /stores/{storeId}/customers.
func (s *Server) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var body CreateCustomerRequest
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	c := domain.Customer{
		StoreID:     storeFrom(r.Context()).ID,
		DisplayName: body.DisplayName,
		Phone:       body.Phone,
		Address:     body.Address,
		Tags:        body.Tags,
		Notes:       body.Notes,
		OrderCount:  body.OrderCount,
		TotalSpent:  body.TotalSpent,
		CreatedAt:   body.CreatedAt,
		LastOrderAt: body.LastOrderAt,
	}
	if body.Email != nil {
		c.Email = string(*body.Email)
	}
	if body.Preferences != nil {
		c.Preferences = domain.Preferences(*body.Preferences)
	}

	created, err := s.customers.Create(r.Context(), c)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, customerToResponse(created))
}

// GetCustomer handles GET /stores/{storeId}/customers/{customerId}.
func (s *Server) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "customerId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	c, err := s.customers.GetByID(r.Context(), storeFrom(r.Context()).ID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customerToResponse(c))
}

// UpdateCustomer handles PATCH /stores/{storeId}/customers/{customerId}.
func (s *Server) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "customerId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body CustomerPatchRequest
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	updated, err := s.customers.Update(r.Context(), storeFrom(r.Context()).ID, id, body.toDomain())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customerToResponse(updated))
}

// DeleteCustomer handles DELETE /stores/{storeId}/customers/{customerId}.
// Deleting a customer that is already gone still returns 204.
func (s *Server) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "customerId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.customers.Delete(r.Context(), storeFrom(r.Context()).ID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BulkUpdateCustomers handles PATCH /stores/{storeId}/customers/bulk.
// The updates are applied all together or not at all.
func (s *Server) BulkUpdateCustomers(w http.ResponseWriter, r *http.Request) {
	var body BulkUpdateRequest
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	updates := make([]domain.CustomerUpdate, len(body.Updates))
	for i, u := range body.Updates {
		updates[i] = domain.CustomerUpdate{ID: u.ID, Patch: u.toDomain()}
	}

	if err := s.customers.BulkUpdate(r.Context(), storeFrom(r.Context()).ID, updates); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, BulkUpdateResponse{Updated: len(updates)})
}

// CustomerTag is one entry of GET /stores/{storeId}/customers/tags.
type CustomerTag struct {
	Name      string `json:"name"`
	Customers int    `json:"customers"`
}

// ListCustomerTags handles GET /stores/{storeId}/customers/tags.
// The optional ?prefix= narrows the list for autocompletion.
func (s *Server) ListCustomerTags(w http.ResponseWriter, r *http.Request) {
	var prefix *string
	if err := queryParam(r, "prefix", &prefix); err != nil {
		s.writeError(w, r, err)
		return
	}
	if prefix == nil {
		prefix = new(string)
	}

	tags, err := s.customers.ListTags(r.Context(), storeFrom(r.Context()).ID, *prefix)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]CustomerTag, len(tags))
	for i, t := range tags {
		out[i] = CustomerTag(t)
	}
	writeJSON(w, http.StatusOK, out)
}

// customerFilters binds the filter query parameters shared by list and export.
// Tags may be repeated (?tags=a&tags=b) or comma-separated (?tags=a,b).
func customerFilters(r *http.Request) (domain.CustomerFilters, error) {
	var (
		f      domain.CustomerFilters
		q      *string
		tags   *[]string
		sortBy *string
	)
	if err := queryParam(r, "q", &q); err != nil {
		return f, err
	}
	if err := queryParam(r, "tags", &tags); err != nil {
		return f, err
	}
	if err := queryParam(r, "minSpent", &f.MinSpent); err != nil {
		return f, err
	}
	if err := queryParam(r, "maxSpent", &f.MaxSpent); err != nil {
		return f, err
	}
	if err := queryParam(r, "minOrders", &f.MinOrders); err != nil {
		return f, err
	}
	if err := queryParam(r, "maxOrders", &f.MaxOrders); err != nil {
		return f, err
	}
	if err := queryParam(r, "sortBy", &sortBy); err != nil {
		return f, err
	}

	if q != nil {
		f.SearchQuery = *q
	}
	if tags != nil {
		for _, t := range *tags {
			for _, part := range strings.Split(t, ",") {
				if part = strings.TrimSpace(part); part != "" {
					f.Tags = append(f.Tags, part)
				}
			}
		}
	}
	if sortBy != nil {
		f.SortBy = domain.SortBy(*sortBy)
	}
	if f.MinSpent != nil && f.MaxSpent != nil && *f.MinSpent > *f.MaxSpent {
		return f, fmt.Errorf("%w: minSpent must not exceed maxSpent", domain.ErrValidation)
	}
	if f.MinOrders != nil && f.MaxOrders != nil && *f.MinOrders > *f.MaxOrders {
		return f, fmt.Errorf("%w: minOrders must not exceed maxOrders", domain.ErrValidation)
	}
	return f, nil
}

func (p CustomerPatchRequest) toDomain() domain.CustomerPatch {
	patch := domain.CustomerPatch{Tags: p.Tags, Notes: p.Notes, Address: p.Address}
	if p.Preferences != nil {
		prefs := domain.Preferences(*p.Preferences)
		patch.Preferences = &prefs
	}
	return patch
}

// customerToResponse converts a domain.Customer to its JSON shape.
// Tags are always an array, never null.
func customerToResponse(c domain.Customer) Customer {
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	return Customer{
		ID:          c.ID,
		StoreID:     c.StoreID,
		DisplayName: c.DisplayName,
		Email:       c.Email,
		Phone:       c.Phone,
		Address:     c.Address,
		CreatedAt:   c.CreatedAt,
		LastOrderAt: c.LastOrderAt,
		OrderCount:  c.OrderCount,
		TotalSpent:  c.TotalSpent,
		Tags:        tags,
		Notes:       c.Notes,
		Preferences: Preferences(c.Preferences),
		UpdatedAt:   c.UpdatedAt,
	}
}
