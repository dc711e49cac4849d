// Package domain contains the core data types for the Shopifree API.
// This package has almost no external dependencies and is imported by every
// other internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a shopper known to a single store.
// Identity fields are not validated for uniqueness. OrderCount and TotalSpent
// are aggregates maintained outside this service and are trusted as given.
type Customer struct {
	ID          uuid.UUID
	StoreID     uuid.UUID
	DisplayName string
	Email       string
	Phone       string
	Address     string

	// CreatedAt is nil for legacy documents that carry neither createdAt nor joinedAt.
	CreatedAt *time.Time
	// LastOrderAt is nil when the customer has no recorded activity.
	LastOrderAt *time.Time

	OrderCount int
	TotalSpent float64

	Tags        []string
	Notes       string
	Preferences Preferences

	UpdatedAt time.Time
}

// Preferences holds the customer's notification opt-ins.
type Preferences struct {
	Newsletter        bool `json:"newsletter"`
	NotifyOrderStatus bool `json:"notifyOrderStatus"`
}

// CustomerPatch is a partial update. Nil fields are left untouched.
// Only the merchant-editable fields appear here.
type CustomerPatch struct {
	Tags        *[]string
	Notes       *string
	Preferences *Preferences
	Address     *string
}

// IsEmpty reports whether the patch would change nothing.
func (p CustomerPatch) IsEmpty() bool {
	return p.Tags == nil && p.Notes == nil && p.Preferences == nil && p.Address == nil
}

// CustomerUpdate pairs a customer ID with the patch to apply, for batch writes.
type CustomerUpdate struct {
	ID    uuid.UUID
	Patch CustomerPatch
}

// MaxBatchSize is the largest number of writes a single batch may carry.
const MaxBatchSize = 500

// CustomerFilters narrows and orders a customer listing.
// Zero values mean "no filter"; nil range bounds are unbounded.
type CustomerFilters struct {
	SearchQuery string
	Tags        []string
	MinSpent    *float64
	MaxSpent    *float64
	MinOrders   *int
	MaxOrders   *int
	SortBy      SortBy
}

// CustomerPage is one page of a filtered, sorted customer listing.
type CustomerPage struct {
	Customers []Customer
	PageInfo
}

// SortBy selects the comparator applied to a customer listing.
type SortBy string

const (
	SortNameAsc       SortBy = "name-asc"
	SortNameDesc      SortBy = "name-desc"
	SortEmailAsc      SortBy = "email-asc"
	SortEmailDesc     SortBy = "email-desc"
	SortSpentAsc      SortBy = "spent-asc"
	SortSpentDesc     SortBy = "spent-desc"
	SortOrdersAsc     SortBy = "orders-asc"
	SortOrdersDesc    SortBy = "orders-desc"
	SortLastOrderAsc  SortBy = "last-order-asc"
	SortLastOrderDesc SortBy = "last-order-desc"
	SortCreatedAsc    SortBy = "created-asc"
	SortCreatedDesc   SortBy = "created-desc"
)

// DefaultSort is applied when a listing does not name a sort order.
const DefaultSort = SortCreatedDesc

// Valid reports whether s is one of the known sort orders.
func (s SortBy) Valid() bool {
	switch s {
	case SortNameAsc, SortNameDesc, SortEmailAsc, SortEmailDesc,
		SortSpentAsc, SortSpentDesc, SortOrdersAsc, SortOrdersDesc,
		SortLastOrderAsc, SortLastOrderDesc, SortCreatedAsc, SortCreatedDesc:
		return true
	}
	return false
}
