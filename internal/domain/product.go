package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product is an item a store sells.
type Product struct {
	ID          uuid.UUID
	StoreID     uuid.UUID
	Name        string
	Description string
	Price       float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ImportResult summarises a spreadsheet import.
// Rows are 1-indexed spreadsheet row numbers, so the header is row 1.
type ImportResult struct {
	Succeeded int
	Failed    int
	Errors    []ImportRowError
}

// ImportRowError records why a single spreadsheet row was not imported.
type ImportRowError struct {
	Row    int
	Reason string
}
