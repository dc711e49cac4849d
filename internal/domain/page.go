package domain

import "math"

// PaginationParams carries page/limit values from the HTTP layer to the repo layer.
// Page is 1-indexed. Limit is capped at 100 by NewPaginationParams.
type PaginationParams struct {
	// Page is the current page number, starting at 1.
	Page int
	// Limit is the maximum number of items to return.
	Limit int
}

// NewPaginationParams builds a PaginationParams from optional HTTP query params.
// Nil pointers fall back to sane defaults (page=1, limit=20).
// The limit is capped at 100 to prevent runaway queries.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: 20}
	if page != nil && *page >= 1 {
		p.Page = *page
	}
	if limit != nil && *limit >= 1 {
		p.Limit = *limit
		if p.Limit > 100 {
			p.Limit = 100
		}
	}
	return p
}

// Offset returns the zero-based row offset for a SQL OFFSET clause.
// Offsets that do not fit an int saturate at math.MaxInt.
func (p PaginationParams) Offset() int {
	if p.Limit > 0 && p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// PageInfo describes where a page sits within a filtered result set.
type PageInfo struct {
	TotalItems      int
	TotalPages      int
	CurrentPage     int
	HasNextPage     bool
	HasPreviousPage bool
}

// NewPageInfo computes page metadata for totalItems split into pages of
// perPage items. A non-positive perPage means the whole set is one page.
// An empty set has zero pages. page is reported as given, never clamped.
func NewPageInfo(totalItems, page, perPage int) PageInfo {
	info := PageInfo{TotalItems: totalItems, CurrentPage: page}
	switch {
	case totalItems == 0:
		info.TotalPages = 0
	case perPage <= 0:
		info.TotalPages = 1
	default:
		info.TotalPages = (totalItems-1)/perPage + 1
	}
	info.HasNextPage = page < info.TotalPages
	info.HasPreviousPage = page > 1
	return info
}

// Bounds returns the half-open [start, end) slice indexes of page within a set
// of totalItems. Out-of-range pages yield an empty range at the end of the set.
func (pi PageInfo) Bounds(perPage int) (start, end int) {
	if perPage <= 0 {
		if pi.CurrentPage == 1 {
			return 0, pi.TotalItems
		}
		return pi.TotalItems, pi.TotalItems
	}
	if pi.CurrentPage < 1 || pi.CurrentPage > pi.TotalPages {
		return pi.TotalItems, pi.TotalItems
	}
	start = (pi.CurrentPage - 1) * perPage
	end = pi.TotalItems
	if perPage < end-start {
		end = start + perPage
	}
	return start, end
}
