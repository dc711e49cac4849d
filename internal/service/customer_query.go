package service

import (
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/GiacomoGonzales/shopifree/internal/domain"
)

// filterCustomers keeps the customers that satisfy every active predicate in f.
// The result is a new slice; the input is not modified.
func filterCustomers(all []domain.Customer, f domain.CustomerFilters) []domain.Customer {
	query := strings.ToLower(strings.TrimSpace(f.SearchQuery))

	out := make([]domain.Customer, 0, len(all))
	for _, c := range all {
		if query != "" && !matchesSearch(c, query) {
			continue
		}
		if len(f.Tags) > 0 && !sharesTag(c.Tags, f.Tags) {
			continue
		}
		if f.MinSpent != nil && c.TotalSpent < *f.MinSpent {
			continue
		}
		if f.MaxSpent != nil && c.TotalSpent > *f.MaxSpent {
			continue
		}
		if f.MinOrders != nil && c.OrderCount < *f.MinOrders {
			continue
		}
		if f.MaxOrders != nil && c.OrderCount > *f.MaxOrders {
			continue
		}
		out = append(out, c)
	}
	return out
}

// matchesSearch reports whether the lowercased query is a substring of the
// customer's name, email, or phone.
func matchesSearch(c domain.Customer, query string) bool {
	return strings.Contains(strings.ToLower(c.DisplayName), query) ||
		strings.Contains(strings.ToLower(c.Email), query) ||
		strings.Contains(strings.ToLower(c.Phone), query)
}

// sharesTag reports whether have and want have at least one tag in common.
func sharesTag(have, want []string) bool {
	for _, w := range want {
		if slices.Contains(have, w) {
			return true
		}
	}
	return false
}

// sortCustomers orders cs in place. The sort is stable, so ties keep storage order.
// Customers missing the relevant timestamp always sort after those that have it.
func sortCustomers(cs []domain.Customer, by domain.SortBy) {
	var less func(a, b domain.Customer) bool

	switch by {
	case domain.SortNameAsc:
		less = func(a, b domain.Customer) bool { return foldLess(a.DisplayName, b.DisplayName) }
	case domain.SortNameDesc:
		less = func(a, b domain.Customer) bool { return foldLess(b.DisplayName, a.DisplayName) }
	case domain.SortEmailAsc:
		less = func(a, b domain.Customer) bool { return foldLess(a.Email, b.Email) }
	case domain.SortEmailDesc:
		less = func(a, b domain.Customer) bool { return foldLess(b.Email, a.Email) }
	case domain.SortSpentAsc:
		less = func(a, b domain.Customer) bool { return a.TotalSpent < b.TotalSpent }
	case domain.SortSpentDesc:
		less = func(a, b domain.Customer) bool { return a.TotalSpent > b.TotalSpent }
	case domain.SortOrdersAsc:
		less = func(a, b domain.Customer) bool { return a.OrderCount < b.OrderCount }
	case domain.SortOrdersDesc:
		less = func(a, b domain.Customer) bool { return a.OrderCount > b.OrderCount }
	case domain.SortLastOrderAsc:
		less = func(a, b domain.Customer) bool { return timeLess(a.LastOrderAt, b.LastOrderAt, false) }
	case domain.SortLastOrderDesc:
		less = func(a, b domain.Customer) bool { return timeLess(a.LastOrderAt, b.LastOrderAt, true) }
	case domain.SortCreatedAsc:
		less = func(a, b domain.Customer) bool { return timeLess(a.CreatedAt, b.CreatedAt, false) }
	default:
		less = func(a, b domain.Customer) bool { return timeLess(a.CreatedAt, b.CreatedAt, true) }
	}

	sort.SliceStable(cs, func(i, j int) bool { return less(cs[i], cs[j]) })
}

// foldLess compares strings case-insensitively.
func foldLess(a, b string) bool {
	return strings.ToLower(a) < strings.ToLower(b)
}

// timeLess orders two optional timestamps. A nil timestamp is never less than
// a set one, in either direction.
func timeLess(a, b *time.Time, desc bool) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	case desc:
		return a.After(*b)
	default:
		return a.Before(*b)
	}
}

// paginate cuts one page out of an already filtered and sorted set.
// A non-positive perPage returns the whole set as page 1.
func paginate(cs []domain.Customer, page, perPage int) domain.CustomerPage {
	info := domain.NewPageInfo(len(cs), page, perPage)
	start, end := info.Bounds(perPage)

	out := make([]domain.Customer, end-start)
	copy(out, cs[start:end])
	return domain.CustomerPage{Customers: out, PageInfo: info}
}
