package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/GiacomoGonzales/shopifree/internal/domain"
)

// ListTags returns every distinct tag used by the store's customers, ordered
// by name. prefix narrows the result case-insensitively; empty means all.
// A customer is counted once per tag even if a legacy document repeats it.
func (s *CustomerService) ListTags(ctx context.Context, storeID uuid.UUID, prefix string) ([]domain.TagCount, error) {
	all, err := s.customers.ListByStore(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("service.CustomerService.ListTags: %w", err)
	}

	prefix = strings.ToLower(strings.TrimSpace(prefix))
	counts := make(map[string]int)
	for _, c := range all {
		for _, tag := range normalizeTags(c.Tags) {
			if strings.HasPrefix(strings.ToLower(tag), prefix) {
				counts[tag]++
			}
		}
	}

	out := make([]domain.TagCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, domain.TagCount{Name: name, Customers: n})
	}
	slices.SortFunc(out, func(a, b domain.TagCount) int {
		if c := cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out, nil
}
