package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/stockwatch/internal/core/domain"
	"github.com/custodia-labs/stockwatch/internal/core/ports/driven"
	"github.com/custodia-labs/stockwatch/internal/core/ports/driving"
)

// Ensure CatalogService implements the interface.
var _ driving.CatalogService = (*CatalogService)(nil)

// CatalogService provides read-only access to the ledger for presentation.
// It takes no lock: each call reads the last published ledger.
type CatalogService struct {
	store driven.LedgerStore
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(store driven.LedgerStore) *CatalogService {
	return &CatalogService{store: store}
}

// List returns products matching the filter.
func (s *CatalogService) List(ctx context.Context, filter domain.CatalogFilter) ([]domain.Product, error) {
	if !filter.Status.IsValid() {
		return nil, fmt.Errorf("%w: status filter %q", domain.ErrInvalidInput, filter.Status)
	}
	if !filter.Sort.IsValid() {
		return nil, fmt.Errorf("%w: sort order %q", domain.ErrInvalidInput, filter.Sort)
	}

	products, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	result := make([]domain.Product, 0, len(products))
	for i := range products {
		p := &products[i]
		if !filter.Status.Matches(p.LastStatus) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		result = append(result, *p)
	}

	sortProducts(result, filter.Sort)

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

// Get returns the product tracked under the normalised form of rawURL.
func (s *CatalogService) Get(ctx context.Context, rawURL string) (*domain.Product, error) {
	products, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	key := s.store.Normalize(rawURL)
	for i := range products {
		if s.store.Normalize(products[i].URL) == key {
			return &products[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, key)
}

// sortProducts orders products in place. Ledger order breaks ties.
func sortProducts(products []domain.Product, order domain.SortOrder) {
	var less func(a, b *domain.Product) bool
	switch order {
	case domain.SortName:
		less = func(a, b *domain.Product) bool {
			return strings.ToLower(a.DisplayName()) < strings.ToLower(b.DisplayName())
		}
	case domain.SortPrice:
		less = func(a, b *domain.Product) bool { return a.LastPrice < b.LastPrice }
	case domain.SortPriceDesc:
		less = func(a, b *domain.Product) bool { return a.LastPrice > b.LastPrice }
	case domain.SortChange:
		less = func(a, b *domain.Product) bool { return a.PriceChange() < b.PriceChange() }
	default:
		return
	}
	sort.SliceStable(products, func(i, j int) bool {
		return less(&products[i], &products[j])
	})
}
