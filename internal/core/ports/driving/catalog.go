package driving

import (
	"context"

	"github.com/custodia-labs/stockwatch/internal/core/domain"
)

// CatalogService is the read-only view of the ledger used by presentation.
type CatalogService interface {
	// List returns products matching the filter.
	List(ctx context.Context, filter domain.CatalogFilter) ([]domain.Product, error)

	// Get returns the product tracked under the normalised form of rawURL.
	// Returns domain.ErrNotFound if it is not tracked.
	Get(ctx context.Context, rawURL string) (*domain.Product, error)
}
