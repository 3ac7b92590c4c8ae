package driven

import (
	"context"

	"github.com/custodia-labs/stockwatch/internal/core/domain"
)

// ListingSource produces observations of storefront listings.
type ListingSource interface {
	// Fetch observes every query and returns what it could read.
	// Per-item failures are returned joined (errors.Join) as
	// *domain.ItemError values wrapping domain.ErrFetch or domain.ErrParse,
	// alongside the partial batch. Context cancellation returns ctx.Err().
	Fetch(ctx context.Context, queries []domain.CatalogQuery) ([]domain.ObservedListing, error)
}
