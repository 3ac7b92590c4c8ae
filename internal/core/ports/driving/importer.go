package driving

import (
	"context"

	"github.com/custodia-labs/stockwatch/internal/core/domain"
)

// ImportService discovers new products and adds them to the ledger.
type ImportService interface {
	// Import observes the queries and adds untracked products.
	// Existing products are never modified.
	Import(ctx context.Context, queries []domain.CatalogQuery) (*domain.ImportResult, error)
}
