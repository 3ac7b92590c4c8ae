package driving

import (
	"context"

	"github.com/custodia-labs/stockwatch/internal/core/domain"
)

// PassHistory lists recorded reconciliation passes.
type PassHistory interface {
	// List returns recent passes, most recent first.
	// A limit of zero or less returns all passes.
	List(ctx context.Context, limit int) ([]domain.PassSummary, error)
}

// AlertHistory lists raised alerts.
type AlertHistory interface {
	// Recent returns the newest alerts, most recent first.
	Recent(ctx context.Context, limit int) ([]domain.Alert, error)
}

// CatalogWatcher signals when a new ledger has been published.
type CatalogWatcher interface {
	// Watch sends on the returned channel after each publish until ctx is
	// cancelled.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
