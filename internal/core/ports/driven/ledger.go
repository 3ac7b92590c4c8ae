package driven

import (
	"context"

	"github.com/custodia-labs/stockwatch/internal/core/domain"
)

// LedgerStore persists the product ledger.
type LedgerStore interface {
	// Load returns the full ledger in stored order.
	// Fails with an error wrapping domain.ErrStoreUnavailable when the ledger
	// is absent, unreadable or corrupt. An absent ledger also matches
	// domain.ErrNotFound.
	Load(ctx context.Context) ([]domain.Product, error)

	// Save replaces the whole ledger. Readers observe either the previous
	// or the new ledger, never a mix. On failure the previous ledger is left
	// intact and the error wraps domain.ErrStoreUnavailable.
	Save(ctx context.Context, products []domain.Product) error

	// Normalize derives the ledger key for a raw listing URL.
	Normalize(rawURL string) string
}

// LedgerLocker is implemented by stores that can exclude concurrent writers
// across processes.
type LedgerLocker interface {
	// Lock acquires exclusive write access to the ledger.
	// Returns domain.ErrPassInProgress when another writer holds it.
	Lock(ctx context.Context) (unlock func() error, err error)
}

// LedgerWatcher is implemented by stores that can signal a newly
// published ledger.
type LedgerWatcher interface {
	// Watch sends on the returned channel after each publish until ctx is
	// cancelled. Signals may be coalesced.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
