package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/stockwatch/internal/core/domain"
	"github.com/custodia-labs/stockwatch/internal/core/ports/driven"
)

// Ensure LedgerStore implements the interfaces.
var (
	_ driven.LedgerStore   = (*LedgerStore)(nil)
	_ driven.LedgerLocker  = (*LedgerStore)(nil)
	_ driven.LedgerWatcher = (*LedgerStore)(nil)
)

// LedgerStore is an in-memory implementation of driven.LedgerStore.
// Products are copied on every read and write.
type LedgerStore struct {
	mu       sync.RWMutex
	products []domain.Product
	present  bool
	saves    int
	watchers []chan struct{}

	writer sync.Mutex
}

// NewLedgerStore creates a store holding a copy of products.
func NewLedgerStore(products []domain.Product) *LedgerStore {
	return &LedgerStore{
		products: cloneProducts(products),
		present:  true,
	}
}

// NewMissingLedgerStore creates a store with no ledger. Load fails with
// an error matching both domain.ErrStoreUnavailable and domain.ErrNotFound
// until the first Save.
func NewMissingLedgerStore() *LedgerStore {
	return &LedgerStore{}
}

// Load returns a copy of the stored products.
func (s *LedgerStore) Load(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.present {
		return nil, fmt.Errorf("%w: %w: no ledger", domain.ErrStoreUnavailable, domain.ErrNotFound)
	}
	return cloneProducts(s.products), nil
}

// Save replaces the stored products with a copy and signals watchers.
func (s *LedgerStore) Save(_ context.Context, products []domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = cloneProducts(products)
	s.present = true
	s.saves++

	for _, ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return nil
}

// Normalize derives the ledger key with domain.NormalizeURL.
func (s *LedgerStore) Normalize(rawURL string) string {
	return domain.NormalizeURL(rawURL)
}

// Lock excludes other writers within this process.
func (s *LedgerStore) Lock(_ context.Context) (func() error, error) {
	if !s.writer.TryLock() {
		return nil, domain.ErrPassInProgress
	}
	var once sync.Once
	return func() error {
		once.Do(s.writer.Unlock)
		return nil
	}, nil
}

// Watch signals after each Save until ctx is cancelled.
func (s *LedgerStore) Watch(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)

	s.mu.Lock()
	s.watchers = append(s.watchers, ch)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, w := range s.watchers {
			if w == ch {
				s.watchers = append(s.watchers[:i], s.watchers[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch, nil
}

// Saves returns how many times Save was called.
func (s *LedgerStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

func cloneProducts(products []domain.Product) []domain.Product {
	if products == nil {
		return nil
	}
	out := make([]domain.Product, len(products))
	for i := range products {
		out[i] = products[i].Clone()
	}
	return out
}
