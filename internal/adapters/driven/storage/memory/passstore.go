package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/stockwatch/internal/core/domain"
	"github.com/custodia-labs/stockwatch/internal/core/ports/driven"
)

// Ensure PassStore implements the interface.
var _ driven.PassStore = (*PassStore)(nil)

// PassStore is an in-memory implementation of driven.PassStore.
type PassStore struct {
	mu     sync.RWMutex
	passes []domain.PassSummary
}

// NewPassStore creates a new in-memory pass store.
func NewPassStore() *PassStore {
	return &PassStore{}
}

// Record stores a pass summary.
func (s *PassStore) Record(_ context.Context, summary *domain.PassSummary) error {
	if summary == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.passes = append(s.passes, *summary)
	return nil
}

// List returns recent passes, most recent first.
func (s *PassStore) List(_ context.Context, limit int) ([]domain.PassSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newestFirst(s.passes, limit), nil
}

// newestFirst returns up to limit items from the end of items, reversed.
func newestFirst[T any](items []T, limit int) []T {
	n := len(items)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]T, 0, n)
	for i := len(items) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, items[i])
	}
	return out
}
