package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/stockwatch/internal/core/domain"
	"github.com/custodia-labs/stockwatch/internal/core/ports/driven"
	"github.com/custodia-labs/stockwatch/internal/core/ports/driving"
	"github.com/custodia-labs/stockwatch/internal/logger"
)

// Ensure ImportService implements the interface.
var _ driving.ImportService = (*ImportService)(nil)

// ImportService adds newly discovered products to the ledger.
// It runs outside reconciliation passes and never modifies tracked products.
type ImportService struct {
	store  driven.LedgerStore
	source driven.ListingSource
}

// NewImportService creates a new import service.
func NewImportService(store driven.LedgerStore, source driven.ListingSource) *ImportService {
	return &ImportService{
		store:  store,
		source: source,
	}
}

// Import observes the catalog queries and adds untracked products with
// target and last price set to the observed price. An absent ledger is
// created.
func (s *ImportService) Import(ctx context.Context, queries []domain.CatalogQuery) (*domain.ImportResult, error) {
	if len(queries) == 0 {
		return nil, fmt.Errorf("%w: no catalog queries configured", domain.ErrInvalidInput)
	}

	if locker, ok := s.store.(driven.LedgerLocker); ok {
		unlock, err := locker.Lock(ctx)
		if err != nil {
			return nil, fmt.Errorf("lock ledger: %w", err)
		}
		defer func() {
			if err := unlock(); err != nil {
				logger.Warn("Release ledger lock: %v", err)
			}
		}()
	}

	products, err := s.store.Load(ctx)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, storeUnavailable("load ledger", err)
	}
	if err != nil {
		logger.Info("No ledger yet, creating one")
	}
	ledger, err := domain.NewLedger(products, s.store.Normalize)
	if err != nil {
		return nil, storeUnavailable("load ledger", err)
	}

	catalog := make([]domain.CatalogQuery, len(queries))
	for i, q := range queries {
		if q.Kind == "" {
			q.Kind = domain.QueryCatalog
		}
		catalog[i] = q
		logger.Info("Importing %s (%d pages)", q.Name, q.PageCount())
	}

	batch, fetchErr := s.source.Fetch(ctx, catalog)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("fetch listings: %w", ctxErr)
	}

	result := &domain.ImportResult{
		Seen:        len(batch),
		FetchErrors: logItemErrors(fetchErr),
	}
	for i := range batch {
		o := &batch[i]
		if ledger.Contains(ledger.Key(o.URL)) {
			result.Duplicates++
			continue
		}
		price, _ := o.KnownPrice()
		err := ledger.Add(domain.Product{
			URL:           o.URL,
			Name:          o.Name,
			Image:         domain.NormalizeImageURL(o.Image),
			TargetPrice:   price,
			LastPrice:     price,
			LastStatus:    o.Status,
			NotifyRestock: true,
		})
		if err != nil {
			logger.Warn("Skip listing %q: %v", o.URL, err)
			continue
		}
		result.Added++
	}

	if result.Added > 0 {
		if err := s.store.Save(ctx, ledger.Products()); err != nil {
			return nil, storeUnavailable("save ledger", err)
		}
	}

	logger.Info("Import complete: %d seen, %d added, %d already tracked", result.Seen, result.Added, result.Duplicates)
	return result, nil
}
