package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stockwatch/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/stockwatch/internal/core/domain"
)

var importQueries = []domain.CatalogQuery{
	{Name: "In Stock Items", URL: "https://shop.example/collections/scale", Pages: 2, DefaultStatus: domain.StatusInStock},
}

func TestImportService_AddsNewProducts(t *testing.T) {
	store := memory.NewLedgerStore([]domain.Product{trackedFigure()})
	source := &mockListingSource{listings: []domain.ObservedListing{
		{URL: figureURL + "?_pos=1", Price: 55, Status: domain.StatusInStock, Name: "Figure A renamed"},
		{URL: "https://shop.example/products/figure-b", Price: 129.99, Status: domain.StatusInStock, Name: "Figure B", Image: "//cdn.example/b.jpg"},
		{URL: "https://shop.example/products/figure-b?_pos=7", Price: 129.99, Status: domain.StatusInStock, Name: "Figure B"},
	}}
	svc := NewImportService(store, source)

	result, err := svc.Import(context.Background(), importQueries)
	require.NoError(t, err)

	assert.Equal(t, &domain.ImportResult{Seen: 3, Added: 1, Duplicates: 2}, result)

	products, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)

	// existing product untouched
	assert.Equal(t, trackedFigure(), products[0])

	added := products[1]
	assert.Equal(t, "Figure B", added.Name)
	assert.Equal(t, "https://cdn.example/b.jpg", added.Image)
	assert.Equal(t, 129.99, added.TargetPrice)
	assert.Equal(t, 129.99, added.LastPrice)
	assert.Equal(t, domain.StatusInStock, added.LastStatus)
	assert.True(t, added.NotifyRestock)
	assert.Empty(t, added.History)

	queries := source.lastQueries()
	require.Len(t, queries, 1)
	assert.Equal(t, domain.QueryCatalog, queries[0].Kind)
}

func TestImportService_CreatesMissingLedger(t *testing.T) {
	store := memory.NewMissingLedgerStore()
	source := &mockListingSource{listings: []domain.ObservedListing{
		{URL: "https://shop.example/products/figure-c", Price: 80, Status: domain.StatusOutOfStock, Name: "Figure C"},
	}}

	result, err := NewImportService(store, source).Import(context.Background(), importQueries)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Added)

	products, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, domain.StatusOutOfStock, products[0].LastStatus)
}

func TestImportService_NothingNewSkipsSave(t *testing.T) {
	store := memory.NewLedgerStore([]domain.Product{trackedFigure()})
	source := &mockListingSource{listings: []domain.ObservedListing{
		{URL: figureURL, Price: 100, Status: domain.StatusInStock},
	}}

	result, err := NewImportService(store, source).Import(context.Background(), importQueries)
	require.NoError(t, err)

	assert.Zero(t, result.Added)
	assert.Zero(t, store.Saves())
}

func TestImportService_FetchErrorsCounted(t *testing.T) {
	store := memory.NewLedgerStore(nil)
	source := &mockListingSource{
		listings: []domain.ObservedListing{{URL: "https://shop.example/products/d", Price: 10, Status: domain.StatusInStock}},
		err:      errors.Join(domain.NewItemError("https://shop.example/collections/scale?page=2", domain.ErrFetch)),
	}

	result, err := NewImportService(store, source).Import(context.Background(), importQueries)
	require.NoError(t, err)
	assert.Equal(t, 1, result.FetchErrors)
	assert.Equal(t, 1, result.Added)
}

func TestImportService_NoQueries(t *testing.T) {
	svc := NewImportService(memory.NewLedgerStore(nil), &mockListingSource{})

	_, err := svc.Import(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestImportService_SaveFailure(t *testing.T) {
	inner := memory.NewLedgerStore(nil)
	store := &failingLedgerStore{LedgerStore: inner, failSave: true}
	source := &mockListingSource{listings: []domain.ObservedListing{
		{URL: "https://shop.example/products/e", Price: 10, Status: domain.StatusInStock},
	}}

	_, err := NewImportService(store, source).Import(context.Background(), importQueries)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
