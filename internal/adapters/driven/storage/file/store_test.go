package file

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stockwatch/internal/core/domain"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "data", "products.json"), opts...)
	require.NoError(t, err)
	return store
}

func sampleProducts() []domain.Product {
	history := domain.NewPriceHistory([]domain.PricePoint{
		{At: time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC), Price: 129.99},
		{At: time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC), Price: 99.5},
	})
	return []domain.Product{
		{
			URL:           "https://shop.example/products/saber-1-7",
			Name:          "Saber 1/7 Scale",
			Image:         "https://cdn.example/saber.jpg",
			TargetPrice:   129.99,
			LastPrice:     99.5,
			LastStatus:    domain.StatusInStock,
			NotifyRestock: true,
			History:       history,
		},
		{
			URL:         "https://shop.example/products/miku",
			TargetPrice: 80,
			LastPrice:   80,
			LastStatus:  domain.StatusOutOfStock,
		},
	}
}

func writeLedger(t *testing.T, store *Store, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(store.Path(), []byte(content), 0o644))
}

func TestNewStore(t *testing.T) {
	t.Run("creates parent directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "dir")
		store, err := NewStore(filepath.Join(dir, "products.json"))
		require.NoError(t, err)

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
		assert.Equal(t, filepath.Join(dir, "products.json"), store.Path())
		assert.Equal(t, filepath.Join(dir, "products.json.lock"), store.LockPath())
	})

	t.Run("rejects empty path", func(t *testing.T) {
		_, err := NewStore("")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	products := sampleProducts()

	require.NoError(t, store.Save(ctx, products))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, products[0], loaded[0])
	assert.Equal(t, products[1].URL, loaded[1].URL)
	assert.Empty(t, loaded[1].History)
	assert.Equal(t, domain.StatusOutOfStock, loaded[1].LastStatus)
}

func TestStore_SaveFormat(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(context.Background(), sampleProducts()))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	var raw []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 2)

	keys := make([]string, 0, len(raw[0]))
	for k := range raw[0] {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{
		"url", "name", "image", "target_price", "last_price",
		"last_status", "notify_restock", "history",
	}, keys)

	assert.JSONEq(t, `"In Stock"`, string(raw[0]["last_status"]))
	assert.JSONEq(t, `"Out of Stock"`, string(raw[1]["last_status"]))
	assert.JSONEq(t, `{}`, string(raw[1]["history"]))

	// History keys are written oldest first.
	text := string(data)
	first := strings.Index(text, `"2025-03-01 08:00"`)
	second := strings.Index(text, `"2025-03-14 09:30"`)
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, second)
	assert.Less(t, first, second)
}

func TestStore_SaveLeavesNoTempFiles(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(context.Background(), sampleProducts()))

	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "products.json", entries[0].Name())
}

func TestStore_Load_ExistingLedgerFormat(t *testing.T) {
	store := newTestStore(t)
	writeLedger(t, store, `[
  {
    "url": "https://shop.example/products/rin?utm_source=x",
    "name": "Rin",
    "image": "//cdn.example/rin.jpg",
    "target_price": 45.0,
    "last_price": 42,
    "last_status": "Error",
    "notify_restock": false,
    "history": {"2024-12-01 10:00": 45.0, "2025-01-05 18:42": 42}
  }
]`)

	products, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)

	p := products[0]
	assert.Equal(t, "Rin", p.Name)
	assert.Equal(t, domain.StatusUnknown, p.LastStatus)
	assert.Equal(t, 42.0, p.LastPrice)
	require.Len(t, p.History, 2)
	assert.Equal(t, time.Date(2025, 1, 5, 18, 42, 0, 0, time.UTC), p.History[1].At)
	assert.Equal(t, 42.0, p.History[1].Price)
}

func TestStore_Load_Missing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_Load_Corrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"truncated json", `[{"url": "https://shop.example/a"`},
		{"not an array", `{"url": "https://shop.example/a"}`},
		{"history not an object", `[{"url": "https://shop.example/a", "history": [1, 2]}]`},
		{"bad history key", `[{"url": "https://shop.example/a", "history": {"yesterday": 5}}]`},
		{"history out of order", `[{"url": "https://shop.example/a", "history": {"2025-03-02 10:00": 5, "2025-03-01 10:00": 6}}]`},
		{"history repeated key", `[{"url": "https://shop.example/a", "history": {"2025-03-02 10:00": 5, "2025-03-02 10:00": 6}}]`},
		{"duplicate normalised urls", `[{"url": "https://shop.example/a"}, {"url": "https://SHOP.example/a/?utm_medium=x"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			writeLedger(t, store, tt.content)

			_, err := store.Load(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
			assert.NotErrorIs(t, err, domain.ErrNotFound)
		})
	}
}

func TestStore_Save_FailureKeepsPreviousLedger(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, sampleProducts()))
	before, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	bad := sampleProducts()
	bad[0].LastPrice = math.NaN()

	err = store.Save(ctx, bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	after, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestStore_Save_RenameFailureCleansUp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "products.json")
	// A directory at the ledger path makes the rename fail.
	require.NoError(t, os.Mkdir(path, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(path, "keep"), []byte("x"), 0o644))

	store, err := NewStore(path)
	require.NoError(t, err)

	err = store.Save(context.Background(), sampleProducts())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file should be removed")
}

func TestStore_Save_CancelledContext(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Save(ctx, sampleProducts())
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.ErrorIs(t, err, context.Canceled)

	_, statErr := os.Stat(store.Path())
	assert.True(t, os.IsNotExist(statErr))
}

func TestStore_Normalize(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		store := newTestStore(t)
		assert.Equal(t, "https://shop.example/products/a", store.Normalize("HTTPS://Shop.Example/products/a/?utm_source=x"))
	})

	t.Run("with base url", func(t *testing.T) {
		store := newTestStore(t, WithBaseURL("https://shop.example"))
		assert.Equal(t, "https://shop.example/products/a", store.Normalize("/products/a"))
	})
}
