package file

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfigStore(t *testing.T) (*ConfigStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	return store, dir
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0600))
}

const sampleConfig = `
[ledger]
path = "/data/products.json"

[source]
mode = "catalog"
concurrency = 3
requests_per_second = 1.5

[alerts]
drop_threshold = 0.05
notify_rises = true
rise_threshold = 1

[scheduler.ledger_reconcile]
interval = "30m"

[[catalog]]
name = "In Stock Items"
url = "https://shop.example/collections/scale?filter.v.availability=1"
pages = 34
default_status = "In Stock"

[[catalog]]
name = "Pre-Orders"
url = "https://shop.example/collections/pre-orders"
`

func TestNewConfigStore_Success(t *testing.T) {
	store, dir := newTestConfigStore(t)

	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot determine home directory")
	}

	dir, err := DefaultConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".stockwatch"), dir)
}

func TestNewConfigStore_WithNestedDirectory(t *testing.T) {
	nestedPath := filepath.Join(t.TempDir(), "nested", "deep", "path")

	store, err := NewConfigStore(nestedPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(nestedPath, "config.toml"), store.Path())

	info, err := os.Stat(nestedPath)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	// Directories cannot be created under a device file.
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "this is not valid TOML {{{[[")

	store, err := NewConfigStore(dir)
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_LoadNestedTables(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, sampleConfig)

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "/data/products.json", store.GetString("ledger.path"))
	assert.Equal(t, "catalog", store.GetString("source.mode"))
	assert.Equal(t, 3, store.GetInt("source.concurrency"))
	assert.Equal(t, 1.5, store.GetFloat("source.requests_per_second"))
	assert.Equal(t, 0.05, store.GetFloat("alerts.drop_threshold"))
	assert.True(t, store.GetBool("alerts.notify_rises"))
	assert.Equal(t, "30m", store.GetString("scheduler.ledger_reconcile.interval"))

	// Integer read as float
	assert.Equal(t, 1.0, store.GetFloat("alerts.rise_threshold"))

	catalog := store.GetMapSlice("catalog")
	require.Len(t, catalog, 2)
	assert.Equal(t, "In Stock Items", catalog[0]["name"])
	assert.Equal(t, int64(34), catalog[0]["pages"])
	assert.Equal(t, "Pre-Orders", catalog[1]["name"])
}

func TestConfigStore_TypedGettersMissingOrWrongType(t *testing.T) {
	store, _ := newTestConfigStore(t)
	require.NoError(t, store.Set("text", "hello"))

	_, ok := store.Get("missing")
	assert.False(t, ok)
	assert.Empty(t, store.GetString("missing"))
	assert.Zero(t, store.GetInt("text"))
	assert.Zero(t, store.GetFloat("text"))
	assert.False(t, store.GetBool("text"))
	assert.Nil(t, store.GetStringSlice("text"))
	assert.Nil(t, store.GetMapSlice("text"))
	assert.Nil(t, store.GetMapSlice("missing"))
}

func TestConfigStore_GetStringSlice(t *testing.T) {
	store, _ := newTestConfigStore(t)

	store.mu.Lock()
	store.data["mixed"] = []any{"a", int64(1), "b"}
	store.data["typed"] = []string{"x", "y"}
	store.mu.Unlock()

	assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("mixed"))
	assert.Equal(t, []string{"x", "y"}, store.GetStringSlice("typed"))
}

func TestConfigStore_SaveNestsTables(t *testing.T) {
	store, dir := newTestConfigStore(t)

	require.NoError(t, store.Set("source.mode", "product"))
	require.NoError(t, store.Set("scheduler.ledger_reconcile.enabled", false))
	require.NoError(t, store.Set("dispatch.interval", "1s"))

	data, err := os.ReadFile(filepath.Join(dir, ConfigFileName))
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "[source]")
	assert.Contains(t, text, "[scheduler.ledger_reconcile]")
	assert.NotContains(t, text, "'source.mode'")
}

func TestConfigStore_SaveReload_PreservesData(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, sampleConfig)

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("alerts.drop_threshold", 0.1))
	require.NoError(t, store.Set("source.base_url", "https://shop.example"))

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, 0.1, reloaded.GetFloat("alerts.drop_threshold"))
	assert.Equal(t, "https://shop.example", reloaded.GetString("source.base_url"))
	assert.Equal(t, 3, reloaded.GetInt("source.concurrency"))
	assert.Equal(t, "30m", reloaded.GetString("scheduler.ledger_reconcile.interval"))

	catalog := reloaded.GetMapSlice("catalog")
	require.Len(t, catalog, 2)
	assert.Equal(t, "In Stock", catalog[0]["default_status"])
}

func TestConfigStore_Save_Explicit(t *testing.T) {
	store, dir := newTestConfigStore(t)

	store.mu.Lock()
	store.data["manual.key"] = "manual_value"
	store.mu.Unlock()

	require.NoError(t, store.Save())

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "manual_value", reloaded.GetString("manual.key"))
}

func TestConfigStore_Save_WriteFileError(t *testing.T) {
	store, _ := newTestConfigStore(t)
	require.NoError(t, store.Set("test", "value"))

	// Replace the file with a directory to cause write error
	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	assert.Error(t, store.Set("another", "value"))
}

func TestConfigStore_SetWithUnmarshallableValue(t *testing.T) {
	store, _ := newTestConfigStore(t)

	// Channels cannot be marshaled to TOML
	assert.Error(t, store.Set("channel", make(chan int)))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, _ := newTestConfigStore(t)
	require.NoError(t, store.Set("key", "value"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_Load_InvalidTOML(t *testing.T) {
	store, _ := newTestConfigStore(t)
	require.NoError(t, store.Set("valid", "data"))

	require.NoError(t, os.WriteFile(store.Path(), []byte("invalid toml syntax ][}{"), 0600))
	assert.Error(t, store.Load())
}

func TestConfigStore_Load_CommentOnly(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "# Just a comment\n\n")

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	_, ok := store.Get("any_key")
	assert.False(t, ok)
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, _ := newTestConfigStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := "worker." + strings.Repeat("k", n+1)
			_ = store.Set(key, int64(n))
			_ = store.GetInt(key)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 9, store.GetInt("worker.kkkkkkkkkk"))
}

func TestFlattenMap(t *testing.T) {
	flat := flattenMap(map[string]any{
		"a":    map[string]any{"b": int64(1), "c": map[string]any{"d": "x"}},
		"list": []any{map[string]any{"k": "v"}},
	}, "")

	assert.Equal(t, map[string]any{
		"a.b":   int64(1),
		"a.c.d": "x",
		"list":  []any{map[string]any{"k": "v"}},
	}, flat)
}

func TestNestMap(t *testing.T) {
	t.Run("builds tables", func(t *testing.T) {
		nested := nestMap(map[string]any{
			"source.mode":                         "catalog",
			"source.concurrency":                  int64(2),
			"scheduler.ledger_reconcile.interval": "1h",
			"scheduler.enabled":                   true,
		})

		assert.Equal(t, map[string]any{"mode": "catalog", "concurrency": int64(2)}, nested["source"])

		scheduler, ok := nested["scheduler"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, true, scheduler["enabled"])
		assert.Equal(t, map[string]any{"interval": "1h"}, scheduler["ledger_reconcile"])
	})

	t.Run("value blocks table", func(t *testing.T) {
		nested := nestMap(map[string]any{"a": int64(1), "a.b": int64(2)})

		assert.Equal(t, map[string]any{"a": int64(1), "a.b": int64(2)}, nested)
		assert.Equal(t, map[string]any{"a": int64(1), "a.b": int64(2)}, flattenMap(nested, ""))
	})
}
