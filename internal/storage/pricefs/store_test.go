package pricefs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asafgelber/folio/internal/common"
	"github.com/asafgelber/folio/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(common.NewSilentLogger(), t.TempDir())
	require.NoError(t, err)
	return store
}

func TestCacheRoundTrip(t *testing.T) {
	store := newTestStore(t)

	// Empty store yields an empty cache, not an error.
	cache, err := store.LoadCache()
	require.NoError(t, err)
	assert.Empty(t, cache)

	price := 123.45
	cache = map[string]models.PriceData{
		"AAPL": {
			Symbol:    "AAPL",
			Currency:  models.CurrencyUSD,
			Price:     &price,
			Source:    models.PriceSourceLive,
			FetchedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		},
	}
	require.NoError(t, store.SaveCache(cache))

	loaded, err := store.LoadCache()
	require.NoError(t, err)
	require.Contains(t, loaded, "AAPL")
	got := loaded["AAPL"]
	require.NotNil(t, got.Price)
	assert.Equal(t, 123.45, *got.Price)
	assert.Equal(t, models.PriceSourceLive, got.Source)
	assert.True(t, got.FetchedAt.Equal(cache["AAPL"].FetchedAt))
}

func TestManualRoundTrip(t *testing.T) {
	store := newTestStore(t)

	manual, err := store.LoadManual()
	require.NoError(t, err)
	assert.Empty(t, manual)

	require.NoError(t, store.SaveManual(map[string]float64{"695437": 150.5}))

	loaded, err := store.LoadManual()
	require.NoError(t, err)
	assert.Equal(t, 150.5, loaded["695437"])
}

func TestSaveOverwrites(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveManual(map[string]float64{"A": 1}))
	require.NoError(t, store.SaveManual(map[string]float64{"B": 2}))

	loaded, err := store.LoadManual()
	require.NoError(t, err)
	assert.NotContains(t, loaded, "A")
	assert.Equal(t, 2.0, loaded["B"])
}

func TestNoTempFilesLeftBehind(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveCache(map[string]models.PriceData{}))

	entries, err := os.ReadDir(store.DataPath())
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-")
	}
}

func TestCorruptCacheFileErrors(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, os.WriteFile(filepath.Join(store.DataPath(), "price_cache.json"), []byte("{not json"), 0644))

	_, err := store.LoadCache()
	assert.Error(t, err)
}
