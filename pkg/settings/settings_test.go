package settings

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dashboard "github.com/TatoZhvania/Croco-Dashboard/components/dashboard"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "crocodash", FileName), nil)
	require.NoError(t, err)
	return store
}

func TestDefaults(t *testing.T) {
	store := openTemp(t)
	assert.Equal(t, dashboard.ThemeLight, store.Theme())
	assert.Empty(t, store.Token())
	order, err := store.CategoryOrder()
	require.NoError(t, err)
	assert.Empty(t, order)
}

func TestPersistsAcrossInstances(t *testing.T) {
	store := openTemp(t)
	require.NoError(t, store.SetTheme(dashboard.ThemeDark))
	require.NoError(t, store.SetToken("tok"))
	require.NoError(t, store.SetCategoryOrder(dashboard.CategoryOrder{"Ops": 0, "Docs": 1}))

	reopened, err := Open(store.Path(), nil)
	require.NoError(t, err)
	assert.Equal(t, dashboard.ThemeDark, reopened.Theme())
	assert.Equal(t, "tok", reopened.Token())
	order, err := reopened.CategoryOrder()
	require.NoError(t, err)
	assert.Equal(t, dashboard.CategoryOrder{"Ops": 0, "Docs": 1}, order)

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "dashboard_admin_token")
	assert.Contains(t, string(data), "categoryOrder")
}

func TestToggleTheme(t *testing.T) {
	store := openTemp(t)
	next, err := store.ToggleTheme()
	require.NoError(t, err)
	assert.Equal(t, dashboard.ThemeDark, next)
	next, err = store.ToggleTheme()
	require.NoError(t, err)
	assert.Equal(t, dashboard.ThemeLight, next)

	assert.True(t, dashboard.IsValidation(store.SetTheme("neon")))
}

func TestCategoryOrderIsCopied(t *testing.T) {
	store := openTemp(t)
	order := dashboard.CategoryOrder{"Ops": 0}
	require.NoError(t, store.SetCategoryOrder(order))
	order["Ops"] = 9

	got, err := store.CategoryOrder()
	require.NoError(t, err)
	got["Docs"] = 3

	again, err := store.CategoryOrder()
	require.NoError(t, err)
	assert.Equal(t, dashboard.CategoryOrder{"Ops": 0}, again)
}

func TestCacheServesReadsUntilInvalidated(t *testing.T) {
	store := openTemp(t)
	require.NoError(t, store.SetTheme(dashboard.ThemeDark))

	require.NoError(t, os.WriteFile(store.Path(), []byte(`{"theme":"light"}`), 0o600))
	assert.Equal(t, dashboard.ThemeDark, store.Theme(), "cached value")

	store.Invalidate()
	assert.Equal(t, dashboard.ThemeLight, store.Theme())
}

func TestWatchInvalidatesOnExternalChange(t *testing.T) {
	store := openTemp(t)
	require.NoError(t, store.SetTheme(dashboard.ThemeDark))
	w, err := store.Watch(context.Background())
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(store.Path(), []byte(`{"theme":"light","dashboard_admin_token":"new"}`), 0o600))
	require.Eventually(t, func() bool {
		return store.Token() == "new"
	}, 2*time.Second, 20*time.Millisecond)
	assert.Equal(t, dashboard.ThemeLight, store.Theme())
	require.NoError(t, w.Close())
}

func TestEngineSwapPersistsThroughSettings(t *testing.T) {
	store := openTemp(t)
	items := []dashboard.Item{{ID: "1", Category: "A"}, {ID: "2", Category: "B"}}
	order := dashboard.SwapCategoryRanks(dashboard.Derive(items, "", nil).Categories, nil, "A", "B")
	require.NoError(t, store.SetCategoryOrder(order))

	got, err := store.CategoryOrder()
	require.NoError(t, err)
	assert.Equal(t, dashboard.CategoryOrder{"A": 1, "B": 0}, got)
}
