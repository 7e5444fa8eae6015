package sqlstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dashboard "github.com/TatoZhvania/Croco-Dashboard/components/dashboard"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "data", "croco.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCreateGetUpdateDelete(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	created, err := store.CreateItem(ctx, dashboard.Item{
		Name:        "Grafana",
		URL:         "https://grafana",
		Category:    "Ops",
		OrderIndex:  1.5,
		IsAdminOnly: true,
		Size:        dashboard.SizeLarge,
		Environment: dashboard.EnvProduction,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.False(t, created.CreatedAt.IsZero())

	got, err := store.GetItem(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grafana", got.Name)
	assert.Equal(t, 1.5, got.OrderIndex)
	assert.True(t, got.IsAdminOnly)
	assert.Equal(t, dashboard.SizeLarge, got.Size)
	assert.Equal(t, dashboard.EnvProduction, got.Environment)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))

	name := "Grafana Cloud"
	updated, err := store.UpdateItem(ctx, created.ID, dashboard.ItemPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, "Ops", updated.Category)

	_, err = store.UpdateItem(ctx, "missing", dashboard.ItemPatch{Name: &name})
	assert.ErrorIs(t, err, dashboard.ErrNotFound)

	require.NoError(t, store.DeleteItem(ctx, created.ID))
	assert.ErrorIs(t, store.DeleteItem(ctx, created.ID), dashboard.ErrNotFound)
	_, err = store.GetItem(ctx, created.ID)
	assert.ErrorIs(t, err, dashboard.ErrNotFound)
}

func TestListItemsOrdering(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	for _, item := range []dashboard.Item{
		{Name: "b", URL: "u", Category: "Ops", OrderIndex: 2},
		{Name: "a", URL: "u", Category: "Ops", OrderIndex: 1},
		{Name: "c", URL: "u", Category: "Docs", OrderIndex: 5},
	} {
		_, err := store.CreateItem(ctx, item)
		require.NoError(t, err)
	}
	items, err := store.ListItems(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{"c", "a", "b"}, names)
}

func TestReplaceItems(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	_, err := store.CreateItem(ctx, dashboard.Item{Name: "old", URL: "u"})
	require.NoError(t, err)

	n, err := store.ReplaceItems(ctx, []dashboard.Item{
		{ID: "keep-me-not", Name: "x", URL: "u"},
		{Name: "y", URL: "u"},
	}, true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	items, err := store.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, item := range items {
		assert.NotEqual(t, "keep-me-not", item.ID)
		assert.NotEqual(t, "old", item.Name)
	}
	assert.Equal(t, "x", items[0].Name, "import order is preserved through created_at")

	_, err = store.ReplaceItems(ctx, []dashboard.Item{{Name: "z", URL: "u"}}, false)
	require.NoError(t, err)
	items, err = store.ListItems(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestCategoryOrder(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.EnsureCategory(ctx, "Ops"))
	require.NoError(t, store.EnsureCategory(ctx, "Docs"))
	require.NoError(t, store.EnsureCategory(ctx, "Ops"))

	order, err := store.CategoryOrder(ctx)
	require.NoError(t, err)
	assert.Equal(t, dashboard.CategoryOrder{"Ops": 0, "Docs": 1}, order)

	require.NoError(t, store.SaveCategoryOrder(ctx, dashboard.CategoryOrder{"Ops": 3, "Tools": 2}))
	require.NoError(t, store.DeleteCategoryOrder(ctx, "Docs"))
	order, err = store.CategoryOrder(ctx)
	require.NoError(t, err)
	assert.Equal(t, dashboard.CategoryOrder{"Ops": 3, "Tools": 2}, order)
}

func TestServiceOverSQLite(t *testing.T) {
	store := openTestStore(t)
	service := dashboard.NewService(dashboard.Options{Items: store})
	admin := dashboard.ContextWithViewer(context.Background(), dashboard.ViewerContext{Admin: true})

	item, err := service.CreateItem(admin, dashboard.ItemInput{Name: "Wiki", URL: "https://wiki", Category: "Docs"})
	require.NoError(t, err)
	assert.Equal(t, dashboard.DefaultItemIcon, item.Icon)

	order, err := service.CategoryOrder(context.Background())
	require.NoError(t, err)
	assert.Contains(t, order, "Docs")
}
