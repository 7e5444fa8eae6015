package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHook struct {
	mu     sync.Mutex
	events []ItemEvent
}

func (h *recordingHook) ItemsChanged(_ context.Context, event ItemEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return nil
}

type recordingTelemetry struct {
	events []string
}

func (t *recordingTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	t.events = append(t.events, event)
}

func newTestService(t *testing.T) (*Service, *InMemoryItemStore, *recordingHook) {
	t.Helper()
	auth, err := NewStaticAuthenticator(AdminCredentials{Username: "admin", Password: "secret", Token: "tok"})
	require.NoError(t, err)
	store := NewInMemoryItemStore()
	hook := &recordingHook{}
	svc := NewService(Options{Items: store, Auth: auth, RefreshHook: hook})
	return svc, store, hook
}

func adminCtx() context.Context {
	return ContextWithViewer(context.Background(), ViewerContext{Username: "admin", Admin: true})
}

func TestCreateItemAppliesDefaults(t *testing.T) {
	svc, store, hook := newTestService(t)

	item, err := svc.CreateItem(adminCtx(), ItemInput{Name: " Grafana ", URL: "https://grafana"})
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "Grafana", item.Name)
	assert.Equal(t, DefaultItemIcon, item.Icon)
	assert.Equal(t, DefaultCategory, item.Category)
	assert.Equal(t, DefaultCategoryIcon, item.CategoryIcon)
	assert.Equal(t, SizeMedium, item.Size)
	assert.Equal(t, EnvCommon, item.Environment)

	order, err := store.CategoryOrder(context.Background())
	require.NoError(t, err)
	assert.Equal(t, CategoryOrder{DefaultCategory: 0}, order)
	require.Len(t, hook.events, 1)
	assert.Equal(t, "create", hook.events[0].Reason)
}

func TestCreateItemRequiresNameAndURL(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.CreateItem(adminCtx(), ItemInput{Name: "only name"})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "Missing required fields")
}

func TestMutationsRequireAdmin(t *testing.T) {
	svc, _, _ := newTestService(t)
	guest := context.Background()

	_, err := svc.CreateItem(guest, ItemInput{Name: "a", URL: "b"})
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.UpdateItem(guest, "x", ItemPatch{})
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.ErrorIs(t, svc.DeleteItem(guest, "x"), ErrUnauthorized)
	_, err = svc.Export(guest)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.ErrorIs(t, svc.SaveCategoryOrder(guest, CategoryOrder{"a": 1}), ErrUnauthorized)
}

func TestUpdateItemPartial(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := adminCtx()
	item, err := svc.CreateItem(ctx, ItemInput{Name: "A", URL: "https://a", Description: "keep"})
	require.NoError(t, err)

	_, err = svc.UpdateItem(ctx, item.ID, ItemPatch{})
	assert.ErrorIs(t, err, ErrNoChanges)

	name := "B"
	updated, err := svc.UpdateItem(ctx, item.ID, ItemPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "B", updated.Name)
	assert.Equal(t, "keep", updated.Description)

	_, err = svc.UpdateItem(ctx, "missing", ItemPatch{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)

	huge := ItemSize("huge")
	_, err = svc.UpdateItem(ctx, item.ID, ItemPatch{Size: &huge})
	assert.True(t, IsValidation(err))
}

func TestListItemsHidesAdminOnlyFromGuests(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := adminCtx()
	_, err := svc.CreateItem(ctx, ItemInput{Name: "public", URL: "u"})
	require.NoError(t, err)
	secret, err := svc.CreateItem(ctx, ItemInput{Name: "secret", URL: "u", IsAdminOnly: true})
	require.NoError(t, err)

	guestItems, err := svc.ListItems(context.Background())
	require.NoError(t, err)
	assert.Len(t, guestItems, 1)

	adminItems, err := svc.ListItems(ctx)
	require.NoError(t, err)
	assert.Len(t, adminItems, 2)

	_, err = svc.GetItem(context.Background(), secret.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExportImportRoundTrip(t *testing.T) {
	svc, _, hook := newTestService(t)
	ctx := adminCtx()
	for _, in := range []ItemInput{
		{Name: "A", URL: "https://a", Category: "Tools"},
		{Name: "B", URL: "https://b", Category: "Monitoring", OrderIndex: 2},
		{Name: "C", URL: "https://c", Category: "Monitoring", OrderIndex: 1, IsAdminOnly: true},
	} {
		_, err := svc.CreateItem(ctx, in)
		require.NoError(t, err)
	}
	exported, err := svc.Export(ctx)
	require.NoError(t, err)
	require.Len(t, exported.Items, 3)

	result, err := svc.Import(ctx, ImportRequest{Items: exported.Items, ReplaceExisting: true})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Imported)

	after, err := svc.ListItems(ctx)
	require.NoError(t, err)
	type key struct{ name, url, category string }
	var before, now []key
	for _, item := range exported.Items {
		before = append(before, key{item.Name, item.URL, item.Category})
	}
	for _, item := range after {
		now = append(now, key{item.Name, item.URL, item.Category})
		for _, old := range exported.Items {
			assert.NotEqual(t, old.ID, item.ID, "ids are reassigned")
		}
	}
	assert.ElementsMatch(t, before, now)
	assert.Equal(t, "import", hook.events[len(hook.events)-1].Reason)
}

func TestImportAppendsWithoutReplace(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := adminCtx()
	_, err := svc.CreateItem(ctx, ItemInput{Name: "A", URL: "https://a"})
	require.NoError(t, err)

	_, err = svc.Import(ctx, ImportRequest{Items: []Item{{Name: "B", URL: "https://b"}}})
	require.NoError(t, err)
	items, err := svc.ListItems(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	_, err = svc.Import(ctx, ImportRequest{Items: []Item{{Name: "", URL: "x"}}})
	assert.True(t, IsValidation(err))
}

func TestDecodeImportValidatesSchema(t *testing.T) {
	svc, _, _ := newTestService(t)
	req, err := svc.DecodeImport([]byte(`{"items":[{"name":"A","url":"https://a","category_icon":"Server"}],"replaceExisting":true}`))
	require.NoError(t, err)
	assert.True(t, req.ReplaceExisting)
	assert.Equal(t, "Server", req.Items[0].CategoryIcon)

	_, err = svc.DecodeImport([]byte(`{"items":"nope"}`))
	assert.True(t, IsValidation(err))
}

func TestLoginAndAuthenticate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	result, err := svc.Login(ctx, "admin", "secret")
	require.NoError(t, err)
	assert.Equal(t, LoginResult{Token: "tok", Role: "admin", Username: "admin"}, result)

	_, err = svc.Login(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "", "")
	assert.True(t, IsValidation(err))

	viewer, err := svc.Authenticate(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, viewer.Admin)
	_, err = svc.Authenticate(ctx, "nope")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCategoryOrderOperations(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := adminCtx()

	require.NoError(t, svc.SaveCategoryOrder(ctx, CategoryOrder{"Tools": 3, "Monitoring": 1}))
	_, err := svc.CreateItem(ctx, ItemInput{Name: "A", URL: "u", Category: "New"})
	require.NoError(t, err)

	order, err := svc.CategoryOrder(context.Background())
	require.NoError(t, err)
	assert.Equal(t, CategoryOrder{"Tools": 3, "Monitoring": 1, "New": 4}, order)
	assert.Equal(t, []string{"Monitoring", "Tools", "New"}, SortedCategoryNames(order))

	require.NoError(t, svc.DeleteCategoryOrder(ctx, "Tools"))
	order, err = svc.CategoryOrder(ctx)
	require.NoError(t, err)
	assert.NotContains(t, order, "Tools")
}

func TestCategoryCountsFollowOrder(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := adminCtx()
	for _, in := range []ItemInput{
		{Name: "A", URL: "u", Category: "Tools"},
		{Name: "B", URL: "u", Category: "Tools"},
		{Name: "C", URL: "u", Category: "Monitoring", CategoryIcon: "Activity"},
	} {
		_, err := svc.CreateItem(ctx, in)
		require.NoError(t, err)
	}
	counts, err := svc.CategoryCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []CategoryCount{
		{Category: "Tools", Icon: "Folder", Count: 2},
		{Category: "Monitoring", Icon: "Activity", Count: 1},
	}, counts)
}

func TestServiceRecordsTelemetry(t *testing.T) {
	telemetry := &recordingTelemetry{}
	svc := NewService(Options{Items: NewInMemoryItemStore(), Telemetry: telemetry})
	_, err := svc.CreateItem(adminCtx(), ItemInput{Name: "A", URL: "u"})
	require.NoError(t, err)
	assert.Contains(t, telemetry.events, "dashboard.item.create")
}

func TestServiceWithoutStore(t *testing.T) {
	svc := NewService(Options{})
	_, err := svc.ListItems(context.Background())
	assert.True(t, errors.Is(err, errMissingItemStore))
	_, err = svc.CategoryOrder(context.Background())
	assert.True(t, errors.Is(err, errMissingOrderStore))
}
