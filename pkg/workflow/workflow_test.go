package workflow

import (
	"context"
	"errors"
	"testing"

	dashboard "github.com/TatoZhvania/Croco-Dashboard/components/dashboard"
	"github.com/TatoZhvania/Croco-Dashboard/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	admin    bool
	loginErr error
}

func (s *fakeSession) IsAdmin() bool { return s.admin }

func (s *fakeSession) Login(_ context.Context, username, password string) (dashboard.LoginResult, error) {
	if s.loginErr != nil {
		return dashboard.LoginResult{}, s.loginErr
	}
	s.admin = true
	return dashboard.LoginResult{Token: "tok", Role: "admin", Username: username}, nil
}

func (s *fakeSession) Logout() error {
	s.admin = false
	return nil
}

type patchCall struct {
	id    string
	patch dashboard.ItemPatch
}

type fakeItems struct {
	items     []dashboard.Item
	created   []dashboard.ItemInput
	updates   []patchCall
	removed   []string
	cleared   []string
	refreshes int
	updateErr map[string]error
}

func (f *fakeItems) Items() []dashboard.Item { return f.items }

func (f *fakeItems) Refresh(context.Context) error {
	f.refreshes++
	return nil
}

func (f *fakeItems) Create(_ context.Context, input dashboard.ItemInput) (string, error) {
	f.created = append(f.created, input)
	return "new-id", nil
}

func (f *fakeItems) Update(_ context.Context, id string, patch dashboard.ItemPatch) error {
	if err := f.updateErr[id]; err != nil {
		return err
	}
	f.updates = append(f.updates, patchCall{id: id, patch: patch})
	return nil
}

func (f *fakeItems) Remove(_ context.Context, id string) error {
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeItems) RemoveByCategory(_ context.Context, category string) (client.BatchResult, error) {
	f.cleared = append(f.cleared, category)
	return client.BatchResult{Category: category, Deleted: []string{"a"}}, nil
}

type fakeImporter struct {
	requests []dashboard.ImportRequest
	err      error
}

func (f *fakeImporter) Import(_ context.Context, req dashboard.ImportRequest) (dashboard.ImportResult, error) {
	if f.err != nil {
		return dashboard.ImportResult{}, f.err
	}
	f.requests = append(f.requests, req)
	return dashboard.ImportResult{Imported: len(req.Items)}, nil
}

func newController(t *testing.T, admin bool) (*Controller, *fakeSession, *fakeItems, *fakeImporter) {
	t.Helper()
	session := &fakeSession{admin: admin}
	items := &fakeItems{
		items: []dashboard.Item{
			{ID: "a", Name: "Grafana", Category: "Ops", OrderIndex: 0},
			{ID: "b", Name: "Kibana", Category: "Ops", CategoryIcon: "Server", OrderIndex: 1},
			{ID: "c", Name: "Docs", Category: "Reading"},
		},
	}
	importer := &fakeImporter{}
	ctrl, err := New(Options{Session: session, Items: items, Importer: importer})
	require.NoError(t, err)
	return ctrl, session, items, importer
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Options{Items: &fakeItems{}})
	require.Error(t, err)
	_, err = New(Options{Session: &fakeSession{}})
	require.Error(t, err)
}

func TestGuestIsRedirectedToLogin(t *testing.T) {
	ctrl, _, _, _ := newController(t, false)

	for _, m := range []Modal{ModalAddItem, ModalEditItem, ModalDeleteItem, ModalDeleteCategory, ModalEditCategory, ModalImport} {
		assert.Equal(t, ModalLogin, ctrl.Open(m, "a"), "modal %s", m)
		assert.Empty(t, ctrl.State().Target)
	}
	assert.Equal(t, ModalLogoutConfirm, ctrl.Open(ModalLogoutConfirm, ""))
}

func TestOnlyOneModalIsOpen(t *testing.T) {
	ctrl, _, _, _ := newController(t, true)

	ctrl.Open(ModalEditItem, "a")
	ctrl.Open(ModalDeleteItem, "b")

	state := ctrl.State()
	assert.Equal(t, ModalDeleteItem, state.Modal)
	assert.Equal(t, "b", state.Target)

	ctrl.Close()
	assert.Equal(t, ModalNone, ctrl.State().Modal)
}

func TestEditModeRequiresManagement(t *testing.T) {
	ctrl, session, _, _ := newController(t, false)

	err := ctrl.SetEditMode(true)
	require.ErrorIs(t, err, dashboard.ErrUnauthorized)
	assert.False(t, ctrl.EditMode())
	assert.Equal(t, ModalLogin, ctrl.State().Modal)

	session.admin = true
	require.NoError(t, ctrl.SetEditMode(true))
	assert.True(t, ctrl.EditMode())
}

func TestLosingAdminClosesDialogsAndLeavesEditMode(t *testing.T) {
	ctrl, session, _, _ := newController(t, true)
	require.NoError(t, ctrl.SetEditMode(true))
	ctrl.Open(ModalEditItem, "a")

	session.admin = false
	ctrl.SessionChanged()

	state := ctrl.State()
	assert.False(t, state.EditMode)
	assert.Equal(t, ModalNone, state.Modal)
}

func TestPendingMoveConfirm(t *testing.T) {
	ctrl, _, items, _ := newController(t, true)
	category := "Reading"
	move := dashboard.PendingMove{
		ItemID:       "c",
		FromCategory: "Reading",
		ToCategory:   "Ops",
		Updates:      dashboard.ItemPatch{Category: &category},
	}

	ctrl.RaisePendingMove(move)
	state := ctrl.State()
	require.NotNil(t, state.Pending)
	assert.Equal(t, ModalMoveConfirm, state.Modal)

	require.NoError(t, ctrl.ConfirmMove(context.Background()))
	require.Len(t, items.updates, 1)
	assert.Equal(t, "c", items.updates[0].id)
	assert.Nil(t, ctrl.State().Pending)
	assert.Equal(t, ModalNone, ctrl.State().Modal)

	require.ErrorIs(t, ctrl.ConfirmMove(context.Background()), ErrNoPendingMove)
}

func TestPendingMoveFailureKeepsMove(t *testing.T) {
	ctrl, _, items, _ := newController(t, true)
	items.updateErr = map[string]error{"c": errors.New("boom")}

	ctrl.RaisePendingMove(dashboard.PendingMove{ItemID: "c"})
	require.Error(t, ctrl.ConfirmMove(context.Background()))
	assert.NotNil(t, ctrl.State().Pending)

	ctrl.CancelMove()
	assert.Nil(t, ctrl.State().Pending)
	assert.Empty(t, items.updates)
}

func TestSaveItemCreatesOrUpdates(t *testing.T) {
	ctx := context.Background()
	ctrl, _, items, _ := newController(t, true)

	ctrl.Open(ModalAddItem, "")
	id, err := ctrl.SaveItem(ctx, dashboard.ItemInput{Name: "New", URL: "https://new"})
	require.NoError(t, err)
	assert.Equal(t, "new-id", id)
	assert.Len(t, items.created, 1)
	assert.Equal(t, ModalNone, ctrl.State().Modal)

	ctrl.Open(ModalEditItem, "a")
	id, err = ctrl.SaveItem(ctx, dashboard.ItemInput{Name: "Renamed", URL: "https://a"})
	require.NoError(t, err)
	assert.Equal(t, "a", id)
	require.Len(t, items.updates, 1)
	assert.Equal(t, "Renamed", *items.updates[0].patch.Name)
	assert.Nil(t, items.updates[0].patch.Environment)
}

func TestActionsRequireMatchingModal(t *testing.T) {
	ctrl, _, _, _ := newController(t, true)

	_, err := ctrl.SaveItem(context.Background(), dashboard.ItemInput{})
	require.ErrorIs(t, err, ErrWrongModal)
	require.ErrorIs(t, ctrl.ConfirmDeleteItem(context.Background()), ErrWrongModal)
}

func TestDeleteItemAndCategory(t *testing.T) {
	ctx := context.Background()
	ctrl, _, items, _ := newController(t, true)

	ctrl.Open(ModalDeleteItem, "b")
	require.NoError(t, ctrl.ConfirmDeleteItem(ctx))
	assert.Equal(t, []string{"b"}, items.removed)

	ctrl.Open(ModalDeleteCategory, "Ops")
	result, err := ctrl.ConfirmDeleteCategory(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ops", result.Category)
	assert.Equal(t, []string{"Ops"}, items.cleared)
	assert.Equal(t, ModalNone, ctrl.State().Modal)
}

func TestSaveCategoryEditsPatchesMembers(t *testing.T) {
	ctrl, _, items, _ := newController(t, true)

	ctrl.Open(ModalEditCategory, "Ops")
	require.NoError(t, ctrl.SaveCategoryEdits(context.Background(), "Operations", ""))

	require.Len(t, items.updates, 2)
	for _, call := range items.updates {
		require.NotNil(t, call.patch.Category)
		assert.Equal(t, "Operations", *call.patch.Category)
		assert.Nil(t, call.patch.CategoryIcon)
	}
	assert.Equal(t, ModalNone, ctrl.State().Modal)
}

func TestSaveCategoryEditsReportsFailures(t *testing.T) {
	ctrl, _, items, _ := newController(t, true)
	items.updateErr = map[string]error{"b": errors.New("rejected")}

	ctrl.Open(ModalEditCategory, "Ops")
	err := ctrl.SaveCategoryEdits(context.Background(), "", "Cloud")
	require.Error(t, err)
	assert.Len(t, items.updates, 1)
	assert.Equal(t, ModalEditCategory, ctrl.State().Modal)
}

func TestSubmitImport(t *testing.T) {
	ctx := context.Background()
	ctrl, _, items, importer := newController(t, true)

	ctrl.Open(ModalImport, "")
	_, err := ctrl.SubmitImport(ctx, []byte(`{"items": []}`), false)
	require.True(t, dashboard.IsValidation(err))
	assert.Equal(t, ModalImport, ctrl.State().Modal)
	assert.Error(t, ctrl.State().ImportErr)

	result, err := ctrl.SubmitImport(ctx, []byte(`[{"name":"A","url":"https://a"}]`), true)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	require.Len(t, importer.requests, 1)
	assert.True(t, importer.requests[0].ReplaceExisting)
	assert.Equal(t, 1, items.refreshes)
	assert.Equal(t, ModalNone, ctrl.State().Modal)
}

func TestParseImport(t *testing.T) {
	items, err := ParseImport([]byte(`{"items":[{"name":"A","url":"u"},{"name":"B","url":"v"}]}`))
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = ParseImport([]byte(` [{"name":"A","url":"u"}]`))
	require.NoError(t, err)
	assert.Len(t, items, 1)

	for _, raw := range []string{"", "{}", "[]", `{"items":{}}`, "not json"} {
		_, err := ParseImport([]byte(raw))
		assert.True(t, dashboard.IsValidation(err), "input %q", raw)
	}
}

func TestLoginAndLogout(t *testing.T) {
	ctx := context.Background()
	ctrl, session, _, _ := newController(t, false)

	session.loginErr = dashboard.ErrInvalidCredentials
	ctrl.Open(ModalLogin, "")
	require.Error(t, ctrl.Login(ctx, "admin", "wrong"))
	state := ctrl.State()
	assert.Equal(t, ModalLogin, state.Modal)
	assert.ErrorIs(t, state.AuthErr, dashboard.ErrInvalidCredentials)

	session.loginErr = nil
	require.NoError(t, ctrl.Login(ctx, "admin", "secret"))
	assert.Equal(t, ModalNone, ctrl.State().Modal)
	require.NoError(t, ctrl.SetEditMode(true))

	ctrl.Open(ModalLogoutConfirm, "")
	require.NoError(t, ctrl.ConfirmLogout())
	assert.False(t, ctrl.EditMode())
	assert.False(t, ctrl.CanManage())
}

func TestControllerGatesEngine(t *testing.T) {
	ctx := context.Background()
	ctrl, _, items, _ := newController(t, true)
	engine := dashboard.NewEngine(dashboard.EngineOptions{
		Items:   items,
		Mutator: items,
		Gate:    ctrl,
		Pending: ctrl,
	})

	assert.False(t, engine.BeginItemDrag("c"))
	_, err := engine.Move(ctx, "c", "Ops")
	require.ErrorIs(t, err, dashboard.ErrEditDisabled)

	require.NoError(t, ctrl.SetEditMode(true))
	require.True(t, engine.BeginItemDrag("c"))
	out, err := engine.DropOnCategory(ctx, "Ops")
	require.NoError(t, err)
	assert.Equal(t, dashboard.ActionPendingMove, out.Action)
	assert.Equal(t, ModalMoveConfirm, ctrl.State().Modal)

	require.NoError(t, ctrl.ConfirmMove(ctx))
	require.Len(t, items.updates, 1)
	assert.Equal(t, "Ops", *items.updates[0].patch.Category)
}
