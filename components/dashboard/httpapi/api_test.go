package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dashboard "github.com/TatoZhvania/Croco-Dashboard/components/dashboard"
)

func newTestAPI(t *testing.T) (http.Handler, *dashboard.InMemoryItemStore) {
	t.Helper()
	auth, err := dashboard.NewStaticAuthenticator(dashboard.AdminCredentials{Username: "admin", Password: "secret", Token: "tok"})
	require.NoError(t, err)
	store := dashboard.NewInMemoryItemStore()
	service := dashboard.NewService(dashboard.Options{Items: store, Auth: auth})
	return NewHandlers(NewCommandExecutor(service, nil, nil)).Routes(), store
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch v := body.(type) {
		case string:
			buf.WriteString(v)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(v))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestLogin(t *testing.T) {
	h, _ := newTestAPI(t)

	rec := do(t, h, http.MethodPost, "/api/login", "", map[string]string{"username": "admin", "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code)
	result := decodeBody[dashboard.LoginResult](t, rec)
	assert.Equal(t, "tok", result.Token)
	assert.Equal(t, "admin", result.Role)

	rec = do(t, h, http.MethodPost, "/api/login", "", map[string]string{"username": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/login", "", map[string]string{"username": "admin"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Username and password are required", decodeBody[ErrorBody](t, rec).Error)
}

func TestAuthStatus(t *testing.T) {
	h, _ := newTestAPI(t)

	rec := do(t, h, http.MethodGet, "/api/auth/status", "tok", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody[map[string]any](t, rec)["authenticated"])

	rec = do(t, h, http.MethodGet, "/api/auth/status", "bad", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, false, decodeBody[map[string]any](t, rec)["authenticated"])
}

func TestAdminTokenHeader(t *testing.T) {
	h, _ := newTestAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	req.Header.Set(AdminTokenHeader, "tok")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestItemLifecycle(t *testing.T) {
	h, store := newTestAPI(t)

	rec := do(t, h, http.MethodPost, "/api/items", "", map[string]any{"name": "Grafana", "url": "https://grafana"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/items", "tok", map[string]any{"name": "Grafana"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/items", "tok", map[string]any{"name": "Grafana", "url": "https://grafana", "category": "Ops"})
	require.Equal(t, http.StatusCreated, rec.Code)
	id, _ := decodeBody[map[string]any](t, rec)["id"].(string)
	require.NotEmpty(t, id)

	rec = do(t, h, http.MethodPut, "/api/items/"+id, "tok", map[string]any{"description": "metrics"})
	require.Equal(t, http.StatusOK, rec.Code)
	stored, err := store.GetItem(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "metrics", stored.Description)

	rec = do(t, h, http.MethodPut, "/api/items/"+id, "tok", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/items/"+id, "tok", `{"orderIndex":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[ErrorBody](t, rec).Error, "payload failed validation")
	assert.Contains(t, decodeBody[ErrorBody](t, rec).Error, "/orderIndex")

	rec = do(t, h, http.MethodPut, "/api/items/missing", "tok", map[string]any{"name": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/items", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]dashboard.Item](t, rec), 1)

	rec = do(t, h, http.MethodDelete, "/api/items/"+id, "tok", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/items/"+id, "tok", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminOnlyItemsHiddenFromGuests(t *testing.T) {
	h, _ := newTestAPI(t)
	rec := do(t, h, http.MethodPost, "/api/items", "tok", map[string]any{"name": "Vault", "url": "https://vault", "isAdminOnly": true})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/items", "", nil)
	assert.Empty(t, decodeBody[[]dashboard.Item](t, rec))

	rec = do(t, h, http.MethodGet, "/api/items", "tok", nil)
	assert.Len(t, decodeBody[[]dashboard.Item](t, rec), 1)
}

func TestExportImport(t *testing.T) {
	h, _ := newTestAPI(t)

	rec := do(t, h, http.MethodGet, "/api/items/export", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	doc := `{"items":[{"name":"Wiki","url":"https://wiki","category":"Docs","is_admin_only":0}],"replaceExisting":true}`
	rec = do(t, h, http.MethodPost, "/api/items/import", "tok", doc)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, decodeBody[dashboard.ImportResult](t, rec).Imported)

	rec = do(t, h, http.MethodPost, "/api/items/import", "tok", `{"items":[{"name":"NoURL"}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/items/export", "tok", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Regexp(t, `^attachment; filename="dashboard-export-\d{4}-\d{2}-\d{2}T\d{2}-\d{2}-\d{2}-\d{3}Z\.json"$`, rec.Header().Get("Content-Disposition"))
	exported := decodeBody[dashboard.ExportDocument](t, rec)
	require.Len(t, exported.Items, 1)
	assert.Equal(t, "Docs", exported.Items[0].Category)
}

func TestCategoryOrderEndpoints(t *testing.T) {
	h, _ := newTestAPI(t)

	rec := do(t, h, http.MethodPut, "/api/category-order", "", map[string]int{"Ops": 0})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/category-order", "tok", "[1,2]")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/category-order", "tok", map[string]int{"Ops": 1, "Docs": 0})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/category-order", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dashboard.CategoryOrder{"Ops": 1, "Docs": 0}, decodeBody[dashboard.CategoryOrder](t, rec))

	rec = do(t, h, http.MethodDelete, "/api/category-order/Ops", "tok", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/category-order", "", nil)
	assert.Equal(t, dashboard.CategoryOrder{"Docs": 0}, decodeBody[dashboard.CategoryOrder](t, rec))
}

func TestLinkStatusWithoutChecker(t *testing.T) {
	h, _ := newTestAPI(t)
	do(t, h, http.MethodPost, "/api/items", "tok", map[string]any{"name": "Wiki", "url": "https://wiki"})

	rec := do(t, h, http.MethodGet, "/api/items/status", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	statuses := decodeBody[[]dashboard.LinkStatus](t, rec)
	require.Len(t, statuses, 1)
	assert.Equal(t, dashboard.LinkUnknown, statuses[0].State)
}

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		dashboard.ErrNotFound:                      http.StatusNotFound,
		dashboard.ErrUnauthorized:                  http.StatusUnauthorized,
		dashboard.ErrNoChanges:                     http.StatusBadRequest,
		&dashboard.ValidationError{Message: "bad"}: http.StatusBadRequest,
		errors.New("disk full"):                    http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, StatusFor(err), err.Error())
	}
}
