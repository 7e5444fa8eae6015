package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	dashboard "github.com/TatoZhvania/Croco-Dashboard/components/dashboard"
	"github.com/TatoZhvania/Croco-Dashboard/components/dashboard/queries"
)

// maxBodyBytes bounds request bodies; imports are the largest payloads.
const maxBodyBytes = 8 << 20

// AdminTokenHeader is accepted as an alternative to the Authorization header.
const AdminTokenHeader = "X-Admin-Token"

// Handlers exposes the REST contract over net/http.
type Handlers struct {
	API Executor
}

// NewHandlers wraps api.
func NewHandlers(api Executor) *Handlers {
	return &Handlers{API: api}
}

// Routes returns a mux serving every endpoint under /api.
func (h *Handlers) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", h.HandleLogin)
	mux.HandleFunc("GET /api/auth/status", h.HandleAuthStatus)
	mux.HandleFunc("GET /api/items", h.withViewer(h.HandleListItems))
	mux.HandleFunc("POST /api/items", h.withViewer(h.HandleCreateItem))
	mux.HandleFunc("GET /api/items/export", h.withViewer(h.HandleExport))
	mux.HandleFunc("POST /api/items/import", h.withViewer(h.HandleImport))
	mux.HandleFunc("GET /api/items/status", h.withViewer(h.HandleLinkStatus))
	mux.HandleFunc("PUT /api/items/{id}", h.withViewer(func(w http.ResponseWriter, r *http.Request) {
		h.HandleUpdateItem(w, r, r.PathValue("id"))
	}))
	mux.HandleFunc("DELETE /api/items/{id}", h.withViewer(func(w http.ResponseWriter, r *http.Request) {
		h.HandleDeleteItem(w, r, r.PathValue("id"))
	}))
	mux.HandleFunc("GET /api/category-order", h.HandleCategoryOrder)
	mux.HandleFunc("PUT /api/category-order", h.withViewer(h.HandleSaveCategoryOrder))
	mux.HandleFunc("POST /api/category-order", h.withViewer(h.HandleSaveCategoryOrder))
	mux.HandleFunc("DELETE /api/category-order/{name}", h.withViewer(func(w http.ResponseWriter, r *http.Request) {
		h.HandleDeleteCategoryOrder(w, r, r.PathValue("name"))
	}))
	return mux
}

// RequestToken extracts the admin credential from a request.
func RequestToken(r *http.Request) string {
	return TokenFrom(r.Header.Get("Authorization"), r.Header.Get(AdminTokenHeader))
}

// TokenFrom picks the bearer credential, falling back to the admin header.
func TokenFrom(authorization, adminHeader string) string {
	if token := dashboard.BearerToken(authorization); token != "" {
		return token
	}
	return strings.TrimSpace(adminHeader)
}

// withViewer resolves the caller before running next. Invalid tokens make the
// caller a guest; management operations then fail with 401.
func (h *Handlers) withViewer(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var viewer dashboard.ViewerContext
		if token := RequestToken(r); token != "" {
			if resolved, err := h.API.Viewer(r.Context(), token); err == nil {
				viewer = resolved
			}
		}
		next(w, r.WithContext(dashboard.ContextWithViewer(r.Context(), viewer)))
	}
}

func (h *Handlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var input queries.LoginInput
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&input); err != nil {
		writeError(w, &dashboard.ValidationError{Message: "Username and password are required"})
		return
	}
	result, err := h.API.Login(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) HandleAuthStatus(w http.ResponseWriter, r *http.Request) {
	viewer, err := h.API.Viewer(r.Context(), RequestToken(r))
	if err != nil || !viewer.Admin {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"authenticated": false})
		return
	}
	writeJSON(w, http.StatusOK, AuthStatus(viewer))
}

// AuthStatus is the body of a successful status check.
func AuthStatus(viewer dashboard.ViewerContext) map[string]any {
	return map[string]any{
		"authenticated": true,
		"role":          "admin",
		"username":      viewer.Username,
	}
}

func (h *Handlers) HandleListItems(w http.ResponseWriter, r *http.Request) {
	input := queries.ListItemsInput{Search: r.URL.Query().Get("q")}
	if env, ok := dashboard.ParseEnvironment(r.URL.Query().Get("env")); ok {
		input.Environment = env
	}
	items, err := h.API.ListItems(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handlers) HandleCreateItem(w http.ResponseWriter, r *http.Request) {
	if !dashboard.IsAdmin(r.Context()) {
		writeError(w, dashboard.ErrUnauthorized)
		return
	}
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	item, err := h.API.CreateItem(r.Context(), body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Item added successfully", "id": item.ID})
}

func (h *Handlers) HandleUpdateItem(w http.ResponseWriter, r *http.Request, id string) {
	if !dashboard.IsAdmin(r.Context()) {
		writeError(w, dashboard.ErrUnauthorized)
		return
	}
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	if _, err := h.API.UpdateItem(r.Context(), id, body); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Item updated successfully"})
}

func (h *Handlers) HandleDeleteItem(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.API.DeleteItem(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Item deleted successfully"})
}

func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	doc, err := h.API.Export(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", ExportDisposition(time.Now()))
	writeJSON(w, http.StatusOK, doc)
}

// ExportDisposition is the Content-Disposition of an export download.
func ExportDisposition(now time.Time) string {
	return `attachment; filename="` + dashboard.ExportFileName(now) + `"`
}

func (h *Handlers) HandleImport(w http.ResponseWriter, r *http.Request) {
	if !dashboard.IsAdmin(r.Context()) {
		writeError(w, dashboard.ErrUnauthorized)
		return
	}
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	result, err := h.API.Import(r.Context(), body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) HandleLinkStatus(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.API.LinkStatus(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statuses)
}

func (h *Handlers) HandleCategoryOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.API.CategoryOrder(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handlers) HandleSaveCategoryOrder(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	if err := h.API.SaveCategoryOrder(r.Context(), body); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Category order updated successfully"})
}

func (h *Handlers) HandleDeleteCategoryOrder(w http.ResponseWriter, r *http.Request, name string) {
	if err := h.API.DeleteCategoryOrder(r.Context(), name); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Category order deleted successfully"})
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, &dashboard.ValidationError{Message: "unreadable request body"})
		return nil, false
	}
	return body, true
}
