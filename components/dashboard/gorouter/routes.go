package gorouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	router "github.com/goliatone/go-router"

	dashboard "github.com/TatoZhvania/Croco-Dashboard/components/dashboard"
	"github.com/TatoZhvania/Croco-Dashboard/components/dashboard/httpapi"
	"github.com/TatoZhvania/Croco-Dashboard/components/dashboard/queries"
)

// ViewerResolver converts a router.Context into a dashboard.ViewerContext.
type ViewerResolver func(router.Context) dashboard.ViewerContext

// Config wires go-router with the dashboard page, chart, REST API and hooks.
type Config[T any] struct {
	Router         router.Router[T]
	Controller     *dashboard.Controller
	API            httpapi.Executor
	Chart          *dashboard.StatsChart
	Broadcast      *dashboard.BroadcastHook
	ViewerResolver ViewerResolver
	BasePath       string
	Routes         RouteConfig
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
type RouteConfig struct {
	HTML          string
	Stats         string
	Login         string
	AuthStatus    string
	Items         string
	ItemID        string
	Export        string
	Import        string
	LinkStatus    string
	CategoryOrder string
	CategoryName  string
	WebSocket     string
}

// Register mounts the dashboard routes (HTML, chart, REST, WebSocket) on a
// go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	resolver := cfg.ViewerResolver
	if resolver == nil {
		resolver = tokenViewerResolver(cfg.API)
	}

	group := cfg.Router
	if cfg.BasePath != "" {
		group = cfg.Router.Group(cfg.BasePath)
	}

	group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
		reqCtx := dashboard.ContextWithViewer(ctx.Context(), resolver(ctx))
		req := dashboard.PageRequest{
			Query: pageQuery(ctx),
			Theme: dashboard.ParseTheme(ctx.Query("theme")),
		}
		var buf bytes.Buffer
		if err := cfg.Controller.RenderTemplate(reqCtx, req, &buf); err != nil {
			return respondError(ctx, err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))

	if cfg.Chart != nil && cfg.API != nil {
		registerStats(group, cfg.API, cfg.Chart, resolver, routes.Stats)
	}
	if cfg.API != nil {
		registerAPI(group, cfg.API, resolver, routes)
	}
	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}
	return nil
}

func registerStats[T any](r router.Router[T], api httpapi.Executor, chart *dashboard.StatsChart, resolver ViewerResolver, path string) {
	r.Get(path, router.WrapHandler(func(ctx router.Context) error {
		reqCtx := dashboard.ContextWithViewer(ctx.Context(), resolver(ctx))
		items, err := api.ListItems(reqCtx, queries.ListItemsInput{})
		if err != nil {
			return respondError(ctx, err)
		}
		order, err := api.CategoryOrder(reqCtx)
		if err != nil {
			return respondError(ctx, err)
		}
		page, err := chart.Render(items, order, dashboard.ParseTheme(ctx.Query("theme")).Dark())
		if err != nil {
			return respondError(ctx, err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send([]byte(page))
	}))
}

func registerAPI[T any](r router.Router[T], api httpapi.Executor, resolver ViewerResolver, routes RouteConfig) {
	// handle runs fn with the resolved viewer stored on the request context.
	handle := func(fn func(ctx router.Context, reqCtx context.Context) error) router.HandlerFunc {
		return router.WrapHandler(func(ctx router.Context) error {
			return fn(ctx, dashboard.ContextWithViewer(ctx.Context(), resolver(ctx)))
		})
	}

	r.Post(routes.Login, router.WrapHandler(func(ctx router.Context) error {
		var input queries.LoginInput
		if err := json.Unmarshal(ctx.Body(), &input); err != nil {
			return respondError(ctx, &dashboard.ValidationError{Message: "Username and password are required"})
		}
		result, err := api.Login(ctx.Context(), input)
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, result)
	}))

	r.Get(routes.AuthStatus, router.WrapHandler(func(ctx router.Context) error {
		viewer, err := api.Viewer(ctx.Context(), requestToken(ctx))
		if err != nil || !viewer.Admin {
			return ctx.JSON(http.StatusUnauthorized, map[string]any{"authenticated": false})
		}
		return ctx.JSON(http.StatusOK, httpapi.AuthStatus(viewer))
	}))

	r.Get(routes.Items, handle(func(ctx router.Context, reqCtx context.Context) error {
		items, err := api.ListItems(reqCtx, pageListInput(ctx))
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, items)
	}))

	r.Post(routes.Items, handle(func(ctx router.Context, reqCtx context.Context) error {
		if !dashboard.IsAdmin(reqCtx) {
			return respondError(ctx, dashboard.ErrUnauthorized)
		}
		item, err := api.CreateItem(reqCtx, ctx.Body())
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusCreated, map[string]any{"message": "Item added successfully", "id": item.ID})
	}))

	r.Get(routes.Export, handle(func(ctx router.Context, reqCtx context.Context) error {
		doc, err := api.Export(reqCtx)
		if err != nil {
			return respondError(ctx, err)
		}
		ctx.SetHeader("Content-Disposition", httpapi.ExportDisposition(time.Now()))
		return ctx.JSON(http.StatusOK, doc)
	}))

	r.Post(routes.Import, handle(func(ctx router.Context, reqCtx context.Context) error {
		if !dashboard.IsAdmin(reqCtx) {
			return respondError(ctx, dashboard.ErrUnauthorized)
		}
		result, err := api.Import(reqCtx, ctx.Body())
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, result)
	}))

	r.Get(routes.LinkStatus, handle(func(ctx router.Context, reqCtx context.Context) error {
		statuses, err := api.LinkStatus(reqCtx)
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, statuses)
	}))

	r.Put(routes.ItemID, handle(func(ctx router.Context, reqCtx context.Context) error {
		if !dashboard.IsAdmin(reqCtx) {
			return respondError(ctx, dashboard.ErrUnauthorized)
		}
		if _, err := api.UpdateItem(reqCtx, ctx.Param("id"), ctx.Body()); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, map[string]any{"message": "Item updated successfully"})
	}))

	r.Delete(routes.ItemID, handle(func(ctx router.Context, reqCtx context.Context) error {
		if err := api.DeleteItem(reqCtx, ctx.Param("id")); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, map[string]any{"message": "Item deleted successfully"})
	}))

	r.Get(routes.CategoryOrder, router.WrapHandler(func(ctx router.Context) error {
		order, err := api.CategoryOrder(ctx.Context())
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, order)
	}))

	saveOrder := handle(func(ctx router.Context, reqCtx context.Context) error {
		if err := api.SaveCategoryOrder(reqCtx, ctx.Body()); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, map[string]any{"message": "Category order updated successfully"})
	})
	r.Put(routes.CategoryOrder, saveOrder)
	r.Post(routes.CategoryOrder, saveOrder)

	r.Delete(routes.CategoryName, handle(func(ctx router.Context, reqCtx context.Context) error {
		if err := api.DeleteCategoryOrder(reqCtx, ctx.Param("name")); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, map[string]any{"message": "Category order deleted successfully"})
	}))
}

func registerWebSocket[T any](r router.Router[T], hook *dashboard.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe()
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

// tokenViewerResolver verifies the request credential through api. Requests
// without a valid token resolve to a guest.
func tokenViewerResolver(api httpapi.Executor) ViewerResolver {
	return func(ctx router.Context) dashboard.ViewerContext {
		token := requestToken(ctx)
		if api == nil || token == "" {
			return dashboard.ViewerContext{}
		}
		viewer, err := api.Viewer(ctx.Context(), token)
		if err != nil {
			return dashboard.ViewerContext{}
		}
		return viewer
	}
}

func requestToken(ctx router.Context) string {
	return httpapi.TokenFrom(ctx.Header("Authorization"), ctx.Header(httpapi.AdminTokenHeader))
}

func pageQuery(ctx router.Context) dashboard.Query {
	query := dashboard.Query{Search: ctx.Query("q")}
	if env, ok := dashboard.ParseEnvironment(ctx.Query("env")); ok {
		query.Environment = env
	}
	return query
}

func pageListInput(ctx router.Context) queries.ListItemsInput {
	query := pageQuery(ctx)
	return queries.ListItemsInput{Search: query.Search, Environment: query.Environment}
}

func respondError(ctx router.Context, err error) error {
	return ctx.JSON(httpapi.StatusFor(err), httpapi.ErrorBody{Error: httpapi.Message(err)})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/"
	}
	if routes.Stats == "" {
		routes.Stats = "/stats"
	}
	if routes.Login == "" {
		routes.Login = "/api/login"
	}
	if routes.AuthStatus == "" {
		routes.AuthStatus = "/api/auth/status"
	}
	if routes.Items == "" {
		routes.Items = "/api/items"
	}
	if routes.ItemID == "" {
		routes.ItemID = "/api/items/:id"
	}
	if routes.Export == "" {
		routes.Export = "/api/items/export"
	}
	if routes.Import == "" {
		routes.Import = "/api/items/import"
	}
	if routes.LinkStatus == "" {
		routes.LinkStatus = "/api/items/status"
	}
	if routes.CategoryOrder == "" {
		routes.CategoryOrder = "/api/category-order"
	}
	if routes.CategoryName == "" {
		routes.CategoryName = "/api/category-order/:name"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/api/ws"
	}
	return routes
}
