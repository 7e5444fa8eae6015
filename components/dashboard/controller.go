package dashboard

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/ettle/strcase"
)

// DefaultPageTemplate is the template rendered for the dashboard page.
const DefaultPageTemplate = "dashboard"

// PageSource provides the data the dashboard page needs.
type PageSource interface {
	ListItems(ctx context.Context) ([]Item, error)
	CategoryOrder(ctx context.Context) (CategoryOrder, error)
}

// ControllerOptions configures the controller.
type ControllerOptions struct {
	Service  PageSource
	Renderer Renderer
	Template string
	Title    string
	Icons    *IconRegistry
}

// Controller renders the read-only dashboard page.
type Controller struct {
	service  PageSource
	renderer Renderer
	template string
	title    string
	icons    *IconRegistry
}

// NewController wires the service into a controller.
func NewController(opts ControllerOptions) *Controller {
	if opts.Template == "" {
		opts.Template = DefaultPageTemplate
	}
	if opts.Title == "" {
		opts.Title = "Croco Dashboard"
	}
	if opts.Icons == nil {
		opts.Icons = NewIconRegistry()
	}
	return &Controller{
		service:  opts.Service,
		renderer: opts.Renderer,
		template: opts.Template,
		title:    opts.Title,
		icons:    opts.Icons,
	}
}

// PageRequest carries the query string and display preferences of a page view.
type PageRequest struct {
	Query Query
	Theme Theme
}

// RenderTemplate renders the dashboard for the viewer stored on ctx.
func (c *Controller) RenderTemplate(ctx context.Context, req PageRequest, out io.Writer) error {
	if c.renderer == nil {
		return errors.New("dashboard: renderer not configured")
	}
	data, err := c.PageData(ctx, req)
	if err != nil {
		return err
	}
	_, err = c.renderer.Render(c.template, data, out)
	return err
}

// PageData builds the template payload.
func (c *Controller) PageData(ctx context.Context, req PageRequest) (map[string]any, error) {
	if c.service == nil {
		return nil, errMissingItemStore
	}
	items, err := c.service.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	order, err := c.service.CategoryOrder(ctx)
	if err != nil && !errors.Is(err, errMissingOrderStore) {
		return nil, err
	}
	view := DeriveQuery(items, req.Query, order)

	groups := make([]map[string]any, 0, len(view.Categories))
	for _, group := range view.Ordered() {
		cards := make([]map[string]any, 0, len(group.Items))
		for _, item := range group.Items {
			cards = append(cards, c.card(item))
		}
		groups = append(groups, map[string]any{
			"name":  group.Name,
			"slug":  strcase.ToKebab(group.Name),
			"icon":  c.icons.Resolve(group.Icon).Glyph,
			"count": len(group.Items),
			"items": cards,
		})
	}
	envs := make([]map[string]any, 0)
	for _, info := range Environments() {
		envs = append(envs, map[string]any{"value": string(info.Value), "label": info.Label})
	}
	viewer, _ := ViewerFromContext(ctx)
	theme := req.Theme
	if !theme.Valid() {
		theme = ThemeLight
	}
	return map[string]any{
		"title":        c.title,
		"theme":        string(theme),
		"search":       req.Query.Search,
		"environment":  string(req.Query.Environment),
		"environments": envs,
		"groups":       groups,
		"total":        len(view.Items),
		"admin":        viewer.Admin,
		"username":     viewer.Username,
	}, nil
}

func (c *Controller) card(item Item) map[string]any {
	env := itemEnvironment(item).Info()
	size := item.Size
	if !size.Valid() {
		size = SizeMedium
	}
	return map[string]any{
		"id":             item.ID,
		"name":           item.Name,
		"url":            item.URL,
		"description":    strings.TrimSpace(item.Description),
		"icon":           c.icons.Resolve(item.Icon).Glyph,
		"username":       item.Username,
		"secret_key":     item.SecretKey,
		"size":           string(size),
		"env_label":      env.Label,
		"env_color":      env.Color,
		"env_text_color": env.TextColor,
	}
}
