package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/TatoZhvania/Croco-Dashboard/components/dashboard"
)

// ListItemsInput optionally narrows the listing.
type ListItemsInput struct {
	Search      string
	Environment dashboard.Environment
}

type itemsService interface {
	ListItems(ctx context.Context) ([]dashboard.Item, error)
}

// ListItemsQuery returns the items visible to the caller on ctx.
type ListItemsQuery struct {
	service itemsService
}

// NewListItemsQuery builds the query.
func NewListItemsQuery(service itemsService) *ListItemsQuery {
	return &ListItemsQuery{service: service}
}

var _ gocommand.Querier[ListItemsInput, []dashboard.Item] = (*ListItemsQuery)(nil)

// Query lists items, filtered when the input carries a search or environment.
func (q *ListItemsQuery) Query(ctx context.Context, msg ListItemsInput) ([]dashboard.Item, error) {
	items, err := q.service.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	if msg.Search == "" && msg.Environment == "" {
		return items, nil
	}
	view := dashboard.DeriveQuery(items, dashboard.Query{Search: msg.Search, Environment: msg.Environment}, nil)
	return view.Items, nil
}

// ExportInput requests the export document.
type ExportInput struct{}

type exportService interface {
	Export(ctx context.Context) (dashboard.ExportDocument, error)
}

// ExportQuery returns every item for download.
type ExportQuery struct {
	service exportService
}

// NewExportQuery builds the query.
func NewExportQuery(service exportService) *ExportQuery {
	return &ExportQuery{service: service}
}

var _ gocommand.Querier[ExportInput, dashboard.ExportDocument] = (*ExportQuery)(nil)

// Query builds the export document.
func (q *ExportQuery) Query(ctx context.Context, _ ExportInput) (dashboard.ExportDocument, error) {
	return q.service.Export(ctx)
}
