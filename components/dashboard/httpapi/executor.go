package httpapi

import (
	"context"
	"encoding/json"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/TatoZhvania/Croco-Dashboard/components/dashboard"
	"github.com/TatoZhvania/Croco-Dashboard/components/dashboard/commands"
	"github.com/TatoZhvania/Croco-Dashboard/components/dashboard/queries"
)

// Executor is the transport-neutral surface used by the net/http handlers and
// the go-router adapter. Payload arguments are raw request bodies so schema
// validation happens before decoding.
type Executor interface {
	Login(ctx context.Context, input queries.LoginInput) (dashboard.LoginResult, error)
	Viewer(ctx context.Context, token string) (dashboard.ViewerContext, error)
	ListItems(ctx context.Context, input queries.ListItemsInput) ([]dashboard.Item, error)
	CreateItem(ctx context.Context, payload []byte) (dashboard.Item, error)
	UpdateItem(ctx context.Context, id string, payload []byte) (dashboard.Item, error)
	DeleteItem(ctx context.Context, id string) error
	Export(ctx context.Context) (dashboard.ExportDocument, error)
	Import(ctx context.Context, payload []byte) (dashboard.ImportResult, error)
	CategoryOrder(ctx context.Context) (dashboard.CategoryOrder, error)
	SaveCategoryOrder(ctx context.Context, payload []byte) error
	DeleteCategoryOrder(ctx context.Context, category string) error
	LinkStatus(ctx context.Context) ([]dashboard.LinkStatus, error)
}

// PayloadDecoder validates and decodes raw request bodies.
type PayloadDecoder interface {
	DecodeItemInput(data []byte) (dashboard.ItemInput, error)
	DecodeItemPatch(data []byte) (dashboard.ItemPatch, error)
	DecodeImport(data []byte) (dashboard.ImportRequest, error)
}

var errNotConfigured = errors.New("httpapi: operation not configured")

// CommandExecutor adapts go-command commanders and queriers to Executor.
type CommandExecutor struct {
	Decoder PayloadDecoder
	Links   dashboard.LinkChecker

	LoginQuerier  gocommand.Querier[queries.LoginInput, dashboard.LoginResult]
	AuthQuerier   gocommand.Querier[queries.AuthStatusInput, dashboard.ViewerContext]
	ListQuerier   gocommand.Querier[queries.ListItemsInput, []dashboard.Item]
	ExportQuerier gocommand.Querier[queries.ExportInput, dashboard.ExportDocument]
	OrderQuerier  gocommand.Querier[queries.CategoryOrderInput, dashboard.CategoryOrder]

	CreateCommander      gocommand.Commander[commands.CreateItemInput]
	UpdateCommander      gocommand.Commander[commands.UpdateItemInput]
	DeleteCommander      gocommand.Commander[commands.DeleteItemInput]
	ImportCommander      gocommand.Commander[commands.ImportItemsInput]
	SaveOrderCommander   gocommand.Commander[commands.SaveCategoryOrderInput]
	DeleteOrderCommander gocommand.Commander[commands.DeleteCategoryOrderInput]
}

// NewCommandExecutor wires every command and query against service.
func NewCommandExecutor(service *dashboard.Service, telemetry commands.Telemetry, links dashboard.LinkChecker) *CommandExecutor {
	return &CommandExecutor{
		Decoder:              service,
		Links:                links,
		LoginQuerier:         queries.NewLoginQuery(service),
		AuthQuerier:          queries.NewAuthStatusQuery(service),
		ListQuerier:          queries.NewListItemsQuery(service),
		ExportQuerier:        queries.NewExportQuery(service),
		OrderQuerier:         queries.NewCategoryOrderQuery(service),
		CreateCommander:      commands.NewCreateItemCommand(service, telemetry),
		UpdateCommander:      commands.NewUpdateItemCommand(service, telemetry),
		DeleteCommander:      commands.NewDeleteItemCommand(service, telemetry),
		ImportCommander:      commands.NewImportItemsCommand(service, telemetry),
		SaveOrderCommander:   commands.NewSaveCategoryOrderCommand(service, telemetry),
		DeleteOrderCommander: commands.NewDeleteCategoryOrderCommand(service, telemetry),
	}
}

var _ Executor = (*CommandExecutor)(nil)

func (e *CommandExecutor) Login(ctx context.Context, input queries.LoginInput) (dashboard.LoginResult, error) {
	if e.LoginQuerier == nil {
		return dashboard.LoginResult{}, errNotConfigured
	}
	return e.LoginQuerier.Query(ctx, input)
}

func (e *CommandExecutor) Viewer(ctx context.Context, token string) (dashboard.ViewerContext, error) {
	if e.AuthQuerier == nil {
		return dashboard.ViewerContext{}, dashboard.ErrUnauthorized
	}
	return e.AuthQuerier.Query(ctx, queries.AuthStatusInput{Token: token})
}

func (e *CommandExecutor) ListItems(ctx context.Context, input queries.ListItemsInput) ([]dashboard.Item, error) {
	if e.ListQuerier == nil {
		return nil, errNotConfigured
	}
	return e.ListQuerier.Query(ctx, input)
}

func (e *CommandExecutor) CreateItem(ctx context.Context, payload []byte) (dashboard.Item, error) {
	if e.CreateCommander == nil || e.Decoder == nil {
		return dashboard.Item{}, errNotConfigured
	}
	input, err := e.Decoder.DecodeItemInput(payload)
	if err != nil {
		return dashboard.Item{}, err
	}
	var created dashboard.Item
	if err := e.CreateCommander.Execute(ctx, commands.CreateItemInput{Item: input, Created: &created}); err != nil {
		return dashboard.Item{}, err
	}
	return created, nil
}

func (e *CommandExecutor) UpdateItem(ctx context.Context, id string, payload []byte) (dashboard.Item, error) {
	if e.UpdateCommander == nil || e.Decoder == nil {
		return dashboard.Item{}, errNotConfigured
	}
	patch, err := e.Decoder.DecodeItemPatch(payload)
	if err != nil {
		return dashboard.Item{}, err
	}
	var updated dashboard.Item
	if err := e.UpdateCommander.Execute(ctx, commands.UpdateItemInput{ID: id, Patch: patch, Updated: &updated}); err != nil {
		return dashboard.Item{}, err
	}
	return updated, nil
}

func (e *CommandExecutor) DeleteItem(ctx context.Context, id string) error {
	if e.DeleteCommander == nil {
		return errNotConfigured
	}
	return e.DeleteCommander.Execute(ctx, commands.DeleteItemInput{ID: id})
}

func (e *CommandExecutor) Export(ctx context.Context) (dashboard.ExportDocument, error) {
	if e.ExportQuerier == nil {
		return dashboard.ExportDocument{}, errNotConfigured
	}
	return e.ExportQuerier.Query(ctx, queries.ExportInput{})
}

func (e *CommandExecutor) Import(ctx context.Context, payload []byte) (dashboard.ImportResult, error) {
	if e.ImportCommander == nil || e.Decoder == nil {
		return dashboard.ImportResult{}, errNotConfigured
	}
	req, err := e.Decoder.DecodeImport(payload)
	if err != nil {
		return dashboard.ImportResult{}, err
	}
	var result dashboard.ImportResult
	if err := e.ImportCommander.Execute(ctx, commands.ImportItemsInput{Request: req, Result: &result}); err != nil {
		return dashboard.ImportResult{}, err
	}
	return result, nil
}

func (e *CommandExecutor) CategoryOrder(ctx context.Context) (dashboard.CategoryOrder, error) {
	if e.OrderQuerier == nil {
		return nil, errNotConfigured
	}
	return e.OrderQuerier.Query(ctx, queries.CategoryOrderInput{})
}

func (e *CommandExecutor) SaveCategoryOrder(ctx context.Context, payload []byte) error {
	if e.SaveOrderCommander == nil {
		return errNotConfigured
	}
	var order dashboard.CategoryOrder
	if err := json.Unmarshal(payload, &order); err != nil || order == nil {
		return &dashboard.ValidationError{Message: "Invalid data format"}
	}
	return e.SaveOrderCommander.Execute(ctx, commands.SaveCategoryOrderInput{Order: order})
}

func (e *CommandExecutor) DeleteCategoryOrder(ctx context.Context, category string) error {
	if e.DeleteOrderCommander == nil {
		return errNotConfigured
	}
	return e.DeleteOrderCommander.Execute(ctx, commands.DeleteCategoryOrderInput{Category: category})
}

// LinkStatus checks the items visible to the caller. Without a checker every
// item reports unknown.
func (e *CommandExecutor) LinkStatus(ctx context.Context) ([]dashboard.LinkStatus, error) {
	items, err := e.ListItems(ctx, queries.ListItemsInput{})
	if err != nil {
		return nil, err
	}
	if e.Links == nil {
		out := make([]dashboard.LinkStatus, 0, len(items))
		for _, item := range items {
			out = append(out, dashboard.LinkStatus{ItemID: item.ID, URL: item.URL, State: dashboard.LinkUnknown})
		}
		return out, nil
	}
	return e.Links.Check(ctx, items)
}
