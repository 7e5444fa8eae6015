package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/TatoZhvania/Croco-Dashboard/components/dashboard"
)

// ImportItemsInput carries an import document. Result receives the count.
type ImportItemsInput struct {
	Request dashboard.ImportRequest
	Result  *dashboard.ImportResult `json:"-"`
}

type importService interface {
	Import(ctx context.Context, req dashboard.ImportRequest) (dashboard.ImportResult, error)
}

// ImportItemsCommand wraps Service.Import.
type ImportItemsCommand struct {
	service   importService
	telemetry Telemetry
}

// NewImportItemsCommand creates the command.
func NewImportItemsCommand(service importService, telemetry Telemetry) *ImportItemsCommand {
	return &ImportItemsCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ImportItemsInput] = (*ImportItemsCommand)(nil)

// Execute imports the items.
func (c *ImportItemsCommand) Execute(ctx context.Context, msg ImportItemsInput) error {
	if c.service == nil {
		return errors.New("import command requires service")
	}
	result, err := c.service.Import(ctx, msg.Request)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = result
	}
	c.telemetry.Record(ctx, "dashboard.command.import", map[string]any{
		"count":   result.Imported,
		"replace": msg.Request.ReplaceExisting,
	})
	return nil
}
