package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/TatoZhvania/Croco-Dashboard/components/dashboard"
)

// UpdateItemInput captures a partial item update.
type UpdateItemInput struct {
	ID      string
	Patch   dashboard.ItemPatch
	Updated *dashboard.Item `json:"-"`
}

type updateService interface {
	UpdateItem(ctx context.Context, id string, patch dashboard.ItemPatch) (dashboard.Item, error)
}

// UpdateItemCommand wraps Service.UpdateItem.
type UpdateItemCommand struct {
	service   updateService
	telemetry Telemetry
}

// NewUpdateItemCommand creates the command.
func NewUpdateItemCommand(service updateService, telemetry Telemetry) *UpdateItemCommand {
	return &UpdateItemCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[UpdateItemInput] = (*UpdateItemCommand)(nil)

// Execute applies the patch.
func (c *UpdateItemCommand) Execute(ctx context.Context, msg UpdateItemInput) error {
	if c.service == nil {
		return errors.New("update command requires service")
	}
	if msg.ID == "" {
		return errors.New("update command requires item id")
	}
	item, err := c.service.UpdateItem(ctx, msg.ID, msg.Patch)
	if err != nil {
		return err
	}
	if msg.Updated != nil {
		*msg.Updated = item
	}
	c.telemetry.Record(ctx, "dashboard.command.update", map[string]any{
		"item_id": msg.ID,
	})
	return nil
}
