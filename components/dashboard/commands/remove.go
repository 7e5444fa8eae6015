package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// DeleteItemInput identifies the item to delete.
type DeleteItemInput struct {
	ID string `json:"id"`
}

type deleteService interface {
	DeleteItem(ctx context.Context, id string) error
}

// DeleteItemCommand wraps Service.DeleteItem.
type DeleteItemCommand struct {
	service   deleteService
	telemetry Telemetry
}

// NewDeleteItemCommand creates the command.
func NewDeleteItemCommand(service deleteService, telemetry Telemetry) *DeleteItemCommand {
	return &DeleteItemCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DeleteItemInput] = (*DeleteItemCommand)(nil)

// Execute deletes the item.
func (c *DeleteItemCommand) Execute(ctx context.Context, msg DeleteItemInput) error {
	if c.service == nil {
		return errors.New("delete command requires service")
	}
	if msg.ID == "" {
		return errors.New("delete command requires item id")
	}
	if err := c.service.DeleteItem(ctx, msg.ID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.delete", map[string]any{"item_id": msg.ID})
	return nil
}
