package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/TatoZhvania/Croco-Dashboard/components/dashboard"
)

// CreateItemInput carries a create payload. Created receives the stored item
// when set.
type CreateItemInput struct {
	Item    dashboard.ItemInput
	Created *dashboard.Item `json:"-"`
}

type createService interface {
	CreateItem(ctx context.Context, input dashboard.ItemInput) (dashboard.Item, error)
}

// CreateItemCommand wraps Service.CreateItem so transports can create items
// without linking directly against the service.
type CreateItemCommand struct {
	service   createService
	telemetry Telemetry
}

// NewCreateItemCommand creates a command instance.
func NewCreateItemCommand(service createService, telemetry Telemetry) *CreateItemCommand {
	return &CreateItemCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[CreateItemInput] = (*CreateItemCommand)(nil)

// Execute delegates to the dashboard service.
func (c *CreateItemCommand) Execute(ctx context.Context, msg CreateItemInput) error {
	if c.service == nil {
		return errors.New("create command requires service")
	}
	item, err := c.service.CreateItem(ctx, msg.Item)
	if err != nil {
		return err
	}
	if msg.Created != nil {
		*msg.Created = item
	}
	c.telemetry.Record(ctx, "dashboard.command.create", map[string]any{
		"item_id":  item.ID,
		"category": item.Category,
	})
	return nil
}
