package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/TatoZhvania/Croco-Dashboard/components/dashboard"
)

// SaveCategoryOrderInput upserts category ranks.
type SaveCategoryOrderInput struct {
	Order dashboard.CategoryOrder
}

// DeleteCategoryOrderInput removes one category rank.
type DeleteCategoryOrderInput struct {
	Category string
}

type categoryOrderService interface {
	SaveCategoryOrder(ctx context.Context, order dashboard.CategoryOrder) error
	DeleteCategoryOrder(ctx context.Context, category string) error
}

// SaveCategoryOrderCommand wraps Service.SaveCategoryOrder.
type SaveCategoryOrderCommand struct {
	service   categoryOrderService
	telemetry Telemetry
}

// NewSaveCategoryOrderCommand creates the command.
func NewSaveCategoryOrderCommand(service categoryOrderService, telemetry Telemetry) *SaveCategoryOrderCommand {
	return &SaveCategoryOrderCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SaveCategoryOrderInput] = (*SaveCategoryOrderCommand)(nil)

// Execute persists the ranks.
func (c *SaveCategoryOrderCommand) Execute(ctx context.Context, msg SaveCategoryOrderInput) error {
	if c.service == nil {
		return errors.New("category order command requires service")
	}
	if len(msg.Order) == 0 {
		return nil
	}
	if err := c.service.SaveCategoryOrder(ctx, msg.Order); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.category_order", map[string]any{"count": len(msg.Order)})
	return nil
}

// DeleteCategoryOrderCommand wraps Service.DeleteCategoryOrder.
type DeleteCategoryOrderCommand struct {
	service   categoryOrderService
	telemetry Telemetry
}

// NewDeleteCategoryOrderCommand creates the command.
func NewDeleteCategoryOrderCommand(service categoryOrderService, telemetry Telemetry) *DeleteCategoryOrderCommand {
	return &DeleteCategoryOrderCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DeleteCategoryOrderInput] = (*DeleteCategoryOrderCommand)(nil)

// Execute removes the rank.
func (c *DeleteCategoryOrderCommand) Execute(ctx context.Context, msg DeleteCategoryOrderInput) error {
	if c.service == nil {
		return errors.New("category order command requires service")
	}
	if msg.Category == "" {
		return errors.New("category order command requires category")
	}
	if err := c.service.DeleteCategoryOrder(ctx, msg.Category); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.category_order_delete", map[string]any{"category": msg.Category})
	return nil
}
