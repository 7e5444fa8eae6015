package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/TatoZhvania/Croco-Dashboard/components/dashboard"
)

// RefreshItemsInput emits a refresh notification to connected clients.
type RefreshItemsInput struct {
	Event dashboard.ItemEvent
}

type refreshNotifier interface {
	NotifyItemsChanged(ctx context.Context, event dashboard.ItemEvent) error
}

// RefreshItemsCommand triggers refresh hooks without a mutation.
type RefreshItemsCommand struct {
	service   refreshNotifier
	telemetry Telemetry
}

// NewRefreshItemsCommand creates the command.
func NewRefreshItemsCommand(service refreshNotifier, telemetry Telemetry) *RefreshItemsCommand {
	return &RefreshItemsCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshItemsInput] = (*RefreshItemsCommand)(nil)

// Execute notifies the dashboard service's refresh hooks.
func (c *RefreshItemsCommand) Execute(ctx context.Context, msg RefreshItemsInput) error {
	if c.service == nil {
		return errors.New("refresh command requires service")
	}
	if msg.Event.Reason == "" {
		msg.Event.Reason = "refresh"
	}
	if err := c.service.NotifyItemsChanged(ctx, msg.Event); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.refresh", map[string]any{"reason": msg.Event.Reason})
	return nil
}
