package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/TatoZhvania/Croco-Dashboard/components/dashboard"
)

// SeedItemsInput points at a seed document, either decoded or on disk.
type SeedItemsInput struct {
	Document *dashboard.SeedDocument
	Path     string
}

// SeedItemsCommand loads starter items into an empty store.
type SeedItemsCommand struct {
	service   *dashboard.Service
	telemetry Telemetry
}

// NewSeedItemsCommand wires dependencies.
func NewSeedItemsCommand(service *dashboard.Service, telemetry Telemetry) *SeedItemsCommand {
	return &SeedItemsCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SeedItemsInput] = (*SeedItemsCommand)(nil)

// Execute runs the seed pipeline.
func (c *SeedItemsCommand) Execute(ctx context.Context, msg SeedItemsInput) error {
	if c.service == nil {
		return errors.New("seed command requires service")
	}
	doc := msg.Document
	if doc == nil && msg.Path != "" {
		loaded, err := dashboard.ReadSeed(msg.Path)
		if err != nil {
			return err
		}
		doc = loaded
	}
	if doc == nil {
		return nil
	}
	seeded, err := dashboard.SeedItems(ctx, c.service, doc)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.seed", map[string]any{
		"seeded": seeded,
		"items":  len(doc.Items),
	})
	return nil
}
