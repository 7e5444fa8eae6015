package dashboard

import (
	"context"
	"errors"

	core "github.com/TatoZhvania/Croco-Dashboard/components/dashboard"
)

// Service exposes the underlying components/dashboard.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// Item re-export for convenience.
type Item = core.Item

// AdminCredentials re-export for convenience.
type AdminCredentials = core.AdminCredentials

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// Setup describes a ready-to-serve dashboard. A nil Store keeps items in
// memory; a non-nil Seed is imported when the store is empty.
type Setup struct {
	Credentials AdminCredentials
	Store       core.ItemStore
	Seed        *core.SeedDocument
	RefreshHook core.RefreshHook
	Telemetry   core.Telemetry
}

// New builds a Service with a static admin authenticator and seeds it.
func New(ctx context.Context, setup Setup) (*Service, error) {
	auth, err := core.NewStaticAuthenticator(setup.Credentials)
	if err != nil {
		return nil, err
	}
	store := setup.Store
	if store == nil {
		store = core.NewInMemoryItemStore()
	}
	service := core.NewService(Options{
		Items:       store,
		Auth:        auth,
		RefreshHook: setup.RefreshHook,
		Telemetry:   setup.Telemetry,
	})
	if _, err := core.SeedItems(ctx, service, setup.Seed); err != nil {
		return service, errors.Join(errors.New("dashboard: seed failed"), err)
	}
	return service, nil
}
