package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"go.uber.org/zap"

	"github.com/TatoZhvania/Croco-Dashboard/components/dashboard"
	"github.com/TatoZhvania/Croco-Dashboard/components/dashboard/commands"
	"github.com/TatoZhvania/Croco-Dashboard/components/dashboard/gorouter"
	"github.com/TatoZhvania/Croco-Dashboard/components/dashboard/httpapi"
	"github.com/TatoZhvania/Croco-Dashboard/components/dashboard/sqlstore"
	"github.com/TatoZhvania/Croco-Dashboard/pkg/config"
	dashboardpkg "github.com/TatoZhvania/Croco-Dashboard/pkg/dashboard"
	"github.com/TatoZhvania/Croco-Dashboard/pkg/linkstatus"
)

type serveCmd struct {
	Config        string        `type:"path" short:"c" env:"CROCO_CONFIG" help:"Optional YAML config file."`
	Listen        string        `env:"CROCO_LISTEN" help:"Listen address (default :5000)."`
	DB            string        `name:"db" type:"path" env:"CROCO_DB" help:"SQLite database path; items stay in memory when empty."`
	Seed          string        `type:"path" env:"CROCO_SEED" help:"YAML seed document imported into an empty store."`
	BasePath      string        `name:"base-path" help:"Mount the dashboard under this path."`
	AdminUsername string        `name:"admin-username" env:"ADMIN_USERNAME" help:"Administrator username."`
	AdminPassword string        `name:"admin-password" env:"ADMIN_PASSWORD" help:"Administrator password."`
	AdminToken    string        `name:"admin-token" env:"ADMIN_TOKEN" help:"Bearer token issued on login."`
	NoLinkCheck   bool          `name:"no-link-check" help:"Disable periodic link reachability checks."`
	LinkInterval  time.Duration `name:"link-interval" help:"Link recheck interval (default 5m)."`
}

func (cmd *serveCmd) config(debug bool) (config.Server, error) {
	base, err := config.Load(cmd.Config)
	if err != nil {
		return config.Server{}, err
	}
	cfg := base.Merge(config.Server{
		Listen:   cmd.Listen,
		BasePath: cmd.BasePath,
		Database: cmd.DB,
		Seed:     cmd.Seed,
		Debug:    debug,
		Admin: config.Admin{
			Username: cmd.AdminUsername,
			Password: cmd.AdminPassword,
			Token:    cmd.AdminToken,
		},
		LinkCheck: config.LinkCheck{Disabled: cmd.NoLinkCheck, Interval: cmd.LinkInterval},
	})
	return cfg, cfg.Validate()
}

func (cmd *serveCmd) Run(ctx context.Context, g *Globals) error {
	cfg, err := cmd.config(g.Debug)
	if err != nil {
		return err
	}
	g.Debug = cfg.Debug
	logger, err := g.logger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	var store dashboard.ItemStore
	if cfg.Database != "" {
		db, err := sqlstore.Open(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		store = db
		logger.Info("using sqlite store", zap.String("path", db.Path()))
	} else {
		logger.Warn("no database configured, items are kept in memory")
	}

	telemetry := dashboard.NewLoggerTelemetry(logger)
	hook := dashboard.NewBroadcastHook()
	defer hook.Close()

	service, err := dashboardpkg.New(ctx, dashboardpkg.Setup{
		Credentials: dashboard.AdminCredentials{
			Username: cfg.Admin.Username,
			Password: cfg.Admin.Password,
			Token:    cfg.Admin.Token,
		},
		Store:       store,
		RefreshHook: hook,
		Telemetry:   telemetry,
	})
	if err != nil {
		return err
	}
	if cfg.Seed != "" {
		seed := commands.NewSeedItemsCommand(service, telemetry)
		if err := seed.Execute(ctx, commands.SeedItemsInput{Path: cfg.Seed}); err != nil {
			return fmt.Errorf("crocodash: seed: %w", err)
		}
	}

	var links *linkstatus.Checker
	if !cfg.LinkCheck.Disabled {
		refresh := commands.NewRefreshItemsCommand(service, telemetry)
		links = linkstatus.New(linkstatus.Options{
			Interval: cfg.LinkCheck.Interval,
			TTL:      cfg.LinkCheck.Interval,
			Logger:   logger.Named("links"),
			OnSweep: func(ctx context.Context, _ []dashboard.LinkStatus) {
				if err := refresh.Execute(ctx, commands.RefreshItemsInput{Event: dashboard.ItemEvent{Reason: "link-status"}}); err != nil {
					logger.Warn("link status refresh failed", zap.Error(err))
				}
			},
		})
		go func() {
			_ = links.Run(ctx, adminItems{service: service, logger: logger})
		}()
	}

	renderer, err := dashboard.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("crocodash: templates: %w", err)
	}
	controller := dashboard.NewController(dashboard.ControllerOptions{
		Service:  service,
		Renderer: renderer,
		Title:    cfg.Title,
	})

	var checker dashboard.LinkChecker
	if links != nil {
		checker = links
	}
	executor := httpapi.NewCommandExecutor(service, telemetry, checker)

	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:     server.Router(),
		Controller: controller,
		API:        executor,
		Chart:      dashboard.NewStatsChart(),
		Broadcast:  hook,
		BasePath:   cfg.BasePath,
	}); err != nil {
		return fmt.Errorf("crocodash: register routes: %w", err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Serve(cfg.Listen) }()
	logger.Info("dashboard listening",
		zap.String("addr", cfg.Listen),
		zap.String("base_path", cfg.BasePath),
		zap.Bool("link_check", links != nil),
	)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	logger.Info("dashboard stopped")
	return nil
}

// adminItems lists every item, admin-only ones included, for the link
// checker.
type adminItems struct {
	service *dashboard.Service
	logger  *zap.Logger
}

func (a adminItems) Items() []dashboard.Item {
	ctx := dashboard.ContextWithViewer(context.Background(), dashboard.ViewerContext{Username: "link-checker", Admin: true})
	items, err := a.service.ListItems(ctx)
	if err != nil {
		a.logger.Warn("link checker: list items failed", zap.Error(err))
		return nil
	}
	return items
}
