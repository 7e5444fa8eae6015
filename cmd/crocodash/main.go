package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/TatoZhvania/Croco-Dashboard/pkg/client"
	"github.com/TatoZhvania/Croco-Dashboard/pkg/settings"
)

type Globals struct {
	Debug    bool   `help:"Enable debug logging."`
	API      string `name:"api" env:"CROCO_API" default:"http://localhost:5000" help:"Base URL of the dashboard server."`
	Settings string `type:"path" env:"CROCO_SETTINGS" help:"Path to the local settings file (defaults to the user config dir)."`
}

type cli struct {
	Globals `embed:""`

	Serve           serveCmd           `cmd:"" help:"Run the dashboard server."`
	List            listCmd            `cmd:"" aliases:"ls" help:"List items grouped by category."`
	Add             addCmd             `cmd:"" help:"Add an item."`
	Edit            editCmd            `cmd:"" help:"Edit an item."`
	Rm              rmCmd              `cmd:"" help:"Delete an item."`
	RmCategory      rmCategoryCmd      `cmd:"" name:"rm-category" help:"Delete every item in a category."`
	EditCategory    editCategoryCmd    `cmd:"" name:"edit-category" help:"Rename a category or change its icon."`
	Move            moveCmd            `cmd:"" help:"Move an item onto another item or into a category."`
	Order           orderCmd           `cmd:"" help:"Show or swap category ranks."`
	Export          exportCmd          `cmd:"" help:"Export every item to a JSON file."`
	Import          importCmd          `cmd:"" help:"Import items from a JSON export."`
	ImportBookmarks importBookmarksCmd `cmd:"" name:"import-bookmarks" help:"Import a browser bookmark HTML export."`
	Login           loginCmd           `cmd:"" help:"Log in as the administrator."`
	Logout          logoutCmd          `cmd:"" help:"Forget the stored admin token."`
	Status          statusCmd          `cmd:"" help:"Show session and link status."`
	Theme           themeCmd           `cmd:"" help:"Show, set or toggle the theme."`
	Copy            copyCmd            `cmd:"" help:"Copy an item's username or secret hint to the clipboard."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var app cli
	kctx := kong.Parse(&app,
		kong.Name("crocodash"),
		kong.Description("Croco Dashboard server and command line client."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.Bind(&app.Globals),
	)
	err := kctx.Run()
	kctx.FatalIfErrorf(err)
}

func (g *Globals) logger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if g.Debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.DisableStacktrace = !g.Debug
	return cfg.Build()
}

func (g *Globals) settings(logger *zap.Logger) (*settings.Store, error) {
	path := g.Settings
	if path == "" {
		var err error
		if path, err = settings.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return settings.Open(path, logger)
}

// remote bundles what the client commands share.
type remote struct {
	logger   *zap.Logger
	settings *settings.Store
	client   *client.Client
	session  *client.Session
}

func (g *Globals) remote() (*remote, error) {
	logger, err := g.logger()
	if err != nil {
		return nil, err
	}
	store, err := g.settings(logger)
	if err != nil {
		return nil, err
	}
	c, err := client.New(client.Config{BaseURL: g.API})
	if err != nil {
		return nil, err
	}
	return &remote{
		logger:   logger,
		settings: store,
		client:   c,
		session:  client.NewSession(c, store),
	}, nil
}

// items loads the item store, failing with the store's fatal error.
func (r *remote) items(ctx context.Context) (*client.Store, error) {
	store, err := client.NewStore(client.StoreOptions{API: r.client, Logger: r.logger})
	if err != nil {
		return nil, err
	}
	if err := store.Refresh(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// admin verifies the stored token before a management command.
func (r *remote) admin(ctx context.Context) error {
	ok, err := r.session.Verify(ctx)
	if err != nil {
		return fmt.Errorf("crocodash: verify session: %w", err)
	}
	if !ok {
		return fmt.Errorf("crocodash: %w (run `crocodash login`)", client.ErrManagementRequired)
	}
	return nil
}
