package main

import (
	"context"
	"fmt"
	"os"

	"github.com/TatoZhvania/Croco-Dashboard/components/dashboard"
)

type loginCmd struct {
	Username string `short:"u" env:"CROCO_USERNAME" required:"" help:"Administrator username."`
	Password string `short:"p" env:"CROCO_PASSWORD" required:"" help:"Administrator password."`
}

func (cmd *loginCmd) Run(ctx context.Context, g *Globals) error {
	r, err := g.remote()
	if err != nil {
		return err
	}
	result, err := r.session.Login(ctx, cmd.Username, cmd.Password)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Logged in as %s (%s)\n", result.Username, result.Role)
	return nil
}

type logoutCmd struct{}

func (cmd *logoutCmd) Run(g *Globals) error {
	r, err := g.remote()
	if err != nil {
		return err
	}
	if err := r.session.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, "✓ Logged out")
	return nil
}

type statusCmd struct {
	Links bool `help:"Also report link reachability."`
}

func (cmd *statusCmd) Run(ctx context.Context, g *Globals) error {
	r, err := g.remote()
	if err != nil {
		return err
	}
	p := newPalette(r.settings.Theme())
	admin, err := r.session.Verify(ctx)
	switch {
	case err != nil:
		fmt.Fprintf(os.Stdout, "%s %s (%v)\n", p.bad.Render("●"), g.API, err)
		return nil
	case admin:
		fmt.Fprintf(os.Stdout, "%s %s as %s\n", p.ok.Render("●"), g.API, r.session.Username())
	default:
		fmt.Fprintf(os.Stdout, "%s %s as guest\n", p.ok.Render("●"), g.API)
	}
	fmt.Fprintf(os.Stdout, "theme: %s  settings: %s\n", r.settings.Theme(), r.settings.Path())
	if !cmd.Links {
		return nil
	}
	statuses, err := r.client.LinkStatus(ctx)
	if err != nil {
		return err
	}
	for _, status := range statuses {
		code := ""
		if status.Code != 0 {
			code = fmt.Sprintf(" %d", status.Code)
		}
		fmt.Fprintf(os.Stdout, "%s %s%s %s\n", p.linkDot(status.State), status.State, code, p.url.Render(status.URL))
	}
	return nil
}

type themeCmd struct {
	Value string `arg:"" optional:"" enum:",light,dark,toggle" default:"" help:"light, dark or toggle; prints the current theme when empty."`
}

func (cmd *themeCmd) Run(g *Globals) error {
	logger, err := g.logger()
	if err != nil {
		return err
	}
	store, err := g.settings(logger)
	if err != nil {
		return err
	}
	theme := store.Theme()
	switch cmd.Value {
	case "":
	case "toggle":
		if theme, err = store.ToggleTheme(); err != nil {
			return err
		}
	default:
		theme = dashboard.ParseTheme(cmd.Value)
		if err := store.SetTheme(theme); err != nil {
			return err
		}
	}
	fmt.Fprintln(os.Stdout, theme)
	return nil
}
