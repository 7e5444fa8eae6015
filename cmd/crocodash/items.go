package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/TatoZhvania/Croco-Dashboard/components/dashboard"
	"github.com/TatoZhvania/Croco-Dashboard/pkg/client"
	"github.com/TatoZhvania/Croco-Dashboard/pkg/workflow"
)

type listCmd struct {
	Search string `short:"q" help:"Filter by name, description, URL or category."`
	Env    string `help:"Only show items of this environment."`
	Links  bool   `help:"Probe link reachability on the server."`
	JSON   bool   `name:"json" help:"Print the derived view as JSON."`
}

func (cmd *listCmd) Run(ctx context.Context, g *Globals) error {
	r, err := g.remote()
	if err != nil {
		return err
	}
	if _, err := r.session.Verify(ctx); err != nil {
		r.logger.Debug("session check failed, listing as guest")
	}
	store, err := r.items(ctx)
	if err != nil {
		return err
	}
	query := dashboard.Query{Search: cmd.Search}
	if cmd.Env != "" {
		env, ok := dashboard.ParseEnvironment(cmd.Env)
		if !ok {
			return fmt.Errorf("crocodash: unknown environment %q", cmd.Env)
		}
		query.Environment = env
	}
	order, err := r.settings.CategoryOrder()
	if err != nil {
		return err
	}
	view := dashboard.DeriveQuery(store.Items(), query, order)
	if cmd.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(view.Ordered())
	}

	var links map[string]dashboard.LinkState
	if cmd.Links {
		statuses, err := r.client.LinkStatus(ctx)
		if err != nil {
			return err
		}
		links = make(map[string]dashboard.LinkState, len(statuses))
		for _, status := range statuses {
			links[status.ItemID] = status.State
		}
	}
	renderView(os.Stdout, view, dashboard.NewIconRegistry(), links, newPalette(r.settings.Theme()))
	return nil
}

// ItemFlags are shared by add and edit. Empty values mean "unset".
type ItemFlags struct {
	Name         string `help:"Display name."`
	URL          string `name:"url" help:"Target URL."`
	Description  string `help:"Short description."`
	Icon         string `help:"Icon name (e.g. Server, Database)."`
	Category     string `help:"Category name."`
	CategoryIcon string `name:"category-icon" help:"Icon of the category."`
	Username     string `help:"Login username shown on the card."`
	Secret       string `help:"Secret hint shown on the card."`
	Env          string `help:"Environment (production, staging, qa, development, common)."`
	Size         string `help:"Card size (extra-small, small, medium, large, extra-large)."`
	Visibility   string `enum:",public,admin" default:"" help:"Who can see the item (public or admin)."`
}

func (f ItemFlags) apply(input dashboard.ItemInput) (dashboard.ItemInput, error) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&input.Name, f.Name)
	set(&input.URL, f.URL)
	set(&input.Description, f.Description)
	set(&input.Icon, f.Icon)
	set(&input.Category, f.Category)
	set(&input.CategoryIcon, f.CategoryIcon)
	set(&input.Username, f.Username)
	set(&input.SecretKey, f.Secret)
	if f.Env != "" {
		env, ok := dashboard.ParseEnvironment(f.Env)
		if !ok {
			return input, fmt.Errorf("crocodash: unknown environment %q", f.Env)
		}
		input.Environment = env
	}
	if f.Size != "" {
		size := dashboard.ItemSize(strings.ToLower(f.Size))
		if !size.Valid() {
			return input, fmt.Errorf("crocodash: unknown size %q", f.Size)
		}
		input.Size = size
	}
	switch f.Visibility {
	case "admin":
		input.IsAdminOnly = true
	case "public":
		input.IsAdminOnly = false
	}
	return input, nil
}

func inputFromItem(item dashboard.Item) dashboard.ItemInput {
	return dashboard.ItemInput{
		Name:         item.Name,
		URL:          item.URL,
		Description:  item.Description,
		Icon:         item.Icon,
		Category:     item.Category,
		CategoryIcon: item.CategoryIcon,
		Username:     item.Username,
		SecretKey:    item.SecretKey,
		OrderIndex:   item.OrderIndex,
		IsAdminOnly:  item.IsAdminOnly,
		Size:         item.Size,
		Environment:  item.Environment,
	}
}

// managed opens a verified session, the item store and a workflow
// controller in one step.
func managed(ctx context.Context, g *Globals) (*remote, *client.Store, *workflow.Controller, error) {
	r, err := g.remote()
	if err != nil {
		return nil, nil, nil, err
	}
	if err := r.admin(ctx); err != nil {
		return nil, nil, nil, err
	}
	store, err := r.items(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	ctrl, err := workflow.New(workflow.Options{
		Session:  r.session,
		Items:    store,
		Importer: r.client,
		Logger:   r.logger,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return r, store, ctrl, nil
}

// open shows m and fails when the controller redirected to login.
func open(ctrl *workflow.Controller, m workflow.Modal, target string) error {
	if shown := ctrl.Open(m, target); shown != m {
		return fmt.Errorf("crocodash: %w (run `crocodash login`)", client.ErrManagementRequired)
	}
	return nil
}

type addCmd struct {
	ItemFlags `embed:""`
}

func (cmd *addCmd) Run(ctx context.Context, g *Globals) error {
	_, _, ctrl, err := managed(ctx, g)
	if err != nil {
		return err
	}
	if cmd.Name == "" || cmd.URL == "" {
		return errors.New("crocodash: --name and --url are required")
	}
	input, err := cmd.apply(dashboard.ItemInput{})
	if err != nil {
		return err
	}
	if err := open(ctrl, workflow.ModalAddItem, ""); err != nil {
		return err
	}
	id, err := ctrl.SaveItem(ctx, input)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Added %s (%s)\n", input.Name, id)
	return nil
}

type editCmd struct {
	ID        string `arg:"" help:"Item id."`
	ItemFlags `embed:""`
}

func (cmd *editCmd) Run(ctx context.Context, g *Globals) error {
	_, store, ctrl, err := managed(ctx, g)
	if err != nil {
		return err
	}
	item, ok := findItem(store.Items(), cmd.ID)
	if !ok {
		return fmt.Errorf("crocodash: %w: %s", dashboard.ErrNotFound, cmd.ID)
	}
	input, err := cmd.apply(inputFromItem(item))
	if err != nil {
		return err
	}
	if err := open(ctrl, workflow.ModalEditItem, item.ID); err != nil {
		return err
	}
	if _, err := ctrl.SaveItem(ctx, input); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Updated %s\n", input.Name)
	return nil
}

type rmCmd struct {
	ID string `arg:"" help:"Item id."`
}

func (cmd *rmCmd) Run(ctx context.Context, g *Globals) error {
	_, _, ctrl, err := managed(ctx, g)
	if err != nil {
		return err
	}
	if err := open(ctrl, workflow.ModalDeleteItem, cmd.ID); err != nil {
		return err
	}
	if err := ctrl.ConfirmDeleteItem(ctx); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Deleted %s\n", cmd.ID)
	return nil
}

type rmCategoryCmd struct {
	Name string `arg:"" help:"Category name."`
}

func (cmd *rmCategoryCmd) Run(ctx context.Context, g *Globals) error {
	r, store, ctrl, err := managed(ctx, g)
	if err != nil {
		return err
	}
	if len(dashboard.ItemsInCategory(store.Items(), cmd.Name)) == 0 {
		return fmt.Errorf("crocodash: category %q has no items", cmd.Name)
	}
	if err := open(ctrl, workflow.ModalDeleteCategory, cmd.Name); err != nil {
		return err
	}
	result, err := ctrl.ConfirmDeleteCategory(ctx)
	fmt.Fprintf(os.Stdout, "✓ Deleted %d item(s) from %s\n", len(result.Deleted), cmd.Name)
	if err != nil {
		ids := make([]string, 0, len(result.Failed))
		for id := range result.Failed {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		return fmt.Errorf("crocodash: %d item(s) not deleted (%s): %w", len(ids), strings.Join(ids, ", "), err)
	}
	order, err := r.settings.CategoryOrder()
	if err == nil {
		if _, ranked := order[cmd.Name]; ranked {
			delete(order, cmd.Name)
			err = r.settings.SetCategoryOrder(order)
		}
	}
	return err
}

type editCategoryCmd struct {
	Category string `arg:"" help:"Current category name."`
	Name     string `help:"New category name."`
	Icon     string `help:"New category icon."`
}

func (cmd *editCategoryCmd) Run(ctx context.Context, g *Globals) error {
	r, _, ctrl, err := managed(ctx, g)
	if err != nil {
		return err
	}
	if err := open(ctrl, workflow.ModalEditCategory, cmd.Category); err != nil {
		return err
	}
	if err := ctrl.SaveCategoryEdits(ctx, cmd.Name, cmd.Icon); err != nil {
		return err
	}
	if cmd.Name != "" && cmd.Name != cmd.Category {
		order, err := r.settings.CategoryOrder()
		if err != nil {
			return err
		}
		if rank, ok := order[cmd.Category]; ok {
			delete(order, cmd.Category)
			order[cmd.Name] = rank
			if err := r.settings.SetCategoryOrder(order); err != nil {
				return err
			}
		}
	}
	fmt.Fprintf(os.Stdout, "✓ Updated category %s\n", cmd.Category)
	return nil
}

type moveCmd struct {
	ID       string `arg:"" help:"Item id to move."`
	Onto     string `xor:"target" help:"Place the item at this item's position."`
	Category string `xor:"target" help:"Move the item to the end of this category."`
	Yes      bool   `short:"y" help:"Confirm moves that would empty their category."`
}

func (cmd *moveCmd) Run(ctx context.Context, g *Globals) error {
	if cmd.Onto == "" && cmd.Category == "" {
		return errors.New("crocodash: one of --onto or --category is required")
	}
	r, store, ctrl, err := managed(ctx, g)
	if err != nil {
		return err
	}
	if err := ctrl.SetEditMode(true); err != nil {
		return err
	}
	engine := dashboard.NewEngine(dashboard.EngineOptions{
		Items:      store,
		Mutator:    store,
		OrderStore: r.settings,
		Gate:       ctrl,
		Pending:    ctrl,
		Telemetry:  dashboard.NewLoggerTelemetry(r.logger),
	})
	if !engine.BeginItemDrag(cmd.ID) {
		return errors.New("crocodash: cannot start move")
	}
	var out dashboard.DropOutcome
	if cmd.Onto != "" {
		out, err = engine.DropOnItem(ctx, cmd.Onto)
	} else {
		out, err = engine.DropOnCategory(ctx, cmd.Category)
	}
	if err != nil {
		return err
	}
	switch out.Action {
	case dashboard.ActionPendingMove:
		pending := out.Pending
		if !cmd.Yes {
			ctrl.CancelMove()
			return fmt.Errorf("crocodash: moving %s empties %q; rerun with --yes to confirm", cmd.ID, pending.FromCategory)
		}
		if err := ctrl.ConfirmMove(ctx); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "✓ Moved %s from %s to %s\n", cmd.ID, pending.FromCategory, pending.ToCategory)
	case dashboard.ActionNone:
		fmt.Fprintln(os.Stdout, "Nothing to move.")
	default:
		fmt.Fprintf(os.Stdout, "✓ %s: %d item(s) updated\n", out.Action, out.Updated)
	}
	return nil
}

type orderCmd struct {
	Show orderShowCmd `cmd:"" default:"1" help:"Print category ranks."`
	Swap orderSwapCmd `cmd:"" help:"Swap the ranks of two categories."`
	Push orderPushCmd `cmd:"" help:"Save the local ranks on the server."`
	Pull orderPullCmd `cmd:"" help:"Replace the local ranks with the server's."`
}

type orderShowCmd struct{}

func (cmd *orderShowCmd) Run(g *Globals) error {
	logger, err := g.logger()
	if err != nil {
		return err
	}
	store, err := g.settings(logger)
	if err != nil {
		return err
	}
	order, err := store.CategoryOrder()
	if err != nil {
		return err
	}
	names := make([]string, 0, len(order))
	for name := range order {
		names = append(names, name)
	}
	for _, name := range dashboard.SortCategories(names, order) {
		fmt.Fprintf(os.Stdout, "%3d  %s\n", order[name], name)
	}
	return nil
}

type orderSwapCmd struct {
	A string `arg:"" help:"First category."`
	B string `arg:"" help:"Second category."`
}

func (cmd *orderSwapCmd) Run(ctx context.Context, g *Globals) error {
	r, store, ctrl, err := managed(ctx, g)
	if err != nil {
		return err
	}
	if err := ctrl.SetEditMode(true); err != nil {
		return err
	}
	engine := dashboard.NewEngine(dashboard.EngineOptions{
		Items:      store,
		OrderStore: r.settings,
		Gate:       ctrl,
	})
	if !engine.BeginCategoryDrag(cmd.A) {
		return errors.New("crocodash: cannot start category swap")
	}
	if _, err := engine.DropOnCategoryHeader(ctx, cmd.B); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Swapped %s and %s\n", cmd.A, cmd.B)
	return nil
}

type orderPushCmd struct{}

func (cmd *orderPushCmd) Run(ctx context.Context, g *Globals) error {
	r, err := g.remote()
	if err != nil {
		return err
	}
	if err := r.admin(ctx); err != nil {
		return err
	}
	order, err := r.settings.CategoryOrder()
	if err != nil {
		return err
	}
	return r.client.SaveCategoryOrder(ctx, order)
}

type orderPullCmd struct{}

func (cmd *orderPullCmd) Run(ctx context.Context, g *Globals) error {
	r, err := g.remote()
	if err != nil {
		return err
	}
	order, err := r.client.CategoryOrder(ctx)
	if err != nil {
		return err
	}
	return r.settings.SetCategoryOrder(order)
}

type copyCmd struct {
	ID    string `arg:"" help:"Item id."`
	Field string `enum:"username,secret,url" default:"username" help:"Field to copy (username, secret, url)."`
}

func (cmd *copyCmd) Run(ctx context.Context, g *Globals) error {
	r, err := g.remote()
	if err != nil {
		return err
	}
	_, _ = r.session.Verify(ctx)
	store, err := r.items(ctx)
	if err != nil {
		return err
	}
	item, ok := findItem(store.Items(), cmd.ID)
	if !ok {
		return fmt.Errorf("crocodash: %w: %s", dashboard.ErrNotFound, cmd.ID)
	}
	value := map[string]string{
		"username": item.Username,
		"secret":   item.SecretKey,
		"url":      item.URL,
	}[cmd.Field]
	if value == "" {
		return fmt.Errorf("crocodash: %s has no %s", item.Name, cmd.Field)
	}
	if err := clipboard.WriteAll(value); err != nil {
		return fmt.Errorf("crocodash: clipboard: %w", err)
	}
	fmt.Fprintf(os.Stdout, "✓ Copied %s of %s\n", cmd.Field, item.Name)
	return nil
}

func findItem(items []dashboard.Item, id string) (dashboard.Item, bool) {
	for _, item := range items {
		if item.ID == id {
			return item, true
		}
	}
	return dashboard.Item{}, false
}
