package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/TatoZhvania/Croco-Dashboard/components/dashboard"
	"github.com/TatoZhvania/Croco-Dashboard/pkg/workflow"
)

type exportCmd struct {
	Dir string `type:"path" default:"." help:"Directory the export file is written to."`
}

func (cmd *exportCmd) Run(ctx context.Context, g *Globals) error {
	r, err := g.remote()
	if err != nil {
		return err
	}
	if err := r.admin(ctx); err != nil {
		return err
	}
	doc, err := r.client.Export(ctx)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("crocodash: encode export: %w", err)
	}
	path := filepath.Join(cmd.Dir, dashboard.ExportFileName(time.Now()))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("crocodash: write export: %w", err)
	}
	fmt.Fprintf(os.Stdout, "✓ Exported %d item(s) to %s\n", len(doc.Items), path)
	return nil
}

type importCmd struct {
	File    string `arg:"" type:"existingfile" help:"JSON export (an array or an object with an items array)."`
	Replace bool   `help:"Delete existing items before importing."`
}

func (cmd *importCmd) Run(ctx context.Context, g *Globals) error {
	raw, err := os.ReadFile(cmd.File)
	if err != nil {
		return err
	}
	_, _, ctrl, err := managed(ctx, g)
	if err != nil {
		return err
	}
	if err := open(ctrl, workflow.ModalImport, ""); err != nil {
		return err
	}
	result, err := ctrl.SubmitImport(ctx, raw, cmd.Replace)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Imported %d item(s)\n", result.Imported)
	return nil
}

type importBookmarksCmd struct {
	File    string `arg:"" type:"existingfile" help:"Bookmark HTML exported from a browser."`
	Replace bool   `help:"Delete existing items before importing."`
	DryRun  bool   `name:"dry-run" help:"Print the parsed items without importing."`
}

func (cmd *importBookmarksCmd) Run(ctx context.Context, g *Globals) error {
	f, err := os.Open(cmd.File)
	if err != nil {
		return err
	}
	defer f.Close()
	items, err := dashboard.ParseBookmarksHTML(f)
	if err != nil {
		return err
	}
	if cmd.DryRun {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(dashboard.ExportDocument{Items: items})
	}
	raw, err := json.Marshal(dashboard.ExportDocument{Items: items})
	if err != nil {
		return err
	}
	_, _, ctrl, err := managed(ctx, g)
	if err != nil {
		return err
	}
	if err := open(ctrl, workflow.ModalImport, ""); err != nil {
		return err
	}
	result, err := ctrl.SubmitImport(ctx, raw, cmd.Replace)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Imported %d bookmark(s)\n", result.Imported)
	return nil
}
