package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ettle/strcase"

	"github.com/goliatone/go-feedback-dashboard/components/dashboard"
	"github.com/goliatone/go-feedback-dashboard/components/dashboard/commands"
)

type exportCmd struct {
	FilterFlags `embed:""`

	Format string `default:"csv" enum:"csv,xlsx" help:"Output format."`
	View   string `default:"records" enum:"records,aggregate" help:"Export raw records or grouped counts."`
	By     string `default:"region" help:"Grouping for the aggregate view."`
	Rank   bool   `help:"Rank aggregate groups by negative count."`
	Out    string `short:"o" type:"path" help:"Output file (defaults to feedback-<view>[-<by>].<format>)."`
}

func (cmd *exportCmd) Run(ctx context.Context, g *Globals) error {
	rt, err := newRuntime(ctx, g)
	if err != nil {
		return err
	}
	defer rt.Close() //nolint:errcheck
	sessionID, err := openFiltered(ctx, rt, cmd.FilterFlags)
	if err != nil {
		return err
	}
	defer rt.service.CloseSession(ctx, sessionID) //nolint:errcheck

	path := cmd.Out
	if path == "" {
		path = cmd.defaultName()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("feedbackctl: create %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("feedbackctl: create %s: %w", path, err)
	}
	defer f.Close()

	var result dashboard.ExportResult
	export := commands.NewExportCommand(rt.service, rt.telemetry)
	if err := export.Execute(ctx, commands.ExportInput{
		SessionID: sessionID,
		Request: dashboard.ExportRequest{
			Format:  cmd.Format,
			View:    cmd.View,
			GroupBy: cmd.By,
			Rank:    cmd.Rank,
		},
		Writer: f,
		Result: &result,
	}); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Wrote %d rows to %s\n", result.Rows, path)
	return nil
}

func (cmd *exportCmd) defaultName() string {
	name := "feedback " + cmd.View
	if cmd.View == dashboard.ExportViewAggregate {
		name += " " + cmd.By
	}
	return strcase.ToKebab(name) + "." + cmd.Format
}

// openFiltered opens a session and applies every filter flag through the
// apply-filter command.
func openFiltered(ctx context.Context, rt *runtime, flags FilterFlags) (string, error) {
	changes, err := flags.changes()
	if err != nil {
		return "", err
	}
	snapshot, err := rt.service.OpenSession(ctx, dashboard.ViewerContext{UserID: "feedbackctl"})
	if err != nil {
		return "", err
	}
	apply := commands.NewApplyFilterCommand(rt.service, rt.telemetry)
	for _, change := range changes {
		if err := apply.Execute(ctx, commands.ApplyFilterInput{SessionID: snapshot.SessionID, Change: change}); err != nil {
			return "", err
		}
	}
	return snapshot.SessionID, nil
}
