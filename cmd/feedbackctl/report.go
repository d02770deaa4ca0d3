package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goliatone/go-feedback-dashboard/components/dashboard"
)

type reportCmd struct {
	FilterFlags `embed:""`

	Title string `help:"Report heading."`
	By    string `default:"branch" help:"Grouping for the ranking and charts."`
	Top   int    `default:"10" help:"Number of ranked groups to list."`
	Out   string `short:"o" default:"feedback-report.html" type:"path" help:"Output HTML file."`
}

func (cmd *reportCmd) Run(ctx context.Context, g *Globals) error {
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

	if dir := filepath.Dir(cmd.Out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("feedbackctl: create %s: %w", dir, err)
		}
	}
	f, err := os.Create(cmd.Out)
	if err != nil {
		return fmt.Errorf("feedbackctl: create %s: %w", cmd.Out, err)
	}
	defer f.Close()

	if _, err := rt.service.Report(ctx, sessionID, dashboard.ReportQuery{
		Title:   cmd.Title,
		GroupBy: cmd.By,
		Top:     cmd.Top,
	}, f); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Wrote report to %s\n", cmd.Out)
	return nil
}
