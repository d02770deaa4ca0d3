package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goliatone/go-feedback-dashboard/components/dashboard"
)

type datasetCmd struct {
	Init     datasetInitCmd     `cmd:"" help:"Write the built-in reference tables as YAML."`
	Validate datasetValidateCmd `cmd:"" help:"Check a dataset file and print its size."`
}

type datasetInitCmd struct {
	Out       string `short:"o" type:"path" default:"dataset.yaml" help:"Destination file."`
	Overwrite bool   `help:"Replace an existing file."`
}

func (cmd *datasetInitCmd) Run(context.Context) error {
	path, err := filepath.Abs(cmd.Out)
	if err != nil {
		return fmt.Errorf("feedbackctl: resolve dataset path: %w", err)
	}
	if _, err := os.Stat(path); err == nil && !cmd.Overwrite {
		return fmt.Errorf("feedbackctl: %s already exists (use --overwrite to replace)", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("feedbackctl: create %s: %w", path, err)
	}
	defer f.Close()
	if err := dashboard.WriteDataset(f, dashboard.DefaultDataset()); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Wrote default dataset to %s\n", path)
	return nil
}

type datasetValidateCmd struct {
	Path string `arg:"" type:"existingfile" help:"Dataset YAML to check."`
}

func (cmd *datasetValidateCmd) Run(context.Context) error {
	doc, err := dashboard.ReadDataset(cmd.Path)
	if err != nil {
		return err
	}
	hierarchy, catalog, err := doc.Build()
	if err != nil {
		return err
	}
	counts := map[dashboard.Level]int{}
	for _, node := range hierarchy.Nodes() {
		counts[node.Level]++
	}
	fmt.Fprintf(os.Stdout, "✓ %s: %d regions, %d districts, %d branches, %d categories\n",
		cmd.Path, counts[dashboard.LevelRegion], counts[dashboard.LevelDistrict], counts[dashboard.LevelBranch], len(catalog.Categories()))
	return nil
}
