package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

type cli struct {
	Globals

	Serve   serveCmd   `cmd:"" help:"Run the dashboard HTTP API."`
	Export  exportCmd  `cmd:"" help:"Export filtered feedback to CSV or XLSX."`
	Summary summaryCmd `cmd:"" help:"Print KPI values and the negative-feedback ranking."`
	Report  reportCmd  `cmd:"" help:"Render the filtered dashboard as an HTML report."`
	Dataset datasetCmd `cmd:"" help:"Manage dataset reference tables."`
}

// Globals are flags shared by every command.
type Globals struct {
	Config      string `short:"c" type:"path" env:"FEEDBACK_CONFIG" help:"Path to a YAML config file."`
	DatasetFile string `name:"dataset-file" type:"path" env:"FEEDBACK_DATASET" help:"Dataset YAML overriding the config and built-in tables."`
	RecordsFile string `name:"records-file" type:"path" env:"FEEDBACK_RECORDS" help:"JSON record file replacing generated records."`
	LogLevel    string `env:"FEEDBACK_LOG_LEVEL" help:"Log level (debug, info, warn, error)."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var root cli
	kctx := kong.Parse(&root,
		kong.Name("feedbackctl"),
		kong.Description("Customer feedback dashboard for branch networks."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.Bind(&root.Globals),
	)
	err := kctx.Run()
	kctx.FatalIfErrorf(err)
}
