package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/goliatone/go-feedback-dashboard/components/dashboard"
	"github.com/goliatone/go-feedback-dashboard/pkg/activity"
	"github.com/goliatone/go-feedback-dashboard/pkg/activity/usersink"
	"github.com/goliatone/go-feedback-dashboard/pkg/analytics"
	"github.com/goliatone/go-feedback-dashboard/pkg/export"
	"github.com/goliatone/go-feedback-dashboard/pkg/metrics"
	"github.com/goliatone/go-feedback-dashboard/pkg/mockdata"
	"github.com/goliatone/go-feedback-dashboard/pkg/recordfile"
)

// runtime holds everything a command needs once configuration is resolved.
type runtime struct {
	cfg       dashboard.Config
	logger    *slog.Logger
	env       *dashboard.Environment
	service   *dashboard.Service
	broadcast *dashboard.BroadcastHook
	telemetry dashboard.Telemetry
	registry  *prometheus.Registry
	closers   []io.Closer
}

// Close releases files opened for the runtime.
func (rt *runtime) Close() error {
	var errs []error
	for _, c := range rt.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func loadConfig(g *Globals) (dashboard.Config, error) {
	cfg := dashboard.DefaultConfig()
	if g.Config != "" {
		loaded, err := dashboard.ReadConfig(g.Config)
		if err != nil {
			return dashboard.Config{}, err
		}
		cfg = loaded
	}
	if g.DatasetFile != "" {
		cfg.Dataset = g.DatasetFile
	}
	if g.RecordsFile != "" {
		cfg.Records.File = g.RecordsFile
	}
	if g.LogLevel != "" {
		cfg.LogLevel = g.LogLevel
	}
	return cfg, cfg.Validate()
}

func newRuntime(ctx context.Context, g *Globals) (*runtime, error) {
	cfg, err := loadConfig(g)
	if err != nil {
		return nil, err
	}
	level, err := dashboard.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	doc, err := dashboard.LoadDataset(cfg.Dataset)
	if err != nil {
		return nil, err
	}
	source, err := recordSource(ctx, cfg, doc)
	if err != nil {
		return nil, err
	}
	env, err := dashboard.Bootstrap(doc, source, logger)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	telemetry := dashboard.NewMultiTelemetry(dashboard.NewLogTelemetry(logger), metrics.New(registry))
	var closers []io.Closer
	if cfg.Activity.Enabled() {
		f, err := os.OpenFile(cfg.Activity.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600) //nolint:gosec
		if err != nil {
			return nil, fmt.Errorf("feedbackctl: open activity log: %w", err)
		}
		closers = append(closers, f)
		emitter := activity.NewEmitter(
			activity.Hooks{usersink.Hook{Sink: usersink.NewJSONLinesSink(f)}},
			activity.Config{Enabled: true, Channel: cfg.Activity.Channel},
		)
		telemetry = append(telemetry, activity.NewTelemetry(emitter, logger))
	}
	broadcast := dashboard.NewBroadcastHook()
	charts := dashboard.NewChartRenderer(
		dashboard.WithChartCache(dashboard.NewChartCache(cfg.Charts.CacheTTL)),
		dashboard.WithChartTheme(cfg.Charts.Theme),
		dashboard.WithChartAssetsHost(cfg.Charts.AssetsHost),
	)
	service := dashboard.NewService(dashboard.Options{
		Repository:  env.Repository,
		Hierarchy:   env.Hierarchy,
		Catalog:     env.Catalog,
		Charts:      charts,
		Exporters:   export.NewRegistry(),
		RefreshHook: broadcast,
		Telemetry:   telemetry,
		Logger:      logger,
		SessionTTL:  cfg.SessionTTL,
	})
	return &runtime{
		cfg:       cfg,
		logger:    logger,
		env:       env,
		service:   service,
		broadcast: broadcast,
		telemetry: telemetry,
		registry:  registry,
		closers:   closers,
	}, nil
}

// recordSource pulls from the remote API when one is configured, then from the
// record file, and falls back to generated records otherwise.
func recordSource(ctx context.Context, cfg dashboard.Config, doc *dashboard.DatasetDocument) (dashboard.RecordSource, error) {
	end := time.Now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -cfg.Records.Days)
	switch {
	case cfg.Remote.Enabled():
		httpClient := &http.Client{Timeout: cfg.Remote.Timeout}
		client, err := analytics.NewHTTPClient(analytics.HTTPConfig{
			BaseURL:    cfg.Remote.BaseURL,
			APIKey:     cfg.Remote.APIKey,
			PageSize:   cfg.Remote.PageSize,
			HTTPClient: httpClient,
		})
		if err != nil {
			return nil, err
		}
		return analytics.NewRecordSource(ctx, client, analytics.RecordQuery{From: start, To: end.Add(24*time.Hour - time.Nanosecond)}), nil
	case cfg.Records.File != "":
		return recordfile.Source(cfg.Records.File), nil
	}
	return func(h *dashboard.StaticHierarchy, c *dashboard.CategoryCatalog) ([]dashboard.FeedbackRecord, error) {
		return mockdata.Generate(h, c, mockdata.Options{
			Count:        cfg.Records.Count,
			Seed:         cfg.Records.Seed,
			Start:        start,
			End:          end,
			ServiceTypes: doc.ServiceTypes,
			Dimensions:   doc.Dimensions,
		})
	}, nil
}

// FilterFlags exposes every filter dimension on the command line.
type FilterFlags struct {
	Region      string `default:"all" help:"Region id."`
	District    string `default:"all" help:"District id."`
	Branch      string `default:"all" help:"Branch id."`
	ServiceType string `name:"service-type" default:"all" help:"Service type."`
	Sentiment   string `default:"all" enum:"all,positive,negative,neutral" help:"Sentiment polarity."`
	Category    string `default:"all" help:"Main sentiment category key."`
	SubCategory string `name:"sub-category" default:"all" help:"Detailed subcategory key."`
	From        string `help:"Start date (YYYY-MM-DD), inclusive."`
	To          string `help:"End date (YYYY-MM-DD), inclusive."`
	Search      string `help:"Case-insensitive comment search."`
}

// changes lists the changes parents-first so cascades never clear a requested child.
func (f FilterFlags) changes() ([]dashboard.Change, error) {
	out := []dashboard.Change{
		{Field: dashboard.FieldRegion, Value: f.Region},
		{Field: dashboard.FieldDistrict, Value: f.District},
		{Field: dashboard.FieldBranch, Value: f.Branch},
		{Field: dashboard.FieldServiceType, Value: f.ServiceType},
		{Field: dashboard.FieldSentiment, Value: f.Sentiment},
		{Field: dashboard.FieldMainCategory, Value: f.Category},
		{Field: dashboard.FieldSubCategory, Value: f.SubCategory},
		{Field: dashboard.FieldSearchText, Value: f.Search},
	}
	if f.From != "" || f.To != "" {
		var dr dashboard.DateRange
		var err error
		if dr.From, err = parseDay(f.From, false); err != nil {
			return nil, err
		}
		if dr.To, err = parseDay(f.To, true); err != nil {
			return nil, err
		}
		out = append(out, dashboard.Change{Field: dashboard.FieldDateRange, Range: &dr})
	}
	return out, nil
}

func parseDay(value string, endOfDay bool) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	day, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("feedbackctl: invalid date %q: %w", value, err)
	}
	if endOfDay {
		day = day.Add(24*time.Hour - time.Nanosecond)
	}
	return day, nil
}
