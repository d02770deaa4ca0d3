package main

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-feedback-dashboard/components/dashboard/fiberapi"
	"github.com/goliatone/go-feedback-dashboard/pkg/metrics"
	"github.com/goliatone/go-feedback-dashboard/pkg/recordfile"
)

type serveCmd struct {
	Listen        string        `env:"FEEDBACK_LISTEN" help:"Listen address (defaults to the config value)."`
	SweepInterval time.Duration `default:"1m" help:"How often idle sessions are evicted."`
	Watch         bool          `help:"Reload the records file when it changes (overrides records.watch)."`
	NoMetrics     bool          `name:"no-metrics" help:"Do not expose /metrics."`
}

func (cmd *serveCmd) Run(ctx context.Context, g *Globals) error {
	rt, err := newRuntime(ctx, g)
	if err != nil {
		return err
	}
	defer rt.Close() //nolint:errcheck
	listen := rt.cfg.Listen
	if cmd.Listen != "" {
		listen = cmd.Listen
	}

	app := fiber.New(fiber.Config{
		AppName:               "feedbackctl",
		DisableStartupMessage: true,
	})
	if !cmd.NoMetrics {
		app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler(rt.registry)))
	}
	if err := fiberapi.Register(app, fiberapi.Config{
		Service:   rt.service,
		Broadcast: rt.broadcast,
		Telemetry: rt.telemetry,
		Logger:    rt.logger,
	}); err != nil {
		return err
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		rt.logger.Info("dashboard api listening", "addr", listen, "records", rt.env.Repository.Len())
		return app.Listen(listen)
	})
	group.Go(func() error {
		<-gctx.Done()
		rt.logger.Info("shutting down dashboard api")
		return app.ShutdownWithTimeout(5 * time.Second)
	})
	group.Go(func() error {
		sweepSessions(gctx, rt, cmd.SweepInterval)
		return nil
	})
	if path := rt.cfg.Records.File; path != "" && !rt.cfg.Remote.Enabled() && (cmd.Watch || rt.cfg.Records.Watch) {
		watcher, err := recordfile.NewWatcher(path, recordfile.WatcherOptions{Logger: rt.logger})
		if err != nil {
			return err
		}
		group.Go(func() error {
			return watcher.Run(gctx, func(ctx context.Context) { reloadRecords(ctx, rt, path) })
		})
	}
	return group.Wait()
}

// reloadRecords re-seeds the repository from path and drops cached views. A
// file that fails to load keeps the previous records.
func reloadRecords(ctx context.Context, rt *runtime, path string) {
	if err := rt.env.Seed(recordfile.Source(path), rt.logger); err != nil {
		rt.logger.WarnContext(ctx, "record file reload failed", "path", path, "error", err)
		return
	}
	rt.service.Reload(ctx)
}

func sweepSessions(ctx context.Context, rt *runtime, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rt.service.SweepSessions(ctx)
		}
	}
}
