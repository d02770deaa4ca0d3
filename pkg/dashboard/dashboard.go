// Package dashboard re-exports the feedback dashboard core for host
// applications that do not want to depend on components/ paths.
package dashboard

import (
	"log/slog"

	core "github.com/goliatone/go-feedback-dashboard/components/dashboard"
)

// Service exposes the underlying components/dashboard.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// FilterState, Change and FeedbackRecord are the types callers pass in and out.
type (
	FilterState    = core.FilterState
	Change         = core.Change
	FeedbackRecord = core.FeedbackRecord
	ViewerContext  = core.ViewerContext
)

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// NewInMemory builds a Service over the built-in reference tables and the given
// records. Records inconsistent with the tables are dropped and logged.
func NewInMemory(records []FeedbackRecord, logger *slog.Logger) (*Service, error) {
	env, err := core.Bootstrap(core.DefaultDataset(), func(*core.StaticHierarchy, *core.CategoryCatalog) ([]core.FeedbackRecord, error) {
		return records, nil
	}, logger)
	if err != nil {
		return nil, err
	}
	return core.NewService(Options{
		Repository: env.Repository,
		Hierarchy:  env.Hierarchy,
		Catalog:    env.Catalog,
		Logger:     logger,
	}), nil
}
