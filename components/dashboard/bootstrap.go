package dashboard

import (
	"errors"
	"log/slog"
)

// RecordSource produces the raw records an Environment is seeded with.
type RecordSource func(hierarchy *StaticHierarchy, catalog *CategoryCatalog) ([]FeedbackRecord, error)

// Environment bundles the reference tables and record store a Service runs on.
type Environment struct {
	Dataset    *DatasetDocument
	Hierarchy  *StaticHierarchy
	Catalog    *CategoryCatalog
	Repository *InMemoryRepository
	Issues     []RecordIssue
}

// LoadDataset reads path, or returns the built-in tables when path is empty.
func LoadDataset(path string) (*DatasetDocument, error) {
	if path == "" {
		return DefaultDataset(), nil
	}
	return ReadDataset(path)
}

// Bootstrap builds the hierarchy and catalog from doc and seeds the repository
// with the validated output of source.
func Bootstrap(doc *DatasetDocument, source RecordSource, logger *slog.Logger) (*Environment, error) {
	if doc == nil {
		return nil, errors.New("dashboard: dataset is required to bootstrap")
	}
	if logger == nil {
		logger = slog.Default()
	}
	hierarchy, catalog, err := doc.Build()
	if err != nil {
		return nil, err
	}
	env := &Environment{
		Dataset:    doc,
		Hierarchy:  hierarchy,
		Catalog:    catalog,
		Repository: NewInMemoryRepository(nil),
	}
	if source == nil {
		return env, nil
	}
	if err := env.Seed(source, logger); err != nil {
		return nil, err
	}
	return env, nil
}

// Seed replaces the repository contents with the validated output of source.
func (env *Environment) Seed(source RecordSource, logger *slog.Logger) error {
	records, err := source(env.Hierarchy, env.Catalog)
	if err != nil {
		return err
	}
	valid, issues := ValidateRecords(records, env.Hierarchy, env.Catalog, logger)
	env.Repository.Replace(valid)
	env.Issues = issues
	if logger != nil {
		logger.Info("feedback records loaded",
			slog.String("dataset", env.Dataset.sourceName()),
			slog.Int("records", len(valid)),
		)
	}
	return nil
}
