// Package export provides file-format adapters for dashboard tables.
package export

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	dashboard "github.com/goliatone/go-feedback-dashboard/components/dashboard"
)

// Registry looks up exporters by format name.
type Registry struct {
	mu        sync.RWMutex
	exporters map[string]dashboard.Exporter
}

// NewRegistry returns a registry holding the CSV and XLSX exporters.
func NewRegistry() *Registry {
	reg := &Registry{exporters: map[string]dashboard.Exporter{}}
	_ = reg.Register(CSV{})
	_ = reg.Register(XLSX{})
	return reg
}

// Register adds or replaces an exporter.
func (r *Registry) Register(exporter dashboard.Exporter) error {
	if exporter == nil {
		return fmt.Errorf("export: exporter is nil")
	}
	format := normalize(exporter.Format())
	if format == "" {
		return fmt.Errorf("export: exporter format is required")
	}
	r.mu.Lock()
	r.exporters[format] = exporter
	r.mu.Unlock()
	return nil
}

// Exporter satisfies dashboard.ExporterLookup.
func (r *Registry) Exporter(format string) (dashboard.Exporter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exporter, ok := r.exporters[normalize(format)]
	return exporter, ok
}

// Formats lists registered format names.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.exporters))
	for format := range r.exporters {
		out = append(out, format)
	}
	sort.Strings(out)
	return out
}

func normalize(format string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
}

var _ dashboard.ExporterLookup = (*Registry)(nil)
