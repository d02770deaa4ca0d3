package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const defaultSessionTTL = 30 * time.Minute

// Export views.
const (
	ExportViewRecords   = "records"
	ExportViewAggregate = "aggregate"
)

// ExporterLookup resolves exporters by format name.
type ExporterLookup interface {
	Exporter(format string) (Exporter, bool)
}

// Options configures the dashboard Service. Every collaborator is provided via
// interface so applications can swap implementations.
type Options struct {
	Repository  Repository
	Hierarchy   LocationHierarchy
	Catalog     *CategoryCatalog
	Charts      *ChartRenderer
	Templates   Renderer
	Exporters   ExporterLookup
	Validator   ChangeValidator
	RefreshHook RefreshHook
	Telemetry   Telemetry
	Logger      *slog.Logger
	Menu        []MenuItem
	Policy      RolePolicy
	SessionTTL  time.Duration
}

// Service exposes per-session filtering, aggregation, charts and export.
type Service struct {
	opts     Options
	sessions *SessionStore
	labels   Labeler

	// id and dataGeneration scope chart cache keys to this service's data.
	id             string
	dataGeneration atomic.Uint64

	templatesOnce sync.Once
	renderer      Renderer
	templatesErr  error
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	if opts.Validator == nil {
		opts.Validator = NewJSONSchemaValidator()
	}
	if opts.Charts == nil {
		opts.Charts = NewChartRenderer()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Menu == nil {
		opts.Menu = DefaultMenu()
	}
	if opts.Policy == nil {
		opts.Policy = DefaultRolePolicy()
	}
	if opts.SessionTTL == 0 {
		opts.SessionTTL = defaultSessionTTL
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)

	var labels []Labeler
	if l, ok := opts.Hierarchy.(Labeler); ok {
		labels = append(labels, l)
	}
	if opts.Catalog != nil {
		labels = append(labels, opts.Catalog)
	}
	return &Service{
		opts:     opts,
		sessions: NewSessionStore(opts.SessionTTL),
		labels:   Labelers(labels...),
		id:       uuid.NewString(),
	}
}

// FilterSnapshot is the state of one session together with its dependent options.
type FilterSnapshot struct {
	SessionID   string        `json:"session_id"`
	State       FilterState   `json:"state"`
	Version     uint64        `json:"version"`
	ActiveCount int           `json:"active_count"`
	Options     FilterOptions `json:"options"`
}

// OpenSession creates a session with the default selection.
func (s *Service) OpenSession(ctx context.Context, viewer ViewerContext) (FilterSnapshot, error) {
	if s.opts.Hierarchy == nil {
		return FilterSnapshot{}, errMissingHierarchy
	}
	if s.opts.Repository == nil {
		return FilterSnapshot{}, errMissingRepository
	}
	session := s.sessions.Open(viewer, s.opts.Hierarchy, s.opts.Catalog, s.opts.Repository)
	s.recordTelemetry(ctx, "dashboard.session.open", map[string]any{
		"session_id": session.ID,
		"viewer":     viewer.UserID,
	})
	return snapshotOf(session), nil
}

// CloseSession discards a session.
func (s *Service) CloseSession(ctx context.Context, sessionID string) error {
	if !s.sessions.Close(sessionID) {
		return ErrSessionNotFound
	}
	s.recordTelemetry(ctx, "dashboard.session.close", map[string]any{"session_id": sessionID})
	return nil
}

// Session returns a live session.
func (s *Service) Session(sessionID string) (*Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return session, nil
}

// SweepSessions evicts idle sessions.
func (s *Service) SweepSessions(ctx context.Context) int {
	n := s.sessions.Sweep()
	if n > 0 {
		s.opts.Logger.InfoContext(ctx, "expired dashboard sessions", "count", n)
		s.recordTelemetry(ctx, "dashboard.session.sweep", map[string]any{"evicted": n})
	}
	return n
}

// ApplyFilter applies a single field change to the session's selection.
func (s *Service) ApplyFilter(ctx context.Context, sessionID string, change Change) (FilterSnapshot, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return FilterSnapshot{}, err
	}
	session.Engine.Apply(change)
	snapshot := snapshotOf(session)
	if err := s.notify(ctx, FilterEvent{
		SessionID: sessionID,
		Field:     change.Field,
		Version:   snapshot.Version,
		State:     snapshot.State,
	}); err != nil {
		return FilterSnapshot{}, err
	}
	s.recordTelemetry(ctx, "dashboard.filter.apply", map[string]any{
		"session_id": sessionID,
		"viewer":     session.Viewer.UserID,
		"field":      string(change.Field),
		"active":     snapshot.ActiveCount,
	})
	return snapshot, nil
}

// DecodeChange validates a raw JSON change payload and decodes it.
func (s *Service) DecodeChange(payload []byte) (Change, error) {
	if err := s.opts.Validator.Validate(payload); err != nil {
		return Change{}, err
	}
	var change Change
	if err := json.Unmarshal(payload, &change); err != nil {
		return Change{}, fmt.Errorf("%w: %v", ErrInvalidChange, err)
	}
	return change, nil
}

// ResetFilters returns the session to the default selection.
func (s *Service) ResetFilters(ctx context.Context, sessionID string) (FilterSnapshot, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return FilterSnapshot{}, err
	}
	session.Engine.Reset()
	snapshot := snapshotOf(session)
	if err := s.notify(ctx, FilterEvent{
		SessionID: sessionID,
		Reset:     true,
		Version:   snapshot.Version,
		State:     snapshot.State,
	}); err != nil {
		return FilterSnapshot{}, err
	}
	s.recordTelemetry(ctx, "dashboard.filter.reset", map[string]any{
		"session_id": sessionID,
		"viewer":     session.Viewer.UserID,
	})
	return snapshot, nil
}

// Filters returns the session's selection and option lists.
func (s *Service) Filters(_ context.Context, sessionID string) (FilterSnapshot, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return FilterSnapshot{}, err
	}
	return snapshotOf(session), nil
}

// Records returns the records matching the session's selection.
func (s *Service) Records(ctx context.Context, sessionID string) ([]FeedbackRecord, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return nil, err
	}
	return session.View.Records(ctx)
}

// AggregateRequest selects a grouping and optional negative ranking.
type AggregateRequest struct {
	GroupBy string `json:"group_by"`
	Rank    bool   `json:"rank"`
	Limit   int    `json:"limit"`
}

// Aggregate groups the session's filtered records.
func (s *Service) Aggregate(ctx context.Context, sessionID string, req AggregateRequest) ([]AggregateResult, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return nil, err
	}
	keyFn, ok := KeyFuncFor(req.GroupBy)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGrouping, req.GroupBy)
	}
	var groups []AggregateResult
	if req.Rank {
		groups, err = session.View.Ranked(ctx, keyFn, req.Limit)
	} else {
		groups, err = session.View.Aggregate(ctx, keyFn)
		groups = TopN(groups, req.Limit)
	}
	if err != nil {
		return nil, err
	}
	s.recordTelemetry(ctx, "dashboard.aggregate", map[string]any{
		"session_id": sessionID,
		"group_by":   req.GroupBy,
		"groups":     len(groups),
	})
	return groups, nil
}

// Summary computes the KPI values for the session's filtered records.
func (s *Service) Summary(ctx context.Context, sessionID string) (Summary, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return Summary{}, err
	}
	return session.View.Summary(ctx)
}

// ChartQuery selects a chart kind and the grouping feeding it.
type ChartQuery struct {
	Kind    string
	GroupBy string
	Title   string
}

// Chart renders a chart for the session's filtered records.
func (s *Service) Chart(ctx context.Context, sessionID string, query ChartQuery) (string, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return "", err
	}
	kind := normalizeChartKind(query.Kind)
	groupBy := query.GroupBy
	if groupBy == "" && kind == ChartTrendLine {
		groupBy = "day"
	}
	keyFn, ok := KeyFuncFor(groupBy)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownGrouping, groupBy)
	}
	generation := s.dataGeneration.Load()
	state, records, err := session.View.Current(ctx)
	if err != nil {
		return "", err
	}
	req := ChartRequest{
		Kind:     kind,
		Title:    query.Title,
		Subtitle: stateSubtitle(state, s.labels),
		Groups:   GroupBy(records, keyFn),
		Summary:  Summarize(records),
		Labels:   s.labels,
		CacheKey: s.chartDataKey(generation, groupBy, state),
	}
	html, err := s.opts.Charts.Render(req)
	if err != nil {
		return "", err
	}
	s.recordTelemetry(ctx, "dashboard.chart.render", map[string]any{
		"session_id": sessionID,
		"kind":       kind,
	})
	return html, nil
}

// ExportRequest describes an export of the session's data.
type ExportRequest struct {
	Format  string
	View    string
	GroupBy string
	Rank    bool
}

// ExportResult describes what was written by Export.
type ExportResult struct {
	Format      string
	ContentType string
	Filename    string
	Rows        int
}

// Export writes the session's records or aggregates in the requested format.
func (s *Service) Export(ctx context.Context, sessionID string, req ExportRequest, w io.Writer) (ExportResult, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return ExportResult{}, err
	}
	exporter, err := s.exporter(req.Format)
	if err != nil {
		return ExportResult{}, err
	}
	table, err := s.exportTable(ctx, session.View, req)
	if err != nil {
		return ExportResult{}, err
	}
	if err := exporter.Write(w, table); err != nil {
		return ExportResult{}, fmt.Errorf("dashboard: export %s: %w", exporter.Format(), err)
	}
	result := ExportResult{
		Format:      exporter.Format(),
		ContentType: exporter.ContentType(),
		Filename:    table.Name + "." + exporter.Format(),
		Rows:        len(table.Rows),
	}
	s.recordTelemetry(ctx, "dashboard.export", map[string]any{
		"session_id": sessionID,
		"viewer":     session.Viewer.UserID,
		"format":     result.Format,
		"rows":       result.Rows,
	})
	return result, nil
}

func (s *Service) exporter(format string) (Exporter, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if s.opts.Exporters == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	exporter, ok := s.opts.Exporters.Exporter(format)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return exporter, nil
}

func (s *Service) exportTable(ctx context.Context, view *View, req ExportRequest) (Table, error) {
	switch strings.ToLower(strings.TrimSpace(req.View)) {
	case "", ExportViewRecords:
		records, err := view.Records(ctx)
		if err != nil {
			return Table{}, err
		}
		var locations Labeler
		if l, ok := s.opts.Hierarchy.(Labeler); ok {
			locations = l
		}
		return RecordsTable(records, s.opts.Catalog, locations), nil
	case ExportViewAggregate:
		groupBy := req.GroupBy
		if groupBy == "" {
			groupBy = "region"
		}
		keyFn, ok := KeyFuncFor(groupBy)
		if !ok {
			return Table{}, fmt.Errorf("%w: %s", ErrUnknownGrouping, groupBy)
		}
		var (
			groups []AggregateResult
			err    error
		)
		if req.Rank {
			groups, err = view.Ranked(ctx, keyFn, 0)
		} else {
			groups, err = view.Aggregate(ctx, keyFn)
		}
		if err != nil {
			return Table{}, err
		}
		return AggregateTable(groups, groupBy, s.labels), nil
	}
	return Table{}, fmt.Errorf("%w: %s", ErrUnknownView, req.View)
}

// Menu returns the navigation entries the viewer may see.
func (s *Service) Menu(viewer ViewerContext) []MenuItem {
	return VisibleMenu(s.opts.Menu, viewer, s.opts.Policy)
}

// Labels resolves location ids and category keys to display labels.
func (s *Service) Labels() Labeler {
	return s.labels
}

// Reload drops cached views and charts after the underlying records changed.
func (s *Service) Reload(ctx context.Context) {
	s.sessions.InvalidateAll()
	s.dataGeneration.Add(1)
	s.opts.Charts.Purge()
	s.recordTelemetry(ctx, "dashboard.data.reload", nil)
}

// chartDataKey names the data a chart was built from. generation must be read
// before the records so a render racing Reload is stored under a dead key.
func (s *Service) chartDataKey(generation uint64, groupBy string, state FilterState) string {
	return s.id + ":" + strconv.FormatUint(generation, 10) + ":" + groupBy + ":" + stateHash(state)
}

func (s *Service) notify(ctx context.Context, event FilterEvent) error {
	if err := s.opts.RefreshHook.FilterChanged(ctx, event); err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		s.opts.Logger.WarnContext(ctx, "filter refresh hook failed", "session_id", event.SessionID, "error", err)
	}
	return nil
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}

func snapshotOf(session *Session) FilterSnapshot {
	state, version := session.Engine.Snapshot()
	return FilterSnapshot{
		SessionID:   session.ID,
		State:       state,
		Version:     version,
		ActiveCount: state.ActiveCount(),
		Options:     session.Engine.optionsFor(state),
	}
}

func stateSubtitle(state FilterState, labels Labeler) string {
	parts := []string{}
	for _, value := range []string{state.Region, state.District, state.Branch, state.ServiceType, state.MainCategory, state.SubCategory} {
		if !isAll(value) {
			parts = append(parts, label(labels, value))
		}
	}
	return strings.Join(parts, " / ")
}
