package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-feedback-dashboard/components/dashboard"
)

// SessionInput identifies a dashboard session.
type SessionInput struct {
	SessionID string `json:"session_id"`
}

type filtersService interface {
	Filters(ctx context.Context, sessionID string) (dashboard.FilterSnapshot, error)
}

// FilterOptionsQuery returns a session's selection and dependent option lists.
type FilterOptionsQuery struct {
	service filtersService
}

// NewFilterOptionsQuery builds the query.
func NewFilterOptionsQuery(service filtersService) *FilterOptionsQuery {
	return &FilterOptionsQuery{service: service}
}

var _ gocommand.Querier[SessionInput, dashboard.FilterSnapshot] = (*FilterOptionsQuery)(nil)

// Query resolves the snapshot for the session.
func (q *FilterOptionsQuery) Query(ctx context.Context, input SessionInput) (dashboard.FilterSnapshot, error) {
	return q.service.Filters(ctx, input.SessionID)
}

type summaryService interface {
	Summary(ctx context.Context, sessionID string) (dashboard.Summary, error)
}

// SummaryQuery computes KPI values for a session.
type SummaryQuery struct {
	service summaryService
}

// NewSummaryQuery builds the query.
func NewSummaryQuery(service summaryService) *SummaryQuery {
	return &SummaryQuery{service: service}
}

var _ gocommand.Querier[SessionInput, dashboard.Summary] = (*SummaryQuery)(nil)

// Query summarises the session's filtered records.
func (q *SummaryQuery) Query(ctx context.Context, input SessionInput) (dashboard.Summary, error) {
	return q.service.Summary(ctx, input.SessionID)
}
