package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-feedback-dashboard/components/dashboard"
)

// AggregateInput selects a session and grouping.
type AggregateInput struct {
	SessionID string
	Request   dashboard.AggregateRequest
}

type aggregateService interface {
	Aggregate(ctx context.Context, sessionID string, req dashboard.AggregateRequest) ([]dashboard.AggregateResult, error)
}

// AggregateQuery groups a session's filtered records.
type AggregateQuery struct {
	service aggregateService
}

// NewAggregateQuery builds the query.
func NewAggregateQuery(service aggregateService) *AggregateQuery {
	return &AggregateQuery{service: service}
}

var _ gocommand.Querier[AggregateInput, []dashboard.AggregateResult] = (*AggregateQuery)(nil)

// Query returns grouped counts, ranked when requested.
func (q *AggregateQuery) Query(ctx context.Context, input AggregateInput) ([]dashboard.AggregateResult, error) {
	return q.service.Aggregate(ctx, input.SessionID, input.Request)
}
