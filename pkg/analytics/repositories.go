package analytics

import (
	"context"

	dashboard "github.com/goliatone/go-feedback-dashboard/components/dashboard"
)

// NewRecordSource adapts a client into a dashboard.RecordSource so remote
// records pass the same load-time validation as generated ones.
func NewRecordSource(ctx context.Context, client RecordClient, query RecordQuery) dashboard.RecordSource {
	return func(*dashboard.StaticHierarchy, *dashboard.CategoryCatalog) ([]dashboard.FeedbackRecord, error) {
		return client.FetchRecords(ctx, query)
	}
}
