package analytics

import (
	"context"
	"time"

	dashboard "github.com/goliatone/go-feedback-dashboard/components/dashboard"
)

// RecordQuery bounds the records requested from an upstream feedback service.
type RecordQuery struct {
	From time.Time
	To   time.Time
}

// RecordClient fetches feedback records from an upstream analytics service.
type RecordClient interface {
	FetchRecords(ctx context.Context, query RecordQuery) ([]dashboard.FeedbackRecord, error)
}
