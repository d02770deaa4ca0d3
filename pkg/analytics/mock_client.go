package analytics

import (
	"context"
	"sync"

	dashboard "github.com/goliatone/go-feedback-dashboard/components/dashboard"
)

// MockClient implements RecordClient using in-memory fixtures.
type MockClient struct {
	mu      sync.RWMutex
	records []dashboard.FeedbackRecord
	calls   int
}

// NewMockClient builds a mock client serving records.
func NewMockClient(records []dashboard.FeedbackRecord) *MockClient {
	return &MockClient{records: append([]dashboard.FeedbackRecord(nil), records...)}
}

// FetchRecords returns the fixtures whose timestamp falls inside the query window.
func (c *MockClient) FetchRecords(_ context.Context, query RecordQuery) ([]dashboard.FeedbackRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	window := dashboard.DateRange{From: query.From, To: query.To}
	out := make([]dashboard.FeedbackRecord, 0, len(c.records))
	for _, rec := range c.records {
		if window.Contains(rec.Timestamp) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Calls reports how many fetches were served.
func (c *MockClient) Calls() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.calls
}
