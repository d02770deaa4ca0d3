package dashboard

import (
	"context"
	"sync"
)

// InMemoryRepository serves a resident record slice. Callers receive copies so
// aggregation code cannot mutate the backing data.
type InMemoryRepository struct {
	mu      sync.RWMutex
	records []FeedbackRecord
}

var _ Repository = (*InMemoryRepository)(nil)

// NewInMemoryRepository stores a copy of records.
func NewInMemoryRepository(records []FeedbackRecord) *InMemoryRepository {
	return &InMemoryRepository{records: cloneRecords(records)}
}

// All returns every stored record in load order.
func (r *InMemoryRepository) All(context.Context) ([]FeedbackRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneRecords(r.records), nil
}

// Replace swaps the stored records, e.g. after a dataset reload.
func (r *InMemoryRepository) Replace(records []FeedbackRecord) {
	cloned := cloneRecords(records)
	r.mu.Lock()
	r.records = cloned
	r.mu.Unlock()
}

// Len reports the number of stored records.
func (r *InMemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

func cloneRecords(records []FeedbackRecord) []FeedbackRecord {
	out := make([]FeedbackRecord, len(records))
	for i, rec := range records {
		out[i] = cloneRecord(rec)
	}
	return out
}

func cloneRecord(rec FeedbackRecord) FeedbackRecord {
	rec.SentimentByCategory = cloneSentiments(rec.SentimentByCategory)
	rec.DetailedSentiment = cloneSentiments(rec.DetailedSentiment)
	if rec.SatisfactionScores != nil {
		scores := make(map[string]int, len(rec.SatisfactionScores))
		for k, v := range rec.SatisfactionScores {
			scores[k] = v
		}
		rec.SatisfactionScores = scores
	}
	return rec
}

func cloneSentiments(in map[string]Sentiment) map[string]Sentiment {
	if in == nil {
		return nil
	}
	out := make(map[string]Sentiment, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
