package dashboard

import (
	"context"
	"time"
)

// All is the wildcard selection used by every filter dimension.
const All = "all"

// Level identifies a tier of the location hierarchy.
type Level string

const (
	LevelRegion   Level = "region"
	LevelDistrict Level = "district"
	LevelBranch   Level = "branch"
)

// parent returns the level directly above l, or "" for roots and unknown levels.
func (l Level) parent() Level {
	switch l {
	case LevelDistrict:
		return LevelRegion
	case LevelBranch:
		return LevelDistrict
	}
	return ""
}

// Sentiment is the tri-state polarity attached to a category or subcategory.
type Sentiment string

const (
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
	SentimentPositive Sentiment = "positive"
)

// Valid reports whether s is one of the three known polarities.
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentNegative, SentimentNeutral, SentimentPositive:
		return true
	}
	return false
}

// LocationNode is a single region, district or branch.
type LocationNode struct {
	ID       string `json:"id" yaml:"id"`
	Label    string `json:"label" yaml:"label"`
	Level    Level  `json:"level" yaml:"level"`
	ParentID string `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Order    int    `json:"order,omitempty" yaml:"order,omitempty"`
}

// LocationPath pins a record to its region/district/branch.
type LocationPath struct {
	Region   string `json:"region"`
	District string `json:"district,omitempty"`
	Branch   string `json:"branch,omitempty"`
}

// FeedbackRecord is one customer feedback entry.
type FeedbackRecord struct {
	ID                  string               `json:"id"`
	Timestamp           time.Time            `json:"timestamp"`
	Location            LocationPath         `json:"location"`
	ServiceType         string               `json:"service_type"`
	SentimentByCategory map[string]Sentiment `json:"sentiment_by_category"`
	DetailedSentiment   map[string]Sentiment `json:"detailed_sentiment,omitempty"`
	SatisfactionScores  map[string]int       `json:"satisfaction_scores,omitempty"`
	Comment             string               `json:"comment"`
}

// HasSentiment reports whether any main category carries the given polarity.
func (r FeedbackRecord) HasSentiment(s Sentiment) bool {
	for _, value := range r.SentimentByCategory {
		if value == s {
			return true
		}
	}
	return false
}

// OverallSentiment collapses the per-category polarities into one value:
// negative wins over positive, and neutral means neither appears.
func (r FeedbackRecord) OverallSentiment() Sentiment {
	switch {
	case r.HasSentiment(SentimentNegative):
		return SentimentNegative
	case r.HasSentiment(SentimentPositive):
		return SentimentPositive
	}
	return SentimentNeutral
}

// DateRange is an inclusive time window. A zero bound leaves that side open.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Contains reports whether ts falls within the inclusive bounds.
func (d DateRange) Contains(ts time.Time) bool {
	if !d.From.IsZero() && ts.Before(d.From) {
		return false
	}
	if !d.To.IsZero() && ts.After(d.To) {
		return false
	}
	return true
}

// AggregateResult is one row of a grouped view.
type AggregateResult struct {
	GroupKey      string `json:"group_key"`
	PositiveCount int    `json:"positive_count"`
	NegativeCount int    `json:"negative_count"`
	TotalCount    int    `json:"total_count"`
}

// Repository is the read-only record store the aggregation layer queries.
type Repository interface {
	All(ctx context.Context) ([]FeedbackRecord, error)
}

// LocationHierarchy answers containment queries over the location tree.
type LocationHierarchy interface {
	ChildrenOf(level Level, parentID string) []LocationNode
	Node(id string) (LocationNode, bool)
}

// ViewerContext captures the active user and locale.
type ViewerContext struct {
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles"`
	Locale string   `json:"locale,omitempty"`
}
