package dashboard

import (
	"sort"
	"strings"
)

// FilteredRecords returns, in input order, the records matching every
// constrained dimension of state. The input slice is never modified.
func FilteredRecords(records []FeedbackRecord, state FilterState) []FeedbackRecord {
	out := make([]FeedbackRecord, 0, len(records))
	if len(records) == 0 {
		return out
	}
	needle := strings.ToLower(strings.TrimSpace(state.SearchText))
	for _, record := range records {
		if matches(record, state, needle) {
			out = append(out, record)
		}
	}
	return out
}

// Matches reports whether a single record passes state.
func Matches(record FeedbackRecord, state FilterState) bool {
	return matches(record, state, strings.ToLower(strings.TrimSpace(state.SearchText)))
}

func matches(r FeedbackRecord, s FilterState, needle string) bool {
	if !isAll(s.Region) && r.Location.Region != s.Region {
		return false
	}
	if !isAll(s.District) && r.Location.District != s.District {
		return false
	}
	if !isAll(s.Branch) && r.Location.Branch != s.Branch {
		return false
	}
	if !isAll(s.ServiceType) && r.ServiceType != s.ServiceType {
		return false
	}
	if !isAll(s.Sentiment) && !r.HasSentiment(Sentiment(s.Sentiment)) {
		return false
	}
	if !isAll(s.MainCategory) && !opinionated(r.SentimentByCategory, s.MainCategory) {
		return false
	}
	if !isAll(s.SubCategory) && !opinionated(r.DetailedSentiment, s.SubCategory) {
		return false
	}
	if s.DateRange != nil && !s.DateRange.Contains(r.Timestamp) {
		return false
	}
	if needle != "" && !strings.Contains(strings.ToLower(r.Comment), needle) {
		return false
	}
	return true
}

// opinionated reports whether key carries a non-neutral polarity.
func opinionated(values map[string]Sentiment, key string) bool {
	value, ok := values[key]
	return ok && value != SentimentNeutral && value != ""
}

// Observation is one (group, polarity) contribution emitted by a KeyFunc.
type Observation struct {
	Key       string
	Sentiment Sentiment
}

// KeyFunc maps a record to the groups it contributes to.
type KeyFunc func(FeedbackRecord) []Observation

// GroupBy folds observations into per-key counts in a single pass. Groups are
// returned in first-seen order.
func GroupBy(records []FeedbackRecord, keyFn KeyFunc) []AggregateResult {
	out := []AggregateResult{}
	if keyFn == nil {
		return out
	}
	index := map[string]int{}
	for _, record := range records {
		for _, obs := range keyFn(record) {
			idx, ok := index[obs.Key]
			if !ok {
				idx = len(out)
				index[obs.Key] = idx
				out = append(out, AggregateResult{GroupKey: obs.Key})
			}
			out[idx].TotalCount++
			switch obs.Sentiment {
			case SentimentPositive:
				out[idx].PositiveCount++
			case SentimentNegative:
				out[idx].NegativeCount++
			}
		}
	}
	return out
}

// RankByNegativeCount sorts a copy of groups by NegativeCount, highest first.
// Ties keep their input order.
func RankByNegativeCount(groups []AggregateResult) []AggregateResult {
	out := make([]AggregateResult, len(groups))
	copy(out, groups)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].NegativeCount > out[j].NegativeCount
	})
	return out
}

// TopN truncates groups to at most n entries; n <= 0 keeps everything.
func TopN(groups []AggregateResult, n int) []AggregateResult {
	if n <= 0 || n >= len(groups) {
		return groups
	}
	return groups[:n]
}

// SingleKey adapts a plain key extractor; the record's OverallSentiment is counted.
// Records for which fn returns "" are skipped.
func SingleKey(fn func(FeedbackRecord) string) KeyFunc {
	return func(r FeedbackRecord) []Observation {
		key := fn(r)
		if key == "" {
			return nil
		}
		return []Observation{{Key: key, Sentiment: r.OverallSentiment()}}
	}
}

var (
	ByRegion      = SingleKey(func(r FeedbackRecord) string { return r.Location.Region })
	ByDistrict    = SingleKey(func(r FeedbackRecord) string { return r.Location.District })
	ByBranch      = SingleKey(func(r FeedbackRecord) string { return r.Location.Branch })
	ByServiceType = SingleKey(func(r FeedbackRecord) string { return r.ServiceType })
	ByDay         = SingleKey(func(r FeedbackRecord) string {
		if r.Timestamp.IsZero() {
			return ""
		}
		return r.Timestamp.UTC().Format("2006-01-02")
	})
)

// ByCategory emits one observation per main category mentioned by the record.
func ByCategory(r FeedbackRecord) []Observation {
	return observationsFrom(r.SentimentByCategory)
}

// BySubCategory emits one observation per detailed subcategory.
func BySubCategory(r FeedbackRecord) []Observation {
	return observationsFrom(r.DetailedSentiment)
}

func observationsFrom(values map[string]Sentiment) []Observation {
	if len(values) == 0 {
		return nil
	}
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]Observation, 0, len(keys))
	for _, key := range keys {
		out = append(out, Observation{Key: key, Sentiment: values[key]})
	}
	return out
}

// KeyFuncFor resolves a grouping by name for transports and the CLI.
func KeyFuncFor(name string) (KeyFunc, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "region", "":
		return ByRegion, true
	case "district":
		return ByDistrict, true
	case "branch":
		return ByBranch, true
	case "service_type", "service":
		return ByServiceType, true
	case "category", "main_category":
		return ByCategory, true
	case "sub_category", "subcategory":
		return BySubCategory, true
	case "day", "date":
		return ByDay, true
	}
	return nil, false
}

// Summary carries the KPI card values for a record set.
type Summary struct {
	Total              int                `json:"total"`
	Positive           int                `json:"positive"`
	Negative           int                `json:"negative"`
	Neutral            int                `json:"neutral"`
	SatisfactionAvg    map[string]float64 `json:"satisfaction_avg"`
	SatisfactionAnswer map[string]int     `json:"satisfaction_answers"`
}

// Summarize counts records by OverallSentiment and averages each satisfaction dimension.
func Summarize(records []FeedbackRecord) Summary {
	summary := Summary{
		SatisfactionAvg:    map[string]float64{},
		SatisfactionAnswer: map[string]int{},
	}
	sums := map[string]int{}
	for _, r := range records {
		summary.Total++
		switch r.OverallSentiment() {
		case SentimentPositive:
			summary.Positive++
		case SentimentNegative:
			summary.Negative++
		default:
			summary.Neutral++
		}
		for dim, score := range r.SatisfactionScores {
			sums[dim] += score
			summary.SatisfactionAnswer[dim]++
		}
	}
	for dim, total := range sums {
		summary.SatisfactionAvg[dim] = float64(total) / float64(summary.SatisfactionAnswer[dim])
	}
	return summary
}
