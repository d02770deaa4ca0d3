package dashboard

import (
	"fmt"
	"log/slog"
)

// RecordIssue explains why a record was dropped at load time.
type RecordIssue struct {
	RecordID string
	Reason   string
}

func (i RecordIssue) Error() string {
	return fmt.Sprintf("record %s: %s", i.RecordID, i.Reason)
}

// ValidateRecords checks records against the hierarchy and catalog once, before
// they reach the aggregation layer. Inconsistent records are dropped and
// reported; the remaining ones keep their order.
func ValidateRecords(records []FeedbackRecord, hierarchy *StaticHierarchy, catalog *CategoryCatalog, logger *slog.Logger) ([]FeedbackRecord, []RecordIssue) {
	if logger == nil {
		logger = slog.Default()
	}
	valid := make([]FeedbackRecord, 0, len(records))
	var issues []RecordIssue
	for _, rec := range records {
		if reason := recordProblem(rec, hierarchy, catalog); reason != "" {
			issue := RecordIssue{RecordID: rec.ID, Reason: reason}
			issues = append(issues, issue)
			logger.Warn("dropping inconsistent feedback record",
				slog.String("record_id", rec.ID),
				slog.String("reason", reason),
			)
			continue
		}
		valid = append(valid, rec)
	}
	if len(issues) > 0 {
		logger.Info("feedback records validated",
			slog.Int("accepted", len(valid)),
			slog.Int("dropped", len(issues)),
		)
	}
	return valid, issues
}

func recordProblem(rec FeedbackRecord, hierarchy *StaticHierarchy, catalog *CategoryCatalog) string {
	if rec.ID == "" {
		return "missing id"
	}
	if hierarchy != nil && !hierarchy.Contains(rec.Location) {
		return fmt.Sprintf("location %s/%s/%s is not consistent with the hierarchy", rec.Location.Region, rec.Location.District, rec.Location.Branch)
	}
	for key, value := range rec.SentimentByCategory {
		if !value.Valid() {
			return fmt.Sprintf("category %s has unknown sentiment %q", key, value)
		}
		if catalog != nil {
			if _, ok := catalog.Category(key); !ok {
				return fmt.Sprintf("unknown category %s", key)
			}
		}
	}
	for key, value := range rec.DetailedSentiment {
		if !value.Valid() {
			return fmt.Sprintf("subcategory %s has unknown sentiment %q", key, value)
		}
		if catalog != nil {
			if _, ok := catalog.ParentOf(key); !ok {
				return fmt.Sprintf("unknown subcategory %s", key)
			}
		}
	}
	for dim, score := range rec.SatisfactionScores {
		if score < 1 || score > 5 {
			return fmt.Sprintf("satisfaction %s score %d outside 1..5", dim, score)
		}
	}
	return ""
}
