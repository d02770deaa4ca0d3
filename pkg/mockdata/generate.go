// Package mockdata produces deterministic feedback records for demos and tests.
package mockdata

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	dashboard "github.com/goliatone/go-feedback-dashboard/components/dashboard"
)

// namespace seeds uuid.NewSHA1 so identical seeds yield identical ids.
var namespace = uuid.MustParse("6f1c9a0e-3d2b-4e55-9c41-2a7f0b8d5e13")

// Options controls generation.
type Options struct {
	Count        int
	Seed         uint64
	Start        time.Time
	End          time.Time
	ServiceTypes []string
	Dimensions   []string
}

func (o *Options) applyDefaults() {
	if o.End.IsZero() {
		o.End = time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC)
	}
	if o.Start.IsZero() || !o.Start.Before(o.End) {
		o.Start = o.End.AddDate(0, 0, -90)
	}
	if len(o.ServiceTypes) == 0 {
		o.ServiceTypes = dashboard.DefaultServiceTypes()
	}
	if len(o.Dimensions) == 0 {
		o.Dimensions = dashboard.DefaultDimensions()
	}
}

var comments = map[dashboard.Sentiment][]string{
	dashboard.SentimentPositive: {
		"พนักงานบริการดีมาก ยิ้มแย้มแจ่มใส",
		"รวดเร็วทันใจ ประทับใจ",
		"แอปใช้งานง่าย สะดวก",
		"สาขาสะอาด ที่นั่งเพียงพอ",
	},
	dashboard.SentimentNegative: {
		"รอคิวนานมาก",
		"ตู้ ATM ใช้งานไม่ได้บ่อย",
		"ค่าธรรมเนียมสูงเกินไป",
		"พนักงานอธิบายไม่ชัดเจน",
	},
	dashboard.SentimentNeutral: {
		"ทั่วไป",
		"ใช้บริการตามปกติ",
		"",
	},
}

// Generate returns opts.Count records whose locations all exist in hierarchy
// and whose categories come from catalog. The same seed yields the same records.
func Generate(hierarchy dashboard.LocationHierarchy, catalog *dashboard.CategoryCatalog, opts Options) ([]dashboard.FeedbackRecord, error) {
	opts.applyDefaults()
	if opts.Count < 0 {
		return nil, fmt.Errorf("mockdata: count must not be negative")
	}
	paths := branchPaths(hierarchy)
	if len(paths) == 0 {
		return nil, fmt.Errorf("mockdata: hierarchy has no branches")
	}
	categories := catalog.Categories()
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	span := opts.End.Sub(opts.Start)

	out := make([]dashboard.FeedbackRecord, 0, opts.Count)
	for i := 0; i < opts.Count; i++ {
		rec := dashboard.FeedbackRecord{
			ID:                  uuid.NewSHA1(namespace, fmt.Appendf(nil, "%d/%d", opts.Seed, i)).String(),
			Timestamp:           opts.Start.Add(time.Duration(rng.Int64N(int64(span)))).Truncate(time.Minute),
			Location:            paths[rng.IntN(len(paths))],
			ServiceType:         opts.ServiceTypes[rng.IntN(len(opts.ServiceTypes))],
			SentimentByCategory: map[string]dashboard.Sentiment{},
			DetailedSentiment:   map[string]dashboard.Sentiment{},
			SatisfactionScores:  map[string]int{},
		}
		mentioned := 1 + rng.IntN(3)
		for _, idx := range rng.Perm(len(categories))[:min(mentioned, len(categories))] {
			cat := categories[idx]
			polarity := pickSentiment(rng)
			rec.SentimentByCategory[cat.Key] = polarity
			if len(cat.Subcategories) > 0 {
				sub := cat.Subcategories[rng.IntN(len(cat.Subcategories))]
				rec.DetailedSentiment[sub.Key] = polarity
			}
		}
		overall := rec.OverallSentiment()
		for _, dim := range opts.Dimensions {
			rec.SatisfactionScores[dim] = scoreFor(rng, overall)
		}
		pool := comments[overall]
		rec.Comment = pool[rng.IntN(len(pool))]
		out = append(out, rec)
	}
	return out, nil
}

func pickSentiment(rng *rand.Rand) dashboard.Sentiment {
	switch n := rng.IntN(10); {
	case n < 5:
		return dashboard.SentimentPositive
	case n < 8:
		return dashboard.SentimentNegative
	default:
		return dashboard.SentimentNeutral
	}
}

func scoreFor(rng *rand.Rand, overall dashboard.Sentiment) int {
	switch overall {
	case dashboard.SentimentPositive:
		return 4 + rng.IntN(2)
	case dashboard.SentimentNegative:
		return 1 + rng.IntN(3)
	}
	return 2 + rng.IntN(3)
}

func branchPaths(hierarchy dashboard.LocationHierarchy) []dashboard.LocationPath {
	if hierarchy == nil {
		return nil
	}
	var paths []dashboard.LocationPath
	for _, region := range hierarchy.ChildrenOf(dashboard.LevelRegion, "") {
		for _, district := range hierarchy.ChildrenOf(dashboard.LevelDistrict, region.ID) {
			for _, branch := range hierarchy.ChildrenOf(dashboard.LevelBranch, district.ID) {
				paths = append(paths, dashboard.LocationPath{
					Region:   region.ID,
					District: district.ID,
					Branch:   branch.ID,
				})
			}
		}
	}
	return paths
}
