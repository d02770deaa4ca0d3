package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilteredRecordsByRegion(t *testing.T) {
	records := []FeedbackRecord{
		{ID: "a", Location: LocationPath{Region: "ภาค 1"}},
		{ID: "b", Location: LocationPath{Region: "ภาค 2"}},
		{ID: "c", Location: LocationPath{Region: "ภาค 3"}},
	}
	state := DefaultFilterState()
	state.Region = "ภาค 1"

	assert.Equal(t, []string{"a"}, ids(FilteredRecords(records, state)))
}

func TestFilteredRecordsDefaultStateKeepsEverythingInOrder(t *testing.T) {
	records := testRecords()
	assert.Equal(t, records, FilteredRecords(records, DefaultFilterState()))
}

func TestFilteredRecordsMainCategoryExcludesNeutral(t *testing.T) {
	state := DefaultFilterState()
	state.MainCategory = CategoryStaff

	// fb-3 mentions staff only as neutral.
	assert.Equal(t, []string{"fb-1", "fb-2"}, ids(FilteredRecords(testRecords(), state)))
}

func TestFilteredRecordsDimensions(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*FilterState)
		want   []string
	}{
		{"district", func(s *FilterState) { s.District = "เขต 1.1" }, []string{"fb-1", "fb-2"}},
		{"branch", func(s *FilterState) { s.Branch = "BR-121" }, []string{"fb-3"}},
		{"service type", func(s *FilterState) { s.ServiceType = "deposit" }, []string{"fb-1", "fb-3", "fb-5"}},
		{"negative sentiment", func(s *FilterState) { s.Sentiment = "negative" }, []string{"fb-1", "fb-3", "fb-4"}},
		{"positive sentiment", func(s *FilterState) { s.Sentiment = "positive" }, []string{"fb-1", "fb-2"}},
		{"subcategory", func(s *FilterState) { s.SubCategory = "tech_mobile_app" }, []string{"fb-3"}},
		{"date range", func(s *FilterState) { s.DateRange = &DateRange{From: day(3), To: day(7)} }, []string{"fb-2", "fb-3", "fb-4"}},
		{"open ended range", func(s *FilterState) { s.DateRange = &DateRange{From: day(7)} }, []string{"fb-4", "fb-5"}},
		{"search is case insensitive", func(s *FilterState) { s.SearchText = "  queue " }, []string{"fb-4"}},
		{"thai search", func(s *FilterState) { s.SearchText = "ATM" }, []string{"fb-1"}},
		{"unknown value matches nothing", func(s *FilterState) { s.Region = "ภาค 9" }, []string{}},
		{"garbage sentiment matches nothing", func(s *FilterState) { s.Sentiment = "angry" }, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			state := DefaultFilterState()
			tc.mutate(&state)
			assert.Equal(t, tc.want, ids(FilteredRecords(testRecords(), state)))
		})
	}
}

func TestFilteredRecordsEmptyInput(t *testing.T) {
	out := FilteredRecords(nil, DefaultFilterState())
	require.NotNil(t, out)
	assert.Empty(t, out)
}

func TestFilteredRecordsIsSubsetAndIdempotent(t *testing.T) {
	records := testRecords()
	before := ids(records)
	state := DefaultFilterState()
	state.Region = "ภาค 1"
	state.Sentiment = "negative"

	first := FilteredRecords(records, state)
	second := FilteredRecords(records, state)
	assert.Equal(t, first, second)
	assert.Equal(t, before, ids(records))

	known := map[string]bool{}
	for _, id := range before {
		known[id] = true
	}
	for _, r := range first {
		assert.True(t, known[r.ID], "record %s not in input", r.ID)
	}
}

func TestFilteredRecordsMonotonic(t *testing.T) {
	records := testRecords()
	constraints := []Change{
		{Field: FieldRegion, Value: "ภาค 1"},
		{Field: FieldServiceType, Value: "deposit"},
		{Field: FieldSentiment, Value: "negative"},
		{Field: FieldMainCategory, Value: CategoryTechnology},
		{Field: FieldSearchText, Value: "แอป"},
	}
	state := DefaultFilterState()
	prev := len(FilteredRecords(records, state))
	for _, change := range constraints {
		state = Reduce(state, change)
		n := len(FilteredRecords(records, state))
		assert.LessOrEqual(t, n, prev, "adding %s grew the result", change.Field)
		prev = n
	}
	assert.Equal(t, 1, prev)
}

func TestGroupByCountsObservationsInFirstSeenOrder(t *testing.T) {
	records := []FeedbackRecord{
		{ID: "1", SentimentByCategory: map[string]Sentiment{"A": SentimentNegative}},
		{ID: "2", SentimentByCategory: map[string]Sentiment{"A": SentimentNegative}},
		{ID: "3", SentimentByCategory: map[string]Sentiment{"B": SentimentNegative}},
		{ID: "4", SentimentByCategory: map[string]Sentiment{"A": SentimentPositive}},
		{ID: "5", SentimentByCategory: map[string]Sentiment{"A": SentimentNegative}},
	}
	groups := GroupBy(records, ByCategory)
	assert.Equal(t, []AggregateResult{
		{GroupKey: "A", PositiveCount: 1, NegativeCount: 3, TotalCount: 4},
		{GroupKey: "B", PositiveCount: 0, NegativeCount: 1, TotalCount: 1},
	}, groups)
}

func TestGroupByRegionUsesOverallSentiment(t *testing.T) {
	groups := GroupBy(testRecords(), ByRegion)
	assert.Equal(t, []AggregateResult{
		{GroupKey: "ภาค 1", PositiveCount: 1, NegativeCount: 2, TotalCount: 3},
		{GroupKey: "ภาค 2", PositiveCount: 0, NegativeCount: 1, TotalCount: 1},
		{GroupKey: "ภาค 3", PositiveCount: 0, NegativeCount: 0, TotalCount: 1},
	}, groups)
}

func TestGroupBySkipsEmptyKeysAndNilKeyFunc(t *testing.T) {
	// fb-5 has no district.
	groups := GroupBy(testRecords(), ByDistrict)
	total := 0
	for _, g := range groups {
		total += g.TotalCount
	}
	assert.Equal(t, 4, total)
	assert.Empty(t, GroupBy(testRecords(), nil))
	assert.Empty(t, GroupBy(nil, ByRegion))
}

func TestRankByNegativeCountIsStableDescending(t *testing.T) {
	groups := []AggregateResult{
		{GroupKey: "a", NegativeCount: 1},
		{GroupKey: "b", NegativeCount: 5},
		{GroupKey: "c", NegativeCount: 1},
		{GroupKey: "d", NegativeCount: 3},
		{GroupKey: "e", NegativeCount: 5},
	}
	ranked := RankByNegativeCount(groups)
	keys := []string{}
	for _, g := range ranked {
		keys = append(keys, g.GroupKey)
	}
	assert.Equal(t, []string{"b", "e", "d", "a", "c"}, keys)
	assert.Equal(t, "a", groups[0].GroupKey, "input must not be reordered")

	assert.Len(t, TopN(ranked, 2), 2)
	assert.Len(t, TopN(ranked, 0), 5)
	assert.Len(t, TopN(ranked, 10), 5)
}

func TestKeyFuncFor(t *testing.T) {
	for _, name := range []string{"", "region", "District", "branch", "service", "service_type", "category", "sub_category", "day"} {
		_, ok := KeyFuncFor(name)
		assert.True(t, ok, name)
	}
	_, ok := KeyFuncFor("weather")
	assert.False(t, ok)
}

func TestByDayAndSubCategory(t *testing.T) {
	days := GroupBy(testRecords()[:2], ByDay)
	assert.Equal(t, "2025-01-01", days[0].GroupKey)

	subs := GroupBy(testRecords(), BySubCategory)
	keys := []string{}
	for _, g := range subs {
		keys = append(keys, g.GroupKey)
	}
	assert.Equal(t, []string{"staff_courtesy", "tech_atm", "staff_speed", "tech_mobile_app"}, keys)
}

func TestSummarize(t *testing.T) {
	summary := Summarize(testRecords())
	assert.Equal(t, 5, summary.Total)
	assert.Equal(t, 1, summary.Positive)
	assert.Equal(t, 3, summary.Negative)
	assert.Equal(t, 1, summary.Neutral)
	assert.InDelta(t, 8.0/3.0, summary.SatisfactionAvg["overall"], 0.0001)
	assert.Equal(t, 3, summary.SatisfactionAnswer["overall"])
	assert.Equal(t, 1, summary.SatisfactionAnswer["speed"])

	empty := Summarize(nil)
	assert.Zero(t, empty.Total)
	assert.Empty(t, empty.SatisfactionAvg)
}

func TestOverallSentiment(t *testing.T) {
	assert.Equal(t, SentimentNegative, testRecords()[0].OverallSentiment())
	assert.Equal(t, SentimentPositive, testRecords()[1].OverallSentiment())
	assert.Equal(t, SentimentNeutral, testRecords()[4].OverallSentiment())
	assert.Equal(t, SentimentNeutral, FeedbackRecord{}.OverallSentiment())
}
