package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testHierarchy(t *testing.T) *StaticHierarchy {
	t.Helper()
	h, err := NewStaticHierarchy([]LocationNode{
		{ID: "ภาค 1", Label: "ภาค 1", Level: LevelRegion, Order: 1},
		{ID: "ภาค 2", Label: "ภาค 2", Level: LevelRegion, Order: 2},
		{ID: "ภาค 3", Label: "ภาค 3", Level: LevelRegion, Order: 3},
		{ID: "เขต 1.1", Level: LevelDistrict, ParentID: "ภาค 1", Order: 1},
		{ID: "เขต 1.2", Level: LevelDistrict, ParentID: "ภาค 1", Order: 2},
		{ID: "เขต 2.1", Level: LevelDistrict, ParentID: "ภาค 2", Order: 1},
		{ID: "BR-111", Label: "สาขา 1.1.1", Level: LevelBranch, ParentID: "เขต 1.1", Order: 1},
		{ID: "BR-112", Label: "สาขา 1.1.2", Level: LevelBranch, ParentID: "เขต 1.1", Order: 2},
		{ID: "BR-121", Label: "สาขา 1.2.1", Level: LevelBranch, ParentID: "เขต 1.2", Order: 1},
		{ID: "BR-211", Label: "สาขา 2.1.1", Level: LevelBranch, ParentID: "เขต 2.1", Order: 1},
	}, WithBusinessOrder())
	require.NoError(t, err)
	return h
}

func testCatalog(t *testing.T) *CategoryCatalog {
	t.Helper()
	c, err := NewCategoryCatalog([]Category{
		{Key: CategoryStaff, Label: "พนักงาน", Subcategories: []Subcategory{
			{Key: "staff_courtesy", Label: "ความสุภาพ"},
			{Key: "staff_speed", Label: "ความรวดเร็ว"},
		}},
		{Key: CategoryTechnology, Label: "เทคโนโลยี", Subcategories: []Subcategory{
			{Key: "tech_atm", Label: "ตู้ ATM"},
			{Key: "tech_mobile_app", Label: "แอปพลิเคชัน"},
		}},
		{Key: CategoryService, Label: "การบริการ"},
	})
	require.NoError(t, err)
	return c
}

func day(d int) time.Time {
	return time.Date(2025, time.January, d, 10, 0, 0, 0, time.UTC)
}

// testRecords spans every region and polarity so filters have something to cut.
func testRecords() []FeedbackRecord {
	return []FeedbackRecord{
		{
			ID: "fb-1", Timestamp: day(1),
			Location:            LocationPath{Region: "ภาค 1", District: "เขต 1.1", Branch: "BR-111"},
			ServiceType:         "deposit",
			SentimentByCategory: map[string]Sentiment{CategoryStaff: SentimentNegative, CategoryTechnology: SentimentPositive},
			DetailedSentiment:   map[string]Sentiment{"staff_courtesy": SentimentNegative, "tech_atm": SentimentPositive},
			SatisfactionScores:  map[string]int{"overall": 2},
			Comment:             "พนักงานไม่สุภาพ แต่ตู้ ATM ใช้งานง่าย",
		},
		{
			ID: "fb-2", Timestamp: day(3),
			Location:            LocationPath{Region: "ภาค 1", District: "เขต 1.1", Branch: "BR-112"},
			ServiceType:         "loan",
			SentimentByCategory: map[string]Sentiment{CategoryStaff: SentimentPositive},
			DetailedSentiment:   map[string]Sentiment{"staff_speed": SentimentPositive},
			SatisfactionScores:  map[string]int{"overall": 5},
			Comment:             "Fast and friendly service",
		},
		{
			ID: "fb-3", Timestamp: day(5),
			Location:            LocationPath{Region: "ภาค 1", District: "เขต 1.2", Branch: "BR-121"},
			ServiceType:         "deposit",
			SentimentByCategory: map[string]Sentiment{CategoryStaff: SentimentNeutral, CategoryTechnology: SentimentNegative},
			DetailedSentiment:   map[string]Sentiment{"tech_mobile_app": SentimentNegative},
			Comment:             "แอปค้างบ่อย",
		},
		{
			ID: "fb-4", Timestamp: day(7),
			Location:            LocationPath{Region: "ภาค 2", District: "เขต 2.1", Branch: "BR-211"},
			ServiceType:         "withdrawal",
			SentimentByCategory: map[string]Sentiment{CategoryService: SentimentNegative},
			SatisfactionScores:  map[string]int{"overall": 1, "speed": 2},
			Comment:             "Queue was too long",
		},
		{
			ID: "fb-5", Timestamp: day(9),
			Location:            LocationPath{Region: "ภาค 3"},
			ServiceType:         "deposit",
			SentimentByCategory: map[string]Sentiment{CategoryService: SentimentNeutral},
			Comment:             "ok",
		},
	}
}

func ids(records []FeedbackRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func nodeIDs(nodes []LocationNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}
