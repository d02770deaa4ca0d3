package mockdata

import (
	"testing"

	dashboard "github.com/goliatone/go-feedback-dashboard/components/dashboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T) (*dashboard.StaticHierarchy, *dashboard.CategoryCatalog) {
	t.Helper()
	hierarchy, catalog, err := dashboard.DefaultDataset().Build()
	require.NoError(t, err)
	return hierarchy, catalog
}

func TestGenerateIsDeterministic(t *testing.T) {
	hierarchy, catalog := build(t)
	a, err := Generate(hierarchy, catalog, Options{Count: 50, Seed: 7})
	require.NoError(t, err)
	b, err := Generate(hierarchy, catalog, Options{Count: 50, Seed: 7})
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := Generate(hierarchy, catalog, Options{Count: 50, Seed: 8})
	require.NoError(t, err)
	assert.NotEqual(t, a[0].ID, c[0].ID)
}

func TestGeneratedRecordsPassValidation(t *testing.T) {
	hierarchy, catalog := build(t)
	records, err := Generate(hierarchy, catalog, Options{Count: 200, Seed: 1})
	require.NoError(t, err)
	require.Len(t, records, 200)

	kept, issues := dashboard.ValidateRecords(records, hierarchy, catalog, nil)
	assert.Empty(t, issues)
	assert.Len(t, kept, 200)

	opts := Options{}
	opts.applyDefaults()
	for _, rec := range records {
		assert.False(t, rec.Timestamp.Before(opts.Start), rec.ID)
		assert.True(t, rec.Timestamp.Before(opts.End), rec.ID)
		assert.NotEmpty(t, rec.SentimentByCategory, rec.ID)
	}
}

func TestGenerateRejectsEmptyHierarchy(t *testing.T) {
	_, catalog := build(t)
	_, err := Generate(nil, catalog, Options{Count: 1})
	assert.Error(t, err)
}
