package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-feedback-dashboard/components/dashboard"
)

func writeRecordFile(t *testing.T, path string, ids ...string) {
	t.Helper()
	records := make([]dashboard.FeedbackRecord, 0, len(ids))
	for _, id := range ids {
		records = append(records, dashboard.FeedbackRecord{
			ID:                  id,
			Timestamp:           time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC),
			Location:            dashboard.LocationPath{Region: "ภาค 1", District: "เขต 1.1", Branch: "BR-111"},
			ServiceType:         "deposit",
			SentimentByCategory: map[string]dashboard.Sentiment{dashboard.CategoryStaff: dashboard.SentimentPositive},
		})
	}
	raw, err := json.Marshal(records)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o600))
}

func defaultFlags() FilterFlags {
	return FilterFlags{
		Region: "all", District: "all", Branch: "all", ServiceType: "all",
		Sentiment: "all", Category: "all", SubCategory: "all",
	}
}

func TestFilterFlagsChangesAreParentFirst(t *testing.T) {
	flags := defaultFlags()
	flags.Region = "ภาค 1"
	flags.District = "เขต 1.1"
	flags.Category = "staff"
	flags.SubCategory = "staff_courtesy"
	flags.From = "2025-01-01"
	flags.To = "2025-01-31"

	changes, err := flags.changes()
	require.NoError(t, err)

	state := dashboard.DefaultFilterState()
	for _, change := range changes {
		state = dashboard.Reduce(state, change)
	}
	assert.Equal(t, "ภาค 1", state.Region)
	assert.Equal(t, "เขต 1.1", state.District)
	assert.Equal(t, "staff_courtesy", state.SubCategory)
	require.NotNil(t, state.DateRange)
	assert.Equal(t, time.Date(2025, 1, 31, 23, 59, 59, 999999999, time.UTC), state.DateRange.To)
}

func TestFilterFlagsWithoutDatesSkipRange(t *testing.T) {
	changes, err := defaultFlags().changes()
	require.NoError(t, err)
	for _, change := range changes {
		assert.NotEqual(t, dashboard.FieldDateRange, change.Field)
	}

	flags := defaultFlags()
	flags.From = "01/02/2025"
	_, err = flags.changes()
	require.Error(t, err)
}

func TestParseDay(t *testing.T) {
	start, err := parseDay("2025-03-01", false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), start)

	empty, err := parseDay(" ", true)
	require.NoError(t, err)
	assert.True(t, empty.IsZero())
}

func TestExportDefaultName(t *testing.T) {
	assert.Equal(t, "feedback-records.csv", (&exportCmd{View: "records", Format: "csv"}).defaultName())
	assert.Equal(t, "feedback-aggregate-service-type.xlsx", (&exportCmd{View: "aggregate", By: "service_type", Format: "xlsx"}).defaultName())
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	summary := dashboard.Summary{
		Total: 3, Positive: 1, Negative: 2,
		SatisfactionAvg:    map[string]float64{"overall": 2.5},
		SatisfactionAnswer: map[string]int{"overall": 2},
	}
	ranked := []dashboard.AggregateResult{{GroupKey: "BR-111", NegativeCount: 2, TotalCount: 2}}
	labels := dashboard.LabelerFunc(func(key string) string { return "label:" + key })

	require.NoError(t, printSummary(&buf, summary, ranked, labels))
	out := buf.String()
	assert.Contains(t, out, "Total")
	assert.Contains(t, out, "2.50 (2 answers)")
	assert.Contains(t, out, "label:BR-111")
	assert.True(t, strings.Index(out, "Group") < strings.Index(out, "label:BR-111"))
}

func TestLoadConfigAppliesGlobals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: warn\nrecords: {count: 10}\n"), 0o600))

	cfg, err := loadConfig(&Globals{Config: path, LogLevel: "debug", DatasetFile: "tables.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "tables.yaml", cfg.Dataset)
	assert.Equal(t, 10, cfg.Records.Count)

	_, err = loadConfig(&Globals{LogLevel: "loud"})
	require.Error(t, err)
}

func TestGeneratedRecordSource(t *testing.T) {
	cfg := dashboard.DefaultConfig()
	cfg.Records.Count = 25
	doc := dashboard.DefaultDataset()

	source, err := recordSource(context.Background(), cfg, doc)
	require.NoError(t, err)
	env, err := dashboard.Bootstrap(doc, source, nil)
	require.NoError(t, err)
	assert.Equal(t, 25, env.Repository.Len())
	assert.Empty(t, env.Issues)
}

func TestRemoteRecordSourceRequiresValidClient(t *testing.T) {
	cfg := dashboard.DefaultConfig()
	cfg.Remote.BaseURL = "http://127.0.0.1:1"
	source, err := recordSource(context.Background(), cfg, dashboard.DefaultDataset())
	require.NoError(t, err)
	_, err = dashboard.Bootstrap(dashboard.DefaultDataset(), source, nil)
	require.Error(t, err)
}

func TestRecordFileSourceAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	writeRecordFile(t, path, "fb-1", "fb-2")

	rt, err := newRuntime(context.Background(), &Globals{RecordsFile: path, LogLevel: "error"})
	require.NoError(t, err)
	assert.Equal(t, path, rt.cfg.Records.File)
	assert.Equal(t, 2, rt.env.Repository.Len())

	writeRecordFile(t, path, "fb-1", "fb-2", "fb-3")
	reloadRecords(context.Background(), rt, path)
	assert.Equal(t, 3, rt.env.Repository.Len())

	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))
	reloadRecords(context.Background(), rt, path)
	assert.Equal(t, 3, rt.env.Repository.Len())
}

func TestRuntimeRegistersMetrics(t *testing.T) {
	rt, err := newRuntime(context.Background(), &Globals{LogLevel: "error"})
	require.NoError(t, err)
	_, err = rt.service.OpenSession(context.Background(), dashboard.ViewerContext{UserID: "u1"})
	require.NoError(t, err)

	families, err := rt.registry.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, family := range families {
		names[family.GetName()] = true
	}
	assert.True(t, names["feedback_dashboard_events_total"])
	assert.True(t, names["feedback_dashboard_active_sessions"])
	assert.True(t, names["go_goroutines"])
}

func TestRuntimeWritesActivityLog(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "activity.jsonl")
	cfgPath := filepath.Join(dir, "feedback.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("activity:\n  file: "+logPath+"\n"), 0o600))

	ctx := context.Background()
	rt, err := newRuntime(ctx, &Globals{Config: cfgPath, LogLevel: "error"})
	require.NoError(t, err)
	flags := defaultFlags()
	flags.Sentiment = "negative"
	_, err = openFiltered(ctx, rt, flags)
	require.NoError(t, err)
	require.NoError(t, rt.Close())

	raw, err := os.ReadFile(logPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Contains(t, lines[0], "session.open")
	assert.Contains(t, string(raw), "filter.apply")
	assert.Contains(t, string(raw), "feedbackctl")
}

func TestReportCommandWritesHTML(t *testing.T) {
	out := filepath.Join(t.TempDir(), "reports", "weekly.html")
	cmd := &reportCmd{FilterFlags: defaultFlags(), Title: "Weekly", By: "region", Top: 3, Out: out}
	require.NoError(t, cmd.Run(context.Background(), &Globals{LogLevel: "error"}))

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "<title>Weekly</title>")
	assert.Contains(t, string(raw), "<iframe")
}
