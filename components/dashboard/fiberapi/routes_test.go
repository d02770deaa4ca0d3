package fiberapi

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-feedback-dashboard/components/dashboard"
	"github.com/goliatone/go-feedback-dashboard/pkg/export"
)

func fixtureRecords() []dashboard.FeedbackRecord {
	at := time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)
	return []dashboard.FeedbackRecord{
		{
			ID: "fb-1", Timestamp: at,
			Location:            dashboard.LocationPath{Region: "ภาค 1", District: "เขต 1.1", Branch: "BR-111"},
			ServiceType:         "deposit",
			SentimentByCategory: map[string]dashboard.Sentiment{dashboard.CategoryStaff: dashboard.SentimentNegative},
			Comment:             "รอนาน",
		},
		{
			ID: "fb-2", Timestamp: at.Add(time.Hour),
			Location:            dashboard.LocationPath{Region: "ภาค 2", District: "เขต 2.1", Branch: "BR-211"},
			ServiceType:         "loan",
			SentimentByCategory: map[string]dashboard.Sentiment{dashboard.CategoryTechnology: dashboard.SentimentPositive},
			Comment:             "app works",
		},
	}
}

func newTestApp(t *testing.T) (*fiber.App, *dashboard.BroadcastHook) {
	t.Helper()
	env, err := dashboard.Bootstrap(dashboard.DefaultDataset(), func(*dashboard.StaticHierarchy, *dashboard.CategoryCatalog) ([]dashboard.FeedbackRecord, error) {
		return fixtureRecords(), nil
	}, nil)
	require.NoError(t, err)

	broadcast := dashboard.NewBroadcastHook()
	svc := dashboard.NewService(dashboard.Options{
		Repository:  env.Repository,
		Hierarchy:   env.Hierarchy,
		Catalog:     env.Catalog,
		Charts:      dashboard.NewChartRenderer(dashboard.WithChartCache(nil)),
		Exporters:   export.NewRegistry(),
		RefreshHook: broadcast,
	})
	app := fiber.New()
	require.NoError(t, Register(app, Config{Service: svc, Broadcast: broadcast}))
	return app, broadcast
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string, out any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	if out != nil {
		defer resp.Body.Close()
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func openSession(t *testing.T, app *fiber.App) string {
	t.Helper()
	var snap dashboard.FilterSnapshot
	resp := doJSON(t, app, http.MethodPost, "/api/sessions", "", &snap)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, snap.SessionID)
	return snap.SessionID
}

func TestRegisterRequiresService(t *testing.T) {
	require.Error(t, Register(fiber.New(), Config{}))
	require.Error(t, Register(nil, Config{Service: &dashboard.Service{}}))
}

func TestFilterCascadeOverHTTP(t *testing.T) {
	app, _ := newTestApp(t)
	id := openSession(t, app)
	base := "/api/sessions/" + id + "/filters"

	var snap dashboard.FilterSnapshot
	resp := doJSON(t, app, http.MethodPost, base, `{"field":"region","value":"ภาค 1"}`, &snap)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, snap.Options.Districts, 3)

	doJSON(t, app, http.MethodPost, base, `{"field":"district","value":"เขต 1.1"}`, &snap)
	assert.Len(t, snap.Options.Branches, 3)

	doJSON(t, app, http.MethodPost, base, `{"field":"region","value":"ภาค 2"}`, &snap)
	assert.Equal(t, "ภาค 2", snap.State.Region)
	assert.Equal(t, dashboard.All, snap.State.District)
	assert.Empty(t, snap.Options.Branches)

	var records struct {
		Total   int                        `json:"total"`
		Records []dashboard.FeedbackRecord `json:"records"`
	}
	doJSON(t, app, http.MethodGet, "/api/sessions/"+id+"/records", "", &records)
	require.Equal(t, 1, records.Total)
	assert.Equal(t, "fb-2", records.Records[0].ID)

	doJSON(t, app, http.MethodPost, base+"/reset", "", &snap)
	assert.True(t, snap.State.IsDefault())
}

func TestInvalidChangeAndUnknownSession(t *testing.T) {
	app, _ := newTestApp(t)
	id := openSession(t, app)

	resp := doJSON(t, app, http.MethodPost, "/api/sessions/"+id+"/filters", `{"field":"colour","value":"red"}`, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/sessions/"+id+"/filters", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/sessions/missing/filters", "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, http.MethodDelete, "/api/sessions/"+id, "", nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	resp = doJSON(t, app, http.MethodDelete, "/api/sessions/"+id, "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestRecordsPagination(t *testing.T) {
	app, _ := newTestApp(t)
	id := openSession(t, app)

	var page struct {
		Total   int                        `json:"total"`
		Offset  int                        `json:"offset"`
		Records []dashboard.FeedbackRecord `json:"records"`
	}
	doJSON(t, app, http.MethodGet, "/api/sessions/"+id+"/records?offset=1&limit=5", "", &page)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 1, page.Offset)
	require.Len(t, page.Records, 1)
	assert.Equal(t, "fb-2", page.Records[0].ID)

	doJSON(t, app, http.MethodGet, "/api/sessions/"+id+"/records?offset=10", "", &page)
	assert.Empty(t, page.Records)
}

func TestAggregateAndSummary(t *testing.T) {
	app, _ := newTestApp(t)
	id := openSession(t, app)

	var body struct {
		Groups []struct {
			GroupKey      string `json:"group_key"`
			Label         string `json:"label"`
			NegativeCount int    `json:"negative_count"`
			TotalCount    int    `json:"total_count"`
		} `json:"groups"`
	}
	resp := doJSON(t, app, http.MethodGet, "/api/sessions/"+id+"/aggregate?by=branch&rank=true", "", &body)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, body.Groups, 2)
	assert.Equal(t, "BR-111", body.Groups[0].GroupKey)
	assert.Equal(t, "สาขา 1.1.1", body.Groups[0].Label)
	assert.Equal(t, 1, body.Groups[0].NegativeCount)

	resp = doJSON(t, app, http.MethodGet, "/api/sessions/"+id+"/aggregate?by=weather", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var summary dashboard.Summary
	doJSON(t, app, http.MethodGet, "/api/sessions/"+id+"/summary", "", &summary)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Negative)
}

func TestExportCSV(t *testing.T) {
	app, _ := newTestApp(t)
	id := openSession(t, app)

	resp := doJSON(t, app, http.MethodGet, "/api/sessions/"+id+"/export?format=csv&view=aggregate&by=region", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	defer resp.Body.Close()
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/csv")
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), `filename="region.csv"`)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := strings.TrimPrefix(string(data), "\ufeff")
	assert.Contains(t, text, "ภาค 1,0,1,1")

	resp = doJSON(t, app, http.MethodGet, "/api/sessions/"+id+"/export?format=pdf", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestChartReturnsHTML(t *testing.T) {
	app, _ := newTestApp(t)
	id := openSession(t, app)

	resp := doJSON(t, app, http.MethodGet, "/api/sessions/"+id+"/charts/bar?by=region", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/html")

	resp = doJSON(t, app, http.MethodGet, "/api/sessions/"+id+"/charts/radar", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestReportReturnsHTML(t *testing.T) {
	app, _ := newTestApp(t)
	id := openSession(t, app)

	resp := doJSON(t, app, http.MethodGet, "/api/sessions/"+id+"/report?title=Weekly&by=region", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/html")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "<title>Weekly</title>")

	resp = doJSON(t, app, http.MethodGet, "/api/sessions/"+id+"/report?by=planet", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/sessions/missing/report", "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestMenuFollowsRolesHeader(t *testing.T) {
	app, _ := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/api/menu", nil)
	req.Header.Set("X-Roles", "branch_staff")
	req.Header.Set(fiber.HeaderAcceptLanguage, "en-US,en;q=0.8")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Items []dashboard.MenuItem `json:"items"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Items, 3)
	assert.Equal(t, "Overview", body.Items[0].Label)
}

func TestStreamEvents(t *testing.T) {
	events := make(chan dashboard.FilterEvent, 2)
	heartbeat := make(chan time.Time, 1)
	events <- dashboard.FilterEvent{SessionID: "s1", Field: dashboard.FieldRegion, Version: 1}
	heartbeat <- time.Now()

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	done := make(chan error, 1)
	go func() { done <- streamEvents(w, events, heartbeat) }()

	require.Eventually(t, func() bool {
		return len(heartbeat) == 0 && len(events) == 0
	}, time.Second, 5*time.Millisecond)
	close(events)
	require.NoError(t, <-done)

	out := buf.String()
	assert.Contains(t, out, "event: filters\ndata: {\"session_id\":\"s1\",\"field\":\"region\"")
	assert.Contains(t, out, ": ping\n\n")
}

func TestEventsRouteRejectsUnknownSession(t *testing.T) {
	app, _ := newTestApp(t)
	resp := doJSON(t, app, http.MethodGet, "/api/sessions/missing/events", "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestParseAcceptLanguage(t *testing.T) {
	assert.Equal(t, "th-th", parseAcceptLanguage("th-TH;q=0.9, en"))
	assert.Equal(t, "", parseAcceptLanguage(""))
}
