package dashboard

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureRenderer struct {
	name string
	data map[string]any
	err  error
}

func (c *captureRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	c.name = name
	c.data, _ = data.(map[string]any)
	if c.err != nil {
		return "", c.err
	}
	for _, w := range out {
		if _, err := io.WriteString(w, "rendered"); err != nil {
			return "", err
		}
	}
	return "rendered", nil
}

func TestServiceReportPassesReportData(t *testing.T) {
	renderer := &captureRenderer{}
	telemetry := &recordingTelemetry{}
	svc := newTestService(t, func(o *Options) {
		o.Templates = renderer
		o.Telemetry = telemetry
	})
	ctx := context.Background()
	snap, err := svc.OpenSession(ctx, ViewerContext{UserID: "u1"})
	require.NoError(t, err)

	var buf bytes.Buffer
	page, err := svc.Report(ctx, snap.SessionID, ReportQuery{Title: "Weekly", Top: 2}, &buf)
	require.NoError(t, err)
	assert.Equal(t, "rendered", page)
	assert.Equal(t, "rendered", buf.String())

	assert.Equal(t, ReportTemplate, renderer.name)
	require.NotNil(t, renderer.data)
	assert.Equal(t, "Weekly", renderer.data["title"])
	assert.Equal(t, "branch", renderer.data["group_by"])

	summary, ok := renderer.data["summary"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, len(testRecords()), summary["total"])

	ranking, ok := renderer.data["ranking"].([]map[string]any)
	require.True(t, ok)
	assert.Len(t, ranking, 2)

	charts, ok := renderer.data["charts"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, charts, 2)
	assert.Equal(t, ChartNegativeRanking, charts[0]["kind"])
	assert.NotContains(t, charts[0]["srcdoc"], "<div")

	assert.Contains(t, telemetry.events, "dashboard.report")
}

func TestServiceReportErrors(t *testing.T) {
	renderer := &captureRenderer{err: errors.New("boom")}
	svc := newTestService(t, func(o *Options) { o.Templates = renderer })
	ctx := context.Background()
	snap, err := svc.OpenSession(ctx, ViewerContext{})
	require.NoError(t, err)

	_, err = svc.Report(ctx, snap.SessionID, ReportQuery{GroupBy: "nope"})
	assert.ErrorIs(t, err, ErrUnknownGrouping)

	_, err = svc.Report(ctx, "missing", ReportQuery{})
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.Report(ctx, snap.SessionID, ReportQuery{})
	assert.ErrorContains(t, err, "boom")
}

func TestServiceReportEmbeddedTemplate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	snap, err := svc.OpenSession(ctx, ViewerContext{})
	require.NoError(t, err)

	page, err := svc.Report(ctx, snap.SessionID, ReportQuery{Title: "Monthly feedback"})
	require.NoError(t, err)
	assert.Contains(t, page, "<title>Monthly feedback</title>")
	assert.Contains(t, page, "สาขา 1.1.1")
	assert.Contains(t, page, "<iframe")
	assert.Contains(t, page, `data-group-by="branch"`)
}
