package dashboard

import (
	"context"
	"embed"
	"fmt"
	"html"
	"io"
	"strings"

	template "github.com/goliatone/go-template"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// ReportTemplate is the template Service.Report renders.
const ReportTemplate = "report.html"

const defaultReportRankingSize = 10

// Renderer is the template renderer contract used for HTML reports.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

// NewTemplateRenderer creates a go-template renderer backed by the embedded templates.
func NewTemplateRenderer() (Renderer, error) {
	return template.NewRenderer(
		template.WithFS(embeddedTemplates),
		template.WithBaseDir("templates"),
		template.WithExtension(".html"),
	)
}

// ReportQuery shapes the HTML report for a session.
type ReportQuery struct {
	Title   string
	GroupBy string
	Top     int
}

// Report renders a printable page with the KPI cards, the negative ranking and
// the bar and pie charts for the session's selection.
func (s *Service) Report(ctx context.Context, sessionID string, query ReportQuery, out ...io.Writer) (string, error) {
	renderer, err := s.templates()
	if err != nil {
		return "", err
	}
	session, err := s.Session(sessionID)
	if err != nil {
		return "", err
	}
	groupBy := query.GroupBy
	if groupBy == "" {
		groupBy = "branch"
	}
	keyFn, ok := KeyFuncFor(groupBy)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownGrouping, groupBy)
	}
	top := query.Top
	if top <= 0 {
		top = defaultReportRankingSize
	}
	title := strings.TrimSpace(query.Title)
	if title == "" {
		title = "รายงานความคิดเห็นลูกค้า"
	}

	state, records, err := session.View.Current(ctx)
	if err != nil {
		return "", err
	}
	summary := Summarize(records)
	ranked := TopN(RankByNegativeCount(GroupBy(records, keyFn)), top)

	rows := make([]map[string]any, 0, len(ranked))
	for _, g := range ranked {
		rows = append(rows, map[string]any{
			"label":    label(s.labels, g.GroupKey),
			"negative": g.NegativeCount,
			"positive": g.PositiveCount,
			"total":    g.TotalCount,
		})
	}
	var charts []map[string]any
	for _, kind := range []string{ChartNegativeRanking, ChartSentimentPie} {
		chartHTML, err := s.Chart(ctx, sessionID, ChartQuery{Kind: kind, GroupBy: groupBy})
		if err != nil {
			return "", err
		}
		charts = append(charts, map[string]any{"kind": kind, "srcdoc": html.EscapeString(chartHTML)})
	}

	page, err := renderer.Render(ReportTemplate, map[string]any{
		"title":    title,
		"subtitle": stateSubtitle(state, s.labels),
		"group_by": groupBy,
		"summary": map[string]any{
			"total":    summary.Total,
			"positive": summary.Positive,
			"negative": summary.Negative,
			"neutral":  summary.Neutral,
		},
		"ranking": rows,
		"charts":  charts,
	}, out...)
	if err != nil {
		return "", fmt.Errorf("dashboard: render report: %w", err)
	}
	s.recordTelemetry(ctx, "dashboard.report", map[string]any{
		"session_id": sessionID,
		"viewer":     session.Viewer.UserID,
		"group_by":   groupBy,
	})
	return page, nil
}

func (s *Service) templates() (Renderer, error) {
	s.templatesOnce.Do(func() {
		if s.opts.Templates != nil {
			s.renderer = s.opts.Templates
			return
		}
		s.renderer, s.templatesErr = NewTemplateRenderer()
	})
	return s.renderer, s.templatesErr
}
