package dashboard

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "360px"

// Chart kinds understood by ChartRenderer.
const (
	ChartSentimentBar    = "sentiment_bar"
	ChartNegativeRanking = "negative_ranking"
	ChartSentimentPie    = "sentiment_pie"
	ChartTrendLine       = "trend_line"
)

// ChartRenderer turns aggregates into server-side go-echarts HTML.
type ChartRenderer struct {
	cache      RenderCache
	theme      string
	assetsHost string
}

// ChartOption customizes renderer behavior.
type ChartOption func(*ChartRenderer)

// WithChartCache injects a render cache; nil disables caching.
func WithChartCache(cache RenderCache) ChartOption {
	return func(r *ChartRenderer) {
		r.cache = cache
	}
}

// WithChartTheme sets the echarts theme (defaults to Westeros).
func WithChartTheme(theme string) ChartOption {
	return func(r *ChartRenderer) {
		if theme != "" {
			r.theme = theme
		}
	}
}

// WithChartAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithChartAssetsHost(host string) ChartOption {
	return func(r *ChartRenderer) {
		r.assetsHost = host
	}
}

// NewChartRenderer builds a renderer with its own chart cache.
func NewChartRenderer(options ...ChartOption) *ChartRenderer {
	r := &ChartRenderer{
		cache: NewChartCache(defaultChartCacheTTL),
		theme: types.ThemeWesteros,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Purge drops cached renders when the cache supports it.
func (r *ChartRenderer) Purge() {
	if p, ok := r.cache.(interface{ Purge() }); ok {
		p.Purge()
	}
}

var chartAliases = map[string]string{
	"bar":     ChartSentimentBar,
	"ranking": ChartNegativeRanking,
	"pie":     ChartSentimentPie,
	"line":    ChartTrendLine,
	"trend":   ChartTrendLine,
}

func normalizeChartKind(kind string) string {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if alias, ok := chartAliases[kind]; ok {
		return alias
	}
	return kind
}

// ChartRequest carries the data for a single chart.
type ChartRequest struct {
	Kind     string
	Title    string
	Subtitle string
	Groups   []AggregateResult
	Summary  Summary
	Labels   Labeler
	// CacheKey identifies the data behind Groups and Summary; empty disables
	// caching for this request. Kind, titles and renderer settings are added
	// to it by Render.
	CacheKey string
}

// Render returns chart HTML for req.
func (r *ChartRenderer) Render(req ChartRequest) (string, error) {
	kind := normalizeChartKind(req.Kind)
	renderFn := func() (string, error) {
		switch kind {
		case ChartSentimentBar:
			return r.renderSentimentBar(req)
		case ChartNegativeRanking:
			return r.renderNegativeRanking(req)
		case ChartSentimentPie:
			return r.renderSentimentPie(req)
		case ChartTrendLine:
			return r.renderTrendLine(req)
		default:
			return "", fmt.Errorf("%w: %s", ErrUnsupportedChart, req.Kind)
		}
	}
	if r.cache == nil || req.CacheKey == "" {
		return renderFn()
	}
	key := chartKey(kind, r.theme, r.assetsHost, req.Title, req.Subtitle, req.CacheKey)
	return r.cache.GetOrRender(key, renderFn)
}

func (r *ChartRenderer) renderSentimentBar(req ChartRequest) (string, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(r.globalOptions(req.Title, req.Subtitle)...)
	bar.SetXAxis(groupLabels(req.Groups, req.Labels))
	positive := make([]opts.BarData, len(req.Groups))
	negative := make([]opts.BarData, len(req.Groups))
	for i, g := range req.Groups {
		positive[i] = opts.BarData{Value: g.PositiveCount}
		negative[i] = opts.BarData{Value: g.NegativeCount}
	}
	bar.AddSeries("เชิงบวก", positive).
		AddSeries("เชิงลบ", negative)
	return renderChart(bar)
}

func (r *ChartRenderer) renderNegativeRanking(req ChartRequest) (string, error) {
	ranked := RankByNegativeCount(req.Groups)
	bar := charts.NewBar()
	bar.SetGlobalOptions(r.globalOptions(req.Title, req.Subtitle)...)
	bar.SetXAxis(groupLabels(ranked, req.Labels))
	data := make([]opts.BarData, len(ranked))
	for i, g := range ranked {
		data[i] = opts.BarData{Value: g.NegativeCount}
	}
	bar.AddSeries("เชิงลบ", data)
	return renderChart(bar)
}

func (r *ChartRenderer) renderSentimentPie(req ChartRequest) (string, error) {
	pie := charts.NewPie()
	pie.SetGlobalOptions(r.globalOptions(req.Title, req.Subtitle)...)
	pie.AddSeries("sentiment", []opts.PieData{
		{Name: "เชิงบวก", Value: req.Summary.Positive},
		{Name: "เชิงลบ", Value: req.Summary.Negative},
		{Name: "เป็นกลาง", Value: req.Summary.Neutral},
	})
	return renderChart(pie)
}

func (r *ChartRenderer) renderTrendLine(req ChartRequest) (string, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(r.globalOptions(req.Title, req.Subtitle)...)
	line.SetXAxis(groupLabels(req.Groups, nil))
	positive := make([]opts.LineData, len(req.Groups))
	negative := make([]opts.LineData, len(req.Groups))
	for i, g := range req.Groups {
		positive[i] = opts.LineData{Name: g.GroupKey, Value: g.PositiveCount}
		negative[i] = opts.LineData{Name: g.GroupKey, Value: g.NegativeCount}
	}
	line.AddSeries("เชิงบวก", positive).
		AddSeries("เชิงลบ", negative)
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return renderChart(line)
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *ChartRenderer) globalOptions(title, subtitle string) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  r.theme,
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if r.assetsHost != "" {
		initOpts.AssetsHost = r.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithToolboxOpts(opts.Toolbox{Show: opts.Bool(true)}),
	}
}

func groupLabels(groups []AggregateResult, labels Labeler) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = label(labels, g.GroupKey)
	}
	return out
}
