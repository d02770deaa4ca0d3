package fiberapi

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-feedback-dashboard/components/dashboard"
	"github.com/goliatone/go-feedback-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-feedback-dashboard/components/dashboard/queries"
)

const defaultHeartbeat = 15 * time.Second

// ViewerResolver converts a request into a dashboard.ViewerContext.
type ViewerResolver func(*fiber.Ctx) dashboard.ViewerContext

// Config wires fiber routes to the dashboard service, commands and queries.
// Nil commands and queries are built from Service.
type Config struct {
	Service        *dashboard.Service
	ApplyFilter    gocommand.Commander[commands.ApplyFilterInput]
	ResetFilters   gocommand.Commander[commands.ResetFiltersInput]
	Export         gocommand.Commander[commands.ExportInput]
	Filters        gocommand.Querier[queries.SessionInput, dashboard.FilterSnapshot]
	Aggregate      gocommand.Querier[queries.AggregateInput, []dashboard.AggregateResult]
	Summary        gocommand.Querier[queries.SessionInput, dashboard.Summary]
	Broadcast      *dashboard.BroadcastHook
	Telemetry      commands.Telemetry
	ViewerResolver ViewerResolver
	BasePath       string
	Heartbeat      time.Duration
	Logger         *slog.Logger
}

type handlers struct {
	cfg Config
}

// Register mounts the dashboard API on router.
func Register(router fiber.Router, cfg Config) error {
	if router == nil {
		return errors.New("fiberapi: router is required")
	}
	if cfg.Service == nil {
		return errors.New("fiberapi: service is required")
	}
	cfg = cfg.withDefaults()
	h := &handlers{cfg: cfg}

	api := router.Group(cfg.BasePath)
	api.Get("/menu", h.menu)
	api.Post("/sessions", h.openSession)
	api.Delete("/sessions/:id", h.closeSession)
	api.Get("/sessions/:id/filters", h.filters)
	api.Post("/sessions/:id/filters", h.applyFilter)
	api.Post("/sessions/:id/filters/reset", h.resetFilters)
	api.Get("/sessions/:id/records", h.records)
	api.Get("/sessions/:id/aggregate", h.aggregate)
	api.Get("/sessions/:id/summary", h.summary)
	api.Get("/sessions/:id/charts/:kind", h.chart)
	api.Get("/sessions/:id/export", h.export)
	api.Get("/sessions/:id/report", h.report)
	if cfg.Broadcast != nil {
		api.Get("/sessions/:id/events", h.events)
	}
	return nil
}

func (cfg Config) withDefaults() Config {
	svc := cfg.Service
	if cfg.ApplyFilter == nil {
		cfg.ApplyFilter = commands.NewApplyFilterCommand(svc, cfg.Telemetry)
	}
	if cfg.ResetFilters == nil {
		cfg.ResetFilters = commands.NewResetFiltersCommand(svc, cfg.Telemetry)
	}
	if cfg.Export == nil {
		cfg.Export = commands.NewExportCommand(svc, cfg.Telemetry)
	}
	if cfg.Filters == nil {
		cfg.Filters = queries.NewFilterOptionsQuery(svc)
	}
	if cfg.Aggregate == nil {
		cfg.Aggregate = queries.NewAggregateQuery(svc)
	}
	if cfg.Summary == nil {
		cfg.Summary = queries.NewSummaryQuery(svc)
	}
	if cfg.ViewerResolver == nil {
		cfg.ViewerResolver = HeaderViewerResolver
	}
	if cfg.BasePath == "" {
		cfg.BasePath = "/api"
	}
	if cfg.Heartbeat <= 0 {
		cfg.Heartbeat = defaultHeartbeat
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return cfg
}

func (h *handlers) menu(c *fiber.Ctx) error {
	viewer := h.cfg.ViewerResolver(c)
	return c.JSON(fiber.Map{"items": h.cfg.Service.Menu(viewer)})
}

func (h *handlers) openSession(c *fiber.Ctx) error {
	snapshot, err := h.cfg.Service.OpenSession(c.UserContext(), h.cfg.ViewerResolver(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(snapshot)
}

func (h *handlers) closeSession(c *fiber.Ctx) error {
	if err := h.cfg.Service.CloseSession(c.UserContext(), c.Params("id")); err != nil {
		return h.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handlers) filters(c *fiber.Ctx) error {
	snapshot, err := h.cfg.Filters.Query(c.UserContext(), queries.SessionInput{SessionID: c.Params("id")})
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(snapshot)
}

func (h *handlers) applyFilter(c *fiber.Ctx) error {
	id := c.Params("id")
	body := bytes.Clone(c.Body())
	if len(body) == 0 {
		return h.respondError(c, dashboard.ErrInvalidChange)
	}
	if err := h.cfg.ApplyFilter.Execute(c.UserContext(), commands.ApplyFilterInput{SessionID: id, Payload: body}); err != nil {
		return h.respondError(c, err)
	}
	return h.filters(c)
}

func (h *handlers) resetFilters(c *fiber.Ctx) error {
	if err := h.cfg.ResetFilters.Execute(c.UserContext(), commands.ResetFiltersInput{SessionID: c.Params("id")}); err != nil {
		return h.respondError(c, err)
	}
	return h.filters(c)
}

func (h *handlers) records(c *fiber.Ctx) error {
	records, err := h.cfg.Service.Records(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	total := len(records)
	offset := clamp(c.QueryInt("offset", 0), 0, total)
	end := total
	if limit := c.QueryInt("limit", 0); limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return c.JSON(fiber.Map{
		"total":   total,
		"offset":  offset,
		"records": records[offset:end],
	})
}

func (h *handlers) aggregate(c *fiber.Ctx) error {
	groups, err := h.cfg.Aggregate.Query(c.UserContext(), queries.AggregateInput{
		SessionID: c.Params("id"),
		Request: dashboard.AggregateRequest{
			GroupBy: c.Query("by"),
			Rank:    c.QueryBool("rank", false),
			Limit:   c.QueryInt("limit", 0),
		},
	})
	if err != nil {
		return h.respondError(c, err)
	}
	labels := h.cfg.Service.Labels()
	out := make([]groupPayload, len(groups))
	for i, g := range groups {
		out[i] = groupPayload{AggregateResult: g, Label: labels.Label(g.GroupKey)}
	}
	return c.JSON(fiber.Map{"groups": out})
}

type groupPayload struct {
	dashboard.AggregateResult
	Label string `json:"label"`
}

func (h *handlers) summary(c *fiber.Ctx) error {
	summary, err := h.cfg.Summary.Query(c.UserContext(), queries.SessionInput{SessionID: c.Params("id")})
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(summary)
}

func (h *handlers) chart(c *fiber.Ctx) error {
	html, err := h.cfg.Service.Chart(c.UserContext(), c.Params("id"), dashboard.ChartQuery{
		Kind:    c.Params("kind"),
		GroupBy: c.Query("by"),
		Title:   c.Query("title"),
	})
	if err != nil {
		return h.respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(html)
}

func (h *handlers) report(c *fiber.Ctx) error {
	page, err := h.cfg.Service.Report(c.UserContext(), c.Params("id"), dashboard.ReportQuery{
		Title:   c.Query("title"),
		GroupBy: c.Query("by"),
		Top:     c.QueryInt("top", 0),
	})
	if err != nil {
		return h.respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(page)
}

func (h *handlers) export(c *fiber.Ctx) error {
	format := c.Query("format", "csv")
	var (
		buf    bytes.Buffer
		result dashboard.ExportResult
	)
	err := h.cfg.Export.Execute(c.UserContext(), commands.ExportInput{
		SessionID: c.Params("id"),
		Request: dashboard.ExportRequest{
			Format:  format,
			View:    c.Query("view"),
			GroupBy: c.Query("by"),
			Rank:    c.QueryBool("rank", false),
		},
		Writer: &buf,
		Result: &result,
	})
	if err != nil {
		return h.respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, result.ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+result.Filename+`"`)
	return c.Send(buf.Bytes())
}

func (h *handlers) events(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := h.cfg.Service.Session(id); err != nil {
		return h.respondError(c, err)
	}
	events, cancel := h.cfg.Broadcast.Subscribe(id)
	heartbeat := h.cfg.Heartbeat
	logger := h.cfg.Logger

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()
		if err := streamEvents(w, events, ticker.C); err != nil {
			logger.Debug("event stream closed", "session_id", id, "error", err)
		}
	})
	return nil
}

// streamEvents writes server-sent events until events closes or a write fails.
func streamEvents(w *bufio.Writer, events <-chan dashboard.FilterEvent, heartbeat <-chan time.Time) error {
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return nil
			}
			payload, err := json.Marshal(event)
			if err != nil {
				return err
			}
			if _, err := w.WriteString("event: filters\ndata: " + string(payload) + "\n\n"); err != nil {
				return err
			}
		case <-heartbeat:
			if _, err := w.WriteString(": ping\n\n"); err != nil {
				return err
			}
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
}

func (h *handlers) respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		h.cfg.Logger.ErrorContext(c.UserContext(), "dashboard api error", "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, dashboard.ErrSessionNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, dashboard.ErrInvalidChange),
		errors.Is(err, dashboard.ErrUnknownGrouping),
		errors.Is(err, dashboard.ErrUnsupportedChart),
		errors.Is(err, dashboard.ErrUnsupportedFormat),
		errors.Is(err, dashboard.ErrUnknownView):
		return fiber.StatusBadRequest
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// HeaderViewerResolver reads X-User-ID, comma separated X-Roles and the locale.
func HeaderViewerResolver(c *fiber.Ctx) dashboard.ViewerContext {
	viewer := dashboard.ViewerContext{
		UserID: strings.TrimSpace(c.Get("X-User-ID")),
		Locale: inferLocale(c),
	}
	for _, role := range strings.Split(c.Get("X-Roles"), ",") {
		if role = strings.TrimSpace(role); role != "" {
			viewer.Roles = append(viewer.Roles, role)
		}
	}
	return viewer
}

func inferLocale(c *fiber.Ctx) string {
	if locale := strings.TrimSpace(c.Query("locale")); locale != "" {
		return strings.ToLower(locale)
	}
	return parseAcceptLanguage(c.Get(fiber.HeaderAcceptLanguage))
}

func parseAcceptLanguage(header string) string {
	for _, token := range strings.Split(header, ",") {
		token = strings.TrimSpace(token)
		if idx := strings.Index(token, ";"); idx >= 0 {
			token = token[:idx]
		}
		if token != "" {
			return strings.ToLower(token)
		}
	}
	return ""
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
