package dashboard

import (
	"context"
	"log/slog"
	"sort"
)

// Telemetry records dashboard events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

// LogTelemetry writes events as structured log lines.
type LogTelemetry struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLogTelemetry logs events at debug level on logger (slog.Default when nil).
func NewLogTelemetry(logger *slog.Logger) *LogTelemetry {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogTelemetry{logger: logger, level: slog.LevelDebug}
}

// Record emits the event with its payload as sorted attributes.
func (t *LogTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	attrs := make([]slog.Attr, 0, len(keys)+1)
	attrs = append(attrs, slog.String("event", event))
	for _, key := range keys {
		attrs = append(attrs, slog.Any(key, payload[key]))
	}
	t.logger.LogAttrs(ctx, t.level, "dashboard telemetry", attrs...)
}

// MultiTelemetry fans each event out to every non-nil sink in order.
type MultiTelemetry []Telemetry

// NewMultiTelemetry drops nil sinks.
func NewMultiTelemetry(sinks ...Telemetry) MultiTelemetry {
	out := make(MultiTelemetry, 0, len(sinks))
	for _, sink := range sinks {
		if sink != nil {
			out = append(out, sink)
		}
	}
	return out
}

// Record forwards the event to every sink.
func (m MultiTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	for _, sink := range m {
		sink.Record(ctx, event, payload)
	}
}
