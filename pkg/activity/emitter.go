package activity

import (
	"context"
	"fmt"
	"log/slog"
)

// Config switches activity emission on and sets the default channel.
type Config struct {
	Enabled bool
	Channel string
}

// Emitter stamps the channel on events and forwards them to hooks.
type Emitter struct {
	hooks   Hooks
	channel string
	enabled bool
}

// NewEmitter is enabled only when cfg.Enabled is set and hooks is non-empty.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	channel := cfg.Channel
	if channel == "" {
		channel = DefaultChannel
	}
	return &Emitter{hooks: hooks, channel: channel, enabled: cfg.Enabled && len(hooks) > 0}
}

// Enabled reports whether Emit forwards anything.
func (e *Emitter) Enabled() bool {
	return e != nil && e.enabled
}

// Emit forwards evt to the hooks.
func (e *Emitter) Emit(ctx context.Context, evt Event) error {
	if !e.Enabled() {
		return nil
	}
	if evt.Channel == "" {
		evt.Channel = e.channel
	}
	return e.hooks.Notify(ctx, evt)
}

// Telemetry maps dashboard telemetry events onto activity events. Hook
// failures are logged; telemetry never fails the caller.
type Telemetry struct {
	emitter *Emitter
	logger  *slog.Logger
}

// NewTelemetry wraps emitter; a nil logger uses slog.Default.
func NewTelemetry(emitter *Emitter, logger *slog.Logger) *Telemetry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Telemetry{emitter: emitter, logger: logger}
}

// Record emits an activity event for the auditable dashboard events.
func (t *Telemetry) Record(ctx context.Context, event string, payload map[string]any) {
	evt, ok := eventFor(event, payload)
	if !ok {
		return
	}
	if err := t.emitter.Emit(ctx, evt); err != nil {
		t.logger.WarnContext(ctx, "activity hook failed", "verb", evt.Verb, "error", err)
	}
}

var auditedEvents = map[string]string{
	"dashboard.session.open": "session.open",
	"dashboard.filter.apply": "filter.apply",
	"dashboard.filter.reset": "filter.reset",
	"dashboard.export":       "export",
}

func eventFor(event string, payload map[string]any) (Event, bool) {
	verb, ok := auditedEvents[event]
	if !ok {
		return Event{}, false
	}
	viewer := str(payload["viewer"])
	evt := Event{
		Verb:           verb,
		ActorID:        viewer,
		UserID:         viewer,
		ObjectType:     "feedback_session",
		ObjectID:       str(payload["session_id"]),
		DefinitionCode: "feedback_dashboard:" + verb,
		Metadata:       map[string]any{},
	}
	for key, value := range payload {
		if key == "viewer" || key == "session_id" {
			continue
		}
		evt.Metadata[key] = value
	}
	return evt, true
}

func str(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprint(s)
	}
}
