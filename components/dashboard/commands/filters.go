package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-feedback-dashboard/components/dashboard"
)

// ApplyFilterInput carries one filter change for a session. Payload, when set,
// is validated and decoded instead of Change.
type ApplyFilterInput struct {
	SessionID string           `json:"session_id"`
	Change    dashboard.Change `json:"change"`
	Payload   []byte           `json:"-"`
}

type filterService interface {
	ApplyFilter(ctx context.Context, sessionID string, change dashboard.Change) (dashboard.FilterSnapshot, error)
	DecodeChange(payload []byte) (dashboard.Change, error)
}

// ApplyFilterCommand wraps Service.ApplyFilter so transports can change a
// session's selection without linking directly against the service.
type ApplyFilterCommand struct {
	service   filterService
	telemetry eventRecorder
}

// NewApplyFilterCommand creates a command instance.
func NewApplyFilterCommand(service filterService, telemetry Telemetry) *ApplyFilterCommand {
	return &ApplyFilterCommand{service: service, telemetry: eventRecorder{sink: telemetry}}
}

var _ gocommand.Commander[ApplyFilterInput] = (*ApplyFilterCommand)(nil)

// Execute applies the change.
func (c *ApplyFilterCommand) Execute(ctx context.Context, msg ApplyFilterInput) error {
	if c.service == nil {
		return errors.New("apply filter command requires service")
	}
	if msg.SessionID == "" {
		return errors.New("apply filter command requires session id")
	}
	change := msg.Change
	if len(msg.Payload) > 0 {
		decoded, err := c.service.DecodeChange(msg.Payload)
		if err != nil {
			return err
		}
		change = decoded
	}
	snapshot, err := c.service.ApplyFilter(ctx, msg.SessionID, change)
	if err != nil {
		return err
	}
	c.telemetry.record(ctx, "apply_filter", map[string]any{
		"session_id": msg.SessionID,
		"field":      string(change.Field),
		"version":    snapshot.Version,
	})
	return nil
}

// ResetFiltersInput identifies the session to reset.
type ResetFiltersInput struct {
	SessionID string `json:"session_id"`
}

type resetService interface {
	ResetFilters(ctx context.Context, sessionID string) (dashboard.FilterSnapshot, error)
}

// ResetFiltersCommand wraps Service.ResetFilters.
type ResetFiltersCommand struct {
	service   resetService
	telemetry eventRecorder
}

// NewResetFiltersCommand builds a command instance.
func NewResetFiltersCommand(service resetService, telemetry Telemetry) *ResetFiltersCommand {
	return &ResetFiltersCommand{service: service, telemetry: eventRecorder{sink: telemetry}}
}

var _ gocommand.Commander[ResetFiltersInput] = (*ResetFiltersCommand)(nil)

// Execute resets every filter dimension.
func (c *ResetFiltersCommand) Execute(ctx context.Context, msg ResetFiltersInput) error {
	if c.service == nil {
		return errors.New("reset filters command requires service")
	}
	if _, err := c.service.ResetFilters(ctx, msg.SessionID); err != nil {
		return err
	}
	c.telemetry.record(ctx, "reset_filters", map[string]any{"session_id": msg.SessionID})
	return nil
}
