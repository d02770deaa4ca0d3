package commands

import (
	"context"
	"errors"
	"io"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-feedback-dashboard/components/dashboard"
)

// ExportInput describes an export. Result, when non-nil, receives the
// content metadata once the data has been written.
type ExportInput struct {
	SessionID string
	Request   dashboard.ExportRequest
	Writer    io.Writer
	Result    *dashboard.ExportResult
}

type exportService interface {
	Export(ctx context.Context, sessionID string, req dashboard.ExportRequest, w io.Writer) (dashboard.ExportResult, error)
}

// ExportCommand streams a session's data through an exporter.
type ExportCommand struct {
	service   exportService
	telemetry eventRecorder
}

// NewExportCommand builds a command instance.
func NewExportCommand(service exportService, telemetry Telemetry) *ExportCommand {
	return &ExportCommand{service: service, telemetry: eventRecorder{sink: telemetry}}
}

var _ gocommand.Commander[ExportInput] = (*ExportCommand)(nil)

// Execute writes the export to msg.Writer.
func (c *ExportCommand) Execute(ctx context.Context, msg ExportInput) error {
	if c.service == nil {
		return errors.New("export command requires service")
	}
	if msg.Writer == nil {
		return errors.New("export command requires writer")
	}
	result, err := c.service.Export(ctx, msg.SessionID, msg.Request, msg.Writer)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = result
	}
	c.telemetry.record(ctx, "export", map[string]any{
		"session_id": msg.SessionID,
		"format":     result.Format,
		"rows":       result.Rows,
	})
	return nil
}
