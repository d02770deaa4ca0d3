package commands

import (
	"context"

	dashboard "github.com/goliatone/go-feedback-dashboard/components/dashboard"
)

// Telemetry is the dashboard event sink commands report to.
type Telemetry = dashboard.Telemetry

const commandEventPrefix = "dashboard.command."

// eventRecorder names command events and tolerates a missing sink.
type eventRecorder struct {
	sink Telemetry
}

func (r eventRecorder) record(ctx context.Context, command string, payload map[string]any) {
	if r.sink == nil {
		return
	}
	r.sink.Record(ctx, commandEventPrefix+command, payload)
}
