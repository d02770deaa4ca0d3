package dashboard

import "errors"

var (
	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errors.New("dashboard: session not found")
	// ErrInvalidChange wraps schema failures for filter change payloads.
	ErrInvalidChange = errors.New("dashboard: invalid filter change")
	// ErrUnknownGrouping is returned when a grouping name has no key function.
	ErrUnknownGrouping = errors.New("dashboard: unknown grouping")
	// ErrUnsupportedChart is returned for chart kinds the renderer does not know.
	ErrUnsupportedChart = errors.New("dashboard: unsupported chart kind")
	// ErrUnsupportedFormat is returned when no exporter handles the format.
	ErrUnsupportedFormat = errors.New("dashboard: unsupported export format")
	// ErrUnknownView is returned for export views other than records and aggregate.
	ErrUnknownView = errors.New("dashboard: unknown export view")

	errMissingHierarchy = errors.New("dashboard: location hierarchy not configured")
)
