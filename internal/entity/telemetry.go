package entity

import "time"

// TelemetryEvent is a best-effort observability record.
type TelemetryEvent struct {
	Name           string
	Success        bool
	ResponseTimeMs int64
	ConversationID string
	Err            error
	OccurredAt     time.Time
	Attributes     map[string]string
}
