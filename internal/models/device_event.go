package models

import "time"

// Event types written to the device event log.
const (
	EventCommandSent      = "COMMAND_SENT"
	EventCommandQueued    = "COMMAND_QUEUED"
	EventCommandDelivered = "COMMAND_DELIVERED"
	EventCommandDropped   = "COMMAND_DROPPED"
	EventAlert            = "ALERT"
	EventRecommendation   = "RECOMMENDATION"
	EventModeChange       = "MODE_CHANGE"
	EventForceSync        = "FORCE_SYNC"
	EventSchedule         = "SCHEDULE"
)

// EventTypes lists every type the log can hold.
var EventTypes = []string{
	EventCommandSent,
	EventCommandQueued,
	EventCommandDelivered,
	EventCommandDropped,
	EventAlert,
	EventRecommendation,
	EventModeChange,
	EventForceSync,
	EventSchedule,
}

// IsEventType reports whether typ is one of EventTypes.
func IsEventType(typ string) bool {
	for _, t := range EventTypes {
		if t == typ {
			return true
		}
	}
	return false
}

// DeviceEvent is a single log entry.
type DeviceEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Metadata    any       `json:"metadata,omitempty"`
}
