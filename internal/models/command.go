package models

import "time"

// Command actions understood by the device firmware.
const (
	ActionSetVolume        = "set-volume"
	ActionRotateHead       = "rotate-head"
	ActionSetSensitivity   = "set-sensitivity"
	ActionEnableDetection  = "enable-detection"
	ActionDisableDetection = "disable-detection"
	ActionPlaySound        = "play-sound"
	ActionTriggerAlarm     = "trigger-alarm"
	ActionRestart          = "restart"
)

var knownActions = map[string]struct{}{
	ActionSetVolume:        {},
	ActionRotateHead:       {},
	ActionSetSensitivity:   {},
	ActionEnableDetection:  {},
	ActionDisableDetection: {},
	ActionPlaySound:        {},
	ActionTriggerAlarm:     {},
	ActionRestart:          {},
}

// IsKnownAction reports whether action belongs to the command vocabulary.
func IsKnownAction(action string) bool {
	_, ok := knownActions[action]
	return ok
}

// Command is one operator instruction addressed to one device.
// (DeviceID, Action) is its identity for queue deduplication.
type Command struct {
	ID       string         `json:"id"`
	DeviceID string         `json:"device_id"`
	Action   string         `json:"action"`
	Params   map[string]any `json:"params,omitempty"`
	Attempts int            `json:"attempts"`
	QueuedAt time.Time      `json:"queued_at"`
}

// SameTarget reports whether c and o collapse under deduplication.
func (c Command) SameTarget(o Command) bool {
	return c.DeviceID == o.DeviceID && c.Action == o.Action
}

// SendResult is what a caller learns from a send request.
type SendResult struct {
	Success bool `json:"success"`
	Queued  bool `json:"queued"`
}

// QueueStatus is the observable state of the command queue.
type QueueStatus struct {
	Length   int  `json:"length"`
	Flushing bool `json:"flushing"`
}

// QueueEvent is delivered to queue listeners after every mutation.
// Dropped is set when a command exhausted its attempts.
type QueueEvent struct {
	Status  QueueStatus `json:"status"`
	Dropped *Command    `json:"dropped,omitempty"`
}

// FlushReport summarises one flush pass.
type FlushReport struct {
	Skipped   bool      `json:"skipped"`
	Attempted int       `json:"attempted"`
	Delivered int       `json:"delivered"`
	Dropped   []Command `json:"dropped,omitempty"`
	Remaining int       `json:"remaining"`
}
