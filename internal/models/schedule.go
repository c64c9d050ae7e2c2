package models

// Desired device states computed by the silent-time schedule.
const (
	ScheduleEnable  = "enable"
	ScheduleDisable = "disable"
)

// ScheduleState is the persisted silent-time schedule. LastCommandIssued is
// nil until the emitter has issued its first command.
type ScheduleState struct {
	Enabled           bool    `json:"enabled"`
	StartTime         string  `json:"startTime"`
	EndTime           string  `json:"endTime"`
	LastCommandIssued *string `json:"lastCommandIssued"`
}
