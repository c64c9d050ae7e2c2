package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Mode is the operator's connectivity policy.
type Mode int

const (
	ModeAuto Mode = iota
	ModeOnline
	ModeOffline
)

var ErrInvalidMode = errors.New("invalid mode: must be AUTO, ONLINE or OFFLINE")

var modeNames = [...]string{"AUTO", "ONLINE", "OFFLINE"}

func (m Mode) Valid() bool { return m >= ModeAuto && m <= ModeOffline }

func (m Mode) String() string {
	if !m.Valid() {
		return "Mode(" + strconv.Itoa(int(m)) + ")"
	}
	return modeNames[m]
}

// ParseMode accepts a mode name (case-insensitive) or its numeric form.
func ParseMode(s string) (Mode, error) {
	s = strings.TrimSpace(s)
	for i, name := range modeNames {
		if strings.EqualFold(s, name) {
			return Mode(i), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && Mode(n).Valid() {
		return Mode(n), nil
	}
	return 0, ErrInvalidMode
}

// UnmarshalJSON accepts the numeric form (0, 1, 2) or a mode name.
func (m *Mode) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var s string
	switch v := raw.(type) {
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		s = v
	default:
		return fmt.Errorf("%w: %s", ErrInvalidMode, b)
	}
	parsed, err := ParseMode(s)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidMode, b)
	}
	*m = parsed
	return nil
}

// ConnectionState is the observable link state reported by the device.
type ConnectionState string

const (
	StateUnknown     ConnectionState = "unknown"
	StateOnline      ConnectionState = "online"
	StateOffline     ConnectionState = "offline"
	StateSyncing     ConnectionState = "syncing"
	StateUnreachable ConnectionState = "unreachable"
)

// NormalizeState maps anything outside the known set to unknown.
func NormalizeState(s ConnectionState) ConnectionState {
	switch s {
	case StateOnline, StateOffline, StateSyncing, StateUnreachable:
		return s
	default:
		return StateUnknown
	}
}

// ConnectionStatus is the device's self-report from GET /offline-status.
type ConnectionStatus struct {
	ConnectionState    ConnectionState `json:"connectionState"`
	QueuedDetections   int             `json:"queuedDetections"`
	OfflineDuration    int64           `json:"offlineDuration"`
	WifiConnected      bool            `json:"wifiConnected"`
	FirebaseConnected  bool            `json:"firebaseConnected"`
	UserModePreference Mode            `json:"userModePreference"`
	LocalIPAddress     string          `json:"localIPAddress"`
}

// ConnectionView is the single observable the dashboard renders.
type ConnectionView struct {
	State            ConnectionState   `json:"state"`
	Mode             Mode              `json:"mode"`
	ModeName         string            `json:"mode_name"`
	QueuedDetections int               `json:"queued_detections"`
	SyncAvailable    bool              `json:"sync_available"`
	ModePushPending  bool              `json:"mode_push_pending"`
	Status           *ConnectionStatus `json:"status,omitempty"`
	PolledAt         *time.Time        `json:"polled_at,omitempty"`
}

// SyncResult is the device's answer to POST /force-sync.
type SyncResult map[string]any
