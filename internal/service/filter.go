package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/models"
)

// LogFilter selects event log entries by time range and type.
type LogFilter struct {
	From  time.Time // inclusive; zero means no lower bound
	To    time.Time // inclusive; zero means no upper bound
	Type  string    // "" or one of models.EventTypes, case-insensitive
	Limit int       // keep only the newest Limit entries; 0 keeps all
}

// normalize returns f with UTC bounds and a canonical type, or an error
// wrapping ErrInvalidFilter.
func (f LogFilter) normalize() (LogFilter, error) {
	if !f.From.IsZero() {
		f.From = f.From.UTC()
	}
	if !f.To.IsZero() {
		f.To = f.To.UTC()
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return LogFilter{}, fmt.Errorf("%w: from must be <= to", ErrInvalidFilter)
	}
	f.Type = strings.ToUpper(strings.TrimSpace(f.Type))
	if f.Type != "" && !models.IsEventType(f.Type) {
		return LogFilter{}, fmt.Errorf("%w: unknown event type %q", ErrInvalidFilter, f.Type)
	}
	if f.Limit < 0 {
		return LogFilter{}, fmt.Errorf("%w: negative limit", ErrInvalidFilter)
	}
	return f, nil
}
