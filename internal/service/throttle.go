package service

import (
	"context"
	"sync"
	"time"

	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/logger"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/models"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/repository"
)

// Reasons a key was not allowed to fire.
const (
	suppressNone       = ""
	suppressQuietHours = "quiet_hours"
	suppressThrottled  = "throttled"
)

// throttleGate remembers when each key last fired and decides whether it may
// fire again. The last-sent map is persisted whole under a single key.
type throttleGate struct {
	kv  repository.KVStore
	key string
	log *logger.Logger

	mu       sync.Mutex
	loaded   bool
	lastSent map[string]time.Time
}

func newThrottleGate(kv repository.KVStore, key string, log *logger.Logger) *throttleGate {
	return &throttleGate{kv: kv, key: key, log: log, lastSent: map[string]time.Time{}}
}

// check returns suppressNone if key may fire at now.
func (g *throttleGate) check(ctx context.Context, key string, now time.Time, s models.ThrottleSettings) string {
	if s.RespectQuietHours && inQuietHours(now.Hour(), s.QuietHoursStart, s.QuietHoursEnd) {
		return suppressQuietHours
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.loadLocked(ctx)

	last, ok := g.lastSent[key]
	if ok && now.Sub(last) < time.Duration(s.MinIntervalMinutes)*time.Minute {
		return suppressThrottled
	}
	return suppressNone
}

// record marks key as sent at now and persists the map.
func (g *throttleGate) record(ctx context.Context, key string, now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.loadLocked(ctx)

	g.lastSent[key] = now
	if err := repository.SaveJSON(context.WithoutCancel(ctx), g.kv, g.key, g.lastSent); err != nil {
		g.log.Warnw("throttle_persist_failed", "key", g.key, "err", err)
	}
}

func (g *throttleGate) loadLocked(ctx context.Context) {
	if g.loaded {
		return
	}
	g.loaded = true
	stored := map[string]time.Time{}
	if _, err := repository.LoadJSON(ctx, g.kv, g.key, &stored); err != nil {
		g.log.Warnw("throttle_load_failed", "key", g.key, "err", err)
		return
	}
	for k, v := range stored {
		g.lastSent[k] = v
	}
}

// inQuietHours reports whether hour lies in [start, end). The window may wrap
// past midnight; start == end means there is no window.
func inQuietHours(hour, start, end int) bool {
	switch {
	case start == end:
		return false
	case start < end:
		return hour >= start && hour < end
	default:
		return hour >= start || hour < end
	}
}

func validThrottle(s models.ThrottleSettings) bool {
	return s.MinIntervalMinutes >= 0 &&
		s.QuietHoursStart >= 0 && s.QuietHoursStart <= 23 &&
		s.QuietHoursEnd >= 0 && s.QuietHoursEnd <= 23
}
