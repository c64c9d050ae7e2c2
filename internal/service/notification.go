package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/logger"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/models"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/repository"
)

var ErrInvalidPreferences = errors.New("invalid preferences")

var categoryLabels = map[models.Category]string{
	models.CategorySoilHumidity:     "Soil humidity",
	models.CategorySoilTemperature:  "Soil temperature",
	models.CategorySoilPH:           "Soil pH",
	models.CategorySoilConductivity: "Soil conductivity",
}

// NotificationService turns sensor snapshots into threshold alerts, subject
// to operator preferences and the throttle gate.
type NotificationService struct {
	kv         repository.KVStore
	sink       AlertSink
	gate       *throttleGate
	thresholds map[models.Category]models.Thresholds
	log        *logger.Logger
	now        func() time.Time

	evalMu sync.Mutex

	mu    sync.Mutex
	prefs *models.NotificationPreferences
}

func NewNotificationService(kv repository.KVStore, sink AlertSink, log *logger.Logger) *NotificationService {
	log = log.Named("notifications")
	return &NotificationService{
		kv:         kv,
		sink:       sink,
		gate:       newThrottleGate(kv, repository.KeyNotificationThrottle, log),
		thresholds: models.DefaultThresholds(),
		log:        log,
		now:        time.Now,
	}
}

// Preferences returns the stored preferences, creating defaults on first use.
func (s *NotificationService) Preferences(ctx context.Context) models.NotificationPreferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prefs != nil {
		return clonePrefs(*s.prefs)
	}

	p := models.DefaultNotificationPreferences()
	found, err := repository.LoadJSON(ctx, s.kv, repository.KeyNotificationPreferences, &p)
	if err != nil {
		s.log.Warnw("preferences_load_failed", "err", err)
		p = models.DefaultNotificationPreferences()
	}
	p = mergeNotificationDefaults(p)
	if !found && err == nil {
		if err := repository.SaveJSON(context.WithoutCancel(ctx), s.kv, repository.KeyNotificationPreferences, p); err != nil {
			s.log.Warnw("preferences_persist_failed", "err", err)
		}
	}
	s.prefs = &p
	return clonePrefs(p)
}

// UpdatePreferences validates and stores u. Categories missing from u keep
// their defaults and a missing throttle block keeps the stored one.
func (s *NotificationService) UpdatePreferences(ctx context.Context, u models.NotificationPreferencesUpdate) (models.NotificationPreferences, error) {
	if u.Throttle != nil && !validThrottle(*u.Throttle) {
		return models.NotificationPreferences{}, fmt.Errorf("%w: throttle out of range", ErrInvalidPreferences)
	}
	for c := range u.Categories {
		if _, ok := categoryLabels[c]; !ok {
			return models.NotificationPreferences{}, fmt.Errorf("%w: unknown category %q", ErrInvalidPreferences, c)
		}
	}

	p := models.NotificationPreferences{Categories: u.Categories, Throttle: s.Preferences(ctx).Throttle}
	if u.Throttle != nil {
		p.Throttle = *u.Throttle
	}
	p = mergeNotificationDefaults(p)

	s.mu.Lock()
	s.prefs = &p
	s.mu.Unlock()

	if err := repository.SaveJSON(context.WithoutCancel(ctx), s.kv, repository.KeyNotificationPreferences, p); err != nil {
		s.log.Warnw("preferences_persist_failed", "err", err)
	}
	return clonePrefs(p), nil
}

// Evaluate checks every monitored quantity in snap and emits at most one
// alert per quantity, critical before warning.
func (s *NotificationService) Evaluate(ctx context.Context, snap models.SensorSnapshot) []models.Alert {
	s.evalMu.Lock()
	defer s.evalMu.Unlock()

	prefs := s.Preferences(ctx)
	var out []models.Alert
	for _, cat := range models.Categories {
		value := readingFor(snap, cat)
		if value == nil {
			continue
		}
		pref, ok := prefs.Categories[cat]
		if !ok || !pref.Enabled {
			continue
		}
		th, ok := s.thresholds[cat]
		if !ok {
			continue
		}
		b, ok := classify(*value, th)
		if !ok {
			continue
		}
		if (b.severity == models.SeverityCritical && !pref.Critical) ||
			(b.severity == models.SeverityWarning && !pref.Warning) {
			continue
		}

		key := throttleKey(cat, b.severity, b.direction, th.BiDirectional())
		now := s.now()
		if reason := s.gate.check(ctx, key, now, prefs.Throttle); reason != suppressNone {
			s.log.Debugw("alert_suppressed", "key", key, "reason", reason)
			continue
		}

		alert := models.Alert{
			ID:        uuid.NewString(),
			Kind:      models.AlertKindThreshold,
			Category:  string(cat),
			Severity:  b.severity,
			Direction: b.direction,
			Key:       key,
			Value:     *value,
			Bound:     b.bound,
			Message:   alertMessage(cat, b, *value),
			DeviceID:  snap.DeviceID,
			CreatedAt: now.UTC(),
		}
		if err := s.sink.Deliver(ctx, alert); err != nil {
			s.log.Warnw("alert_delivery_failed", "key", key, "err", err)
			continue
		}
		s.gate.record(ctx, key, now)
		s.log.Infow("alert_emitted", "key", key, "value", *value)
		out = append(out, alert)
	}
	return out
}

type breach struct {
	severity  string
	direction string
	bound     float64
}

// classify returns the most severe breach of th by v, if any.
func classify(v float64, th models.Thresholds) (breach, bool) {
	type side struct {
		band      *models.Band
		direction string
	}
	var sides []side
	if th.BiDirectional() {
		sides = []side{{th.Low, models.DirectionLow}, {th.High, models.DirectionHigh}}
	} else {
		sides = []side{{th.Below, models.DirectionLow}, {th.Above, models.DirectionHigh}}
	}

	for _, severity := range []string{models.SeverityCritical, models.SeverityWarning} {
		for _, sd := range sides {
			if sd.band == nil {
				continue
			}
			bound := sd.band.Warning
			if severity == models.SeverityCritical {
				bound = sd.band.Critical
			}
			if bound == nil {
				continue
			}
			if (sd.direction == models.DirectionLow && v < *bound) ||
				(sd.direction == models.DirectionHigh && v > *bound) {
				return breach{severity: severity, direction: sd.direction, bound: *bound}, true
			}
		}
	}
	return breach{}, false
}

// throttleKey is <category>_<severity>, with _<direction> appended for
// quantities that can fail in both directions.
func throttleKey(cat models.Category, severity, direction string, biDirectional bool) string {
	key := string(cat) + "_" + severity
	if biDirectional {
		key += "_" + direction
	}
	return key
}

func alertMessage(cat models.Category, b breach, v float64) string {
	adverb := ""
	if b.severity == models.SeverityCritical {
		adverb = "critically "
	}
	state := "low"
	if b.direction == models.DirectionHigh {
		state = "high"
	}
	return fmt.Sprintf("%s %s%s: %.1f (threshold %.1f)", categoryLabels[cat], adverb, state, v, b.bound)
}

func readingFor(snap models.SensorSnapshot, cat models.Category) *float64 {
	switch cat {
	case models.CategorySoilHumidity:
		return snap.SoilHumidity
	case models.CategorySoilTemperature:
		return snap.SoilTemperature
	case models.CategorySoilPH:
		return snap.SoilPH
	case models.CategorySoilConductivity:
		return snap.SoilConductivity
	default:
		return nil
	}
}

func mergeNotificationDefaults(p models.NotificationPreferences) models.NotificationPreferences {
	merged := models.DefaultNotificationPreferences()
	for c, cp := range p.Categories {
		merged.Categories[c] = cp
	}
	merged.Throttle = p.Throttle
	return merged
}

func clonePrefs(p models.NotificationPreferences) models.NotificationPreferences {
	out := p
	out.Categories = make(map[models.Category]models.CategoryPreference, len(p.Categories))
	for k, v := range p.Categories {
		out.Categories[k] = v
	}
	return out
}
