package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/logger"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/models"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/repository"
)

// recommendationRule binds an action to the reading it watches and the side
// of the threshold that triggers it.
type recommendationRule struct {
	reading   func(models.SensorSnapshot) *float64
	direction string
	message   string
}

var recommendationRules = map[models.RecommendationAction]recommendationRule{
	models.RecommendIrrigate: {
		reading:   func(s models.SensorSnapshot) *float64 { return s.SoilHumidity },
		direction: models.DirectionLow,
		message:   "Soil humidity %.1f is below %.1f: irrigate the field",
	},
	models.RecommendDrain: {
		reading:   func(s models.SensorSnapshot) *float64 { return s.SoilHumidity },
		direction: models.DirectionHigh,
		message:   "Soil humidity %.1f is above %.1f: drain excess water",
	},
	models.RecommendFertilize: {
		reading:   func(s models.SensorSnapshot) *float64 { return s.SoilConductivity },
		direction: models.DirectionLow,
		message:   "Soil conductivity %.1f is below %.1f: consider fertilizing",
	},
	models.RecommendAdjustWaterDepth: {
		reading:   func(s models.SensorSnapshot) *float64 { return s.WaterLevelCm },
		direction: models.DirectionLow,
		message:   "Water level %.1f cm is below %.1f cm: adjust paddy water depth",
	},
	models.RecommendAmendPH: {
		reading:   func(s models.SensorSnapshot) *float64 { return s.SoilPH },
		direction: models.DirectionLow,
		message:   "Soil pH %.1f is below %.1f: apply lime to raise pH",
	},
}

// RecommendationService suggests field actions from sensor snapshots. It
// shares the throttle semantics of NotificationService, keyed by action.
type RecommendationService struct {
	kv   repository.KVStore
	sink AlertSink
	gate *throttleGate
	log  *logger.Logger
	now  func() time.Time

	evalMu sync.Mutex

	mu    sync.Mutex
	prefs *models.RecommendationPreferences
}

func NewRecommendationService(kv repository.KVStore, sink AlertSink, log *logger.Logger) *RecommendationService {
	log = log.Named("recommendations")
	return &RecommendationService{
		kv:   kv,
		sink: sink,
		gate: newThrottleGate(kv, repository.KeyRecommendationThrottle, log),
		log:  log,
		now:  time.Now,
	}
}

func (s *RecommendationService) Preferences(ctx context.Context) models.RecommendationPreferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prefs != nil {
		return cloneRecPrefs(*s.prefs)
	}

	p := models.DefaultRecommendationPreferences()
	found, err := repository.LoadJSON(ctx, s.kv, repository.KeyRecommendationPreferences, &p)
	if err != nil {
		s.log.Warnw("preferences_load_failed", "err", err)
		p = models.DefaultRecommendationPreferences()
	}
	p = mergeRecommendationDefaults(p)
	if !found && err == nil {
		if err := repository.SaveJSON(context.WithoutCancel(ctx), s.kv, repository.KeyRecommendationPreferences, p); err != nil {
			s.log.Warnw("preferences_persist_failed", "err", err)
		}
	}
	s.prefs = &p
	return cloneRecPrefs(p)
}

// UpdatePreferences validates and stores u. A missing throttle block keeps the stored one.
func (s *RecommendationService) UpdatePreferences(ctx context.Context, u models.RecommendationPreferencesUpdate) (models.RecommendationPreferences, error) {
	if u.Throttle != nil && !validThrottle(*u.Throttle) {
		return models.RecommendationPreferences{}, fmt.Errorf("%w: throttle out of range", ErrInvalidPreferences)
	}
	for a := range u.Actions {
		if _, ok := recommendationRules[a]; !ok {
			return models.RecommendationPreferences{}, fmt.Errorf("%w: unknown action %q", ErrInvalidPreferences, a)
		}
	}

	p := models.RecommendationPreferences{Actions: u.Actions, Throttle: s.Preferences(ctx).Throttle}
	if u.Throttle != nil {
		p.Throttle = *u.Throttle
	}
	p = mergeRecommendationDefaults(p)

	s.mu.Lock()
	s.prefs = &p
	s.mu.Unlock()

	if err := repository.SaveJSON(context.WithoutCancel(ctx), s.kv, repository.KeyRecommendationPreferences, p); err != nil {
		s.log.Warnw("preferences_persist_failed", "err", err)
	}
	return cloneRecPrefs(p), nil
}

// Evaluate emits at most one recommendation per enabled action.
func (s *RecommendationService) Evaluate(ctx context.Context, snap models.SensorSnapshot) []models.Alert {
	s.evalMu.Lock()
	defer s.evalMu.Unlock()

	prefs := s.Preferences(ctx)
	var out []models.Alert
	for _, action := range models.RecommendationActions {
		rule := recommendationRules[action]
		cfg, ok := prefs.Actions[action]
		if !ok || !cfg.Enabled {
			continue
		}
		value := rule.reading(snap)
		if value == nil {
			continue
		}
		if (rule.direction == models.DirectionLow && *value >= cfg.Threshold) ||
			(rule.direction == models.DirectionHigh && *value <= cfg.Threshold) {
			continue
		}

		key := "recommendation_" + string(action)
		now := s.now()
		if reason := s.gate.check(ctx, key, now, prefs.Throttle); reason != suppressNone {
			s.log.Debugw("recommendation_suppressed", "key", key, "reason", reason)
			continue
		}

		rec := models.Alert{
			ID:        uuid.NewString(),
			Kind:      models.AlertKindRecommendation,
			Category:  string(action),
			Direction: rule.direction,
			Key:       key,
			Value:     *value,
			Bound:     cfg.Threshold,
			Message:   fmt.Sprintf(rule.message, *value, cfg.Threshold),
			DeviceID:  snap.DeviceID,
			CreatedAt: now.UTC(),
		}
		if err := s.sink.Deliver(ctx, rec); err != nil {
			s.log.Warnw("recommendation_delivery_failed", "key", key, "err", err)
			continue
		}
		s.gate.record(ctx, key, now)
		out = append(out, rec)
	}
	return out
}

func mergeRecommendationDefaults(p models.RecommendationPreferences) models.RecommendationPreferences {
	merged := models.DefaultRecommendationPreferences()
	for a, r := range p.Actions {
		merged.Actions[a] = r
	}
	merged.Throttle = p.Throttle
	return merged
}

func cloneRecPrefs(p models.RecommendationPreferences) models.RecommendationPreferences {
	out := p
	out.Actions = make(map[models.RecommendationAction]models.RecommendationRule, len(p.Actions))
	for k, v := range p.Actions {
		out.Actions[k] = v
	}
	return out
}
