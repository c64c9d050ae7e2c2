package service

import (
	"context"
	"errors"
	"time"

	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/logger"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/models"
)

var ErrEmptySnapshot = errors.New("sensor snapshot has no readings")

// SensorRecorder stores snapshots for history.
type SensorRecorder interface {
	Record(ctx context.Context, snap models.SensorSnapshot) error
}

// IngestResult is what one snapshot produced.
type IngestResult struct {
	Alerts          []models.Alert `json:"alerts"`
	Recommendations []models.Alert `json:"recommendations"`
}

// SensorService routes each accepted snapshot to history and to both engines.
type SensorService struct {
	history         SensorRecorder
	notifications   Notifications
	recommendations Recommendations
	deviceID        string
	log             *logger.Logger
	now             func() time.Time
}

func NewSensorService(history SensorRecorder, n Notifications, r Recommendations, deviceID string, log *logger.Logger) *SensorService {
	return &SensorService{
		history:         history,
		notifications:   n,
		recommendations: r,
		deviceID:        deviceID,
		log:             log.Named("sensors"),
		now:             time.Now,
	}
}

func (s *SensorService) Ingest(ctx context.Context, snap models.SensorSnapshot) (IngestResult, error) {
	if snap.SoilHumidity == nil && snap.SoilTemperature == nil && snap.SoilPH == nil &&
		snap.SoilConductivity == nil && snap.WaterLevelCm == nil {
		return IngestResult{}, ErrEmptySnapshot
	}
	if snap.DeviceID == "" {
		snap.DeviceID = s.deviceID
	}
	if snap.ReadAt.IsZero() {
		snap.ReadAt = s.now().UTC()
	}

	if s.history != nil {
		if err := s.history.Record(ctx, snap); err != nil {
			s.log.Warnw("sensor_history_failed", "device_id", snap.DeviceID, "err", err)
		}
	}

	res := IngestResult{
		Alerts:          s.notifications.Evaluate(ctx, snap),
		Recommendations: s.recommendations.Evaluate(ctx, snap),
	}
	return res, nil
}
