package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/config"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/models"
)

const measurement = "sensor_snapshot"

// ErrNoFields is returned for a snapshot without any reading to store.
var ErrNoFields = errors.New("history: point has no fields")

type pointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// SensorHistory stores every accepted snapshot as a time series point.
type SensorHistory struct {
	client influxdb2.Client
	writer pointWriter
}

func NewSensorHistory(cfg config.InfluxConfig) *SensorHistory {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	return &SensorHistory{
		client: client,
		writer: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
	}
}

func (h *SensorHistory) Close() {
	if h != nil && h.client != nil {
		h.client.Close()
	}
}

// Record writes one snapshot. Absent readings are left out of the point.
func (h *SensorHistory) Record(ctx context.Context, snap models.SensorSnapshot) error {
	point, err := buildPoint(snap)
	if err != nil {
		return err
	}
	if err := h.writer.WritePoint(ctx, point); err != nil {
		return fmt.Errorf("influx write: %w", err)
	}
	return nil
}

func buildPoint(snap models.SensorSnapshot) (*write.Point, error) {
	fields := make(map[string]interface{}, 5)
	for key, v := range map[string]*float64{
		"soil_humidity":     snap.SoilHumidity,
		"soil_temperature":  snap.SoilTemperature,
		"soil_ph":           snap.SoilPH,
		"soil_conductivity": snap.SoilConductivity,
		"water_level_cm":    snap.WaterLevelCm,
	} {
		if v != nil {
			fields[key] = *v
		}
	}
	if len(fields) == 0 {
		return nil, ErrNoFields
	}

	ts := snap.ReadAt
	if ts.IsZero() {
		ts = time.Now()
	}
	tags := map[string]string{"deviceId": snap.DeviceID}
	return write.NewPoint(measurement, tags, fields, ts.UTC()), nil
}
