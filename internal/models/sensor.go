package models

import "time"

// SensorSnapshot is one periodic reading from the device. Absent quantities are nil.
type SensorSnapshot struct {
	DeviceID         string    `json:"device_id"`
	SoilHumidity     *float64  `json:"soil_humidity,omitempty"`
	SoilTemperature  *float64  `json:"soil_temperature,omitempty"`
	SoilPH           *float64  `json:"soil_ph,omitempty"`
	SoilConductivity *float64  `json:"soil_conductivity,omitempty"`
	WaterLevelCm     *float64  `json:"water_level_cm,omitempty"`
	ReadAt           time.Time `json:"read_at"`
}
