package models

import "time"

// Category is a monitored quantity.
type Category string

const (
	CategorySoilHumidity     Category = "soil_humidity"
	CategorySoilTemperature  Category = "soil_temperature"
	CategorySoilPH           Category = "soil_ph"
	CategorySoilConductivity Category = "soil_conductivity"
)

// Categories lists monitored quantities in evaluation order.
var Categories = []Category{
	CategorySoilHumidity,
	CategorySoilTemperature,
	CategorySoilPH,
	CategorySoilConductivity,
}

const (
	SeverityWarning  = "warning"
	SeverityCritical = "critical"

	DirectionLow  = "low"
	DirectionHigh = "high"
)

const (
	AlertKindThreshold      = "alert"
	AlertKindRecommendation = "recommendation"
)

// CategoryPreference toggles one category and its severities.
type CategoryPreference struct {
	Enabled  bool `json:"enabled"`
	Warning  bool `json:"warning"`
	Critical bool `json:"critical"`
}

// ThrottleSettings bounds how often a single key may fire.
type ThrottleSettings struct {
	MinIntervalMinutes int  `json:"minIntervalMinutes"`
	QuietHoursStart    int  `json:"quietHoursStart"`
	QuietHoursEnd      int  `json:"quietHoursEnd"`
	RespectQuietHours  bool `json:"respectQuietHours"`
}

// NotificationPreferences is the operator's alert configuration.
type NotificationPreferences struct {
	Categories map[Category]CategoryPreference `json:"categories"`
	Throttle   ThrottleSettings                `json:"throttle"`
}

// NotificationPreferencesUpdate is an operator write. A nil Throttle keeps
// the stored settings.
type NotificationPreferencesUpdate struct {
	Categories map[Category]CategoryPreference `json:"categories"`
	Throttle   *ThrottleSettings               `json:"throttle,omitempty"`
}

// AsUpdate returns an update that stores p as given.
func (p NotificationPreferences) AsUpdate() NotificationPreferencesUpdate {
	t := p.Throttle
	return NotificationPreferencesUpdate{Categories: p.Categories, Throttle: &t}
}

// DefaultThrottle is applied on first use.
func DefaultThrottle() ThrottleSettings {
	return ThrottleSettings{
		MinIntervalMinutes: 30,
		QuietHoursStart:    22,
		QuietHoursEnd:      6,
		RespectQuietHours:  true,
	}
}

// DefaultNotificationPreferences enables every category and severity.
func DefaultNotificationPreferences() NotificationPreferences {
	cats := make(map[Category]CategoryPreference, len(Categories))
	for _, c := range Categories {
		cats[c] = CategoryPreference{Enabled: true, Warning: true, Critical: true}
	}
	return NotificationPreferences{Categories: cats, Throttle: DefaultThrottle()}
}

// Band is one pair of warning/critical bounds. A nil bound is not checked.
type Band struct {
	Warning  *float64 `json:"warning,omitempty"`
	Critical *float64 `json:"critical,omitempty"`
}

// Thresholds describes how one category is judged. Single-sided categories
// set only Below or Above; bi-directional ones set Low and High.
type Thresholds struct {
	Below *Band `json:"below,omitempty"`
	Above *Band `json:"above,omitempty"`
	Low   *Band `json:"low,omitempty"`
	High  *Band `json:"high,omitempty"`
}

// BiDirectional reports whether low and high failures are tracked separately.
func (t Thresholds) BiDirectional() bool { return t.Low != nil || t.High != nil }

func bound(v float64) *float64 { return &v }

// DefaultThresholds returns the agronomic defaults for every category.
func DefaultThresholds() map[Category]Thresholds {
	return map[Category]Thresholds{
		CategorySoilHumidity: {
			Below: &Band{Warning: bound(40), Critical: bound(20)},
		},
		CategorySoilTemperature: {
			Low:  &Band{Warning: bound(15), Critical: bound(10)},
			High: &Band{Warning: bound(35), Critical: bound(40)},
		},
		CategorySoilPH: {
			Low:  &Band{Warning: bound(5.5), Critical: bound(4.5)},
			High: &Band{Warning: bound(7.5), Critical: bound(8.5)},
		},
		CategorySoilConductivity: {
			Above: &Band{Warning: bound(2000), Critical: bound(3000)},
		},
	}
}

// Alert is one emitted notification.
type Alert struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Category  string    `json:"category"`
	Severity  string    `json:"severity,omitempty"`
	Direction string    `json:"direction,omitempty"`
	Key       string    `json:"key"`
	Value     float64   `json:"value"`
	Bound     float64   `json:"bound"`
	Message   string    `json:"message"`
	DeviceID  string    `json:"device_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
