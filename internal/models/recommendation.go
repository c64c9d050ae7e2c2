package models

// RecommendationAction is a field action suggested from sensor readings.
type RecommendationAction string

const (
	RecommendIrrigate         RecommendationAction = "irrigate"
	RecommendDrain            RecommendationAction = "drain"
	RecommendFertilize        RecommendationAction = "fertilize"
	RecommendAdjustWaterDepth RecommendationAction = "adjust-water-depth"
	RecommendAmendPH          RecommendationAction = "amend-ph"
)

// RecommendationActions lists actions in evaluation order.
var RecommendationActions = []RecommendationAction{
	RecommendIrrigate,
	RecommendDrain,
	RecommendFertilize,
	RecommendAdjustWaterDepth,
	RecommendAmendPH,
}

// RecommendationRule is a single-sided trigger for one action.
type RecommendationRule struct {
	Enabled   bool    `json:"enabled"`
	Threshold float64 `json:"threshold"`
}

// RecommendationPreferences is the operator's recommendation configuration.
type RecommendationPreferences struct {
	Actions  map[RecommendationAction]RecommendationRule `json:"actions"`
	Throttle ThrottleSettings                            `json:"throttle"`
}

// RecommendationPreferencesUpdate is an operator write. A nil Throttle keeps
// the stored settings.
type RecommendationPreferencesUpdate struct {
	Actions  map[RecommendationAction]RecommendationRule `json:"actions"`
	Throttle *ThrottleSettings                           `json:"throttle,omitempty"`
}

// AsUpdate returns an update that stores p as given.
func (p RecommendationPreferences) AsUpdate() RecommendationPreferencesUpdate {
	t := p.Throttle
	return RecommendationPreferencesUpdate{Actions: p.Actions, Throttle: &t}
}

// DefaultRecommendationPreferences enables every action with agronomic defaults.
func DefaultRecommendationPreferences() RecommendationPreferences {
	return RecommendationPreferences{
		Actions: map[RecommendationAction]RecommendationRule{
			RecommendIrrigate:         {Enabled: true, Threshold: 40},
			RecommendDrain:            {Enabled: true, Threshold: 85},
			RecommendFertilize:        {Enabled: true, Threshold: 200},
			RecommendAdjustWaterDepth: {Enabled: true, Threshold: 3},
			RecommendAmendPH:          {Enabled: true, Threshold: 5.5},
		},
		Throttle: DefaultThrottle(),
	}
}
