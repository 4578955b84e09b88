package entities

import "time"

// HistoricalAnalysis is the water-use efficiency measured on a previous season.
// It only influences scoring under the improve_efficiency preference.
type HistoricalAnalysis struct {
	PreviousCrop         string    `json:"previous_crop"`
	WaterEfficiencyRatio float64   `json:"water_efficiency_ratio"` // (kg/ha) per m3
	Message              string    `json:"message"`
	UpdatedAt            time.Time `json:"updated_at"`
}
