package messages

import "time"

// HarvestReport is published by field devices at the end of a season on
// harvest/report/{session}.
type HarvestReport struct {
	SessionID   string    `json:"session_id"`
	Crop        string    `json:"crop"`
	ActualYield float64   `json:"actual_yield"` // kg
	AreaSqm     float64   `json:"area_sqm"`
	ActualWater float64   `json:"actual_water"` // m3
	Timestamp   time.Time `json:"timestamp"`
}
