package messages

import "time"

const (
	EventSoilAnalyzed      = "soil.analyzed"
	EventPlanGenerated     = "plan.generated"
	EventHistoricalUpdated = "historical.updated"
)

// AdvisoryEvent is exported to InfluxDB and MQTT after each advisory operation.
type AdvisoryEvent struct {
	EventType string                 `json:"event_type"`
	SessionID string                 `json:"session_id,omitempty"`
	Crop      string                 `json:"crop,omitempty"`
	Soil      string                 `json:"soil,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}
