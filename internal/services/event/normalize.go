package event

import (
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/LeonardoBeccarini/agri_advisor/internal/model/messages"
)

const Measurement = "advisory_event"

// EventToPoint maps an AdvisoryEvent onto a single Influx measurement.
// Identifiers become tags, numeric details become fields.
func EventToPoint(evt messages.AdvisoryEvent) *write.Point {
	tags := map[string]string{
		"event_type": evt.EventType,
	}
	if evt.SessionID != "" {
		tags["session_id"] = evt.SessionID
	}
	if evt.Crop != "" {
		tags["crop"] = evt.Crop
	}
	if evt.Soil != "" {
		tags["soil"] = evt.Soil
	}

	fields := make(map[string]interface{}, len(evt.Fields)+1)
	for k, v := range evt.Fields {
		fields[k] = v
	}
	// a point needs at least one field
	if _, ok := fields["count"]; !ok {
		fields["count"] = int64(1)
	}

	return influxdb2.NewPoint(Measurement, tags, fields, evt.Timestamp)
}
