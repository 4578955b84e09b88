package event

import (
	"encoding/json"
	"net/http"
	"time"
)

// Connectivity is implemented by sinks that hold a broker connection.
type Connectivity interface {
	Connected() bool
}

type ReadyDeps struct {
	Writer   *Writer      // nil when Influx export is disabled
	MQTT     Connectivity // nil when MQTT export is disabled
	Exporter *Exporter
	// Strict makes /readyz fail while any configured sink is unhealthy.
	Strict bool
}

type readyHandler struct {
	deps     ReadyDeps
	minError time.Duration
}

// NewReadyHandler reports advisor readiness together with event export health.
// Sinks are optional: unless Strict, a degraded sink only changes the status text.
func NewReadyHandler(d ReadyDeps, minOkErrorAge time.Duration) http.Handler {
	return &readyHandler{deps: d, minError: minOkErrorAge}
}

func (h *readyHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	type status struct {
		Status          string            `json:"status"`
		Ready           bool              `json:"ready"`
		InfluxEnabled   bool              `json:"influx_enabled"`
		LastWriteErrorS float64           `json:"last_write_error_age_sec,omitempty"`
		MQTTEnabled     bool              `json:"mqtt_enabled"`
		MQTTConnected   bool              `json:"mqtt_connected"`
		Breakers        map[string]string `json:"breakers,omitempty"`
	}
	st := status{
		InfluxEnabled: h.deps.Writer != nil,
		MQTTEnabled:   h.deps.MQTT != nil,
	}
	healthy := true
	if st.InfluxEnabled {
		age := h.deps.Writer.LastErrorAge()
		st.LastWriteErrorS = age.Seconds()
		healthy = healthy && age > h.minError
	}
	if st.MQTTEnabled {
		st.MQTTConnected = h.deps.MQTT.Connected()
		healthy = healthy && st.MQTTConnected
	}
	if h.deps.Exporter != nil {
		st.Breakers = h.deps.Exporter.States()
		for _, s := range st.Breakers {
			if s != "closed" {
				healthy = false
			}
		}
	}

	st.Ready = healthy || !h.deps.Strict
	if healthy {
		st.Status = "ok"
	} else {
		st.Status = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	if !st.Ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(st)
}
