package app

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec

	// Event export, fed by event.Exporter.
	SinkState *prometheus.GaugeVec
	SinkSent  *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "advisor_http_requests_total",
			Help: "API requests by route and status code.",
		}, []string{"route", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "advisor_http_request_duration_seconds",
			Help:    "API request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		SinkState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "advisor_event_sink_breaker_state",
			Help: "Circuit breaker state per event sink (0 closed, 1 half-open, 2 open).",
		}, []string{"sink"}),
		SinkSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "advisor_events_sent_total",
			Help: "Advisory events handed to each sink, by outcome.",
		}, []string{"sink", "outcome"}),
	}
	m.Registry.MustRegister(
		m.requests, m.latency, m.SinkState, m.SinkSent,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Instrument(route string, h http.Handler) http.Handler {
	labels := prometheus.Labels{"route": route}
	return promhttp.InstrumentHandlerDuration(m.latency.MustCurryWith(labels),
		promhttp.InstrumentHandlerCounter(m.requests.MustCurryWith(labels), h))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
