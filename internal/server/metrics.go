package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics are the directory's Prometheus collectors, on a private registry
// so tests can build several servers in one process.
type Metrics struct {
	registry *prometheus.Registry

	Uploads     *prometheus.CounterVec
	Fetches     *prometheus.CounterVec
	Relayed     prometheus.Counter
	RateLimited prometheus.Counter
	Connected   prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hubrr",
			Subsystem: "directory",
			Name:      "uploads_total",
			Help:      "Bundle uploads by result.",
		}, []string{"result"}),
		Fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hubrr",
			Subsystem: "directory",
			Name:      "fetches_total",
			Help:      "Bundle fetches by result (hit, miss, error).",
		}, []string{"result"}),
		Relayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hubrr",
			Subsystem: "relay",
			Name:      "envelopes_total",
			Help:      "Envelopes delivered to a connected recipient.",
		}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hubrr",
			Subsystem: "directory",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-IP limiter.",
		}),
		Connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hubrr",
			Subsystem: "relay",
			Name:      "connected_clients",
			Help:      "Open relay websocket connections.",
		}),
	}
	reg.MustRegister(
		m.Uploads, m.Fetches, m.Relayed, m.RateLimited, m.Connected,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
