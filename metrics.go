package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the backdrop collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	activeSessions  prometheus.Gauge
	sessionsTotal   prometheus.Counter
	framesTotal     prometheus.Counter
	frameSeconds    prometheus.Histogram
	eventsTotal     *prometheus.CounterVec
	snapshotsTotal  *prometheus.CounterVec
	snapshotSeconds prometheus.Histogram
}

func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.activeSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "portfolio",
		Subsystem: "backdrop",
		Name:      "active_sessions",
		Help:      "Live backdrop websocket sessions",
	})
	m.sessionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "portfolio",
		Subsystem: "backdrop",
		Name:      "sessions_total",
		Help:      "Backdrop websocket sessions started",
	})
	m.framesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "portfolio",
		Subsystem: "backdrop",
		Name:      "frames_total",
		Help:      "Frames encoded and sent to clients",
	})
	m.frameSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "portfolio",
		Subsystem: "backdrop",
		Name:      "frame_encode_seconds",
		Help:      "Time to encode and send one frame",
		Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1},
	})
	m.eventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portfolio",
		Subsystem: "backdrop",
		Name:      "events_total",
		Help:      "Client input events by type",
	}, []string{"type"})
	m.snapshotsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portfolio",
		Subsystem: "backdrop",
		Name:      "snapshots_total",
		Help:      "Snapshot requests by outcome",
	}, []string{"status"})
	m.snapshotSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "portfolio",
		Subsystem: "backdrop",
		Name:      "snapshot_seconds",
		Help:      "Time to simulate and encode a snapshot",
		Buckets:   prometheus.DefBuckets,
	})

	m.registry.MustRegister(
		m.activeSessions,
		m.sessionsTotal,
		m.framesTotal,
		m.frameSeconds,
		m.eventsTotal,
		m.snapshotsTotal,
		m.snapshotSeconds,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
