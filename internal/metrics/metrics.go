// Package metrics defines the Prometheus collectors for matching runs and
// the results browser.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors on a private registry, so several runs in one
// process (or tests) never clash on registration.
type Metrics struct {
	Registry *prometheus.Registry

	PairsScored       prometheus.Counter
	ChunksSpilled     prometheus.Counter
	LeftRecords       prometheus.Gauge
	RightRecords      prometheus.Gauge
	MatchesWritten    prometheus.Counter
	StageDuration     *prometheus.GaugeVec
	CacheLookups      *prometheus.CounterVec
	HTTPRequestsTotal *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		PairsScored: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "createch_pairs_scored_total",
				Help: "Candidate pairs that passed the cosine filter and were scored.",
			},
		),
		ChunksSpilled: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "createch_chunks_spilled_total",
				Help: "Chunks of scored pairs written to the spill store.",
			},
		),
		LeftRecords: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "createch_left_records",
				Help: "Left-hand records in the current run.",
			},
		),
		RightRecords: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "createch_right_records",
				Help: "Right-hand records in the current run.",
			},
		),
		MatchesWritten: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "createch_matches_total",
				Help: "Matches at or above the threshold.",
			},
		),
		StageDuration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "createch_stage_duration_seconds",
				Help: "Wall time of the last run per pipeline stage.",
			},
			[]string{"stage"},
		),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "createch_cache_lookups_total",
				Help: "Name cache lookups by result (hit, miss).",
			},
			[]string{"result"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "createch_http_requests_total",
				Help: "Results browser requests by route and status.",
			},
			[]string{"route", "status"},
		),
	}

	m.Registry.MustRegister(
		m.PairsScored,
		m.ChunksSpilled,
		m.LeftRecords,
		m.RightRecords,
		m.MatchesWritten,
		m.StageDuration,
		m.CacheLookups,
		m.HTTPRequestsTotal,
	)

	return m
}

// ObserveStage records how long a pipeline stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.StageDuration.WithLabelValues(stage).Set(d.Seconds())
}

// WriteTextfile writes the current values in the text exposition format,
// for the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}

// Handler returns the scrape handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
