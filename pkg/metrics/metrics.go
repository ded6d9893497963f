// Package metrics collects extraction counters and exports them in the
// Prometheus text format for the node_exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"personalens/pkg/models"
)

// Metrics holds all Prometheus metrics for extraction runs
type Metrics struct {
	registry *prometheus.Registry

	Snapshots          *prometheus.CounterVec
	Records            *prometheus.CounterVec
	Duplicates         prometheus.Counter
	Discarded          prometheus.Counter
	ExtractionDuration *prometheus.HistogramVec
	LastRun            prometheus.Gauge
}

// New creates the metrics on a private registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Snapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "personalens",
			Name:      "snapshots_total",
			Help:      "Snapshots processed, by extraction strategy and outcome.",
		}, []string{"strategy", "outcome"}),
		Records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "personalens",
			Name:      "records_total",
			Help:      "Post records extracted, by strategy.",
		}, []string{"strategy"}),
		Duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "personalens",
			Name:      "duplicates_total",
			Help:      "Candidate records dropped as duplicates.",
		}),
		Discarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "personalens",
			Name:      "discarded_blocks_total",
			Help:      "Content blocks discarded for lacking text, stats and media.",
		}),
		ExtractionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "personalens",
			Name:      "extraction_duration_seconds",
			Help:      "Time to extract one snapshot.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"strategy"}),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "personalens",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last completed run.",
		}),
	}

	m.registry.MustRegister(m.Snapshots, m.Records, m.Duplicates, m.Discarded, m.ExtractionDuration, m.LastRun)
	return m
}

// Registry returns the registry holding the metrics
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveExtraction records one successful extraction
func (m *Metrics) ObserveExtraction(ext *models.Extraction, duration time.Duration) {
	strategy := string(ext.Strategy)
	outcome := "ok"
	if len(ext.Records) == 0 {
		outcome = "empty"
	}

	m.Snapshots.WithLabelValues(strategy, outcome).Inc()
	m.Records.WithLabelValues(strategy).Add(float64(len(ext.Records)))
	m.Duplicates.Add(float64(ext.Duplicates))
	m.Discarded.Add(float64(ext.Discarded))
	m.ExtractionDuration.WithLabelValues(strategy).Observe(duration.Seconds())
}

// ObserveFailure records a snapshot that could not be processed
func (m *Metrics) ObserveFailure() {
	m.Snapshots.WithLabelValues("none", "failed").Inc()
}

// ObserveSkip records a snapshot skipped because an earlier run covered it
func (m *Metrics) ObserveSkip() {
	m.Snapshots.WithLabelValues("none", "skipped").Inc()
}

// MarkRun stamps the last-run gauge
func (m *Metrics) MarkRun(at time.Time) {
	m.LastRun.Set(float64(at.Unix()))
}

// WriteTextfile writes all metrics to path atomically
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
