package sweep

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics mirrors run counters into a dedicated Prometheus registry,
// suitable for the node_exporter textfile collector.
type Metrics struct {
	registry *prometheus.Registry
	files    *prometheus.CounterVec
	errors   *prometheus.CounterVec
	lastRun  *prometheus.GaugeVec
}

// NewMetrics creates and registers the run metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fitsweep",
			Name:      "files_total",
			Help:      "Number of files handled, by action.",
		}, []string{"command", "action"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fitsweep",
			Name:      "errors_total",
			Help:      "Number of per-file failures, by kind.",
		}, []string{"command", "kind"}),
		lastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "fitsweep",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix timestamp of the most recent finished run.",
		}, []string{"command", "dry_run"}),
	}
	m.registry.MustRegister(m.files, m.errors, m.lastRun)
	return m
}

// Registry returns the registry holding the run metrics.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Observe adds the counters of r.
func (m *Metrics) Observe(r *Report) {
	for action, n := range r.Counters.Actions {
		m.files.WithLabelValues(r.Command, string(action)).Add(float64(n))
	}
	for kind, n := range r.Counters.Failures {
		m.errors.WithLabelValues(r.Command, string(kind)).Add(float64(n))
	}
	if !r.Finished.IsZero() {
		m.lastRun.WithLabelValues(r.Command, fmt.Sprint(r.DryRun)).Set(float64(r.Finished.Unix()))
	}
}

// WriteTextfile writes the registry in text exposition format to path,
// atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
