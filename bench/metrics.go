// bench/metrics.go
package bench

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the benchmark's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Trials     *prometheus.CounterVec
	Mismatches prometheus.Counter
	Latency    prometheus.Histogram
}

// NewMetrics creates and registers the benchmark collectors.
func NewMetrics(variant string) *Metrics {
	labels := prometheus.Labels{"variant": variant}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Trials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "fwreach_bench_trials_total",
			Help:        "Trials run, by expected and observed verdict",
			ConstLabels: labels,
		}, []string{"expected", "observed"}),
		Mismatches: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "fwreach_bench_mismatches_total",
			Help:        "Trials whose observed verdict differed from the oracle",
			ConstLabels: labels,
		}),
		Latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "fwreach_bench_decision_latency_seconds",
			Help:        "Time from the first poll to a latched verdict",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
	}
	m.registry.MustRegister(m.Trials, m.Mismatches, m.Latency)
	return m
}

// Observe records one trial.
func (m *Metrics) Observe(r TrialRecord) {
	m.Trials.WithLabelValues(r.Expected, r.Observed).Inc()
	if !r.Match() {
		m.Mismatches.Inc()
	}
	m.Latency.Observe(r.Micros / 1e6)
}

// Gatherer exposes the registry, e.g. for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile dumps the metrics in the text exposition format, suitable
// for node_exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
