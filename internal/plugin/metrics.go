package plugin

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values.
const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// Metrics records plugin discovery and invocation statistics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	invocations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	discovered  prometheus.Gauge
	skipped     prometheus.Gauge
}

// NewMetrics creates metrics on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "backpack",
			Subsystem: "plugin",
			Name:      "invocations_total",
			Help:      "Plugin script invocations by plugin, event kind and outcome.",
		}, []string{"plugin", "event", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "backpack",
			Subsystem: "plugin",
			Name:      "invocation_seconds",
			Help:      "Plugin script execution time by event kind.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"event"}),
		discovered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "backpack",
			Name:      "plugins_discovered",
			Help:      "Plugins loaded by the last discovery.",
		}),
		skipped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "backpack",
			Name:      "plugins_skipped",
			Help:      "Plugin directories rejected by the last discovery.",
		}),
	}

	m.registry.MustRegister(m.invocations, m.duration, m.discovered, m.skipped)
	return m
}

// Gatherer returns the registry holding the plugin metrics.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes the metrics in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) observeInvocation(o Outcome) {
	if m == nil {
		return
	}
	result := outcomeSuccess
	if !o.OK() {
		result = outcomeFailure
	}
	m.invocations.WithLabelValues(o.Plugin, o.Event, result).Inc()
	m.duration.WithLabelValues(o.Event).Observe(o.Duration.Seconds())
}

func (m *Metrics) observeDiscovery(loaded, skipped int) {
	if m == nil {
		return
	}
	m.discovered.Set(float64(loaded))
	m.skipped.Set(float64(skipped))
}
