// Package metrics provides Prometheus metrics for the provider query service.
package metrics

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a Manager before its collectors are registered.
type Option func(*Manager)

// metricName turns s into a valid Prometheus name fragment. Dashes and dots
// become underscores; the result is empty when s is blank.
func metricName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("-", "_", ".", "_").Replace(s)
	return strings.Trim(s, "_")
}

// WithNamespace sets the namespace, e.g. "providex".
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if n := metricName(namespace); n != "" {
			m.namespace = n
		}
	}
}

// WithSubsystem sets the subsystem, e.g. "query".
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if n := metricName(subsystem); n != "" {
			m.subsystem = n
		}
	}
}

// WithHistogramBuckets sets latency buckets. They are copied and sorted.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) == 0 {
			return
		}
		b := slices.Clone(buckets)
		slices.Sort(b)
		m.histogramBuckets = slices.Compact(b)
	}
}

// WithMetricsEnabled turns the query recorders on or off.
func WithMetricsEnabled(enabled bool) Option {
	return func(m *Manager) {
		m.enabled = enabled
	}
}

// WithRefreshInterval sets the default period of RunSystemCollector.
func WithRefreshInterval(interval time.Duration) Option {
	return func(m *Manager) {
		if interval > 0 {
			m.refreshInterval = interval
		}
	}
}

// WithCustomLabels adds constant labels to every metric. Repeated calls merge.
func WithCustomLabels(labels map[string]string) Option {
	return func(m *Manager) {
		if len(labels) == 0 {
			return
		}
		if m.customLabels == nil {
			m.customLabels = make(map[string]string, len(labels))
		}
		maps.Copy(m.customLabels, labels)
	}
}

// WithMetricPrefix prefixes every metric name inside the subsystem.
func WithMetricPrefix(prefix string) Option {
	return func(m *Manager) {
		if p := metricName(prefix); p != "" {
			m.metricPrefix = p
		}
	}
}

// WithPrometheusRegistry registers collectors on registry instead of the default.
func WithPrometheusRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}
