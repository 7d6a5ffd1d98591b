// Package metrics provides Prometheus metrics for the provider query service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Query Metrics - what the service exists for
	queriesServed  prometheus.Counter
	queryErrors    *prometheus.CounterVec
	filterLatency  prometheus.Histogram
	rankLatency    prometheus.Histogram
	resultSize     prometheus.Histogram
	candidateCount prometheus.Histogram

	// Catalog and Popularity Metrics
	catalogSize       prometheus.Gauge
	catalogActive     prometheus.Gauge
	providersExposed  prometheus.Gauge
	popularityMax     prometheus.Gauge
	popularityBumps   prometheus.Counter
	repositoryLoadDur prometheus.Histogram

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
	hostMemoryTotal      prometheus.Gauge
	hostMemoryAvailable  prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "providex",
		subsystem:        "query",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// name applies the optional metric prefix.
func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	constLabels := prometheus.Labels(m.customLabels)

	m.queriesServed = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("queries_total"),
		Help:        "Total number of provider queries answered",
		ConstLabels: constLabels,
	})

	m.queryErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("query_errors_total"),
			Help:        "Total number of rejected provider queries by error kind",
			ConstLabels: constLabels,
		},
		[]string{"kind"},
	)

	m.filterLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("filter_latency_milliseconds"),
		Help:        "Trait filter evaluation latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: constLabels,
	})

	m.rankLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("rank_latency_milliseconds"),
		Help:        "Ranking latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: constLabels,
	})

	m.resultSize = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("result_size"),
		Help:        "Number of providers returned per query",
		Buckets:     prometheus.ExponentialBuckets(1, 2, 12),
		ConstLabels: constLabels,
	})

	m.candidateCount = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("candidates"),
		Help:        "Number of providers ranked per query before truncation",
		Buckets:     prometheus.ExponentialBuckets(1, 2, 12),
		ConstLabels: constLabels,
	})

	m.catalogSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("catalog_providers"),
		Help:        "Number of providers in the loaded catalog",
		ConstLabels: constLabels,
	})

	m.catalogActive = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("catalog_active_providers"),
		Help:        "Number of active providers in the loaded catalog",
		ConstLabels: constLabels,
	})

	m.providersExposed = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("providers_exposed"),
		Help:        "Number of providers ranked at least once",
		ConstLabels: constLabels,
	})

	m.popularityMax = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("popularity_max"),
		Help:        "Highest popularity counter across providers",
		ConstLabels: constLabels,
	})

	m.popularityBumps = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("popularity_bumps_total"),
		Help:        "Total number of popularity increments",
		ConstLabels: constLabels,
	})

	m.repositoryLoadDur = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("repository_load_duration_milliseconds"),
		Help:        "Catalog load and validation duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: constLabels,
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_requests_total"),
			Help:        "Total number of HTTP requests by endpoint and method",
			ConstLabels: constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_request_duration_milliseconds"),
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_component_total"),
			Help:        "Total number of errors by component",
			ConstLabels: constLabels,
		},
		[]string{"component", "error_type"},
	)

	m.errorRateByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_type_total"),
			Help:        "Total number of errors by type",
			ConstLabels: constLabels,
		},
		[]string{"error_type", "severity"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_endpoint_total"),
			Help:        "Total number of errors by endpoint",
			ConstLabels: constLabels,
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.errorLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("error_latency_milliseconds"),
			Help:        "Latency of operations that resulted in errors",
			Buckets:     m.histogramBuckets,
			ConstLabels: constLabels,
		},
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_memory_usage_bytes"),
		Help:        "System memory usage in bytes",
		ConstLabels: constLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_goroutine_count"),
		Help:        "Number of goroutines",
		ConstLabels: constLabels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_gc_pause_time_milliseconds"),
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: constLabels,
	})

	m.hostMemoryTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("host_memory_total_bytes"),
		Help:        "Physical memory of the host in bytes",
		ConstLabels: constLabels,
	})

	m.hostMemoryAvailable = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("host_memory_available_bytes"),
		Help:        "Memory available to new processes on the host in bytes",
		ConstLabels: constLabels,
	})
}

// Query Metrics Functions.

// RecordQueryServed increments the answered queries counter.
func RecordQueryServed() {
	if !globalManager.enabled {
		return
	}
	globalManager.queriesServed.Inc()
}

// RecordQueryError increments the rejected queries counter for an error kind.
func RecordQueryError(kind string) {
	if !globalManager.enabled {
		return
	}
	globalManager.queryErrors.WithLabelValues(kind).Inc()
}

// RecordFilterLatency records trait filter latency in milliseconds.
func RecordFilterLatency(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.filterLatency.Observe(latencyMs)
}

// RecordRankLatency records ranking latency in milliseconds.
func RecordRankLatency(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.rankLatency.Observe(latencyMs)
}

// RecordResultSize records how many providers a query returned.
func RecordResultSize(n int) {
	if !globalManager.enabled {
		return
	}
	globalManager.resultSize.Observe(float64(n))
}

// RecordCandidates records how many providers a query ranked, and counts
// the popularity increments that ranking implies.
func RecordCandidates(n int) {
	if !globalManager.enabled {
		return
	}
	globalManager.candidateCount.Observe(float64(n))
	globalManager.popularityBumps.Add(float64(n))
}

// Catalog Metrics Functions.

// UpdateCatalogSize sets the number of loaded providers.
func UpdateCatalogSize(count int) {
	globalManager.catalogSize.Set(float64(count))
}

// UpdateCatalogActive sets the number of active providers.
func UpdateCatalogActive(count int) {
	globalManager.catalogActive.Set(float64(count))
}

// UpdateProvidersExposed sets the number of providers ranked at least once.
func UpdateProvidersExposed(count int) {
	globalManager.providersExposed.Set(float64(count))
}

// UpdatePopularityMax sets the highest popularity counter.
func UpdatePopularityMax(n int64) {
	globalManager.popularityMax.Set(float64(n))
}

// RecordRepositoryLoadDuration records catalog load duration in milliseconds.
func RecordRepositoryLoadDuration(latencyMs float64) {
	globalManager.repositoryLoadDur.Observe(latencyMs)
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// UpdateHostMemory sets the host memory gauges in bytes.
func UpdateHostMemory(total, available uint64) {
	globalManager.hostMemoryTotal.Set(float64(total))
	globalManager.hostMemoryAvailable.Set(float64(available))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
