package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When applied to a manager", func() {
			m := &Manager{customLabels: map[string]string{}}
			for _, opt := range []Option{
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithMetricPrefix("pfx"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(5 * time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
			} {
				opt(m)
			}

			Convey("Then every field is set", func() {
				So(m.namespace, ShouldEqual, "test_namespace")
				So(m.subsystem, ShouldEqual, "test_subsystem")
				So(m.metricPrefix, ShouldEqual, "pfx")
				So(m.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
				So(m.enabled, ShouldBeTrue)
				So(m.refreshInterval, ShouldEqual, 5*time.Second)
				So(m.customLabels, ShouldResemble, map[string]string{"env": "test"})
			})
		})

		Convey("When given zero values", func() {
			m := &Manager{namespace: "keep", subsystem: "keep", refreshInterval: time.Second}
			WithNamespace("")(m)
			WithSubsystem("")(m)
			WithRefreshInterval(0)(m)
			WithHistogramBuckets(nil)(m)

			Convey("Then defaults survive", func() {
				So(m.namespace, ShouldEqual, "keep")
				So(m.subsystem, ShouldEqual, "keep")
				So(m.refreshInterval, ShouldEqual, time.Second)
				So(m.histogramBuckets, ShouldBeNil)
			})
		})

		Convey("When names and buckets need normalizing", func() {
			m := &Manager{}
			WithNamespace(" provider-svc ")(m)
			WithMetricPrefix("_edge.v2_")(m)
			WithHistogramBuckets([]float64{5, 1, 1, 0.5})(m)
			WithCustomLabels(map[string]string{"env": "test"})(m)
			WithCustomLabels(map[string]string{"region": "eu"})(m)

			Convey("Then they are valid Prometheus inputs", func() {
				So(m.namespace, ShouldEqual, "provider_svc")
				So(m.metricPrefix, ShouldEqual, "edge_v2")
				So(m.histogramBuckets, ShouldResemble, []float64{0.5, 1, 5})
				So(m.customLabels, ShouldResemble, map[string]string{"env": "test", "region": "eu"})
			})
		})
	})
}

func TestManagerCreation(t *testing.T) {
	Convey("Given a private registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithMetricPrefix("pfx"),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			m.queriesServed.Inc()

			Convey("Then metrics are registered under the configured names", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				var found bool
				for _, f := range families {
					if f.GetName() == "test_namespace_test_subsystem_pfx_queries_total" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetValue(), ShouldEqual, "test")
					}
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}

func TestQueryMetrics(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When a query is served", func() {
			before := testutil.ToFloat64(globalManager.queriesServed)
			bumps := testutil.ToFloat64(globalManager.popularityBumps)
			RecordQueryServed()
			RecordCandidates(4)
			RecordResultSize(2)
			RecordFilterLatency(0.4)
			RecordRankLatency(0.2)

			Convey("Then counters advance", func() {
				So(testutil.ToFloat64(globalManager.queriesServed), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.popularityBumps), ShouldEqual, bumps+4)
			})
		})

		Convey("When a query is rejected", func() {
			c := globalManager.queryErrors.WithLabelValues("filter_parse_error")
			before := testutil.ToFloat64(c)
			RecordQueryError("filter_parse_error")

			Convey("Then the kind is counted", func() {
				So(testutil.ToFloat64(c), ShouldEqual, before+1)
			})
		})

		Convey("When metrics are disabled", func() {
			globalManager.enabled = false
			defer func() { globalManager.enabled = true }()
			before := testutil.ToFloat64(globalManager.queriesServed)
			RecordQueryServed()

			Convey("Then nothing is recorded", func() {
				So(testutil.ToFloat64(globalManager.queriesServed), ShouldEqual, before)
			})
		})
	})
}

func TestCatalogMetrics(t *testing.T) {
	Convey("Given catalog gauges", t, func() {
		UpdateCatalogSize(12)
		UpdateCatalogActive(7)
		UpdateProvidersExposed(3)
		UpdatePopularityMax(9)
		So(func() { RecordRepositoryLoadDuration(1.5) }, ShouldNotPanic)

		So(testutil.ToFloat64(globalManager.catalogSize), ShouldEqual, 12)
		So(testutil.ToFloat64(globalManager.catalogActive), ShouldEqual, 7)
		So(testutil.ToFloat64(globalManager.providersExposed), ShouldEqual, 3)
		So(testutil.ToFloat64(globalManager.popularityMax), ShouldEqual, 9)
	})
}

func TestHTTPAndErrorMetrics(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
	}{
		{"http request", func() { RecordHTTPRequest("/providers", "GET", "200") }},
		{"http duration", func() { RecordHTTPRequestDuration("/providers", "GET", "200", 3.0) }},
		{"error by component", func() { RecordErrorByComponent("repository", "schema") }},
		{"error by type", func() { RecordErrorByType("validation_error", "warning") }},
		{"error by endpoint", func() { RecordErrorByEndpoint("/providers", "GET", "filter_parse_error") }},
		{"error latency", func() { RecordErrorLatency("api", "bad_request", 0.3) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("panicked: %v", r)
				}
			}()
			tt.fn()
		})
	}
}

func TestSystemCollector(t *testing.T) {
	Convey("Given the system collector", t, func() {
		Convey("When sampling once", func() {
			CollectSystem()

			Convey("Then goroutines are reported", func() {
				So(testutil.ToFloat64(globalManager.systemGoroutineCount), ShouldBeGreaterThan, 0)
				So(testutil.ToFloat64(globalManager.systemMemoryUsage), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When host memory is reported", func() {
			UpdateHostMemory(8<<30, 3<<30)

			Convey("Then both host gauges are set", func() {
				So(testutil.ToFloat64(globalManager.hostMemoryTotal), ShouldEqual, float64(8<<30))
				So(testutil.ToFloat64(globalManager.hostMemoryAvailable), ShouldEqual, float64(3<<30))
			})
		})

		Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})
			go func() {
				RunSystemCollector(ctx, 5*time.Millisecond)
				close(done)
			}()
			time.Sleep(20 * time.Millisecond)
			cancel()

			Convey("Then the loop returns", func() {
				select {
				case <-done:
				case <-time.After(time.Second):
					t.Fatal("collector did not stop")
				}
			})
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the custom registry", t, func() {
		So(GetRegistry(), ShouldNotBeNil)
		families, err := GetRegistry().Gather()
		So(err, ShouldBeNil)
		So(len(families), ShouldBeGreaterThan, 0)
	})
}
