package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created with voting defaults", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "langvote")
				So(manager.subsystem, ShouldEqual, "voting")
				So(manager.Enabled(), ShouldBeTrue)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithMetricPrefix("pre"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(false),
				WithRefreshInterval(3*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options are applied", func() {
				So(manager.namespace, ShouldEqual, "test_namespace")
				So(manager.subsystem, ShouldEqual, "test_subsystem")
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
				So(manager.RefreshInterval(), ShouldEqual, 3*time.Second)
				So(manager.Enabled(), ShouldBeFalse)
			})

			Convey("And metric names carry the prefix", func() {
				manager.resultsFetched.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				found := false
				for _, f := range families {
					if f.GetName() == "test_namespace_test_subsystem_pre_results_fetched_total" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When options receive empty values", func() {
			manager := NewManager(
				WithPrometheusRegistry(prometheus.NewRegistry()),
				WithNamespace(""),
				WithRefreshInterval(0),
				WithHistogramBuckets(nil),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "langvote")
				So(manager.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestVotingMetrics(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		SetEnabled(true)

		Convey("When votes are recorded", func() {
			before := testutil.ToFloat64(globalManager.votesSubmitted.WithLabelValues(OutcomeCreated))
			RecordVoteSubmitted(OutcomeCreated)
			RecordVoteSubmitted(OutcomeCreated)

			Convey("Then the outcome counter increases", func() {
				after := testutil.ToFloat64(globalManager.votesSubmitted.WithLabelValues(OutcomeCreated))
				So(after-before, ShouldEqual, 2)
			})
		})

		Convey("When totals are published twice", func() {
			UpdateVoteTotals(3, map[string]int{"go": 2, "rust": 1})
			UpdateVoteTotals(1, map[string]int{"go": 1})

			Convey("Then the gauges reflect only the latest snapshot", func() {
				So(testutil.ToFloat64(globalManager.submissionsTotal), ShouldEqual, 1)
				So(testutil.ToFloat64(globalManager.languagesTotal), ShouldEqual, 1)
				So(testutil.CollectAndCount(globalManager.languageVotes), ShouldEqual, 1)
				So(testutil.ToFloat64(globalManager.languageVotes.WithLabelValues("go")), ShouldEqual, 1)
			})
		})

		Convey("When recording is disabled", func() {
			before := testutil.ToFloat64(globalManager.resultsFetched)
			SetEnabled(false)
			RecordResultsFetched()
			SetEnabled(true)

			Convey("Then nothing is observed", func() {
				So(testutil.ToFloat64(globalManager.resultsFetched), ShouldEqual, before)
			})
		})

		Convey("When the remaining recorders are called", func() {
			Convey("Then none of them panic", func() {
				So(func() {
					RecordValidationFailure("email")
					RecordResultsFetched()
					RecordStoreOperation("add_or_update", 0.4)
					RecordStoreError("all")
					RecordHTTPRequest("results", "GET", "200")
					RecordHTTPRequestDuration("results", "GET", "200", 1.5)
					RecordErrorByComponent("http", "client_error")
					RecordErrorByType("client_error", "medium")
					RecordErrorByEndpoint("submissions", "POST", "client_error")
					RecordErrorLatency("http", "client_error", 2)
					UpdateSystemMemoryUsage(1 << 20)
					UpdateSystemGoroutineCount(12)
					RecordSystemGCPauseTime(0.3)
				}, ShouldNotPanic)
			})
		})
	})
}

func TestRegistry(t *testing.T) {
	Convey("Given the custom registry", t, func() {
		RecordResultsFetched()
		families, err := GetRegistry().Gather()

		Convey("Then voting metrics are exposed", func() {
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
			So(RefreshInterval(), ShouldEqual, defaultRefreshInterval)
		})
	})
}

func TestSetRefreshInterval(t *testing.T) {
	Convey("Given the global refresh interval", t, func() {
		defer SetRefreshInterval(defaultRefreshInterval)

		Convey("Then a positive value replaces it", func() {
			SetRefreshInterval(250 * time.Millisecond)
			So(RefreshInterval(), ShouldEqual, 250*time.Millisecond)
		})

		Convey("Then zero and negative values are ignored", func() {
			SetRefreshInterval(0)
			SetRefreshInterval(-time.Second)
			So(RefreshInterval(), ShouldEqual, defaultRefreshInterval)
		})
	})
}
