package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then collectors are registered on it", func() {
				So(manager, ShouldNotBeNil)
				manager.submissions.WithLabelValues("molkky", "stored").Inc()
				count, err := testutil.GatherAndCount(registry, "liao_scoring_submissions_total")
				So(err, ShouldBeNil)
				So(count, ShouldEqual, 1)
			})
		})

		Convey("When creating with custom naming", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("event"),
				WithSubsystem("board"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithPrometheusRegistry(registry),
			)
			manager.loginAttempts.WithLabelValues("ok").Inc()

			Convey("Then metric names use the namespace and subsystem", func() {
				count, err := testutil.GatherAndCount(registry, "event_board_login_attempts_total")
				So(err, ShouldBeNil)
				So(count, ShouldEqual, 1)
			})
		})

		Convey("When options receive empty values", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "liao")
				So(manager.subsystem, ShouldEqual, "scoring")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics", t, func() {
		Convey("When recording a stored submission", func() {
			before := testutil.ToFloat64(globalManager.submissions.WithLabelValues("kusoge", "stored"))
			RecordSubmission("kusoge", "stored")

			Convey("Then the counter increases by one", func() {
				after := testutil.ToFloat64(globalManager.submissions.WithLabelValues("kusoge", "stored"))
				So(after-before, ShouldEqual, 1)
			})
		})

		Convey("When recording transferred points", func() {
			before := testutil.ToFloat64(globalManager.pointsTransferred.WithLabelValues("darts"))
			RecordPointsTransferred("darts", 3350)
			RecordPointsTransferred("darts", 0)
			RecordPointsTransferred("darts", -10)

			Convey("Then only positive amounts are added", func() {
				after := testutil.ToFloat64(globalManager.pointsTransferred.WithLabelValues("darts"))
				So(after-before, ShouldEqual, 3350)
			})
		})

		Convey("When updating the leaderboard gauge", func() {
			recomputes := testutil.ToFloat64(globalManager.leaderboardRecomputes)
			UpdateLeaderboardTeams(6)

			Convey("Then the gauge holds the latest size", func() {
				So(testutil.ToFloat64(globalManager.leaderboardTeams), ShouldEqual, 6)
				So(testutil.ToFloat64(globalManager.leaderboardRecomputes)-recomputes, ShouldEqual, 1)
			})
		})

		Convey("When recording worker jobs", func() {
			before := testutil.ToFloat64(globalManager.workerJobs.WithLabelValues("ok"))
			RecordWorkerJob("ok", 2)
			AddWorkerActive(2)
			AddWorkerActive(-2)
			UpdateQueueSize(3)

			Convey("Then the job counter and gauges follow", func() {
				So(testutil.ToFloat64(globalManager.workerJobs.WithLabelValues("ok"))-before, ShouldEqual, 1)
				So(testutil.ToFloat64(globalManager.workerActive), ShouldEqual, 0)
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 3)
			})
		})

		Convey("When recording the remaining helpers", func() {
			Convey("Then none of them panic", func() {
				So(func() {
					RecordSubmissionDuplicate()
					RecordValidationFailure("bowling")
					RecordEventDeleted()
					RecordStoreError("insert_scoring_events")
					RecordStoreLatency("fetch_history", 1.5)
					RecordLoginAttempt("mismatch")
					RecordHTTPRequest("leaderboard", "GET", "200")
					RecordHTTPRequestDuration("leaderboard", "GET", "200", 3)
					RecordErrorByType("client_error", "medium")
					RecordErrorByEndpoint("submit", "POST", "client_error")
					RecordQueueEnqueue("full")
				}, ShouldNotPanic)
			})
		})

		Convey("When gathering the global registry", func() {
			families, err := GetRegistry().Gather()

			Convey("Then it exposes liao metrics only", func() {
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
				for _, f := range families {
					So(f.GetName(), ShouldStartWith, "liao_")
				}
			})
		})
	})
}

func TestRuntimeCollectors(t *testing.T) {
	Convey("Given the service registry", t, func() {
		families, err := GetRegistry().Gather()
		So(err, ShouldBeNil)

		names := make(map[string]bool, len(families))
		for _, f := range families {
			names[f.GetName()] = true
		}

		Convey("Then Go runtime metrics are exported", func() {
			So(names["go_goroutines"], ShouldBeTrue)
			So(names["go_memstats_alloc_bytes"], ShouldBeTrue)
		})
	})
}
