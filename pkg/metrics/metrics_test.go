package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should use the heist namespace", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "heist")
				So(manager.subsystem, ShouldEqual, "game")
				So(manager.refreshInterval, ShouldEqual, defaultRefreshInterval)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("arcade"),
				WithSubsystem("runner"),
				WithMetricPrefix("test"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithDetectionBuckets([]float64{50, 500, 5000}),
				WithRefreshInterval(3*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithMetricsEnabled(false),
				WithPrometheusRegistry(registry),
			)
			manager.scoresSubmitted.Inc()

			Convey("Then metric names should carry namespace, subsystem and prefix", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				found := false
				for _, mf := range families {
					if mf.GetName() == "arcade_runner_test_scores_submitted_total" {
						found = true
						So(mf.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "env")
					}
				}
				So(found, ShouldBeTrue)
				So(manager.refreshInterval, ShouldEqual, 3*time.Second)
				So(manager.detectionBuckets, ShouldResemble, []float64{50, 500, 5000})
				So(manager.enabled, ShouldBeFalse)
			})
		})

		Convey("When passing zero values to options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithRefreshInterval(0),
				WithHistogramBuckets(nil),
				WithDetectionBuckets(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults should be kept", func() {
				So(manager.namespace, ShouldEqual, "heist")
				So(manager.refreshInterval, ShouldEqual, defaultRefreshInterval)
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
				So(manager.detectionBuckets, ShouldResemble, defaultDetectionBuckets)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording game events", func() {
			beforeSubmitted := testutil.ToFloat64(globalManager.scoresSubmitted)
			beforeLaser := testutil.ToFloat64(globalManager.obstaclesGenerated.WithLabelValues("laser"))
			beforeAvoided := testutil.ToFloat64(globalManager.collisionsChecked.WithLabelValues("laser", "avoided"))

			RecordScoreSubmitted()
			RecordObstacles([]string{"laser", "camera", "laser"})
			RecordCollisionCheck("laser", false)
			UpdateScoreboardSize(7)

			Convey("Then counters and gauges should reflect the observations", func() {
				So(testutil.ToFloat64(globalManager.scoresSubmitted), ShouldEqual, beforeSubmitted+1)
				So(testutil.ToFloat64(globalManager.obstaclesGenerated.WithLabelValues("laser")), ShouldEqual, beforeLaser+2)
				So(testutil.ToFloat64(globalManager.collisionsChecked.WithLabelValues("laser", "avoided")), ShouldEqual, beforeAvoided+1)
				So(testutil.ToFloat64(globalManager.scoreboardSize), ShouldEqual, 7)
			})
		})

		Convey("When recording face detection outcomes", func() {
			beforeHit := testutil.ToFloat64(globalManager.facesDetected)
			beforeMiss := testutil.ToFloat64(globalManager.facesMissed)

			RecordFaceDetected(true)
			RecordFaceDetected(false)
			RecordFaceDetected(false)

			Convey("Then hits and misses should be counted separately", func() {
				So(testutil.ToFloat64(globalManager.facesDetected), ShouldEqual, beforeHit+1)
				So(testutil.ToFloat64(globalManager.facesMissed), ShouldEqual, beforeMiss+2)
			})
		})

		Convey("When gathering the custom registry", func() {
			RecordHTTPRequest("level", "GET", "200")
			families, err := GetRegistry().Gather()

			Convey("Then only heist metrics should be exposed", func() {
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
				for _, mf := range families {
					So(strings.HasPrefix(mf.GetName(), "heist_game_"), ShouldBeTrue)
				}
			})
		})
	})
}

func TestRefreshInterval(t *testing.T) {
	Convey("Given the global manager", t, func() {
		So(RefreshInterval(), ShouldEqual, defaultRefreshInterval)
	})
}
