package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			metricsEnabledOpt := WithMetricsEnabled(true)

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(metricsEnabledOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given metrics recording", t, func() {
		Convey("When recording HTTP metrics", func() {
			Convey("Then it should record requests and durations", func() {
				So(func() {
					RecordHTTPRequest("generate-team", "POST", "200")
					RecordHTTPRequestDuration("generate-team", "POST", "200", 1250.0)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording collaborator metrics", func() {
			Convey("Then it should record calls, errors, and latency", func() {
				So(func() {
					RecordLLMCall("llama-3.1-8b-instant")
					RecordLLMError("llama-3.1-8b-instant")
					RecordLLMLatency("llama-3.1-8b-instant", 840.0)
					RecordLLMExhausted()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording pipeline metrics", func() {
			Convey("Then it should record fallbacks and pool state", func() {
				So(func() {
					RecordExpertBatchFallback("value_hunter")
					RecordSquadFallback("exception")
					RecordLockedCandidates(3)
					UpdateCandidatePoolSize(30)
					RecordPipelineDuration(15000.0)
				}, ShouldNotPanic)
			})
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the custom registry", t, func() {
		Convey("When gathering after recording", func() {
			RecordHTTPRequest("healthz", "GET", "200")
			families, err := GetRegistry().Gather()

			Convey("Then our metrics are exposed from it", func() {
				So(err, ShouldBeNil)
				So(families, ShouldNotBeEmpty)

				found := false
				for _, fam := range families {
					if fam.GetName() == "pundit_pipeline_http_requests_total" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}
