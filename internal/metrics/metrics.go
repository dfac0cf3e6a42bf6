package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects authoring and pipeline counters for the /metrics endpoint.
type Metrics struct {
	SessionsOpened prometheus.Counter
	SessionsClosed prometheus.Counter

	SavesAttempted prometheus.Counter
	SavesSucceeded prometheus.Counter
	SavesFailed    *prometheus.CounterVec

	PhaseDuration *prometheus.HistogramVec
}

// New registers all collectors against the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		SessionsOpened: factory.NewCounter(prometheus.CounterOpts{
			Name: "quiz_authoring_sessions_opened_total",
			Help: "Number of editor sessions opened.",
		}),
		SessionsClosed: factory.NewCounter(prometheus.CounterOpts{
			Name: "quiz_authoring_sessions_closed_total",
			Help: "Number of editor sessions closed or cancelled.",
		}),
		SavesAttempted: factory.NewCounter(prometheus.CounterOpts{
			Name: "quiz_authoring_saves_attempted_total",
			Help: "Number of quiz saves started.",
		}),
		SavesSucceeded: factory.NewCounter(prometheus.CounterOpts{
			Name: "quiz_authoring_saves_succeeded_total",
			Help: "Number of quiz saves that completed all pipeline phases.",
		}),
		SavesFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_authoring_saves_failed_total",
			Help: "Number of failed quiz saves, partitioned by failing phase.",
		}, []string{"phase"}),
		PhaseDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quiz_authoring_pipeline_phase_duration_seconds",
			Help:    "Duration of each persistence pipeline phase.",
			Buckets: prometheus.DefBuckets,
		}, []string{"phase"}),
	}
}
