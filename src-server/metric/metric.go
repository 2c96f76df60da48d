package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	oracleRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nlcal_oracle_requests_total",
		Help: "Oracle requests by outcome",
	}, []string{"oracle", "outcome"})

	oracleLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nlcal_oracle_latency_seconds",
		Help:    "Time spent waiting on the oracle",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"oracle"})

	eventsCompiled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nlcal_events_compiled_total",
		Help: "Calendar documents compiled and written",
	})

	scheduleErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nlcal_schedule_errors_total",
		Help: "Failed schedule requests by error kind",
	}, []string{"kind"})
)

// ObserveOracle records one oracle round trip. outcome is "ok" or an error
// kind such as "communication" or "schema".
func ObserveOracle(oracle string, outcome string, took time.Duration) {
	oracleRequests.WithLabelValues(oracle, outcome).Inc()
	oracleLatency.WithLabelValues(oracle).Observe(took.Seconds())
}

func IncEventsCompiled() {
	eventsCompiled.Inc()
}

func IncScheduleError(kind string) {
	scheduleErrors.WithLabelValues(kind).Inc()
}
