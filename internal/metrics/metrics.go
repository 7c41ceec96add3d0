// Package metrics exposes Prometheus instrumentation for event ingestion.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "elo"
	subsystem = "ledger"
)

const (
	OutcomeRated   = "rated"
	OutcomeForfeit = "forfeit"

	ResultSuccess   = "success"
	ResultDuplicate = "duplicate"
	ResultFailure   = "failure"
)

type Metrics struct {
	matchesProcessed *prometheus.CounterVec
	eventsIngested   *prometheus.CounterVec
	ratingDelta      prometheus.Histogram
	ingestDuration   prometheus.Histogram
}

// NewRegistry returns a registry carrying the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func New(reg *prometheus.Registry) *Metrics {
	auto := promauto.With(reg)

	return &Metrics{
		matchesProcessed: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "matches_processed_total",
			Help:      "Sets written to the ledger, by outcome",
		}, []string{"outcome"}),
		eventsIngested: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "events_ingested_total",
			Help:      "Event ingestion attempts, by result",
		}, []string{"result"}),
		ratingDelta: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "overall_rating_delta_abs",
			Help:      "Absolute overall rating change per player per rated set",
			Buckets:   []float64{1, 2, 4, 8, 16, 32, 64, 128},
		}),
		ingestDuration: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "ingest_duration_seconds",
			Help:      "Wall time of a full event ingestion",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
	}
}

func (m *Metrics) MatchRated(deltaOne, deltaTwo float64) {
	m.matchesProcessed.WithLabelValues(OutcomeRated).Inc()
	m.ratingDelta.Observe(abs(deltaOne))
	m.ratingDelta.Observe(abs(deltaTwo))
}

func (m *Metrics) MatchForfeited() {
	m.matchesProcessed.WithLabelValues(OutcomeForfeit).Inc()
}

func (m *Metrics) EventIngested(result string, took time.Duration) {
	m.eventsIngested.WithLabelValues(result).Inc()
	if result == ResultSuccess {
		m.ingestDuration.Observe(took.Seconds())
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
