// Package metrics exposes Prometheus instrumentation for the bracket engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tourney"

// Result outcomes reported by ObserveMatchResult.
const (
	OutcomeRecorded     = "recorded"
	OutcomeRejected     = "rejected"
	OutcomeInconsistent = "inconsistent"
	OutcomeError        = "error"
)

// Metrics is safe to use through a nil pointer; every method becomes a no-op.
type Metrics struct {
	bracketsBuilt        prometheus.Counter
	bracketSize          prometheus.Histogram
	matchResults         *prometheus.CounterVec
	resultDuration       prometheus.Histogram
	tournamentsCompleted prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		bracketsBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "brackets_built_total",
			Help:      "Number of brackets generated and persisted.",
		}),
		bracketSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "bracket_competitors",
			Help:      "Competitor count of generated brackets.",
			Buckets:   prometheus.ExponentialBuckets(2, 2, 8),
		}),
		matchResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_results_total",
			Help:      "Match result submissions by outcome.",
		}, []string{"outcome"}),
		resultDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_result_duration_seconds",
			Help:      "Time spent recording a match result, including the storage transaction.",
			Buckets:   prometheus.DefBuckets,
		}),
		tournamentsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tournaments_completed_total",
			Help:      "Number of tournaments closed with a champion.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.bracketsBuilt, m.bracketSize, m.matchResults, m.resultDuration, m.tournamentsCompleted)
	}
	return m
}

func (m *Metrics) ObserveBracketBuilt(competitors int) {
	if m == nil {
		return
	}
	m.bracketsBuilt.Inc()
	m.bracketSize.Observe(float64(competitors))
}

func (m *Metrics) ObserveMatchResult(outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.matchResults.WithLabelValues(outcome).Inc()
	m.resultDuration.Observe(took.Seconds())
}

func (m *Metrics) IncTournamentsCompleted() {
	if m == nil {
		return
	}
	m.tournamentsCompleted.Inc()
}
