package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveBracketBuilt(5)
	m.ObserveBracketBuilt(8)
	m.ObserveMatchResult(OutcomeRecorded, 10*time.Millisecond)
	m.ObserveMatchResult(OutcomeRecorded, 5*time.Millisecond)
	m.ObserveMatchResult(OutcomeRejected, time.Millisecond)
	m.IncTournamentsCompleted()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.bracketsBuilt))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.matchResults.WithLabelValues(OutcomeRecorded)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.matchResults.WithLabelValues(OutcomeRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tournamentsCompleted))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "tourney_match_result_duration_seconds")
	assert.Contains(t, names, "tourney_bracket_competitors")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveBracketBuilt(3)
		m.ObserveMatchResult(OutcomeError, time.Second)
		m.IncTournamentsCompleted()
	})
}
