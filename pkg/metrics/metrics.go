package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Mutations instruments the mutation executor. A nil *Mutations records
// nothing.
type Mutations struct {
	attempts  *prometheus.CounterVec
	conflicts *prometheus.CounterVec
	results   *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

func NewMutations(reg prometheus.Registerer) *Mutations {
	f := promauto.With(reg)
	return &Mutations{
		attempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ignita_mutation_attempts_total",
			Help: "Read-transform-write cycles started, by operation.",
		}, []string{"operation"}),
		conflicts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ignita_mutation_conflicts_total",
			Help: "Conditional writes that matched no row, by operation.",
		}, []string{"operation"}),
		results: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ignita_mutation_results_total",
			Help: "Finished mutations, by operation and result code.",
		}, []string{"operation", "code"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ignita_mutation_duration_seconds",
			Help:    "Wall time of a mutation including retries.",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
	}
}

func (m *Mutations) Attempt(op string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(op).Inc()
}

func (m *Mutations) Conflict(op string) {
	if m == nil {
		return
	}
	m.conflicts.WithLabelValues(op).Inc()
}

// Done records the outcome; code is "OK" on success.
func (m *Mutations) Done(op, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.results.WithLabelValues(op, code).Inc()
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}
