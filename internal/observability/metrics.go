package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics counts pipeline activity. A nil *Metrics records nothing.
type Metrics struct {
	questions     prometheus.Counter
	completions   *prometheus.CounterVec
	queries       *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		questions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nlsql",
			Name:      "questions_total",
			Help:      "Questions received.",
		}),
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nlsql",
			Name:      "completions_total",
			Help:      "Completion requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nlsql",
			Name:      "queries_total",
			Help:      "Generated queries executed, by outcome.",
		}, []string{"outcome"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nlsql",
			Name:      "stage_duration_seconds",
			Help:      "Time spent per pipeline stage.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
	}
	if registerer != nil {
		registerer.MustRegister(m.questions, m.completions, m.queries, m.stageDuration)
	}
	return m
}

func (m *Metrics) ObserveQuestion() {
	if m == nil {
		return
	}
	m.questions.Inc()
}

func (m *Metrics) ObserveCompletion(provider string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.completions.WithLabelValues(provider, outcome(err)).Inc()
	m.stageDuration.WithLabelValues("completion").Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveQuery(err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(outcome(err)).Inc()
	m.stageDuration.WithLabelValues("query").Observe(elapsed.Seconds())
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}
