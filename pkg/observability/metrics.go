package observability

import (
	"context"
	"strconv"

	"github.com/aretw0/markov/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports Prometheus collectors fed by engine lifecycle events.
type Metrics struct {
	FormulaApplications *prometheus.CounterVec
	Runs                *prometheus.CounterVec
	StepsPerRun         prometheus.Histogram
	RunDuration         prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg.
// The scheme label distinguishes engines sharing one registry.
func NewMetrics(reg prometheus.Registerer, scheme string) (*Metrics, error) {
	constLabels := prometheus.Labels{"scheme": scheme}

	m := &Metrics{
		FormulaApplications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "markov_formula_applications_total",
				Help:        "Number of rewrites performed, by formula priority.",
				ConstLabels: constLabels,
			},
			[]string{"formula_index", "formula"},
		),
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "markov_runs_total",
				Help:        "Number of finished applications, by outcome.",
				ConstLabels: constLabels,
			},
			[]string{"outcome"},
		),
		StepsPerRun: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:        "markov_run_steps",
				Help:        "Steps taken by finished applications.",
				ConstLabels: constLabels,
				Buckets:     prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:        "markov_run_duration_seconds",
				Help:        "Wall time of finished applications.",
				ConstLabels: constLabels,
				Buckets:     prometheus.DefBuckets,
			},
		),
	}

	for _, c := range []prometheus.Collector{m.FormulaApplications, m.Runs, m.StepsPerRun, m.RunDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that update the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStep: func(_ context.Context, e *domain.StepEvent) {
			m.FormulaApplications.WithLabelValues(strconv.Itoa(e.Step.FormulaIndex), e.Step.Formula).Inc()
		},
		OnFinish: func(_ context.Context, e *domain.FinishEvent) {
			m.Runs.WithLabelValues(string(e.Result.Outcome)).Inc()
			m.StepsPerRun.Observe(float64(e.Result.Steps))
			m.RunDuration.Observe(e.Duration.Seconds())
		},
	}
}
