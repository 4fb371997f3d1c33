package engine

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports controller lifecycle counters to Prometheus.
type Metrics struct {
	RunsStarted  *prometheus.CounterVec
	RunsFinished *prometheus.CounterVec
	Steps        *prometheus.CounterVec
	RunDuration  *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RunsStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stepwise_runs_started_total",
				Help: "Total number of procedure runs started",
			},
			[]string{"procedure"},
		),
		RunsFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stepwise_runs_finished_total",
				Help: "Total number of procedure runs finished, by outcome",
			},
			[]string{"procedure", "outcome"},
		),
		Steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stepwise_steps_recorded_total",
				Help: "Total number of snapshots recorded",
			},
			[]string{"procedure"},
		),
		RunDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stepwise_run_duration_seconds",
				Help:    "Wall-clock duration of finished runs",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
			},
			[]string{"procedure"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.RunsStarted, m.RunsFinished, m.Steps, m.RunDuration)
	}
	return m
}

// Hooks returns lifecycle hooks that feed m.
func (m *Metrics) Hooks() Hooks {
	return Hooks{
		OnRunStart: func(_ context.Context, r *RunReport) {
			m.RunsStarted.WithLabelValues(r.Procedure).Inc()
		},
		OnStep: func(_ context.Context, e *StepEvent) {
			m.Steps.WithLabelValues(e.Procedure).Inc()
		},
		OnRunEnd: func(_ context.Context, r *RunReport) {
			m.RunsFinished.WithLabelValues(r.Procedure, r.Outcome.String()).Inc()
			m.RunDuration.WithLabelValues(r.Procedure).Observe(r.Duration().Seconds())
		},
	}
}
