package metrics

import (
	"net/http"
	"time"

	portsout "chainorg/internal/application/ports/out"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegistrationMetrics tracks registration phases, outcomes and ledger
// confirmation polling. Each instance owns its registry so tests and
// multiple containers never collide on registration.
type RegistrationMetrics struct {
	registry *prometheus.Registry

	PhaseTransitions     *prometheus.CounterVec
	Outcomes             *prometheus.CounterVec
	ConfirmationPolls    *prometheus.HistogramVec
	ConfirmationDuration *prometheus.HistogramVec
	ReconcileCycles      *prometheus.CounterVec
}

var _ portsout.RegistrationMetrics = (*RegistrationMetrics)(nil)

func NewRegistrationMetrics() *RegistrationMetrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &RegistrationMetrics{
		registry: registry,
		PhaseTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chainorg_registration_phase_transitions_total",
			Help: "Registration attempts journaled per phase",
		}, []string{"phase"}),
		Outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chainorg_registration_outcomes_total",
			Help: "Finished registration attempts by outcome and error category",
		}, []string{"outcome", "category"}),
		ConfirmationPolls: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "chainorg_confirmation_polls",
			Help:    "Ledger status queries issued per confirmation",
			Buckets: []float64{1, 2, 3, 5, 8, 13},
		}, []string{"outcome"}),
		ConfirmationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "chainorg_confirmation_duration_seconds",
			Help:    "Wall-clock time spent waiting for ledger confirmation",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 90},
		}, []string{"outcome"}),
		ReconcileCycles: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chainorg_registration_reconcile_attempts_total",
			Help: "Stalled registration attempts handled by the reconciler by result",
		}, []string{"result"}),
	}
}

func (m *RegistrationMetrics) ObservePhase(phase string) {
	if m == nil {
		return
	}
	m.PhaseTransitions.WithLabelValues(phase).Inc()
}

func (m *RegistrationMetrics) ObserveOutcome(outcome string, category string) {
	if m == nil {
		return
	}
	m.Outcomes.WithLabelValues(outcome, category).Inc()
}

func (m *RegistrationMetrics) ObserveConfirmation(outcome string, polls int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ConfirmationPolls.WithLabelValues(outcome).Observe(float64(polls))
	m.ConfirmationDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// ObserveReconcile records one reconciler pass.
func (m *RegistrationMetrics) ObserveReconcile(finalized, failed, skipped, errored int) {
	if m == nil {
		return
	}
	m.ReconcileCycles.WithLabelValues("finalized").Add(float64(finalized))
	m.ReconcileCycles.WithLabelValues("failed").Add(float64(failed))
	m.ReconcileCycles.WithLabelValues("skipped").Add(float64(skipped))
	m.ReconcileCycles.WithLabelValues("error").Add(float64(errored))
}

func (m *RegistrationMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *RegistrationMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
