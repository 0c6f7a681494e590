// Package metrics internal/infrastructure/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's prometheus collectors
type Metrics struct {
	// Scheduler runs by result ("ok" or "error")
	SchedulerRunsTotal *prometheus.CounterVec

	// Triggers dropped because a run was already in progress
	SchedulerSkipsTotal prometheus.Counter

	// Provider fetch failures by provider name
	ProviderFailuresTotal *prometheus.CounterVec

	// Averaged records persisted by currency
	RatesPersistedTotal *prometheus.CounterVec
}

// New registers the service metrics on the given registerer
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		SchedulerRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_scheduler_runs_total",
				Help: "Completed scheduler runs by result",
			},
			[]string{"result"},
		),
		SchedulerSkipsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rate_scheduler_skips_total",
				Help: "Scheduler triggers dropped because a run was in progress",
			},
		),
		ProviderFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_provider_failures_total",
				Help: "Provider fetch failures by provider",
			},
			[]string{"provider"},
		),
		RatesPersistedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_records_persisted_total",
				Help: "Averaged rate records persisted by currency",
			},
			[]string{"currency"},
		),
	}
}
