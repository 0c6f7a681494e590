// Package scheduler internal/application/scheduler/scheduler.go
package scheduler

import (
	"context"
	"sync"
	"time"

	appservice "github.com/dkostenko/uah-rate-aggregator/internal/application/service"
	"github.com/dkostenko/uah-rate-aggregator/internal/domain/service"
	"github.com/dkostenko/uah-rate-aggregator/internal/infrastructure/logger"
	"github.com/dkostenko/uah-rate-aggregator/internal/infrastructure/metrics"
)

// Scheduler drives the fetch-aggregate-persist pipeline on a fixed interval.
//
// Triggers are single-flight: a trigger arriving while a run is in progress
// is dropped entirely, not queued. Any error inside a run abandons that run,
// restores the idle state, and never crashes the process; writes completed
// before the failure stay committed.
type Scheduler struct {
	interval   time.Duration
	sourceA    service.RateSource
	sourceB    service.RateSource
	aggregator *appservice.AggregationService
	currencies []string
	logger     logger.Logger
	metrics    *metrics.Metrics

	// mu is the Idle/Running guard; TryLock failing means a run is in progress
	mu sync.Mutex
}

// New creates a scheduler for the given sources and currencies
func New(
	interval time.Duration,
	sourceA, sourceB service.RateSource,
	aggregator *appservice.AggregationService,
	currencies []string,
	log logger.Logger,
	m *metrics.Metrics,
) *Scheduler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &Scheduler{
		interval:   interval,
		sourceA:    sourceA,
		sourceB:    sourceB,
		aggregator: aggregator,
		currencies: currencies,
		logger:     log,
		metrics:    m,
	}
}

// Start launches the periodic loop. The first run fires immediately; the
// loop stops when ctx is canceled.
func (s *Scheduler) Start(ctx context.Context) {
	go s.loop(ctx)
}

func (s *Scheduler) loop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Trigger(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler stopped", nil)
			return
		case <-ticker.C:
			s.Trigger(ctx)
		}
	}
}

// Trigger attempts one pipeline run. It returns false when a run was already
// in progress and the trigger was dropped.
func (s *Scheduler) Trigger(ctx context.Context) bool {
	if !s.mu.TryLock() {
		s.logger.Warn("Update already running, skipping trigger", nil)
		if s.metrics != nil {
			s.metrics.SchedulerSkipsTotal.Inc()
		}
		return false
	}
	defer s.mu.Unlock()

	s.run(ctx)
	return true
}

// run executes one fetch-aggregate-persist sequence. Errors abandon the run.
func (s *Scheduler) run(ctx context.Context) {
	s.logger.Info("Scheduler triggered to update average rates", nil)

	ratesA, err := s.sourceA.FetchRates(ctx)
	if err != nil {
		s.abort(s.sourceA.Name(), err)
		return
	}

	ratesB, err := s.sourceB.FetchRates(ctx)
	if err != nil {
		s.abort(s.sourceB.Name(), err)
		return
	}

	for _, currency := range s.currencies {
		if _, err := s.aggregator.SaveAverageRate(ctx, ratesA, ratesB, currency); err != nil {
			s.logger.Error("Error during scheduled update, run abandoned", map[string]interface{}{
				"currency": currency,
				"error":    err.Error(),
			})
			if s.metrics != nil {
				s.metrics.SchedulerRunsTotal.WithLabelValues("error").Inc()
			}
			return
		}

		if s.metrics != nil {
			s.metrics.RatesPersistedTotal.WithLabelValues(currency).Inc()
		}
	}

	if s.metrics != nil {
		s.metrics.SchedulerRunsTotal.WithLabelValues("ok").Inc()
	}

	s.logger.Info("Average currency rates successfully updated", map[string]interface{}{
		"currencies": s.currencies,
	})
}

func (s *Scheduler) abort(provider string, err error) {
	s.logger.Error("Provider fetch failed, run abandoned", map[string]interface{}{
		"provider": provider,
		"error":    err.Error(),
	})

	if s.metrics != nil {
		s.metrics.ProviderFailuresTotal.WithLabelValues(provider).Inc()
		s.metrics.SchedulerRunsTotal.WithLabelValues("error").Inc()
	}
}
