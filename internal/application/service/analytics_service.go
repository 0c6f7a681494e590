// Package service internal/application/service/analytics_service.go
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dkostenko/uah-rate-aggregator/internal/domain/entity"
	"github.com/dkostenko/uah-rate-aggregator/internal/domain/repository"
	"github.com/dkostenko/uah-rate-aggregator/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
)

// RateChange is one analytics entry: the percent change of a record's buy
// rate relative to its predecessor, tagged with the record's timestamp.
type RateChange struct {
	Timestamp     time.Time `json:"timestamp"`
	ChangePercent float64   `json:"change_percent"`
}

// AnalyticsService derives percentage-change series from the persisted rates.
// It is stateless; both operations work on buy rates only.
type AnalyticsService struct {
	repo   repository.RateRepository
	logger logger.Logger
	now    func() time.Time
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(repo repository.RateRepository, log logger.Logger) *AnalyticsService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &AnalyticsService{
		repo:   repo,
		logger: log,
		now:    time.Now,
	}
}

// GetHourlyDynamics returns the percent change between each consecutive pair
// of today's records, ascending. Fails with entity.ErrInsufficientData when
// fewer than 2 records exist since the start of the current calendar day.
func (s *AnalyticsService) GetHourlyDynamics(ctx context.Context, currency string) ([]RateChange, error) {
	currency = strings.ToUpper(currency)

	rates, err := s.repo.FindSince(ctx, currency, startOfDay(s.now()))
	if err != nil {
		return nil, fmt.Errorf("failed to query daily rates: %w", err)
	}

	if len(rates) < 2 {
		s.logger.Warn("Insufficient data for hourly dynamics", map[string]interface{}{
			"currency": currency,
			"records":  len(rates),
		})
		return nil, fmt.Errorf("hourly dynamics for %s needs at least 2 daily records: %w",
			currency, entity.ErrInsufficientData)
	}

	dynamics := make([]RateChange, 0, len(rates)-1)
	for i := 1; i < len(rates); i++ {
		dynamics = append(dynamics, RateChange{
			Timestamp:     rates[i].Timestamp,
			ChangePercent: percentChange(rates[i-1].BuyRate, rates[i].BuyRate),
		})
	}

	s.logger.Info("Hourly dynamics computed", map[string]interface{}{
		"currency": currency,
		"entries":  len(dynamics),
	})

	return dynamics, nil
}

// GetLastHourChange returns the percent change between the two most recent
// records. Fails with entity.ErrInsufficientData when fewer than 2 exist.
func (s *AnalyticsService) GetLastHourChange(ctx context.Context, currency string) (float64, error) {
	currency = strings.ToUpper(currency)

	rates, err := s.repo.FindLatestTwo(ctx, currency)
	if err != nil {
		return 0, fmt.Errorf("failed to query recent rates: %w", err)
	}

	if len(rates) < 2 {
		s.logger.Warn("Insufficient data for last hour change", map[string]interface{}{
			"currency": currency,
			"records":  len(rates),
		})
		return 0, fmt.Errorf("last hour change for %s needs 2 records: %w",
			currency, entity.ErrInsufficientData)
	}

	change := percentChange(rates[1].BuyRate, rates[0].BuyRate)

	s.logger.Info("Last hour change computed", map[string]interface{}{
		"currency":       currency,
		"change_percent": change,
	})

	return change, nil
}

// percentChange returns ((current-previous)/previous)*100 rounded to 2
// decimal places. A zero previous rate is not guarded; it can only arise
// from the zero-contribution averaging quirk.
func percentChange(previous, current float64) float64 {
	return decimal.NewFromFloat(current).
		Sub(decimal.NewFromFloat(previous)).
		Div(decimal.NewFromFloat(previous)).
		Mul(decimal.NewFromInt(100)).
		Round(2).
		InexactFloat64()
}

// startOfDay truncates t to midnight in its own location
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
