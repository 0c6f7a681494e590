// Package service internal/application/service/aggregation_service.go
package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dkostenko/uah-rate-aggregator/internal/domain/entity"
	"github.com/dkostenko/uah-rate-aggregator/internal/domain/repository"
	"github.com/dkostenko/uah-rate-aggregator/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
)

// AggregationService combines the two providers' quotes for one currency into
// one averaged record and persists it.
//
// The whole select-average-write sequence runs inside a single process-wide
// mutex shared across all currencies, so averaging writes are serialized
// regardless of currency. Timestamps within a currency's series are therefore
// monotonic as long as all writes go through this service.
type AggregationService struct {
	repo   repository.RateRepository
	logger logger.Logger

	// mu serializes every averaging write, across all currencies
	mu  sync.Mutex
	now func() time.Time
}

// NewAggregationService creates a new aggregation service
func NewAggregationService(repo repository.RateRepository, log logger.Logger) *AggregationService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &AggregationService{
		repo:   repo,
		logger: log,
		now:    time.Now,
	}
}

// SaveAverageRate averages the first matching quote from each provider for
// the requested currency and persists the result.
//
// A provider with no matching quote contributes 0 to the average. That halves
// the other provider's rate instead of excluding the missing source; the
// behavior is kept as-is and covered by tests.
func (s *AggregationService) SaveAverageRate(ctx context.Context, ratesA, ratesB []entity.Quote, currency string) (*entity.AveragedRate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buyA, sellA := firstMatch(ratesA, currency)
	buyB, sellB := firstMatch(ratesB, currency)

	rate := &entity.AveragedRate{
		Currency:  strings.ToUpper(currency),
		BuyRate:   averageOfTwo(buyA, buyB),
		SellRate:  averageOfTwo(sellA, sellB),
		Timestamp: s.now(),
	}

	if err := rate.Validate(); err != nil {
		return nil, fmt.Errorf("invalid averaged rate: %s: %w", err, entity.ErrValidation)
	}

	if err := s.repo.Store(ctx, rate); err != nil {
		s.logger.Error("Failed to store averaged rate", map[string]interface{}{
			"currency": rate.Currency,
			"error":    err.Error(),
		})
		return nil, fmt.Errorf("failed to store average rate: %w", err)
	}

	s.logger.Info("Average rate saved", map[string]interface{}{
		"currency":  rate.Currency,
		"buy_rate":  rate.BuyRate,
		"sell_rate": rate.SellRate,
	})

	return rate, nil
}

// firstMatch returns the buy/sell of the first quote matching the currency
// (case-insensitive), or zeros when no quote matches.
func firstMatch(quotes []entity.Quote, currency string) (buy, sell float64) {
	for _, q := range quotes {
		if strings.EqualFold(q.Currency, currency) {
			return q.Buy, q.Sell
		}
	}
	return 0, 0
}

// averageOfTwo returns (a+b)/2 rounded half-up to 2 decimal places
func averageOfTwo(a, b float64) float64 {
	return decimal.NewFromFloat(a).
		Add(decimal.NewFromFloat(b)).
		Div(decimal.NewFromInt(2)).
		Round(2).
		InexactFloat64()
}
