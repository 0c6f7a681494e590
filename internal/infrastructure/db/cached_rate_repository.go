package db

import (
	"context"
	"strings"
	"time"

	"github.com/dkostenko/uah-rate-aggregator/internal/domain/entity"
	"github.com/dkostenko/uah-rate-aggregator/internal/domain/repository"
	"github.com/dkostenko/uah-rate-aggregator/internal/infrastructure/cache"
	"github.com/dkostenko/uah-rate-aggregator/internal/infrastructure/logger"
)

// CachedRateRepository is a read-through wrapper around a RateRepository.
// Reads populate the cache on miss; a successful Store empties all three
// cache buckets for that currency, so the next read recomputes from the
// underlying store.
type CachedRateRepository struct {
	inner  repository.RateRepository
	cache  *cache.RateCache
	logger logger.Logger
}

// NewCachedRateRepository creates a caching wrapper around inner
func NewCachedRateRepository(inner repository.RateRepository, rateCache *cache.RateCache, log logger.Logger) *CachedRateRepository {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &CachedRateRepository{
		inner:  inner,
		cache:  rateCache,
		logger: log,
	}
}

// Store writes through to the underlying repository and invalidates the
// currency's cache entries on success.
func (r *CachedRateRepository) Store(ctx context.Context, rate *entity.AveragedRate) error {
	if err := r.inner.Store(ctx, rate); err != nil {
		return err
	}

	currency := strings.ToUpper(rate.Currency)
	r.cache.Invalidate(currency)

	r.logger.Debug("Cache invalidated after write", map[string]interface{}{
		"currency": currency,
	})

	return nil
}

// FindLatest returns the most recent record, serving from cache when possible
func (r *CachedRateRepository) FindLatest(ctx context.Context, currency string) (*entity.AveragedRate, error) {
	currency = strings.ToUpper(currency)

	if rate, ok := r.cache.GetLatest(currency); ok {
		return rate, nil
	}

	rate, err := r.inner.FindLatest(ctx, currency)
	if err != nil {
		return nil, err
	}

	r.cache.PutLatest(currency, rate)
	return rate, nil
}

// FindLatestTwo returns up to two most recent records, serving from cache when possible
func (r *CachedRateRepository) FindLatestTwo(ctx context.Context, currency string) ([]entity.AveragedRate, error) {
	currency = strings.ToUpper(currency)

	if rates, ok := r.cache.GetLatestTwo(currency); ok {
		return rates, nil
	}

	rates, err := r.inner.FindLatestTwo(ctx, currency)
	if err != nil {
		return nil, err
	}

	r.cache.PutLatestTwo(currency, rates)
	return rates, nil
}

// FindSince returns records since the cutoff, serving from cache when possible
func (r *CachedRateRepository) FindSince(ctx context.Context, currency string, since time.Time) ([]entity.AveragedRate, error) {
	currency = strings.ToUpper(currency)

	if rates, ok := r.cache.GetSince(currency, since); ok {
		return rates, nil
	}

	rates, err := r.inner.FindSince(ctx, currency, since)
	if err != nil {
		return nil, err
	}

	r.cache.PutSince(currency, since, rates)
	return rates, nil
}
