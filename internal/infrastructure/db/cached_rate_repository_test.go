package db

import (
	"context"
	"testing"
	"time"

	"github.com/dkostenko/uah-rate-aggregator/internal/domain/entity"
	"github.com/dkostenko/uah-rate-aggregator/internal/infrastructure/cache"
	"github.com/dkostenko/uah-rate-aggregator/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedRateRepository_ReadThrough(t *testing.T) {
	inner := new(mocks.MockRateRepository)
	rateCache := cache.NewRateCache()
	repo := NewCachedRateRepository(inner, rateCache, nil)
	ctx := context.Background()

	ts := time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)
	rate := &entity.AveragedRate{Currency: "USD", BuyRate: 27.05, SellRate: 27.35, Timestamp: ts}

	// First read misses and hits the store; second is served from cache.
	inner.On("FindLatest", ctx, "USD").Return(rate, nil).Once()

	got, err := repo.FindLatest(ctx, "usd")
	require.NoError(t, err)
	assert.Equal(t, rate, got)

	got, err = repo.FindLatest(ctx, "USD")
	require.NoError(t, err)
	assert.Equal(t, rate, got)

	inner.AssertExpectations(t)
}

func TestCachedRateRepository_NotFoundIsNotCached(t *testing.T) {
	inner := new(mocks.MockRateRepository)
	rateCache := cache.NewRateCache()
	repo := NewCachedRateRepository(inner, rateCache, nil)
	ctx := context.Background()

	inner.On("FindLatest", ctx, "EUR").Return(nil, entity.ErrNotFound).Twice()

	_, err := repo.FindLatest(ctx, "EUR")
	assert.ErrorIs(t, err, entity.ErrNotFound)

	// The miss was not cached; the store is asked again
	_, err = repo.FindLatest(ctx, "EUR")
	assert.ErrorIs(t, err, entity.ErrNotFound)

	inner.AssertExpectations(t)
}

func TestCachedRateRepository_StoreInvalidatesOnlyThatCurrency(t *testing.T) {
	inner := new(mocks.MockRateRepository)
	rateCache := cache.NewRateCache()
	repo := NewCachedRateRepository(inner, rateCache, nil)
	ctx := context.Background()

	ts := time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)
	oldUSD := &entity.AveragedRate{Currency: "USD", BuyRate: 27.0, SellRate: 27.3, Timestamp: ts}
	newUSD := &entity.AveragedRate{Currency: "USD", BuyRate: 27.2, SellRate: 27.5, Timestamp: ts.Add(time.Hour)}
	eur := &entity.AveragedRate{Currency: "EUR", BuyRate: 30.0, SellRate: 30.5, Timestamp: ts}

	// Warm both caches
	inner.On("FindLatest", ctx, "USD").Return(oldUSD, nil).Once()
	inner.On("FindLatest", ctx, "EUR").Return(eur, nil).Once()

	_, err := repo.FindLatest(ctx, "USD")
	require.NoError(t, err)
	_, err = repo.FindLatest(ctx, "EUR")
	require.NoError(t, err)

	// Write a new USD record
	inner.On("Store", ctx, newUSD).Return(nil).Once()
	require.NoError(t, repo.Store(ctx, newUSD))

	// USD read is no longer stale: it goes back to the store
	inner.On("FindLatest", ctx, "USD").Return(newUSD, nil).Once()
	got, err := repo.FindLatest(ctx, "USD")
	require.NoError(t, err)
	assert.Equal(t, 27.2, got.BuyRate)

	// EUR is still served from cache (no extra store call expected)
	got, err = repo.FindLatest(ctx, "EUR")
	require.NoError(t, err)
	assert.Equal(t, 30.0, got.BuyRate)

	inner.AssertExpectations(t)
}

func TestCachedRateRepository_StoreErrorSkipsInvalidation(t *testing.T) {
	inner := new(mocks.MockRateRepository)
	rateCache := cache.NewRateCache()
	repo := NewCachedRateRepository(inner, rateCache, nil)
	ctx := context.Background()

	ts := time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)
	cached := &entity.AveragedRate{Currency: "USD", BuyRate: 27.0, SellRate: 27.3, Timestamp: ts}

	inner.On("FindLatest", ctx, "USD").Return(cached, nil).Once()
	_, err := repo.FindLatest(ctx, "USD")
	require.NoError(t, err)

	failed := &entity.AveragedRate{Currency: "USD", BuyRate: 27.2, SellRate: 27.5, Timestamp: ts.Add(time.Hour)}
	inner.On("Store", ctx, failed).Return(entity.ErrStorage).Once()

	err = repo.Store(ctx, failed)
	assert.ErrorIs(t, err, entity.ErrStorage)

	// Cache entry survives a failed write
	got, err := repo.FindLatest(ctx, "USD")
	require.NoError(t, err)
	assert.Equal(t, 27.0, got.BuyRate)

	inner.AssertExpectations(t)
}
