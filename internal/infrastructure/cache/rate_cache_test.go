package cache

import (
	"testing"
	"time"

	"github.com/dkostenko/uah-rate-aggregator/internal/domain/entity"
	"github.com/stretchr/testify/assert"
)

func TestRateCache(t *testing.T) {
	c := NewRateCache()

	assert.Equal(t, 0, c.Size())

	ts := time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)
	usd := &entity.AveragedRate{Currency: "USD", BuyRate: 27.05, SellRate: 27.35, Timestamp: ts}
	eur := &entity.AveragedRate{Currency: "EUR", BuyRate: 30.05, SellRate: 30.55, Timestamp: ts}

	// Miss before any put
	_, ok := c.GetLatest("USD")
	assert.False(t, ok)

	c.PutLatest("USD", usd)
	c.PutLatest("EUR", eur)

	got, ok := c.GetLatest("USD")
	assert.True(t, ok)
	assert.Equal(t, usd, got)

	cutoff := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	c.PutLatestTwo("USD", []entity.AveragedRate{*usd})
	c.PutSince("USD", cutoff, []entity.AveragedRate{*usd})

	assert.Equal(t, 5, c.Size())
}

func TestRateCache_InvalidatePerCurrency(t *testing.T) {
	c := NewRateCache()

	ts := time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)
	cutoff := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	usd := &entity.AveragedRate{Currency: "USD", BuyRate: 27.05, SellRate: 27.35, Timestamp: ts}
	eur := &entity.AveragedRate{Currency: "EUR", BuyRate: 30.05, SellRate: 30.55, Timestamp: ts}

	c.PutLatest("USD", usd)
	c.PutLatestTwo("USD", []entity.AveragedRate{*usd})
	c.PutSince("USD", cutoff, []entity.AveragedRate{*usd})
	c.PutLatest("EUR", eur)
	c.PutLatestTwo("EUR", []entity.AveragedRate{*eur})
	c.PutSince("EUR", cutoff, []entity.AveragedRate{*eur})

	c.Invalidate("USD")

	// All three USD buckets are emptied
	_, ok := c.GetLatest("USD")
	assert.False(t, ok)
	_, ok = c.GetLatestTwo("USD")
	assert.False(t, ok)
	_, ok = c.GetSince("USD", cutoff)
	assert.False(t, ok)

	// EUR entries are untouched
	got, ok := c.GetLatest("EUR")
	assert.True(t, ok)
	assert.Equal(t, eur, got)
	_, ok = c.GetLatestTwo("EUR")
	assert.True(t, ok)
	_, ok = c.GetSince("EUR", cutoff)
	assert.True(t, ok)
}

func TestRateCache_SinceKeyedByCutoff(t *testing.T) {
	c := NewRateCache()

	ts := time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)
	usd := entity.AveragedRate{Currency: "USD", BuyRate: 27.05, SellRate: 27.35, Timestamp: ts}

	day1 := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)

	c.PutSince("USD", day1, []entity.AveragedRate{usd})

	// A different cutoff is a different entry
	_, ok := c.GetSince("USD", day2)
	assert.False(t, ok)

	got, ok := c.GetSince("USD", day1)
	assert.True(t, ok)
	assert.Len(t, got, 1)
}

func TestRateCache_Clear(t *testing.T) {
	c := NewRateCache()

	ts := time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)
	c.PutLatest("USD", &entity.AveragedRate{Currency: "USD", BuyRate: 27.05, SellRate: 27.35, Timestamp: ts})
	assert.Equal(t, 1, c.Size())

	c.Clear()
	assert.Equal(t, 0, c.Size())
}
