package cache

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dkostenko/uah-rate-aggregator/internal/domain/entity"
)

// RateCache provides thread-safe read caches for the three rate queries:
// latest record, latest two records, and records since a cutoff. Each bucket
// is keyed independently per currency; since-entries carry the cutoff in the
// key so different cutoffs never collide.
//
// There is no TTL. The only invalidation trigger is Invalidate, called after
// a successful write for that currency.
type RateCache struct {
	mu        sync.RWMutex
	latest    map[string]*entity.AveragedRate
	latestTwo map[string][]entity.AveragedRate
	since     map[string][]entity.AveragedRate
}

// NewRateCache creates an empty rate cache
func NewRateCache() *RateCache {
	return &RateCache{
		latest:    make(map[string]*entity.AveragedRate),
		latestTwo: make(map[string][]entity.AveragedRate),
		since:     make(map[string][]entity.AveragedRate),
	}
}

func sinceKey(currency string, cutoff time.Time) string {
	return currency + "|" + strconv.FormatInt(cutoff.UnixNano(), 10)
}

// GetLatest returns the cached latest record for a currency, if present
func (c *RateCache) GetLatest(currency string) (*entity.AveragedRate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rate, ok := c.latest[currency]
	return rate, ok
}

// PutLatest stores the latest record for a currency
func (c *RateCache) PutLatest(currency string, rate *entity.AveragedRate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.latest[currency] = rate
}

// GetLatestTwo returns the cached two most recent records, if present
func (c *RateCache) GetLatestTwo(currency string) ([]entity.AveragedRate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rates, ok := c.latestTwo[currency]
	return rates, ok
}

// PutLatestTwo stores the two most recent records for a currency
func (c *RateCache) PutLatestTwo(currency string, rates []entity.AveragedRate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.latestTwo[currency] = rates
}

// GetSince returns the cached since-cutoff series, if present
func (c *RateCache) GetSince(currency string, cutoff time.Time) ([]entity.AveragedRate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rates, ok := c.since[sinceKey(currency, cutoff)]
	return rates, ok
}

// PutSince stores a since-cutoff series for a currency
func (c *RateCache) PutSince(currency string, cutoff time.Time, rates []entity.AveragedRate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.since[sinceKey(currency, cutoff)] = rates
}

// Invalidate empties all three buckets for one currency. Entries for other
// currencies are untouched.
func (c *RateCache) Invalidate(currency string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.latest, currency)
	delete(c.latestTwo, currency)

	prefix := currency + "|"
	for key := range c.since {
		if strings.HasPrefix(key, prefix) {
			delete(c.since, key)
		}
	}
}

// Clear empties every bucket for every currency
func (c *RateCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.latest = make(map[string]*entity.AveragedRate)
	c.latestTwo = make(map[string][]entity.AveragedRate)
	c.since = make(map[string][]entity.AveragedRate)
}

// Size returns the total number of cached entries across all buckets
func (c *RateCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.latest) + len(c.latestTwo) + len(c.since)
}
