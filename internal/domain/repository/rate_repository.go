package repository

import (
	"context"
	"time"

	"github.com/dkostenko/uah-rate-aggregator/internal/domain/entity"
)

// RateRepository defines the interface for the averaged-rate time series.
// The series is append-only: records are never mutated or deleted.
type RateRepository interface {
	// Store appends an averaged rate to its currency's series
	Store(ctx context.Context, rate *entity.AveragedRate) error

	// FindLatest returns the most recent record for a currency,
	// or entity.ErrNotFound if none exists
	FindLatest(ctx context.Context, currency string) (*entity.AveragedRate, error)

	// FindLatestTwo returns up to two most recent records for a currency,
	// descending by timestamp
	FindLatestTwo(ctx context.Context, currency string) ([]entity.AveragedRate, error)

	// FindSince returns all records for a currency with timestamp >= since,
	// ascending by timestamp
	FindSince(ctx context.Context, currency string, since time.Time) ([]entity.AveragedRate, error)
}
