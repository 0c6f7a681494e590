package service

import (
	"context"

	"github.com/dkostenko/uah-rate-aggregator/internal/domain/entity"
)

// RateSource defines the interface for a provider of currency quotes.
// Each FetchRates call is an independent attempt; implementations keep no
// state between calls.
type RateSource interface {
	// Name identifies the provider in logs and metrics
	Name() string

	// FetchRates retrieves the provider's current quotes
	FetchRates(ctx context.Context) ([]entity.Quote, error)
}
