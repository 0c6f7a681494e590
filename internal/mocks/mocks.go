// internal/mocks/mocks.go
package mocks

import (
	"context"
	"time"

	"github.com/dkostenko/uah-rate-aggregator/internal/domain/entity"
	"github.com/stretchr/testify/mock"
)

// MockRateRepository mocks the RateRepository interface
type MockRateRepository struct {
	mock.Mock
}

func (m *MockRateRepository) Store(ctx context.Context, rate *entity.AveragedRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockRateRepository) FindLatest(ctx context.Context, currency string) (*entity.AveragedRate, error) {
	args := m.Called(ctx, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AveragedRate), args.Error(1)
}

func (m *MockRateRepository) FindLatestTwo(ctx context.Context, currency string) ([]entity.AveragedRate, error) {
	args := m.Called(ctx, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.AveragedRate), args.Error(1)
}

func (m *MockRateRepository) FindSince(ctx context.Context, currency string, since time.Time) ([]entity.AveragedRate, error) {
	args := m.Called(ctx, currency, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.AveragedRate), args.Error(1)
}

// MockRateSource mocks the RateSource interface
type MockRateSource struct {
	mock.Mock
}

func (m *MockRateSource) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockRateSource) FetchRates(ctx context.Context) ([]entity.Quote, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Quote), args.Error(1)
}
