// internal/infrastructure/handler/exchange_handler_test.go
package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dkostenko/uah-rate-aggregator/internal/application/service"
	"github.com/dkostenko/uah-rate-aggregator/internal/domain/entity"
	"github.com/dkostenko/uah-rate-aggregator/internal/mocks"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupRouter(repo *mocks.MockRateRepository) *mux.Router {
	analytics := service.NewAnalyticsService(repo, nil)
	h := NewExchangeHandler(analytics, repo, nil)

	router := mux.NewRouter()
	h.RegisterRoutes(router)
	return router
}

func doGet(t *testing.T, router *mux.Router, path string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest("GET", path, nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetLatestRate(t *testing.T) {
	repo := new(mocks.MockRateRepository)
	router := setupRouter(repo)

	stored := &entity.AveragedRate{
		Currency:  "USD",
		BuyRate:   27.05,
		SellRate:  27.35,
		Timestamp: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
	}
	repo.On("FindLatest", mock.Anything, "USD").Return(stored, nil).Once()

	rec := doGet(t, router, "/api/exchange/last?currency=USD")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got entity.AveragedRate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "USD", got.Currency)
	assert.Equal(t, 27.05, got.BuyRate)
	assert.Equal(t, 27.35, got.SellRate)

	repo.AssertExpectations(t)
}

func TestGetLatestRate_LowercaseCurrencyIsNormalized(t *testing.T) {
	repo := new(mocks.MockRateRepository)
	router := setupRouter(repo)

	repo.On("FindLatest", mock.Anything, "EUR").Return(&entity.AveragedRate{
		Currency:  "EUR",
		BuyRate:   30.0,
		SellRate:  30.5,
		Timestamp: time.Now(),
	}, nil).Once()

	rec := doGet(t, router, "/api/exchange/last?currency=eur")

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestGetLatestRate_NotFound(t *testing.T) {
	repo := new(mocks.MockRateRepository)
	router := setupRouter(repo)

	repo.On("FindLatest", mock.Anything, "USD").
		Return(nil, entity.ErrNotFound).Once()

	rec := doGet(t, router, "/api/exchange/last?currency=USD")

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Entity not found", resp.Error)
	assert.Equal(t, http.StatusNotFound, resp.Status)

	repo.AssertExpectations(t)
}

func TestGetLastHourChange(t *testing.T) {
	repo := new(mocks.MockRateRepository)
	router := setupRouter(repo)

	now := time.Now()
	repo.On("FindLatestTwo", mock.Anything, "USD").Return([]entity.AveragedRate{
		{Currency: "USD", BuyRate: 27.3, SellRate: 27.6, Timestamp: now},
		{Currency: "USD", BuyRate: 27.0, SellRate: 27.3, Timestamp: now.Add(-time.Hour)},
	}, nil).Once()

	rec := doGet(t, router, "/api/exchange/dynamics/hour?currency=USD")

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp LastHourChangeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "USD", resp.Currency)
	assert.Equal(t, 1.11, resp.ChangePercent)

	repo.AssertExpectations(t)
}

func TestGetLastHourChange_InsufficientData(t *testing.T) {
	repo := new(mocks.MockRateRepository)
	router := setupRouter(repo)

	repo.On("FindLatestTwo", mock.Anything, "EUR").Return([]entity.AveragedRate{
		{Currency: "EUR", BuyRate: 30.0, SellRate: 30.5, Timestamp: time.Now()},
	}, nil).Once()

	rec := doGet(t, router, "/api/exchange/dynamics/hour?currency=EUR")

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Insufficient data", resp.Error)

	repo.AssertExpectations(t)
}

func TestGetHourlyDynamics(t *testing.T) {
	repo := new(mocks.MockRateRepository)
	router := setupRouter(repo)

	base := time.Now().Truncate(time.Hour)
	repo.On("FindSince", mock.Anything, "USD", mock.AnythingOfType("time.Time")).
		Return([]entity.AveragedRate{
			{Currency: "USD", BuyRate: 27.0, SellRate: 27.3, Timestamp: base},
			{Currency: "USD", BuyRate: 27.3, SellRate: 27.6, Timestamp: base.Add(time.Hour)},
			{Currency: "USD", BuyRate: 27.5, SellRate: 27.8, Timestamp: base.Add(2 * time.Hour)},
		}, nil).Once()

	rec := doGet(t, router, "/api/exchange/dynamics/day?currency=USD")

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp []service.RateChange
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, 1.11, resp[0].ChangePercent)
	assert.Equal(t, 0.73, resp[1].ChangePercent)

	repo.AssertExpectations(t)
}

func TestGetHourlyDynamics_InsufficientData(t *testing.T) {
	repo := new(mocks.MockRateRepository)
	router := setupRouter(repo)

	repo.On("FindSince", mock.Anything, "USD", mock.AnythingOfType("time.Time")).
		Return([]entity.AveragedRate{}, nil).Once()

	rec := doGet(t, router, "/api/exchange/dynamics/day?currency=USD")

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Insufficient data", resp.Error)

	repo.AssertExpectations(t)
}

func TestGetHourlyDynamics_StorageError(t *testing.T) {
	repo := new(mocks.MockRateRepository)
	router := setupRouter(repo)

	repo.On("FindSince", mock.Anything, "USD", mock.AnythingOfType("time.Time")).
		Return(nil, entity.ErrStorage).Once()

	rec := doGet(t, router, "/api/exchange/dynamics/day?currency=USD")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Database error", resp.Error)

	repo.AssertExpectations(t)
}

func TestInvalidCurrencyRejected(t *testing.T) {
	repo := new(mocks.MockRateRepository)
	router := setupRouter(repo)

	paths := []string{
		"/api/exchange/last?currency=GBP",
		"/api/exchange/last",
		"/api/exchange/dynamics/hour?currency=UAH",
		"/api/exchange/dynamics/day?currency=usd2",
	}

	for _, path := range paths {
		rec := doGet(t, router, path)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "path %s", path)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Validation parameters error", resp.Error, "path %s", path)
	}

	// The repository is never touched for rejected requests
	repo.AssertNotCalled(t, "FindLatest", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "FindLatestTwo", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "FindSince", mock.Anything, mock.Anything, mock.Anything)
}
