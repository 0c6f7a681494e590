// Package handler internal/infrastructure/handler/exchange_handler.go
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dkostenko/uah-rate-aggregator/internal/application/service"
	"github.com/dkostenko/uah-rate-aggregator/internal/domain/entity"
	"github.com/dkostenko/uah-rate-aggregator/internal/domain/repository"
	"github.com/dkostenko/uah-rate-aggregator/internal/infrastructure/logger"
	"github.com/dkostenko/uah-rate-aggregator/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// supportedCurrencies is the closed set the API accepts
var supportedCurrencies = map[string]bool{
	"USD": true,
	"EUR": true,
}

// ExchangeHandler handles HTTP requests for exchange rate information
type ExchangeHandler struct {
	analytics *service.AnalyticsService
	repo      repository.RateRepository
	logger    logger.Logger
}

// NewExchangeHandler creates a new exchange handler
func NewExchangeHandler(analytics *service.AnalyticsService, repo repository.RateRepository, log logger.Logger) *ExchangeHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &ExchangeHandler{
		analytics: analytics,
		repo:      repo,
		logger:    log,
	}
}

// GetHourlyDynamics returns today's hourly percent changes for a currency
func (h *ExchangeHandler) GetHourlyDynamics(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	currency, ok := h.currencyParam(w, r, requestID)
	if !ok {
		return
	}

	h.logger.Info("Handling hourly dynamics request", map[string]interface{}{
		"request_id": requestID,
		"currency":   currency,
	})

	dynamics, err := h.analytics.GetHourlyDynamics(r.Context(), currency)
	if err != nil {
		h.handleServiceError(w, err, currency, requestID)
		return
	}

	writeJSON(w, http.StatusOK, dynamics)
}

// GetLastHourChange returns the percent change over the last hour for a currency
func (h *ExchangeHandler) GetLastHourChange(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	currency, ok := h.currencyParam(w, r, requestID)
	if !ok {
		return
	}

	h.logger.Info("Handling last hour change request", map[string]interface{}{
		"request_id": requestID,
		"currency":   currency,
	})

	change, err := h.analytics.GetLastHourChange(r.Context(), currency)
	if err != nil {
		h.handleServiceError(w, err, currency, requestID)
		return
	}

	writeJSON(w, http.StatusOK, LastHourChangeResponse{
		Currency:      currency,
		ChangePercent: change,
	})
}

// GetLatestRate returns the most recent averaged rate for a currency
func (h *ExchangeHandler) GetLatestRate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	currency, ok := h.currencyParam(w, r, requestID)
	if !ok {
		return
	}

	h.logger.Info("Handling latest rate request", map[string]interface{}{
		"request_id": requestID,
		"currency":   currency,
	})

	rate, err := h.repo.FindLatest(r.Context(), currency)
	if err != nil {
		h.handleServiceError(w, err, currency, requestID)
		return
	}

	writeJSON(w, http.StatusOK, rate)
}

// RegisterRoutes registers the exchange handler routes
func (h *ExchangeHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/exchange/dynamics/day", h.GetHourlyDynamics).Methods("GET")
	router.HandleFunc("/api/exchange/dynamics/hour", h.GetLastHourChange).Methods("GET")
	router.HandleFunc("/api/exchange/last", h.GetLatestRate).Methods("GET")

	h.logger.Info("Exchange routes registered", map[string]interface{}{
		"routes": []string{
			"GET /api/exchange/dynamics/day",
			"GET /api/exchange/dynamics/hour",
			"GET /api/exchange/last",
		},
	})
}

// currencyParam validates the currency query parameter; on failure it writes
// the error response and reports ok=false.
func (h *ExchangeHandler) currencyParam(w http.ResponseWriter, r *http.Request, requestID string) (string, bool) {
	currency := strings.ToUpper(r.URL.Query().Get("currency"))

	if !supportedCurrencies[currency] {
		h.logger.Warn("Invalid currency parameter", map[string]interface{}{
			"request_id": requestID,
			"currency":   currency,
		})
		h.sendError(w, "Validation parameters error",
			"Currency must be 'USD' or 'EUR'", http.StatusBadRequest, requestID)
		return "", false
	}

	return currency, true
}

// handleServiceError maps domain errors to HTTP responses
func (h *ExchangeHandler) handleServiceError(w http.ResponseWriter, err error, currency, requestID string) {
	switch {
	case errors.Is(err, entity.ErrInsufficientData):
		h.logger.Warn("Insufficient data", map[string]interface{}{
			"request_id": requestID,
			"currency":   currency,
			"error":      err.Error(),
		})
		h.sendError(w, "Insufficient data",
			"Not enough records exist to compute the requested dynamics",
			http.StatusBadRequest, requestID)

	case errors.Is(err, entity.ErrNotFound):
		h.logger.Warn("Records not found", map[string]interface{}{
			"request_id": requestID,
			"currency":   currency,
			"error":      err.Error(),
		})
		h.sendError(w, "Entity not found",
			"Records for currency "+currency+" not found",
			http.StatusNotFound, requestID)

	case errors.Is(err, entity.ErrStorage):
		h.logger.Error("Storage error", map[string]interface{}{
			"request_id": requestID,
			"currency":   currency,
			"error":      err.Error(),
		})
		h.sendError(w, "Database error",
			"The rate store could not be read. Please try again later.",
			http.StatusInternalServerError, requestID)

	default:
		h.logger.Error("Unexpected error", map[string]interface{}{
			"request_id": requestID,
			"currency":   currency,
			"error":      err.Error(),
		})
		h.sendError(w, "Internal server error",
			"An unexpected error occurred. Please try again later.",
			http.StatusInternalServerError, requestID)
	}
}

// sendError sends a standardized error response
func (h *ExchangeHandler) sendError(w http.ResponseWriter, message, description string, statusCode int, requestID string) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:       message,
		Status:      statusCode,
		Description: description,
		RequestID:   requestID,
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}
