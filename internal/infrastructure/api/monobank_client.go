// Package api internal/infrastructure/api/monobank_client.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dkostenko/uah-rate-aggregator/internal/domain/entity"
	"github.com/dkostenko/uah-rate-aggregator/internal/infrastructure/logger"
	"github.com/sethvargo/go-retry"
)

const (
	defaultMonoBankURL = "https://api.monobank.ua/bank/currency"

	// ProviderMonoBank identifies the MonoBank source in quotes and logs
	ProviderMonoBank = "monobank"

	defaultMaxRetries uint64 = 3
	defaultRetryWait         = 5 * time.Second
)

// ISO 4217 numeric codes used by the MonoBank response
const (
	isoCodeUSD = 840
	isoCodeEUR = 978
	isoCodeUAH = 980
)

// monoBankRateDTO mirrors one entry of the MonoBank currency response
type monoBankRateDTO struct {
	CurrencyCodeA int     `json:"currencyCodeA"`
	CurrencyCodeB int     `json:"currencyCodeB"`
	RateBuy       float64 `json:"rateBuy"`
	RateSell      float64 `json:"rateSell"`
}

// statusError carries a non-200 HTTP status through the retry loop
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("monobank returned status %d", e.code)
}

// MonoBankClient fetches currency quotes from the MonoBank public API.
//
// A 429 response is retried up to maxRetries additional times with a constant
// backoff. When the budget is exhausted, or any other non-200 status is
// returned, the fetch degrades to an empty result instead of an error (soft
// failure). Transport and decode failures still propagate as errors.
type MonoBankClient struct {
	baseURL    string
	httpClient *http.Client
	maxRetries uint64
	retryWait  time.Duration
	logger     logger.Logger
}

// NewMonoBankClient creates a new MonoBank API client
func NewMonoBankClient(baseURL string, httpClient *http.Client, log logger.Logger) *MonoBankClient {
	if baseURL == "" {
		baseURL = defaultMonoBankURL
	}

	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 10 * time.Second,
		}
	}

	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &MonoBankClient{
		baseURL:    baseURL,
		httpClient: httpClient,
		maxRetries: defaultMaxRetries,
		retryWait:  defaultRetryWait,
		logger:     log,
	}
}

// SetRetryPolicy overrides the 429 retry budget and backoff delay
func (c *MonoBankClient) SetRetryPolicy(maxRetries uint64, wait time.Duration) {
	c.maxRetries = maxRetries
	if wait > 0 {
		c.retryWait = wait
	}
}

// Name identifies the provider
func (c *MonoBankClient) Name() string {
	return ProviderMonoBank
}

// FetchRates retrieves the current MonoBank quotes, filtered to UAH-based
// USD and EUR entries.
func (c *MonoBankClient) FetchRates(ctx context.Context) ([]entity.Quote, error) {
	c.logger.Debug("Fetching rates from MonoBank API", map[string]interface{}{
		"url": c.baseURL,
	})

	backoff, err := retry.NewConstant(c.retryWait)
	if err != nil {
		return nil, fmt.Errorf("invalid retry backoff: %w", err)
	}
	backoff = retry.WithMaxRetries(c.maxRetries, backoff)

	var raw []monoBankRateDTO
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		rates, fetchErr := c.fetchOnce(ctx)
		if fetchErr != nil {
			var se *statusError
			if errors.As(fetchErr, &se) && se.code == http.StatusTooManyRequests {
				c.logger.Warn("429 Too Many Requests from MonoBank API, retrying", map[string]interface{}{
					"wait": c.retryWait.String(),
				})
				return retry.RetryableError(fetchErr)
			}
			return fetchErr
		}

		raw = rates
		return nil
	})

	if err != nil {
		var se *statusError
		if errors.As(err, &se) {
			// HTTP-level failure degrades to an empty result after the
			// retry budget, mirroring the soft-failure contract.
			c.logger.Warn("MonoBank fetch degraded to empty result", map[string]interface{}{
				"status": se.code,
			})
			return []entity.Quote{}, nil
		}
		return nil, fmt.Errorf("failed to fetch monobank rates: %w", err)
	}

	quotes := make([]entity.Quote, 0, 2)
	for _, r := range raw {
		if r.CurrencyCodeB != isoCodeUAH {
			continue
		}

		ccy := mapCurrencyCode(r.CurrencyCodeA)
		if ccy == "" {
			continue
		}

		quotes = append(quotes, entity.Quote{
			Currency:     ccy,
			BaseCurrency: "UAH",
			Buy:          r.RateBuy,
			Sell:         r.RateSell,
			Provider:     ProviderMonoBank,
		})
	}

	c.logger.Info("Fetched MonoBank rates", map[string]interface{}{
		"count": len(quotes),
	})

	return quotes, nil
}

// fetchOnce performs a single request attempt
func (c *MonoBankClient) fetchOnce(ctx context.Context) ([]monoBankRateDTO, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Add("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("Error closing response body", map[string]interface{}{
				"error": closeErr.Error(),
			})
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode}
	}

	var rates []monoBankRateDTO
	if err := json.Unmarshal(body, &rates); err != nil {
		return nil, fmt.Errorf("failed to decode monobank response: %w", err)
	}

	return rates, nil
}

// mapCurrencyCode maps a numeric ISO code to one of the supported currencies
func mapCurrencyCode(code int) string {
	switch code {
	case isoCodeUSD:
		return "USD"
	case isoCodeEUR:
		return "EUR"
	default:
		return ""
	}
}
