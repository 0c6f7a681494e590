// Package api internal/infrastructure/api/privatbank_client.go
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dkostenko/uah-rate-aggregator/internal/domain/entity"
	"github.com/dkostenko/uah-rate-aggregator/internal/infrastructure/logger"
)

const (
	defaultPrivatBankURL = "https://api.privatbank.ua/p24api/pubinfo?exchange&coursid=5"

	// ProviderPrivatBank identifies the PrivatBank source in quotes and logs
	ProviderPrivatBank = "privatbank"
)

// rateValue decodes a rate that the upstream may send either as a JSON
// number or as a quoted decimal string ("27.45000").
type rateValue float64

func (v *rateValue) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*v = 0
		return nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid rate value %q: %w", s, err)
	}

	*v = rateValue(f)
	return nil
}

// privatBankRateDTO mirrors one entry of the PrivatBank public rates response
type privatBankRateDTO struct {
	Ccy     string    `json:"ccy"`
	BaseCcy string    `json:"base_ccy"`
	Buy     rateValue `json:"buy"`
	Sale    rateValue `json:"sale"`
}

// PrivatBankClient fetches currency quotes from the PrivatBank public API.
// A failed or empty response propagates as an error; there is no retry.
type PrivatBankClient struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger
}

// NewPrivatBankClient creates a new PrivatBank API client
func NewPrivatBankClient(baseURL string, httpClient *http.Client, log logger.Logger) *PrivatBankClient {
	if baseURL == "" {
		baseURL = defaultPrivatBankURL
	}

	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 10 * time.Second,
		}
	}

	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &PrivatBankClient{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     log,
	}
}

// Name identifies the provider
func (c *PrivatBankClient) Name() string {
	return ProviderPrivatBank
}

// FetchRates retrieves the current PrivatBank quotes
func (c *PrivatBankClient) FetchRates(ctx context.Context) ([]entity.Quote, error) {
	c.logger.Debug("Fetching rates from PrivatBank API", map[string]interface{}{
		"url": c.baseURL,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Add("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", entity.ErrExternalService)
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
		return nil, fmt.Errorf("privatbank returned status %d: %w", resp.StatusCode, entity.ErrExternalService)
	}

	var raw []privatBankRateDTO
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode privatbank response: %w", err)
	}

	quotes := make([]entity.Quote, 0, len(raw))
	for _, r := range raw {
		quotes = append(quotes, entity.Quote{
			Currency:     r.Ccy,
			BaseCurrency: r.BaseCcy,
			Buy:          float64(r.Buy),
			Sell:         float64(r.Sale),
			Provider:     ProviderPrivatBank,
		})
	}

	c.logger.Info("Fetched PrivatBank rates", map[string]interface{}{
		"count": len(quotes),
	})

	return quotes, nil
}
