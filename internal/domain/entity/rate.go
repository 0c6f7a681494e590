package entity

import (
	"errors"
	"time"
)

// Quote is one provider's momentary view of a currency pair. Quotes are
// transient: they are produced fresh on each fetch and never persisted.
type Quote struct {
	Currency     string  `json:"ccy"`
	BaseCurrency string  `json:"base_ccy"`
	Buy          float64 `json:"buy"`
	Sell         float64 `json:"sale"`
	Provider     string  `json:"provider"`
}

// AveragedRate is the persisted unit: the average of two providers' quotes
// for one currency, stamped at write time. Records are immutable once stored.
type AveragedRate struct {
	Currency  string    `json:"currency"`
	BuyRate   float64   `json:"buyRate"`
	SellRate  float64   `json:"sellRate"`
	Timestamp time.Time `json:"timestamp"`
}

// Validate ensures the rate meets all requirements
func (r *AveragedRate) Validate() error {
	if r.Currency == "" {
		return errors.New("currency must not be empty")
	}

	if r.BuyRate < 0 || r.SellRate < 0 {
		return errors.New("rates must not be negative")
	}

	if r.Timestamp.IsZero() {
		return errors.New("timestamp must be set")
	}

	return nil
}
