package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/dkostenko/uah-rate-aggregator/internal/domain/entity"
	"github.com/google/uuid"
)

// BadgerRateRepository implements the rate repository interface using BadgerDB.
//
// Keys are "rate:<CCY>:<zero-padded unixnano>:<uuid>", so lexicographic key
// order within a currency prefix equals timestamp order and range queries are
// plain prefix iterations. The uuid suffix keeps keys unique if two records
// ever carry the same timestamp.
type BadgerRateRepository struct {
	db *badger.DB
}

// NewBadgerRateRepository creates a new BadgerDB rate repository
func NewBadgerRateRepository(db *badger.DB) *BadgerRateRepository {
	return &BadgerRateRepository{db: db}
}

func currencyPrefix(currency string) []byte {
	return []byte("rate:" + strings.ToUpper(currency) + ":")
}

func rateKey(rate *entity.AveragedRate) []byte {
	return []byte(fmt.Sprintf("rate:%s:%020d:%s",
		strings.ToUpper(rate.Currency), rate.Timestamp.UnixNano(), uuid.New().String()))
}

// Store appends an averaged rate to its currency's series
func (r *BadgerRateRepository) Store(ctx context.Context, rate *entity.AveragedRate) error {
	data, err := json.Marshal(rate)
	if err != nil {
		return fmt.Errorf("failed to marshal rate: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(rateKey(rate), data)
	})
	if err != nil {
		return fmt.Errorf("failed to store rate: %s: %w", err, entity.ErrStorage)
	}

	return nil
}

// FindLatest returns the most recent record for a currency
func (r *BadgerRateRepository) FindLatest(ctx context.Context, currency string) (*entity.AveragedRate, error) {
	rates, err := r.findNewest(currency, 1)
	if err != nil {
		return nil, err
	}

	if len(rates) == 0 {
		return nil, fmt.Errorf("records for currency %s not found: %w",
			strings.ToUpper(currency), entity.ErrNotFound)
	}

	return &rates[0], nil
}

// FindLatestTwo returns up to two most recent records, descending by timestamp
func (r *BadgerRateRepository) FindLatestTwo(ctx context.Context, currency string) ([]entity.AveragedRate, error) {
	return r.findNewest(currency, 2)
}

// findNewest walks the currency's series backwards collecting up to limit records
func (r *BadgerRateRepository) findNewest(currency string, limit int) ([]entity.AveragedRate, error) {
	prefix := currencyPrefix(currency)

	// Seek target just past the last possible key of the prefix
	seek := make([]byte, len(prefix), len(prefix)+1)
	copy(seek, prefix)
	seek = append(seek, 0xFF)

	rates := make([]entity.AveragedRate, 0, limit)

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(seek); it.ValidForPrefix(prefix) && len(rates) < limit; it.Next() {
			var rate entity.AveragedRate
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rate)
			})
			if err != nil {
				return err
			}
			rates = append(rates, rate)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read rates: %s: %w", err, entity.ErrStorage)
	}

	return rates, nil
}

// FindSince returns all records with timestamp >= since, ascending by timestamp
func (r *BadgerRateRepository) FindSince(ctx context.Context, currency string, since time.Time) ([]entity.AveragedRate, error) {
	prefix := currencyPrefix(currency)
	seek := []byte(fmt.Sprintf("rate:%s:%020d", strings.ToUpper(currency), since.UnixNano()))

	var rates []entity.AveragedRate

	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			var rate entity.AveragedRate
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rate)
			})
			if err != nil {
				return err
			}
			rates = append(rates, rate)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read rates: %s: %w", err, entity.ErrStorage)
	}

	return rates, nil
}
