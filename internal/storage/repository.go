package storage

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

//go:embed schema.sql
var schemaSQL string

const (
	upsertPriceSampleSQL = `INSERT INTO fuel_price_samples (
        location,
        price_date,
        price,
        fetched_at
    ) VALUES (
        $1,$2,$3::numeric,$4
    )
    ON CONFLICT (location, price_date) DO UPDATE
    SET
        price      = EXCLUDED.price,
        fetched_at = EXCLUDED.fetched_at;`

	listSamplesBetweenSQL = `SELECT
        location,
        price_date,
        price::text,
        fetched_at
    FROM fuel_price_samples
    WHERE location = $1
      AND price_date >= $2
      AND price_date < $3
    ORDER BY price_date;`

	listRecentSamplesSQL = `SELECT
        location,
        price_date,
        price::text,
        fetched_at
    FROM fuel_price_samples
    WHERE location = $1
    ORDER BY price_date DESC
    LIMIT $2;`

	countSamplesSQL = `SELECT COUNT(*) FROM fuel_price_samples WHERE location = $1;`

	tryAdvisoryLockSQL = `SELECT pg_try_advisory_lock($1);`
	advisoryUnlockSQL  = `SELECT pg_advisory_unlock($1);`
)

// PriceArchive defines operations for price sample persistence.
type PriceArchive interface {
	RecordSamples(ctx context.Context, samples []PriceSample) (int, error)
	ListBetween(ctx context.Context, location string, from, to time.Time) ([]PriceSample, error)
	ListRecent(ctx context.Context, location string, limit int) ([]PriceSample, error)
	CountSamples(ctx context.Context, location string) (int64, error)
}

// AdvisoryLocker exposes advisory lock helpers.
type AdvisoryLocker interface {
	TryAdvisoryLock(ctx context.Context, key int64) (unlock func(), acquired bool, err error)
}

var (
	_ PriceArchive   = (*Store)(nil)
	_ AdvisoryLocker = (*Store)(nil)
)

// Store gives access to the price archive.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// EnsureSchema creates the archive table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// TryAdvisoryLock attempts to acquire a postgres advisory lock and returns a release func.
func (s *Store) TryAdvisoryLock(ctx context.Context, key int64) (func(), bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, false, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, tryAdvisoryLockSQL, key).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	unlock := func() {
		ctxUnlock, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		// the session lock also drops when the connection closes
		_, _ = conn.Exec(ctxUnlock, advisoryUnlockSQL, key)
		conn.Release()
	}
	return unlock, true, nil
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// RecordSamples upserts samples in one batch keyed by (location, date).
func (s *Store) RecordSamples(ctx context.Context, samples []PriceSample) (int, error) {
	if len(samples) == 0 {
		return 0, nil
	}
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}

	batch := &pgx.Batch{}
	for _, sample := range samples {
		if err := validateSample(sample); err != nil {
			return 0, err
		}
		fetchedAt := sample.FetchedAt
		if fetchedAt.IsZero() {
			fetchedAt = time.Now().UTC()
		}
		batch.Queue(upsertPriceSampleSQL,
			normalizeLocation(sample.Location),
			sample.Date.UTC().Truncate(24*time.Hour),
			sample.Price.String(),
			fetchedAt,
		)
	}

	results := pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := range samples {
		if _, err := results.Exec(); err != nil {
			return i, fmt.Errorf("upsert price sample %d: %w", i, err)
		}
	}
	return len(samples), nil
}

// ListBetween lists a location's samples with from <= date < to.
func (s *Store) ListBetween(ctx context.Context, location string, from, to time.Time) ([]PriceSample, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listSamplesBetweenSQL, normalizeLocation(location), from, to)
	if queryErr != nil {
		return nil, fmt.Errorf("list samples between: %w", queryErr)
	}
	defer rows.Close()

	samples := make([]PriceSample, 0)
	for rows.Next() {
		sample, scanErr := scanPriceSample(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		samples = append(samples, sample)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return samples, nil
}

// ListRecent returns the latest samples for a location, newest first.
func (s *Store) ListRecent(ctx context.Context, location string, limit int) ([]PriceSample, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	rows, queryErr := pool.Query(ctx, listRecentSamplesSQL, normalizeLocation(location), limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent samples: %w", queryErr)
	}
	defer rows.Close()

	samples := make([]PriceSample, 0, limit)
	for rows.Next() {
		sample, scanErr := scanPriceSample(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		samples = append(samples, sample)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return samples, nil
}

// CountSamples returns the total rows archived for a location.
func (s *Store) CountSamples(ctx context.Context, location string) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}

	var count int64
	if err := pool.QueryRow(ctx, countSamplesSQL, normalizeLocation(location)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count samples: %w", err)
	}
	return count, nil
}

func scanPriceSample(rows pgx.Rows) (PriceSample, error) {
	var (
		sample   PriceSample
		priceStr string
	)
	if err := rows.Scan(&sample.Location, &sample.Date, &priceStr, &sample.FetchedAt); err != nil {
		return PriceSample{}, err
	}

	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return PriceSample{}, fmt.Errorf("parse price: %w", err)
	}
	sample.Price = price
	return sample, nil
}

func validateSample(sample PriceSample) error {
	if normalizeLocation(sample.Location) == "" {
		return fmt.Errorf("price sample location is required")
	}
	if sample.Date.IsZero() {
		return fmt.Errorf("price sample date is required")
	}
	if !sample.Price.IsPositive() {
		return fmt.Errorf("price sample for %s must be positive", sample.Date.Format("2006-01-02"))
	}
	return nil
}

func normalizeLocation(location string) string {
	return strings.ToLower(strings.TrimSpace(location))
}
