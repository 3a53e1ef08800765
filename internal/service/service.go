package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"fuel-receipts/internal/alerting"
	"fuel-receipts/internal/logging"
	"fuel-receipts/internal/metrics"
	"fuel-receipts/internal/pricing"
	"fuel-receipts/internal/receipts"
	"fuel-receipts/internal/storage"
)

const sourceLive = "live"

// SeriesBuilder resolves the price series for a location and financial year.
type SeriesBuilder interface {
	Build(ctx context.Context, req pricing.BuildRequest) pricing.Resolution
}

var _ SeriesBuilder = (*pricing.Builder)(nil)

// Options tune request handling.
type Options struct {
	Defaults        Defaults
	MaxAttempts     int
	Catalog         []receipts.Station
	SyncConcurrency int
	LockKey         int64
	Notifier        alerting.Notifier
}

// YearlyReport is the outcome of one yearly generation.
type YearlyReport struct {
	FinancialYearEnd   int
	FinancialYearStart int
	MonthlyCap         decimal.Decimal
	Receipts           []receipts.Receipt

	Year        receipts.Year
	Location    string
	PriceSource string
}

// MarshalJSON renders the report in the shape the receipt printer expects.
func (r YearlyReport) MarshalJSON() ([]byte, error) {
	out := r.Receipts
	if out == nil {
		out = []receipts.Receipt{}
	}
	return json.Marshal(struct {
		FinancialYearEnd   int                `json:"financial_year_end"`
		FinancialYearStart int                `json:"financial_year_start"`
		MonthlyCap         json.Number        `json:"monthly_cap"`
		Receipts           []receipts.Receipt `json:"receipts"`
	}{
		FinancialYearEnd:   r.FinancialYearEnd,
		FinancialYearStart: r.FinancialYearStart,
		MonthlyCap:         json.Number(r.MonthlyCap.String()),
		Receipts:           out,
	})
}

// Service orchestrates price resolution, receipt synthesis and archiving.
type Service struct {
	prices  SeriesBuilder
	archive storage.PriceArchive
	metrics *metrics.Metrics
	opts    Options
	logger  zerolog.Logger
	now     func() time.Time
}

// New constructs the generation service. archive and m may be nil.
func New(prices SeriesBuilder, archive storage.PriceArchive, m *metrics.Metrics, opts Options, logger zerolog.Logger) *Service {
	opts.Defaults = opts.Defaults.withFallbacks()
	if len(opts.Catalog) == 0 {
		opts.Catalog = receipts.DefaultCatalog()
	}
	if opts.SyncConcurrency <= 0 {
		opts.SyncConcurrency = 4
	}
	return &Service{
		prices:  prices,
		archive: archive,
		metrics: m,
		opts:    opts,
		logger:  logger.With().Str("component", "service").Logger(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Defaults exposes the effective request defaults.
func (s *Service) Defaults() Defaults { return s.opts.Defaults }

// GenerateYearly validates req, resolves prices and synthesizes a financial
// year of receipts. Only validation and synthesis errors are returned;
// provider problems fall back to the constant rate.
func (s *Service) GenerateYearly(ctx context.Context, req GenerateRequest) (*YearlyReport, error) {
	started := time.Now()
	logger := logging.FromContext(ctx, s.logger)

	params, err := req.Normalize(s.opts.Defaults, s.now())
	if err != nil {
		s.metrics.ObserveGeneration(metrics.ResultRejected, time.Since(started), 0)
		return nil, err
	}
	params.Allocation.MaxAttempts = s.opts.MaxAttempts

	res := s.prices.Build(ctx, pricing.BuildRequest{
		Location: params.Location,
		APIKey:   params.APIKey,
		Year:     params.Year,
	})
	source := priceSource(res)
	s.metrics.ObservePriceSource(source)
	if !res.Fallback() {
		s.archiveSeries(ctx, params.Location, res.Series)
	}

	year, err := receipts.Synthesize(params.Year, res.Series, params.Allocation, s.opts.Catalog, params.Identity, newSource(params.Seed))
	if err != nil {
		s.metrics.ObserveGeneration(metrics.ResultError, time.Since(started), 0)
		return nil, fmt.Errorf("synthesize receipts: %w", err)
	}

	report := &YearlyReport{
		FinancialYearEnd:   year.EndYear,
		FinancialYearStart: year.StartYear(),
		MonthlyCap:         params.Allocation.Cap,
		Receipts:           year.Receipts(),
		Year:               year,
		Location:           params.Location,
		PriceSource:        source,
	}

	s.metrics.ObserveGeneration(metrics.ResultSuccess, time.Since(started), len(report.Receipts))
	logger.Info().
		Int("financial_year_end", report.FinancialYearEnd).
		Str("location", params.Location).
		Str("price_source", source).
		Int("receipts", len(report.Receipts)).
		Dur("elapsed", time.Since(started)).
		Msg("yearly receipts generated")
	return report, nil
}

// archiveSeries stores live samples. Failures are logged only.
func (s *Service) archiveSeries(ctx context.Context, location string, series *pricing.Series) {
	if s.archive == nil || series == nil {
		return
	}
	samples := toArchive(location, series, s.now())
	n, err := s.archive.RecordSamples(ctx, samples)
	if errors.Is(err, storage.ErrNotConfigured) {
		return
	}
	s.metrics.ObserveArchiveWrite(err)
	if err != nil {
		logger := logging.FromContext(ctx, s.logger)
		logger.Warn().Err(err).Str("location", location).Msg("failed to archive price samples")
		return
	}
	s.logger.Debug().Str("location", location).Int("samples", n).Msg("price samples archived")
}

func toArchive(location string, series *pricing.Series, fetchedAt time.Time) []storage.PriceSample {
	samples := series.Samples()
	out := make([]storage.PriceSample, 0, len(samples))
	for _, sample := range samples {
		out = append(out, storage.PriceSample{
			Location:  location,
			Date:      sample.Date,
			Price:     sample.Price,
			FetchedAt: fetchedAt,
		})
	}
	return out
}

func priceSource(res pricing.Resolution) string {
	if res.Failure == nil {
		return sourceLive
	}
	return "fallback_" + string(res.Failure.Reason)
}

func newSource(seed *uint64) *rand.Rand {
	if seed != nil {
		return receipts.NewSource(*seed)
	}
	return receipts.NewSource(rand.Uint64())
}
