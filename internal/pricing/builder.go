package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"fuel-receipts/internal/fetcher"
	"fuel-receipts/internal/fiscal"
)

const (
	dateLayout = "2006-01-02"

	// DefaultLookbackDays bounds how many daily records are requested.
	DefaultLookbackDays = 400
	// DefaultTimeout bounds the single provider call.
	DefaultTimeout = 15 * time.Second
)

// DefaultFallbackRate is used when no live price survives filtering.
var DefaultFallbackRate = decimal.RequireFromString("94.72")

// FailureReason classifies why live prices could not be used.
type FailureReason string

const (
	FailureTransport FailureReason = "transport"
	FailureStatus    FailureReason = "status"
	FailurePayload   FailureReason = "payload"
	FailureEmpty     FailureReason = "empty"
)

// ProviderFailure explains a fallback to the constant series.
type ProviderFailure struct {
	Reason FailureReason
	Err    error
}

func (f *ProviderFailure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("price provider %s failure: %v", f.Reason, f.Err)
	}
	return fmt.Sprintf("price provider %s failure", f.Reason)
}

func (f *ProviderFailure) Unwrap() error { return f.Err }

// BuilderOptions tune provider access and the fallback series.
type BuilderOptions struct {
	LookbackDays int
	Timeout      time.Duration
	FallbackRate decimal.Decimal
}

// BuildRequest identifies whose prices to fetch and for which financial year.
type BuildRequest struct {
	Location string
	APIKey   string
	Year     int
}

// Resolution is the outcome of one build. Series is always usable; a
// non-nil Failure means it is the single-sample fallback.
type Resolution struct {
	Series   *Series
	Accepted int
	Skipped  int
	Failure  *ProviderFailure
}

// Fallback reports whether live prices were discarded.
func (r Resolution) Fallback() bool { return r.Failure != nil }

// Builder turns provider records into a usable price series.
type Builder struct {
	fetcher fetcher.HistoricalPriceFetcher
	opts    BuilderOptions
	logger  zerolog.Logger
}

// NewBuilder wires a fetcher into a Builder.
func NewBuilder(f fetcher.HistoricalPriceFetcher, opts BuilderOptions, logger zerolog.Logger) *Builder {
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = DefaultLookbackDays
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if !opts.FallbackRate.IsPositive() {
		opts.FallbackRate = DefaultFallbackRate
	}
	return &Builder{
		fetcher: f,
		opts:    opts,
		logger:  logger.With().Str("component", "price_builder").Logger(),
	}
}

// Build fetches and filters provider records. It never fails: any provider
// problem is logged and collapsed into the fallback series, with the reason
// kept on the resolution.
func (b *Builder) Build(ctx context.Context, req BuildRequest) Resolution {
	res := b.resolve(ctx, req)
	if res.Failure != nil {
		b.logger.Warn().Err(res.Failure).
			Str("location", req.Location).
			Str("reason", string(res.Failure.Reason)).
			Int("skipped", res.Skipped).
			Str("fallback_rate", b.opts.FallbackRate.String()).
			Msg("using fallback fuel rate")
		return res
	}

	b.logger.Debug().Str("location", req.Location).
		Int("accepted", res.Accepted).
		Int("skipped", res.Skipped).
		Msg("price series built")
	return res
}

func (b *Builder) resolve(ctx context.Context, req BuildRequest) Resolution {
	records, err := b.fetch(ctx, req)
	if err != nil {
		return Resolution{Series: b.fallback(req.Year), Failure: classify(err)}
	}

	samples, skipped := ParseRecords(records)
	if len(samples) == 0 {
		return Resolution{Series: b.fallback(req.Year), Skipped: skipped, Failure: &ProviderFailure{Reason: FailureEmpty}}
	}

	series, err := NewSeries(samples)
	if err != nil {
		return Resolution{Series: b.fallback(req.Year), Skipped: skipped, Failure: &ProviderFailure{Reason: FailurePayload, Err: err}}
	}
	return Resolution{Series: series, Accepted: len(samples), Skipped: skipped}
}

// FallbackRate exposes the configured constant rate.
func (b *Builder) FallbackRate() decimal.Decimal { return b.opts.FallbackRate }

func (b *Builder) fetch(ctx context.Context, req BuildRequest) ([]fetcher.PriceRecord, error) {
	if b.fetcher == nil {
		return nil, errors.New("no price fetcher configured")
	}
	ctx, cancel := context.WithTimeout(ctx, b.opts.Timeout)
	defer cancel()

	return b.fetcher.FetchHistorical(ctx, fetcher.HistoricalQuery{
		Location: req.Location,
		APIKey:   req.APIKey,
		Limit:    b.opts.LookbackDays,
	})
}

func (b *Builder) fallback(year int) *Series {
	series, err := Constant(fiscal.Start(year), b.opts.FallbackRate)
	if err != nil {
		panic("fallback rate must be positive: " + err.Error())
	}
	return series
}

func classify(err error) *ProviderFailure {
	var statusErr *fetcher.StatusError
	switch {
	case errors.As(err, &statusErr):
		return &ProviderFailure{Reason: FailureStatus, Err: err}
	case errors.Is(err, fetcher.ErrNotList):
		return &ProviderFailure{Reason: FailurePayload, Err: err}
	default:
		return &ProviderFailure{Reason: FailureTransport, Err: err}
	}
}

// ParseRecords keeps petrol (or unnamed) records with a valid date and a
// positive price, reporting how many were dropped.
func ParseRecords(records []fetcher.PriceRecord) ([]Sample, int) {
	samples := make([]Sample, 0, len(records))
	skipped := 0
	for _, rec := range records {
		sample, ok := parseRecord(rec)
		if !ok {
			skipped++
			continue
		}
		samples = append(samples, sample)
	}
	return samples, skipped
}

func parseRecord(rec fetcher.PriceRecord) (Sample, bool) {
	dateStr := rawText(rec.Date)
	if len(dateStr) > len(dateLayout) {
		dateStr = dateStr[:len(dateLayout)]
	}
	if dateStr == "" {
		return Sample{}, false
	}
	date, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return Sample{}, false
	}

	name := strings.ToLower(rawText(rec.Name))
	if name != "" && !strings.Contains(name, "petrol") {
		return Sample{}, false
	}

	price, err := decimal.NewFromString(strings.TrimSpace(rawText(rec.Price)))
	if err != nil || !price.IsPositive() {
		return Sample{}, false
	}

	return Sample{Date: date, Price: price}, true
}

// rawText renders a JSON value as text: strings unquoted, null or absent
// values empty, anything else as its literal encoding.
func rawText(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return trimmed
}
