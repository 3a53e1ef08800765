package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultBaseURL        = "https://fuel.indianapi.in"
	defaultHistoricalPath = "/historical_fuel_price"
	apiKeyHeader          = "X-Api-Key"
	maxErrorBody          = 512
)

// IndianAPIOptions parameterise the historical fuel price client.
type IndianAPIOptions struct {
	BaseURL        string
	HistoricalPath string
	Timeout        time.Duration
	UserAgent      string
}

// IndianAPI fetches daily fuel prices from fuel.indianapi.in.
type IndianAPI struct {
	opts    IndianAPIOptions
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
	timeout time.Duration
}

// NewIndianAPI constructs the provider client.
func NewIndianAPI(opts IndianAPIOptions, logger zerolog.Logger) *IndianAPI {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if opts.HistoricalPath == "" {
		opts.HistoricalPath = defaultHistoricalPath
	}

	return &IndianAPI{
		opts:    opts,
		logger:  logger.With().Str("component", "fuel_price_fetcher").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		timeout: timeout,
	}
}

// FetchHistorical performs a single GET against the historical endpoint.
func (f *IndianAPI) FetchHistorical(ctx context.Context, query HistoricalQuery) ([]PriceRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("location", query.Location)
	params.Set("n", strconv.Itoa(query.Limit))
	endpoint := f.baseURL + f.opts.HistoricalPath + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(apiKeyHeader, query.APIKey)
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(f.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		body := strings.TrimSpace(string(payload))
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &StatusError{Code: resp.StatusCode, Body: body}
	}

	records, err := DecodeRecords(payload)
	if err != nil {
		return nil, err
	}

	f.logger.Debug().Str("location", query.Location).Int("records", len(records)).Msg("historical prices fetched")
	return records, nil
}

var _ HistoricalPriceFetcher = (*IndianAPI)(nil)
