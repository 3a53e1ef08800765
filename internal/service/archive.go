package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"fuel-receipts/internal/alerting"
	"fuel-receipts/internal/fiscal"
	"fuel-receipts/internal/pricing"
	"fuel-receipts/internal/storage"
)

// ErrArchiveDisabled is returned by SyncArchive when no archive is wired.
var ErrArchiveDisabled = errors.New("price archive not configured")

// LocationSync is the result of refreshing one location.
type LocationSync struct {
	Location string
	Stored   int
	Source   string
	Err      error
}

// SyncSummary aggregates one archive refresh.
type SyncSummary struct {
	RunAt     time.Time
	Skipped   bool
	Locations []LocationSync
}

// Stored is the total number of samples written.
func (s SyncSummary) Stored() int {
	total := 0
	for _, loc := range s.Locations {
		total += loc.Stored
	}
	return total
}

// SyncArchive fetches live prices for each location concurrently and stores
// them. Locations whose provider call falls back are reported, not stored.
func (s *Service) SyncArchive(ctx context.Context, apiKey string, locations []string) (SyncSummary, error) {
	summary := SyncSummary{RunAt: s.now()}
	if s.archive == nil {
		return summary, ErrArchiveDisabled
	}

	unlock, proceed, err := s.acquireLock(ctx)
	if err != nil {
		return summary, err
	}
	if !proceed {
		s.logger.Debug().Msg("skip archive sync because advisory lock held elsewhere")
		summary.Skipped = true
		return summary, nil
	}
	if unlock != nil {
		defer unlock()
	}

	locations = uniqueLocations(locations)
	year := fiscal.EndYearFor(summary.RunAt)

	var (
		mu      sync.Mutex
		results = make([]LocationSync, len(locations))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.SyncConcurrency)
	for i, location := range locations {
		i, location := i, location
		g.Go(func() error {
			result := s.syncLocation(gctx, apiKey, location, year, summary.RunAt)
			mu.Lock()
			results[i] = result
			mu.Unlock()
			if result.Err != nil && !errors.As(result.Err, new(*pricing.ProviderFailure)) {
				return fmt.Errorf("archive %s: %w", location, result.Err)
			}
			return nil
		})
	}
	err = g.Wait()
	summary.Locations = results

	s.logger.Info().
		Int("locations", len(locations)).
		Int("stored", summary.Stored()).
		Msg("price archive sync finished")
	s.alertFailures(ctx, summary)
	return summary, err
}

// alertFailures tells operators about locations that stored nothing.
func (s *Service) alertFailures(ctx context.Context, summary SyncSummary) {
	if s.opts.Notifier == nil {
		return
	}
	var failures []alerting.LocationFailure
	for _, loc := range summary.Locations {
		if loc.Err == nil {
			continue
		}
		failures = append(failures, alerting.LocationFailure{
			Location: loc.Location,
			Source:   loc.Source,
			Error:    loc.Err.Error(),
		})
	}
	if len(failures) == 0 {
		return
	}

	note := alerting.Notification{
		RunAt:     summary.RunAt,
		Attempted: len(summary.Locations),
		Stored:    summary.Stored(),
		Failures:  failures,
	}
	if err := s.opts.Notifier.Notify(ctx, note); err != nil {
		s.logger.Error().Err(err).Int("failures", len(failures)).Msg("failed to dispatch archive alert")
	}
}

func (s *Service) syncLocation(ctx context.Context, apiKey, location string, year int, runAt time.Time) LocationSync {
	res := s.prices.Build(ctx, pricing.BuildRequest{Location: location, APIKey: apiKey, Year: year})
	source := priceSource(res)
	s.metrics.ObservePriceSource(source)

	result := LocationSync{Location: location, Source: source}
	if res.Failure != nil {
		result.Err = res.Failure
		return result
	}

	n, err := s.archive.RecordSamples(ctx, toArchive(location, res.Series, runAt))
	s.metrics.ObserveArchiveWrite(err)
	result.Stored = n
	result.Err = err
	return result
}

func (s *Service) acquireLock(ctx context.Context) (func(), bool, error) {
	locker, ok := s.archive.(storage.AdvisoryLocker)
	if s.opts.LockKey == 0 || !ok {
		return nil, true, nil
	}
	unlock, acquired, err := locker.TryAdvisoryLock(ctx, s.opts.LockKey)
	if err != nil {
		return nil, false, fmt.Errorf("acquire advisory lock: %w", err)
	}
	if !acquired {
		return nil, false, nil
	}
	return unlock, true, nil
}

func uniqueLocations(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, loc := range in {
		loc = strings.ToLower(strings.TrimSpace(loc))
		if loc == "" {
			continue
		}
		if _, ok := seen[loc]; ok {
			continue
		}
		seen[loc] = struct{}{}
		out = append(out, loc)
	}
	return out
}
