package app

import (
	"context"
	"errors"
	"io"
	"time"

	"fuel-receipts/internal/export"
)

// ExportPrices renders archived prices as CSV and/or PNG.
func (a *App) ExportPrices(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot export")
	}
	if closeStore != nil {
		defer closeStore()
	}

	location := opts.Location
	if location == "" {
		location = a.Config.Generation.Location
	}

	to := time.Now().UTC()
	if opts.To != nil {
		to = opts.To.UTC()
	}
	from := to.AddDate(0, 0, -a.Config.Provider.LookbackDays)
	if opts.From != nil {
		from = opts.From.UTC()
	}
	if !from.Before(to) {
		return errors.New("from must be before to")
	}

	samples, err := store.ListBetween(ctx, location, from, to)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		a.Logger.Info().Str("location", location).Msg("no prices found for export window")
		return nil
	}

	downsampled := export.Downsample(samples, opts.MaxPoints)
	a.Logger.Info().Int("total", len(samples)).Int("exported", len(downsampled)).Msg("exporting prices")

	if opts.CSVPath != "" {
		if err := export.ToFile(opts.CSVPath, func(w io.Writer) error {
			return export.WritePriceCSV(w, downsampled)
		}); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := export.ToFile(opts.PNGPath, func(w io.Writer) error {
			return export.WritePriceChart(w, location, downsampled)
		}); err != nil {
			return err
		}
	}

	return nil
}
