package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

// ShowPrices prints the most recent archived prices for a location.
func (a *App) ShowPrices(ctx context.Context, opts ShowOptions, out io.Writer) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot show prices")
	}
	if closeStore != nil {
		defer closeStore()
	}

	location := opts.Location
	if location == "" {
		location = a.Config.Generation.Location
	}

	samples, err := store.ListRecent(ctx, location, opts.Limit)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		fmt.Fprintf(out, "no prices archived for %s\n", location)
		return nil
	}

	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Date\tLocation\tPrice\tFetched (UTC)")
	for _, sample := range samples {
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\n",
			sample.Date.Format("2006-01-02"),
			sample.Location,
			sample.Price.StringFixed(2),
			sample.FetchedAt.UTC().Format(time.RFC3339),
		)
	}

	return writer.Flush()
}
