package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
)

// SyncPrices refreshes the price archive once for the given locations.
func (a *App) SyncPrices(ctx context.Context, opts SyncOptions, out io.Writer) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database.dsn not configured; cannot sync prices")
	}
	if closeStore != nil {
		defer closeStore()
	}

	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = a.Config.Archive.APIKey
	}
	if apiKey == "" {
		return errors.New("an api key is required (--api-key or archive.api_key)")
	}
	locations := opts.Locations
	if len(locations) == 0 {
		locations = a.Config.Archive.Locations
	}

	summary, err := a.newService(store, nil).SyncArchive(ctx, apiKey, locations)
	if summary.Skipped {
		fmt.Fprintln(out, "another instance holds the archive lock; nothing done")
		return err
	}

	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Location\tSource\tStored\tError")
	for _, loc := range summary.Locations {
		errMsg := ""
		if loc.Err != nil {
			errMsg = loc.Err.Error()
		}
		fmt.Fprintf(writer, "%s\t%s\t%d\t%s\n", loc.Location, loc.Source, loc.Stored, errMsg)
	}
	if flushErr := writer.Flush(); flushErr != nil && err == nil {
		err = flushErr
	}
	return err
}
