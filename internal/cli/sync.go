package cli

import (
	"github.com/spf13/cobra"

	"fuel-receipts/internal/app"
)

var (
	syncLocations []string
	syncAPIKey    string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch live prices once and store them in the archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.SyncOptions{
			Locations: syncLocations,
			APIKey:    syncAPIKey,
		}
		return getApp().SyncPrices(cmd.Context(), opts, cmd.OutOrStdout())
	},
}

func init() {
	syncCmd.Flags().StringSliceVar(&syncLocations, "location", nil, "Locations to refresh (defaults to archive.locations)")
	syncCmd.Flags().StringVar(&syncAPIKey, "api-key", "", "Fuel price API key (defaults to archive.api_key)")
}
