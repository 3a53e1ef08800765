package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"fuel-receipts/internal/app"
)

var (
	showLimit    int
	showLocation string
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display recent archived prices",
	RunE: func(cmd *cobra.Command, args []string) error {
		if showLimit <= 0 {
			return fmt.Errorf("--limit must be greater than zero")
		}

		opts := app.ShowOptions{
			Location: showLocation,
			Limit:    showLimit,
		}

		return getApp().ShowPrices(cmd.Context(), opts, cmd.OutOrStdout())
	},
}

func init() {
	showCmd.Flags().IntVar(&showLimit, "limit", 20, "Number of samples to display")
	showCmd.Flags().StringVar(&showLocation, "location", "", "Location to display (defaults to generation.location)")
}
