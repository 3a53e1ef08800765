package cli

import (
	"github.com/spf13/cobra"
)

var pricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "Inspect and maintain the archived fuel price history",
}

func init() {
	pricesCmd.AddCommand(showCmd)
	pricesCmd.AddCommand(exportCmd)
	pricesCmd.AddCommand(syncCmd)
}
