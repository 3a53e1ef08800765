package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"fuel-receipts/internal/app"
	"fuel-receipts/internal/service"
)

var (
	genYear         int
	genMonthlyCap   string
	genMinAmount    string
	genMaxAmount    string
	genLocation     string
	genAPIKey       string
	genTelNo        string
	genVehNo        string
	genCustomerName string
	genSeed         uint64

	genJSONPath string
	genCSVPath  string
	genXLSXPath string
	genPDFPath  string
	genPNGPath  string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a financial year of receipts and write them as JSON/CSV/XLSX/PDF/PNG",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := buildGenerateRequest(cmd)
		if err != nil {
			return err
		}

		opts := app.GenerateOptions{
			Request:  req,
			JSONPath: genJSONPath,
			CSVPath:  genCSVPath,
			XLSXPath: genXLSXPath,
			PDFPath:  genPDFPath,
			PNGPath:  genPNGPath,
		}
		return getApp().Generate(cmd.Context(), opts, cmd.OutOrStdout())
	},
}

func buildGenerateRequest(cmd *cobra.Command) (service.GenerateRequest, error) {
	flags := cmd.Flags()
	req := service.GenerateRequest{
		Location:     genLocation,
		FuelAPIKey:   genAPIKey,
		TelNo:        genTelNo,
		VehNo:        genVehNo,
		CustomerName: genCustomerName,
	}
	if req.FuelAPIKey == "" {
		req.FuelAPIKey = os.Getenv("FUEL_API_KEY")
	}
	if flags.Changed("year") {
		req.Year = json.Number(strconv.Itoa(genYear))
	}
	if flags.Changed("seed") {
		seed := genSeed
		req.Seed = &seed
	}

	amounts := []struct {
		flag  string
		value string
		dst   **decimal.Decimal
	}{
		{"monthly-cap", genMonthlyCap, &req.MonthlyCap},
		{"min-amount", genMinAmount, &req.MinAmount},
		{"max-amount", genMaxAmount, &req.MaxAmount},
	}
	for _, a := range amounts {
		if !flags.Changed(a.flag) {
			continue
		}
		d, err := decimal.NewFromString(a.value)
		if err != nil {
			return service.GenerateRequest{}, fmt.Errorf("invalid --%s value: %w", a.flag, err)
		}
		*a.dst = &d
	}
	return req, nil
}

func init() {
	f := generateCmd.Flags()
	f.IntVar(&genYear, "year", 0, "Financial year end (defaults to the current year)")
	f.StringVar(&genMonthlyCap, "monthly-cap", "", "Monthly spending cap (defaults to generation.monthly_cap)")
	f.StringVar(&genMinAmount, "min-amount", "", "Minimum receipt amount (defaults to generation.min_amount)")
	f.StringVar(&genMaxAmount, "max-amount", "", "Maximum receipt amount (defaults to generation.max_amount)")
	f.StringVar(&genLocation, "location", "", "Price location (defaults to generation.location)")
	f.StringVar(&genAPIKey, "api-key", "", "Fuel price API key (falls back to $FUEL_API_KEY)")
	f.StringVar(&genTelNo, "tel-no", "", "Telephone number printed on receipts")
	f.StringVar(&genVehNo, "veh-no", "", "Vehicle number")
	f.StringVar(&genCustomerName, "customer-name", "", "Customer name")
	f.Uint64Var(&genSeed, "seed", 0, "Random seed for reproducible output")

	f.StringVar(&genJSONPath, "json", "", "Path to write the JSON report ('-' for stdout)")
	f.StringVar(&genCSVPath, "csv", "", "Path to write receipts as CSV")
	f.StringVar(&genXLSXPath, "xlsx", "", "Path to write an XLSX workbook")
	f.StringVar(&genPDFPath, "pdf", "", "Path to write printable PDF slips")
	f.StringVar(&genPNGPath, "png", "", "Path to write a monthly totals chart")
}
