package app

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"fuel-receipts/internal/export"
	"fuel-receipts/internal/service"
)

// Generate synthesizes a financial year and writes the requested documents.
// With no output path set, the JSON report goes to out.
func (a *App) Generate(ctx context.Context, opts GenerateOptions, out io.Writer) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("price archive unavailable; continuing without it")
		store = nil
	}
	if closeStore != nil {
		defer closeStore()
	}

	report, err := a.newService(store, nil).GenerateYearly(ctx, opts.Request)
	if err != nil {
		return err
	}

	return writeReport(report, opts, out)
}

func writeReport(report *service.YearlyReport, opts GenerateOptions, out io.Writer) error {
	writeJSON := func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	wrote := false
	outputs := []struct {
		path  string
		write func(io.Writer) error
	}{
		{opts.JSONPath, writeJSON},
		{opts.CSVPath, func(w io.Writer) error { return export.WriteCSV(w, report.Year) }},
		{opts.XLSXPath, func(w io.Writer) error { return export.WriteXLSX(w, report.Year, report.MonthlyCap) }},
		{opts.PDFPath, func(w io.Writer) error { return export.WritePDF(w, report.Year) }},
		{opts.PNGPath, func(w io.Writer) error { return export.WriteMonthlyChart(w, report.Year, report.MonthlyCap) }},
	}
	for _, o := range outputs {
		if o.path == "" {
			continue
		}
		wrote = true
		if o.path == "-" {
			if err := o.write(out); err != nil {
				return err
			}
			continue
		}
		if err := export.ToFile(o.path, o.write); err != nil {
			return err
		}
	}

	if !wrote {
		if out == nil {
			out = os.Stdout
		}
		return writeJSON(out)
	}
	return nil
}
