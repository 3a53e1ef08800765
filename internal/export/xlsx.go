package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"fuel-receipts/internal/receipts"
)

const summarySheet = "Summary"

// WriteXLSX writes a workbook with a summary sheet and one sheet per month.
func WriteXLSX(w io.Writer, year receipts.Year, monthlyCap decimal.Decimal) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	_ = f.SetCellValue(summarySheet, "A1", fmt.Sprintf("Fuel receipts FY %d-%d", year.StartYear(), year.EndYear))
	_ = f.SetCellStyle(summarySheet, "A1", "A1", bold)
	_ = f.SetCellValue(summarySheet, "A2", "Monthly cap")
	_ = f.SetCellValue(summarySheet, "B2", monthlyCap.InexactFloat64())

	header := []string{"Month", "Receipts", "Total amount", "Total volume (L)", "Cap headroom"}
	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 4)
		_ = f.SetCellValue(summarySheet, cell, h)
	}
	_ = f.SetCellStyle(summarySheet, "A4", "E4", bold)

	grand := decimal.Zero
	count := 0
	for i, m := range year.Months {
		rowNum := 5 + i
		total := m.Total()
		volume := decimal.Zero
		for _, r := range m.Receipts {
			volume = volume.Add(r.Volume)
		}
		values := []any{
			m.String(),
			len(m.Receipts),
			total.InexactFloat64(),
			volume.InexactFloat64(),
			monthlyCap.Sub(total).InexactFloat64(),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowNum)
			_ = f.SetCellValue(summarySheet, cell, v)
		}
		grand = grand.Add(total)
		count += len(m.Receipts)

		if err := writeMonthSheet(f, m, bold); err != nil {
			return err
		}
	}

	totalRow := 5 + len(year.Months)
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", totalRow), "Total")
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", totalRow), count)
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("C%d", totalRow), grand.InexactFloat64())
	_ = f.SetCellStyle(summarySheet, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("E%d", totalRow), bold)

	return f.Write(w)
}

func writeMonthSheet(f *excelize.File, m receipts.Month, bold int) error {
	name := m.String()
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("add sheet %s: %w", name, err)
	}
	for i, h := range Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(name, cell, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(Columns), 1)
	_ = f.SetCellStyle(name, "A1", last, bold)

	for i, r := range m.Receipts {
		for col, v := range row(r) {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			_ = f.SetCellValue(name, cell, v)
		}
	}
	return nil
}
