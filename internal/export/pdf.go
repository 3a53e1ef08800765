package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"fuel-receipts/internal/receipts"
)

// WritePDF prints one A6 slip per receipt.
func WritePDF(w io.Writer, year receipts.Year) error {
	pdf := gofpdf.New("P", "mm", "A6", "")
	pdf.SetMargins(8, 8, 8)
	pdf.SetAutoPageBreak(false, 8)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	all := year.Receipts()
	if len(all) == 0 {
		pdf.AddPage()
		pdf.SetFont("Arial", "", 11)
		pdf.Cell(0, 8, fmt.Sprintf("No receipts for FY %d-%d", year.StartYear(), year.EndYear))
	}

	for _, r := range all {
		pdf.AddPage()
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 6, tr(r.Station.Name), "", 1, "C", false, 0, "")
		pdf.SetFont("Arial", "", 8)
		pdf.MultiCell(0, 4, tr(r.Station.Address), "", "C", false)
		pdf.CellFormat(0, 4, tr("Tel: "+r.TelNo), "", 1, "C", false, 0, "")
		pdf.Ln(2)

		pdf.SetFont("Arial", "", 9)
		lines := [][2]string{
			{"Receipt No", r.ReceiptNo},
			{"Date", r.DateString()},
			{"FCC ID", r.FccID},
			{"FIP No", r.FipNo},
			{"Nozzle No", r.NozzleNo},
			{"Product", r.Product},
			{"Rate/Ltr", r.RateString()},
			{"Volume", r.VolumeString()},
			{"Amount", r.AmountString()},
			{"Veh Type", r.VehType},
			{"Veh No", r.VehNo},
			{"Customer", r.CustomerName},
			{"Mode", r.Mode},
			{"LST No", r.LstNo},
			{"VAT No", r.VatNo},
			{"Attendant", r.AttendantID},
		}
		for _, l := range lines {
			pdf.CellFormat(30, 5, l[0]+":", "", 0, "L", false, 0, "")
			pdf.CellFormat(0, 5, tr(l[1]), "", 1, "L", false, 0, "")
		}
		pdf.Ln(2)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 4, "Thank you. Visit again.", "", 1, "C", false, 0, "")
	}

	return pdf.Output(w)
}
