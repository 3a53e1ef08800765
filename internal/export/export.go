package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fuel-receipts/internal/receipts"
)

// Columns are the receipt field names, in printer order.
var Columns = []string{
	"year", "month", "date", "stationName", "address", "telNo", "receiptNo",
	"fccId", "fipNo", "nozzleNo", "product", "ratePerLtr", "amount", "volume",
	"vehType", "vehNo", "customerName", "mode", "lstNo", "vatNo", "attendantId",
}

func row(r receipts.Receipt) []string {
	return []string{
		fmt.Sprintf("%d", r.Year),
		fmt.Sprintf("%d", int(r.Month)),
		r.DateString(),
		r.Station.Name,
		r.Station.Address,
		r.TelNo,
		r.ReceiptNo,
		r.FccID,
		r.FipNo,
		r.NozzleNo,
		r.Product,
		r.RateString(),
		r.AmountString(),
		r.VolumeString(),
		r.VehType,
		r.VehNo,
		r.CustomerName,
		r.Mode,
		r.LstNo,
		r.VatNo,
		r.AttendantID,
	}
}

// WriteCSV writes one line per receipt in chronological order.
func WriteCSV(w io.Writer, year receipts.Year) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Columns); err != nil {
		return err
	}
	for _, r := range year.Receipts() {
		if err := writer.Write(row(r)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeRows(w io.Writer, rows [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	return writer.Error()
}

// ToFile creates path (and its directory) and hands it to write.
func ToFile(path string, write func(io.Writer) error) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
