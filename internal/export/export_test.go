package export

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"fuel-receipts/internal/allocator"
	"fuel-receipts/internal/pricing"
	"fuel-receipts/internal/receipts"
	"fuel-receipts/internal/storage"
)

func testYear(t *testing.T) receipts.Year {
	t.Helper()
	series, err := pricing.Constant(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), decimal.RequireFromString("94.72"))
	require.NoError(t, err)
	year, err := receipts.Synthesize(2026, series, allocator.Request{
		Cap: decimal.NewFromInt(9000),
		Min: decimal.NewFromInt(3000),
		Max: decimal.NewFromInt(3000),
	}, receipts.DefaultCatalog(), receipts.Identity{TelNo: "1503339", VehNo: "DL01", CustomerName: "Zoë"}, receipts.NewSource(1))
	require.NoError(t, err)
	return year
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, testYear(t)))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 37)
	require.Equal(t, Columns, records[0])
	require.Len(t, Columns, 21)

	first := records[1]
	require.Equal(t, "2025", first[0])
	require.Equal(t, "4", first[1])
	require.Equal(t, "3000.00", first[12])
	require.Equal(t, "31.67L", first[13])
	require.Equal(t, "not available", first[20])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, testYear(t), decimal.NewFromInt(9000)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	require.Len(t, sheets, 13)
	require.Equal(t, summarySheet, sheets[0])
	require.Equal(t, "2025-04", sheets[1])
	require.Equal(t, "2026-03", sheets[12])

	v, err := f.GetCellValue(summarySheet, "B5")
	require.NoError(t, err)
	require.Equal(t, "3", v)

	v, err = f.GetCellValue("2025-04", "M2")
	require.NoError(t, err)
	require.Equal(t, "3000.00", v)
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, testYear(t)))
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	buf.Reset()
	require.NoError(t, WritePDF(&buf, receipts.Year{EndYear: 2026}))
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestWriteMonthlyChart(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMonthlyChart(&buf, testYear(t), decimal.NewFromInt(9000)))
	require.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))

	require.ErrorIs(t, WriteMonthlyChart(&buf, receipts.Year{}, decimal.NewFromInt(1)), ErrTooFewSamples)
}

func priceSamples(n int) []storage.PriceSample {
	out := make([]storage.PriceSample, n)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range out {
		out[i] = storage.PriceSample{
			Location:  "delhi",
			Date:      start.AddDate(0, 0, i),
			Price:     decimal.NewFromFloat(94.5 + float64(i%5)*0.1),
			FetchedAt: start,
		}
	}
	return out
}

func TestWritePriceOutputs(t *testing.T) {
	samples := priceSamples(30)

	var buf bytes.Buffer
	require.NoError(t, WritePriceCSV(&buf, samples))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 31)
	require.Equal(t, []string{"2025-01-01", "delhi", "94.50", "2025-01-01T00:00:00Z"}, records[1])

	buf.Reset()
	require.NoError(t, WritePriceChart(&buf, "delhi", samples))
	require.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))

	require.ErrorIs(t, WritePriceChart(&buf, "delhi", samples[:1]), ErrTooFewSamples)
}

func TestDownsample(t *testing.T) {
	samples := priceSamples(100)
	out := Downsample(samples, 10)
	require.Len(t, out, 10)
	require.Equal(t, samples[0].Date, out[0].Date)
	require.Equal(t, samples[99].Date, out[9].Date)

	require.Len(t, Downsample(samples, 0), 100)
	require.Len(t, Downsample(samples, 1), 1)
}

func TestToFileCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")
	require.NoError(t, ToFile(path, func(w io.Writer) error {
		return WriteCSV(w, testYear(t))
	}))
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Positive(t, info.Size())
}
