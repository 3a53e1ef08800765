package export

import (
	"errors"
	"io"
	"math"
	"time"

	"github.com/shopspring/decimal"
	chart "github.com/wcharczuk/go-chart/v2"

	"fuel-receipts/internal/receipts"
	"fuel-receipts/internal/storage"
)

// ErrTooFewSamples is returned when a chart would have no span to plot.
var ErrTooFewSamples = errors.New("at least two samples are required")

// WriteMonthlyChart renders monthly totals against the cap as a PNG.
func WriteMonthlyChart(w io.Writer, year receipts.Year, monthlyCap decimal.Decimal) error {
	if len(year.Months) < 2 {
		return ErrTooFewSamples
	}

	x := make([]float64, len(year.Months))
	totals := make([]float64, len(year.Months))
	caps := make([]float64, len(year.Months))
	ticks := make([]chart.Tick, len(year.Months))
	maxY := monthlyCap.InexactFloat64()
	for i, m := range year.Months {
		x[i] = float64(i + 1)
		totals[i] = m.Total().InexactFloat64()
		caps[i] = monthlyCap.InexactFloat64()
		ticks[i] = chart.Tick{Value: x[i], Label: m.First().Format("Jan 06")}
		maxY = math.Max(maxY, totals[i])
	}

	amountFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.0f")
	}
	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			Ticks: ticks,
			Range: &chart.ContinuousRange{Min: 0.5, Max: float64(len(year.Months)) + 0.5},
		},
		YAxis: chart.YAxis{
			Name:           "Amount",
			ValueFormatter: amountFormatter,
			Range:          &chart.ContinuousRange{Min: 0, Max: paddedMax(maxY)},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Monthly total",
				XValues: x,
				YValues: totals,
			},
			chart.ContinuousSeries{
				Name:    "Cap",
				XValues: x,
				YValues: caps,
				Style: chart.Style{
					StrokeDashArray: []float64{5, 5},
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph.Render(chart.PNG, w)
}

// WritePriceCSV writes archived samples as date,location,price rows.
func WritePriceCSV(w io.Writer, samples []storage.PriceSample) error {
	rows := make([][]string, 0, len(samples)+1)
	rows = append(rows, []string{"price_date", "location", "price", "fetched_at"})
	for _, s := range samples {
		rows = append(rows, []string{
			s.Date.Format("2006-01-02"),
			s.Location,
			s.Price.StringFixed(2),
			s.FetchedAt.UTC().Format(time.RFC3339),
		})
	}
	return writeRows(w, rows)
}

// WritePriceChart plots archived prices over time as a PNG.
func WritePriceChart(w io.Writer, location string, samples []storage.PriceSample) error {
	if len(samples) < 2 {
		return ErrTooFewSamples
	}

	x := make([]time.Time, len(samples))
	y := make([]float64, len(samples))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, s := range samples {
		x[i] = s.Date
		y[i] = s.Price.InexactFloat64()
		lo = math.Min(lo, y[i])
		hi = math.Max(hi, y[i])
	}

	rateFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.2f")
	}
	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Petrol price (" + location + ")",
			ValueFormatter: rateFormatter,
			Range:          &chart.ContinuousRange{Min: math.Max(0, lo-1), Max: hi + 1},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    location,
				XValues: x,
				YValues: y,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph.Render(chart.PNG, w)
}

// Downsample keeps at most max evenly spaced samples, first and last included.
func Downsample(samples []storage.PriceSample, max int) []storage.PriceSample {
	if max <= 0 || len(samples) <= max {
		return samples
	}
	if max == 1 {
		return samples[len(samples)-1:]
	}

	result := make([]storage.PriceSample, 0, max)
	step := float64(len(samples)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(samples) {
			idx = len(samples) - 1
		}
		result = append(result, samples[idx])
	}
	return result
}

func paddedMax(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v * 1.1
}
