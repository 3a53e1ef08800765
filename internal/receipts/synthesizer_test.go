package receipts

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"fuel-receipts/internal/allocator"
	"fuel-receipts/internal/pricing"
)

func defaultParams() allocator.Request {
	return allocator.Request{
		Cap: decimal.NewFromInt(25000),
		Min: decimal.NewFromInt(3000),
		Max: decimal.NewFromInt(7000),
	}
}

func mustSeries(t *testing.T, samples ...pricing.Sample) *pricing.Series {
	t.Helper()
	s, err := pricing.NewSeries(samples)
	require.NoError(t, err)
	return s
}

func TestSynthesizeCoversFinancialYear(t *testing.T) {
	rates := mustSeries(t,
		pricing.Sample{Date: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), Price: decimal.RequireFromString("94.77")},
		pricing.Sample{Date: time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), Price: decimal.RequireFromString("96.10")},
	)
	id := Identity{TelNo: "1503339", VehNo: "DL01AB1234", CustomerName: "A. Customer"}

	year, err := Synthesize(2026, rates, defaultParams(), DefaultCatalog(), id, NewSource(42))
	require.NoError(t, err)
	require.Equal(t, 2026, year.EndYear)
	require.Equal(t, 2025, year.StartYear())
	require.Len(t, year.Months, 12)

	wantMonths := []time.Month{4, 5, 6, 7, 8, 9, 10, 11, 12, 1, 2, 3}
	for i, m := range year.Months {
		require.Equal(t, wantMonths[i], m.Month.Month)
		wantYear := 2025
		if i >= 9 {
			wantYear = 2026
		}
		require.Equal(t, wantYear, m.Year)
		require.True(t, m.Total().LessThanOrEqual(decimal.NewFromInt(25000)))
		require.NotEmpty(t, m.Receipts)

		for _, r := range m.Receipts {
			require.Equal(t, m.Year, r.Year)
			require.Equal(t, m.Month.Month, r.Month)
			require.Equal(t, m.Year, r.Timestamp.Year())
			require.Equal(t, m.Month.Month, r.Timestamp.Month())
			require.Equal(t, rates.RateOnOrBefore(r.Timestamp), r.Rate)
			require.Contains(t, DefaultCatalog(), r.Station)
			require.Len(t, r.ReceiptNo, 6)
			require.Equal(t, id.VehNo, r.VehNo)
			require.Equal(t, ProductPetrol, r.Product)
			require.Equal(t, PaymentCash, r.Mode)

			// volume is amount/rate rounded to two places
			exact := r.Amount.Div(r.Rate)
			require.True(t, r.Volume.Sub(exact).Abs().LessThanOrEqual(decimal.RequireFromString("0.005")),
				"volume %s vs exact %s", r.Volume, exact)
		}
	}

	flat := year.Receipts()
	count := 0
	for _, m := range year.Months {
		count += len(m.Receipts)
	}
	require.Len(t, flat, count)
	for i := 1; i < len(flat); i++ {
		prev, cur := flat[i-1], flat[i]
		require.False(t, cur.Year*100+int(cur.Month) < prev.Year*100+int(prev.Month), "months out of order")
	}
}

func TestSynthesizeIsDeterministicForSeed(t *testing.T) {
	rates := mustSeries(t, pricing.Sample{Date: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), Price: decimal.NewFromInt(100)})

	a, err := Synthesize(2025, rates, defaultParams(), DefaultCatalog(), Identity{}, NewSource(7))
	require.NoError(t, err)
	b, err := Synthesize(2025, rates, defaultParams(), DefaultCatalog(), Identity{}, NewSource(7))
	require.NoError(t, err)

	ja, _ := json.Marshal(a.Receipts())
	jb, _ := json.Marshal(b.Receipts())
	require.JSONEq(t, string(ja), string(jb))
}

func TestSynthesizeLeapFebruary(t *testing.T) {
	rates := mustSeries(t, pricing.Sample{Date: time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC), Price: decimal.NewFromInt(100)})
	params := allocator.Request{Cap: decimal.NewFromInt(100000), Min: decimal.NewFromInt(1), Max: decimal.NewFromInt(2)}

	year, err := Synthesize(2024, rates, params, DefaultCatalog(), Identity{}, NewSource(1))
	require.NoError(t, err)

	feb := year.Months[10]
	require.Equal(t, time.February, feb.Month.Month)
	require.Len(t, feb.Receipts, allocator.DefaultMaxAttempts)
	for _, r := range feb.Receipts {
		require.LessOrEqual(t, r.Timestamp.Day(), 29)
	}
}

func TestSynthesizeRejectsBadInput(t *testing.T) {
	rates := mustSeries(t, pricing.Sample{Date: time.Now(), Price: decimal.NewFromInt(1)})

	_, err := Synthesize(2026, rates, defaultParams(), nil, Identity{}, NewSource(1))
	require.ErrorIs(t, err, ErrEmptyCatalog)

	bad := defaultParams()
	bad.Cap = decimal.Zero
	_, err = Synthesize(2026, rates, bad, DefaultCatalog(), Identity{}, NewSource(1))
	require.ErrorIs(t, err, allocator.ErrInvalidCap)
}

func TestReceiptJSONFieldNames(t *testing.T) {
	r := Receipt{
		Year:         2025,
		Month:        time.June,
		Timestamp:    time.Date(2025, 6, 15, 9, 5, 0, 0, time.UTC),
		Station:      Station{Name: "Metro Petro Pump", Address: "Rohini"},
		TelNo:        "1503339",
		ReceiptNo:    "123456",
		Product:      ProductPetrol,
		Rate:         decimal.RequireFromString("94.7"),
		Amount:       decimal.RequireFromString("3500"),
		Volume:       Volume(decimal.RequireFromString("3500"), decimal.RequireFromString("94.7")),
		VehType:      ProductPetrol,
		Mode:         PaymentCash,
		AttendantID:  AttendantNotListed,
		CustomerName: "C",
	}

	raw, err := json.Marshal(r)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Len(t, got, 21)
	require.Equal(t, "2025-06-15 09:05", got["date"])
	require.Equal(t, "94.70", got["ratePerLtr"])
	require.Equal(t, "3500.00", got["amount"])
	require.Equal(t, "36.96L", got["volume"])
	require.Equal(t, "Metro Petro Pump", got["stationName"])
	require.Equal(t, "Rohini", got["address"])
	require.Equal(t, float64(6), got["month"])
	require.Equal(t, "", got["fccId"])
	require.Equal(t, "not available", got["attendantId"])
}

func TestVolumeZeroRate(t *testing.T) {
	require.True(t, Volume(decimal.NewFromInt(100), decimal.Zero).IsZero())
}
