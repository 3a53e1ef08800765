package pricing

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNewSeriesRejectsEmptyAndNonPositive(t *testing.T) {
	if _, err := NewSeries(nil); !errors.Is(err, ErrEmptySeries) {
		t.Fatalf("empty series should fail with ErrEmptySeries, got %v", err)
	}
	if _, err := NewSeries([]Sample{{Date: day("2025-01-01"), Price: decimal.Zero}}); err == nil {
		t.Fatal("zero price should be rejected")
	}
}

func TestNewSeriesSortsStably(t *testing.T) {
	series, err := NewSeries([]Sample{
		{Date: day("2025-03-01"), Price: decimal.NewFromInt(3)},
		{Date: day("2025-01-01"), Price: decimal.NewFromInt(1)},
		{Date: day("2025-02-01"), Price: decimal.NewFromInt(20)},
		{Date: day("2025-02-01"), Price: decimal.NewFromInt(21)},
	})
	if err != nil {
		t.Fatalf("series should build: %v", err)
	}

	got := series.Samples()
	want := []int64{1, 20, 21, 3}
	for i, w := range want {
		if !got[i].Price.Equal(decimal.NewFromInt(w)) {
			t.Fatalf("position %d: want %d, got %s", i, w, got[i].Price)
		}
	}
	if !series.Earliest().Date.Equal(day("2025-01-01")) || !series.Latest().Date.Equal(day("2025-03-01")) {
		t.Fatalf("unexpected bounds %v .. %v", series.Earliest().Date, series.Latest().Date)
	}
}

func TestRateOnOrBefore(t *testing.T) {
	series, err := NewSeries([]Sample{
		{Date: day("2025-06-01"), Price: decimal.NewFromInt(100)},
		{Date: day("2025-06-10"), Price: decimal.NewFromInt(110)},
		{Date: day("2025-06-20"), Price: decimal.NewFromInt(120)},
	})
	if err != nil {
		t.Fatalf("series should build: %v", err)
	}

	cases := []struct {
		at   time.Time
		want int64
	}{
		{day("2025-01-01"), 100},
		{day("2025-06-01"), 100},
		{day("2025-06-09"), 100},
		{day("2025-06-10"), 110},
		{time.Date(2025, 6, 10, 23, 59, 0, 0, time.UTC), 110},
		{day("2025-06-19"), 110},
		{day("2025-06-20"), 120},
		{day("2026-03-31"), 120},
	}
	for _, tc := range cases {
		if got := series.RateOnOrBefore(tc.at); !got.Equal(decimal.NewFromInt(tc.want)) {
			t.Fatalf("%s: want %d, got %s", tc.at.Format(time.RFC3339), tc.want, got)
		}
	}
}

func TestRateOnOrBeforeDuplicateDatesPreferLaterEntry(t *testing.T) {
	series, err := NewSeries([]Sample{
		{Date: day("2025-06-01"), Price: decimal.NewFromInt(100)},
		{Date: day("2025-06-01"), Price: decimal.NewFromInt(101)},
	})
	if err != nil {
		t.Fatalf("series should build: %v", err)
	}
	if got := series.RateOnOrBefore(day("2025-06-02")); !got.Equal(decimal.NewFromInt(101)) {
		t.Fatalf("the last inserted duplicate should win, got %s", got)
	}
}

func TestSamplesReturnsCopy(t *testing.T) {
	series, _ := Constant(day("2025-04-01"), decimal.NewFromInt(90))
	samples := series.Samples()
	samples[0].Price = decimal.NewFromInt(1)
	if !series.Earliest().Price.Equal(decimal.NewFromInt(90)) {
		t.Fatal("series must not be mutated through Samples()")
	}
}
