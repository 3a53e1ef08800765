package pricing

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ErrEmptySeries is returned when a series would hold no samples.
var ErrEmptySeries = errors.New("price series requires at least one sample")

// Sample is a fuel price observed on one calendar day.
type Sample struct {
	Date  time.Time
	Price decimal.Decimal
}

// Series is an immutable, date-ordered set of samples.
type Series struct {
	samples []Sample
}

// NewSeries validates and sorts samples ascending by date. Samples sharing a
// date keep their input order.
func NewSeries(samples []Sample) (*Series, error) {
	if len(samples) == 0 {
		return nil, ErrEmptySeries
	}

	sorted := make([]Sample, len(samples))
	for i, s := range samples {
		if !s.Price.IsPositive() {
			return nil, fmt.Errorf("sample %s: price must be positive, got %s", s.Date.Format(dateLayout), s.Price)
		}
		sorted[i] = Sample{Date: truncateDay(s.Date), Price: s.Price}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	return &Series{samples: sorted}, nil
}

// Constant returns a single-sample series anchored at date.
func Constant(date time.Time, price decimal.Decimal) (*Series, error) {
	return NewSeries([]Sample{{Date: date, Price: price}})
}

// RateOnOrBefore returns the price of the latest sample dated on or before
// date. When date precedes every sample the earliest price is returned.
func (s *Series) RateOnOrBefore(date time.Time) decimal.Decimal {
	target := truncateDay(date)
	for i := len(s.samples) - 1; i >= 0; i-- {
		if !s.samples[i].Date.After(target) {
			return s.samples[i].Price
		}
	}
	return s.samples[0].Price
}

// Len reports the number of samples.
func (s *Series) Len() int { return len(s.samples) }

// Samples returns a copy of the ordered samples.
func (s *Series) Samples() []Sample {
	out := make([]Sample, len(s.samples))
	copy(out, s.samples)
	return out
}

// Earliest returns the first sample by date.
func (s *Series) Earliest() Sample { return s.samples[0] }

// Latest returns the last sample by date.
func (s *Series) Latest() Sample { return s.samples[len(s.samples)-1] }

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
