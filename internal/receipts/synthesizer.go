package receipts

import (
	"errors"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"fuel-receipts/internal/allocator"
	"fuel-receipts/internal/fiscal"
)

const (
	receiptNoMin = 100000
	receiptNoMax = 999999
)

// ErrEmptyCatalog is returned when no station is available to draw from.
var ErrEmptyCatalog = errors.New("station catalog is empty")

// Source is the randomness consumed while synthesizing receipts.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	allocator.Source
	IntN(n int) int
}

// RateLookup resolves the fuel price in effect on a date.
type RateLookup interface {
	RateOnOrBefore(date time.Time) decimal.Decimal
}

// NewSource returns a seeded random source.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Month groups the receipts generated for one calendar month.
type Month struct {
	fiscal.Month
	Receipts []Receipt
}

// Total adds up the month's receipt amounts.
func (m Month) Total() decimal.Decimal {
	total := decimal.Zero
	for _, r := range m.Receipts {
		total = total.Add(r.Amount)
	}
	return total
}

// Year is a synthesized financial year.
type Year struct {
	EndYear int
	Months  []Month
}

// StartYear is the calendar year the financial year opens in.
func (y Year) StartYear() int { return y.EndYear - 1 }

// Receipts flattens the months in chronological order.
func (y Year) Receipts() []Receipt {
	n := 0
	for _, m := range y.Months {
		n += len(m.Receipts)
	}
	out := make([]Receipt, 0, n)
	for _, m := range y.Months {
		out = append(out, m.Receipts...)
	}
	return out
}

// Synthesize generates receipts for each month of the financial year ending in
// endYear. Amounts come from the allocator, prices from rates, and stations,
// timestamps and receipt numbers are drawn from src.
func Synthesize(endYear int, rates RateLookup, params allocator.Request, catalog []Station, id Identity, src Source) (Year, error) {
	if len(catalog) == 0 {
		return Year{}, ErrEmptyCatalog
	}
	if err := params.Validate(); err != nil {
		return Year{}, err
	}

	months := fiscal.Months(endYear)
	year := Year{EndYear: endYear, Months: make([]Month, 0, len(months))}
	for _, fm := range months {
		amounts := allocator.Allocate(params, src)
		month := Month{Month: fm, Receipts: make([]Receipt, 0, len(amounts))}
		for _, amount := range amounts {
			month.Receipts = append(month.Receipts, newReceipt(fm, amount, rates, catalog, id, src))
		}
		year.Months = append(year.Months, month)
	}
	return year, nil
}

func newReceipt(fm fiscal.Month, amount decimal.Decimal, rates RateLookup, catalog []Station, id Identity, src Source) Receipt {
	day := 1 + src.IntN(fm.Days())
	hour := src.IntN(24)
	minute := src.IntN(60)
	ts := time.Date(fm.Year, fm.Month, day, hour, minute, 0, 0, time.UTC)

	rate := rates.RateOnOrBefore(ts)
	station := catalog[src.IntN(len(catalog))]
	receiptNo := receiptNoMin + src.IntN(receiptNoMax-receiptNoMin+1)

	return Receipt{
		Year:         fm.Year,
		Month:        fm.Month,
		Timestamp:    ts,
		Station:      station,
		TelNo:        id.TelNo,
		ReceiptNo:    strconv.Itoa(receiptNo),
		Product:      ProductPetrol,
		Rate:         rate,
		Amount:       amount,
		Volume:       Volume(amount, rate),
		VehType:      ProductPetrol,
		VehNo:        id.VehNo,
		CustomerName: id.CustomerName,
		Mode:         PaymentCash,
		AttendantID:  AttendantNotListed,
	}
}

// Volume returns amount/rate rounded to two decimals, or zero for a
// non-positive rate.
func Volume(amount, rate decimal.Decimal) decimal.Decimal {
	if !rate.IsPositive() {
		return decimal.Zero
	}
	return amount.DivRound(rate, 2)
}
