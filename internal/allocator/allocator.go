package allocator

import (
	"errors"

	"github.com/shopspring/decimal"
)

// DefaultMaxAttempts bounds the draw loop for one month.
const DefaultMaxAttempts = 100

var (
	// ErrInvalidRange is returned when min or max is not positive or max < min.
	ErrInvalidRange = errors.New("invalid min/max amount range")
	// ErrInvalidCap is returned when the cap is not positive.
	ErrInvalidCap = errors.New("monthly cap must be positive")
)

// Source is the randomness the allocator consumes.
type Source interface {
	// Float64 returns a value in [0.0, 1.0).
	Float64() float64
}

// Request describes one month's allocation.
type Request struct {
	Cap         decimal.Decimal
	Min         decimal.Decimal
	Max         decimal.Decimal
	MaxAttempts int
}

// Validate checks 0 < Min <= Max and Cap > 0.
func (r Request) Validate() error {
	if !r.Min.IsPositive() || !r.Max.IsPositive() || r.Max.LessThan(r.Min) {
		return ErrInvalidRange
	}
	if !r.Cap.IsPositive() {
		return ErrInvalidCap
	}
	return nil
}

func (r Request) attempts() int {
	if r.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return r.MaxAttempts
}

// Allocate draws amounts uniformly from [Min, Max] until no further amount of
// at least Min fits under Cap or MaxAttempts draws were made. A draw that would
// overflow the cap is clamped to the remaining budget, which makes it the last
// one. Every amount is rounded to two decimals and the running total never
// exceeds Cap.
func Allocate(req Request, src Source) []decimal.Decimal {
	amounts := make([]decimal.Decimal, 0)
	total := decimal.Zero
	span := req.Max.Sub(req.Min)

	for attempts := 0; attempts < req.attempts() && total.Add(req.Min).LessThanOrEqual(req.Cap); attempts++ {
		amount := req.Min.Add(span.Mul(decimal.NewFromFloat(src.Float64())))

		if total.Add(amount).GreaterThan(req.Cap) {
			remaining := req.Cap.Sub(total)
			if remaining.LessThan(req.Min) {
				break
			}
			amount = remaining
		}

		amount = amount.Round(2)
		// half-up rounding may overshoot a cap carrying more than two decimals
		if total.Add(amount).GreaterThan(req.Cap) {
			amount = req.Cap.Sub(total).Truncate(2)
			if amount.LessThan(req.Min) {
				break
			}
		}

		amounts = append(amounts, amount)
		total = total.Add(amount)
	}
	return amounts
}

// Sum adds up allocated amounts.
func Sum(amounts []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
