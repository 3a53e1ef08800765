package allocator

import (
	"math/rand/v2"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fixedSource struct {
	values []float64
	i      int
}

func (f *fixedSource) Float64() float64 {
	v := f.values[f.i%len(f.values)]
	f.i++
	return v
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAllocateExactDivision(t *testing.T) {
	req := Request{Cap: dec("9000"), Min: dec("3000"), Max: dec("3000")}
	amounts := Allocate(req, rand.New(rand.NewPCG(1, 2)))

	require.Len(t, amounts, 3)
	for _, a := range amounts {
		require.Equal(t, "3000.00", a.StringFixed(2))
	}
}

func TestAllocateMinAboveCapYieldsNothing(t *testing.T) {
	req := Request{Cap: dec("5000"), Min: dec("3000"), Max: dec("7000")}
	// a clamped draw fills the cap and nothing further fits
	amounts := Allocate(req, &fixedSource{values: []float64{0.9}})
	require.Len(t, amounts, 1)
	require.Equal(t, "5000.00", amounts[0].StringFixed(2))

	req = Request{Cap: dec("2500"), Min: dec("3000"), Max: dec("7000")}
	require.Empty(t, Allocate(req, &fixedSource{values: []float64{0.5}}))
}

func TestAllocateClampsToRemaining(t *testing.T) {
	// draws: 5000, 5000, 5000, 5000, 5000 -> 25000 exactly after five
	req := Request{Cap: dec("25000"), Min: dec("3000"), Max: dec("7000")}
	amounts := Allocate(req, &fixedSource{values: []float64{0.5}})
	require.Len(t, amounts, 5)
	require.True(t, Sum(amounts).Equal(dec("25000")))

	// draws: 6000 x4 = 24000, the remaining 1000 is below min
	amounts = Allocate(req, &fixedSource{values: []float64{0.75}})
	require.Len(t, amounts, 4)
	require.True(t, Sum(amounts).Equal(dec("24000")))

	// draws: 7000 x3 = 21000, then 7000 overflows, remaining 4000 >= min is clamped
	amounts = Allocate(req, &fixedSource{values: []float64{0.9999999}})
	require.Len(t, amounts, 4)
	require.Equal(t, "4000.00", amounts[3].StringFixed(2))
	require.True(t, Sum(amounts).Equal(dec("25000")))
}

func TestAllocateRespectsMaxAttempts(t *testing.T) {
	req := Request{Cap: dec("1000000"), Min: dec("1"), Max: dec("2"), MaxAttempts: 7}
	require.Len(t, Allocate(req, rand.New(rand.NewPCG(3, 4))), 7)

	req.MaxAttempts = 0
	require.Len(t, Allocate(req, rand.New(rand.NewPCG(3, 4))), DefaultMaxAttempts)
}

func TestAllocateInvariantsHoldAcrossSeeds(t *testing.T) {
	ranges := []Request{
		{Cap: dec("25000"), Min: dec("3000"), Max: dec("7000")},
		{Cap: dec("10000.555"), Min: dec("999.99"), Max: dec("4000.01")},
		{Cap: dec("7000"), Min: dec("3000"), Max: dec("7000")},
		{Cap: dec("100"), Min: dec("0.01"), Max: dec("50")},
	}
	for seed := uint64(0); seed < 200; seed++ {
		src := rand.New(rand.NewPCG(seed, seed*31+7))
		for _, req := range ranges {
			amounts := Allocate(req, src)
			total := decimal.Zero
			for i, a := range amounts {
				require.True(t, a.Equal(a.Round(2)), "amount %s has more than two decimals", a)
				if i < len(amounts)-1 {
					require.True(t, a.GreaterThanOrEqual(req.Min) && a.LessThanOrEqual(req.Max), "amount %s out of range", a)
				} else {
					require.True(t, a.IsPositive())
				}
				total = total.Add(a)
				require.True(t, total.LessThanOrEqual(req.Cap), "total %s exceeds cap %s", total, req.Cap)
			}
			require.LessOrEqual(t, len(amounts), DefaultMaxAttempts)
		}
	}
}

func TestRequestValidate(t *testing.T) {
	require.ErrorIs(t, Request{Cap: dec("1"), Min: dec("0"), Max: dec("1")}.Validate(), ErrInvalidRange)
	require.ErrorIs(t, Request{Cap: dec("1"), Min: dec("2"), Max: dec("1")}.Validate(), ErrInvalidRange)
	require.ErrorIs(t, Request{Cap: dec("0"), Min: dec("1"), Max: dec("1")}.Validate(), ErrInvalidCap)
	require.NoError(t, Request{Cap: dec("1"), Min: dec("1"), Max: dec("1")}.Validate())
}
