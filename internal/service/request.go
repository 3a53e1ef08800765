package service

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fuel-receipts/internal/allocator"
	"fuel-receipts/internal/receipts"
)

const (
	minFinancialYear = 1901
	maxFinancialYear = 9999
)

// Validation messages returned to callers verbatim.
const (
	MsgInvalidRange = "Invalid min/max amount range"
	MsgInvalidCap   = "Monthly cap must be positive"
	MsgMissingKey   = "fuel_api_key is required"
	MsgInvalidYear  = "Invalid financial year"
)

// ValidationError reports the first request constraint that failed.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// GenerateRequest is the inbound yearly generation payload. Absent fields
// take their defaults.
type GenerateRequest struct {
	Year         json.Number      `json:"year,omitempty"`
	MonthlyCap   *decimal.Decimal `json:"monthly_cap,omitempty"`
	MinAmount    *decimal.Decimal `json:"min_amount,omitempty"`
	MaxAmount    *decimal.Decimal `json:"max_amount,omitempty"`
	Location     string           `json:"location,omitempty"`
	FuelAPIKey   string           `json:"fuel_api_key,omitempty"`
	TelNo        string           `json:"telNo,omitempty"`
	VehNo        string           `json:"vehNo,omitempty"`
	CustomerName string           `json:"customerName,omitempty"`
	Seed         *uint64          `json:"seed,omitempty"`
}

// Defaults fill in omitted request fields.
type Defaults struct {
	MonthlyCap decimal.Decimal
	MinAmount  decimal.Decimal
	MaxAmount  decimal.Decimal
	Location   string
	TelNo      string
}

// DefaultDefaults mirrors the public web form.
func DefaultDefaults() Defaults {
	return Defaults{
		MonthlyCap: decimal.NewFromInt(25000),
		MinAmount:  decimal.NewFromInt(3000),
		MaxAmount:  decimal.NewFromInt(7000),
		Location:   "delhi",
		TelNo:      "1503339",
	}
}

func (d Defaults) withFallbacks() Defaults {
	base := DefaultDefaults()
	if d.MonthlyCap.IsZero() {
		d.MonthlyCap = base.MonthlyCap
	}
	if d.MinAmount.IsZero() {
		d.MinAmount = base.MinAmount
	}
	if d.MaxAmount.IsZero() {
		d.MaxAmount = base.MaxAmount
	}
	if strings.TrimSpace(d.Location) == "" {
		d.Location = base.Location
	}
	if d.TelNo == "" {
		d.TelNo = base.TelNo
	}
	return d
}

// Params is a validated, fully defaulted request.
type Params struct {
	Year       int
	Allocation allocator.Request
	Location   string
	APIKey     string
	Identity   receipts.Identity
	Seed       *uint64
}

// Normalize applies defaults and validates in a fixed order, returning the
// first failure as a *ValidationError.
func (r GenerateRequest) Normalize(d Defaults, now time.Time) (Params, error) {
	capAmount := pick(r.MonthlyCap, d.MonthlyCap)
	minAmount := pick(r.MinAmount, d.MinAmount)
	maxAmount := pick(r.MaxAmount, d.MaxAmount)

	location := strings.TrimSpace(r.Location)
	if location == "" {
		location = d.Location
	}
	telNo := r.TelNo
	if telNo == "" {
		telNo = d.TelNo
	}

	if !minAmount.IsPositive() || !maxAmount.IsPositive() || maxAmount.LessThan(minAmount) {
		return Params{}, &ValidationError{Message: MsgInvalidRange}
	}
	if !capAmount.IsPositive() {
		return Params{}, &ValidationError{Message: MsgInvalidCap}
	}
	apiKey := strings.TrimSpace(r.FuelAPIKey)
	if apiKey == "" {
		return Params{}, &ValidationError{Message: MsgMissingKey}
	}
	year, err := r.year(now)
	if err != nil {
		return Params{}, err
	}

	return Params{
		Year: year,
		Allocation: allocator.Request{
			Cap: capAmount,
			Min: minAmount,
			Max: maxAmount,
		},
		Location: location,
		APIKey:   apiKey,
		Identity: receipts.Identity{
			TelNo:        strings.TrimSpace(telNo),
			VehNo:        strings.TrimSpace(r.VehNo),
			CustomerName: strings.TrimSpace(r.CustomerName),
		},
		Seed: r.Seed,
	}, nil
}

func (r GenerateRequest) year(now time.Time) (int, error) {
	raw := strings.TrimSpace(r.Year.String())
	if raw == "" {
		return now.Year(), nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < minFinancialYear || year > maxFinancialYear {
		return 0, &ValidationError{Message: MsgInvalidYear}
	}
	return year, nil
}

func pick(v *decimal.Decimal, fallback decimal.Decimal) decimal.Decimal {
	if v == nil {
		return fallback
	}
	return *v
}
