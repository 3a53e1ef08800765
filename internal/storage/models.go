package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceSample is one archived daily petrol price for a location.
type PriceSample struct {
	Location  string
	Date      time.Time
	Price     decimal.Decimal
	FetchedAt time.Time
}
