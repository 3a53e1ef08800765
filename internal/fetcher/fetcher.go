package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotList is returned when the provider payload is not a JSON array.
var ErrNotList = errors.New("price payload is not a list")

// HistoricalQuery selects a window of daily prices for one location.
type HistoricalQuery struct {
	Location string
	APIKey   string
	Limit    int
}

// PriceRecord is one element of a provider payload, left undecoded so that
// callers decide how lenient to be about each field.
type PriceRecord struct {
	Date  json.RawMessage `json:"date"`
	Name  json.RawMessage `json:"name"`
	Price json.RawMessage `json:"price"`
}

// HistoricalPriceFetcher retrieves dated fuel prices from an external provider.
type HistoricalPriceFetcher interface {
	FetchHistorical(ctx context.Context, query HistoricalQuery) ([]PriceRecord, error)
}

// StatusError reports a non-200 provider response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("fuel api error (%d): %s", e.Code, e.Body)
	}
	return fmt.Sprintf("fuel api error (%d)", e.Code)
}

// DecodeRecords splits a JSON array into records. Elements that are not
// objects decode to an empty record instead of failing the whole payload.
func DecodeRecords(payload []byte) ([]PriceRecord, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, ErrNotList
	}
	// "null" unmarshals into a nil slice without error
	if items == nil {
		return nil, ErrNotList
	}

	records := make([]PriceRecord, 0, len(items))
	for _, item := range items {
		var rec PriceRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			rec = PriceRecord{}
		}
		records = append(records, rec)
	}
	return records, nil
}
