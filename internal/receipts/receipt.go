package receipts

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// TimestampLayout is how receipt dates are printed.
	TimestampLayout = "2006-01-02 15:04"

	ProductPetrol      = "Petrol"
	PaymentCash        = "Cash"
	AttendantNotListed = "not available"
)

// Identity carries the customer fields copied onto every receipt.
type Identity struct {
	TelNo        string
	VehNo        string
	CustomerName string
}

// Receipt is one synthesized fuel purchase.
type Receipt struct {
	Year         int
	Month        time.Month
	Timestamp    time.Time
	Station      Station
	TelNo        string
	ReceiptNo    string
	Product      string
	Rate         decimal.Decimal
	Amount       decimal.Decimal
	Volume       decimal.Decimal
	VehType      string
	VehNo        string
	CustomerName string
	Mode         string
	AttendantID  string

	// Regulatory identifiers are not modelled and always print empty.
	FccID    string
	FipNo    string
	NozzleNo string
	LstNo    string
	VatNo    string
}

// receiptJSON fixes the wire names consumed by the receipt printer UI.
type receiptJSON struct {
	Year         int    `json:"year"`
	Month        int    `json:"month"`
	Date         string `json:"date"`
	StationName  string `json:"stationName"`
	Address      string `json:"address"`
	TelNo        string `json:"telNo"`
	ReceiptNo    string `json:"receiptNo"`
	FccID        string `json:"fccId"`
	FipNo        string `json:"fipNo"`
	NozzleNo     string `json:"nozzleNo"`
	Product      string `json:"product"`
	RatePerLtr   string `json:"ratePerLtr"`
	Amount       string `json:"amount"`
	Volume       string `json:"volume"`
	VehType      string `json:"vehType"`
	VehNo        string `json:"vehNo"`
	CustomerName string `json:"customerName"`
	Mode         string `json:"mode"`
	LstNo        string `json:"lstNo"`
	VatNo        string `json:"vatNo"`
	AttendantID  string `json:"attendantId"`
}

// DateString formats the timestamp as YYYY-MM-DD HH:MM.
func (r Receipt) DateString() string { return r.Timestamp.Format(TimestampLayout) }

// RateString formats the rate with two decimals.
func (r Receipt) RateString() string { return r.Rate.StringFixed(2) }

// AmountString formats the amount with two decimals.
func (r Receipt) AmountString() string { return r.Amount.StringFixed(2) }

// VolumeString formats the volume with two decimals and a litre suffix.
func (r Receipt) VolumeString() string { return r.Volume.StringFixed(2) + "L" }

// MarshalJSON renders the receipt with its printer field names.
func (r Receipt) MarshalJSON() ([]byte, error) {
	return json.Marshal(receiptJSON{
		Year:         r.Year,
		Month:        int(r.Month),
		Date:         r.DateString(),
		StationName:  r.Station.Name,
		Address:      r.Station.Address,
		TelNo:        r.TelNo,
		ReceiptNo:    r.ReceiptNo,
		FccID:        r.FccID,
		FipNo:        r.FipNo,
		NozzleNo:     r.NozzleNo,
		Product:      r.Product,
		RatePerLtr:   r.RateString(),
		Amount:       r.AmountString(),
		Volume:       r.VolumeString(),
		VehType:      r.VehType,
		VehNo:        r.VehNo,
		CustomerName: r.CustomerName,
		Mode:         r.Mode,
		LstNo:        r.LstNo,
		VatNo:        r.VatNo,
		AttendantID:  r.AttendantID,
	})
}
