package fiscal

import (
	"fmt"
	"time"
)

// StartMonth is the first calendar month of a financial year.
const StartMonth = time.April

// Month is one calendar month inside a financial year.
type Month struct {
	Year  int
	Month time.Month
}

// Days returns the number of days in the month, leap years included.
func (m Month) Days() int {
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// First returns midnight UTC on the first day of the month.
func (m Month) First() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Months lists the twelve months of the financial year ending in endYear,
// April of endYear-1 through March of endYear.
func Months(endYear int) []Month {
	months := make([]Month, 0, 12)
	for m := StartMonth; m <= time.December; m++ {
		months = append(months, Month{Year: endYear - 1, Month: m})
	}
	for m := time.January; m < StartMonth; m++ {
		months = append(months, Month{Year: endYear, Month: m})
	}
	return months
}

// Start returns April 1 of endYear-1.
func Start(endYear int) time.Time {
	return time.Date(endYear-1, StartMonth, 1, 0, 0, 0, 0, time.UTC)
}

// EndYearFor returns the financial year (by ending year) that contains t.
func EndYearFor(t time.Time) int {
	if t.Month() >= StartMonth {
		return t.Year() + 1
	}
	return t.Year()
}
