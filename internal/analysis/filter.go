package analysis

import (
	"fmt"
	"time"

	"github.com/ademuri/streaming-history-tools/internal/history"
)

// Filter selects entries by the calendar fields of their UTC timestamp. Year
// and Month are checked independently, so a Month without a Year matches that
// month in every year. The zero Filter passes everything.
type Filter struct {
	Year  int
	Month time.Month

	// Date, when set, restricts to one calendar day and overrides Year/Month.
	Date time.Time
}

// ForYear matches every entry in year.
func ForYear(year int) Filter {
	return Filter{Year: year}
}

// ForMonth matches every entry in the given month of year.
func ForMonth(year int, month time.Month) Filter {
	return Filter{Year: year, Month: month}
}

// ForDate matches every entry played on the calendar day of date.
func ForDate(date time.Time) Filter {
	return Filter{Date: date}
}

// IsZero reports whether f passes every entry.
func (f Filter) IsZero() bool {
	return f.Year == 0 && f.Month == 0 && f.Date.IsZero()
}

// Match reports whether e passes the filter.
func (f Filter) Match(e history.Entry) bool {
	ts := e.Timestamp
	if !f.Date.IsZero() {
		y, m, d := ts.Date()
		fy, fm, fd := f.Date.Date()
		return y == fy && m == fm && d == fd
	}
	if f.Year != 0 && ts.Year() != f.Year {
		return false
	}
	if f.Month != 0 && ts.Month() != f.Month {
		return false
	}
	return true
}

func (f Filter) String() string {
	switch {
	case !f.Date.IsZero():
		return f.Date.Format("2006-01-02")
	case f.Year != 0 && f.Month != 0:
		return fmt.Sprintf("%04d-%02d", f.Year, int(f.Month))
	case f.Year != 0:
		return fmt.Sprintf("%04d", f.Year)
	case f.Month != 0:
		return f.Month.String()
	}
	return "all time"
}
