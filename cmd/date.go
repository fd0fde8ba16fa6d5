package cmd

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/ademuri/streaming-history-tools/internal/analysis"
)

type ParsedDate struct {
	Date  time.Time
	Year  bool
	Month bool
	Day   bool

	// MonthOnly is a bare month number, matching that month in every year.
	MonthOnly bool
}

var (
	yearPattern      = regexp.MustCompile(`^\d{4}$`)
	monthPattern     = regexp.MustCompile(`^\d{4}-\d{2}$`)
	dayPattern       = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	monthOnlyPattern = regexp.MustCompile(`^\d{1,2}$`)
)

// parsePeriodFromArgs turns an optional period argument into a filter. No
// argument means all time.
func parsePeriodFromArgs(args []string) (analysis.Filter, error) {
	switch len(args) {
	case 0:
		return analysis.Filter{}, nil
	case 1:
		return getPeriodFilter(args[0])
	default:
		return analysis.Filter{}, fmt.Errorf("Expected at most one period argument")
	}
}

func getPeriodFilter(ds string) (f analysis.Filter, err error) {
	date, err := parseSingleDatestring(ds)
	if err != nil {
		return
	}

	switch {
	case date.Year:
		f = analysis.ForYear(date.Date.Year())

	case date.Month:
		f = analysis.ForMonth(date.Date.Year(), date.Date.Month())

	case date.Day:
		f = analysis.ForDate(date.Date)

	case date.MonthOnly:
		f = analysis.Filter{Month: date.Date.Month()}

	default:
		err = fmt.Errorf("Invalid format: %q", ds)
	}

	return
}

func parseSingleDatestring(ds string) (date ParsedDate, err error) {
	switch {
	case yearPattern.MatchString(ds):
		date.Date, err = time.Parse("2006", ds)
		if err != nil {
			err = fmt.Errorf("Parsing datestring as year: %w", err)
			return
		}
		date.Year = true

	case monthPattern.MatchString(ds):
		date.Date, err = time.Parse("2006-01", ds)
		if err != nil {
			err = fmt.Errorf("Parsing datestring as month: %w", err)
			return
		}
		date.Month = true

	case dayPattern.MatchString(ds):
		date.Date, err = time.Parse("2006-01-02", ds)
		if err != nil {
			err = fmt.Errorf("Parsing datestring as day: %w", err)
			return
		}
		date.Day = true

	case monthOnlyPattern.MatchString(ds):
		m, _ := strconv.Atoi(ds)
		if m < 1 || m > 12 {
			err = fmt.Errorf("Invalid month: %q", ds)
			return
		}
		date.Date = time.Date(0, time.Month(m), 1, 0, 0, 0, 0, time.UTC)
		date.MonthOnly = true

	default:
		err = fmt.Errorf("Invalid format: %q", ds)
		return
	}

	// Year 0 would read as "no year" to the filters.
	if !date.MonthOnly && date.Date.Year() == 0 {
		err = fmt.Errorf("Invalid year: %q", ds)
	}
	return
}

// parseDay parses a yyyy-mm-dd argument.
func parseDay(ds string) (time.Time, error) {
	date, err := parseSingleDatestring(ds)
	if err != nil {
		return time.Time{}, err
	}
	if !date.Day {
		return time.Time{}, fmt.Errorf("Expected a day like 2023-01-05, got %q", ds)
	}
	return date.Date, nil
}
