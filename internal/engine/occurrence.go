package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/tartampluch/go-together/internal/config"
)

// MonthDay is an annual date without a year.
type MonthDay struct {
	Month time.Month
	Day   int
}

// NewMonthDay validates the pair against a leap year, so Feb 29 is accepted.
func NewMonthDay(month, day int) (MonthDay, error) {
	if month < 1 || month > 12 || day < 1 {
		return MonthDay{}, fmt.Errorf("%w: %02d-%02d", ErrInvalidDate, month, day)
	}
	probe := time.Date(config.DefaultLeapYear, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if probe.Month() != time.Month(month) {
		return MonthDay{}, fmt.Errorf("%w: %02d-%02d", ErrInvalidDate, month, day)
	}
	return MonthDay{Month: time.Month(month), Day: day}, nil
}

// ParseMonthDay accepts 2006-01-02, 01-02 and the vCard forms --01-02 / --0102.
func ParseMonthDay(s string) (MonthDay, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(config.DateFormatFullDash, s); err == nil {
		return MonthDay{Month: t.Month(), Day: t.Day()}, nil
	}
	// Year zero is a leap year, so --02-29 parses.
	for _, layout := range []string{config.DateFormatMonthDay, config.DateFormatNoYearD, config.DateFormatNoYearB} {
		if t, err := time.Parse(layout, s); err == nil {
			return MonthDay{Month: t.Month(), Day: t.Day()}, nil
		}
	}
	return MonthDay{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// MonthDayOf extracts the annual date of t.
func MonthDayOf(t time.Time) MonthDay {
	return MonthDay{Month: t.Month(), Day: t.Day()}
}

func (md MonthDay) String() string {
	return fmt.Sprintf("%02d-%02d", int(md.Month), md.Day)
}

// In returns md in the given year at midnight in loc.
// Feb 29 in a non-leap year normalises to Mar 1.
func (md MonthDay) In(year int, loc *time.Location) time.Time {
	return time.Date(year, md.Month, md.Day, 0, 0, 0, 0, loc)
}

// Occurrence is the next annual date and how far away it is.
type Occurrence struct {
	Date      time.Time `json:"date"`
	DaysUntil int       `json:"daysUntil"`
	// Ordinal counts years since the anchor; zero when no anchor year is known.
	Ordinal int `json:"ordinal,omitempty"`
}

// Today reports whether the occurrence falls on the sampled day.
func (o Occurrence) Today() bool {
	return o.DaysUntil == 0
}

// NextOccurrence finds the first date on or after today's date carrying md's month and day.
// Time of day is ignored; the result is midnight in today's location.
func NextOccurrence(md MonthDay, today time.Time) (Occurrence, error) {
	if _, err := NewMonthDay(int(md.Month), md.Day); err != nil {
		return Occurrence{}, err
	}

	loc := today.Location()
	todayStart := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, loc)

	candidate := md.In(today.Year(), loc)
	if candidate.Before(todayStart) {
		candidate = md.In(today.Year()+1, loc)
	}

	return Occurrence{
		Date:      candidate,
		DaysUntil: civilDaysBetween(todayStart, candidate),
	}, nil
}

// AnniversaryOf is NextOccurrence for the anchor's own month/day, with Ordinal set
// to the number of years the occurrence completes.
func AnniversaryOf(anchor, today time.Time) (Occurrence, error) {
	if anchor.IsZero() {
		return Occurrence{}, ErrInvalidAnchor
	}
	occ, err := NextOccurrence(MonthDayOf(anchor), today)
	if err != nil {
		return Occurrence{}, err
	}
	if n := occ.Date.Year() - anchor.Year(); n > 0 {
		occ.Ordinal = n
	}
	return occ, nil
}

// civilDaysBetween counts calendar days, immune to DST shifts in either location.
func civilDaysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a) / (24 * time.Hour))
}
