package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/tartampluch/go-together/internal/config"
)

// Elapsed is the breakdown of the span between an anchor and a sample instant.
//
// Years and Months use a fixed 365-day year and 30-day month; Days is what remains of
// the day count after both are taken out. Hours, Minutes and Seconds decompose the
// seconds left over after TotalDays whole days.
type Elapsed struct {
	Years        int64 `json:"years"`
	Months       int64 `json:"months"`
	Days         int64 `json:"days"`
	Hours        int64 `json:"hours"`
	Minutes      int64 `json:"minutes"`
	Seconds      int64 `json:"seconds"`
	TotalDays    int64 `json:"totalDays"`
	TotalSeconds int64 `json:"totalSeconds"`
}

// ComputeElapsed returns the breakdown of now-anchor.
// A sample instant before the anchor yields the zero Elapsed.
func ComputeElapsed(anchor, now time.Time) Elapsed {
	if now.Before(anchor) {
		return Elapsed{}
	}

	// Sub saturates near ±292 years; fall back to Unix seconds past that.
	var totalSeconds int64
	if d := now.Sub(anchor); d < maxDuration {
		totalSeconds = int64(d / time.Second)
	} else {
		totalSeconds = now.Unix() - anchor.Unix()
	}

	totalDays := totalSeconds / config.SecondsPerDay
	rest := totalSeconds % config.SecondsPerDay
	dayOfYear := totalDays % config.DaysPerYear

	return Elapsed{
		Years:        totalDays / config.DaysPerYear,
		Months:       dayOfYear / config.DaysPerMonth,
		Days:         dayOfYear % config.DaysPerMonth,
		Hours:        rest / config.SecondsPerHour,
		Minutes:      rest % config.SecondsPerHour / config.SecondsPerMinute,
		Seconds:      rest % config.SecondsPerMinute,
		TotalDays:    totalDays,
		TotalSeconds: totalSeconds,
	}
}

const maxDuration = time.Duration(1<<63 - 1)

// Clock renders the time-of-day part as HH:MM:SS.
func (e Elapsed) Clock() string {
	return fmt.Sprintf("%02d:%02d:%02d", e.Hours, e.Minutes, e.Seconds)
}

// ParseAnchor parses the anchor stored by the journal.
//
// A bare date (2006-01-02) is midnight UTC, matching how browsers read ISO dates.
// RFC 3339 strings carry their own offset. Date-times without an offset are read in loc.
func ParseAnchor(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidAnchor)
	}
	if loc == nil {
		loc = time.Local
	}

	if t, err := time.Parse(config.DateFormatFullDash, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range []string{config.DateFormatLocalT, config.DateFormatLocalTM} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidAnchor, s)
}

// TimeUnit names the granularity picked by Since.
type TimeUnit int

const (
	UnitJustNow TimeUnit = iota
	UnitMinutes
	UnitHours
	UnitDays
)

// Since picks the coarsest whole unit for the span from t to now:
// days, else hours, else minutes, else "just now". Future instants count as just now.
func Since(t, now time.Time) (TimeUnit, int64) {
	d := now.Sub(t)
	switch {
	case d >= 24*time.Hour:
		return UnitDays, int64(d / (24 * time.Hour))
	case d >= time.Hour:
		return UnitHours, int64(d / time.Hour)
	case d >= time.Minute:
		return UnitMinutes, int64(d / time.Minute)
	default:
		return UnitJustNow, 0
	}
}
