// Package calendar turns journal anniversaries into an iCalendar feed and reads
// annual dates out of vCard address books.
package calendar

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-together/internal/config"
	"github.com/tartampluch/go-together/internal/engine"
	"github.com/tartampluch/go-together/internal/journal"
)

// Generator renders anniversaries as a VCALENDAR.
type Generator struct {
	Clock    engine.Clock
	Location *time.Location

	// Reminder is an ISO-8601 duration such as "-P1D"; empty disables alarms.
	Reminder string

	// FormatSummary lets callers localise event titles. years is only meaningful
	// when yearKnown is true.
	FormatSummary func(name string, years int, yearKnown bool) string
}

// BuildStats summarises one Build.
type BuildStats struct {
	Anniversaries int `json:"anniversaries"`
	Events        int `json:"events"`
	DueToday      int `json:"dueToday"`
}

// NewGenerator returns a Generator using the real clock.
func NewGenerator(loc *time.Location, reminder string) *Generator {
	if loc == nil {
		loc = time.Local
	}
	return &Generator{
		Clock:    engine.RealClock{},
		Location: loc,
		Reminder: reminder,
	}
}

// Build encodes one all-day event per anniversary for the previous, current and next
// year. Years before a known start year are left out.
func (g *Generator) Build(ctx context.Context, anns []journal.Anniversary, p journal.Profile) ([]byte, BuildStats, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, calendarName(p))
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	// Calendar days come from the configured zone; only DTSTAMP is UTC.
	now := g.Clock.Now().In(g.Location)
	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	stats := BuildStats{}
	for _, a := range anns {
		if err := ctx.Err(); err != nil {
			return nil, BuildStats{}, err
		}

		md, startYear, err := splitDate(a.Date)
		if err != nil {
			slog.Debug(config.MsgSkippedDate,
				config.LogKeyComponent, config.CompCalendar,
				config.LogKeyName, a.Name,
				config.LogKeyDate, a.Date)
			continue
		}
		stats.Anniversaries++

		events, isToday := g.createEvents(a, md, startYear, now)
		if isToday {
			stats.DueToday++
			slog.Info(config.MsgAnniversaryDue,
				config.LogKeyComponent, config.CompCalendar,
				config.LogKeyName, a.Name,
				config.LogKeyDate, a.Date)
		}
		for _, e := range events {
			e.Props.Set(dtStampProp)
			cal.Children = append(cal.Children, e.Component)
		}
		stats.Events += len(events)
	}

	// Clients reject a VCALENDAR without components, so send the stub instead.
	if len(cal.Children) == 0 {
		g.logSuccess(stats)
		return []byte(config.StubVCalendar), stats, nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, BuildStats{}, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	g.logSuccess(stats)
	return buf.Bytes(), stats, nil
}

func (g *Generator) logSuccess(stats BuildStats) {
	slog.Info(config.MsgGenSuccess,
		config.LogKeyComponent, config.CompCalendar,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, stats.Anniversaries),
			slog.Int(config.LogKeyEvents, stats.Events),
			slog.Int(config.LogKeyToday, stats.DueToday),
		),
	)
}

// createEvents builds the three yearly events of a. startYear is zero when unknown.
func (g *Generator) createEvents(a journal.Anniversary, md engine.MonthDay, startYear int, now time.Time) ([]*ical.Event, bool) {
	uidBase := eventUID(a.Name, a.Date)
	currentYear := now.Year()
	todayYear, todayMonth, todayDay := now.Date()

	var events []*ical.Event
	isToday := false

	for _, y := range []int{currentYear - 1, currentYear, currentYear + 1} {
		yearKnown := startYear > 0
		if yearKnown && y < startYear {
			continue
		}

		years := 0
		if yearKnown {
			years = y - startYear
		}
		summary := g.summary(a.Name, years, yearKnown)

		eventDate := md.In(y, g.Location)
		if eventDate.Year() == todayYear && eventDate.Month() == todayMonth && eventDate.Day() == todayDay {
			isToday = true
		}

		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, uidBase, y, config.ICalDomain))
		event.Props.SetText(config.PropSummary, summary)
		if a.Type != "" {
			event.Props.SetText(config.PropCategories, a.Type)
		}

		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDate(eventDate)
		event.Props.Set(dtStartProp)

		if g.Reminder != "" {
			addAlarm(event, g.Reminder, summary)
		}
		events = append(events, event)
	}
	return events, isToday
}

func (g *Generator) summary(name string, years int, yearKnown bool) string {
	if g.FormatSummary != nil {
		return g.FormatSummary(name, years, yearKnown)
	}
	return DefaultSummary(name, years, yearKnown)
}

// DefaultSummary renders "Name (第N年)" once at least one year has passed.
func DefaultSummary(name string, years int, yearKnown bool) string {
	if !yearKnown || years <= 0 {
		return name
	}
	return fmt.Sprintf(config.SummaryFormatYears, name, years)
}

// addAlarm appends a DISPLAY alarm to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set the raw value so the encoder does not add VALUE=TEXT.
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}

// eventUID is stable across rebuilds so clients update events instead of duplicating them.
func eventUID(name, date string) string {
	input := fmt.Sprintf(config.FormatHashInput, name, date, config.UIDSalt)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", hash[:config.UIDHashLength])
}

// splitDate returns the month/day of an anniversary and its year, or zero for --MM-DD.
func splitDate(date string) (engine.MonthDay, int, error) {
	if t, err := time.Parse(config.DateFormatFullDash, date); err == nil {
		return engine.MonthDayOf(t), t.Year(), nil
	}
	if !strings.HasPrefix(date, "--") {
		return engine.MonthDay{}, 0, fmt.Errorf("%s: %q", config.ErrDateParse, date)
	}
	md, err := engine.ParseMonthDay(date)
	return md, 0, err
}

func calendarName(p journal.Profile) string {
	if p.MyName == "" && p.PartnerName == "" {
		return config.ICalCalName
	}
	me, partner := p.DisplayNames()
	return fmt.Sprintf(config.CalNameFormat, me, partner)
}
