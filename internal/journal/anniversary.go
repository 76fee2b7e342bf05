package journal

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/tartampluch/go-together/internal/config"
	"github.com/tartampluch/go-together/internal/engine"
)

// AddAnniversary stores an annual date. date is YYYY-MM-DD or --MM-DD; an empty kind
// means KindAnniversary.
func (s *Service) AddAnniversary(ctx context.Context, name, date, kind string) (Anniversary, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Anniversary{}, invalid("name", ReasonRequired)
	}
	date, err := normalizeAnniversaryDate(date)
	if err != nil {
		return Anniversary{}, err
	}
	kind = strings.TrimSpace(kind)
	if kind == "" {
		kind = KindAnniversary
	}
	if _, ok := config.AnniversaryIcons[kind]; !ok {
		return Anniversary{}, invalid("type", ReasonInvalid)
	}

	a := Anniversary{
		ID:        s.newID(),
		Name:      name,
		Date:      date,
		Type:      kind,
		CreatedAt: s.clock.Now().UTC(),
	}
	err = s.update(ctx, func(d *Data) error {
		d.Anniversaries = append(d.Anniversaries, a)
		return nil
	})
	return a, err
}

// ImportAnniversaries appends the entries not already recorded under the same name,
// date and kind, and reports how many were added. Invalid entries are skipped.
func (s *Service) ImportAnniversaries(ctx context.Context, list []Anniversary) (int, error) {
	added := 0
	err := s.update(ctx, func(d *Data) error {
		seen := make(map[string]bool, len(d.Anniversaries))
		key := func(a Anniversary) string { return a.Name + "|" + a.Date + "|" + a.Type }
		for _, a := range d.Anniversaries {
			seen[key(a)] = true
		}
		now := s.clock.Now().UTC()
		for _, a := range list {
			a.Name = strings.TrimSpace(a.Name)
			date, err := normalizeAnniversaryDate(a.Date)
			if err != nil || a.Name == "" {
				continue
			}
			a.Date = date
			if a.Type == "" {
				a.Type = KindAnniversary
			}
			if _, ok := config.AnniversaryIcons[a.Type]; !ok || seen[key(a)] {
				continue
			}
			seen[key(a)] = true
			a.ID = s.newID()
			a.CreatedAt = now
			d.Anniversaries = append(d.Anniversaries, a)
			added++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	slog.Info(config.MsgImportDone,
		config.LogKeyComponent, config.CompJournal,
		config.LogKeyCount, added,
	)
	return added, nil
}

// DeleteAnniversary removes an anniversary.
func (s *Service) DeleteAnniversary(ctx context.Context, id string) error {
	return s.update(ctx, func(d *Data) error {
		i := indexByID(d.Anniversaries, id, func(a Anniversary) string { return a.ID })
		if i < 0 {
			return ErrNotFound
		}
		d.Anniversaries = slices.Delete(d.Anniversaries, i, i+1)
		return nil
	})
}

// Anniversaries returns every anniversary ordered by date.
func (s *Service) Anniversaries(ctx context.Context) ([]Anniversary, error) {
	var out []Anniversary
	err := s.view(ctx, func(d *Data) error {
		out = slices.Clone(d.Anniversaries)
		slices.SortStableFunc(out, func(a, b Anniversary) int {
			return cmp.Compare(a.Date, b.Date)
		})
		return nil
	})
	return out, err
}

// Upcoming returns up to limit anniversaries by proximity. limit <= 0 returns all.
// Entries whose date no longer parses are skipped.
func (s *Service) Upcoming(ctx context.Context, limit int) ([]Upcoming, error) {
	all, err := s.Anniversaries(ctx)
	if err != nil {
		return nil, err
	}
	return UpcomingFrom(all, s.Now(), limit), nil
}

// UpcomingFrom ranks anniversaries by their next occurrence relative to now.
func UpcomingFrom(all []Anniversary, now time.Time, limit int) []Upcoming {
	out := make([]Upcoming, 0, len(all))
	for _, a := range all {
		occ, err := NextOf(a, now)
		if err != nil {
			continue
		}
		out = append(out, Upcoming{Anniversary: a, Next: occ})
	}
	slices.SortStableFunc(out, func(a, b Upcoming) int {
		return cmp.Compare(a.Next.DaysUntil, b.Next.DaysUntil)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// NextOf computes the next occurrence of a. Year-less dates carry no ordinal.
func NextOf(a Anniversary, now time.Time) (engine.Occurrence, error) {
	if t, err := time.ParseInLocation(config.DateFormatFullDash, a.Date, now.Location()); err == nil {
		return engine.AnniversaryOf(t, now)
	}
	md, err := engine.ParseMonthDay(a.Date)
	if err != nil {
		return engine.Occurrence{}, err
	}
	return engine.NextOccurrence(md, now)
}

func normalizeAnniversaryDate(date string) (string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return "", invalid("date", ReasonRequired)
	}
	if t, err := time.Parse(config.DateFormatFullDash, date); err == nil {
		return t.Format(config.DateFormatFullDash), nil
	}
	if !strings.HasPrefix(date, "--") {
		return "", invalid("date", ReasonInvalid)
	}
	md, err := engine.ParseMonthDay(date)
	if err != nil {
		return "", invalid("date", ReasonInvalid)
	}
	return "--" + md.String(), nil
}
