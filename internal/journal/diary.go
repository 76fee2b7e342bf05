package journal

import (
	"context"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tartampluch/go-together/internal/config"
)

// AddDiary records a new entry. An empty mood defaults to happy.
func (s *Service) AddDiary(ctx context.Context, content, mood, weather string) (Diary, error) {
	content, mood, err := validateDiary(content, mood)
	if err != nil {
		return Diary{}, err
	}

	now := s.clock.Now().UTC()
	entry := Diary{
		ID:        s.newID(),
		Content:   content,
		Mood:      mood,
		Weather:   strings.TrimSpace(weather),
		Images:    []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.update(ctx, func(d *Data) error {
		d.Diaries = append([]Diary{entry}, d.Diaries...)
		return nil
	})
	return entry, err
}

// Diary returns one entry by ID.
func (s *Service) Diary(ctx context.Context, id string) (Diary, error) {
	var out Diary
	err := s.view(ctx, func(d *Data) error {
		i := indexByID(d.Diaries, id, func(e Diary) string { return e.ID })
		if i < 0 {
			return ErrNotFound
		}
		out = d.Diaries[i]
		return nil
	})
	return out, err
}

// UpdateDiary replaces content and mood, and bumps UpdatedAt.
func (s *Service) UpdateDiary(ctx context.Context, id, content, mood string) (Diary, error) {
	content, mood, err := validateDiary(content, mood)
	if err != nil {
		return Diary{}, err
	}

	var out Diary
	err = s.update(ctx, func(d *Data) error {
		i := indexByID(d.Diaries, id, func(e Diary) string { return e.ID })
		if i < 0 {
			return ErrNotFound
		}
		d.Diaries[i].Content = content
		d.Diaries[i].Mood = mood
		d.Diaries[i].UpdatedAt = s.clock.Now().UTC()
		out = d.Diaries[i]
		return nil
	})
	return out, err
}

// DeleteDiary removes an entry.
func (s *Service) DeleteDiary(ctx context.Context, id string) error {
	return s.update(ctx, func(d *Data) error {
		i := indexByID(d.Diaries, id, func(e Diary) string { return e.ID })
		if i < 0 {
			return ErrNotFound
		}
		d.Diaries = slices.Delete(d.Diaries, i, i+1)
		return nil
	})
}

// ListDiaries returns entries newest first, filtered to a window and paginated.
// Page numbers start at 1; out-of-range values fall back to the defaults.
func (s *Service) ListDiaries(ctx context.Context, filter DiaryFilter, page, limit int) (Page[Diary], error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = config.DefaultPageSize
	}

	var out Page[Diary]
	err := s.view(ctx, func(d *Data) error {
		since, ok := s.windowStart(filter)
		var matched []Diary
		for _, e := range d.Diaries {
			if ok && e.CreatedAt.Before(since) {
				continue
			}
			matched = append(matched, e)
		}
		sortNewestFirst(matched)

		out = Page[Diary]{Total: len(matched), Page: page, Limit: limit, Items: []Diary{}}
		// Compare in pages so a huge page number cannot overflow the offset.
		if len(matched) == 0 || page-1 > (len(matched)-1)/limit {
			return nil
		}
		start := (page - 1) * limit
		end := min(start+limit, len(matched))
		out.Items = append(out.Items, matched[start:end]...)
		return nil
	})
	return out, err
}

// DiariesOn returns the entries written on the given calendar day (YYYY-MM-DD).
func (s *Service) DiariesOn(ctx context.Context, day string) ([]Diary, error) {
	start, err := s.parseDay("date", day)
	if err != nil {
		return nil, err
	}
	end := start.AddDate(0, 0, 1)

	out := []Diary{}
	err = s.view(ctx, func(d *Data) error {
		for _, e := range d.Diaries {
			if !e.CreatedAt.Before(start) && e.CreatedAt.Before(end) {
				out = append(out, e)
			}
		}
		sortNewestFirst(out)
		return nil
	})
	return out, err
}

// windowStart returns the earliest instant a filter admits. ok is false for FilterAll.
func (s *Service) windowStart(filter DiaryFilter) (time.Time, bool) {
	today := s.today()
	switch filter {
	case FilterToday:
		return today, true
	case FilterWeek:
		return today.AddDate(0, 0, -int(today.Weekday())), true
	case FilterMonth:
		return time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, s.loc), true
	default:
		return time.Time{}, false
	}
}

func validateDiary(content, mood string) (string, string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", "", invalid("content", ReasonRequired)
	}
	if utf8.RuneCountInString(content) > config.MaxDiaryRunes {
		return "", "", invalid("content", ReasonTooLong)
	}
	mood = strings.TrimSpace(mood)
	if mood == "" {
		mood = config.DefaultMood
	}
	if !slices.Contains(config.Moods, mood) {
		return "", "", invalid("mood", ReasonInvalid)
	}
	return content, mood, nil
}

func sortNewestFirst(entries []Diary) {
	slices.SortStableFunc(entries, func(a, b Diary) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}

func indexByID[T any](items []T, id string, key func(T) string) int {
	return slices.IndexFunc(items, func(item T) bool { return key(item) == id })
}
