package journal

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/tartampluch/go-together/internal/config"
)

// CreateCapsule seals content until openDate (YYYY-MM-DD), which must be after today.
func (s *Service) CreateCapsule(ctx context.Context, content, openDate string) (Capsule, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Capsule{}, invalid("content", ReasonRequired)
	}
	if utf8.RuneCountInString(content) > config.MaxDiaryRunes {
		return Capsule{}, invalid("content", ReasonTooLong)
	}
	day, err := s.parseDay("openDate", openDate)
	if err != nil {
		return Capsule{}, err
	}
	if !day.After(s.today()) {
		return Capsule{}, invalid("openDate", ReasonNotAfter)
	}

	c := Capsule{
		ID:        s.newID(),
		Content:   content,
		OpenDate:  day.Format(config.DateFormatFullDash),
		CreatedAt: s.clock.Now().UTC(),
	}
	err = s.update(ctx, func(d *Data) error {
		d.TimeCapsules = append(d.TimeCapsules, c)
		return nil
	})
	return c, err
}

// Capsules returns the capsules in the given state, in creation order.
func (s *Service) Capsules(ctx context.Context, status CapsuleStatus) ([]Capsule, error) {
	out := []Capsule{}
	err := s.view(ctx, func(d *Data) error {
		for _, c := range d.TimeCapsules {
			if status == "" || status == CapsuleAll || s.CapsuleStatus(c) == status {
				out = append(out, c)
			}
		}
		return nil
	})
	return out, err
}

// CapsuleStatus derives the state of c from today's date. A capsule whose open date
// cannot be parsed stays sealed.
func (s *Service) CapsuleStatus(c Capsule) CapsuleStatus {
	if c.IsOpened {
		return CapsuleOpened
	}
	day, err := s.parseDay("openDate", c.OpenDate)
	if err != nil || day.After(s.today()) {
		return CapsuleSealed
	}
	return CapsuleReady
}

// OpenCapsule opens a capsule whose date has come. Opening it again returns it unchanged.
func (s *Service) OpenCapsule(ctx context.Context, id string) (Capsule, error) {
	var out Capsule
	err := s.update(ctx, func(d *Data) error {
		i := indexByID(d.TimeCapsules, id, func(c Capsule) string { return c.ID })
		if i < 0 {
			return ErrNotFound
		}
		if s.CapsuleStatus(d.TimeCapsules[i]) == CapsuleSealed {
			return ErrCapsuleLocked
		}
		d.TimeCapsules[i].IsOpened = true
		out = d.TimeCapsules[i]
		return nil
	})
	return out, err
}
