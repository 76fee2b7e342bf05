package journal

import (
	"context"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/tartampluch/go-together/internal/config"
)

var momentKinds = []string{MomentMessage, MomentPhoto, MomentMilestone, MomentGift}

// PublishMoment posts a moment from the profile owner to the partner.
func (s *Service) PublishMoment(ctx context.Context, kind, content string) (Moment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Moment{}, invalid("content", ReasonRequired)
	}
	if utf8.RuneCountInString(content) > config.MaxMomentRunes {
		return Moment{}, invalid("content", ReasonTooLong)
	}
	kind = strings.TrimSpace(kind)
	if kind == "" {
		kind = config.DefaultMomentKind
	}
	if !slices.Contains(momentKinds, kind) {
		return Moment{}, invalid("type", ReasonInvalid)
	}

	var m Moment
	err := s.update(ctx, func(d *Data) error {
		from, to := d.UserProfile.DisplayNames()
		m = Moment{
			ID:         s.newID(),
			Type:       kind,
			Content:    content,
			FromUser:   from,
			FromUserID: d.UserProfile.ID,
			ToUser:     to,
			Images:     []string{},
			CreatedAt:  s.clock.Now().UTC(),
		}
		d.Moments = append([]Moment{m}, d.Moments...)
		return nil
	})
	return m, err
}

// Moments returns the newest moments. limit <= 0 uses the default cap.
func (s *Service) Moments(ctx context.Context, limit int) ([]Moment, error) {
	if limit <= 0 {
		limit = config.DefaultMomentCap
	}
	var out []Moment
	err := s.view(ctx, func(d *Data) error {
		out = slices.Clone(d.Moments[:min(limit, len(d.Moments))])
		return nil
	})
	return out, err
}

// UnreadCount counts moments not yet marked read.
func (s *Service) UnreadCount(ctx context.Context) (int, error) {
	n := 0
	err := s.view(ctx, func(d *Data) error {
		for _, m := range d.Moments {
			if !m.IsRead {
				n++
			}
		}
		return nil
	})
	return n, err
}

// MarkMomentRead flags one moment as read.
func (s *Service) MarkMomentRead(ctx context.Context, id string) error {
	return s.update(ctx, func(d *Data) error {
		i := indexByID(d.Moments, id, func(m Moment) string { return m.ID })
		if i < 0 {
			return ErrNotFound
		}
		d.Moments[i].IsRead = true
		return nil
	})
}

// MarkAllMomentsRead flags every moment as read and returns how many changed.
func (s *Service) MarkAllMomentsRead(ctx context.Context) (int, error) {
	n := 0
	err := s.update(ctx, func(d *Data) error {
		for i := range d.Moments {
			if !d.Moments[i].IsRead {
				d.Moments[i].IsRead = true
				n++
			}
		}
		return nil
	})
	return n, err
}

// Milestones returns the milestone moments, newest first.
func (s *Service) Milestones(ctx context.Context) ([]Moment, error) {
	out := []Moment{}
	err := s.view(ctx, func(d *Data) error {
		for _, m := range d.Moments {
			if m.Type == MomentMilestone {
				out = append(out, m)
			}
		}
		return nil
	})
	return out, err
}

// QuickMessages lists the canned texts offered when composing a moment.
func QuickMessages() []string {
	return slices.Clone(config.QuickMessages)
}
