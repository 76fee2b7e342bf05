package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tartampluch/go-together/internal/config"
	"github.com/tartampluch/go-together/internal/engine"
	"github.com/tartampluch/go-together/internal/store"
)

// Service reads and writes the journal document. Every mutation is a
// load-modify-save cycle under one mutex, so a Service must be the only writer
// for its store within a process.
type Service struct {
	store store.Store
	key   string
	clock engine.Clock
	loc   *time.Location
	newID func() string

	mu sync.Mutex
}

// Option customises a Service.
type Option func(*Service)

// WithClock injects the time source used for timestamps and "today".
func WithClock(c engine.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithLocation sets the zone that defines calendar days.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithIDGenerator replaces uuid.NewString, mainly for tests.
func WithIDGenerator(f func() string) Option {
	return func(s *Service) { s.newID = f }
}

// NewService wires a Service to st.
func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{
		store: st,
		key:   config.StorageKeyData,
		clock: engine.RealClock{},
		loc:   time.Local,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location returns the zone used for calendar days.
func (s *Service) Location() *time.Location {
	return s.loc
}

// Now returns the service clock's current time in its location.
func (s *Service) Now() time.Time {
	return s.clock.Now().In(s.loc)
}

// Data returns a snapshot of the whole document.
func (s *Service) Data(ctx context.Context) (*Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// load must be called with s.mu held.
func (s *Service) load(ctx context.Context) (*Data, error) {
	raw, err := s.store.Load(ctx, s.key)
	if errors.Is(err, store.ErrNotFound) {
		return defaultData(s.newID(), s.clock.Now().UTC()), nil
	}
	if err != nil {
		return nil, err
	}

	d := defaultData("", time.Time{})
	if err := json.Unmarshal(raw, d); err != nil {
		slog.Error(config.MsgDataCorrupt,
			config.LogKeyComponent, config.CompJournal,
			config.LogKeyError, err,
		)
		return nil, fmt.Errorf("%s: %w", config.ErrDecodeData, err)
	}
	normalize(d)
	return d, nil
}

// save must be called with s.mu held.
func (s *Service) save(ctx context.Context, d *Data) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrEncodeData, err)
	}
	if err := s.store.Save(ctx, s.key, raw); err != nil {
		return err
	}
	slog.Debug(config.MsgDataSaved,
		config.LogKeyComponent, config.CompJournal,
		config.LogKeySizeBytes, len(raw),
	)
	return nil
}

// update runs fn on the current document and persists it if fn succeeds.
func (s *Service) update(ctx context.Context, fn func(d *Data) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(d); err != nil {
		return err
	}
	return s.save(ctx, d)
}

// view runs fn on the current document without saving.
func (s *Service) view(ctx context.Context, fn func(d *Data) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.load(ctx)
	if err != nil {
		return err
	}
	return fn(d)
}

// normalize replaces null lists with empty ones so JSON output stays stable.
func normalize(d *Data) {
	if d.Diaries == nil {
		d.Diaries = []Diary{}
	}
	if d.Anniversaries == nil {
		d.Anniversaries = []Anniversary{}
	}
	if d.Moments == nil {
		d.Moments = []Moment{}
	}
	if d.TimeCapsules == nil {
		d.TimeCapsules = []Capsule{}
	}
	if d.Photos == nil {
		d.Photos = []Photo{}
	}
}

// today returns midnight of the current calendar day.
func (s *Service) today() time.Time {
	now := s.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
}

// parseDay reads a YYYY-MM-DD calendar day in the service location.
func (s *Service) parseDay(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, invalid(field, ReasonRequired)
	}
	t, err := time.ParseInLocation(config.DateFormatFullDash, value, s.loc)
	if err != nil {
		return time.Time{}, invalid(field, ReasonInvalid)
	}
	return t, nil
}

// -----------------------------------------------------------------------------
// Profile & Settings
// -----------------------------------------------------------------------------

// Profile returns the couple's profile.
func (s *Service) Profile(ctx context.Context) (Profile, error) {
	var p Profile
	err := s.view(ctx, func(d *Data) error {
		p = d.UserProfile
		return nil
	})
	return p, err
}

// IsFirstUse reports whether onboarding is still pending.
func (s *Service) IsFirstUse(ctx context.Context) (bool, error) {
	p, err := s.Profile(ctx)
	if err != nil {
		return false, err
	}
	return p.StartDate == "", nil
}

// Onboard records both names and the start date, and adds the start date as the
// first anniversary.
func (s *Service) Onboard(ctx context.Context, myName, partnerName, startDate string) (Profile, error) {
	myName = strings.TrimSpace(myName)
	partnerName = strings.TrimSpace(partnerName)
	startDate = strings.TrimSpace(startDate)

	switch {
	case myName == "":
		return Profile{}, invalid("myName", ReasonRequired)
	case partnerName == "":
		return Profile{}, invalid("partnerName", ReasonRequired)
	case startDate == "":
		return Profile{}, invalid("startDate", ReasonRequired)
	}
	anchor, err := engine.ParseAnchor(startDate, s.loc)
	if err != nil {
		return Profile{}, invalid("startDate", ReasonInvalid)
	}

	var p Profile
	err = s.update(ctx, func(d *Data) error {
		d.UserProfile.MyName = myName
		d.UserProfile.PartnerName = partnerName
		d.UserProfile.StartDate = startDate
		if d.UserProfile.ID == "" {
			d.UserProfile.ID = s.newID()
		}
		d.Anniversaries = append(d.Anniversaries, Anniversary{
			ID:        s.newID(),
			Name:      config.FirstAnniversary,
			Date:      anchor.Format(config.DateFormatFullDash),
			Type:      KindAnniversary,
			CreatedAt: s.clock.Now().UTC(),
		})
		p = d.UserProfile
		return nil
	})
	return p, err
}

// ProfileUpdate carries the fields to change; nil leaves a field untouched.
type ProfileUpdate struct {
	MyName      *string
	PartnerName *string
	StartDate   *string
}

// UpdateProfile applies u and reports whether the start date changed, in which case
// callers restart their duration notifier.
func (s *Service) UpdateProfile(ctx context.Context, u ProfileUpdate) (Profile, bool, error) {
	if u.StartDate != nil {
		if _, err := engine.ParseAnchor(*u.StartDate, s.loc); err != nil {
			return Profile{}, false, invalid("startDate", ReasonInvalid)
		}
	}

	var (
		p       Profile
		changed bool
	)
	err := s.update(ctx, func(d *Data) error {
		if u.MyName != nil {
			d.UserProfile.MyName = strings.TrimSpace(*u.MyName)
		}
		if u.PartnerName != nil {
			d.UserProfile.PartnerName = strings.TrimSpace(*u.PartnerName)
		}
		if u.StartDate != nil {
			next := strings.TrimSpace(*u.StartDate)
			changed = next != d.UserProfile.StartDate
			d.UserProfile.StartDate = next
		}
		p = d.UserProfile
		return nil
	})
	return p, changed, err
}

// Anchor parses the profile's start date.
func (s *Service) Anchor(ctx context.Context) (time.Time, error) {
	p, err := s.Profile(ctx)
	if err != nil {
		return time.Time{}, err
	}
	if p.StartDate == "" {
		return time.Time{}, ErrNotOnboarded
	}
	return engine.ParseAnchor(p.StartDate, s.loc)
}

// Settings returns the display settings.
func (s *Service) Settings(ctx context.Context) (Settings, error) {
	var st Settings
	err := s.view(ctx, func(d *Data) error {
		st = d.Settings
		return nil
	})
	return st, err
}

// UpdateSettings replaces the display settings.
func (s *Service) UpdateSettings(ctx context.Context, st Settings) error {
	return s.update(ctx, func(d *Data) error {
		d.Settings = st
		return nil
	})
}
