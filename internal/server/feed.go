package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/tartampluch/go-together/internal/calendar"
	"github.com/tartampluch/go-together/internal/config"
	"github.com/tartampluch/go-together/internal/engine"
	"github.com/tartampluch/go-together/internal/journal"
)

// Status is the document served at /api/status.
type Status struct {
	MyName      string              `json:"myName"`
	PartnerName string              `json:"partnerName"`
	StartDate   string              `json:"startDate,omitempty"`
	Elapsed     *engine.Elapsed     `json:"elapsed,omitempty"`
	Upcoming    []journal.Upcoming  `json:"upcoming"`
	Unread      int                 `json:"unread"`
	Feed        calendar.BuildStats `json:"feed"`
}

// Feed keeps the served calendar and the duration counter in step with the journal.
type Feed struct {
	Journal   *journal.Service
	Generator *calendar.Generator
	Server    *CalendarServer
	Notifier  *engine.Notifier

	mu    sync.Mutex
	stats calendar.BuildStats
}

// NewFeed wires a Feed and points the server's status endpoint at it.
func NewFeed(svc *journal.Service, gen *calendar.Generator, srv *CalendarServer, n *engine.Notifier) *Feed {
	f := &Feed{Journal: svc, Generator: gen, Server: srv, Notifier: n}
	srv.Status = func(ctx context.Context) (any, error) { return f.Status(ctx) }
	return f
}

// Rebuild regenerates the feed from the journal and restarts the counter if the
// start date changed.
func (f *Feed) Rebuild(ctx context.Context) error {
	start := time.Now()

	data, err := f.Journal.Data(ctx)
	if err != nil {
		return err
	}
	ics, stats, err := f.Generator.Build(ctx, data.Anniversaries, data.UserProfile)
	if err != nil {
		return err
	}
	f.Server.Update(ics)
	f.mu.Lock()
	f.stats = stats
	f.mu.Unlock()

	f.syncAnchor(data.UserProfile.StartDate)

	slog.Debug(config.MsgFeedRebuild,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
	return nil
}

// syncAnchor keeps the notifier running on the profile's start date.
func (f *Feed) syncAnchor(startDate string) {
	if f.Notifier == nil {
		return
	}
	if startDate == "" {
		f.Notifier.Stop()
		return
	}
	anchor, err := engine.ParseAnchor(startDate, f.Journal.Location())
	if err != nil {
		slog.Warn(config.MsgNotifierReject,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyAnchor, startDate,
			config.LogKeyError, err,
		)
		return
	}
	if f.Notifier.Running() && f.Notifier.Anchor().Equal(anchor) {
		return
	}
	if _, err := f.Notifier.Start(anchor, func(engine.Elapsed) {}); err != nil {
		slog.Warn(config.MsgNotifierReject,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}

// Status assembles the live status document.
func (f *Feed) Status(ctx context.Context) (Status, error) {
	data, err := f.Journal.Data(ctx)
	if err != nil {
		return Status{}, err
	}
	f.mu.Lock()
	stats := f.stats
	f.mu.Unlock()

	me, partner := data.UserProfile.DisplayNames()
	st := Status{
		MyName:      me,
		PartnerName: partner,
		StartDate:   data.UserProfile.StartDate,
		Upcoming:    journal.UpcomingFrom(data.Anniversaries, f.Journal.Now(), config.UpcomingDefault),
		Feed:        stats,
	}
	for _, m := range data.Moments {
		if !m.IsRead {
			st.Unread++
		}
	}
	if f.Notifier != nil {
		if e, err := f.Notifier.Snapshot(); err == nil {
			st.Elapsed = &e
		} else if !errors.Is(err, engine.ErrNotRunning) {
			return Status{}, err
		}
	}
	return st, nil
}

// Run rebuilds once, then on every refresh tick and every change notification,
// until ctx is cancelled. refresh <= 0 disables the periodic rebuild.
func (f *Feed) Run(ctx context.Context, refresh time.Duration, changes <-chan struct{}) {
	log := slog.With(config.LogKeyComponent, config.CompServer)

	f.rebuildLogged(ctx)

	var tick <-chan time.Time
	if refresh > 0 {
		ticker := time.NewTicker(refresh)
		defer ticker.Stop()
		tick = ticker.C
	}
	log.Info(config.MsgWorkerStart, config.LogKeyInterval, refresh)

	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgWorkerStop)
			return
		case <-tick:
			f.rebuildLogged(ctx)
		case _, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			f.rebuildLogged(ctx)
		}
	}
}

func (f *Feed) rebuildLogged(ctx context.Context) {
	if err := f.Rebuild(ctx); err != nil && ctx.Err() == nil {
		slog.Error(config.MsgFeedFailed,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}
