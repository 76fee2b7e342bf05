package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tartampluch/go-together/internal/config"
)

// Notifier republishes the Elapsed breakdown of an anchor on a fixed cadence.
//
// At most one subscription is active per Notifier. Start replaces it, Stop clears it.
// Callbacks run one at a time and never after the Start or Stop that replaced their
// subscription has returned. A callback must not call Start or Stop on its own Notifier.
type Notifier struct {
	clock     Clock
	newTicker TickerFunc
	cadence   time.Duration

	// mu guards active and is held while a callback runs.
	mu     sync.Mutex
	active *Subscription
}

// Subscription is the handle returned by Start.
type Subscription struct {
	n        *Notifier
	anchor   time.Time
	onUpdate func(Elapsed)
	ticker   Ticker
	done     chan struct{}
	once     sync.Once
}

// NotifierOption customises a Notifier.
type NotifierOption func(*Notifier)

// WithClock injects the time source.
func WithClock(c Clock) NotifierOption {
	return func(n *Notifier) { n.clock = c }
}

// WithTicker injects the cadence primitive.
func WithTicker(f TickerFunc) NotifierOption {
	return func(n *Notifier) { n.newTicker = f }
}

// WithCadence overrides the default one-second period.
func WithCadence(d time.Duration) NotifierOption {
	return func(n *Notifier) {
		if d > 0 {
			n.cadence = d
		}
	}
}

// NewNotifier returns an idle Notifier using the real clock and time.Ticker by default.
func NewNotifier(opts ...NotifierOption) *Notifier {
	n := &Notifier{
		clock:     RealClock{},
		newTicker: NewTimeTicker,
		cadence:   config.TickInterval,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Start validates anchor, cancels any previous subscription and installs a new one.
// onUpdate receives the current breakdown before Start returns and then once per tick.
// An invalid anchor leaves the previous subscription running.
func (n *Notifier) Start(anchor time.Time, onUpdate func(Elapsed)) (*Subscription, error) {
	if anchor.IsZero() {
		slog.Warn(config.MsgNotifierReject, config.LogKeyComponent, config.CompNotifier)
		return nil, fmt.Errorf("%w: zero time", ErrInvalidAnchor)
	}
	if onUpdate == nil {
		onUpdate = func(Elapsed) {}
	}

	sub := &Subscription{
		n:        n,
		anchor:   anchor,
		onUpdate: onUpdate,
		done:     make(chan struct{}),
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.active != nil {
		n.active.release()
	}
	n.active = sub

	onUpdate(ComputeElapsed(anchor, n.clock.Now()))

	sub.ticker = n.newTicker(n.cadence)
	go n.loop(sub)

	slog.Debug(config.MsgNotifierStart,
		config.LogKeyComponent, config.CompNotifier,
		config.LogKeyAnchor, anchor.Format(time.RFC3339),
		config.LogKeyCadence, n.cadence,
	)
	return sub, nil
}

// StartISO parses s with ParseAnchor and calls Start.
func (n *Notifier) StartISO(s string, loc *time.Location, onUpdate func(Elapsed)) (*Subscription, error) {
	anchor, err := ParseAnchor(s, loc)
	if err != nil {
		slog.Warn(config.MsgNotifierReject,
			config.LogKeyComponent, config.CompNotifier,
			config.LogKeyAnchor, s,
		)
		return nil, err
	}
	return n.Start(anchor, onUpdate)
}

// Stop cancels the active subscription. Stopping an idle Notifier is a no-op.
func (n *Notifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stopLocked()
}

func (n *Notifier) stopLocked() {
	if n.active == nil {
		return
	}
	n.active.release()
	n.active = nil
	slog.Debug(config.MsgNotifierStop, config.LogKeyComponent, config.CompNotifier)
}

// Snapshot computes the breakdown for the active anchor at the clock's current instant.
func (n *Notifier) Snapshot() (Elapsed, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.active == nil {
		return Elapsed{}, ErrNotRunning
	}
	return ComputeElapsed(n.active.anchor, n.clock.Now()), nil
}

// Running reports whether a subscription is active.
func (n *Notifier) Running() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.active != nil
}

// Anchor returns the active anchor, or the zero time when idle.
func (n *Notifier) Anchor() time.Time {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.active == nil {
		return time.Time{}
	}
	return n.active.anchor
}

func (n *Notifier) loop(sub *Subscription) {
	for {
		select {
		case <-sub.done:
			return
		case <-sub.ticker.C():
			n.tick(sub)
		}
	}
}

func (n *Notifier) tick(sub *Subscription) {
	n.mu.Lock()
	defer n.mu.Unlock()
	// A tick may have been received just before the subscription was replaced.
	if n.active != sub {
		return
	}
	sub.onUpdate(ComputeElapsed(sub.anchor, n.clock.Now()))
}

// Cancel stops the subscription if it is still the active one. It is idempotent.
func (s *Subscription) Cancel() {
	if s == nil {
		return
	}
	s.n.mu.Lock()
	defer s.n.mu.Unlock()
	if s.n.active == s {
		s.n.stopLocked()
	}
}

// Anchor returns the instant this subscription measures from.
func (s *Subscription) Anchor() time.Time {
	return s.anchor
}

// Done is closed once the subscription has been cancelled or replaced.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// release must be called with n.mu held.
func (s *Subscription) release() {
	s.once.Do(func() {
		if s.ticker != nil {
			s.ticker.Stop()
		}
		close(s.done)
	})
}
