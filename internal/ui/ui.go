// Package ui is the desktop tray app: a live day count in the system tray and a
// counter window with the next anniversaries.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"github.com/tartampluch/go-together/internal/calendar"
	"github.com/tartampluch/go-together/internal/config"
	"github.com/tartampluch/go-together/internal/engine"
	"github.com/tartampluch/go-together/internal/i18n"
	"github.com/tartampluch/go-together/internal/journal"
	"github.com/tartampluch/go-together/internal/server"
)

// TogetherApp encapsulates the UI state, preferences, and background refresh.
type TogetherApp struct {
	App         fyne.App
	Preferences fyne.Preferences
	Ctx         context.Context
	Translator  *i18n.Translator

	Journal  *journal.Service
	Notifier *engine.Notifier
	Fetcher  calendar.ContactFetcher

	// Feed is optional; when set the app also serves the calendar feed.
	Feed *server.Feed

	// RefreshInterval re-reads the journal periodically; <= 0 disables it.
	RefreshInterval time.Duration

	Tray desktop.App
	Menu *fyne.Menu

	TrayStatusItem   *fyne.MenuItem
	TrayOpenItem     *fyne.MenuItem
	TrayRefreshItem  *fyne.MenuItem
	TraySettingsItem *fyne.MenuItem
	TrayQuitItem     *fyne.MenuItem

	// mu guards the snapshot below, written by Refresh and the notifier callback.
	mu       sync.RWMutex
	profile  journal.Profile
	upcoming []journal.Upcoming
	elapsed  engine.Elapsed
	counting bool
	trayDays int64

	counter        *counterView
	counterWindow  fyne.Window
	settingsWindow fyne.Window
}

// NewTogetherApp constructs the application and wires dependencies.
func NewTogetherApp(a fyne.App, ctx context.Context, svc *journal.Service, n *engine.Notifier, tr *i18n.Translator) *TogetherApp {
	a.SetIcon(fyne.NewStaticResource(config.IconFile, []byte(config.IconSVG)))

	return &TogetherApp{
		App:             a,
		Preferences:     a.Preferences(),
		Ctx:             ctx,
		Translator:      tr,
		Journal:         svc,
		Notifier:        n,
		Fetcher:         calendar.NewHTTPFetcher(),
		RefreshInterval: time.Duration(config.DefaultRefreshMin) * time.Minute,
		trayDays:        -1,
	}
}

// Run launches the background services and blocks in the fyne main loop.
func (app *TogetherApp) Run() {
	if app.Feed != nil {
		app.applyReminder()
		go func() {
			if err := app.Feed.Server.Start(app.Ctx); err != nil {
				slog.Error(config.ErrServerStartup,
					config.LogKeyError, err,
					config.LogKeyComponent, config.CompUI)
				app.App.SendNotification(fyne.NewNotification(config.AppName, app.Translator.T(config.TKeyNotifError, nil)))
			}
		}()
	}

	if desk, ok := app.App.(desktop.App); ok {
		app.Tray = desk
		app.Tray.SetSystemTrayIcon(app.App.Icon())
		app.setupTrayMenu()
	} else {
		slog.Warn(config.ErrTrayUnsupported, config.LogKeyComponent, config.CompUI)
		app.ShowCounterWindow()
	}

	slog.Info(config.MsgUIStart, config.LogKeyComponent, config.CompUI)
	go app.backgroundWorker()
	app.App.Run()
	app.Notifier.Stop()
}

// setupTrayMenu constructs the system tray menu.
func (app *TogetherApp) setupTrayMenu() {
	tr := app.Translator

	// The status line doubles as a shortcut to the counter.
	app.TrayStatusItem = fyne.NewMenuItem(tr.T(config.TKeyTrayIdle, nil), app.ShowCounterWindow)
	app.TrayOpenItem = fyne.NewMenuItem(tr.T(config.TKeyMenuOpen, nil), app.ShowCounterWindow)
	app.TrayRefreshItem = fyne.NewMenuItem(tr.T(config.TKeyMenuRefresh, nil), func() {
		go func() { _ = app.Refresh(true) }()
	})
	app.TraySettingsItem = fyne.NewMenuItem(tr.T(config.TKeyMenuSettings, nil), app.ShowSettingsWindow)
	app.TrayQuitItem = fyne.NewMenuItem(tr.T(config.TKeyMenuQuit, nil), app.App.Quit)
	app.TrayQuitItem.IsQuit = true

	app.Menu = fyne.NewMenu(config.AppName,
		app.TrayStatusItem,
		fyne.NewMenuItemSeparator(),
		app.TrayOpenItem,
		app.TrayRefreshItem,
		app.TraySettingsItem,
		fyne.NewMenuItemSeparator(),
		app.TrayQuitItem,
	)

	if app.Tray != nil {
		app.Tray.SetSystemTrayMenu(app.Menu)
	}
}

// backgroundWorker re-reads the journal on a fixed schedule so that edits made
// through the CLI show up in the tray.
func (app *TogetherApp) backgroundWorker() {
	log := slog.With(config.LogKeyComponent, config.CompUI)

	_ = app.Refresh(false)

	var tick <-chan time.Time
	if app.RefreshInterval > 0 {
		ticker := time.NewTicker(app.RefreshInterval)
		defer ticker.Stop()
		tick = ticker.C
	}
	log.Info(config.MsgWorkerStart, config.LogKeyInterval, app.RefreshInterval)

	for {
		select {
		case <-app.Ctx.Done():
			log.Info(config.MsgWorkerStop)
			return
		case <-tick:
			_ = app.Refresh(false)
		}
	}
}

// Refresh reloads the profile and upcoming anniversaries, rebuilds the feed when
// one is attached and points the notifier at the current start date.
func (app *TogetherApp) Refresh(manual bool) error {
	data, err := app.Journal.Data(app.Ctx)
	if err != nil {
		slog.Error(config.MsgFeedFailed, config.LogKeyError, err, config.LogKeyComponent, config.CompUI)
		if manual {
			app.App.SendNotification(fyne.NewNotification(config.AppName, app.Translator.T(config.TKeyNotifError, nil)))
		}
		return err
	}

	upcoming := journal.UpcomingFrom(data.Anniversaries, app.Journal.Now(), config.UpcomingDefault)
	app.mu.Lock()
	app.profile = data.UserProfile
	app.upcoming = upcoming
	app.mu.Unlock()

	if app.Feed != nil {
		if err := app.Feed.Rebuild(app.Ctx); err != nil {
			slog.Error(config.MsgFeedFailed, config.LogKeyError, err, config.LogKeyComponent, config.CompUI)
		}
	}

	if err := app.syncAnchor(data.UserProfile.StartDate); err != nil {
		return err
	}

	slog.Debug(config.MsgUIRefresh,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyCount, len(upcoming),
		config.LogKeyManual, manual,
	)
	fyne.Do(app.refreshCounter)
	return nil
}

// syncAnchor restarts the notifier only when the start date actually changed.
func (app *TogetherApp) syncAnchor(startDate string) error {
	if startDate == "" {
		app.Notifier.Stop()
		app.mu.Lock()
		app.counting = false
		app.elapsed = engine.Elapsed{}
		app.mu.Unlock()
		fyne.Do(func() { app.updateTrayStatus(-1) })
		return nil
	}

	anchor, err := engine.ParseAnchor(startDate, app.Journal.Location())
	if err != nil {
		return err
	}
	if app.Notifier.Running() && app.Notifier.Anchor().Equal(anchor) {
		return nil
	}
	app.mu.Lock()
	app.counting = true
	app.mu.Unlock()
	_, err = app.Notifier.Start(anchor, app.onElapsed)
	return err
}

// onElapsed runs on the notifier goroutine with its lock held, so it only hands
// the breakdown over to the UI thread.
func (app *TogetherApp) onElapsed(e engine.Elapsed) {
	app.mu.Lock()
	app.elapsed = e
	app.mu.Unlock()

	fyne.Do(func() {
		app.updateTrayStatus(e.TotalDays)
		if app.counter != nil {
			app.counter.setElapsed(app.Translator, e)
		}
	})
}

// updateTrayStatus shows the day count in the tray; days < 0 means not started.
// The menu is only refreshed when the label changes.
func (app *TogetherApp) updateTrayStatus(days int64) {
	if app.Menu == nil || app.TrayStatusItem == nil {
		return
	}
	if days == app.trayDays {
		return
	}
	app.trayDays = days

	if days < 0 {
		app.TrayStatusItem.Label = app.Translator.T(config.TKeyTrayIdle, nil)
	} else {
		app.TrayStatusItem.Label = app.Translator.T(config.TKeyTrayStatus, map[string]any{"Days": days})
	}
	app.Menu.Refresh()
}

// snapshot copies the state shared with the background goroutines.
func (app *TogetherApp) snapshot() (journal.Profile, []journal.Upcoming, engine.Elapsed, bool) {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.profile, append([]journal.Upcoming(nil), app.upcoming...), app.elapsed, app.counting
}

// applyReminder copies the reminder preference onto the feed generator.
func (app *TogetherApp) applyReminder() {
	if app.Feed == nil {
		return
	}
	days := app.Preferences.IntWithFallback(config.PrefReminderDays, -1)
	switch {
	case days < 0:
		// Keep the configured default.
	case days == 0:
		app.Feed.Generator.Reminder = ""
	default:
		app.Feed.Generator.Reminder = fmt.Sprintf(config.FormatReminderDays, days)
	}
}
