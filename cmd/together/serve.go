package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"

	"github.com/tartampluch/go-together/internal/calendar"
	"github.com/tartampluch/go-together/internal/config"
	"github.com/tartampluch/go-together/internal/engine"
	"github.com/tartampluch/go-together/internal/server"
	"github.com/tartampluch/go-together/internal/ui"
)

// newFeed wires the calendar generator and the localhost server around the journal.
// n may be nil when something else owns the duration counter.
func (a *cliApp) newFeed(n *engine.Notifier) *server.Feed {
	gen := calendar.NewGenerator(a.settings.Location, a.settings.Reminder)
	gen.FormatSummary = a.tr.Summary
	srv := server.NewCalendarServer(a.settings.Port, nil)
	return server.NewFeed(a.journal, gen, srv, n)
}

func (a *cliApp) refreshInterval() time.Duration {
	return time.Duration(a.settings.RefreshMin) * time.Minute
}

func newServeCmd(a *cliApp) *cobra.Command {
	var noWatch bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the anniversaries as a calendar feed on localhost",
		Long: `Serve publishes /calendar.ics, /api/status and /healthz on 127.0.0.1.

The feed is rebuilt periodically and whenever another together command writes
to the journal. Subscribe to it from any calendar application.`,
		Args: userArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			n := engine.NewNotifier()
			defer n.Stop()
			feed := a.newFeed(n)

			var changes <-chan struct{}
			if !noWatch {
				w, err := server.NewWatcher(a.settings.DataDir)
				if err == nil {
					err = w.Start()
				}
				if err != nil {
					slog.Warn(config.ErrWatcher,
						config.LogKeyComponent, config.CompMain,
						config.LogKeyError, err,
					)
				} else {
					defer w.Stop()
					changes = w.Changes
				}
			}

			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				feed.Run(ctx, a.refreshInterval(), changes)
			}()

			fmt.Fprintf(cmd.ErrOrStderr(), config.OutServing, config.LocalhostBindAddr, a.settings.Port, config.RouteCalendar)
			err := feed.Server.Start(ctx)
			cancel()
			wg.Wait()
			return err
		},
	}
	cmd.Flags().BoolVar(&noWatch, config.FlagNoWatch, false, config.FlagDescNoWtc)
	return cmd
}

func newGUICmd(a *cliApp) *cobra.Command {
	var serve bool
	cmd := &cobra.Command{
		Use:   "gui",
		Short: "Run the counter in the system tray",
		Args:  userArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			fyneApp := app.NewWithID(config.AppID)

			gui := ui.NewTogetherApp(fyneApp, ctx, a.journal, engine.NewNotifier(), a.tr)
			gui.RefreshInterval = a.refreshInterval()
			if serve {
				gui.Feed = a.newFeed(nil)
			}

			// Watch for context cancellation to quit the UI gracefully.
			go func() {
				<-ctx.Done()
				slog.Info(config.MsgCtxCancel, config.LogKeyComponent, config.CompMain)
				fyneApp.Quit()
			}()

			// Blocks until the tray app quits.
			gui.Run()
			return nil
		},
	}
	cmd.Flags().BoolVar(&serve, config.FlagServe, false, config.FlagDescServe)
	return cmd
}
