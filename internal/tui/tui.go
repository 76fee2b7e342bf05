// Package tui renders the live relationship counter in the terminal.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tartampluch/go-together/internal/config"
	"github.com/tartampluch/go-together/internal/engine"
	"github.com/tartampluch/go-together/internal/i18n"
	"github.com/tartampluch/go-together/internal/journal"
)

// Options configures Run.
type Options struct {
	Notifier   *engine.Notifier
	Anchor     time.Time
	Profile    journal.Profile
	Upcoming   []journal.Upcoming
	Translator *i18n.Translator

	// ProgramOptions are appended after the defaults (alt screen, ctx).
	ProgramOptions []tea.ProgramOption
}

// Run starts the notifier on the anchor and blocks until the user quits or ctx is
// cancelled. The notifier is stopped on return.
func Run(ctx context.Context, o Options) error {
	updates := make(chan engine.Elapsed, config.ChannelBufferSize)
	if _, err := o.Notifier.Start(o.Anchor, Bridge(updates)); err != nil {
		return err
	}
	defer o.Notifier.Stop()

	model := NewModel(o.Profile, o.Upcoming, o.Translator, updates, o.Notifier.Stop)
	opts := append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, o.ProgramOptions...)

	slog.Debug(config.MsgTUIStart, config.LogKeyComponent, config.CompTUI)
	_, err := tea.NewProgram(model, opts...).Run()
	slog.Debug(config.MsgTUIStop, config.LogKeyComponent, config.CompTUI)

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("%s: %w", config.ErrTUI, err)
	}
	return nil
}

// Bridge adapts a notifier callback to a channel. The callback runs under the
// notifier's lock, so it never blocks: a reader that falls behind only sees the
// latest breakdown.
func Bridge(updates chan engine.Elapsed) func(engine.Elapsed) {
	return func(e engine.Elapsed) {
		for {
			select {
			case updates <- e:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	}
}
