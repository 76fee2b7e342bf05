package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tartampluch/go-together/internal/config"
	"github.com/tartampluch/go-together/internal/engine"
	"github.com/tartampluch/go-together/internal/i18n"
	"github.com/tartampluch/go-together/internal/journal"
)

// MsgElapsed carries a breakdown published by the notifier.
type MsgElapsed struct {
	Elapsed engine.Elapsed
}

// MsgUpdatesClosed is sent once the update channel is closed.
type MsgUpdatesClosed struct{}

// Model is the live counter screen.
type Model struct {
	Profile  journal.Profile
	Upcoming []journal.Upcoming
	Elapsed  engine.Elapsed
	Width    int
	Quitting bool

	tr      *i18n.Translator
	keys    KeyMap
	updates <-chan engine.Elapsed
	stop    func()
}

// NewModel builds a counter reading breakdowns from updates. stop is called once
// when the user quits; it may be nil.
func NewModel(p journal.Profile, upcoming []journal.Upcoming, tr *i18n.Translator, updates <-chan engine.Elapsed, stop func()) Model {
	return Model{
		Profile:  p,
		Upcoming: upcoming,
		tr:       tr,
		keys:     DefaultKeyMap(),
		updates:  updates,
		stop:     stop,
	}
}

func (m Model) Init() tea.Cmd {
	return waitForElapsed(m.updates)
}

// waitForElapsed blocks on the next notifier update.
func waitForElapsed(updates <-chan engine.Elapsed) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		e, ok := <-updates
		if !ok {
			return MsgUpdatesClosed{}
		}
		return MsgElapsed{Elapsed: e}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m.quit()
		}

	case MsgElapsed:
		m.Elapsed = msg.Elapsed
		return m, waitForElapsed(m.updates)

	case MsgUpdatesClosed:
		return m.quit()
	}
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if !m.Quitting && m.stop != nil {
		m.stop()
	}
	m.Quitting = true
	return m, tea.Quit
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	me, partner := m.Profile.DisplayNames()

	var b strings.Builder
	b.WriteString(styleCouple.Render(m.tr.T(config.TKeyLblCouple, map[string]any{"Me": me, "Partner": partner})))
	b.WriteString("\n")
	b.WriteString(styleMuted.Render(m.tr.T(config.TKeyLblSince, map[string]any{"Date": m.Profile.StartDate})))
	b.WriteString("\n\n")
	b.WriteString(styleTotal.Render(m.tr.T(config.TKeyTotalDays, map[string]any{"Days": m.Elapsed.TotalDays})))
	b.WriteString("\n")
	b.WriteString(styleBreakdown.Render(m.tr.Elapsed(m.Elapsed)))
	b.WriteString("  ")
	b.WriteString(styleClock.Render(m.Elapsed.Clock()))
	b.WriteString("\n")

	b.WriteString(styleHeading.Render(m.tr.T(config.TKeyLblUpcoming, nil)))
	b.WriteString("\n")
	if len(m.Upcoming) == 0 {
		b.WriteString(styleMuted.Render(m.tr.T(config.TKeyLblNoUpcoming, nil)))
		b.WriteString("\n")
	}
	for _, u := range m.Upcoming {
		b.WriteString(config.AnniversaryIcons[u.Type] + " " + u.Name + "  ")
		b.WriteString(styleMuted.Render(m.tr.Countdown(u.Next.DaysUntil)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styleMuted.Render(m.tr.T(config.TKeyLblQuitHint, nil)))

	frame := styleFrame.Render(b.String())
	if m.Width > 0 {
		return lipgloss.PlaceHorizontal(m.Width, lipgloss.Center, frame)
	}
	return frame
}
