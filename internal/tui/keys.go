package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the counter's keybindings.
type KeyMap struct {
	Quit key.Binding
}

// DefaultKeyMap returns the default keybinding configuration.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
