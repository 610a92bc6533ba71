package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines keyboard shortcuts for the dashboard
type KeyMap struct {
	Quit        key.Binding
	Refresh     key.Binding
	NextHorizon key.Binding
	PrevHorizon key.Binding
	Export      key.Binding
	Help        key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q/ctrl+c", "quit"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r", "f5"),
			key.WithHelp("r/F5", "refresh"),
		),
		NextHorizon: key.NewBinding(
			key.WithKeys("tab", "right"),
			key.WithHelp("tab/→", "next horizon"),
		),
		PrevHorizon: key.NewBinding(
			key.WithKeys("shift+tab", "left"),
			key.WithHelp("shift+tab/←", "prev horizon"),
		),
		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// ShortHelp returns key help text
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.NextHorizon, k.Export, k.Quit}
}

// FullHelp returns extended help text
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Refresh, k.NextHorizon, k.PrevHorizon},
		{k.Export, k.Help, k.Quit},
	}
}
