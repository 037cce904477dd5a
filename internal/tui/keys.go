package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts
type KeyMap struct {
	SizeUp       key.Binding
	SizeDown     key.Binding
	NextStrategy key.Binding
	FirstFit     key.Binding
	BestFit      key.Binding
	WorstFit     key.Binding

	Allocate key.Binding
	Free     key.Binding
	Reset    key.Binding

	Next key.Binding
	Prev key.Binding

	Copy key.Binding
	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		SizeUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "larger allocation"),
		),
		SizeDown: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "smaller allocation"),
		),
		NextStrategy: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next strategy"),
		),
		FirstFit: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "first fit"),
		),
		BestFit: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "best fit"),
		),
		WorstFit: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "worst fit"),
		),
		Allocate: key.NewBinding(
			key.WithKeys("a", "enter"),
			key.WithHelp("a/enter", "allocate"),
		),
		Free: key.NewBinding(
			key.WithKeys("f", "delete", "backspace"),
			key.WithHelp("f", "free selected"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset heap"),
		),
		Next: key.NewBinding(
			key.WithKeys("down", "j", "right", "l"),
			key.WithHelp("↓/j", "next block"),
		),
		Prev: key.NewBinding(
			key.WithKeys("up", "k", "left", "h"),
			key.WithHelp("↑/k", "previous block"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy heap json"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns key bindings for the short help view
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Allocate, k.Free, k.NextStrategy, k.Reset, k.Help, k.Quit}
}

// FullHelp returns all key bindings for the full help view
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.SizeUp, k.SizeDown, k.NextStrategy, k.FirstFit, k.BestFit, k.WorstFit},
		{k.Allocate, k.Free, k.Reset},
		{k.Next, k.Prev, k.Copy, k.Help, k.Quit},
	}
}
