package types

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings of the interactive front-ends.
// It lives in pkg/types so the TUI model and help view share it.
type KeyMap struct {
	Analyze    key.Binding
	Remove     key.Binding
	OpenPicker key.Binding
	Copy       key.Binding
	Help       key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the standard bindings: Enter analyzes, Escape removes.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Analyze: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "analyze"),
		),
		Remove: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "remove image"),
		),
		OpenPicker: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "browse"),
		),
		Copy: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("ctrl+y", "copy result"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Analyze, k.Remove, k.OpenPicker, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Analyze, k.Remove},
		{k.OpenPicker, k.Copy},
		{k.Help, k.Quit},
	}
}
