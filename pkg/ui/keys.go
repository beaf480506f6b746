package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type KeyMap struct {
	Submit   key.Binding
	Newline  key.Binding
	Pick     []key.Binding
	Copy     key.Binding
	PrevMsg  key.Binding
	NextMsg  key.Binding
	NewChat  key.Binding
	Close    key.Binding
	Toggle   key.Binding
	Quit     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		// most terminals cannot tell shift+enter from enter
		Newline: key.NewBinding(key.WithKeys("alt+enter", "ctrl+j", "shift+enter"), key.WithHelp("alt+enter", "newline")),
		Pick: []key.Binding{
			key.NewBinding(key.WithKeys("alt+1")),
			key.NewBinding(key.WithKeys("alt+2")),
			key.NewBinding(key.WithKeys("alt+3")),
		},
		Copy:     key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy")),
		PrevMsg:  key.NewBinding(key.WithKeys("alt+up")),
		NextMsg:  key.NewBinding(key.WithKeys("alt+down")),
		NewChat:  key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new chat")),
		Close:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Toggle:   key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "open/close")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
		PageDown: key.NewBinding(key.WithKeys("pgdown")),
	}
}

// pickIndex returns which alt+N binding msg matches, or -1.
func (k KeyMap) pickIndex(msg tea.KeyMsg) int {
	for i, b := range k.Pick {
		if key.Matches(msg, b) {
			return i
		}
	}
	return -1
}
