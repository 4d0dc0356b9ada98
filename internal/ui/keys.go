package ui

import (
	"charm.land/bubbles/v2/key"

	"github.com/oakwood-commons/tablekit/internal/ui/table"
)

// appKeys are the shell bindings layered over the table's.
type appKeys struct {
	table table.KeyMap
	Help  key.Binding
	Quit  key.Binding
}

func newAppKeys(t table.KeyMap) appKeys {
	return appKeys{
		table: t,
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k appKeys) ShortHelp() []key.Binding {
	return append(k.table.ShortHelp(), k.Help, k.Quit)
}

func (k appKeys) FullHelp() [][]key.Binding {
	return append(k.table.FullHelp(), []key.Binding{k.Help, k.Quit})
}
