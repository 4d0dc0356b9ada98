package ui

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/tablekit/internal/config"
	"github.com/oakwood-commons/tablekit/internal/ui/table"
)

// Theme holds the colors of the demo shell and of the table it hosts.
type Theme struct {
	Table     table.Colors
	Title     color.Color
	HelpKey   color.Color
	HelpValue color.Color
}

// DefaultTheme returns the table defaults plus the shell colors.
func DefaultTheme() Theme {
	return Theme{
		Table:     table.DefaultColors(),
		Title:     lipgloss.Color("212"),
		HelpKey:   lipgloss.Color("39"),
		HelpValue: lipgloss.Color("245"),
	}
}

// ThemeFromConfig builds a Theme from a preset, keeping defaults for empty
// fields.
func ThemeFromConfig(cfg config.ThemeConfig) Theme {
	th := DefaultTheme()
	set := func(val string, dst *color.Color) {
		if val != "" {
			*dst = lipgloss.Color(val)
		}
	}
	set(cfg.HeaderFG, &th.Table.HeaderFG)
	set(cfg.HeaderBG, &th.Table.HeaderBG)
	set(cfg.CursorFG, &th.Table.CursorFG)
	set(cfg.CursorBG, &th.Table.CursorBG)
	set(cfg.SelectedFG, &th.Table.SelectedFG)
	set(cfg.Indicator, &th.Table.Indicator)
	set(cfg.Muted, &th.Table.Muted)
	set(cfg.Error, &th.Table.Error)
	set(cfg.Title, &th.Title)
	set(cfg.HelpKey, &th.HelpKey)
	set(cfg.HelpValue, &th.HelpValue)
	return th
}
