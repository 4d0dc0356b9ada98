package table

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Colors are the optional theme colors. Nil entries keep the defaults.
type Colors struct {
	HeaderFG   color.Color
	HeaderBG   color.Color
	CursorFG   color.Color
	CursorBG   color.Color
	SelectedFG color.Color
	Indicator  color.Color
	Muted      color.Color
	Error      color.Color
}

// Styles are the resolved lipgloss styles used by View.
type Styles struct {
	Header    lipgloss.Style
	Rule      lipgloss.Style
	Cell      lipgloss.Style
	Cursor    lipgloss.Style
	Selected  lipgloss.Style
	Dragged   lipgloss.Style
	Indicator lipgloss.Style
	Empty     lipgloss.Style
	Status    lipgloss.Style
	Error     lipgloss.Style
}

// DefaultColors returns the built-in palette.
func DefaultColors() Colors {
	return Colors{
		HeaderFG:   lipgloss.Color("252"),
		CursorFG:   lipgloss.Color("229"),
		CursorBG:   lipgloss.Color("57"),
		SelectedFG: lipgloss.Color("42"),
		Indicator:  lipgloss.Color("212"),
		Muted:      lipgloss.Color("241"),
		Error:      lipgloss.Color("196"),
	}
}

func newStyles(c Colors, noColor bool) Styles {
	s := Styles{
		Header:    lipgloss.NewStyle().Bold(true),
		Rule:      lipgloss.NewStyle(),
		Cell:      lipgloss.NewStyle(),
		Cursor:    lipgloss.NewStyle(),
		Selected:  lipgloss.NewStyle(),
		Dragged:   lipgloss.NewStyle().Faint(true),
		Indicator: lipgloss.NewStyle().Bold(true),
		Empty:     lipgloss.NewStyle().Italic(true),
		Status:    lipgloss.NewStyle(),
		Error:     lipgloss.NewStyle().Bold(true),
	}
	if noColor {
		s.Cursor = s.Cursor.Reverse(true)
		return s
	}
	if c.HeaderFG != nil {
		s.Header = s.Header.Foreground(c.HeaderFG)
	}
	if c.HeaderBG != nil {
		s.Header = s.Header.Background(c.HeaderBG)
	}
	if c.CursorFG != nil {
		s.Cursor = s.Cursor.Foreground(c.CursorFG)
	}
	if c.CursorBG != nil {
		s.Cursor = s.Cursor.Background(c.CursorBG)
	}
	if c.CursorFG == nil && c.CursorBG == nil {
		s.Cursor = s.Cursor.Reverse(true)
	}
	if c.SelectedFG != nil {
		s.Selected = s.Selected.Foreground(c.SelectedFG)
	}
	if c.Indicator != nil {
		s.Indicator = s.Indicator.Foreground(c.Indicator)
	}
	if c.Muted != nil {
		s.Rule = s.Rule.Foreground(c.Muted)
		s.Empty = s.Empty.Foreground(c.Muted)
		s.Status = s.Status.Foreground(c.Muted)
	}
	if c.Error != nil {
		s.Error = s.Error.Foreground(c.Error)
	}
	return s
}
