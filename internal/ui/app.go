// Package ui hosts the table widget in a full-screen Bubble Tea program for
// the demo: a title bar, the table and a help line.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/tablekit/internal/ui/table"
	"github.com/oakwood-commons/tablekit/pkg/record"
)

// Host is the application that owns the list shown by the table.
type Host interface {
	Rows() []record.Record
}

// Options configure an App.
type Options struct {
	Title   string
	Props   table.Props
	Theme   Theme
	NoColor bool
	// Host, when set together with Props.OnChangeRowsOrder, is re-read after
	// every accepted reorder so the table shows the host's list.
	Host   Host
	Width  int
	Height int
}

// App is the demo shell model.
type App struct {
	table    *table.Model
	host     Host
	syncRows bool
	help     help.Model
	helpBase help.Styles
	keys     appKeys
	title    string
	theme    Theme
	noColor  bool
	width    int
	height   int
	note     string
	quitting bool
}

// NewApp builds the shell around a new table.
func NewApp(opts Options) *App {
	t := table.New(opts.Props)
	a := &App{
		table:    t,
		host:     opts.Host,
		syncRows: opts.Host != nil && opts.Props.OnChangeRowsOrder != nil,
		help:     help.New(),
		keys:     newAppKeys(t.KeyMap()),
		title:    strings.TrimSpace(opts.Title),
		theme:    opts.Theme,
	}
	if a.title == "" {
		a.title = "tablekit"
	}
	a.helpBase = a.help.Styles
	a.SetNoColor(opts.NoColor)
	a.SetSize(opts.Width, opts.Height)
	return a
}

// Table returns the hosted table.
func (a *App) Table() *table.Model { return a.table }

// Note returns the last event shown in the title bar.
func (a *App) Note() string { return a.note }

// Quitting reports whether the user asked to quit.
func (a *App) Quitting() bool { return a.quitting }

// SetNoColor toggles colors for the shell and the table.
func (a *App) SetNoColor(noColor bool) {
	a.noColor = noColor
	a.table.SetColors(a.theme.Table)
	a.table.SetNoColor(noColor)
	a.help.Styles = a.helpBase
	if noColor {
		a.help.Styles = help.Styles{}
		return
	}
	if a.theme.HelpKey != nil {
		a.help.Styles.ShortKey = a.help.Styles.ShortKey.Foreground(a.theme.HelpKey)
		a.help.Styles.FullKey = a.help.Styles.FullKey.Foreground(a.theme.HelpKey)
	}
	if a.theme.HelpValue != nil {
		a.help.Styles.ShortDesc = a.help.Styles.ShortDesc.Foreground(a.theme.HelpValue)
		a.help.Styles.FullDesc = a.help.Styles.FullDesc.Foreground(a.theme.HelpValue)
	}
}

// SetSize lays out the title, table and help for a window of the given size.
// The table starts on the line below the title.
func (a *App) SetSize(width, height int) {
	a.width = width
	a.height = height
	a.help.SetWidth(width)
	a.table.SetOrigin(0, 1)
	if height <= 0 {
		a.table.SetSize(width, 0)
		return
	}
	body := height - 1 - lipgloss.Height(a.helpView())
	a.table.SetSize(width, max(body, 1))
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return a.table.Init()
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetSize(msg.Width, msg.Height)
		return a, nil
	case tea.KeyPressMsg:
		switch {
		case key.Matches(msg, a.keys.Quit):
			a.quitting = true
			return a, tea.Quit
		case key.Matches(msg, a.keys.Help):
			a.help.ShowAll = !a.help.ShowAll
			a.SetSize(a.width, a.height)
			return a, nil
		}
	case table.SelectionChangedMsg:
		a.note = fmt.Sprintf("%d selected", len(msg.Keys))
		return a, nil
	case table.ReorderResultMsg:
		t, cmd := a.table.Update(msg)
		a.table = t
		a.noteReorder(msg)
		if msg.Err == nil && a.syncRows && !a.table.Busy() {
			if err := a.table.SetRows(a.host.Rows()); err != nil {
				a.note = "host rows rejected"
			}
		}
		return a, cmd
	}
	t, cmd := a.table.Update(msg)
	a.table = t
	return a, cmd
}

func (a *App) noteReorder(msg table.ReorderResultMsg) {
	keyOf := record.KeyFunc(a.table.KeyField())
	what := fmt.Sprintf("%s %s %s", keyOf(msg.Intent.Moving), msg.Intent.Kind, keyOf(msg.Intent.Target))
	switch {
	case msg.Err == nil:
		a.note = "moved " + what
	case errors.Is(msg.Err, context.DeadlineExceeded):
		a.note = "timed out moving " + what
	default:
		a.note = "rejected " + what
	}
}

// View implements tea.Model.
func (a *App) View() tea.View {
	v := tea.NewView(a.Render())
	v.MouseMode = tea.MouseModeCellMotion
	v.AltScreen = true
	return v
}

// Render returns the frame as a string.
func (a *App) Render() string {
	if a.quitting {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left, a.titleView(), a.table.View(), a.helpView())
}

func (a *App) titleView() string {
	title := a.title
	if a.note != "" {
		title += "  " + a.note
	}
	style := lipgloss.NewStyle().Bold(true)
	if !a.noColor && a.theme.Title != nil {
		style = style.Foreground(a.theme.Title)
	}
	return style.Render(title)
}

func (a *App) helpView() string {
	return a.help.View(a.keys)
}
