// Package tui is the embedding API of the tablekit widget. Hosts either
// compose a Model into their own Bubble Tea program or hand Props to Run for
// a full-screen table.
package tui

import (
	"context"
	"os"
	"strconv"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"

	"github.com/oakwood-commons/tablekit/internal/ui"
	"github.com/oakwood-commons/tablekit/internal/ui/table"
)

type (
	// Props configure the table. See table.Props.
	Props = table.Props
	// Model is the table widget.
	Model = table.Model
	// KeyMap lists the widget bindings.
	KeyMap = table.KeyMap
	// Colors are the widget theme colors.
	Colors = table.Colors
	// ReorderFunc is the host reorder callback.
	ReorderFunc = table.ReorderFunc
	// ReorderResultMsg reports the outcome of a reorder.
	ReorderResultMsg = table.ReorderResultMsg
	// SelectionChangedMsg carries the selection after a user toggle.
	SelectionChangedMsg = table.SelectionChangedMsg
	// Theme holds the full-screen shell colors.
	Theme = ui.Theme
)

var (
	// ErrReorderRejected wraps host errors returned from OnChangeRowsOrder.
	ErrReorderRejected = table.ErrReorderRejected
	// ErrInvalidRows is returned when rows lack a usable key or share one.
	ErrInvalidRows = table.ErrInvalidRows
)

// New builds a table Model for embedding. It fails with ErrInvalidRows when
// a row has no usable value for props.KeyField or two rows share one.
func New(props Props) (*Model, error) {
	m := table.New(props)
	if err := m.RowsErr(); err != nil {
		return nil, err
	}
	return m, nil
}

// DefaultColors returns the built-in palette.
func DefaultColors() Colors { return table.DefaultColors() }

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap { return table.DefaultKeyMap() }

// Run shows props in a full-screen program until the user quits. Invalid
// rows fail with ErrInvalidRows before the program starts.
func Run(ctx context.Context, props Props, cfg Config, opts ...tea.ProgramOption) error {
	if err := table.New(props).RowsErr(); err != nil {
		return err
	}
	if props.Context == nil {
		props.Context = ctx
	}
	return ui.Run(ctx, cfg.options(props), cfg.StartKeys, opts...)
}

// RenderSnapshot renders one frame of the full-screen table after replaying
// cfg.StartKeys, without a terminal.
func RenderSnapshot(props Props, cfg Config) string {
	return ui.RenderSnapshot(ui.SnapshotConfig{Options: cfg.options(props), StartKeys: cfg.StartKeys})
}

// DetectTerminalSize returns the best-effort terminal width and height by
// probing stdout, stderr and stdin, then the COLUMNS environment variable.
// It falls back to 80x24.
func DetectTerminalSize() (width int, height int) {
	fds := []uintptr{os.Stdout.Fd(), os.Stderr.Fd(), os.Stdin.Fd()}
	for _, fd := range fds {
		if w, h, err := term.GetSize(int(fd)); err == nil && (w > 0 || h > 0) {
			return w, h
		}
	}
	if col := os.Getenv("COLUMNS"); col != "" {
		if w, err := strconv.Atoi(col); err == nil && w > 0 {
			return w, 24
		}
	}
	return 80, 24
}
