package ui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// SnapshotConfig configures a one-frame rendering without a terminal.
type SnapshotConfig struct {
	Options
	StartKeys []string
}

// RenderSnapshot builds the app, replays the start keys and returns the
// resulting frame. Width and height default to 80x24.
func RenderSnapshot(cfg SnapshotConfig) string {
	opts := cfg.Options
	if opts.Width <= 0 {
		opts.Width = 80
	}
	if opts.Height <= 0 {
		opts.Height = 24
	}
	a := NewApp(opts)
	ApplyStartupKeys(a, cfg.StartKeys)
	view := a.Render()
	if opts.NoColor {
		view = ansi.Strip(view)
	}
	return padSnapshotHeight(view, opts.Height, opts.Width)
}

func padSnapshotHeight(view string, height, width int) string {
	if height <= 0 {
		return view
	}
	lines := strings.Split(strings.TrimRight(view, "\n"), "\n")
	if len(lines) >= height {
		return strings.Join(lines, "\n")
	}
	padLine := " "
	if width > 1 {
		padLine = strings.Repeat(" ", width)
	}
	for len(lines) < height {
		lines = append(lines, padLine)
	}
	return strings.Join(lines, "\n")
}
