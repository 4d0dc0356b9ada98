package ui

import (
	"context"
	"os"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"
)

// Run starts the full-screen program. Width/height of 0 use the terminal
// size reported by Bubble Tea; a forced size fills the other dimension from
// the terminal, falling back to 80x24.
func Run(ctx context.Context, opts Options, startKeys []string, progOpts ...tea.ProgramOption) error {
	if opts.Width > 0 || opts.Height > 0 {
		w, h := opts.Width, opts.Height
		if w <= 0 || h <= 0 {
			if tw, th, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
				if w <= 0 {
					w = tw
				}
				if h <= 0 {
					h = th
				}
			}
		}
		if w <= 0 {
			w = 80
		}
		if h <= 0 {
			h = 24
		}
		opts.Width, opts.Height = w, h
		progOpts = append(progOpts, tea.WithWindowSize(w, h))
	}

	a := NewApp(opts)
	ApplyStartupKeys(a, startKeys)
	progOpts = append(progOpts, tea.WithContext(ctx))
	_, err := tea.NewProgram(a, progOpts...).Run()
	return err
}
