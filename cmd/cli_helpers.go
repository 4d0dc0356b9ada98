package cmd

import (
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/oakwood-commons/tablekit/internal/config"
	"github.com/oakwood-commons/tablekit/pkg/record"
	"github.com/oakwood-commons/tablekit/pkg/reorder"
)

type themeSelectionError struct {
	Selected     string
	Available    []string
	DefaultTheme string
}

func (e themeSelectionError) Error() string {
	return fmt.Sprintf("unknown theme %q\navailable themes: %v\ndefault theme: %s", e.Selected, e.Available, e.DefaultTheme)
}

// selectTheme points cfg at the named preset. An empty name keeps the
// configured default.
func selectTheme(cfg *config.File, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	if _, ok := cfg.Themes[name]; !ok {
		available := make([]string, 0, len(cfg.Themes))
		for n := range cfg.Themes {
			available = append(available, n)
		}
		slices.Sort(available)
		return themeSelectionError{Selected: name, Available: available, DefaultTheme: cfg.Theme.Default}
	}
	cfg.Theme.Default = name
	return nil
}

type snapshotSize struct {
	Width  int
	Height int
}

// resolveSnapshotSize fills unset dimensions from the detected terminal size
// and falls back to 80x24.
func resolveSnapshotSize(flagWidth, flagHeight, detectedWidth, detectedHeight int) snapshotSize {
	width, height := flagWidth, flagHeight
	if width <= 0 {
		width = detectedWidth
	}
	if height <= 0 {
		height = detectedHeight
	}
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	return snapshotSize{Width: width, Height: height}
}

// moveSpec is a parsed --move flag value, "moving:before|after:target".
type moveSpec struct {
	Moving record.Key
	Kind   reorder.Placement
	Target record.Key
}

func parseMove(s string) (moveSpec, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return moveSpec{}, fmt.Errorf("invalid move %q (expected moving:before|after:target)", s)
	}
	kind, err := reorder.ParsePlacement(parts[1])
	if err != nil {
		return moveSpec{}, fmt.Errorf("invalid move %q: %w", s, err)
	}
	moving, target := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[2])
	if moving == "" || target == "" {
		return moveSpec{}, fmt.Errorf("invalid move %q: empty key", s)
	}
	return moveSpec{Moving: record.Key(moving), Kind: kind, Target: record.Key(target)}, nil
}

// applyMoves applies each move in order with the configured strategy.
func applyMoves(rows []record.Record, keyField string, strategy reorder.Strategy, moves []moveSpec) ([]record.Record, error) {
	keyOf := record.KeyFunc(keyField)
	for _, mv := range moves {
		mi := record.IndexOf(rows, keyField, mv.Moving)
		ti := record.IndexOf(rows, keyField, mv.Target)
		if mi < 0 || ti < 0 {
			return rows, fmt.Errorf("move %s %s %s: %w", mv.Moving, mv.Kind, mv.Target, reorder.ErrItemNotFound)
		}
		next, err := reorder.Move(rows, reorder.MoveIntent[record.Record]{
			Kind:   mv.Kind,
			Moving: rows[mi],
			Target: rows[ti],
		}, keyOf, strategy)
		if err != nil {
			return rows, fmt.Errorf("move %s %s %s: %w", mv.Moving, mv.Kind, mv.Target, err)
		}
		rows = next
	}
	return rows, nil
}

// cliVersionString builds a human-readable version string for CLI output.
func cliVersionString(cfg config.File) string {
	name := cfg.App.About.Name
	if name == "" {
		name = "tablekit"
	}
	version := cfg.App.About.Version
	if version == "" {
		version = "dev"
	}
	goVersion := cfg.App.About.GoVersion
	if goVersion == "" {
		goVersion = runtime.Version()
	}
	return fmt.Sprintf("%s %s (%s, commit %s)", name, version, goVersion, cfg.App.About.GitCommit)
}

// getCLILongHelp returns the long help text from the embedded config.
func getCLILongHelp() string {
	cfg, err := config.Load("")
	if err != nil || cfg.App.About.Description == "" {
		return "tablekit renders a configurable, selectable and sortable table."
	}
	var b strings.Builder
	b.WriteString(cfg.App.About.Description)
	b.WriteString("\n\nRun 'tablekit demo' for the interactive table over mock users, or\n'tablekit render' for static output.")
	if cfg.App.About.RepositoryURL != "" {
		b.WriteString("\n\n")
		b.WriteString(cfg.App.About.RepositoryURL)
	}
	return b.String()
}
