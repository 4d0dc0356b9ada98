package tui

import (
	"strings"

	"github.com/oakwood-commons/tablekit/internal/config"
	"github.com/oakwood-commons/tablekit/internal/ui"
)

// Config holds host-provided settings for running the full-screen table.
type Config struct {
	AppName string
	Width   int
	Height  int
	NoColor bool
	// ThemeName picks a preset from the embedded config (dark, light). It
	// takes precedence over Theme.
	ThemeName string
	Theme     *ui.Theme
	// Host, when set, is re-read after every accepted reorder.
	Host      Host
	StartKeys []string
}

// Host is the application that owns the list shown by the table.
type Host = ui.Host

// DefaultConfig returns a baseline config with the same defaults as the CLI.
func DefaultConfig() Config {
	cfg := Config{AppName: "tablekit", ThemeName: "dark"}
	if embedded, err := config.Default(); err == nil {
		if name := strings.TrimSpace(embedded.App.About.Name); name != "" {
			cfg.AppName = name
		}
		if name := strings.TrimSpace(embedded.Theme.Default); name != "" {
			cfg.ThemeName = name
		}
	}
	return cfg
}

// theme resolves the theme to use. Unknown preset names fall back to the
// built-in colors so the table still starts.
func (c Config) theme() ui.Theme {
	if name := strings.TrimSpace(c.ThemeName); name != "" {
		if embedded, err := config.Default(); err == nil {
			if th, ok := embedded.Themes[name]; ok {
				return ui.ThemeFromConfig(th)
			}
		}
		return ui.DefaultTheme()
	}
	if c.Theme != nil {
		return *c.Theme
	}
	return ui.DefaultTheme()
}

func (c Config) options(props Props) ui.Options {
	return ui.Options{
		Title:   c.AppName,
		Props:   props,
		Theme:   c.theme(),
		NoColor: c.NoColor,
		Host:    c.Host,
		Width:   c.Width,
		Height:  c.Height,
	}
}
