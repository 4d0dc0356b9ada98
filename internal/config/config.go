package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"text/template"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/tablekit/pkg/columns"
	"github.com/oakwood-commons/tablekit/pkg/reorder"
	"github.com/oakwood-commons/tablekit/pkg/settings"
)

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

// ErrInvalidConfig is returned by Validate for unusable settings.
var ErrInvalidConfig = errors.New("invalid config")

// File is the full configuration document.
type File struct {
	App     AppConfig              `yaml:"app" toml:"app"`
	Table   TableConfig            `yaml:"table" toml:"table"`
	Columns []columns.Column       `yaml:"columns" toml:"columns"`
	Theme   ThemeSelection         `yaml:"theme" toml:"theme"`
	Themes  map[string]ThemeConfig `yaml:"themes" toml:"themes"`
	Demo    DemoConfig             `yaml:"demo" toml:"demo"`
}

// AppConfig holds application metadata.
type AppConfig struct {
	About AboutConfig `yaml:"about" toml:"about"`
}

// AboutConfig describes the application. Version, GoVersion and GitCommit
// are filled from build info at load time and never written back out.
type AboutConfig struct {
	Name          string `yaml:"name" toml:"name"`
	Description   string `yaml:"description,omitempty" toml:"description,omitempty"`
	License       string `yaml:"license,omitempty" toml:"license,omitempty"`
	RepositoryURL string `yaml:"repository_url,omitempty" toml:"repository_url,omitempty"`
	Version       string `yaml:"-" toml:"-"`
	GoVersion     string `yaml:"-" toml:"-"`
	GitCommit     string `yaml:"-" toml:"-"`
}

// TableConfig configures the widget.
type TableConfig struct {
	KeyField   string        `yaml:"key_field" toml:"key_field"`
	Selectable bool          `yaml:"selectable" toml:"selectable"`
	Sortable   bool          `yaml:"sortable" toml:"sortable"`
	RowHeight  int           `yaml:"row_height" toml:"row_height"`
	CellPx     int           `yaml:"cell_px" toml:"cell_px"`
	EmptyText  string        `yaml:"empty_text" toml:"empty_text"`
	Reorder    ReorderConfig `yaml:"reorder" toml:"reorder"`
}

// ReorderConfig configures how reorders are applied and awaited.
type ReorderConfig struct {
	Strategy string        `yaml:"strategy" toml:"strategy"`
	Timeout  time.Duration `yaml:"timeout" toml:"timeout"`
}

// ThemeSelection names the active theme preset.
type ThemeSelection struct {
	Default string `yaml:"default" toml:"default"`
}

// ThemeConfig is a theme preset. Colors are lipgloss color strings (ANSI
// index or hex).
type ThemeConfig struct {
	HeaderFG   string `yaml:"header_fg,omitempty" toml:"header_fg,omitempty"`
	HeaderBG   string `yaml:"header_bg,omitempty" toml:"header_bg,omitempty"`
	CursorFG   string `yaml:"cursor_fg,omitempty" toml:"cursor_fg,omitempty"`
	CursorBG   string `yaml:"cursor_bg,omitempty" toml:"cursor_bg,omitempty"`
	SelectedFG string `yaml:"selected_fg,omitempty" toml:"selected_fg,omitempty"`
	Indicator  string `yaml:"indicator,omitempty" toml:"indicator,omitempty"`
	Muted      string `yaml:"muted,omitempty" toml:"muted,omitempty"`
	Error      string `yaml:"error,omitempty" toml:"error,omitempty"`
	Title      string `yaml:"title,omitempty" toml:"title,omitempty"`
	HelpKey    string `yaml:"help_key,omitempty" toml:"help_key,omitempty"`
	HelpValue  string `yaml:"help_value,omitempty" toml:"help_value,omitempty"`
}

// DemoConfig configures the mock data set and the simulated host. Input,
// when set, replaces the mock users with records read from a file.
type DemoConfig struct {
	Input     string        `yaml:"input" toml:"input"`
	Count     int           `yaml:"count" toml:"count"`
	Seed      int64         `yaml:"seed" toml:"seed"`
	Latency   time.Duration `yaml:"latency" toml:"latency"`
	FailEvery int           `yaml:"fail_every" toml:"fail_every"`
	Where     string        `yaml:"where" toml:"where"`
}

// DefaultConfigYAML returns a copy of the embedded default config YAML bytes.
func DefaultConfigYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// Default parses the embedded default configuration.
func Default() (File, error) {
	var f File
	if len(embeddedDefaultConfig) == 0 {
		return f, fmt.Errorf("embedded default config is empty")
	}
	if err := yaml.Unmarshal(embeddedDefaultConfig, &f); err != nil {
		return f, fmt.Errorf("decode default config: %w", err)
	}
	return f, nil
}

// Load returns the defaults merged with the file at path, if any. Keys present
// in the file replace the defaults; lists such as columns are replaced whole.
func Load(path string) (File, error) {
	f, err := Default()
	if err != nil {
		return f, err
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return f, fmt.Errorf("read config %s: %w", path, err)
		}
		base := f.Themes
		f.Themes = nil
		if err := overlay(&f, path, data); err != nil {
			return f, err
		}
		f.Themes = mergeThemes(base, f.Themes)
	}
	applyBuildInfo(&f)
	if err := expandTemplates(&f); err != nil {
		return f, err
	}
	return f, nil
}

// overlay decodes data on top of f. TOML documents are normalized through a
// generic map so the same YAML hooks (column sizes, durations) apply to both
// formats.
func overlay(f *File, path string, data []byte) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		var generic map[string]any
		if err := toml.Unmarshal(data, &generic); err != nil {
			return fmt.Errorf("decode config %s: %w", path, err)
		}
		var err error
		if data, err = yaml.Marshal(generic); err != nil {
			return fmt.Errorf("normalize config %s: %w", path, err)
		}
	}
	if err := yaml.Unmarshal(data, f); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

// mergeThemes layers user presets over the defaults field by field.
func mergeThemes(base, user map[string]ThemeConfig) map[string]ThemeConfig {
	out := make(map[string]ThemeConfig, len(base)+len(user))
	for name, th := range base {
		out[name] = th
	}
	for name, th := range user {
		out[name] = mergeTheme(out[name], th)
	}
	return out
}

func mergeTheme(base, override ThemeConfig) ThemeConfig {
	out := base
	apply := func(src string, dst *string) {
		if src != "" {
			*dst = src
		}
	}
	apply(override.HeaderFG, &out.HeaderFG)
	apply(override.HeaderBG, &out.HeaderBG)
	apply(override.CursorFG, &out.CursorFG)
	apply(override.CursorBG, &out.CursorBG)
	apply(override.SelectedFG, &out.SelectedFG)
	apply(override.Indicator, &out.Indicator)
	apply(override.Muted, &out.Muted)
	apply(override.Error, &out.Error)
	apply(override.Title, &out.Title)
	apply(override.HelpKey, &out.HelpKey)
	apply(override.HelpValue, &out.HelpValue)
	return out
}

func applyBuildInfo(f *File) {
	info := settings.VersionInformation
	f.App.About.Version = info.BuildVersion
	f.App.About.GoVersion = runtime.Version()
	f.App.About.GitCommit = info.Commit
}

func expandTemplates(f *File) error {
	data := struct {
		Name    string
		Version string
	}{f.App.About.Name, f.App.About.Version}
	for _, field := range []*string{&f.App.About.Description, &f.Table.EmptyText} {
		if !strings.Contains(*field, "{{") {
			continue
		}
		tmpl, err := template.New("config").Parse(*field)
		if err != nil {
			return fmt.Errorf("%w: template %q: %v", ErrInvalidConfig, *field, err)
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return fmt.Errorf("%w: template %q: %v", ErrInvalidConfig, *field, err)
		}
		*field = buf.String()
	}
	return nil
}

// ResolvePath returns the explicit path if set, otherwise the XDG path
// ($XDG_CONFIG_HOME/tablekit/config.yaml) or ~/.config/tablekit/config.yaml
// if present.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	candidate := ""
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidate = filepath.Join(xdg, settings.CliBinaryName, "config.yaml")
	} else if home, err := os.UserHomeDir(); err == nil {
		candidate = filepath.Join(home, ".config", settings.CliBinaryName, "config.yaml")
	}
	if candidate != "" {
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate
		}
	}
	return ""
}

// Validate checks the settings the widget and the demo depend on.
func (f File) Validate() error {
	var errs []error
	if strings.TrimSpace(f.Table.KeyField) == "" {
		errs = append(errs, errors.New("table.key_field is empty"))
	}
	if f.Table.RowHeight < 0 {
		errs = append(errs, fmt.Errorf("table.row_height must be >= 0, got %d", f.Table.RowHeight))
	}
	if f.Table.CellPx <= 0 {
		errs = append(errs, fmt.Errorf("table.cell_px must be > 0, got %d", f.Table.CellPx))
	}
	if _, err := f.Strategy(); err != nil {
		errs = append(errs, err)
	}
	if f.Table.Reorder.Timeout < 0 {
		errs = append(errs, errors.New("table.reorder.timeout must not be negative"))
	}
	if len(f.Columns) == 0 {
		errs = append(errs, errors.New("columns is empty"))
	}
	for i, c := range f.Columns {
		if c.Field == "" && c.Title == "" {
			errs = append(errs, fmt.Errorf("columns[%d] has neither title nor field", i))
		}
	}
	if _, ok := f.Themes[f.Theme.Default]; !ok {
		errs = append(errs, fmt.Errorf("theme %q is not defined", f.Theme.Default))
	}
	if f.Demo.Count < 0 {
		errs = append(errs, fmt.Errorf("demo.count must be >= 0, got %d", f.Demo.Count))
	}
	if f.Demo.FailEvery < 0 {
		errs = append(errs, fmt.Errorf("demo.fail_every must be >= 0, got %d", f.Demo.FailEvery))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// Strategy parses table.reorder.strategy.
func (f File) Strategy() (reorder.Strategy, error) {
	s, err := reorder.ParseStrategy(f.Table.Reorder.Strategy)
	if err != nil {
		return s, fmt.Errorf("table.reorder.strategy: %w", err)
	}
	return s, nil
}

// ActiveTheme returns the selected theme preset.
func (f File) ActiveTheme() (ThemeConfig, error) {
	th, ok := f.Themes[f.Theme.Default]
	if !ok {
		return ThemeConfig{}, fmt.Errorf("%w: theme %q is not defined", ErrInvalidConfig, f.Theme.Default)
	}
	return th, nil
}

// YAML renders the configuration. Build-time fields are omitted.
func (f File) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}
