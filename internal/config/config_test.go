package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/tablekit/pkg/columns"
	"github.com/oakwood-commons/tablekit/pkg/reorder"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	f, err := Default()
	require.NoError(t, err)
	require.NoError(t, f.Validate())

	assert.Equal(t, "tablekit", f.App.About.Name)
	assert.Equal(t, "id", f.Table.KeyField)
	assert.True(t, f.Table.Selectable)
	assert.True(t, f.Table.Sortable)
	assert.Equal(t, 10, f.Table.CellPx)
	assert.Equal(t, 5*time.Second, f.Table.Reorder.Timeout)
	assert.Equal(t, 400*time.Millisecond, f.Demo.Latency)
	assert.Contains(t, f.Themes, "dark")
	assert.Contains(t, f.Themes, "light")

	require.NotEmpty(t, f.Columns)
	assert.Equal(t, columns.PixelSize(40), f.Columns[0].Size)
	assert.Equal(t, columns.TokenSize(columns.Medium), f.Columns[1].Size)

	s, err := f.Strategy()
	require.NoError(t, err)
	assert.Equal(t, reorder.Corrected, s)
}

func TestLoadWithoutFileExpandsTemplates(t *testing.T) {
	f, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "tablekit: a selectable, sortable table for the terminal", f.App.About.Description)
	assert.NotEmpty(t, f.App.About.Version)
	assert.NotEmpty(t, f.App.About.GoVersion)
}

func TestLoadYAMLOverlay(t *testing.T) {
	path := writeFile(t, "config.yaml", `
table:
  sortable: false
  empty_text: "Nothing in {{ .Name }}"
  reorder:
    strategy: legacy
columns:
  - title: Who
    field: name
    size: 90
themes:
  dark:
    indicator: "#ff00ff"
`)
	f, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, f.Validate())

	assert.False(t, f.Table.Sortable)
	assert.True(t, f.Table.Selectable, "unset keys keep defaults")
	assert.Equal(t, "Nothing in tablekit", f.Table.EmptyText)
	assert.Equal(t, 5*time.Second, f.Table.Reorder.Timeout)
	s, err := f.Strategy()
	require.NoError(t, err)
	assert.Equal(t, reorder.Legacy, s)

	require.Len(t, f.Columns, 1, "columns are replaced whole")
	assert.Equal(t, columns.PixelSize(90), f.Columns[0].Size)

	dark := f.Themes["dark"]
	assert.Equal(t, "#ff00ff", dark.Indicator)
	assert.Equal(t, "57", dark.CursorBG, "theme fields merge individually")
	assert.Contains(t, f.Themes, "light")
}

func TestLoadTOMLOverlay(t *testing.T) {
	path := writeFile(t, "config.toml", `
[table]
key_field = "uid"
row_height = 3

[table.reorder]
timeout = "250ms"

[[columns]]
title = "Name"
field = "name"
size = "small"

[[columns]]
title = "Age"
field = "age"
size = 30

[demo]
count = 4
fail_every = 2
`)
	f, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, f.Validate())

	assert.Equal(t, "uid", f.Table.KeyField)
	assert.Equal(t, 3, f.Table.RowHeight)
	assert.Equal(t, 250*time.Millisecond, f.Table.Reorder.Timeout)
	require.Len(t, f.Columns, 2)
	assert.Equal(t, columns.TokenSize(columns.Small), f.Columns[0].Size)
	assert.Equal(t, columns.PixelSize(30), f.Columns[1].Size)
	assert.Equal(t, 4, f.Demo.Count)
	assert.Equal(t, 2, f.Demo.FailEvery)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeFile(t, "bad.yaml", "table: [1, 2"))
	require.Error(t, err)

	_, err = Load(writeFile(t, "bad.toml", "table = ["))
	require.Error(t, err)

	_, err = Load(writeFile(t, "tmpl.yaml", "table:\n  empty_text: \"{{ .Nope \"\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	f, err := Default()
	require.NoError(t, err)

	f.Table.KeyField = " "
	f.Table.CellPx = 0
	f.Table.Reorder.Strategy = "sideways"
	f.Columns = nil
	f.Theme.Default = "neon"
	f.Demo.FailEvery = -1

	err = f.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	for _, want := range []string{"key_field", "cell_px", "sideways", "columns is empty", "neon", "fail_every"} {
		assert.Contains(t, err.Error(), want)
	}

	_, err = f.ActiveTheme()
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, "/explicit.yaml", ResolvePath("/explicit.yaml"))

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	assert.Empty(t, ResolvePath(""))

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "tablekit"), 0o755))
	path := filepath.Join(dir, "tablekit", "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))
	assert.Equal(t, path, ResolvePath(""))
}

func TestYAMLOmitsBuildFields(t *testing.T) {
	f, err := Load("")
	require.NoError(t, err)
	out, err := f.YAML()
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, "key_field: id")
	assert.Contains(t, s, "timeout: 5s")
	assert.Contains(t, s, "size: medium")
	assert.NotContains(t, s, f.App.About.GoVersion)

	var round File
	require.NoError(t, overlay(&round, "round.yaml", out))
	assert.Equal(t, f.Columns[0].Size, round.Columns[0].Size)
}
