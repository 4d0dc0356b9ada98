package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/tablekit/pkg/record"
)

func keys(t *testing.T, recs []record.Record) []record.Key {
	t.Helper()
	ks, err := record.Keys(recs, "id")
	require.NoError(t, err)
	return ks
}

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		format Format
	}{
		{"json array", `[{"id":1,"name":"a"},{"id":2,"name":"b"}]`, FormatJSON},
		{"json wrapped", `{"users":[{"id":1},{"id":2}]}`, FormatJSON},
		{"ndjson", "{\"id\":1}\n{\"id\":2}\n", FormatNDJSON},
		{"yaml list", "- id: 1\n- id: 2\n", FormatYAML},
		{"yaml multi doc", "id: 1\n---\nid: 2\n", FormatYAML},
		{"toml tables", "[[users]]\nid = 1\n\n[[users]]\nid = 2\n", FormatTOML},
		{"csv", "id,name\n1,a\n2,b\n", FormatCSV},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := Load([]byte(tt.input), tt.format)
			require.NoError(t, err)
			assert.Equal(t, []record.Key{"1", "2"}, keys(t, recs))
		})
	}
}

func TestLoadSniffsFormat(t *testing.T) {
	tests := map[string]string{
		"json":   `[{"id":1},{"id":2}]`,
		"pretty": "[\n{\"id\":1},\n{\"id\":2}\n]",
		"ndjson": "{\"id\":1}\n{\"id\":2}",
		"yaml":   "- id: 1\n- id: 2",
		"multi":  "---\nid: 1\n---\nid: 2",
		"toml":   "[[users]]\nid = 1\n[[users]]\nid = 2",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			recs, err := Load([]byte(input), FormatAuto)
			require.NoError(t, err)
			assert.Equal(t, []record.Key{"1", "2"}, keys(t, recs))
		})
	}
}

func TestLoadEmpty(t *testing.T) {
	recs, err := Load([]byte("  \n"), FormatAuto)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestLoadRejectsScalars(t *testing.T) {
	_, err := Load([]byte(`[1, 2, 3]`), FormatJSON)
	require.ErrorIs(t, err, ErrNotRecords)

	_, err = Load([]byte(`{"a":1,"b":2}`), FormatJSON)
	require.NoError(t, err, "a single object is one record")
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load([]byte(`[{"id":`), FormatJSON)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")

	_, err = Load([]byte("{\"id\":1}\nnope"), FormatNDJSON)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")

	_, err = Load([]byte("x"), Format("xml"))
	require.Error(t, err)
}

func TestLoadCSVShortRow(t *testing.T) {
	recs, err := Load([]byte("id,name,role\n1,a\n"), FormatCSV)
	// encoding/csv rejects rows with a different field count by default.
	require.Error(t, err)
	assert.Nil(t, recs)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "users.yaml")
	require.NoError(t, os.WriteFile(path, []byte("users:\n  - id: 7\n    name: Ada\n"), 0o600))

	recs, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Ada", recs[0]["name"])

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatForPath("a.JSON"))
	assert.Equal(t, FormatNDJSON, FormatForPath("a.jsonl"))
	assert.Equal(t, FormatYAML, FormatForPath("a.yml"))
	assert.Equal(t, FormatTOML, FormatForPath("a.toml"))
	assert.Equal(t, FormatCSV, FormatForPath("a.csv"))
	assert.Equal(t, FormatAuto, FormatForPath("a.txt"))
}

func TestFields(t *testing.T) {
	recs := []record.Record{{"id": 1, "name": "a"}, {"id": 2, "role": "x"}}
	assert.Equal(t, []string{"id", "name", "role"}, Fields(recs))
}

func TestIsLikelyTOML(t *testing.T) {
	assert.True(t, isLikelyTOML("[server]\nport = 1"))
	assert.True(t, isLikelyTOML("name = \"x\"\nage = 3"))
	assert.False(t, isLikelyTOML("[1, 2, 3]"))
	assert.False(t, isLikelyTOML("name: x\nage: 3"))
}

func TestIsLikelyNDJSON(t *testing.T) {
	assert.True(t, isLikelyNDJSON([]string{`{"a":1}`, `{"a":2}`}))
	assert.False(t, isLikelyNDJSON([]string{`{"a":1}`}))
	assert.False(t, isLikelyNDJSON([]string{"a: 1", "b: 2"}))
}
