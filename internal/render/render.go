// Package render writes static renderings of a table: a text table, HTML,
// and JSON/YAML/TOML documents.
package render

import (
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/safehtml/template"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/tablekit/pkg/columns"
	"github.com/oakwood-commons/tablekit/pkg/record"
	"github.com/oakwood-commons/tablekit/pkg/selection"
)

//go:embed templates/*
var templateFS embed.FS

// Format names an output format.
type Format string

const (
	FormatTable Format = "table"
	FormatHTML  Format = "html"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTOML  Format = "toml"
)

// Formats lists the supported formats.
var Formats = []Format{FormatTable, FormatHTML, FormatJSON, FormatYAML, FormatTOML}

// ParseFormat accepts a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (expected table, html, json, yaml or toml)", s)
}

// Document is the table state to render.
type Document struct {
	Columns    []columns.Column
	Rows       []record.Record
	KeyField   string
	Selected   []record.Key
	Selectable bool
	Sortable   bool
	CellPx     int
	EmptyText  string
}

// Export is the structured form written by the JSON, YAML and TOML formats.
type Export struct {
	GridTemplate string      `json:"grid_template" yaml:"grid_template" toml:"grid_template"`
	Columns      []string    `json:"columns" yaml:"columns" toml:"columns"`
	Selected     []string    `json:"selected" yaml:"selected" toml:"selected"`
	AllSelected  bool        `json:"all_selected" yaml:"all_selected" toml:"all_selected"`
	Rows         []ExportRow `json:"rows" yaml:"rows" toml:"rows"`
}

// ExportRow is one rendered row.
type ExportRow struct {
	Key      string   `json:"key" yaml:"key" toml:"key"`
	Selected bool     `json:"selected" yaml:"selected" toml:"selected"`
	Cells    []string `json:"cells" yaml:"cells" toml:"cells"`
}

// Write renders doc to w in format f.
func Write(w io.Writer, f Format, doc Document) error {
	switch f {
	case FormatTable:
		return writeTable(w, doc)
	case FormatHTML:
		return writeHTML(w, doc)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc.Export())
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc.Export()); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(doc.Export())
	}
	return fmt.Errorf("unknown output format %q", f)
}

func (d Document) keyField() string {
	if d.KeyField == "" {
		return record.DefaultKeyField
	}
	return d.KeyField
}

func (d Document) selection() *selection.Controller {
	keyOf := record.KeyFunc(d.keyField())
	keys := make([]record.Key, len(d.Rows))
	for i, r := range d.Rows {
		keys[i] = keyOf(r)
	}
	sel := selection.New(keys)
	sel.Sync(keys, d.Selected)
	return sel
}

func (d Document) affordances() columns.Affordances {
	return columns.Affordances{Selectable: d.Selectable, Sortable: d.Sortable}
}

// Export builds the structured form of doc.
func (d Document) Export() Export {
	sel := d.selection()
	keyOf := record.KeyFunc(d.keyField())
	out := Export{
		GridTemplate: columns.GridTemplate(columns.Sizes(d.Columns), d.affordances()),
		Columns:      make([]string, len(d.Columns)),
		Selected:     []string{},
		AllSelected:  sel.AllSelected(),
		Rows:         make([]ExportRow, len(d.Rows)),
	}
	for i, c := range d.Columns {
		out.Columns[i] = c.Heading()
	}
	for _, k := range sel.Selected() {
		out.Selected = append(out.Selected, string(k))
	}
	for i, r := range d.Rows {
		k := keyOf(r)
		cells := make([]string, len(d.Columns))
		for j, c := range d.Columns {
			cells[j] = c.Cell(r)
		}
		out.Rows[i] = ExportRow{Key: string(k), Selected: sel.IsSelected(k), Cells: cells}
	}
	return out
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func writeTable(w io.Writer, doc Document) error {
	if len(doc.Rows) == 0 {
		empty := doc.EmptyText
		if empty == "" {
			empty = "(0 rows)"
		}
		_, err := fmt.Fprintln(w, empty)
		return err
	}
	sel := doc.selection()
	keyOf := record.KeyFunc(doc.keyField())
	cellPx := doc.CellPx
	if cellPx <= 0 {
		cellPx = columns.DefaultCellPx
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	offset := 0
	header := table.Row{}
	if doc.Selectable {
		header = append(header, checkbox(sel.AllSelected()))
		offset = 1
	}
	configs := make([]table.ColumnConfig, 0, len(doc.Columns))
	for i, c := range doc.Columns {
		header = append(header, c.Heading())
		configs = append(configs, table.ColumnConfig{
			Number:           offset + i + 1,
			WidthMax:         columns.Cells(c.Size.Pixels(), cellPx),
			WidthMaxEnforcer: text.Trim,
		})
	}
	t.AppendHeader(header)
	t.SetColumnConfigs(configs)

	for _, r := range doc.Rows {
		row := make(table.Row, 0, len(header))
		if doc.Selectable {
			row = append(row, checkbox(sel.IsSelected(keyOf(r))))
		}
		for _, c := range doc.Columns {
			row = append(row, c.Cell(r))
		}
		t.AppendRow(row)
	}
	if doc.Selectable {
		t.AppendFooter(table.Row{fmt.Sprintf("%d/%d", sel.Len(), len(doc.Rows))})
	}
	t.Render()
	return nil
}

type htmlView struct {
	Variant      string
	GridTemplate string
	Header       []htmlCell
	Rows         []htmlRow
	Empty        bool
	EmptyText    string
}

type htmlRow struct {
	Key      string
	Selected bool
	Cells    []htmlCell
}

type htmlCell struct {
	Kind string
	Unit string
	Text string
}

var (
	htmlOnce     sync.Once
	htmlTemplate *template.Template
	htmlErr      error
)

func loadHTMLTemplate() (*template.Template, error) {
	htmlOnce.Do(func() {
		trustedFS := template.TrustedFSFromEmbed(templateFS)
		htmlTemplate, htmlErr = template.New("table.html").ParseFS(trustedFS, "templates/table.html")
	})
	return htmlTemplate, htmlErr
}

func writeHTML(w io.Writer, doc Document) error {
	tmpl, err := loadHTMLTemplate()
	if err != nil {
		return fmt.Errorf("parse html template: %w", err)
	}
	sel := doc.selection()
	keyOf := record.KeyFunc(doc.keyField())
	tracks := columns.Tracks(columns.Sizes(doc.Columns), doc.affordances())

	view := htmlView{
		Variant:      variantName(doc),
		GridTemplate: columns.GridTemplate(columns.Sizes(doc.Columns), doc.affordances()),
		Empty:        len(doc.Rows) == 0,
		EmptyText:    doc.EmptyText,
	}
	for _, t := range tracks {
		c := htmlCell{Kind: t.Kind.String(), Unit: t.Unit()}
		switch t.Kind {
		case columns.TrackSelection:
			c.Text = checkbox(sel.AllSelected())
		case columns.TrackColumn:
			c.Text = doc.Columns[t.Column].Heading()
		}
		view.Header = append(view.Header, c)
	}
	for _, r := range doc.Rows {
		k := keyOf(r)
		row := htmlRow{Key: string(k), Selected: sel.IsSelected(k)}
		for _, t := range tracks {
			c := htmlCell{Kind: t.Kind.String()}
			switch t.Kind {
			case columns.TrackReorder:
				c.Text = "⠿"
			case columns.TrackSelection:
				c.Text = checkbox(row.Selected)
			default:
				c.Text = doc.Columns[t.Column].Cell(r)
			}
			row.Cells = append(row.Cells, c)
		}
		view.Rows = append(view.Rows, row)
	}
	return tmpl.Execute(w, view)
}

func variantName(doc Document) string {
	switch {
	case doc.Selectable && doc.Sortable:
		return "selectable+sortable"
	case doc.Selectable:
		return "selectable"
	case doc.Sortable:
		return "sortable"
	default:
		return "plain"
	}
}
