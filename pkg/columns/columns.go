package columns

import (
	"strings"

	"github.com/oakwood-commons/tablekit/pkg/record"
)

// RenderFunc produces the content of a cell from a whole record.
type RenderFunc func(record.Record) string

// Column describes one table column. Render takes precedence over Field.
type Column struct {
	Title  string     `yaml:"title" toml:"title"`
	Field  string     `yaml:"field" toml:"field"`
	Size   Size       `yaml:"size" toml:"size"`
	Render RenderFunc `yaml:"-" toml:"-"`
}

// Heading returns the header text, "-" for an untitled column.
func (c Column) Heading() string {
	if c.Title == "" {
		return "-"
	}
	return c.Title
}

// Cell returns the content of this column for rec.
func (c Column) Cell(rec record.Record) string {
	if c.Render != nil {
		return c.Render(rec)
	}
	if c.Field == "" {
		return ""
	}
	return rec.Field(c.Field)
}

// Sizes returns the size of each column in order.
func Sizes(cols []Column) []Size {
	out := make([]Size, len(cols))
	for i, c := range cols {
		out[i] = c.Size
	}
	return out
}

// Affordances lists the optional leading tracks of a table.
type Affordances struct {
	Selectable bool
	Sortable   bool
}

// TrackKind identifies what a grid track holds.
type TrackKind int

const (
	TrackColumn TrackKind = iota
	TrackReorder
	TrackSelection
)

func (k TrackKind) String() string {
	switch k {
	case TrackReorder:
		return "reorder"
	case TrackSelection:
		return "selection"
	default:
		return "column"
	}
}

// Track is one resolved grid track.
type Track struct {
	Kind   TrackKind
	Pixels float64
	// Column is the index into the column list for TrackColumn, -1 otherwise.
	Column int
}

// Unit formats the track width, e.g. "25px".
func (t Track) Unit() string { return pxUnit(t.Pixels) }

// Cells converts the track width to terminal cells.
func (t Track) Cells(cellPx int) int { return Cells(t.Pixels, cellPx) }

// Tracks resolves the full track list. The selection track is prepended to
// the columns first and the reorder track after it, which leaves the reorder
// track leftmost.
func Tracks(sizes []Size, a Affordances) []Track {
	tracks := make([]Track, 0, len(sizes)+2)
	for i, s := range sizes {
		tracks = append(tracks, Track{Kind: TrackColumn, Pixels: s.Pixels(), Column: i})
	}
	if a.Selectable {
		tracks = append([]Track{{Kind: TrackSelection, Pixels: SelectionTrackPx, Column: -1}}, tracks...)
	}
	if a.Sortable {
		tracks = append([]Track{{Kind: TrackReorder, Pixels: ReorderTrackPx, Column: -1}}, tracks...)
	}
	return tracks
}

// GridTemplate returns the space separated pixel widths of every track,
// e.g. "20px 25px 60px 120px".
func GridTemplate(sizes []Size, a Affordances) string {
	tracks := Tracks(sizes, a)
	units := make([]string, len(tracks))
	for i, t := range tracks {
		units[i] = t.Unit()
	}
	return strings.Join(units, " ")
}
