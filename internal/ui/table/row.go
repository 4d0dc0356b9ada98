package table

import (
	"github.com/oakwood-commons/tablekit/pkg/columns"
	"github.com/oakwood-commons/tablekit/pkg/record"
	"github.com/oakwood-commons/tablekit/pkg/reorder"
)

// Variant names the affordances a row carries.
type Variant int

const (
	Plain Variant = iota
	Selectable
	Sortable
	SelectableSortable
)

func (v Variant) String() string {
	switch v {
	case Selectable:
		return "selectable"
	case Sortable:
		return "sortable"
	case SelectableSortable:
		return "selectable+sortable"
	default:
		return "plain"
	}
}

// RowState is what an addon needs to know about the row it decorates.
type RowState struct {
	Key       record.Key
	Selected  bool
	Dragged   bool
	Indicator reorder.Half
	Busy      bool
}

// HeaderState is what an addon needs to render the header cell.
type HeaderState struct {
	AllSelected bool
	AnySelected bool
	Empty       bool
}

// Addon is a fixed-width cell placed before the data cells of every row.
type Addon interface {
	Kind() columns.TrackKind
	Header(HeaderState) string
	Cell(RowState) string
}

type handleAddon struct{}

func (handleAddon) Kind() columns.TrackKind   { return columns.TrackReorder }
func (handleAddon) Header(HeaderState) string { return "" }
func (handleAddon) Cell(s RowState) string {
	switch {
	case s.Dragged:
		return "◆"
	case s.Indicator == reorder.Upper:
		return "▲"
	case s.Indicator == reorder.Lower:
		return "▼"
	case s.Busy:
		return "·"
	default:
		return "⠿"
	}
}

type checkboxAddon struct{}

func (checkboxAddon) Kind() columns.TrackKind { return columns.TrackSelection }
func (checkboxAddon) Header(s HeaderState) string {
	switch {
	case s.AllSelected:
		return "[x]"
	case s.AnySelected:
		return "[-]"
	default:
		return "[ ]"
	}
}
func (checkboxAddon) Cell(s RowState) string {
	if s.Selected {
		return "[x]"
	}
	return "[ ]"
}

// Row lays out one table row: the addon tracks followed by the data columns.
// Cells and tracks come from the same ordered list, so they always line up.
type Row struct {
	variant Variant
	cols    []columns.Column
	tracks  []columns.Track
	addons  []Addon // parallel to tracks; nil for data tracks
	widths  []int
	offsets []int
	cellPx  int
}

// RowBuilder assembles a Row for a column configuration.
type RowBuilder struct {
	cols       []columns.Column
	selectable bool
	sortable   bool
	cellPx     int
}

// NewRowBuilder starts a plain row over cols.
func NewRowBuilder(cols []columns.Column) *RowBuilder {
	return &RowBuilder{cols: cols, cellPx: columns.DefaultCellPx}
}

// Selectable adds the checkbox addon.
func (b *RowBuilder) Selectable(on bool) *RowBuilder {
	b.selectable = on
	return b
}

// Sortable adds the drag-handle addon.
func (b *RowBuilder) Sortable(on bool) *RowBuilder {
	b.sortable = on
	return b
}

// CellPx sets how many pixels one terminal cell stands for.
func (b *RowBuilder) CellPx(px int) *RowBuilder {
	if px > 0 {
		b.cellPx = px
	}
	return b
}

// Build resolves the tracks and returns the row layout.
func (b *RowBuilder) Build() Row {
	tracks := columns.Tracks(columns.Sizes(b.cols), columns.Affordances{
		Selectable: b.selectable,
		Sortable:   b.sortable,
	})
	r := Row{
		cols:    b.cols,
		tracks:  tracks,
		addons:  make([]Addon, len(tracks)),
		widths:  make([]int, len(tracks)),
		offsets: make([]int, len(tracks)),
		cellPx:  b.cellPx,
	}
	x := 0
	for i, t := range tracks {
		switch t.Kind {
		case columns.TrackReorder:
			r.addons[i] = handleAddon{}
		case columns.TrackSelection:
			r.addons[i] = checkboxAddon{}
		}
		r.widths[i] = t.Cells(b.cellPx)
		r.offsets[i] = x
		x += r.widths[i] + columnGap
	}
	switch {
	case b.selectable && b.sortable:
		r.variant = SelectableSortable
	case b.selectable:
		r.variant = Selectable
	case b.sortable:
		r.variant = Sortable
	}
	return r
}

// columnGap is the number of blank cells between tracks.
const columnGap = 1

// Variant reports the affordances of this row.
func (r Row) Variant() Variant { return r.variant }

// Tracks returns the resolved tracks in display order.
func (r Row) Tracks() []columns.Track { return r.tracks }

// GridTemplate returns the pixel grid template, e.g. "20px 25px 120px".
func (r Row) GridTemplate() string {
	return columns.GridTemplate(columns.Sizes(r.cols), columns.Affordances{
		Selectable: r.variant == Selectable || r.variant == SelectableSortable,
		Sortable:   r.variant == Sortable || r.variant == SelectableSortable,
	})
}

// Widths returns each track width in terminal cells.
func (r Row) Widths() []int { return r.widths }

// Width returns the total row width in cells, gaps included.
func (r Row) Width() int {
	if len(r.widths) == 0 {
		return 0
	}
	last := len(r.widths) - 1
	return r.offsets[last] + r.widths[last]
}

// AddonKinds lists the addon tracks in display order.
func (r Row) AddonKinds() []columns.TrackKind {
	var out []columns.TrackKind
	for _, a := range r.addons {
		if a != nil {
			out = append(out, a.Kind())
		}
	}
	return out
}

// HeaderCells returns the unpadded header text per track.
func (r Row) HeaderCells(s HeaderState) []string {
	out := make([]string, len(r.tracks))
	for i, t := range r.tracks {
		if a := r.addons[i]; a != nil {
			out[i] = a.Header(s)
			continue
		}
		out[i] = r.cols[t.Column].Heading()
	}
	return out
}

// Cells returns the unpadded cell text per track for rec.
func (r Row) Cells(rec record.Record, s RowState) []string {
	out := make([]string, len(r.tracks))
	for i, t := range r.tracks {
		if a := r.addons[i]; a != nil {
			out[i] = a.Cell(s)
			continue
		}
		out[i] = r.cols[t.Column].Cell(rec)
	}
	return out
}

// TrackAt returns the track under cell column x.
func (r Row) TrackAt(x int) (columns.Track, bool) {
	for i, t := range r.tracks {
		if x >= r.offsets[i] && x < r.offsets[i]+r.widths[i] {
			return t, true
		}
	}
	return columns.Track{}, false
}
