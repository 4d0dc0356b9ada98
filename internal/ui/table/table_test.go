package table

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/tablekit/pkg/columns"
	"github.com/oakwood-commons/tablekit/pkg/record"
	"github.com/oakwood-commons/tablekit/pkg/reorder"
)

var testColumns = []columns.Column{
	{Title: "ID", Field: "id", Size: columns.PixelSize(30)},
	{Title: "Name", Field: "name", Size: columns.TokenSize(columns.Small)},
}

func testRows(n int) []record.Record {
	names := []string{"Ada", "Bob", "Cy", "Dee", "Eve", "Fay", "Gus"}
	rows := make([]record.Record, n)
	for i := range rows {
		rows[i] = record.Record{"id": i + 1, "name": names[i%len(names)]}
	}
	return rows
}

func ids(rows []record.Record) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Field("id")
	}
	return out
}

func keys(ks ...string) []record.Key {
	out := make([]record.Key, len(ks))
	for i, k := range ks {
		out[i] = record.Key(k)
	}
	return out
}

// drain runs cmd and any batched commands, returning every message.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func reorderResult(t *testing.T, cmd tea.Cmd) ReorderResultMsg {
	t.Helper()
	for _, msg := range drain(cmd) {
		if res, ok := msg.(ReorderResultMsg); ok {
			return res
		}
	}
	t.Fatalf("no ReorderResultMsg produced")
	return ReorderResultMsg{}
}

func press(s string) tea.KeyPressMsg {
	switch s {
	case "space":
		return tea.KeyPressMsg{Code: ' ', Text: " "}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

func click(x, y int) tea.MouseClickMsg { return tea.MouseClickMsg{X: x, Y: y, Button: tea.MouseLeft} }
func motion(x, y int) tea.MouseMotionMsg {
	return tea.MouseMotionMsg{X: x, Y: y, Button: tea.MouseLeft}
}
func release(x, y int) tea.MouseReleaseMsg {
	return tea.MouseReleaseMsg{X: x, Y: y, Button: tea.MouseLeft}
}

func TestRowBuilderVariants(t *testing.T) {
	tests := []struct {
		name       string
		selectable bool
		sortable   bool
		variant    Variant
		template   string
		kinds      []columns.TrackKind
	}{
		{"plain", false, false, Plain, "30px 60px", nil},
		{"selectable", true, false, Selectable, "25px 30px 60px", []columns.TrackKind{columns.TrackSelection}},
		{"sortable", false, true, Sortable, "20px 30px 60px", []columns.TrackKind{columns.TrackReorder}},
		{"both", true, true, SelectableSortable, "20px 25px 30px 60px",
			[]columns.TrackKind{columns.TrackReorder, columns.TrackSelection}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRowBuilder(testColumns).Selectable(tt.selectable).Sortable(tt.sortable).Build()
			assert.Equal(t, tt.variant, r.Variant())
			assert.Equal(t, tt.template, r.GridTemplate())
			assert.Equal(t, tt.kinds, r.AddonKinds())
			assert.Len(t, r.Tracks(), len(r.Widths()))
		})
	}
}

func TestRowCellsFollowTrackOrder(t *testing.T) {
	r := NewRowBuilder(testColumns).Selectable(true).Sortable(true).Build()
	assert.Equal(t, []int{2, 3, 3, 6}, r.Widths())
	assert.Equal(t, 2+3+3+6+3, r.Width())

	cells := r.Cells(record.Record{"id": 7, "name": "Ada"}, RowState{Selected: true})
	assert.Equal(t, []string{"⠿", "[x]", "7", "Ada"}, cells)
	assert.Equal(t, []string{"", "[ ]", "ID", "Name"}, r.HeaderCells(HeaderState{}))
	assert.Equal(t, "[-]", r.HeaderCells(HeaderState{AnySelected: true})[1])
	assert.Equal(t, "[x]", r.HeaderCells(HeaderState{AllSelected: true, AnySelected: true})[1])

	track, ok := r.TrackAt(0)
	require.True(t, ok)
	assert.Equal(t, columns.TrackReorder, track.Kind)
	track, ok = r.TrackAt(4)
	require.True(t, ok)
	assert.Equal(t, columns.TrackSelection, track.Kind)
	_, ok = r.TrackAt(2)
	assert.False(t, ok, "gap between tracks")
}

func TestHandleGlyphShowsIndicator(t *testing.T) {
	h := handleAddon{}
	assert.Equal(t, "▲", h.Cell(RowState{Indicator: reorder.Upper}))
	assert.Equal(t, "▼", h.Cell(RowState{Indicator: reorder.Lower}))
	assert.Equal(t, "◆", h.Cell(RowState{Dragged: true}))
}

func TestNewDefaults(t *testing.T) {
	m := New(Props{Columns: testColumns, Rows: testRows(3), Sortable: true})
	assert.Equal(t, 2, m.props.RowHeight)
	assert.Equal(t, record.DefaultKeyField, m.props.KeyField)

	m = New(Props{Columns: testColumns, Rows: testRows(3)})
	assert.Equal(t, 1, m.props.RowHeight)
	assert.False(t, m.KeyMap().Toggle.Enabled())
	assert.False(t, m.KeyMap().MoveDown.Enabled())
}

func TestSelectedSyncDropsUnknownKeys(t *testing.T) {
	m := New(Props{Columns: testColumns, Rows: testRows(3), Selectable: true, Selected: keys("2", "9")})
	assert.Equal(t, keys("2"), m.Selected())

	m.SetSelected(keys("1", "2", "3"))
	assert.True(t, m.AllSelected())

	m.SetRows(testRows(4))
	assert.False(t, m.AllSelected())
	assert.Equal(t, keys("1", "2", "3"), m.Selected())
}

func TestKeyboardSelection(t *testing.T) {
	var reported [][]record.Key
	m := New(Props{
		Columns:          testColumns,
		Rows:             testRows(3),
		Selectable:       true,
		OnChangeSelected: func(k []record.Key) { reported = append(reported, k) },
	})

	_, cmd := m.Update(press("space"))
	msgs := drain(cmd)
	require.Len(t, msgs, 1)
	assert.Equal(t, SelectionChangedMsg{Keys: keys("1")}, msgs[0])

	m.Update(press("down"))
	m.Update(press("x"))
	assert.Equal(t, keys("1", "2"), m.Selected())

	m.Update(press("a"))
	assert.True(t, m.AllSelected())
	m.Update(press("space"))
	assert.False(t, m.AllSelected())
	assert.Equal(t, keys("1", "3"), m.Selected())

	m.Update(press("a"))
	m.Update(press("a"))
	assert.Empty(t, m.Selected())
	assert.Len(t, reported, 6)
}

func TestMouseSelection(t *testing.T) {
	m := New(Props{Columns: testColumns, Rows: testRows(3), Selectable: true})
	m.SetOrigin(2, 3)

	// Checkbox track spans cells 0..2; row 1 is on line headerLines+1.
	m.Update(click(2+1, 3+headerLines+1))
	assert.Equal(t, keys("2"), m.Selected())
	assert.Equal(t, 1, m.Cursor())

	m.Update(click(2+1, 3))
	assert.True(t, m.AllSelected())
	m.Update(click(2+1, 3))
	assert.Empty(t, m.Selected())

	// A click on a data cell only moves the cursor.
	m.Update(click(2+6, 3+headerLines+2))
	assert.Empty(t, m.Selected())
	assert.Equal(t, 2, m.Cursor())
}

func TestEmptyList(t *testing.T) {
	m := New(Props{Columns: testColumns, Selectable: true, EmptyText: "Nobody here"})
	assert.Contains(t, m.View(), "Nobody here")

	m.Update(click(1, 0))
	assert.False(t, m.AllSelected())
	m.Update(press("a"))
	assert.False(t, m.AllSelected())
}

func TestNotSelectableIgnoresToggles(t *testing.T) {
	m := New(Props{Columns: testColumns, Rows: testRows(3)})
	_, cmd := m.Update(press("space"))
	assert.Nil(t, cmd)
	assert.Empty(t, m.Selected())
}

func sortable(t *testing.T, strategy reorder.Strategy, host ReorderFunc) *Model {
	t.Helper()
	m := New(Props{
		Columns:           testColumns,
		Rows:              testRows(5),
		Sortable:          true,
		Strategy:          strategy,
		OnChangeRowsOrder: host,
	})
	m.SetNoColor(true)
	return m
}

// rowLine and slotLine are the content and spare lines of row i at pitch 2.
func rowLine(i int) int  { return headerLines + 2*i }
func slotLine(i int) int { return headerLines + 2*i + 1 }

func TestMouseDragDropAfter(t *testing.T) {
	m := sortable(t, reorder.Corrected, nil)

	m.Update(click(0, rowLine(0)))
	assert.Equal(t, reorder.Dragging, m.DragState())

	m.Update(motion(5, slotLine(2)))
	ind, ok := m.Indicator()
	require.True(t, ok)
	assert.Equal(t, reorder.Indicator[record.Key]{Target: "3", Half: reorder.Lower}, ind)

	lines := strings.Split(m.View(), "\n")
	assert.Contains(t, lines[slotLine(2)], "━")

	_, cmd := m.Update(release(5, slotLine(2)))
	res := reorderResult(t, cmd)
	assert.Equal(t, reorder.After, res.Intent.Kind)
	assert.NoError(t, res.Err)
	assert.Equal(t, []string{"2", "3", "1", "4", "5"}, ids(m.Rows()))
	assert.Equal(t, reorder.Idle, m.DragState())
	assert.Equal(t, 2, m.Cursor())
}

func TestMouseDragLegacyStrategy(t *testing.T) {
	m := sortable(t, reorder.Legacy, nil)
	m.Update(click(0, rowLine(0)))
	m.Update(motion(0, slotLine(2)))
	m.Update(release(0, slotLine(2)))
	assert.Equal(t, []string{"2", "3", "4", "1", "5"}, ids(m.Rows()))
}

func TestMouseDragBeforeFirstRowViaRule(t *testing.T) {
	m := sortable(t, reorder.Corrected, nil)
	m.Update(click(0, rowLine(3)))
	m.Update(motion(0, headerLines-1))

	ind, ok := m.Indicator()
	require.True(t, ok)
	assert.Equal(t, reorder.Indicator[record.Key]{Target: "1", Half: reorder.Upper}, ind)
	assert.Contains(t, strings.Split(m.View(), "\n")[headerLines-1], "━")

	m.Update(release(0, headerLines-1))
	assert.Equal(t, []string{"4", "1", "2", "3", "5"}, ids(m.Rows()))
}

func TestMouseDragSingleIndicator(t *testing.T) {
	m := sortable(t, reorder.Corrected, nil)
	m.Update(click(0, rowLine(0)))
	m.Update(motion(0, rowLine(2)))
	m.Update(motion(0, rowLine(3)))

	ind, ok := m.Indicator()
	require.True(t, ok)
	assert.Equal(t, record.Key("4"), ind.Target)
	assert.Equal(t, reorder.Upper, ind.Half)

	marked := 0
	for _, line := range strings.Split(m.View(), "\n") {
		if strings.Contains(line, "━") {
			marked++
		}
	}
	assert.Equal(t, 1, marked, "exactly one indicator line")
	assert.Contains(t, m.View(), "▲")
}

func TestMouseReleaseOutsideDropsOnIndicator(t *testing.T) {
	m := sortable(t, reorder.Corrected, nil)
	m.Update(click(0, rowLine(4)))
	m.Update(motion(0, rowLine(0)))
	_, cmd := m.Update(release(0, 100))
	require.NotNil(t, cmd)
	assert.Equal(t, []string{"5", "1", "2", "3", "4"}, ids(m.Rows()))
}

func TestMouseDragCancel(t *testing.T) {
	m := sortable(t, reorder.Corrected, nil)
	m.Update(click(0, rowLine(1)))
	m.Update(motion(0, 100))
	_, ok := m.Indicator()
	assert.False(t, ok)
	_, cmd := m.Update(release(0, 100))
	assert.Nil(t, cmd)
	assert.Equal(t, reorder.Idle, m.DragState())
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(m.Rows()))

	m.Update(click(0, rowLine(1)))
	m.Update(press("esc"))
	assert.Equal(t, reorder.Idle, m.DragState())
}

func TestMouseSelfDropIsNoop(t *testing.T) {
	m := sortable(t, reorder.Corrected, nil)
	m.Update(click(0, rowLine(1)))
	m.Update(motion(0, slotLine(1)))
	_, ok := m.Indicator()
	assert.False(t, ok)
	_, cmd := m.Update(release(0, slotLine(1)))
	assert.Nil(t, cmd)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(m.Rows()))
}

func TestKeyboardMove(t *testing.T) {
	m := sortable(t, reorder.Corrected, nil)
	m.Update(press("J"))
	assert.Equal(t, []string{"2", "1", "3", "4", "5"}, ids(m.Rows()))
	assert.Equal(t, 1, m.Cursor())

	m.Update(press("K"))
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(m.Rows()))

	_, cmd := m.Update(press("K"))
	assert.Nil(t, cmd, "first row cannot move up")
}

func TestHostReorderSuccess(t *testing.T) {
	var got []reorder.MoveIntent[record.Record]
	m := sortable(t, reorder.Corrected, func(_ context.Context, intent reorder.MoveIntent[record.Record]) error {
		got = append(got, intent)
		return nil
	})

	_, cmd := m.Update(press("J"))
	assert.True(t, m.Busy())
	assert.Equal(t, []string{"2", "1", "3", "4", "5"}, ids(m.Rows()), "applied optimistically")
	assert.Contains(t, m.View(), "saving order")

	// A second reorder is refused while the first is pending.
	_, again := m.Update(press("J"))
	assert.Nil(t, again)

	res := reorderResult(t, cmd)
	m.Update(res)
	assert.False(t, m.Busy())
	assert.NoError(t, m.Err())
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].Moving.Field("id"))
	assert.Equal(t, "2", got[0].Target.Field("id"))
	assert.Equal(t, []string{"2", "1", "3", "4", "5"}, ids(m.Rows()))
}

func TestHostReorderFailureReverts(t *testing.T) {
	boom := errors.New("backend down")
	m := sortable(t, reorder.Corrected, func(context.Context, reorder.MoveIntent[record.Record]) error {
		return boom
	})

	m.SetCursor(2)
	_, cmd := m.Update(press("K"))
	assert.Equal(t, []string{"1", "3", "2", "4", "5"}, ids(m.Rows()))

	m.Update(reorderResult(t, cmd))
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(m.Rows()))
	assert.Equal(t, 2, m.Cursor())
	require.Error(t, m.Err())
	assert.ErrorIs(t, m.Err(), ErrReorderRejected)
	assert.ErrorIs(t, m.Err(), boom)
	assert.Contains(t, m.View(), "backend down")
}

func TestHostReorderStaleResultIgnored(t *testing.T) {
	m := sortable(t, reorder.Corrected, func(context.Context, reorder.MoveIntent[record.Record]) error {
		return errors.New("nope")
	})
	_, cmd := m.Update(press("J"))
	res := reorderResult(t, cmd)

	res.Seq++
	m.Update(res)
	assert.True(t, m.Busy(), "unmatched result leaves the request pending")

	res.Seq--
	m.Update(res)
	assert.False(t, m.Busy())
}

func TestHostRowsSupersedePendingMove(t *testing.T) {
	m := sortable(t, reorder.Corrected, func(context.Context, reorder.MoveIntent[record.Record]) error {
		return errors.New("nope")
	})
	_, cmd := m.Update(press("J"))
	fresh := testRows(3)
	m.SetRows(fresh)
	m.Update(reorderResult(t, cmd))
	assert.Equal(t, []string{"1", "2", "3"}, ids(m.Rows()))
	assert.Error(t, m.Err())
}

func TestHostReorderTimeout(t *testing.T) {
	m := New(Props{
		Columns:  testColumns,
		Rows:     testRows(3),
		Sortable: true,
		Timeout:  1,
		OnChangeRowsOrder: func(ctx context.Context, _ reorder.MoveIntent[record.Record]) error {
			<-ctx.Done()
			return ctx.Err()
		},
	})
	_, cmd := m.Update(press("J"))
	res := reorderResult(t, cmd)
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
	m.Update(res)
	assert.Equal(t, []string{"1", "2", "3"}, ids(m.Rows()))
}

func TestHostBusyRefusesDrag(t *testing.T) {
	m := sortable(t, reorder.Corrected, nil)
	assert.NotNil(t, m.SetBusy(true))
	assert.Nil(t, m.SetBusy(true), "spinner already running")

	m.Update(click(0, rowLine(0)))
	assert.Equal(t, reorder.Idle, m.DragState())
	_, cmd := m.Update(press("J"))
	assert.Nil(t, cmd)

	m.SetBusy(false)
	m.Update(click(0, rowLine(0)))
	assert.Equal(t, reorder.Dragging, m.DragState())
}

func TestSetRowsCancelsDragOfRemovedRow(t *testing.T) {
	m := sortable(t, reorder.Corrected, nil)
	m.Update(click(0, rowLine(4)))
	require.Equal(t, reorder.Dragging, m.DragState())
	m.SetRows(testRows(3))
	assert.Equal(t, reorder.Idle, m.DragState())
}

func TestScrollKeepsCursorVisible(t *testing.T) {
	m := New(Props{Columns: testColumns, Rows: testRows(7)})
	m.SetSize(40, headerLines+3+1)
	assert.Equal(t, 3, m.visibleRows())

	m.Update(press("G"))
	assert.Equal(t, 6, m.Cursor())
	assert.Equal(t, 4, m.offset)
	assert.Contains(t, m.View(), "Gus")
	assert.NotContains(t, m.View(), "Ada")

	m.Update(press("g"))
	assert.Equal(t, 0, m.offset)
}

func TestViewTruncatesWideCells(t *testing.T) {
	m := New(Props{Columns: testColumns, Rows: []record.Record{{"id": 1, "name": "Alexandria"}}})
	m.SetNoColor(true)
	assert.Contains(t, m.View(), "Alexa…")
	assert.Equal(t, headerLines+2, m.Height())
}

func TestString(t *testing.T) {
	m := New(Props{Columns: testColumns, Rows: testRows(2), Selectable: true, Selected: keys("1")})
	assert.Equal(t, "Table[rows=2, selected=1, cursor=0, drag=idle, busy=false]", m.String())
}

func TestInvalidRowsAreReadOnly(t *testing.T) {
	tests := map[string]struct {
		rows []record.Record
		want error
	}{
		"duplicate key": {[]record.Record{{"id": 1}, {"id": 1}, {"id": 2}}, record.ErrDuplicateKey},
		"missing key":   {[]record.Record{{"name": "Ada"}, {"name": "Bob"}, {"name": "Cy"}}, record.ErrMissingKey},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var reported int
			m := New(Props{
				Columns:          testColumns,
				Rows:             tt.rows,
				Selectable:       true,
				Sortable:         true,
				Selected:         keys("1"),
				OnChangeSelected: func([]record.Key) { reported++ },
			})
			m.SetNoColor(true)
			require.ErrorIs(t, m.RowsErr(), ErrInvalidRows)
			assert.ErrorIs(t, m.RowsErr(), tt.want)
			assert.Empty(t, m.Selected())

			_, cmd := m.Update(press("a"))
			assert.Nil(t, cmd)
			assert.False(t, m.AllSelected())
			m.Update(press("space"))
			assert.Empty(t, m.Selected())
			assert.Zero(t, reported)

			m.Update(click(0, rowLine(0)))
			assert.Equal(t, reorder.Idle, m.DragState())
			_, cmd = m.Update(press("J"))
			assert.Nil(t, cmd)
			assert.Len(t, m.Rows(), 3)
			assert.Contains(t, m.View(), "invalid rows")
		})
	}
}

func TestSetRowsReportsInvalidRows(t *testing.T) {
	m := New(Props{Columns: testColumns, Rows: testRows(3), Selectable: true, Sortable: true})
	m.SetSelected(keys("1", "2", "3"))
	require.True(t, m.AllSelected())

	m.Update(click(0, rowLine(0)))
	require.Equal(t, reorder.Dragging, m.DragState())
	err := m.SetRows([]record.Record{{"id": 1}, {"id": 1}})
	require.ErrorIs(t, err, ErrInvalidRows)
	assert.Equal(t, reorder.Idle, m.DragState())
	assert.False(t, m.AllSelected())
	assert.Empty(t, m.Selected())

	require.NoError(t, m.SetRows(testRows(2)))
	assert.NoError(t, m.RowsErr())
	m.Update(press("a"))
	assert.True(t, m.AllSelected())
}

func TestToggleNotifiesHostOnce(t *testing.T) {
	var reported [][]record.Key
	m := New(Props{
		Columns:          testColumns,
		Rows:             testRows(2),
		Selectable:       true,
		OnChangeSelected: func(k []record.Key) { reported = append(reported, k) },
	})
	_, cmd := m.Update(press("space"))
	require.Len(t, reported, 1)
	msgs := drain(cmd)
	require.Len(t, msgs, 1)

	// Feeding the message back, as a program loop does, is not a second toggle.
	m.Update(msgs[0])
	assert.Len(t, reported, 1)
	assert.Equal(t, keys("1"), m.Selected())
}

func TestGeometryUsesCellCentre(t *testing.T) {
	m := sortable(t, reorder.Corrected, nil)
	top := rowLine(1)
	assert.Equal(t, reorder.Upper, m.geometry(top, top).Half())
	assert.Equal(t, reorder.Lower, m.geometry(top+1, top).Half())
	assert.InDelta(t, float64(top)+0.5, m.geometry(top, top).PointerY, 0)
}

func TestUntitledColumnHeader(t *testing.T) {
	row := NewRowBuilder([]columns.Column{{Field: "id"}, {Title: "Name", Field: "name"}}).Build()
	assert.Equal(t, []string{"-", "Name"}, row.HeaderCells(HeaderState{}))
}
