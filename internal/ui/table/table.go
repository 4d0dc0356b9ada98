package table

import (
	"context"
	"fmt"
	"image/color"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/go-logr/logr"
	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/tablekit/pkg/columns"
	"github.com/oakwood-commons/tablekit/pkg/logger"
	"github.com/oakwood-commons/tablekit/pkg/record"
	"github.com/oakwood-commons/tablekit/pkg/reorder"
	"github.com/oakwood-commons/tablekit/pkg/selection"
)

// headerLines is the header row plus the rule beneath it. The rule doubles
// as the drop slot above the first visible row.
const headerLines = 2

// ReorderFunc is the host callback for a reorder request. A non-nil error
// reverts the optimistic move.
type ReorderFunc func(ctx context.Context, intent reorder.MoveIntent[record.Record]) error

// Props configure a Model.
type Props struct {
	Columns    []columns.Column
	Rows       []record.Record
	KeyField   string
	Busy       bool
	Selectable bool
	Selected   []record.Key
	Sortable   bool

	OnChangeSelected  func([]record.Key)
	OnChangeRowsOrder ReorderFunc

	// RowHeight is the number of lines per row. Zero picks 2 when sortable,
	// so each row has an addressable lower half, and 1 otherwise.
	RowHeight int
	CellPx    int
	EmptyText string
	Strategy  reorder.Strategy
	Timeout   time.Duration
	// Context is the parent of every host callback context and carries the
	// logger.
	Context context.Context
}

// Model is a selectable, sortable table over records.
type Model struct {
	props  Props
	row    Row
	keyOf  func(record.Record) record.Key
	rows   []record.Record
	keys   []record.Key
	sel    *selection.Controller
	drag   *reorder.Controller[record.Record, record.Key]
	keymap KeyMap

	spinner spinner.Model
	colors  Colors
	styles  Styles
	noColor bool

	cursor  int
	offset  int
	width   int
	height  int
	originX int
	originY int
	focused bool

	hostBusy bool
	pending  *pendingMove
	seq      int
	err      error
	rowsErr  error

	log logr.Logger
}

// New builds a table from props.
func New(props Props) *Model {
	if props.KeyField == "" {
		props.KeyField = record.DefaultKeyField
	}
	if props.CellPx <= 0 {
		props.CellPx = columns.DefaultCellPx
	}
	if props.RowHeight <= 0 {
		props.RowHeight = 1
		if props.Sortable {
			props.RowHeight = 2
		}
	}
	if props.EmptyText == "" {
		props.EmptyText = "No rows"
	}
	if props.Context == nil {
		props.Context = context.Background()
	}

	m := &Model{
		props:    props,
		keyOf:    record.KeyFunc(props.KeyField),
		keymap:   DefaultKeyMap(),
		spinner:  spinner.New(spinner.WithSpinner(spinner.MiniDot)),
		colors:   DefaultColors(),
		focused:  true,
		hostBusy: props.Busy,
		log:      *logger.FromContext(props.Context),
	}
	m.keymap.apply(props.Selectable, props.Sortable)
	m.row = m.buildRow()
	m.sel = selection.New(nil)
	m.sel.OnChange = m.selectionChanged
	m.drag = reorder.NewController[record.Record](m.keyOf)
	m.drag.OnMove = func(intent reorder.MoveIntent[record.Record]) {
		m.log.V(1).Info("drop", logger.MoveValues(m.keyOf(intent.Moving), m.keyOf(intent.Target), intent.Kind)...)
	}
	m.setList(props.Rows)
	m.sel.Sync(m.listKeys(), props.Selected)
	m.applyColorScheme()
	return m
}

func (m *Model) buildRow() Row {
	return NewRowBuilder(m.props.Columns).
		Selectable(m.props.Selectable).
		Sortable(m.props.Sortable).
		CellPx(m.props.CellPx).
		Build()
}

// setList installs rows. Rows without a usable key, or sharing one, leave
// the table read-only until valid rows arrive: selection is cleared and
// toggles and moves are refused.
func (m *Model) setList(rows []record.Record) {
	m.rows = rows
	m.keys = make([]record.Key, len(rows))
	for i, r := range rows {
		m.keys[i] = m.keyOf(r)
	}
	m.rowsErr = nil
	if _, err := record.Keys(rows, m.props.KeyField); err != nil {
		m.rowsErr = fmt.Errorf("%w: key field %q: %w", ErrInvalidRows, m.props.KeyField, err)
		m.log.Error(err, "rows rejected", logger.KeyFieldKey, m.props.KeyField)
		if m.drag.Active() {
			m.drag.Cancel()
		}
	}
	m.sel.SetKeys(m.listKeys())
	if m.cursor >= len(rows) {
		m.cursor = max(len(rows)-1, 0)
	}
	m.ensureVisible()
}

// listKeys returns the keys selection may range over: none while the rows
// are invalid.
func (m *Model) listKeys() []record.Key {
	if m.rowsErr != nil {
		return nil
	}
	return m.keys
}

// SetRows replaces the list with host state. A reorder still in flight will
// no longer revert over it. The returned error is RowsErr: rows lacking a
// key or sharing one are shown but cannot be selected or moved.
func (m *Model) SetRows(rows []record.Record) error {
	var cursorKey record.Key
	if m.cursor < len(m.keys) {
		cursorKey = m.keys[m.cursor]
	}
	m.setList(rows)
	if i := m.indexOf(cursorKey); i >= 0 {
		m.cursor = i
		m.ensureVisible()
	}
	if m.pending != nil {
		m.pending.superseded = true
	}
	if moving, ok := m.drag.Moving(); ok && m.indexOf(m.keyOf(moving)) < 0 {
		m.drag.Cancel()
	}
	return m.rowsErr
}

// KeyField returns the record field used as the row key.
func (m *Model) KeyField() string { return m.props.KeyField }

// Rows returns the list in display order.
func (m *Model) Rows() []record.Record { return m.rows }

// SetSelected synchronizes the selection with host state without reporting
// it back.
func (m *Model) SetSelected(keys []record.Key) {
	m.sel.Sync(m.listKeys(), keys)
}

// Selected returns the selected keys in list order.
func (m *Model) Selected() []record.Key { return m.sel.Selected() }

// AllSelected reports whether every row is selected.
func (m *Model) AllSelected() bool { return m.sel.AllSelected() }

// SetColumns replaces the column configuration.
func (m *Model) SetColumns(cols []columns.Column) {
	m.props.Columns = cols
	m.row = m.buildRow()
}

// Layout returns the resolved row layout.
func (m *Model) Layout() Row { return m.row }

// SetBusy sets the host busy flag. The returned command starts the spinner.
func (m *Model) SetBusy(busy bool) tea.Cmd {
	was := m.Busy()
	m.hostBusy = busy
	if busy && !was {
		return m.spinner.Tick
	}
	return nil
}

// Busy reports whether the host is busy or a reorder is pending.
func (m *Model) Busy() bool { return m.hostBusy || m.pending != nil }

// Err returns the last reorder failure, cleared by the next successful move.
func (m *Model) Err() error { return m.err }

// RowsErr reports why the current rows cannot be selected or moved, wrapping
// ErrInvalidRows and the record key error. It is nil for valid rows.
func (m *Model) RowsErr() error { return m.rowsErr }

// Cursor returns the cursor row index.
func (m *Model) Cursor() int { return m.cursor }

// SetCursor moves the cursor, clamped to the list.
func (m *Model) SetCursor(i int) {
	m.cursor = clamp(i, 0, max(len(m.rows)-1, 0))
	m.ensureVisible()
}

// CursorRow returns the record under the cursor.
func (m *Model) CursorRow() (record.Record, bool) {
	if m.cursor >= len(m.rows) {
		return nil, false
	}
	return m.rows[m.cursor], true
}

// DragState exposes the current drag phase.
func (m *Model) DragState() reorder.State { return m.drag.State() }

// Indicator exposes the drop indicator, if shown.
func (m *Model) Indicator() (reorder.Indicator[record.Key], bool) { return m.drag.Indicator() }

// KeyMap returns the active bindings.
func (m *Model) KeyMap() KeyMap { return m.keymap }

// SetSize sets the table dimensions. A zero height shows every row.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.ensureVisible()
}

// SetOrigin sets the screen position of the table's top-left cell, used to
// translate mouse coordinates.
func (m *Model) SetOrigin(x, y int) {
	m.originX = x
	m.originY = y
}

// Focus sets the table focus state.
func (m *Model) Focus() { m.focused = true }

// Blur removes focus from the table.
func (m *Model) Blur() { m.focused = false }

// Focused returns true if the table has focus.
func (m *Model) Focused() bool { return m.focused }

// SetNoColor enables/disables color output.
func (m *Model) SetNoColor(noColor bool) {
	m.noColor = noColor
	m.applyColorScheme()
}

// SetColors overrides theme colors; nil entries keep the defaults.
func (m *Model) SetColors(c Colors) {
	d := DefaultColors()
	m.colors = Colors{
		HeaderFG:   pick(c.HeaderFG, d.HeaderFG),
		HeaderBG:   pick(c.HeaderBG, d.HeaderBG),
		CursorFG:   pick(c.CursorFG, d.CursorFG),
		CursorBG:   pick(c.CursorBG, d.CursorBG),
		SelectedFG: pick(c.SelectedFG, d.SelectedFG),
		Indicator:  pick(c.Indicator, d.Indicator),
		Muted:      pick(c.Muted, d.Muted),
		Error:      pick(c.Error, d.Error),
	}
	m.applyColorScheme()
}

func (m *Model) applyColorScheme() {
	m.styles = newStyles(m.colors, m.noColor)
	m.spinner.Style = m.styles.Indicator
}

// Init starts the spinner when the table starts busy.
func (m *Model) Init() tea.Cmd {
	if m.Busy() {
		return m.spinner.Tick
	}
	return nil
}

// Update handles messages and updates the table state.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ReorderResultMsg:
		m.finishReorder(msg)
		return m, nil
	case spinner.TickMsg:
		if !m.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyPressMsg:
		if !m.focused {
			return m, nil
		}
		return m, m.handleKey(msg)
	case tea.MouseClickMsg:
		if msg.Button != tea.MouseLeft {
			return m, nil
		}
		return m, m.handlePress(msg.X, msg.Y)
	case tea.MouseMotionMsg:
		m.handleMotion(msg.Y)
		return m, nil
	case tea.MouseReleaseMsg:
		return m, m.handleRelease(msg.Y)
	case tea.MouseWheelMsg:
		switch msg.Button {
		case tea.MouseWheelUp:
			m.SetCursor(m.cursor - 1)
		case tea.MouseWheelDown:
			m.SetCursor(m.cursor + 1)
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keymap.Cancel) && m.drag.Active():
		m.drag.Cancel()
	case key.Matches(msg, m.keymap.MoveUp):
		return m.step(-1)
	case key.Matches(msg, m.keymap.MoveDown):
		return m.step(1)
	case key.Matches(msg, m.keymap.Up):
		m.SetCursor(m.cursor - 1)
	case key.Matches(msg, m.keymap.Down):
		m.SetCursor(m.cursor + 1)
	case key.Matches(msg, m.keymap.Top):
		m.SetCursor(0)
	case key.Matches(msg, m.keymap.Bottom):
		m.SetCursor(len(m.rows) - 1)
	case key.Matches(msg, m.keymap.Toggle):
		if m.cursor < len(m.keys) {
			return m.toggleOne(m.keys[m.cursor])
		}
	case key.Matches(msg, m.keymap.ToggleAll):
		return m.toggleAll(!m.sel.AllSelected())
	}
	return nil
}

func (m *Model) handlePress(x, y int) tea.Cmd {
	lx, ly := x-m.originX, y-m.originY
	if ly == 0 {
		if t, ok := m.row.TrackAt(lx); ok && t.Kind == columns.TrackSelection && m.props.Selectable {
			return m.toggleAll(!m.sel.AllSelected())
		}
		return nil
	}
	if ly < headerLines {
		return nil
	}
	idx, _, ok := m.rowAtLine(ly)
	if !ok {
		return nil
	}
	m.SetCursor(idx)
	t, ok := m.row.TrackAt(lx)
	if !ok {
		return nil
	}
	switch t.Kind {
	case columns.TrackReorder:
		if !m.props.Sortable {
			return nil
		}
		if m.rowsErr != nil {
			return nil
		}
		if m.Busy() {
			m.log.V(1).Info("drag refused while busy", logger.MovingKey, m.keys[idx])
			return nil
		}
		m.drag.Begin(m.rows[idx])
	case columns.TrackSelection:
		return m.toggleOne(m.keys[idx])
	}
	return nil
}

func (m *Model) handleMotion(y int) {
	if !m.drag.Active() {
		return
	}
	idx, top, ok := m.rowAtLine(y - m.originY)
	if !ok {
		if ind, shown := m.drag.Indicator(); shown {
			m.drag.Leave(ind.Target)
		}
		return
	}
	m.drag.Hover(m.rows[idx], m.geometry(y-m.originY, top))
}

func (m *Model) handleRelease(y int) tea.Cmd {
	if !m.drag.Active() {
		return nil
	}
	var (
		intent reorder.MoveIntent[record.Record]
		ok     bool
	)
	if idx, top, hit := m.rowAtLine(y - m.originY); hit {
		intent, ok = m.drag.Drop(m.rows[idx], m.geometry(y-m.originY, top))
	} else {
		intent, ok = m.drag.DropOnIndicator()
	}
	if !ok {
		return nil
	}
	return m.requestMove(intent)
}

// geometry places the pointer at the vertical centre of the cell on line.
func (m *Model) geometry(line, top int) reorder.Geometry {
	return reorder.Geometry{
		PointerY:  float64(line) + 0.5,
		RowTop:    float64(top),
		RowHeight: float64(m.props.RowHeight),
	}
}

// rowAtLine maps a local line to the row drawn there and the line the row
// starts on. The header rule counts as the upper half of the first visible
// row.
func (m *Model) rowAtLine(line int) (idx, top int, ok bool) {
	if len(m.rows) == 0 {
		return 0, 0, false
	}
	if line == headerLines-1 {
		return m.offset, headerLines, true
	}
	if line < headerLines {
		return 0, 0, false
	}
	v := (line - headerLines) / m.props.RowHeight
	if v >= m.visibleRows() {
		return 0, 0, false
	}
	idx = m.offset + v
	if idx >= len(m.rows) {
		return 0, 0, false
	}
	return idx, headerLines + v*m.props.RowHeight, true
}

func (m *Model) step(delta int) tea.Cmd {
	if !m.props.Sortable || m.cursor >= len(m.rows) {
		return nil
	}
	intent, ok := reorder.Step(m.rows, m.rows[m.cursor], delta, m.keyOf)
	if !ok {
		return nil
	}
	return m.requestMove(intent)
}

// requestMove applies intent optimistically and hands it to the host.
func (m *Model) requestMove(intent reorder.MoveIntent[record.Record]) tea.Cmd {
	if m.rowsErr != nil {
		return nil
	}
	moving := m.keyOf(intent.Moving)
	if m.Busy() {
		m.log.V(1).Info("reorder refused while busy", logger.MovingKey, moving)
		return nil
	}
	next, err := reorder.Move(m.rows, intent, m.keyOf, m.props.Strategy)
	if err != nil {
		m.err = fmt.Errorf("reorder %s: %w", moving, err)
		m.log.Error(err, "reorder failed", logger.MovingKey, moving)
		return nil
	}
	prev := m.rows
	m.setList(next)
	m.SetCursor(m.indexOf(moving))
	m.err = nil
	m.seq++
	seq := m.seq

	if m.props.OnChangeRowsOrder == nil {
		return func() tea.Msg { return ReorderResultMsg{Seq: seq, Intent: intent} }
	}
	m.pending = &pendingMove{seq: seq, prev: prev, intent: intent}
	return tea.Batch(m.spinner.Tick, m.callHost(seq, intent))
}

func (m *Model) callHost(seq int, intent reorder.MoveIntent[record.Record]) tea.Cmd {
	fn := m.props.OnChangeRowsOrder
	parent := m.props.Context
	timeout := m.props.Timeout
	return func() tea.Msg {
		ctx, cancel := parent, context.CancelFunc(func() {})
		if timeout > 0 {
			ctx, cancel = context.WithTimeout(parent, timeout)
		}
		defer cancel()
		return ReorderResultMsg{Seq: seq, Intent: intent, Err: fn(ctx, intent)}
	}
}

func (m *Model) finishReorder(msg ReorderResultMsg) {
	if m.pending == nil || msg.Seq != m.pending.seq {
		return
	}
	p := m.pending
	m.pending = nil
	moving := m.keyOf(msg.Intent.Moving)
	values := logger.MoveValues(moving, m.keyOf(msg.Intent.Target), msg.Intent.Kind)
	if msg.Err == nil {
		m.log.V(1).Info("reorder applied", values...)
		return
	}
	if !p.superseded {
		m.setList(p.prev)
		if i := m.indexOf(moving); i >= 0 {
			m.SetCursor(i)
		}
	}
	m.err = fmt.Errorf("%w: move %s %s %s: %w", ErrReorderRejected,
		moving, msg.Intent.Kind, m.keyOf(msg.Intent.Target), msg.Err)
	m.log.Error(msg.Err, "reorder rejected by host", values...)
}

// toggleOne and toggleAll report the change to the host once, through
// Props.OnChangeSelected. The returned SelectionChangedMsg is for observers
// inside the program, such as a status line, and must not be forwarded to
// the host again.
func (m *Model) toggleOne(k record.Key) tea.Cmd {
	if !m.props.Selectable || m.rowsErr != nil {
		return nil
	}
	m.sel.Toggle(k)
	return m.selectionCmd()
}

func (m *Model) toggleAll(on bool) tea.Cmd {
	if !m.props.Selectable || m.rowsErr != nil {
		return nil
	}
	m.sel.ToggleAll(on)
	return m.selectionCmd()
}

func (m *Model) selectionChanged(keys []record.Key) {
	m.log.V(1).Info("selection changed", logger.SelectedKey, len(keys))
	if m.props.OnChangeSelected != nil {
		m.props.OnChangeSelected(keys)
	}
}

func (m *Model) selectionCmd() tea.Cmd {
	keys := m.sel.Selected()
	return func() tea.Msg { return SelectionChangedMsg{Keys: keys} }
}

func (m *Model) indexOf(k record.Key) int {
	for i, have := range m.keys {
		if have == k {
			return i
		}
	}
	return -1
}

func (m *Model) visibleRows() int {
	if m.height <= 0 {
		return len(m.rows)
	}
	body := m.height - headerLines - 1
	return max(body/m.props.RowHeight, 1)
}

func (m *Model) ensureVisible() {
	n := m.visibleRows()
	if n <= 0 {
		m.offset = 0
		return
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+n {
		m.offset = m.cursor - n + 1
	}
	m.offset = clamp(m.offset, 0, max(len(m.rows)-n, 0))
}

// View renders the table to a string.
func (m *Model) View() string {
	width := max(m.row.Width(), m.width)
	ind, hasInd := m.drag.Indicator()
	indIdx := -1
	if hasInd {
		indIdx = m.indexOf(ind.Target)
	}
	moving, dragging := m.drag.Moving()

	lines := make([]string, 0, headerLines+len(m.rows)*m.props.RowHeight+1)
	lines = append(lines, m.styles.Header.Render(m.joinCells(m.row.HeaderCells(HeaderState{
		AllSelected: m.sel.AllSelected(),
		AnySelected: m.sel.Len() > 0,
		Empty:       len(m.rows) == 0,
	}))))
	if hasInd && ind.Half == reorder.Upper && indIdx == m.offset {
		lines = append(lines, m.indicatorLine(width))
	} else {
		lines = append(lines, m.styles.Rule.Render(strings.Repeat("─", width)))
	}

	if len(m.rows) == 0 {
		lines = append(lines, m.styles.Empty.Render(m.props.EmptyText))
	}
	end := min(m.offset+m.visibleRows(), len(m.rows))
	for i := m.offset; i < end; i++ {
		k := m.keys[i]
		state := RowState{
			Key:      k,
			Selected: m.sel.IsSelected(k),
			Dragged:  dragging && m.keyOf(moving) == k,
			Busy:     m.Busy(),
		}
		if i == indIdx {
			state.Indicator = ind.Half
		}
		lines = append(lines, m.renderRow(i, state))
		if m.props.RowHeight > 1 {
			for j := 1; j < m.props.RowHeight-1; j++ {
				lines = append(lines, "")
			}
			if m.slotMarked(i, indIdx, ind.Half) {
				lines = append(lines, m.indicatorLine(width))
			} else {
				lines = append(lines, "")
			}
		}
	}
	lines = append(lines, m.statusLine())
	return strings.Join(lines, "\n")
}

// slotMarked reports whether the spare line under row i carries the
// indicator: the lower half of row i or the upper half of row i+1.
func (m *Model) slotMarked(i, indIdx int, half reorder.Half) bool {
	return (indIdx == i && half == reorder.Lower) || (indIdx == i+1 && half == reorder.Upper)
}

func (m *Model) renderRow(i int, state RowState) string {
	line := m.joinCells(m.row.Cells(m.rows[i], state))
	switch {
	case state.Dragged:
		return m.styles.Dragged.Render(line)
	case i == m.cursor && m.focused:
		return m.styles.Cursor.Render(line)
	case state.Selected:
		return m.styles.Selected.Render(line)
	default:
		return m.styles.Cell.Render(line)
	}
}

func (m *Model) joinCells(cells []string) string {
	widths := m.row.Widths()
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = fit(c, widths[i])
	}
	return strings.Join(parts, strings.Repeat(" ", columnGap))
}

func (m *Model) indicatorLine(width int) string {
	return m.styles.Indicator.Render(strings.Repeat("━", width))
}

func (m *Model) statusLine() string {
	switch {
	case m.Busy():
		return m.styles.Status.Render(m.spinner.View() + " saving order…")
	case m.rowsErr != nil:
		return m.styles.Error.Render("error: " + m.rowsErr.Error())
	case m.err != nil:
		return m.styles.Error.Render("error: " + m.err.Error())
	case m.drag.Active():
		moving, _ := m.drag.Moving()
		return m.styles.Status.Render(fmt.Sprintf("moving %s: release over a row to drop, esc to cancel", m.keyOf(moving)))
	case m.props.Selectable:
		return m.styles.Status.Render(fmt.Sprintf("%d of %d selected", m.sel.Len(), len(m.rows)))
	default:
		return m.styles.Status.Render(fmt.Sprintf("%d rows", len(m.rows)))
	}
}

// Height returns the rendered height of the table.
func (m *Model) Height() int {
	return lipgloss.Height(m.View())
}

// Width returns the rendered width of the table.
func (m *Model) Width() int {
	return lipgloss.Width(m.View())
}

// String returns a string representation for debugging.
func (m *Model) String() string {
	return fmt.Sprintf("Table[rows=%d, selected=%d, cursor=%d, drag=%s, busy=%t]",
		len(m.rows), m.sel.Len(), m.cursor, m.drag.State(), m.Busy())
}

func fit(s string, w int) string {
	if runewidth.StringWidth(s) > w {
		s = runewidth.Truncate(s, w, "…")
	}
	return runewidth.FillRight(s, w)
}

func pick(c, fallback color.Color) color.Color {
	if c == nil {
		return fallback
	}
	return c
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
