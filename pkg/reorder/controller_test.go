package reorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID   string
	Name string
}

func rowKey(r row) string { return r.ID }

var (
	rowA = row{ID: "a", Name: "Ada"}
	rowB = row{ID: "b", Name: "Bob"}
	rowC = row{ID: "c", Name: "Cy"}
)

// upper and lower point into the top and bottom half of a 10px row at y=100.
var (
	upper = Geometry{PointerY: 102, RowTop: 100, RowHeight: 10}
	lower = Geometry{PointerY: 108, RowTop: 100, RowHeight: 10}
)

func TestResolveHoverHalf(t *testing.T) {
	tests := []struct {
		name              string
		pointer, top, hgt float64
		want              Half
	}{
		{"top edge", 100, 100, 10, Upper},
		{"just above middle", 104.9, 100, 10, Upper},
		{"middle", 105, 100, 10, Upper},
		{"just below middle", 105.1, 100, 10, Lower},
		{"bottom edge", 110, 100, 10, Lower},
		{"row at origin", 1, 0, 4, Upper},
		{"terminal second line centre", 1.5, 0, 2, Lower},
		{"terminal first line centre", 0.5, 0, 2, Upper},
		{"terminal single line centre", 0.5, 0, 1, Upper},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveHoverHalf(tt.pointer, tt.top, tt.hgt))
		})
	}
}

func TestHalfPlacement(t *testing.T) {
	assert.Equal(t, Before, Upper.Placement())
	assert.Equal(t, After, Lower.Placement())
}

func newController(t *testing.T) (*Controller[row, string], *[]MoveIntent[row]) {
	t.Helper()
	var intents []MoveIntent[row]
	c := NewController[row, string](rowKey)
	c.OnMove = func(i MoveIntent[row]) { intents = append(intents, i) }
	return c, &intents
}

func TestHoverShowsIndicatorAndDebounces(t *testing.T) {
	c, _ := newController(t)
	assert.False(t, c.Hover(rowB, upper), "hover without a drag is ignored")

	c.Begin(rowA)
	assert.Equal(t, Dragging, c.State())

	require.True(t, c.Hover(rowB, upper))
	ind, ok := c.Indicator()
	require.True(t, ok)
	assert.Equal(t, Indicator[string]{Target: "b", Half: Upper}, ind)
	assert.Equal(t, Hovering, c.State())

	assert.False(t, c.Hover(rowB, upper), "same half again changes nothing")

	require.True(t, c.Hover(rowB, lower))
	ind, _ = c.Indicator()
	assert.Equal(t, Lower, ind.Half)
}

func TestHoverOnlyOneIndicator(t *testing.T) {
	c, _ := newController(t)
	c.Begin(rowA)
	c.Hover(rowB, lower)
	require.True(t, c.Hover(rowC, lower), "a different row with the same half moves the indicator")
	ind, ok := c.Indicator()
	require.True(t, ok)
	assert.Equal(t, "c", ind.Target)
}

func TestHoverOverDraggedRowClearsIndicator(t *testing.T) {
	c, _ := newController(t)
	c.Begin(rowA)
	assert.False(t, c.Hover(rowA, upper))
	c.Hover(rowB, upper)
	assert.True(t, c.Hover(rowA, lower))
	_, ok := c.Indicator()
	assert.False(t, ok)
}

func TestLeaveResetsHover(t *testing.T) {
	c, _ := newController(t)
	c.Begin(rowA)
	c.Hover(rowB, upper)

	assert.False(t, c.Leave("c"), "leaving a row without the indicator is ignored")
	require.True(t, c.Leave("b"))
	_, ok := c.Indicator()
	assert.False(t, ok)
	assert.Equal(t, Dragging, c.State())

	// Hover memory was reset, so the same half shows again.
	assert.True(t, c.Hover(rowB, upper))
}

func TestDropEmitsIntent(t *testing.T) {
	c, intents := newController(t)
	c.Begin(rowC)
	c.Hover(rowA, upper)

	intent, ok := c.Drop(rowA, lower)
	require.True(t, ok)
	assert.Equal(t, MoveIntent[row]{Kind: After, Moving: rowC, Target: rowA}, intent,
		"the half at drop time wins over the last hover")
	require.Len(t, *intents, 1)
	assert.Equal(t, intent, (*intents)[0])

	assert.Equal(t, Idle, c.State())
	_, shown := c.Indicator()
	assert.False(t, shown)
}

func TestDropBeforeOnUpperHalf(t *testing.T) {
	c, _ := newController(t)
	c.Begin(rowA)
	intent, ok := c.Drop(rowB, upper)
	require.True(t, ok)
	assert.Equal(t, Before, intent.Kind)
}

func TestSelfDropIsNoop(t *testing.T) {
	c, intents := newController(t)
	c.Begin(rowB)
	c.Hover(rowA, upper)
	_, ok := c.Drop(rowB, lower)
	assert.False(t, ok)
	assert.Empty(t, *intents)
	assert.Equal(t, Idle, c.State())
	_, shown := c.Indicator()
	assert.False(t, shown)
}

func TestDropWithoutConsumer(t *testing.T) {
	c := NewController[row, string](rowKey)
	c.Begin(rowA)
	c.Hover(rowB, upper)
	_, ok := c.Drop(rowB, upper)
	assert.False(t, ok)
	_, shown := c.Indicator()
	assert.False(t, shown)
}

func TestDropWithoutGesture(t *testing.T) {
	c, intents := newController(t)
	_, ok := c.Drop(rowB, upper)
	assert.False(t, ok)
	assert.Empty(t, *intents)
}

func TestDropOnIndicator(t *testing.T) {
	c, intents := newController(t)
	c.Begin(rowA)
	_, ok := c.DropOnIndicator()
	assert.False(t, ok, "no indicator cancels")
	assert.False(t, c.Active())

	c.Begin(rowA)
	c.Hover(rowC, lower)
	intent, ok := c.DropOnIndicator()
	require.True(t, ok)
	assert.Equal(t, MoveIntent[row]{Kind: After, Moving: rowA, Target: rowC}, intent)
	assert.Len(t, *intents, 1)
}

func TestCancelAndRestart(t *testing.T) {
	c, intents := newController(t)
	c.Begin(rowA)
	c.Hover(rowB, upper)
	c.Cancel()
	assert.Equal(t, Idle, c.State())
	_, dragging := c.Moving()
	assert.False(t, dragging)

	c.Begin(rowB)
	c.Hover(rowC, upper)
	c.Begin(rowC)
	_, shown := c.Indicator()
	assert.False(t, shown, "a new gesture starts without an indicator")
	moving, _ := c.Moving()
	assert.Equal(t, rowC, moving)
	assert.Empty(t, *intents)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "dragging", Dragging.String())
	assert.Equal(t, "hovering", Hovering.String())
	assert.Equal(t, "upper", Upper.String())
	assert.Equal(t, "none", NoHalf.String())
}
