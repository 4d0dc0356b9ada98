package reorder

// State is the phase of a drag gesture.
type State int

const (
	Idle State = iota
	Dragging
	Hovering
)

func (s State) String() string {
	switch s {
	case Dragging:
		return "dragging"
	case Hovering:
		return "hovering"
	default:
		return "idle"
	}
}

// Geometry locates the pointer relative to a row, in any consistent unit
// (pixels for a browser, terminal lines for a TUI).
type Geometry struct {
	PointerY  float64
	RowTop    float64
	RowHeight float64
}

// Half resolves the hovered half for g.
func (g Geometry) Half() Half {
	return ResolveHoverHalf(g.PointerY, g.RowTop, g.RowHeight)
}

// Indicator marks the drop position currently shown to the user.
type Indicator[K comparable] struct {
	Target K
	Half   Half
}

// Controller drives one drag gesture at a time over rows identified by K.
// It never touches the list; a drop yields a MoveIntent for the list mutator.
//
// The drop indicator is exposed as state. The caller applies it when it
// renders, so the geometry logic stays testable without a surface.
type Controller[T any, K comparable] struct {
	// OnMove receives the intent produced by a drop. Without it drops only
	// clear the indicator.
	OnMove func(MoveIntent[T])

	keyOf func(T) K

	moving   T
	dragging bool

	target    T
	targetKey K
	half      Half
	entered   bool
}

// NewController returns an idle controller identifying rows with keyOf.
func NewController[T any, K comparable](keyOf func(T) K) *Controller[T, K] {
	return &Controller[T, K]{keyOf: keyOf}
}

// Begin starts dragging item. A gesture already in progress is cancelled.
func (c *Controller[T, K]) Begin(item T) {
	c.Cancel()
	c.moving = item
	c.dragging = true
}

// Active reports whether a drag gesture is in progress.
func (c *Controller[T, K]) Active() bool { return c.dragging }

// Moving returns the dragged item.
func (c *Controller[T, K]) Moving() (T, bool) {
	return c.moving, c.dragging
}

// State returns the current gesture phase.
func (c *Controller[T, K]) State() State {
	switch {
	case !c.dragging:
		return Idle
	case c.entered:
		return Hovering
	default:
		return Dragging
	}
}

// Indicator returns the single drop indicator, if one is shown.
func (c *Controller[T, K]) Indicator() (Indicator[K], bool) {
	if !c.entered || c.half == NoHalf {
		return Indicator[K]{}, false
	}
	return Indicator[K]{Target: c.targetKey, Half: c.half}, true
}

// Hover processes the pointer over target. It reports whether the indicator
// changed. Hovering the dragged row itself shows nothing, and hovering the
// same half of the same row again is a no-op.
func (c *Controller[T, K]) Hover(target T, g Geometry) bool {
	if !c.dragging {
		return false
	}
	key := c.keyOf(target)
	if key == c.keyOf(c.moving) {
		if c.entered {
			c.Leave(c.targetKey)
			return true
		}
		return false
	}
	if c.entered && key != c.targetKey {
		c.Leave(c.targetKey)
	}
	half := g.Half()
	if c.entered && half == c.half {
		return false
	}
	c.target = target
	c.targetKey = key
	c.half = half
	c.entered = true
	return true
}

// Leave processes the pointer leaving the row identified by key. Only the
// row carrying the indicator is affected.
func (c *Controller[T, K]) Leave(key K) bool {
	if !c.entered || key != c.targetKey {
		return false
	}
	c.clearHover()
	return true
}

// Drop ends the gesture over target and returns the resulting intent. Drops
// on the dragged row, or without a gesture, produce nothing.
func (c *Controller[T, K]) Drop(target T, g Geometry) (MoveIntent[T], bool) {
	if !c.dragging {
		return MoveIntent[T]{}, false
	}
	return c.finish(target, g.Half())
}

// DropOnIndicator ends the gesture at the current indicator. Surfaces use it
// when the release carries no row geometry, such as a pointer released on
// the indicator line itself. Without an indicator the gesture is cancelled.
func (c *Controller[T, K]) DropOnIndicator() (MoveIntent[T], bool) {
	if !c.dragging || !c.entered {
		c.Cancel()
		return MoveIntent[T]{}, false
	}
	return c.finish(c.target, c.half)
}

func (c *Controller[T, K]) finish(target T, half Half) (MoveIntent[T], bool) {
	moving := c.moving
	c.reset()
	if c.keyOf(target) == c.keyOf(moving) || c.OnMove == nil {
		return MoveIntent[T]{}, false
	}
	intent := MoveIntent[T]{Kind: half.Placement(), Moving: moving, Target: target}
	c.OnMove(intent)
	return intent, true
}

// Cancel abandons the gesture without an intent.
func (c *Controller[T, K]) Cancel() {
	c.reset()
}

func (c *Controller[T, K]) clearHover() {
	var zeroT T
	var zeroK K
	c.target = zeroT
	c.targetKey = zeroK
	c.half = NoHalf
	c.entered = false
}

func (c *Controller[T, K]) reset() {
	var zero T
	c.clearHover()
	c.moving = zero
	c.dragging = false
}
