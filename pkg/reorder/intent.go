// Package reorder implements drag-and-drop row reordering: the hover
// geometry, the per-gesture state machine that decides where a dragged row
// would land, and the list mutation that applies a move.
package reorder

import (
	"fmt"
	"strings"
)

// Placement says on which side of the target the moving item lands.
type Placement int

const (
	Before Placement = iota
	After
)

func (p Placement) String() string {
	if p == After {
		return "after"
	}
	return "before"
}

// ParsePlacement accepts "before" or "after" in any case.
func ParsePlacement(s string) (Placement, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "before":
		return Before, nil
	case "after":
		return After, nil
	}
	return Before, fmt.Errorf("unknown placement %q (expected before or after)", s)
}

// MoveIntent asks to relocate Moving immediately before or after Target.
type MoveIntent[T any] struct {
	Kind   Placement
	Moving T
	Target T
}

// Half is the vertical half of a row the pointer is over.
type Half int

const (
	NoHalf Half = iota
	Upper
	Lower
)

func (h Half) String() string {
	switch h {
	case Upper:
		return "upper"
	case Lower:
		return "lower"
	default:
		return "none"
	}
}

// Placement maps the hovered half to a drop placement.
func (h Half) Placement() Placement {
	if h == Lower {
		return After
	}
	return Before
}

// ResolveHoverHalf reports which half of a row the pointer is over. The
// pointer offset from the row top is compared to half the row height; the
// exact midpoint belongs to the upper half.
func ResolveHoverHalf(pointerY, rowTop, rowHeight float64) Half {
	if pointerY-rowTop > rowHeight/2 {
		return Lower
	}
	return Upper
}
