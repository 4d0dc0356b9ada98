package table

import (
	"errors"

	"github.com/oakwood-commons/tablekit/pkg/record"
	"github.com/oakwood-commons/tablekit/pkg/reorder"
)

var (
	// ErrReorderRejected wraps the host error when a reorder callback fails.
	ErrReorderRejected = errors.New("reorder rejected")
	// ErrInvalidRows is returned when rows lack a usable key or share one.
	ErrInvalidRows = errors.New("invalid rows")
)

// ReorderResultMsg reports the outcome of a reorder. Seq matches the request
// that produced it; results for superseded requests are ignored.
type ReorderResultMsg struct {
	Seq    int
	Intent reorder.MoveIntent[record.Record]
	Err    error
}

// SelectionChangedMsg carries the selection in list order after a user
// toggle. The host has already been told through Props.OnChangeSelected;
// the message is for in-program observers only.
type SelectionChangedMsg struct {
	Keys []record.Key
}

type pendingMove struct {
	seq        int
	prev       []record.Record
	intent     reorder.MoveIntent[record.Record]
	superseded bool
}
