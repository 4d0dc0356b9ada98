// Package demo is the host application side of the demo: it owns the
// authoritative list and answers the widget's reorder requests the way a
// slow, occasionally failing backend would.
package demo

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/oakwood-commons/tablekit/pkg/logger"
	"github.com/oakwood-commons/tablekit/pkg/record"
	"github.com/oakwood-commons/tablekit/pkg/reorder"
)

// ErrSimulatedFailure is returned for every FailEvery-th reorder request.
var ErrSimulatedFailure = errors.New("simulated backend failure")

// Options configure a Host.
type Options struct {
	KeyField  string
	Strategy  reorder.Strategy
	Latency   time.Duration
	FailEvery int
}

// Host owns the list and the selection shown by the table. It is safe for
// concurrent use; reorder requests arrive from command goroutines.
type Host struct {
	mu       sync.Mutex
	rows     []record.Record
	selected []record.Key
	keyOf    func(record.Record) record.Key
	opts     Options
	calls    int
	applied  int
}

// NewHost copies rows into a new host.
func NewHost(rows []record.Record, opts Options) *Host {
	if opts.KeyField == "" {
		opts.KeyField = record.DefaultKeyField
	}
	return &Host{
		rows:  slices.Clone(rows),
		keyOf: record.KeyFunc(opts.KeyField),
		opts:  opts,
	}
}

// Rows returns a copy of the authoritative list.
func (h *Host) Rows() []record.Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.rows)
}

// Selected returns the last selection reported by the table.
func (h *Host) Selected() []record.Key {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.selected)
}

// SetSelected records the selection reported by the table.
func (h *Host) SetSelected(keys []record.Key) {
	h.mu.Lock()
	h.selected = slices.Clone(keys)
	h.mu.Unlock()
}

// Calls reports how many reorder requests were received and how many were
// applied.
func (h *Host) Calls() (received, applied int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls, h.applied
}

// Reorder applies intent to the owned list after the configured latency.
// Cancellation of ctx during the wait aborts the request.
func (h *Host) Reorder(ctx context.Context, intent reorder.MoveIntent[record.Record]) error {
	log := logger.FromContext(ctx).WithValues(
		logger.MoveValues(h.keyOf(intent.Moving), h.keyOf(intent.Target), intent.Kind)...)

	h.mu.Lock()
	h.calls++
	n := h.calls
	h.mu.Unlock()

	if h.opts.Latency > 0 {
		timer := time.NewTimer(h.opts.Latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			log.V(1).Info("reorder abandoned", "request", n)
			return ctx.Err()
		case <-timer.C:
		}
	}
	if h.opts.FailEvery > 0 && n%h.opts.FailEvery == 0 {
		log.Info("failing reorder on purpose", "request", n)
		return fmt.Errorf("request %d: %w", n, ErrSimulatedFailure)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	next, err := reorder.Move(h.rows, intent, h.keyOf, h.opts.Strategy)
	if err != nil {
		return fmt.Errorf("request %d: %w", n, err)
	}
	h.rows = next
	h.applied++
	log.V(1).Info("reorder stored", "request", n)
	return nil
}
