// Package selection tracks which rows of a list are checked.
//
// The host owns the authoritative selection. The controller mirrors it for
// rendering, applies user toggles, and reports every change through OnChange
// so the host can store the new value and sync it back.
package selection

import (
	"github.com/oakwood-commons/tablekit/pkg/record"
)

// Controller holds a selection set over an ordered list of keys.
// The zero value is an empty selection over an empty list.
type Controller struct {
	// OnChange receives the selected keys in list order after every toggle.
	OnChange func([]record.Key)

	keys     []record.Key
	index    map[record.Key]struct{}
	selected map[record.Key]struct{}
	all      bool
}

// New returns a controller over keys with nothing selected.
func New(keys []record.Key) *Controller {
	c := &Controller{}
	c.Sync(keys, nil)
	return c
}

// Sync replaces the list keys and the selection with host state. Selected
// keys that are not in the list are dropped. It does not call OnChange.
func (c *Controller) Sync(keys []record.Key, selected []record.Key) {
	c.keys = append(c.keys[:0:0], keys...)
	c.index = make(map[record.Key]struct{}, len(keys))
	for _, k := range keys {
		c.index[k] = struct{}{}
	}
	c.selected = make(map[record.Key]struct{}, len(selected))
	for _, k := range selected {
		if _, ok := c.index[k]; ok {
			c.selected[k] = struct{}{}
		}
	}
	c.all = c.spansList()
}

// SetKeys replaces the list keys and keeps the still-present selection.
func (c *Controller) SetKeys(keys []record.Key) {
	c.Sync(keys, c.Selected())
}

// ToggleAll selects every key, or clears the selection.
func (c *Controller) ToggleAll(selected bool) {
	c.ensure()
	if selected {
		for _, k := range c.keys {
			c.selected[k] = struct{}{}
		}
		c.all = len(c.keys) > 0
	} else {
		clear(c.selected)
		c.all = false
	}
	c.emit()
}

// ToggleOne adds or removes key. Keys outside the list are ignored and
// reported as false.
func (c *Controller) ToggleOne(key record.Key, selected bool) bool {
	c.ensure()
	if _, ok := c.index[key]; !ok {
		return false
	}
	if selected {
		c.selected[key] = struct{}{}
		if len(c.selected) == len(c.keys) {
			c.all = true
		}
	} else {
		delete(c.selected, key)
		c.all = false
	}
	c.emit()
	return true
}

// Toggle flips key and returns its new state.
func (c *Controller) Toggle(key record.Key) bool {
	next := !c.IsSelected(key)
	if !c.ToggleOne(key, next) {
		return false
	}
	return next
}

// IsSelected reports whether key is checked.
func (c *Controller) IsSelected(key record.Key) bool {
	_, ok := c.selected[key]
	return ok
}

// AllSelected reports whether every key of a non-empty list is checked.
func (c *Controller) AllSelected() bool { return c.all }

// Len returns the number of selected keys.
func (c *Controller) Len() int { return len(c.selected) }

// Selected returns the selected keys in list order.
func (c *Controller) Selected() []record.Key {
	out := make([]record.Key, 0, len(c.selected))
	for _, k := range c.keys {
		if _, ok := c.selected[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

func (c *Controller) spansList() bool {
	return len(c.keys) > 0 && len(c.selected) == len(c.keys)
}

func (c *Controller) ensure() {
	if c.index == nil {
		c.index = map[record.Key]struct{}{}
	}
	if c.selected == nil {
		c.selected = map[record.Key]struct{}{}
	}
}

func (c *Controller) emit() {
	if c.OnChange != nil {
		c.OnChange(c.Selected())
	}
}
