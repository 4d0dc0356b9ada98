package reorder

import (
	"errors"
	"fmt"
	"strings"
)

// ErrItemNotFound is returned when the moving or target item is not in the list.
var ErrItemNotFound = errors.New("item not found in list")

// Strategy selects how the insertion index is computed after the moving
// item is removed.
type Strategy int

const (
	// Corrected recomputes the target position after removal, so the item
	// always lands directly before or after the target.
	Corrected Strategy = iota
	// Legacy reuses the target index found before removal. When the moving
	// item started above the target it lands one slot further down.
	Legacy
)

func (s Strategy) String() string {
	if s == Legacy {
		return "legacy"
	}
	return "corrected"
}

// ParseStrategy accepts "corrected" (or "") and "legacy".
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "corrected":
		return Corrected, nil
	case "legacy":
		return Legacy, nil
	}
	return Corrected, fmt.Errorf("unknown reorder strategy %q (expected corrected or legacy)", s)
}

// Move returns a copy of list with intent applied. Identity is by keyOf.
// The input slice is not modified. A move onto itself returns an unchanged
// copy.
func Move[T any, K comparable](list []T, intent MoveIntent[T], keyOf func(T) K, strategy Strategy) ([]T, error) {
	movingKey := keyOf(intent.Moving)
	targetKey := keyOf(intent.Target)

	from, target := -1, -1
	for i, item := range list {
		switch keyOf(item) {
		case movingKey:
			if from < 0 {
				from = i
			}
		case targetKey:
			if target < 0 {
				target = i
			}
		}
	}
	if from < 0 {
		return nil, fmt.Errorf("moving %v: %w", movingKey, ErrItemNotFound)
	}
	if movingKey == targetKey {
		return append([]T(nil), list...), nil
	}
	if target < 0 {
		return nil, fmt.Errorf("target %v: %w", targetKey, ErrItemNotFound)
	}

	moved := list[from]
	out := make([]T, 0, len(list))
	out = append(out, list[:from]...)
	out = append(out, list[from+1:]...)

	at := target
	if strategy == Corrected && from < target {
		at--
	}
	if intent.Kind == After {
		at++
	}
	if at > len(out) {
		at = len(out)
	}

	out = append(out, moved)
	copy(out[at+1:], out[at:])
	out[at] = moved
	return out, nil
}

// Step builds the intent for moving item one position up (delta < 0) or
// down (delta > 0) relative to its neighbour. It reports false at the list
// edges.
func Step[T any, K comparable](list []T, item T, delta int, keyOf func(T) K) (MoveIntent[T], bool) {
	key := keyOf(item)
	idx := -1
	for i, it := range list {
		if keyOf(it) == key {
			idx = i
			break
		}
	}
	if idx < 0 || delta == 0 {
		return MoveIntent[T]{}, false
	}
	if delta < 0 {
		if idx == 0 {
			return MoveIntent[T]{}, false
		}
		return MoveIntent[T]{Kind: Before, Moving: item, Target: list[idx-1]}, true
	}
	if idx == len(list)-1 {
		return MoveIntent[T]{}, false
	}
	return MoveIntent[T]{Kind: After, Moving: item, Target: list[idx+1]}, true
}
