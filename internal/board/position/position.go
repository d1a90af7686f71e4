// Package position keeps sibling items (lists in a board, cards in a list) in a dense,
// zero-based order.
package position

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidPosition is returned when a target position is out of range.
	ErrInvalidPosition = errors.New("invalid position")
	// ErrNotInSequence is returned when the item to move is not among the siblings.
	ErrNotInSequence = errors.New("item not in sequence")
)

// Item is anything ordered among siblings.
type Item interface {
	GetID() string
	GetPosition() int
	SetPosition(position int)
}

// Next returns the position for an item appended at the end: max+1, or 0 when empty.
func Next[T Item](items []T) int {
	if len(items) == 0 {
		return 0
	}
	highest := items[0].GetPosition()
	for _, item := range items[1:] {
		highest = max(highest, item.GetPosition())
	}
	return highest + 1
}

// CloseGap decrements every item positioned after removed and returns the items it changed.
// Items at or before removed are untouched.
func CloseGap[T Item](items []T, removed int) []T {
	var changed []T
	for _, item := range items {
		if item.GetPosition() > removed {
			item.SetPosition(item.GetPosition() - 1)
			changed = append(changed, item)
		}
	}
	return changed
}

// Move relocates the item with id to index to within ordered, which must be sorted by
// position. It returns the resulting sequence with positions reassigned to 0..N-1 and
// whether anything changed. When the item is already at to, ordered is returned as is.
func Move[T Item](ordered []T, id string, to int) ([]T, bool, error) {
	if to < 0 || to >= len(ordered) {
		return nil, false, ErrInvalidPosition
	}
	from := slices.IndexFunc(ordered, func(item T) bool { return item.GetID() == id })
	if from < 0 {
		return nil, false, ErrNotInSequence
	}
	if ordered[from].GetPosition() == to {
		return ordered, false, nil
	}

	moving := ordered[from]
	result := make([]T, 0, len(ordered))
	result = append(result, ordered[:from]...)
	result = append(result, ordered[from+1:]...)
	result = slices.Insert(result, to, moving)
	Reassign(result)
	return result, true, nil
}

// InsertAt places item at index at within ordered (0 <= at <= N) and reassigns positions.
func InsertAt[T Item](ordered []T, item T, at int) ([]T, error) {
	if at < 0 || at > len(ordered) {
		return nil, ErrInvalidPosition
	}
	result := make([]T, 0, len(ordered)+1)
	result = append(result, ordered...)
	result = slices.Insert(result, at, item)
	Reassign(result)
	return result, nil
}

// Reassign sets each item's position to its index.
func Reassign[T Item](ordered []T) {
	for i, item := range ordered {
		if item.GetPosition() != i {
			item.SetPosition(i)
		}
	}
}

// IsDense reports whether the positions are exactly {0..N-1} with no duplicates.
func IsDense[T Item](items []T) bool {
	seen := make([]bool, len(items))
	for _, item := range items {
		p := item.GetPosition()
		if p < 0 || p >= len(items) || seen[p] {
			return false
		}
		seen[p] = true
	}
	return true
}
