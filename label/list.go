// File: label/list.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// List is a port's pending-label collection: labels are kept ordered by
// Index (spec.md §3: "labels are ordered by index in each port"), support
// removal by identity, and expose the visible-window range consumed by
// InputPort.Labels().

package label

import "sort"

// List holds a port's pending labels, ordered by Index ascending.
type List struct {
	items []Label
}

// Push inserts l keeping the list sorted by Index.
func (l *List) Push(lbl Label) {
	i := sort.Search(len(l.items), func(i int) bool { return l.items[i].Index > lbl.Index })
	l.items = append(l.items, Label{})
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = lbl
}

// Len returns the number of pending labels.
func (l *List) Len() int { return len(l.items) }

// All returns the full ordered slice (read-only view; callers must not
// mutate it).
func (l *List) All() []Label { return l.items }

// identityEqual compares labels by ID/Index/Width — the identity a caller
// can reasonably reconstruct, since Data may be a non-comparable type.
func identityEqual(a, b Label) bool {
	return a.ID == b.ID && a.Index == b.Index && a.Width == b.Width
}

// Remove erases the first label matching lbl's identity (ID/Index/Width).
// Returns true if a match was removed.
func (l *List) Remove(lbl Label) bool {
	for i, cur := range l.items {
		if identityEqual(cur, lbl) {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return true
		}
	}
	return false
}

// AgeOut drops and returns every label whose End() <= totalElements —
// "age out labels whose (index+width) <= totalElements" (spec.md §4.3).
func (l *List) AgeOut(totalElements int64) []Label {
	var removed []Label
	kept := l.items[:0]
	for _, lbl := range l.items {
		if AgedOut(lbl, totalElements) {
			removed = append(removed, lbl)
		} else {
			kept = append(kept, lbl)
		}
	}
	l.items = kept
	return removed
}

// Visible returns every pending label whose index lies within the visible
// front chunk: [totalElements, totalElements+frontElements).
func (l *List) Visible(totalElements, frontElements int64) []Label {
	var out []Label
	for _, lbl := range l.items {
		if VisibleAt(lbl, totalElements, frontElements) {
			out = append(out, lbl)
		}
	}
	return out
}

// RescaleAll rescales every pending label in place for a dtype conversion
// from srcSize to dstSize element widths.
func (l *List) RescaleAll(srcSize, dstSize int) {
	for i, lbl := range l.items {
		l.items[i] = Rescale(lbl, srcSize, dstSize)
	}
}
