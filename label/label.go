// File: label/label.go
// Package label implements Label and LabelIteratorRange: index-tagged
// metadata carried alongside a stream, with a visibility window adjusted as
// the owning port consumes bytes, and rescale/clip arithmetic for dtype
// conversions and buffer splits.
//
// Grounded on Pothos's lib/Framework/Label.cpp (rescale semantics on dtype
// width changes) and pothos-blocks/utility/SporadicLabeler.cpp (clip at
// buffer edges). spec.md §3/§4.4.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
package label

// Label is an index-tagged payload riding alongside a stream.
// Invariant: Width >= 1 (spec.md's open-question note: a default-omitted
// width is treated as 1, never 0).
type Label struct {
	ID    string
	Data  any
	Index int64 // element offset from the port's total-elements baseline
	Width int64 // element span; defaults to 1
}

// New constructs a Label, defaulting Width to 1 when given as 0 — matching
// spec.md §9's flagged producer bug (some producers forget to set it).
func New(id string, data any, index int64, width int64) Label {
	if width <= 0 {
		width = 1
	}
	return Label{ID: id, Data: data, Index: index, Width: width}
}

// End returns the exclusive end index (Index + Width).
func (l Label) End() int64 { return l.Index + l.Width }

// VisibleAt reports whether l is visible given totalElements already
// consumed and the element count of the currently visible front chunk:
// a label is visible once totalElements+frontElements covers its end, and
// it has not yet fully aged out (End() > totalElements).
func VisibleAt(l Label, totalElements, frontElements int64) bool {
	return l.Index < totalElements+frontElements && l.End() > totalElements
}

// AgedOut reports whether l should be dropped after consuming up to
// totalElements: true once l.End() <= totalElements, per spec.md §4.3
// ("age out labels whose (index+width) <= totalElements").
func AgedOut(l Label, totalElements int64) bool {
	return l.End() <= totalElements
}

// Rescale adjusts a label's Index and Width for a dtype conversion from
// element width srcSize to dstSize, integer-dividing toward zero, per
// spec.md §4.4: "every label's index and width are scaled by A/B".
func Rescale(l Label, srcSize, dstSize int) Label {
	if srcSize <= 0 || dstSize <= 0 || srcSize == dstSize {
		return l
	}
	out := l
	out.Index = (l.Index * int64(srcSize)) / int64(dstSize)
	out.Width = (l.Width * int64(srcSize)) / int64(dstSize)
	if out.Width <= 0 {
		out.Width = 1
	}
	return out
}

// Clip truncates a label's span so it never exceeds the buffer it rides on:
// "a label whose original span exceeds the buffer it rides on is clipped"
// (spec.md §4.4). bufferElems is the element count of the carrying buffer,
// relative to the label's own Index baseline.
func Clip(l Label, bufferElems int64) Label {
	maxEnd := l.Index + bufferElems
	if l.End() <= maxEnd {
		return l
	}
	out := l
	out.Width = maxEnd - l.Index
	if out.Width <= 0 {
		out.Width = 1
	}
	return out
}
