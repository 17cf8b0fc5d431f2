// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package proc

// LabelInlineCap is the size of a Label's inline buffer, NUL included.
// Strings shorter than LabelInlineCap are stored inline.
const LabelInlineCap = 23

type labelKind uint8

const (
	labelEmpty labelKind = iota
	labelInline
	labelHeap
)

// Label is a debug name passed to the native side as a NUL-terminated string.
// Short names live in the value itself and cost no allocation; longer names
// are copied to a heap buffer owned by the Label. The zero Label is empty and
// yields a nil pointer.
//
// A Label is 32 bytes on 64-bit targets. Pass it by pointer when calling Ptr
// so the inline bytes are not copied out from under the returned pointer.
type Label struct {
	heap   *byte
	kind   labelKind
	inline [LabelInlineCap]byte
}

// NewLabel copies s into a Label. Native code reads up to the first NUL, so
// a string with an embedded NUL is seen truncated.
func NewLabel(s string) Label {
	var l Label
	if len(s) < LabelInlineCap {
		l.kind = labelInline
		copy(l.inline[:], s)
		return l
	}
	l.kind = labelHeap
	l.heap = CString(s)
	return l
}

// LabelOf is like NewLabel but maps the empty string to the empty Label.
func LabelOf(s string) Label {
	if s == "" {
		return Label{}
	}
	return NewLabel(s)
}

// Ptr returns the NUL-terminated string, or nil for the empty Label.
func (l *Label) Ptr() *byte {
	switch l.kind {
	case labelInline:
		return &l.inline[0]
	case labelHeap:
		return l.heap
	default:
		return nil
	}
}

// IsEmpty reports whether the Label carries no string at all.
func (l *Label) IsEmpty() bool { return l.kind == labelEmpty }

// IsInline reports whether the string is stored in the inline buffer.
func (l *Label) IsInline() bool { return l.kind == labelInline }

func (l *Label) String() string { return GoString(l.Ptr()) }
