// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package proc

import (
	"strings"
	"testing"
	"unsafe"
)

func TestLabelSize(t *testing.T) {
	if unsafe.Sizeof(uintptr(0)) != 8 {
		t.Skip("label layout is checked on 64-bit targets")
	}
	if got := unsafe.Sizeof(Label{}); got != 32 {
		t.Errorf("Sizeof(Label) = %d, want 32", got)
	}
}

// readNUL reads the bytes at p up to and including the terminator.
func readNUL(t *testing.T, p *byte, max int) []byte {
	t.Helper()
	if p == nil {
		t.Fatal("nil label pointer")
	}
	raw := unsafe.Slice(p, max+1)
	for i, b := range raw {
		if b == 0 {
			return raw[:i+1]
		}
	}
	t.Fatalf("no NUL terminator within %d bytes", max+1)
	return nil
}

func TestLabelRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		inline bool
	}{
		{"empty string", "", true},
		{"short", "buffer", true},
		{"one under threshold", strings.Repeat("a", LabelInlineCap-1), true},
		{"at threshold", strings.Repeat("b", LabelInlineCap), false},
		{"one over threshold", strings.Repeat("c", LabelInlineCap+1), false},
		{"long", strings.Repeat("long label ", 20), false},
		{"utf8", "текстура", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLabel(tt.input)
			if l.IsInline() != tt.inline {
				t.Errorf("IsInline() = %v, want %v", l.IsInline(), tt.inline)
			}
			if l.IsEmpty() {
				t.Error("IsEmpty() = true for a constructed label")
			}

			got := readNUL(t, l.Ptr(), len(tt.input))
			want := append([]byte(tt.input), 0)
			if string(got) != string(want) {
				t.Errorf("bytes = %q, want %q", got, want)
			}
			if l.String() != tt.input {
				t.Errorf("String() = %q, want %q", l.String(), tt.input)
			}
		})
	}
}

func TestLabelInlinePointsIntoValue(t *testing.T) {
	l := NewLabel("pass")
	p := uintptr(unsafe.Pointer(l.Ptr()))
	start := uintptr(unsafe.Pointer(&l))
	if p < start || p >= start+unsafe.Sizeof(l) {
		t.Error("inline label pointer does not point into the Label value")
	}
}

func TestLabelEmpty(t *testing.T) {
	var l Label
	if !l.IsEmpty() {
		t.Error("zero Label should be empty")
	}
	if l.Ptr() != nil {
		t.Error("empty Label should yield a nil pointer")
	}
	if l.String() != "" {
		t.Errorf("String() = %q, want empty", l.String())
	}

	lo := LabelOf("")
	if !lo.IsEmpty() {
		t.Error(`LabelOf("") should be empty`)
	}
	lo = LabelOf("x")
	if lo.IsEmpty() || lo.String() != "x" {
		t.Errorf(`LabelOf("x") = %q`, lo.String())
	}
}

func TestLabelEmbeddedNUL(t *testing.T) {
	l := NewLabel("ab\x00cd")
	if got := l.String(); got != "ab" {
		t.Errorf("String() = %q, want %q", got, "ab")
	}
}

func BenchmarkNewLabelInline(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		l := NewLabel("vertex buffer")
		_ = l.Ptr()
	}
}
