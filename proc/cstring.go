// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package proc

import (
	"math"
	"unsafe"
)

// CString returns a NUL-terminated copy of s.
func CString(s string) *byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return &b[0]
}

// GoString copies a NUL-terminated string. A nil pointer yields "".
func GoString(p *byte) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return string(unsafe.Slice(p, n))
}

// CStrings converts a list of strings into a NUL-terminated pointer array.
// The returned slice keeps the strings reachable.
func CStrings(ss []string) []*byte {
	if len(ss) == 0 {
		return nil
	}
	out := make([]*byte, len(ss))
	for i, s := range ss {
		out[i] = CString(s)
	}
	return out
}

// GoStrings reads count NUL-terminated strings from a pointer array.
func GoStrings(p **byte, count uint32) []string {
	ptrs := Slice(p, count)
	if len(ptrs) == 0 {
		return nil
	}
	out := make([]string, len(ptrs))
	for i, s := range ptrs {
		out[i] = GoString(s)
	}
	return out
}

// Slice views count elements starting at p. It returns nil when p is nil or
// count is zero.
func Slice[T any](p *T, count uint32) []T {
	if p == nil || count == 0 {
		return nil
	}
	return unsafe.Slice(p, count)
}

// Bytes views n bytes starting at p.
func Bytes(p *byte, n uint64) []byte {
	if p == nil || n == 0 {
		return nil
	}
	return unsafe.Slice(p, n)
}

// First returns a pointer to the first element of s, or nil if s is empty.
func First[T any](s []T) *T {
	if len(s) == 0 {
		return nil
	}
	return &s[0]
}

// Count converts a length into the native uint32 count type. It reports
// false when n does not fit.
func Count(n int) (uint32, bool) {
	if n < 0 || uint64(n) > math.MaxUint32 {
		return 0, false
	}
	return uint32(n), true
}
