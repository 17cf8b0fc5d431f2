// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package dusk

import (
	"fmt"
	"sync/atomic"
)

// handleOps are the native entry points that manage one handle type.
// reference is nil for types that cannot be cloned.
type handleOps[H ~uintptr] struct {
	name      string
	reference func(H)
	release   func(H)
}

// serializer runs native calls that touch shared device state.
type serializer interface {
	do(fn func())
}

// handle owns exactly one native reference to a handle of type H.
//
// The raw value is swapped to zero on release, so a handle releases at most
// once even when Release races with itself.
type handle[H ~uintptr] struct {
	raw   atomic.Uintptr
	ops   *handleOps[H]
	owner serializer
}

// set takes ownership of raw. A zero raw value is a precondition violation.
func (h *handle[H]) set(raw H, ops *handleOps[H], s serializer) {
	if raw == 0 {
		precondition(ErrNullHandle, "create "+ops.name)
	}
	h.ops = ops
	h.owner = s
	h.raw.Store(uintptr(raw))
	Logger().Debug("dusk: handle created", "type", ops.name, "handle", uintptr(raw))
}

// get returns the raw handle and panics after release.
func (h *handle[H]) get() H {
	v := h.raw.Load()
	if v == 0 {
		name := "handle"
		if h.ops != nil {
			name = h.ops.name
		}
		precondition(ErrReleased, name)
	}
	return H(v)
}

func (h *handle[H]) alive() bool { return h.raw.Load() != 0 }

// call runs fn under the owning serializer, if any.
func (h *handle[H]) call(fn func()) {
	if h.owner == nil {
		fn()
		return
	}
	h.owner.do(fn)
}

// clone takes a new native reference into dst.
func (h *handle[H]) clone(dst *handle[H]) {
	raw := h.get()
	if h.ops.reference == nil {
		panic(fmt.Sprintf("dusk: %s cannot be cloned", h.ops.name))
	}
	h.call(func() { h.ops.reference(raw) })
	dst.ops = h.ops
	dst.owner = h.owner
	dst.raw.Store(uintptr(raw))
}

// release drops the native reference. It reports false when the handle was
// already released.
func (h *handle[H]) release() bool {
	v := h.raw.Swap(0)
	if v == 0 {
		return false
	}
	h.call(func() { h.ops.release(H(v)) })
	Logger().Debug("dusk: handle released", "type", h.ops.name, "handle", v)
	return true
}

func (h *handle[H]) String() string {
	name := "handle"
	if h.ops != nil {
		name = h.ops.name
	}
	return fmt.Sprintf("%s(%#x)", name, h.raw.Load())
}
