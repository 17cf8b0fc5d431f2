// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package dusk

import (
	"sync"

	"github.com/gogpu/dusk/proc"
)

// cookies maps the userdata values handed to native callbacks back to Go
// state. Native code only ever sees the integer key.
var cookies = struct {
	mu   sync.Mutex
	next uintptr
	live map[uintptr]any
}{next: 1, live: make(map[uintptr]any)}

func newCookie(v any) uintptr {
	cookies.mu.Lock()
	defer cookies.mu.Unlock()
	c := cookies.next
	cookies.next++
	cookies.live[c] = v
	return c
}

// lookupCookie returns the value for c. take removes it for one-shot
// callbacks.
func lookupCookie[T any](c uintptr, take bool) (T, bool) {
	cookies.mu.Lock()
	defer cookies.mu.Unlock()
	v, ok := cookies.live[c].(T)
	if ok && take {
		delete(cookies.live, c)
	}
	return v, ok
}

func dropCookie(c uintptr) {
	cookies.mu.Lock()
	delete(cookies.live, c)
	cookies.mu.Unlock()
}

// Native callbacks run inside a native call, with the device lock held.
// Each trampoline copies what it needs and posts the Go callback to the
// device, which runs it after the lock is released so callbacks may call
// back into the device.

func errorTrampoline(typ proc.ErrorType, msg *byte, userdata uintptr) {
	s, ok := lookupCookie[*deviceShared](userdata, false)
	if !ok {
		return
	}
	text := proc.GoString(msg)
	s.post(func() { s.dispatchError(typ, text) })
}

type mapReadRequest struct {
	dev *deviceShared
	fn  func(status BufferMapAsyncStatus, data []byte)
}

func mapReadTrampoline(status proc.BufferMapAsyncStatus, data *byte, n uint64, userdata uintptr) {
	req, ok := lookupCookie[*mapReadRequest](userdata, true)
	if !ok {
		return
	}
	view := proc.Bytes(data, n)
	req.dev.post(func() { req.fn(status, view) })
}

type fenceRequest struct {
	dev *deviceShared
	fn  func(status FenceCompletionStatus)
}

func fenceTrampoline(status proc.FenceCompletionStatus, userdata uintptr) {
	req, ok := lookupCookie[*fenceRequest](userdata, true)
	if !ok {
		return
	}
	req.dev.post(func() { req.fn(status) })
}
