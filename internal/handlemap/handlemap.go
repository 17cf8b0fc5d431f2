// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package handlemap maps opaque native handle values to Go objects with a
// reference count per handle. Backends use it to hand out proc handles.
package handlemap

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// entry is one live object. refs starts at 1 for the creator.
type entry struct {
	refs atomic.Int32
	obj  any
}

// Map assigns handles to objects. Handles are never reused, so a stale
// handle is always detected. Map is safe for concurrent use.
type Map struct {
	name   string
	mu     sync.RWMutex
	live   map[uintptr]*entry
	nextID uintptr
}

// New returns an empty map. name prefixes panic messages.
func New(name string) *Map {
	return &Map{
		name:   name,
		live:   make(map[uintptr]*entry),
		nextID: 1,
	}
}

// Add registers obj with one reference and returns its handle.
func (m *Map) Add(obj any) uintptr {
	e := &entry{obj: obj}
	e.refs.Store(1)

	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.live[id] = e
	return id
}

func (m *Map) entry(h uintptr) *entry {
	m.mu.RLock()
	e, ok := m.live[h]
	m.mu.RUnlock()
	if !ok {
		panic(fmt.Sprintf("%s: unknown or released handle %#x", m.name, h))
	}
	return e
}

// Reference adds one reference to h.
func (m *Map) Reference(h uintptr) {
	if h == 0 {
		panic(m.name + ": reference of null handle")
	}
	m.entry(h).refs.Add(1)
}

// Release drops one reference and reports the object when it died. A zero
// handle is ignored.
func (m *Map) Release(h uintptr) (any, bool) {
	if h == 0 {
		return nil, false
	}
	e := m.entry(h)
	n := e.refs.Add(-1)
	switch {
	case n > 0:
		return nil, false
	case n < 0:
		panic(fmt.Sprintf("%s: handle %#x released too many times", m.name, h))
	}

	m.mu.Lock()
	delete(m.live, h)
	m.mu.Unlock()
	return e.obj, true
}

// Refs returns the current reference count of h, or 0 if it is not live.
func (m *Map) Refs(h uintptr) int32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.live[h]; ok {
		return e.refs.Load()
	}
	return 0
}

// Len returns the number of live handles.
func (m *Map) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.live)
}

// Get returns the object behind h as a T. A handle of the wrong type is a
// binding bug and panics.
func Get[T any](m *Map, h uintptr) T {
	obj := m.entry(h).obj
	v, ok := obj.(T)
	if !ok {
		var zero T
		panic(fmt.Sprintf("%s: handle %#x is %T, want %T", m.name, h, obj, zero))
	}
	return v
}

// GetOpt is Get for optional handles; zero yields the zero T.
func GetOpt[T any](m *Map, h uintptr) T {
	if h == 0 {
		var zero T
		return zero
	}
	return Get[T](m, h)
}
