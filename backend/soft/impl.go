// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package soft

import (
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/dusk/backend"
	"github.com/gogpu/dusk/proc"
)

func init() {
	backend.Register(backend.Soft, func() (*proc.Table, error) {
		return Procs(), nil
	})
}

// Impl is one software implementation with its own object space. Handles
// from different Impls must not be mixed.
type Impl struct {
	objs   *store
	logger atomic.Pointer[slog.Logger]
}

// New creates an implementation with no live objects.
func New() *Impl {
	m := &Impl{objs: newStore()}
	m.logger.Store(slog.New(slog.DiscardHandler))
	return m
}

// Procs returns the table of a fresh implementation.
func Procs() *proc.Table {
	return New().Table()
}

// SetLogger sets the logger used for diagnostics and for errors reported
// while a device has no error callback. Nil restores silence.
func (m *Impl) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	m.logger.Store(l)
}

func (m *Impl) log() *slog.Logger { return m.logger.Load() }

// Live returns the number of native objects with at least one reference.
func (m *Impl) Live() int { return m.objs.Len() }

// Refs returns the native reference count of a handle, 0 once released.
func (m *Impl) Refs(h uintptr) int32 { return m.objs.Refs(h) }

// Table returns the entry points of m.
func (m *Impl) Table() *proc.Table {
	t := &proc.Table{
		Name:      "soft",
		SetLogger: m.SetLogger,
	}
	m.instanceProcs(t)
	m.deviceProcs(t)
	m.queueProcs(t)
	m.bufferProcs(t)
	m.textureProcs(t)
	m.pipelineProcs(t)
	m.encoderProcs(t)
	m.passProcs(t)
	m.bundleProcs(t)
	m.swapChainProcs(t)
	return t
}

// refcounted builds the reference and release entries for a handle type.
// onRelease, when set, runs after the last reference is dropped.
func refcounted[H ~uintptr, T any](m *Impl, onRelease func(T)) (func(H), func(H)) {
	ref := func(h H) { m.objs.Reference(uintptr(h)) }
	rel := func(h H) {
		obj, dead := m.objs.Release(uintptr(h))
		if dead && onRelease != nil {
			onRelease(obj.(T))
		}
	}
	return ref, rel
}
