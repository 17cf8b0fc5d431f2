// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
	_ "github.com/gogpu/wgpu/hal/vulkan" // registers the Vulkan HAL backend

	"github.com/gogpu/dusk/backend"
	"github.com/gogpu/dusk/internal/handlemap"
	"github.com/gogpu/dusk/proc"
)

func init() {
	backend.Register(backend.WGPU, func() (*proc.Table, error) {
		api, ok := hal.GetBackend(gputypes.BackendVulkan)
		if !ok {
			return nil, backend.ErrBackendNotAvailable
		}
		m := New(backend.WGPU, api, proc.BackendTypeVulkan)
		if err := m.probe(); err != nil {
			return nil, fmt.Errorf("%w: %w", backend.ErrBackendNotAvailable, err)
		}
		return m.Table(), nil
	})
	backend.Register(backend.WGPUNoop, func() (*proc.Table, error) {
		return NewNoop().Table(), nil
	})
}

// API creates HAL instances. Registered hal.Backend values and noop.API
// both satisfy it.
type API interface {
	CreateInstance(desc *hal.InstanceDescriptor) (hal.Instance, error)
}

var errNoAdapters = errors.New("no adapters found")

// Impl is one HAL bridge with its own handle space.
type Impl struct {
	name    string
	api     API
	backend proc.BackendType
	objs    *handlemap.Map
	logger  atomic.Pointer[slog.Logger]
}

// New creates a bridge over api. backendType is reported in adapter
// properties.
func New(name string, api API, backendType proc.BackendType) *Impl {
	m := &Impl{
		name:    name,
		api:     api,
		backend: backendType,
		objs:    handlemap.New(name),
	}
	m.logger.Store(slog.New(slog.DiscardHandler))
	return m
}

// NewNoop creates a bridge over the HAL noop backend.
func NewNoop() *Impl {
	return New(backend.WGPUNoop, &noop.API{}, proc.BackendTypeNull)
}

// SetLogger sets the logger for diagnostics and for errors reported while a
// device has no error callback. Nil restores silence.
func (m *Impl) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	m.logger.Store(l)
}

func (m *Impl) log() *slog.Logger { return m.logger.Load() }

// Live returns the number of handles with at least one reference.
func (m *Impl) Live() int { return m.objs.Len() }

// probe checks that the API exposes at least one adapter.
func (m *Impl) probe() error {
	inst, err := m.api.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	defer inst.Destroy()
	if len(inst.EnumerateAdapters(nil)) == 0 {
		return errNoAdapters
	}
	return nil
}

// Table returns the entry points of m. Render and presentation entries
// are left nil.
func (m *Impl) Table() *proc.Table {
	t := &proc.Table{
		Name:      m.name,
		SetLogger: m.SetLogger,
	}
	m.instanceProcs(t)
	m.deviceProcs(t)
	m.queueProcs(t)
	m.bufferProcs(t)
	m.textureProcs(t)
	m.pipelineProcs(t)
	m.encoderProcs(t)
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

func lookup[T any](m *Impl, h uintptr) T { return handlemap.Get[T](m.objs, h) }

func lookupOpt[T any](m *Impl, h uintptr) T { return handlemap.GetOpt[T](m.objs, h) }
