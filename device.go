// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package dusk

import (
	"sync"
	"sync/atomic"

	"github.com/gogpu/dusk/proc"
)

// ErrorCallback receives errors reported asynchronously by the device.
type ErrorCallback func(typ ErrorType, message string)

// deviceShared is the state behind every clone of a Device. The native
// device is not thread-safe: every native call that touches it runs under
// mu, and nothing else does.
type deviceShared struct {
	mu sync.Mutex

	n       *nativeSet
	raw     handle[proc.Device]
	queue   handle[proc.Queue]
	adapter *Adapter
	backend BackendType

	shares  atomic.Int32
	cookie  uintptr
	onError atomic.Pointer[ErrorCallback]

	// pending holds Go callbacks posted by native callbacks while mu was
	// held. They run after mu is released.
	pendingMu sync.Mutex
	pending   []func()
}

// do runs fn with the device locked, then delivers posted callbacks.
func (s *deviceShared) do(fn func()) {
	func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		fn()
	}()
	s.flush()
}

func (s *deviceShared) post(fn func()) {
	s.pendingMu.Lock()
	s.pending = append(s.pending, fn)
	s.pendingMu.Unlock()
}

func (s *deviceShared) flush() {
	for {
		s.pendingMu.Lock()
		batch := s.pending
		s.pending = nil
		s.pendingMu.Unlock()
		if len(batch) == 0 {
			return
		}
		for _, fn := range batch {
			fn()
		}
	}
}

func (s *deviceShared) dispatchError(typ ErrorType, msg string) {
	Logger().Warn("dusk: device error", "type", typ.String(), "message", msg)
	if cb := s.onError.Load(); cb != nil && *cb != nil {
		(*cb)(typ, msg)
	}
}

func (s *deviceShared) drop() {
	if s.shares.Add(-1) != 0 {
		return
	}
	s.queue.release()
	s.raw.release()
	dropCookie(s.cookie)
	s.adapter.Release()
	Logger().Info("dusk: device released", "backend", s.backend.String())
}

// Device is a logical device. Clones share one native device and one lock;
// the native device is released with the last clone.
type Device struct {
	s        *deviceShared
	released atomic.Bool
}

func newDevice(n *nativeSet, raw proc.Device, a *Adapter, opts deviceOptions) *Device {
	s := &deviceShared{n: n, adapter: a, backend: a.props.BackendType}
	s.shares.Store(1)
	s.raw.set(raw, &n.device, s)
	if opts.onError != nil {
		cb := opts.onError
		s.onError.Store(&cb)
	}
	s.cookie = newCookie(s)
	s.do(func() {
		n.table.DeviceSetUncapturedErrorCallback(raw, errorTrampoline, s.cookie)
		s.queue.set(n.table.DeviceGetDefaultQueue(raw), &n.queue, s)
	})
	Logger().Info("dusk: device created", "adapter", a.props.Name, "backend", s.backend.String())
	return &Device{s: s}
}

// shared returns the shared state and panics after Release.
func (d *Device) shared() *deviceShared {
	if d.released.Load() {
		precondition(ErrReleased, "Device")
	}
	return d.s
}

// Clone returns a new reference to the same device.
func (d *Device) Clone() *Device {
	s := d.shared()
	s.shares.Add(1)
	return &Device{s: s}
}

// Release drops this reference. Further calls are no-ops.
func (d *Device) Release() {
	if d.released.CompareAndSwap(false, true) {
		d.s.drop()
	}
}

// Raw returns the native device handle. Ownership stays with d.
func (d *Device) Raw() proc.Device { return d.shared().raw.get() }

// Adapter returns the adapter the device was created from. The result is
// owned by the device and must not be released.
func (d *Device) Adapter() *Adapter { return d.shared().adapter }

// BackendType returns the graphics API the device runs on.
func (d *Device) BackendType() BackendType { return d.shared().backend }

func (d *Device) String() string { return d.shared().raw.String() }

// Queue returns the device's default queue. The caller owns the result.
func (d *Device) Queue() *Queue {
	s := d.shared()
	q := &Queue{dev: d.Clone()}
	s.queue.clone(&q.h)
	return q
}

// Tick processes pending native work and delivers completed callbacks.
func (d *Device) Tick() {
	s := d.shared()
	raw := s.raw.get()
	s.do(func() { s.n.table.DeviceTick(raw) })
}

// InjectError asks the device to report an error through the uncaptured
// error callback.
func (d *Device) InjectError(typ ErrorType, message string) {
	s := d.shared()
	raw := s.raw.get()
	msg := proc.LabelOf(message)
	s.do(func() { s.n.table.DeviceInjectError(raw, typ, msg.Ptr()) })
}

// SetUncapturedErrorCallback installs cb as the receiver of device errors.
// Errors are also logged at warning level. A nil cb only logs.
func (d *Device) SetUncapturedErrorCallback(cb ErrorCallback) {
	s := d.shared()
	raw := s.raw.get()
	s.onError.Store(&cb)
	s.do(func() { s.n.table.DeviceSetUncapturedErrorCallback(raw, errorTrampoline, s.cookie) })
}

// lock runs fn under the device lock with the raw device handle.
func (d *Device) lock(fn func(t *proc.Table, raw proc.Device)) {
	s := d.shared()
	raw := s.raw.get()
	s.do(func() { fn(s.n.table, raw) })
}
