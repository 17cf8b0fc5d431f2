// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package soft

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/dusk/proc"
)

// device is the software device. Like real native devices it is not safe
// for concurrent use; overlapping calls are detected and panic.
type device struct {
	impl    *Impl
	adapter *adapter

	queue       *queue
	queueHandle proc.Queue

	skipValidation bool
	toggles        []string

	busy atomic.Int32

	errorCallback proc.ErrorCallback
	errorUserdata uintptr

	// pending holds completions delivered by the next tick.
	pending []func()

	nativeChains map[uint64]*nativeChain
	nextChain    uint64
}

func newDevice(m *Impl, a *adapter) *device {
	return &device{
		impl:         m,
		adapter:      a,
		nativeChains: make(map[uint64]*nativeChain),
		nextChain:    1,
	}
}

// enter marks the device busy for the duration of one entry point.
// Use as: defer d.enter()()
func (d *device) enter() func() {
	if d.busy.Add(1) != 1 {
		d.busy.Add(-1)
		panic("soft: concurrent call into a device")
	}
	return func() { d.busy.Add(-1) }
}

// report delivers an error through the uncaptured error callback, or logs it
// when none is installed.
func (d *device) report(typ proc.ErrorType, msg string) {
	if d.errorCallback != nil {
		d.errorCallback(typ, proc.CString(msg), d.errorUserdata)
		return
	}
	d.impl.log().Warn("soft: uncaptured device error", "type", typ.String(), "message", msg)
}

// validate reports a validation error unless ok. It returns ok, or true when
// validation is skipped.
func (d *device) validate(ok bool, format string, args ...any) bool {
	if ok || d.skipValidation {
		return true
	}
	d.report(proc.ErrorTypeValidation, fmt.Sprintf(format, args...))
	return false
}

// require is validate for checks that guard memory safety; it ignores
// skip_validation.
func (d *device) require(ok bool, format string, args ...any) bool {
	if !ok {
		d.report(proc.ErrorTypeValidation, fmt.Sprintf(format, args...))
	}
	return ok
}

// later queues fn for the next tick.
func (d *device) later(fn func()) {
	d.pending = append(d.pending, fn)
}

func (m *Impl) device(h proc.Device) *device {
	return lookup[*device](m.objs, uintptr(h))
}

func (m *Impl) deviceProcs(t *proc.Table) {
	t.DeviceReference, t.DeviceRelease = refcounted[proc.Device](m, func(d *device) {
		m.objs.Release(uintptr(d.queueHandle))
		m.log().Debug("soft: device destroyed", "pending", len(d.pending))
	})

	t.DeviceGetDefaultQueue = func(h proc.Device) proc.Queue {
		d := m.device(h)
		defer d.enter()()
		m.objs.Reference(uintptr(d.queueHandle))
		return d.queueHandle
	}

	t.DeviceTick = func(h proc.Device) {
		d := m.device(h)
		defer d.enter()()
		for len(d.pending) > 0 {
			batch := d.pending
			d.pending = nil
			for _, fn := range batch {
				fn()
			}
		}
	}

	t.DeviceInjectError = func(h proc.Device, typ proc.ErrorType, msg *byte) {
		d := m.device(h)
		defer d.enter()()
		d.report(typ, proc.GoString(msg))
	}

	t.DeviceSetUncapturedErrorCallback = func(h proc.Device, cb proc.ErrorCallback, userdata uintptr) {
		d := m.device(h)
		defer d.enter()()
		d.errorCallback = cb
		d.errorUserdata = userdata
	}
}
