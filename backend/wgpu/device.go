// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"
	"time"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/dusk/proc"
)

// idleTimeout bounds the wait for submitted work when a device is released.
const idleTimeout = 5 * time.Second

// waiter is a completion that may run once the submission numbered after
// has finished on the GPU.
type waiter struct {
	after uint64
	fn    func()
}

// device wraps one opened HAL device. hal is nil when opening failed; every
// call on such a device reports DeviceLost.
type device struct {
	impl    *Impl
	adapter *adapter

	hal   hal.Device
	queue hal.Queue
	lost  error

	q           *queue
	queueHandle proc.Queue

	// submit is signaled with the running submission count.
	submit    hal.Fence
	submitted uint64
	completed uint64

	errorCallback proc.ErrorCallback
	errorUserdata uintptr
	lostReported  bool

	pending []waiter
}

func (m *Impl) device(h proc.Device) *device {
	return lookup[*device](m, uintptr(h))
}

// report delivers an error through the uncaptured error callback, or logs it
// when none is installed.
func (d *device) report(typ proc.ErrorType, msg string) {
	if d.errorCallback != nil {
		d.errorCallback(typ, proc.CString(msg), d.errorUserdata)
		return
	}
	d.impl.log().Warn("wgpu: uncaptured device error", "type", typ.String(), "message", msg)
}

// require reports a validation error unless ok.
func (d *device) require(ok bool, format string, args ...any) bool {
	if !ok {
		d.report(proc.ErrorTypeValidation, fmt.Sprintf(format, args...))
	}
	return ok
}

// check reports err as a validation error of what.
func (d *device) check(err error, what string) bool {
	if err != nil {
		d.report(proc.ErrorTypeValidation, fmt.Sprintf("%s: %v", what, err))
		return false
	}
	return true
}

// alive reports DeviceLost for calls on a device that failed to open.
func (d *device) alive(what string) bool {
	if d.hal != nil {
		return true
	}
	d.report(proc.ErrorTypeDeviceLost, fmt.Sprintf("%s: %v", what, d.lost))
	return false
}

// later queues fn until the current submission has completed.
func (d *device) later(fn func()) {
	d.pending = append(d.pending, waiter{after: d.submitted, fn: fn})
}

// reached polls the submit fence without blocking.
func (d *device) reached(v uint64) bool {
	if v <= d.completed {
		return true
	}
	ok, err := d.hal.Wait(d.submit, v, 0)
	if !d.check(err, "tick") || !ok {
		return false
	}
	d.completed = v
	return true
}

// tick runs every pending completion whose submission has finished, in
// request order.
func (d *device) tick() {
	for len(d.pending) > 0 {
		batch := d.pending
		d.pending = nil
		var kept []waiter
		for i, w := range batch {
			if d.hal != nil && !d.reached(w.after) {
				kept = batch[i:]
				break
			}
			w.fn()
		}
		d.pending = append(kept, d.pending...)
		if len(kept) > 0 {
			return
		}
	}
}

func (d *device) destroy() {
	d.impl.objs.Release(uintptr(d.queueHandle))
	if d.hal == nil {
		return
	}
	if _, err := d.hal.Wait(d.submit, d.submitted, idleTimeout); err != nil {
		d.impl.log().Warn("wgpu: wait for idle on release failed", "error", err)
	}
	d.hal.DestroyFence(d.submit)
	d.hal.Destroy()
	d.impl.log().Debug("wgpu: device destroyed", "submissions", d.submitted, "pending", len(d.pending))
}

func (m *Impl) deviceProcs(t *proc.Table) {
	t.DeviceReference, t.DeviceRelease = refcounted[proc.Device](m, (*device).destroy)

	t.DeviceGetDefaultQueue = func(h proc.Device) proc.Queue {
		d := m.device(h)
		m.objs.Reference(uintptr(d.queueHandle))
		return d.queueHandle
	}

	t.DeviceTick = func(h proc.Device) {
		m.device(h).tick()
	}

	t.DeviceInjectError = func(h proc.Device, typ proc.ErrorType, msg *byte) {
		m.device(h).report(typ, proc.GoString(msg))
	}

	t.DeviceSetUncapturedErrorCallback = func(h proc.Device, cb proc.ErrorCallback, userdata uintptr) {
		d := m.device(h)
		d.errorCallback = cb
		d.errorUserdata = userdata
		if d.hal == nil && !d.lostReported {
			d.lostReported = true
			d.report(proc.ErrorTypeDeviceLost, fmt.Sprintf("open device: %v", d.lost))
		}
	}
}
