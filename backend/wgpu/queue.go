// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/dusk/proc"
)

type queue struct {
	device *device
}

type fenceWaiter struct {
	value    uint64
	cb       proc.FenceOnCompletionCallback
	userdata uintptr
}

// fence values complete once the submissions recorded before the signal
// have finished on the GPU.
type fence struct {
	device    *device
	queue     *queue
	completed uint64
	signaled  uint64
	waiters   []fenceWaiter
}

// complete raises the completed value to v and fires ready waiters.
func (f *fence) complete(v uint64) {
	f.completed = max(f.completed, v)
	kept := f.waiters[:0]
	for _, w := range f.waiters {
		if w.value <= f.completed {
			w.cb(proc.FenceCompletionStatusSuccess, w.userdata)
			continue
		}
		kept = append(kept, w)
	}
	f.waiters = kept
}

func (m *Impl) fence(h proc.Fence) *fence {
	return lookup[*fence](m, uintptr(h))
}

func (m *Impl) queueProcs(t *proc.Table) {
	t.QueueReference, t.QueueRelease = refcounted[proc.Queue, *queue](m, nil)

	t.QueueSubmit = func(h proc.Queue, n uint32, cbs *proc.CommandBuffer) {
		d := lookup[*queue](m, uintptr(h)).device
		if !d.alive("submit") {
			return
		}
		var list []hal.CommandBuffer
		for _, ch := range proc.Slice(cbs, n) {
			cb := lookup[*commandBuffer](m, uintptr(ch))
			if !d.require(cb.device == d, "submit: command buffer belongs to another device") ||
				!d.require(cb.hal != nil, "submit: command buffer is invalid") ||
				!d.require(!cb.submitted, "submit: command buffer was already submitted") {
				continue
			}
			cb.submitted = true
			list = append(list, cb.hal)
		}
		if len(list) == 0 {
			return
		}
		d.submitted++
		if d.check(d.queue.Submit(list, d.submit, d.submitted), "submit") {
			m.log().Debug("wgpu: submitted", "command_buffers", len(list), "submission", d.submitted)
		}
	}

	t.QueueCreateFence = func(h proc.Queue, desc *proc.FenceDescriptor) proc.Fence {
		q := lookup[*queue](m, uintptr(h))
		f := &fence{device: q.device, queue: q}
		if desc != nil {
			f.completed = desc.InitialValue
			f.signaled = desc.InitialValue
		}
		return proc.Fence(m.objs.Add(f))
	}

	t.QueueSignal = func(h proc.Queue, fh proc.Fence, value uint64) {
		q := lookup[*queue](m, uintptr(h))
		d := q.device
		f := m.fence(fh)
		if !d.require(f.queue == q, "signal: fence was created on another queue") ||
			!d.require(value > f.signaled, "signal: value %d not greater than signaled value %d", value, f.signaled) {
			return
		}
		f.signaled = value
		d.later(func() { f.complete(value) })
	}

	t.FenceReference, t.FenceRelease = refcounted[proc.Fence](m, func(f *fence) {
		waiters := f.waiters
		f.waiters = nil
		for _, w := range waiters {
			f.device.later(func() { w.cb(proc.FenceCompletionStatusUnknown, w.userdata) })
		}
	})

	t.FenceGetCompletedValue = func(h proc.Fence) uint64 {
		return m.fence(h).completed
	}

	t.FenceOnCompletion = func(h proc.Fence, value uint64, cb proc.FenceOnCompletionCallback, userdata uintptr) {
		f := m.fence(h)
		d := f.device
		switch {
		case !d.require(value <= f.signaled, "fence on completion: value %d greater than signaled value %d", value, f.signaled):
			d.later(func() { cb(proc.FenceCompletionStatusError, userdata) })
		case value <= f.completed:
			d.later(func() { cb(proc.FenceCompletionStatusSuccess, userdata) })
		default:
			f.waiters = append(f.waiters, fenceWaiter{value: value, cb: cb, userdata: userdata})
		}
	}
}
