// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"slices"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/dusk/proc"
)

type buffer struct {
	device *device
	hal    hal.Buffer // nil for error buffers
	size   uint64
	usage  gputypes.BufferUsage

	// shadow holds the mapped contents. A write mapping is uploaded on
	// unmap.
	shadow     []byte
	mapWrite   bool
	mapPending bool
	destroyed  bool
}

func (m *Impl) buffer(h proc.Buffer) *buffer {
	return lookup[*buffer](m, uintptr(h))
}

// usable reports a validation error unless b can be used by a command.
func (b *buffer) usable(what string) bool {
	d := b.device
	return d.require(b.hal != nil, "%s: buffer is invalid", what) &&
		d.require(!b.destroyed, "%s: buffer is destroyed", what) &&
		d.require(b.shadow == nil && !b.mapPending, "%s: buffer is mapped", what)
}

func (d *device) newBuffer(desc *proc.BufferDescriptor, extra gputypes.BufferUsage) *buffer {
	b := &buffer{device: d, size: desc.Size, usage: gputypes.BufferUsage(desc.Usage)}
	label := proc.GoString(desc.Label)
	if !d.alive("create buffer") ||
		!d.require(desc.Usage != 0, "create buffer %q: usage must not be empty", label) {
		return b
	}
	raw, err := d.hal.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  desc.Size,
		Usage: b.usage | extra,
	})
	if err != nil {
		d.report(proc.ErrorTypeOutOfMemory, "create buffer "+label+": "+err.Error())
		return b
	}
	b.hal = raw
	return b
}

// unmap uploads a write mapping and drops the shadow.
func (b *buffer) unmap() {
	if b.mapWrite && b.hal != nil && !b.destroyed {
		b.device.queue.WriteBuffer(b.hal, 0, b.shadow)
	}
	b.shadow = nil
	b.mapWrite = false
	b.mapPending = false
}

func (b *buffer) destroy() {
	if b.hal != nil && !b.destroyed {
		b.device.hal.DestroyBuffer(b.hal)
	}
	b.destroyed = true
	b.shadow = nil
	b.mapWrite = false
	b.mapPending = false
}

func (m *Impl) bufferProcs(t *proc.Table) {
	t.DeviceCreateBuffer = func(h proc.Device, desc *proc.BufferDescriptor) proc.Buffer {
		return proc.Buffer(m.objs.Add(m.device(h).newBuffer(desc, 0)))
	}

	t.DeviceCreateBufferMapped = func(h proc.Device, desc *proc.BufferDescriptor) proc.CreateBufferMappedResult {
		// The shadow is uploaded with a queue write, which needs CopyDst.
		b := m.device(h).newBuffer(desc, gputypes.BufferUsageCopyDst)
		b.shadow = make([]byte, desc.Size)
		b.mapWrite = true
		return proc.CreateBufferMappedResult{
			Buffer:     proc.Buffer(m.objs.Add(b)),
			DataLength: uint64(len(b.shadow)),
			Data:       proc.First(b.shadow),
		}
	}

	t.BufferReference, t.BufferRelease = refcounted[proc.Buffer](m, (*buffer).destroy)

	t.BufferSetSubData = func(h proc.Buffer, start, count uint64, data *byte) {
		b := m.buffer(h)
		d := b.device
		if !b.usable("set sub data") ||
			!d.require(b.usage&gputypes.BufferUsageCopyDst != 0, "set sub data: buffer lacks CopyDst usage") ||
			!d.require(start <= b.size && count <= b.size-start, "set sub data: range [%d, +%d) out of bounds", start, count) {
			return
		}
		d.queue.WriteBuffer(b.hal, start, slices.Clone(proc.Bytes(data, count)))
	}

	t.BufferMapReadAsync = func(h proc.Buffer, cb proc.BufferMapReadCallback, userdata uintptr) {
		b := m.buffer(h)
		d := b.device
		if !b.usable("map read") ||
			!d.require(b.usage&gputypes.BufferUsageMapRead != 0, "map read: buffer lacks MapRead usage") {
			d.later(func() { cb(proc.BufferMapAsyncStatusError, nil, 0, userdata) })
			return
		}
		b.mapPending = true
		d.later(func() {
			if !b.mapPending {
				cb(proc.BufferMapAsyncStatusUnknown, nil, 0, userdata)
				return
			}
			b.mapPending = false
			data := make([]byte, b.size)
			if !d.check(d.queue.ReadBuffer(b.hal, 0, data), "map read") {
				cb(proc.BufferMapAsyncStatusError, nil, 0, userdata)
				return
			}
			b.shadow = data
			cb(proc.BufferMapAsyncStatusSuccess, proc.First(data), uint64(len(data)), userdata)
		})
	}

	t.BufferUnmap = func(h proc.Buffer) {
		m.buffer(h).unmap()
	}

	t.BufferDestroy = func(h proc.Buffer) {
		m.buffer(h).destroy()
	}
}
