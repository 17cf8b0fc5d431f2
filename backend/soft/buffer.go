// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package soft

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/dusk/proc"
)

// maxBufferSize bounds software allocations; larger requests report
// out-of-memory and produce an error buffer.
const maxBufferSize = 1 << 30

type buffer struct {
	device *device
	data   []byte
	usage  uint32

	invalid    bool
	mapped     bool
	mapPending bool
	destroyed  bool
}

func hasBufferUsage(usage uint32, bit gputypes.BufferUsage) bool {
	return usage&uint32(bit) != 0
}

func (m *Impl) buffer(h proc.Buffer) *buffer {
	return lookup[*buffer](m.objs, uintptr(h))
}

// usable reports a validation error unless b can be used by a command.
func (b *buffer) usable(what string) bool {
	d := b.device
	return d.require(!b.invalid, "%s: buffer is invalid", what) &&
		d.require(!b.destroyed, "%s: buffer is destroyed", what) &&
		d.require(!b.mapped && !b.mapPending, "%s: buffer is mapped", what)
}

func (d *device) newBuffer(desc *proc.BufferDescriptor) *buffer {
	b := &buffer{device: d, usage: desc.Usage}
	if !d.validate(desc.Usage != 0, "create buffer %q: usage must not be empty", proc.GoString(desc.Label)) {
		b.invalid = true
		return b
	}
	if desc.Size > maxBufferSize {
		d.report(proc.ErrorTypeOutOfMemory, "create buffer: size exceeds software limit")
		b.invalid = true
		return b
	}
	b.data = make([]byte, desc.Size)
	return b
}

func (m *Impl) bufferProcs(t *proc.Table) {
	t.DeviceCreateBuffer = func(h proc.Device, desc *proc.BufferDescriptor) proc.Buffer {
		d := m.device(h)
		defer d.enter()()
		return proc.Buffer(m.objs.Add(d.newBuffer(desc)))
	}

	t.DeviceCreateBufferMapped = func(h proc.Device, desc *proc.BufferDescriptor) proc.CreateBufferMappedResult {
		d := m.device(h)
		defer d.enter()()
		b := d.newBuffer(desc)
		if b.invalid && desc.Size <= maxBufferSize {
			// Error buffers still hand out writable scratch memory.
			b.data = make([]byte, desc.Size)
		}
		b.mapped = true
		return proc.CreateBufferMappedResult{
			Buffer:     proc.Buffer(m.objs.Add(b)),
			DataLength: uint64(len(b.data)),
			Data:       proc.First(b.data),
		}
	}

	t.BufferReference, t.BufferRelease = refcounted[proc.Buffer, *buffer](m, nil)

	t.BufferSetSubData = func(h proc.Buffer, start, count uint64, data *byte) {
		b := m.buffer(h)
		d := b.device
		defer d.enter()()
		if !b.usable("set sub data") ||
			!d.validate(hasBufferUsage(b.usage, gputypes.BufferUsageCopyDst), "set sub data: buffer lacks CopyDst usage") ||
			!d.require(start <= uint64(len(b.data)) && count <= uint64(len(b.data))-start, "set sub data: range [%d, +%d) out of bounds", start, count) {
			return
		}
		copy(b.data[start:start+count], proc.Bytes(data, count))
	}

	t.BufferMapReadAsync = func(h proc.Buffer, cb proc.BufferMapReadCallback, userdata uintptr) {
		b := m.buffer(h)
		d := b.device
		defer d.enter()()
		if !b.usable("map read") ||
			!d.validate(hasBufferUsage(b.usage, gputypes.BufferUsageMapRead), "map read: buffer lacks MapRead usage") {
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
			b.mapped = true
			cb(proc.BufferMapAsyncStatusSuccess, proc.First(b.data), uint64(len(b.data)), userdata)
		})
	}

	t.BufferUnmap = func(h proc.Buffer) {
		b := m.buffer(h)
		defer b.device.enter()()
		b.mapped = false
		b.mapPending = false
	}

	t.BufferDestroy = func(h proc.Buffer) {
		b := m.buffer(h)
		defer b.device.enter()()
		b.destroyed = true
		b.mapped = false
		b.mapPending = false
	}
}
