// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package dusk

import (
	"bytes"
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gogpu/dusk/proc"
	"github.com/gogpu/gputypes"
)

// mapPollInterval is how often MapRead ticks the device while waiting.
const mapPollInterval = time.Millisecond

// BufferDescriptor describes a buffer to create.
type BufferDescriptor struct {
	Label string
	Usage gputypes.BufferUsage
	Size  uint64
}

func (desc *BufferDescriptor) native(label *proc.Label) proc.BufferDescriptor {
	return proc.BufferDescriptor{Label: label.Ptr(), Usage: uint32(desc.Usage), Size: desc.Size}
}

// Buffer is a GPU buffer.
type Buffer struct {
	h     handle[proc.Buffer]
	dev   *Device
	size  uint64
	usage gputypes.BufferUsage
}

func (d *Device) wrapBuffer(raw proc.Buffer, desc *BufferDescriptor) *Buffer {
	s := d.shared()
	b := &Buffer{size: desc.Size, usage: desc.Usage}
	b.h.set(raw, &s.n.buffer, s)
	b.dev = d.Clone()
	return b
}

// CreateBuffer creates a buffer.
func (d *Device) CreateBuffer(desc *BufferDescriptor) *Buffer {
	label := proc.LabelOf(desc.Label)
	raw := desc.native(&label)
	var h proc.Buffer
	d.lock(func(t *proc.Table, dev proc.Device) { h = t.DeviceCreateBuffer(dev, &raw) })
	return d.wrapBuffer(h, desc)
}

// CreateBufferWithSize creates an unlabeled buffer.
func (d *Device) CreateBufferWithSize(size uint64, usage gputypes.BufferUsage) *Buffer {
	return d.CreateBuffer(&BufferDescriptor{Usage: usage, Size: size})
}

// CreateBufferWithData creates a buffer holding a copy of data.
func (d *Device) CreateBufferWithData(data []byte, usage gputypes.BufferUsage) *Buffer {
	m := d.CreateBufferMappedWithSize(uint64(len(data)), usage)
	copy(m.Data, data)
	return m.Finish()
}

// Clone returns a new reference to the same buffer.
func (b *Buffer) Clone() *Buffer {
	c := &Buffer{size: b.size, usage: b.usage}
	b.h.clone(&c.h)
	c.dev = b.dev.Clone()
	return c
}

// Release drops the reference. Further calls are no-ops.
func (b *Buffer) Release() {
	if b.h.release() {
		b.dev.Release()
	}
}

// Raw returns the native handle. Ownership stays with b.
func (b *Buffer) Raw() proc.Buffer { return b.h.get() }

func (b *Buffer) Size() uint64                { return b.size }
func (b *Buffer) Usage() gputypes.BufferUsage { return b.usage }
func (b *Buffer) String() string              { return b.h.String() }

// SetSubData writes data into the buffer at offset. The buffer needs
// CopyDst usage.
func (b *Buffer) SetSubData(offset uint64, data []byte) {
	raw := b.h.get()
	t := b.dev.shared().n.table
	b.h.call(func() { t.BufferSetSubData(raw, offset, uint64(len(data)), proc.First(data)) })
}

// MapReadAsync requests a read mapping. fn runs from a later Tick with a
// view of the mapped memory that stays valid until Unmap.
func (b *Buffer) MapReadAsync(fn func(status BufferMapAsyncStatus, data []byte)) {
	raw := b.h.get()
	s := b.dev.shared()
	cookie := newCookie(&mapReadRequest{dev: s, fn: fn})
	b.h.call(func() { s.n.table.BufferMapReadAsync(raw, mapReadTrampoline, cookie) })
}

// MapRead maps the buffer for reading, ticking the device until the mapping
// completes, and returns a copy of its contents. The buffer is unmapped
// before MapRead returns, including when ctx ends first.
func (b *Buffer) MapRead(ctx context.Context) ([]byte, error) {
	type result struct {
		status BufferMapAsyncStatus
		data   []byte
	}
	done := make(chan result, 1)
	b.MapReadAsync(func(status BufferMapAsyncStatus, data []byte) {
		done <- result{status, bytes.Clone(data)}
	})
	defer b.Unmap()

	for {
		b.dev.Tick()
		select {
		case r := <-done:
			if r.status != BufferMapAsyncStatusSuccess {
				return nil, fmt.Errorf("map read: %s: %w", r.status, ErrMapFailed)
			}
			return r.data, nil
		case <-ctx.Done():
			return nil, fmt.Errorf("map read: %w", ctx.Err())
		case <-time.After(mapPollInterval):
		}
	}
}

// Unmap ends a mapping. Views handed out by the mapping become invalid.
func (b *Buffer) Unmap() {
	raw := b.h.get()
	t := b.dev.shared().n.table
	b.h.call(func() { t.BufferUnmap(raw) })
}

// Destroy frees the buffer's memory now. The handle stays valid until
// Release but the buffer can no longer be used.
func (b *Buffer) Destroy() {
	raw := b.h.get()
	t := b.dev.shared().n.table
	b.h.call(func() { t.BufferDestroy(raw) })
}

// BufferMapped is a buffer created mapped for writing. Data aliases the
// native mapping until Finish or Release unmaps it, which happens exactly
// once.
type BufferMapped struct {
	Data []byte

	buffer   *Buffer
	unmapped atomic.Bool
}

// CreateBufferMapped creates a buffer whose contents can be written through
// Data before first use.
func (d *Device) CreateBufferMapped(desc *BufferDescriptor) *BufferMapped {
	label := proc.LabelOf(desc.Label)
	raw := desc.native(&label)
	var res proc.CreateBufferMappedResult
	d.lock(func(t *proc.Table, dev proc.Device) { res = t.DeviceCreateBufferMapped(dev, &raw) })
	return &BufferMapped{
		Data:   proc.Bytes(res.Data, res.DataLength),
		buffer: d.wrapBuffer(res.Buffer, desc),
	}
}

// CreateBufferMappedWithSize creates an unlabeled mapped buffer.
func (d *Device) CreateBufferMappedWithSize(size uint64, usage gputypes.BufferUsage) *BufferMapped {
	return d.CreateBufferMapped(&BufferDescriptor{Usage: usage, Size: size})
}

func (m *BufferMapped) unmap() bool {
	if !m.unmapped.CompareAndSwap(false, true) {
		return false
	}
	m.Data = nil
	m.buffer.Unmap()
	return true
}

// Finish unmaps the buffer and hands it to the caller.
func (m *BufferMapped) Finish() *Buffer {
	if !m.unmap() {
		precondition(ErrReleased, "BufferMapped.Finish")
	}
	return m.buffer
}

// Release unmaps and releases the buffer unless Finish already ran.
func (m *BufferMapped) Release() {
	if m.unmap() {
		Logger().Warn("dusk: mapped buffer released without Finish", "buffer", m.buffer.String())
		m.buffer.Release()
	}
}
