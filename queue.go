// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package dusk

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/dusk/proc"
)

// Queue is the device's default queue. Every queue operation takes the
// device lock, so a Queue may be used alongside other device calls from
// any goroutine.
type Queue struct {
	h   handle[proc.Queue]
	dev *Device

	mu      sync.Mutex
	scratch []proc.CommandBuffer
}

// Release drops the queue reference.
func (q *Queue) Release() {
	if q.h.release() {
		q.dev.Release()
	}
}

// Raw returns the native handle. Ownership stays with q.
func (q *Queue) Raw() proc.Queue { return q.h.get() }

func (q *Queue) String() string { return q.h.String() }

// Submit executes command buffers in order. The buffers stay owned by the
// caller.
func (q *Queue) Submit(cmds ...*CommandBuffer) error {
	raw := q.h.get()
	n, err := count("command buffers", len(cmds))
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.scratch = q.scratch[:0]
	for _, c := range cmds {
		q.scratch = append(q.scratch, c.h.get())
	}
	t := q.dev.shared().n.table
	q.h.call(func() { t.QueueSubmit(raw, n, proc.First(q.scratch)) })
	Logger().Debug("dusk: submitted", "queue", q.h.String(), "count", n)
	return nil
}

// WriteBuffer writes data into buffer at offset, ordered with submissions
// on the queue.
func (q *Queue) WriteBuffer(buffer *Buffer, offset uint64, data []byte) {
	q.h.get()
	buffer.SetSubData(offset, data)
}

// FenceDescriptor describes a fence.
type FenceDescriptor struct {
	Label        string
	InitialValue uint64
}

// CreateFence creates a fence on the queue. desc may be nil.
func (q *Queue) CreateFence(desc *FenceDescriptor) *Fence {
	raw := q.h.get()
	var label proc.Label
	fd := proc.FenceDescriptor{}
	if desc != nil {
		label = proc.LabelOf(desc.Label)
		fd.Label = label.Ptr()
		fd.InitialValue = desc.InitialValue
	}
	s := q.dev.shared()
	var h proc.Fence
	q.h.call(func() { h = s.n.table.QueueCreateFence(raw, &fd) })

	f := &Fence{}
	f.h.set(h, &s.n.fence, s)
	f.dev = q.dev.Clone()
	return f
}

// Signal sets fence to value once previously submitted work completes.
func (q *Queue) Signal(fence *Fence, value uint64) {
	raw, fh := q.h.get(), fence.h.get()
	t := q.dev.shared().n.table
	q.h.call(func() { t.QueueSignal(raw, fh, value) })
}

// Fence tracks queue progress as a monotonically increasing value.
type Fence struct {
	h   handle[proc.Fence]
	dev *Device
}

// Clone returns a new reference to the same fence.
func (f *Fence) Clone() *Fence {
	c := &Fence{}
	f.h.clone(&c.h)
	c.dev = f.dev.Clone()
	return c
}

// Release drops the reference. Pending OnCompletion callbacks fire with
// an Unknown status when the last reference goes.
func (f *Fence) Release() {
	if f.h.release() {
		f.dev.Release()
	}
}

// Raw returns the native handle. Ownership stays with f.
func (f *Fence) Raw() proc.Fence { return f.h.get() }

// CompletedValue returns the latest value the fence reached.
func (f *Fence) CompletedValue() uint64 {
	raw := f.h.get()
	t := f.dev.shared().n.table
	var v uint64
	f.h.call(func() { v = t.FenceGetCompletedValue(raw) })
	return v
}

// OnCompletion calls fn from a later Device.Tick once the fence reaches
// value.
func (f *Fence) OnCompletion(value uint64, fn func(FenceCompletionStatus)) {
	raw := f.h.get()
	s := f.dev.shared()
	cookie := newCookie(&fenceRequest{dev: s, fn: fn})
	f.h.call(func() { s.n.table.FenceOnCompletion(raw, value, fenceTrampoline, cookie) })
}

// Wait ticks the device until the fence reaches value or ctx ends.
func (f *Fence) Wait(ctx context.Context, value uint64) (FenceCompletionStatus, error) {
	done := make(chan FenceCompletionStatus, 1)
	f.OnCompletion(value, func(status FenceCompletionStatus) { done <- status })
	for {
		f.dev.Tick()
		select {
		case st := <-done:
			return st, nil
		case <-ctx.Done():
			return FenceCompletionStatusUnknown, fmt.Errorf("fence wait: %w", ctx.Err())
		case <-time.After(mapPollInterval):
		}
	}
}
