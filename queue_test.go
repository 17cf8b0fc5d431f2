// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package dusk

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gogpu/dusk/proc"
	"github.com/gogpu/gputypes"
)

func TestSubmitReusesScratch(t *testing.T) {
	e := newEnv(t)
	q := e.dev.Queue()
	defer q.Release()

	finish := func(n int) []*CommandBuffer {
		out := make([]*CommandBuffer, n)
		for i := range out {
			out[i] = e.dev.CreateCommandEncoder("").Finish("")
		}
		return out
	}
	release := func(cbs []*CommandBuffer) {
		for _, cb := range cbs {
			cb.Release()
		}
	}

	three := finish(3)
	defer release(three)
	one := finish(1)
	defer release(one)
	e.rec.Reset()

	if err := q.Submit(three...); err != nil {
		t.Fatalf("Submit(3) error = %v", err)
	}
	if len(q.scratch) != 3 {
		t.Errorf("len(scratch) after 3 = %d, want 3", len(q.scratch))
	}
	backing := &q.scratch[0]

	if err := q.Submit(one...); err != nil {
		t.Fatalf("Submit(1) error = %v", err)
	}
	if len(q.scratch) != 1 {
		t.Errorf("len(scratch) after 1 = %d, want 1", len(q.scratch))
	}
	if &q.scratch[0] != backing {
		t.Error("scratch was reallocated for a smaller submit")
	}
	if got := e.rec.Calls("QueueSubmit"); got != 2 {
		t.Errorf("QueueSubmit calls = %d, want 2", got)
	}
	e.wantNoErrors(t)
}

func TestSubmitTwiceIsReported(t *testing.T) {
	e := newEnv(t)
	q := e.dev.Queue()
	defer q.Release()
	cb := e.dev.CreateCommandEncoder("").Finish("once")
	defer cb.Release()

	if err := q.Submit(cb); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if err := q.Submit(cb); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	e.wantError(t, "already submitted")
}

func TestSubmitReleasedBufferPanics(t *testing.T) {
	e := newEnv(t)
	q := e.dev.Queue()
	defer q.Release()
	cb := e.dev.CreateCommandEncoder("").Finish("")
	cb.Release()
	e.rec.Reset()

	wantPanic(t, ErrReleased, func() { _ = q.Submit(cb) })
	if got := e.rec.Calls("QueueSubmit"); got != 0 {
		t.Errorf("QueueSubmit calls = %d, want 0", got)
	}
}

func TestWriteBuffer(t *testing.T) {
	e := newEnv(t)
	q := e.dev.Queue()
	defer q.Release()
	b := e.dev.CreateBufferWithSize(4, gputypes.BufferUsageCopyDst|gputypes.BufferUsageCopySrc)
	defer b.Release()

	q.WriteBuffer(b, 1, []byte{7, 7})
	if got := e.read(t, b); !bytes.Equal(got, []byte{0, 7, 7, 0}) {
		t.Errorf("read back %v", got)
	}
}

func TestFenceSignalAndWait(t *testing.T) {
	e := newEnv(t)
	q := e.dev.Queue()
	defer q.Release()
	f := q.CreateFence(&FenceDescriptor{Label: "frames", InitialValue: 1})
	defer f.Release()

	if got := f.CompletedValue(); got != 1 {
		t.Fatalf("CompletedValue() = %d, want 1", got)
	}
	q.Signal(f, 5)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	status, err := f.Wait(ctx, 5)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if status != FenceCompletionStatusSuccess {
		t.Errorf("status = %v, want Success", status)
	}
	if got := f.CompletedValue(); got != 5 {
		t.Errorf("CompletedValue() = %d, want 5", got)
	}
	e.wantNoErrors(t)
}

func TestFenceWaitBeyondSignal(t *testing.T) {
	e := newEnv(t)
	q := e.dev.Queue()
	defer q.Release()
	f := q.CreateFence(nil)
	defer f.Release()

	status, err := f.Wait(context.Background(), 3)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if status != FenceCompletionStatusError {
		t.Errorf("status = %v, want Error", status)
	}
	e.wantError(t, "greater than signaled")
}

func TestFenceWaitHonorsContext(t *testing.T) {
	e := newEnv(t, func(tbl *proc.Table) {
		tbl.FenceOnCompletion = func(proc.Fence, uint64, proc.FenceOnCompletionCallback, uintptr) {}
	})
	q := e.dev.Queue()
	defer q.Release()
	f := q.CreateFence(nil)
	defer f.Release()
	q.Signal(f, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	status, err := f.Wait(ctx, 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Wait() error = %v, want context.Canceled", err)
	}
	if status != FenceCompletionStatusUnknown {
		t.Errorf("status = %v, want Unknown", status)
	}
}

func TestFenceReleaseCancelsWaiters(t *testing.T) {
	e := newEnv(t)
	q := e.dev.Queue()
	defer q.Release()
	f := q.CreateFence(nil)
	q.Signal(f, 1)

	var got []FenceCompletionStatus
	f.OnCompletion(1, func(s FenceCompletionStatus) { got = append(got, s) })
	f.Release()
	e.dev.Tick()

	if len(got) != 1 {
		t.Fatalf("callbacks = %v, want one", got)
	}
}
