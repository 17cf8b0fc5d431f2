// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package dusk

import (
	"strings"
	"sync"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestCloneReferencesAndReleaseOnce(t *testing.T) {
	e := newEnv(t)
	b := e.dev.CreateBufferWithSize(64, gputypes.BufferUsageCopyDst)
	raw := uintptr(b.Raw())
	e.rec.Reset()

	c := b.Clone()
	if got := e.rec.Calls("BufferReference"); got != 1 {
		t.Errorf("BufferReference calls = %d, want 1", got)
	}
	if got := e.impl.Refs(raw); got != 2 {
		t.Errorf("native refs = %d, want 2", got)
	}

	b.Release()
	b.Release()
	if got := e.rec.Calls("BufferRelease"); got != 1 {
		t.Errorf("BufferRelease calls after double release = %d, want 1", got)
	}
	c.Release()
	if got := e.rec.Calls("BufferRelease"); got != 2 {
		t.Errorf("BufferRelease calls = %d, want 2", got)
	}
	if got := e.impl.Refs(raw); got != 0 {
		t.Errorf("native refs after release = %d, want 0", got)
	}
}

func TestConcurrentReleaseReleasesOnce(t *testing.T) {
	e := newEnv(t)
	b := e.dev.CreateBufferWithSize(16, gputypes.BufferUsageCopyDst)
	e.rec.Reset()

	var wg sync.WaitGroup
	for range 16 {
		wg.Go(b.Release)
	}
	wg.Wait()

	if got := e.rec.Calls("BufferRelease"); got != 1 {
		t.Errorf("BufferRelease calls = %d, want 1", got)
	}
}

func TestUseAfterReleasePanics(t *testing.T) {
	e := newEnv(t)
	b := e.dev.CreateBufferWithSize(16, gputypes.BufferUsageCopyDst)
	b.Release()

	wantPanic(t, ErrReleased, func() { b.SetSubData(0, []byte{1}) })
	wantPanic(t, ErrReleased, func() { b.Clone() })

	d := e.dev.Clone()
	d.Release()
	wantPanic(t, ErrReleased, func() { d.Tick() })
}

func TestChildKeepsDeviceAlive(t *testing.T) {
	e := newEnv(t)
	dev, err := e.adapter.CreateDevice(nil)
	if err != nil {
		t.Fatalf("CreateDevice() error = %v", err)
	}
	b := dev.CreateBufferWithSize(16, gputypes.BufferUsageCopyDst)
	e.rec.Reset()

	dev.Release()
	if got := e.rec.Calls("DeviceRelease"); got != 0 {
		t.Errorf("DeviceRelease calls while a buffer is alive = %d, want 0", got)
	}
	b.Release()
	if got := e.rec.Calls("DeviceRelease"); got != 1 {
		t.Errorf("DeviceRelease calls = %d, want 1", got)
	}
	if got := e.rec.Calls("QueueRelease"); got != 1 {
		t.Errorf("QueueRelease calls = %d, want 1", got)
	}
}

func TestHandleString(t *testing.T) {
	e := newEnv(t)
	b := e.dev.CreateBufferWithSize(16, gputypes.BufferUsageCopyDst)
	defer b.Release()
	if s := b.String(); !strings.HasPrefix(s, "Buffer(0x") {
		t.Errorf("String() = %q, want Buffer(0x...)", s)
	}
}

func TestNoCloneTypesPanic(t *testing.T) {
	e := newEnv(t)
	enc := e.dev.CreateCommandEncoder("")
	defer enc.Release()

	defer func() {
		if recover() == nil {
			t.Error("cloning a command encoder handle did not panic")
		}
	}()
	var dst CommandEncoder
	enc.h.clone(&dst.h)
}
