// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package dusk

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gogpu/dusk/backend/soft"
	"github.com/gogpu/dusk/proc"
	"github.com/gogpu/dusk/proc/proctest"
	"github.com/gogpu/gputypes"
)

// resetProcTable clears the installed table so a test can install its own.
func resetProcTable() {
	installOnce = sync.Once{}
	current.Store(nil)
}

// errorLog collects errors delivered through the uncaptured error callback.
type errorLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *errorLog) record(typ ErrorType, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, typ.String()+": "+msg)
}

func (l *errorLog) take() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.entries
	l.entries = nil
	return out
}

// env is a device on a fresh software implementation whose table is
// wrapped by a proctest.Recorder.
type env struct {
	impl    *soft.Impl
	rec     *proctest.Recorder
	inst    *Instance
	adapter *Adapter
	dev     *Device
	errs    *errorLog
}

// patch adjusts the software table before it is installed.
type patch func(t *proc.Table)

func newEnv(tb testing.TB, patches ...patch) *env {
	tb.Helper()
	impl := soft.New()
	base := impl.Table()
	for _, p := range patches {
		p(base)
	}
	tbl, rec := proctest.Wrap(base)

	resetProcTable()
	if !InstallProcTable(tbl) {
		tb.Fatal("InstallProcTable() = false after reset")
	}
	tb.Cleanup(resetProcTable)

	e := &env{impl: impl, rec: rec, errs: &errorLog{}}
	e.inst = NewInstance()
	e.adapter = e.inst.DefaultAdapter()
	dev, err := e.adapter.CreateDevice(nil, WithUncapturedErrorCallback(e.errs.record))
	if err != nil {
		tb.Fatalf("CreateDevice() error = %v", err)
	}
	e.dev = dev
	tb.Cleanup(func() {
		e.dev.Release()
		e.adapter.Release()
		e.inst.Release()
	})
	return e
}

// wantNoErrors fails the test if the device reported errors.
func (e *env) wantNoErrors(tb testing.TB) {
	tb.Helper()
	if errs := e.errs.take(); len(errs) > 0 {
		tb.Errorf("unexpected device errors: %v", errs)
	}
}

// wantError fails unless exactly one reported error contains substr.
func (e *env) wantError(tb testing.TB, substr string) {
	tb.Helper()
	errs := e.errs.take()
	if len(errs) != 1 || !strings.Contains(errs[0], substr) {
		tb.Errorf("device errors = %v, want one containing %q", errs, substr)
	}
}

// submit finishes enc and submits the command buffer.
func (e *env) submit(tb testing.TB, enc *CommandEncoder) {
	tb.Helper()
	cb := enc.Finish("")
	defer cb.Release()
	q := e.dev.Queue()
	defer q.Release()
	if err := q.Submit(cb); err != nil {
		tb.Fatalf("Submit() error = %v", err)
	}
}

// read copies buf into a mappable buffer and returns its contents.
func (e *env) read(tb testing.TB, buf *Buffer) []byte {
	tb.Helper()
	out := e.dev.CreateBufferWithSize(buf.Size(), gputypes.BufferUsageCopyDst|gputypes.BufferUsageMapRead)
	defer out.Release()
	enc := e.dev.CreateCommandEncoder("read")
	enc.CopyBufferToBuffer(buf, 0, out, 0, buf.Size())
	e.submit(tb, enc)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	data, err := out.MapRead(ctx)
	if err != nil {
		tb.Fatalf("MapRead() error = %v", err)
	}
	return data
}

// wantPanic runs fn and checks that it panics with an error wrapping want.
func wantPanic(tb testing.TB, want error, fn func()) {
	tb.Helper()
	defer func() {
		tb.Helper()
		r := recover()
		if r == nil {
			tb.Fatalf("expected panic wrapping %v", want)
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, want) {
			tb.Fatalf("panic = %v, want error wrapping %v", r, want)
		}
	}()
	fn()
}
