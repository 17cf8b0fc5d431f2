// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package dusk

import (
	"testing"

	"github.com/gogpu/dusk/proc"
)

func TestCookies(t *testing.T) {
	type payload struct{ n int }
	c := newCookie(&payload{n: 7})

	if _, ok := lookupCookie[*mapReadRequest](c, false); ok {
		t.Error("lookup with the wrong type succeeded")
	}
	p, ok := lookupCookie[*payload](c, false)
	if !ok || p.n != 7 {
		t.Fatalf("lookupCookie() = %v, %v", p, ok)
	}
	if _, ok := lookupCookie[*payload](c, true); !ok {
		t.Fatal("take lookup failed")
	}
	if _, ok := lookupCookie[*payload](c, false); ok {
		t.Error("cookie still live after take")
	}

	d := newCookie(&payload{})
	dropCookie(d)
	if _, ok := lookupCookie[*payload](d, false); ok {
		t.Error("cookie still live after drop")
	}
}

func TestMapReadTrampolineIsOneShot(t *testing.T) {
	e := newEnv(t)
	calls := 0
	c := newCookie(&mapReadRequest{dev: e.dev.shared(), fn: func(BufferMapAsyncStatus, []byte) { calls++ }})

	e.dev.lock(func(*proc.Table, proc.Device) {
		mapReadTrampoline(proc.BufferMapAsyncStatusSuccess, nil, 0, c)
		mapReadTrampoline(proc.BufferMapAsyncStatusSuccess, nil, 0, c)
		if calls != 0 {
			t.Error("callback ran while the device lock was held")
		}
	})
	if calls != 1 {
		t.Errorf("callback ran %d times, want 1", calls)
	}
}

func TestStaleErrorCookieIsIgnored(t *testing.T) {
	errorTrampoline(proc.ErrorTypeValidation, nil, 0)
	fenceTrampoline(proc.FenceCompletionStatusSuccess, 0)
}
