// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package dusk

import (
	"testing"

	"github.com/gogpu/dusk/backend/soft"
	"github.com/gogpu/dusk/proc"
)

func TestInstallProcTableOneShot(t *testing.T) {
	resetProcTable()
	t.Cleanup(resetProcTable)

	if ProcTableInstalled() {
		t.Fatal("ProcTableInstalled() = true after reset")
	}
	first := soft.Procs()
	first.Name = "first"
	if !InstallProcTable(first) {
		t.Fatal("first InstallProcTable() = false, want true")
	}
	second := soft.Procs()
	second.Name = "second"
	if InstallProcTable(second) {
		t.Error("second InstallProcTable() = true, want false")
	}
	if got := natives().table.Name; got != "first" {
		t.Errorf("installed table = %q, want %q", got, "first")
	}
}

func TestNewInstanceInstallsDefault(t *testing.T) {
	resetProcTable()
	t.Cleanup(resetProcTable)

	inst := NewInstance()
	defer inst.Release()

	if !ProcTableInstalled() {
		t.Fatal("NewInstance did not install a table")
	}
	if InstallProcTable(soft.Procs()) {
		t.Error("InstallProcTable() after NewInstance = true, want false")
	}
}

func TestInstallProcTableNilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("InstallProcTable(nil) did not panic")
		}
	}()
	InstallProcTable(nil)
}

func TestMissingEntryPanicsWithName(t *testing.T) {
	e := newEnv(t, func(tbl *proc.Table) {
		tbl.DeviceTick = nil
		tbl.InstanceGetVulkanInstance = nil
	})

	if got := e.inst.NativeVulkanInstance(); got != 0 {
		t.Errorf("NativeVulkanInstance() = %#x, want 0 without the entry", got)
	}

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok {
			t.Fatalf("Tick() panic = %v, want error", r)
		}
		if got := err.Error(); got != "DeviceTick: "+ErrProcMissing.Error() {
			t.Errorf("panic = %q, want it to name DeviceTick", got)
		}
	}()
	e.dev.Tick()
}

func TestNativeSetRecordsMissing(t *testing.T) {
	tbl := soft.Procs()
	tbl.SwapChainPresent = nil
	n := newNativeSet(tbl)
	if n.has("SwapChainPresent") {
		t.Error("has(SwapChainPresent) = true for a nil entry")
	}
	if !n.has("DeviceTick") {
		t.Error("has(DeviceTick) = false for a set entry")
	}
	if tbl.SwapChainPresent != nil {
		t.Error("newNativeSet modified the caller's table")
	}
	if n.table.SwapChainPresent == nil {
		t.Error("missing entry was not replaced by a stub")
	}
}

func TestProcAvailable(t *testing.T) {
	tbl := soft.Procs()
	tbl.CommandEncoderBeginRenderPass = nil
	resetProcTable()
	t.Cleanup(resetProcTable)
	InstallProcTable(tbl)
	if ProcAvailable("CommandEncoderBeginRenderPass") {
		t.Error("ProcAvailable(CommandEncoderBeginRenderPass) = true for a nil entry")
	}
	if !ProcAvailable("QueueSubmit") {
		t.Error("ProcAvailable(QueueSubmit) = false")
	}
}
