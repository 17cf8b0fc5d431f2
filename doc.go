// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package dusk is a safe Go binding over a WebGPU-style native graphics
// library reached through a function table.
//
// # Overview
//
// The native library is described by a [proc.Table]: one Go function per
// native entry point. A table is installed once per process, either
// explicitly with [InstallProcTable] or implicitly by [NewInstance], which
// falls back to the preferred registered backend (see package backend).
//
// dusk wraps every native object in an owning handle. Clone takes a new
// native reference, Release drops it exactly once, and any use after
// Release panics with [ErrReleased]. Children keep their parent alive: a
// Buffer holds a reference to its Device, a Device to its Adapter, an
// Adapter to its Instance.
//
// # Quick Start
//
//	inst := dusk.NewInstance()
//	defer inst.Release()
//
//	adapter := inst.DefaultAdapter()
//	defer adapter.Release()
//
//	dev, err := adapter.CreateDevice(nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dev.Release()
//
//	buf := dev.CreateBufferWithData(data, gputypes.BufferUsageCopySrc)
//	defer buf.Release()
//
// # Concurrency
//
// Native devices are not thread-safe. Every call that touches a device
// takes that device's lock for the duration of the native call only;
// descriptors are marshaled before the lock is taken. Distinct devices run
// in parallel. Command encoders and pass encoders belong to a single
// goroutine; pass commands do not lock the device.
//
// Native callbacks (errors, buffer mapping, fences) are delivered after the
// device lock is released, from the goroutine that made the native call,
// typically [Device.Tick].
//
// # Errors
//
// Broken preconditions panic with an error wrapping one of the sentinel
// errors ([ErrReleased], [ErrEncoderLocked], ...). Descriptors that cannot
// be marshaled are reported as returned errors before any native call.
// Errors detected by the native library arrive asynchronously through
// [Device.SetUncapturedErrorCallback] and are logged at warning level.
//
// # Logging
//
// dusk is silent by default. Use [SetLogger] to enable structured logging
// through log/slog.
package dusk
