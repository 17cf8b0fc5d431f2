// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package backend is the registry of native implementations that can back
// dusk.
//
// # Backend Registration
//
// Each implementation registers a Factory from its init() function:
//
//	import _ "github.com/gogpu/dusk/backend/soft"
//	import _ "github.com/gogpu/dusk/backend/wgpu"
//
// # Backend Selection
//
// Use Default() to get the best available table, or Get() to request one
// by name, then hand it to dusk before the first instance is created:
//
//	t, err := backend.Get(backend.WGPUNoop)
//	if err != nil {
//		log.Fatal(err)
//	}
//	dusk.InstallProcTable(t)
//
// Without an explicit install, dusk uses the soft backend.
//
// # Available Backends
//
//   - "soft": pure Go reference implementation (always available)
//   - "wgpu": gogpu/wgpu HAL on Vulkan
//   - "wgpu-noop": gogpu/wgpu HAL on the noop backend
package backend
