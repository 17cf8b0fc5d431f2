// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpu implements the dusk proc table on top of the gogpu/wgpu HAL.
//
// Importing the package registers two backends:
//
//	import _ "github.com/gogpu/dusk/backend/wgpu"
//
//   - "wgpu" drives the Vulkan HAL backend. Its factory probes for at least
//     one adapter and fails with backend.ErrBackendNotAvailable otherwise.
//   - "wgpu-noop" drives the HAL noop backend. It accepts every call and
//     renders nothing, which makes it useful for exercising bindings on
//     machines without a GPU.
//
// # Coverage
//
// The bridge covers instances, devices, queues, fences, buffers, textures,
// samplers, shader modules, bind groups, compute pipelines, buffer and
// texture copies and compute passes. Render pipelines, render passes,
// render bundles, surfaces and swap chains are left out of the table; dusk
// reports calls to them as missing entry points.
//
// # Mapping
//
// HAL buffers have no asynchronous map. A buffer created mapped hands out a
// shadow slice that is uploaded with Queue.WriteBuffer on unmap. A map read
// waits for the work submitted before the request and copies the buffer
// with Queue.ReadBuffer from the next DeviceTick.
//
// # Completion
//
// Every QueueSubmit signals a per-device HAL fence with a monotonically
// increasing value. Fence signals and map reads record the submission they
// follow; DeviceTick polls the HAL fence without blocking and fires the
// callbacks whose submission has completed.
package wgpu
