// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package proc

// Opaque native object handles. The bit pattern is meaningful only to the
// implementation behind a Table; zero means absent.
type (
	Instance            uintptr
	Surface             uintptr
	Device              uintptr
	Queue               uintptr
	Fence               uintptr
	Buffer              uintptr
	Texture             uintptr
	TextureView         uintptr
	Sampler             uintptr
	BindGroupLayout     uintptr
	BindGroup           uintptr
	ShaderModule        uintptr
	PipelineLayout      uintptr
	RenderPipeline      uintptr
	ComputePipeline     uintptr
	CommandEncoder      uintptr
	CommandBuffer       uintptr
	RenderPassEncoder   uintptr
	ComputePassEncoder  uintptr
	RenderBundleEncoder uintptr
	RenderBundle        uintptr
	SwapChain           uintptr
)
