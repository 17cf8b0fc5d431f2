// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package proc

import (
	"log/slog"
	"reflect"
)

// Table is the set of native entry points. A Table is built once by an
// implementation, installed once per process and never mutated afterwards.
// An implementation may leave entries it does not support nil; callers treat
// a nil entry as a missing capability.
type Table struct {
	// Name identifies the implementation in logs.
	Name string

	// SetLogger, when non-nil, receives the logger configured by the caller.
	SetLogger func(*slog.Logger)

	CreateInstance                  func() Instance
	InstanceReference               func(Instance)
	InstanceRelease                 func(Instance)
	InstanceDiscoverDefaultAdapters func(Instance)
	InstanceGetAdapterCount         func(Instance) uint32
	InstanceGetAdapterProperties    func(Instance, uint32, *AdapterProperties)
	InstanceCreateDevice            func(Instance, uint32, *DeviceDescriptor) Device
	InstanceCreateSurface           func(Instance, *SurfaceDescriptor) Surface
	InstanceGetVulkanInstance       func(Instance) uintptr

	SurfaceReference func(Surface)
	SurfaceRelease   func(Surface)

	DeviceReference                  func(Device)
	DeviceRelease                    func(Device)
	DeviceGetDefaultQueue            func(Device) Queue
	DeviceCreateBuffer               func(Device, *BufferDescriptor) Buffer
	DeviceCreateBufferMapped         func(Device, *BufferDescriptor) CreateBufferMappedResult
	DeviceCreateTexture              func(Device, *TextureDescriptor) Texture
	DeviceCreateSampler              func(Device, *SamplerDescriptor) Sampler
	DeviceCreateShaderModule         func(Device, *ShaderModuleDescriptor) ShaderModule
	DeviceCreateBindGroupLayout      func(Device, *BindGroupLayoutDescriptor) BindGroupLayout
	DeviceCreateBindGroup            func(Device, *BindGroupDescriptor) BindGroup
	DeviceCreatePipelineLayout       func(Device, *PipelineLayoutDescriptor) PipelineLayout
	DeviceCreateRenderPipeline       func(Device, *RenderPipelineDescriptor) RenderPipeline
	DeviceCreateComputePipeline      func(Device, *ComputePipelineDescriptor) ComputePipeline
	DeviceCreateCommandEncoder       func(Device, *CommandEncoderDescriptor) CommandEncoder
	DeviceCreateRenderBundleEncoder  func(Device, *RenderBundleEncoderDescriptor) RenderBundleEncoder
	DeviceCreateSwapChain            func(Device, Surface, *SwapChainDescriptor) SwapChain
	DeviceCreateNativeSwapChainImpl  func(Device, *NativeSwapChainDescriptor) uint64
	DeviceGetNativeSwapChainFormat   func(Device, uint64) uint32
	DeviceTick                       func(Device)
	DeviceInjectError                func(Device, ErrorType, *byte)
	DeviceSetUncapturedErrorCallback func(Device, ErrorCallback, uintptr)

	QueueReference   func(Queue)
	QueueRelease     func(Queue)
	QueueSubmit      func(Queue, uint32, *CommandBuffer)
	QueueCreateFence func(Queue, *FenceDescriptor) Fence
	QueueSignal      func(Queue, Fence, uint64)

	FenceReference         func(Fence)
	FenceRelease           func(Fence)
	FenceGetCompletedValue func(Fence) uint64
	FenceOnCompletion      func(Fence, uint64, FenceOnCompletionCallback, uintptr)

	BufferReference    func(Buffer)
	BufferRelease      func(Buffer)
	BufferSetSubData   func(Buffer, uint64, uint64, *byte)
	BufferMapReadAsync func(Buffer, BufferMapReadCallback, uintptr)
	BufferUnmap        func(Buffer)
	BufferDestroy      func(Buffer)

	TextureReference  func(Texture)
	TextureRelease    func(Texture)
	TextureCreateView func(Texture, *TextureViewDescriptor) TextureView
	TextureDestroy    func(Texture)

	TextureViewReference func(TextureView)
	TextureViewRelease   func(TextureView)

	SamplerReference func(Sampler)
	SamplerRelease   func(Sampler)

	BindGroupLayoutReference func(BindGroupLayout)
	BindGroupLayoutRelease   func(BindGroupLayout)

	BindGroupReference func(BindGroup)
	BindGroupRelease   func(BindGroup)

	ShaderModuleReference func(ShaderModule)
	ShaderModuleRelease   func(ShaderModule)

	PipelineLayoutReference func(PipelineLayout)
	PipelineLayoutRelease   func(PipelineLayout)

	RenderPipelineReference          func(RenderPipeline)
	RenderPipelineRelease            func(RenderPipeline)
	RenderPipelineGetBindGroupLayout func(RenderPipeline, uint32) BindGroupLayout

	ComputePipelineReference          func(ComputePipeline)
	ComputePipelineRelease            func(ComputePipeline)
	ComputePipelineGetBindGroupLayout func(ComputePipeline, uint32) BindGroupLayout

	CommandEncoderRelease              func(CommandEncoder)
	CommandEncoderBeginRenderPass      func(CommandEncoder, *RenderPassDescriptor) RenderPassEncoder
	CommandEncoderBeginComputePass     func(CommandEncoder, *ComputePassDescriptor) ComputePassEncoder
	CommandEncoderCopyBufferToBuffer   func(CommandEncoder, Buffer, uint64, Buffer, uint64, uint64)
	CommandEncoderCopyBufferToTexture  func(CommandEncoder, *BufferCopyView, *TextureCopyView, *Extent3D)
	CommandEncoderCopyTextureToBuffer  func(CommandEncoder, *TextureCopyView, *BufferCopyView, *Extent3D)
	CommandEncoderCopyTextureToTexture func(CommandEncoder, *TextureCopyView, *TextureCopyView, *Extent3D)
	CommandEncoderInsertDebugMarker    func(CommandEncoder, *byte)
	CommandEncoderPushDebugGroup       func(CommandEncoder, *byte)
	CommandEncoderPopDebugGroup        func(CommandEncoder)
	CommandEncoderFinish               func(CommandEncoder, *CommandBufferDescriptor) CommandBuffer

	CommandBufferRelease func(CommandBuffer)

	RenderPassEncoderRelease             func(RenderPassEncoder)
	RenderPassEncoderSetPipeline         func(RenderPassEncoder, RenderPipeline)
	RenderPassEncoderSetBindGroup        func(RenderPassEncoder, uint32, BindGroup, uint32, *uint32)
	RenderPassEncoderSetVertexBuffer     func(RenderPassEncoder, uint32, Buffer, uint64)
	RenderPassEncoderSetIndexBuffer      func(RenderPassEncoder, Buffer, uint64)
	RenderPassEncoderDraw                func(RenderPassEncoder, uint32, uint32, uint32, uint32)
	RenderPassEncoderDrawIndexed         func(RenderPassEncoder, uint32, uint32, uint32, int32, uint32)
	RenderPassEncoderDrawIndirect        func(RenderPassEncoder, Buffer, uint64)
	RenderPassEncoderDrawIndexedIndirect func(RenderPassEncoder, Buffer, uint64)
	RenderPassEncoderSetViewport         func(RenderPassEncoder, float32, float32, float32, float32, float32, float32)
	RenderPassEncoderSetScissorRect      func(RenderPassEncoder, uint32, uint32, uint32, uint32)
	RenderPassEncoderSetBlendColor       func(RenderPassEncoder, *Color)
	RenderPassEncoderSetStencilReference func(RenderPassEncoder, uint32)
	RenderPassEncoderExecuteBundles      func(RenderPassEncoder, uint32, *RenderBundle)
	RenderPassEncoderInsertDebugMarker   func(RenderPassEncoder, *byte)
	RenderPassEncoderPushDebugGroup      func(RenderPassEncoder, *byte)
	RenderPassEncoderPopDebugGroup       func(RenderPassEncoder)
	RenderPassEncoderEndPass             func(RenderPassEncoder)

	ComputePassEncoderRelease           func(ComputePassEncoder)
	ComputePassEncoderSetPipeline       func(ComputePassEncoder, ComputePipeline)
	ComputePassEncoderSetBindGroup      func(ComputePassEncoder, uint32, BindGroup, uint32, *uint32)
	ComputePassEncoderDispatch          func(ComputePassEncoder, uint32, uint32, uint32)
	ComputePassEncoderDispatchIndirect  func(ComputePassEncoder, Buffer, uint64)
	ComputePassEncoderInsertDebugMarker func(ComputePassEncoder, *byte)
	ComputePassEncoderPushDebugGroup    func(ComputePassEncoder, *byte)
	ComputePassEncoderPopDebugGroup     func(ComputePassEncoder)
	ComputePassEncoderEndPass           func(ComputePassEncoder)

	RenderBundleEncoderRelease             func(RenderBundleEncoder)
	RenderBundleEncoderSetPipeline         func(RenderBundleEncoder, RenderPipeline)
	RenderBundleEncoderSetBindGroup        func(RenderBundleEncoder, uint32, BindGroup, uint32, *uint32)
	RenderBundleEncoderSetVertexBuffer     func(RenderBundleEncoder, uint32, Buffer, uint64)
	RenderBundleEncoderSetIndexBuffer      func(RenderBundleEncoder, Buffer, uint64)
	RenderBundleEncoderDraw                func(RenderBundleEncoder, uint32, uint32, uint32, uint32)
	RenderBundleEncoderDrawIndexed         func(RenderBundleEncoder, uint32, uint32, uint32, int32, uint32)
	RenderBundleEncoderDrawIndirect        func(RenderBundleEncoder, Buffer, uint64)
	RenderBundleEncoderDrawIndexedIndirect func(RenderBundleEncoder, Buffer, uint64)
	RenderBundleEncoderInsertDebugMarker   func(RenderBundleEncoder, *byte)
	RenderBundleEncoderPushDebugGroup      func(RenderBundleEncoder, *byte)
	RenderBundleEncoderPopDebugGroup       func(RenderBundleEncoder)
	RenderBundleEncoderFinish              func(RenderBundleEncoder, *RenderBundleDescriptor) RenderBundle

	RenderBundleReference func(RenderBundle)
	RenderBundleRelease   func(RenderBundle)

	SwapChainReference             func(SwapChain)
	SwapChainRelease               func(SwapChain)
	SwapChainConfigure             func(SwapChain, uint32, uint32, uint32, uint32)
	SwapChainGetCurrentTextureView func(SwapChain) TextureView
	SwapChainPresent               func(SwapChain)
}

// Entries returns the names of all entry point fields in declaration order.
func Entries() []string {
	rt := reflect.TypeFor[Table]()
	names := make([]string, 0, rt.NumField())
	for i := range rt.NumField() {
		f := rt.Field(i)
		if f.Type.Kind() != reflect.Func || f.Name == "SetLogger" {
			continue
		}
		names = append(names, f.Name)
	}
	return names
}

// Missing returns the names of entry points left nil.
func (t *Table) Missing() []string {
	rv := reflect.ValueOf(t).Elem()
	var missing []string
	for _, name := range Entries() {
		if rv.FieldByName(name).IsNil() {
			missing = append(missing, name)
		}
	}
	return missing
}
