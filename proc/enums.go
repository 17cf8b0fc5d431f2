// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package proc

// Native enumerations that have no gputypes counterpart. Values shared with
// gputypes (formats, usages, load/store ops, ...) cross the table as plain
// uint32 in gputypes numbering.

// ErrorType categorizes errors reported through the device error callback.
type ErrorType uint32

const (
	ErrorTypeNoError ErrorType = iota
	ErrorTypeValidation
	ErrorTypeOutOfMemory
	ErrorTypeUnknown
	ErrorTypeDeviceLost
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeNoError:
		return "NoError"
	case ErrorTypeValidation:
		return "Validation"
	case ErrorTypeOutOfMemory:
		return "OutOfMemory"
	case ErrorTypeUnknown:
		return "Unknown"
	case ErrorTypeDeviceLost:
		return "DeviceLost"
	default:
		return "ErrorType(?)"
	}
}

// BindingType is the flattened native form of a bind group layout entry.
type BindingType uint32

const (
	BindingTypeUniformBuffer BindingType = iota
	BindingTypeStorageBuffer
	BindingTypeReadonlyStorageBuffer
	BindingTypeSampler
	BindingTypeComparisonSampler
	BindingTypeSampledTexture
	BindingTypeStorageTexture
	BindingTypeReadonlyStorageTexture
	BindingTypeWriteonlyStorageTexture
)

func (t BindingType) String() string {
	switch t {
	case BindingTypeUniformBuffer:
		return "UniformBuffer"
	case BindingTypeStorageBuffer:
		return "StorageBuffer"
	case BindingTypeReadonlyStorageBuffer:
		return "ReadonlyStorageBuffer"
	case BindingTypeSampler:
		return "Sampler"
	case BindingTypeComparisonSampler:
		return "ComparisonSampler"
	case BindingTypeSampledTexture:
		return "SampledTexture"
	case BindingTypeStorageTexture:
		return "StorageTexture"
	case BindingTypeReadonlyStorageTexture:
		return "ReadonlyStorageTexture"
	case BindingTypeWriteonlyStorageTexture:
		return "WriteonlyStorageTexture"
	default:
		return "BindingType(?)"
	}
}

// IsBuffer reports whether the binding refers to a buffer range.
func (t BindingType) IsBuffer() bool {
	return t <= BindingTypeReadonlyStorageBuffer
}

// IsSampler reports whether the binding refers to a sampler.
func (t BindingType) IsSampler() bool {
	return t == BindingTypeSampler || t == BindingTypeComparisonSampler
}

// IsTexture reports whether the binding refers to a texture view.
func (t BindingType) IsTexture() bool {
	return t >= BindingTypeSampledTexture && t <= BindingTypeWriteonlyStorageTexture
}

// TextureComponentType is the sample type a texture binding expects.
type TextureComponentType uint32

const (
	TextureComponentTypeFloat TextureComponentType = iota
	TextureComponentTypeSint
	TextureComponentTypeUint
)

// BackendType identifies the graphics API a device is bound to.
type BackendType uint32

const (
	BackendTypeNull BackendType = iota
	BackendTypeD3D12
	BackendTypeMetal
	BackendTypeVulkan
	BackendTypeOpenGL
)

func (b BackendType) String() string {
	switch b {
	case BackendTypeNull:
		return "Null"
	case BackendTypeD3D12:
		return "D3D12"
	case BackendTypeMetal:
		return "Metal"
	case BackendTypeVulkan:
		return "Vulkan"
	case BackendTypeOpenGL:
		return "OpenGL"
	default:
		return "BackendType(?)"
	}
}

// AdapterType classifies the physical device behind an adapter.
type AdapterType uint32

const (
	AdapterTypeDiscreteGPU AdapterType = iota
	AdapterTypeIntegratedGPU
	AdapterTypeCPU
	AdapterTypeUnknown
)

func (a AdapterType) String() string {
	switch a {
	case AdapterTypeDiscreteGPU:
		return "DiscreteGPU"
	case AdapterTypeIntegratedGPU:
		return "IntegratedGPU"
	case AdapterTypeCPU:
		return "CPU"
	default:
		return "Unknown"
	}
}

// BufferMapAsyncStatus is delivered to map-read callbacks.
type BufferMapAsyncStatus uint32

const (
	BufferMapAsyncStatusSuccess BufferMapAsyncStatus = iota
	BufferMapAsyncStatusError
	BufferMapAsyncStatusUnknown
	BufferMapAsyncStatusDeviceLost
)

// FenceCompletionStatus is delivered to fence completion callbacks.
type FenceCompletionStatus uint32

const (
	FenceCompletionStatusSuccess FenceCompletionStatus = iota
	FenceCompletionStatusError
	FenceCompletionStatusUnknown
	FenceCompletionStatusDeviceLost
)

// SurfaceKind tags the window-system parameters of a SurfaceDescriptor.
type SurfaceKind uint32

const (
	SurfaceKindWindowsHWND SurfaceKind = iota
	SurfaceKindXlib
	SurfaceKindMetalLayer
)

// PresentMode selects swap chain presentation behaviour.
type PresentMode uint32

const (
	PresentModeNoVSync PresentMode = iota
	PresentModeVSync
)

func (s BufferMapAsyncStatus) String() string {
	switch s {
	case BufferMapAsyncStatusSuccess:
		return "Success"
	case BufferMapAsyncStatusError:
		return "Error"
	case BufferMapAsyncStatusDeviceLost:
		return "DeviceLost"
	default:
		return "Unknown"
	}
}

func (s FenceCompletionStatus) String() string {
	switch s {
	case FenceCompletionStatusSuccess:
		return "Success"
	case FenceCompletionStatusError:
		return "Error"
	case FenceCompletionStatusDeviceLost:
		return "DeviceLost"
	default:
		return "Unknown"
	}
}
