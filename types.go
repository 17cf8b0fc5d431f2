// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package dusk

import (
	"fmt"

	"github.com/gogpu/dusk/proc"
)

// Native enumerations re-exported so callers need not import proc.
type (
	ErrorType             = proc.ErrorType
	AdapterType           = proc.AdapterType
	BackendType           = proc.BackendType
	BufferMapAsyncStatus  = proc.BufferMapAsyncStatus
	FenceCompletionStatus = proc.FenceCompletionStatus
	PresentMode           = proc.PresentMode
)

const (
	ErrorTypeNoError     = proc.ErrorTypeNoError
	ErrorTypeValidation  = proc.ErrorTypeValidation
	ErrorTypeOutOfMemory = proc.ErrorTypeOutOfMemory
	ErrorTypeUnknown     = proc.ErrorTypeUnknown
	ErrorTypeDeviceLost  = proc.ErrorTypeDeviceLost
)

const (
	AdapterTypeDiscreteGPU   = proc.AdapterTypeDiscreteGPU
	AdapterTypeIntegratedGPU = proc.AdapterTypeIntegratedGPU
	AdapterTypeCPU           = proc.AdapterTypeCPU
	AdapterTypeUnknown       = proc.AdapterTypeUnknown
)

const (
	BackendTypeNull   = proc.BackendTypeNull
	BackendTypeD3D12  = proc.BackendTypeD3D12
	BackendTypeMetal  = proc.BackendTypeMetal
	BackendTypeVulkan = proc.BackendTypeVulkan
	BackendTypeOpenGL = proc.BackendTypeOpenGL
)

const (
	BufferMapAsyncStatusSuccess    = proc.BufferMapAsyncStatusSuccess
	BufferMapAsyncStatusError      = proc.BufferMapAsyncStatusError
	BufferMapAsyncStatusUnknown    = proc.BufferMapAsyncStatusUnknown
	BufferMapAsyncStatusDeviceLost = proc.BufferMapAsyncStatusDeviceLost
)

const (
	FenceCompletionStatusSuccess    = proc.FenceCompletionStatusSuccess
	FenceCompletionStatusError      = proc.FenceCompletionStatusError
	FenceCompletionStatusUnknown    = proc.FenceCompletionStatusUnknown
	FenceCompletionStatusDeviceLost = proc.FenceCompletionStatusDeviceLost
)

const (
	PresentModeNoVSync = proc.PresentModeNoVSync
	PresentModeVSync   = proc.PresentModeVSync
)

// Extension names accepted in DeviceDescriptor.RequiredExtensions.
const (
	ExtensionTextureCompressionBC = "texture_compression_bc"
)

// Toggle names understood by the bundled backends.
const (
	ToggleSkipValidation = "skip_validation"
)

// count narrows a slice length to the native uint32 count.
func count(field string, n int) (uint32, error) {
	c, ok := proc.Count(n)
	if !ok {
		return 0, fmt.Errorf("%s: %d entries: %w", field, n, ErrOverflow)
	}
	return c, nil
}
