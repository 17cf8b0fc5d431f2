// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"errors"
	"slices"

	"github.com/gogpu/dusk/proc"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered or cannot produce a table on this machine.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrIncompleteTable is returned by Validate when required entry points
	// are nil.
	ErrIncompleteTable = errors.New("backend: table is missing required entry points")
)

// Backend name constants.
const (
	// Soft is the pure Go reference implementation. Always available.
	Soft = "soft"
	// WGPU drives gogpu/wgpu HAL devices on the Vulkan backend.
	WGPU = "wgpu"
	// WGPUNoop drives gogpu/wgpu HAL devices on the noop backend.
	WGPUNoop = "wgpu-noop"
)

// Factory builds a proc table. Factories may probe the machine and fail with
// ErrBackendNotAvailable.
type Factory func() (*proc.Table, error)

// required lists the entry points every table must provide to be installed.
var required = []string{
	"CreateInstance",
	"InstanceReference",
	"InstanceRelease",
	"InstanceDiscoverDefaultAdapters",
	"InstanceGetAdapterCount",
	"InstanceGetAdapterProperties",
	"InstanceCreateDevice",
	"DeviceReference",
	"DeviceRelease",
	"DeviceGetDefaultQueue",
	"QueueReference",
	"QueueRelease",
	"QueueSubmit",
}

// Validate checks that t carries every entry point needed to create a
// device and submit work. Other entries may be nil; calling one panics in
// dusk with a message naming it.
func Validate(t *proc.Table) error {
	if t == nil {
		return ErrIncompleteTable
	}
	missing := t.Missing()
	var errs []error
	for _, name := range required {
		if slices.Contains(missing, name) {
			errs = append(errs, errors.New(name))
		}
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrIncompleteTable}, errs...)...)
	}
	return nil
}
