// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package dusk

import "log/slog"

// InstanceOption configures an Instance during creation.
//
// Example:
//
//	inst := dusk.NewInstance(
//	    dusk.WithAdapterFilter(func(p dusk.AdapterProperties) bool {
//	        return p.AdapterType == dusk.AdapterTypeDiscreteGPU
//	    }),
//	)
type InstanceOption func(*instanceOptions)

type instanceOptions struct {
	logger *slog.Logger
	filter func(AdapterProperties) bool
}

func defaultInstanceOptions() instanceOptions {
	return instanceOptions{}
}

// WithInstanceLogger sets the package logger as NewInstance runs, before
// the proc table is installed, so backend initialization is logged too.
func WithInstanceLogger(l *slog.Logger) InstanceOption {
	return func(o *instanceOptions) {
		o.logger = l
	}
}

// WithAdapterFilter hides adapters for which keep returns false from
// Instance.Adapters and Instance.DefaultAdapter.
func WithAdapterFilter(keep func(AdapterProperties) bool) InstanceOption {
	return func(o *instanceOptions) {
		o.filter = keep
	}
}

// DeviceOption configures a Device during creation.
type DeviceOption func(*deviceOptions)

type deviceOptions struct {
	onError ErrorCallback
}

// WithUncapturedErrorCallback installs cb before the first native call on
// the new device, so no error is missed.
func WithUncapturedErrorCallback(cb ErrorCallback) DeviceOption {
	return func(o *deviceOptions) {
		o.onError = cb
	}
}
