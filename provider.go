// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package dusk

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// deviceProvider exposes a Device to gogpu ecosystem consumers.
type deviceProvider struct {
	dev    *Device
	queue  *Queue
	format gputypes.TextureFormat
}

type providerDevice struct{ dev *Device }

// Poll ticks the device. wait is ignored: Tick never blocks.
func (p providerDevice) Poll(bool) { p.dev.Tick() }

// Destroy releases the provider's device reference.
func (p providerDevice) Destroy() { p.dev.Release() }

type providerQueue struct{ q *Queue }

type providerAdapter struct{ a *Adapter }

func (p *deviceProvider) Device() gpucontext.Device   { return providerDevice{p.dev} }
func (p *deviceProvider) Queue() gpucontext.Queue     { return providerQueue{p.queue} }
func (p *deviceProvider) Adapter() gpucontext.Adapter { return providerAdapter{p.dev.Adapter()} }

func (p *deviceProvider) SurfaceFormat() gputypes.TextureFormat { return p.format }

// Provider returns d as a gpucontext.DeviceProvider. The provider holds its
// own device and queue references; Device().Destroy releases the device
// reference.
func (d *Device) Provider() gpucontext.DeviceProvider {
	return &deviceProvider{
		dev:    d.Clone(),
		queue:  d.Queue(),
		format: gputypes.TextureFormatBGRA8Unorm,
	}
}

var _ gpucontext.DeviceProvider = (*deviceProvider)(nil)
