// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package dusk

import (
	"sync"

	"github.com/gogpu/dusk/proc"
	"github.com/gogpu/gputypes"
)

// SwapChainDescriptor configures a swap chain. With zero Width or Height
// the swap chain starts unconfigured and needs Configure before use.
type SwapChainDescriptor struct {
	Label       string
	Usage       gputypes.TextureUsage
	Format      gputypes.TextureFormat
	Width       uint32
	Height      uint32
	PresentMode PresentMode
}

// NativeSwapChainParams carries backend-specific window parameters for
// CreateNativeSwapChain. It is implemented by D3D12SurfaceParams,
// VulkanSurfaceParams and NullSurfaceParams.
type NativeSwapChainParams interface {
	backendType() BackendType
	window() uintptr
}

// D3D12SurfaceParams presents to a Win32 window through D3D12.
type D3D12SurfaceParams struct {
	HWND uintptr
}

func (D3D12SurfaceParams) backendType() BackendType { return BackendTypeD3D12 }
func (p D3D12SurfaceParams) window() uintptr        { return p.HWND }

// VulkanSurfaceParams presents to an existing VkSurfaceKHR.
type VulkanSurfaceParams struct {
	Surface uintptr
}

func (VulkanSurfaceParams) backendType() BackendType { return BackendTypeVulkan }
func (p VulkanSurfaceParams) window() uintptr        { return p.Surface }

// NullSurfaceParams creates an offscreen swap chain on a Null backend
// device.
type NullSurfaceParams struct{}

func (NullSurfaceParams) backendType() BackendType { return BackendTypeNull }
func (NullSurfaceParams) window() uintptr          { return 0 }

type swapChainConfig struct {
	format gputypes.TextureFormat
	usage  gputypes.TextureUsage
	width  uint32
	height uint32
}

// SwapChain presents rendered images to a surface or native window.
type SwapChain struct {
	h       handle[proc.SwapChain]
	dev     *Device
	surface *Surface

	mu     sync.Mutex
	config swapChainConfig
}

func (desc *SwapChainDescriptor) native(label *proc.Label, impl uint64) proc.SwapChainDescriptor {
	return proc.SwapChainDescriptor{
		Label:          label.Ptr(),
		Usage:          uint32(desc.Usage),
		Format:         uint32(desc.Format),
		Width:          desc.Width,
		Height:         desc.Height,
		PresentMode:    desc.PresentMode,
		Implementation: impl,
	}
}

func (d *Device) wrapSwapChain(raw proc.SwapChain, surface *Surface, desc *SwapChainDescriptor) *SwapChain {
	s := d.shared()
	sc := &SwapChain{surface: surface}
	sc.h.set(raw, &s.n.swapChain, s)
	sc.dev = d.Clone()
	if desc.Width != 0 && desc.Height != 0 {
		sc.config = swapChainConfig{desc.Format, desc.Usage, desc.Width, desc.Height}
	}
	return sc
}

// CreateSwapChain creates a swap chain presenting to surface.
func (d *Device) CreateSwapChain(surface *Surface, desc *SwapChainDescriptor) *SwapChain {
	sh := surface.h.get()
	label := proc.LabelOf(desc.Label)
	raw := desc.native(&label, 0)
	var h proc.SwapChain
	d.lock(func(t *proc.Table, dev proc.Device) { h = t.DeviceCreateSwapChain(dev, sh, &raw) })
	return d.wrapSwapChain(h, surface.Clone(), desc)
}

// CreateNativeSwapChain creates a swap chain from backend window
// parameters. The parameters must match the device's backend. An
// Undefined desc.Format selects the backend's preferred format.
func (d *Device) CreateNativeSwapChain(params NativeSwapChainParams, desc *SwapChainDescriptor) *SwapChain {
	if params.backendType() != d.BackendType() {
		precondition(ErrBackendMismatch, "create native swap chain: "+params.backendType().String()+
			" parameters for a "+d.BackendType().String()+" device")
	}
	nd := proc.NativeSwapChainDescriptor{BackendType: params.backendType(), Window: params.window()}
	cfg := *desc
	label := proc.LabelOf(desc.Label)

	var h proc.SwapChain
	d.lock(func(t *proc.Table, dev proc.Device) {
		impl := t.DeviceCreateNativeSwapChainImpl(dev, &nd)
		if impl == 0 {
			return
		}
		if cfg.Format == gputypes.TextureFormatUndefined {
			cfg.Format = gputypes.TextureFormat(t.DeviceGetNativeSwapChainFormat(dev, impl))
		}
		raw := cfg.native(&label, impl)
		h = t.DeviceCreateSwapChain(dev, 0, &raw)
	})
	return d.wrapSwapChain(h, nil, &cfg)
}

// Format returns the configured texture format.
func (sc *SwapChain) Format() gputypes.TextureFormat {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.config.format
}

// Configure sets the size and format of the swap chain images. On D3D12 a
// configuration identical to the current one is skipped.
func (sc *SwapChain) Configure(format gputypes.TextureFormat, usage gputypes.TextureUsage, width, height uint32) {
	raw := sc.h.get()
	cfg := swapChainConfig{format, usage, width, height}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.dev.BackendType() == BackendTypeD3D12 && sc.config == cfg {
		return
	}
	t := sc.dev.shared().n.table
	sc.h.call(func() { t.SwapChainConfigure(raw, uint32(format), uint32(usage), width, height) })
	sc.config = cfg
}

// GetCurrentTextureView returns a view of the image to render into next.
func (sc *SwapChain) GetCurrentTextureView() *TextureView {
	raw := sc.h.get()
	t := sc.dev.shared().n.table
	var v proc.TextureView
	sc.h.call(func() { v = t.SwapChainGetCurrentTextureView(raw) })
	return sc.dev.wrapTextureView(v)
}

// Present shows the current image.
func (sc *SwapChain) Present() {
	raw := sc.h.get()
	t := sc.dev.shared().n.table
	sc.h.call(func() { t.SwapChainPresent(raw) })
}

// Clone returns a new reference to the same swap chain.
func (sc *SwapChain) Clone() *SwapChain {
	c := &SwapChain{}
	sc.h.clone(&c.h)
	c.dev = sc.dev.Clone()
	if sc.surface != nil {
		c.surface = sc.surface.Clone()
	}
	sc.mu.Lock()
	c.config = sc.config
	sc.mu.Unlock()
	return c
}

// Release drops the reference, then the device and surface references.
func (sc *SwapChain) Release() {
	if !sc.h.release() {
		return
	}
	sc.dev.Release()
	if sc.surface != nil {
		sc.surface.Release()
	}
}

// Raw returns the native handle. Ownership stays with sc.
func (sc *SwapChain) Raw() proc.SwapChain { return sc.h.get() }
