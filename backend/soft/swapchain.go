// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package soft

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/dusk/proc"
)

// nativeChain is the software stand-in for a backend swap chain
// implementation created from window parameters.
type nativeChain struct {
	backend  proc.BackendType
	window   uintptr
	presents int
}

type swapChain struct {
	device *device
	native *nativeChain
	format uint32

	// current is the texture images are drawn into; nil until configured.
	current  *texture
	acquired bool
	presents int
}

func (m *Impl) swapChain(h proc.SwapChain) *swapChain {
	return lookup[*swapChain](m.objs, uintptr(h))
}

func (m *Impl) swapChainProcs(t *proc.Table) {
	t.DeviceCreateNativeSwapChainImpl = func(h proc.Device, desc *proc.NativeSwapChainDescriptor) uint64 {
		d := m.device(h)
		defer d.enter()()
		if !d.require(desc.BackendType == d.adapter.props.BackendType,
			"create native swap chain: %s parameters for a %s device", desc.BackendType, d.adapter.props.BackendType) {
			return 0
		}
		id := d.nextChain
		d.nextChain++
		d.nativeChains[id] = &nativeChain{backend: desc.BackendType, window: desc.Window}
		return id
	}

	t.DeviceGetNativeSwapChainFormat = func(h proc.Device, impl uint64) uint32 {
		d := m.device(h)
		defer d.enter()()
		if _, ok := d.nativeChains[impl]; !d.require(ok, "get native swap chain format: unknown implementation %d", impl) {
			return uint32(gputypes.TextureFormatUndefined)
		}
		return uint32(gputypes.TextureFormatBGRA8Unorm)
	}

	t.DeviceCreateSwapChain = func(h proc.Device, s proc.Surface, desc *proc.SwapChainDescriptor) proc.SwapChain {
		d := m.device(h)
		defer d.enter()()
		sc := &swapChain{device: d, format: desc.Format}
		if desc.Implementation != 0 {
			sc.native = d.nativeChains[desc.Implementation]
			d.require(sc.native != nil, "create swap chain: unknown implementation %d", desc.Implementation)
		} else {
			d.require(lookupOpt[*surface](m.objs, uintptr(s)) != nil, "create swap chain: no surface")
		}
		if desc.Width != 0 && desc.Height != 0 {
			sc.configure(desc.Format, desc.Usage, desc.Width, desc.Height)
		}
		return proc.SwapChain(m.objs.Add(sc))
	}
	t.SwapChainReference, t.SwapChainRelease = refcounted[proc.SwapChain, *swapChain](m, nil)

	t.SwapChainConfigure = func(h proc.SwapChain, format, usage, width, height uint32) {
		sc := m.swapChain(h)
		defer sc.device.enter()()
		sc.configure(format, usage, width, height)
	}

	t.SwapChainGetCurrentTextureView = func(h proc.SwapChain) proc.TextureView {
		sc := m.swapChain(h)
		d := sc.device
		defer d.enter()()
		v := &textureView{mipCount: 1, layerCount: 1}
		if !d.require(sc.current != nil, "get current texture view: swap chain is not configured") {
			v.texture = &texture{invalid: true}
			v.invalid = true
			return proc.TextureView(m.objs.Add(v))
		}
		v.texture = sc.current
		v.format = sc.current.format
		v.invalid = sc.current.invalid
		sc.acquired = true
		return proc.TextureView(m.objs.Add(v))
	}

	t.SwapChainPresent = func(h proc.SwapChain) {
		sc := m.swapChain(h)
		d := sc.device
		defer d.enter()()
		if !d.validate(sc.acquired, "present: no texture acquired since the last present") {
			return
		}
		sc.acquired = false
		sc.presents++
		if sc.native != nil {
			sc.native.presents++
		}
		m.log().Debug("soft: present", "frame", sc.presents)
	}
}

// configure replaces the backing texture. Views of the previous texture
// remain valid but are no longer presented.
func (sc *swapChain) configure(format, usage, width, height uint32) {
	d := sc.device
	ok := d.validate(width > 0 && height > 0, "configure swap chain: empty size") &&
		d.validate(usage != 0, "configure swap chain: usage must not be empty")
	if !ok {
		return
	}
	sc.format = format
	sc.current = d.newTexture(&proc.TextureDescriptor{
		Usage:         usage,
		Dimension:     uint32(gputypes.TextureDimension2D),
		Size:          proc.Extent3D{Width: width, Height: height, Depth: 1},
		Format:        format,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	sc.acquired = false
}
