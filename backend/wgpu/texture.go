// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/dusk/proc"
)

type texture struct {
	device *device
	hal    hal.Texture // nil for error textures

	format    gputypes.TextureFormat
	dimension gputypes.TextureDimension
	mips      uint32
	layers    uint32

	// state is the usage the texture was last transitioned to by a recorded
	// command. Command buffers are assumed to be submitted in recording
	// order.
	state     gputypes.TextureUsage
	destroyed bool
}

type textureView struct {
	texture *texture
	hal     hal.TextureView
}

type sampler struct {
	device *device
	hal    hal.Sampler
}

func (m *Impl) texture(h proc.Texture) *texture {
	return lookup[*texture](m, uintptr(h))
}

func (t *texture) usable(what string) bool {
	d := t.device
	return d.require(t.hal != nil, "%s: texture is invalid", what) &&
		d.require(!t.destroyed, "%s: texture is destroyed", what)
}

func (t *texture) destroy() {
	if t.hal != nil && !t.destroyed {
		t.device.hal.DestroyTexture(t.hal)
	}
	t.destroyed = true
}

// halTextureDescriptor converts desc. Two-dimensional textures carry their
// layer count in the depth field.
func halTextureDescriptor(desc *proc.TextureDescriptor) *hal.TextureDescriptor {
	depth := desc.Size.Depth
	if gputypes.TextureDimension(desc.Dimension) != gputypes.TextureDimension3D {
		depth = desc.ArrayLayerCount
	}
	return &hal.TextureDescriptor{
		Label:         proc.GoString(desc.Label),
		Size:          hal.Extent3D{Width: desc.Size.Width, Height: desc.Size.Height, DepthOrArrayLayers: max(depth, 1)},
		MipLevelCount: max(desc.MipLevelCount, 1),
		SampleCount:   max(desc.SampleCount, 1),
		Dimension:     gputypes.TextureDimension(desc.Dimension),
		Format:        gputypes.TextureFormat(desc.Format),
		Usage:         gputypes.TextureUsage(desc.Usage),
	}
}

// viewDimension picks the default view dimension for t.
func (t *texture) viewDimension() gputypes.TextureViewDimension {
	switch {
	case t.dimension == gputypes.TextureDimension1D:
		return gputypes.TextureViewDimension1D
	case t.dimension == gputypes.TextureDimension3D:
		return gputypes.TextureViewDimension3D
	case t.layers > 1:
		return gputypes.TextureViewDimension2DArray
	default:
		return gputypes.TextureViewDimension2D
	}
}

func (m *Impl) textureProcs(t *proc.Table) {
	t.DeviceCreateTexture = func(h proc.Device, desc *proc.TextureDescriptor) proc.Texture {
		d := m.device(h)
		hd := halTextureDescriptor(desc)
		tex := &texture{
			device:    d,
			format:    hd.Format,
			dimension: hd.Dimension,
			mips:      hd.MipLevelCount,
			layers:    1,
		}
		if hd.Dimension != gputypes.TextureDimension3D {
			tex.layers = hd.Size.DepthOrArrayLayers
		}
		if !d.alive("create texture") {
			return proc.Texture(m.objs.Add(tex))
		}
		raw, err := d.hal.CreateTexture(hd)
		if d.check(err, "create texture "+hd.Label) {
			tex.hal = raw
		}
		return proc.Texture(m.objs.Add(tex))
	}

	t.TextureReference, t.TextureRelease = refcounted[proc.Texture](m, (*texture).destroy)

	t.TextureDestroy = func(h proc.Texture) {
		m.texture(h).destroy()
	}

	t.TextureCreateView = func(h proc.Texture, desc *proc.TextureViewDescriptor) proc.TextureView {
		tex := m.texture(h)
		d := tex.device
		v := &textureView{texture: tex}
		if !tex.usable("create view") {
			return proc.TextureView(m.objs.Add(v))
		}
		hd := &hal.TextureViewDescriptor{
			Format:          tex.format,
			Dimension:       tex.viewDimension(),
			Aspect:          gputypes.TextureAspectAll,
			MipLevelCount:   tex.mips,
			ArrayLayerCount: tex.layers,
		}
		if desc != nil {
			hd.Label = proc.GoString(desc.Label)
			if desc.Format != 0 {
				hd.Format = gputypes.TextureFormat(desc.Format)
			}
			if desc.Dimension != 0 {
				hd.Dimension = gputypes.TextureViewDimension(desc.Dimension)
			}
			if desc.Aspect != 0 {
				hd.Aspect = gputypes.TextureAspect(desc.Aspect)
			}
			hd.BaseMipLevel = desc.BaseMipLevel
			hd.BaseArrayLayer = desc.BaseArrayLayer
			hd.MipLevelCount = tex.mips - min(desc.BaseMipLevel, tex.mips)
			hd.ArrayLayerCount = tex.layers - min(desc.BaseArrayLayer, tex.layers)
			if desc.MipLevelCount != 0 {
				hd.MipLevelCount = desc.MipLevelCount
			}
			if desc.ArrayLayerCount != 0 {
				hd.ArrayLayerCount = desc.ArrayLayerCount
			}
		}
		if !d.require(uint64(hd.BaseMipLevel)+uint64(hd.MipLevelCount) <= uint64(tex.mips) && hd.MipLevelCount > 0,
			"create view: mip range [%d, +%d) exceeds %d levels", hd.BaseMipLevel, hd.MipLevelCount, tex.mips) ||
			!d.require(uint64(hd.BaseArrayLayer)+uint64(hd.ArrayLayerCount) <= uint64(tex.layers) && hd.ArrayLayerCount > 0,
				"create view: layer range [%d, +%d) exceeds %d layers", hd.BaseArrayLayer, hd.ArrayLayerCount, tex.layers) {
			return proc.TextureView(m.objs.Add(v))
		}
		raw, err := d.hal.CreateTextureView(tex.hal, hd)
		if d.check(err, "create view") {
			v.hal = raw
		}
		return proc.TextureView(m.objs.Add(v))
	}

	t.TextureViewReference, t.TextureViewRelease = refcounted[proc.TextureView](m, func(v *textureView) {
		if v.hal != nil && v.texture.device.hal != nil {
			v.texture.device.hal.DestroyTextureView(v.hal)
		}
	})

	t.DeviceCreateSampler = func(h proc.Device, desc *proc.SamplerDescriptor) proc.Sampler {
		d := m.device(h)
		s := &sampler{device: d}
		if !d.alive("create sampler") ||
			!d.require(desc.LodMinClamp <= desc.LodMaxClamp, "create sampler: lod min clamp %g greater than lod max clamp %g", desc.LodMinClamp, desc.LodMaxClamp) {
			return proc.Sampler(m.objs.Add(s))
		}
		raw, err := d.hal.CreateSampler(&hal.SamplerDescriptor{
			Label:        proc.GoString(desc.Label),
			AddressModeU: gputypes.AddressMode(desc.AddressModeU),
			AddressModeV: gputypes.AddressMode(desc.AddressModeV),
			AddressModeW: gputypes.AddressMode(desc.AddressModeW),
			MagFilter:    gputypes.FilterMode(desc.MagFilter),
			MinFilter:    gputypes.FilterMode(desc.MinFilter),
			MipmapFilter: gputypes.FilterMode(desc.MipmapFilter),
			LodMinClamp:  desc.LodMinClamp,
			LodMaxClamp:  desc.LodMaxClamp,
			Compare:      gputypes.CompareFunction(desc.Compare),
		})
		if d.check(err, "create sampler") {
			s.hal = raw
		}
		return proc.Sampler(m.objs.Add(s))
	}

	t.SamplerReference, t.SamplerRelease = refcounted[proc.Sampler](m, func(s *sampler) {
		if s.hal != nil {
			s.device.hal.DestroySampler(s.hal)
		}
	})
}
