// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package dusk

import (
	"github.com/gogpu/dusk/proc"
	"github.com/gogpu/gputypes"
)

// TextureDescriptor describes a texture to create. For 3D textures
// Size.DepthOrArrayLayers is the depth, otherwise the array layer count.
// Zero MipLevelCount and SampleCount mean 1.
type TextureDescriptor struct {
	Label         string
	Usage         gputypes.TextureUsage
	Dimension     gputypes.TextureDimension
	Size          gputypes.Extent3D
	Format        gputypes.TextureFormat
	MipLevelCount uint32
	SampleCount   uint32
}

func (desc *TextureDescriptor) native(label *proc.Label) proc.TextureDescriptor {
	raw := proc.TextureDescriptor{
		Label:           label.Ptr(),
		Usage:           uint32(desc.Usage),
		Dimension:       uint32(desc.Dimension),
		Size:            proc.Extent3D{Width: desc.Size.Width, Height: desc.Size.Height, Depth: 1},
		ArrayLayerCount: 1,
		Format:          uint32(desc.Format),
		MipLevelCount:   max(desc.MipLevelCount, 1),
		SampleCount:     max(desc.SampleCount, 1),
	}
	layers := max(desc.Size.DepthOrArrayLayers, 1)
	if desc.Dimension == gputypes.TextureDimension3D {
		raw.Size.Depth = layers
	} else {
		raw.ArrayLayerCount = layers
	}
	return raw
}

func extent(e gputypes.Extent3D) proc.Extent3D {
	return proc.Extent3D{Width: e.Width, Height: e.Height, Depth: max(e.DepthOrArrayLayers, 1)}
}

// Texture is a GPU texture.
type Texture struct {
	h    handle[proc.Texture]
	dev  *Device
	desc TextureDescriptor
}

func (d *Device) wrapTexture(raw proc.Texture, desc TextureDescriptor) *Texture {
	s := d.shared()
	t := &Texture{desc: desc}
	t.h.set(raw, &s.n.texture, s)
	t.dev = d.Clone()
	return t
}

// CreateTexture creates a texture.
func (d *Device) CreateTexture(desc *TextureDescriptor) *Texture {
	label := proc.LabelOf(desc.Label)
	raw := desc.native(&label)
	var h proc.Texture
	d.lock(func(t *proc.Table, dev proc.Device) { h = t.DeviceCreateTexture(dev, &raw) })
	return d.wrapTexture(h, *desc)
}

// Clone returns a new reference to the same texture.
func (t *Texture) Clone() *Texture {
	c := &Texture{desc: t.desc}
	t.h.clone(&c.h)
	c.dev = t.dev.Clone()
	return c
}

// Release drops the reference. Further calls are no-ops.
func (t *Texture) Release() {
	if t.h.release() {
		t.dev.Release()
	}
}

// Raw returns the native handle. Ownership stays with t.
func (t *Texture) Raw() proc.Texture { return t.h.get() }

func (t *Texture) Size() gputypes.Extent3D        { return t.desc.Size }
func (t *Texture) Format() gputypes.TextureFormat { return t.desc.Format }
func (t *Texture) Usage() gputypes.TextureUsage   { return t.desc.Usage }
func (t *Texture) String() string                 { return t.h.String() }

// TextureViewDescriptor selects a subresource range of a texture. Zero
// values select the texture's format and all remaining levels and layers.
type TextureViewDescriptor struct {
	Label           string
	Format          gputypes.TextureFormat
	Dimension       gputypes.TextureViewDimension
	BaseMipLevel    uint32
	MipLevelCount   uint32
	BaseArrayLayer  uint32
	ArrayLayerCount uint32
	Aspect          gputypes.TextureAspect
}

// TextureView is a view of a texture used as an attachment or binding.
type TextureView struct {
	h   handle[proc.TextureView]
	dev *Device
}

func (d *Device) wrapTextureView(raw proc.TextureView) *TextureView {
	s := d.shared()
	v := &TextureView{}
	v.h.set(raw, &s.n.textureView, s)
	v.dev = d.Clone()
	return v
}

// CreateView creates a view of t. A nil desc creates the default view.
func (t *Texture) CreateView(desc *TextureViewDescriptor) *TextureView {
	var raw *proc.TextureViewDescriptor
	var label proc.Label
	if desc != nil {
		label = proc.LabelOf(desc.Label)
		raw = &proc.TextureViewDescriptor{
			Label:           label.Ptr(),
			Format:          uint32(desc.Format),
			Dimension:       uint32(desc.Dimension),
			BaseMipLevel:    desc.BaseMipLevel,
			MipLevelCount:   desc.MipLevelCount,
			BaseArrayLayer:  desc.BaseArrayLayer,
			ArrayLayerCount: desc.ArrayLayerCount,
			Aspect:          uint32(desc.Aspect),
		}
	}
	h := t.h.get()
	tbl := t.dev.shared().n.table
	var v proc.TextureView
	t.h.call(func() { v = tbl.TextureCreateView(h, raw) })
	return t.dev.wrapTextureView(v)
}

// Destroy frees the texture's memory now. Views of it become invalid.
func (t *Texture) Destroy() {
	h := t.h.get()
	tbl := t.dev.shared().n.table
	t.h.call(func() { tbl.TextureDestroy(h) })
}

// Clone returns a new reference to the same view.
func (v *TextureView) Clone() *TextureView {
	c := &TextureView{}
	v.h.clone(&c.h)
	c.dev = v.dev.Clone()
	return c
}

// Release drops the reference. Further calls are no-ops.
func (v *TextureView) Release() {
	if v.h.release() {
		v.dev.Release()
	}
}

// Raw returns the native handle. Ownership stays with v.
func (v *TextureView) Raw() proc.TextureView { return v.h.get() }

func (v *TextureView) String() string { return v.h.String() }

// SamplerDescriptor describes a sampler. A zero Compare creates a
// non-comparison sampler.
type SamplerDescriptor struct {
	Label        string
	AddressModeU gputypes.AddressMode
	AddressModeV gputypes.AddressMode
	AddressModeW gputypes.AddressMode
	MagFilter    gputypes.FilterMode
	MinFilter    gputypes.FilterMode
	MipmapFilter gputypes.FilterMode
	LodMinClamp  float32
	LodMaxClamp  float32
	Compare      gputypes.CompareFunction
}

// Sampler is a texture sampler.
type Sampler struct {
	h   handle[proc.Sampler]
	dev *Device
}

// CreateSampler creates a sampler.
func (d *Device) CreateSampler(desc *SamplerDescriptor) *Sampler {
	label := proc.LabelOf(desc.Label)
	raw := proc.SamplerDescriptor{
		Label:        label.Ptr(),
		AddressModeU: uint32(desc.AddressModeU),
		AddressModeV: uint32(desc.AddressModeV),
		AddressModeW: uint32(desc.AddressModeW),
		MagFilter:    uint32(desc.MagFilter),
		MinFilter:    uint32(desc.MinFilter),
		MipmapFilter: uint32(desc.MipmapFilter),
		LodMinClamp:  desc.LodMinClamp,
		LodMaxClamp:  desc.LodMaxClamp,
		Compare:      uint32(desc.Compare),
	}
	var h proc.Sampler
	d.lock(func(t *proc.Table, dev proc.Device) { h = t.DeviceCreateSampler(dev, &raw) })

	s := d.shared()
	smp := &Sampler{}
	smp.h.set(h, &s.n.sampler, s)
	smp.dev = d.Clone()
	return smp
}

// Clone returns a new reference to the same sampler.
func (s *Sampler) Clone() *Sampler {
	c := &Sampler{}
	s.h.clone(&c.h)
	c.dev = s.dev.Clone()
	return c
}

// Release drops the reference. Further calls are no-ops.
func (s *Sampler) Release() {
	if s.h.release() {
		s.dev.Release()
	}
}

// Raw returns the native handle. Ownership stays with s.
func (s *Sampler) Raw() proc.Sampler { return s.h.get() }
