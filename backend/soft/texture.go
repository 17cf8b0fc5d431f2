// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package soft

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/dusk/proc"
)

// rowPitchAlignment is the required alignment of BufferCopyView.RowPitch.
const rowPitchAlignment = 256

type formatInfo struct {
	texelBytes   uint32
	depthStencil bool
}

// textureFormatInfo describes the formats the software device can store.
func textureFormatInfo(format uint32) (formatInfo, bool) {
	switch gputypes.TextureFormat(format) {
	case gputypes.TextureFormatR8Unorm:
		return formatInfo{texelBytes: 1}, true
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatBGRA8Unorm:
		return formatInfo{texelBytes: 4}, true
	case gputypes.TextureFormatDepth24PlusStencil8:
		return formatInfo{texelBytes: 4, depthStencil: true}, true
	default:
		return formatInfo{}, false
	}
}

type texture struct {
	device *device
	usage  uint32
	format uint32
	info   formatInfo

	width, height uint32
	slices        uint32
	mipLevels     uint32
	sampleCount   uint32

	// levels[mip] holds every slice of that level, slice-major then rows.
	levels [][]byte

	invalid   bool
	destroyed bool
}

type textureView struct {
	texture    *texture
	format     uint32
	baseMip    uint32
	mipCount   uint32
	baseLayer  uint32
	layerCount uint32
	invalid    bool
}

func hasTextureUsage(usage uint32, bit gputypes.TextureUsage) bool {
	return usage&uint32(bit) != 0
}

func (t *texture) levelSize(mip uint32) (w, h uint32) {
	return max(t.width>>mip, 1), max(t.height>>mip, 1)
}

// offset returns the byte offset of texel (x, y) in slice z of level mip.
func (t *texture) offset(mip, z, x, y uint32) int {
	w, h := t.levelSize(mip)
	bpp := t.info.texelBytes
	return int(((z*h+y)*w + x) * bpp)
}

func (t *texture) usable(what string) bool {
	d := t.device
	return d.require(!t.invalid, "%s: texture is invalid", what) &&
		d.require(!t.destroyed, "%s: texture is destroyed", what)
}

// fill sets every texel of one slice of one level to texel.
func (t *texture) fill(mip, z uint32, texel []byte) {
	w, h := t.levelSize(mip)
	start := t.offset(mip, z, 0, 0)
	end := start + int(w*h*t.info.texelBytes)
	level := t.levels[mip]
	for i := start; i < end; i += len(texel) {
		copy(level[i:], texel)
	}
}

func unorm8(v float64) byte {
	v = math.Max(0, math.Min(1, v))
	return byte(v*255 + 0.5)
}

// encodeColor converts a clear colour to one texel of format.
func encodeColor(format uint32, c proc.Color) []byte {
	switch gputypes.TextureFormat(format) {
	case gputypes.TextureFormatR8Unorm:
		return []byte{unorm8(c.R)}
	case gputypes.TextureFormatBGRA8Unorm:
		return []byte{unorm8(c.B), unorm8(c.G), unorm8(c.R), unorm8(c.A)}
	default:
		return []byte{unorm8(c.R), unorm8(c.G), unorm8(c.B), unorm8(c.A)}
	}
}

// encodeDepthStencil packs a 24-bit unorm depth and an 8-bit stencil value.
func encodeDepthStencil(depth float32, stencil uint32) []byte {
	d := math.Max(0, math.Min(1, float64(depth)))
	packed := uint32(d*0xFFFFFF+0.5) | (stencil&0xFF)<<24
	return binary.LittleEndian.AppendUint32(nil, packed)
}

func (m *Impl) texture(h proc.Texture) *texture {
	return lookup[*texture](m.objs, uintptr(h))
}

func (m *Impl) textureView(h proc.TextureView) *textureView {
	return lookup[*textureView](m.objs, uintptr(h))
}

func (d *device) newTexture(desc *proc.TextureDescriptor) *texture {
	label := proc.GoString(desc.Label)
	t := &texture{
		device:      d,
		usage:       desc.Usage,
		format:      desc.Format,
		width:       desc.Size.Width,
		height:      desc.Size.Height,
		slices:      max(desc.Size.Depth, 1) * max(desc.ArrayLayerCount, 1),
		mipLevels:   desc.MipLevelCount,
		sampleCount: desc.SampleCount,
	}
	info, ok := textureFormatInfo(desc.Format)
	t.info = info
	valid := d.require(ok, "create texture %q: format %d is not supported by the software device", label, desc.Format) &&
		d.validate(desc.Usage != 0, "create texture %q: usage must not be empty", label) &&
		d.require(desc.Size.Width > 0 && desc.Size.Height > 0, "create texture %q: empty size", label) &&
		d.require(desc.MipLevelCount >= 1 && desc.MipLevelCount <= 32, "create texture %q: mip level count %d", label, desc.MipLevelCount) &&
		d.validate(desc.SampleCount == 1 || desc.SampleCount == 4, "create texture %q: sample count %d", label, desc.SampleCount)
	if !valid {
		t.invalid = true
		return t
	}

	size := uint64(t.width) * uint64(t.height) * uint64(t.slices) * uint64(info.texelBytes)
	if size > maxBufferSize {
		d.report(proc.ErrorTypeOutOfMemory, "create texture: size exceeds software limit")
		t.invalid = true
		return t
	}
	t.levels = make([][]byte, t.mipLevels)
	for mip := range t.mipLevels {
		w, h := t.levelSize(mip)
		t.levels[mip] = make([]byte, w*h*t.slices*info.texelBytes)
	}
	return t
}

func (m *Impl) textureProcs(t *proc.Table) {
	t.DeviceCreateTexture = func(h proc.Device, desc *proc.TextureDescriptor) proc.Texture {
		d := m.device(h)
		defer d.enter()()
		return proc.Texture(m.objs.Add(d.newTexture(desc)))
	}
	t.TextureReference, t.TextureRelease = refcounted[proc.Texture, *texture](m, nil)

	t.TextureCreateView = func(h proc.Texture, desc *proc.TextureViewDescriptor) proc.TextureView {
		tex := m.texture(h)
		d := tex.device
		defer d.enter()()

		v := &textureView{
			texture:    tex,
			format:     tex.format,
			mipCount:   tex.mipLevels,
			layerCount: tex.slices,
		}
		if desc != nil {
			if desc.Format != 0 {
				v.format = desc.Format
			}
			v.baseMip = desc.BaseMipLevel
			v.baseLayer = desc.BaseArrayLayer
			if desc.MipLevelCount != 0 {
				v.mipCount = desc.MipLevelCount
			}
			if desc.ArrayLayerCount != 0 {
				v.layerCount = desc.ArrayLayerCount
			}
		}
		v.invalid = !tex.usable("create texture view") ||
			!d.require(v.format == tex.format, "create texture view: format reinterpretation is not supported") ||
			!d.require(v.mipCount > 0 && uint64(v.baseMip)+uint64(v.mipCount) <= uint64(tex.mipLevels), "create texture view: mip range out of bounds") ||
			!d.require(v.layerCount > 0 && uint64(v.baseLayer)+uint64(v.layerCount) <= uint64(tex.slices), "create texture view: layer range out of bounds")
		return proc.TextureView(m.objs.Add(v))
	}

	t.TextureDestroy = func(h proc.Texture) {
		tex := m.texture(h)
		defer tex.device.enter()()
		tex.destroyed = true
	}

	t.TextureViewReference, t.TextureViewRelease = refcounted[proc.TextureView, *textureView](m, nil)
}

// copyRegion is a validated texel copy between a buffer and a texture.
type copyRegion struct {
	buf      *buffer
	offset   uint64
	rowPitch uint64
	imageH   uint64

	tex           *texture
	mip, layer    uint32
	origin        proc.Origin3D
	width, height uint32
	depth         uint32
}

// validateBufferTextureCopy checks a copy in either direction and returns
// the region to execute.
func validateBufferTextureCopy(d *device, what string, b *proc.BufferCopyView, bv *buffer,
	tv *proc.TextureCopyView, tex *texture, size *proc.Extent3D,
) (copyRegion, bool) {
	r := copyRegion{
		buf:      bv,
		offset:   b.Offset,
		rowPitch: uint64(b.RowPitch),
		imageH:   uint64(b.ImageHeight),
		tex:      tex,
		mip:      tv.MipLevel,
		layer:    tv.ArrayLayer,
		origin:   tv.Origin,
		width:    size.Width,
		height:   size.Height,
		depth:    max(size.Depth, 1),
	}
	if r.imageH == 0 {
		r.imageH = uint64(r.height)
	}
	if !bv.usable(what) || !tex.usable(what) {
		return r, false
	}
	if !d.require(tv.MipLevel < tex.mipLevels, "%s: mip level %d out of range", what, tv.MipLevel) {
		return r, false
	}
	bpp := uint64(tex.info.texelBytes)
	lw, lh := tex.levelSize(tv.MipLevel)
	rowBytes := uint64(r.width) * bpp
	ok := d.validate(r.rowPitch%rowPitchAlignment == 0, "%s: row pitch %d is not a multiple of %d", what, r.rowPitch, rowPitchAlignment) &&
		d.require(r.rowPitch >= rowBytes, "%s: row pitch %d smaller than row size %d", what, r.rowPitch, rowBytes) &&
		d.require(r.imageH >= uint64(r.height), "%s: image height smaller than copy height", what) &&
		d.require(uint64(r.origin.X)+uint64(r.width) <= uint64(lw) && uint64(r.origin.Y)+uint64(r.height) <= uint64(lh),
			"%s: texture region out of bounds", what) &&
		d.require(uint64(r.layer)+uint64(r.origin.Z)+uint64(r.depth) <= uint64(tex.slices), "%s: texture layers out of bounds", what)
	if !ok {
		return r, false
	}
	if r.width == 0 || r.height == 0 {
		return r, true
	}
	last := r.offset + r.rowPitch*r.imageH*uint64(r.depth-1) + r.rowPitch*uint64(r.height-1) + rowBytes
	return r, d.require(last <= uint64(len(bv.data)), "%s: buffer range out of bounds", what)
}

// rows calls fn for every row of the region with the buffer and texture
// byte ranges of that row.
func (r copyRegion) rows(fn func(bufStart, texStart, n int)) {
	n := int(uint64(r.width) * uint64(r.tex.info.texelBytes))
	for z := range r.depth {
		for y := range r.height {
			bufStart := r.offset + r.rowPitch*(r.imageH*uint64(z)+uint64(y))
			texStart := r.tex.offset(r.mip, r.layer+r.origin.Z+z, r.origin.X, r.origin.Y+y)
			fn(int(bufStart), texStart, n)
		}
	}
}

func (r copyRegion) bufferToTexture() {
	level := r.tex.levels[r.mip]
	r.rows(func(bufStart, texStart, n int) {
		copy(level[texStart:texStart+n], r.buf.data[bufStart:bufStart+n])
	})
}

func (r copyRegion) textureToBuffer() {
	level := r.tex.levels[r.mip]
	r.rows(func(bufStart, texStart, n int) {
		copy(r.buf.data[bufStart:bufStart+n], level[texStart:texStart+n])
	})
}
