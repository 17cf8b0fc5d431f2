// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/dusk/proc"
)

// rowPitchAlignment is the required alignment of BufferCopyView.RowPitch.
const rowPitchAlignment = 256

// commandEncoder records straight into a HAL encoder. Recording errors
// are kept and reported when the encoder finishes.
type commandEncoder struct {
	device *device
	hal    hal.CommandEncoder // nil once finished or when creation failed
	err    string
	inPass bool
}

type commandBuffer struct {
	device    *device
	hal       hal.CommandBuffer // nil for invalid command buffers
	submitted bool
}

type computePass struct {
	encoder *commandEncoder
	hal     hal.ComputePassEncoder
	ended   bool
}

func (m *Impl) encoder(h proc.CommandEncoder) *commandEncoder {
	return lookup[*commandEncoder](m, uintptr(h))
}

func (e *commandEncoder) fail(format string, args ...any) {
	if e.err == "" {
		e.err = fmt.Sprintf(format, args...)
	}
}

// must records a failure unless ok.
func (e *commandEncoder) must(ok bool, format string, args ...any) bool {
	if !ok {
		e.fail(format, args...)
	}
	return ok
}

// recording checks that e accepts a new command outside a pass.
func (e *commandEncoder) recording(what string) bool {
	return e.must(e.hal != nil, "%s: encoder is not recording", what) &&
		e.must(!e.inPass, "%s: a pass is open", what)
}

func (e *commandEncoder) buffer(b *buffer, what string) bool {
	return e.must(b.hal != nil, "%s: buffer is invalid", what) &&
		e.must(!b.destroyed, "%s: buffer is destroyed", what) &&
		e.must(b.shadow == nil && !b.mapPending, "%s: buffer is mapped", what)
}

func (e *commandEncoder) texture(t *texture, what string) bool {
	return e.must(t.hal != nil, "%s: texture is invalid", what) &&
		e.must(!t.destroyed, "%s: texture is destroyed", what)
}

// transition moves t to usage before a copy touches it.
func (e *commandEncoder) transition(t *texture, usage gputypes.TextureUsage) {
	if t.state == usage {
		return
	}
	e.hal.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.hal,
		Usage: hal.TextureUsageTransition{
			OldUsage: t.state,
			NewUsage: usage,
		},
	}})
	t.state = usage
}

// bufferTextureCopy converts a copy region. Array layers are addressed
// through the z origin.
func (e *commandEncoder) bufferTextureCopy(b *proc.BufferCopyView, t *proc.TextureCopyView, size *proc.Extent3D, what string) (hal.BufferTextureCopy, bool) {
	ok := e.must(b.RowPitch%rowPitchAlignment == 0, "%s: row pitch %d is not a multiple of %d", what, b.RowPitch, rowPitchAlignment)
	rows := b.ImageHeight
	if rows == 0 {
		rows = size.Height
	}
	return hal.BufferTextureCopy{
		BufferLayout: hal.ImageDataLayout{Offset: b.Offset, BytesPerRow: b.RowPitch, RowsPerImage: rows},
		TextureBase: hal.ImageCopyTexture{
			Texture:  lookup[*texture](e.device.impl, uintptr(t.Texture)).hal,
			MipLevel: t.MipLevel,
			Origin:   hal.Origin3D{X: t.Origin.X, Y: t.Origin.Y, Z: t.Origin.Z + t.ArrayLayer},
		},
		Size: hal.Extent3D{Width: size.Width, Height: size.Height, DepthOrArrayLayers: max(size.Depth, 1)},
	}, ok
}

func (m *Impl) encoderProcs(t *proc.Table) {
	t.DeviceCreateCommandEncoder = func(h proc.Device, desc *proc.CommandEncoderDescriptor) proc.CommandEncoder {
		d := m.device(h)
		e := &commandEncoder{device: d}
		var label string
		if desc != nil {
			label = proc.GoString(desc.Label)
		}
		if !d.alive("create command encoder") {
			e.fail("create command encoder: device is lost")
			return proc.CommandEncoder(m.objs.Add(e))
		}
		enc, err := d.hal.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
		if err == nil {
			err = enc.BeginEncoding(label)
		}
		if err != nil {
			e.fail("create command encoder: %v", err)
			return proc.CommandEncoder(m.objs.Add(e))
		}
		e.hal = enc
		return proc.CommandEncoder(m.objs.Add(e))
	}

	_, t.CommandEncoderRelease = refcounted[proc.CommandEncoder](m, func(e *commandEncoder) {
		if e.hal != nil {
			e.hal.DiscardEncoding()
		}
	})

	t.CommandEncoderCopyBufferToBuffer = func(h proc.CommandEncoder, src proc.Buffer, srcOffset uint64, dst proc.Buffer, dstOffset, size uint64) {
		e := m.encoder(h)
		s, d := m.buffer(src), m.buffer(dst)
		if !e.recording("copy buffer to buffer") ||
			!e.buffer(s, "copy buffer to buffer") || !e.buffer(d, "copy buffer to buffer") ||
			!e.must(s.usage&gputypes.BufferUsageCopySrc != 0, "copy buffer to buffer: source lacks CopySrc usage") ||
			!e.must(d.usage&gputypes.BufferUsageCopyDst != 0, "copy buffer to buffer: destination lacks CopyDst usage") ||
			!e.must(srcOffset <= s.size && size <= s.size-srcOffset, "copy buffer to buffer: source range out of bounds") ||
			!e.must(dstOffset <= d.size && size <= d.size-dstOffset, "copy buffer to buffer: destination range out of bounds") {
			return
		}
		e.hal.CopyBufferToBuffer(s.hal, d.hal, []hal.BufferCopy{
			{SrcOffset: srcOffset, DstOffset: dstOffset, Size: size},
		})
	}

	t.CommandEncoderCopyBufferToTexture = func(h proc.CommandEncoder, src *proc.BufferCopyView, dst *proc.TextureCopyView, size *proc.Extent3D) {
		e := m.encoder(h)
		b, tex := m.buffer(src.Buffer), m.texture(dst.Texture)
		if !e.recording("copy buffer to texture") ||
			!e.buffer(b, "copy buffer to texture") || !e.texture(tex, "copy buffer to texture") {
			return
		}
		region, ok := e.bufferTextureCopy(src, dst, size, "copy buffer to texture")
		if !ok {
			return
		}
		e.transition(tex, gputypes.TextureUsageCopyDst)
		e.hal.CopyBufferToTexture(b.hal, tex.hal, []hal.BufferTextureCopy{region})
	}

	t.CommandEncoderCopyTextureToBuffer = func(h proc.CommandEncoder, src *proc.TextureCopyView, dst *proc.BufferCopyView, size *proc.Extent3D) {
		e := m.encoder(h)
		tex, b := m.texture(src.Texture), m.buffer(dst.Buffer)
		if !e.recording("copy texture to buffer") ||
			!e.texture(tex, "copy texture to buffer") || !e.buffer(b, "copy texture to buffer") {
			return
		}
		region, ok := e.bufferTextureCopy(dst, src, size, "copy texture to buffer")
		if !ok {
			return
		}
		e.transition(tex, gputypes.TextureUsageCopySrc)
		e.hal.CopyTextureToBuffer(tex.hal, b.hal, []hal.BufferTextureCopy{region})
	}

	// HAL encoders carry no debug labels.
	t.CommandEncoderInsertDebugMarker = func(proc.CommandEncoder, *byte) {}
	t.CommandEncoderPushDebugGroup = func(proc.CommandEncoder, *byte) {}
	t.CommandEncoderPopDebugGroup = func(proc.CommandEncoder) {}

	t.CommandEncoderFinish = func(h proc.CommandEncoder, _ *proc.CommandBufferDescriptor) proc.CommandBuffer {
		e := m.encoder(h)
		d := e.device
		cb := &commandBuffer{device: d}
		e.must(!e.inPass, "finish: a pass is open")
		if e.hal != nil {
			enc := e.hal
			e.hal = nil
			if e.err != "" {
				enc.DiscardEncoding()
			} else if raw, err := enc.EndEncoding(); err != nil {
				e.fail("finish: %v", err)
			} else {
				cb.hal = raw
			}
		}
		if e.err != "" {
			d.report(proc.ErrorTypeValidation, e.err)
		}
		return proc.CommandBuffer(m.objs.Add(cb))
	}

	_, t.CommandBufferRelease = refcounted[proc.CommandBuffer](m, func(cb *commandBuffer) {
		if cb.hal != nil {
			cb.device.hal.FreeCommandBuffer(cb.hal)
		}
	})

	t.CommandEncoderBeginComputePass = func(h proc.CommandEncoder, desc *proc.ComputePassDescriptor) proc.ComputePassEncoder {
		e := m.encoder(h)
		p := &computePass{encoder: e}
		if e.recording("begin compute pass") {
			var label string
			if desc != nil {
				label = proc.GoString(desc.Label)
			}
			p.hal = e.hal.BeginComputePass(&hal.ComputePassDescriptor{Label: label})
			e.inPass = true
		}
		return proc.ComputePassEncoder(m.objs.Add(p))
	}

	m.computePassProcs(t)
}

func (m *Impl) computePass(h proc.ComputePassEncoder) *computePass {
	return lookup[*computePass](m, uintptr(h))
}

// live reports whether commands recorded into p reach the HAL.
func (p *computePass) live(what string) bool {
	return p.hal != nil && p.encoder.must(!p.ended, "%s: pass has ended", what)
}

func (m *Impl) computePassProcs(t *proc.Table) {
	_, t.ComputePassEncoderRelease = refcounted[proc.ComputePassEncoder](m, func(p *computePass) {
		if p.hal != nil && !p.ended {
			p.encoder.fail("compute pass released without EndPass")
		}
	})

	t.ComputePassEncoderSetPipeline = func(h proc.ComputePassEncoder, ph proc.ComputePipeline) {
		p := m.computePass(h)
		cp := lookup[*computePipeline](m, uintptr(ph))
		if p.live("set pipeline") && p.encoder.must(cp.hal != nil, "set pipeline: pipeline is invalid") {
			p.hal.SetPipeline(cp.hal)
		}
	}

	t.ComputePassEncoderSetBindGroup = func(h proc.ComputePassEncoder, index uint32, gh proc.BindGroup, n uint32, offsets *uint32) {
		p := m.computePass(h)
		g := lookup[*bindGroup](m, uintptr(gh))
		if p.live("set bind group") && p.encoder.must(g.hal != nil, "set bind group: bind group is invalid") {
			p.hal.SetBindGroup(index, g.hal, proc.Slice(offsets, n))
		}
	}

	t.ComputePassEncoderDispatch = func(h proc.ComputePassEncoder, x, y, z uint32) {
		if p := m.computePass(h); p.live("dispatch") {
			p.hal.Dispatch(x, y, z)
		}
	}

	t.ComputePassEncoderDispatchIndirect = func(h proc.ComputePassEncoder, bh proc.Buffer, offset uint64) {
		p := m.computePass(h)
		b := m.buffer(bh)
		if p.live("dispatch indirect") && p.encoder.buffer(b, "dispatch indirect") &&
			p.encoder.must(b.usage&gputypes.BufferUsageIndirect != 0, "dispatch indirect: buffer lacks Indirect usage") {
			p.hal.DispatchIndirect(b.hal, offset)
		}
	}

	t.ComputePassEncoderInsertDebugMarker = func(proc.ComputePassEncoder, *byte) {}
	t.ComputePassEncoderPushDebugGroup = func(proc.ComputePassEncoder, *byte) {}
	t.ComputePassEncoderPopDebugGroup = func(proc.ComputePassEncoder) {}

	t.ComputePassEncoderEndPass = func(h proc.ComputePassEncoder) {
		p := m.computePass(h)
		if !p.live("end pass") {
			return
		}
		p.hal.End()
		p.ended = true
		p.encoder.inPass = false
	}
}
