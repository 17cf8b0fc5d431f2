// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package soft

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/dusk/proc"
)

// dynamicOffsetAlignment is the required alignment of dynamic offsets.
const dynamicOffsetAlignment = 256

// indirect argument sizes in bytes.
const (
	drawIndirectSize        = 16
	drawIndexedIndirectSize = 20
	dispatchIndirectSize    = 12
)

// drawState tracks bindings shared by render passes and render bundles.
type drawState struct {
	rec      *recorder
	pipeline *pipeline
	groups   map[uint32]*bindGroup
	vertex   map[uint32]*buffer
	index    *buffer
	draws    int
}

func newDrawState(r *recorder) drawState {
	return drawState{rec: r, groups: make(map[uint32]*bindGroup), vertex: make(map[uint32]*buffer)}
}

func (s *drawState) setPipeline(p *pipeline, compute bool) {
	r := s.rec
	if r.must(!p.invalid, "set pipeline: pipeline is invalid") &&
		r.must(p.compute == compute, "set pipeline: wrong pipeline kind for this pass") {
		s.pipeline = p
	}
}

func (s *drawState) setBindGroup(index uint32, g *bindGroup, offsets []uint32) {
	r := s.rec
	if !r.must(!g.invalid, "set bind group %d: group is invalid", index) {
		return
	}
	dynamic := 0
	for _, b := range g.layout.bindings {
		if b.HasDynamicOffset {
			dynamic++
		}
	}
	if !r.check(len(offsets) == dynamic, "set bind group %d: %d dynamic offsets for %d dynamic bindings", index, len(offsets), dynamic) {
		return
	}
	for _, off := range offsets {
		if !r.check(off%dynamicOffsetAlignment == 0, "set bind group %d: dynamic offset %d is not aligned to %d", index, off, dynamicOffsetAlignment) {
			return
		}
	}
	s.groups[index] = g
}

func (s *drawState) setVertexBuffer(slot uint32, b *buffer, offset uint64) {
	r := s.rec
	if r.must(!b.invalid, "set vertex buffer %d: buffer is invalid", slot) &&
		r.check(hasBufferUsage(b.usage, gputypes.BufferUsageVertex), "set vertex buffer %d: buffer lacks Vertex usage", slot) &&
		r.must(offset <= uint64(len(b.data)), "set vertex buffer %d: offset out of bounds", slot) {
		s.vertex[slot] = b
	}
}

func (s *drawState) setIndexBuffer(b *buffer, offset uint64) {
	r := s.rec
	if r.must(!b.invalid, "set index buffer: buffer is invalid") &&
		r.must(offset <= uint64(len(b.data)), "set index buffer: offset out of bounds") {
		s.index = b
	}
}

// ready checks that a draw or dispatch has what it needs.
func (s *drawState) ready(what string, indexed bool) bool {
	r := s.rec
	if !r.must(s.pipeline != nil, "%s: no pipeline set", what) {
		return false
	}
	if indexed && !r.must(s.index != nil, "%s: no index buffer set", what) {
		return false
	}
	if s.pipeline.layout != nil {
		for i := range s.pipeline.layout.groups {
			if !r.check(s.groups[uint32(i)] != nil, "%s: bind group %d not set", what, i) {
				return false
			}
		}
	}
	s.draws++
	return true
}

func (s *drawState) indirect(what string, b *buffer, offset, size uint64) bool {
	r := s.rec
	return r.must(!b.invalid, "%s: indirect buffer is invalid", what) &&
		r.check(offset%4 == 0, "%s: indirect offset must be a multiple of 4", what) &&
		r.must(offset <= uint64(len(b.data)) && size <= uint64(len(b.data))-offset, "%s: indirect range out of bounds", what)
}

// attachment is a resolved render pass attachment.
type attachment struct {
	view  *textureView
	load  gputypes.LoadOp
	store gputypes.StoreOp
	clear []byte
}

type renderPass struct {
	encoder *commandEncoder
	draw    drawState
	targets []attachment
	ended   bool
}

type computePass struct {
	encoder *commandEncoder
	draw    drawState
	ended   bool
}

func (m *Impl) renderPass(h proc.RenderPassEncoder) *renderPass {
	return lookup[*renderPass](m.objs, uintptr(h))
}

func (m *Impl) computePass(h proc.ComputePassEncoder) *computePass {
	return lookup[*computePass](m.objs, uintptr(h))
}

// open checks that the pass still accepts commands.
func (p *renderPass) open(what string) bool {
	return p.encoder.must(!p.ended, "%s: render pass already ended", what)
}

func (p *computePass) open(what string) bool {
	return p.encoder.must(!p.ended, "%s: compute pass already ended", what)
}

// resolveAttachment validates v as a render target and returns it, or nil.
func (e *commandEncoder) resolveAttachment(v *textureView, depth bool) *textureView {
	kind := "color"
	if depth {
		kind = "depth stencil"
	}
	if !e.must(!v.invalid, "begin render pass: %s attachment is invalid", kind) ||
		!e.must(!v.texture.invalid, "begin render pass: %s attachment texture is invalid", kind) ||
		!e.check(hasTextureUsage(v.texture.usage, gputypes.TextureUsageRenderAttachment), "begin render pass: %s attachment lacks RenderAttachment usage", kind) ||
		!e.must(v.texture.info.depthStencil == depth, "begin render pass: %s attachment has the wrong format", kind) ||
		!e.must(v.mipCount == 1 && v.layerCount == 1, "begin render pass: %s attachment must view a single subresource", kind) {
		return nil
	}
	return v
}

// fillView fills the subresource of v with texel.
func fillView(v *textureView, texel []byte) {
	v.texture.fill(v.baseMip, v.baseLayer, texel)
}

func (m *Impl) beginRenderPass(e *commandEncoder, desc *proc.RenderPassDescriptor) *renderPass {
	p := &renderPass{encoder: e, draw: newDrawState(&e.recorder)}
	if !e.recording("begin render pass") {
		p.ended = true
		return p
	}
	e.state = encoderPassOpen

	colors := proc.Slice(desc.ColorAttachments, desc.ColorAttachmentCount)
	e.must(len(colors) > 0 || desc.DepthStencilAttachment != nil, "begin render pass: no attachments")
	var w, h uint32
	sameSize := func(v *textureView) bool {
		lw, lh := v.texture.levelSize(v.baseMip)
		if w == 0 {
			w, h = lw, lh
		}
		return e.must(lw == w && lh == h, "begin render pass: attachment sizes differ")
	}
	for _, c := range colors {
		v := e.resolveAttachment(m.textureView(c.Attachment), false)
		if v == nil || !sameSize(v) {
			continue
		}
		if c.ResolveTarget != 0 {
			e.check(v.texture.sampleCount > 1, "begin render pass: resolve target on a single-sampled attachment")
		}
		p.targets = append(p.targets, attachment{
			view:  v,
			load:  gputypes.LoadOp(c.LoadOp),
			store: gputypes.StoreOp(c.StoreOp),
			clear: encodeColor(v.format, c.ClearColor),
		})
	}
	if ds := desc.DepthStencilAttachment; ds != nil {
		if v := e.resolveAttachment(m.textureView(ds.Attachment), true); v != nil && sameSize(v) {
			load := gputypes.LoadOp(ds.DepthLoadOp)
			if gputypes.LoadOp(ds.StencilLoadOp) == gputypes.LoadOpClear {
				load = gputypes.LoadOpClear
			}
			p.targets = append(p.targets, attachment{
				view:  v,
				load:  load,
				store: gputypes.StoreOp(ds.DepthStoreOp),
				clear: encodeDepthStencil(ds.ClearDepth, ds.ClearStencil),
			})
		}
	}

	targets := p.targets
	e.push(func() string {
		for _, a := range targets {
			if msg := textureState(a.view.texture, "render pass"); msg != "" {
				return msg
			}
		}
		for _, a := range targets {
			if a.load == gputypes.LoadOpClear {
				fillView(a.view, a.clear)
			}
		}
		return ""
	})
	return p
}

func (m *Impl) passProcs(t *proc.Table) {
	t.CommandEncoderBeginRenderPass = func(h proc.CommandEncoder, desc *proc.RenderPassDescriptor) proc.RenderPassEncoder {
		e := m.encoder(h)
		defer e.device.enter()()
		return proc.RenderPassEncoder(m.objs.Add(m.beginRenderPass(e, desc)))
	}
	t.CommandEncoderBeginComputePass = func(h proc.CommandEncoder, _ *proc.ComputePassDescriptor) proc.ComputePassEncoder {
		e := m.encoder(h)
		p := &computePass{encoder: e, draw: newDrawState(&e.recorder)}
		if e.recording("begin compute pass") {
			e.state = encoderPassOpen
		} else {
			p.ended = true
		}
		return proc.ComputePassEncoder(m.objs.Add(p))
	}

	m.renderPassProcs(t)
	m.computePassProcs(t)
}

func (m *Impl) renderPassProcs(t *proc.Table) {
	_, t.RenderPassEncoderRelease = refcounted[proc.RenderPassEncoder, *renderPass](m, nil)

	t.RenderPassEncoderSetPipeline = func(h proc.RenderPassEncoder, pl proc.RenderPipeline) {
		if p := m.renderPass(h); p.open("set pipeline") {
			p.draw.setPipeline(lookup[*pipeline](m.objs, uintptr(pl)), false)
		}
	}
	t.RenderPassEncoderSetBindGroup = func(h proc.RenderPassEncoder, index uint32, g proc.BindGroup, n uint32, offsets *uint32) {
		if p := m.renderPass(h); p.open("set bind group") {
			p.draw.setBindGroup(index, lookup[*bindGroup](m.objs, uintptr(g)), proc.Slice(offsets, n))
		}
	}
	t.RenderPassEncoderSetVertexBuffer = func(h proc.RenderPassEncoder, slot uint32, b proc.Buffer, offset uint64) {
		if p := m.renderPass(h); p.open("set vertex buffer") {
			p.draw.setVertexBuffer(slot, m.buffer(b), offset)
		}
	}
	t.RenderPassEncoderSetIndexBuffer = func(h proc.RenderPassEncoder, b proc.Buffer, offset uint64) {
		if p := m.renderPass(h); p.open("set index buffer") {
			p.draw.setIndexBuffer(m.buffer(b), offset)
		}
	}
	t.RenderPassEncoderDraw = func(h proc.RenderPassEncoder, _, _, _, _ uint32) {
		if p := m.renderPass(h); p.open("draw") {
			p.draw.ready("draw", false)
		}
	}
	t.RenderPassEncoderDrawIndexed = func(h proc.RenderPassEncoder, _, _, _ uint32, _ int32, _ uint32) {
		if p := m.renderPass(h); p.open("draw indexed") {
			p.draw.ready("draw indexed", true)
		}
	}
	t.RenderPassEncoderDrawIndirect = func(h proc.RenderPassEncoder, b proc.Buffer, offset uint64) {
		if p := m.renderPass(h); p.open("draw indirect") && p.draw.indirect("draw indirect", m.buffer(b), offset, drawIndirectSize) {
			p.draw.ready("draw indirect", false)
		}
	}
	t.RenderPassEncoderDrawIndexedIndirect = func(h proc.RenderPassEncoder, b proc.Buffer, offset uint64) {
		if p := m.renderPass(h); p.open("draw indexed indirect") && p.draw.indirect("draw indexed indirect", m.buffer(b), offset, drawIndexedIndirectSize) {
			p.draw.ready("draw indexed indirect", true)
		}
	}
	t.RenderPassEncoderSetViewport = func(h proc.RenderPassEncoder, _, _, w, hh, minDepth, maxDepth float32) {
		if p := m.renderPass(h); p.open("set viewport") {
			p.encoder.check(w >= 0 && hh >= 0, "set viewport: negative size")
			p.encoder.check(minDepth >= 0 && maxDepth <= 1 && minDepth <= maxDepth, "set viewport: depth range outside [0, 1]")
		}
	}
	t.RenderPassEncoderSetScissorRect = func(h proc.RenderPassEncoder, x, y, w, hh uint32) {
		p := m.renderPass(h)
		if !p.open("set scissor rect") || len(p.targets) == 0 {
			return
		}
		tw, th := p.targets[0].view.texture.levelSize(p.targets[0].view.baseMip)
		p.encoder.check(uint64(x)+uint64(w) <= uint64(tw) && uint64(y)+uint64(hh) <= uint64(th), "set scissor rect: rect exceeds the attachment")
	}
	t.RenderPassEncoderSetBlendColor = func(h proc.RenderPassEncoder, _ *proc.Color) {
		m.renderPass(h).open("set blend color")
	}
	t.RenderPassEncoderSetStencilReference = func(h proc.RenderPassEncoder, _ uint32) {
		m.renderPass(h).open("set stencil reference")
	}
	t.RenderPassEncoderExecuteBundles = func(h proc.RenderPassEncoder, n uint32, bundles *proc.RenderBundle) {
		p := m.renderPass(h)
		if !p.open("execute bundles") {
			return
		}
		for i, bh := range proc.Slice(bundles, n) {
			b := lookup[*renderBundle](m.objs, uintptr(bh))
			if p.encoder.must(!b.invalid, "execute bundles: bundle %d is invalid", i) {
				p.draw.draws += b.draws
			}
		}
		// Bundles reset the pass bindings.
		p.draw = newDrawState(&p.encoder.recorder)
	}
	t.RenderPassEncoderInsertDebugMarker = func(h proc.RenderPassEncoder, _ *byte) {
		m.renderPass(h).open("insert debug marker")
	}
	t.RenderPassEncoderPushDebugGroup = func(h proc.RenderPassEncoder, _ *byte) {
		if p := m.renderPass(h); p.open("push debug group") {
			p.encoder.pushDebugGroup()
		}
	}
	t.RenderPassEncoderPopDebugGroup = func(h proc.RenderPassEncoder) {
		if p := m.renderPass(h); p.open("pop debug group") {
			p.encoder.popDebugGroup()
		}
	}
	t.RenderPassEncoderEndPass = func(h proc.RenderPassEncoder) {
		p := m.renderPass(h)
		if !p.open("end pass") {
			return
		}
		p.ended = true
		p.encoder.state = encoderRecording
		var discard []attachment
		for _, a := range p.targets {
			if a.store == gputypes.StoreOpDiscard {
				discard = append(discard, a)
			}
		}
		if len(discard) == 0 {
			return
		}
		p.encoder.push(func() string {
			for _, a := range discard {
				fillView(a.view, make([]byte, a.view.texture.info.texelBytes))
			}
			return ""
		})
	}
}

func (m *Impl) computePassProcs(t *proc.Table) {
	_, t.ComputePassEncoderRelease = refcounted[proc.ComputePassEncoder, *computePass](m, nil)

	t.ComputePassEncoderSetPipeline = func(h proc.ComputePassEncoder, pl proc.ComputePipeline) {
		if p := m.computePass(h); p.open("set pipeline") {
			p.draw.setPipeline(lookup[*pipeline](m.objs, uintptr(pl)), true)
		}
	}
	t.ComputePassEncoderSetBindGroup = func(h proc.ComputePassEncoder, index uint32, g proc.BindGroup, n uint32, offsets *uint32) {
		if p := m.computePass(h); p.open("set bind group") {
			p.draw.setBindGroup(index, lookup[*bindGroup](m.objs, uintptr(g)), proc.Slice(offsets, n))
		}
	}
	t.ComputePassEncoderDispatch = func(h proc.ComputePassEncoder, _, _, _ uint32) {
		if p := m.computePass(h); p.open("dispatch") {
			p.draw.ready("dispatch", false)
		}
	}
	t.ComputePassEncoderDispatchIndirect = func(h proc.ComputePassEncoder, b proc.Buffer, offset uint64) {
		if p := m.computePass(h); p.open("dispatch indirect") && p.draw.indirect("dispatch indirect", m.buffer(b), offset, dispatchIndirectSize) {
			p.draw.ready("dispatch indirect", false)
		}
	}
	t.ComputePassEncoderInsertDebugMarker = func(h proc.ComputePassEncoder, _ *byte) {
		m.computePass(h).open("insert debug marker")
	}
	t.ComputePassEncoderPushDebugGroup = func(h proc.ComputePassEncoder, _ *byte) {
		if p := m.computePass(h); p.open("push debug group") {
			p.encoder.pushDebugGroup()
		}
	}
	t.ComputePassEncoderPopDebugGroup = func(h proc.ComputePassEncoder) {
		if p := m.computePass(h); p.open("pop debug group") {
			p.encoder.popDebugGroup()
		}
	}
	t.ComputePassEncoderEndPass = func(h proc.ComputePassEncoder) {
		if p := m.computePass(h); p.open("end pass") {
			p.ended = true
			p.encoder.state = encoderRecording
		}
	}
}
