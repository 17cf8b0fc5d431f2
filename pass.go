// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package dusk

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/dusk/proc"
	"github.com/gogpu/gputypes"
)

// dynamicOffsets marshals bind group dynamic offsets.
func dynamicOffsets(offsets []uint32) (uint32, *uint32, error) {
	n, err := count("dynamic offsets", len(offsets))
	if err != nil {
		return 0, nil, fmt.Errorf("set bind group: %w", err)
	}
	return n, proc.First(offsets), nil
}

// RenderPassColorAttachment is one color target of a render pass.
type RenderPassColorAttachment struct {
	View          *TextureView
	ResolveTarget *TextureView
	LoadOp        gputypes.LoadOp
	StoreOp       gputypes.StoreOp
	ClearColor    gputypes.Color
}

// RenderPassDepthStencilAttachment is the depth-stencil target of a render
// pass.
type RenderPassDepthStencilAttachment struct {
	View           *TextureView
	DepthLoadOp    gputypes.LoadOp
	DepthStoreOp   gputypes.StoreOp
	ClearDepth     float32
	StencilLoadOp  gputypes.LoadOp
	StencilStoreOp gputypes.StoreOp
	ClearStencil   uint32
}

// RenderPassDescriptor describes the targets of a render pass.
type RenderPassDescriptor struct {
	Label                  string
	ColorAttachments       []RenderPassColorAttachment
	DepthStencilAttachment *RenderPassDepthStencilAttachment
}

type renderPassArena struct {
	colors       []proc.RenderPassColorAttachmentDescriptor
	depthStencil proc.RenderPassDepthStencilAttachmentDescriptor
}

func (a *renderPassArena) marshal(desc *RenderPassDescriptor, label *proc.Label) (proc.RenderPassDescriptor, error) {
	n, err := count("color attachments", len(desc.ColorAttachments))
	if err != nil {
		return proc.RenderPassDescriptor{}, err
	}
	a.colors = make([]proc.RenderPassColorAttachmentDescriptor, len(desc.ColorAttachments))
	for i, c := range desc.ColorAttachments {
		a.colors[i] = proc.RenderPassColorAttachmentDescriptor{
			Attachment: c.View.h.get(),
			LoadOp:     uint32(c.LoadOp),
			StoreOp:    uint32(c.StoreOp),
			ClearColor: proc.Color{R: c.ClearColor.R, G: c.ClearColor.G, B: c.ClearColor.B, A: c.ClearColor.A},
		}
		if c.ResolveTarget != nil {
			a.colors[i].ResolveTarget = c.ResolveTarget.h.get()
		}
	}
	raw := proc.RenderPassDescriptor{Label: label.Ptr(), ColorAttachmentCount: n, ColorAttachments: proc.First(a.colors)}
	if ds := desc.DepthStencilAttachment; ds != nil {
		a.depthStencil = proc.RenderPassDepthStencilAttachmentDescriptor{
			Attachment:     ds.View.h.get(),
			DepthLoadOp:    uint32(ds.DepthLoadOp),
			DepthStoreOp:   uint32(ds.DepthStoreOp),
			ClearDepth:     ds.ClearDepth,
			StencilLoadOp:  uint32(ds.StencilLoadOp),
			StencilStoreOp: uint32(ds.StencilStoreOp),
			ClearStencil:   ds.ClearStencil,
		}
		raw.DepthStencilAttachment = &a.depthStencil
	}
	return raw, nil
}

// RenderPassEncoder records draw commands into an open render pass. Its
// commands do not take the device lock; the pass belongs to one goroutine.
type RenderPassEncoder struct {
	h      handle[proc.RenderPassEncoder]
	parent *CommandEncoder
	t      *proc.Table
	ended  atomic.Bool
}

// BeginRenderPass opens a render pass. The encoder is locked until the pass
// ends.
func (e *CommandEncoder) BeginRenderPass(desc *RenderPassDescriptor) (*RenderPassEncoder, error) {
	e.check("BeginRenderPass")
	var arena renderPassArena
	label := proc.LabelOf(desc.Label)
	raw, err := arena.marshal(desc, &label)
	if err != nil {
		return nil, fmt.Errorf("begin render pass %q: %w", desc.Label, err)
	}

	enc := e.h.get()
	e.enterPass("BeginRenderPass")
	begun := false
	defer e.abortPass(&begun)
	s := e.dev.shared()
	var h proc.RenderPassEncoder
	e.h.call(func() { h = s.n.table.CommandEncoderBeginRenderPass(enc, &raw) })

	p := &RenderPassEncoder{parent: e, t: s.n.table}
	p.h.set(h, &s.n.renderPassEncoder, s)
	begun = true
	return p, nil
}

// live returns the raw pass and panics once the pass has ended.
func (p *RenderPassEncoder) live(op string) proc.RenderPassEncoder {
	if p.ended.Load() {
		precondition(ErrPassEnded, op)
	}
	return p.h.get()
}

func (p *RenderPassEncoder) SetPipeline(pipeline *RenderPipeline) {
	p.t.RenderPassEncoderSetPipeline(p.live("SetPipeline"), pipeline.h.get())
}

// SetBindGroup binds group at index with the given dynamic offsets.
func (p *RenderPassEncoder) SetBindGroup(index uint32, group *BindGroup, offsets []uint32) error {
	raw := p.live("SetBindGroup")
	n, first, err := dynamicOffsets(offsets)
	if err != nil {
		return err
	}
	p.t.RenderPassEncoderSetBindGroup(raw, index, group.h.get(), n, first)
	return nil
}

func (p *RenderPassEncoder) SetVertexBuffer(slot uint32, buffer *Buffer, offset uint64) {
	p.t.RenderPassEncoderSetVertexBuffer(p.live("SetVertexBuffer"), slot, buffer.h.get(), offset)
}

func (p *RenderPassEncoder) SetIndexBuffer(buffer *Buffer, offset uint64) {
	p.t.RenderPassEncoderSetIndexBuffer(p.live("SetIndexBuffer"), buffer.h.get(), offset)
}

func (p *RenderPassEncoder) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.t.RenderPassEncoderDraw(p.live("Draw"), vertexCount, instanceCount, firstVertex, firstInstance)
}

func (p *RenderPassEncoder) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.t.RenderPassEncoderDrawIndexed(p.live("DrawIndexed"), indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

// DrawIndirect draws with arguments read from buffer at offset, laid out
// as a DrawIndirectCommand.
func (p *RenderPassEncoder) DrawIndirect(buffer *Buffer, offset uint64) {
	p.t.RenderPassEncoderDrawIndirect(p.live("DrawIndirect"), buffer.h.get(), offset)
}

// DrawIndexedIndirect draws with arguments read from buffer at offset,
// laid out as a DrawIndexedIndirectCommand.
func (p *RenderPassEncoder) DrawIndexedIndirect(buffer *Buffer, offset uint64) {
	p.t.RenderPassEncoderDrawIndexedIndirect(p.live("DrawIndexedIndirect"), buffer.h.get(), offset)
}

func (p *RenderPassEncoder) SetViewport(x, y, width, height, minDepth, maxDepth float32) {
	p.t.RenderPassEncoderSetViewport(p.live("SetViewport"), x, y, width, height, minDepth, maxDepth)
}

func (p *RenderPassEncoder) SetScissorRect(x, y, width, height uint32) {
	p.t.RenderPassEncoderSetScissorRect(p.live("SetScissorRect"), x, y, width, height)
}

func (p *RenderPassEncoder) SetBlendColor(c gputypes.Color) {
	p.t.RenderPassEncoderSetBlendColor(p.live("SetBlendColor"), &proc.Color{R: c.R, G: c.G, B: c.B, A: c.A})
}

func (p *RenderPassEncoder) SetStencilReference(ref uint32) {
	p.t.RenderPassEncoderSetStencilReference(p.live("SetStencilReference"), ref)
}

// ExecuteBundles replays render bundles into the pass.
func (p *RenderPassEncoder) ExecuteBundles(bundles ...*RenderBundle) error {
	raw := p.live("ExecuteBundles")
	n, err := count("bundles", len(bundles))
	if err != nil {
		return fmt.Errorf("execute bundles: %w", err)
	}
	handles := make([]proc.RenderBundle, len(bundles))
	for i, b := range bundles {
		handles[i] = b.h.get()
	}
	p.t.RenderPassEncoderExecuteBundles(raw, n, proc.First(handles))
	return nil
}

func (p *RenderPassEncoder) InsertDebugMarker(marker string) {
	l := proc.LabelOf(marker)
	p.t.RenderPassEncoderInsertDebugMarker(p.live("InsertDebugMarker"), l.Ptr())
}

func (p *RenderPassEncoder) PushDebugGroup(group string) {
	l := proc.LabelOf(group)
	p.t.RenderPassEncoderPushDebugGroup(p.live("PushDebugGroup"), l.Ptr())
}

func (p *RenderPassEncoder) PopDebugGroup() {
	p.t.RenderPassEncoderPopDebugGroup(p.live("PopDebugGroup"))
}

// End closes the pass, unlocks the parent encoder and releases the pass.
func (p *RenderPassEncoder) End() {
	raw := p.live("End")
	if !p.ended.CompareAndSwap(false, true) {
		precondition(ErrPassEnded, "End")
	}
	p.t.RenderPassEncoderEndPass(raw)
	p.parent.exitPass()
	p.h.release()
}

// EndPass is End.
func (p *RenderPassEncoder) EndPass() { p.End() }

// Release abandons the pass without ending it. The parent encoder stays
// locked and can only be released.
func (p *RenderPassEncoder) Release() {
	p.ended.Store(true)
	p.h.release()
}

// Raw returns the native handle. Ownership stays with p.
func (p *RenderPassEncoder) Raw() proc.RenderPassEncoder { return p.h.get() }

// ComputePassDescriptor describes a compute pass.
type ComputePassDescriptor struct {
	Label string
}

// ComputePassEncoder records dispatches into an open compute pass. Its
// commands do not take the device lock.
type ComputePassEncoder struct {
	h      handle[proc.ComputePassEncoder]
	parent *CommandEncoder
	t      *proc.Table
	ended  atomic.Bool
}

// BeginComputePass opens a compute pass. desc may be nil. The encoder is
// locked until the pass ends.
func (e *CommandEncoder) BeginComputePass(desc *ComputePassDescriptor) *ComputePassEncoder {
	e.check("BeginComputePass")
	var label proc.Label
	if desc != nil {
		label = proc.LabelOf(desc.Label)
	}
	raw := proc.ComputePassDescriptor{Label: label.Ptr()}

	enc := e.h.get()
	e.enterPass("BeginComputePass")
	begun := false
	defer e.abortPass(&begun)
	s := e.dev.shared()
	var h proc.ComputePassEncoder
	e.h.call(func() { h = s.n.table.CommandEncoderBeginComputePass(enc, &raw) })

	p := &ComputePassEncoder{parent: e, t: s.n.table}
	p.h.set(h, &s.n.computePassEncoder, s)
	begun = true
	return p
}

func (p *ComputePassEncoder) live(op string) proc.ComputePassEncoder {
	if p.ended.Load() {
		precondition(ErrPassEnded, op)
	}
	return p.h.get()
}

func (p *ComputePassEncoder) SetPipeline(pipeline *ComputePipeline) {
	p.t.ComputePassEncoderSetPipeline(p.live("SetPipeline"), pipeline.h.get())
}

// SetBindGroup binds group at index with the given dynamic offsets.
func (p *ComputePassEncoder) SetBindGroup(index uint32, group *BindGroup, offsets []uint32) error {
	raw := p.live("SetBindGroup")
	n, first, err := dynamicOffsets(offsets)
	if err != nil {
		return err
	}
	p.t.ComputePassEncoderSetBindGroup(raw, index, group.h.get(), n, first)
	return nil
}

func (p *ComputePassEncoder) Dispatch(x, y, z uint32) {
	p.t.ComputePassEncoderDispatch(p.live("Dispatch"), x, y, z)
}

// DispatchIndirect dispatches with arguments read from buffer at offset,
// laid out as a DispatchIndirectCommand.
func (p *ComputePassEncoder) DispatchIndirect(buffer *Buffer, offset uint64) {
	p.t.ComputePassEncoderDispatchIndirect(p.live("DispatchIndirect"), buffer.h.get(), offset)
}

func (p *ComputePassEncoder) InsertDebugMarker(marker string) {
	l := proc.LabelOf(marker)
	p.t.ComputePassEncoderInsertDebugMarker(p.live("InsertDebugMarker"), l.Ptr())
}

func (p *ComputePassEncoder) PushDebugGroup(group string) {
	l := proc.LabelOf(group)
	p.t.ComputePassEncoderPushDebugGroup(p.live("PushDebugGroup"), l.Ptr())
}

func (p *ComputePassEncoder) PopDebugGroup() {
	p.t.ComputePassEncoderPopDebugGroup(p.live("PopDebugGroup"))
}

// End closes the pass, unlocks the parent encoder and releases the pass.
func (p *ComputePassEncoder) End() {
	raw := p.live("End")
	if !p.ended.CompareAndSwap(false, true) {
		precondition(ErrPassEnded, "End")
	}
	p.t.ComputePassEncoderEndPass(raw)
	p.parent.exitPass()
	p.h.release()
}

// EndPass is End.
func (p *ComputePassEncoder) EndPass() { p.End() }

// Release abandons the pass without ending it. The parent encoder stays
// locked and can only be released.
func (p *ComputePassEncoder) Release() {
	p.ended.Store(true)
	p.h.release()
}

// Raw returns the native handle. Ownership stays with p.
func (p *ComputePassEncoder) Raw() proc.ComputePassEncoder { return p.h.get() }
