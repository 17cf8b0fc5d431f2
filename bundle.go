// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package dusk

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/dusk/proc"
	"github.com/gogpu/gputypes"
)

// RenderBundleEncoderDescriptor describes the targets a bundle is
// compatible with. Zero SampleCount means 1.
type RenderBundleEncoderDescriptor struct {
	Label              string
	ColorFormats       []gputypes.TextureFormat
	DepthStencilFormat gputypes.TextureFormat
	SampleCount        uint32
}

// RenderBundleEncoder records draws into a reusable RenderBundle. Like
// pass encoders its commands do not take the device lock.
type RenderBundleEncoder struct {
	h        handle[proc.RenderBundleEncoder]
	dev      *Device
	t        *proc.Table
	finished atomic.Bool
}

// CreateRenderBundleEncoder creates a render bundle encoder.
func (d *Device) CreateRenderBundleEncoder(desc *RenderBundleEncoderDescriptor) (*RenderBundleEncoder, error) {
	n, err := count("color formats", len(desc.ColorFormats))
	if err != nil {
		return nil, fmt.Errorf("create render bundle encoder %q: %w", desc.Label, err)
	}
	formats := make([]uint32, len(desc.ColorFormats))
	for i, f := range desc.ColorFormats {
		formats[i] = uint32(f)
	}
	label := proc.LabelOf(desc.Label)
	raw := proc.RenderBundleEncoderDescriptor{
		Label:              label.Ptr(),
		ColorFormatsCount:  n,
		ColorFormats:       proc.First(formats),
		DepthStencilFormat: uint32(desc.DepthStencilFormat),
		SampleCount:        max(desc.SampleCount, 1),
	}
	var h proc.RenderBundleEncoder
	d.lock(func(t *proc.Table, dev proc.Device) { h = t.DeviceCreateRenderBundleEncoder(dev, &raw) })

	s := d.shared()
	e := &RenderBundleEncoder{t: s.n.table}
	e.h.set(h, &s.n.renderBundleEncoder, s)
	e.dev = d.Clone()
	return e, nil
}

func (e *RenderBundleEncoder) live(op string) proc.RenderBundleEncoder {
	if e.finished.Load() {
		precondition(ErrEncoderFinished, op)
	}
	return e.h.get()
}

func (e *RenderBundleEncoder) SetPipeline(pipeline *RenderPipeline) {
	e.t.RenderBundleEncoderSetPipeline(e.live("SetPipeline"), pipeline.h.get())
}

// SetBindGroup binds group at index with the given dynamic offsets.
func (e *RenderBundleEncoder) SetBindGroup(index uint32, group *BindGroup, offsets []uint32) error {
	raw := e.live("SetBindGroup")
	n, first, err := dynamicOffsets(offsets)
	if err != nil {
		return err
	}
	e.t.RenderBundleEncoderSetBindGroup(raw, index, group.h.get(), n, first)
	return nil
}

func (e *RenderBundleEncoder) SetVertexBuffer(slot uint32, buffer *Buffer, offset uint64) {
	e.t.RenderBundleEncoderSetVertexBuffer(e.live("SetVertexBuffer"), slot, buffer.h.get(), offset)
}

func (e *RenderBundleEncoder) SetIndexBuffer(buffer *Buffer, offset uint64) {
	e.t.RenderBundleEncoderSetIndexBuffer(e.live("SetIndexBuffer"), buffer.h.get(), offset)
}

func (e *RenderBundleEncoder) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	e.t.RenderBundleEncoderDraw(e.live("Draw"), vertexCount, instanceCount, firstVertex, firstInstance)
}

func (e *RenderBundleEncoder) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	e.t.RenderBundleEncoderDrawIndexed(e.live("DrawIndexed"), indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

func (e *RenderBundleEncoder) DrawIndirect(buffer *Buffer, offset uint64) {
	e.t.RenderBundleEncoderDrawIndirect(e.live("DrawIndirect"), buffer.h.get(), offset)
}

func (e *RenderBundleEncoder) DrawIndexedIndirect(buffer *Buffer, offset uint64) {
	e.t.RenderBundleEncoderDrawIndexedIndirect(e.live("DrawIndexedIndirect"), buffer.h.get(), offset)
}

func (e *RenderBundleEncoder) InsertDebugMarker(marker string) {
	l := proc.LabelOf(marker)
	e.t.RenderBundleEncoderInsertDebugMarker(e.live("InsertDebugMarker"), l.Ptr())
}

func (e *RenderBundleEncoder) PushDebugGroup(group string) {
	l := proc.LabelOf(group)
	e.t.RenderBundleEncoderPushDebugGroup(e.live("PushDebugGroup"), l.Ptr())
}

func (e *RenderBundleEncoder) PopDebugGroup() {
	e.t.RenderBundleEncoderPopDebugGroup(e.live("PopDebugGroup"))
}

// Finish ends recording and returns the bundle. The encoder is consumed.
func (e *RenderBundleEncoder) Finish(label string) *RenderBundle {
	raw := e.live("Finish")
	if !e.finished.CompareAndSwap(false, true) {
		precondition(ErrEncoderFinished, "Finish")
	}
	l := proc.LabelOf(label)
	desc := proc.RenderBundleDescriptor{Label: l.Ptr()}
	var h proc.RenderBundle
	e.h.call(func() { h = e.t.RenderBundleEncoderFinish(raw, &desc) })

	s := e.dev.shared()
	b := &RenderBundle{}
	b.h.set(h, &s.n.renderBundle, s)
	b.dev = e.dev.Clone()
	e.Release()
	return b
}

// Release discards the encoder.
func (e *RenderBundleEncoder) Release() {
	e.finished.Store(true)
	if e.h.release() {
		e.dev.Release()
	}
}

// Raw returns the native handle. Ownership stays with e.
func (e *RenderBundleEncoder) Raw() proc.RenderBundleEncoder { return e.h.get() }

// RenderBundle is a recorded set of draws replayed by
// RenderPassEncoder.ExecuteBundles.
type RenderBundle struct {
	h   handle[proc.RenderBundle]
	dev *Device
}

// Clone returns a new reference to the same bundle.
func (b *RenderBundle) Clone() *RenderBundle {
	c := &RenderBundle{}
	b.h.clone(&c.h)
	c.dev = b.dev.Clone()
	return c
}

// Release drops the reference. Further calls are no-ops.
func (b *RenderBundle) Release() {
	if b.h.release() {
		b.dev.Release()
	}
}

// Raw returns the native handle. Ownership stays with b.
func (b *RenderBundle) Raw() proc.RenderBundle { return b.h.get() }
