// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package dusk

import (
	"sync/atomic"

	"github.com/gogpu/dusk/proc"
	"github.com/gogpu/gputypes"
)

// encoderState tracks the lifecycle of a CommandEncoder.
//
// State transitions:
//
//	Recording -> PassActive (BeginRenderPass / BeginComputePass)
//	PassActive -> Recording (pass End)
//	Recording -> Finished (Finish)
type encoderState int32

const (
	encoderRecording encoderState = iota
	encoderPassActive
	encoderFinished
)

func (s encoderState) String() string {
	switch s {
	case encoderRecording:
		return "Recording"
	case encoderPassActive:
		return "PassActive"
	case encoderFinished:
		return "Finished"
	default:
		return "Unknown"
	}
}

// CommandEncoder records commands into a CommandBuffer. It is not safe for
// concurrent use. While a pass is open the encoder is locked; it accepts no
// commands until the pass ends.
type CommandEncoder struct {
	h     handle[proc.CommandEncoder]
	dev   *Device
	state atomic.Int32
}

// CreateCommandEncoder creates a command encoder.
func (d *Device) CreateCommandEncoder(label string) *CommandEncoder {
	l := proc.LabelOf(label)
	raw := proc.CommandEncoderDescriptor{Label: l.Ptr()}
	var h proc.CommandEncoder
	d.lock(func(t *proc.Table, dev proc.Device) { h = t.DeviceCreateCommandEncoder(dev, &raw) })

	s := d.shared()
	e := &CommandEncoder{}
	e.h.set(h, &s.n.commandEncoder, s)
	e.dev = d.Clone()
	return e
}

// check panics unless the encoder is recording.
func (e *CommandEncoder) check(op string) {
	switch encoderState(e.state.Load()) {
	case encoderPassActive:
		precondition(ErrEncoderLocked, op)
	case encoderFinished:
		precondition(ErrEncoderFinished, op)
	}
}

// enterPass moves the encoder to PassActive.
func (e *CommandEncoder) enterPass(op string) {
	if !e.state.CompareAndSwap(int32(encoderRecording), int32(encoderPassActive)) {
		e.check(op)
	}
}

// abortPass returns the encoder to Recording when a pass begin did not
// complete.
func (e *CommandEncoder) abortPass(begun *bool) {
	if !*begun {
		e.exitPass()
	}
}

// exitPass returns the encoder to Recording.
func (e *CommandEncoder) exitPass() {
	e.state.CompareAndSwap(int32(encoderPassActive), int32(encoderRecording))
}

// native runs fn under the device lock with the raw encoder.
func (e *CommandEncoder) native(op string, fn func(t *proc.Table, raw proc.CommandEncoder)) {
	e.check(op)
	raw := e.h.get()
	t := e.dev.shared().n.table
	e.h.call(func() { fn(t, raw) })
}

// Release discards the encoder. Recorded commands are dropped unless
// Finish ran.
func (e *CommandEncoder) Release() {
	if e.h.release() {
		e.dev.Release()
	}
}

// Raw returns the native handle. Ownership stays with e.
func (e *CommandEncoder) Raw() proc.CommandEncoder { return e.h.get() }

func (e *CommandEncoder) String() string { return e.h.String() }

// CopyBufferToBuffer copies size bytes between buffers.
func (e *CommandEncoder) CopyBufferToBuffer(src *Buffer, srcOffset uint64, dst *Buffer, dstOffset, size uint64) {
	s, d := src.h.get(), dst.h.get()
	e.native("CopyBufferToBuffer", func(t *proc.Table, raw proc.CommandEncoder) {
		t.CommandEncoderCopyBufferToBuffer(raw, s, srcOffset, d, dstOffset, size)
	})
}

// BufferCopyView is the buffer side of a buffer/texture copy. RowPitch is
// the byte stride between rows; ImageHeight is the row count between
// images, with zero meaning the copy height.
type BufferCopyView struct {
	Buffer      *Buffer
	Offset      uint64
	RowPitch    uint32
	ImageHeight uint32
}

func (v *BufferCopyView) native() proc.BufferCopyView {
	return proc.BufferCopyView{Buffer: v.Buffer.h.get(), Offset: v.Offset, RowPitch: v.RowPitch, ImageHeight: v.ImageHeight}
}

// TextureCopyView is the texture side of a copy.
type TextureCopyView struct {
	Texture    *Texture
	MipLevel   uint32
	ArrayLayer uint32
	Origin     gputypes.Origin3D
}

func (v *TextureCopyView) native() proc.TextureCopyView {
	return proc.TextureCopyView{
		Texture:    v.Texture.h.get(),
		MipLevel:   v.MipLevel,
		ArrayLayer: v.ArrayLayer,
		Origin:     proc.Origin3D{X: v.Origin.X, Y: v.Origin.Y, Z: v.Origin.Z},
	}
}

// CopyBufferToTexture copies texel rows from a buffer into a texture.
func (e *CommandEncoder) CopyBufferToTexture(src *BufferCopyView, dst *TextureCopyView, size gputypes.Extent3D) {
	s, d, ext := src.native(), dst.native(), extent(size)
	e.native("CopyBufferToTexture", func(t *proc.Table, raw proc.CommandEncoder) {
		t.CommandEncoderCopyBufferToTexture(raw, &s, &d, &ext)
	})
}

// CopyTextureToBuffer copies texels from a texture into buffer rows.
func (e *CommandEncoder) CopyTextureToBuffer(src *TextureCopyView, dst *BufferCopyView, size gputypes.Extent3D) {
	s, d, ext := src.native(), dst.native(), extent(size)
	e.native("CopyTextureToBuffer", func(t *proc.Table, raw proc.CommandEncoder) {
		t.CommandEncoderCopyTextureToBuffer(raw, &s, &d, &ext)
	})
}

// CopyTextureToTexture copies texels between textures.
func (e *CommandEncoder) CopyTextureToTexture(src, dst *TextureCopyView, size gputypes.Extent3D) {
	s, d, ext := src.native(), dst.native(), extent(size)
	e.native("CopyTextureToTexture", func(t *proc.Table, raw proc.CommandEncoder) {
		t.CommandEncoderCopyTextureToTexture(raw, &s, &d, &ext)
	})
}

func (e *CommandEncoder) InsertDebugMarker(marker string) {
	l := proc.LabelOf(marker)
	e.native("InsertDebugMarker", func(t *proc.Table, raw proc.CommandEncoder) {
		t.CommandEncoderInsertDebugMarker(raw, l.Ptr())
	})
}

func (e *CommandEncoder) PushDebugGroup(group string) {
	l := proc.LabelOf(group)
	e.native("PushDebugGroup", func(t *proc.Table, raw proc.CommandEncoder) {
		t.CommandEncoderPushDebugGroup(raw, l.Ptr())
	})
}

func (e *CommandEncoder) PopDebugGroup() {
	e.native("PopDebugGroup", func(t *proc.Table, raw proc.CommandEncoder) {
		t.CommandEncoderPopDebugGroup(raw)
	})
}

// Finish ends recording and returns the command buffer. The encoder is
// consumed: it is released and any further use panics.
func (e *CommandEncoder) Finish(label string) *CommandBuffer {
	e.check("Finish")
	raw := e.h.get()
	if !e.state.CompareAndSwap(int32(encoderRecording), int32(encoderFinished)) {
		e.check("Finish")
	}
	l := proc.LabelOf(label)
	desc := proc.CommandBufferDescriptor{Label: l.Ptr()}
	s := e.dev.shared()
	var h proc.CommandBuffer
	e.h.call(func() { h = s.n.table.CommandEncoderFinish(raw, &desc) })

	cb := &CommandBuffer{}
	cb.h.set(h, &s.n.commandBuffer, s)
	cb.dev = e.dev.Clone()
	e.Release()
	return cb
}

// CommandBuffer is a finished list of commands ready for Queue.Submit.
type CommandBuffer struct {
	h   handle[proc.CommandBuffer]
	dev *Device
}

// Release drops the command buffer.
func (c *CommandBuffer) Release() {
	if c.h.release() {
		c.dev.Release()
	}
}

// Raw returns the native handle. Ownership stays with c.
func (c *CommandBuffer) Raw() proc.CommandBuffer { return c.h.get() }

func (c *CommandBuffer) String() string { return c.h.String() }
