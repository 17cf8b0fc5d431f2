// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package soft

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/dusk/proc"
)

type encoderState uint8

const (
	encoderRecording encoderState = iota
	encoderPassOpen
	encoderFinished
)

// command runs at submit time and returns a validation message on failure.
type command func() string

// recorder collects commands and the first recording error. Errors surface
// when recording finishes, the way native encoders defer them.
type recorder struct {
	device     *device
	cmds       []command
	err        string
	debugDepth int
}

func (r *recorder) fail(format string, args ...any) {
	if r.err == "" {
		r.err = fmt.Sprintf(format, args...)
	}
}

// check records a skippable validation failure.
func (r *recorder) check(ok bool, format string, args ...any) bool {
	if ok || r.device.skipValidation {
		return true
	}
	r.fail(format, args...)
	return false
}

// must records a failure that validation toggles cannot skip.
func (r *recorder) must(ok bool, format string, args ...any) bool {
	if !ok {
		r.fail(format, args...)
	}
	return ok
}

func (r *recorder) push(c command) { r.cmds = append(r.cmds, c) }

func (r *recorder) pushDebugGroup() { r.debugDepth++ }

func (r *recorder) popDebugGroup() {
	if r.must(r.debugDepth > 0, "pop debug group: no group pushed") {
		r.debugDepth--
	}
}

type commandEncoder struct {
	recorder
	state encoderState
}

type commandBuffer struct {
	device    *device
	cmds      []command
	invalid   bool
	submitted bool
}

func (m *Impl) encoder(h proc.CommandEncoder) *commandEncoder {
	return lookup[*commandEncoder](m.objs, uintptr(h))
}

// recording checks that e accepts a new command.
func (e *commandEncoder) recording(what string) bool {
	switch e.state {
	case encoderPassOpen:
		e.fail("%s: a pass is open", what)
		return false
	case encoderFinished:
		e.fail("%s: encoder is finished", what)
		return false
	}
	return true
}

// bufferState reports why b cannot be used at submit time, or "".
func bufferState(b *buffer, what string) string {
	switch {
	case b.invalid:
		return what + ": buffer is invalid"
	case b.destroyed:
		return what + ": buffer is destroyed"
	case b.mapped || b.mapPending:
		return what + ": buffer is mapped"
	}
	return ""
}

func textureState(t *texture, what string) string {
	switch {
	case t.invalid:
		return what + ": texture is invalid"
	case t.destroyed:
		return what + ": texture is destroyed"
	}
	return ""
}

func (m *Impl) encoderProcs(t *proc.Table) {
	t.DeviceCreateCommandEncoder = func(h proc.Device, _ *proc.CommandEncoderDescriptor) proc.CommandEncoder {
		d := m.device(h)
		defer d.enter()()
		return proc.CommandEncoder(m.objs.Add(&commandEncoder{recorder: recorder{device: d}}))
	}
	_, t.CommandEncoderRelease = refcounted[proc.CommandEncoder, *commandEncoder](m, nil)

	t.CommandEncoderCopyBufferToBuffer = func(h proc.CommandEncoder, src proc.Buffer, srcOff uint64, dst proc.Buffer, dstOff uint64, size uint64) {
		e := m.encoder(h)
		if !e.recording("copy buffer to buffer") {
			return
		}
		sb, db := m.buffer(src), m.buffer(dst)
		ok := e.must(!sb.invalid && !db.invalid, "copy buffer to buffer: invalid buffer") &&
			e.check(hasBufferUsage(sb.usage, gputypes.BufferUsageCopySrc), "copy buffer to buffer: source lacks CopySrc usage") &&
			e.check(hasBufferUsage(db.usage, gputypes.BufferUsageCopyDst), "copy buffer to buffer: destination lacks CopyDst usage") &&
			e.check(srcOff%4 == 0 && dstOff%4 == 0 && size%4 == 0, "copy buffer to buffer: offsets and size must be multiples of 4") &&
			e.check(sb != db, "copy buffer to buffer: source and destination are the same buffer") &&
			e.must(srcOff <= uint64(len(sb.data)) && size <= uint64(len(sb.data))-srcOff, "copy buffer to buffer: source range out of bounds") &&
			e.must(dstOff <= uint64(len(db.data)) && size <= uint64(len(db.data))-dstOff, "copy buffer to buffer: destination range out of bounds")
		if !ok {
			return
		}
		e.push(func() string {
			for _, b := range []*buffer{sb, db} {
				if msg := bufferState(b, "copy buffer to buffer"); msg != "" {
					return msg
				}
			}
			copy(db.data[dstOff:dstOff+size], sb.data[srcOff:srcOff+size])
			return ""
		})
	}

	t.CommandEncoderCopyBufferToTexture = func(h proc.CommandEncoder, src *proc.BufferCopyView, dst *proc.TextureCopyView, size *proc.Extent3D) {
		e := m.encoder(h)
		if !e.recording("copy buffer to texture") {
			return
		}
		sb, dt := m.buffer(src.Buffer), m.texture(dst.Texture)
		if !e.check(hasBufferUsage(sb.usage, gputypes.BufferUsageCopySrc), "copy buffer to texture: source lacks CopySrc usage") ||
			!e.check(hasTextureUsage(dt.usage, gputypes.TextureUsageCopyDst), "copy buffer to texture: destination lacks CopyDst usage") {
			return
		}
		r, ok := m.copyRegion(e, "copy buffer to texture", src, sb, dst, dt, size)
		if !ok {
			return
		}
		e.push(func() string {
			if msg := bufferState(sb, "copy buffer to texture"); msg != "" {
				return msg
			}
			if msg := textureState(dt, "copy buffer to texture"); msg != "" {
				return msg
			}
			r.bufferToTexture()
			return ""
		})
	}

	t.CommandEncoderCopyTextureToBuffer = func(h proc.CommandEncoder, src *proc.TextureCopyView, dst *proc.BufferCopyView, size *proc.Extent3D) {
		e := m.encoder(h)
		if !e.recording("copy texture to buffer") {
			return
		}
		st, db := m.texture(src.Texture), m.buffer(dst.Buffer)
		if !e.check(hasTextureUsage(st.usage, gputypes.TextureUsageCopySrc), "copy texture to buffer: source lacks CopySrc usage") ||
			!e.check(hasBufferUsage(db.usage, gputypes.BufferUsageCopyDst), "copy texture to buffer: destination lacks CopyDst usage") {
			return
		}
		r, ok := m.copyRegion(e, "copy texture to buffer", dst, db, src, st, size)
		if !ok {
			return
		}
		e.push(func() string {
			if msg := bufferState(db, "copy texture to buffer"); msg != "" {
				return msg
			}
			if msg := textureState(st, "copy texture to buffer"); msg != "" {
				return msg
			}
			r.textureToBuffer()
			return ""
		})
	}

	t.CommandEncoderCopyTextureToTexture = func(h proc.CommandEncoder, src, dst *proc.TextureCopyView, size *proc.Extent3D) {
		e := m.encoder(h)
		if !e.recording("copy texture to texture") {
			return
		}
		st, dt := m.texture(src.Texture), m.texture(dst.Texture)
		ok := e.must(!st.invalid && !dt.invalid, "copy texture to texture: invalid texture") &&
			e.check(hasTextureUsage(st.usage, gputypes.TextureUsageCopySrc), "copy texture to texture: source lacks CopySrc usage") &&
			e.check(hasTextureUsage(dt.usage, gputypes.TextureUsageCopyDst), "copy texture to texture: destination lacks CopyDst usage") &&
			e.must(st.format == dt.format, "copy texture to texture: formats differ") &&
			e.must(src.MipLevel < st.mipLevels && dst.MipLevel < dt.mipLevels, "copy texture to texture: mip level out of range") &&
			e.must(texelRangeOK(st, src, size) && texelRangeOK(dt, dst, size), "copy texture to texture: region out of bounds")
		if !ok {
			return
		}
		srcView, dstView, extent := *src, *dst, *size
		e.push(func() string {
			if msg := textureState(st, "copy texture to texture"); msg != "" {
				return msg
			}
			if msg := textureState(dt, "copy texture to texture"); msg != "" {
				return msg
			}
			n := int(extent.Width * st.info.texelBytes)
			for z := range max(extent.Depth, 1) {
				for y := range extent.Height {
					so := st.offset(srcView.MipLevel, srcView.ArrayLayer+srcView.Origin.Z+z, srcView.Origin.X, srcView.Origin.Y+y)
					do := dt.offset(dstView.MipLevel, dstView.ArrayLayer+dstView.Origin.Z+z, dstView.Origin.X, dstView.Origin.Y+y)
					copy(dt.levels[dstView.MipLevel][do:do+n], st.levels[srcView.MipLevel][so:so+n])
				}
			}
			return ""
		})
	}

	t.CommandEncoderInsertDebugMarker = func(h proc.CommandEncoder, _ *byte) {
		m.encoder(h).recording("insert debug marker")
	}
	t.CommandEncoderPushDebugGroup = func(h proc.CommandEncoder, _ *byte) {
		if e := m.encoder(h); e.recording("push debug group") {
			e.pushDebugGroup()
		}
	}
	t.CommandEncoderPopDebugGroup = func(h proc.CommandEncoder) {
		if e := m.encoder(h); e.recording("pop debug group") {
			e.popDebugGroup()
		}
	}

	t.CommandEncoderFinish = func(h proc.CommandEncoder, _ *proc.CommandBufferDescriptor) proc.CommandBuffer {
		e := m.encoder(h)
		d := e.device
		defer d.enter()()
		e.recording("finish")
		e.must(e.debugDepth == 0, "finish: %d debug groups still open", e.debugDepth)
		e.state = encoderFinished

		cb := &commandBuffer{device: d, cmds: e.cmds}
		e.cmds = nil
		if e.err != "" {
			d.report(proc.ErrorTypeValidation, e.err)
			cb.invalid = true
		}
		return proc.CommandBuffer(m.objs.Add(cb))
	}

	_, t.CommandBufferRelease = refcounted[proc.CommandBuffer, *commandBuffer](m, nil)
}

// copyRegion validates a buffer/texture copy recorded on e. Reports raised
// while validating become the encoder error.
func (m *Impl) copyRegion(e *commandEncoder, what string, bv *proc.BufferCopyView, b *buffer,
	tv *proc.TextureCopyView, t *texture, size *proc.Extent3D,
) (copyRegion, bool) {
	if !e.must(!b.invalid, "%s: buffer is invalid", what) || !e.must(!t.invalid, "%s: texture is invalid", what) {
		return copyRegion{}, false
	}
	defer e.device.enter()()
	// Route device-level reports into the encoder error.
	saved := e.device.errorCallback
	savedData := e.device.errorUserdata
	e.device.errorCallback = func(_ proc.ErrorType, msg *byte, _ uintptr) {
		e.fail("%s", proc.GoString(msg))
	}
	defer func() {
		e.device.errorCallback = saved
		e.device.errorUserdata = savedData
	}()
	return validateBufferTextureCopy(e.device, what, bv, b, tv, t, size)
}

// texelRangeOK checks that a copy of size at v fits in t.
func texelRangeOK(t *texture, v *proc.TextureCopyView, size *proc.Extent3D) bool {
	if v.MipLevel >= t.mipLevels {
		return false
	}
	w, h := t.levelSize(v.MipLevel)
	return uint64(v.Origin.X)+uint64(size.Width) <= uint64(w) &&
		uint64(v.Origin.Y)+uint64(size.Height) <= uint64(h) &&
		uint64(v.ArrayLayer)+uint64(v.Origin.Z)+uint64(max(size.Depth, 1)) <= uint64(t.slices)
}
