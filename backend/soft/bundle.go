// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package soft

import (
	"github.com/gogpu/dusk/proc"
)

type renderBundleEncoder struct {
	recorder
	draw     drawState
	formats  []uint32
	finished bool
}

type renderBundle struct {
	draws   int
	formats []uint32
	invalid bool
}

func (m *Impl) bundleEncoder(h proc.RenderBundleEncoder) *renderBundleEncoder {
	return lookup[*renderBundleEncoder](m.objs, uintptr(h))
}

func (b *renderBundleEncoder) open(what string) bool {
	return b.must(!b.finished, "%s: render bundle encoder is finished", what)
}

func (m *Impl) bundleProcs(t *proc.Table) {
	t.DeviceCreateRenderBundleEncoder = func(h proc.Device, desc *proc.RenderBundleEncoderDescriptor) proc.RenderBundleEncoder {
		d := m.device(h)
		defer d.enter()()
		b := &renderBundleEncoder{
			recorder: recorder{device: d},
			formats:  append([]uint32(nil), proc.Slice(desc.ColorFormats, desc.ColorFormatsCount)...),
		}
		b.draw = newDrawState(&b.recorder)
		for i, f := range b.formats {
			if _, ok := textureFormatInfo(f); !ok {
				b.fail("create render bundle encoder: color format %d (%d) not supported", i, f)
			}
		}
		return proc.RenderBundleEncoder(m.objs.Add(b))
	}
	_, t.RenderBundleEncoderRelease = refcounted[proc.RenderBundleEncoder, *renderBundleEncoder](m, nil)

	t.RenderBundleEncoderSetPipeline = func(h proc.RenderBundleEncoder, pl proc.RenderPipeline) {
		if b := m.bundleEncoder(h); b.open("set pipeline") {
			b.draw.setPipeline(lookup[*pipeline](m.objs, uintptr(pl)), false)
		}
	}
	t.RenderBundleEncoderSetBindGroup = func(h proc.RenderBundleEncoder, index uint32, g proc.BindGroup, n uint32, offsets *uint32) {
		if b := m.bundleEncoder(h); b.open("set bind group") {
			b.draw.setBindGroup(index, lookup[*bindGroup](m.objs, uintptr(g)), proc.Slice(offsets, n))
		}
	}
	t.RenderBundleEncoderSetVertexBuffer = func(h proc.RenderBundleEncoder, slot uint32, buf proc.Buffer, offset uint64) {
		if b := m.bundleEncoder(h); b.open("set vertex buffer") {
			b.draw.setVertexBuffer(slot, m.buffer(buf), offset)
		}
	}
	t.RenderBundleEncoderSetIndexBuffer = func(h proc.RenderBundleEncoder, buf proc.Buffer, offset uint64) {
		if b := m.bundleEncoder(h); b.open("set index buffer") {
			b.draw.setIndexBuffer(m.buffer(buf), offset)
		}
	}
	t.RenderBundleEncoderDraw = func(h proc.RenderBundleEncoder, _, _, _, _ uint32) {
		if b := m.bundleEncoder(h); b.open("draw") {
			b.draw.ready("draw", false)
		}
	}
	t.RenderBundleEncoderDrawIndexed = func(h proc.RenderBundleEncoder, _, _, _ uint32, _ int32, _ uint32) {
		if b := m.bundleEncoder(h); b.open("draw indexed") {
			b.draw.ready("draw indexed", true)
		}
	}
	t.RenderBundleEncoderDrawIndirect = func(h proc.RenderBundleEncoder, buf proc.Buffer, offset uint64) {
		if b := m.bundleEncoder(h); b.open("draw indirect") && b.draw.indirect("draw indirect", m.buffer(buf), offset, drawIndirectSize) {
			b.draw.ready("draw indirect", false)
		}
	}
	t.RenderBundleEncoderDrawIndexedIndirect = func(h proc.RenderBundleEncoder, buf proc.Buffer, offset uint64) {
		if b := m.bundleEncoder(h); b.open("draw indexed indirect") && b.draw.indirect("draw indexed indirect", m.buffer(buf), offset, drawIndexedIndirectSize) {
			b.draw.ready("draw indexed indirect", true)
		}
	}
	t.RenderBundleEncoderInsertDebugMarker = func(h proc.RenderBundleEncoder, _ *byte) {
		m.bundleEncoder(h).open("insert debug marker")
	}
	t.RenderBundleEncoderPushDebugGroup = func(h proc.RenderBundleEncoder, _ *byte) {
		if b := m.bundleEncoder(h); b.open("push debug group") {
			b.pushDebugGroup()
		}
	}
	t.RenderBundleEncoderPopDebugGroup = func(h proc.RenderBundleEncoder) {
		if b := m.bundleEncoder(h); b.open("pop debug group") {
			b.popDebugGroup()
		}
	}
	t.RenderBundleEncoderFinish = func(h proc.RenderBundleEncoder, _ *proc.RenderBundleDescriptor) proc.RenderBundle {
		b := m.bundleEncoder(h)
		d := b.device
		defer d.enter()()
		b.open("finish")
		b.must(b.debugDepth == 0, "finish render bundle: %d debug groups still open", b.debugDepth)
		b.finished = true

		bundle := &renderBundle{draws: b.draw.draws, formats: b.formats}
		if b.err != "" {
			d.report(proc.ErrorTypeValidation, b.err)
			bundle.invalid = true
		}
		return proc.RenderBundle(m.objs.Add(bundle))
	}
	t.RenderBundleReference, t.RenderBundleRelease = refcounted[proc.RenderBundle, *renderBundle](m, nil)
}
