// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package dusk

import (
	"testing"

	"github.com/gogpu/dusk/proc"
	"github.com/gogpu/gputypes"
)

func newStubModule(tb testing.TB, e *env) *ShaderModule {
	tb.Helper()
	mod, err := e.dev.CreateShaderModule("stub", spirvStub)
	if err != nil {
		tb.Fatalf("CreateShaderModule() error = %v", err)
	}
	tb.Cleanup(mod.Release)
	return mod
}

func TestRenderPipelineDefaults(t *testing.T) {
	e := newEnv(t)
	mod := newStubModule(t, e)

	var arena renderPipelineArena
	var label proc.Label
	raw, err := arena.marshal(&RenderPipelineDescriptor{
		Vertex:      ProgrammableStage{Module: mod, EntryPoint: "vs_main"},
		Fragment:    &ProgrammableStage{Module: mod, EntryPoint: "fs_main"},
		ColorStates: []ColorState{{Format: gputypes.TextureFormatRGBA8Unorm, ColorBlend: BlendOver, AlphaBlend: BlendReplace}},
	}, &label)
	if err != nil {
		t.Fatalf("marshal() error = %v", err)
	}
	if raw.SampleCount != 1 {
		t.Errorf("SampleCount = %d, want 1", raw.SampleCount)
	}
	if raw.SampleMask != ^uint32(0) {
		t.Errorf("SampleMask = %#x, want all bits", raw.SampleMask)
	}
	if raw.VertexState != nil || raw.RasterizationState != nil || raw.DepthStencilState != nil {
		t.Error("unset optional states were marshaled")
	}
	if got := proc.GoString(raw.FragmentStage.EntryPoint); got != "fs_main" {
		t.Errorf("fragment entry point = %q", got)
	}
	if got := proc.GoString(raw.VertexStage.EntryPoint); got != "vs_main" {
		t.Errorf("vertex entry point = %q", got)
	}
	cs := proc.Slice(raw.ColorStates, raw.ColorStateCount)
	if len(cs) != 1 || cs[0].ColorBlend.SrcFactor != uint32(gputypes.BlendFactorSrcAlpha) {
		t.Errorf("color states = %+v", cs)
	}
}

func TestRenderPipelineVertexState(t *testing.T) {
	e := newEnv(t)
	mod := newStubModule(t, e)

	var arena renderPipelineArena
	var label proc.Label
	raw, err := arena.marshal(&RenderPipelineDescriptor{
		Vertex: ProgrammableStage{Module: mod, EntryPoint: "main"},
		VertexState: &VertexState{
			IndexFormat: gputypes.IndexFormatUint16,
			VertexBuffers: []VertexBufferLayout{
				{ArrayStride: 16, Attributes: []VertexAttribute{
					{Format: gputypes.VertexFormatFloat32x2, ShaderLocation: 0},
					{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
				}},
				{ArrayStride: 4, StepMode: gputypes.VertexStepModeInstance, Attributes: []VertexAttribute{
					{Format: gputypes.VertexFormatUint32, ShaderLocation: 2},
				}},
			},
		},
		SampleCount: 4,
		SampleMask:  0x3,
	}, &label)
	if err != nil {
		t.Fatalf("marshal() error = %v", err)
	}
	if raw.SampleCount != 4 || raw.SampleMask != 0x3 {
		t.Errorf("SampleCount, SampleMask = %d, %#x", raw.SampleCount, raw.SampleMask)
	}
	buffers := proc.Slice(raw.VertexState.VertexBuffers, raw.VertexState.VertexBufferCount)
	if len(buffers) != 2 {
		t.Fatalf("vertex buffers = %d, want 2", len(buffers))
	}
	attrs := proc.Slice(buffers[0].Attributes, buffers[0].AttributeCount)
	if len(attrs) != 2 || attrs[1].Offset != 8 || attrs[1].ShaderLocation != 1 {
		t.Errorf("buffer 0 attributes = %+v", attrs)
	}
	if buffers[1].StepMode != uint32(gputypes.VertexStepModeInstance) {
		t.Errorf("buffer 1 step mode = %d", buffers[1].StepMode)
	}
}

func TestDrawWithBundle(t *testing.T) {
	e := newEnv(t)
	mod := newStubModule(t, e)

	pipeline, err := e.dev.CreateRenderPipeline(&RenderPipelineDescriptor{
		Label:             "triangle",
		Vertex:            ProgrammableStage{Module: mod, EntryPoint: "vs_main"},
		Fragment:          &ProgrammableStage{Module: mod, EntryPoint: "fs_main"},
		PrimitiveTopology: gputypes.PrimitiveTopologyTriangleList,
		Rasterization:     &RasterizationState{CullMode: gputypes.CullModeBack},
		ColorStates:       []ColorState{{Format: gputypes.TextureFormatRGBA8Unorm, ColorBlend: BlendReplace, AlphaBlend: BlendReplace}},
	})
	if err != nil {
		t.Fatalf("CreateRenderPipeline() error = %v", err)
	}
	defer pipeline.Release()

	vertices := e.dev.CreateBufferWithSize(64, gputypes.BufferUsageVertex)
	defer vertices.Release()
	indices := e.dev.CreateBufferWithSize(12, gputypes.BufferUsageIndex)
	defer indices.Release()
	args := DrawIndirectCommand{VertexCount: 3, InstanceCount: 1}.Bytes(nil)
	args = DrawIndexedIndirectCommand{IndexCount: 3, InstanceCount: 1}.Bytes(args)
	indirect := e.dev.CreateBufferWithData(args, gputypes.BufferUsageIndirect)
	defer indirect.Release()

	be, err := e.dev.CreateRenderBundleEncoder(&RenderBundleEncoderDescriptor{
		Label:        "bundle",
		ColorFormats: []gputypes.TextureFormat{gputypes.TextureFormatRGBA8Unorm},
	})
	if err != nil {
		t.Fatalf("CreateRenderBundleEncoder() error = %v", err)
	}
	be.SetPipeline(pipeline)
	be.SetVertexBuffer(0, vertices, 0)
	be.Draw(3, 1, 0, 0)
	bundle := be.Finish("bundle")
	defer bundle.Release()
	wantPanic(t, ErrEncoderFinished, func() { be.Draw(3, 1, 0, 0) })

	tex := e.dev.CreateTexture(&TextureDescriptor{
		Usage:     gputypes.TextureUsageRenderAttachment,
		Dimension: gputypes.TextureDimension2D,
		Size:      gputypes.Extent3D{Width: 4, Height: 4, DepthOrArrayLayers: 1},
		Format:    gputypes.TextureFormatRGBA8Unorm,
	})
	defer tex.Release()
	view := tex.CreateView(&TextureViewDescriptor{Label: "target"})
	defer view.Release()

	enc := e.dev.CreateCommandEncoder("draw")
	pass, err := enc.BeginRenderPass(&RenderPassDescriptor{
		ColorAttachments: []RenderPassColorAttachment{{View: view, LoadOp: gputypes.LoadOpClear, StoreOp: gputypes.StoreOpStore}},
	})
	if err != nil {
		t.Fatalf("BeginRenderPass() error = %v", err)
	}
	pass.SetPipeline(pipeline)
	pass.SetViewport(0, 0, 4, 4, 0, 1)
	pass.SetScissorRect(0, 0, 4, 4)
	pass.SetBlendColor(gputypes.Color{R: 1, G: 1, B: 1, A: 1})
	pass.SetStencilReference(1)
	pass.SetVertexBuffer(0, vertices, 0)
	pass.SetIndexBuffer(indices, 0)
	pass.Draw(3, 1, 0, 0)
	pass.DrawIndexed(3, 1, 0, 0, 0)
	pass.DrawIndirect(indirect, 0)
	pass.DrawIndexedIndirect(indirect, 16)
	if err := pass.ExecuteBundles(bundle); err != nil {
		t.Fatalf("ExecuteBundles() error = %v", err)
	}
	pass.End()
	e.submit(t, enc)
	e.wantNoErrors(t)
}
