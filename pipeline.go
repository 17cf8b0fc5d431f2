// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package dusk

import (
	"fmt"

	"github.com/gogpu/dusk/proc"
	"github.com/gogpu/gputypes"
)

// StencilOperation is applied to the stencil buffer after a stencil test.
type StencilOperation uint32

const (
	StencilOperationKeep StencilOperation = iota
	StencilOperationZero
	StencilOperationReplace
	StencilOperationInvert
	StencilOperationIncrementClamp
	StencilOperationDecrementClamp
	StencilOperationIncrementWrap
	StencilOperationDecrementWrap
)

// ProgrammableStage names a shader entry point.
type ProgrammableStage struct {
	Module     *ShaderModule
	EntryPoint string
}

// native marshals s. The returned descriptor references name, which must
// stay alive until the native call returns.
func (s *ProgrammableStage) native(name *proc.Label) proc.ProgrammableStageDescriptor {
	*name = proc.LabelOf(s.EntryPoint)
	return proc.ProgrammableStageDescriptor{Module: s.Module.h.get(), EntryPoint: name.Ptr()}
}

// ComputePipelineDescriptor describes a compute pipeline. A nil Layout
// lets the backend derive one from the shader.
type ComputePipelineDescriptor struct {
	Label   string
	Layout  *PipelineLayout
	Compute ProgrammableStage
}

func layoutHandle(l *PipelineLayout) proc.PipelineLayout {
	if l == nil {
		return 0
	}
	return l.h.get()
}

// ComputePipeline is a compiled compute pipeline.
type ComputePipeline struct {
	h   handle[proc.ComputePipeline]
	dev *Device
}

// CreateComputePipeline creates a compute pipeline.
func (d *Device) CreateComputePipeline(desc *ComputePipelineDescriptor) *ComputePipeline {
	var entry proc.Label
	label := proc.LabelOf(desc.Label)
	raw := proc.ComputePipelineDescriptor{
		Label:        label.Ptr(),
		Layout:       layoutHandle(desc.Layout),
		ComputeStage: desc.Compute.native(&entry),
	}
	var h proc.ComputePipeline
	d.lock(func(t *proc.Table, dev proc.Device) { h = t.DeviceCreateComputePipeline(dev, &raw) })

	s := d.shared()
	p := &ComputePipeline{}
	p.h.set(h, &s.n.computePipeline, s)
	p.dev = d.Clone()
	return p
}

// Clone returns a new reference to the same pipeline.
func (p *ComputePipeline) Clone() *ComputePipeline {
	c := &ComputePipeline{}
	p.h.clone(&c.h)
	c.dev = p.dev.Clone()
	return c
}

// Release drops the reference. Further calls are no-ops.
func (p *ComputePipeline) Release() {
	if p.h.release() {
		p.dev.Release()
	}
}

// Raw returns the native handle. Ownership stays with p.
func (p *ComputePipeline) Raw() proc.ComputePipeline { return p.h.get() }

// GetBindGroupLayout returns the layout of bind group index.
func (p *ComputePipeline) GetBindGroupLayout(index uint32) *BindGroupLayout {
	raw := p.h.get()
	t := p.dev.shared().n.table
	var l proc.BindGroupLayout
	p.h.call(func() { l = t.ComputePipelineGetBindGroupLayout(raw, index) })
	return p.dev.wrapBindGroupLayout(l)
}

// VertexAttribute places one shader input within a vertex buffer.
type VertexAttribute struct {
	Format         gputypes.VertexFormat
	Offset         uint64
	ShaderLocation uint32
}

// VertexBufferLayout describes one vertex buffer slot.
type VertexBufferLayout struct {
	ArrayStride uint64
	StepMode    gputypes.VertexStepMode
	Attributes  []VertexAttribute
}

// VertexState describes the vertex buffers of a render pipeline.
type VertexState struct {
	IndexFormat   gputypes.IndexFormat
	VertexBuffers []VertexBufferLayout
}

// RasterizationState controls primitive rasterization.
type RasterizationState struct {
	FrontFace           gputypes.FrontFace
	CullMode            gputypes.CullMode
	DepthBias           int32
	DepthBiasSlopeScale float32
	DepthBiasClamp      float32
}

// StencilFaceState is the stencil test for one face.
type StencilFaceState struct {
	Compare     gputypes.CompareFunction
	FailOp      StencilOperation
	DepthFailOp StencilOperation
	PassOp      StencilOperation
}

func (s StencilFaceState) native() proc.StencilStateFaceDescriptor {
	return proc.StencilStateFaceDescriptor{
		Compare:     uint32(s.Compare),
		FailOp:      uint32(s.FailOp),
		DepthFailOp: uint32(s.DepthFailOp),
		PassOp:      uint32(s.PassOp),
	}
}

// DepthStencilState describes depth and stencil testing.
type DepthStencilState struct {
	Format            gputypes.TextureFormat
	DepthWriteEnabled bool
	DepthCompare      gputypes.CompareFunction
	StencilFront      StencilFaceState
	StencilBack       StencilFaceState
	StencilReadMask   uint32
	StencilWriteMask  uint32
}

// BlendComponent is the blend equation for the color or alpha channel.
type BlendComponent struct {
	Operation gputypes.BlendOperation
	SrcFactor gputypes.BlendFactor
	DstFactor gputypes.BlendFactor
}

func (b BlendComponent) native() proc.BlendDescriptor {
	return proc.BlendDescriptor{Operation: uint32(b.Operation), SrcFactor: uint32(b.SrcFactor), DstFactor: uint32(b.DstFactor)}
}

// BlendReplace writes the source unchanged.
var BlendReplace = BlendComponent{
	Operation: gputypes.BlendOperationAdd,
	SrcFactor: gputypes.BlendFactorOne,
	DstFactor: gputypes.BlendFactorZero,
}

// BlendOver is source-over alpha blending.
var BlendOver = BlendComponent{
	Operation: gputypes.BlendOperationAdd,
	SrcFactor: gputypes.BlendFactorSrcAlpha,
	DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
}

// ColorState describes one color target of a render pipeline.
type ColorState struct {
	Format     gputypes.TextureFormat
	AlphaBlend BlendComponent
	ColorBlend BlendComponent
	WriteMask  gputypes.ColorWriteMask
}

// RenderPipelineDescriptor describes a render pipeline. A nil Fragment
// creates a depth-only pipeline. Zero SampleCount means 1 and zero
// SampleMask means all samples.
type RenderPipelineDescriptor struct {
	Label                  string
	Layout                 *PipelineLayout
	Vertex                 ProgrammableStage
	Fragment               *ProgrammableStage
	VertexState            *VertexState
	PrimitiveTopology      gputypes.PrimitiveTopology
	Rasterization          *RasterizationState
	SampleCount            uint32
	DepthStencil           *DepthStencilState
	ColorStates            []ColorState
	SampleMask             uint32
	AlphaToCoverageEnabled bool
}

// RenderPipeline is a compiled render pipeline.
type RenderPipeline struct {
	h   handle[proc.RenderPipeline]
	dev *Device
}

// renderPipelineArena keeps marshaled arrays alive for one native call.
type renderPipelineArena struct {
	vertex, fragment proc.Label
	buffers          []proc.VertexBufferLayoutDescriptor
	attributes       [][]proc.VertexAttributeDescriptor
	vertexState      proc.VertexStateDescriptor
	rasterization    proc.RasterizationStateDescriptor
	depthStencil     proc.DepthStencilStateDescriptor
	fragmentStage    proc.ProgrammableStageDescriptor
	colorStates      []proc.ColorStateDescriptor
}

func (a *renderPipelineArena) marshalVertexState(vs *VertexState) error {
	n, err := count("vertex buffers", len(vs.VertexBuffers))
	if err != nil {
		return err
	}
	a.buffers = make([]proc.VertexBufferLayoutDescriptor, len(vs.VertexBuffers))
	a.attributes = make([][]proc.VertexAttributeDescriptor, len(vs.VertexBuffers))
	for i, vb := range vs.VertexBuffers {
		na, err := count(fmt.Sprintf("vertex buffer %d attributes", i), len(vb.Attributes))
		if err != nil {
			return err
		}
		attrs := make([]proc.VertexAttributeDescriptor, len(vb.Attributes))
		for j, at := range vb.Attributes {
			attrs[j] = proc.VertexAttributeDescriptor{Format: uint32(at.Format), Offset: at.Offset, ShaderLocation: at.ShaderLocation}
		}
		a.attributes[i] = attrs
		a.buffers[i] = proc.VertexBufferLayoutDescriptor{
			ArrayStride:    vb.ArrayStride,
			StepMode:       uint32(vb.StepMode),
			AttributeCount: na,
			Attributes:     proc.First(attrs),
		}
	}
	a.vertexState = proc.VertexStateDescriptor{
		IndexFormat:       uint32(vs.IndexFormat),
		VertexBufferCount: n,
		VertexBuffers:     proc.First(a.buffers),
	}
	return nil
}

func (a *renderPipelineArena) marshal(desc *RenderPipelineDescriptor, label *proc.Label) (proc.RenderPipelineDescriptor, error) {
	raw := proc.RenderPipelineDescriptor{
		Label:                  label.Ptr(),
		Layout:                 layoutHandle(desc.Layout),
		VertexStage:            desc.Vertex.native(&a.vertex),
		PrimitiveTopology:      uint32(desc.PrimitiveTopology),
		SampleCount:            max(desc.SampleCount, 1),
		SampleMask:             desc.SampleMask,
		AlphaToCoverageEnabled: desc.AlphaToCoverageEnabled,
	}
	if raw.SampleMask == 0 {
		raw.SampleMask = ^uint32(0)
	}
	if desc.Fragment != nil {
		a.fragmentStage = desc.Fragment.native(&a.fragment)
		raw.FragmentStage = &a.fragmentStage
	}
	if desc.VertexState != nil {
		if err := a.marshalVertexState(desc.VertexState); err != nil {
			return raw, err
		}
		raw.VertexState = &a.vertexState
	}
	if r := desc.Rasterization; r != nil {
		a.rasterization = proc.RasterizationStateDescriptor{
			FrontFace:           uint32(r.FrontFace),
			CullMode:            uint32(r.CullMode),
			DepthBias:           r.DepthBias,
			DepthBiasSlopeScale: r.DepthBiasSlopeScale,
			DepthBiasClamp:      r.DepthBiasClamp,
		}
		raw.RasterizationState = &a.rasterization
	}
	if ds := desc.DepthStencil; ds != nil {
		a.depthStencil = proc.DepthStencilStateDescriptor{
			Format:            uint32(ds.Format),
			DepthWriteEnabled: ds.DepthWriteEnabled,
			DepthCompare:      uint32(ds.DepthCompare),
			StencilFront:      ds.StencilFront.native(),
			StencilBack:       ds.StencilBack.native(),
			StencilReadMask:   ds.StencilReadMask,
			StencilWriteMask:  ds.StencilWriteMask,
		}
		raw.DepthStencilState = &a.depthStencil
	}

	n, err := count("color states", len(desc.ColorStates))
	if err != nil {
		return raw, err
	}
	a.colorStates = make([]proc.ColorStateDescriptor, len(desc.ColorStates))
	for i, cs := range desc.ColorStates {
		a.colorStates[i] = proc.ColorStateDescriptor{
			Format:     uint32(cs.Format),
			AlphaBlend: cs.AlphaBlend.native(),
			ColorBlend: cs.ColorBlend.native(),
			WriteMask:  uint32(cs.WriteMask),
		}
	}
	raw.ColorStateCount = n
	raw.ColorStates = proc.First(a.colorStates)
	return raw, nil
}

// CreateRenderPipeline creates a render pipeline.
func (d *Device) CreateRenderPipeline(desc *RenderPipelineDescriptor) (*RenderPipeline, error) {
	var arena renderPipelineArena
	label := proc.LabelOf(desc.Label)
	raw, err := arena.marshal(desc, &label)
	if err != nil {
		return nil, fmt.Errorf("create render pipeline %q: %w", desc.Label, err)
	}
	var h proc.RenderPipeline
	d.lock(func(t *proc.Table, dev proc.Device) { h = t.DeviceCreateRenderPipeline(dev, &raw) })

	s := d.shared()
	p := &RenderPipeline{}
	p.h.set(h, &s.n.renderPipeline, s)
	p.dev = d.Clone()
	return p, nil
}

// Clone returns a new reference to the same pipeline.
func (p *RenderPipeline) Clone() *RenderPipeline {
	c := &RenderPipeline{}
	p.h.clone(&c.h)
	c.dev = p.dev.Clone()
	return c
}

// Release drops the reference. Further calls are no-ops.
func (p *RenderPipeline) Release() {
	if p.h.release() {
		p.dev.Release()
	}
}

// Raw returns the native handle. Ownership stays with p.
func (p *RenderPipeline) Raw() proc.RenderPipeline { return p.h.get() }

// GetBindGroupLayout returns the layout of bind group index.
func (p *RenderPipeline) GetBindGroupLayout(index uint32) *BindGroupLayout {
	raw := p.h.get()
	t := p.dev.shared().n.table
	var l proc.BindGroupLayout
	p.h.call(func() { l = t.RenderPipelineGetBindGroupLayout(raw, index) })
	return p.dev.wrapBindGroupLayout(l)
}
