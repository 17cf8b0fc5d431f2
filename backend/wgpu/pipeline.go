// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"slices"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/dusk/proc"
)

type shaderModule struct {
	device *device
	hal    hal.ShaderModule
}

type bindGroupLayout struct {
	device *device
	hal    hal.BindGroupLayout
}

type bindGroup struct {
	device *device
	hal    hal.BindGroup
}

// pipelineLayout keeps a reference on each of its bind group layouts so
// pipelines can hand them out again.
type pipelineLayout struct {
	device  *device
	hal     hal.PipelineLayout
	layouts []proc.BindGroupLayout
}

type computePipeline struct {
	device *device
	hal    hal.ComputePipeline
	layout proc.PipelineLayout
}

// stageMask returns the stages whose bits are set in mask.
func stageMask[S ~uint32](mask uint32, stages ...S) S {
	var out S
	for _, s := range stages {
		if mask&uint32(s) != 0 {
			out |= s
		}
	}
	return out
}

// layoutEntry expands a flattened binding into the HAL layout entry.
func layoutEntry(b *proc.BindGroupLayoutBinding) gputypes.BindGroupLayoutEntry {
	e := gputypes.BindGroupLayoutEntry{
		Binding:    b.Binding,
		Visibility: stageMask(b.Visibility, gputypes.ShaderStageVertex, gputypes.ShaderStageFragment, gputypes.ShaderStageCompute),
	}
	dim := gputypes.TextureViewDimension(b.TextureDimension)
	if dim == 0 {
		dim = gputypes.TextureViewDimension2D
	}
	sampleType := gputypes.TextureSampleTypeFloat
	switch b.TextureComponentType {
	case proc.TextureComponentTypeSint:
		sampleType = gputypes.TextureSampleTypeSint
	case proc.TextureComponentTypeUint:
		sampleType = gputypes.TextureSampleTypeUint
	}

	switch b.Type {
	case proc.BindingTypeUniformBuffer:
		e.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform, HasDynamicOffset: b.HasDynamicOffset}
	case proc.BindingTypeStorageBuffer:
		e.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage, HasDynamicOffset: b.HasDynamicOffset}
	case proc.BindingTypeReadonlyStorageBuffer:
		e.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage, HasDynamicOffset: b.HasDynamicOffset}
	case proc.BindingTypeSampler:
		e.Sampler = &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering}
	case proc.BindingTypeComparisonSampler:
		e.Sampler = &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeComparison}
	case proc.BindingTypeSampledTexture:
		e.Texture = &gputypes.TextureBindingLayout{SampleType: sampleType, ViewDimension: dim, Multisampled: b.Multisampled}
	case proc.BindingTypeStorageTexture:
		e.StorageTexture = &gputypes.StorageTextureBindingLayout{
			Access: gputypes.StorageTextureAccessReadWrite, Format: gputypes.TextureFormat(b.StorageTextureFormat), ViewDimension: dim,
		}
	case proc.BindingTypeReadonlyStorageTexture:
		e.StorageTexture = &gputypes.StorageTextureBindingLayout{
			Access: gputypes.StorageTextureAccessReadOnly, Format: gputypes.TextureFormat(b.StorageTextureFormat), ViewDimension: dim,
		}
	case proc.BindingTypeWriteonlyStorageTexture:
		e.StorageTexture = &gputypes.StorageTextureBindingLayout{
			Access: gputypes.StorageTextureAccessWriteOnly, Format: gputypes.TextureFormat(b.StorageTextureFormat), ViewDimension: dim,
		}
	}
	return e
}

// groupEntry resolves one bind group binding to HAL resources. It reports
// false after reporting an error.
func (m *Impl) groupEntry(d *device, b *proc.BindGroupBinding) (gputypes.BindGroupEntry, bool) {
	e := gputypes.BindGroupEntry{Binding: b.Binding}
	switch {
	case b.Buffer != 0:
		buf := m.buffer(b.Buffer)
		if !buf.usable("create bind group") ||
			!d.require(b.Offset <= buf.size, "create bind group: binding %d offset %d out of bounds", b.Binding, b.Offset) {
			return e, false
		}
		size := b.Size
		if size == 0 {
			size = buf.size - b.Offset
		}
		e.Resource = gputypes.BufferBinding{Buffer: buf.hal.NativeHandle(), Offset: b.Offset, Size: size}
	case b.Sampler != 0:
		s := lookup[*sampler](m, uintptr(b.Sampler))
		if !d.require(s.hal != nil, "create bind group: binding %d: sampler is invalid", b.Binding) {
			return e, false
		}
		e.Resource = gputypes.SamplerBinding{Sampler: s.hal.NativeHandle()}
	case b.TextureView != 0:
		v := lookup[*textureView](m, uintptr(b.TextureView))
		if !d.require(v.hal != nil, "create bind group: binding %d: texture view is invalid", b.Binding) {
			return e, false
		}
		e.Resource = gputypes.TextureViewBinding{TextureView: v.hal.NativeHandle()}
	default:
		d.report(proc.ErrorTypeValidation, "create bind group: binding has no resource")
		return e, false
	}
	return e, true
}

func (m *Impl) pipelineProcs(t *proc.Table) {
	t.DeviceCreateShaderModule = func(h proc.Device, desc *proc.ShaderModuleDescriptor) proc.ShaderModule {
		d := m.device(h)
		s := &shaderModule{device: d}
		if d.alive("create shader module") {
			raw, err := d.hal.CreateShaderModule(&hal.ShaderModuleDescriptor{
				Label:  proc.GoString(desc.Label),
				Source: hal.ShaderSource{SPIRV: slices.Clone(proc.Slice(desc.Code, desc.CodeSize))},
			})
			if d.check(err, "create shader module") {
				s.hal = raw
			}
		}
		return proc.ShaderModule(m.objs.Add(s))
	}
	t.ShaderModuleReference, t.ShaderModuleRelease = refcounted[proc.ShaderModule](m, func(s *shaderModule) {
		if s.hal != nil {
			s.device.hal.DestroyShaderModule(s.hal)
		}
	})

	t.DeviceCreateBindGroupLayout = func(h proc.Device, desc *proc.BindGroupLayoutDescriptor) proc.BindGroupLayout {
		d := m.device(h)
		l := &bindGroupLayout{device: d}
		if d.alive("create bind group layout") {
			bindings := proc.Slice(desc.Bindings, desc.BindingCount)
			entries := make([]gputypes.BindGroupLayoutEntry, len(bindings))
			for i := range bindings {
				entries[i] = layoutEntry(&bindings[i])
			}
			raw, err := d.hal.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
				Label:   proc.GoString(desc.Label),
				Entries: entries,
			})
			if d.check(err, "create bind group layout") {
				l.hal = raw
			}
		}
		return proc.BindGroupLayout(m.objs.Add(l))
	}
	t.BindGroupLayoutReference, t.BindGroupLayoutRelease = refcounted[proc.BindGroupLayout](m, func(l *bindGroupLayout) {
		if l.hal != nil {
			l.device.hal.DestroyBindGroupLayout(l.hal)
		}
	})

	t.DeviceCreateBindGroup = func(h proc.Device, desc *proc.BindGroupDescriptor) proc.BindGroup {
		d := m.device(h)
		g := &bindGroup{device: d}
		layout := lookup[*bindGroupLayout](m, uintptr(desc.Layout))
		if !d.alive("create bind group") || !d.require(layout.hal != nil, "create bind group: layout is invalid") {
			return proc.BindGroup(m.objs.Add(g))
		}
		bindings := proc.Slice(desc.Bindings, desc.BindingCount)
		entries := make([]gputypes.BindGroupEntry, len(bindings))
		for i := range bindings {
			e, ok := m.groupEntry(d, &bindings[i])
			if !ok {
				return proc.BindGroup(m.objs.Add(g))
			}
			entries[i] = e
		}
		raw, err := d.hal.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:   proc.GoString(desc.Label),
			Layout:  layout.hal,
			Entries: entries,
		})
		if d.check(err, "create bind group") {
			g.hal = raw
		}
		return proc.BindGroup(m.objs.Add(g))
	}
	t.BindGroupReference, t.BindGroupRelease = refcounted[proc.BindGroup](m, func(g *bindGroup) {
		if g.hal != nil {
			g.device.hal.DestroyBindGroup(g.hal)
		}
	})

	t.DeviceCreatePipelineLayout = func(h proc.Device, desc *proc.PipelineLayoutDescriptor) proc.PipelineLayout {
		d := m.device(h)
		pl := &pipelineLayout{device: d}
		handles := proc.Slice(desc.BindGroupLayouts, desc.BindGroupLayoutCount)
		layouts := make([]hal.BindGroupLayout, len(handles))
		valid := d.alive("create pipeline layout")
		for i, lh := range handles {
			m.objs.Reference(uintptr(lh))
			pl.layouts = append(pl.layouts, lh)
			layouts[i] = lookup[*bindGroupLayout](m, uintptr(lh)).hal
			valid = valid && d.require(layouts[i] != nil, "create pipeline layout: bind group layout %d is invalid", i)
		}
		if valid {
			raw, err := d.hal.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
				Label:            proc.GoString(desc.Label),
				BindGroupLayouts: layouts,
			})
			if d.check(err, "create pipeline layout") {
				pl.hal = raw
			}
		}
		return proc.PipelineLayout(m.objs.Add(pl))
	}
	t.PipelineLayoutReference, t.PipelineLayoutRelease = refcounted[proc.PipelineLayout](m, func(pl *pipelineLayout) {
		if pl.hal != nil {
			pl.device.hal.DestroyPipelineLayout(pl.hal)
		}
		for _, lh := range pl.layouts {
			t.BindGroupLayoutRelease(lh)
		}
	})

	t.DeviceCreateComputePipeline = func(h proc.Device, desc *proc.ComputePipelineDescriptor) proc.ComputePipeline {
		d := m.device(h)
		p := &computePipeline{device: d}
		mod := lookup[*shaderModule](m, uintptr(desc.ComputeStage.Module))
		if !d.alive("create compute pipeline") ||
			!d.require(desc.Layout != 0, "create compute pipeline: implicit pipeline layouts are not supported") ||
			!d.require(mod.hal != nil, "create compute pipeline: shader module is invalid") {
			return proc.ComputePipeline(m.objs.Add(p))
		}
		pl := lookup[*pipelineLayout](m, uintptr(desc.Layout))
		if !d.require(pl.hal != nil, "create compute pipeline: pipeline layout is invalid") {
			return proc.ComputePipeline(m.objs.Add(p))
		}
		m.objs.Reference(uintptr(desc.Layout))
		p.layout = desc.Layout
		raw, err := d.hal.CreateComputePipeline(&hal.ComputePipelineDescriptor{
			Label:   proc.GoString(desc.Label),
			Layout:  pl.hal,
			Compute: hal.ComputeState{Module: mod.hal, EntryPoint: proc.GoString(desc.ComputeStage.EntryPoint)},
		})
		if d.check(err, "create compute pipeline") {
			p.hal = raw
		}
		return proc.ComputePipeline(m.objs.Add(p))
	}
	t.ComputePipelineReference, t.ComputePipelineRelease = refcounted[proc.ComputePipeline](m, func(p *computePipeline) {
		if p.hal != nil {
			p.device.hal.DestroyComputePipeline(p.hal)
		}
		if p.layout != 0 {
			t.PipelineLayoutRelease(p.layout)
		}
	})

	t.ComputePipelineGetBindGroupLayout = func(h proc.ComputePipeline, index uint32) proc.BindGroupLayout {
		p := lookup[*computePipeline](m, uintptr(h))
		d := p.device
		if p.layout != 0 {
			pl := lookup[*pipelineLayout](m, uintptr(p.layout))
			if int(index) < len(pl.layouts) {
				lh := pl.layouts[index]
				m.objs.Reference(uintptr(lh))
				return lh
			}
		}
		d.report(proc.ErrorTypeValidation, "get bind group layout: index out of range")
		return proc.BindGroupLayout(m.objs.Add(&bindGroupLayout{device: d}))
	}
}
