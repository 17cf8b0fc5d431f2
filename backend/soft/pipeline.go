// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package soft

import (
	"slices"

	"github.com/gogpu/dusk/proc"
)

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203

type sampler struct {
	compare uint32
}

type shaderModule struct {
	code    []uint32
	invalid bool
}

type bindGroupLayout struct {
	bindings []proc.BindGroupLayoutBinding
	invalid  bool
}

type bindGroupEntry struct {
	binding uint32
	buffer  *buffer
	offset  uint64
	size    uint64
	sampler *sampler
	view    *textureView
}

type bindGroup struct {
	layout  *bindGroupLayout
	entries []bindGroupEntry
	invalid bool
}

type pipelineLayout struct {
	// groups holds a native reference to each bind group layout.
	groups  []proc.BindGroupLayout
	invalid bool
}

type pipeline struct {
	device     *device
	layout     *pipelineLayout
	layoutRef  proc.PipelineLayout
	entryPoint string
	compute    bool
	invalid    bool
}

func (l *bindGroupLayout) find(binding uint32) (proc.BindGroupLayoutBinding, bool) {
	for _, b := range l.bindings {
		if b.Binding == binding {
			return b, true
		}
	}
	return proc.BindGroupLayoutBinding{}, false
}

func (d *device) newBindGroupLayout(desc *proc.BindGroupLayoutDescriptor) *bindGroupLayout {
	l := &bindGroupLayout{bindings: slices.Clone(proc.Slice(desc.Bindings, desc.BindingCount))}
	seen := make(map[uint32]bool, len(l.bindings))
	for _, b := range l.bindings {
		ok := d.validate(!seen[b.Binding], "create bind group layout: duplicate binding %d", b.Binding) &&
			d.validate(b.Type <= proc.BindingTypeWriteonlyStorageTexture, "create bind group layout: unknown binding type %d", b.Type) &&
			d.validate(!b.HasDynamicOffset || b.Type.IsBuffer(), "create bind group layout: binding %d: dynamic offsets require a buffer binding", b.Binding) &&
			d.validate(!b.Multisampled || b.Type == proc.BindingTypeSampledTexture, "create bind group layout: binding %d: only sampled textures can be multisampled", b.Binding)
		if ok && (b.Type == proc.BindingTypeReadonlyStorageTexture || b.Type == proc.BindingTypeWriteonlyStorageTexture) {
			_, known := textureFormatInfo(b.StorageTextureFormat)
			ok = d.validate(known, "create bind group layout: binding %d: storage texture format %d not supported", b.Binding, b.StorageTextureFormat)
		}
		if !ok {
			l.invalid = true
		}
		seen[b.Binding] = true
	}
	return l
}

func (m *Impl) newBindGroup(d *device, desc *proc.BindGroupDescriptor) *bindGroup {
	layout := lookup[*bindGroupLayout](m.objs, uintptr(desc.Layout))
	g := &bindGroup{layout: layout}
	entries := proc.Slice(desc.Bindings, desc.BindingCount)
	if !d.require(!layout.invalid, "create bind group: layout is invalid") ||
		!d.validate(len(entries) == len(layout.bindings), "create bind group: %d entries for %d layout bindings", len(entries), len(layout.bindings)) {
		g.invalid = true
		return g
	}

	for _, e := range entries {
		lb, ok := layout.find(e.Binding)
		if !d.require(ok, "create bind group: binding %d not in layout", e.Binding) {
			g.invalid = true
			continue
		}
		entry := bindGroupEntry{binding: e.Binding, offset: e.Offset, size: e.Size}
		switch {
		case lb.Type.IsBuffer():
			if !d.require(e.Buffer != 0, "create bind group: binding %d needs a buffer", e.Binding) {
				g.invalid = true
				continue
			}
			entry.buffer = lookup[*buffer](m.objs, uintptr(e.Buffer))
			n := uint64(len(entry.buffer.data))
			if entry.size == 0 && entry.offset <= n {
				entry.size = n - entry.offset
			}
			if !d.require(entry.offset <= n && entry.size <= n-entry.offset, "create bind group: binding %d: buffer range out of bounds", e.Binding) {
				g.invalid = true
			}
		case lb.Type.IsSampler():
			if !d.require(e.Sampler != 0, "create bind group: binding %d needs a sampler", e.Binding) {
				g.invalid = true
				continue
			}
			entry.sampler = lookup[*sampler](m.objs, uintptr(e.Sampler))
		default:
			if !d.require(e.TextureView != 0, "create bind group: binding %d needs a texture view", e.Binding) {
				g.invalid = true
				continue
			}
			entry.view = lookup[*textureView](m.objs, uintptr(e.TextureView))
		}
		g.entries = append(g.entries, entry)
	}
	return g
}

func (m *Impl) newPipeline(d *device, label string, layout proc.PipelineLayout, stage proc.ProgrammableStageDescriptor, compute bool) *pipeline {
	p := &pipeline{device: d, entryPoint: proc.GoString(stage.EntryPoint), compute: compute}
	if layout != 0 {
		p.layout = lookup[*pipelineLayout](m.objs, uintptr(layout))
		m.objs.Reference(uintptr(layout))
		p.layoutRef = layout
	}
	ok := d.require(stage.Module != 0, "create pipeline %q: missing shader module", label)
	if ok {
		mod := lookup[*shaderModule](m.objs, uintptr(stage.Module))
		ok = d.require(!mod.invalid, "create pipeline %q: shader module is invalid", label) &&
			d.validate(p.entryPoint != "", "create pipeline %q: empty entry point", label)
	}
	if p.layout != nil && p.layout.invalid {
		ok = d.require(false, "create pipeline %q: layout is invalid", label)
	}
	p.invalid = !ok
	return p
}

func (m *Impl) releasePipeline(p *pipeline) {
	if p.layoutRef != 0 {
		m.releasePipelineLayout(p.layoutRef)
	}
}

// releasePipelineLayout drops one reference to h. The last one also drops
// the layout's bind group layouts.
func (m *Impl) releasePipelineLayout(h proc.PipelineLayout) {
	obj, dead := m.objs.Release(uintptr(h))
	if !dead {
		return
	}
	for _, g := range obj.(*pipelineLayout).groups {
		m.objs.Release(uintptr(g))
	}
}

// bindGroupLayoutAt returns a new reference to the layout of group index.
func (m *Impl) bindGroupLayoutAt(p *pipeline, index uint32) proc.BindGroupLayout {
	d := p.device
	defer d.enter()()
	if !d.require(p.layout != nil && int(index) < len(p.layout.groups),
		"get bind group layout: pipeline has no bind group %d", index) {
		return proc.BindGroupLayout(m.objs.Add(&bindGroupLayout{invalid: true}))
	}
	h := p.layout.groups[index]
	m.objs.Reference(uintptr(h))
	return h
}

func (m *Impl) pipelineProcs(t *proc.Table) {
	t.DeviceCreateSampler = func(h proc.Device, desc *proc.SamplerDescriptor) proc.Sampler {
		d := m.device(h)
		defer d.enter()()
		d.validate(desc.LodMinClamp <= desc.LodMaxClamp, "create sampler %q: lod min clamp above max", proc.GoString(desc.Label))
		return proc.Sampler(m.objs.Add(&sampler{compare: desc.Compare}))
	}
	t.SamplerReference, t.SamplerRelease = refcounted[proc.Sampler, *sampler](m, nil)

	t.DeviceCreateShaderModule = func(h proc.Device, desc *proc.ShaderModuleDescriptor) proc.ShaderModule {
		d := m.device(h)
		defer d.enter()()
		code := slices.Clone(proc.Slice(desc.Code, desc.CodeSize))
		mod := &shaderModule{code: code}
		mod.invalid = !d.require(len(code) >= 5, "create shader module %q: SPIR-V header truncated", proc.GoString(desc.Label)) ||
			!d.require(code[0] == spirvMagic, "create shader module %q: bad SPIR-V magic %#x", proc.GoString(desc.Label), code[0])
		return proc.ShaderModule(m.objs.Add(mod))
	}
	t.ShaderModuleReference, t.ShaderModuleRelease = refcounted[proc.ShaderModule, *shaderModule](m, nil)

	t.DeviceCreateBindGroupLayout = func(h proc.Device, desc *proc.BindGroupLayoutDescriptor) proc.BindGroupLayout {
		d := m.device(h)
		defer d.enter()()
		return proc.BindGroupLayout(m.objs.Add(d.newBindGroupLayout(desc)))
	}
	t.BindGroupLayoutReference, t.BindGroupLayoutRelease = refcounted[proc.BindGroupLayout, *bindGroupLayout](m, nil)

	t.DeviceCreateBindGroup = func(h proc.Device, desc *proc.BindGroupDescriptor) proc.BindGroup {
		d := m.device(h)
		defer d.enter()()
		return proc.BindGroup(m.objs.Add(m.newBindGroup(d, desc)))
	}
	t.BindGroupReference, t.BindGroupRelease = refcounted[proc.BindGroup, *bindGroup](m, nil)

	t.DeviceCreatePipelineLayout = func(h proc.Device, desc *proc.PipelineLayoutDescriptor) proc.PipelineLayout {
		d := m.device(h)
		defer d.enter()()
		l := &pipelineLayout{groups: slices.Clone(proc.Slice(desc.BindGroupLayouts, desc.BindGroupLayoutCount))}
		for i, g := range l.groups {
			bgl := lookup[*bindGroupLayout](m.objs, uintptr(g))
			if !d.require(!bgl.invalid, "create pipeline layout: bind group layout %d is invalid", i) {
				l.invalid = true
			}
			m.objs.Reference(uintptr(g))
		}
		return proc.PipelineLayout(m.objs.Add(l))
	}
	t.PipelineLayoutReference, _ = refcounted[proc.PipelineLayout, *pipelineLayout](m, nil)
	t.PipelineLayoutRelease = m.releasePipelineLayout

	t.DeviceCreateComputePipeline = func(h proc.Device, desc *proc.ComputePipelineDescriptor) proc.ComputePipeline {
		d := m.device(h)
		defer d.enter()()
		p := m.newPipeline(d, proc.GoString(desc.Label), desc.Layout, desc.ComputeStage, true)
		return proc.ComputePipeline(m.objs.Add(p))
	}
	t.ComputePipelineReference, t.ComputePipelineRelease = refcounted[proc.ComputePipeline](m, m.releasePipeline)
	t.ComputePipelineGetBindGroupLayout = func(h proc.ComputePipeline, index uint32) proc.BindGroupLayout {
		p := lookup[*pipeline](m.objs, uintptr(h))
		return m.bindGroupLayoutAt(p, index)
	}

	t.DeviceCreateRenderPipeline = func(h proc.Device, desc *proc.RenderPipelineDescriptor) proc.RenderPipeline {
		d := m.device(h)
		defer d.enter()()
		label := proc.GoString(desc.Label)
		p := m.newPipeline(d, label, desc.Layout, desc.VertexStage, false)
		if desc.FragmentStage != nil && desc.FragmentStage.Module != 0 {
			frag := lookup[*shaderModule](m.objs, uintptr(desc.FragmentStage.Module))
			if !d.require(!frag.invalid, "create render pipeline %q: fragment module is invalid", label) {
				p.invalid = true
			}
		}
		for i, cs := range proc.Slice(desc.ColorStates, desc.ColorStateCount) {
			if _, ok := textureFormatInfo(cs.Format); !d.validate(ok, "create render pipeline %q: color state %d format %d not supported", label, i, cs.Format) {
				p.invalid = true
			}
		}
		if !d.validate(desc.SampleCount == 0 || desc.SampleCount == 1 || desc.SampleCount == 4,
			"create render pipeline %q: sample count %d", label, desc.SampleCount) {
			p.invalid = true
		}
		return proc.RenderPipeline(m.objs.Add(p))
	}
	t.RenderPipelineReference, t.RenderPipelineRelease = refcounted[proc.RenderPipeline](m, m.releasePipeline)
	t.RenderPipelineGetBindGroupLayout = func(h proc.RenderPipeline, index uint32) proc.BindGroupLayout {
		p := lookup[*pipeline](m.objs, uintptr(h))
		return m.bindGroupLayoutAt(p, index)
	}
}
