// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package dusk

import (
	"fmt"

	"github.com/gogpu/dusk/proc"
	"github.com/gogpu/gputypes"
)

// ShaderStage is a set of shader stages a binding is visible to.
type ShaderStage uint32

const (
	ShaderStageVertex   ShaderStage = ShaderStage(gputypes.ShaderStageVertex)
	ShaderStageFragment ShaderStage = ShaderStage(gputypes.ShaderStageFragment)
	ShaderStageCompute  ShaderStage = ShaderStage(gputypes.ShaderStageCompute)
)

// TextureComponentType is the sample type a texture binding expects.
type TextureComponentType = proc.TextureComponentType

const (
	TextureComponentTypeFloat = proc.TextureComponentTypeFloat
	TextureComponentTypeSint  = proc.TextureComponentTypeSint
	TextureComponentTypeUint  = proc.TextureComponentTypeUint
)

// BindingType is the resource kind of a bind group layout entry. It is
// implemented by UniformBufferBinding, StorageBufferBinding,
// SamplerBinding, SampledTextureBinding and StorageTextureBinding.
type BindingType interface {
	flatten(b *proc.BindGroupLayoutBinding) error
}

// UniformBufferBinding binds a uniform buffer range.
type UniformBufferBinding struct {
	Dynamic bool
}

func (u UniformBufferBinding) flatten(b *proc.BindGroupLayoutBinding) error {
	b.Type = proc.BindingTypeUniformBuffer
	b.HasDynamicOffset = u.Dynamic
	return nil
}

// StorageBufferBinding binds a storage buffer range.
type StorageBufferBinding struct {
	Dynamic  bool
	ReadOnly bool
}

func (s StorageBufferBinding) flatten(b *proc.BindGroupLayoutBinding) error {
	b.Type = proc.BindingTypeStorageBuffer
	if s.ReadOnly {
		b.Type = proc.BindingTypeReadonlyStorageBuffer
	}
	b.HasDynamicOffset = s.Dynamic
	return nil
}

// SamplerBinding binds a sampler.
type SamplerBinding struct {
	Comparison bool
}

func (s SamplerBinding) flatten(b *proc.BindGroupLayoutBinding) error {
	b.Type = proc.BindingTypeSampler
	if s.Comparison {
		b.Type = proc.BindingTypeComparisonSampler
	}
	return nil
}

// SampledTextureBinding binds a texture view for sampling.
type SampledTextureBinding struct {
	Dimension     gputypes.TextureViewDimension
	ComponentType TextureComponentType
	Multisampled  bool
}

func (s SampledTextureBinding) flatten(b *proc.BindGroupLayoutBinding) error {
	b.Type = proc.BindingTypeSampledTexture
	b.TextureDimension = uint32(s.Dimension)
	b.TextureComponentType = s.ComponentType
	b.Multisampled = s.Multisampled
	return nil
}

// StorageTextureBinding binds a texture view for storage access. ReadOnly
// and WriteOnly restrict access; setting both is an error.
type StorageTextureBinding struct {
	Dimension     gputypes.TextureViewDimension
	ComponentType TextureComponentType
	Format        gputypes.TextureFormat
	ReadOnly      bool
	WriteOnly     bool
}

func (s StorageTextureBinding) flatten(b *proc.BindGroupLayoutBinding) error {
	switch {
	case s.ReadOnly && s.WriteOnly:
		return ErrConflictingAccess
	case s.ReadOnly:
		b.Type = proc.BindingTypeReadonlyStorageTexture
	case s.WriteOnly:
		b.Type = proc.BindingTypeWriteonlyStorageTexture
	default:
		b.Type = proc.BindingTypeStorageTexture
	}
	b.TextureDimension = uint32(s.Dimension)
	b.TextureComponentType = s.ComponentType
	b.StorageTextureFormat = uint32(s.Format)
	return nil
}

// BindGroupLayoutEntry describes one binding slot.
type BindGroupLayoutEntry struct {
	Binding    uint32
	Visibility ShaderStage
	Type       BindingType
}

// BindGroupLayoutDescriptor describes a bind group layout.
type BindGroupLayoutDescriptor struct {
	Label   string
	Entries []BindGroupLayoutEntry
}

// flattenEntries converts layout entries to their native form.
func flattenEntries(entries []BindGroupLayoutEntry) ([]proc.BindGroupLayoutBinding, error) {
	out := make([]proc.BindGroupLayoutBinding, len(entries))
	for i, e := range entries {
		out[i] = proc.BindGroupLayoutBinding{Binding: e.Binding, Visibility: uint32(e.Visibility)}
		if e.Type == nil {
			return nil, fmt.Errorf("binding %d: missing type", e.Binding)
		}
		if err := e.Type.flatten(&out[i]); err != nil {
			return nil, fmt.Errorf("binding %d: %w", e.Binding, err)
		}
	}
	return out, nil
}

// BindGroupLayout describes the bindings of a bind group.
type BindGroupLayout struct {
	h   handle[proc.BindGroupLayout]
	dev *Device
}

func (d *Device) wrapBindGroupLayout(raw proc.BindGroupLayout) *BindGroupLayout {
	s := d.shared()
	l := &BindGroupLayout{}
	l.h.set(raw, &s.n.bindGroupLayout, s)
	l.dev = d.Clone()
	return l
}

// CreateBindGroupLayout creates a bind group layout.
func (d *Device) CreateBindGroupLayout(desc *BindGroupLayoutDescriptor) (*BindGroupLayout, error) {
	bindings, err := flattenEntries(desc.Entries)
	if err != nil {
		return nil, fmt.Errorf("create bind group layout %q: %w", desc.Label, err)
	}
	n, err := count("bindings", len(bindings))
	if err != nil {
		return nil, fmt.Errorf("create bind group layout %q: %w", desc.Label, err)
	}
	label := proc.LabelOf(desc.Label)
	raw := proc.BindGroupLayoutDescriptor{Label: label.Ptr(), BindingCount: n, Bindings: proc.First(bindings)}
	var h proc.BindGroupLayout
	d.lock(func(t *proc.Table, dev proc.Device) { h = t.DeviceCreateBindGroupLayout(dev, &raw) })
	return d.wrapBindGroupLayout(h), nil
}

// Clone returns a new reference to the same layout.
func (l *BindGroupLayout) Clone() *BindGroupLayout {
	c := &BindGroupLayout{}
	l.h.clone(&c.h)
	c.dev = l.dev.Clone()
	return c
}

// Release drops the reference. Further calls are no-ops.
func (l *BindGroupLayout) Release() {
	if l.h.release() {
		l.dev.Release()
	}
}

// Raw returns the native handle. Ownership stays with l.
func (l *BindGroupLayout) Raw() proc.BindGroupLayout { return l.h.get() }

// BindingResource is a resource bound in a bind group. It is implemented
// by BufferBinding, *Sampler and *TextureView.
type BindingResource interface {
	bind(b *proc.BindGroupBinding)
}

// BufferBinding binds a range of Buffer. A zero Size binds the rest of the
// buffer after Offset.
type BufferBinding struct {
	Buffer *Buffer
	Offset uint64
	Size   uint64
}

func (r BufferBinding) bind(b *proc.BindGroupBinding) {
	b.Buffer = r.Buffer.h.get()
	b.Offset = r.Offset
	b.Size = r.Size
}

func (s *Sampler) bind(b *proc.BindGroupBinding) { b.Sampler = s.h.get() }

func (v *TextureView) bind(b *proc.BindGroupBinding) { b.TextureView = v.h.get() }

// BindGroupEntry binds one resource to a layout slot.
type BindGroupEntry struct {
	Binding  uint32
	Resource BindingResource
}

// BindGroupDescriptor describes a bind group.
type BindGroupDescriptor struct {
	Label   string
	Layout  *BindGroupLayout
	Entries []BindGroupEntry
}

// BindGroup is a set of resources bound together.
type BindGroup struct {
	h   handle[proc.BindGroup]
	dev *Device
}

// CreateBindGroup creates a bind group.
func (d *Device) CreateBindGroup(desc *BindGroupDescriptor) (*BindGroup, error) {
	n, err := count("bindings", len(desc.Entries))
	if err != nil {
		return nil, fmt.Errorf("create bind group %q: %w", desc.Label, err)
	}
	bindings := make([]proc.BindGroupBinding, len(desc.Entries))
	for i, e := range desc.Entries {
		bindings[i].Binding = e.Binding
		if e.Resource == nil {
			return nil, fmt.Errorf("create bind group %q: binding %d: missing resource", desc.Label, e.Binding)
		}
		e.Resource.bind(&bindings[i])
	}
	label := proc.LabelOf(desc.Label)
	raw := proc.BindGroupDescriptor{
		Label:        label.Ptr(),
		Layout:       desc.Layout.h.get(),
		BindingCount: n,
		Bindings:     proc.First(bindings),
	}
	var h proc.BindGroup
	d.lock(func(t *proc.Table, dev proc.Device) { h = t.DeviceCreateBindGroup(dev, &raw) })

	s := d.shared()
	g := &BindGroup{}
	g.h.set(h, &s.n.bindGroup, s)
	g.dev = d.Clone()
	return g, nil
}

// Clone returns a new reference to the same bind group.
func (g *BindGroup) Clone() *BindGroup {
	c := &BindGroup{}
	g.h.clone(&c.h)
	c.dev = g.dev.Clone()
	return c
}

// Release drops the reference. Further calls are no-ops.
func (g *BindGroup) Release() {
	if g.h.release() {
		g.dev.Release()
	}
}

// Raw returns the native handle. Ownership stays with g.
func (g *BindGroup) Raw() proc.BindGroup { return g.h.get() }

// PipelineLayoutDescriptor lists the bind group layouts of a pipeline.
type PipelineLayoutDescriptor struct {
	Label            string
	BindGroupLayouts []*BindGroupLayout
}

// PipelineLayout maps bind group indices to layouts.
type PipelineLayout struct {
	h   handle[proc.PipelineLayout]
	dev *Device
}

// CreatePipelineLayout creates a pipeline layout.
func (d *Device) CreatePipelineLayout(desc *PipelineLayoutDescriptor) (*PipelineLayout, error) {
	n, err := count("bind group layouts", len(desc.BindGroupLayouts))
	if err != nil {
		return nil, fmt.Errorf("create pipeline layout %q: %w", desc.Label, err)
	}
	layouts := make([]proc.BindGroupLayout, len(desc.BindGroupLayouts))
	for i, l := range desc.BindGroupLayouts {
		layouts[i] = l.h.get()
	}
	label := proc.LabelOf(desc.Label)
	raw := proc.PipelineLayoutDescriptor{Label: label.Ptr(), BindGroupLayoutCount: n, BindGroupLayouts: proc.First(layouts)}
	var h proc.PipelineLayout
	d.lock(func(t *proc.Table, dev proc.Device) { h = t.DeviceCreatePipelineLayout(dev, &raw) })

	s := d.shared()
	l := &PipelineLayout{}
	l.h.set(h, &s.n.pipelineLayout, s)
	l.dev = d.Clone()
	return l, nil
}

// Clone returns a new reference to the same layout.
func (l *PipelineLayout) Clone() *PipelineLayout {
	c := &PipelineLayout{}
	l.h.clone(&c.h)
	c.dev = l.dev.Clone()
	return c
}

// Release drops the reference. Further calls are no-ops.
func (l *PipelineLayout) Release() {
	if l.h.release() {
		l.dev.Release()
	}
}

// Raw returns the native handle. Ownership stays with l.
func (l *PipelineLayout) Raw() proc.PipelineLayout { return l.h.get() }
