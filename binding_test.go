// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package dusk

import (
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/gogpu/dusk/proc"
	"github.com/gogpu/gputypes"
)

func TestBindingTypeFlatten(t *testing.T) {
	tests := []struct {
		name    string
		typ     BindingType
		want    proc.BindingType
		dynamic bool
		wantErr error
	}{
		{"uniform", UniformBufferBinding{}, proc.BindingTypeUniformBuffer, false, nil},
		{"uniform dynamic", UniformBufferBinding{Dynamic: true}, proc.BindingTypeUniformBuffer, true, nil},
		{"storage", StorageBufferBinding{}, proc.BindingTypeStorageBuffer, false, nil},
		{"storage read-only", StorageBufferBinding{ReadOnly: true, Dynamic: true}, proc.BindingTypeReadonlyStorageBuffer, true, nil},
		{"sampler", SamplerBinding{}, proc.BindingTypeSampler, false, nil},
		{"comparison sampler", SamplerBinding{Comparison: true}, proc.BindingTypeComparisonSampler, false, nil},
		{"sampled texture", SampledTextureBinding{}, proc.BindingTypeSampledTexture, false, nil},
		{"storage texture", StorageTextureBinding{}, proc.BindingTypeStorageTexture, false, nil},
		{"storage texture read-only", StorageTextureBinding{ReadOnly: true}, proc.BindingTypeReadonlyStorageTexture, false, nil},
		{"storage texture write-only", StorageTextureBinding{WriteOnly: true}, proc.BindingTypeWriteonlyStorageTexture, false, nil},
		{"storage texture both", StorageTextureBinding{ReadOnly: true, WriteOnly: true}, 0, false, ErrConflictingAccess},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b proc.BindGroupLayoutBinding
			err := tt.typ.flatten(&b)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("flatten() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("flatten() error = %v", err)
			}
			if b.Type != tt.want {
				t.Errorf("Type = %v, want %v", b.Type, tt.want)
			}
			if b.HasDynamicOffset != tt.dynamic {
				t.Errorf("HasDynamicOffset = %v, want %v", b.HasDynamicOffset, tt.dynamic)
			}
		})
	}
}

func TestFlattenTextureFields(t *testing.T) {
	entries := []BindGroupLayoutEntry{
		{Binding: 3, Visibility: ShaderStageFragment, Type: SampledTextureBinding{
			Dimension:     gputypes.TextureViewDimension2D,
			ComponentType: TextureComponentTypeUint,
			Multisampled:  true,
		}},
		{Binding: 4, Visibility: ShaderStageCompute, Type: StorageTextureBinding{
			Dimension: gputypes.TextureViewDimension2D,
			Format:    gputypes.TextureFormatRGBA8Unorm,
			WriteOnly: true,
		}},
	}
	out, err := flattenEntries(entries)
	if err != nil {
		t.Fatalf("flattenEntries() error = %v", err)
	}
	sampled, storage := out[0], out[1]
	if sampled.Binding != 3 || sampled.Visibility != uint32(ShaderStageFragment) {
		t.Errorf("sampled slot = %d/%#x", sampled.Binding, sampled.Visibility)
	}
	if !sampled.Multisampled || sampled.TextureComponentType != TextureComponentTypeUint ||
		sampled.TextureDimension != uint32(gputypes.TextureViewDimension2D) {
		t.Errorf("sampled = %+v", sampled)
	}
	if storage.StorageTextureFormat != uint32(gputypes.TextureFormatRGBA8Unorm) {
		t.Errorf("storage format = %d", storage.StorageTextureFormat)
	}
}

func TestConflictingAccessMakesNoNativeCall(t *testing.T) {
	e := newEnv(t)
	e.rec.Reset()

	_, err := e.dev.CreateBindGroupLayout(&BindGroupLayoutDescriptor{
		Label: "bad",
		Entries: []BindGroupLayoutEntry{
			{Binding: 0, Visibility: ShaderStageCompute, Type: UniformBufferBinding{}},
			{Binding: 1, Visibility: ShaderStageCompute, Type: StorageTextureBinding{ReadOnly: true, WriteOnly: true}},
		},
	})
	if !errors.Is(err, ErrConflictingAccess) {
		t.Fatalf("CreateBindGroupLayout() error = %v, want ErrConflictingAccess", err)
	}
	if got := e.rec.Calls("DeviceCreateBindGroupLayout"); got != 0 {
		t.Errorf("DeviceCreateBindGroupLayout calls = %d, want 0", got)
	}
}

func TestMissingBindingTypeIsAnError(t *testing.T) {
	e := newEnv(t)
	_, err := e.dev.CreateBindGroupLayout(&BindGroupLayoutDescriptor{
		Entries: []BindGroupLayoutEntry{{Binding: 0}},
	})
	if err == nil {
		t.Fatal("CreateBindGroupLayout() with a nil type succeeded")
	}
}

func TestCountOverflow(t *testing.T) {
	type countCase struct {
		name    string
		n       int
		wantErr bool
	}
	tests := []countCase{
		{"zero", 0, false},
		{"small", 7, false},
		{"negative", -1, true},
	}
	if strconv.IntSize == 64 {
		var limit uint64 = math.MaxUint32
		tests = append(tests,
			countCase{"max", int(limit), false},
			countCase{"max+1", int(limit + 1), true},
		)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := count("entries", tt.n)
			if tt.wantErr {
				if !errors.Is(err, ErrOverflow) {
					t.Errorf("count(%d) error = %v, want ErrOverflow", tt.n, err)
				}
				return
			}
			if err != nil || uint64(got) != uint64(tt.n) {
				t.Errorf("count(%d) = %d, %v", tt.n, got, err)
			}
		})
	}
}

func TestBindGroupAndPipelineLayout(t *testing.T) {
	e := newEnv(t)
	layout, err := e.dev.CreateBindGroupLayout(&BindGroupLayoutDescriptor{
		Label: "uniforms",
		Entries: []BindGroupLayoutEntry{
			{Binding: 0, Visibility: ShaderStageVertex | ShaderStageFragment, Type: UniformBufferBinding{}},
			{Binding: 1, Visibility: ShaderStageFragment, Type: SamplerBinding{}},
		},
	})
	if err != nil {
		t.Fatalf("CreateBindGroupLayout() error = %v", err)
	}
	defer layout.Release()

	ubo := e.dev.CreateBufferWithSize(64, gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	defer ubo.Release()
	sampler := e.dev.CreateSampler(&SamplerDescriptor{})
	defer sampler.Release()

	group, err := e.dev.CreateBindGroup(&BindGroupDescriptor{
		Label:  "uniforms",
		Layout: layout,
		Entries: []BindGroupEntry{
			{Binding: 0, Resource: BufferBinding{Buffer: ubo, Size: 64}},
			{Binding: 1, Resource: sampler},
		},
	})
	if err != nil {
		t.Fatalf("CreateBindGroup() error = %v", err)
	}
	defer group.Release()

	pl, err := e.dev.CreatePipelineLayout(&PipelineLayoutDescriptor{BindGroupLayouts: []*BindGroupLayout{layout}})
	if err != nil {
		t.Fatalf("CreatePipelineLayout() error = %v", err)
	}
	pl.Release()
	e.wantNoErrors(t)
}

func TestBindGroupMissingResource(t *testing.T) {
	e := newEnv(t)
	layout, err := e.dev.CreateBindGroupLayout(&BindGroupLayoutDescriptor{
		Entries: []BindGroupLayoutEntry{{Binding: 0, Type: UniformBufferBinding{}}},
	})
	if err != nil {
		t.Fatalf("CreateBindGroupLayout() error = %v", err)
	}
	defer layout.Release()
	e.rec.Reset()

	_, err = e.dev.CreateBindGroup(&BindGroupDescriptor{Layout: layout, Entries: []BindGroupEntry{{Binding: 0}}})
	if err == nil {
		t.Fatal("CreateBindGroup() without a resource succeeded")
	}
	if got := e.rec.Calls("DeviceCreateBindGroup"); got != 0 {
		t.Errorf("DeviceCreateBindGroup calls = %d, want 0", got)
	}
}
