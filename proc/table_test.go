// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package proc

import (
	"slices"
	"testing"
)

func TestEntries(t *testing.T) {
	names := Entries()
	for _, want := range []string{"CreateInstance", "DeviceCreateBuffer", "QueueSubmit", "SwapChainPresent"} {
		if !slices.Contains(names, want) {
			t.Errorf("Entries() missing %s", want)
		}
	}
	for _, skip := range []string{"Name", "SetLogger"} {
		if slices.Contains(names, skip) {
			t.Errorf("Entries() should not include %s", skip)
		}
	}
}

func TestTableMissing(t *testing.T) {
	tbl := &Table{
		CreateInstance: func() Instance { return 1 },
	}
	missing := tbl.Missing()
	if slices.Contains(missing, "CreateInstance") {
		t.Error("CreateInstance reported missing")
	}
	if !slices.Contains(missing, "DeviceTick") {
		t.Error("DeviceTick not reported missing")
	}
	if len(missing) != len(Entries())-1 {
		t.Errorf("len(Missing()) = %d, want %d", len(missing), len(Entries())-1)
	}
}

func TestBindingTypeClasses(t *testing.T) {
	tests := []struct {
		typ                   BindingType
		buffer, sampler, text bool
	}{
		{BindingTypeUniformBuffer, true, false, false},
		{BindingTypeReadonlyStorageBuffer, true, false, false},
		{BindingTypeComparisonSampler, false, true, false},
		{BindingTypeSampledTexture, false, false, true},
		{BindingTypeWriteonlyStorageTexture, false, false, true},
	}
	for _, tt := range tests {
		if tt.typ.IsBuffer() != tt.buffer || tt.typ.IsSampler() != tt.sampler || tt.typ.IsTexture() != tt.text {
			t.Errorf("%v: classes = (%v, %v, %v)", tt.typ, tt.typ.IsBuffer(), tt.typ.IsSampler(), tt.typ.IsTexture())
		}
	}
}
