// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package dusk

import (
	"testing"
)

// TestAdapterFilterRejectsAll tests that a filter hides every adapter.
func TestAdapterFilterRejectsAll(t *testing.T) {
	newEnv(t)
	inst := NewInstance(WithAdapterFilter(func(AdapterProperties) bool { return false }))
	defer inst.Release()

	if got := inst.Adapters(); len(got) != 0 {
		t.Errorf("Adapters() = %d adapters, want 0", len(got))
	}
	wantPanic(t, ErrAdapterNotFound, func() { inst.DefaultAdapter() })
}

// TestAdapterFilterSeesProperties tests that the filter receives adapter
// properties and that kept adapters are returned.
func TestAdapterFilterSeesProperties(t *testing.T) {
	newEnv(t)
	var seen []AdapterProperties
	inst := NewInstance(WithAdapterFilter(func(p AdapterProperties) bool {
		seen = append(seen, p)
		return p.AdapterType == AdapterTypeCPU
	}))
	defer inst.Release()

	adapters := inst.Adapters()
	if len(seen) == 0 {
		t.Fatal("filter was never called")
	}
	if len(adapters) == 0 {
		t.Fatal("Adapters() returned none; the software adapter is a CPU adapter")
	}
	for _, a := range adapters {
		if a.Properties().AdapterType != AdapterTypeCPU {
			t.Errorf("adapter %s passed the filter with type %v", a, a.Properties().AdapterType)
		}
		a.Release()
	}
}

// TestDefaultOptions tests that no options leave every hook unset.
func TestDefaultOptions(t *testing.T) {
	o := defaultInstanceOptions()
	if o.logger != nil || o.filter != nil {
		t.Error("default instance options should be empty")
	}

	var d deviceOptions
	WithUncapturedErrorCallback(func(ErrorType, string) {})(&d)
	if d.onError == nil {
		t.Error("WithUncapturedErrorCallback did not set the callback")
	}
}

// TestAdapterRank tests the DefaultAdapter preference order.
func TestAdapterRank(t *testing.T) {
	order := []AdapterType{AdapterTypeDiscreteGPU, AdapterTypeIntegratedGPU, AdapterTypeCPU, AdapterTypeUnknown}
	for i := 1; i < len(order); i++ {
		if adapterRank(order[i-1]) >= adapterRank(order[i]) {
			t.Errorf("rank(%v) should be below rank(%v)", order[i-1], order[i])
		}
	}
}
