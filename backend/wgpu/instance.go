// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/dusk/proc"
)

type instance struct {
	hal        hal.Instance
	adapters   []*adapter
	discovered bool
}

type adapter struct {
	exposed hal.ExposedAdapter
	name    []byte
	props   proc.AdapterProperties
}

// adapterType maps the HAL device type onto the proc classification.
func adapterType(t gputypes.DeviceType) proc.AdapterType {
	switch t {
	case gputypes.DeviceTypeDiscreteGPU:
		return proc.AdapterTypeDiscreteGPU
	case gputypes.DeviceTypeIntegratedGPU:
		return proc.AdapterTypeIntegratedGPU
	case gputypes.DeviceTypeCPU:
		return proc.AdapterTypeCPU
	default:
		return proc.AdapterTypeUnknown
	}
}

func (m *Impl) newAdapter(exposed hal.ExposedAdapter) *adapter {
	a := &adapter{exposed: exposed, name: append([]byte(exposed.Info.Name), 0)}
	a.props = proc.AdapterProperties{
		DeviceID:    exposed.Info.DeviceID,
		VendorID:    exposed.Info.VendorID,
		Name:        &a.name[0],
		AdapterType: adapterType(exposed.Info.DeviceType),
		BackendType: m.backend,
	}
	return a
}

func (m *Impl) instanceProcs(t *proc.Table) {
	t.CreateInstance = func() proc.Instance {
		inst := &instance{}
		h, err := m.api.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
		if err != nil {
			// An instance without HAL state discovers no adapters.
			m.log().Warn("wgpu: create instance failed", "error", err)
		}
		inst.hal = h
		return proc.Instance(m.objs.Add(inst))
	}
	t.InstanceReference, t.InstanceRelease = refcounted[proc.Instance](m, func(inst *instance) {
		if inst.hal != nil {
			inst.hal.Destroy()
		}
	})

	t.InstanceDiscoverDefaultAdapters = func(h proc.Instance) {
		inst := lookup[*instance](m, uintptr(h))
		if inst.discovered || inst.hal == nil {
			return
		}
		inst.discovered = true
		for _, exposed := range inst.hal.EnumerateAdapters(nil) {
			a := m.newAdapter(exposed)
			inst.adapters = append(inst.adapters, a)
			m.log().Debug("wgpu: adapter found",
				"name", exposed.Info.Name, "type", a.props.AdapterType.String(), "backend", m.backend.String())
		}
	}
	t.InstanceGetAdapterCount = func(h proc.Instance) uint32 {
		return uint32(len(lookup[*instance](m, uintptr(h)).adapters))
	}
	t.InstanceGetAdapterProperties = func(h proc.Instance, index uint32, out *proc.AdapterProperties) {
		*out = lookup[*instance](m, uintptr(h)).adapters[index].props
	}
	t.InstanceCreateDevice = func(h proc.Instance, index uint32, desc *proc.DeviceDescriptor) proc.Device {
		inst := lookup[*instance](m, uintptr(h))
		a := inst.adapters[index]
		var enabled []string
		if desc != nil {
			enabled = proc.GoStrings(desc.ForceEnabledToggles, desc.ForceEnabledTogglesCount)
		}
		if len(enabled) > 0 {
			m.log().Debug("wgpu: toggles ignored", "toggles", enabled)
		}

		d := &device{impl: m, adapter: a}
		open, err := a.exposed.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
		if err != nil {
			d.lost = err
			m.log().Error("wgpu: open device failed", "adapter", a.exposed.Info.Name, "error", err)
		} else {
			d.hal = open.Device
			d.queue = open.Queue
			if d.submit, err = d.hal.CreateFence(); err != nil {
				d.hal.Destroy()
				d.hal, d.queue = nil, nil
				d.lost = err
				m.log().Error("wgpu: create submit fence failed", "error", err)
			}
		}
		d.q = &queue{device: d}
		d.queueHandle = proc.Queue(m.objs.Add(d.q))
		if d.hal != nil {
			m.log().Info("wgpu: device created", "adapter", a.exposed.Info.Name, "backend", m.backend.String())
		}
		return proc.Device(m.objs.Add(d))
	}

	t.InstanceGetVulkanInstance = func(proc.Instance) uintptr { return 0 }
}
