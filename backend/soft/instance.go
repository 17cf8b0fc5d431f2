// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package soft

import (
	"slices"

	"github.com/gogpu/dusk/proc"
)

// Software adapter identity.
const (
	adapterName     = "Dusk Software Adapter"
	adapterVendorID = 0x0000
	adapterDeviceID = 0x0001
)

// Extension and toggle names understood by the software device.
const (
	ExtensionTextureCompressionBC = "texture_compression_bc"
	ToggleSkipValidation          = "skip_validation"
)

type adapter struct {
	name  []byte
	props proc.AdapterProperties
}

type instance struct {
	adapters   []*adapter
	discovered bool
}

type surface struct {
	kind    proc.SurfaceKind
	display uintptr
	window  uintptr
}

func newCPUAdapter() *adapter {
	a := &adapter{name: append([]byte(adapterName), 0)}
	a.props = proc.AdapterProperties{
		DeviceID:    adapterDeviceID,
		VendorID:    adapterVendorID,
		Name:        &a.name[0],
		AdapterType: proc.AdapterTypeCPU,
		BackendType: proc.BackendTypeNull,
	}
	return a
}

func (m *Impl) instanceProcs(t *proc.Table) {
	t.CreateInstance = func() proc.Instance {
		return proc.Instance(m.objs.Add(&instance{}))
	}
	t.InstanceReference, t.InstanceRelease = refcounted[proc.Instance, *instance](m, nil)

	t.InstanceDiscoverDefaultAdapters = func(h proc.Instance) {
		inst := lookup[*instance](m.objs, uintptr(h))
		if inst.discovered {
			return
		}
		inst.discovered = true
		inst.adapters = append(inst.adapters, newCPUAdapter())
		m.log().Debug("soft: discovered adapters", "count", len(inst.adapters))
	}
	t.InstanceGetAdapterCount = func(h proc.Instance) uint32 {
		return uint32(len(lookup[*instance](m.objs, uintptr(h)).adapters))
	}
	t.InstanceGetAdapterProperties = func(h proc.Instance, index uint32, out *proc.AdapterProperties) {
		inst := lookup[*instance](m.objs, uintptr(h))
		*out = inst.adapters[index].props
	}
	t.InstanceCreateDevice = func(h proc.Instance, index uint32, desc *proc.DeviceDescriptor) proc.Device {
		inst := lookup[*instance](m.objs, uintptr(h))
		if int(index) >= len(inst.adapters) {
			return 0
		}
		a := inst.adapters[index]

		var exts, enabled, disabled []string
		if desc != nil {
			exts = proc.GoStrings(desc.RequiredExtensions, desc.RequiredExtensionsCount)
			enabled = proc.GoStrings(desc.ForceEnabledToggles, desc.ForceEnabledTogglesCount)
			disabled = proc.GoStrings(desc.ForceDisabledToggles, desc.ForceDisabledTogglesCount)
		}
		for _, ext := range exts {
			if ext != ExtensionTextureCompressionBC || !a.props.Extensions.TextureCompressionBC {
				m.log().Warn("soft: unsupported extension requested", "extension", ext)
				return 0
			}
		}

		d := newDevice(m, a)
		d.skipValidation = slices.Contains(enabled, ToggleSkipValidation) &&
			!slices.Contains(disabled, ToggleSkipValidation)
		d.toggles = enabled
		q := &queue{device: d}
		d.queue = q
		d.queueHandle = proc.Queue(m.objs.Add(q))
		m.log().Info("soft: device created", "adapter", adapterName, "toggles", enabled)
		return proc.Device(m.objs.Add(d))
	}

	t.InstanceCreateSurface = func(h proc.Instance, desc *proc.SurfaceDescriptor) proc.Surface {
		lookup[*instance](m.objs, uintptr(h))
		return proc.Surface(m.objs.Add(&surface{kind: desc.Kind, display: desc.Display, window: desc.Window}))
	}
	t.InstanceGetVulkanInstance = func(proc.Instance) uintptr { return 0 }
	t.SurfaceReference, t.SurfaceRelease = refcounted[proc.Surface, *surface](m, nil)
}
