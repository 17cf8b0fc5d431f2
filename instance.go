// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package dusk

import (
	"fmt"
	"sync"

	"github.com/gogpu/dusk/proc"
)

// instanceLock serializes instance-level native calls across clones.
type instanceLock struct {
	mu     sync.Mutex
	filter func(AdapterProperties) bool
}

func (l *instanceLock) do(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn()
}

// Instance is the entry point to the native library. It enumerates
// adapters and creates surfaces.
type Instance struct {
	h    handle[proc.Instance]
	n    *nativeSet
	lock *instanceLock
}

// NewInstance creates an instance, installing the default proc table if
// none was installed with InstallProcTable.
func NewInstance(opts ...InstanceOption) *Instance {
	o := defaultInstanceOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger != nil {
		SetLogger(o.logger)
	}

	n := ensureProcs()
	inst := &Instance{n: n, lock: &instanceLock{filter: o.filter}}
	var raw proc.Instance
	inst.lock.do(func() { raw = n.table.CreateInstance() })
	inst.h.set(raw, &n.instance, inst.lock)
	return inst
}

// Clone returns a new reference to the same instance.
func (i *Instance) Clone() *Instance {
	c := &Instance{n: i.n, lock: i.lock}
	i.h.clone(&c.h)
	return c
}

// Release drops the reference. Further calls are no-ops.
func (i *Instance) Release() { i.h.release() }

// Raw returns the native handle. Ownership stays with i.
func (i *Instance) Raw() proc.Instance { return i.h.get() }

func (i *Instance) String() string { return i.h.String() }

// Adapters discovers the default adapters and returns those accepted by the
// instance's adapter filter. The caller owns the returned adapters.
func (i *Instance) Adapters() []*Adapter {
	raw := i.h.get()
	t := i.n.table
	var props []proc.AdapterProperties
	i.h.call(func() {
		t.InstanceDiscoverDefaultAdapters(raw)
		props = make([]proc.AdapterProperties, t.InstanceGetAdapterCount(raw))
		for idx := range props {
			t.InstanceGetAdapterProperties(raw, uint32(idx), &props[idx])
		}
	})

	adapters := make([]*Adapter, 0, len(props))
	for idx := range props {
		p := adapterProperties(&props[idx])
		if i.lock.filter != nil && !i.lock.filter(p) {
			continue
		}
		adapters = append(adapters, &Adapter{inst: i.Clone(), index: uint32(idx), props: p})
	}
	Logger().Info("dusk: adapters discovered", "found", len(props), "kept", len(adapters))
	return adapters
}

// DefaultAdapter returns the first adapter, preferring discrete GPUs, then
// integrated GPUs, then anything else. It panics with ErrAdapterNotFound
// when no adapter is available.
func (i *Instance) DefaultAdapter() *Adapter {
	adapters := i.Adapters()
	if len(adapters) == 0 {
		precondition(ErrAdapterNotFound, "default adapter")
	}
	best := 0
	for idx, a := range adapters {
		if adapterRank(a.props.AdapterType) < adapterRank(adapters[best].props.AdapterType) {
			best = idx
		}
	}
	for idx, a := range adapters {
		if idx != best {
			a.Release()
		}
	}
	return adapters[best]
}

func adapterRank(t AdapterType) int {
	switch t {
	case AdapterTypeDiscreteGPU:
		return 0
	case AdapterTypeIntegratedGPU:
		return 1
	case AdapterTypeCPU:
		return 2
	default:
		return 3
	}
}

// NativeVulkanInstance returns the VkInstance behind i, or 0 when the
// backend is not Vulkan or the table does not expose it.
func (i *Instance) NativeVulkanInstance() uintptr {
	raw := i.h.get()
	if !i.n.has("InstanceGetVulkanInstance") {
		return 0
	}
	var vk uintptr
	i.h.call(func() { vk = i.n.table.InstanceGetVulkanInstance(raw) })
	return vk
}

// AdapterExtensions lists optional adapter features.
type AdapterExtensions struct {
	TextureCompressionBC bool
}

// AdapterProperties describes an adapter.
type AdapterProperties struct {
	Name        string
	VendorID    uint32
	DeviceID    uint32
	AdapterType AdapterType
	BackendType BackendType
	Extensions  AdapterExtensions
}

func adapterProperties(p *proc.AdapterProperties) AdapterProperties {
	return AdapterProperties{
		Name:        proc.GoString(p.Name),
		VendorID:    p.VendorID,
		DeviceID:    p.DeviceID,
		AdapterType: p.AdapterType,
		BackendType: p.BackendType,
		Extensions:  AdapterExtensions{TextureCompressionBC: p.Extensions.TextureCompressionBC},
	}
}

// Adapter is a physical device exposed by an instance. It keeps its
// instance alive.
type Adapter struct {
	inst  *Instance
	index uint32
	props AdapterProperties
}

// Clone returns a new reference to the same adapter.
func (a *Adapter) Clone() *Adapter {
	return &Adapter{inst: a.inst.Clone(), index: a.index, props: a.props}
}

// Release drops the adapter's reference to its instance.
func (a *Adapter) Release() { a.inst.Release() }

// Properties returns the adapter description.
func (a *Adapter) Properties() AdapterProperties { return a.props }

// Extensions returns the optional features the adapter supports.
func (a *Adapter) Extensions() AdapterExtensions { return a.props.Extensions }

func (a *Adapter) String() string {
	return fmt.Sprintf("Adapter(%d %q %s)", a.index, a.props.Name, a.props.BackendType)
}

func (a *Adapter) supports(ext string) bool {
	switch ext {
	case ExtensionTextureCompressionBC:
		return a.props.Extensions.TextureCompressionBC
	default:
		return false
	}
}

// DeviceDescriptor describes a device to create. Toggles are backend
// specific switches; unknown toggle names are ignored by the backend.
type DeviceDescriptor struct {
	RequiredExtensions   []string
	ForceEnabledToggles  []string
	ForceDisabledToggles []string
}

// CreateDevice creates a logical device on the adapter. desc may be nil.
func (a *Adapter) CreateDevice(desc *DeviceDescriptor, opts ...DeviceOption) (*Device, error) {
	var o deviceOptions
	for _, opt := range opts {
		opt(&o)
	}
	if desc == nil {
		desc = &DeviceDescriptor{}
	}
	for _, ext := range desc.RequiredExtensions {
		if !a.supports(ext) {
			return nil, fmt.Errorf("create device: %q: %w", ext, ErrUnsupportedExtension)
		}
	}

	var raw proc.DeviceDescriptor
	var err error
	if raw.RequiredExtensionsCount, err = count("required extensions", len(desc.RequiredExtensions)); err != nil {
		return nil, fmt.Errorf("create device: %w", err)
	}
	if raw.ForceEnabledTogglesCount, err = count("force enabled toggles", len(desc.ForceEnabledToggles)); err != nil {
		return nil, fmt.Errorf("create device: %w", err)
	}
	if raw.ForceDisabledTogglesCount, err = count("force disabled toggles", len(desc.ForceDisabledToggles)); err != nil {
		return nil, fmt.Errorf("create device: %w", err)
	}
	exts := proc.CStrings(desc.RequiredExtensions)
	enabled := proc.CStrings(desc.ForceEnabledToggles)
	disabled := proc.CStrings(desc.ForceDisabledToggles)
	raw.RequiredExtensions = proc.First(exts)
	raw.ForceEnabledToggles = proc.First(enabled)
	raw.ForceDisabledToggles = proc.First(disabled)

	inst := a.inst
	h := inst.h.get()
	var dev proc.Device
	inst.h.call(func() { dev = inst.n.table.InstanceCreateDevice(h, a.index, &raw) })
	return newDevice(inst.n, dev, a.Clone(), o), nil
}

// Surface is a presentable window-system surface.
type Surface struct {
	h    handle[proc.Surface]
	inst *Instance
}

// Clone returns a new reference to the same surface.
func (s *Surface) Clone() *Surface {
	c := &Surface{inst: s.inst.Clone()}
	s.h.clone(&c.h)
	return c
}

// Release drops the reference and then the surface's instance reference.
func (s *Surface) Release() {
	if s.h.release() {
		s.inst.Release()
	}
}

// Raw returns the native handle. Ownership stays with s.
func (s *Surface) Raw() proc.Surface { return s.h.get() }

// SurfaceSource is the window-system object a surface presents to. It is
// implemented by WindowsSurface, XlibSurface and MetalSurface.
type SurfaceSource interface {
	surface() (kind proc.SurfaceKind, display, window uintptr)
}

// WindowsSurface presents to a Win32 window.
type WindowsSurface struct {
	HInstance uintptr
	HWND      uintptr
}

func (w WindowsSurface) surface() (proc.SurfaceKind, uintptr, uintptr) {
	return proc.SurfaceKindWindowsHWND, w.HInstance, w.HWND
}

// XlibSurface presents to an X11 window.
type XlibSurface struct {
	Display uintptr
	Window  uintptr
}

func (x XlibSurface) surface() (proc.SurfaceKind, uintptr, uintptr) {
	return proc.SurfaceKindXlib, x.Display, x.Window
}

// MetalSurface presents to a CAMetalLayer.
type MetalSurface struct {
	Layer uintptr
}

func (m MetalSurface) surface() (proc.SurfaceKind, uintptr, uintptr) {
	return proc.SurfaceKindMetalLayer, 0, m.Layer
}

type SurfaceDescriptor struct {
	Label  string
	Source SurfaceSource
}

// CreateSurface creates a surface for the window described by desc.
func (i *Instance) CreateSurface(desc *SurfaceDescriptor) *Surface {
	kind, display, window := desc.Source.surface()
	label := proc.LabelOf(desc.Label)
	raw := proc.SurfaceDescriptor{Label: label.Ptr(), Kind: kind, Display: display, Window: window}

	h := i.h.get()
	var sh proc.Surface
	i.h.call(func() { sh = i.n.table.InstanceCreateSurface(h, &raw) })
	s := &Surface{inst: i.Clone()}
	s.h.set(sh, &i.n.surface, i.lock)
	return s
}
