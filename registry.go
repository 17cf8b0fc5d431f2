// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package dusk

import (
	"reflect"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/gogpu/dusk/backend"
	"github.com/gogpu/dusk/backend/soft"
	"github.com/gogpu/dusk/proc"
)

// nativeSet is an installed proc table plus the handle operations derived
// from it. Entries missing from the table are replaced by stubs that panic
// with ErrProcMissing naming the entry.
type nativeSet struct {
	table   *proc.Table
	missing []string

	instance        handleOps[proc.Instance]
	surface         handleOps[proc.Surface]
	device          handleOps[proc.Device]
	queue           handleOps[proc.Queue]
	fence           handleOps[proc.Fence]
	buffer          handleOps[proc.Buffer]
	texture         handleOps[proc.Texture]
	textureView     handleOps[proc.TextureView]
	sampler         handleOps[proc.Sampler]
	bindGroupLayout handleOps[proc.BindGroupLayout]
	bindGroup       handleOps[proc.BindGroup]
	shaderModule    handleOps[proc.ShaderModule]
	pipelineLayout  handleOps[proc.PipelineLayout]
	renderPipeline  handleOps[proc.RenderPipeline]
	computePipeline handleOps[proc.ComputePipeline]
	renderBundle    handleOps[proc.RenderBundle]
	swapChain       handleOps[proc.SwapChain]

	commandEncoder      handleOps[proc.CommandEncoder]
	commandBuffer       handleOps[proc.CommandBuffer]
	renderPassEncoder   handleOps[proc.RenderPassEncoder]
	computePassEncoder  handleOps[proc.ComputePassEncoder]
	renderBundleEncoder handleOps[proc.RenderBundleEncoder]
}

var (
	installOnce sync.Once
	current     atomic.Pointer[nativeSet]
)

// InstallProcTable installs t as the process-wide native implementation.
// Only the first installation takes effect: InstallProcTable reports false
// and does nothing once a table is set, including the default table set
// implicitly by NewInstance.
func InstallProcTable(t *proc.Table) bool {
	if t == nil {
		panic("dusk: InstallProcTable with nil table")
	}
	installed := false
	installOnce.Do(func() {
		install(t)
		installed = true
	})
	return installed
}

// ProcTableInstalled reports whether a proc table has been installed.
func ProcTableInstalled() bool {
	return current.Load() != nil
}

// ProcAvailable reports whether the installed proc table implements the
// entry point name, a proc.Table field name. It installs the default
// table when none is installed yet.
func ProcAvailable(name string) bool {
	return ensureProcs().has(name)
}

// ensureProcs installs the default table unless one was installed already.
func ensureProcs() *nativeSet {
	installOnce.Do(func() { install(defaultTable()) })
	return current.Load()
}

// defaultTable picks the preferred registered backend, falling back to the
// software implementation.
func defaultTable() *proc.Table {
	t, err := backend.Default()
	if err != nil {
		Logger().Warn("dusk: no registered backend usable, using software table", "err", err)
		return soft.Procs()
	}
	return t
}

func install(t *proc.Table) {
	n := newNativeSet(t)
	current.Store(n)
	propagateLogger(n.table, Logger())
	Logger().Info("dusk: proc table installed", "name", t.Name, "missing", len(n.missing))
}

// natives returns the installed set. Handles can only be obtained after
// ensureProcs, so a nil set here is a precondition violation.
func natives() *nativeSet {
	n := current.Load()
	if n == nil {
		precondition(ErrProcMissing, "proc table not installed")
	}
	return n
}

// has reports whether the installed table provides entry name.
func (n *nativeSet) has(name string) bool {
	return !slices.Contains(n.missing, name)
}

func newNativeSet(src *proc.Table) *nativeSet {
	t := *src
	n := &nativeSet{table: &t}

	v := reflect.ValueOf(&t).Elem()
	typ := v.Type()
	for i := range typ.NumField() {
		f := typ.Field(i)
		fv := v.Field(i)
		if f.Type.Kind() != reflect.Func || f.Name == "SetLogger" || !fv.IsNil() {
			continue
		}
		name := f.Name
		n.missing = append(n.missing, name)
		fv.Set(reflect.MakeFunc(f.Type, func([]reflect.Value) []reflect.Value {
			precondition(ErrProcMissing, name)
			return nil
		}))
	}

	n.instance = handleOps[proc.Instance]{"Instance", t.InstanceReference, t.InstanceRelease}
	n.surface = handleOps[proc.Surface]{"Surface", t.SurfaceReference, t.SurfaceRelease}
	n.device = handleOps[proc.Device]{"Device", t.DeviceReference, t.DeviceRelease}
	n.queue = handleOps[proc.Queue]{"Queue", t.QueueReference, t.QueueRelease}
	n.fence = handleOps[proc.Fence]{"Fence", t.FenceReference, t.FenceRelease}
	n.buffer = handleOps[proc.Buffer]{"Buffer", t.BufferReference, t.BufferRelease}
	n.texture = handleOps[proc.Texture]{"Texture", t.TextureReference, t.TextureRelease}
	n.textureView = handleOps[proc.TextureView]{"TextureView", t.TextureViewReference, t.TextureViewRelease}
	n.sampler = handleOps[proc.Sampler]{"Sampler", t.SamplerReference, t.SamplerRelease}
	n.bindGroupLayout = handleOps[proc.BindGroupLayout]{"BindGroupLayout", t.BindGroupLayoutReference, t.BindGroupLayoutRelease}
	n.bindGroup = handleOps[proc.BindGroup]{"BindGroup", t.BindGroupReference, t.BindGroupRelease}
	n.shaderModule = handleOps[proc.ShaderModule]{"ShaderModule", t.ShaderModuleReference, t.ShaderModuleRelease}
	n.pipelineLayout = handleOps[proc.PipelineLayout]{"PipelineLayout", t.PipelineLayoutReference, t.PipelineLayoutRelease}
	n.renderPipeline = handleOps[proc.RenderPipeline]{"RenderPipeline", t.RenderPipelineReference, t.RenderPipelineRelease}
	n.computePipeline = handleOps[proc.ComputePipeline]{"ComputePipeline", t.ComputePipelineReference, t.ComputePipelineRelease}
	n.renderBundle = handleOps[proc.RenderBundle]{"RenderBundle", t.RenderBundleReference, t.RenderBundleRelease}
	n.swapChain = handleOps[proc.SwapChain]{"SwapChain", t.SwapChainReference, t.SwapChainRelease}

	n.commandEncoder = handleOps[proc.CommandEncoder]{"CommandEncoder", nil, t.CommandEncoderRelease}
	n.commandBuffer = handleOps[proc.CommandBuffer]{"CommandBuffer", nil, t.CommandBufferRelease}
	n.renderPassEncoder = handleOps[proc.RenderPassEncoder]{"RenderPassEncoder", nil, t.RenderPassEncoderRelease}
	n.computePassEncoder = handleOps[proc.ComputePassEncoder]{"ComputePassEncoder", nil, t.ComputePassEncoderRelease}
	n.renderBundleEncoder = handleOps[proc.RenderBundleEncoder]{"RenderBundleEncoder", nil, t.RenderBundleEncoderRelease}
	return n
}
