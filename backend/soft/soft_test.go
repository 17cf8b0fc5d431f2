// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package soft

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/dusk/proc"
)

// fixture is one software device with its error callback captured.
type fixture struct {
	m      *Impl
	t      *proc.Table
	inst   proc.Instance
	dev    proc.Device
	queue  proc.Queue
	errors []string
}

func newFixture(tb testing.TB, toggles ...string) *fixture {
	tb.Helper()
	m := New()
	f := &fixture{m: m, t: m.Table()}
	f.inst = f.t.CreateInstance()
	f.t.InstanceDiscoverDefaultAdapters(f.inst)
	var desc proc.DeviceDescriptor
	if len(toggles) > 0 {
		ptrs := proc.CStrings(toggles)
		desc.ForceEnabledTogglesCount = uint32(len(ptrs))
		desc.ForceEnabledToggles = &ptrs[0]
	}
	f.dev = f.t.InstanceCreateDevice(f.inst, 0, &desc)
	if f.dev == 0 {
		tb.Fatal("InstanceCreateDevice returned a null device")
	}
	f.t.DeviceSetUncapturedErrorCallback(f.dev, func(_ proc.ErrorType, msg *byte, _ uintptr) {
		f.errors = append(f.errors, proc.GoString(msg))
	}, 0)
	f.queue = f.t.DeviceGetDefaultQueue(f.dev)
	return f
}

func (f *fixture) buffer(size uint64, usage gputypes.BufferUsage) proc.Buffer {
	return f.t.DeviceCreateBuffer(f.dev, &proc.BufferDescriptor{Usage: uint32(usage), Size: size})
}

func (f *fixture) texture(w, h uint32, format gputypes.TextureFormat, usage gputypes.TextureUsage) proc.Texture {
	return f.t.DeviceCreateTexture(f.dev, &proc.TextureDescriptor{
		Usage:         uint32(usage),
		Dimension:     uint32(gputypes.TextureDimension2D),
		Size:          proc.Extent3D{Width: w, Height: h, Depth: 1},
		Format:        uint32(format),
		MipLevelCount: 1,
		SampleCount:   1,
	})
}

func (f *fixture) submit(cbs ...proc.CommandBuffer) {
	f.t.QueueSubmit(f.queue, uint32(len(cbs)), &cbs[0])
}

// read maps b and returns a copy of its contents.
func (f *fixture) read(tb testing.TB, b proc.Buffer) []byte {
	tb.Helper()
	var got []byte
	status := proc.BufferMapAsyncStatusUnknown
	f.t.BufferMapReadAsync(b, func(s proc.BufferMapAsyncStatus, data *byte, n uint64, _ uintptr) {
		status = s
		got = bytes.Clone(proc.Bytes(data, n))
	}, 0)
	f.t.DeviceTick(f.dev)
	if status != proc.BufferMapAsyncStatusSuccess {
		tb.Fatalf("map read status = %v, errors = %v", status, f.errors)
	}
	f.t.BufferUnmap(b)
	return got
}

func (f *fixture) wantNoErrors(tb testing.TB) {
	tb.Helper()
	if len(f.errors) != 0 {
		tb.Fatalf("unexpected device errors: %q", f.errors)
	}
}

func (f *fixture) wantError(tb testing.TB, substr string) {
	tb.Helper()
	for _, e := range f.errors {
		if strings.Contains(e, substr) {
			f.errors = nil
			return
		}
	}
	tb.Fatalf("no device error containing %q in %q", substr, f.errors)
}

func TestTableComplete(t *testing.T) {
	if missing := Procs().Missing(); len(missing) != 0 {
		t.Errorf("soft table is missing %v", missing)
	}
}

func TestAdapterProperties(t *testing.T) {
	f := newFixture(t)
	if n := f.t.InstanceGetAdapterCount(f.inst); n != 1 {
		t.Fatalf("adapter count = %d, want 1", n)
	}
	var props proc.AdapterProperties
	f.t.InstanceGetAdapterProperties(f.inst, 0, &props)
	if got := proc.GoString(props.Name); got != adapterName {
		t.Errorf("adapter name = %q, want %q", got, adapterName)
	}
	if props.AdapterType != proc.AdapterTypeCPU || props.BackendType != proc.BackendTypeNull {
		t.Errorf("adapter type = %v/%v", props.AdapterType, props.BackendType)
	}
}

func TestCreateDeviceRejectsUnknownExtension(t *testing.T) {
	m := New()
	tbl := m.Table()
	inst := tbl.CreateInstance()
	tbl.InstanceDiscoverDefaultAdapters(inst)
	exts := proc.CStrings([]string{"shader_float64"})
	dev := tbl.InstanceCreateDevice(inst, 0, &proc.DeviceDescriptor{
		RequiredExtensionsCount: 1,
		RequiredExtensions:      &exts[0],
	})
	if dev != 0 {
		t.Errorf("device created with an unsupported extension")
	}
	if dev := tbl.InstanceCreateDevice(inst, 5, nil); dev != 0 {
		t.Errorf("device created for adapter index 5")
	}
}

func TestBufferCopyAndMapRead(t *testing.T) {
	f := newFixture(t)
	res := f.t.DeviceCreateBufferMapped(f.dev, &proc.BufferDescriptor{
		Usage: uint32(gputypes.BufferUsageCopySrc),
		Size:  16,
	})
	if res.DataLength != 16 {
		t.Fatalf("mapped length = %d, want 16", res.DataLength)
	}
	want := []byte("0123456789abcdef")
	copy(proc.Bytes(res.Data, res.DataLength), want)
	f.t.BufferUnmap(res.Buffer)

	dst := f.buffer(16, gputypes.BufferUsageCopyDst|gputypes.BufferUsageMapRead)
	enc := f.t.DeviceCreateCommandEncoder(f.dev, nil)
	f.t.CommandEncoderCopyBufferToBuffer(enc, res.Buffer, 0, dst, 0, 16)
	cb := f.t.CommandEncoderFinish(enc, nil)
	f.submit(cb)

	if got := f.read(t, dst); !bytes.Equal(got, want) {
		t.Errorf("read back %q, want %q", got, want)
	}
	f.wantNoErrors(t)
}

func TestSetSubData(t *testing.T) {
	f := newFixture(t)
	b := f.buffer(8, gputypes.BufferUsageCopyDst|gputypes.BufferUsageMapRead)
	data := []byte{1, 2, 3, 4}
	f.t.BufferSetSubData(b, 4, 4, &data[0])
	if got := f.read(t, b); !bytes.Equal(got, []byte{0, 0, 0, 0, 1, 2, 3, 4}) {
		t.Errorf("contents = %v", got)
	}

	f.t.BufferSetSubData(b, 6, 4, &data[0])
	f.wantError(t, "out of bounds")

	noDst := f.buffer(8, gputypes.BufferUsageMapRead)
	f.t.BufferSetSubData(noDst, 0, 4, &data[0])
	f.wantError(t, "CopyDst")
}

func TestEncoderValidation(t *testing.T) {
	tests := []struct {
		name   string
		record func(f *fixture, enc proc.CommandEncoder)
		want   string
	}{
		{
			name: "missing CopySrc",
			record: func(f *fixture, enc proc.CommandEncoder) {
				src := f.buffer(4, gputypes.BufferUsageCopyDst)
				dst := f.buffer(4, gputypes.BufferUsageCopyDst)
				f.t.CommandEncoderCopyBufferToBuffer(enc, src, 0, dst, 0, 4)
			},
			want: "CopySrc",
		},
		{
			name: "copy out of bounds",
			record: func(f *fixture, enc proc.CommandEncoder) {
				src := f.buffer(4, gputypes.BufferUsageCopySrc)
				dst := f.buffer(4, gputypes.BufferUsageCopyDst)
				f.t.CommandEncoderCopyBufferToBuffer(enc, src, 0, dst, 4, 4)
			},
			want: "out of bounds",
		},
		{
			name: "unbalanced debug group",
			record: func(f *fixture, enc proc.CommandEncoder) {
				f.t.CommandEncoderPushDebugGroup(enc, proc.CString("frame"))
			},
			want: "debug groups still open",
		},
		{
			name: "pop without push",
			record: func(f *fixture, enc proc.CommandEncoder) {
				f.t.CommandEncoderPopDebugGroup(enc)
			},
			want: "no group pushed",
		},
		{
			name: "pass left open",
			record: func(f *fixture, enc proc.CommandEncoder) {
				f.t.CommandEncoderBeginComputePass(enc, nil)
			},
			want: "a pass is open",
		},
		{
			name: "dispatch without pipeline",
			record: func(f *fixture, enc proc.CommandEncoder) {
				p := f.t.CommandEncoderBeginComputePass(enc, nil)
				f.t.ComputePassEncoderDispatch(p, 1, 1, 1)
				f.t.ComputePassEncoderEndPass(p)
			},
			want: "no pipeline set",
		},
		{
			name: "row pitch not aligned",
			record: func(f *fixture, enc proc.CommandEncoder) {
				src := f.buffer(1024, gputypes.BufferUsageCopySrc)
				tex := f.texture(4, 4, gputypes.TextureFormatRGBA8Unorm, gputypes.TextureUsageCopyDst)
				f.t.CommandEncoderCopyBufferToTexture(enc,
					&proc.BufferCopyView{Buffer: src, RowPitch: 16},
					&proc.TextureCopyView{Texture: tex},
					&proc.Extent3D{Width: 4, Height: 4, Depth: 1})
			},
			want: "row pitch",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			enc := f.t.DeviceCreateCommandEncoder(f.dev, nil)
			tt.record(f, enc)
			cb := f.t.CommandEncoderFinish(enc, nil)
			f.wantError(t, tt.want)

			f.submit(cb)
			f.wantError(t, "command buffer is invalid")
		})
	}
}

func TestSkipValidationKeepsBoundsChecks(t *testing.T) {
	f := newFixture(t, ToggleSkipValidation)
	src := f.buffer(4, gputypes.BufferUsageCopyDst)
	dst := f.buffer(4, gputypes.BufferUsageCopyDst|gputypes.BufferUsageMapRead)
	enc := f.t.DeviceCreateCommandEncoder(f.dev, nil)
	f.t.CommandEncoderCopyBufferToBuffer(enc, src, 0, dst, 0, 4)
	f.submit(f.t.CommandEncoderFinish(enc, nil))
	f.wantNoErrors(t)

	enc = f.t.DeviceCreateCommandEncoder(f.dev, nil)
	f.t.CommandEncoderCopyBufferToBuffer(enc, src, 0, dst, 2, 4)
	f.t.CommandEncoderFinish(enc, nil)
	f.wantError(t, "out of bounds")
}

func TestResubmitIsRejected(t *testing.T) {
	f := newFixture(t)
	enc := f.t.DeviceCreateCommandEncoder(f.dev, nil)
	cb := f.t.CommandEncoderFinish(enc, nil)
	f.submit(cb)
	f.wantNoErrors(t)
	f.submit(cb)
	f.wantError(t, "already submitted")
}

func TestSubmitChecksMappedBuffers(t *testing.T) {
	f := newFixture(t)
	src := f.buffer(4, gputypes.BufferUsageCopySrc|gputypes.BufferUsageMapRead)
	dst := f.buffer(4, gputypes.BufferUsageCopyDst)
	enc := f.t.DeviceCreateCommandEncoder(f.dev, nil)
	f.t.CommandEncoderCopyBufferToBuffer(enc, src, 0, dst, 0, 4)
	cb := f.t.CommandEncoderFinish(enc, nil)

	f.t.BufferMapReadAsync(src, func(proc.BufferMapAsyncStatus, *byte, uint64, uintptr) {}, 0)
	f.submit(cb)
	f.wantError(t, "buffer is mapped")
}

func TestRenderPassClearAndReadback(t *testing.T) {
	f := newFixture(t)
	tex := f.texture(2, 2, gputypes.TextureFormatRGBA8Unorm,
		gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageCopySrc)
	view := f.t.TextureCreateView(tex, nil)
	out := f.buffer(rowPitchAlignment*2, gputypes.BufferUsageCopyDst|gputypes.BufferUsageMapRead)

	enc := f.t.DeviceCreateCommandEncoder(f.dev, nil)
	colors := []proc.RenderPassColorAttachmentDescriptor{{
		Attachment: view,
		LoadOp:     uint32(gputypes.LoadOpClear),
		StoreOp:    uint32(gputypes.StoreOpStore),
		ClearColor: proc.Color{R: 1, G: 0, B: 0, A: 1},
	}}
	pass := f.t.CommandEncoderBeginRenderPass(enc, &proc.RenderPassDescriptor{
		ColorAttachmentCount: 1,
		ColorAttachments:     &colors[0],
	})
	f.t.RenderPassEncoderEndPass(pass)
	f.t.CommandEncoderCopyTextureToBuffer(enc,
		&proc.TextureCopyView{Texture: tex},
		&proc.BufferCopyView{Buffer: out, RowPitch: rowPitchAlignment},
		&proc.Extent3D{Width: 2, Height: 2, Depth: 1})
	f.submit(f.t.CommandEncoderFinish(enc, nil))
	f.wantNoErrors(t)

	got := f.read(t, out)
	red := []byte{255, 0, 0, 255, 255, 0, 0, 255}
	for row := range 2 {
		line := got[row*rowPitchAlignment : row*rowPitchAlignment+8]
		if !bytes.Equal(line, red) {
			t.Errorf("row %d = %v, want %v", row, line, red)
		}
	}
}

func TestBufferTextureRoundTrip(t *testing.T) {
	f := newFixture(t)
	src := f.buffer(rowPitchAlignment*3, gputypes.BufferUsageCopySrc|gputypes.BufferUsageCopyDst)
	payload := make([]byte, rowPitchAlignment*3)
	for i := range payload {
		payload[i] = byte(i)
	}
	f.t.BufferSetSubData(src, 0, uint64(len(payload)), &payload[0])
	tex := f.texture(3, 3, gputypes.TextureFormatR8Unorm, gputypes.TextureUsageCopyDst|gputypes.TextureUsageCopySrc)
	out := f.buffer(rowPitchAlignment*3, gputypes.BufferUsageCopyDst|gputypes.BufferUsageMapRead)

	size := &proc.Extent3D{Width: 3, Height: 3, Depth: 1}
	enc := f.t.DeviceCreateCommandEncoder(f.dev, nil)
	f.t.CommandEncoderCopyBufferToTexture(enc, &proc.BufferCopyView{Buffer: src, RowPitch: rowPitchAlignment}, &proc.TextureCopyView{Texture: tex}, size)
	f.t.CommandEncoderCopyTextureToBuffer(enc, &proc.TextureCopyView{Texture: tex}, &proc.BufferCopyView{Buffer: out, RowPitch: rowPitchAlignment}, size)
	f.submit(f.t.CommandEncoderFinish(enc, nil))
	f.wantNoErrors(t)

	got := f.read(t, out)
	for row := range 3 {
		start := row * rowPitchAlignment
		if !bytes.Equal(got[start:start+3], payload[start:start+3]) {
			t.Errorf("row %d = %v, want %v", row, got[start:start+3], payload[start:start+3])
		}
	}
}

func TestMapReadErrors(t *testing.T) {
	f := newFixture(t)
	b := f.buffer(4, gputypes.BufferUsageCopyDst)
	status := proc.BufferMapAsyncStatusSuccess
	f.t.BufferMapReadAsync(b, func(s proc.BufferMapAsyncStatus, _ *byte, _ uint64, _ uintptr) { status = s }, 0)
	f.wantError(t, "MapRead")
	f.t.DeviceTick(f.dev)
	if status != proc.BufferMapAsyncStatusError {
		t.Errorf("status = %v, want error", status)
	}

	readable := f.buffer(4, gputypes.BufferUsageMapRead)
	f.t.BufferMapReadAsync(readable, func(s proc.BufferMapAsyncStatus, _ *byte, _ uint64, _ uintptr) { status = s }, 0)
	f.t.BufferUnmap(readable)
	f.t.DeviceTick(f.dev)
	if status != proc.BufferMapAsyncStatusUnknown {
		t.Errorf("status after unmap = %v, want unknown", status)
	}
}

func TestFence(t *testing.T) {
	f := newFixture(t)
	fence := f.t.QueueCreateFence(f.queue, &proc.FenceDescriptor{InitialValue: 1})
	var fired []proc.FenceCompletionStatus
	record := func(s proc.FenceCompletionStatus, _ uintptr) { fired = append(fired, s) }

	f.t.QueueSignal(f.queue, fence, 3)
	f.t.FenceOnCompletion(fence, 2, record, 0)
	if v := f.t.FenceGetCompletedValue(fence); v != 1 {
		t.Errorf("completed value before tick = %d, want 1", v)
	}
	f.t.DeviceTick(f.dev)
	if v := f.t.FenceGetCompletedValue(fence); v != 3 {
		t.Errorf("completed value = %d, want 3", v)
	}
	if len(fired) != 1 || fired[0] != proc.FenceCompletionStatusSuccess {
		t.Errorf("callbacks = %v", fired)
	}

	f.t.QueueSignal(f.queue, fence, 3)
	f.wantError(t, "not greater")

	f.t.FenceOnCompletion(fence, 9, record, 0)
	f.wantError(t, "greater than signaled")
	f.t.DeviceTick(f.dev)
	if fired[len(fired)-1] != proc.FenceCompletionStatusError {
		t.Errorf("last status = %v, want error", fired[len(fired)-1])
	}
}

func TestBindGroupLayoutFromPipeline(t *testing.T) {
	f := newFixture(t)
	bindings := []proc.BindGroupLayoutBinding{{Binding: 0, Type: proc.BindingTypeStorageBuffer}}
	bgl := f.t.DeviceCreateBindGroupLayout(f.dev, &proc.BindGroupLayoutDescriptor{BindingCount: 1, Bindings: &bindings[0]})
	layout := f.t.DeviceCreatePipelineLayout(f.dev, &proc.PipelineLayoutDescriptor{BindGroupLayoutCount: 1, BindGroupLayouts: &bgl})
	code := []uint32{spirvMagic, 0x00010000, 0, 1, 0}
	mod := f.t.DeviceCreateShaderModule(f.dev, &proc.ShaderModuleDescriptor{CodeSize: uint32(len(code)), Code: &code[0]})
	pl := f.t.DeviceCreateComputePipeline(f.dev, &proc.ComputePipelineDescriptor{
		Layout:       layout,
		ComputeStage: proc.ProgrammableStageDescriptor{Module: mod, EntryPoint: proc.CString("main")},
	})
	f.wantNoErrors(t)

	got := f.t.ComputePipelineGetBindGroupLayout(pl, 0)
	if got != bgl {
		t.Errorf("GetBindGroupLayout = %d, want %d", got, bgl)
	}
	if refs := f.m.Refs(uintptr(bgl)); refs != 3 {
		t.Errorf("layout refs = %d, want 3 (creator, pipeline layout, getter)", refs)
	}
	f.t.ComputePipelineGetBindGroupLayout(pl, 1)
	f.wantError(t, "no bind group 1")

	f.t.PipelineLayoutRelease(layout)
	f.t.ComputePipelineRelease(pl)
	if refs := f.m.Refs(uintptr(bgl)); refs != 2 {
		t.Errorf("layout refs after releases = %d, want 2", refs)
	}
}

func TestPipelineLayoutReleaseOrder(t *testing.T) {
	tests := []struct {
		name          string
		pipelineFirst bool
	}{
		{"layout first", false},
		{"pipeline first", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			before := f.m.Live()
			bindings := []proc.BindGroupLayoutBinding{{Binding: 0, Type: proc.BindingTypeStorageBuffer}}
			bgl := f.t.DeviceCreateBindGroupLayout(f.dev, &proc.BindGroupLayoutDescriptor{BindingCount: 1, Bindings: &bindings[0]})
			layout := f.t.DeviceCreatePipelineLayout(f.dev, &proc.PipelineLayoutDescriptor{BindGroupLayoutCount: 1, BindGroupLayouts: &bgl})
			code := []uint32{spirvMagic, 0x00010000, 0, 1, 0}
			mod := f.t.DeviceCreateShaderModule(f.dev, &proc.ShaderModuleDescriptor{CodeSize: uint32(len(code)), Code: &code[0]})
			pl := f.t.DeviceCreateComputePipeline(f.dev, &proc.ComputePipelineDescriptor{
				Layout:       layout,
				ComputeStage: proc.ProgrammableStageDescriptor{Module: mod, EntryPoint: proc.CString("main")},
			})
			f.wantNoErrors(t)
			f.t.ShaderModuleRelease(mod)

			if tt.pipelineFirst {
				f.t.ComputePipelineRelease(pl)
				f.t.PipelineLayoutRelease(layout)
			} else {
				f.t.PipelineLayoutRelease(layout)
				f.t.ComputePipelineRelease(pl)
			}
			if refs := f.m.Refs(uintptr(layout)); refs != 0 {
				t.Errorf("pipeline layout refs = %d, want 0", refs)
			}
			if refs := f.m.Refs(uintptr(bgl)); refs != 1 {
				t.Errorf("bind group layout refs = %d, want 1", refs)
			}
			f.t.BindGroupLayoutRelease(bgl)
			if f.m.Live() != before {
				t.Errorf("live = %d, want %d", f.m.Live(), before)
			}
		})
	}
}

func TestShaderModuleValidation(t *testing.T) {
	f := newFixture(t)
	code := []uint32{0xdeadbeef, 0, 0, 0, 0}
	f.t.DeviceCreateShaderModule(f.dev, &proc.ShaderModuleDescriptor{CodeSize: uint32(len(code)), Code: &code[0]})
	f.wantError(t, "magic")
}

func TestConcurrentDeviceCallPanics(t *testing.T) {
	f := newFixture(t)
	d := f.m.device(f.dev)
	leave := d.enter()
	defer leave()
	defer func() {
		if recover() == nil {
			t.Error("overlapping device call did not panic")
		}
	}()
	f.buffer(4, gputypes.BufferUsageCopyDst)
}

func TestReleaseCounts(t *testing.T) {
	f := newFixture(t)
	before := f.m.Live()
	b := f.buffer(4, gputypes.BufferUsageCopyDst)
	f.t.BufferReference(b)
	f.t.BufferRelease(b)
	if f.m.Live() != before+1 {
		t.Fatalf("buffer died while referenced")
	}
	f.t.BufferRelease(b)
	if f.m.Live() != before {
		t.Errorf("live = %d, want %d", f.m.Live(), before)
	}
	defer func() {
		if recover() == nil {
			t.Error("release of a dead handle did not panic")
		}
	}()
	f.t.BufferRelease(b)
}

func TestNativeSwapChain(t *testing.T) {
	f := newFixture(t)
	impl := f.t.DeviceCreateNativeSwapChainImpl(f.dev, &proc.NativeSwapChainDescriptor{BackendType: proc.BackendTypeNull, Window: 1})
	if impl == 0 {
		t.Fatalf("native swap chain not created: %v", f.errors)
	}
	if got := f.t.DeviceGetNativeSwapChainFormat(f.dev, impl); got != uint32(gputypes.TextureFormatBGRA8Unorm) {
		t.Errorf("native format = %d", got)
	}
	sc := f.t.DeviceCreateSwapChain(f.dev, 0, &proc.SwapChainDescriptor{Implementation: impl})
	f.t.SwapChainPresent(sc)
	f.wantError(t, "no texture acquired")

	f.t.SwapChainConfigure(sc, uint32(gputypes.TextureFormatBGRA8Unorm), uint32(gputypes.TextureUsageRenderAttachment), 8, 8)
	view := f.t.SwapChainGetCurrentTextureView(sc)
	f.t.SwapChainPresent(sc)
	f.wantNoErrors(t)
	f.t.TextureViewRelease(view)

	if f.t.DeviceCreateNativeSwapChainImpl(f.dev, &proc.NativeSwapChainDescriptor{BackendType: proc.BackendTypeVulkan}) != 0 {
		t.Error("vulkan parameters accepted by a null device")
	}
	f.wantError(t, "Vulkan")
}

func TestRenderBundle(t *testing.T) {
	f := newFixture(t)
	formats := []uint32{uint32(gputypes.TextureFormatRGBA8Unorm)}
	be := f.t.DeviceCreateRenderBundleEncoder(f.dev, &proc.RenderBundleEncoderDescriptor{ColorFormatsCount: 1, ColorFormats: &formats[0], SampleCount: 1})
	f.t.RenderBundleEncoderDraw(be, 3, 1, 0, 0)
	bundle := f.t.RenderBundleEncoderFinish(be, nil)
	f.wantError(t, "no pipeline set")
	if !lookup[*renderBundle](f.m.objs, uintptr(bundle)).invalid {
		t.Error("bundle with a failed draw is valid")
	}
}

func TestInjectErrorWithoutCallbackLogs(t *testing.T) {
	f := newFixture(t)
	f.t.DeviceSetUncapturedErrorCallback(f.dev, nil, 0)
	f.t.DeviceInjectError(f.dev, proc.ErrorTypeOutOfMemory, proc.CString("boom"))
	if len(f.errors) != 0 {
		t.Errorf("cleared callback still called: %v", f.errors)
	}
}

func TestLabelReachesErrors(t *testing.T) {
	f := newFixture(t)
	l := proc.NewLabel("vertices")
	f.t.DeviceCreateBuffer(f.dev, &proc.BufferDescriptor{Label: l.Ptr(), Size: 4})
	f.wantError(t, `"vertices"`)
}
