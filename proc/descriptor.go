// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package proc

// Native descriptor structs. Arrays are passed as a pointer to the first
// element plus a uint32 count, strings as NUL-terminated byte pointers.
// Enumerated fields carry gputypes numbering unless the field type says
// otherwise. Pointers are only valid for the duration of the call that
// receives them.

type Extent3D struct {
	Width  uint32
	Height uint32
	Depth  uint32
}

type Origin3D struct {
	X uint32
	Y uint32
	Z uint32
}

type Color struct {
	R, G, B, A float64
}

// AdapterExtensions lists optional features exposed by an adapter or
// requested for a device.
type AdapterExtensions struct {
	TextureCompressionBC bool
}

// AdapterProperties is filled in by InstanceGetAdapterProperties. Name is
// owned by the implementation and stays valid while the instance lives.
type AdapterProperties struct {
	DeviceID    uint32
	VendorID    uint32
	Name        *byte
	AdapterType AdapterType
	BackendType BackendType
	Extensions  AdapterExtensions
}

type DeviceDescriptor struct {
	RequiredExtensionsCount   uint32
	RequiredExtensions        **byte
	ForceEnabledTogglesCount  uint32
	ForceEnabledToggles       **byte
	ForceDisabledTogglesCount uint32
	ForceDisabledToggles      **byte
}

type SurfaceDescriptor struct {
	Label   *byte
	Kind    SurfaceKind
	Display uintptr
	Window  uintptr
}

type BufferDescriptor struct {
	Label *byte
	Usage uint32
	Size  uint64
}

// CreateBufferMappedResult describes a buffer that starts out mapped for
// writing. Data stays valid until BufferUnmap.
type CreateBufferMappedResult struct {
	Buffer     Buffer
	DataLength uint64
	Data       *byte
}

type TextureDescriptor struct {
	Label           *byte
	Usage           uint32
	Dimension       uint32
	Size            Extent3D
	ArrayLayerCount uint32
	Format          uint32
	MipLevelCount   uint32
	SampleCount     uint32
}

type TextureViewDescriptor struct {
	Label           *byte
	Format          uint32
	Dimension       uint32
	BaseMipLevel    uint32
	MipLevelCount   uint32
	BaseArrayLayer  uint32
	ArrayLayerCount uint32
	Aspect          uint32
}

type SamplerDescriptor struct {
	Label        *byte
	AddressModeU uint32
	AddressModeV uint32
	AddressModeW uint32
	MagFilter    uint32
	MinFilter    uint32
	MipmapFilter uint32
	LodMinClamp  float32
	LodMaxClamp  float32
	Compare      uint32
}

// ShaderModuleDescriptor carries SPIR-V as little-endian 32-bit words.
type ShaderModuleDescriptor struct {
	Label    *byte
	CodeSize uint32
	Code     *uint32
}

type BindGroupLayoutBinding struct {
	Binding              uint32
	Visibility           uint32
	Type                 BindingType
	HasDynamicOffset     bool
	Multisampled         bool
	TextureDimension     uint32
	TextureComponentType TextureComponentType
	StorageTextureFormat uint32
}

type BindGroupLayoutDescriptor struct {
	Label        *byte
	BindingCount uint32
	Bindings     *BindGroupLayoutBinding
}

// BindGroupBinding sets exactly one of Buffer, Sampler or TextureView.
type BindGroupBinding struct {
	Binding     uint32
	Buffer      Buffer
	Offset      uint64
	Size        uint64
	Sampler     Sampler
	TextureView TextureView
}

type BindGroupDescriptor struct {
	Label        *byte
	Layout       BindGroupLayout
	BindingCount uint32
	Bindings     *BindGroupBinding
}

type PipelineLayoutDescriptor struct {
	Label                *byte
	BindGroupLayoutCount uint32
	BindGroupLayouts     *BindGroupLayout
}

type ProgrammableStageDescriptor struct {
	Module     ShaderModule
	EntryPoint *byte
}

type ComputePipelineDescriptor struct {
	Label        *byte
	Layout       PipelineLayout
	ComputeStage ProgrammableStageDescriptor
}

type VertexAttributeDescriptor struct {
	Format         uint32
	Offset         uint64
	ShaderLocation uint32
}

type VertexBufferLayoutDescriptor struct {
	ArrayStride    uint64
	StepMode       uint32
	AttributeCount uint32
	Attributes     *VertexAttributeDescriptor
}

type VertexStateDescriptor struct {
	IndexFormat       uint32
	VertexBufferCount uint32
	VertexBuffers     *VertexBufferLayoutDescriptor
}

type RasterizationStateDescriptor struct {
	FrontFace           uint32
	CullMode            uint32
	DepthBias           int32
	DepthBiasSlopeScale float32
	DepthBiasClamp      float32
}

type StencilStateFaceDescriptor struct {
	Compare     uint32
	FailOp      uint32
	DepthFailOp uint32
	PassOp      uint32
}

type DepthStencilStateDescriptor struct {
	Format            uint32
	DepthWriteEnabled bool
	DepthCompare      uint32
	StencilFront      StencilStateFaceDescriptor
	StencilBack       StencilStateFaceDescriptor
	StencilReadMask   uint32
	StencilWriteMask  uint32
}

type BlendDescriptor struct {
	Operation uint32
	SrcFactor uint32
	DstFactor uint32
}

type ColorStateDescriptor struct {
	Format     uint32
	AlphaBlend BlendDescriptor
	ColorBlend BlendDescriptor
	WriteMask  uint32
}

type RenderPipelineDescriptor struct {
	Label                  *byte
	Layout                 PipelineLayout
	VertexStage            ProgrammableStageDescriptor
	FragmentStage          *ProgrammableStageDescriptor
	VertexState            *VertexStateDescriptor
	PrimitiveTopology      uint32
	RasterizationState     *RasterizationStateDescriptor
	SampleCount            uint32
	DepthStencilState      *DepthStencilStateDescriptor
	ColorStateCount        uint32
	ColorStates            *ColorStateDescriptor
	SampleMask             uint32
	AlphaToCoverageEnabled bool
}

type CommandEncoderDescriptor struct {
	Label *byte
}

type CommandBufferDescriptor struct {
	Label *byte
}

type RenderPassColorAttachmentDescriptor struct {
	Attachment    TextureView
	ResolveTarget TextureView
	LoadOp        uint32
	StoreOp       uint32
	ClearColor    Color
}

type RenderPassDepthStencilAttachmentDescriptor struct {
	Attachment     TextureView
	DepthLoadOp    uint32
	DepthStoreOp   uint32
	ClearDepth     float32
	StencilLoadOp  uint32
	StencilStoreOp uint32
	ClearStencil   uint32
}

type RenderPassDescriptor struct {
	Label                  *byte
	ColorAttachmentCount   uint32
	ColorAttachments       *RenderPassColorAttachmentDescriptor
	DepthStencilAttachment *RenderPassDepthStencilAttachmentDescriptor
}

type ComputePassDescriptor struct {
	Label *byte
}

type BufferCopyView struct {
	Buffer      Buffer
	Offset      uint64
	RowPitch    uint32
	ImageHeight uint32
}

type TextureCopyView struct {
	Texture    Texture
	MipLevel   uint32
	ArrayLayer uint32
	Origin     Origin3D
}

type RenderBundleEncoderDescriptor struct {
	Label              *byte
	ColorFormatsCount  uint32
	ColorFormats       *uint32
	DepthStencilFormat uint32
	SampleCount        uint32
}

type RenderBundleDescriptor struct {
	Label *byte
}

type FenceDescriptor struct {
	Label        *byte
	InitialValue uint64
}

// SwapChainDescriptor configures a swap chain. Implementation is an opaque
// backend value produced for native swap chains; zero for surface-backed
// ones.
type SwapChainDescriptor struct {
	Label          *byte
	Usage          uint32
	Format         uint32
	Width          uint32
	Height         uint32
	PresentMode    PresentMode
	Implementation uint64
}

// NativeSwapChainDescriptor carries backend-specific window parameters: an
// HWND for D3D12, a VkSurfaceKHR for Vulkan.
type NativeSwapChainDescriptor struct {
	BackendType BackendType
	Window      uintptr
}

// Callback signatures. The userdata value is passed back unchanged.
type (
	ErrorCallback             func(typ ErrorType, message *byte, userdata uintptr)
	BufferMapReadCallback     func(status BufferMapAsyncStatus, data *byte, dataLength uint64, userdata uintptr)
	FenceOnCompletionCallback func(status FenceCompletionStatus, userdata uintptr)
)
