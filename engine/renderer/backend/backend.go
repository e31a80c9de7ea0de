// Package backend abstracts the GPU device, queue and presentation surface the renderer
// draws with. The WebGPU implementation lives in this package; backendtest provides a
// recording implementation for tests.
package backend

import "github.com/cogentcore/webgpu/wgpu"

// Resource is any GPU object owned by the caller that created it.
type Resource interface {
	// Label returns the debug label the resource was created with.
	Label() string

	// Release frees the underlying GPU object. Releasing twice is a no-op.
	Release()
}

// Buffer is a linear block of GPU memory.
type Buffer interface {
	Resource

	// Size returns the buffer size in bytes.
	Size() uint64

	// Usage returns the usage flags the buffer was created with.
	Usage() wgpu.BufferUsage
}

// Texture is a 2D GPU image.
type Texture interface {
	Resource

	Width() uint32
	Height() uint32
	Format() wgpu.TextureFormat
}

type TextureView interface {
	Resource
}

type Sampler interface {
	Resource
}

type BindGroupLayout interface {
	Resource
}

type BindGroup interface {
	Resource
}

type RenderPipeline interface {
	Resource
}

// BufferDescriptor describes a buffer to create.
type BufferDescriptor struct {
	Label string
	Size  uint64
	Usage wgpu.BufferUsage
}

// TextureDescriptor describes a single-sample 2D texture to create.
type TextureDescriptor struct {
	Label         string
	Width, Height uint32
	Format        wgpu.TextureFormat
	Usage         wgpu.TextureUsage
	MipLevelCount uint32
}

// SamplerDescriptor describes a sampler to create.
type SamplerDescriptor struct {
	Label                                    string
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	MagFilter, MinFilter                     wgpu.FilterMode
	MipmapFilter                             wgpu.MipmapFilterMode
}

// BindGroupEntry binds exactly one of Buffer, TextureView or Sampler to Binding.
type BindGroupEntry struct {
	Binding     uint32
	Buffer      Buffer
	TextureView TextureView
	Sampler     Sampler
}

// BindGroupDescriptor describes a bind group to create against Layout.
type BindGroupDescriptor struct {
	Label   string
	Layout  BindGroupLayout
	Entries []BindGroupEntry
}

// RenderPipelineDescriptor carries the fixed state of a render pipeline. The vertex and
// fragment stages come from the same WGSL module.
type RenderPipelineDescriptor struct {
	Label string

	ShaderSource       string
	VertexEntryPoint   string
	FragmentEntryPoint string

	BindGroupLayouts []BindGroupLayout
	VertexBuffers    []wgpu.VertexBufferLayout

	ColorFormat wgpu.TextureFormat
	Blend       *wgpu.BlendState
	WriteMask   wgpu.ColorWriteMask

	Topology  wgpu.PrimitiveTopology
	FrontFace wgpu.FrontFace
	CullMode  wgpu.CullMode

	DepthFormat       wgpu.TextureFormat
	DepthWriteEnabled bool
	DepthCompare      wgpu.CompareFunction

	SampleCount uint32
}

// RenderPassDescriptor describes the single pass of a frame. The color attachment is always
// the frame's acquired surface image, cleared to ClearColor and stored. The depth attachment
// is cleared to DepthClearValue and stored.
type RenderPassDescriptor struct {
	Label           string
	ClearColor      wgpu.Color
	DepthView       TextureView
	DepthClearValue float32
}

// Backend creates GPU resources and acquires frames from its presentation surface.
type Backend interface {
	// SurfaceCapabilities reports what the surface supports on the acquired adapter.
	//
	// Returns:
	//   - SurfaceCapabilities: supported formats, present modes and alpha modes
	SurfaceCapabilities() SurfaceCapabilities

	// ConfigureSurface (re)configures the presentation surface.
	//
	// Parameters:
	//   - cfg: the configuration to apply; width and height must be positive
	//
	// Returns:
	//   - error: an error if cfg is invalid or the surface rejects it
	ConfigureSurface(cfg SurfaceConfig) error

	CreateBuffer(desc BufferDescriptor) (Buffer, error)

	// WriteBuffer queues a write of data into buf at offset.
	WriteBuffer(buf Buffer, offset uint64, data []byte) error

	CreateTexture(desc TextureDescriptor) (Texture, error)

	// WriteTexture uploads tightly packed rows covering the whole texture.
	//
	// Parameters:
	//   - tex: the destination texture
	//   - pixels: pixel data, bytesPerRow * height bytes
	//   - bytesPerRow: length of one row in bytes
	//
	// Returns:
	//   - error: an error if the data does not cover the texture
	WriteTexture(tex Texture, pixels []byte, bytesPerRow uint32) error

	CreateTextureView(tex Texture) (TextureView, error)
	CreateSampler(desc SamplerDescriptor) (Sampler, error)
	CreateBindGroupLayout(label string, entries []wgpu.BindGroupLayoutEntry) (BindGroupLayout, error)
	CreateBindGroup(desc BindGroupDescriptor) (BindGroup, error)
	CreateRenderPipeline(desc RenderPipelineDescriptor) (RenderPipeline, error)

	// AcquireFrame acquires the next surface image and a command encoder for it. At most one
	// frame may be outstanding at a time.
	//
	// Returns:
	//   - Frame: the acquired frame
	//   - error: an error wrapping one of the surface sentinel errors on failure
	AcquireFrame() (Frame, error)

	// Release frees the device, queue and surface.
	Release()
}

// Frame is one acquired surface image plus the command encoder recording into it.
type Frame interface {
	// BeginRenderPass starts the frame's render pass. Only one pass may be open at a time.
	BeginRenderPass(desc RenderPassDescriptor) (RenderPass, error)

	// Submit finishes the command encoder and submits it. Every pass must have ended.
	Submit() error

	// Present shows the acquired image.
	Present()

	// Release frees the frame's image, view and encoder. Safe after Present.
	Release()
}

// RenderPass records draw commands.
type RenderPass interface {
	SetPipeline(p RenderPipeline)
	SetBindGroup(index uint32, group BindGroup)
	SetVertexBuffer(slot uint32, buf Buffer)
	SetIndexBuffer(buf Buffer, format wgpu.IndexFormat)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)

	// End closes the pass. Commands recorded after End are invalid.
	End() error
}
