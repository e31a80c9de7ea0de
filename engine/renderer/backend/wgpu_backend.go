package backend

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

type wgpuBackendImpl struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface
	device   *wgpu.Device
	queue    *wgpu.Queue

	forceFallbackAdapter bool
	deviceLabel          string

	configured bool
	frame      *wgpuFrame
}

var _ Backend = &wgpuBackendImpl{}

// NewWGPUBackend creates the WebGPU instance and surface, then blocks until an adapter
// compatible with the surface and a device on it are acquired. The calling goroutine is
// locked to its OS thread, which must be the thread that owns the window.
//
// Parameters:
//   - surfaceDescriptor: the platform surface descriptor for the window to draw into
//   - options: functional options to configure adapter and device selection
//
// Returns:
//   - Backend: the initialised backend
//   - error: an error if no adapter or device could be acquired
func NewWGPUBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, options ...WGPUBackendOption) (Backend, error) {
	if surfaceDescriptor == nil {
		return nil, errors.New("surface descriptor is nil")
	}
	runtime.LockOSThread()

	b := &wgpuBackendImpl{
		mu:          &sync.Mutex{},
		deviceLabel: "Main Device",
	}
	for _, option := range options {
		option(b)
	}

	b.instance = wgpu.CreateInstance(nil)
	b.surface = b.instance.CreateSurface(surfaceDescriptor)
	if b.surface == nil {
		b.Release()
		return nil, errors.New("failed to create surface")
	}

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: b.forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("failed to acquire adapter: %w", err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: b.deviceLabel,
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("failed to acquire device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()

	return b, nil
}

func (b *wgpuBackendImpl) SurfaceCapabilities() SurfaceCapabilities {
	b.mu.Lock()
	defer b.mu.Unlock()

	caps := b.surface.GetCapabilities(b.adapter)
	return SurfaceCapabilities{
		Formats:      caps.Formats,
		PresentModes: caps.PresentModes,
		AlphaModes:   caps.AlphaModes,
	}
}

func (b *wgpuBackendImpl) ConfigureSurface(cfg SurfaceConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      cfg.Format,
		Width:       cfg.Width,
		Height:      cfg.Height,
		PresentMode: cfg.PresentMode,
		AlphaMode:   cfg.AlphaMode,
	})
	b.configured = true
	return nil
}

func (b *wgpuBackendImpl) CreateBuffer(desc BufferDescriptor) (Buffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            desc.Label,
		Size:             desc.Size,
		Usage:            desc.Usage,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create buffer %q: %w", desc.Label, err)
	}
	return &wgpuBuffer{label: desc.Label, size: desc.Size, usage: desc.Usage, buf: buf}, nil
}

func (b *wgpuBackendImpl) WriteBuffer(buf Buffer, offset uint64, data []byte) error {
	native, ok := asWGPUBuffer(buf)
	if !ok {
		return errors.New("buffer was not created by this backend or has been released")
	}
	if offset+uint64(len(data)) > buf.Size() {
		return fmt.Errorf("write of %d bytes at offset %d overflows buffer %q of %d bytes", len(data), offset, buf.Label(), buf.Size())
	}
	if len(data) == 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.queue.WriteBuffer(native, offset, data)
	return nil
}

func (b *wgpuBackendImpl) CreateTexture(desc TextureDescriptor) (Texture, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	mips := desc.MipLevelCount
	if mips == 0 {
		mips = 1
	}
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     desc.Label,
		Usage:     desc.Usage,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: 1,
		},
		Format:        desc.Format,
		MipLevelCount: mips,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create texture %q: %w", desc.Label, err)
	}
	return &wgpuTexture{label: desc.Label, width: desc.Width, height: desc.Height, format: desc.Format, tex: tex}, nil
}

func (b *wgpuBackendImpl) WriteTexture(tex Texture, pixels []byte, bytesPerRow uint32) error {
	native, ok := asWGPUTexture(tex)
	if !ok {
		return errors.New("texture was not created by this backend or has been released")
	}
	if uint64(len(pixels)) < uint64(bytesPerRow)*uint64(tex.Height()) {
		return fmt.Errorf("texture %q needs %d bytes, got %d", tex.Label(), uint64(bytesPerRow)*uint64(tex.Height()), len(pixels))
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  native,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  bytesPerRow,
			RowsPerImage: tex.Height(),
		},
		&wgpu.Extent3D{
			Width:              tex.Width(),
			Height:             tex.Height(),
			DepthOrArrayLayers: 1,
		},
	)
	return nil
}

func (b *wgpuBackendImpl) CreateTextureView(tex Texture) (TextureView, error) {
	native, ok := asWGPUTexture(tex)
	if !ok {
		return nil, errors.New("texture was not created by this backend or has been released")
	}
	view, err := native.CreateView(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create view of %q: %w", tex.Label(), err)
	}
	return &wgpuTextureView{label: tex.Label() + " View", view: view}, nil
}

func (b *wgpuBackendImpl) CreateSampler(desc SamplerDescriptor) (Sampler, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         desc.Label,
		AddressModeU:  desc.AddressModeU,
		AddressModeV:  desc.AddressModeV,
		AddressModeW:  desc.AddressModeW,
		MagFilter:     desc.MagFilter,
		MinFilter:     desc.MinFilter,
		MipmapFilter:  desc.MipmapFilter,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sampler %q: %w", desc.Label, err)
	}
	return &wgpuSampler{label: desc.Label, sampler: s}, nil
}

func (b *wgpuBackendImpl) CreateBindGroupLayout(label string, entries []wgpu.BindGroupLayoutEntry) (BindGroupLayout, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	layout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   label,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bind group layout %q: %w", label, err)
	}
	return &wgpuBindGroupLayout{label: label, layout: layout}, nil
}

func (b *wgpuBackendImpl) CreateBindGroup(desc BindGroupDescriptor) (BindGroup, error) {
	layout, ok := asWGPUBindGroupLayout(desc.Layout)
	if !ok {
		return nil, fmt.Errorf("bind group %q has no valid layout", desc.Label)
	}

	entries := make([]wgpu.BindGroupEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		entry := wgpu.BindGroupEntry{Binding: e.Binding}
		switch {
		case e.Buffer != nil:
			buf, ok := asWGPUBuffer(e.Buffer)
			if !ok {
				return nil, fmt.Errorf("bind group %q binding %d: invalid buffer", desc.Label, e.Binding)
			}
			entry.Buffer = buf
			entry.Offset = 0
			entry.Size = wgpu.WholeSize
		case e.TextureView != nil:
			view, ok := asWGPUTextureView(e.TextureView)
			if !ok {
				return nil, fmt.Errorf("bind group %q binding %d: invalid texture view", desc.Label, e.Binding)
			}
			entry.TextureView = view
		case e.Sampler != nil:
			s, ok := asWGPUSampler(e.Sampler)
			if !ok {
				return nil, fmt.Errorf("bind group %q binding %d: invalid sampler", desc.Label, e.Binding)
			}
			entry.Sampler = s
		default:
			return nil, fmt.Errorf("bind group %q binding %d has no resource", desc.Label, e.Binding)
		}
		entries[i] = entry
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	group, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bind group %q: %w", desc.Label, err)
	}
	return &wgpuBindGroup{label: desc.Label, group: group}, nil
}

func (b *wgpuBackendImpl) CreateRenderPipeline(desc RenderPipelineDescriptor) (RenderPipeline, error) {
	layouts := make([]*wgpu.BindGroupLayout, len(desc.BindGroupLayouts))
	for i, l := range desc.BindGroupLayouts {
		native, ok := asWGPUBindGroupLayout(l)
		if !ok {
			return nil, fmt.Errorf("pipeline %q: bind group layout %d is invalid", desc.Label, i)
		}
		layouts[i] = native
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: desc.Label + " Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: desc.ShaderSource,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create shader module for %q: %w", desc.Label, err)
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            desc.Label + " Layout",
		BindGroupLayouts: layouts,
	})
	if err != nil {
		module.Release()
		return nil, fmt.Errorf("failed to create pipeline layout for %q: %w", desc.Label, err)
	}

	sampleCount := desc.SampleCount
	if sampleCount == 0 {
		sampleCount = 1
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: desc.VertexEntryPoint,
			Buffers:    desc.VertexBuffers,
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: desc.FragmentEntryPoint,
			Targets: []wgpu.ColorTargetState{
				{
					Format:    desc.ColorFormat,
					Blend:     desc.Blend,
					WriteMask: desc.WriteMask,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  desc.Topology,
			FrontFace: desc.FrontFace,
			CullMode:  desc.CullMode,
		},
		Multisample: wgpu.MultisampleState{
			Count: sampleCount,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            desc.DepthFormat,
			DepthWriteEnabled: desc.DepthWriteEnabled,
			DepthCompare:      desc.DepthCompare,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		pipelineLayout.Release()
		module.Release()
		return nil, fmt.Errorf("failed to create render pipeline %q: %w", desc.Label, err)
	}

	return &wgpuRenderPipeline{label: desc.Label, pipeline: created, layout: pipelineLayout, module: module}, nil
}

func (b *wgpuBackendImpl) AcquireFrame() (Frame, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.configured {
		return nil, errors.New("surface has not been configured")
	}
	// A second acquire while an image is held fails inside wgpu-native with
	// "Surface image is already acquired".
	if b.frame != nil {
		return nil, ErrFrameInFlight
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return nil, ClassifySurfaceError(err)
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return nil, fmt.Errorf("failed to create surface view: %w", err)
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return nil, fmt.Errorf("failed to create command encoder: %w", err)
	}

	b.frame = &wgpuFrame{
		backend: b,
		texture: surfaceTexture,
		view:    view,
		encoder: encoder,
	}
	return b.frame, nil
}

func (b *wgpuBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frame != nil {
		b.frame.releaseLocked()
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
