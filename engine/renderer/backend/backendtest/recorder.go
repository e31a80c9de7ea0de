// Package backendtest provides an in-memory backend.Backend that records every call, so
// renderer behaviour can be asserted without a GPU.
package backendtest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/bismuth/engine/renderer/backend"
	"github.com/cogentcore/webgpu/wgpu"
)

// Buffer is a recorded buffer. Data mirrors the buffer contents after every write.
type Buffer struct {
	label    string
	size     uint64
	usage    wgpu.BufferUsage
	Data     []byte
	Released bool
}

func (b *Buffer) Label() string           { return b.label }
func (b *Buffer) Size() uint64            { return b.size }
func (b *Buffer) Usage() wgpu.BufferUsage { return b.usage }
func (b *Buffer) Release()                { b.Released = true }

// Texture is a recorded texture. Pixels holds the last uploaded data.
type Texture struct {
	label         string
	width, height uint32
	format        wgpu.TextureFormat
	Usage         wgpu.TextureUsage
	Pixels        []byte
	Released      bool
}

func (t *Texture) Label() string              { return t.label }
func (t *Texture) Width() uint32              { return t.width }
func (t *Texture) Height() uint32             { return t.height }
func (t *Texture) Format() wgpu.TextureFormat { return t.format }
func (t *Texture) Release()                   { t.Released = true }

// Resource is a recorded view, sampler, bind group, layout or pipeline.
type Resource struct {
	label    string
	Kind     string
	Released bool

	// Source is the texture a view was created from.
	Source *Texture
	// Entries is set for bind groups.
	Entries []backend.BindGroupEntry
	// Sampler is set for samplers.
	Sampler backend.SamplerDescriptor
	// LayoutEntries is set for bind group layouts.
	LayoutEntries []wgpu.BindGroupLayoutEntry
	// Pipeline is set for render pipelines.
	Pipeline backend.RenderPipelineDescriptor
}

func (r *Resource) Label() string { return r.label }
func (r *Resource) Release()      { r.Released = true }

// Write is one recorded WriteBuffer call.
type Write struct {
	Buffer *Buffer
	Offset uint64
	Data   []byte
}

// Draw is one recorded DrawIndexed call with the state bound at the time.
type Draw struct {
	Pipeline      backend.RenderPipeline
	BindGroups    map[uint32]backend.BindGroup
	VertexBuffers map[uint32]backend.Buffer
	IndexBuffer   backend.Buffer
	IndexFormat   wgpu.IndexFormat
	IndexCount    uint32
	InstanceCount uint32
	FirstIndex    uint32
	BaseVertex    int32
	FirstInstance uint32
}

// Pass is a recorded render pass.
type Pass struct {
	Descriptor backend.RenderPassDescriptor
	Draws      []Draw
	Ended      bool

	frame         *Frame
	pipeline      backend.RenderPipeline
	bindGroups    map[uint32]backend.BindGroup
	vertexBuffers map[uint32]backend.Buffer
	indexBuffer   backend.Buffer
	indexFormat   wgpu.IndexFormat
}

// Frame is a recorded acquired frame.
type Frame struct {
	Passes    []*Pass
	Submitted bool
	Presented bool
	Released  bool

	recorder *Recorder
}

// Recorder implements backend.Backend in memory.
type Recorder struct {
	mu sync.Mutex

	// Capabilities is returned by SurfaceCapabilities.
	Capabilities backend.SurfaceCapabilities

	// AcquireErrors are returned by successive AcquireFrame calls before frames succeed again.
	AcquireErrors []error

	// FailPipeline makes CreateRenderPipeline fail with this error.
	FailPipeline error

	// FailTexture makes CreateTexture fail with this error.
	FailTexture error

	// FailConfigure makes ConfigureSurface fail with this error.
	FailConfigure error

	Configures []backend.SurfaceConfig
	Buffers    []*Buffer
	Writes     []Write
	Textures   []*Texture
	Resources  []*Resource
	Frames     []*Frame

	// Events lists calls in order, e.g. "ConfigureSurface", "AcquireFrame", "BeginRenderPass",
	// "DrawIndexed", "EndRenderPass", "Submit", "Present", "ReleaseFrame".
	Events []string

	Released bool

	open *Frame
}

var _ backend.Backend = &Recorder{}

// NewRecorder returns a Recorder that reports an sRGB surface with FIFO presentation.
func NewRecorder() *Recorder {
	return &Recorder{
		Capabilities: backend.SurfaceCapabilities{
			Formats:      []wgpu.TextureFormat{wgpu.TextureFormatBGRA8Unorm, wgpu.TextureFormatBGRA8UnormSrgb},
			PresentModes: []wgpu.PresentMode{wgpu.PresentModeFifo, wgpu.PresentModeImmediate},
			AlphaModes:   []wgpu.CompositeAlphaMode{wgpu.CompositeAlphaModeOpaque},
		},
	}
}

func (r *Recorder) event(name string) {
	r.Events = append(r.Events, name)
}

func (r *Recorder) SurfaceCapabilities() backend.SurfaceCapabilities {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Capabilities
}

func (r *Recorder) ConfigureSurface(cfg backend.SurfaceConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailConfigure != nil {
		return r.FailConfigure
	}
	r.event("ConfigureSurface")
	r.Configures = append(r.Configures, cfg)
	return nil
}

func (r *Recorder) CreateBuffer(desc backend.BufferDescriptor) (backend.Buffer, error) {
	if desc.Size == 0 {
		return nil, fmt.Errorf("buffer %q has zero size", desc.Label)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.event("CreateBuffer")
	b := &Buffer{label: desc.Label, size: desc.Size, usage: desc.Usage, Data: make([]byte, desc.Size)}
	r.Buffers = append(r.Buffers, b)
	return b, nil
}

func (r *Recorder) WriteBuffer(buf backend.Buffer, offset uint64, data []byte) error {
	b, ok := buf.(*Buffer)
	if !ok {
		return errors.New("foreign buffer")
	}
	if b.Released {
		return fmt.Errorf("write to released buffer %q", b.label)
	}
	if offset+uint64(len(data)) > b.size {
		return fmt.Errorf("write of %d bytes at %d overflows %q (%d bytes)", len(data), offset, b.label, b.size)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.event("WriteBuffer")
	copy(b.Data[offset:], data)
	r.Writes = append(r.Writes, Write{Buffer: b, Offset: offset, Data: append([]byte(nil), data...)})
	return nil
}

func (r *Recorder) CreateTexture(desc backend.TextureDescriptor) (backend.Texture, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("texture %q has zero size", desc.Label)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailTexture != nil {
		return nil, r.FailTexture
	}
	r.event("CreateTexture")
	t := &Texture{label: desc.Label, width: desc.Width, height: desc.Height, format: desc.Format, Usage: desc.Usage}
	r.Textures = append(r.Textures, t)
	return t, nil
}

func (r *Recorder) WriteTexture(tex backend.Texture, pixels []byte, bytesPerRow uint32) error {
	t, ok := tex.(*Texture)
	if !ok {
		return errors.New("foreign texture")
	}
	if uint64(len(pixels)) < uint64(bytesPerRow)*uint64(t.height) {
		return fmt.Errorf("texture %q needs %d bytes, got %d", t.label, uint64(bytesPerRow)*uint64(t.height), len(pixels))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.event("WriteTexture")
	t.Pixels = append([]byte(nil), pixels...)
	return nil
}

func (r *Recorder) addResource(res *Resource) *Resource {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.event("Create" + res.Kind)
	r.Resources = append(r.Resources, res)
	return res
}

func (r *Recorder) CreateTextureView(tex backend.Texture) (backend.TextureView, error) {
	t, ok := tex.(*Texture)
	if !ok {
		return nil, errors.New("foreign texture")
	}
	return r.addResource(&Resource{label: t.label + " View", Kind: "TextureView", Source: t}), nil
}

func (r *Recorder) CreateSampler(desc backend.SamplerDescriptor) (backend.Sampler, error) {
	return r.addResource(&Resource{label: desc.Label, Kind: "Sampler", Sampler: desc}), nil
}

func (r *Recorder) CreateBindGroupLayout(label string, entries []wgpu.BindGroupLayoutEntry) (backend.BindGroupLayout, error) {
	return r.addResource(&Resource{label: label, Kind: "BindGroupLayout", LayoutEntries: entries}), nil
}

func (r *Recorder) CreateBindGroup(desc backend.BindGroupDescriptor) (backend.BindGroup, error) {
	if desc.Layout == nil {
		return nil, fmt.Errorf("bind group %q has no layout", desc.Label)
	}
	return r.addResource(&Resource{label: desc.Label, Kind: "BindGroup", Entries: desc.Entries}), nil
}

func (r *Recorder) CreateRenderPipeline(desc backend.RenderPipelineDescriptor) (backend.RenderPipeline, error) {
	if r.FailPipeline != nil {
		return nil, r.FailPipeline
	}
	return r.addResource(&Resource{label: desc.Label, Kind: "RenderPipeline", Pipeline: desc}), nil
}

func (r *Recorder) AcquireFrame() (backend.Frame, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.event("AcquireFrame")
	if len(r.Configures) == 0 {
		return nil, errors.New("surface has not been configured")
	}
	if r.open != nil {
		return nil, backend.ErrFrameInFlight
	}
	if len(r.AcquireErrors) > 0 {
		err := r.AcquireErrors[0]
		r.AcquireErrors = r.AcquireErrors[1:]
		return nil, err
	}
	f := &Frame{recorder: r}
	r.open = f
	r.Frames = append(r.Frames, f)
	return f, nil
}

func (r *Recorder) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.event("Release")
	r.Released = true
}

// LastConfig returns the most recent surface configuration.
func (r *Recorder) LastConfig() backend.SurfaceConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Configures) == 0 {
		return backend.SurfaceConfig{}
	}
	return r.Configures[len(r.Configures)-1]
}

// LastFrame returns the most recently acquired frame, or nil.
func (r *Recorder) LastFrame() *Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Frames) == 0 {
		return nil
	}
	return r.Frames[len(r.Frames)-1]
}

// WritesTo returns the recorded writes targeting buf.
func (r *Recorder) WritesTo(buf backend.Buffer) []Write {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Write
	for _, w := range r.Writes {
		if backend.Buffer(w.Buffer) == buf {
			out = append(out, w)
		}
	}
	return out
}

// ResourcesOf returns the recorded resources of the given kind, e.g. "RenderPipeline".
func (r *Recorder) ResourcesOf(kind string) []*Resource {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Resource
	for _, res := range r.Resources {
		if res.Kind == kind {
			out = append(out, res)
		}
	}
	return out
}

func (f *Frame) BeginRenderPass(desc backend.RenderPassDescriptor) (backend.RenderPass, error) {
	if f.Submitted {
		return nil, errors.New("frame already submitted")
	}
	if n := len(f.Passes); n > 0 && !f.Passes[n-1].Ended {
		return nil, errors.New("a render pass is already open")
	}
	f.recorder.mu.Lock()
	f.recorder.event("BeginRenderPass")
	f.recorder.mu.Unlock()
	p := &Pass{
		Descriptor:    desc,
		frame:         f,
		bindGroups:    make(map[uint32]backend.BindGroup),
		vertexBuffers: make(map[uint32]backend.Buffer),
	}
	f.Passes = append(f.Passes, p)
	return p, nil
}

func (f *Frame) Submit() error {
	if f.Submitted {
		return errors.New("frame already submitted")
	}
	for _, p := range f.Passes {
		if !p.Ended {
			return errors.New("render pass must end before the frame is submitted")
		}
	}
	f.recorder.mu.Lock()
	defer f.recorder.mu.Unlock()
	f.recorder.event("Submit")
	f.Submitted = true
	return nil
}

func (f *Frame) Present() {
	f.recorder.mu.Lock()
	defer f.recorder.mu.Unlock()
	f.recorder.event("Present")
	if f.Submitted {
		f.Presented = true
	}
}

func (f *Frame) Release() {
	f.recorder.mu.Lock()
	defer f.recorder.mu.Unlock()
	f.recorder.event("ReleaseFrame")
	f.Released = true
	if f.recorder.open == f {
		f.recorder.open = nil
	}
}

// Draws returns every draw recorded in the frame's passes.
func (f *Frame) Draws() []Draw {
	var out []Draw
	for _, p := range f.Passes {
		out = append(out, p.Draws...)
	}
	return out
}

func (p *Pass) SetPipeline(pl backend.RenderPipeline) { p.pipeline = pl }

func (p *Pass) SetBindGroup(index uint32, group backend.BindGroup) { p.bindGroups[index] = group }

func (p *Pass) SetVertexBuffer(slot uint32, buf backend.Buffer) { p.vertexBuffers[slot] = buf }

func (p *Pass) SetIndexBuffer(buf backend.Buffer, format wgpu.IndexFormat) {
	p.indexBuffer = buf
	p.indexFormat = format
}

func (p *Pass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	if p.Ended {
		return
	}
	groups := make(map[uint32]backend.BindGroup, len(p.bindGroups))
	for k, v := range p.bindGroups {
		groups[k] = v
	}
	vbs := make(map[uint32]backend.Buffer, len(p.vertexBuffers))
	for k, v := range p.vertexBuffers {
		vbs[k] = v
	}
	p.frame.recorder.mu.Lock()
	p.frame.recorder.event("DrawIndexed")
	p.frame.recorder.mu.Unlock()
	p.Draws = append(p.Draws, Draw{
		Pipeline:      p.pipeline,
		BindGroups:    groups,
		VertexBuffers: vbs,
		IndexBuffer:   p.indexBuffer,
		IndexFormat:   p.indexFormat,
		IndexCount:    indexCount,
		InstanceCount: instanceCount,
		FirstIndex:    firstIndex,
		BaseVertex:    baseVertex,
		FirstInstance: firstInstance,
	})
}

func (p *Pass) End() error {
	if p.Ended {
		return errors.New("render pass already ended")
	}
	p.frame.recorder.mu.Lock()
	p.frame.recorder.event("EndRenderPass")
	p.frame.recorder.mu.Unlock()
	p.Ended = true
	return nil
}
