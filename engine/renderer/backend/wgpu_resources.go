package backend

import "github.com/cogentcore/webgpu/wgpu"

// The wgpu* types below wrap native objects so the renderer only sees backend interfaces.
// Release clears the reference so a second Release is harmless.

type wgpuBuffer struct {
	label string
	size  uint64
	usage wgpu.BufferUsage
	buf   *wgpu.Buffer
}

var _ Buffer = &wgpuBuffer{}

func (b *wgpuBuffer) Label() string           { return b.label }
func (b *wgpuBuffer) Size() uint64            { return b.size }
func (b *wgpuBuffer) Usage() wgpu.BufferUsage { return b.usage }
func (b *wgpuBuffer) Release() {
	if b.buf != nil {
		b.buf.Release()
		b.buf = nil
	}
}

type wgpuTexture struct {
	label         string
	width, height uint32
	format        wgpu.TextureFormat
	tex           *wgpu.Texture
}

var _ Texture = &wgpuTexture{}

func (t *wgpuTexture) Label() string              { return t.label }
func (t *wgpuTexture) Width() uint32              { return t.width }
func (t *wgpuTexture) Height() uint32             { return t.height }
func (t *wgpuTexture) Format() wgpu.TextureFormat { return t.format }
func (t *wgpuTexture) Release() {
	if t.tex != nil {
		t.tex.Release()
		t.tex = nil
	}
}

type wgpuTextureView struct {
	label string
	view  *wgpu.TextureView
}

func (v *wgpuTextureView) Label() string { return v.label }
func (v *wgpuTextureView) Release() {
	if v.view != nil {
		v.view.Release()
		v.view = nil
	}
}

type wgpuSampler struct {
	label   string
	sampler *wgpu.Sampler
}

func (s *wgpuSampler) Label() string { return s.label }
func (s *wgpuSampler) Release() {
	if s.sampler != nil {
		s.sampler.Release()
		s.sampler = nil
	}
}

type wgpuBindGroupLayout struct {
	label  string
	layout *wgpu.BindGroupLayout
}

func (l *wgpuBindGroupLayout) Label() string { return l.label }
func (l *wgpuBindGroupLayout) Release() {
	if l.layout != nil {
		l.layout.Release()
		l.layout = nil
	}
}

type wgpuBindGroup struct {
	label string
	group *wgpu.BindGroup
}

func (g *wgpuBindGroup) Label() string { return g.label }
func (g *wgpuBindGroup) Release() {
	if g.group != nil {
		g.group.Release()
		g.group = nil
	}
}

type wgpuRenderPipeline struct {
	label    string
	pipeline *wgpu.RenderPipeline
	layout   *wgpu.PipelineLayout
	module   *wgpu.ShaderModule
}

func (p *wgpuRenderPipeline) Label() string { return p.label }
func (p *wgpuRenderPipeline) Release() {
	if p.pipeline != nil {
		p.pipeline.Release()
		p.pipeline = nil
	}
	if p.layout != nil {
		p.layout.Release()
		p.layout = nil
	}
	if p.module != nil {
		p.module.Release()
		p.module = nil
	}
}

// unwrap helpers turn interface values created by another backend into a clear error
// instead of a panic.

func asWGPUBuffer(b Buffer) (*wgpu.Buffer, bool) {
	w, ok := b.(*wgpuBuffer)
	if !ok || w.buf == nil {
		return nil, false
	}
	return w.buf, true
}

func asWGPUTexture(t Texture) (*wgpu.Texture, bool) {
	w, ok := t.(*wgpuTexture)
	if !ok || w.tex == nil {
		return nil, false
	}
	return w.tex, true
}

func asWGPUTextureView(v TextureView) (*wgpu.TextureView, bool) {
	w, ok := v.(*wgpuTextureView)
	if !ok || w.view == nil {
		return nil, false
	}
	return w.view, true
}

func asWGPUSampler(s Sampler) (*wgpu.Sampler, bool) {
	w, ok := s.(*wgpuSampler)
	if !ok || w.sampler == nil {
		return nil, false
	}
	return w.sampler, true
}

func asWGPUBindGroupLayout(l BindGroupLayout) (*wgpu.BindGroupLayout, bool) {
	w, ok := l.(*wgpuBindGroupLayout)
	if !ok || w.layout == nil {
		return nil, false
	}
	return w.layout, true
}

func asWGPUBindGroup(g BindGroup) (*wgpu.BindGroup, bool) {
	w, ok := g.(*wgpuBindGroup)
	if !ok || w.group == nil {
		return nil, false
	}
	return w.group, true
}

func asWGPURenderPipeline(p RenderPipeline) (*wgpu.RenderPipeline, bool) {
	w, ok := p.(*wgpuRenderPipeline)
	if !ok || w.pipeline == nil {
		return nil, false
	}
	return w.pipeline, true
}
