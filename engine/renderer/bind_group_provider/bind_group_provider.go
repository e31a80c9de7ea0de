package bind_group_provider

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/bismuth/engine/renderer/backend"
	"github.com/cogentcore/webgpu/wgpu"
)

// entryKind tells which resource a staged binding holds.
type entryKind int

const (
	entryUniform entryKind = iota
	entryTexture
	entrySampler
)

// stagedEntry is a binding declared before Init creates the GPU objects.
type stagedEntry struct {
	binding    uint32
	kind       entryKind
	visibility wgpu.ShaderStage
	size       uint64
	view       backend.TextureView
	sampler    backend.Sampler
}

// Releaser is anything holding GPU memory the provider should free with itself.
type Releaser interface {
	Release()
}

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label added for convenience.
	label string

	entries []stagedEntry
	owned   []Releaser

	// GPU objects populated by Init.
	bindGroup       backend.BindGroup
	bindGroupLayout backend.BindGroupLayout
	buffers         map[uint32]backend.Buffer
}

// BindGroupProvider bundles one bind group with its layout and the resources bound into it.
//
// Usage pattern:
//  1. Declare bindings with NewBindGroupProvider options (uniform buffers, texture views, samplers)
//  2. Call Init once to create the layout, the uniform buffers and the bind group
//  3. Pass Layout() to the pipeline and BindGroup() to the render pass
//  4. Update uniforms with WriteBuffers
type BindGroupProvider interface {
	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// Init creates the bind group layout, any uniform buffers, and the bind group.
	// Calling Init again after success is a no-op.
	//
	// Parameters:
	//   - b: the backend to create resources on
	//
	// Returns:
	//   - error: an error if any GPU object could not be created
	Init(b backend.Backend) error

	// BindGroupLayout returns the layout, or nil before Init.
	BindGroupLayout() backend.BindGroupLayout

	// BindGroup returns the bind group, or nil before Init.
	BindGroup() backend.BindGroup

	// Buffer returns the uniform buffer created for binding, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - backend.Buffer: the buffer or nil
	Buffer(binding uint32) backend.Buffer

	// LayoutEntries returns the layout entries derived from the declared bindings, sorted by binding.
	LayoutEntries() []wgpu.BindGroupLayoutEntry

	// Release frees the bind group, its layout, its uniform buffers, and every owned resource.
	Release()
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a provider with the given bindings. No GPU objects exist until Init.
//
// Parameters:
//   - label: debug label used for every GPU object the provider creates
//   - options: functional options declaring the bindings
//
// Returns:
//   - BindGroupProvider: the new provider
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:   label,
		buffers: make(map[uint32]backend.Buffer),
	}
	for _, option := range options {
		option(p)
	}
	sort.SliceStable(p.entries, func(i, j int) bool { return p.entries[i].binding < p.entries[j].binding })
	return p
}

func (p *bindGroupProvider) Label() string { return p.label }

func (p *bindGroupProvider) BindGroupLayout() backend.BindGroupLayout { return p.bindGroupLayout }

func (p *bindGroupProvider) BindGroup() backend.BindGroup { return p.bindGroup }

func (p *bindGroupProvider) Buffer(binding uint32) backend.Buffer { return p.buffers[binding] }

func (p *bindGroupProvider) LayoutEntries() []wgpu.BindGroupLayoutEntry {
	out := make([]wgpu.BindGroupLayoutEntry, len(p.entries))
	for i, e := range p.entries {
		entry := wgpu.BindGroupLayoutEntry{
			Binding:    e.binding,
			Visibility: e.visibility,
		}
		switch e.kind {
		case entryUniform:
			entry.Buffer = wgpu.BufferBindingLayout{
				Type:             wgpu.BufferBindingTypeUniform,
				HasDynamicOffset: false,
				MinBindingSize:   e.size,
			}
		case entryTexture:
			entry.Texture = wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
				Multisampled:  false,
			}
		case entrySampler:
			entry.Sampler = wgpu.SamplerBindingLayout{
				Type: wgpu.SamplerBindingTypeFiltering,
			}
		}
		out[i] = entry
	}
	return out
}

func (p *bindGroupProvider) Init(b backend.Backend) error {
	if p.bindGroup != nil {
		return nil
	}
	if len(p.entries) == 0 {
		return fmt.Errorf("bind group provider %q declares no bindings", p.label)
	}

	layout, err := b.CreateBindGroupLayout(p.label+" Bind Group Layout", p.LayoutEntries())
	if err != nil {
		return err
	}
	p.bindGroupLayout = layout

	groupEntries := make([]backend.BindGroupEntry, 0, len(p.entries))
	for _, e := range p.entries {
		switch e.kind {
		case entryUniform:
			buf, err := b.CreateBuffer(backend.BufferDescriptor{
				Label: fmt.Sprintf("%s Buffer %d", p.label, e.binding),
				Size:  e.size,
				Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
			})
			if err != nil {
				p.Release()
				return err
			}
			p.buffers[e.binding] = buf
			groupEntries = append(groupEntries, backend.BindGroupEntry{Binding: e.binding, Buffer: buf})
		case entryTexture:
			if e.view == nil {
				p.Release()
				return fmt.Errorf("texture binding %d of %q has no texture view", e.binding, p.label)
			}
			groupEntries = append(groupEntries, backend.BindGroupEntry{Binding: e.binding, TextureView: e.view})
		case entrySampler:
			if e.sampler == nil {
				p.Release()
				return fmt.Errorf("sampler binding %d of %q has no sampler", e.binding, p.label)
			}
			groupEntries = append(groupEntries, backend.BindGroupEntry{Binding: e.binding, Sampler: e.sampler})
		}
	}

	group, err := b.CreateBindGroup(backend.BindGroupDescriptor{
		Label:   p.label + " Bind Group",
		Layout:  layout,
		Entries: groupEntries,
	})
	if err != nil {
		p.Release()
		return err
	}
	p.bindGroup = group
	return nil
}

func (p *bindGroupProvider) Release() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	if p.bindGroupLayout != nil {
		p.bindGroupLayout.Release()
		p.bindGroupLayout = nil
	}
	for binding, buf := range p.buffers {
		buf.Release()
		delete(p.buffers, binding)
	}
	for _, r := range p.owned {
		r.Release()
	}
	p.owned = nil
}

// WriteBuffers writes every staged buffer write to the GPU queue, stopping at the first failure.
//
// Parameters:
//   - b: the backend that owns the buffers
//   - writes: the writes to apply in order
//
// Returns:
//   - error: an error if a target buffer is missing or a write fails
func WriteBuffers(b backend.Backend, writes ...BufferWrite) error {
	for _, w := range writes {
		if w.Provider == nil {
			return errors.New("buffer write has no provider")
		}
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			return fmt.Errorf("provider %q has no buffer at binding %d", w.Provider.Label(), w.Binding)
		}
		if err := b.WriteBuffer(buf, w.Offset, w.Data); err != nil {
			return err
		}
	}
	return nil
}
