package bind_group_provider

import (
	"github.com/Carmen-Shannon/bismuth/engine/renderer/backend"
	"github.com/cogentcore/webgpu/wgpu"
)

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithUniformBuffer declares a uniform buffer binding. The buffer is created zeroed by Init.
//
// Parameters:
//   - binding: the binding index
//   - size: buffer size in bytes
//   - visibility: shader stages that read the buffer
//
// Returns:
//   - BindGroupProviderOption: a function that declares the binding
func WithUniformBuffer(binding uint32, size uint64, visibility wgpu.ShaderStage) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.entries = append(p.entries, stagedEntry{binding: binding, kind: entryUniform, size: size, visibility: visibility})
	}
}

// WithTextureView declares a 2D float texture binding.
//
// Parameters:
//   - binding: the binding index
//   - view: the texture view to bind
//   - visibility: shader stages that sample the texture
//
// Returns:
//   - BindGroupProviderOption: a function that declares the binding
func WithTextureView(binding uint32, view backend.TextureView, visibility wgpu.ShaderStage) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.entries = append(p.entries, stagedEntry{binding: binding, kind: entryTexture, view: view, visibility: visibility})
	}
}

// WithSampler declares a filtering sampler binding.
//
// Parameters:
//   - binding: the binding index
//   - sampler: the sampler to bind
//   - visibility: shader stages that use the sampler
//
// Returns:
//   - BindGroupProviderOption: a function that declares the binding
func WithSampler(binding uint32, sampler backend.Sampler, visibility wgpu.ShaderStage) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.entries = append(p.entries, stagedEntry{binding: binding, kind: entrySampler, sampler: sampler, visibility: visibility})
	}
}

// WithOwned hands resources to the provider so they are released together with it, such as
// the texture whose view and sampler are bound.
func WithOwned(resources ...Releaser) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.owned = append(p.owned, resources...)
	}
}
