package pipeline

import "github.com/cogentcore/webgpu/wgpu"

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithVertexBuffers sets the vertex buffer layouts, indexed by slot.
//
// Parameters:
//   - layouts: one layout per vertex buffer slot
//
// Returns:
//   - PipelineBuilderOption: a function that sets the vertex buffer layouts
func WithVertexBuffers(layouts ...wgpu.VertexBufferLayout) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexBuffers = layouts
	}
}

// WithFrontFace sets the winding order that counts as front-facing.
//
// Parameters:
//   - face: the front face winding
//
// Returns:
//   - PipelineBuilderOption: a function that sets the front face
func WithFrontFace(face wgpu.FrontFace) PipelineBuilderOption {
	return func(p *pipeline) {
		p.frontFace = face
	}
}

// WithCullMode sets which faces are culled.
//
// Parameters:
//   - mode: the cull mode
//
// Returns:
//   - PipelineBuilderOption: a function that sets the cull mode
func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}

// WithDepthWriteEnabled sets whether depth writes are enabled for this pipeline.
func WithDepthWriteEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthWriteEnabled = enabled
	}
}

// WithDepthCompare sets the depth comparison function.
func WithDepthCompare(compare wgpu.CompareFunction) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthCompare = compare
	}
}

// WithDepthFormat sets the depth attachment format. It must match the depth texture.
func WithDepthFormat(format wgpu.TextureFormat) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthFormat = format
	}
}

// WithBlendState sets the color blend state. Nil disables blending.
func WithBlendState(state *wgpu.BlendState) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendState = state
	}
}

// WithTopology sets the primitive topology.
func WithTopology(topology wgpu.PrimitiveTopology) PipelineBuilderOption {
	return func(p *pipeline) {
		p.topology = topology
	}
}

// WithShaderValidation compiles the shader with naga before the pipeline is created.
func WithShaderValidation(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.validate = enabled
	}
}
