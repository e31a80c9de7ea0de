package pipeline

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/bismuth/engine/renderer/backend"
	"github.com/Carmen-Shannon/bismuth/engine/renderer/shader"
	"github.com/Carmen-Shannon/bismuth/engine/renderer/texture"
	"github.com/cogentcore/webgpu/wgpu"
)

// pipeline holds the fixed render state chosen at construction and the GPU pipeline built
// from it. None of the state changes after Build.
type pipeline struct {
	label  string
	shader shader.Shader

	vertexBuffers []wgpu.VertexBufferLayout

	depthFormat       wgpu.TextureFormat
	depthWriteEnabled bool
	depthCompare      wgpu.CompareFunction
	cullMode          wgpu.CullMode
	topology          wgpu.PrimitiveTopology
	frontFace         wgpu.FrontFace
	writeMask         wgpu.ColorWriteMask
	blendState        *wgpu.BlendState
	sampleCount       uint32
	validate          bool

	renderPipeline backend.RenderPipeline
}

// Pipeline describes and owns one render pipeline.
type Pipeline interface {
	// Label returns the pipeline's debug label.
	Label() string

	// Shader returns the WGSL module both stages come from.
	Shader() shader.Shader

	// DepthWriteEnabled reports whether fragments write depth.
	DepthWriteEnabled() bool

	// DepthCompare returns the depth test function.
	DepthCompare() wgpu.CompareFunction

	// CullMode returns which faces are discarded.
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology.
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the winding order treated as front-facing.
	FrontFace() wgpu.FrontFace

	// BlendState returns the color blend state, or nil to replace.
	BlendState() *wgpu.BlendState

	// SampleCount returns the multisample count.
	SampleCount() uint32

	// Descriptor returns the full pipeline description for the given color target and bind
	// group layouts, in group order.
	//
	// Parameters:
	//   - colorFormat: format of the surface the pipeline renders into
	//   - layouts: bind group layouts indexed by group
	//
	// Returns:
	//   - backend.RenderPipelineDescriptor: the description passed to the backend
	Descriptor(colorFormat wgpu.TextureFormat, layouts []backend.BindGroupLayout) backend.RenderPipelineDescriptor

	// Build validates the shader if requested and creates the GPU pipeline.
	//
	// Parameters:
	//   - b: the backend to build on
	//   - colorFormat: format of the surface the pipeline renders into
	//   - layouts: bind group layouts indexed by group
	//
	// Returns:
	//   - error: an error if validation or creation failed
	Build(b backend.Backend, colorFormat wgpu.TextureFormat, layouts []backend.BindGroupLayout) error

	// RenderPipeline returns the built GPU pipeline, or nil before Build.
	RenderPipeline() backend.RenderPipeline

	// Release frees the GPU pipeline.
	Release()
}

var _ Pipeline = &pipeline{}

// ReplaceBlend writes the fragment color unchanged.
var ReplaceBlend = wgpu.BlendState{
	Color: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorZero,
		Operation: wgpu.BlendOperationAdd,
	},
	Alpha: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorZero,
		Operation: wgpu.BlendOperationAdd,
	},
}

// NewPipeline creates a pipeline description with opaque mesh defaults: triangle list,
// counter-clockwise front faces, back-face culling, depth test Less with writes, replace
// blending and one sample per pixel.
//
// Parameters:
//   - label: debug label for the pipeline
//   - s: the WGSL module providing both stages
//   - opts: functional options overriding the defaults
//
// Returns:
//   - Pipeline: the pipeline description; call Build to create the GPU object
func NewPipeline(label string, s shader.Shader, opts ...PipelineBuilderOption) Pipeline {
	blend := ReplaceBlend
	p := &pipeline{
		label:             label,
		shader:            s,
		depthFormat:       texture.DepthFormat,
		depthWriteEnabled: true,
		depthCompare:      wgpu.CompareFunctionLess,
		cullMode:          wgpu.CullModeBack,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
		blendState:        &blend,
		sampleCount:       1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) Label() string {
	return p.label
}

func (p *pipeline) Shader() shader.Shader {
	return p.shader
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) DepthCompare() wgpu.CompareFunction {
	return p.depthCompare
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) SampleCount() uint32 {
	return p.sampleCount
}

func (p *pipeline) RenderPipeline() backend.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) Descriptor(colorFormat wgpu.TextureFormat, layouts []backend.BindGroupLayout) backend.RenderPipelineDescriptor {
	return backend.RenderPipelineDescriptor{
		Label:              p.label,
		ShaderSource:       p.shader.Source,
		VertexEntryPoint:   p.shader.VertexEntryPoint,
		FragmentEntryPoint: p.shader.FragmentEntryPoint,
		BindGroupLayouts:   layouts,
		VertexBuffers:      p.vertexBuffers,
		ColorFormat:        colorFormat,
		Blend:              p.blendState,
		WriteMask:          p.writeMask,
		Topology:           p.topology,
		FrontFace:          p.frontFace,
		CullMode:           p.cullMode,
		DepthFormat:        p.depthFormat,
		DepthWriteEnabled:  p.depthWriteEnabled,
		DepthCompare:       p.depthCompare,
		SampleCount:        p.sampleCount,
	}
}

func (p *pipeline) Build(b backend.Backend, colorFormat wgpu.TextureFormat, layouts []backend.BindGroupLayout) error {
	if p.renderPipeline != nil {
		return errors.New("pipeline has already been built")
	}
	if p.validate {
		if err := p.shader.Validate(); err != nil {
			return err
		}
	}
	rp, err := b.CreateRenderPipeline(p.Descriptor(colorFormat, layouts))
	if err != nil {
		return fmt.Errorf("failed to build pipeline %q: %w", p.label, err)
	}
	p.renderPipeline = rp
	return nil
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
}
