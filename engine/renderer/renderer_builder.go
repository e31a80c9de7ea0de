package renderer

import "github.com/cogentcore/webgpu/wgpu"

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
// Unsupported modes fall back to the surface's first present mode.
//
// Parameters:
//   - mode: the PresentMode to use
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.presentMode = mode
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe). Only NewWGPURenderer reads this option.
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithMaterialImage replaces the embedded default material with encoded image bytes.
//
// Parameters:
//   - data: a PNG, JPEG, GIF, BMP, TIFF or WebP image
//
// Returns:
//   - RendererBuilderOption: a function that sets the material image
func WithMaterialImage(data []byte) RendererBuilderOption {
	return func(r *renderer) {
		r.materialImage = data
	}
}

// WithClearColor sets the color the frame is cleared to. Defaults to opaque black.
func WithClearColor(c wgpu.Color) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = c
	}
}

// WithFrontFace sets the winding order treated as front-facing; back faces are culled.
// Defaults to counter-clockwise.
func WithFrontFace(face wgpu.FrontFace) RendererBuilderOption {
	return func(r *renderer) {
		r.frontFace = face
	}
}

// WithShaderValidation compiles the WGSL program with naga before the pipeline is created.
func WithShaderValidation(enabled bool) RendererBuilderOption {
	return func(r *renderer) {
		r.validateShader = enabled
	}
}
