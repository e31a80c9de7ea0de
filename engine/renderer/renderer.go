package renderer

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Carmen-Shannon/bismuth/assets"
	"github.com/Carmen-Shannon/bismuth/common"
	"github.com/Carmen-Shannon/bismuth/engine/camera"
	"github.com/Carmen-Shannon/bismuth/engine/renderer/backend"
	"github.com/Carmen-Shannon/bismuth/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/bismuth/engine/renderer/mesh"
	"github.com/Carmen-Shannon/bismuth/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/bismuth/engine/renderer/shader"
	"github.com/Carmen-Shannon/bismuth/engine/renderer/texture"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrReleased is returned by every operation on a released renderer.
var ErrReleased = errors.New("renderer has been released")

const (
	cameraGroup   = 0
	materialGroup = 1

	vertexSlot   = 0
	instanceSlot = 1
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backend     backend.Backend
	ownsBackend bool

	config backend.SurfaceConfig
	depth  *texture.Texture

	cameraProvider   bind_group_provider.BindGroupProvider
	materialProvider bind_group_provider.BindGroupProvider
	pipeline         pipeline.Pipeline

	meshes    *mesh.Arena
	instances []*mesh.Instance
	viewProj  common.Mat4

	// Pre-creation config collected from builder options
	presentMode          PresentMode
	forceFallbackAdapter bool
	materialImage        []byte
	clearColor           wgpu.Color
	frontFace            wgpu.FrontFace
	validateShader       bool

	meshCount     int
	instanceCount int
	released      bool
}

// Renderer draws every registered mesh instance into the window surface with one textured,
// depth-tested pipeline.
//
// A frame is acquire, one render pass, submit, present. The render pass is always ended
// before the command buffer is submitted, and at most one frame is in flight.
type Renderer interface {
	// CreateMesh uploads vertices and indices and stores the mesh in the renderer's arena.
	// Empty input produces a mesh that is kept but never drawn.
	//
	// Parameters:
	//   - vertices: the mesh vertices
	//   - indices: triangle-list indices into vertices
	//
	// Returns:
	//   - mesh.Handle: the handle instances refer to the mesh by
	//   - error: an error if the GPU buffers could not be created
	CreateMesh(vertices []mesh.Vertex, indices []uint32) (mesh.Handle, error)

	// CreateInstance appends an instance of an existing mesh to the draw list.
	//
	// Parameters:
	//   - h: the mesh handle returned by CreateMesh
	//   - transform: the column-major model matrix
	//
	// Returns:
	//   - *mesh.Instance: the new instance; update it with SetTransform
	//   - error: an error if h is unknown or the instance buffer could not be created
	CreateInstance(h mesh.Handle, transform common.Mat4) (*mesh.Instance, error)

	// AddMesh is CreateMesh followed by CreateInstance.
	AddMesh(vertices []mesh.Vertex, indices []uint32, transform common.Mat4) (*mesh.Instance, error)

	// RemoveInstance takes an instance off the draw list, frees its buffer and drops its
	// reference on the mesh. The mesh is released with its last instance.
	RemoveInstance(inst *mesh.Instance) error

	// Instances returns the draw list in draw order.
	Instances() []*mesh.Instance

	// Mesh returns the mesh stored under h.
	Mesh(h mesh.Handle) (*mesh.Mesh, bool)

	// Render draws one frame. A nil camera keeps the last uploaded view-projection.
	//
	// Parameters:
	//   - cam: the camera to view the scene from, or nil
	//
	// Returns:
	//   - error: a backend sentinel (see backend.IsRecoverable and backend.IsFatal) when the
	//     surface image could not be acquired, or any other encoding error
	Render(cam *camera.Camera) error

	// Resize reconfigures the surface and recreates the depth texture. A zero or negative
	// dimension is ignored, which is what minimised windows report.
	//
	// Parameters:
	//   - width: the new surface width in pixels
	//   - height: the new surface height in pixels
	//
	// Returns:
	//   - error: an error if the surface could not be reconfigured
	Resize(width, height int) error

	// Size returns the configured surface size in pixels.
	Size() (int, int)

	// SurfaceConfig returns the current surface configuration.
	SurfaceConfig() backend.SurfaceConfig

	// DepthTexture returns the depth texture matching the current configuration.
	DepthTexture() *texture.Texture

	// ViewProjection returns the last matrix written to the camera uniform.
	ViewProjection() common.Mat4

	// Release frees all GPU resources. The backend is released too when the renderer created it.
	Release()
}

var _ Renderer = &renderer{}

func newRenderer(options ...RendererBuilderOption) *renderer {
	r := &renderer{
		mu:         &sync.Mutex{},
		meshes:     mesh.NewArena(),
		clearColor: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		frontFace:  wgpu.FrontFaceCCW,
		viewProj:   common.Identity4(),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// NewRenderer creates a renderer on an existing backend and configures its surface.
//
// Parameters:
//   - b: the backend to render with
//   - width: the initial surface width in pixels
//   - height: the initial surface height in pixels
//   - options: functional options for the renderer
//
// Returns:
//   - Renderer: the initialised renderer
//   - error: an error if the surface, material or pipeline could not be created
func NewRenderer(b backend.Backend, width, height int, options ...RendererBuilderOption) (Renderer, error) {
	r := newRenderer(options...)
	r.backend = b
	if err := r.init(width, height); err != nil {
		return nil, err
	}
	return r, nil
}

// NewWGPURenderer acquires a WebGPU adapter and device for surfaceDescriptor and creates a
// renderer that owns the resulting backend. Must be called from the thread that owns the window.
//
// Parameters:
//   - surfaceDescriptor: the platform surface, e.g. from window.Window.SurfaceDescriptor
//   - width: the initial surface width in pixels
//   - height: the initial surface height in pixels
//   - options: functional options for the renderer
//
// Returns:
//   - Renderer: the initialised renderer
//   - error: an error if no adapter or device is available, or initialisation failed
func NewWGPURenderer(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height int, options ...RendererBuilderOption) (Renderer, error) {
	r := newRenderer(options...)
	b, err := backend.NewWGPUBackend(surfaceDescriptor, backend.WithForceFallbackAdapter(r.forceFallbackAdapter))
	if err != nil {
		return nil, err
	}
	r.backend = b
	r.ownsBackend = true
	if err := r.init(width, height); err != nil {
		b.Release()
		return nil, err
	}
	return r, nil
}

func (r *renderer) init(width, height int) (err error) {
	defer func() {
		if err != nil {
			r.releaseResources()
		}
	}()

	caps := r.backend.SurfaceCapabilities()
	cfg, err := backend.DefaultSurfaceConfig(caps, clampDimension(width), clampDimension(height))
	if err != nil {
		return err
	}
	if mode, ok := r.presentMode.wgpuPresentMode(); ok {
		if caps.SupportsPresentMode(mode) {
			cfg.PresentMode = mode
		} else {
			log.Printf("[Renderer] present mode %v unsupported, using %v", mode, cfg.PresentMode)
		}
	}
	if err := r.backend.ConfigureSurface(cfg); err != nil {
		return fmt.Errorf("failed to configure surface: %w", err)
	}
	r.config = cfg

	if r.depth, err = texture.CreateDepthTexture(r.backend, cfg, "Depth Texture"); err != nil {
		return fmt.Errorf("failed to create depth texture: %w", err)
	}

	var uniform camera.GPUCameraUniform
	r.cameraProvider = bind_group_provider.NewBindGroupProvider("Camera",
		bind_group_provider.WithUniformBuffer(0, uint64(uniform.Size()), wgpu.ShaderStageVertex),
	)
	if err := r.cameraProvider.Init(r.backend); err != nil {
		return fmt.Errorf("failed to create camera bind group: %w", err)
	}

	image := r.materialImage
	if len(image) == 0 {
		image = assets.DefaultTexture
	}
	diffuse, err := texture.FromBytes(r.backend, image, "Diffuse Texture")
	if err != nil {
		return err
	}
	r.materialProvider = bind_group_provider.NewBindGroupProvider("Material",
		bind_group_provider.WithTextureView(0, diffuse.View(), wgpu.ShaderStageFragment),
		bind_group_provider.WithSampler(1, diffuse.Sampler(), wgpu.ShaderStageFragment),
		bind_group_provider.WithOwned(diffuse),
	)
	if err := r.materialProvider.Init(r.backend); err != nil {
		diffuse.Release()
		return fmt.Errorf("failed to create material bind group: %w", err)
	}

	r.pipeline = pipeline.NewPipeline("Render Pipeline", shader.Default(),
		pipeline.WithVertexBuffers(mesh.VertexLayout(), mesh.InstanceLayout()),
		pipeline.WithFrontFace(r.frontFace),
		pipeline.WithShaderValidation(r.validateShader),
	)
	layouts := []backend.BindGroupLayout{
		cameraGroup:   r.cameraProvider.BindGroupLayout(),
		materialGroup: r.materialProvider.BindGroupLayout(),
	}
	if err := r.pipeline.Build(r.backend, cfg.Format, layouts); err != nil {
		return err
	}

	log.Printf("[Renderer] configured %dx%d surface, format %v, present mode %v", cfg.Width, cfg.Height, cfg.Format, cfg.PresentMode)
	return nil
}

// clampDimension keeps the initial configuration valid for windows created minimised.
func clampDimension(v int) uint32 {
	if v < 1 {
		return 1
	}
	return uint32(v)
}

func (r *renderer) CreateMesh(vertices []mesh.Vertex, indices []uint32) (mesh.Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return mesh.InvalidHandle, ErrReleased
	}
	return r.createMesh(vertices, indices)
}

func (r *renderer) createMesh(vertices []mesh.Vertex, indices []uint32) (mesh.Handle, error) {
	r.meshCount++
	m, err := mesh.New(r.backend, fmt.Sprintf("Mesh %d", r.meshCount), vertices, indices)
	if err != nil {
		return mesh.InvalidHandle, err
	}
	return r.meshes.Insert(m), nil
}

func (r *renderer) CreateInstance(h mesh.Handle, transform common.Mat4) (*mesh.Instance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return nil, ErrReleased
	}
	return r.createInstance(h, transform)
}

func (r *renderer) createInstance(h mesh.Handle, transform common.Mat4) (*mesh.Instance, error) {
	if !r.meshes.Acquire(h) {
		return nil, fmt.Errorf("unknown mesh handle %d", h)
	}
	r.instanceCount++
	inst, err := mesh.NewInstance(r.backend, fmt.Sprintf("Instance %d", r.instanceCount), h, transform)
	if err != nil {
		r.meshes.Drop(h)
		return nil, err
	}
	r.instances = append(r.instances, inst)
	return inst, nil
}

func (r *renderer) AddMesh(vertices []mesh.Vertex, indices []uint32, transform common.Mat4) (*mesh.Instance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return nil, ErrReleased
	}
	h, err := r.createMesh(vertices, indices)
	if err != nil {
		return nil, err
	}
	// createInstance drops the only reference on failure, which frees the mesh.
	return r.createInstance(h, transform)
}

func (r *renderer) RemoveInstance(inst *mesh.Instance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return ErrReleased
	}
	for i, candidate := range r.instances {
		if candidate != inst {
			continue
		}
		r.instances = append(r.instances[:i], r.instances[i+1:]...)
		inst.Release()
		r.meshes.Drop(inst.Mesh())
		return nil
	}
	return errors.New("instance is not registered with this renderer")
}

func (r *renderer) Instances() []*mesh.Instance {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*mesh.Instance, len(r.instances))
	copy(out, r.instances)
	return out
}

func (r *renderer) Mesh(h mesh.Handle) (*mesh.Mesh, bool) {
	return r.meshes.Get(h)
}

func (r *renderer) Render(cam *camera.Camera) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return ErrReleased
	}

	if cam != nil {
		uniform := camera.NewGPUCameraUniform(*cam, r.config.Aspect())
		if err := bind_group_provider.WriteBuffers(r.backend, bind_group_provider.BufferWrite{
			Provider: r.cameraProvider,
			Binding:  0,
			Data:     uniform.Marshal(),
		}); err != nil {
			return fmt.Errorf("failed to write camera uniform: %w", err)
		}
		r.viewProj = uniform.ViewProj
	}

	for _, inst := range r.instances {
		if err := inst.Sync(r.backend); err != nil {
			return fmt.Errorf("failed to write instance transform: %w", err)
		}
	}

	frame, err := r.backend.AcquireFrame()
	if err != nil {
		return err
	}
	defer frame.Release()

	err = withRenderPass(frame, backend.RenderPassDescriptor{
		Label:           "Render Pass",
		ClearColor:      r.clearColor,
		DepthView:       r.depth.View(),
		DepthClearValue: 1.0,
	}, r.record)
	if err != nil {
		return err
	}

	if err := frame.Submit(); err != nil {
		return err
	}
	frame.Present()
	return nil
}

// record encodes the draw list into pass.
func (r *renderer) record(pass backend.RenderPass) error {
	pass.SetPipeline(r.pipeline.RenderPipeline())
	pass.SetBindGroup(cameraGroup, r.cameraProvider.BindGroup())
	pass.SetBindGroup(materialGroup, r.materialProvider.BindGroup())

	for _, inst := range r.instances {
		m, ok := r.meshes.Get(inst.Mesh())
		if !ok || !m.Drawable() || inst.Buffer() == nil {
			continue
		}
		pass.SetVertexBuffer(vertexSlot, m.VertexBuffer())
		pass.SetVertexBuffer(instanceSlot, inst.Buffer())
		pass.SetIndexBuffer(m.IndexBuffer(), wgpu.IndexFormatUint32)
		pass.DrawIndexed(m.IndexCount(), 1, 0, 0, 0)
	}
	return nil
}

// withRenderPass begins a pass on frame, hands it to fn and always ends it before returning,
// so the pass never outlives the call.
func withRenderPass(frame backend.Frame, desc backend.RenderPassDescriptor, fn func(backend.RenderPass) error) (err error) {
	pass, err := frame.BeginRenderPass(desc)
	if err != nil {
		return fmt.Errorf("failed to begin render pass: %w", err)
	}
	defer func() {
		if endErr := pass.End(); err == nil && endErr != nil {
			err = fmt.Errorf("failed to end render pass: %w", endErr)
		}
	}()
	return fn(pass)
}

func (r *renderer) Resize(width, height int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return ErrReleased
	}
	if width <= 0 || height <= 0 {
		return nil
	}

	// The surface and its depth attachment change together or not at all.
	cfg := r.config
	cfg.Width, cfg.Height = uint32(width), uint32(height)
	depth, err := texture.CreateDepthTexture(r.backend, cfg, "Depth Texture")
	if err != nil {
		return fmt.Errorf("failed to recreate depth texture: %w", err)
	}
	if err := r.backend.ConfigureSurface(cfg); err != nil {
		depth.Release()
		return fmt.Errorf("failed to reconfigure surface: %w", err)
	}
	r.config = cfg
	r.depth.Release()
	r.depth = depth
	return nil
}

func (r *renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int(r.config.Width), int(r.config.Height)
}

func (r *renderer) SurfaceConfig() backend.SurfaceConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.config
}

func (r *renderer) DepthTexture() *texture.Texture {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.depth
}

func (r *renderer) ViewProjection() common.Mat4 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.viewProj
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return
	}
	r.released = true
	r.releaseResources()
	if r.ownsBackend {
		r.backend.Release()
	}
}

// releaseResources frees everything init and the registration API created, in reverse order.
func (r *renderer) releaseResources() {
	for _, inst := range r.instances {
		inst.Release()
	}
	r.instances = nil
	r.meshes.Release()

	if r.pipeline != nil {
		r.pipeline.Release()
		r.pipeline = nil
	}
	if r.materialProvider != nil {
		r.materialProvider.Release()
		r.materialProvider = nil
	}
	if r.cameraProvider != nil {
		r.cameraProvider.Release()
		r.cameraProvider = nil
	}
	r.depth.Release()
	r.depth = nil
}
