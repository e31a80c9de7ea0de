package renderer

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/bismuth/common"
	"github.com/Carmen-Shannon/bismuth/engine/camera"
	"github.com/Carmen-Shannon/bismuth/engine/renderer/backend"
	"github.com/Carmen-Shannon/bismuth/engine/renderer/backend/backendtest"
	"github.com/Carmen-Shannon/bismuth/engine/renderer/mesh"
	"github.com/cogentcore/webgpu/wgpu"
)

func quad() ([]mesh.Vertex, []uint32) {
	vertices := []mesh.Vertex{
		{Position: [3]float32{-0.5, -0.5, 0}, Color: mesh.White, UV: [2]float32{0, 1}},
		{Position: [3]float32{0.5, -0.5, 0}, Color: mesh.White, UV: [2]float32{1, 1}},
		{Position: [3]float32{0.5, 0.5, 0}, Color: mesh.White, UV: [2]float32{1, 0}},
		{Position: [3]float32{-0.5, 0.5, 0}, Color: mesh.White, UV: [2]float32{0, 0}},
	}
	return vertices, []uint32{0, 1, 2, 0, 2, 3}
}

func testCamera() camera.Camera {
	return camera.NewCamera(
		camera.WithEye(1, 1, 1),
		camera.WithTarget(0, 0, 0),
		camera.WithUp(0, 1, 0),
		camera.WithFovy(75),
		camera.WithNear(0.1),
		camera.WithFar(100),
	)
}

func newTestRenderer(t *testing.T, width, height int, options ...RendererBuilderOption) (*backendtest.Recorder, Renderer) {
	t.Helper()
	rec := backendtest.NewRecorder()
	r, err := NewRenderer(rec, width, height, options...)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	t.Cleanup(r.Release)
	return rec, r
}

func cameraBuffer(t *testing.T, rec *backendtest.Recorder) *backendtest.Buffer {
	t.Helper()
	for _, b := range rec.Buffers {
		if b.Label() == "Camera Buffer 0" {
			return b
		}
	}
	t.Fatal("camera uniform buffer was not created")
	return nil
}

func TestQuadScenario(t *testing.T) {
	rec, r := newTestRenderer(t, 800, 600)
	vertices, indices := quad()
	if _, err := r.AddMesh(vertices, indices, common.Identity4()); err != nil {
		t.Fatalf("AddMesh: %v", err)
	}

	cam := testCamera()
	if err := r.Render(&cam); err != nil {
		t.Fatalf("Render: %v", err)
	}

	draws := rec.LastFrame().Draws()
	if len(draws) != 1 {
		t.Fatalf("expected 1 draw, got %d", len(draws))
	}
	if draws[0].IndexCount != 6 {
		t.Errorf("expected index count 6, got %d", draws[0].IndexCount)
	}
	if draws[0].InstanceCount != 1 {
		t.Errorf("expected instance count 1, got %d", draws[0].InstanceCount)
	}
	if draws[0].IndexFormat != wgpu.IndexFormatUint32 {
		t.Errorf("expected uint32 indices, got %v", draws[0].IndexFormat)
	}
	if len(draws[0].BindGroups) != 2 {
		t.Errorf("expected camera and material bind groups, got %d", len(draws[0].BindGroups))
	}
	if got := r.ViewProjection(); got != cam.ViewProjection(800.0/600.0) {
		t.Errorf("uploaded view-projection does not match the camera")
	}
	f := rec.LastFrame()
	if !f.Submitted || !f.Presented || !f.Released {
		t.Errorf("frame not completed: submitted=%v presented=%v released=%v", f.Submitted, f.Presented, f.Released)
	}
}

func TestInitialConfiguration(t *testing.T) {
	rec, r := newTestRenderer(t, 800, 600)
	cfg := r.SurfaceConfig()
	if cfg.Width != 800 || cfg.Height != 600 {
		t.Errorf("expected 800x600, got %dx%d", cfg.Width, cfg.Height)
	}
	if !backend.IsSRGB(cfg.Format) {
		t.Errorf("expected an sRGB surface format, got %v", cfg.Format)
	}
	if len(rec.Configures) != 1 {
		t.Errorf("expected 1 configure, got %d", len(rec.Configures))
	}
	pipelines := rec.ResourcesOf("RenderPipeline")
	if len(pipelines) != 1 {
		t.Fatalf("expected 1 pipeline, got %d", len(pipelines))
	}
	if pipelines[0].Pipeline.FrontFace != wgpu.FrontFaceCCW {
		t.Errorf("expected CCW front face, got %v", pipelines[0].Pipeline.FrontFace)
	}
	if pipelines[0].Pipeline.ColorFormat != cfg.Format {
		t.Errorf("pipeline color format %v does not match surface %v", pipelines[0].Pipeline.ColorFormat, cfg.Format)
	}
}

func TestResizeZeroIsNoop(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{"both zero", 0, 0},
		{"zero width", 0, 300},
		{"zero height", 300, 0},
		{"negative", -1, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, r := newTestRenderer(t, 800, 600)
			depth := r.DepthTexture()
			if err := r.Resize(tt.width, tt.height); err != nil {
				t.Fatalf("Resize: %v", err)
			}
			if len(rec.Configures) != 1 {
				t.Errorf("expected no reconfigure, got %d configures", len(rec.Configures))
			}
			if r.DepthTexture() != depth {
				t.Errorf("depth texture was replaced")
			}
			if w, h := r.Size(); w != 800 || h != 600 {
				t.Errorf("expected 800x600, got %dx%d", w, h)
			}
		})
	}
}

func TestResizeZeroThenRenderUsesPreviousConfig(t *testing.T) {
	rec, r := newTestRenderer(t, 800, 600)
	vertices, indices := quad()
	if _, err := r.AddMesh(vertices, indices, common.Identity4()); err != nil {
		t.Fatalf("AddMesh: %v", err)
	}
	if err := r.Resize(0, 0); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	cam := testCamera()
	if err := r.Render(&cam); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := rec.LastConfig(); got.Width != 800 || got.Height != 600 {
		t.Errorf("expected 800x600 config, got %dx%d", got.Width, got.Height)
	}
	if got := r.ViewProjection(); got != cam.ViewProjection(800.0/600.0) {
		t.Errorf("render used a different aspect ratio than the previous configuration")
	}
}

func TestResizeRecreatesDepth(t *testing.T) {
	sizes := [][2]int{{1024, 768}, {1, 1}, {1024, 768}}
	rec, r := newTestRenderer(t, 800, 600)
	for _, s := range sizes {
		old := r.DepthTexture()
		oldTex := old.Texture().(*backendtest.Texture)
		if err := r.Resize(s[0], s[1]); err != nil {
			t.Fatalf("Resize(%d, %d): %v", s[0], s[1], err)
		}
		cfg := rec.LastConfig()
		if int(cfg.Width) != s[0] || int(cfg.Height) != s[1] {
			t.Errorf("expected config %dx%d, got %dx%d", s[0], s[1], cfg.Width, cfg.Height)
		}
		depth := r.DepthTexture()
		if int(depth.Width()) != s[0] || int(depth.Height()) != s[1] {
			t.Errorf("expected depth %dx%d, got %dx%d", s[0], s[1], depth.Width(), depth.Height())
		}
		if !oldTex.Released {
			t.Errorf("previous depth texture was not released")
		}
	}
	if len(rec.Configures) != 1+len(sizes) {
		t.Errorf("expected %d configures, got %d", 1+len(sizes), len(rec.Configures))
	}
}

func TestResizeFailureKeepsState(t *testing.T) {
	rec, r := newTestRenderer(t, 800, 600)
	depth := r.DepthTexture()
	depthTex := depth.Texture().(*backendtest.Texture)
	configures := len(rec.Configures)

	rec.FailTexture = errors.New("out of texture memory")
	if err := r.Resize(1024, 768); !errors.Is(err, rec.FailTexture) {
		t.Fatalf("expected the texture error, got %v", err)
	}
	if len(rec.Configures) != configures {
		t.Errorf("surface was reconfigured without a matching depth texture")
	}

	rec.FailTexture = nil
	rec.FailConfigure = errors.New("surface gone")
	if err := r.Resize(1024, 768); !errors.Is(err, rec.FailConfigure) {
		t.Fatalf("expected the configure error, got %v", err)
	}
	if spare := rec.Textures[len(rec.Textures)-1]; spare == depthTex || !spare.Released {
		t.Errorf("depth texture for the failed resize was not released")
	}

	if w, h := r.Size(); w != 800 || h != 600 {
		t.Errorf("expected size 800x600 after failed resizes, got %dx%d", w, h)
	}
	if r.DepthTexture() != depth || depthTex.Released {
		t.Errorf("previous depth texture should still be in use")
	}
}

func TestRenderNilCameraKeepsUniform(t *testing.T) {
	rec, r := newTestRenderer(t, 800, 600)
	buf := cameraBuffer(t, rec)

	if err := r.Render(nil); err != nil {
		t.Fatalf("Render(nil): %v", err)
	}
	if n := len(rec.WritesTo(buf)); n != 0 {
		t.Errorf("expected no camera writes, got %d", n)
	}

	cam := testCamera()
	if err := r.Render(&cam); err != nil {
		t.Fatalf("Render: %v", err)
	}
	before := append([]byte(nil), buf.Data...)
	if err := r.Render(nil); err != nil {
		t.Fatalf("Render(nil): %v", err)
	}
	if n := len(rec.WritesTo(buf)); n != 1 {
		t.Errorf("expected 1 camera write, got %d", n)
	}
	if string(buf.Data) != string(before) {
		t.Errorf("camera uniform changed on Render(nil)")
	}
}

func TestInstancesShareMesh(t *testing.T) {
	rec, r := newTestRenderer(t, 800, 600)
	vertices, indices := quad()
	h, err := r.CreateMesh(vertices, indices)
	if err != nil {
		t.Fatalf("CreateMesh: %v", err)
	}
	a, err := r.CreateInstance(h, common.Identity4())
	if err != nil {
		t.Fatalf("CreateInstance: %v", err)
	}
	b, err := r.CreateInstance(h, common.Translation4(2, 0, 0))
	if err != nil {
		t.Fatalf("CreateInstance: %v", err)
	}
	if a.Transform() == b.Transform() {
		t.Fatalf("instances should keep independent transforms")
	}

	a.SetTransform(common.Translation4(0, 3, 0))
	if b.Transform() != common.Translation4(2, 0, 0) {
		t.Errorf("updating one instance changed the other")
	}

	if err := r.Render(nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	draws := rec.LastFrame().Draws()
	if len(draws) != 2 {
		t.Fatalf("expected 2 draws, got %d", len(draws))
	}
	if draws[0].VertexBuffers[vertexSlot] != draws[1].VertexBuffers[vertexSlot] {
		t.Errorf("instances should share the vertex buffer")
	}
	if draws[0].IndexBuffer != draws[1].IndexBuffer {
		t.Errorf("instances should share the index buffer")
	}
	if draws[0].VertexBuffers[instanceSlot] == draws[1].VertexBuffers[instanceSlot] {
		t.Errorf("instances should have separate instance buffers")
	}

	got := a.Buffer().(*backendtest.Buffer).Data
	tr := a.Transform()
	want := common.SliceToBytes(tr[:])
	if string(got) != string(want) {
		t.Errorf("dirty transform was not synced before drawing")
	}
	if a.Dirty() {
		t.Errorf("instance still dirty after render")
	}
	if len(rec.WritesTo(b.Buffer())) != 1 {
		t.Errorf("clean instance should only be written at creation")
	}
}

func TestEmptyMeshSkipped(t *testing.T) {
	rec, r := newTestRenderer(t, 800, 600)
	if _, err := r.AddMesh(nil, nil, common.Identity4()); err != nil {
		t.Fatalf("AddMesh: %v", err)
	}
	vertices, indices := quad()
	if _, err := r.AddMesh(vertices, indices, common.Identity4()); err != nil {
		t.Fatalf("AddMesh: %v", err)
	}
	if err := r.Render(nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if n := len(rec.LastFrame().Draws()); n != 1 {
		t.Errorf("expected only the non-empty mesh to draw, got %d draws", n)
	}
}

func TestRemoveInstanceReleasesMesh(t *testing.T) {
	_, r := newTestRenderer(t, 800, 600)
	vertices, indices := quad()
	h, err := r.CreateMesh(vertices, indices)
	if err != nil {
		t.Fatalf("CreateMesh: %v", err)
	}
	a, _ := r.CreateInstance(h, common.Identity4())
	b, _ := r.CreateInstance(h, common.Identity4())
	m, _ := r.Mesh(h)
	vb := m.VertexBuffer().(*backendtest.Buffer)

	if err := r.RemoveInstance(a); err != nil {
		t.Fatalf("RemoveInstance: %v", err)
	}
	if _, ok := r.Mesh(h); !ok || vb.Released {
		t.Errorf("mesh released while still referenced")
	}
	if err := r.RemoveInstance(b); err != nil {
		t.Fatalf("RemoveInstance: %v", err)
	}
	if _, ok := r.Mesh(h); ok || !vb.Released {
		t.Errorf("mesh not released with its last instance")
	}
	if err := r.RemoveInstance(b); err == nil {
		t.Errorf("expected an error removing an unregistered instance")
	}
	if len(r.Instances()) != 0 {
		t.Errorf("expected empty draw list, got %d", len(r.Instances()))
	}
}

func TestCreateInstanceUnknownHandle(t *testing.T) {
	_, r := newTestRenderer(t, 800, 600)
	if _, err := r.CreateInstance(mesh.Handle(42), common.Identity4()); err == nil {
		t.Errorf("expected an error for an unknown mesh handle")
	}
}

func TestRenderAcquireErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"lost", backend.ErrSurfaceLost},
		{"outdated", backend.ErrSurfaceOutdated},
		{"timeout", backend.ErrSurfaceTimeout},
		{"out of memory", backend.ErrOutOfMemory},
		{"unknown", errors.New("adapter exploded")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, r := newTestRenderer(t, 800, 600)
			rec.AcquireErrors = []error{tt.err}
			if err := r.Render(nil); !errors.Is(err, tt.err) {
				t.Fatalf("expected %v, got %v", tt.err, err)
			}
			if err := r.Render(nil); err != nil {
				t.Errorf("renderer did not recover after a failed acquire: %v", err)
			}
		})
	}
}

func TestRenderEventOrder(t *testing.T) {
	rec, r := newTestRenderer(t, 800, 600)
	vertices, indices := quad()
	if _, err := r.AddMesh(vertices, indices, common.Identity4()); err != nil {
		t.Fatalf("AddMesh: %v", err)
	}
	rec.Events = nil
	if err := r.Render(nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := []string{"AcquireFrame", "BeginRenderPass", "DrawIndexed", "EndRenderPass", "Submit", "Present", "ReleaseFrame"}
	if len(rec.Events) != len(want) {
		t.Fatalf("expected events %v, got %v", want, rec.Events)
	}
	for i := range want {
		if rec.Events[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], rec.Events[i])
		}
	}
}

func TestPresentModeOption(t *testing.T) {
	tests := []struct {
		name string
		mode PresentMode
		want wgpu.PresentMode
	}{
		{"default", PresentModeSurfaceDefault, wgpu.PresentModeFifo},
		{"uncapped", PresentModeUncapped, wgpu.PresentModeImmediate},
		{"unsupported falls back", PresentModeMailbox, wgpu.PresentModeFifo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := newTestRenderer(t, 800, 600, WithPresentMode(tt.mode))
			if got := rec.LastConfig().PresentMode; got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestNewRendererFailureReleases(t *testing.T) {
	rec := backendtest.NewRecorder()
	rec.FailPipeline = errors.New("no pipelines today")
	if _, err := NewRenderer(rec, 800, 600); err == nil {
		t.Fatal("expected an error")
	}
	for _, b := range rec.Buffers {
		if !b.Released {
			t.Errorf("buffer %q leaked", b.Label())
		}
	}
	for _, tex := range rec.Textures {
		if !tex.Released {
			t.Errorf("texture %q leaked", tex.Label())
		}
	}
}

func TestReleasedRenderer(t *testing.T) {
	rec := backendtest.NewRecorder()
	r, err := NewRenderer(rec, 800, 600)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	r.Release()
	r.Release()
	if err := r.Render(nil); !errors.Is(err, ErrReleased) {
		t.Errorf("expected ErrReleased, got %v", err)
	}
	if rec.Released {
		t.Errorf("renderer released a backend it does not own")
	}
}

func TestParsePresentMode(t *testing.T) {
	tests := []struct {
		in   string
		want PresentMode
		ok   bool
	}{
		{"", PresentModeSurfaceDefault, true},
		{"vsync", PresentModeVSync, true},
		{"immediate", PresentModeUncapped, true},
		{"mailbox", PresentModeMailbox, true},
		{"sometimes", PresentModeSurfaceDefault, false},
	}
	for _, tt := range tests {
		got, ok := ParsePresentMode(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParsePresentMode(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
