package pipeline

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/bismuth/engine/renderer/backend"
	"github.com/Carmen-Shannon/bismuth/engine/renderer/backend/backendtest"
	"github.com/Carmen-Shannon/bismuth/engine/renderer/mesh"
	"github.com/Carmen-Shannon/bismuth/engine/renderer/shader"
	"github.com/Carmen-Shannon/bismuth/engine/renderer/texture"
	"github.com/cogentcore/webgpu/wgpu"
)

func TestDefaults(t *testing.T) {
	p := NewPipeline("mesh", shader.Default(), WithVertexBuffers(mesh.VertexLayout(), mesh.InstanceLayout()))
	d := p.Descriptor(wgpu.TextureFormatBGRA8UnormSrgb, nil)

	if d.CullMode != wgpu.CullModeBack {
		t.Errorf("CullMode = %v, want back", d.CullMode)
	}
	if d.FrontFace != wgpu.FrontFaceCCW {
		t.Errorf("FrontFace = %v, want CCW", d.FrontFace)
	}
	if d.DepthCompare != wgpu.CompareFunctionLess || !d.DepthWriteEnabled {
		t.Errorf("depth = %v write %v, want Less with writes", d.DepthCompare, d.DepthWriteEnabled)
	}
	if d.DepthFormat != texture.DepthFormat {
		t.Errorf("DepthFormat = %v, want %v", d.DepthFormat, texture.DepthFormat)
	}
	if d.SampleCount != 1 {
		t.Errorf("SampleCount = %d, want 1", d.SampleCount)
	}
	if d.Blend == nil || *d.Blend != ReplaceBlend {
		t.Errorf("Blend = %+v, want replace", d.Blend)
	}
	if d.Topology != wgpu.PrimitiveTopologyTriangleList {
		t.Errorf("Topology = %v", d.Topology)
	}
	if len(d.VertexBuffers) != 2 || d.VertexBuffers[1].StepMode != wgpu.VertexStepModeInstance {
		t.Errorf("VertexBuffers = %+v, want vertex and instance layouts", d.VertexBuffers)
	}
	if d.VertexEntryPoint != "vs_main" || d.FragmentEntryPoint != "fs_main" {
		t.Errorf("entry points = %q, %q", d.VertexEntryPoint, d.FragmentEntryPoint)
	}
}

func TestFrontFaceOption(t *testing.T) {
	p := NewPipeline("cw", shader.Default(), WithFrontFace(wgpu.FrontFaceCW))
	if p.FrontFace() != wgpu.FrontFaceCW {
		t.Errorf("FrontFace() = %v, want CW", p.FrontFace())
	}
}

func TestBuild(t *testing.T) {
	rec := backendtest.NewRecorder()
	layout, _ := rec.CreateBindGroupLayout("l", nil)
	p := NewPipeline("mesh", shader.Default())
	if err := p.Build(rec, wgpu.TextureFormatBGRA8UnormSrgb, []backend.BindGroupLayout{layout}); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if p.RenderPipeline() == nil {
		t.Fatal("RenderPipeline() = nil after Build")
	}
	got := rec.ResourcesOf("RenderPipeline")[0].Pipeline
	if got.ColorFormat != wgpu.TextureFormatBGRA8UnormSrgb || len(got.BindGroupLayouts) != 1 {
		t.Errorf("descriptor = %+v", got)
	}
	if err := p.Build(rec, wgpu.TextureFormatBGRA8UnormSrgb, nil); err == nil {
		t.Error("second Build must fail")
	}
	p.Release()
	if p.RenderPipeline() != nil {
		t.Error("Release must clear the pipeline")
	}
}

func TestBuildFailure(t *testing.T) {
	rec := backendtest.NewRecorder()
	rec.FailPipeline = errors.New("boom")
	p := NewPipeline("mesh", shader.Default())
	if err := p.Build(rec, wgpu.TextureFormatBGRA8UnormSrgb, nil); err == nil {
		t.Fatal("Build() = nil, want error")
	}
}

func TestBuildValidatesShader(t *testing.T) {
	bad := shader.Shader{Label: "bad", Source: "fn vs_main( fn fs_main(", VertexEntryPoint: "vs_main", FragmentEntryPoint: "fs_main"}
	rec := backendtest.NewRecorder()
	p := NewPipeline("bad", bad, WithShaderValidation(true))
	if err := p.Build(rec, wgpu.TextureFormatBGRA8UnormSrgb, nil); err == nil {
		t.Fatal("Build() = nil for an invalid shader")
	}
	if len(rec.ResourcesOf("RenderPipeline")) != 0 {
		t.Error("pipeline created despite failed validation")
	}
}
