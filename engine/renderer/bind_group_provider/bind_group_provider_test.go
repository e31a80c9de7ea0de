package bind_group_provider

import (
	"testing"

	"github.com/Carmen-Shannon/bismuth/engine/renderer/backend"
	"github.com/Carmen-Shannon/bismuth/engine/renderer/backend/backendtest"
	"github.com/cogentcore/webgpu/wgpu"
)

type releaseCounter struct{ n int }

func (r *releaseCounter) Release() { r.n++ }

func TestInitUniform(t *testing.T) {
	rec := backendtest.NewRecorder()
	p := NewBindGroupProvider("camera", WithUniformBuffer(0, 64, wgpu.ShaderStageVertex))
	if err := p.Init(rec); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if p.BindGroup() == nil || p.BindGroupLayout() == nil {
		t.Fatal("Init did not create the bind group and layout")
	}
	buf := p.Buffer(0)
	if buf == nil || buf.Size() != 64 {
		t.Fatalf("uniform buffer = %v, want 64 bytes", buf)
	}
	if buf.Usage()&wgpu.BufferUsageUniform == 0 || buf.Usage()&wgpu.BufferUsageCopyDst == 0 {
		t.Errorf("uniform buffer usage = %v", buf.Usage())
	}
	entries := p.LayoutEntries()
	if len(entries) != 1 || entries[0].Visibility != wgpu.ShaderStageVertex || entries[0].Buffer.Type != wgpu.BufferBindingTypeUniform {
		t.Errorf("layout entries = %+v", entries)
	}

	if err := p.Init(rec); err != nil || len(rec.ResourcesOf("BindGroup")) != 1 {
		t.Error("second Init must be a no-op")
	}
}

func TestInitTextureAndSampler(t *testing.T) {
	rec := backendtest.NewRecorder()
	tex, _ := rec.CreateTexture(backend.TextureDescriptor{Label: "t", Width: 1, Height: 1, Format: wgpu.TextureFormatRGBA8UnormSrgb})
	view, _ := rec.CreateTextureView(tex)
	samp, _ := rec.CreateSampler(backend.SamplerDescriptor{Label: "s", MagFilter: wgpu.FilterModeLinear})
	owned := &releaseCounter{}

	p := NewBindGroupProvider("material",
		WithSampler(1, samp, wgpu.ShaderStageFragment),
		WithTextureView(0, view, wgpu.ShaderStageFragment),
		WithOwned(owned),
	)
	if err := p.Init(rec); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	entries := p.LayoutEntries()
	if entries[0].Binding != 0 || entries[0].Texture.SampleType != wgpu.TextureSampleTypeFloat {
		t.Errorf("binding 0 = %+v, want float texture", entries[0])
	}
	if entries[1].Binding != 1 || entries[1].Sampler.Type != wgpu.SamplerBindingTypeFiltering {
		t.Errorf("binding 1 = %+v, want filtering sampler", entries[1])
	}

	p.Release()
	if owned.n != 1 {
		t.Errorf("owned resource released %d times, want 1", owned.n)
	}
	if p.BindGroup() != nil {
		t.Error("Release must clear the bind group")
	}
}

func TestInitMissingView(t *testing.T) {
	p := NewBindGroupProvider("broken", WithTextureView(0, nil, wgpu.ShaderStageFragment))
	if err := p.Init(backendtest.NewRecorder()); err == nil {
		t.Error("Init with a nil texture view must fail")
	}
}

func TestWriteBuffers(t *testing.T) {
	rec := backendtest.NewRecorder()
	p := NewBindGroupProvider("u", WithUniformBuffer(0, 8, wgpu.ShaderStageVertex))
	if err := p.Init(rec); err != nil {
		t.Fatal(err)
	}
	if err := WriteBuffers(rec, BufferWrite{Provider: p, Binding: 0, Offset: 4, Data: []byte{1, 2, 3, 4}}); err != nil {
		t.Fatalf("WriteBuffers() error = %v", err)
	}
	got := p.Buffer(0).(*backendtest.Buffer).Data
	if got[4] != 1 || got[7] != 4 {
		t.Errorf("buffer = %v", got)
	}
	if err := WriteBuffers(rec, BufferWrite{Provider: p, Binding: 3, Data: []byte{1}}); err == nil {
		t.Error("write to an undeclared binding must fail")
	}
}
