package backend

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func TestDefaultSurfaceConfigPrefersSRGB(t *testing.T) {
	caps := SurfaceCapabilities{
		Formats:      []wgpu.TextureFormat{wgpu.TextureFormatBGRA8Unorm, wgpu.TextureFormatBGRA8UnormSrgb},
		PresentModes: []wgpu.PresentMode{wgpu.PresentModeImmediate, wgpu.PresentModeFifo},
		AlphaModes:   []wgpu.CompositeAlphaMode{wgpu.CompositeAlphaModeOpaque},
	}
	cfg, err := DefaultSurfaceConfig(caps, 800, 600)
	if err != nil {
		t.Fatalf("DefaultSurfaceConfig() error = %v", err)
	}
	if cfg.Format != wgpu.TextureFormatBGRA8UnormSrgb {
		t.Errorf("Format = %v, want BGRA8UnormSrgb", cfg.Format)
	}
	if cfg.PresentMode != wgpu.PresentModeImmediate {
		t.Errorf("PresentMode = %v, want the first listed mode", cfg.PresentMode)
	}
	if cfg.AlphaMode != wgpu.CompositeAlphaModeOpaque {
		t.Errorf("AlphaMode = %v, want Opaque", cfg.AlphaMode)
	}
	if cfg.Width != 800 || cfg.Height != 600 {
		t.Errorf("size = %dx%d, want 800x600", cfg.Width, cfg.Height)
	}
}

func TestDefaultSurfaceConfigFallsBackToFirstFormat(t *testing.T) {
	caps := SurfaceCapabilities{Formats: []wgpu.TextureFormat{wgpu.TextureFormatRGBA8Unorm, wgpu.TextureFormatBGRA8Unorm}}
	cfg, err := DefaultSurfaceConfig(caps, 1, 1)
	if err != nil {
		t.Fatalf("DefaultSurfaceConfig() error = %v", err)
	}
	if cfg.Format != wgpu.TextureFormatRGBA8Unorm {
		t.Errorf("Format = %v, want RGBA8Unorm", cfg.Format)
	}
}

func TestDefaultSurfaceConfigNoFormats(t *testing.T) {
	if _, err := DefaultSurfaceConfig(SurfaceCapabilities{}, 1, 1); err == nil {
		t.Error("expected an error for empty capabilities")
	}
}

func TestSurfaceConfigValidate(t *testing.T) {
	ok := SurfaceConfig{Format: wgpu.TextureFormatBGRA8UnormSrgb, Width: 2, Height: 3}
	if err := ok.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	for _, bad := range []SurfaceConfig{
		{Format: wgpu.TextureFormatBGRA8UnormSrgb, Width: 0, Height: 3},
		{Format: wgpu.TextureFormatBGRA8UnormSrgb, Width: 2, Height: 0},
		{Width: 2, Height: 3},
	} {
		if err := bad.Validate(); err == nil {
			t.Errorf("Validate(%+v) = nil, want error", bad)
		}
	}
	if got := ok.Aspect(); got != float32(2)/3 {
		t.Errorf("Aspect() = %v", got)
	}
}
