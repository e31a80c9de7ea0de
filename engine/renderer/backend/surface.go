package backend

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// SurfaceCapabilities lists what a surface supports, in the adapter's preference order.
type SurfaceCapabilities struct {
	Formats      []wgpu.TextureFormat
	PresentModes []wgpu.PresentMode
	AlphaModes   []wgpu.CompositeAlphaMode
}

// SurfaceConfig is the presentation surface's current configuration. Width and Height
// mirror the window's physical pixel size and are always positive once applied.
type SurfaceConfig struct {
	Format      wgpu.TextureFormat
	Width       uint32
	Height      uint32
	PresentMode wgpu.PresentMode
	AlphaMode   wgpu.CompositeAlphaMode
}

// Aspect returns Width / Height.
func (c SurfaceConfig) Aspect() float32 {
	if c.Height == 0 {
		return 1
	}
	return float32(c.Width) / float32(c.Height)
}

// Validate reports whether the configuration can be applied to a surface.
func (c SurfaceConfig) Validate() error {
	if c.Width == 0 || c.Height == 0 {
		return fmt.Errorf("surface size %dx%d must be positive", c.Width, c.Height)
	}
	if c.Format == wgpu.TextureFormatUndefined {
		return errors.New("surface format is undefined")
	}
	return nil
}

// IsSRGB reports whether f stores color with the sRGB transfer function.
func IsSRGB(f wgpu.TextureFormat) bool {
	switch f {
	case wgpu.TextureFormatRGBA8UnormSrgb, wgpu.TextureFormatBGRA8UnormSrgb:
		return true
	}
	return false
}

// DefaultSurfaceConfig picks the first sRGB format (otherwise the first format), the first
// present mode and the first alpha mode from caps.
//
// Parameters:
//   - caps: the surface capabilities
//   - width, height: the surface size in pixels
//
// Returns:
//   - SurfaceConfig: the chosen configuration
//   - error: an error if caps lists no formats
func DefaultSurfaceConfig(caps SurfaceCapabilities, width, height uint32) (SurfaceConfig, error) {
	if len(caps.Formats) == 0 {
		return SurfaceConfig{}, errors.New("surface reports no supported formats")
	}
	cfg := SurfaceConfig{
		Format:      caps.Formats[0],
		Width:       width,
		Height:      height,
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   wgpu.CompositeAlphaModeAuto,
	}
	for _, f := range caps.Formats {
		if IsSRGB(f) {
			cfg.Format = f
			break
		}
	}
	if len(caps.PresentModes) > 0 {
		cfg.PresentMode = caps.PresentModes[0]
	}
	if len(caps.AlphaModes) > 0 {
		cfg.AlphaMode = caps.AlphaModes[0]
	}
	return cfg, nil
}

// SupportsPresentMode reports whether mode is listed in caps.
func (caps SurfaceCapabilities) SupportsPresentMode(mode wgpu.PresentMode) bool {
	for _, m := range caps.PresentModes {
		if m == mode {
			return true
		}
	}
	return false
}
