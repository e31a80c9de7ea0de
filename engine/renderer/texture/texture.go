// Package texture creates GPU textures from encoded images and allocates the depth buffer.
package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/Carmen-Shannon/bismuth/engine/renderer/backend"
	"github.com/cogentcore/webgpu/wgpu"
)

// DepthFormat is the format of every depth texture the renderer creates. Pipelines must
// declare the same format.
const DepthFormat = wgpu.TextureFormatDepth32Float

// ColorFormat is the format of textures decoded from images.
const ColorFormat = wgpu.TextureFormatRGBA8UnormSrgb

// DecodeError is returned when image bytes cannot be decoded.
type DecodeError struct {
	Label string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode texture %q: %v", e.Label, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Texture owns a GPU texture with its default view and, for sampled textures, a sampler.
type Texture struct {
	texture backend.Texture
	view    backend.TextureView
	sampler backend.Sampler
}

// Texture returns the underlying GPU texture.
func (t *Texture) Texture() backend.Texture { return t.texture }

// View returns the default view over the whole texture.
func (t *Texture) View() backend.TextureView { return t.view }

// Sampler returns the texture's sampler, or nil for depth textures.
func (t *Texture) Sampler() backend.Sampler { return t.sampler }

// Width returns the texture width in pixels.
func (t *Texture) Width() uint32 { return t.texture.Width() }

// Height returns the texture height in pixels.
func (t *Texture) Height() uint32 { return t.texture.Height() }

// Release frees the sampler, view and texture. Calling Release on a nil Texture is a no-op.
func (t *Texture) Release() {
	if t == nil {
		return
	}
	if t.sampler != nil {
		t.sampler.Release()
		t.sampler = nil
	}
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.texture != nil {
		t.texture.Release()
		t.texture = nil
	}
}

// DecodeRGBA decodes PNG, JPEG, GIF, BMP, TIFF or WebP bytes into tightly packed RGBA8 pixels.
//
// Parameters:
//   - data: the encoded image
//   - label: name used in the error
//
// Returns:
//   - *image.RGBA: the decoded image with its origin at (0, 0)
//   - error: a *DecodeError if the bytes are not a supported image
func DecodeRGBA(data []byte, label string) (*image.RGBA, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Label: label, Err: err}
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, &DecodeError{Label: label, Err: fmt.Errorf("image has zero size %dx%d", b.Dx(), b.Dy())}
	}
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) && rgba.Stride == 4*b.Dx() {
		return rgba, nil
	}
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba, nil
}

// FromBytes decodes an encoded image and uploads it as a sampled 2D texture with a single
// mip level, a linear clamp-to-edge sampler and a default view.
//
// Parameters:
//   - b: the backend to create resources on
//   - data: the encoded image
//   - label: debug label for the GPU objects
//
// Returns:
//   - *Texture: the uploaded texture
//   - error: a *DecodeError for malformed bytes, or a GPU error
func FromBytes(b backend.Backend, data []byte, label string) (*Texture, error) {
	img, err := DecodeRGBA(data, label)
	if err != nil {
		return nil, err
	}
	return FromImage(b, img, label)
}

// FromImage uploads already decoded RGBA pixels. See FromBytes.
func FromImage(b backend.Backend, img *image.RGBA, label string) (*Texture, error) {
	w, h := uint32(img.Bounds().Dx()), uint32(img.Bounds().Dy())

	tex, err := b.CreateTexture(backend.TextureDescriptor{
		Label:         label,
		Width:         w,
		Height:        h,
		Format:        ColorFormat,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		MipLevelCount: 1,
	})
	if err != nil {
		return nil, err
	}
	t := &Texture{texture: tex}

	if err := b.WriteTexture(tex, img.Pix, uint32(img.Stride)); err != nil {
		t.Release()
		return nil, fmt.Errorf("failed to upload texture %q: %w", label, err)
	}
	if t.view, err = b.CreateTextureView(tex); err != nil {
		t.Release()
		return nil, err
	}
	t.sampler, err = b.CreateSampler(backend.SamplerDescriptor{
		Label:        label + " Sampler",
		AddressModeU: wgpu.AddressModeClampToEdge,
		AddressModeV: wgpu.AddressModeClampToEdge,
		AddressModeW: wgpu.AddressModeClampToEdge,
		MagFilter:    wgpu.FilterModeLinear,
		MinFilter:    wgpu.FilterModeLinear,
		MipmapFilter: wgpu.MipmapFilterModeNearest,
	})
	if err != nil {
		t.Release()
		return nil, err
	}
	return t, nil
}

// CreateDepthTexture allocates a depth render target matching the surface size. Depth
// textures are never resized; create a new one after every surface reconfiguration.
//
// Parameters:
//   - b: the backend to create resources on
//   - cfg: the surface configuration to match
//   - label: debug label for the GPU objects
//
// Returns:
//   - *Texture: the depth texture with its view and no sampler
//   - error: an error if the texture could not be created
func CreateDepthTexture(b backend.Backend, cfg backend.SurfaceConfig, label string) (*Texture, error) {
	tex, err := b.CreateTexture(backend.TextureDescriptor{
		Label:         label,
		Width:         cfg.Width,
		Height:        cfg.Height,
		Format:        DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
		MipLevelCount: 1,
	})
	if err != nil {
		return nil, err
	}
	view, err := b.CreateTextureView(tex)
	if err != nil {
		tex.Release()
		return nil, err
	}
	return &Texture{texture: tex, view: view}, nil
}
