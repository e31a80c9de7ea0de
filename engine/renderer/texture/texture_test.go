package texture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/Carmen-Shannon/bismuth/engine/renderer/backend"
	"github.com/Carmen-Shannon/bismuth/engine/renderer/backend/backendtest"
	"github.com/cogentcore/webgpu/wgpu"
)

func checker(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.Set(x, y, color.NRGBA{R: 255, A: 255})
			} else {
				img.Set(x, y, color.NRGBA{B: 255, A: 255})
			}
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestFromBytesPNG(t *testing.T) {
	rec := backendtest.NewRecorder()
	tex, err := FromBytes(rec, encodePNG(t, checker(4, 2)), "checker")
	if err != nil {
		t.Fatalf("FromBytes() error = %v", err)
	}
	if tex.Width() != 4 || tex.Height() != 2 {
		t.Errorf("size = %dx%d, want 4x2", tex.Width(), tex.Height())
	}
	gpu := tex.Texture().(*backendtest.Texture)
	if gpu.Format() != wgpu.TextureFormatRGBA8UnormSrgb {
		t.Errorf("format = %v, want RGBA8UnormSrgb", gpu.Format())
	}
	if len(gpu.Pixels) != 4*2*4 {
		t.Errorf("uploaded %d bytes, want 32", len(gpu.Pixels))
	}
	if gpu.Pixels[0] != 255 || gpu.Pixels[2] != 0 {
		t.Errorf("first pixel = %v, want red", gpu.Pixels[:4])
	}
	if tex.View() == nil || tex.Sampler() == nil {
		t.Fatal("texture is missing its view or sampler")
	}
	s := rec.ResourcesOf("Sampler")[0].Sampler
	if s.AddressModeU != wgpu.AddressModeClampToEdge || s.AddressModeV != wgpu.AddressModeClampToEdge {
		t.Errorf("sampler = %+v, want clamp-to-edge", s)
	}
	if s.MagFilter != wgpu.FilterModeLinear || s.MinFilter != wgpu.FilterModeLinear {
		t.Errorf("sampler = %+v, want linear filtering", s)
	}
}

func TestFromBytesBMP(t *testing.T) {
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, checker(3, 3)); err != nil {
		t.Fatalf("bmp.Encode: %v", err)
	}
	tex, err := FromBytes(backendtest.NewRecorder(), buf.Bytes(), "bmp")
	if err != nil {
		t.Fatalf("FromBytes() error = %v", err)
	}
	if tex.Width() != 3 || tex.Height() != 3 {
		t.Errorf("size = %dx%d, want 3x3", tex.Width(), tex.Height())
	}
}

func TestFromBytesMalformed(t *testing.T) {
	rec := backendtest.NewRecorder()
	_, err := FromBytes(rec, []byte("definitely not an image"), "junk")
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("FromBytes() error = %v, want *DecodeError", err)
	}
	if decodeErr.Label != "junk" {
		t.Errorf("Label = %q, want junk", decodeErr.Label)
	}
	if len(rec.Textures) != 0 {
		t.Errorf("created %d textures for malformed input", len(rec.Textures))
	}
}

func TestCreateDepthTexture(t *testing.T) {
	rec := backendtest.NewRecorder()
	cfg := backend.SurfaceConfig{Format: wgpu.TextureFormatBGRA8UnormSrgb, Width: 640, Height: 480}
	depth, err := CreateDepthTexture(rec, cfg, "depth")
	if err != nil {
		t.Fatalf("CreateDepthTexture() error = %v", err)
	}
	if depth.Width() != 640 || depth.Height() != 480 {
		t.Errorf("size = %dx%d, want 640x480", depth.Width(), depth.Height())
	}
	gpu := depth.Texture().(*backendtest.Texture)
	if gpu.Format() != DepthFormat {
		t.Errorf("format = %v, want %v", gpu.Format(), DepthFormat)
	}
	if gpu.Usage&wgpu.TextureUsageRenderAttachment == 0 {
		t.Error("depth texture is not a render attachment")
	}
	if depth.Sampler() != nil {
		t.Error("depth texture should not carry a sampler")
	}

	depth.Release()
	if !gpu.Released {
		t.Error("Release did not free the GPU texture")
	}
}
