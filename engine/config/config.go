// Package config reads the viewer's YAML configuration file.
//
// Every field is optional; omitted fields keep the values from Default. A minimal file:
//
//	window:
//	  title: bismuth
//	  width: 1280
//	  height: 720
//	renderer:
//	  present_mode: vsync
//	  clear_color: [0.1, 0.2, 0.3]
//	camera:
//	  eye: [1, 1, 1]
//	  fovy: 75
//	meshes:
//	  - models/fox.glb
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/Carmen-Shannon/bismuth/engine/camera"
	"github.com/Carmen-Shannon/bismuth/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
	"gopkg.in/yaml.v3"
)

// maxConfigSize bounds how much of a config file is read.
const maxConfigSize = 1 << 20

// Config is the full viewer configuration.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Renderer RendererConfig `yaml:"renderer"`
	Camera   CameraConfig   `yaml:"camera"`

	// Meshes are glTF or GLB files to display. Empty means the embedded cube.
	Meshes []string `yaml:"meshes"`

	// Profiling logs frame statistics once per second.
	Profiling bool `yaml:"profiling"`
}

// WindowConfig configures the window.
type WindowConfig struct {
	Title     string `yaml:"title"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	Resizable bool   `yaml:"resizable"`
}

// RendererConfig configures the renderer.
type RendererConfig struct {
	// PresentMode is one of "", "vsync", "uncapped" or "mailbox".
	PresentMode string `yaml:"present_mode"`

	// SoftwareAdapter forces the fallback adapter.
	SoftwareAdapter bool `yaml:"software_adapter"`

	ClearColor Color `yaml:"clear_color"`

	// FrontFace is "ccw" or "cw".
	FrontFace string `yaml:"front_face"`

	// Material is an image file used instead of the embedded texture.
	Material string `yaml:"material"`

	ValidateShader bool `yaml:"validate_shader"`
}

// CameraConfig configures the initial camera and whether the keyboard orbits it.
type CameraConfig struct {
	Eye    [3]float32 `yaml:"eye"`
	Target [3]float32 `yaml:"target"`
	Up     [3]float32 `yaml:"up"`
	Fovy   float32    `yaml:"fovy"`
	Near   float32    `yaml:"near"`
	Far    float32    `yaml:"far"`
	Orbit  bool       `yaml:"orbit"`
}

// Color is an RGBA color. YAML accepts three components (opaque) or four.
type Color [4]float64

// UnmarshalYAML implements yaml.Unmarshaler for Color.
func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	var parts []float64
	if err := value.Decode(&parts); err != nil {
		return err
	}
	switch len(parts) {
	case 3:
		*c = Color{parts[0], parts[1], parts[2], 1}
	case 4:
		*c = Color{parts[0], parts[1], parts[2], parts[3]}
	default:
		return fmt.Errorf("color needs 3 or 4 components, got %d", len(parts))
	}
	return nil
}

// WGPU returns c as a wgpu.Color.
func (c Color) WGPU() wgpu.Color {
	return wgpu.Color{R: c[0], G: c[1], B: c[2], A: c[3]}
}

// Default returns the configuration used when no file is given.
func Default() Config {
	cam := camera.NewCamera()
	return Config{
		Window: WindowConfig{
			Title:     "bismuth",
			Width:     800,
			Height:    600,
			Resizable: true,
		},
		Renderer: RendererConfig{
			ClearColor: Color{0, 0, 0, 1},
			FrontFace:  "ccw",
		},
		Camera: CameraConfig{
			Eye:    cam.Eye,
			Target: cam.Target,
			Up:     cam.Up,
			Fovy:   cam.Fovy,
			Near:   cam.Znear,
			Far:    cam.Zfar,
			Orbit:  true,
		},
	}
}

// Load reads the file at path over Default. A missing file yields Default.
//
// Parameters:
//   - path: the YAML file, or "" for defaults
//
// Returns:
//   - Config: the merged configuration
//   - error: an error if the file is unreadable, too large or invalid
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to stat config: %w", err)
	}
	if info.Size() > maxConfigSize {
		return Config{}, fmt.Errorf("config %q is %d bytes, limit is %d", path, info.Size(), maxConfigSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid value.
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if _, ok := renderer.ParsePresentMode(c.Renderer.PresentMode); !ok {
		return fmt.Errorf("unknown present mode %q", c.Renderer.PresentMode)
	}
	if _, err := parseFrontFace(c.Renderer.FrontFace); err != nil {
		return err
	}
	for i, v := range c.Renderer.ClearColor {
		if v < 0 || v > 1 {
			return fmt.Errorf("clear color component %d = %v is outside [0, 1]", i, v)
		}
	}
	return c.Camera.Camera().Validate()
}

// Camera builds the configured camera.
func (c CameraConfig) Camera() camera.Camera {
	return camera.Camera{
		Eye:    c.Eye,
		Target: c.Target,
		Up:     c.Up,
		Fovy:   c.Fovy,
		Znear:  c.Near,
		Zfar:   c.Far,
	}
}

// Options converts the renderer section into renderer options. The material file, if any, is
// read here.
//
// Returns:
//   - []renderer.RendererBuilderOption: options for renderer.NewWGPURenderer
//   - error: an error if a value is invalid or the material cannot be read
func (r RendererConfig) Options() ([]renderer.RendererBuilderOption, error) {
	mode, ok := renderer.ParsePresentMode(r.PresentMode)
	if !ok {
		return nil, fmt.Errorf("unknown present mode %q", r.PresentMode)
	}
	face, err := parseFrontFace(r.FrontFace)
	if err != nil {
		return nil, err
	}
	opts := []renderer.RendererBuilderOption{
		renderer.WithPresentMode(mode),
		renderer.WithForceSoftwareRenderer(r.SoftwareAdapter),
		renderer.WithClearColor(r.ClearColor.WGPU()),
		renderer.WithFrontFace(face),
		renderer.WithShaderValidation(r.ValidateShader),
	}
	if r.Material != "" {
		data, err := os.ReadFile(r.Material)
		if err != nil {
			return nil, fmt.Errorf("failed to read material: %w", err)
		}
		opts = append(opts, renderer.WithMaterialImage(data))
	}
	return opts, nil
}

func parseFrontFace(s string) (wgpu.FrontFace, error) {
	switch s {
	case "", "ccw":
		return wgpu.FrontFaceCCW, nil
	case "cw":
		return wgpu.FrontFaceCW, nil
	}
	return wgpu.FrontFaceCCW, fmt.Errorf("unknown front face %q", s)
}
