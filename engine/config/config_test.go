package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/bismuth/engine/camera"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Camera.Camera() != camera.NewCamera() {
		t.Errorf("default camera does not match camera.NewCamera")
	}
	if len(cfg.Meshes) != 0 {
		t.Errorf("default should load the embedded mesh")
	}
}

func TestParseOverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
window:
  title: viewer
  width: 1024
renderer:
  present_mode: uncapped
  clear_color: [0.1, 0.2, 0.3]
camera:
  eye: [1, 1, 1]
  fovy: 75
meshes:
  - a.gltf
  - b.glb
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Window.Title != "viewer" || cfg.Window.Width != 1024 {
		t.Errorf("window not parsed: %+v", cfg.Window)
	}
	if cfg.Window.Height != 600 {
		t.Errorf("omitted height should keep the default, got %d", cfg.Window.Height)
	}
	if cfg.Renderer.ClearColor != (Color{0.1, 0.2, 0.3, 1}) {
		t.Errorf("three-component color should be opaque, got %v", cfg.Renderer.ClearColor)
	}
	if cfg.Camera.Eye != [3]float32{1, 1, 1} || cfg.Camera.Fovy != 75 {
		t.Errorf("camera not parsed: %+v", cfg.Camera)
	}
	if cfg.Camera.Near != 0.1 || cfg.Camera.Far != 100 {
		t.Errorf("omitted planes should keep the defaults, got %v and %v", cfg.Camera.Near, cfg.Camera.Far)
	}
	if len(cfg.Meshes) != 2 || cfg.Meshes[1] != "b.glb" {
		t.Errorf("meshes not parsed: %v", cfg.Meshes)
	}
	opts, err := cfg.Renderer.Options()
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if len(opts) != 5 {
		t.Errorf("expected 5 renderer options, got %d", len(opts))
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"zero width", "window: {width: 0}", "window size"},
		{"present mode", "renderer: {present_mode: sometimes}", "present mode"},
		{"front face", "renderer: {front_face: sideways}", "front face"},
		{"color range", "renderer: {clear_color: [2, 0, 0]}", "clear color"},
		{"color length", "renderer: {clear_color: [1, 0]}", "3 or 4 components"},
		{"near plane", "camera: {near: 0}", "znear"},
		{"syntax", "window: [", "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestInvalidCameraWrapsSentinel(t *testing.T) {
	_, err := Parse([]byte("camera: {eye: [0, 0, 0], target: [0, 0, 0]}"))
	if !errors.Is(err, camera.ErrInvalidCamera) {
		t.Errorf("expected camera.ErrInvalidCamera, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatalf("Load(missing): %v", err)
	}
	if cfg.Window != Default().Window {
		t.Errorf("missing file should yield defaults")
	}

	path := filepath.Join(dir, "bismuth.yaml")
	if err := os.WriteFile(path, []byte("profiling: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Profiling {
		t.Errorf("profiling not enabled")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("window: {height: -1}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil || !strings.Contains(err.Error(), bad) {
		t.Errorf("expected an error naming %q, got %v", bad, err)
	}
}

func TestOptionsReadsMaterial(t *testing.T) {
	r := Default().Renderer
	r.Material = filepath.Join(t.TempDir(), "nope.png")
	if _, err := r.Options(); err == nil {
		t.Errorf("expected an error for a missing material file")
	}
}
