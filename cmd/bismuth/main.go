// Command bismuth opens a window and renders glTF meshes with an orbiting camera.
//
// Usage:
//
//	bismuth [-config bismuth.yaml]
//
// Without a config file the embedded cube is shown. WASD or the arrow keys orbit the camera,
// Q and E zoom, Escape quits.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/Carmen-Shannon/bismuth/assets"
	"github.com/Carmen-Shannon/bismuth/common"
	"github.com/Carmen-Shannon/bismuth/engine"
	"github.com/Carmen-Shannon/bismuth/engine/camera"
	"github.com/Carmen-Shannon/bismuth/engine/config"
	"github.com/Carmen-Shannon/bismuth/engine/loader"
	"github.com/Carmen-Shannon/bismuth/engine/renderer"
	"github.com/Carmen-Shannon/bismuth/engine/window"
)

// meshSpacing is the distance between neighbouring meshes along X.
const meshSpacing = 1.5

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Fatalf("[bismuth] %v", err)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// ── Window ──────────────────────────────────────────────────────────
	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
		window.WithResizable(cfg.Window.Resizable),
	)
	if err != nil {
		return err
	}
	defer win.Close()

	// ── Renderer ────────────────────────────────────────────────────────
	opts, err := cfg.Renderer.Options()
	if err != nil {
		return err
	}
	r, err := renderer.NewWGPURenderer(win.SurfaceDescriptor(), win.Width(), win.Height(), opts...)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	defer r.Release()

	// ── Meshes ──────────────────────────────────────────────────────────
	meshes, err := loadMeshes(loader.NewLoader(), cfg.Meshes)
	if err != nil {
		return err
	}
	offset := -meshSpacing * float32(len(meshes)-1) / 2
	for i, m := range meshes {
		x := offset + meshSpacing*float32(i)
		if _, err := r.AddMesh(m.Vertices, m.Indices, common.Translation4(x, 0, 0)); err != nil {
			return fmt.Errorf("failed to upload %q: %w", m.Name, err)
		}
		log.Printf("[bismuth] loaded %s: %d vertices, %d indices", m.Name, len(m.Vertices), len(m.Indices))
	}

	// ── Engine ──────────────────────────────────────────────────────────
	cam := cfg.Camera.Camera()
	engineOpts := []engine.EngineBuilderOption{
		engine.WithCamera(cam),
		engine.WithProfiling(cfg.Profiling),
	}
	if cfg.Camera.Orbit {
		engineOpts = append(engineOpts, engine.WithCameraController(camera.NewCameraController(camera.FromCamera(cam))))
	}
	return engine.NewEngine(win, r, engineOpts...).Run()
}

// loadMeshes loads the configured files, or the embedded cube when none are configured.
func loadMeshes(l loader.Loader, paths []string) ([]*loader.MeshData, error) {
	if len(paths) == 0 {
		m, err := l.LoadBytes(assets.DefaultMeshName, assets.DefaultMesh)
		if err != nil {
			return nil, err
		}
		return []*loader.MeshData{m}, nil
	}
	return l.LoadAll(paths...)
}
