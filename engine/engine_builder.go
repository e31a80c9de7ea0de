package engine

import (
	"time"

	"github.com/Carmen-Shannon/bismuth/engine/camera"
	"github.com/Carmen-Shannon/bismuth/engine/profiler"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler replaces the default profiler, e.g. to change its interval.
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithCamera sets the initial camera.
//
// Parameters:
//   - cam: the camera rendered on the first frame
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCamera(cam camera.Camera) EngineBuilderOption {
	return func(e *engine) {
		e.camera = cam
	}
}

// WithCameraController lets keyboard input orbit the camera. Key events are forwarded to cc
// and the camera's eye and target are taken from it before every frame.
func WithCameraController(cc camera.CameraController) EngineBuilderOption {
	return func(e *engine) {
		e.controller = cc
	}
}

// WithTickCallback registers a tick callback at construction. See Engine.AddTickCallback.
func WithTickCallback(cb TickCallback) EngineBuilderOption {
	return func(e *engine) {
		if cb != nil {
			e.tickCallbacks = append(e.tickCallbacks, cb)
		}
	}
}

// WithClock replaces time.Now for frame timing.
func WithClock(now func() time.Time) EngineBuilderOption {
	return func(e *engine) {
		e.now = now
	}
}
