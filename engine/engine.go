// Package engine runs the window event loop and drives the renderer from it.
package engine

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Carmen-Shannon/bismuth/common"
	"github.com/Carmen-Shannon/bismuth/engine/camera"
	"github.com/Carmen-Shannon/bismuth/engine/profiler"
	"github.com/Carmen-Shannon/bismuth/engine/renderer/backend"
	"github.com/Carmen-Shannon/bismuth/engine/window"
)

// Surface is the part of the renderer the event loop drives. renderer.Renderer satisfies it.
type Surface interface {
	Render(cam *camera.Camera) error
	Resize(width, height int) error
	Size() (int, int)
}

// TickCallback runs before every frame. dt is the time since the previous frame in seconds;
// cam is the camera about to be rendered and may be modified.
type TickCallback func(dt float32, cam *camera.Camera)

// eventHandler handles one event variant. A non-nil error stops the loop.
type eventHandler func(ev window.Event) error

// engine implements the Engine interface.
type engine struct {
	mu *sync.Mutex

	window  window.Window
	surface Surface

	camera     camera.Camera
	controller camera.CameraController

	tickCallbacks []TickCallback
	handlers      map[window.EventType]eventHandler

	profiler         *profiler.Profiler
	profilingEnabled bool

	now      func() time.Time
	lastTick time.Time

	running bool
}

// Engine owns the event loop for one window and its renderer.
//
// Every event batch returned by the window is dispatched by type; events addressed to another
// window are ignored. A redraw is requested after every batch, so the loop renders
// continuously while the window is open.
type Engine interface {
	// Window returns the window the engine listens to.
	Window() window.Window

	// Camera returns a copy of the camera passed to the renderer.
	Camera() camera.Camera

	// SetCamera replaces the camera. With an orbit controller the controller is re-seeded from it.
	SetCamera(cam camera.Camera)

	// AddTickCallback registers a callback run before every frame, in registration order.
	AddTickCallback(cb TickCallback)

	// HandleEvent dispatches a single event.
	//
	// Parameters:
	//   - ev: the event to handle
	//
	// Returns:
	//   - error: a fatal render error; the loop must stop
	HandleEvent(ev window.Event) error

	// Run polls and dispatches events until the window closes, Escape is pressed or Quit is
	// called.
	//
	// Returns:
	//   - error: the fatal render error (out of memory, device lost) that stopped the loop, or nil
	Run() error

	// Quit stops the loop after the current batch. Safe to call multiple times.
	Quit()

	// Running reports whether the loop is still active.
	Running() bool
}

var _ Engine = &engine{}

// NewEngine creates an engine driving surface from w's events.
//
// Parameters:
//   - w: the window to poll
//   - surface: the renderer to draw and resize
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(w window.Window, surface Surface, options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:      &sync.Mutex{},
		window:  w,
		surface: surface,
		camera:  camera.NewCamera(),
		now:     time.Now,
		running: true,
	}
	for _, opt := range options {
		opt(e)
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler()
	}
	if e.controller != nil {
		e.controller.Apply(&e.camera)
	}
	e.lastTick = e.now()

	e.handlers = map[window.EventType]eventHandler{
		window.EventTypeResized:            e.handleResize,
		window.EventTypeScaleFactorChanged: e.handleResize,
		window.EventTypeCloseRequested:     e.handleClose,
		window.EventTypeKeyPressed:         e.handleKey,
		window.EventTypeKeyReleased:        e.handleKey,
		window.EventTypeRedrawRequested:    e.handleRedraw,
	}
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Camera() camera.Camera {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.camera
}

func (e *engine) SetCamera(cam camera.Camera) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.camera = cam
	if e.controller != nil {
		e.controller.Reset(cam)
		e.controller.Apply(&e.camera)
	}
}

func (e *engine) AddTickCallback(cb TickCallback) {
	if cb == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickCallbacks = append(e.tickCallbacks, cb)
}

func (e *engine) Run() error {
	for e.Running() && e.window.IsRunning() {
		for _, ev := range e.window.PollEvents() {
			if err := e.HandleEvent(ev); err != nil {
				e.Quit()
				return err
			}
			if !e.Running() {
				return nil
			}
		}
		if !e.window.IsRunning() {
			return nil
		}
		e.window.RequestRedraw()
		if e.profilingEnabled {
			e.profiler.Tick()
		}
	}
	return nil
}

func (e *engine) HandleEvent(ev window.Event) error {
	if ev.WindowID != e.window.ID() {
		return nil
	}
	handler, ok := e.handlers[ev.Type]
	if !ok {
		return nil
	}
	return handler(ev)
}

func (e *engine) Quit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
}

func (e *engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

func (e *engine) handleResize(ev window.Event) error {
	if err := e.surface.Resize(ev.Width, ev.Height); err != nil {
		log.Printf("[Engine] resize to %dx%d failed: %v", ev.Width, ev.Height, err)
		return nil
	}
	if ev.Width > 0 && ev.Height > 0 {
		e.profiler.SurfaceReconfigured()
	}
	return nil
}

func (e *engine) handleClose(window.Event) error {
	e.Quit()
	return nil
}

func (e *engine) handleKey(ev window.Event) error {
	pressed := ev.Type == window.EventTypeKeyPressed
	if pressed && ev.Key == common.KeyEsc {
		e.Quit()
		return nil
	}
	if e.controller != nil {
		e.controller.HandleKey(ev.Key, pressed)
	}
	return nil
}

func (e *engine) handleRedraw(window.Event) error {
	current := e.now()
	dt := float32(current.Sub(e.lastTick).Seconds())
	e.lastTick = current

	e.mu.Lock()
	if e.controller != nil {
		e.controller.Update(dt)
		e.controller.Apply(&e.camera)
	}
	for _, cb := range e.tickCallbacks {
		cb(dt, &e.camera)
	}
	cam := e.camera
	e.mu.Unlock()

	return e.present(&cam)
}

// present renders one frame and applies the surface error policy: lost or outdated surfaces
// are reconfigured at their current size, fatal errors stop the loop, anything else skips
// the frame.
func (e *engine) present(cam *camera.Camera) error {
	err := e.surface.Render(cam)
	switch {
	case err == nil:
		e.profiler.FramePresented()
		return nil
	case backend.IsRecoverable(err):
		width, height := e.surface.Size()
		if resizeErr := e.surface.Resize(width, height); resizeErr != nil {
			log.Printf("[Engine] reconfigure after %v failed: %v", err, resizeErr)
		} else {
			e.profiler.SurfaceReconfigured()
		}
	case backend.IsFatal(err):
		return fmt.Errorf("render failed: %w", err)
	case errors.Is(err, backend.ErrSurfaceTimeout):
		log.Printf("[Engine] surface timeout, skipping frame")
	default:
		log.Printf("[Engine] render error, skipping frame: %v", err)
	}
	e.profiler.FrameSkipped()
	return nil
}
