package window

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window provides a platform window that reports input and lifecycle changes as queued events.
type Window interface {
	// ID returns the window's identifier, matching Event.WindowID.
	ID() ID

	// PollEvents processes pending platform events and returns everything queued since the
	// last call, in arrival order.
	//
	// Returns:
	//   - []Event: the queued events
	PollEvents() []Event

	// RequestRedraw queues an EventTypeRedrawRequested for the next PollEvents.
	RequestRedraw()

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// Width returns the current framebuffer width in pixels.
	Width() int

	// Height returns the current framebuffer height in pixels.
	Height() int
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state, and the event queue.
type engineWindow struct {
	id    ID
	title string

	// size limits applied to user resizing.
	maxWidth  int
	maxHeight int
	minWidth  int
	minHeight int

	// width and height are the current framebuffer size in pixels.
	width  int
	height int

	resizable bool

	queue *EventQueue

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a window with the specified options.
// Applies default values first, then each option in order. Must be called from the main
// goroutine; the calling OS thread is locked for the life of the process.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the created window
//   - error: an error if the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		id:        NewID(),
		title:     "bismuth",
		maxWidth:  3840,
		maxHeight: 2160,
		minWidth:  160,
		minHeight: 120,
		width:     800,
		height:    600,
		resizable: true,
	}
	for _, opt := range options {
		opt(w)
	}
	w.queue = NewEventQueue(w.id)
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("failed to create platform window: %w", err)
	}
	return w, nil
}

func (w *engineWindow) ID() ID {
	return w.id
}

func (w *engineWindow) PollEvents() []Event {
	platformProcessMessages(w)
	return w.queue.Drain()
}

func (w *engineWindow) RequestRedraw() {
	w.queue.RequestRedraw()
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}
