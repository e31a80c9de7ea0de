package renderer

import "github.com/cogentcore/webgpu/wgpu"

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeSurfaceDefault uses the first present mode the surface reports.
	PresentModeSurfaceDefault PresentMode = iota

	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped

	// PresentModeMailbox replaces the queued frame with the newest one without tearing.
	// Adapter-dependent.
	PresentModeMailbox
)

// wgpuPresentMode maps p to the WebGPU present mode. The second result is false for
// PresentModeSurfaceDefault.
func (p PresentMode) wgpuPresentMode() (wgpu.PresentMode, bool) {
	switch p {
	case PresentModeVSync:
		return wgpu.PresentModeFifo, true
	case PresentModeUncapped:
		return wgpu.PresentModeImmediate, true
	case PresentModeMailbox:
		return wgpu.PresentModeMailbox, true
	}
	return wgpu.PresentModeFifo, false
}

// ParsePresentMode converts a configuration string ("", "vsync", "uncapped", "mailbox").
func ParsePresentMode(s string) (PresentMode, bool) {
	switch s {
	case "", "default":
		return PresentModeSurfaceDefault, true
	case "vsync", "fifo":
		return PresentModeVSync, true
	case "uncapped", "immediate":
		return PresentModeUncapped, true
	case "mailbox":
		return PresentModeMailbox, true
	}
	return PresentModeSurfaceDefault, false
}
