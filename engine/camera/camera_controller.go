package camera

import "github.com/Carmen-Shannon/bismuth/common"

// CameraController drives a Camera from user input. It orbits the camera's eye around a
// target on a sphere described by radius, azimuth and elevation, and writes the result
// into a Camera once per tick via Apply.
type CameraController interface {
	// Position returns the eye position derived from the spherical coordinates.
	//
	// Returns:
	//   - [3]float32: world-space eye position
	Position() [3]float32

	// Target returns the orbit pivot.
	Target() [3]float32

	// SetTarget moves the orbit pivot and recomputes the eye position.
	//
	// Parameters:
	//   - target: world-space pivot
	SetTarget(target [3]float32)

	// Zoom moves the eye toward (positive delta) or away from the target, clamped to the
	// configured radius range.
	//
	// Parameters:
	//   - delta: zoom amount in zoom-speed units
	Zoom(delta float32)

	// Orbit rotates the eye around the target.
	//
	// Parameters:
	//   - dAzimuth: horizontal rotation in radians
	//   - dElevation: vertical rotation in radians, clamped to the elevation range
	Orbit(dAzimuth, dElevation float32)

	// Radius returns the current distance from the target.
	Radius() float32

	// Azimuth returns the horizontal angle in radians (0 = +Z axis).
	Azimuth() float32

	// Elevation returns the vertical angle in radians from the horizontal plane.
	Elevation() float32

	// HandleKey records a key transition. Held keys are applied on the next Update.
	//
	// Parameters:
	//   - key: the key that changed
	//   - pressed: true on press, false on release
	HandleKey(key common.Key, pressed bool)

	// Update advances the controller by dt seconds using the currently held keys.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	Update(dt float32)

	// Reset re-derives the pivot and spherical coordinates from cam, keeping limits and speeds.
	Reset(cam Camera)

	// Apply writes the controller's eye and target into cam. Up, field of view and the
	// clipping planes are left untouched.
	//
	// Parameters:
	//   - cam: the camera to update
	Apply(cam *Camera)
}
