package camera

import "math"

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithRadius sets the initial orbit radius (distance from target).
//
// Parameters:
//   - radius: distance from the orbit target
//
// Returns:
//   - CameraControllerOption: functional option to set the radius
func WithRadius(radius float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.radius = radius
	}
}

// WithAzimuth sets the initial horizontal angle around the Y axis.
//
// Parameters:
//   - azimuth: horizontal angle in radians (0 = +Z axis)
//
// Returns:
//   - CameraControllerOption: functional option to set the azimuth
func WithAzimuth(azimuth float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.azimuth = azimuth
	}
}

// WithElevation sets the initial vertical angle from the horizontal plane.
//
// Parameters:
//   - elevation: vertical angle in radians (0 = horizontal)
//
// Returns:
//   - CameraControllerOption: functional option to set the elevation
func WithElevation(elevation float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.elevation = elevation
	}
}

// WithPivot sets the orbit target.
func WithPivot(x, y, z float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.target = [3]float32{x, y, z}
	}
}

// WithRadiusLimits sets the minimum and maximum orbit radius.
func WithRadiusLimits(minRadius, maxRadius float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.minRadius = minRadius
		cc.maxRadius = maxRadius
	}
}

// WithOrbitSpeed sets the orbit speed in radians per second of held input.
func WithOrbitSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.orbitSpeed = speed
	}
}

// WithZoomSpeed sets the radius change per unit of zoom input.
func WithZoomSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.zoomSpeed = speed
	}
}

// FromCamera derives the pivot and spherical coordinates from an existing camera, so the
// controller starts where the camera already is.
//
// Parameters:
//   - cam: the camera to start from
//
// Returns:
//   - CameraControllerOption: functional option to seed the controller
func FromCamera(cam Camera) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.target = cam.Target
		off := [3]float32{cam.Eye[0] - cam.Target[0], cam.Eye[1] - cam.Target[1], cam.Eye[2] - cam.Target[2]}
		r := float32(math.Sqrt(float64(off[0]*off[0] + off[1]*off[1] + off[2]*off[2])))
		if r == 0 {
			return
		}
		cc.radius = r
		cc.elevation = float32(math.Asin(float64(off[1] / r)))
		cc.azimuth = float32(math.Atan2(float64(off[0]), float64(off[2])))
	}
}
