package camera

type CameraBuilderOption func(*Camera)

// WithEye sets the camera position.
//
// Parameters:
//   - x, y, z: world-space position
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's eye
func WithEye(x, y, z float32) CameraBuilderOption {
	return func(c *Camera) {
		c.Eye = [3]float32{x, y, z}
	}
}

// WithTarget sets the point the camera looks at.
//
// Parameters:
//   - x, y, z: world-space target
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's target
func WithTarget(x, y, z float32) CameraBuilderOption {
	return func(c *Camera) {
		c.Target = [3]float32{x, y, z}
	}
}

// WithUp sets the camera's up vector.
//
// Parameters:
//   - x, y, z: up vector components
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's up vector
func WithUp(x, y, z float32) CameraBuilderOption {
	return func(c *Camera) {
		c.Up = [3]float32{x, y, z}
	}
}

// WithFovy sets the vertical field of view in degrees.
//
// Parameters:
//   - deg: field of view in degrees
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's field of view
func WithFovy(deg float32) CameraBuilderOption {
	return func(c *Camera) {
		c.Fovy = deg
	}
}

// WithNear sets the near clipping plane distance.
func WithNear(near float32) CameraBuilderOption {
	return func(c *Camera) {
		c.Znear = near
	}
}

// WithFar sets the far clipping plane distance.
func WithFar(far float32) CameraBuilderOption {
	return func(c *Camera) {
		c.Zfar = far
	}
}
