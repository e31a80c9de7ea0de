package camera

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/bismuth/common"
)

// Camera is a perspective camera described by its position, look-at target, up direction,
// vertical field of view and clipping planes. It is a plain value: copy it freely, and
// pass a pointer to the renderer to upload its view-projection for the next frame.
type Camera struct {
	// Eye is the camera position in world space.
	Eye [3]float32
	// Target is the world-space point the camera looks at.
	Target [3]float32
	// Up is the up direction used to orient the view. It must not be parallel to Target-Eye.
	Up [3]float32
	// Fovy is the vertical field of view in degrees.
	Fovy float32
	// Znear is the near clipping plane distance. Must be > 0.
	Znear float32
	// Zfar is the far clipping plane distance. Must be > Znear.
	Zfar float32
}

// ErrInvalidCamera is wrapped by every error returned from Camera.Validate.
var ErrInvalidCamera = errors.New("invalid camera")

// NewCamera creates a Camera with default perspective settings: eye at (0, 1, 2) looking at
// the origin, +Y up, 45 degree vertical field of view, and planes at 0.1 and 100.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the configured camera value
func NewCamera(options ...CameraBuilderOption) Camera {
	c := Camera{
		Eye:    [3]float32{0, 1, 2},
		Target: [3]float32{0, 0, 0},
		Up:     [3]float32{0, 1, 0},
		Fovy:   45,
		Znear:  0.1,
		Zfar:   100,
	}
	for _, option := range options {
		option(&c)
	}
	return c
}

// Validate reports whether the camera can produce an invertible view-projection.
//
// Returns:
//   - error: nil if valid, otherwise an error wrapping ErrInvalidCamera
func (c Camera) Validate() error {
	if c.Znear <= 0 {
		return fmt.Errorf("%w: znear %v must be positive", ErrInvalidCamera, c.Znear)
	}
	if c.Znear >= c.Zfar {
		return fmt.Errorf("%w: znear %v must be less than zfar %v", ErrInvalidCamera, c.Znear, c.Zfar)
	}
	if c.Fovy <= 0 || c.Fovy >= 180 {
		return fmt.Errorf("%w: fovy %v must be in (0, 180)", ErrInvalidCamera, c.Fovy)
	}
	dir := common.Sub3(c.Target, c.Eye)
	if common.Length3(dir) == 0 {
		return fmt.Errorf("%w: eye and target coincide", ErrInvalidCamera)
	}
	if common.Length3(common.Cross3(c.Up, dir)) < 1e-6*common.Length3(dir)*common.Length3(c.Up) {
		return fmt.Errorf("%w: up %v is parallel to the view direction", ErrInvalidCamera, c.Up)
	}
	return nil
}

// ViewMatrix returns the right-handed world-to-view matrix.
func (c Camera) ViewMatrix() [16]float32 {
	return common.LookAt(c.Eye, c.Target, c.Up)
}

// ProjectionMatrix returns the right-handed perspective projection for the given aspect
// ratio. Depth maps to [0, 1], with the near plane at 0.
func (c Camera) ProjectionMatrix(aspect float32) [16]float32 {
	return common.Perspective(common.Radians(c.Fovy), aspect, c.Znear, c.Zfar)
}

// ViewProjection computes projection * view for the given aspect ratio (width / height).
// It is pure; the caller supplies the aspect of the configured surface.
//
// Parameters:
//   - aspect: viewport aspect ratio
//
// Returns:
//   - [16]float32: the column-major view-projection matrix
func (c Camera) ViewProjection(aspect float32) [16]float32 {
	return common.Mul4(c.ProjectionMatrix(aspect), c.ViewMatrix())
}
