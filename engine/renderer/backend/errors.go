package backend

import (
	"errors"
	"fmt"
	"strings"
)

// Surface acquisition failures. Callers match them with errors.Is.
var (
	// ErrSurfaceLost means the surface must be reconfigured before the next frame.
	ErrSurfaceLost = errors.New("surface lost")
	// ErrSurfaceOutdated means the surface no longer matches the window and must be reconfigured.
	ErrSurfaceOutdated = errors.New("surface outdated")
	// ErrSurfaceTimeout means no image became available in time. The frame can be skipped.
	ErrSurfaceTimeout = errors.New("surface timeout")
	// ErrOutOfMemory is fatal.
	ErrOutOfMemory = errors.New("out of memory")
	// ErrDeviceLost is fatal.
	ErrDeviceLost = errors.New("device lost")
	// ErrFrameInFlight is returned when a frame is acquired before the previous one was released.
	ErrFrameInFlight = errors.New("previous frame not yet released")
)

// IsRecoverable reports whether err can be handled by reconfiguring the surface.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrSurfaceLost) || errors.Is(err, ErrSurfaceOutdated)
}

// IsFatal reports whether err leaves the device unusable.
func IsFatal(err error) bool {
	return errors.Is(err, ErrOutOfMemory) || errors.Is(err, ErrDeviceLost)
}

// ClassifySurfaceError maps an error reported by the native surface into one of the
// sentinel errors above, keeping the original message. Unrecognised errors are returned
// unchanged.
//
// Parameters:
//   - err: the error returned while acquiring a surface image
//
// Returns:
//   - error: err wrapped with its sentinel, or err itself
func ClassifySurfaceError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	squashed := strings.NewReplacer(" ", "", "_", "", "-", "").Replace(msg)

	var sentinel error
	switch {
	case strings.Contains(squashed, "devicelost"):
		sentinel = ErrDeviceLost
	case strings.Contains(squashed, "outofmemory"):
		sentinel = ErrOutOfMemory
	case strings.Contains(squashed, "outdated"):
		sentinel = ErrSurfaceOutdated
	case strings.Contains(squashed, "lost"):
		sentinel = ErrSurfaceLost
	case strings.Contains(squashed, "timeout"), strings.Contains(squashed, "timedout"):
		sentinel = ErrSurfaceTimeout
	default:
		return err
	}
	if errors.Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}
