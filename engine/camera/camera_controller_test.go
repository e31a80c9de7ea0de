package camera

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/bismuth/common"
)

func TestControllerPositionOnSphere(t *testing.T) {
	cc := NewCameraController(WithRadius(4), WithPivot(1, 2, 3), WithAzimuth(0.7), WithElevation(0.3))
	d := common.Length3(common.Sub3(cc.Position(), cc.Target()))
	if !approx(d, 4, 1e-4) {
		t.Errorf("distance from target = %v, want 4", d)
	}
}

func TestControllerZoomClamped(t *testing.T) {
	cc := NewCameraController(WithRadius(2), WithRadiusLimits(1, 3), WithZoomSpeed(1))
	cc.Zoom(100)
	if cc.Radius() != 1 {
		t.Errorf("Radius() after zoom in = %v, want 1", cc.Radius())
	}
	cc.Zoom(-100)
	if cc.Radius() != 3 {
		t.Errorf("Radius() after zoom out = %v, want 3", cc.Radius())
	}
}

func TestControllerHeldKeys(t *testing.T) {
	cc := NewCameraController(WithOrbitSpeed(1), WithAzimuth(0))
	cc.HandleKey(common.KeyD, true)
	cc.Update(0.5)
	if !approx(cc.Azimuth(), 0.5, 1e-6) {
		t.Errorf("Azimuth() = %v, want 0.5", cc.Azimuth())
	}
	cc.HandleKey(common.KeyD, false)
	cc.Update(0.5)
	if !approx(cc.Azimuth(), 0.5, 1e-6) {
		t.Errorf("Azimuth() after release = %v, want 0.5", cc.Azimuth())
	}
}

func TestControllerElevationClamped(t *testing.T) {
	cc := NewCameraController()
	cc.Orbit(0, 10)
	if cc.Elevation() >= math.Pi/2 {
		t.Errorf("Elevation() = %v, must stay below pi/2", cc.Elevation())
	}
}

func TestControllerApplyKeepsValidCamera(t *testing.T) {
	cam := NewCamera()
	cc := NewCameraController(FromCamera(cam))
	if !approx(common.Length3(common.Sub3(cc.Position(), cam.Eye)), 0, 1e-4) {
		t.Fatalf("FromCamera position = %v, want %v", cc.Position(), cam.Eye)
	}
	cc.Orbit(1.2, 0.4)
	cc.Apply(&cam)
	if cam.Eye != cc.Position() {
		t.Errorf("Apply eye = %v, want %v", cam.Eye, cc.Position())
	}
	if err := cam.Validate(); err != nil {
		t.Errorf("camera invalid after Apply: %v", err)
	}
}

func TestControllerResetKeepsLimits(t *testing.T) {
	cc := NewCameraController(WithRadiusLimits(1, 5))
	cc.Reset(NewCamera(WithEye(0, 0, 20), WithTarget(0, 0, 0)))
	if cc.Radius() != 5 {
		t.Errorf("Radius() after reset = %v, want clamped 5", cc.Radius())
	}
	cc.Reset(NewCamera(WithEye(3, 0, 0), WithTarget(1, 0, 0)))
	if cc.Target() != [3]float32{1, 0, 0} {
		t.Errorf("Target() after reset = %v", cc.Target())
	}
	if !approx(cc.Radius(), 2, 1e-5) || !approx(cc.Azimuth(), float32(math.Pi/2), 1e-5) {
		t.Errorf("unexpected spherical coordinates r=%v az=%v", cc.Radius(), cc.Azimuth())
	}
}
