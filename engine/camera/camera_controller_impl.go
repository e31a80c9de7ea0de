package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/bismuth/common"
)

type cameraControllerImpl struct {
	mu *sync.Mutex

	position [3]float32
	target   [3]float32

	// Spherical coordinates (offset from target)
	radius    float32
	azimuth   float32
	elevation float32

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	// orbitSpeed is in radians per second, zoomSpeed in radius units per zoom step.
	orbitSpeed float32
	zoomSpeed  float32

	held map[common.Key]bool
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates an orbit controller looking at the origin from a radius of
// 3 at 30 degrees of elevation.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu: &sync.Mutex{},

		radius:    3.0,
		elevation: float32(math.Pi / 6),

		minRadius:    0.5,
		maxRadius:    50.0,
		minElevation: -float32(math.Pi/2 - 0.05),
		maxElevation: float32(math.Pi/2 - 0.05),

		orbitSpeed: 1.5,
		zoomSpeed:  0.25,

		held: make(map[common.Key]bool),
	}
	for _, option := range options {
		option(cc)
	}
	cc.radius = common.Clamp(cc.radius, cc.minRadius, cc.maxRadius)
	cc.elevation = common.Clamp(cc.elevation, cc.minElevation, cc.maxElevation)
	cc.updatePosition()
	return cc
}

// updatePosition recomputes the eye from the spherical coordinates.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) updatePosition() {
	cosElev := float32(math.Cos(float64(cc.elevation)))
	sinElev := float32(math.Sin(float64(cc.elevation)))
	cosAzim := float32(math.Cos(float64(cc.azimuth)))
	sinAzim := float32(math.Sin(float64(cc.azimuth)))

	cc.position = common.Add3(cc.target, [3]float32{
		cc.radius * cosElev * sinAzim,
		cc.radius * sinElev,
		cc.radius * cosElev * cosAzim,
	})
}

func (cc *cameraControllerImpl) Position() [3]float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position
}

func (cc *cameraControllerImpl) Target() [3]float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.target
}

func (cc *cameraControllerImpl) SetTarget(target [3]float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.target = target
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Reset(cam Camera) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	FromCamera(cam)(cc)
	cc.radius = common.Clamp(cc.radius, cc.minRadius, cc.maxRadius)
	cc.elevation = common.Clamp(cc.elevation, cc.minElevation, cc.maxElevation)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Zoom(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.zoom(delta)
}

func (cc *cameraControllerImpl) zoom(delta float32) {
	cc.radius = common.Clamp(cc.radius-delta*cc.zoomSpeed, cc.minRadius, cc.maxRadius)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Orbit(dAzimuth, dElevation float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.orbit(dAzimuth, dElevation)
}

func (cc *cameraControllerImpl) orbit(dAzimuth, dElevation float32) {
	cc.azimuth += dAzimuth
	cc.elevation = common.Clamp(cc.elevation+dElevation, cc.minElevation, cc.maxElevation)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Radius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.radius
}

func (cc *cameraControllerImpl) Azimuth() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.azimuth
}

func (cc *cameraControllerImpl) Elevation() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.elevation
}

func (cc *cameraControllerImpl) HandleKey(key common.Key, pressed bool) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if pressed {
		cc.held[key] = true
		return
	}
	delete(cc.held, key)
}

func (cc *cameraControllerImpl) Update(dt float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if len(cc.held) == 0 || dt <= 0 {
		return
	}

	step := cc.orbitSpeed * dt
	var dAzim, dElev, dZoom float32
	if cc.held[common.KeyA] || cc.held[common.KeyLeft] {
		dAzim -= step
	}
	if cc.held[common.KeyD] || cc.held[common.KeyRight] {
		dAzim += step
	}
	if cc.held[common.KeyW] || cc.held[common.KeyUp] {
		dElev += step
	}
	if cc.held[common.KeyS] || cc.held[common.KeyDown] {
		dElev -= step
	}
	if cc.held[common.KeyE] {
		dZoom += dt * 10
	}
	if cc.held[common.KeyQ] {
		dZoom -= dt * 10
	}

	cc.orbit(dAzim, dElev)
	if dZoom != 0 {
		cc.zoom(dZoom)
	}
}

func (cc *cameraControllerImpl) Apply(cam *Camera) {
	if cam == nil {
		return
	}
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cam.Eye = cc.position
	cam.Target = cc.target
}
