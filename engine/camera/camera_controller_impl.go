package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/go-gl/mathgl/mgl32"
)

// cameraControllerImpl is the first-person implementation of CameraController.
type cameraControllerImpl struct {
	mu *sync.Mutex

	position mgl32.Vec3
	rotation mgl32.Vec3

	rotationSpeed float32
	moveSpeed     float32
}

// Compile-time interface compliance check
var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a first-person controller at the origin looking down -Z,
// turning at 2 rad/s and moving at 50 units/s.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:            &sync.Mutex{},
		rotationSpeed: 2.0,
		moveSpeed:     50.0,
	}
	for _, option := range options {
		option(cc)
	}
	return cc
}

func (cc *cameraControllerImpl) Position() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position
}

func (cc *cameraControllerImpl) SetPosition(p mgl32.Vec3) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.position = p
}

func (cc *cameraControllerImpl) Rotation() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.rotation
}

func (cc *cameraControllerImpl) SetRotation(r mgl32.Vec3) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.rotation = r
}

func (cc *cameraControllerImpl) WorldMatrix() [16]float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.world()
}

// world builds the placement matrix. Caller must hold the mutex.
func (cc *cameraControllerImpl) world() [16]float32 {
	var m [16]float32
	common.BuildModelMatrix(m[:],
		cc.position.X(), cc.position.Y(), cc.position.Z(),
		cc.rotation.X(), cc.rotation.Y(), cc.rotation.Z(),
		1, 1, 1)
	return m
}

func (cc *cameraControllerImpl) Control(dt float32, keys common.KeyState, b Bindings) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	axis := func(pos, neg common.Key) float32 {
		var v float32
		if keys.KeyHeld(pos) {
			v++
		}
		if keys.KeyHeld(neg) {
			v--
		}
		return v
	}

	turn := cc.rotationSpeed * dt
	cc.rotation[0] += axis(b.TurnUp, b.TurnDown) * turn
	cc.rotation[1] += axis(b.TurnLeft, b.TurnRight) * turn

	forward := axis(b.MoveForward, b.MoveBack)
	strafe := axis(b.MoveRight, b.MoveLeft)
	if forward == 0 && strafe == 0 {
		return
	}

	w := cc.world()
	step := cc.moveSpeed * dt
	cc.position = cc.position.
		Add(common.Forward(w).Mul(forward * step)).
		Add(common.Axis(w, 0).Mul(strafe * step))
}

func (cc *cameraControllerImpl) RotationSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.rotationSpeed
}

func (cc *cameraControllerImpl) MoveSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.moveSpeed
}
