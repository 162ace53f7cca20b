package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithPosition sets the initial world-space position.
//
// Parameters:
//   - p: the position
//
// Returns:
//   - CameraControllerOption: functional option to set the position
func WithPosition(p mgl32.Vec3) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.position = p
	}
}

// WithRotation sets the initial Euler rotation in radians.
//
// Parameters:
//   - r: pitch, yaw and roll
//
// Returns:
//   - CameraControllerOption: functional option to set the rotation
func WithRotation(r mgl32.Vec3) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.rotation = r
	}
}

// WithRotationSpeed sets the turn rate.
//
// Parameters:
//   - speed: radians per second
//
// Returns:
//   - CameraControllerOption: functional option to set the turn rate
func WithRotationSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.rotationSpeed = speed
	}
}

// WithMoveSpeed sets the movement rate.
//
// Parameters:
//   - speed: units per second
//
// Returns:
//   - CameraControllerOption: functional option to set the movement rate
func WithMoveSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.moveSpeed = speed
	}
}
