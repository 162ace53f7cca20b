package camera

import (
	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Bindings assigns keys to the first-person camera motions.
type Bindings struct {
	TurnUp, TurnDown      common.Key // pitch
	TurnLeft, TurnRight   common.Key // yaw
	MoveForward, MoveBack common.Key // along facing
	MoveLeft, MoveRight   common.Key // strafe
}

// DefaultBindings returns arrow keys to turn and W/A/S/D to move.
//
// Returns:
//   - Bindings: the default assignments
func DefaultBindings() Bindings {
	return Bindings{
		TurnUp:      common.KeyUp,
		TurnDown:    common.KeyDown,
		TurnLeft:    common.KeyLeft,
		TurnRight:   common.KeyRight,
		MoveForward: common.KeyW,
		MoveBack:    common.KeyS,
		MoveLeft:    common.KeyA,
		MoveRight:   common.KeyD,
	}
}

// CameraController owns the camera's placement: a world position and an Euler rotation
// (pitch about X, yaw about Y, roll about Z) in radians. The camera looks down its local -Z.
type CameraController interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - mgl32.Vec3: world-space camera position
	Position() mgl32.Vec3

	// SetPosition sets the camera's world-space position directly.
	//
	// Parameters:
	//   - p: world-space coordinates
	SetPosition(p mgl32.Vec3)

	// Rotation returns the Euler rotation in radians.
	//
	// Returns:
	//   - mgl32.Vec3: pitch, yaw and roll
	Rotation() mgl32.Vec3

	// SetRotation sets the Euler rotation in radians.
	//
	// Parameters:
	//   - r: pitch, yaw and roll
	SetRotation(r mgl32.Vec3)

	// WorldMatrix returns the camera's placement as a column-major matrix. Its inverse is the
	// view matrix.
	//
	// Returns:
	//   - [16]float32: the camera world matrix
	WorldMatrix() [16]float32

	// Control applies one tick of keyboard motion: turning at RotationSpeed and moving at
	// MoveSpeed along the current local axes.
	//
	// Parameters:
	//   - dt: the tick length in seconds
	//   - keys: the key state for this tick
	//   - b: the key assignments
	Control(dt float32, keys common.KeyState, b Bindings)

	// RotationSpeed returns the turn rate in radians per second.
	//
	// Returns:
	//   - float32: the turn rate
	RotationSpeed() float32

	// MoveSpeed returns the movement rate in units per second.
	//
	// Returns:
	//   - float32: the movement rate
	MoveSpeed() float32
}
