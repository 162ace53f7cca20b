package animator

import "github.com/Carmen-Shannon/oxy-scene/common"

// OrbitBuilderOption is a functional option for configuring an Orbit during construction.
type OrbitBuilderOption func(*orbit)

// WithRadius sets the orbit radius.
//
// Parameters:
//   - radius: the distance from the target in the horizontal plane
//
// Returns:
//   - OrbitBuilderOption: functional option to set the radius
func WithRadius(radius float32) OrbitBuilderOption {
	return func(o *orbit) {
		o.radius = radius
	}
}

// WithHeight sets the height of the orbit above the target.
//
// Parameters:
//   - height: the vertical offset
//
// Returns:
//   - OrbitBuilderOption: functional option to set the height
func WithHeight(height float32) OrbitBuilderOption {
	return func(o *orbit) {
		o.height = height
	}
}

// WithSpeed sets the angular speed in radians per second.
//
// Parameters:
//   - speed: the angular speed
//
// Returns:
//   - OrbitBuilderOption: functional option to set the speed
func WithSpeed(speed float32) OrbitBuilderOption {
	return func(o *orbit) {
		o.speed = speed
	}
}

// WithStartAngle sets the initial angle in radians.
//
// Parameters:
//   - angle: the start angle
//
// Returns:
//   - OrbitBuilderOption: functional option to set the start angle
func WithStartAngle(angle float32) OrbitBuilderOption {
	return func(o *orbit) {
		o.angle = angle
	}
}

// WithEnabled sets whether the orbit starts running.
//
// Parameters:
//   - enabled: false to start paused
//
// Returns:
//   - OrbitBuilderOption: functional option to set the initial state
func WithEnabled(enabled bool) OrbitBuilderOption {
	return func(o *orbit) {
		o.enabled = enabled
	}
}

// WithToggleKey sets the key whose hit pauses or resumes the orbit.
//
// Parameters:
//   - key: the toggle key
//
// Returns:
//   - OrbitBuilderOption: functional option to set the toggle key
func WithToggleKey(key common.Key) OrbitBuilderOption {
	return func(o *orbit) {
		o.toggleKey = key
	}
}
