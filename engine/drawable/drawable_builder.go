package drawable

import "github.com/go-gl/mathgl/mgl32"

// DrawableBuilderOption is a functional option for configuring a Drawable during construction.
type DrawableBuilderOption func(*drawableImpl)

// WithName sets the entity name used in logs and lookups.
//
// Parameters:
//   - name: the name
//
// Returns:
//   - DrawableBuilderOption: functional option to set the name
func WithName(name string) DrawableBuilderOption {
	return func(d *drawableImpl) {
		d.name = name
	}
}

// WithControllable marks the entity as driven by the keyboard each tick.
//
// Parameters:
//   - controllable: true to receive input-driven transform updates
//
// Returns:
//   - DrawableBuilderOption: functional option to set the controllable flag
func WithControllable(controllable bool) DrawableBuilderOption {
	return func(d *drawableImpl) {
		d.controllable = controllable
	}
}

// WithTrackCamera makes the entity copy the camera position every tick.
//
// Parameters:
//   - track: true to follow the camera
//
// Returns:
//   - DrawableBuilderOption: functional option to set camera tracking
func WithTrackCamera(track bool) DrawableBuilderOption {
	return func(d *drawableImpl) {
		d.trackCamera = track
	}
}

// WithTint sets the object-constant colour.
//
// Parameters:
//   - tint: the colour
//
// Returns:
//   - DrawableBuilderOption: functional option to set the tint
func WithTint(tint mgl32.Vec3) DrawableBuilderOption {
	return func(d *drawableImpl) {
		d.tint = tint
	}
}
