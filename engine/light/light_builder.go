package light

import (
	"github.com/Carmen-Shannon/oxy-scene/engine/drawable"
	"github.com/go-gl/mathgl/mgl32"
)

// lightConfig collects light fields and the options forwarded to the embedded drawable.
type lightConfig struct {
	light    *lightImpl
	drawable []drawable.DrawableBuilderOption
}

// LightBuilderOption is a function that configures a Light instance during construction.
type LightBuilderOption func(*lightConfig)

// WithName sets the light name.
//
// Parameters:
//   - name: the name
//
// Returns:
//   - LightBuilderOption: a function that applies the name option
func WithName(name string) LightBuilderOption {
	return func(c *lightConfig) {
		c.drawable = append(c.drawable, drawable.WithName(name))
	}
}

// WithColour sets the RGB colour of the light.
//
// Parameters:
//   - colour: the colour
//
// Returns:
//   - LightBuilderOption: a function that applies the colour option
func WithColour(colour mgl32.Vec3) LightBuilderOption {
	return func(c *lightConfig) {
		c.light.colour = colour
	}
}

// WithStrength sets the scalar intensity of the light.
//
// Parameters:
//   - strength: the strength
//
// Returns:
//   - LightBuilderOption: a function that applies the strength option
func WithStrength(strength float32) LightBuilderOption {
	return func(c *lightConfig) {
		c.light.strength = strength
	}
}

// WithConeAngle sets the full spot cone angle in radians.
//
// Parameters:
//   - angle: the cone angle
//
// Returns:
//   - LightBuilderOption: a function that applies the cone option
func WithConeAngle(angle float32) LightBuilderOption {
	return func(c *lightConfig) {
		c.light.coneAngle = angle
	}
}

// WithControllable marks the light as driven by the keyboard each tick.
//
// Parameters:
//   - controllable: true to receive input-driven transform updates
//
// Returns:
//   - LightBuilderOption: a function that applies the controllable option
func WithControllable(controllable bool) LightBuilderOption {
	return func(c *lightConfig) {
		c.drawable = append(c.drawable, drawable.WithControllable(controllable))
	}
}
