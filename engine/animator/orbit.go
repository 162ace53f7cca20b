package animator

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/light"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Orbit defaults.
const (
	DefaultOrbitRadius float32 = 20
	DefaultOrbitHeight float32 = 10
	DefaultOrbitSpeed  float32 = 0.7 // radians per second
)

// Positioned is anything with a world position an orbit can circle.
type Positioned interface {
	Position() mgl32.Vec3
}

// orbit is the implementation of the Orbit interface.
type orbit struct {
	mu *sync.Mutex

	target    Positioned
	radius    float32
	height    float32
	speed     float32
	angle     float32
	enabled   bool
	toggleKey common.Key
}

// Orbit circles a light around a target and keeps it facing the target. The angle is carried
// between ticks, so pausing the orbit freezes the light wherever it is.
type Orbit interface {
	Rule

	// Angle returns the current orbit angle in radians.
	//
	// Returns:
	//   - float32: the angle
	Angle() float32

	// Enabled reports whether the angle advances each tick.
	//
	// Returns:
	//   - bool: true while orbiting
	Enabled() bool

	// Toggle pauses or resumes the orbit.
	Toggle()

	// PositionAt returns the point on the orbit circle for an angle around the target's
	// current position.
	//
	// Parameters:
	//   - angle: the orbit angle in radians
	//
	// Returns:
	//   - mgl32.Vec3: the point
	PositionAt(angle float32) mgl32.Vec3
}

var _ Orbit = &orbit{}

// NewOrbit creates an enabled orbit around target at angle 0, toggled by key 1.
//
// Parameters:
//   - target: the object to circle
//   - options: functional options to configure the orbit
//
// Returns:
//   - Orbit: the orbit rule
func NewOrbit(target Positioned, options ...OrbitBuilderOption) Orbit {
	o := &orbit{
		mu:        &sync.Mutex{},
		target:    target,
		radius:    DefaultOrbitRadius,
		height:    DefaultOrbitHeight,
		speed:     DefaultOrbitSpeed,
		enabled:   true,
		toggleKey: common.Key1,
	}
	for _, opt := range options {
		opt(o)
	}
	return o
}

func (o *orbit) Name() string {
	return "orbit"
}

// Apply places the light at the current angle and faces it at the target, then advances the
// angle if enabled and finally handles the toggle key.
func (o *orbit) Apply(l light.Light, tick Tick) {
	o.mu.Lock()
	defer o.mu.Unlock()

	target := o.target.Position()
	m := l.Model()
	m.SetPosition(o.positionAt(target, o.angle))
	m.FaceTarget(target)

	if o.enabled {
		o.angle -= o.speed * tick.Delta
	}
	if keyHit(tick.Keys, o.toggleKey) {
		o.enabled = !o.enabled
		common.Logger().Info("orbit toggled", "light", l.Name(), "enabled", o.enabled)
	}
}

func (o *orbit) Angle() float32 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.angle
}

func (o *orbit) Enabled() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.enabled
}

func (o *orbit) Toggle() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.enabled = !o.enabled
}

func (o *orbit) PositionAt(angle float32) mgl32.Vec3 {
	return o.positionAt(o.target.Position(), angle)
}

func (o *orbit) positionAt(target mgl32.Vec3, angle float32) mgl32.Vec3 {
	return target.Add(mgl32.Vec3{
		o.radius * math32.Cos(angle),
		o.height,
		o.radius * math32.Sin(angle),
	})
}
