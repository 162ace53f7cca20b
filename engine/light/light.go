package light

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/drawable"
	"github.com/Carmen-Shannon/oxy-scene/engine/model"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/state"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/texture"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	drawable.Drawable

	mu        *sync.Mutex
	colour    mgl32.Vec3
	strength  float32
	coneAngle float32
}

// Light is a drawable that emits light. Its glyph is drawn with the light's own state bundle
// after every plain drawable, tinted with the light colour.
//
// Colour and strength are not validated. A negative strength subtracts light and a colour
// component above 1 brightens it further; both reach the shaders unchanged.
type Light interface {
	drawable.Drawable

	// Colour returns the RGB colour.
	//
	// Returns:
	//   - mgl32.Vec3: the colour
	Colour() mgl32.Vec3

	// SetColour sets the RGB colour.
	//
	// Parameters:
	//   - c: the colour
	SetColour(c mgl32.Vec3)

	// Strength returns the scalar intensity.
	//
	// Returns:
	//   - float32: the strength
	Strength() float32

	// SetStrength sets the scalar intensity.
	//
	// Parameters:
	//   - s: the strength
	SetStrength(s float32)

	// Emission returns the contribution sent to shading, colour * strength, computed on each call.
	//
	// Returns:
	//   - mgl32.Vec3: the emitted colour
	Emission() mgl32.Vec3

	// Position returns the world position of the light's transform.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// ConeAngle returns the full spot cone angle in radians.
	//
	// Returns:
	//   - float32: the cone angle
	ConeAngle() float32

	// Facing returns the normalised direction the light points along, the forward axis of its
	// world matrix.
	//
	// Returns:
	//   - mgl32.Vec3: the facing direction
	Facing() mgl32.Vec3

	// CosHalfAngle returns the cosine of half the cone angle.
	//
	// Returns:
	//   - float32: cos(cone / 2)
	CosHalfAngle() float32

	// ViewMatrix returns the view matrix of a camera placed at the light, the inverse of its
	// world matrix.
	//
	// Returns:
	//   - [16]float32: the view matrix
	ViewMatrix() [16]float32

	// ProjectionMatrix returns a square perspective projection covering the cone.
	//
	// Returns:
	//   - [16]float32: the projection matrix
	ProjectionMatrix() [16]float32
}

var _ Light = &lightImpl{}

// NewLight creates a light around a transform node. The glyph scale is set to strength^0.7.
// Defaults are colour white, strength 1 and a cone of DefaultConeAngle.
//
// Parameters:
//   - m: the transform node, owned by the light from now on
//   - glyph: the glyph texture, bound at slot 0
//   - bundle: the light state bundle, normally additive with read-only depth
//   - options: functional options to configure the light
//
// Returns:
//   - Light: the light
func NewLight(m model.Model, glyph texture.Texture, bundle *state.Bundle, options ...LightBuilderOption) Light {
	l := &lightImpl{
		mu:        &sync.Mutex{},
		colour:    mgl32.Vec3{1, 1, 1},
		strength:  1,
		coneAngle: DefaultConeAngle,
	}
	cfg := &lightConfig{light: l}
	for _, opt := range options {
		opt(cfg)
	}
	l.Drawable = drawable.NewDrawable(m, glyph, bundle, cfg.drawable...)
	m.SetScale(GlyphScale(l.strength))
	return l
}

// GlyphScale maps a strength to the on-screen size of a light glyph.
//
// Parameters:
//   - strength: the light strength
//
// Returns:
//   - float32: strength^0.7
func GlyphScale(strength float32) float32 {
	return math32.Pow(strength, 0.7)
}

func (l *lightImpl) Colour() mgl32.Vec3 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.colour
}

func (l *lightImpl) SetColour(c mgl32.Vec3) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.colour = c
}

func (l *lightImpl) Strength() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.strength
}

func (l *lightImpl) SetStrength(s float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.strength = s
}

func (l *lightImpl) Emission() mgl32.Vec3 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.colour.Mul(l.strength)
}

// Tint is the light colour without strength applied.
func (l *lightImpl) Tint() mgl32.Vec3 {
	return l.Colour()
}

func (l *lightImpl) Position() mgl32.Vec3 {
	return l.Model().Position()
}

func (l *lightImpl) ConeAngle() float32 {
	return l.coneAngle
}

func (l *lightImpl) Facing() mgl32.Vec3 {
	return common.Forward(l.pose())
}

// pose is the light's world transform at unit scale. The glyph scale follows strength and is
// zero whenever a pulse crosses zero, which would make the world matrix singular.
func (l *lightImpl) pose() [16]float32 {
	var m [16]float32
	p, r := l.Model().Position(), l.Model().Rotation()
	common.BuildModelMatrix(m[:], p.X(), p.Y(), p.Z(), r.X(), r.Y(), r.Z(), 1, 1, 1)
	return m
}

func (l *lightImpl) CosHalfAngle() float32 {
	return math32.Cos(l.coneAngle / 2)
}

func (l *lightImpl) ViewMatrix() [16]float32 {
	return common.InverseAffine(l.pose())
}

func (l *lightImpl) ProjectionMatrix() [16]float32 {
	var proj [16]float32
	common.Perspective(proj[:], l.coneAngle, 1, ShadowNear, ShadowFar)
	return proj
}
