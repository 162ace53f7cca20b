package animator

import (
	"math"

	"github.com/Carmen-Shannon/oxy-scene/engine/light"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
)

// DefaultHueStep is the hue advance per tick in degrees.
const DefaultHueStep float32 = 1

// hueCycle is the implementation of the HueCycle rule.
type hueCycle struct {
	step float64
}

var _ Rule = &hueCycle{}

// NewHueCycle creates a rule that advances a light's hue by step degrees every tick, wrapping
// at 360. Saturation and lightness are kept.
//
// Parameters:
//   - step: the hue increment in degrees
//
// Returns:
//   - Rule: the hue rule
func NewHueCycle(step float32) Rule {
	return &hueCycle{step: float64(step)}
}

// AdvanceHue shifts the hue of an RGB colour.
//
// Parameters:
//   - c: the colour
//   - step: the hue increment in degrees, may be negative
//
// Returns:
//   - mgl32.Vec3: the shifted colour
func AdvanceHue(c mgl32.Vec3, step float32) mgl32.Vec3 {
	return advanceHue(c, float64(step))
}

func advanceHue(c mgl32.Vec3, step float64) mgl32.Vec3 {
	h, s, l := colorful.Color{R: float64(c.X()), G: float64(c.Y()), B: float64(c.Z())}.Hsl()
	h = math.Mod(h+step, 360)
	if h < 0 {
		h += 360
	}
	out := colorful.Hsl(h, s, l)
	return mgl32.Vec3{float32(out.R), float32(out.G), float32(out.B)}
}

func (r *hueCycle) Name() string {
	return "hueCycle"
}

func (r *hueCycle) Apply(l light.Light, _ Tick) {
	l.SetColour(advanceHue(l.Colour(), r.step))
}
