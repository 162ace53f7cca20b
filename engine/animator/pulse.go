package animator

import (
	"github.com/Carmen-Shannon/oxy-scene/engine/light"
	"github.com/chewxy/math32"
)

// pulse is the implementation of the Pulse rule.
type pulse struct {
	base float32
}

var _ Rule = &pulse{}

// NewPulse creates a rule that sets a light's strength to |sin(elapsed)| * base and rescales its
// glyph to strength^0.7.
//
// Parameters:
//   - base: the peak strength
//
// Returns:
//   - Rule: the pulse rule
func NewPulse(base float32) Rule {
	return &pulse{base: base}
}

// PulseStrength evaluates the pulse curve.
//
// Parameters:
//   - base: the peak strength
//   - elapsed: the elapsed time in seconds
//
// Returns:
//   - float32: |sin(elapsed)| * base
func PulseStrength(base, elapsed float32) float32 {
	return math32.Abs(math32.Sin(elapsed)) * base
}

func (p *pulse) Name() string {
	return "pulse"
}

func (p *pulse) Apply(l light.Light, tick Tick) {
	s := PulseStrength(p.base, tick.Elapsed)
	l.SetStrength(s)
	l.Model().SetScale(light.GlyphScale(s))
}
