package animator

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/light"
	"github.com/Carmen-Shannon/oxy-scene/engine/model"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/state"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/texture"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hits map[common.Key]bool

func (h hits) KeyHeld(common.Key) bool  { return false }
func (h hits) KeyHit(k common.Key) bool { return h[k] }

func newLight(t *testing.T, options ...light.LightBuilderOption) light.Light {
	t.Helper()
	vs, err := shader.NewShaderFromSource("vs", shader.ShaderTypeVertex, "@vertex fn vs_main() -> @builtin(position) vec4<f32> { return vec4<f32>(0.0); }")
	require.NoError(t, err)
	fs, err := shader.NewShaderFromSource("fs", shader.ShaderTypeFragment, "@fragment fn fs_main() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }")
	require.NoError(t, err)
	b, err := state.NewRegistry().CreateBundle("glow", state.WithVertexProgram(vs), state.WithFragmentProgram(fs))
	require.NoError(t, err)
	return light.NewLight(model.NewModel(), texture.NewTexture("builtin:glow"), b, options...)
}

func assertVec(t *testing.T, want, got mgl32.Vec3, delta float64) {
	t.Helper()
	assert.InDelta(t, want.X(), got.X(), delta)
	assert.InDelta(t, want.Y(), got.Y(), delta)
	assert.InDelta(t, want.Z(), got.Z(), delta)
}

func TestPulseStrength(t *testing.T) {
	assert.InDelta(t, 0, PulseStrength(40, 0), 1e-5)
	assert.InDelta(t, 40, PulseStrength(40, math32.Pi/2), 1e-4)
	assert.InDelta(t, 0, PulseStrength(40, math32.Pi), 1e-4)

	for i := 0; i < 200; i++ {
		elapsed := float32(i) * 0.37
		s := PulseStrength(40, elapsed)
		assert.GreaterOrEqual(t, s, float32(0))
		assert.LessOrEqual(t, s, float32(40))
	}
}

func TestPulseApplySetsStrengthAndGlyphScale(t *testing.T) {
	l := newLight(t, light.WithStrength(40))
	p := NewPulse(40)

	p.Apply(l, Tick{Elapsed: math32.Pi / 2})
	assert.InDelta(t, 40, l.Strength(), 1e-4)
	assert.InDelta(t, math32.Pow(l.Strength(), 0.7), l.Model().Scale(), 1e-4)

	p.Apply(l, Tick{Elapsed: 1})
	assert.InDelta(t, math32.Sin(1)*40, l.Strength(), 1e-4)
	assert.InDelta(t, math32.Pow(l.Strength(), 0.7), l.Model().Scale(), 1e-4)
	assert.Equal(t, "pulse", p.Name())
}

func TestAdvanceHueWraps(t *testing.T) {
	c := colorful.Hsl(350, 1, 0.5)
	start := mgl32.Vec3{float32(c.R), float32(c.G), float32(c.B)}

	out := AdvanceHue(start, 30)
	h, s, l := colorful.Color{R: float64(out.X()), G: float64(out.Y()), B: float64(out.Z())}.Hsl()
	assert.InDelta(t, 20, h, 1e-3)
	assert.InDelta(t, 1, s, 1e-3)
	assert.InDelta(t, 0.5, l, 1e-3)

	back := AdvanceHue(out, -30)
	assertVec(t, start, back, 1e-4)
}

func TestHueCycleReturnsAfterFullTurn(t *testing.T) {
	start := mgl32.Vec3{1, 0.8, 0.2}
	l := newLight(t, light.WithColour(start))
	r := NewHueCycle(DefaultHueStep)

	for i := 0; i < 360; i++ {
		r.Apply(l, Tick{})
	}
	assertVec(t, start, l.Colour(), 1e-3)
	assert.NotEqual(t, start, AdvanceHue(start, DefaultHueStep))
}

func TestOrbit(t *testing.T) {
	t.Run("starts on the circle around the target", func(t *testing.T) {
		target := model.NewModel()
		l := newLight(t)
		o := NewOrbit(target)

		o.Apply(l, Tick{Delta: 0.5})
		assert.Equal(t, mgl32.Vec3{20, 10, 0}, l.Position())
		assert.InDelta(t, -0.35, o.Angle(), 1e-6)
		assertVec(t, mgl32.Vec3{-20, -10, 0}.Normalize(), l.Facing(), 1e-5)
	})

	t.Run("moves along the circle while enabled", func(t *testing.T) {
		target := model.NewModel(model.WithPosition(mgl32.Vec3{15, 0, 0}))
		l := newLight(t)
		o := NewOrbit(target)

		for i := 0; i < 10; i++ {
			o.Apply(l, Tick{Delta: 0.1})
			offset := l.Position().Sub(target.Position())
			assert.InDelta(t, 10, offset.Y(), 1e-5)
			assert.InDelta(t, 20, mgl32.Vec2{offset.X(), offset.Z()}.Len(), 1e-4)
		}
		assertVec(t, o.PositionAt(-0.63), l.Position(), 1e-4)
	})

	t.Run("follows a moving target", func(t *testing.T) {
		target := model.NewModel()
		l := newLight(t)
		o := NewOrbit(target, WithEnabled(false))

		target.SetPosition(mgl32.Vec3{5, 1, 5})
		o.Apply(l, Tick{Delta: 1})
		assert.Equal(t, mgl32.Vec3{25, 11, 5}, l.Position())
	})

	t.Run("freezes when toggled off", func(t *testing.T) {
		target := model.NewModel()
		l := newLight(t)
		o := NewOrbit(target)

		o.Apply(l, Tick{Delta: 0.2, Keys: hits{common.Key1: true}})
		assert.False(t, o.Enabled())
		angle := o.Angle()

		for i := 0; i < 5; i++ {
			o.Apply(l, Tick{Elapsed: float32(i), Delta: 0.2})
		}
		assert.Equal(t, angle, o.Angle())
		assertVec(t, o.PositionAt(angle), l.Position(), 1e-6)

		o.Apply(l, Tick{Delta: 0.2, Keys: hits{common.Key1: true}})
		assert.True(t, o.Enabled())
		o.Apply(l, Tick{Delta: 0.2})
		assert.InDelta(t, angle-0.14, o.Angle(), 1e-6)
	})

	t.Run("options", func(t *testing.T) {
		o := NewOrbit(model.NewModel(), WithRadius(5), WithHeight(2), WithSpeed(1), WithStartAngle(math32.Pi/2), WithToggleKey(common.Key2))
		assertVec(t, mgl32.Vec3{0, 2, 5}, o.PositionAt(o.Angle()), 1e-5)
		l := newLight(t)
		o.Apply(l, Tick{Delta: 1, Keys: hits{common.Key1: true}})
		assert.True(t, o.Enabled())
		o.Apply(l, Tick{Keys: hits{common.Key2: true}})
		assert.False(t, o.Enabled())
		o.Toggle()
		assert.True(t, o.Enabled())
		assert.Equal(t, "orbit", o.Name())
	})
}
