package scene

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/config"
	"github.com/Carmen-Shannon/oxy-scene/engine/light"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/renderertest"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const program = `
@vertex fn vs_main() -> @builtin(position) vec4<f32> { return vec4<f32>(0.0); }
@fragment fn fs_main() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }
`

const sceneYAML = `
assetRoot: %q
shadows: {enabled: %t, mapSize: 128, bundle: shadow}
camera: {position: [0, 5, 50], rotation: [0, 0, 0]}
scene:
  designatedLight: %d
  bundles:
    - {name: lit, vertex: scene.wgsl, fragment: scene.wgsl}
    - {name: sky, vertex: scene.wgsl, fragment: scene.wgsl, raster: cull-front, depth: read-only}
    - {name: glow, vertex: scene.wgsl, fragment: scene.wgsl, blend: additive, raster: cull-none, depth: read-only}
    - {name: shadow, vertex: %s, fragment: scene.wgsl}
  entities:
    - {name: sky, mesh: "builtin:cube", textures: ["builtin:white"], bundle: sky, scale: 100, trackCamera: true, tint: [0.1, 0.2, 0.3]}
    - {name: hero, mesh: "builtin:sphere", textures: ["builtin:checker", "builtin:white"], bundle: lit, position: [15, 0, 0], controllable: true}
    - {name: crate, mesh: %q, textures: [%q], bundle: lit, position: [40, 0, 30]}
  lights:
    - name: spot
      mesh: "builtin:quad"
      texture: "builtin:glow"
      bundle: glow
      colour: [0.8, 0.8, 1]
      strength: 10
      position: [30, 20, 0]
      faceTarget: hero
      rules: {orbit: {target: hero}, hueCycle: {}}
    - name: lamp
      mesh: "builtin:quad"
      texture: "builtin:glow"
      bundle: glow
      colour: [1, 0.8, 0.2]
      strength: 40
      position: [-20, 30, 20]
      rules: {pulse: {base: 40}}
`

type sceneOptions struct {
	shadows      bool
	designated   int
	shadowShader string
	crateMesh    string
	crateTexture string
}

func assets(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scene.wgsl"), []byte(program), 0o644))
	return dir
}

func describe(t *testing.T, dir string, o sceneOptions) *config.Config {
	t.Helper()
	o.shadowShader = common.Coalesce(o.shadowShader, "scene.wgsl")
	o.crateMesh = common.Coalesce(o.crateMesh, "builtin:cube")
	o.crateTexture = common.Coalesce(o.crateTexture, "builtin:checker")
	src := fmt.Sprintf(sceneYAML, dir, o.shadows, o.designated, o.shadowShader, o.crateMesh, o.crateTexture)
	cfg, err := config.Parse([]byte(src), config.FormatYAML)
	require.NoError(t, err)
	return cfg
}

func newScene(t *testing.T, o sceneOptions) (Scene, *renderertest.Recorder) {
	t.Helper()
	rec := renderertest.New(800, 600)
	s := NewScene(rec, WithTextureWorkers(2))
	require.NoError(t, s.Init(describe(t, assets(t), o)))
	rec.Reset()
	return s, rec
}

type keyState struct {
	held map[common.Key]bool
	hit  map[common.Key]bool
}

func (k keyState) KeyHeld(key common.Key) bool { return k.held[key] }
func (k keyState) KeyHit(key common.Key) bool  { return k.hit[key] }

func hit(keys ...common.Key) keyState {
	k := keyState{hit: map[common.Key]bool{}}
	for _, key := range keys {
		k.hit[key] = true
	}
	return k
}

func held(keys ...common.Key) keyState {
	k := keyState{held: map[common.Key]bool{}}
	for _, key := range keys {
		k.held[key] = true
	}
	return k
}

func object(tint mgl32.Vec3) []byte {
	o := ObjectConstants{Tint: tint}
	return o.Marshal()
}

func TestInitBuildsScene(t *testing.T) {
	rec := renderertest.New(800, 600)
	s := NewScene(rec)
	require.NoError(t, s.Init(describe(t, assets(t), sceneOptions{})))

	assert.True(t, s.Initialized())
	assert.Equal(t, 3, rec.Count(renderertest.OpUploadMesh))
	assert.Equal(t, 3, rec.Count(renderertest.OpUploadTexture))

	drawables := s.Drawables()
	require.Len(t, drawables, 3)
	assert.Equal(t, "sky", drawables[0].Name())
	assert.Equal(t, "hero", drawables[1].Name())
	assert.Equal(t, "crate", drawables[2].Name())
	assert.Len(t, drawables[1].Textures(), 2)
	assert.True(t, drawables[1].IsControllable())
	assert.True(t, drawables[0].TracksCamera())
	assert.Same(t, drawables[1].StateBundle(), drawables[2].StateBundle())

	lights := s.Lights()
	require.Len(t, lights, 2)
	assert.Same(t, lights[0], s.Designated())
	assert.Same(t, lights[1], s.Find("lamp"))
	assert.Same(t, drawables[2], s.Find("crate"))
	assert.Nil(t, s.Find("ghost"))
	assert.InDelta(t, math32.Pow(40, 0.7), lights[1].Model().Scale(), 1e-4)

	want := mgl32.Vec3{15, 0, 0}.Sub(mgl32.Vec3{30, 20, 0}).Normalize()
	facing := lights[0].Facing()
	assert.InDelta(t, want.X(), facing.X(), 1e-5)
	assert.InDelta(t, want.Y(), facing.Y(), 1e-5)
	assert.InDelta(t, want.Z(), facing.Z(), 1e-5)

	assert.Equal(t, mgl32.Vec3{0, 5, 50}, s.Camera().Position())
	assert.InDelta(t, 800.0/600.0, s.Camera().Aspect(), 1e-6)
	assert.True(t, s.VSync())

	err := s.Init(describe(t, assets(t), sceneOptions{}))
	var initErr *InitError
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, InitErrorConfig, initErr.Kind)
}

func TestInitFailsOnMissingTexture(t *testing.T) {
	rec := renderertest.New(800, 600)
	s := NewScene(rec)
	dir := assets(t)

	err := s.Init(describe(t, dir, sceneOptions{crateTexture: "missing.png"}))
	var initErr *InitError
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, InitErrorTextureLoad, initErr.Kind)
	assert.ErrorContains(t, err, "Error loading texture "+filepath.Join(dir, "missing.png"))

	assert.False(t, s.Initialized())
	assert.Empty(t, s.Drawables())
	assert.Empty(t, s.Lights())
	assert.Nil(t, s.Camera())
	assert.Equal(t, rec.Count(renderertest.OpUploadMesh), rec.Count(renderertest.OpReleaseMesh))
	assert.Equal(t, rec.Count(renderertest.OpUploadTexture), rec.Count(renderertest.OpReleaseTexture))

	rec.Reset()
	s.Update(0.1, hit())
	require.NoError(t, s.Render())
	assert.Empty(t, rec.Calls)

	require.NoError(t, s.Init(describe(t, dir, sceneOptions{})))
	assert.True(t, s.Initialized())
}

func TestInitFailureKinds(t *testing.T) {
	cases := []struct {
		name string
		opts sceneOptions
		kind InitErrorKind
		want string
	}{
		{"missing mesh", sceneOptions{crateMesh: "nope.gltf"}, InitErrorMeshLoad, "entity crate: failed to load mesh nope.gltf"},
		{"unknown builtin mesh", sceneOptions{crateMesh: "builtin:teapot"}, InitErrorMeshLoad, "failed to load mesh builtin:teapot"},
		{"missing program", sceneOptions{shadowShader: "absent.wgsl"}, InitErrorShaderLoad, "bundle shadow"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := renderertest.New(800, 600)
			s := NewScene(rec)
			err := s.Init(describe(t, assets(t), tc.opts))

			var initErr *InitError
			require.True(t, errors.As(err, &initErr))
			assert.Equal(t, tc.kind, initErr.Kind)
			assert.ErrorContains(t, err, tc.want)
			assert.NotNil(t, errors.Unwrap(err))
			assert.False(t, s.Initialized())
			assert.Equal(t, rec.Count(renderertest.OpUploadMesh), rec.Count(renderertest.OpReleaseMesh))
		})
	}
}

func TestInitRejectsInvalidDescription(t *testing.T) {
	s := NewScene(renderertest.New(800, 600))
	cfg := describe(t, assets(t), sceneOptions{})
	cfg.Scene.Entities[0].Bundle = "nope"

	err := s.Init(cfg)
	var initErr *InitError
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, InitErrorConfig, initErr.Kind)
	assert.Equal(t, "Config", initErr.Kind.String())
	assert.ErrorContains(t, err, `unknown bundle "nope"`)

	assert.ErrorContains(t, NewScene(renderertest.New(1, 1)).Init(nil), "no scene description")
}

func TestRenderOrder(t *testing.T) {
	s, rec := newScene(t, sceneOptions{})
	frame := s.FrameConstants()
	require.NoError(t, s.Render())

	draw := []renderertest.Op{renderertest.OpWriteObject, renderertest.OpBindState, renderertest.OpBindTexture}
	var want []renderertest.Op
	want = append(want, renderertest.OpBeginFrame, renderertest.OpSetViewport, renderertest.OpWriteFrame)
	want = append(want, append(draw, renderertest.OpDrawMesh)...)                              // sky
	want = append(want, append(draw, renderertest.OpBindTexture, renderertest.OpDrawMesh)...) // hero
	want = append(want, append(draw, renderertest.OpDrawMesh)...)                              // crate
	want = append(want, append(draw, renderertest.OpDrawMesh)...)                              // spot
	want = append(want, append(draw, renderertest.OpDrawMesh)...)                              // lamp
	want = append(want, renderertest.OpEndFrame, renderertest.OpPresent)
	assert.Equal(t, want, rec.Ops())

	assert.Equal(t, [4]float32{0.2, 0.2, 0.3, 1}, rec.Calls[0].Clear)
	assert.Equal(t, [4]float32{0, 0, 800, 600}, rec.Calls[1].Viewport)
	last := rec.Calls[len(rec.Calls)-1]
	assert.True(t, last.VSync)

	require.Len(t, rec.Draws, 5)
	reg := s.Registry()
	lights := s.Lights()
	hero := s.Find("hero")
	assert.Same(t, reg.Bundle("sky"), rec.Draws[0].Bundle)
	assert.Same(t, reg.Bundle("lit"), rec.Draws[1].Bundle)
	assert.Same(t, reg.Bundle("lit"), rec.Draws[2].Bundle)
	assert.Same(t, reg.Bundle("glow"), rec.Draws[3].Bundle)
	assert.Same(t, reg.Bundle("glow"), rec.Draws[4].Bundle)

	assert.Equal(t, hero.Textures()[0].Handle(), rec.Draws[1].Textures[0])
	assert.Equal(t, hero.Textures()[1].Handle(), rec.Draws[1].Textures[1])
	assert.Equal(t, hero.Model().WorldMatrix(), rec.Draws[1].World)

	assert.Equal(t, object(mgl32.Vec3{0.1, 0.2, 0.3}), rec.Draws[0].Object)
	assert.Equal(t, object(mgl32.Vec3{1, 1, 1}), rec.Draws[1].Object)
	assert.Equal(t, object(lights[0].Colour()), rec.Draws[3].Object)
	assert.Equal(t, object(lights[1].Colour()), rec.Draws[4].Object)
	for _, d := range rec.Draws {
		assert.False(t, d.Shadow)
		assert.Equal(t, frame.Marshal(), d.Frame)
	}
}

func TestRenderIsStableAcrossFrames(t *testing.T) {
	s, rec := newScene(t, sceneOptions{})
	require.NoError(t, s.Render())
	first := append([]renderertest.Draw(nil), rec.Draws...)
	rec.Reset()
	require.NoError(t, s.Render())
	assert.Equal(t, first, rec.Draws)
}

func TestShadowPass(t *testing.T) {
	s, rec := newScene(t, sceneOptions{shadows: true})
	require.NoError(t, s.Render())

	ops := rec.Ops()
	assert.Equal(t, []renderertest.Op{
		renderertest.OpBeginShadow,
		renderertest.OpSetViewport,
		renderertest.OpWriteFrame,
		renderertest.OpBindState,
		renderertest.OpDrawMesh,
		renderertest.OpDrawMesh,
		renderertest.OpEndShadow,
		renderertest.OpBeginFrame,
	}, ops[:8])
	assert.Equal(t, 128, rec.Calls[0].Size)
	assert.Equal(t, [4]float32{0, 0, 128, 128}, rec.Calls[1].Viewport)

	var shadow []renderertest.Draw
	for _, d := range rec.Draws {
		if d.Shadow {
			shadow = append(shadow, d)
		}
	}
	require.Len(t, shadow, 2)
	assert.Same(t, s.Registry().Bundle("shadow"), shadow[0].Bundle)
	assert.Equal(t, s.Find("hero").Model().WorldMatrix(), shadow[0].World)
	assert.Equal(t, s.Find("crate").Model().WorldMatrix(), shadow[1].World)
	assert.Len(t, rec.Draws, 7)
}

func TestShadowPassFailureSkipsFrame(t *testing.T) {
	s, rec := newScene(t, sceneOptions{shadows: true})
	rec.FailShadowPass = errors.New("lost")
	assert.ErrorContains(t, s.Render(), "lost")
	assert.Zero(t, rec.Count(renderertest.OpBeginFrame))
	assert.Zero(t, rec.Count(renderertest.OpPresent))
	assert.Equal(t, 1, rec.Count(renderertest.OpAbortFrame))
}

func TestFrameFailureAfterShadowPassAbandonsFrame(t *testing.T) {
	s, rec := newScene(t, sceneOptions{shadows: true})
	rec.FailFrame = errors.New("surface outdated")
	assert.ErrorContains(t, s.Render(), "surface outdated")

	ops := rec.Ops()
	require.GreaterOrEqual(t, len(ops), 3)
	assert.Equal(t, []renderertest.Op{
		renderertest.OpEndShadow,
		renderertest.OpBeginFrame,
		renderertest.OpAbortFrame,
	}, ops[len(ops)-3:])
	assert.Zero(t, rec.Count(renderertest.OpEndFrame))
	assert.Zero(t, rec.Count(renderertest.OpPresent))

	rec.FailFrame = nil
	rec.Reset()
	require.NoError(t, s.Render())
	assert.Equal(t, 1, rec.Count(renderertest.OpBeginShadow))
	assert.Equal(t, 1, rec.Count(renderertest.OpEndFrame))
	assert.Equal(t, 1, rec.Count(renderertest.OpPresent))
	assert.Zero(t, rec.Count(renderertest.OpAbortFrame))
	assert.Len(t, rec.Draws, 7)
}

func TestFrameConstants(t *testing.T) {
	s, _ := newScene(t, sceneOptions{})
	spot, lamp := s.Lights()[0], s.Lights()[1]

	f := s.FrameConstants()
	assert.Equal(t, [3]float32(spot.Emission()), f.Light1Colour)
	assert.Equal(t, [3]float32(lamp.Emission()), f.Light2Colour)
	assert.Equal(t, [3]float32(spot.Position()), f.Light1Position)
	assert.Equal(t, [3]float32(lamp.Position()), f.Light2Position)
	assert.Equal(t, [3]float32(spot.Facing()), f.Light1Facing)
	assert.InDelta(t, math32.Cos(math32.Pi/4), f.Light1CosHalf, 1e-6)
	assert.Equal(t, spot.ViewMatrix(), f.Light1View)
	assert.Equal(t, spot.ProjectionMatrix(), f.Light1Projection)
	assert.Equal(t, [3]float32{0.2, 0.2, 0.3}, f.Ambient)
	assert.Equal(t, float32(256), f.SpecularPower)
	assert.Equal(t, [3]float32{0, 5, 50}, f.CameraPosition)
	assert.Equal(t, s.Camera().ViewProjectionMatrix(), f.ViewProjection)

	lamp.SetStrength(7)
	lamp.SetColour(mgl32.Vec3{0.5, 1, 0})
	f = s.FrameConstants()
	assert.Equal(t, [3]float32{3.5, 7, 0}, f.Light2Colour)

	lamp.SetStrength(-1)
	f = s.FrameConstants()
	assert.Equal(t, [3]float32{-0.5, -1, 0}, f.Light2Colour)
}

func TestDesignatedLightByIndex(t *testing.T) {
	s, _ := newScene(t, sceneOptions{designated: 1})
	spot, lamp := s.Lights()[0], s.Lights()[1]
	assert.Same(t, lamp, s.Designated())

	f := s.FrameConstants()
	assert.Equal(t, [3]float32(lamp.Position()), f.Light1Position)
	assert.Equal(t, [3]float32(lamp.Emission()), f.Light1Colour)
	assert.Equal(t, lamp.ViewMatrix(), f.Light1View)
	assert.Equal(t, [3]float32(spot.Position()), f.Light2Position)
	assert.Equal(t, [3]float32(spot.Emission()), f.Light2Colour)
}

func TestFrameConstantsWithoutLights(t *testing.T) {
	cfg := describe(t, assets(t), sceneOptions{})
	cfg.Scene.Lights = nil
	cfg.Scene.DesignatedLight = nil
	s := NewScene(renderertest.New(800, 600))
	require.NoError(t, s.Init(cfg))
	assert.Nil(t, s.Designated())

	f := s.FrameConstants()
	assert.Equal(t, common.IdentityMatrix(), f.Light1View)
	assert.Equal(t, common.IdentityMatrix(), f.Light1Projection)
	assert.Zero(t, f.Light1Colour)
	assert.Zero(t, f.Light2Colour)
}

func TestFrameConstantsLayout(t *testing.T) {
	f := FrameConstants{
		Light1Colour:   [3]float32{1, 2, 3},
		Light2Position: [3]float32{4, 5, 6},
		Elapsed:        7,
	}
	o := ObjectConstants{}
	assert.Equal(t, renderer.FrameBlockSize, f.Size())
	assert.Equal(t, renderer.ObjectBlockSize, o.Size())

	buf := f.Marshal()
	require.Len(t, buf, renderer.FrameBlockSize)
	at := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[off : off+4]))
	}
	assert.Equal(t, float32(7), at(348))
	assert.Equal(t, float32(1), at(368))
	assert.Equal(t, float32(3), at(376))
	assert.Equal(t, float32(4), at(400))
	assert.Equal(t, float32(6), at(408))
}

func TestUpdate(t *testing.T) {
	s, rec := newScene(t, sceneOptions{})
	spot, lamp := s.Lights()[0], s.Lights()[1]
	hero, crate, sky := s.Find("hero"), s.Find("crate"), s.Find("sky")
	startColour := spot.Colour()

	s.Update(0.5, hit())
	assert.InDelta(t, 0.5, s.Elapsed(), 1e-6)
	assert.InDelta(t, math32.Sin(0.5)*40, lamp.Strength(), 1e-4)
	assert.InDelta(t, math32.Pow(lamp.Strength(), 0.7), lamp.Model().Scale(), 1e-4)
	assert.Equal(t, mgl32.Vec3{35, 10, 0}, spot.Position())
	assert.NotEqual(t, startColour, spot.Colour())
	assert.Equal(t, s.Camera().Position(), sky.Model().Position())

	f := s.FrameConstants()
	assert.Equal(t, float32(0.5), f.Elapsed)
	assert.Equal(t, [3]float32(lamp.Emission()), f.Light2Colour)

	heroStart, crateStart := hero.Model().Position(), crate.Model().Position()
	cameraStart := s.Camera().Position()
	s.Update(0.1, held(common.KeyPeriod, common.KeyW))
	assert.NotEqual(t, heroStart, hero.Model().Position())
	assert.Equal(t, crateStart, crate.Model().Position())
	assert.NotEqual(t, cameraStart, s.Camera().Position())
	assert.Equal(t, s.Camera().Position(), sky.Model().Position())

	s.Update(0.1, hit(common.KeyP))
	assert.False(t, s.VSync())
	require.NoError(t, s.Render())
	assert.False(t, rec.Calls[len(rec.Calls)-1].VSync)

	s.SetVSync(true)
	assert.True(t, s.VSync())
}

func TestOrbitToggleFreezesDesignatedLight(t *testing.T) {
	s, _ := newScene(t, sceneOptions{})
	spot := s.Lights()[0]

	s.Update(0.1, hit(common.Key1))
	s.Update(0.1, hit())
	frozen := spot.Position()
	s.Update(0.1, hit())
	s.Update(0.1, hit())
	assert.Equal(t, frozen, spot.Position())

	s.Update(0.1, hit(common.Key1))
	s.Update(0.1, hit())
	s.Update(0.1, hit())
	assert.NotEqual(t, frozen, spot.Position())
}

func TestResize(t *testing.T) {
	s, rec := newScene(t, sceneOptions{})
	s.Resize(1000, 500)
	assert.InDelta(t, 2, s.Camera().Aspect(), 1e-6)
	w, h := rec.Size()
	assert.Equal(t, 1000, w)
	assert.Equal(t, 500, h)

	s.Resize(0, 10)
	assert.InDelta(t, 2, s.Camera().Aspect(), 1e-6)
}

func TestClose(t *testing.T) {
	s, rec := newScene(t, sceneOptions{})
	s.Close()

	assert.False(t, s.Initialized())
	assert.Equal(t, 3, rec.Count(renderertest.OpReleaseMesh))
	assert.Equal(t, 3, rec.Count(renderertest.OpReleaseTexture))
	assert.Empty(t, s.Drawables())
	assert.Nil(t, s.Designated())
	assert.NotNil(t, s.Registry().Bundle("lit"))

	rec.Reset()
	require.NoError(t, s.Render())
	assert.Empty(t, rec.Calls)
	s.Close()
}

func TestLightRenderableVariant(t *testing.T) {
	s, _ := newScene(t, sceneOptions{})
	var l light.Light = s.Lights()[1]
	assert.Equal(t, mgl32.Vec3{1, 0.8, 0.2}, l.Tint())
	assert.False(t, l.IsControllable())
}
