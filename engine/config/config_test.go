package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
scene:
  bundles:
    - name: lit
      vertex: lit.wgsl
      fragment: lit.wgsl
  entities:
    - name: box
      mesh: builtin:cube
      textures: [builtin:white]
      bundle: lit
  lights:
    - name: bulb
      mesh: builtin:quad
      texture: builtin:glow
      bundle: lit
      strength: 5
      rules:
        pulse: {}
        orbit:
          target: box
        hueCycle: {}
`

const minimalTOML = `
specularPower = 64.0

[present]
vsync = false

[scene]
designatedLight = 0

[[scene.bundles]]
name = "lit"
vertex = "lit.wgsl"
fragment = "lit.wgsl"
blend = "alpha"

[[scene.entities]]
name = "box"
mesh = "builtin:cube"
textures = ["builtin:white", "builtin:checker"]
bundle = "lit"
position = [1.0, 2.0, 3.0]

[[scene.lights]]
name = "bulb"
mesh = "builtin:quad"
texture = "builtin:glow"
bundle = "lit"
colour = [1.0, 0.5, 0.25]
strength = 3.0

[scene.lights.rules.orbit]
target = "box"
radius = 5.0
`

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, [4]float32{0.2, 0.2, 0.3, 1}, cfg.Background)
	assert.Equal(t, [3]float32{0.2, 0.2, 0.3}, cfg.Ambient)
	assert.Equal(t, float32(256), cfg.SpecularPower)
	assert.True(t, cfg.VSync())
	assert.True(t, cfg.Shadows.Enabled)
	assert.Equal(t, 256, cfg.Shadows.MapSize)
	assert.Len(t, cfg.Scene.Lights, 2)

	assert.Equal(t, 0, cfg.Designated())
	spot := cfg.Scene.Lights[0]
	assert.Equal(t, "character", spot.FaceTarget)
	require.NotNil(t, spot.Rules.Orbit)
	assert.Equal(t, float32(20), spot.Rules.Orbit.Radius)
	require.NotNil(t, spot.Rules.HueCycle)
	assert.Equal(t, float32(1), spot.Rules.HueCycle.Step)

	lamp := cfg.Scene.Lights[1]
	require.NotNil(t, lamp.Rules.Pulse)
	assert.Equal(t, float32(40), lamp.Rules.Pulse.Base)
}

func TestParseYAMLAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, DefaultTitle, cfg.Window.Title)
	assert.Equal(t, DefaultWidth, cfg.Window.Width)
	assert.Equal(t, DefaultHeight, cfg.Window.Height)
	assert.Equal(t, DefaultAssetRoot, cfg.AssetRoot)
	assert.Equal(t, float32(DefaultFovDegrees), cfg.Camera.Fov)
	assert.True(t, cfg.VSync())
	assert.Equal(t, float32(1), cfg.Scene.Entities[0].Scale)

	bulb := cfg.Scene.Lights[0]
	assert.Equal(t, [3]float32{1, 1, 1}, bulb.Colour)
	assert.Equal(t, float32(DefaultConeDegrees), bulb.Cone)
	assert.Equal(t, float32(5), bulb.Rules.Pulse.Base)
	assert.Equal(t, float32(DefaultHueStep), bulb.Rules.HueCycle.Step)
	assert.Equal(t, float32(DefaultOrbitRadius), bulb.Rules.Orbit.Radius)
	assert.Equal(t, float32(DefaultOrbitHeight), bulb.Rules.Orbit.Height)
	assert.InDelta(t, DefaultOrbitSpeed, bulb.Rules.Orbit.Speed, 1e-6)
}

func TestParseTOML(t *testing.T) {
	cfg, err := Parse([]byte(minimalTOML), FormatTOML)
	require.NoError(t, err)

	assert.False(t, cfg.VSync())
	assert.Equal(t, float32(64), cfg.SpecularPower)
	assert.Equal(t, "alpha", cfg.Scene.Bundles[0].Blend)
	assert.Equal(t, []string{"builtin:white", "builtin:checker"}, cfg.Scene.Entities[0].Textures)
	assert.Equal(t, [3]float32{1, 2, 3}, cfg.Scene.Entities[0].Position)

	require.NotNil(t, cfg.Scene.DesignatedLight)
	assert.Equal(t, 0, *cfg.Scene.DesignatedLight)
	bulb := cfg.Scene.Lights[0]
	assert.Equal(t, [3]float32{1, 0.5, 0.25}, bulb.Colour)
	require.NotNil(t, bulb.Rules.Orbit)
	assert.Equal(t, float32(5), bulb.Rules.Orbit.Radius)
	assert.Nil(t, bulb.Rules.Pulse)
}

func TestLoadPicksDecoderByExtension(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "scene.yml")
	tomlPath := filepath.Join(dir, "scene.toml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(minimalYAML), 0o644))
	require.NoError(t, os.WriteFile(tomlPath, []byte(minimalTOML), 0o644))

	cfg, err := Load(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "box", cfg.Scene.Entities[0].Name)

	cfg, err = Load(tomlPath)
	require.NoError(t, err)
	assert.False(t, cfg.VSync())

	_, err = Load(filepath.Join(dir, "scene.json"))
	assert.ErrorContains(t, err, "unsupported config extension")

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config")
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("window:\n  colour: red\n"), FormatYAML)
	assert.Error(t, err)

	_, err = Parse([]byte("[window]\ncolour = \"red\"\n"), FormatTOML)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func(t *testing.T) *Config {
		cfg, err := Parse([]byte(minimalYAML), FormatYAML)
		require.NoError(t, err)
		return cfg
	}

	cases := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"unknown bundle", func(c *Config) { c.Scene.Entities[0].Bundle = "nope" }, `entity box: unknown bundle "nope"`},
		{"unknown blend", func(c *Config) { c.Scene.Bundles[0].Blend = "screen" }, `bundle lit: unknown blend mode "screen"`},
		{"no textures", func(c *Config) { c.Scene.Entities[0].Textures = nil }, "at least one texture is required"},
		{"too many lights", func(c *Config) {
			l := c.Scene.Lights[0]
			for _, name := range []string{"b", "c"} {
				l.Name = name
				l.Rules = RulesConfig{}
				c.Scene.Lights = append(c.Scene.Lights, l)
			}
		}, "3 lights declared, at most 2 are supported"},
		{"designated past the end", func(c *Config) {
			one := 1
			c.Scene.DesignatedLight = &one
		}, "designated light 1 out of range, 1 lights declared"},
		{"negative designated", func(c *Config) {
			neg := -1
			c.Scene.DesignatedLight = &neg
		}, "designated light -1 out of range"},
		{"unknown orbit target", func(c *Config) { c.Scene.Lights[0].Rules.Orbit.Target = "ghost" }, `unknown orbit target "ghost"`},
		{"shadows without a light", func(c *Config) {
			c.Scene.Lights = nil
			c.Shadows.Enabled = true
			c.Shadows.Bundle = "lit"
		}, "shadows enabled without a light"},
		{"duplicate name", func(c *Config) { c.Scene.Lights[0].Name = "box" }, "light box: name already used"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base(t)
			tc.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tc.want)
		})
	}
}

func TestDesignatedLightIndex(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML), FormatYAML)
	require.NoError(t, err)
	assert.Nil(t, cfg.Scene.DesignatedLight)
	assert.Equal(t, 0, cfg.Designated())

	cfg.Scene.Lights = append(cfg.Scene.Lights, cfg.Scene.Lights[0])
	cfg.Scene.Lights[1].Name = "second"
	second := 1
	cfg.Scene.DesignatedLight = &second
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1, cfg.Designated())

	cfg.Scene.Lights = nil
	cfg.Scene.DesignatedLight = nil
	assert.Equal(t, -1, cfg.Designated())
}

func TestLoadExampleScene(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "examples", "night.toml"))
	require.NoError(t, err)

	assert.False(t, cfg.VSync())
	assert.False(t, cfg.Shadows.Enabled)
	require.Len(t, cfg.Scene.Lights, 2)
	assert.Equal(t, 0, cfg.Designated())
	require.NotNil(t, cfg.Scene.Lights[0].Rules.Orbit)
	assert.Equal(t, float32(-0.4), cfg.Scene.Lights[0].Rules.Orbit.Speed)
	require.NotNil(t, cfg.Scene.Lights[0].Rules.Pulse)
	require.NotNil(t, cfg.Scene.Lights[1].Rules.HueCycle)
	assert.Equal(t, float32(0.5), cfg.Scene.Lights[1].Rules.HueCycle.Step)
	assert.Equal(t, float32(DefaultConeDegrees), cfg.Scene.Lights[1].Cone)
}
