package config

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/state"
)

var (
	defaultBackground = [4]float32{0.2, 0.2, 0.3, 1}
	defaultAmbient    = [3]float32{0.2, 0.2, 0.3}
)

// Normalize fills unset fields with their defaults. A zero scale becomes 1, a zero light colour
// becomes white, an unset pulse base becomes the light's strength and an unset hue step
// becomes DefaultHueStep.
func (c *Config) Normalize() {
	c.Window.Title = common.Coalesce(c.Window.Title, DefaultTitle)
	c.Window.Width = common.Coalesce(c.Window.Width, DefaultWidth)
	c.Window.Height = common.Coalesce(c.Window.Height, DefaultHeight)
	c.Shadows.MapSize = common.Coalesce(c.Shadows.MapSize, DefaultShadowMapSize)
	c.Background = common.Coalesce(c.Background, defaultBackground)
	c.Ambient = common.Coalesce(c.Ambient, defaultAmbient)
	c.SpecularPower = common.Coalesce(c.SpecularPower, DefaultSpecularPower)
	c.AssetRoot = common.Coalesce(c.AssetRoot, DefaultAssetRoot)
	c.Camera.Fov = common.Coalesce(c.Camera.Fov, DefaultFovDegrees)
	c.Camera.Near = common.Coalesce(c.Camera.Near, DefaultNear)
	c.Camera.Far = common.Coalesce(c.Camera.Far, DefaultFar)

	for i := range c.Scene.Entities {
		e := &c.Scene.Entities[i]
		e.Scale = common.Coalesce(e.Scale, 1)
	}
	for i := range c.Scene.Lights {
		l := &c.Scene.Lights[i]
		l.Colour = common.Coalesce(l.Colour, [3]float32{1, 1, 1})
		l.Cone = common.Coalesce(l.Cone, DefaultConeDegrees)
		if o := l.Rules.Orbit; o != nil {
			o.Radius = common.Coalesce(o.Radius, DefaultOrbitRadius)
			o.Height = common.Coalesce(o.Height, DefaultOrbitHeight)
			o.Speed = common.Coalesce(o.Speed, DefaultOrbitSpeed)
		}
		if p := l.Rules.Pulse; p != nil {
			p.Base = common.Coalesce(p.Base, l.Strength)
		}
		if h := l.Rules.HueCycle; h != nil {
			h.Step = common.Coalesce(h.Step, DefaultHueStep)
		}
	}
}

// Validate checks references and mode names. It does not touch the file system; missing
// programs, meshes and textures are reported when the scene is initialised.
//
// Returns:
//   - error: every problem found, joined
func (c *Config) Validate() error {
	var errs []error
	bundles := make(map[string]bool, len(c.Scene.Bundles))
	for _, b := range c.Scene.Bundles {
		if b.Name == "" {
			errs = append(errs, errors.New("bundle without a name"))
			continue
		}
		if bundles[b.Name] {
			errs = append(errs, fmt.Errorf("bundle %s declared twice", b.Name))
		}
		bundles[b.Name] = true
		if b.Vertex == "" || b.Fragment == "" {
			errs = append(errs, fmt.Errorf("bundle %s: vertex and fragment programs are required", b.Name))
		}
		if _, err := state.ParseBlendMode(b.Blend); err != nil {
			errs = append(errs, fmt.Errorf("bundle %s: %w", b.Name, err))
		}
		if _, err := state.ParseRasterMode(b.Raster); err != nil {
			errs = append(errs, fmt.Errorf("bundle %s: %w", b.Name, err))
		}
		if _, err := state.ParseDepthMode(b.Depth); err != nil {
			errs = append(errs, fmt.Errorf("bundle %s: %w", b.Name, err))
		}
		if _, err := state.ParseSamplerMode(b.Sampler); err != nil {
			errs = append(errs, fmt.Errorf("bundle %s: %w", b.Name, err))
		}
	}

	checkBundle := func(kind, name, bundle string) {
		if !bundles[bundle] {
			errs = append(errs, fmt.Errorf("%s %s: unknown bundle %q", kind, name, bundle))
		}
	}

	names := make(map[string]bool, len(c.Scene.Entities))
	for _, e := range c.Scene.Entities {
		if e.Name == "" {
			errs = append(errs, errors.New("entity without a name"))
		} else if names[e.Name] {
			errs = append(errs, fmt.Errorf("entity %s declared twice", e.Name))
		}
		names[e.Name] = true
		if e.Mesh == "" {
			errs = append(errs, fmt.Errorf("entity %s: mesh is required", e.Name))
		}
		if len(e.Textures) == 0 {
			errs = append(errs, fmt.Errorf("entity %s: at least one texture is required", e.Name))
		}
		if len(e.Textures) > MaxTextures {
			errs = append(errs, fmt.Errorf("entity %s: %d textures, at most %d are supported", e.Name, len(e.Textures), MaxTextures))
		}
		checkBundle("entity", e.Name, e.Bundle)
	}

	if len(c.Scene.Lights) > MaxLights {
		errs = append(errs, fmt.Errorf("%d lights declared, at most %d are supported", len(c.Scene.Lights), MaxLights))
	}
	for _, l := range c.Scene.Lights {
		if l.Name == "" {
			errs = append(errs, errors.New("light without a name"))
		} else if names[l.Name] {
			errs = append(errs, fmt.Errorf("light %s: name already used", l.Name))
		}
		names[l.Name] = true
		if l.Mesh == "" {
			errs = append(errs, fmt.Errorf("light %s: mesh is required", l.Name))
		}
		if l.Texture == "" {
			errs = append(errs, fmt.Errorf("light %s: texture is required", l.Name))
		}
		checkBundle("light", l.Name, l.Bundle)
	}
	if d := c.Scene.DesignatedLight; d != nil && (*d < 0 || *d >= len(c.Scene.Lights)) {
		errs = append(errs, fmt.Errorf("designated light %d out of range, %d lights declared", *d, len(c.Scene.Lights)))
	}

	// Targets may name any entity or light, declared before or after.
	for _, l := range c.Scene.Lights {
		if l.FaceTarget != "" && !names[l.FaceTarget] {
			errs = append(errs, fmt.Errorf("light %s: unknown face target %q", l.Name, l.FaceTarget))
		}
		if o := l.Rules.Orbit; o != nil && !names[o.Target] {
			errs = append(errs, fmt.Errorf("light %s: unknown orbit target %q", l.Name, o.Target))
		}
	}

	if c.Shadows.Enabled {
		if len(c.Scene.Lights) == 0 {
			errs = append(errs, errors.New("shadows enabled without a light"))
		}
		if c.Shadows.Bundle == "" {
			errs = append(errs, errors.New("shadows enabled without a shadow bundle"))
		} else if !bundles[c.Shadows.Bundle] {
			errs = append(errs, fmt.Errorf("shadows: unknown bundle %q", c.Shadows.Bundle))
		}
	}
	if c.Window.Width < 0 || c.Window.Height < 0 {
		errs = append(errs, fmt.Errorf("invalid window size %dx%d", c.Window.Width, c.Window.Height))
	}
	return errors.Join(errs...)
}
