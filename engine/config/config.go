// Package config describes a scene and the runtime settings it is shown with. A description is
// read from YAML or TOML; Default returns the built-in demo scene.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed default_scene.yaml
var defaultScene []byte

// Default values applied by Normalize.
const (
	DefaultTitle         = "oxy-scene"
	DefaultWidth         = 1280
	DefaultHeight        = 720
	DefaultShadowMapSize = 256
	DefaultSpecularPower = 256
	DefaultAssetRoot     = "assets"
	DefaultFovDegrees    = 60
	DefaultNear          = 1
	DefaultFar           = 10000
	DefaultHueStep       = 1
	DefaultOrbitRadius   = 20
	DefaultOrbitHeight   = 10
	DefaultOrbitSpeed    = 0.7
	DefaultConeDegrees   = 90
)

// MaxLights is the number of lights the frame constants carry.
const MaxLights = 2

// MaxTextures is the number of texture slots a drawable can bind.
const MaxTextures = 4

// Config is a complete scene description.
type Config struct {
	Window        WindowConfig  `yaml:"window" toml:"window"`
	Present       PresentConfig `yaml:"present" toml:"present"`
	Shadows       ShadowConfig  `yaml:"shadows" toml:"shadows"`
	Background    [4]float32    `yaml:"background" toml:"background"`
	Ambient       [3]float32    `yaml:"ambient" toml:"ambient"`
	SpecularPower float32       `yaml:"specularPower" toml:"specularPower"`
	AssetRoot     string        `yaml:"assetRoot" toml:"assetRoot"`
	Camera        CameraConfig  `yaml:"camera" toml:"camera"`
	Scene         SceneConfig   `yaml:"scene" toml:"scene"`
}

// WindowConfig sizes and names the window.
type WindowConfig struct {
	Title  string `yaml:"title" toml:"title"`
	Width  int    `yaml:"width" toml:"width"`
	Height int    `yaml:"height" toml:"height"`
}

// PresentConfig selects the presentation wait mode.
type PresentConfig struct {
	// VSync locks presentation to the display refresh. Unset means on.
	VSync *bool `yaml:"vsync" toml:"vsync"`
}

// ShadowConfig controls the shadow pre-pass from the designated light.
type ShadowConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	MapSize int    `yaml:"mapSize" toml:"mapSize"`
	Bundle  string `yaml:"bundle" toml:"bundle"`
}

// CameraConfig places the camera. Angles are in degrees.
type CameraConfig struct {
	Position [3]float32 `yaml:"position" toml:"position"`
	Rotation [3]float32 `yaml:"rotation" toml:"rotation"`
	Fov      float32    `yaml:"fov" toml:"fov"`
	Near     float32    `yaml:"near" toml:"near"`
	Far      float32    `yaml:"far" toml:"far"`
}

// SceneConfig declares bundles, drawables and lights. Drawables are drawn in declaration order,
// then lights in declaration order.
type SceneConfig struct {
	Bundles  []BundleConfig `yaml:"bundles" toml:"bundles"`
	Entities []EntityConfig `yaml:"entities" toml:"entities"`
	Lights   []LightConfig  `yaml:"lights" toml:"lights"`

	// DesignatedLight is the index into Lights of the light that feeds the spot and shadow
	// parameters. Unset means the first light.
	DesignatedLight *int `yaml:"designatedLight" toml:"designatedLight"`
}

// BundleConfig names the programs and modes of one state bundle. Program paths are relative to
// the asset root; one file may hold both stages.
type BundleConfig struct {
	Name     string `yaml:"name" toml:"name"`
	Vertex   string `yaml:"vertex" toml:"vertex"`
	Fragment string `yaml:"fragment" toml:"fragment"`
	Blend    string `yaml:"blend" toml:"blend"`
	Raster   string `yaml:"raster" toml:"raster"`
	Depth    string `yaml:"depth" toml:"depth"`
	Sampler  string `yaml:"sampler" toml:"sampler"`
}

// EntityConfig declares a plain drawable. Rotation is in degrees.
type EntityConfig struct {
	Name         string      `yaml:"name" toml:"name"`
	Mesh         string      `yaml:"mesh" toml:"mesh"`
	Textures     []string    `yaml:"textures" toml:"textures"`
	Bundle       string      `yaml:"bundle" toml:"bundle"`
	Position     [3]float32  `yaml:"position" toml:"position"`
	Rotation     [3]float32  `yaml:"rotation" toml:"rotation"`
	Scale        float32     `yaml:"scale" toml:"scale"`
	Controllable bool        `yaml:"controllable" toml:"controllable"`
	TrackCamera  bool        `yaml:"trackCamera" toml:"trackCamera"`
	Tint         *[3]float32 `yaml:"tint" toml:"tint"`
}

// LightConfig declares a light. Which light is designated is chosen by SceneConfig.DesignatedLight.
type LightConfig struct {
	Name       string      `yaml:"name" toml:"name"`
	Mesh       string      `yaml:"mesh" toml:"mesh"`
	Texture    string      `yaml:"texture" toml:"texture"`
	Bundle     string      `yaml:"bundle" toml:"bundle"`
	Colour     [3]float32  `yaml:"colour" toml:"colour"`
	Strength   float32     `yaml:"strength" toml:"strength"`
	Position   [3]float32  `yaml:"position" toml:"position"`
	FaceTarget string      `yaml:"faceTarget" toml:"faceTarget"`
	Cone       float32     `yaml:"cone" toml:"cone"`
	Rules      RulesConfig `yaml:"rules" toml:"rules"`
}

// RulesConfig selects the procedural rules applied to a light each tick.
type RulesConfig struct {
	Orbit    *OrbitConfig    `yaml:"orbit" toml:"orbit"`
	Pulse    *PulseConfig    `yaml:"pulse" toml:"pulse"`
	HueCycle *HueCycleConfig `yaml:"hueCycle" toml:"hueCycle"`
}

// OrbitConfig circles the light around a drawable.
type OrbitConfig struct {
	Target string  `yaml:"target" toml:"target"`
	Radius float32 `yaml:"radius" toml:"radius"`
	Height float32 `yaml:"height" toml:"height"`
	Speed  float32 `yaml:"speed" toml:"speed"`
}

// PulseConfig drives strength with |sin(t)| * Base.
type PulseConfig struct {
	Base float32 `yaml:"base" toml:"base"`
}

// HueCycleConfig advances the hue by Step degrees per tick.
type HueCycleConfig struct {
	Step float32 `yaml:"step" toml:"step"`
}

// VSync reports the configured presentation mode.
//
// Returns:
//   - bool: true unless vsync is explicitly disabled
func (c *Config) VSync() bool {
	return c.Present.VSync == nil || *c.Present.VSync
}

// Designated returns the index of the designated light.
//
// Returns:
//   - int: the index into Scene.Lights, or -1 if no light is declared
func (c *Config) Designated() int {
	if len(c.Scene.Lights) == 0 {
		return -1
	}
	if c.Scene.DesignatedLight != nil {
		return *c.Scene.DesignatedLight
	}
	return 0
}

// Default returns the built-in demo scene with defaults applied.
//
// Returns:
//   - *Config: the demo scene
//   - error: error if the embedded description is invalid
func Default() (*Config, error) {
	return Parse(defaultScene, FormatYAML)
}

// Format is a description encoding.
type Format int

const (
	FormatYAML Format = iota
	FormatTOML
)

// FormatFor picks the encoding from a file extension.
//
// Parameters:
//   - path: the file path
//
// Returns:
//   - Format: the encoding
//   - error: error if the extension is not .yaml, .yml or .toml
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return 0, fmt.Errorf("unsupported config extension %q", filepath.Ext(path))
	}
}

// Load reads, normalises and validates a description file.
//
// Parameters:
//   - path: a .yaml, .yml or .toml file
//
// Returns:
//   - *Config: the description
//   - error: error if the file cannot be read, decoded or validated
func Load(path string) (*Config, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes, normalises and validates a description.
//
// Parameters:
//   - data: the encoded description
//   - format: the encoding
//
// Returns:
//   - *Config: the description
//   - error: error if decoding or validation fails
func Parse(data []byte, format Format) (*Config, error) {
	cfg := &Config{}
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to decode yaml: %w", err)
		}
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to decode toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config format %d", format)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
