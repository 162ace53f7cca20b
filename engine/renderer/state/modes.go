package state

import (
	"fmt"
	"strings"
)

// BlendMode selects how fragment colour combines with the render target.
type BlendMode int

const (
	// BlendNone writes the fragment colour unchanged (opaque).
	BlendNone BlendMode = iota
	// BlendAlpha composites by source alpha.
	BlendAlpha
	// BlendAdditive adds the fragment colour to the target.
	BlendAdditive
	// BlendMultiplicative multiplies the target by the fragment colour.
	BlendMultiplicative
)

// RasterMode selects face culling.
type RasterMode int

const (
	// RasterCullBack culls back faces.
	RasterCullBack RasterMode = iota
	// RasterCullFront culls front faces (used for inside-out shells such as a skybox).
	RasterCullFront
	// RasterCullNone draws both faces.
	RasterCullNone
)

// DepthMode selects depth testing and writing.
type DepthMode int

const (
	// DepthReadWrite tests against and writes to the depth buffer.
	DepthReadWrite DepthMode = iota
	// DepthReadOnly tests against the depth buffer without writing to it.
	DepthReadOnly
	// DepthDisabled neither tests nor writes depth.
	DepthDisabled
)

// SamplerMode selects the texture sampler bound alongside the textures.
type SamplerMode int

const (
	// SamplerAnisotropic4x is trilinear wrap filtering with 4x anisotropy.
	SamplerAnisotropic4x SamplerMode = iota
	// SamplerPoint is nearest filtering with clamped addressing.
	SamplerPoint
	// SamplerTrilinear is trilinear filtering with wrapped addressing.
	SamplerTrilinear
	// SamplerBilinearClamp is linear filtering with clamped addressing.
	SamplerBilinearClamp
)

var blendNames = map[string]BlendMode{
	"none":           BlendNone,
	"alpha":          BlendAlpha,
	"additive":       BlendAdditive,
	"multiplicative": BlendMultiplicative,
}

var rasterNames = map[string]RasterMode{
	"cull-back":  RasterCullBack,
	"cull-front": RasterCullFront,
	"cull-none":  RasterCullNone,
}

var depthNames = map[string]DepthMode{
	"read-write": DepthReadWrite,
	"read-only":  DepthReadOnly,
	"disabled":   DepthDisabled,
}

var samplerNames = map[string]SamplerMode{
	"anisotropic-4x": SamplerAnisotropic4x,
	"point":          SamplerPoint,
	"trilinear":      SamplerTrilinear,
	"bilinear-clamp": SamplerBilinearClamp,
}

// ParseBlendMode resolves a blend mode name. The empty string selects BlendNone.
//
// Parameters:
//   - name: one of none, alpha, additive, multiplicative
//
// Returns:
//   - BlendMode: the mode
//   - error: error if the name is unknown
func ParseBlendMode(name string) (BlendMode, error) {
	return parseMode(blendNames, "blend", name, BlendNone)
}

// ParseRasterMode resolves a raster mode name. The empty string selects RasterCullBack.
//
// Parameters:
//   - name: one of cull-back, cull-front, cull-none
//
// Returns:
//   - RasterMode: the mode
//   - error: error if the name is unknown
func ParseRasterMode(name string) (RasterMode, error) {
	return parseMode(rasterNames, "raster", name, RasterCullBack)
}

// ParseDepthMode resolves a depth mode name. The empty string selects DepthReadWrite.
//
// Parameters:
//   - name: one of read-write, read-only, disabled
//
// Returns:
//   - DepthMode: the mode
//   - error: error if the name is unknown
func ParseDepthMode(name string) (DepthMode, error) {
	return parseMode(depthNames, "depth", name, DepthReadWrite)
}

// ParseSamplerMode resolves a sampler name. The empty string selects SamplerAnisotropic4x.
//
// Parameters:
//   - name: one of anisotropic-4x, point, trilinear, bilinear-clamp
//
// Returns:
//   - SamplerMode: the mode
//   - error: error if the name is unknown
func ParseSamplerMode(name string) (SamplerMode, error) {
	return parseMode(samplerNames, "sampler", name, SamplerAnisotropic4x)
}

func parseMode[T any](names map[string]T, kind, name string, def T) (T, error) {
	if name == "" {
		return def, nil
	}
	if m, ok := names[strings.ToLower(name)]; ok {
		return m, nil
	}
	return def, fmt.Errorf("unknown %s mode %q", kind, name)
}

// String returns the configuration name of the mode.
func (m BlendMode) String() string {
	return modeName(blendNames, "Blend", m)
}

// String returns the configuration name of the mode.
func (m RasterMode) String() string {
	return modeName(rasterNames, "Raster", m)
}

// String returns the configuration name of the mode.
func (m DepthMode) String() string {
	return modeName(depthNames, "Depth", m)
}

// String returns the configuration name of the mode.
func (m SamplerMode) String() string {
	return modeName(samplerNames, "Sampler", m)
}

func modeName[T ~int](names map[string]T, kind string, m T) string {
	for name, v := range names {
		if v == m {
			return name
		}
	}
	return fmt.Sprintf("%s(%d)", kind, int(m))
}
