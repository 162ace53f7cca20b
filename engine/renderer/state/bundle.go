package state

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/shader"
)

// Bundle is an immutable set of pipeline selectors a drawable is rendered with: a vertex and
// fragment program pair plus blend, raster, depth and sampler modes. Bundles are created by a
// Registry and shared by pointer between any number of drawables; no method mutates one.
type Bundle struct {
	name     string
	vertex   shader.Shader
	fragment shader.Shader
	blend    BlendMode
	raster   RasterMode
	depth    DepthMode
	sampler  SamplerMode
}

// Name returns the registry name of the bundle.
func (b *Bundle) Name() string {
	return b.name
}

// VertexProgram returns the vertex stage program.
func (b *Bundle) VertexProgram() shader.Shader {
	return b.vertex
}

// FragmentProgram returns the fragment stage program.
func (b *Bundle) FragmentProgram() shader.Shader {
	return b.fragment
}

// Blend returns the blend mode.
func (b *Bundle) Blend() BlendMode {
	return b.blend
}

// Raster returns the raster (culling) mode.
func (b *Bundle) Raster() RasterMode {
	return b.raster
}

// Depth returns the depth mode.
func (b *Bundle) Depth() DepthMode {
	return b.depth
}

// Sampler returns the sampler mode.
func (b *Bundle) Sampler() SamplerMode {
	return b.sampler
}

// Opaque reports whether the bundle draws without blending. Only opaque drawables are
// rendered into the shadow map.
func (b *Bundle) Opaque() bool {
	return b.blend == BlendNone
}

// Key identifies the GPU pipeline state of the bundle. Two bundles with equal keys can share
// one compiled pipeline.
//
// Returns:
//   - string: the pipeline key
func (b *Bundle) Key() string {
	return fmt.Sprintf("%s|%s|b%d|r%d|d%d", b.vertex.Key(), b.fragment.Key(), b.blend, b.raster, b.depth)
}

// BundleOption is a functional option for configuring a Bundle during creation.
type BundleOption func(b *Bundle)

// WithVertexProgram sets the vertex stage program.
//
// Parameters:
//   - s: the vertex program
//
// Returns:
//   - BundleOption: option function to apply
func WithVertexProgram(s shader.Shader) BundleOption {
	return func(b *Bundle) {
		b.vertex = s
	}
}

// WithFragmentProgram sets the fragment stage program.
//
// Parameters:
//   - s: the fragment program
//
// Returns:
//   - BundleOption: option function to apply
func WithFragmentProgram(s shader.Shader) BundleOption {
	return func(b *Bundle) {
		b.fragment = s
	}
}

// WithBlend sets the blend mode.
//
// Parameters:
//   - m: the blend mode
//
// Returns:
//   - BundleOption: option function to apply
func WithBlend(m BlendMode) BundleOption {
	return func(b *Bundle) {
		b.blend = m
	}
}

// WithRaster sets the raster mode.
//
// Parameters:
//   - m: the raster mode
//
// Returns:
//   - BundleOption: option function to apply
func WithRaster(m RasterMode) BundleOption {
	return func(b *Bundle) {
		b.raster = m
	}
}

// WithDepth sets the depth mode.
//
// Parameters:
//   - m: the depth mode
//
// Returns:
//   - BundleOption: option function to apply
func WithDepth(m DepthMode) BundleOption {
	return func(b *Bundle) {
		b.depth = m
	}
}

// WithSampler sets the sampler mode.
//
// Parameters:
//   - m: the sampler mode
//
// Returns:
//   - BundleOption: option function to apply
func WithSampler(m SamplerMode) BundleOption {
	return func(b *Bundle) {
		b.sampler = m
	}
}
