package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/state"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBundle(t *testing.T, name string, opts ...state.BundleOption) *state.Bundle {
	t.Helper()
	vs, err := shader.NewShaderFromSource("vs", shader.ShaderTypeVertex, "@vertex fn vs_main() {}")
	require.NoError(t, err)
	fs, err := shader.NewShaderFromSource("fs", shader.ShaderTypeFragment, "@fragment fn fs_main() {}")
	require.NoError(t, err)
	opts = append([]state.BundleOption{state.WithVertexProgram(vs), state.WithFragmentProgram(fs)}, opts...)
	b, err := state.NewRegistry().CreateBundle(name, opts...)
	require.NoError(t, err)
	return b
}

func TestNewPipelineTranslatesModes(t *testing.T) {
	tests := []struct {
		name      string
		opts      []state.BundleOption
		cull      wgpu.CullMode
		write     bool
		compare   wgpu.CompareFunction
		blend     bool
		blendSrc  wgpu.BlendFactor
		blendDest wgpu.BlendFactor
	}{
		{
			name:    "defaults",
			cull:    wgpu.CullModeBack,
			write:   true,
			compare: wgpu.CompareFunctionLess,
		},
		{
			name:      "additive light glyph",
			opts:      []state.BundleOption{state.WithBlend(state.BlendAdditive), state.WithDepth(state.DepthReadOnly), state.WithRaster(state.RasterCullNone)},
			cull:      wgpu.CullModeNone,
			write:     false,
			compare:   wgpu.CompareFunctionLess,
			blend:     true,
			blendSrc:  wgpu.BlendFactorOne,
			blendDest: wgpu.BlendFactorOne,
		},
		{
			name:      "alpha",
			opts:      []state.BundleOption{state.WithBlend(state.BlendAlpha)},
			cull:      wgpu.CullModeBack,
			write:     true,
			compare:   wgpu.CompareFunctionLess,
			blend:     true,
			blendSrc:  wgpu.BlendFactorSrcAlpha,
			blendDest: wgpu.BlendFactorOneMinusSrcAlpha,
		},
		{
			name:      "multiplicative skybox",
			opts:      []state.BundleOption{state.WithBlend(state.BlendMultiplicative), state.WithDepth(state.DepthDisabled), state.WithRaster(state.RasterCullFront)},
			cull:      wgpu.CullModeFront,
			write:     false,
			compare:   wgpu.CompareFunctionAlways,
			blend:     true,
			blendSrc:  wgpu.BlendFactorDst,
			blendDest: wgpu.BlendFactorZero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPipeline(newBundle(t, tt.name, tt.opts...), PassMain)
			assert.Equal(t, tt.cull, p.CullMode())
			assert.Equal(t, tt.write, p.DepthWriteEnabled())
			assert.Equal(t, tt.compare, p.DepthCompare())
			assert.Equal(t, MainDepthFormat, p.DepthFormat())
			if !tt.blend {
				assert.Nil(t, p.BlendState())
				return
			}
			require.NotNil(t, p.BlendState())
			assert.Equal(t, tt.blendSrc, p.BlendState().Color.SrcFactor)
			assert.Equal(t, tt.blendDest, p.BlendState().Color.DstFactor)
		})
	}
}

func TestShadowPipelineAlwaysWritesDepth(t *testing.T) {
	b := newBundle(t, "glyph", state.WithBlend(state.BlendAdditive), state.WithDepth(state.DepthDisabled))
	p := NewPipeline(b, PassShadow, WithDepthBias(2, 2.0))

	assert.Equal(t, PassShadow, p.Pass())
	assert.True(t, p.DepthWriteEnabled())
	assert.Equal(t, wgpu.CompareFunctionLess, p.DepthCompare())
	assert.Equal(t, ShadowDepthFormat, p.DepthFormat())
	assert.Nil(t, p.BlendState())
	assert.Nil(t, p.Shader(shader.ShaderTypeFragment))
	assert.NotNil(t, p.Shader(shader.ShaderTypeVertex))
	assert.Equal(t, int32(2), p.DepthBias())

	desc := p.Descriptor(nil, nil, nil, wgpu.TextureFormatBGRA8Unorm, 4)
	assert.Nil(t, desc.Fragment)
	assert.Equal(t, uint32(1), desc.Multisample.Count)
	assert.Equal(t, ShadowDepthFormat, desc.DepthStencil.Format)
}

func TestMainDescriptor(t *testing.T) {
	p := NewPipeline(newBundle(t, "lit"), PassMain)
	desc := p.Descriptor(nil, nil, nil, wgpu.TextureFormatBGRA8Unorm, 4)

	require.NotNil(t, desc.Fragment)
	assert.Equal(t, "fs_main", desc.Fragment.EntryPoint)
	assert.Equal(t, "vs_main", desc.Vertex.EntryPoint)
	assert.Equal(t, wgpu.TextureFormatBGRA8Unorm, desc.Fragment.Targets[0].Format)
	assert.Equal(t, uint32(4), desc.Multisample.Count)
	require.Len(t, desc.Vertex.Buffers, 1)
	assert.Equal(t, uint64(VertexStride), desc.Vertex.Buffers[0].ArrayStride)
}

func TestKeyDistinguishesPass(t *testing.T) {
	b := newBundle(t, "lit")
	assert.NotEqual(t, Key(b, PassMain), Key(b, PassShadow))
	assert.Equal(t, Key(b, PassMain), NewPipeline(b, PassMain).PipelineKey())
}
