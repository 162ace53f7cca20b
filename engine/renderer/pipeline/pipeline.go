package pipeline

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/state"
	"github.com/cogentcore/webgpu/wgpu"
)

// Pass identifies which render pass a pipeline is compiled for.
type Pass int

const (
	// PassMain draws into the swapchain with colour and depth targets.
	PassMain Pass = iota

	// PassShadow draws depth only into the shadow map from the spotlight's point of view.
	PassShadow
)

// String returns the pass name used in pipeline keys.
func (p Pass) String() string {
	switch p {
	case PassMain:
		return "main"
	case PassShadow:
		return "shadow"
	default:
		return fmt.Sprintf("Pass(%d)", int(p))
	}
}

const (
	// MainDepthFormat is the depth format of the main pass depth buffer.
	MainDepthFormat = wgpu.TextureFormatDepth24Plus

	// ShadowDepthFormat is the depth format of the shadow map.
	ShadowDepthFormat = wgpu.TextureFormatDepth32Float

	// VertexStride is the byte size of one interleaved vertex: position, normal, uv.
	VertexStride = 32
)

// pipeline is the implementation of the Pipeline interface.
// It holds the WebGPU pipeline state derived from a state bundle for one pass.
type pipeline struct {
	// pipelineKey is the unique identifier for this pipeline, used for caching and lookups
	pipelineKey string
	pass        Pass
	bundle      *state.Bundle

	// renderPipeline is the compiled GPU pipeline, nil until the backend creates it
	renderPipeline *wgpu.RenderPipeline

	depthWriteEnabled   bool
	depthCompare        wgpu.CompareFunction
	depthFormat         wgpu.TextureFormat
	depthBias           int32
	depthBiasSlopeScale float32
	cullMode            wgpu.CullMode
	topology            wgpu.PrimitiveTopology
	frontFace           wgpu.FrontFace
	writeMask           wgpu.ColorWriteMask
	blendState          *wgpu.BlendState
}

// Pipeline is the GPU render pipeline configuration for one state bundle in one pass. Bundle
// modes are translated to WebGPU blend, cull and depth state when the pipeline is created.
type Pipeline interface {
	// PipelineKey returns the unique key associated with this pipeline, used for caching and lookups.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Pass returns the render pass this pipeline targets.
	//
	// Returns:
	//   - Pass: main or shadow
	Pass() Pass

	// Bundle returns the state bundle the pipeline was derived from.
	//
	// Returns:
	//   - *state.Bundle: the bundle
	Bundle() *state.Bundle

	// Shader retrieves the program for the given stage. Shadow pipelines have no fragment stage.
	//
	// Parameters:
	//   - shaderType: the stage to retrieve
	//
	// Returns:
	//   - shader.Shader: the program, or nil if the stage is unused
	Shader(shaderType shader.ShaderType) shader.Shader

	// RenderPipeline returns the compiled GPU pipeline, or nil before creation.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the pipeline
	RenderPipeline() *wgpu.RenderPipeline

	// DepthWriteEnabled returns whether depth writing is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if depth writing is enabled, false otherwise
	DepthWriteEnabled() bool

	// DepthCompare returns the depth test function.
	//
	// Returns:
	//   - wgpu.CompareFunction: Less when testing, Always when depth is disabled
	DepthCompare() wgpu.CompareFunction

	// DepthFormat returns the depth attachment format of the target pass.
	//
	// Returns:
	//   - wgpu.TextureFormat: the depth format
	DepthFormat() wgpu.TextureFormat

	// DepthBias returns the depth bias value configured for this pipeline.
	//
	// Returns:
	//   - int32: the depth bias value for this pipeline
	DepthBias() int32

	// DepthBiasSlopeScale returns the depth bias slope scale configured for this pipeline.
	//
	// Returns:
	//   - float32: the depth bias slope scale for this pipeline
	DepthBiasSlopeScale() float32

	// CullMode returns the cull mode configured for this pipeline.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode for this pipeline
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology configured for this pipeline.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: the primitive topology for this pipeline
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order configured for this pipeline.
	//
	// Returns:
	//   - wgpu.FrontFace: the front face winding order for this pipeline
	FrontFace() wgpu.FrontFace

	// WriteMask returns the color write mask configured for this pipeline.
	//
	// Returns:
	//   - wgpu.ColorWriteMask: the color write mask for this pipeline
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the blend state configured for this pipeline.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state, or nil for opaque drawing
	BlendState() *wgpu.BlendState

	// Descriptor assembles the WebGPU render pipeline descriptor from this configuration.
	//
	// Parameters:
	//   - layout: the shared pipeline layout
	//   - vs: the compiled vertex module
	//   - fs: the compiled fragment module, ignored for shadow pipelines
	//   - colorFormat: the swapchain format, ignored for shadow pipelines
	//   - sampleCount: the main pass sample count, ignored for shadow pipelines
	//
	// Returns:
	//   - *wgpu.RenderPipelineDescriptor: the descriptor
	Descriptor(layout *wgpu.PipelineLayout, vs, fs *wgpu.ShaderModule, colorFormat wgpu.TextureFormat, sampleCount uint32) *wgpu.RenderPipelineDescriptor

	// SetRenderPipeline sets the render pipeline
	//
	// Parameters:
	//   - p: the WebGPU render pipeline to set
	SetRenderPipeline(p *wgpu.RenderPipeline)

	// Release releases the compiled GPU pipeline.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline derives the pipeline configuration for a bundle in the given pass.
// Shadow pipelines always write depth with a Less test regardless of the bundle's depth mode.
//
// Parameters:
//   - bundle: the state bundle to translate
//   - pass: the pass the pipeline targets
//   - opts: a variadic list of PipelineBuilderOption functions applied after translation
//
// Returns:
//   - Pipeline: the pipeline configuration
func NewPipeline(bundle *state.Bundle, pass Pass, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey: Key(bundle, pass),
		pass:        pass,
		bundle:      bundle,
		cullMode:    CullMode(bundle.Raster()),
		topology:    wgpu.PrimitiveTopologyTriangleList,
		frontFace:   wgpu.FrontFaceCCW,
		writeMask:   wgpu.ColorWriteMaskAll,
		blendState:  BlendState(bundle.Blend()),
	}
	p.depthWriteEnabled, p.depthCompare = DepthState(bundle.Depth())
	p.depthFormat = MainDepthFormat

	if pass == PassShadow {
		p.depthWriteEnabled = true
		p.depthCompare = wgpu.CompareFunctionLess
		p.depthFormat = ShadowDepthFormat
		p.blendState = nil
	}

	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Key builds the cache key of the pipeline for a bundle and pass.
//
// Parameters:
//   - bundle: the state bundle
//   - pass: the target pass
//
// Returns:
//   - string: the pipeline key
func Key(bundle *state.Bundle, pass Pass) string {
	return bundle.Key() + "|" + pass.String()
}

// BlendState translates a blend mode to its WebGPU blend state.
//
// Parameters:
//   - mode: the blend mode
//
// Returns:
//   - *wgpu.BlendState: the blend state, nil for BlendNone
func BlendState(mode state.BlendMode) *wgpu.BlendState {
	component := func(src, dst wgpu.BlendFactor) wgpu.BlendComponent {
		return wgpu.BlendComponent{SrcFactor: src, DstFactor: dst, Operation: wgpu.BlendOperationAdd}
	}
	switch mode {
	case state.BlendAlpha:
		return &wgpu.BlendState{
			Color: component(wgpu.BlendFactorSrcAlpha, wgpu.BlendFactorOneMinusSrcAlpha),
			Alpha: component(wgpu.BlendFactorOne, wgpu.BlendFactorOneMinusSrcAlpha),
		}
	case state.BlendAdditive:
		return &wgpu.BlendState{
			Color: component(wgpu.BlendFactorOne, wgpu.BlendFactorOne),
			Alpha: component(wgpu.BlendFactorOne, wgpu.BlendFactorOne),
		}
	case state.BlendMultiplicative:
		return &wgpu.BlendState{
			Color: component(wgpu.BlendFactorDst, wgpu.BlendFactorZero),
			Alpha: component(wgpu.BlendFactorDstAlpha, wgpu.BlendFactorZero),
		}
	default:
		return nil
	}
}

// CullMode translates a raster mode to its WebGPU cull mode.
//
// Parameters:
//   - mode: the raster mode
//
// Returns:
//   - wgpu.CullMode: the cull mode
func CullMode(mode state.RasterMode) wgpu.CullMode {
	switch mode {
	case state.RasterCullFront:
		return wgpu.CullModeFront
	case state.RasterCullNone:
		return wgpu.CullModeNone
	default:
		return wgpu.CullModeBack
	}
}

// DepthState translates a depth mode to a write flag and compare function.
//
// Parameters:
//   - mode: the depth mode
//
// Returns:
//   - bool: whether depth is written
//   - wgpu.CompareFunction: the depth test
func DepthState(mode state.DepthMode) (bool, wgpu.CompareFunction) {
	switch mode {
	case state.DepthReadOnly:
		return false, wgpu.CompareFunctionLess
	case state.DepthDisabled:
		return false, wgpu.CompareFunctionAlways
	default:
		return true, wgpu.CompareFunctionLess
	}
}

// VertexBufferLayout describes the interleaved vertex format shared by every mesh:
// position at location 0, normal at location 1, uv at location 2.
//
// Returns:
//   - wgpu.VertexBufferLayout: the layout
func VertexBufferLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: VertexStride,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
		},
	}
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Pass() Pass {
	return p.pass
}

func (p *pipeline) Bundle() *state.Bundle {
	return p.bundle
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.bundle.VertexProgram()
	case shader.ShaderTypeFragment:
		if p.pass == PassShadow {
			return nil
		}
		return p.bundle.FragmentProgram()
	default:
		return nil
	}
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) DepthCompare() wgpu.CompareFunction {
	return p.depthCompare
}

func (p *pipeline) DepthFormat() wgpu.TextureFormat {
	return p.depthFormat
}

func (p *pipeline) DepthBias() int32 {
	return p.depthBias
}

func (p *pipeline) DepthBiasSlopeScale() float32 {
	return p.depthBiasSlopeScale
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) Descriptor(layout *wgpu.PipelineLayout, vs, fs *wgpu.ShaderModule, colorFormat wgpu.TextureFormat, sampleCount uint32) *wgpu.RenderPipelineDescriptor {
	desc := &wgpu.RenderPipelineDescriptor{
		Label:  p.pipelineKey,
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: p.bundle.VertexProgram().EntryPoint(),
			Buffers:    []wgpu.VertexBufferLayout{VertexBufferLayout()},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.topology,
			FrontFace: p.frontFace,
			CullMode:  p.cullMode,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:              p.depthFormat,
			DepthWriteEnabled:   p.depthWriteEnabled,
			DepthCompare:        p.depthCompare,
			DepthBias:           p.depthBias,
			DepthBiasSlopeScale: p.depthBiasSlopeScale,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	}
	if p.pass == PassShadow {
		return desc
	}

	desc.Multisample.Count = sampleCount
	desc.Fragment = &wgpu.FragmentState{
		Module:     fs,
		EntryPoint: p.bundle.FragmentProgram().EntryPoint(),
		Targets: []wgpu.ColorTargetState{{
			Format:    colorFormat,
			Blend:     p.blendState,
			WriteMask: p.writeMask,
		}},
	}
	return desc
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
}
