package renderer

import (
	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/state"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

// MaxTextureSlots is the number of texture bindings available to a fragment program.
const MaxTextureSlots = 4

// DrawOffsets holds the dynamic uniform offsets a draw reads its blocks from.
type DrawOffsets struct {
	Frame  uint32
	Model  uint32
	Object uint32
}

// RendererBackend is the top-level backend interface for the Renderer.
// It embeds the concrete backend interface for the selected GPU API.
type RendererBackend interface {
	wgpuRendererBackend
}

// wgpuRendererBackend is the GPU side of the renderer. The front end decides what is bound;
// the backend owns every GPU object and encodes the passes.
type wgpuRendererBackend interface {
	// ConfigureSurface is a wrapper for boilerplate logic required when calling ConfigureSurface on a surface.
	// This is required when the surface size or present mode changes.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	ConfigureSurface(width, height int)

	// SetPresentMode sets the surface present mode. ConfigureSurface must run afterwards.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// UniformProviders returns the frame, model and object uniform providers.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the frame-constant provider
	//   - bind_group_provider.BindGroupProvider: the model matrix provider
	//   - bind_group_provider.BindGroupProvider: the object-constant provider
	UniformProviders() (frame, model, object bind_group_provider.BindGroupProvider)

	// RegisterRenderPipeline compiles the GPU pipeline for p and stores it via SetRenderPipeline.
	//
	// Parameters:
	//   - p: the pipeline configuration
	//
	// Returns:
	//   - error: an error if the pipeline could not be created
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// InitMeshBuffers uploads vertex and index data.
	//
	// Parameters:
	//   - label: debug label
	//   - vertexData: interleaved vertices
	//   - indexData: uint32 indices
	//   - indexCount: number of indices
	//
	// Returns:
	//   - common.MeshHandle: the mesh handle
	//   - error: an error if the buffers could not be created
	InitMeshBuffers(label string, vertexData, indexData []byte, indexCount int) (common.MeshHandle, error)

	// ReleaseMesh destroys a mesh's buffers.
	//
	// Parameters:
	//   - h: the mesh handle
	ReleaseMesh(h common.MeshHandle)

	// InitTexture creates a sampled RGBA texture from staging data.
	//
	// Parameters:
	//   - data: the pixels
	//
	// Returns:
	//   - common.TextureHandle: the texture handle
	//   - error: an error if the texture could not be created
	InitTexture(data common.TextureStagingData) (common.TextureHandle, error)

	// ReleaseTexture destroys a texture and any texture bind group that references it.
	//
	// Parameters:
	//   - h: the texture handle
	ReleaseTexture(h common.TextureHandle)

	// BeginShadowPass starts the depth-only pass into a square shadow map, creating or resizing it.
	//
	// Parameters:
	//   - size: the shadow map edge length in texels
	//
	// Returns:
	//   - error: an error if the frame encoder or shadow map could not be created
	BeginShadowPass(size int) error

	// EndShadowPass ends the shadow pass.
	EndShadowPass()

	// BeginFrame acquires the next swapchain texture and begins the main pass.
	//
	// Parameters:
	//   - clear: the background colour
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	BeginFrame(clear [4]float32) error

	// SetViewport sets the viewport of the active pass.
	//
	// Parameters:
	//   - x, y, width, height: the viewport rectangle in pixels
	SetViewport(x, y, width, height float32)

	// DrawCall encodes an indexed draw in the active pass.
	//
	// Parameters:
	//   - p: the compiled pipeline for the active pass
	//   - mesh: the mesh to draw
	//   - offsets: the uniform slots the draw reads
	//   - textures: the texture slots, zero selects the default white texture
	//   - sampler: the sampler bound with the textures
	DrawCall(p pipeline.Pipeline, mesh common.MeshHandle, offsets DrawOffsets, textures [MaxTextureSlots]common.TextureHandle, sampler state.SamplerMode)

	// EndFrame ends the main pass, uploads the staged uniform slots and submits the frame.
	EndFrame()

	// AbortFrame abandons the frame in progress without submitting it: any open pass is ended,
	// the command encoder and swapchain texture are released and the staged uniform slots are discarded.
	AbortFrame()

	// Present presents the surface to the display and releases the swapchain texture.
	Present()

	// Release destroys every GPU object.
	Release()
}
