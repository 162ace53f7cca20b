package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/state"
	"github.com/cogentcore/webgpu/wgpu"
)

// Surface is the window the renderer presents to.
type Surface interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend

	width, height int
	presentMode   PresentMode

	// Binding state of the active pass. Each call replaces what it names and nothing else.
	pass       pipeline.Pass
	inPass     bool
	bundle     *state.Bundle
	textures   [MaxTextureSlots]common.TextureHandle
	frameSlot  uint32
	objectSlot uint32

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	msaa                 MSAASampleCount
	shadowBias           int32
	shadowSlopeScale     float32
}

// Renderer is the render context the scene draws through.
//
// Binding calls (BindState, BindTexture, WriteFrameConstants, WriteObjectConstants) change the
// state seen by every following DrawMesh until the next call of the same kind; the last value
// written before a draw is the one that draw reads. Frames are encoded in the order:
// optional BeginShadowPass / EndShadowPass, BeginFrame, EndFrame, Present.
type Renderer interface {
	// UploadMesh creates GPU vertex and index buffers.
	//
	// Parameters:
	//   - label: debug label, usually the mesh identifier
	//   - vertexData: interleaved position, normal, uv vertices
	//   - indexData: uint32 indices
	//   - indexCount: the number of indices
	//
	// Returns:
	//   - common.MeshHandle: the mesh handle
	//   - error: error if buffer creation fails
	UploadMesh(label string, vertexData, indexData []byte, indexCount int) (common.MeshHandle, error)

	// ReleaseMesh destroys an uploaded mesh.
	//
	// Parameters:
	//   - h: the mesh handle
	ReleaseMesh(h common.MeshHandle)

	// UploadTexture creates a shader-visible texture.
	//
	// Parameters:
	//   - data: the RGBA pixels
	//
	// Returns:
	//   - common.TextureHandle: the texture handle
	//   - error: error if texture creation fails
	UploadTexture(data common.TextureStagingData) (common.TextureHandle, error)

	// ReleaseTexture destroys an uploaded texture.
	//
	// Parameters:
	//   - h: the texture handle
	ReleaseTexture(h common.TextureHandle)

	// BeginShadowPass starts a depth-only pass into the square shadow map. Draws issued until
	// EndShadowPass write depth only.
	//
	// Parameters:
	//   - size: the shadow map edge length in texels
	//
	// Returns:
	//   - error: error if the pass could not begin
	BeginShadowPass(size int) error

	// EndShadowPass ends the shadow pass.
	EndShadowPass()

	// BeginFrame starts the main pass, clearing colour to clear and depth to the far value.
	//
	// Parameters:
	//   - clear: the background colour
	//
	// Returns:
	//   - error: error if the swapchain texture could not be acquired
	BeginFrame(clear [4]float32) error

	// SetViewport sets the viewport of the active pass.
	//
	// Parameters:
	//   - x, y, width, height: the viewport rectangle in pixels
	SetViewport(x, y, width, height float32)

	// WriteFrameConstants makes data the frame-constant block read by following draws.
	//
	// Parameters:
	//   - data: the marshalled block
	WriteFrameConstants(data []byte)

	// WriteObjectConstants makes data the object-constant block read by following draws.
	//
	// Parameters:
	//   - data: the marshalled block
	WriteObjectConstants(data []byte)

	// BindState selects the programs and modes of following draws.
	//
	// Parameters:
	//   - b: the state bundle
	BindState(b *state.Bundle)

	// BindTexture binds a texture at a slot for following draws.
	//
	// Parameters:
	//   - slot: the binding slot, 0 to MaxTextureSlots-1
	//   - h: the texture handle
	BindTexture(slot int, h common.TextureHandle)

	// DrawMesh draws a mesh with the given world matrix using the current bindings.
	//
	// Parameters:
	//   - mesh: the mesh handle
	//   - world: the column-major world matrix
	DrawMesh(mesh common.MeshHandle, world [16]float32)

	// EndFrame ends the main pass and submits the frame.
	EndFrame()

	// AbortFrame abandons a frame that failed part way. Nothing is submitted or presented and
	// every uniform block staged since the last EndFrame is discarded, so the next frame starts clean.
	AbortFrame()

	// Present shows the submitted frame. A change of vsync takes effect from the next frame.
	//
	// Parameters:
	//   - vsync: true to wait for vertical blank
	Present(vsync bool)

	// Resize reconfigures the surface for a new size. Zero sizes are ignored.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// Size returns the current surface size.
	//
	// Returns:
	//   - int: width in pixels
	//   - int: height in pixels
	Size() (int, int)

	// Close releases every GPU resource.
	Close()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer for the surface with the specified backend type.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - surface: the window to present to
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the renderer
//   - error: error if no adapter or device could be acquired
func NewRenderer(backendType RendererBackendType, surface Surface, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:               &sync.Mutex{},
		pipelineCache:    make(map[string]pipeline.Pipeline),
		backendType:      backendType,
		width:            surface.Width(),
		height:           surface.Height(),
		msaa:             MSAA4x,
		shadowBias:       2,
		shadowSlopeScale: 2.0,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	if r.backend == nil {
		switch backendType {
		case BackendTypeWGPU:
			fallthrough
		default:
			b, err := newWGPURendererBackend(surface.SurfaceDescriptor(), r.forceFallbackAdapter, r.msaa)
			if err != nil {
				return nil, err
			}
			r.backend = b
		}
	}

	r.backend.SetPresentMode(r.presentMode)
	r.backend.ConfigureSurface(r.width, r.height)
	return r, nil
}

func (r *renderer) UploadMesh(label string, vertexData, indexData []byte, indexCount int) (common.MeshHandle, error) {
	if len(vertexData) == 0 || indexCount == 0 {
		return 0, fmt.Errorf("mesh %s: no geometry", label)
	}
	return r.backend.InitMeshBuffers(label, vertexData, indexData, indexCount)
}

func (r *renderer) ReleaseMesh(h common.MeshHandle) {
	r.backend.ReleaseMesh(h)
}

func (r *renderer) UploadTexture(data common.TextureStagingData) (common.TextureHandle, error) {
	if data.Width == 0 || data.Height == 0 {
		return 0, fmt.Errorf("texture %s: empty image", data.Label)
	}
	return r.backend.InitTexture(data)
}

func (r *renderer) ReleaseTexture(h common.TextureHandle) {
	r.backend.ReleaseTexture(h)
}

func (r *renderer) BeginShadowPass(size int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.backend.BeginShadowPass(size); err != nil {
		return err
	}
	r.beginPass(pipeline.PassShadow)
	return nil
}

func (r *renderer) EndShadowPass() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.backend.EndShadowPass()
	r.inPass = false
}

func (r *renderer) BeginFrame(clear [4]float32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.backend.BeginFrame(clear); err != nil {
		return err
	}
	r.beginPass(pipeline.PassMain)
	return nil
}

// beginPass resets the binding state; nothing bound in a previous pass survives into the next.
func (r *renderer) beginPass(pass pipeline.Pass) {
	r.pass = pass
	r.inPass = true
	r.bundle = nil
	r.textures = [MaxTextureSlots]common.TextureHandle{}
}

func (r *renderer) SetViewport(x, y, width, height float32) {
	r.backend.SetViewport(x, y, width, height)
}

func (r *renderer) WriteFrameConstants(data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	frame, _, _ := r.backend.UniformProviders()
	r.frameSlot = frame.Stage(data)
}

func (r *renderer) WriteObjectConstants(data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _, object := r.backend.UniformProviders()
	r.objectSlot = object.Stage(data)
}

func (r *renderer) BindState(b *state.Bundle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bundle = b
}

func (r *renderer) BindTexture(slot int, h common.TextureHandle) {
	if slot < 0 || slot >= MaxTextureSlots {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.textures[slot] = h
}

func (r *renderer) DrawMesh(mesh common.MeshHandle, world [16]float32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.inPass || r.bundle == nil {
		return
	}

	p, err := r.pipelineFor(r.bundle, r.pass)
	if err != nil {
		common.Logger().Error("pipeline creation failed", "bundle", r.bundle.Name(), "pass", r.pass.String(), "error", err)
		return
	}

	_, model, _ := r.backend.UniformProviders()
	offsets := DrawOffsets{
		Frame:  r.frameSlot,
		Model:  model.Stage(common.SliceToBytes(world[:])),
		Object: r.objectSlot,
	}
	r.backend.DrawCall(p, mesh, offsets, r.textures, r.bundle.Sampler())
}

// pipelineFor returns the cached pipeline for a bundle in a pass, compiling it on first use.
func (r *renderer) pipelineFor(b *state.Bundle, pass pipeline.Pass) (pipeline.Pipeline, error) {
	key := pipeline.Key(b, pass)
	if p, ok := r.pipelineCache[key]; ok {
		return p, nil
	}

	var opts []pipeline.PipelineBuilderOption
	if pass == pipeline.PassShadow {
		opts = append(opts, pipeline.WithDepthBias(r.shadowBias, r.shadowSlopeScale))
	}
	p := pipeline.NewPipeline(b, pass, opts...)
	if err := r.backend.RegisterRenderPipeline(p); err != nil {
		return nil, err
	}
	r.pipelineCache[key] = p
	return p, nil
}

func (r *renderer) EndFrame() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.backend.EndFrame()
	r.inPass = false
	r.frameSlot = 0
	r.objectSlot = 0
}

func (r *renderer) AbortFrame() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.backend.AbortFrame()
	r.inPass = false
	r.bundle = nil
	r.frameSlot = 0
	r.objectSlot = 0
}

func (r *renderer) Present(vsync bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.backend.Present()

	mode := PresentModeUncapped
	if vsync {
		mode = PresentModeVSync
	}
	if mode != r.presentMode {
		r.presentMode = mode
		r.backend.SetPresentMode(mode)
		r.backend.ConfigureSurface(r.width, r.height)
		common.Logger().Info("present mode changed", "vsync", vsync)
	}
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.width, r.height = width, height
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, key)
	}
	r.backend.Release()
}
