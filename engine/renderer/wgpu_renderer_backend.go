package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/state"
	"github.com/cogentcore/webgpu/wgpu"
)

// Bind group indices shared by every program.
const (
	groupFrame    = 0
	groupModel    = 1
	groupObject   = 2
	groupTextures = 3
)

// Uniform block sizes.
const (
	FrameBlockSize  = 432
	ModelBlockSize  = 64
	ObjectBlockSize = 16
)

type gpuMesh struct {
	vertex     *wgpu.Buffer
	index      *wgpu.Buffer
	indexCount uint32
}

type gpuTexture struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

type textureBindKey struct {
	textures [MaxTextureSlots]common.TextureHandle
	sampler  state.SamplerMode
}

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat        wgpu.TextureFormat
	width, height        int
	msaaTextureView      *wgpu.TextureView
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	presentMode wgpu.PresentMode
	sampleCount MSAASampleCount

	// Layouts shared by every pipeline. Shadow pipelines only use the frame and model groups.
	groupLayouts   [4]*wgpu.BindGroupLayout
	mainLayout     *wgpu.PipelineLayout
	shadowLayout   *wgpu.PipelineLayout
	shaderModules  map[string]*wgpu.ShaderModule
	frameBlocks    bind_group_provider.BindGroupProvider
	modelBlocks    bind_group_provider.BindGroupProvider
	objectBlocks   bind_group_provider.BindGroupProvider
	samplers       map[state.SamplerMode]*wgpu.Sampler
	shadowSampler  *wgpu.Sampler
	textureGroups  map[textureBindKey]*wgpu.BindGroup
	defaultTexture common.TextureHandle

	meshes      map[common.MeshHandle]*gpuMesh
	textures    map[common.TextureHandle]*gpuTexture
	nextMesh    common.MeshHandle
	nextTexture common.TextureHandle

	shadowTexture *wgpu.Texture
	shadowView    *wgpu.TextureView
	shadowSize    int

	// Frame state: the shadow pass and the main pass share one command encoder per frame.
	frameEncoder *wgpu.CommandEncoder
	activePass   *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount) (*wgpuRendererBackendImpl, error) {
	runtime.LockOSThread()
	b := &wgpuRendererBackendImpl{
		mu:            &sync.Mutex{},
		instance:      wgpu.CreateInstance(nil),
		presentMode:   wgpu.PresentModeFifo,
		sampleCount:   sampleCount,
		shaderModules: make(map[string]*wgpu.ShaderModule),
		samplers:      make(map[state.SamplerMode]*wgpu.Sampler),
		textureGroups: make(map[textureBindKey]*wgpu.BindGroup),
		meshes:        make(map[common.MeshHandle]*gpuMesh),
		textures:      make(map[common.TextureHandle]*gpuTexture),
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()

	common.Logger().Info("gpu device ready", "fallback", forceFallbackAdapter, "msaa", uint32(sampleCount))

	if err := b.initLayouts(); err != nil {
		return nil, err
	}
	if err := b.initSamplers(); err != nil {
		return nil, err
	}
	white, err := b.InitTexture(common.TextureStagingData{
		Label:  "Default White",
		Pixels: []byte{255, 255, 255, 255},
		Width:  1,
		Height: 1,
	})
	if err != nil {
		return nil, err
	}
	b.defaultTexture = white
	if err := b.ensureShadowMap(1); err != nil {
		return nil, err
	}
	return b, nil
}

// initLayouts creates the four bind group layouts, both pipeline layouts and the uniform providers.
func (b *wgpuRendererBackendImpl) initLayouts() error {
	uniform := func(label string, size uint64) (*wgpu.BindGroupLayout, error) {
		return b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label: label,
			Entries: []wgpu.BindGroupLayoutEntry{{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:             wgpu.BufferBindingTypeUniform,
					HasDynamicOffset: true,
					MinBindingSize:   size,
				},
			}},
		})
	}

	var err error
	if b.groupLayouts[groupFrame], err = uniform("Frame Layout", FrameBlockSize); err != nil {
		return err
	}
	if b.groupLayouts[groupModel], err = uniform("Model Layout", ModelBlockSize); err != nil {
		return err
	}
	if b.groupLayouts[groupObject], err = uniform("Object Layout", ObjectBlockSize); err != nil {
		return err
	}

	entries := make([]wgpu.BindGroupLayoutEntry, 0, MaxTextureSlots+3)
	for slot := range MaxTextureSlots {
		entries = append(entries, wgpu.BindGroupLayoutEntry{
			Binding:    uint32(slot),
			Visibility: wgpu.ShaderStageFragment,
			Texture: wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
			},
		})
	}
	entries = append(entries,
		wgpu.BindGroupLayoutEntry{
			Binding:    MaxTextureSlots,
			Visibility: wgpu.ShaderStageFragment,
			Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
		},
		wgpu.BindGroupLayoutEntry{
			Binding:    MaxTextureSlots + 1,
			Visibility: wgpu.ShaderStageFragment,
			Texture: wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeDepth,
				ViewDimension: wgpu.TextureViewDimension2D,
			},
		},
		wgpu.BindGroupLayoutEntry{
			Binding:    MaxTextureSlots + 2,
			Visibility: wgpu.ShaderStageFragment,
			Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeComparison},
		},
	)
	if b.groupLayouts[groupTextures], err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   "Texture Layout",
		Entries: entries,
	}); err != nil {
		return err
	}

	if b.mainLayout, err = b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Main Pipeline Layout",
		BindGroupLayouts: b.groupLayouts[:],
	}); err != nil {
		return err
	}
	if b.shadowLayout, err = b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Shadow Pipeline Layout",
		BindGroupLayouts: b.groupLayouts[:groupObject],
	}); err != nil {
		return err
	}

	b.frameBlocks = bind_group_provider.NewBindGroupProvider("Frame", FrameBlockSize, bind_group_provider.WithCapacity(16))
	b.modelBlocks = bind_group_provider.NewBindGroupProvider("Model", ModelBlockSize)
	b.objectBlocks = bind_group_provider.NewBindGroupProvider("Object", ObjectBlockSize)
	for group, p := range b.uniformProviders() {
		if err := b.initUniformProvider(p, b.groupLayouts[group]); err != nil {
			return err
		}
	}
	return nil
}

// initUniformProvider (re)creates the buffer and dynamic-offset bind group of a provider at its current capacity.
func (b *wgpuRendererBackendImpl) initUniformProvider(p bind_group_provider.BindGroupProvider, layout *wgpu.BindGroupLayout) error {
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: p.Label() + " Uniform Buffer",
		Size:  p.BufferSize(),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  p.Label() + " Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{{
			Binding: 0,
			Buffer:  buf,
			Offset:  0,
			Size:    p.BlockSize(),
		}},
	})
	if err != nil {
		buf.Release()
		return err
	}
	p.SetBindGroup(bg)
	p.SetBuffer(buf)
	return nil
}

func (b *wgpuRendererBackendImpl) initSamplers() error {
	configs := map[state.SamplerMode]common.SamplerStagingData{
		state.SamplerAnisotropic4x: {MaxAnisotropy: 4},
		state.SamplerPoint: {
			AddressModeU: wgpu.AddressModeClampToEdge,
			AddressModeV: wgpu.AddressModeClampToEdge,
			AddressModeW: wgpu.AddressModeClampToEdge,
			MagFilter:    wgpu.FilterModeNearest,
			MinFilter:    wgpu.FilterModeNearest,
			MipmapFilter: wgpu.MipmapFilterModeNearest,
		},
		state.SamplerTrilinear: {},
		state.SamplerBilinearClamp: {
			AddressModeU: wgpu.AddressModeClampToEdge,
			AddressModeV: wgpu.AddressModeClampToEdge,
			AddressModeW: wgpu.AddressModeClampToEdge,
			MipmapFilter: wgpu.MipmapFilterModeNearest,
		},
	}
	for mode, cfg := range configs {
		samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
			Label:         "Sampler " + mode.String(),
			AddressModeU:  common.Coalesce(cfg.AddressModeU, wgpu.AddressModeRepeat),
			AddressModeV:  common.Coalesce(cfg.AddressModeV, wgpu.AddressModeRepeat),
			AddressModeW:  common.Coalesce(cfg.AddressModeW, wgpu.AddressModeRepeat),
			MagFilter:     common.Coalesce(cfg.MagFilter, wgpu.FilterModeLinear),
			MinFilter:     common.Coalesce(cfg.MinFilter, wgpu.FilterModeLinear),
			MipmapFilter:  common.Coalesce(cfg.MipmapFilter, wgpu.MipmapFilterModeLinear),
			LodMinClamp:   common.Coalesce(cfg.LodMinClamp, 0.0),
			LodMaxClamp:   common.Coalesce(cfg.LodMaxClamp, 32.0),
			MaxAnisotropy: common.Coalesce(cfg.MaxAnisotropy, 1),
		})
		if err != nil {
			return fmt.Errorf("failed to create %s sampler: %w", mode, err)
		}
		b.samplers[mode] = samp
	}

	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Shadow Comparison Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		Compare:       wgpu.CompareFunctionLess,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("failed to create comparison sampler: %w", err)
	}
	b.shadowSampler = samp
	return nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.width, b.height = width, height
	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	count := uint32(b.sampleCount)
	msaaEnabled := count > 1

	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if msaaEnabled {
		// The render pass draws into the MSAA texture; the resolved
		// result is written to the swapchain view as the ResolveTarget.
		msaaTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label: "MSAA Texture",
			Size: wgpu.Extent3D{
				Width:              uint32(width),
				Height:             uint32(height),
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			common.Logger().Error("msaa texture creation failed", "error", err)
			return
		}
		b.msaaTextureView, err = msaaTexture.CreateView(nil)
		if err != nil {
			common.Logger().Error("msaa view creation failed", "error", err)
			return
		}
	}

	// Depth texture sample count must match the color attachment.
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
	}
	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        pipeline.MainDepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		common.Logger().Error("depth texture creation failed", "error", err)
		return
	}
	b.depthTextureView, err = depthTexture.CreateView(nil)
	if err != nil {
		common.Logger().Error("depth view creation failed", "error", err)
		return
	}

	storeOp := wgpu.StoreOpStore
	if msaaEnabled {
		storeOp = wgpu.StoreOpDiscard
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    b.msaaTextureView, // nil when MSAA is off; set in BeginFrame
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: storeOp,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeVSync:
		b.presentMode = wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeImmediate
	}
}

func (b *wgpuRendererBackendImpl) UniformProviders() (frame, model, object bind_group_provider.BindGroupProvider) {
	return b.frameBlocks, b.modelBlocks, b.objectBlocks
}

// shaderModule compiles a program once and caches the module by program key.
func (b *wgpuRendererBackendImpl) shaderModule(s shader.Shader) (*wgpu.ShaderModule, error) {
	if m, ok := b.shaderModules[s.Key()]; ok {
		return m, nil
	}
	m, err := b.device.CreateShaderModule(s.Module())
	if err != nil {
		return nil, fmt.Errorf("failed to compile program %s: %w", s.Key(), err)
	}
	b.shaderModules[s.Key()] = m
	return m, nil
}

func (b *wgpuRendererBackendImpl) RegisterRenderPipeline(p pipeline.Pipeline) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	vertexShader := p.Shader(shader.ShaderTypeVertex)
	if vertexShader == nil {
		return errors.New("vertex program must be set to create a render pipeline")
	}
	vs, err := b.shaderModule(vertexShader)
	if err != nil {
		return err
	}

	layout := b.shadowLayout
	var fs *wgpu.ShaderModule
	if p.Pass() == pipeline.PassMain {
		layout = b.mainLayout
		fragmentShader := p.Shader(shader.ShaderTypeFragment)
		if fragmentShader == nil {
			return errors.New("fragment program must be set to create a main pass pipeline")
		}
		if fs, err = b.shaderModule(fragmentShader); err != nil {
			return err
		}
	}

	created, err := b.device.CreateRenderPipeline(p.Descriptor(layout, vs, fs, b.surfaceFormat, uint32(b.sampleCount)))
	if err != nil {
		return err
	}
	p.SetRenderPipeline(created)
	return nil
}

func (b *wgpuRendererBackendImpl) InitMeshBuffers(label string, vertexData, indexData []byte, indexCount int) (common.MeshHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	vertex, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label + " Vertex Buffer",
		Size:  common.AlignUp(uint64(len(vertexData)), 4),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return 0, err
	}
	b.queue.WriteBuffer(vertex, 0, vertexData)

	index, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label + " Index Buffer",
		Size:  common.AlignUp(uint64(len(indexData)), 4),
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		vertex.Release()
		return 0, err
	}
	b.queue.WriteBuffer(index, 0, indexData)

	b.nextMesh++
	b.meshes[b.nextMesh] = &gpuMesh{vertex: vertex, index: index, indexCount: uint32(indexCount)}
	return b.nextMesh, nil
}

func (b *wgpuRendererBackendImpl) ReleaseMesh(h common.MeshHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if m, ok := b.meshes[h]; ok {
		m.vertex.Release()
		m.index.Release()
		delete(b.meshes, h)
	}
}

func (b *wgpuRendererBackendImpl) InitTexture(data common.TextureStagingData) (common.TextureHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     data.Label,
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              data.Width,
			Height:             data.Height,
			DepthOrArrayLayers: 1,
		},
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return 0, err
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		data.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  data.Width * 4,
			RowsPerImage: data.Height,
		},
		&wgpu.Extent3D{
			Width:              data.Width,
			Height:             data.Height,
			DepthOrArrayLayers: 1,
		},
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return 0, err
	}

	b.nextTexture++
	b.textures[b.nextTexture] = &gpuTexture{texture: tex, view: view}
	return b.nextTexture, nil
}

func (b *wgpuRendererBackendImpl) ReleaseTexture(h common.TextureHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.textures[h]
	if !ok {
		return
	}
	for key, bg := range b.textureGroups {
		for _, th := range key.textures {
			if th == h {
				bg.Release()
				delete(b.textureGroups, key)
				break
			}
		}
	}
	t.view.Release()
	t.texture.Release()
	delete(b.textures, h)
}

// ensureShadowMap creates the shadow map at size and clears it to the far depth so that
// frames rendered without a shadow pass sample everything as lit.
func (b *wgpuRendererBackendImpl) ensureShadowMap(size int) error {
	if size <= 0 {
		size = 1
	}
	if b.shadowView != nil && b.shadowSize == size {
		return nil
	}

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Shadow Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(size),
			Height:             uint32(size),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        pipeline.ShadowDepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return fmt.Errorf("failed to create shadow depth texture: %w", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return fmt.Errorf("failed to create shadow depth texture view: %w", err)
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		tex.Release()
		return err
	}
	clearPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            view,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		},
	})
	clearPass.End()
	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		encoder.Release()
		view.Release()
		tex.Release()
		return err
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	encoder.Release()

	if b.shadowView != nil {
		b.shadowView.Release()
		b.shadowTexture.Release()
	}
	// Every texture bind group references the shadow view.
	for key, bg := range b.textureGroups {
		bg.Release()
		delete(b.textureGroups, key)
	}
	b.shadowTexture, b.shadowView, b.shadowSize = tex, view, size
	return nil
}

// ensureEncoder creates the frame's command encoder if neither pass has yet.
func (b *wgpuRendererBackendImpl) ensureEncoder() error {
	if b.frameEncoder != nil {
		return nil
	}
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	b.frameEncoder = encoder
	return nil
}

func (b *wgpuRendererBackendImpl) BeginShadowPass(size int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensureShadowMap(size); err != nil {
		return err
	}
	if err := b.ensureEncoder(); err != nil {
		return err
	}

	b.activePass = b.frameEncoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.shadowView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore, // Must store, this is the shadow map
			DepthClearValue: 1.0,
		},
	})
	return nil
}

func (b *wgpuRendererBackendImpl) EndShadowPass() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.activePass == nil {
		return
	}
	b.activePass.End()
	b.activePass = nil
}

func (b *wgpuRendererBackendImpl) BeginFrame(clear [4]float32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// A previous frame's surface texture is still held; acquiring another one
	// fails with "Surface image is already acquired".
	if b.frameSurface != nil {
		return errors.New("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}
	if err := b.ensureEncoder(); err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	if b.sampleCount > 1 {
		b.renderPassDescriptor.ColorAttachments[0].ResolveTarget = view
	} else {
		b.renderPassDescriptor.ColorAttachments[0].View = view
	}
	b.renderPassDescriptor.ColorAttachments[0].ClearValue = wgpu.Color{
		R: float64(clear[0]), G: float64(clear[1]), B: float64(clear[2]), A: float64(clear[3]),
	}
	b.activePass = b.frameEncoder.BeginRenderPass(b.renderPassDescriptor)
	b.frameSurface = surfaceTexture
	b.frameView = view
	return nil
}

func (b *wgpuRendererBackendImpl) SetViewport(x, y, width, height float32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.activePass == nil {
		return
	}
	b.activePass.SetViewport(x, y, width, height, 0, 1)
}

// textureGroup returns the cached bind group for a texture set and sampler.
func (b *wgpuRendererBackendImpl) textureGroup(textures [MaxTextureSlots]common.TextureHandle, sampler state.SamplerMode) (*wgpu.BindGroup, error) {
	for i, h := range textures {
		if _, ok := b.textures[h]; !ok {
			textures[i] = b.defaultTexture
		}
	}
	key := textureBindKey{textures: textures, sampler: sampler}
	if bg, ok := b.textureGroups[key]; ok {
		return bg, nil
	}

	entries := make([]wgpu.BindGroupEntry, 0, MaxTextureSlots+3)
	for slot, h := range textures {
		entries = append(entries, wgpu.BindGroupEntry{Binding: uint32(slot), TextureView: b.textures[h].view})
	}
	samp, ok := b.samplers[sampler]
	if !ok {
		samp = b.samplers[state.SamplerAnisotropic4x]
	}
	entries = append(entries,
		wgpu.BindGroupEntry{Binding: MaxTextureSlots, Sampler: samp},
		wgpu.BindGroupEntry{Binding: MaxTextureSlots + 1, TextureView: b.shadowView},
		wgpu.BindGroupEntry{Binding: MaxTextureSlots + 2, Sampler: b.shadowSampler},
	)

	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   "Texture Bind Group",
		Layout:  b.groupLayouts[groupTextures],
		Entries: entries,
	})
	if err != nil {
		return nil, err
	}
	b.textureGroups[key] = bg
	return bg, nil
}

func (b *wgpuRendererBackendImpl) DrawCall(p pipeline.Pipeline, mesh common.MeshHandle, offsets DrawOffsets, textures [MaxTextureSlots]common.TextureHandle, sampler state.SamplerMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	m, ok := b.meshes[mesh]
	if !ok || b.activePass == nil || p.RenderPipeline() == nil {
		return
	}

	if err := b.refreshUniformProviders(); err != nil {
		common.Logger().Error("uniform provider reallocation failed", "error", err)
		return
	}

	pass := b.activePass
	pass.SetPipeline(p.RenderPipeline())
	pass.SetBindGroup(groupFrame, b.frameBlocks.BindGroup(), []uint32{offsets.Frame})
	pass.SetBindGroup(groupModel, b.modelBlocks.BindGroup(), []uint32{offsets.Model})

	if p.Pass() == pipeline.PassMain {
		bg, err := b.textureGroup(textures, sampler)
		if err != nil {
			common.Logger().Error("texture bind group creation failed", "error", err)
			return
		}
		pass.SetBindGroup(groupObject, b.objectBlocks.BindGroup(), []uint32{offsets.Object})
		pass.SetBindGroup(groupTextures, bg, nil)
	}

	pass.SetVertexBuffer(0, m.vertex, 0, wgpu.WholeSize)
	pass.SetIndexBuffer(m.index, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	pass.DrawIndexed(m.indexCount, 1, 0, 0, 0)
}

func (b *wgpuRendererBackendImpl) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.activePass != nil {
		b.activePass.End()
		b.activePass = nil
	}
	if b.frameEncoder == nil {
		return
	}

	// Queue writes land before the submitted command buffer executes, so every draw
	// reads the slot staged for it.
	if err := b.refreshUniformProviders(); err != nil {
		common.Logger().Error("uniform provider reallocation failed", "error", err)
	}
	providers := b.uniformProviders()
	for _, p := range providers {
		for _, w := range p.Flush() {
			if w.Buffer != nil && len(w.Data) > 0 {
				b.queue.WriteBuffer(w.Buffer, w.Offset, w.Data)
			}
		}
	}

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err == nil {
		b.queue.Submit(commandBuffer)
		commandBuffer.Release()
	} else {
		common.Logger().Error("frame encoding failed", "error", err)
	}
	b.frameEncoder.Release()
	b.frameEncoder = nil

	for _, p := range providers {
		p.ReleaseRetired()
		p.Reset()
	}
}

func (b *wgpuRendererBackendImpl) AbortFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.activePass != nil {
		b.activePass.End()
		b.activePass = nil
	}
	if b.frameEncoder != nil {
		b.frameEncoder.Release()
		b.frameEncoder = nil
	}
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
	for _, p := range b.uniformProviders() {
		p.ReleaseRetired()
		p.Reset()
	}
}

// uniformProviders returns the dynamic-offset providers indexed by bind group.
func (b *wgpuRendererBackendImpl) uniformProviders() [3]bind_group_provider.BindGroupProvider {
	return [3]bind_group_provider.BindGroupProvider{b.frameBlocks, b.modelBlocks, b.objectBlocks}
}

// refreshUniformProviders replaces the buffer of every provider whose staging area outgrew it,
// or whose previous replacement failed. The old buffer is retired rather than released: passes
// already recorded still bind it.
func (b *wgpuRendererBackendImpl) refreshUniformProviders() error {
	for group, p := range b.uniformProviders() {
		if p.Buffer() != nil && !p.Stale() {
			continue
		}
		p.Retire()
		if err := b.initUniformProvider(p, b.groupLayouts[group]); err != nil {
			return err
		}
		common.Logger().Warn("uniform provider grown", "provider", p.Label(), "capacity", p.Capacity())
	}
	return nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}
	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	b.frameSurface.Release()
	b.frameSurface = nil
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for key, bg := range b.textureGroups {
		bg.Release()
		delete(b.textureGroups, key)
	}
	for h, t := range b.textures {
		t.view.Release()
		t.texture.Release()
		delete(b.textures, h)
	}
	for h, m := range b.meshes {
		m.vertex.Release()
		m.index.Release()
		delete(b.meshes, h)
	}
	for key, m := range b.shaderModules {
		m.Release()
		delete(b.shaderModules, key)
	}
	for mode, s := range b.samplers {
		s.Release()
		delete(b.samplers, mode)
	}
	for _, p := range b.uniformProviders() {
		p.Release()
	}
	if b.shadowSampler != nil {
		b.shadowSampler.Release()
	}
	if b.shadowView != nil {
		b.shadowView.Release()
		b.shadowTexture.Release()
	}
	if b.mainLayout != nil {
		b.mainLayout.Release()
		b.shadowLayout.Release()
	}
	for _, l := range b.groupLayouts {
		if l != nil {
			l.Release()
		}
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
	}
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
	}
	b.surface.Release()
	b.device.Release()
	b.adapter.Release()
	b.instance.Release()
}
