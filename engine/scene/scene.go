package scene

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/animator"
	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/Carmen-Shannon/oxy-scene/engine/config"
	"github.com/Carmen-Shannon/oxy-scene/engine/drawable"
	"github.com/Carmen-Shannon/oxy-scene/engine/light"
	"github.com/Carmen-Shannon/oxy-scene/engine/loader"
	"github.com/Carmen-Shannon/oxy-scene/engine/model"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/state"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/texture"
	"github.com/go-gl/mathgl/mgl32"
)

// VSyncToggleKey toggles between vsync-locked and immediate presentation.
const VSyncToggleKey = common.KeyP

// Scene is the orchestrator: it owns the drawables, the lights, the camera and the two constant
// blocks, and drives one update and one render per tick.
//
// A scene is empty until Init succeeds. Update and Render do nothing on an empty scene.
type Scene interface {
	// Init builds the scene from a description: state bundles, meshes, drawables, lights and
	// rules, then loads every declared texture. On failure nothing is kept and the error is an
	// *InitError.
	//
	// Parameters:
	//   - cfg: a normalised, validated description
	//
	// Returns:
	//   - error: an *InitError describing the first failure
	Init(cfg *config.Config) error

	// Initialized reports whether Init has succeeded and Close has not been called since.
	//
	// Returns:
	//   - bool: true if the scene can render
	Initialized() bool

	// Update advances the scene by one tick: elapsed time, controllable transforms, light rules,
	// the camera, camera-tracking drawables and the vsync toggle, in that order.
	//
	// Parameters:
	//   - dt: the tick length in seconds
	//   - keys: the key state for this tick
	Update(dt float32, keys common.KeyState)

	// Render draws one frame: the optional shadow pre-pass, then every drawable in declaration
	// order, then every light, then presents.
	//
	// Returns:
	//   - error: error if a pass could not begin; the frame is skipped
	Render() error

	// Resize adapts the camera aspect and the renderer surface to a new window size.
	//
	// Parameters:
	//   - width: the width in pixels
	//   - height: the height in pixels
	Resize(width, height int)

	// Close releases the drawables, lights, meshes and textures. Bundles stay in the registry.
	Close()

	// Camera returns the scene camera, nil before Init.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// Drawables returns the plain drawables in draw order.
	//
	// Returns:
	//   - []drawable.Drawable: the drawables
	Drawables() []drawable.Drawable

	// Lights returns the lights in draw order.
	//
	// Returns:
	//   - []light.Light: the lights
	Lights() []light.Light

	// Find looks up a drawable or a light by name.
	//
	// Parameters:
	//   - name: the entity name
	//
	// Returns:
	//   - drawable.Drawable: the entity, or nil
	Find(name string) drawable.Drawable

	// Designated returns the light that feeds the spot and shadow parameters, or nil.
	//
	// Returns:
	//   - light.Light: the designated light
	Designated() light.Light

	// Elapsed returns the simulated time in seconds since Init.
	//
	// Returns:
	//   - float32: the elapsed time
	Elapsed() float32

	// VSync reports whether presentation waits for the display refresh.
	//
	// Returns:
	//   - bool: the present flag
	VSync() bool

	// SetVSync sets the present flag. Takes effect at the next Present.
	//
	// Parameters:
	//   - vsync: true to wait for the display refresh
	SetVSync(vsync bool)

	// FrameConstants assembles the frame block from the current camera and lights.
	//
	// Returns:
	//   - FrameConstants: the block as Render would write it now
	FrameConstants() FrameConstants

	// Registry returns the state registry the scene creates bundles in.
	//
	// Returns:
	//   - state.Registry: the registry
	Registry() state.Registry
}

// scene is the implementation of the Scene interface and the scene context every stage of a
// tick works on.
type scene struct {
	mu *sync.Mutex

	renderer renderer.Renderer
	registry state.Registry

	textureWorkers int
	progress       io.Writer

	meshes   loader.Loader
	textures texture.Arena
	camera   camera.Camera

	drawables  []drawable.Drawable
	lights     []light.Light
	rules      [][]animator.Rule
	designated int

	objectBindings model.ControlBindings

	background    [4]float32
	ambient       [3]float32
	specularPower float32
	shadows       config.ShadowConfig
	shadowBundle  *state.Bundle

	elapsed     float32
	vsync       bool
	initialized bool
}

var _ Scene = &scene{}

// NewScene creates an empty scene drawing through r.
//
// Parameters:
//   - r: the renderer, also used to upload meshes and textures
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the empty scene
func NewScene(r renderer.Renderer, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:             &sync.Mutex{},
		renderer:       r,
		designated:     -1,
		vsync:          true,
		objectBindings: model.DefaultControlBindings(),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.registry == nil {
		s.registry = state.NewRegistry()
	}
	return s
}

// build holds everything Init creates so a failure can drop it in one place.
type build struct {
	meshes    loader.Loader
	textures  texture.Arena
	bundles   map[string]*state.Bundle
	drawables []drawable.Drawable
	lights    []light.Light
	rules     [][]animator.Rule
	byName    map[string]drawable.Drawable
	designate int
}

func (b *build) release(u texture.Uploader) {
	b.meshes.Release()
	b.textures.Release(u)
}

func (s *scene) Init(cfg *config.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return initErr(InitErrorConfig, nil, "scene is already initialised")
	}
	if cfg == nil {
		return initErr(InitErrorConfig, nil, "no scene description")
	}
	if err := cfg.Validate(); err != nil {
		return s.fail(initErr(InitErrorConfig, err, "invalid scene description"))
	}

	b := &build{
		meshes:    loader.NewLoader(loader.BackendTypeGLTF, loader.WithUploader(s.renderer), loader.WithAssetRoot(cfg.AssetRoot)),
		textures:  texture.NewArena(s.arenaOptions()...),
		bundles:   make(map[string]*state.Bundle),
		byName:    make(map[string]drawable.Drawable),
		designate: -1,
	}
	if err := s.populate(cfg, b); err != nil {
		b.release(s.renderer)
		return s.fail(err)
	}

	// Textures load only after every entity is declared.
	if err := b.textures.LoadAll(s.renderer); err != nil {
		b.release(s.renderer)
		return s.fail(initErr(InitErrorTextureLoad, err, "texture loading failed"))
	}

	s.meshes = b.meshes
	s.textures = b.textures
	s.drawables = b.drawables
	s.lights = b.lights
	s.rules = b.rules
	s.designated = b.designate
	s.background = cfg.Background
	s.ambient = cfg.Ambient
	s.specularPower = cfg.SpecularPower
	s.shadows = cfg.Shadows
	s.shadowBundle = b.bundles[cfg.Shadows.Bundle]
	s.vsync = cfg.VSync()
	s.elapsed = 0
	s.camera = newCamera(cfg.Camera, s.renderer)
	s.initialized = true

	common.Logger().Info("scene initialised",
		"drawables", len(s.drawables),
		"lights", len(s.lights),
		"textures", s.textures.Len(),
		"meshes", len(s.meshes.Loaded()),
		"shadows", s.shadows.Enabled,
	)
	return nil
}

// fail logs an init failure and returns it unchanged.
func (s *scene) fail(err *InitError) error {
	common.Logger().Error("scene initialisation failed", "kind", err.Kind.String(), "error", err.Error())
	return err
}

func (s *scene) arenaOptions() []texture.ArenaBuilderOption {
	var opts []texture.ArenaBuilderOption
	if s.textureWorkers > 0 {
		opts = append(opts, texture.WithWorkers(s.textureWorkers))
	}
	if s.progress != nil {
		opts = append(opts, texture.WithProgress(s.progress))
	}
	return opts
}

// populate declares bundles, drawables, lights and rules into b.
func (s *scene) populate(cfg *config.Config, b *build) *InitError {
	for _, bc := range cfg.Scene.Bundles {
		bundle, err := s.createBundle(cfg.AssetRoot, bc)
		if err != nil {
			return err
		}
		b.bundles[bc.Name] = bundle
	}

	for _, ec := range cfg.Scene.Entities {
		mesh, err := b.meshes.Load(ec.Mesh)
		if err != nil {
			return initErr(InitErrorMeshLoad, err, "entity %s", ec.Name)
		}
		m := model.NewModel(
			model.WithName(ec.Mesh),
			model.WithMesh(mesh),
			model.WithPosition(ec.Position),
			model.WithRotation(degrees(ec.Rotation)),
			model.WithScale(ec.Scale),
		)
		opts := []drawable.DrawableBuilderOption{
			drawable.WithName(ec.Name),
			drawable.WithControllable(ec.Controllable),
			drawable.WithTrackCamera(ec.TrackCamera),
		}
		if ec.Tint != nil {
			opts = append(opts, drawable.WithTint(*ec.Tint))
		}
		first := b.textures.Texture(b.textures.Add(assetPath(cfg.AssetRoot, ec.Textures[0])))
		d := drawable.NewDrawable(m, first, b.bundles[ec.Bundle], opts...)
		for _, file := range ec.Textures[1:] {
			d.AddTexture(b.textures.Texture(b.textures.Add(assetPath(cfg.AssetRoot, file))))
		}
		b.drawables = append(b.drawables, d)
		b.byName[ec.Name] = d
	}

	for _, lc := range cfg.Scene.Lights {
		mesh, err := b.meshes.Load(lc.Mesh)
		if err != nil {
			return initErr(InitErrorMeshLoad, err, "light %s", lc.Name)
		}
		m := model.NewModel(
			model.WithName(lc.Mesh),
			model.WithMesh(mesh),
			model.WithPosition(lc.Position),
		)
		glyph := b.textures.Texture(b.textures.Add(assetPath(cfg.AssetRoot, lc.Texture)))
		l := light.NewLight(m, glyph, b.bundles[lc.Bundle],
			light.WithName(lc.Name),
			light.WithColour(lc.Colour),
			light.WithStrength(lc.Strength),
			light.WithConeAngle(mgl32.DegToRad(lc.Cone)),
		)
		b.lights = append(b.lights, l)
		b.byName[lc.Name] = l
	}
	b.designate = cfg.Designated()

	b.rules = make([][]animator.Rule, len(b.lights))
	for i, lc := range cfg.Scene.Lights {
		l := b.lights[i]
		if lc.FaceTarget != "" {
			l.Model().FaceTarget(b.byName[lc.FaceTarget].Model().Position())
		}
		if o := lc.Rules.Orbit; o != nil {
			b.rules[i] = append(b.rules[i], animator.NewOrbit(b.byName[o.Target].Model(),
				animator.WithRadius(o.Radius),
				animator.WithHeight(o.Height),
				animator.WithSpeed(o.Speed),
			))
		}
		if p := lc.Rules.Pulse; p != nil {
			b.rules[i] = append(b.rules[i], animator.NewPulse(p.Base))
		}
		if h := lc.Rules.HueCycle; h != nil {
			b.rules[i] = append(b.rules[i], animator.NewHueCycle(h.Step))
		}
	}
	return nil
}

// createBundle loads the programs of a bundle and registers it. A bundle already registered
// under the same name is reused.
func (s *scene) createBundle(assetRoot string, bc config.BundleConfig) (*state.Bundle, *InitError) {
	if existing := s.registry.Bundle(bc.Name); existing != nil {
		return existing, nil
	}

	vs, err := s.registry.LoadProgram(bc.Vertex+"#vertex", shader.ShaderTypeVertex, filepath.Join(assetRoot, bc.Vertex))
	if err != nil {
		return nil, initErr(InitErrorShaderLoad, err, "bundle %s", bc.Name)
	}
	fs, err := s.registry.LoadProgram(bc.Fragment+"#fragment", shader.ShaderTypeFragment, filepath.Join(assetRoot, bc.Fragment))
	if err != nil {
		return nil, initErr(InitErrorShaderLoad, err, "bundle %s", bc.Name)
	}

	blend, berr := state.ParseBlendMode(bc.Blend)
	raster, rerr := state.ParseRasterMode(bc.Raster)
	depth, derr := state.ParseDepthMode(bc.Depth)
	sampler, serr := state.ParseSamplerMode(bc.Sampler)
	if err := errors.Join(berr, rerr, derr, serr); err != nil {
		return nil, initErr(InitErrorConfig, err, "bundle %s", bc.Name)
	}

	bundle, err := s.registry.CreateBundle(bc.Name,
		state.WithVertexProgram(vs),
		state.WithFragmentProgram(fs),
		state.WithBlend(blend),
		state.WithRaster(raster),
		state.WithDepth(depth),
		state.WithSampler(sampler),
	)
	if err != nil {
		return nil, initErr(InitErrorStateCreate, err, "bundle %s", bc.Name)
	}
	return bundle, nil
}

// newCamera places a camera from its description with the aspect of the current surface.
func newCamera(cc config.CameraConfig, r renderer.Renderer) camera.Camera {
	width, height := r.Size()
	aspect := float32(1)
	if width > 0 && height > 0 {
		aspect = float32(width) / float32(height)
	}
	ctrl := camera.NewCameraController(
		camera.WithPosition(cc.Position),
		camera.WithRotation(degrees(cc.Rotation)),
	)
	return camera.NewCamera(
		camera.WithController(ctrl),
		camera.WithFov(mgl32.DegToRad(cc.Fov)),
		camera.WithAspect(aspect),
		camera.WithNear(cc.Near),
		camera.WithFar(cc.Far),
	)
}

// assetPath resolves a texture file against the asset root. Builtin names and absolute paths
// are kept.
func assetPath(root, file string) string {
	if root == "" || filepath.IsAbs(file) || strings.HasPrefix(file, texture.BuiltinPrefix) {
		return file
	}
	return filepath.Join(root, file)
}

func degrees(v [3]float32) mgl32.Vec3 {
	return mgl32.Vec3{mgl32.DegToRad(v[0]), mgl32.DegToRad(v[1]), mgl32.DegToRad(v[2])}
}

func (s *scene) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

func (s *scene) Update(dt float32, keys common.KeyState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return
	}
	if keys == nil {
		keys = noKeys{}
	}

	s.elapsed += dt

	for _, d := range s.drawables {
		if d.IsControllable() {
			d.Model().Control(dt, keys, s.objectBindings)
		}
	}
	for _, l := range s.lights {
		if l.IsControllable() {
			l.Model().Control(dt, keys, s.objectBindings)
		}
	}

	tick := animator.Tick{Elapsed: s.elapsed, Delta: dt, Keys: keys}
	for i, l := range s.lights {
		for _, r := range s.rules[i] {
			r.Apply(l, tick)
		}
	}

	s.camera.Control(dt, keys)
	for _, d := range s.drawables {
		if d.TracksCamera() {
			d.Model().SetPosition(s.camera.Position())
		}
	}

	if keys.KeyHit(VSyncToggleKey) {
		s.vsync = !s.vsync
		common.Logger().Info("present mode toggled", "vsync", s.vsync)
	}
}

// noKeys is the key state of a tick without input.
type noKeys struct{}

func (noKeys) KeyHeld(common.Key) bool { return false }
func (noKeys) KeyHit(common.Key) bool  { return false }

func (s *scene) Render() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return nil
	}

	frame := s.assembleFrame()
	block := frame.Marshal()

	if s.shadows.Enabled && s.designated >= 0 && s.shadowBundle != nil {
		if err := s.renderShadows(block); err != nil {
			s.renderer.AbortFrame()
			return err
		}
	}

	// A shadow pass may already be encoded with its blocks staged; abandon it with the frame.
	if err := s.renderer.BeginFrame(s.background); err != nil {
		s.renderer.AbortFrame()
		return err
	}
	width, height := s.renderer.Size()
	s.renderer.SetViewport(0, 0, float32(width), float32(height))
	s.renderer.WriteFrameConstants(block)

	for _, d := range s.drawables {
		s.renderer.WriteObjectConstants(objectBlock(d.Tint()))
		d.Render(s.renderer)
	}
	for _, l := range s.lights {
		s.renderer.WriteObjectConstants(objectBlock(l.Tint()))
		l.Render(s.renderer)
	}

	s.renderer.EndFrame()
	s.renderer.Present(s.vsync)
	return nil
}

// renderShadows draws the opaque drawables into the shadow map from the designated light.
func (s *scene) renderShadows(block []byte) error {
	size := s.shadows.MapSize
	if err := s.renderer.BeginShadowPass(size); err != nil {
		return err
	}
	s.renderer.SetViewport(0, 0, float32(size), float32(size))
	s.renderer.WriteFrameConstants(block)
	s.renderer.BindState(s.shadowBundle)
	for _, d := range s.drawables {
		if d.StateBundle().Opaque() && !d.TracksCamera() {
			d.Model().Render(s.renderer)
		}
	}
	s.renderer.EndShadowPass()
	return nil
}

func objectBlock(tint mgl32.Vec3) []byte {
	o := ObjectConstants{Tint: tint}
	return o.Marshal()
}

// assembleFrame fills the frame block from the camera and the lights as they are now.
func (s *scene) assembleFrame() FrameConstants {
	f := FrameConstants{
		View:           s.camera.ViewMatrix(),
		Projection:     s.camera.ProjectionMatrix(),
		ViewProjection: s.camera.ViewProjectionMatrix(),
		Ambient:        s.ambient,
		SpecularPower:  s.specularPower,
		CameraPosition: s.camera.Position(),
		Elapsed:        s.elapsed,
	}

	// The designated light fills the first slot; the next light in order fills the second.
	slot := 0
	if s.designated >= 0 {
		l := s.lights[s.designated]
		f.Light1View = l.ViewMatrix()
		f.Light1Projection = l.ProjectionMatrix()
		f.Light1Position = l.Position()
		f.Light1CosHalf = l.CosHalfAngle()
		f.Light1Colour = l.Emission()
		f.Light1Facing = l.Facing()
		slot = 1
	} else {
		// Keeps shadow lookups finite when there is no light to project from.
		f.Light1View = common.IdentityMatrix()
		f.Light1Projection = common.IdentityMatrix()
	}
	for i, l := range s.lights {
		if i == s.designated {
			continue
		}
		switch slot {
		case 0:
			f.Light1Position = l.Position()
			f.Light1Colour = l.Emission()
		case 1:
			f.Light2Position = l.Position()
			f.Light2Colour = l.Emission()
		}
		slot++
	}
	return f
}

func (s *scene) FrameConstants() FrameConstants {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return FrameConstants{}
	}
	return s.assembleFrame()
}

func (s *scene) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	s.renderer.Resize(width, height)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.camera != nil {
		s.camera.SetAspect(float32(width) / float32(height))
	}
}

func (s *scene) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return
	}
	s.drawables = nil
	s.lights = nil
	s.rules = nil
	s.designated = -1
	s.meshes.Release()
	s.textures.Release(s.renderer)
	s.initialized = false
	common.Logger().Info("scene closed")
}

func (s *scene) Camera() camera.Camera {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.camera
}

func (s *scene) Drawables() []drawable.Drawable {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]drawable.Drawable(nil), s.drawables...)
}

func (s *scene) Lights() []light.Light {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]light.Light(nil), s.lights...)
}

func (s *scene) Find(name string) drawable.Drawable {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.drawables {
		if d.Name() == name {
			return d
		}
	}
	for _, l := range s.lights {
		if l.Name() == name {
			return l
		}
	}
	return nil
}

func (s *scene) Designated() light.Light {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.designated < 0 {
		return nil
	}
	return s.lights[s.designated]
}

func (s *scene) Elapsed() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

func (s *scene) VSync() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vsync
}

func (s *scene) SetVSync(vsync bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vsync = vsync
}

func (s *scene) Registry() state.Registry {
	return s.registry
}
