package drawable

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/model"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/state"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/texture"
	"github.com/go-gl/mathgl/mgl32"
)

// RenderContext is the part of the renderer a drawable binds through. Satisfied by
// renderer.Renderer.
type RenderContext interface {
	BindState(b *state.Bundle)
	BindTexture(slot int, h common.TextureHandle)
	DrawMesh(mesh common.MeshHandle, world [16]float32)
}

// Renderable is the capability set shared by every entity the scene draws.
type Renderable interface {
	// Render binds the state bundle, binds each texture at its list index and draws the model.
	// Nothing bound by an earlier Render survives except what this call rebinds.
	//
	// Parameters:
	//   - ctx: the render context
	Render(ctx RenderContext)

	// IsControllable reports whether the entity receives keyboard transform updates each tick.
	//
	// Returns:
	//   - bool: the flag fixed at construction
	IsControllable() bool

	// StateBundle returns the shared, read-only state bundle the entity is drawn with.
	//
	// Returns:
	//   - *state.Bundle: the bundle
	StateBundle() *state.Bundle
}

// drawableImpl is the implementation of the Drawable interface.
type drawableImpl struct {
	mu *sync.Mutex

	name         string
	mdl          model.Model
	textures     []texture.Texture
	bundle       *state.Bundle
	controllable bool
	trackCamera  bool
	tint         mgl32.Vec3
}

// Drawable is a plain entity: a transform node, an ordered texture list and a state bundle.
// The textures belong to the scene's texture arena and the bundle to the state registry;
// the drawable only refers to them.
type Drawable interface {
	Renderable

	// Name returns the entity name.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Model returns the transform node the entity owns.
	//
	// Returns:
	//   - model.Model: the transform node
	Model() model.Model

	// AddTexture appends a texture. Its list index is the binding slot it is drawn with.
	// Duplicates are kept.
	//
	// Parameters:
	//   - t: the texture to append
	AddTexture(t texture.Texture)

	// Textures returns a copy of the texture list in binding order.
	//
	// Returns:
	//   - []texture.Texture: the textures
	Textures() []texture.Texture

	// TracksCamera reports whether the entity's position follows the camera each tick.
	//
	// Returns:
	//   - bool: true for background shells such as a skybox
	TracksCamera() bool

	// Tint returns the colour written to the object-constant block before the entity draws.
	//
	// Returns:
	//   - mgl32.Vec3: the tint
	Tint() mgl32.Vec3
}

var _ Drawable = &drawableImpl{}

// NewDrawable creates a drawable with one texture and a state bundle. The tint defaults to white.
//
// Parameters:
//   - m: the transform node, owned by the drawable from now on
//   - first: the initial texture, bound at slot 0
//   - bundle: the shared state bundle
//   - options: functional options to configure the drawable
//
// Returns:
//   - Drawable: the drawable
func NewDrawable(m model.Model, first texture.Texture, bundle *state.Bundle, options ...DrawableBuilderOption) Drawable {
	return newDrawable(m, first, bundle, options...)
}

// newDrawable builds the concrete value so variants can embed it.
func newDrawable(m model.Model, first texture.Texture, bundle *state.Bundle, options ...DrawableBuilderOption) *drawableImpl {
	d := &drawableImpl{
		mu:       &sync.Mutex{},
		mdl:      m,
		textures: []texture.Texture{first},
		bundle:   bundle,
		tint:     mgl32.Vec3{1, 1, 1},
	}
	for _, opt := range options {
		opt(d)
	}
	return d
}

func (d *drawableImpl) Name() string {
	return d.name
}

func (d *drawableImpl) Model() model.Model {
	return d.mdl
}

func (d *drawableImpl) AddTexture(t texture.Texture) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.textures = append(d.textures, t)
}

func (d *drawableImpl) Textures() []texture.Texture {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]texture.Texture(nil), d.textures...)
}

func (d *drawableImpl) IsControllable() bool {
	return d.controllable
}

func (d *drawableImpl) TracksCamera() bool {
	return d.trackCamera
}

func (d *drawableImpl) StateBundle() *state.Bundle {
	return d.bundle
}

func (d *drawableImpl) Tint() mgl32.Vec3 {
	return d.tint
}

func (d *drawableImpl) Render(ctx RenderContext) {
	ctx.BindState(d.bundle)
	for slot, t := range d.Textures() {
		ctx.BindTexture(slot, t.Handle())
	}
	d.mdl.Render(ctx)
}
