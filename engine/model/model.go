package model

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Default speeds used by Control.
const (
	RotationSpeed = 2.0  // radians per second
	MovementSpeed = 50.0 // units per second
)

// model is the implementation of the Model interface.
type model struct {
	mu *sync.Mutex

	name     string
	mesh     common.MeshHandle
	position mgl32.Vec3
	rotation mgl32.Vec3
	scale    float32

	world [16]float32
	dirty bool
}

// MeshDrawer issues the draw of a mesh with a world matrix. Satisfied by renderer.Renderer.
type MeshDrawer interface {
	DrawMesh(mesh common.MeshHandle, world [16]float32)
}

// Model is a transform node: a mesh placed in the world by a position, an Euler rotation and a
// uniform scale. The world matrix is rebuilt lazily on the first read after any change.
type Model interface {
	// Name returns the identifier of the mesh this node draws.
	//
	// Returns:
	//   - string: the mesh identifier
	Name() string

	// Mesh returns the handle of the uploaded mesh.
	//
	// Returns:
	//   - common.MeshHandle: the mesh handle
	Mesh() common.MeshHandle

	// Position returns the world position.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// SetPosition moves the node.
	//
	// Parameters:
	//   - p: the new position
	SetPosition(p mgl32.Vec3)

	// Rotation returns the Euler rotation in radians.
	//
	// Returns:
	//   - mgl32.Vec3: rotation about X, Y and Z
	Rotation() mgl32.Vec3

	// SetRotation sets the Euler rotation in radians.
	//
	// Parameters:
	//   - r: rotation about X, Y and Z
	SetRotation(r mgl32.Vec3)

	// Scale returns the uniform scale.
	//
	// Returns:
	//   - float32: the scale
	Scale() float32

	// SetScale sets the uniform scale.
	//
	// Parameters:
	//   - s: the scale
	SetScale(s float32)

	// WorldMatrix returns the column-major world matrix built from the current transform.
	//
	// Returns:
	//   - [16]float32: the world matrix
	WorldMatrix() [16]float32

	// FaceTarget turns the node so its forward axis (-Z) points at target. Roll is cleared.
	// Nothing changes when target is the node's own position.
	//
	// Parameters:
	//   - target: the world point to face
	FaceTarget(target mgl32.Vec3)

	// Control applies one tick of keyboard-driven rotation and movement.
	//
	// Parameters:
	//   - dt: the tick length in seconds
	//   - keys: the key state for this tick
	//   - b: the key assignments
	Control(dt float32, keys common.KeyState, b ControlBindings)

	// Render draws the mesh with the current world matrix.
	//
	// Parameters:
	//   - d: the drawer, normally the renderer
	Render(d MeshDrawer)
}

var _ Model = &model{}

// NewModel creates a new transform node with the specified options applied.
// Without options the node sits at the origin with no rotation and scale 1.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: a new instance of Model configured with the provided options
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{
		mu:    &sync.Mutex{},
		scale: 1,
		dirty: true,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Mesh() common.MeshHandle {
	return m.mesh
}

func (m *model) Position() mgl32.Vec3 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *model) SetPosition(p mgl32.Vec3) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = p
	m.dirty = true
}

func (m *model) Rotation() mgl32.Vec3 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rotation
}

func (m *model) SetRotation(r mgl32.Vec3) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rotation = r
	m.dirty = true
}

func (m *model) Scale() float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scale
}

func (m *model) SetScale(s float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scale = s
	m.dirty = true
}

func (m *model) WorldMatrix() [16]float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.worldLocked()
}

// worldLocked rebuilds the cached matrix if the transform changed. Caller holds mu.
func (m *model) worldLocked() [16]float32 {
	if m.dirty {
		common.BuildModelMatrix(m.world[:],
			m.position.X(), m.position.Y(), m.position.Z(),
			m.rotation.X(), m.rotation.Y(), m.rotation.Z(),
			m.scale, m.scale, m.scale)
		m.dirty = false
	}
	return m.world
}

func (m *model) FaceTarget(target mgl32.Vec3) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pitch, yaw, ok := common.FacingAngles(target.Sub(m.position))
	if !ok {
		return
	}
	m.rotation = mgl32.Vec3{pitch, yaw, 0}
	m.dirty = true
}

func (m *model) Control(dt float32, keys common.KeyState, b ControlBindings) {
	m.mu.Lock()
	defer m.mu.Unlock()

	step := RotationSpeed * dt
	axis := func(pos, neg common.Key) float32 {
		var v float32
		if keys.KeyHeld(pos) {
			v += step
		}
		if keys.KeyHeld(neg) {
			v -= step
		}
		return v
	}
	rot := mgl32.Vec3{
		axis(b.TurnUp, b.TurnDown),
		axis(b.TurnRight, b.TurnLeft),
		axis(b.TurnCW, b.TurnCCW),
	}

	var move float32
	if keys.KeyHeld(b.MoveForward) {
		move += MovementSpeed * dt
	}
	if keys.KeyHeld(b.MoveBackward) {
		move -= MovementSpeed * dt
	}

	if rot == (mgl32.Vec3{}) && move == 0 {
		return
	}
	m.rotation = m.rotation.Add(rot)
	m.dirty = true

	if move != 0 {
		// Local Z in world space, unscaled.
		z := common.Axis(m.worldLocked(), 2)
		if z.Len() > 0 {
			m.position = m.position.Add(z.Normalize().Mul(move))
			m.dirty = true
		}
	}
}

func (m *model) Render(d MeshDrawer) {
	d.DrawMesh(m.mesh, m.WorldMatrix())
}
