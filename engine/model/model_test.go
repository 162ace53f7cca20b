package model

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

type keys map[common.Key]bool

func (k keys) KeyHeld(key common.Key) bool { return k[key] }
func (k keys) KeyHit(key common.Key) bool  { return false }

type drawer struct {
	mesh  common.MeshHandle
	world [16]float32
	calls int
}

func (d *drawer) DrawMesh(mesh common.MeshHandle, world [16]float32) {
	d.mesh = mesh
	d.world = world
	d.calls++
}

func TestWorldMatrixFollowsLastSetTransform(t *testing.T) {
	m := NewModel(WithPosition(mgl32.Vec3{1, 2, 3}), WithScale(2))
	w := m.WorldMatrix()
	assert.Equal(t, float32(1), w[12])
	assert.Equal(t, float32(2), w[13])
	assert.Equal(t, float32(3), w[14])
	assert.InDelta(t, 2, w[0], 1e-6)

	m.SetPosition(mgl32.Vec3{-4, 0, 9})
	m.SetScale(3)
	w = m.WorldMatrix()
	assert.Equal(t, float32(-4), w[12])
	assert.Equal(t, float32(9), w[14])
	assert.InDelta(t, 3, w[5], 1e-6)
}

func TestFaceTargetPointsForwardAtTarget(t *testing.T) {
	m := NewModel(WithPosition(mgl32.Vec3{30, 20, 0}))
	target := mgl32.Vec3{15, 0, 0}
	m.FaceTarget(target)

	want := target.Sub(m.Position()).Normalize()
	got := common.Forward(m.WorldMatrix())
	assert.InDelta(t, want.X(), got.X(), 1e-5)
	assert.InDelta(t, want.Y(), got.Y(), 1e-5)
	assert.InDelta(t, want.Z(), got.Z(), 1e-5)
}

func TestFaceTargetIgnoresOwnPosition(t *testing.T) {
	m := NewModel(WithPosition(mgl32.Vec3{1, 1, 1}), WithRotation(mgl32.Vec3{0.5, 0.25, 0.1}))
	m.FaceTarget(mgl32.Vec3{1, 1, 1})
	assert.Equal(t, mgl32.Vec3{0.5, 0.25, 0.1}, m.Rotation())
}

func TestControl(t *testing.T) {
	b := DefaultControlBindings()

	t.Run("rotates while held", func(t *testing.T) {
		m := NewModel()
		m.Control(0.5, keys{common.KeyI: true, common.KeyL: true}, b)
		assert.InDelta(t, 1.0, m.Rotation().X(), 1e-6)
		assert.InDelta(t, -1.0, m.Rotation().Y(), 1e-6)
		assert.Equal(t, float32(0), m.Rotation().Z())
	})

	t.Run("opposite keys cancel", func(t *testing.T) {
		m := NewModel()
		m.Control(1, keys{common.KeyU: true, common.KeyO: true}, b)
		assert.Equal(t, mgl32.Vec3{}, m.Rotation())
	})

	t.Run("moves along local z", func(t *testing.T) {
		m := NewModel(WithScale(6))
		m.Control(0.1, keys{common.KeyPeriod: true}, b)
		assert.InDelta(t, 5.0, m.Position().Z(), 1e-5)
		assert.InDelta(t, 0.0, m.Position().X(), 1e-5)

		m.Control(0.1, keys{common.KeyComma: true}, b)
		assert.InDelta(t, 0.0, m.Position().Z(), 1e-5)
	})

	t.Run("no keys leaves transform unchanged", func(t *testing.T) {
		m := NewModel(WithPosition(mgl32.Vec3{1, 2, 3}))
		before := m.WorldMatrix()
		m.Control(1, keys{}, b)
		assert.Equal(t, before, m.WorldMatrix())
	})
}

func TestRenderDrawsMeshWithWorldMatrix(t *testing.T) {
	m := NewModel(WithMesh(7), WithName("builtin:cube"), WithPosition(mgl32.Vec3{0, 5, 0}))
	d := &drawer{}
	m.Render(d)
	assert.Equal(t, 1, d.calls)
	assert.Equal(t, common.MeshHandle(7), d.mesh)
	assert.Equal(t, m.WorldMatrix(), d.world)
	assert.Equal(t, "builtin:cube", m.Name())
}
