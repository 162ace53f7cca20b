package model

import (
	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/go-gl/mathgl/mgl32"
)

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the mesh identifier of the Model.
//
// Parameters:
//   - name: the mesh identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithMesh is an option builder that sets the uploaded mesh the Model draws.
//
// Parameters:
//   - h: the mesh handle
//
// Returns:
//   - ModelBuilderOption: a function that applies the mesh option to a model
func WithMesh(h common.MeshHandle) ModelBuilderOption {
	return func(m *model) {
		m.mesh = h
	}
}

// WithPosition is an option builder that sets the initial position.
//
// Parameters:
//   - p: the world position
//
// Returns:
//   - ModelBuilderOption: a function that applies the position option to a model
func WithPosition(p mgl32.Vec3) ModelBuilderOption {
	return func(m *model) {
		m.position = p
	}
}

// WithRotation is an option builder that sets the initial Euler rotation in radians.
//
// Parameters:
//   - r: rotation about X, Y and Z
//
// Returns:
//   - ModelBuilderOption: a function that applies the rotation option to a model
func WithRotation(r mgl32.Vec3) ModelBuilderOption {
	return func(m *model) {
		m.rotation = r
	}
}

// WithScale is an option builder that sets the initial uniform scale.
//
// Parameters:
//   - s: the scale
//
// Returns:
//   - ModelBuilderOption: a function that applies the scale option to a model
func WithScale(s float32) ModelBuilderOption {
	return func(m *model) {
		m.scale = s
	}
}
