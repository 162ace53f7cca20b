package scene

import (
	"io"

	"github.com/Carmen-Shannon/oxy-scene/engine/model"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/state"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithRegistry shares a process-wide state registry with the scene. Without it the scene
// creates its own.
//
// Parameters:
//   - r: the registry
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithRegistry(r state.Registry) SceneBuilderOption {
	return func(s *scene) {
		s.registry = r
	}
}

// WithTextureWorkers sets the number of goroutines decoding textures during Init.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithTextureWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		s.textureWorkers = n
	}
}

// WithProgress reports texture loading progress to w during Init.
//
// Parameters:
//   - w: the progress writer, normally os.Stderr
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithProgress(w io.Writer) SceneBuilderOption {
	return func(s *scene) {
		s.progress = w
	}
}

// WithObjectBindings sets the keys that drive controllable drawables.
//
// Parameters:
//   - b: the key assignments
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithObjectBindings(b model.ControlBindings) SceneBuilderOption {
	return func(s *scene) {
		s.objectBindings = b
	}
}
