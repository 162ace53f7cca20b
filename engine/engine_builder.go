package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/input"
	"github.com/Carmen-Shannon/oxy-scene/engine/profiler"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/Carmen-Shannon/oxy-scene/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables frame statistics in the title bar.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithWindow sets the window the engine runs its message loop on.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithScene sets the scene updated and rendered each frame.
//
// Parameters:
//   - s: an initialised Scene
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scene = s
	}
}

// WithRenderer hands ownership of the renderer to the engine so Close releases it.
//
// Parameters:
//   - r: the renderer backing the scene
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithTracker replaces the default key tracker.
//
// Parameters:
//   - t: the tracker fed by window key callbacks
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTracker(t input.Tracker) EngineBuilderOption {
	return func(e *engine) {
		e.tracker = t
	}
}

// WithProfiler replaces the default profiler.
//
// Parameters:
//   - p: the profiler producing title-bar reports
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithQuitKey sets the key that closes the window. Defaults to Escape.
//
// Parameters:
//   - k: the quit key
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithQuitKey(k common.Key) EngineBuilderOption {
	return func(e *engine) {
		e.quitKey = k
	}
}

// WithClock overrides the time source used to compute frame deltas.
//
// Parameters:
//   - now: function returning the current time
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithClock(now func() time.Time) EngineBuilderOption {
	return func(e *engine) {
		e.clock = now
	}
}
