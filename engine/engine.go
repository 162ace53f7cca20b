package engine

import (
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/input"
	"github.com/Carmen-Shannon/oxy-scene/engine/profiler"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/Carmen-Shannon/oxy-scene/engine/window"
)

// MaxFrameDelta caps the time step handed to the scene so a stalled frame (window drag,
// debugger pause) does not teleport animated entities.
const MaxFrameDelta float32 = 0.25

// engine implements the Engine interface.
// Drives update and render from the window message loop on a single thread.
type engine struct {
	mu *sync.Mutex

	window   window.Window
	scene    scene.Scene
	renderer renderer.Renderer
	tracker  input.Tracker

	profiler         *profiler.Profiler
	profilingEnabled bool

	quitKey common.Key
	clock   func() time.Time
	last    time.Time
	frames  uint64

	quitOnce  sync.Once
	closeOnce sync.Once
}

// Engine is the main entry point for the engine.
// It owns the frame loop: input sampling, scene update, rendering and title-bar statistics.
type Engine interface {
	// Window returns the window the engine presents to.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Scene returns the scene driven by the engine.
	//
	// Returns:
	//   - scene.Scene: the scene instance
	Scene() scene.Scene

	// Input returns the key tracker fed by the window callbacks.
	//
	// Returns:
	//   - input.Tracker: the tracker
	Input() input.Tracker

	// EnableProfiler enables frame statistics in the title bar.
	EnableProfiler()

	// DisableProfiler disables frame statistics and restores the base title.
	DisableProfiler()

	// Frames returns how many frames the loop has produced.
	//
	// Returns:
	//   - uint64: the frame count
	Frames() uint64

	// Step runs one frame: update, render and statistics. Run calls it from the window loop.
	Step()

	// Run wires the window callbacks and blocks in the message loop until the window closes.
	// Resources are released before Run returns.
	Run()

	// Quit asks the window to close. The loop exits after the current iteration.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()

	// Close releases the scene and renderer. Safe to call multiple times.
	Close()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine with the provided options.
// A window and scene must be supplied; the key tracker and profiler default to fresh instances.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:      &sync.Mutex{},
		tracker: input.NewTracker(),
		quitKey: common.KeyEsc,
		clock:   time.Now,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.profiler == nil {
		title := ""
		if e.window != nil {
			title = e.window.Title()
		}
		e.profiler = profiler.NewProfiler(title)
	}
	e.last = e.clock()
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) Input() input.Tracker {
	return e.tracker
}

func (e *engine) EnableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.mu.Lock()
	e.profilingEnabled = false
	e.mu.Unlock()
	if e.window != nil {
		e.window.SetTitle(e.window.Title())
	}
}

func (e *engine) Frames() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frames
}

func (e *engine) Step() {
	now := e.clock()

	e.mu.Lock()
	dt := float32(now.Sub(e.last).Seconds())
	e.last = now
	e.frames++
	frame := e.frames
	profiling := e.profilingEnabled
	e.mu.Unlock()

	if dt < 0 {
		dt = 0
	}
	if dt > MaxFrameDelta {
		dt = MaxFrameDelta
	}

	if e.tracker.KeyHit(e.quitKey) {
		e.tracker.EndTick()
		e.Quit()
		return
	}

	e.scene.Update(dt, e.tracker)
	e.tracker.EndTick()

	if err := e.scene.Render(); err != nil {
		common.Logger().Error("frame failed", "frame", frame, "err", err)
	}

	if profiling && e.window != nil {
		if title, ok := e.profiler.Tick(dt); ok {
			e.window.SetTitle(title)
		}
	}
}

func (e *engine) Run() {
	e.window.SetKeyDownCallback(e.tracker.KeyDown)
	e.window.SetKeyUpCallback(e.tracker.KeyUp)
	e.window.SetResizeCallback(e.scene.Resize)
	e.window.SetUpdateCallback(e.Step)

	e.mu.Lock()
	e.last = e.clock()
	e.mu.Unlock()

	common.Logger().Info("engine running", "width", e.window.Width(), "height", e.window.Height())
	e.window.ProcessMessages()
	e.Close()
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		common.Logger().Info("engine quitting", "frames", e.Frames())
		if err := e.window.Close(); err != nil {
			common.Logger().Warn("window close failed", "err", err)
		}
	})
}

func (e *engine) Close() {
	e.closeOnce.Do(func() {
		if e.scene != nil {
			e.scene.Close()
		}
		if e.renderer != nil {
			e.renderer.Close()
		}
	})
}
