// Command oxy-scene opens a window and renders a lit, shadowed scene described by a YAML or
// TOML file. With no -config flag the embedded default scene is shown.
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"
	"runtime"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine"
	"github.com/Carmen-Shannon/oxy-scene/engine/config"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/Carmen-Shannon/oxy-scene/engine/window"
)

// GLFW must run on the main OS thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	var (
		configPath = flag.String("config", "", "scene description (.yaml, .yml or .toml); empty uses the built-in scene")
		assetRoot  = flag.String("assets", "", "directory shaders, textures and meshes resolve against")
		logLevel   = flag.String("log-level", "info", "log level: debug, info, warn or error")
		profile    = flag.Bool("profile", true, "show frame time and FPS in the title bar")
		software   = flag.Bool("software", false, "force the fallback (software) GPU adapter")
	)
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		log.Fatalf("invalid -log-level %q: %v", *logLevel, err)
	}
	common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load scene description: %v", err)
	}
	if *assetRoot != "" {
		cfg.AssetRoot = *assetRoot
	}

	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)
	if err != nil {
		log.Fatalf("failed to open window: %v", err)
	}

	presentMode := renderer.PresentModeUncapped
	if cfg.VSync() {
		presentMode = renderer.PresentModeVSync
	}
	r, err := renderer.NewRenderer(
		renderer.BackendTypeWGPU,
		win,
		renderer.WithPresentMode(presentMode),
		renderer.WithForceSoftwareRenderer(*software),
	)
	if err != nil {
		_ = win.Close()
		log.Fatalf("failed to create renderer: %v", err)
	}

	s := scene.NewScene(r, scene.WithProgress(os.Stderr))
	if err := s.Init(cfg); err != nil {
		r.Close()
		_ = win.Close()
		log.Fatalf("failed to initialise scene: %v", err)
	}

	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithScene(s),
		engine.WithRenderer(r),
		engine.WithProfiling(*profile),
	)
	eng.Run()
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default()
	}
	return config.Load(path)
}
