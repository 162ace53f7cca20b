package state

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/shader"
)

// registry is the implementation of the Registry interface.
type registry struct {
	mu       sync.RWMutex
	programs map[string]shader.Shader
	bundles  map[string]*Bundle
}

// Registry owns shader programs and render-state bundles for the life of the process. Bundles
// outlive the drawables that reference them; a scene never releases a bundle.
type Registry interface {
	// LoadProgram loads a WGSL program from disk, or returns the program already loaded under key.
	//
	// Parameters:
	//   - key: the unique program key
	//   - stage: the pipeline stage
	//   - path: the .wgsl file
	//
	// Returns:
	//   - shader.Shader: the program
	//   - error: error if the program cannot be loaded
	LoadProgram(key string, stage shader.ShaderType, path string) (shader.Shader, error)

	// AddProgram registers an already loaded program under its key, replacing any previous one.
	//
	// Parameters:
	//   - s: the program
	AddProgram(s shader.Shader)

	// Program looks up a program by key.
	//
	// Parameters:
	//   - key: the program key
	//
	// Returns:
	//   - shader.Shader: the program, or nil if not loaded
	Program(key string) shader.Shader

	// CreateBundle creates and registers an immutable bundle. Both programs must be set.
	//
	// Parameters:
	//   - name: the unique bundle name
	//   - options: the bundle selectors
	//
	// Returns:
	//   - *Bundle: the new bundle
	//   - error: error if a program is missing or the name is taken
	CreateBundle(name string, options ...BundleOption) (*Bundle, error)

	// Bundle looks up a bundle by name.
	//
	// Parameters:
	//   - name: the bundle name
	//
	// Returns:
	//   - *Bundle: the bundle, or nil if not registered
	Bundle(name string) *Bundle

	// Bundles returns every registered bundle sorted by name.
	//
	// Returns:
	//   - []*Bundle: the bundles
	Bundles() []*Bundle

	// Close drops every program and bundle.
	Close()
}

var _ Registry = &registry{}

// NewRegistry creates an empty Registry.
//
// Returns:
//   - Registry: the registry
func NewRegistry() Registry {
	return &registry{
		programs: make(map[string]shader.Shader),
		bundles:  make(map[string]*Bundle),
	}
}

func (r *registry) LoadProgram(key string, stage shader.ShaderType, path string) (shader.Shader, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.programs[key]; ok {
		if s.ShaderType() != stage {
			return nil, fmt.Errorf("program %s already loaded as a %s program", key, s.ShaderType())
		}
		return s, nil
	}

	s, err := shader.NewShader(key, stage, path)
	if err != nil {
		return nil, err
	}
	r.programs[key] = s
	common.Logger().Debug("program loaded", "key", key, "stage", stage.String(), "path", path)
	return s, nil
}

func (r *registry) AddProgram(s shader.Shader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.programs[s.Key()] = s
}

func (r *registry) Program(key string) shader.Shader {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.programs[key]
}

func (r *registry) CreateBundle(name string, options ...BundleOption) (*Bundle, error) {
	b := &Bundle{name: name}
	for _, opt := range options {
		opt(b)
	}
	if b.vertex == nil {
		return nil, fmt.Errorf("bundle %s: vertex program is not set", name)
	}
	if b.fragment == nil {
		return nil, fmt.Errorf("bundle %s: fragment program is not set", name)
	}
	if b.vertex.ShaderType() != shader.ShaderTypeVertex {
		return nil, fmt.Errorf("bundle %s: %s is not a vertex program", name, b.vertex.Key())
	}
	if b.fragment.ShaderType() != shader.ShaderTypeFragment {
		return nil, fmt.Errorf("bundle %s: %s is not a fragment program", name, b.fragment.Key())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.bundles[name]; exists {
		return nil, fmt.Errorf("bundle %s already exists", name)
	}
	r.bundles[name] = b
	return b, nil
}

func (r *registry) Bundle(name string) *Bundle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.bundles[name]
}

func (r *registry) Bundles() []*Bundle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Bundle, 0, len(r.bundles))
	for _, b := range r.bundles {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].name < out[j].name
	})
	return out
}

func (r *registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.programs)
	clear(r.bundles)
}
