package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
)

// LoaderBackendType identifies the mesh file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// MeshUploader creates and destroys GPU meshes. Satisfied by renderer.Renderer.
type MeshUploader interface {
	UploadMesh(label string, vertexData, indexData []byte, indexCount int) (common.MeshHandle, error)
	ReleaseMesh(h common.MeshHandle)
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	uploader  MeshUploader
	assetRoot string

	meshCache map[string]common.MeshHandle

	backend loaderBackend
}

// Loader is the mesh provider: it turns a mesh identifier into an uploaded mesh handle.
// Identifiers are either a Builtin name or a .gltf/.glb path, relative paths resolving against
// the asset root. Each identifier is read and uploaded once.
type Loader interface {
	// Load returns the mesh for an identifier, reading and uploading it on first use.
	//
	// Parameters:
	//   - id: the mesh identifier
	//
	// Returns:
	//   - common.MeshHandle: the uploaded mesh
	//   - error: error naming id if the mesh cannot be read or uploaded
	Load(id string) (common.MeshHandle, error)

	// LoadReader reads and uploads a mesh from a stream and caches it under id.
	//
	// Parameters:
	//   - id: the cache key
	//   - r: the reader providing glTF data
	//   - isGLB: true if the reader provides GLB binary data
	//
	// Returns:
	//   - common.MeshHandle: the uploaded mesh
	//   - error: error naming id if the mesh cannot be read or uploaded
	LoadReader(id string, r io.Reader, isGLB bool) (common.MeshHandle, error)

	// Read returns the CPU-side geometry for an identifier without uploading or caching it.
	//
	// Parameters:
	//   - id: the mesh identifier
	//
	// Returns:
	//   - MeshData: the geometry
	//   - error: error naming id if the mesh cannot be read
	Read(id string) (MeshData, error)

	// Get retrieves a cached mesh.
	//
	// Parameters:
	//   - id: the mesh identifier
	//
	// Returns:
	//   - common.MeshHandle: the mesh handle, zero if not loaded
	//   - bool: true if the mesh is loaded
	Get(id string) (common.MeshHandle, bool)

	// Loaded returns the identifiers of every loaded mesh in sorted order.
	//
	// Returns:
	//   - []string: the identifiers
	Loaded() []string

	// Release destroys every uploaded mesh and empties the cache.
	Release()
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeGLTF)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		meshCache: make(map[string]common.MeshHandle),
	}

	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend()
	}

	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) Load(id string) (common.MeshHandle, error) {
	if h, ok := l.Get(id); ok {
		return h, nil
	}

	data, err := l.Read(id)
	if err != nil {
		return 0, err
	}
	return l.upload(id, data)
}

func (l *loader) LoadReader(id string, r io.Reader, isGLB bool) (common.MeshHandle, error) {
	if h, ok := l.Get(id); ok {
		return h, nil
	}

	data, err := l.backend.LoadReader(r, id, isGLB)
	if err != nil {
		return 0, fmt.Errorf("failed to load mesh %s: %w", id, err)
	}
	return l.upload(id, data)
}

func (l *loader) Read(id string) (MeshData, error) {
	if strings.HasPrefix(strings.ToLower(id), BuiltinPrefix) {
		data, err := Builtin(id)
		if err != nil {
			return MeshData{}, fmt.Errorf("failed to load mesh %s: %w", id, err)
		}
		return data, nil
	}

	if err := l.checkFormat(id); err != nil {
		return MeshData{}, fmt.Errorf("failed to load mesh %s: %w", id, err)
	}
	data, err := l.backend.Load(l.resolve(id), id)
	if err != nil {
		return MeshData{}, fmt.Errorf("failed to load mesh %s: %w", id, err)
	}
	return data, nil
}

// upload sends geometry to the GPU and caches the handle under id.
func (l *loader) upload(id string, data MeshData) (common.MeshHandle, error) {
	if l.uploader == nil {
		return 0, fmt.Errorf("failed to load mesh %s: loader has no uploader", id)
	}

	h, err := l.uploader.UploadMesh(id, data.VertexBytes(), data.IndexBytes(), len(data.Indices))
	if err != nil {
		return 0, fmt.Errorf("failed to load mesh %s: %w", id, err)
	}

	l.mu.Lock()
	l.meshCache[id] = h
	l.mu.Unlock()

	common.Logger().Debug("mesh loaded", "id", id, "vertices", len(data.Vertices), "indices", len(data.Indices))
	return h, nil
}

// checkFormat rejects file extensions the backend cannot read.
func (l *loader) checkFormat(path string) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".gltf", ".glb":
		return nil
	default:
		return fmt.Errorf("unsupported model format: %q", ext)
	}
}

// resolve joins a relative path onto the asset root.
func (l *loader) resolve(path string) string {
	if l.assetRoot == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(l.assetRoot, path)
}

func (l *loader) Get(id string) (common.MeshHandle, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	h, ok := l.meshCache[id]
	return h, ok
}

func (l *loader) Loaded() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := make([]string, 0, len(l.meshCache))
	for id := range l.meshCache {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (l *loader) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for id, h := range l.meshCache {
		if l.uploader != nil {
			l.uploader.ReleaseMesh(h)
		}
		delete(l.meshCache, id)
	}
}
