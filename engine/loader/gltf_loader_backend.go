package loader

import (
	"io"
)

// gltfLoaderBackendImpl is the implementation of gltfLoaderBackend.
type gltfLoaderBackendImpl struct{}

// gltfLoaderBackend is a loaderBackend implementation for glTF/GLB files.
type gltfLoaderBackend interface {
	loaderBackend
}

var _ gltfLoaderBackend = &gltfLoaderBackendImpl{}

// newGLTFLoaderBackend creates a new glTF loader backend.
//
// Returns:
//   - gltfLoaderBackend: the loader backend for glTF/GLB files
func newGLTFLoaderBackend() gltfLoaderBackend {
	return &gltfLoaderBackendImpl{}
}

func (b *gltfLoaderBackendImpl) Load(path, name string) (MeshData, error) {
	parser := newGLTFParser()
	if err := parser.Parse(path); err != nil {
		return MeshData{}, err
	}
	return newGLTFMeshExtractor(parser).ExtractAll(name)
}

func (b *gltfLoaderBackendImpl) LoadReader(r io.Reader, name string, binary bool) (MeshData, error) {
	parser := newGLTFParser()
	if err := parser.ParseReader(r, binary); err != nil {
		return MeshData{}, err
	}
	return newGLTFMeshExtractor(parser).ExtractAll(name)
}
